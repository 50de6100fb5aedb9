package services

import (
	"encoding/json"
	"strings"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
)

const assistantPersona = `You are a helpful healthcare chatbot assistant. You have access to patient data and healthcare guidelines.

Guidelines for responses:
1. Always prioritize patient safety and recommend consulting healthcare professionals
2. Use the provided patient context to give personalized advice
3. Be clear about what information is from patient records vs general guidelines
4. Never provide specific medical diagnoses - only general health information
5. Encourage patients to consult their doctors for medical concerns

If the user describes an emergency, tell them to call their local emergency number immediately.`

const confidenceInstruction = `

IMPORTANT: End your response with a confidence score between 0.0 and 1.0
indicating how confident you are that your response adequately addresses the user's query.
Format: [CONFIDENCE: X.X] where X.X is a number between 0.0 and 1.0`

// SystemPrompt is the fixed instruction sent with every chat completion.
const SystemPrompt = assistantPersona + confidenceInstruction

// BuildPrompt assembles the completion prompt for a chat query. Context
// sections are omitted when the snapshot is absent.
func BuildPrompt(query *entities.ChatQuery) *entities.Prompt {
	var b strings.Builder

	if query.Patient != nil {
		writeSection(&b, "Patient Information", query.Patient)
	}
	if query.Doctor != nil {
		writeSection(&b, "Assigned Doctor", query.Doctor)
	}
	b.WriteString("User Query: ")
	b.WriteString(query.Message)

	return &entities.Prompt{
		System: SystemPrompt,
		User:   b.String(),
	}
}

func writeSection(b *strings.Builder, label string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	b.WriteString(label)
	b.WriteString(":\n")
	b.Write(data)
	b.WriteString("\n\n")
}
