package entities

import (
	"strings"
	"time"
)

// QuestionnaireCategory groups questionnaires by intent
type QuestionnaireCategory string

const (
	QuestionnaireCategoryGeneral     QuestionnaireCategory = "general"
	QuestionnaireCategorySymptoms    QuestionnaireCategory = "symptoms"
	QuestionnaireCategoryAppointment QuestionnaireCategory = "appointment"
	QuestionnaireCategoryEmergency   QuestionnaireCategory = "emergency"
	QuestionnaireCategoryMedication  QuestionnaireCategory = "medication"
)

// QuestionnaireCategories lists every category in display order.
var QuestionnaireCategories = []QuestionnaireCategory{
	QuestionnaireCategoryGeneral,
	QuestionnaireCategorySymptoms,
	QuestionnaireCategoryAppointment,
	QuestionnaireCategoryEmergency,
	QuestionnaireCategoryMedication,
}

// IsHealthTopic reports whether keywords of this category signal a substantive health message.
func (c QuestionnaireCategory) IsHealthTopic() bool {
	switch c {
	case QuestionnaireCategorySymptoms, QuestionnaireCategoryAppointment,
		QuestionnaireCategoryEmergency, QuestionnaireCategoryMedication:
		return true
	}
	return false
}

// Questionnaire is a keyword-triggered canned question and response pair
type Questionnaire struct {
	ID               int64                 `json:"id" db:"id"`
	TriggerKeywords  string                `json:"trigger_keywords" db:"trigger_keywords"`
	Question         string                `json:"question" db:"question"`
	ResponseTemplate string                `json:"response_template" db:"response_template"`
	Category         QuestionnaireCategory `json:"category" db:"category"`
	Priority         int                   `json:"priority" db:"priority"`
	IsActive         bool                  `json:"is_active" db:"is_active"`
	CreatedAt        time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at" db:"updated_at"`
}

// Keywords splits the comma-separated trigger list into trimmed, lowercased,
// non-empty keywords.
func (q *Questionnaire) Keywords() []string {
	parts := strings.Split(q.TriggerKeywords, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := strings.ToLower(strings.TrimSpace(part)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
