package services

import (
	"sort"
	"strings"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
)

// DefaultGreetings mark short messages that open a conversation.
var DefaultGreetings = []string{"hello", "hi", "hey"}

// DefaultHealthKeywords are used when no health-topic questionnaire is active.
var DefaultHealthKeywords = []string{
	"pain", "ache", "hurt", "sore", "fever", "headache",
	"cough", "nausea", "appointment", "medication", "emergency",
}

const greetingWordLimit = 3

// FindMatch returns the first questionnaire, in the given order, whose
// keyword list has an entry contained in the lowercased query. Matching is
// plain substring containment, so "pain" also matches "repainting".
func FindMatch(query string, questionnaires []*entities.Questionnaire) *entities.Questionnaire {
	lowered := strings.ToLower(query)
	for _, q := range questionnaires {
		for _, kw := range q.Keywords() {
			if strings.Contains(lowered, kw) {
				return q
			}
		}
	}
	return nil
}

// SortByPriority orders questionnaires ascending by priority, keeping the
// input order for equal priorities.
func SortByPriority(questionnaires []*entities.Questionnaire) {
	sort.SliceStable(questionnaires, func(i, j int) bool {
		return questionnaires[i].Priority < questionnaires[j].Priority
	})
}

// HealthKeywords collects the keywords of active health-topic questionnaires,
// or DefaultHealthKeywords when there are none.
func HealthKeywords(questionnaires []*entities.Questionnaire) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, q := range questionnaires {
		if !q.IsActive || !q.Category.IsHealthTopic() {
			continue
		}
		for _, kw := range q.Keywords() {
			if !seen[kw] {
				seen[kw] = true
				keywords = append(keywords, kw)
			}
		}
	}
	if len(keywords) == 0 {
		return DefaultHealthKeywords
	}
	return keywords
}

// GreetingKeywords returns DefaultGreetings plus every keyword of active
// general questionnaires that are triggered by one of them.
func GreetingKeywords(questionnaires []*entities.Questionnaire) []string {
	greetings := append([]string(nil), DefaultGreetings...)
	seen := make(map[string]bool, len(greetings))
	for _, g := range greetings {
		seen[g] = true
	}

	for _, q := range questionnaires {
		if !q.IsActive || q.Category != entities.QuestionnaireCategoryGeneral {
			continue
		}
		keywords := q.Keywords()
		if !sharesKeyword(keywords, DefaultGreetings) {
			continue
		}
		for _, kw := range keywords {
			if !seen[kw] {
				seen[kw] = true
				greetings = append(greetings, kw)
			}
		}
	}
	return greetings
}

func sharesKeyword(keywords, targets []string) bool {
	for _, kw := range keywords {
		for _, t := range targets {
			if kw == t {
				return true
			}
		}
	}
	return false
}

// IsSubstantive reports whether the query already carries health
// information worth rendering a response for. A greeting of at most three
// words is not substantive.
func IsSubstantive(query string, greetings, healthKeywords []string) bool {
	lowered := strings.ToLower(query)

	if len(strings.Fields(lowered)) <= greetingWordLimit && containsAny(lowered, greetings) {
		return false
	}
	return containsAny(lowered, healthKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// DefaultGeneralQuestionnaire returns the first active general questionnaire
// in the given order.
func DefaultGeneralQuestionnaire(questionnaires []*entities.Questionnaire) *entities.Questionnaire {
	for _, q := range questionnaires {
		if q.IsActive && q.Category == entities.QuestionnaireCategoryGeneral {
			return q
		}
	}
	return nil
}
