package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
)

// QuestionnaireService defines the questionnaire operations used by the handler
type QuestionnaireService interface {
	ListQuestionnaires(ctx context.Context, filter repositories.QuestionnaireFilter) ([]*entities.Questionnaire, error)
	GetQuestionnaire(ctx context.Context, id int64) (*entities.Questionnaire, error)
	CreateQuestionnaire(ctx context.Context, q *entities.Questionnaire) error
	UpdateQuestionnaire(ctx context.Context, q *entities.Questionnaire) error
	Categories() []entities.QuestionnaireCategory
}

// QuestionnaireHandler handles questionnaire administration
type QuestionnaireHandler struct {
	service QuestionnaireService
}

// NewQuestionnaireHandler creates a new questionnaire handler
func NewQuestionnaireHandler(service QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{service: service}
}

type questionnaireRequest struct {
	TriggerKeywords  string                         `json:"trigger_keywords" validate:"required,max=1000"`
	Question         string                         `json:"question" validate:"max=2000"`
	ResponseTemplate string                         `json:"response_template" validate:"required"`
	Category         entities.QuestionnaireCategory `json:"category" validate:"required,oneof=general symptoms appointment emergency medication"`
	Priority         int                            `json:"priority" validate:"omitempty,gte=1"`
	IsActive         *bool                          `json:"is_active"`
}

func (req *questionnaireRequest) toEntity() *entities.Questionnaire {
	priority := req.Priority
	if priority == 0 {
		priority = 1
	}
	return &entities.Questionnaire{
		TriggerKeywords:  req.TriggerKeywords,
		Question:         req.Question,
		ResponseTemplate: req.ResponseTemplate,
		Category:         req.Category,
		Priority:         priority,
		IsActive:         req.IsActive == nil || *req.IsActive,
	}
}

// ListQuestionnaires handles GET /api/questionnaires
func (h *QuestionnaireHandler) ListQuestionnaires(w http.ResponseWriter, r *http.Request) {
	active, err := queryBool(r, "active")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	questionnaires, err := h.service.ListQuestionnaires(r.Context(), repositories.QuestionnaireFilter{
		Category: entities.QuestionnaireCategory(r.URL.Query().Get("category")),
		Active:   active,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, questionnaires)
}

// ListCategories handles GET /api/questionnaires/categories
func (h *QuestionnaireHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.Categories())
}

// GetQuestionnaire handles GET /api/questionnaires/{id}
func (h *QuestionnaireHandler) GetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	q, err := h.service.GetQuestionnaire(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, q)
}

// CreateQuestionnaire handles POST /api/questionnaires
func (h *QuestionnaireHandler) CreateQuestionnaire(w http.ResponseWriter, r *http.Request) {
	var req questionnaireRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	q := req.toEntity()
	if err := h.service.CreateQuestionnaire(r.Context(), q); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, q)
}

// UpdateQuestionnaire handles PUT /api/questionnaires/{id}
func (h *QuestionnaireHandler) UpdateQuestionnaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req questionnaireRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	q := req.toEntity()
	q.ID = id
	if err := h.service.UpdateQuestionnaire(r.Context(), q); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, q)
}
