package services

import (
	"context"
	"log/slog"

	"quizzit/models"
	"quizzit/store"
)

type FormService struct {
	store  store.Store
	logger *slog.Logger
}

func NewFormService(st store.Store, logger *slog.Logger) *FormService {
	return &FormService{store: st, logger: logger}
}

type CreateFormRequest struct {
	Title       string                  `json:"title" binding:"required,max=200"`
	Description string                  `json:"description" binding:"max=2000"`
	IsQuiz      *bool                   `json:"is_quiz"`
	Questions   []CreateQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

type CreateQuestionRequest struct {
	Label   string                `json:"label" binding:"required"`
	Order   int                   `json:"order"`
	Options []CreateOptionRequest `json:"options" binding:"required,min=2,max=6,dive"`
}

type CreateOptionRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
	Order     int    `json:"order"`
}

func (s *FormService) CreateForm(ctx context.Context, ownerID string, req *CreateFormRequest) (*models.Form, error) {
	if ownerID == "" {
		return nil, Unauthenticated("user not authenticated")
	}
	if len(req.Questions) == 0 {
		return nil, ValidationError("a quiz needs at least one question")
	}

	form := &models.Form{
		Title:       SanitizeText(req.Title),
		Description: SanitizeText(req.Description),
		OwnerID:     ownerID,
		IsQuiz:      req.IsQuiz == nil || *req.IsQuiz,
	}
	if form.Title == "" {
		return nil, ValidationError("title is required")
	}

	for i, qReq := range req.Questions {
		if len(qReq.Options) < 2 || len(qReq.Options) > 6 {
			return nil, ValidationError("question %d must have between 2 and 6 options", i+1)
		}
		correct := 0
		for _, optReq := range qReq.Options {
			if optReq.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return nil, ValidationError("question %d must have exactly one correct answer", i+1)
		}

		order := qReq.Order
		if order == 0 {
			order = i + 1
		}
		question := models.Question{Label: SanitizeText(qReq.Label), Order: order}
		if question.Label == "" {
			return nil, ValidationError("question %d needs a label", i+1)
		}
		for j, optReq := range qReq.Options {
			optOrder := optReq.Order
			if optOrder == 0 {
				optOrder = j + 1
			}
			question.Options = append(question.Options, models.Option{
				Text:      SanitizeText(optReq.Text),
				IsCorrect: optReq.IsCorrect,
				Order:     optOrder,
			})
		}
		form.Questions = append(form.Questions, question)
	}

	if err := s.store.CreateForm(ctx, form); err != nil {
		return nil, InternalError(err, "failed to create form")
	}
	s.logger.Info("form created",
		slog.Uint64("form_id", uint64(form.ID)),
		slog.Int("questions", len(form.Questions)))

	return s.GetForm(ctx, form.ID, ownerID)
}

// GetForm returns the form with answers included; only its owner may read it.
func (s *FormService) GetForm(ctx context.Context, formID uint, ownerID string) (*models.Form, error) {
	form, err := s.store.GetForm(ctx, formID)
	if err != nil {
		return nil, fromStore(err, "form not found")
	}
	if form.OwnerID != ownerID {
		return nil, NotFound("form not found")
	}
	return form, nil
}

func (s *FormService) ListForms(ctx context.Context, ownerID string) ([]models.Form, error) {
	forms, err := s.store.ListForms(ctx, ownerID)
	if err != nil {
		return nil, InternalError(err, "failed to list forms")
	}
	return forms, nil
}

func (s *FormService) DeleteForm(ctx context.Context, formID uint, ownerID string) error {
	if _, err := s.GetForm(ctx, formID, ownerID); err != nil {
		return err
	}
	if err := s.store.DeleteForm(ctx, formID); err != nil {
		return fromStore(err, "form not found")
	}
	return nil
}
