package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizzit/logger"
	"quizzit/store"
)

func validFormRequest() *CreateFormRequest {
	return &CreateFormRequest{
		Title:       "Phishing awareness",
		Description: "Spot the <script>alert(1)</script>fake",
		Questions: []CreateQuestionRequest{
			{
				Label: "Which sender is legit?",
				Options: []CreateOptionRequest{
					{Text: "it-support@c0mpany.biz"},
					{Text: "it@company.com", IsCorrect: true},
				},
			},
			{
				Label: "Hover before you click?",
				Order: 5,
				Options: []CreateOptionRequest{
					{Text: "Yes", IsCorrect: true, Order: 2},
					{Text: "No", Order: 1},
					{Text: "Only on Fridays", Order: 3},
				},
			},
		},
	}
}

func TestCreateForm(t *testing.T) {
	svc := NewFormService(store.NewMemoryStore(), logger.Discard())

	form, err := svc.CreateForm(context.Background(), "owner", validFormRequest())
	require.NoError(t, err)

	assert.Equal(t, "owner", form.OwnerID)
	assert.True(t, form.IsQuiz)
	assert.Equal(t, "Spot the fake", form.Description)
	require.Len(t, form.Questions, 2)
	assert.Equal(t, 1, form.Questions[0].Order)
	assert.Equal(t, 5, form.Questions[1].Order)
	assert.Equal(t, []string{"No", "Yes", "Only on Fridays"}, []string{
		form.Questions[1].Options[0].Text,
		form.Questions[1].Options[1].Text,
		form.Questions[1].Options[2].Text,
	})
}

func TestCreateFormValidation(t *testing.T) {
	tests := []struct {
		description string
		owner       string
		mutate      func(*CreateFormRequest)
		kind        Kind
	}{
		{"anonymous owner", "", func(*CreateFormRequest) {}, KindUnauthenticated},
		{"no questions", "owner", func(r *CreateFormRequest) { r.Questions = nil }, KindValidation},
		{"title is only markup", "owner", func(r *CreateFormRequest) { r.Title = "<b></b>" }, KindValidation},
		{"single option", "owner", func(r *CreateFormRequest) {
			r.Questions[0].Options = r.Questions[0].Options[1:]
		}, KindValidation},
		{"seven options", "owner", func(r *CreateFormRequest) {
			for len(r.Questions[1].Options) < 7 {
				r.Questions[1].Options = append(r.Questions[1].Options, CreateOptionRequest{Text: "filler"})
			}
		}, KindValidation},
		{"no correct option", "owner", func(r *CreateFormRequest) { r.Questions[0].Options[1].IsCorrect = false }, KindValidation},
		{"two correct options", "owner", func(r *CreateFormRequest) { r.Questions[0].Options[0].IsCorrect = true }, KindValidation},
		{"empty label", "owner", func(r *CreateFormRequest) { r.Questions[1].Label = "  " }, KindValidation},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			st := store.NewMemoryStore()
			svc := NewFormService(st, logger.Discard())
			req := validFormRequest()
			tc.mutate(req)

			form, err := svc.CreateForm(context.Background(), tc.owner, req)
			assert.Nil(t, form)
			assert.Equal(t, tc.kind, KindOf(err))

			forms, err := st.ListForms(context.Background(), tc.owner)
			require.NoError(t, err)
			assert.Empty(t, forms)
		})
	}
}

func TestSurveyForm(t *testing.T) {
	svc := NewFormService(store.NewMemoryStore(), logger.Discard())
	req := validFormRequest()
	isQuiz := false
	req.IsQuiz = &isQuiz

	form, err := svc.CreateForm(context.Background(), "owner", req)
	require.NoError(t, err)
	assert.False(t, form.IsQuiz)
}

func TestFormOwnership(t *testing.T) {
	ctx := context.Background()
	svc := NewFormService(store.NewMemoryStore(), logger.Discard())
	form, err := svc.CreateForm(ctx, "owner", validFormRequest())
	require.NoError(t, err)

	_, err = svc.GetForm(ctx, form.ID, "someone-else")
	assert.Equal(t, KindNotFound, KindOf(err))

	err = svc.DeleteForm(ctx, form.ID, "someone-else")
	assert.Equal(t, KindNotFound, KindOf(err))

	forms, err := svc.ListForms(ctx, "owner")
	require.NoError(t, err)
	assert.Len(t, forms, 1)

	require.NoError(t, svc.DeleteForm(ctx, form.ID, "owner"))
	_, err = svc.GetForm(ctx, form.ID, "owner")
	assert.Equal(t, KindNotFound, KindOf(err))
}
