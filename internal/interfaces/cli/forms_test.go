package cli

import (
	"testing"

	appSurvey "github.com/encuestaia/backend/internal/application/survey"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/stretchr/testify/assert"
)

func TestQuestionFields(t *testing.T) {
	tests := []struct {
		qType  survey.QuestionType
		fields int
	}{
		{survey.TypeText, 1},
		{survey.TypeNumber, 1},
		{survey.TypeTextarea, 1},
		{survey.TypeMultipleChoice, 1},
		{survey.TypeFrequency, 1},
		{survey.TypeCheckboxSuggestions, 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.qType), func(t *testing.T) {
			q := &survey.Question{ID: "q", Text: "¿?", Type: tt.qType, Options: []string{"A", "B"}}
			assert.Len(t, questionFields(q, &answerState{}), tt.fields)
		})
	}
}

func TestAnswerState_ToInput(t *testing.T) {
	state := &answerState{text: "  Facturas \n", choice: "Diariamente", selected: []string{"Gestión de citas"}}

	tests := []struct {
		qType survey.QuestionType
		want  appSurvey.AnswerInput
	}{
		{survey.TypeText, appSurvey.AnswerInput{Text: "Facturas"}},
		{survey.TypeMultipleChoice, appSurvey.AnswerInput{Text: "Diariamente"}},
		{survey.TypeCheckboxSuggestions, appSurvey.AnswerInput{Text: "Facturas", Selected: []string{"Gestión de citas"}}},
	}
	for _, tt := range tests {
		t.Run(string(tt.qType), func(t *testing.T) {
			assert.Equal(t, tt.want, state.toInput(&survey.Question{Type: tt.qType}))
		})
	}
}

func TestValidators(t *testing.T) {
	assert.Error(t, validateRequired("   "))
	assert.NoError(t, validateRequired("Ana"))

	assert.NoError(t, requiredUnless(true)(""))
	assert.Error(t, requiredUnless(false)(""))

	assert.NoError(t, validateNumber(false)("12,5"))
	assert.Error(t, validateNumber(false)("doce"))
	assert.Error(t, validateNumber(false)(""))
	assert.NoError(t, validateNumber(true)(""))

	assert.NoError(t, validateEmail("ana@example.com"))
	assert.Error(t, validateEmail(""))
	assert.Error(t, validateEmail("ana"))
}
