package survey

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return &Catalog{
		OpeningQuestions: []Question{
			{ID: "q1", Phase: PhaseBasicInfo, Text: "Para empezar, ¿cuál es tu nombre?", Type: TypeText, Key: KeyUserName},
			{ID: "q2", Phase: PhaseBasicInfo, Text: "¿Y tu cargo en la empresa?", Type: TypeText, Key: KeyUserRole},
			{ID: "q3", Phase: PhaseBasicInfo, Text: "¿Cómo se llama tu empresa?", Type: TypeText, Key: KeyCompanyName},
			{ID: "q4", Phase: PhaseBasicInfo, Text: "¿Y el sector de tu empresa?", Type: TypeText, Key: KeySector},
		},
		Sectors: []Sector{
			{Name: "Clínicas/Salud", Match: []string{"clínica", "salud", "dental"}, Tasks: []string{"Gestión de citas"}},
			{Name: "Software/IT", Match: []string{"software", "informática"}, Tasks: []string{"Soporte técnico"}},
		},
		GenericTasks:     []string{"Gestión de clientes", "Informes"},
		FrequencyOptions: []string{"Varias veces al día", "Diariamente", "Semanalmente", "Mensualmente"},
		FallbackQuestion: "¿Podrías contarme más detalles sobre esta situación?",
		Limits:           Limits{MaxHistory: 12, HardLimit: 15},
		Business:         Business{Name: "GoiLab", HourlyCost: 25},
	}
}

var t0 = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func TestNewSession(t *testing.T) {
	cat := testCatalog()
	s := NewSession("abc", cat, t0)

	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, StageWelcome, s.Stage)
	assert.Len(t, s.Questions, 4)
	assert.Empty(t, s.History)
	assert.Equal(t, 0, s.Progress())

	// 会话持有目录问题的副本
	s.Questions[0].Text = "changed"
	assert.NotEqual(t, "changed", cat.OpeningQuestions[0].Text)
}

func TestSession_Begin(t *testing.T) {
	s := NewSession("abc", testCatalog(), t0)

	_, err := s.CurrentQuestion()
	assert.ErrorIs(t, err, ErrNoCurrentQuestion, "welcome stage has no current question")

	require.NoError(t, s.Begin())
	require.NoError(t, s.Begin(), "begin is idempotent")
	assert.Equal(t, StageSurvey, s.Stage)

	q, err := s.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, "q1", q.ID)

	s.Finish(t0)
	assert.ErrorIs(t, s.Begin(), ErrInvalidStage)
}

func TestComposeAnswer(t *testing.T) {
	checkbox := &Question{Type: TypeCheckboxSuggestions}
	text := &Question{Type: TypeText}

	tests := []struct {
		name     string
		q        *Question
		text     string
		selected []string
		want     string
	}{
		{"plain text trimmed", text, "  Ana  ", nil, "Ana"},
		{"text ignores selected", text, "x", []string{"a"}, "x"},
		{"checkbox selected only", checkbox, "", []string{"Pedidos", "Incidencias"}, "Pedidos, Incidencias"},
		{"checkbox custom lines", checkbox, "Facturas\n\n  Nóminas \n", nil, "Facturas, Nóminas"},
		{"checkbox dedup", checkbox, "Pedidos\nFacturas", []string{"Pedidos", "Pedidos"}, "Pedidos, Facturas"},
		{"checkbox empty", checkbox, "   ", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeAnswer(tt.q, tt.text, tt.selected))
		})
	}
}

func TestSession_RecordAnswer_OpeningQuestions(t *testing.T) {
	s := NewSession("abc", testCatalog(), t0)
	require.NoError(t, s.Begin())

	answers := []string{"Ana", "Gerente", "Acme", "Clínica dental"}
	for i, a := range answers {
		needsAI, err := s.RecordAnswer(a, t0)
		require.NoError(t, err)
		assert.Equal(t, i == len(answers)-1, needsAI, "only the last opening answer needs an AI question")
		assert.Len(t, s.History, i+1, "history length equals answered questions")
	}

	assert.Equal(t, "Ana", s.FormData.UserName)
	assert.Equal(t, "Gerente", s.FormData.UserRole)
	assert.Equal(t, "Acme", s.FormData.CompanyName)
	assert.Equal(t, "Clínica dental", s.FormData.Sector)
	assert.Equal(t, 3, s.CurrentIndex)
	assert.Equal(t, 100, s.Progress())
}

func TestSession_RecordAnswer_Required(t *testing.T) {
	s := NewSession("abc", testCatalog(), t0)
	require.NoError(t, s.Begin())

	_, err := s.RecordAnswer("", t0)
	assert.ErrorIs(t, err, ErrAnswerRequired)
	assert.Empty(t, s.History)

	s.AppendQuestion(Question{ID: "q-ai-1", Phase: PhaseContextData, Text: "¿Algo más?", Type: TypeTextarea, Key: "custom-context_data-1", Optional: true}, t0)
	needsAI, err := s.RecordAnswer("", t0)
	require.NoError(t, err)
	assert.True(t, needsAI)
	assert.Equal(t, "", s.FormData.Answers["custom-context_data-1"])
}

func TestSession_AppendQuestion(t *testing.T) {
	s := NewSession("abc", testCatalog(), t0)
	require.NoError(t, s.Begin())
	for _, a := range []string{"Ana", "Gerente", "Acme", "Software"} {
		_, err := s.RecordAnswer(a, t0)
		require.NoError(t, err)
	}

	gen := GeneratedQuestion{Question: "¿Qué tareas te quitan tiempo?", Phase: PhaseProblemDetection, Type: TypeCheckboxSuggestions, Options: []string{"Soporte técnico"}}
	s.AppendQuestion(gen.ToQuestion(len(s.History)), t0)

	q, err := s.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, "q-ai-5", q.ID)
	assert.Equal(t, "custom-problem_detection-5", q.Key)
	assert.Equal(t, PhaseProblemDetection, s.CurrentPhase())
	assert.Equal(t, 80, s.Progress())

	needsAI, err := s.RecordAnswer(ComposeAnswer(q, "Facturas", []string{"Soporte técnico"}), t0)
	require.NoError(t, err)
	assert.True(t, needsAI)
	assert.Equal(t, "Soporte técnico, Facturas", s.FormData.Answers["custom-problem_detection-5"])
}

func TestSession_ReportFlow(t *testing.T) {
	s := NewSession("abc", testCatalog(), t0)
	require.NoError(t, s.Begin())

	assert.ErrorIs(t, s.ReadyForReport(), ErrInvalidStage)

	s.Finish(t0)
	assert.ErrorIs(t, s.ReadyForReport(), ErrEmailRequired)
	assert.ErrorIs(t, s.SetReport("x", t0), ErrEmailRequired)

	s.SetContact(" ana@example.com ", false, false, "", t0)
	assert.ErrorIs(t, s.ReadyForReport(), ErrConsentRequired)

	s.SetContact("ana@example.com", true, false, "", t0)
	require.NoError(t, s.ReadyForReport())

	done := t0.Add(time.Minute)
	require.NoError(t, s.SetReport("Informe", done))
	assert.True(t, s.IsCompleted())
	require.NotNil(t, s.CompletedAt)
	assert.Equal(t, done, *s.CompletedAt)
}

func TestSession_Reset(t *testing.T) {
	cat := testCatalog()
	s := NewSession("abc", cat, t0)
	require.NoError(t, s.Begin())
	_, err := s.RecordAnswer("Ana", t0)
	require.NoError(t, err)
	s.Finish(t0)
	s.SetContact("ana@example.com", true, true, "600000000", t0)

	later := t0.Add(time.Hour)
	s.Reset(cat, later)

	assert.Equal(t, "abc", s.ID, "reset keeps the id")
	assert.Equal(t, StageWelcome, s.Stage)
	assert.Empty(t, s.History)
	assert.Equal(t, FormData{}, s.FormData)
	assert.False(t, s.Consent)
	assert.Equal(t, t0, s.CreatedAt)
	assert.Equal(t, later, s.UpdatedAt)
}

func TestSession_Export(t *testing.T) {
	s := NewSession("abc", testCatalog(), t0)
	require.NoError(t, s.Begin())
	_, err := s.RecordAnswer("Ana", t0)
	require.NoError(t, err)

	exp := s.Export()
	data, err := json.Marshal(exp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "formData")
	assert.Contains(t, decoded, "conversationHistory")
	assert.Contains(t, decoded, "report")

	exp.ConversationHistory[0].Answer = "mutated"
	assert.Equal(t, "Ana", s.History[0].Answer, "export returns a copy of the history")

	assert.Equal(t, "diagnostico-encuesta-ia-2025-03-14.json", ExportFilename(t0))
}

func TestFormData_SetGet(t *testing.T) {
	var f FormData
	f.Set(KeyCompanyName, "Acme")
	f.Set("custom-context_data-7", "10 personas")

	assert.Equal(t, "Acme", f.Get(KeyCompanyName))
	assert.Equal(t, "10 personas", f.Get("custom-context_data-7"))
	assert.Equal(t, "", f.Get("missing"))
}

func TestOrNA(t *testing.T) {
	assert.Equal(t, "N/A", OrNA(""))
	assert.Equal(t, "N/A", OrNA("  "))
	assert.Equal(t, "Acme", OrNA("Acme"))
}
