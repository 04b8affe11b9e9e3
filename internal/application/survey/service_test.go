package survey

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/encuestaia/backend/internal/domain/events"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/encuestaia/backend/internal/infrastructure/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	checkboxOutput = `{"question":"¿Qué tareas te hacen perder más tiempo?","phase":"problem_detection","type":"checkbox-suggestions","options":["Gestión de citas","Informes médicos"]}`
	resultOutput   = `{"question":"","phase":"result"}`
)

// answerOpening 回答四个开场问题
func answerOpening(t *testing.T, f *fixture, id string) *survey.Session {
	t.Helper()
	var s *survey.Session
	var err error
	for _, a := range []string{"Ana", "Gerente", "Clínica Sonrisas", "Clínica dental"} {
		s, err = f.service.Answer(context.Background(), id, AnswerInput{Text: a})
		require.NoError(t, err)
	}
	return s
}

func TestService_FullFlow(t *testing.T) {
	f := newFixture(checkboxOutput, resultOutput, "# Informe para Ana")
	ctx := context.Background()

	s, err := f.service.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, survey.StageWelcome, s.Stage)
	assert.Len(t, s.Questions, 4)

	_, err = f.service.Answer(ctx, s.ID, AnswerInput{Text: "Ana"})
	assert.ErrorIs(t, err, survey.ErrNoCurrentQuestion)

	s, err = f.service.Begin(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, survey.StageSurvey, s.Stage)

	s = answerOpening(t, f, s.ID)
	assert.Equal(t, 1, f.provider.calls())
	require.Len(t, s.Questions, 5)
	current, err := s.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, "q-ai-5", current.ID)
	assert.Equal(t, "custom-problem_detection-5", current.Key)
	assert.Equal(t, survey.TypeCheckboxSuggestions, current.Type)
	assert.Equal(t, "Clínica dental", s.FormData.Sector)

	s, err = f.service.Answer(ctx, s.ID, AnswerInput{
		QuestionID: "q-ai-5",
		Selected:   []string{"Gestión de citas"},
		Text:       "Facturación\n\nGestión de citas",
	})
	require.NoError(t, err)
	assert.Equal(t, survey.StageReport, s.Stage)
	assert.Equal(t, "Gestión de citas, Facturación", s.FormData.Answers["custom-problem_detection-5"])
	assert.Len(t, s.History, 5)

	_, err = f.service.GenerateReport(ctx, s.ID)
	assert.ErrorIs(t, err, survey.ErrEmailRequired)

	s, err = f.service.SubmitContact(ctx, s.ID, ContactInput{Email: " ana@example.com ", Consent: false})
	require.NoError(t, err)
	_, err = f.service.GenerateReport(ctx, s.ID)
	assert.ErrorIs(t, err, survey.ErrConsentRequired)

	_, err = f.service.SubmitContact(ctx, s.ID, ContactInput{Email: "ana@example.com", Phone: "600000000", Consent: true, PhoneConsent: true})
	require.NoError(t, err)

	s, err = f.service.GenerateReport(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Informe para Ana", s.Report)
	assert.True(t, s.IsCompleted())
	assert.Equal(t, 3, f.provider.calls())

	// 重复生成直接返回已保存的报告
	s, err = f.service.GenerateReport(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Informe para Ana", s.Report)
	assert.Equal(t, 3, f.provider.calls())

	export, err := f.service.Export(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", export.FormData.UserEmail)
	assert.Len(t, export.ConversationHistory, 5)

	assert.Equal(t, []events.EventType{
		events.SurveyStarted,
		events.SurveyQuestionGenerated,
		events.SurveyFinished,
		events.SurveyReportGenerated,
	}, f.bus.types())

	assert.Len(t, f.calls.all(), 3)
}

func TestService_MaxHistoryFinishesWithoutLLM(t *testing.T) {
	f := newFixture(`{"question":"¿Cuántas horas?","phase":"time_calculation","type":"number"}`)
	c := *f.catalog
	c.Limits = survey.Limits{MaxHistory: 5, HardLimit: 6}
	f.service.catalogs = staticCatalog{&c}
	ctx := context.Background()

	s, err := f.service.Start(ctx)
	require.NoError(t, err)
	_, err = f.service.Begin(ctx, s.ID)
	require.NoError(t, err)
	answerOpening(t, f, s.ID)

	s, err = f.service.Answer(ctx, s.ID, AnswerInput{Text: "3"})
	require.NoError(t, err)
	assert.Equal(t, survey.StageReport, s.Stage)
	assert.Equal(t, 1, f.provider.calls())
}

func TestService_StaleAnswer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s, _ := f.service.Start(ctx)
	_, _ = f.service.Begin(ctx, s.ID)

	_, err := f.service.Answer(ctx, s.ID, AnswerInput{QuestionID: "q1", Text: "Ana"})
	require.NoError(t, err)

	_, err = f.service.Answer(ctx, s.ID, AnswerInput{QuestionID: "q1", Text: "Ana"})
	assert.ErrorIs(t, err, survey.ErrStaleAnswer)

	_, err = f.service.Answer(ctx, s.ID, AnswerInput{QuestionID: "q2", Text: "  "})
	assert.ErrorIs(t, err, survey.ErrAnswerRequired)
}

func TestService_LLMFailureKeepsState(t *testing.T) {
	f := newFixture()
	f.provider.err = llm.ErrUnavailable
	ctx := context.Background()

	s, _ := f.service.Start(ctx)
	_, _ = f.service.Begin(ctx, s.ID)
	for _, a := range []string{"Ana", "Gerente", "Clínica Sonrisas"} {
		_, err := f.service.Answer(ctx, s.ID, AnswerInput{Text: a})
		require.NoError(t, err)
	}

	_, err := f.service.Answer(ctx, s.ID, AnswerInput{QuestionID: "q4", Text: "Salud"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrUnavailable))

	stored, err := f.service.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, stored.History, 3)
	assert.Equal(t, 3, stored.CurrentIndex)

	// 恢复后可以重新提交同一回答
	f.provider.mu.Lock()
	f.provider.err = nil
	f.provider.responses = []string{checkboxOutput}
	f.provider.mu.Unlock()

	s, err = f.service.Answer(ctx, s.ID, AnswerInput{QuestionID: "q4", Text: "Salud"})
	require.NoError(t, err)
	assert.Len(t, s.History, 4)
	assert.Len(t, s.Questions, 5)
}

func TestService_ConcurrentDuplicateAnswers(t *testing.T) {
	f := newFixture(checkboxOutput)
	f.provider.delay = 100 * time.Millisecond
	ctx := context.Background()

	s, _ := f.service.Start(ctx)
	_, _ = f.service.Begin(ctx, s.ID)
	for _, a := range []string{"Ana", "Gerente", "Clínica Sonrisas"} {
		_, err := f.service.Answer(ctx, s.ID, AnswerInput{Text: a})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Answer(ctx, s.ID, AnswerInput{QuestionID: "q4", Text: "Salud"})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, survey.ErrStaleAnswer)
		}
	}
	assert.Equal(t, 1, f.provider.calls())

	stored, err := f.service.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, stored.History, 4)
}

func TestService_ConcurrentDifferentAnswers(t *testing.T) {
	f := newFixture(checkboxOutput)
	f.provider.delay = 100 * time.Millisecond
	ctx := context.Background()

	s, _ := f.service.Start(ctx)
	_, _ = f.service.Begin(ctx, s.ID)
	for _, a := range []string{"Ana", "Gerente", "Clínica Sonrisas"} {
		_, err := f.service.Answer(ctx, s.ID, AnswerInput{Text: a})
		require.NoError(t, err)
	}

	answers := []string{"Salud", "Logística"}
	errs := make([]error, len(answers))
	var wg sync.WaitGroup
	for i, a := range answers {
		wg.Add(1)
		go func(i int, a string) {
			defer wg.Done()
			_, errs[i] = f.service.Answer(ctx, s.ID, AnswerInput{QuestionID: "q4", Text: a})
		}(i, a)
	}
	wg.Wait()

	winner := ""
	stale := 0
	for i, err := range errs {
		if err == nil {
			winner = answers[i]
			continue
		}
		assert.ErrorIs(t, err, survey.ErrStaleAnswer)
		stale++
	}
	require.NotEmpty(t, winner)
	assert.Equal(t, 1, stale)
	assert.Equal(t, 1, f.provider.calls())

	stored, err := f.service.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, stored.FormData.Sector)
	assert.Len(t, stored.History, 4)
}

func TestService_ResetWaitsForInFlightAnswer(t *testing.T) {
	f := newFixture(checkboxOutput)
	f.provider.delay = 100 * time.Millisecond
	ctx := context.Background()

	s, _ := f.service.Start(ctx)
	_, _ = f.service.Begin(ctx, s.ID)
	for _, a := range []string{"Ana", "Gerente", "Clínica Sonrisas"} {
		_, err := f.service.Answer(ctx, s.ID, AnswerInput{Text: a})
		require.NoError(t, err)
	}

	answered := make(chan error, 1)
	go func() {
		_, err := f.service.Answer(ctx, s.ID, AnswerInput{QuestionID: "q4", Text: "Salud"})
		answered <- err
	}()
	require.Eventually(t, func() bool { return f.provider.calls() == 0 && f.service.locks.size() == 1 },
		time.Second, time.Millisecond)

	reset, err := f.service.Reset(ctx, s.ID)
	require.NoError(t, err)
	require.NoError(t, <-answered)
	assert.Equal(t, survey.StageWelcome, reset.Stage)

	stored, err := f.service.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, survey.StageWelcome, stored.Stage)
	assert.Empty(t, stored.History)
	assert.Empty(t, stored.FormData.UserName)
}

func TestService_ConcurrentReportGeneratesOnce(t *testing.T) {
	f := newFixture(resultOutput, "# Informe para Ana")
	ctx := context.Background()

	s, _ := f.service.Start(ctx)
	_, _ = f.service.Begin(ctx, s.ID)
	s = answerOpening(t, f, s.ID)
	require.Equal(t, survey.StageReport, s.Stage)
	_, err := f.service.SubmitContact(ctx, s.ID, ContactInput{Email: "ana@example.com", Consent: true})
	require.NoError(t, err)

	f.provider.delay = 100 * time.Millisecond
	reports := make([]string, 3)
	errs := make([]error, len(reports))
	var wg sync.WaitGroup
	for i := range reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := f.service.GenerateReport(ctx, s.ID)
			errs[i] = err
			if err == nil {
				reports[i] = got.Report
			}
		}(i)
	}
	wg.Wait()

	for i := range reports {
		require.NoError(t, errs[i])
		assert.Equal(t, "# Informe para Ana", reports[i])
	}
	assert.Equal(t, 2, f.provider.calls())

	generated := 0
	for _, typ := range f.bus.types() {
		if typ == events.SurveyReportGenerated {
			generated++
		}
	}
	assert.Equal(t, 1, generated)
}

func TestService_ResetKeepsID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s, _ := f.service.Start(ctx)
	_, _ = f.service.Begin(ctx, s.ID)
	_, err := f.service.Answer(ctx, s.ID, AnswerInput{Text: "Ana"})
	require.NoError(t, err)

	reset, err := f.service.Reset(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, reset.ID)
	assert.Equal(t, survey.StageWelcome, reset.Stage)
	assert.Empty(t, reset.History)
	assert.Empty(t, reset.FormData.UserName)
	assert.Contains(t, f.bus.types(), events.SurveyReset)
}

func TestService_NotFoundAndStage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.Get(ctx, "missing")
	assert.ErrorIs(t, err, survey.ErrSessionNotFound)
	_, err = f.service.Answer(ctx, "missing", AnswerInput{Text: "x"})
	assert.ErrorIs(t, err, survey.ErrSessionNotFound)

	s, _ := f.service.Start(ctx)
	_, err = f.service.SubmitContact(ctx, s.ID, ContactInput{Email: "a@b.c", Consent: true})
	assert.ErrorIs(t, err, survey.ErrInvalidStage)
}

func TestService_List(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.service.Start(ctx)
		require.NoError(t, err)
	}

	res, err := f.service.List(ctx, survey.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Sessions, 3)

	completed := true
	res, err = f.service.List(ctx, survey.ListFilter{Completed: &completed})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
}
