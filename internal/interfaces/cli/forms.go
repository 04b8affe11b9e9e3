package cli

import (
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	appSurvey "github.com/encuestaia/backend/internal/application/survey"
	"github.com/encuestaia/backend/internal/domain/survey"
)

// terminalPrompter 基于 huh 的终端交互
type terminalPrompter struct {
	out io.Writer
}

func newTerminalPrompter(out io.Writer) *terminalPrompter {
	return &terminalPrompter{out: out}
}

// Welcome 实现 prompter
func (p *terminalPrompter) Welcome() (bool, error) {
	start := true
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("encuesta.ia").
				Description("Descubre en 5 minutos cuánto tiempo y dinero pierde tu empresa en tareas que la IA puede automatizar."),
			huh.NewConfirm().
				Title("¿Empezamos?").
				Affirmative("Comenzar").
				Negative("Salir").
				Value(&start),
		),
	).WithShowHelp(false).Run()
	return start, err
}

// answerState 表单绑定的回答
type answerState struct {
	text     string
	choice   string
	selected []string
}

// toInput 转为提交给后端的回答
func (a *answerState) toInput(q *survey.Question) appSurvey.AnswerInput {
	switch q.Type {
	case survey.TypeMultipleChoice, survey.TypeFrequency:
		return appSurvey.AnswerInput{Text: a.choice}
	case survey.TypeCheckboxSuggestions:
		return appSurvey.AnswerInput{Text: strings.TrimSpace(a.text), Selected: a.selected}
	default:
		return appSurvey.AnswerInput{Text: strings.TrimSpace(a.text)}
	}
}

// questionFields 按问题类型构建表单字段
func questionFields(q *survey.Question, state *answerState) []huh.Field {
	title := q.Text
	switch q.Type {
	case survey.TypeMultipleChoice, survey.TypeFrequency:
		return []huh.Field{
			huh.NewSelect[string]().
				Title(title).
				Description(q.Hint).
				Options(huh.NewOptions(q.Options...)...).
				Value(&state.choice),
		}
	case survey.TypeCheckboxSuggestions:
		return []huh.Field{
			huh.NewMultiSelect[string]().
				Title(title).
				Description(q.Hint).
				Options(huh.NewOptions(q.Options...)...).
				Value(&state.selected),
			huh.NewText().
				Title("¿Alguna otra? (opcional)").
				Placeholder("Escribe otras tareas, una por línea").
				Value(&state.text).
				Validate(func(s string) error {
					if len(state.selected) == 0 && !q.Optional {
						return validateRequired(s)
					}
					return nil
				}),
		}
	case survey.TypeTextarea:
		return []huh.Field{
			huh.NewText().
				Title(title).
				Description(q.Hint).
				Value(&state.text).
				Validate(requiredUnless(q.Optional)),
		}
	case survey.TypeNumber:
		return []huh.Field{
			huh.NewInput().
				Title(title).
				Description(q.Hint).
				Value(&state.text).
				Validate(validateNumber(q.Optional)),
		}
	default:
		return []huh.Field{
			huh.NewInput().
				Title(title).
				Description(q.Hint).
				Value(&state.text).
				Validate(requiredUnless(q.Optional)),
		}
	}
}

// Ask 实现 prompter
func (p *terminalPrompter) Ask(q *survey.Question, progress int) (appSurvey.AnswerInput, error) {
	state := &answerState{}
	fields := questionFields(q, state)
	group := huh.NewGroup(fields...).
		Description(subtitleStyle.Render(fmt.Sprintf("Progreso: %d%%", progress)))

	if err := huh.NewForm(group).WithShowHelp(false).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return appSurvey.AnswerInput{}, errAborted
		}
		return appSurvey.AnswerInput{}, err
	}
	return state.toInput(q), nil
}

// Contact 实现 prompter
func (p *terminalPrompter) Contact() (appSurvey.ContactInput, error) {
	var in appSurvey.ContactInput
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("¡Tu informe está casi listo!").
				Description("Déjanos tu email para enviarte el diagnóstico completo."),
			huh.NewInput().
				Title("Email").
				Value(&in.Email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Teléfono (opcional)").
				Value(&in.Phone),
			huh.NewConfirm().
				Title("Acepto la política de privacidad y el tratamiento de mis datos").
				Affirmative("Acepto").
				Negative("No").
				Value(&in.Consent).
				Validate(func(v bool) error {
					if !v {
						return errors.New("debes aceptar los términos para poder generar el informe")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Acepto que me llaméis por teléfono").
				Affirmative("Sí").
				Negative("No").
				Value(&in.PhoneConsent),
		),
	).WithShowHelp(false).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return in, errAborted
	}
	return in, err
}

// Retry 实现 prompter
func (p *terminalPrompter) Retry(err error) bool {
	fmt.Fprintln(p.out, errorStyle.Render("No se pudo obtener respuesta de la IA: "+err.Error()))
	retry := true
	if formErr := huh.NewConfirm().
		Title("¿Reintentar?").
		Affirmative("Reintentar").
		Negative("Salir").
		Value(&retry).
		Run(); formErr != nil {
		return false
	}
	return retry
}

// Wait 实现 prompter
func (p *terminalPrompter) Wait(title string, fn func() error) error {
	var fnErr error
	if err := spinner.New().
		Title(title).
		Action(func() { fnErr = fn() }).
		Run(); err != nil {
		return err
	}
	return fnErr
}

// Notify 实现 prompter
func (p *terminalPrompter) Notify(message string) {
	fmt.Fprintln(p.out, errorStyle.Render(message))
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("por favor, selecciona una opción o escribe una respuesta")
	}
	return nil
}

func requiredUnless(optional bool) func(string) error {
	return func(s string) error {
		if optional {
			return nil
		}
		return validateRequired(s)
	}
}

func validateNumber(optional bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			if optional {
				return nil
			}
			return validateRequired(s)
		}
		if _, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err != nil {
			return errors.New("introduce un número")
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("por favor, introduce tu email para recibir el informe")
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errors.New("el email no es válido")
	}
	return nil
}
