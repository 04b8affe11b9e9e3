package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Question   string   `json:"question"`
	Phase      string   `json:"phase"`
	Options    []string `json:"options"`
	Confidence float64  `json:"confidenceScore"`
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want sample
	}{
		{
			name: "plain object",
			raw:  `{"question":"¿Hola?","phase":"basic_info"}`,
			want: sample{Question: "¿Hola?", Phase: "basic_info"},
		},
		{
			name: "code fence with prose",
			raw:  "Aquí tienes:\n```json\n{\"question\":\"¿Qué tareas?\",\"phase\":\"problem_detection\",\"options\":[\"Pedidos\"]}\n```\nGracias",
			want: sample{Question: "¿Qué tareas?", Phase: "problem_detection", Options: []string{"Pedidos"}},
		},
		{
			name: "comments outside strings",
			raw:  "{\n  // siguiente pregunta\n  \"question\": \"http://x.es // no es comentario\", /* fase */ \"phase\": \"context_data\"\n}",
			want: sample{Question: "http://x.es // no es comentario", Phase: "context_data"},
		},
		{
			name: "quote and brace inside comment",
			raw:  "{\n  \"question\": \"¿Cuántas horas?\", // la \"pregunta\" }\n  \"phase\": \"time_calculation\"\n}",
			want: sample{Question: "¿Cuántas horas?", Phase: "time_calculation"},
		},
		{
			name: "prose with quote before object",
			raw:  "Respuesta \"final\":\n{\"question\":\"¿Sector?\", /* } */ \"phase\":\"basic_info\"}",
			want: sample{Question: "¿Sector?", Phase: "basic_info"},
		},
		{
			name: "leading decimal",
			raw:  `{"question":"a","phase":"result","confidenceScore": .85}`,
			want: sample{Question: "a", Phase: "result", Confidence: 0.85},
		},
		{
			name: "nested braces in strings",
			raw:  `{"question":"usa {llaves} y \"comillas\"","phase":"basic_info"} trailing {"x":1}`,
			want: sample{Question: `usa {llaves} y "comillas"`, Phase: "basic_info"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON[sample](tt.raw, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_Errors(t *testing.T) {
	_, err := ExtractJSON[sample]("no json here", nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)

	_, err = ExtractJSON[sample](`{"question": "unterminated`, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)

	_, err = ExtractJSON[sample](`{"question": 5}`, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)

	_, err = ExtractJSON(`{"question":"x","phase":"nope"}`, func(s sample) error {
		if s.Phase != "basic_info" {
			return errors.New("bad phase")
		}
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.Contains(t, err.Error(), "bad phase")
}
