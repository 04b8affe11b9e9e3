package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeType(t *testing.T) {
	assert.Equal(t, TypeTextarea, NormalizeType("textarea"))
	assert.Equal(t, TypeFrequency, NormalizeType("FREQUENCY_QUESTION"))
	assert.Equal(t, TypeText, NormalizeType(""))
	assert.Equal(t, TypeText, NormalizeType("slider"))
}

func TestGeneratedQuestion_ApplyGuardrails(t *testing.T) {
	freq := testCatalog().FrequencyOptions

	tests := []struct {
		name        string
		in          GeneratedQuestion
		wantType    QuestionType
		wantOptions []string
	}{
		{
			name:        "frequency type rewritten",
			in:          GeneratedQuestion{Question: "¿Cada cuánto ocurre?", Phase: PhaseTimeCalculation, Type: TypeFrequency},
			wantType:    TypeMultipleChoice,
			wantOptions: freq,
		},
		{
			name:        "frequency text detected case insensitive",
			in:          GeneratedQuestion{Question: "¿Con Qué Frecuencia gestionas pedidos?", Phase: PhaseTimeCalculation, Type: TypeText},
			wantType:    TypeMultipleChoice,
			wantOptions: freq,
		},
		{
			name:        "model options replaced",
			in:          GeneratedQuestion{Question: "¿Con qué frecuencia?", Phase: PhaseTimeCalculation, Type: TypeMultipleChoice, Options: []string{"A veces"}},
			wantType:    TypeMultipleChoice,
			wantOptions: freq,
		},
		{
			name:     "unknown type coerced",
			in:       GeneratedQuestion{Question: "¿Cuántas personas sois?", Phase: PhaseContextData, Type: "slider"},
			wantType: TypeText,
		},
		{
			name:     "duration untouched",
			in:       GeneratedQuestion{Question: "¿Cuánto tiempo, en horas?", Phase: PhaseTimeCalculation, Type: TypeNumber},
			wantType: TypeNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.in
			g.ApplyGuardrails(freq)
			assert.Equal(t, tt.wantType, g.Type)
			assert.Equal(t, tt.wantOptions, g.Options)
		})
	}
}

func TestGeneratedQuestion_Validate(t *testing.T) {
	tests := []struct {
		name        string
		in          GeneratedQuestion
		allowLegacy bool
		wantErr     bool
	}{
		{"valid text", GeneratedQuestion{Question: "¿Algo?", Phase: PhaseContextData, Type: TypeText}, false, false},
		{"unknown phase", GeneratedQuestion{Question: "¿Algo?", Phase: "smalltalk"}, false, true},
		{"legacy phase rejected", GeneratedQuestion{Question: "¿Algo?", Phase: PhaseReflection}, false, true},
		{"legacy phase allowed", GeneratedQuestion{Question: "¿Algo?", Phase: PhaseReflection}, true, false},
		{"choice without options", GeneratedQuestion{Question: "¿Cuál?", Phase: PhaseProblemDetection, Type: TypeCheckboxSuggestions}, false, true},
		{"result needs nothing", GeneratedQuestion{Phase: PhaseResult}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate(tt.allowLegacy)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShouldFinish(t *testing.T) {
	q := GeneratedQuestion{Question: "¿Algo?", Phase: PhaseContextData}
	assert.False(t, ShouldFinish(&q, 11, 12))
	assert.True(t, ShouldFinish(&q, 12, 12))

	empty := GeneratedQuestion{Question: "  ", Phase: PhaseContextData}
	assert.True(t, ShouldFinish(&empty, 5, 12))

	result := ResultQuestion()
	assert.True(t, ShouldFinish(&result, 5, 12))
}

func TestFallbackQuestion(t *testing.T) {
	g := FallbackQuestion("¿Podrías contarme más?", PhaseTimeCalculation)
	assert.Equal(t, TypeTextarea, g.Type)
	assert.Equal(t, PhaseTimeCalculation, g.Phase)
	assert.True(t, g.Fallback)

	assert.Equal(t, PhaseBasicInfo, FallbackQuestion("x", "bogus").Phase)
}
