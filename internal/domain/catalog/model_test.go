package catalog

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func validDefinition() *TestDefinition {
	return &TestDefinition{
		Code:          "CBC",
		Name:          "Complete Blood Count",
		Category:      "hematology",
		SampleType:    SampleBlood,
		PriceMinor:    2500,
		DurationHours: 4,
		Parameters: []ParameterDefinition{
			{ID: uuid.New(), Name: "Hemoglobin", Unit: str("g/dL"), SortOrder: 1, RefMin: f64(12), RefMax: f64(16)},
			{ID: uuid.New(), Name: "Blood Group", SortOrder: 2, ReferenceText: str("A/B/AB/O")},
		},
	}
}

func TestValidateAcceptsWellFormedDefinition(t *testing.T) {
	if err := validDefinition().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRequiresCodeAndName(t *testing.T) {
	def := validDefinition()
	def.Code = ""
	if err := def.Validate(); err == nil {
		t.Error("expected error for missing code")
	}
	def = validDefinition()
	def.Name = ""
	if err := def.Validate(); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestValidateRejectsBadSampleType(t *testing.T) {
	def := validDefinition()
	def.SampleType = "plasma"
	if err := def.Validate(); err == nil {
		t.Error("expected error for unknown sample type")
	}
}

func TestValidateRejectsNonPositiveDuration(t *testing.T) {
	def := validDefinition()
	def.DurationHours = 0
	if err := def.Validate(); err == nil {
		t.Error("expected error for zero duration")
	}
}

func TestValidateParameterWithoutReferenceSpec(t *testing.T) {
	def := validDefinition()
	def.Parameters = append(def.Parameters, ParameterDefinition{ID: uuid.New(), Name: "WBC"})
	err := def.Validate()
	if !errors.Is(err, ErrInvalidParameterDefinition) {
		t.Errorf("expected ErrInvalidParameterDefinition, got %v", err)
	}
}

func TestValidateParameterWithContradictoryRange(t *testing.T) {
	def := validDefinition()
	def.Parameters = []ParameterDefinition{
		{ID: uuid.New(), Name: "Glucose", RefMin: f64(110), RefMax: f64(70)},
	}
	err := def.Validate()
	if !errors.Is(err, ErrInvalidParameterDefinition) {
		t.Errorf("expected ErrInvalidParameterDefinition, got %v", err)
	}
}

func TestValidateParameterWithContradictoryCriticalRange(t *testing.T) {
	def := validDefinition()
	def.Parameters = []ParameterDefinition{
		{ID: uuid.New(), Name: "Glucose", RefMin: f64(70), CriticalMin: f64(500), CriticalMax: f64(40)},
	}
	err := def.Validate()
	if !errors.Is(err, ErrInvalidParameterDefinition) {
		t.Errorf("expected ErrInvalidParameterDefinition, got %v", err)
	}
}

func TestValidateAllowsParameterlessDefinition(t *testing.T) {
	def := validDefinition()
	def.Parameters = nil
	if err := def.Validate(); err != nil {
		t.Errorf("unexpected error for parameter-less test: %v", err)
	}
}

func TestValidateOneSidedRangeIsEnough(t *testing.T) {
	def := validDefinition()
	def.Parameters = []ParameterDefinition{
		{ID: uuid.New(), Name: "ESR", RefMax: f64(20)},
	}
	if err := def.Validate(); err != nil {
		t.Errorf("unexpected error for one-sided range: %v", err)
	}
}

func TestParameterLookup(t *testing.T) {
	def := validDefinition()
	want := def.Parameters[1].ID
	got := def.Parameter(want)
	if got == nil || got.Name != "Blood Group" {
		t.Errorf("expected Blood Group parameter, got %+v", got)
	}
	if def.Parameter(uuid.New()) != nil {
		t.Error("expected nil for unknown parameter id")
	}
}
