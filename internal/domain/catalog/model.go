package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidParameterDefinition indicates malformed reference data in the
// test catalog. It is fatal at load time: a definition carrying even one bad
// parameter is rejected as a whole.
var ErrInvalidParameterDefinition = errors.New("invalid parameter definition")

// SampleType identifies the specimen a test is performed on.
type SampleType string

const (
	SampleBlood  SampleType = "blood"
	SampleUrine  SampleType = "urine"
	SampleStool  SampleType = "stool"
	SampleTissue SampleType = "tissue"
	SampleFluid  SampleType = "fluid"
	SampleOther  SampleType = "other"
)

var validSampleTypes = map[SampleType]bool{
	SampleBlood: true, SampleUrine: true, SampleStool: true,
	SampleTissue: true, SampleFluid: true, SampleOther: true,
}

// ParameterDefinition is one measured value within a test, e.g. "Hemoglobin"
// within a Complete Blood Count. Its reference spec is either a numeric range
// (RefMin/RefMax, at least one present) or free text; when both are present
// the numeric range wins for classification and the text is display-only.
// Critical bounds are independent of the normal range and may be absent.
type ParameterDefinition struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Code          *string   `json:"code,omitempty"`
	Unit          *string   `json:"unit,omitempty"`
	SortOrder     int       `json:"sort_order"`
	ReferenceText *string   `json:"reference_text,omitempty"`
	RefMin        *float64  `json:"ref_min,omitempty"`
	RefMax        *float64  `json:"ref_max,omitempty"`
	CriticalMin   *float64  `json:"critical_min,omitempty"`
	CriticalMax   *float64  `json:"critical_max,omitempty"`
}

// HasNumericRange reports whether the parameter carries a numeric reference
// range usable for classification.
func (p *ParameterDefinition) HasNumericRange() bool {
	return p.RefMin != nil || p.RefMax != nil
}

func (p *ParameterDefinition) validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: parameter name is required", ErrInvalidParameterDefinition)
	}
	if !p.HasNumericRange() && p.ReferenceText == nil {
		return fmt.Errorf("%w: parameter %q has neither a numeric range nor reference text", ErrInvalidParameterDefinition, p.Name)
	}
	if p.RefMin != nil && p.RefMax != nil && *p.RefMin > *p.RefMax {
		return fmt.Errorf("%w: parameter %q has ref_min %g above ref_max %g", ErrInvalidParameterDefinition, p.Name, *p.RefMin, *p.RefMax)
	}
	if p.CriticalMin != nil && p.CriticalMax != nil && *p.CriticalMin > *p.CriticalMax {
		return fmt.Errorf("%w: parameter %q has critical_min %g above critical_max %g", ErrInvalidParameterDefinition, p.Name, *p.CriticalMin, *p.CriticalMax)
	}
	return nil
}

// TestDefinition is a catalog entry for an orderable laboratory test.
// Definitions are snapshotted into orders at order time, so editing a
// definition never alters historical orders.
type TestDefinition struct {
	ID            uuid.UUID             `db:"id" json:"id"`
	Code          string                `db:"code" json:"code"`
	Name          string                `db:"name" json:"name"`
	Category      string                `db:"category" json:"category"`
	SampleType    SampleType            `db:"sample_type" json:"sample_type"`
	PriceMinor    int64                 `db:"price_minor" json:"price_minor"`
	DurationHours int                   `db:"duration_hours" json:"duration_hours"`
	Active        bool                  `db:"active" json:"active"`
	Parameters    []ParameterDefinition `db:"parameters" json:"parameters"`
	CreatedAt     time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time             `db:"updated_at" json:"updated_at"`
}

// Validate checks the definition and every parameter's reference spec.
// A definition with zero parameters is legal: such tests take a single
// free-text result and skip numeric classification entirely.
func (d *TestDefinition) Validate() error {
	if d.Code == "" {
		return fmt.Errorf("code is required")
	}
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validSampleTypes[d.SampleType] {
		return fmt.Errorf("invalid sample type: %s", d.SampleType)
	}
	if d.PriceMinor < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if d.DurationHours <= 0 {
		return fmt.Errorf("duration must be a positive number of hours")
	}
	for i := range d.Parameters {
		if err := d.Parameters[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

// Parameter returns the parameter with the given ID, or nil.
func (d *TestDefinition) Parameter(id uuid.UUID) *ParameterDefinition {
	for i := range d.Parameters {
		if d.Parameters[i].ID == id {
			return &d.Parameters[i]
		}
	}
	return nil
}
