package lab

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Report is a printable projection of one order. It is assembled on demand
// from the order's snapshots and recorded values and holds no state of its
// own.
type Report struct {
	OrderID     uuid.UUID     `json:"order_id"`
	OrderNumber string        `json:"order_number"`
	PatientID   uuid.UUID     `json:"patient_id"`
	Priority    Priority      `json:"priority"`
	Status      Status        `json:"status"`
	GeneratedAt time.Time     `json:"generated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	CompletedBy *string       `json:"completed_by,omitempty"`
	Sections    []ReportSection `json:"sections"`
	Summary     OrderSummary  `json:"summary"`
}

// ReportSection covers one ordered test.
type ReportSection struct {
	DetailID   uuid.UUID    `json:"detail_id"`
	TestCode   string       `json:"test_code"`
	TestName   string       `json:"test_name"`
	SampleType string       `json:"sample_type"`
	Rows       []ReportRow  `json:"rows"`
}

// ReportRow is one parameter line. Reference describes the expected range in
// display form; Value is blank for parameters with nothing recorded yet.
type ReportRow struct {
	ParameterName  string         `json:"parameter_name"`
	Value          string         `json:"value"`
	Unit           string         `json:"unit"`
	Reference      string         `json:"reference"`
	Classification Classification `json:"classification"`
	Notes          *string        `json:"notes,omitempty"`
	RecordedAt     *time.Time     `json:"recorded_at,omitempty"`
}

// BuildReport assembles the printable report for one order. Every snapshot
// parameter gets a row whether or not a value has been recorded, so a
// partially processed order prints with visible gaps.
func (s *Service) BuildReport(ctx context.Context, orderID uuid.UUID) (*Report, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return buildReport(order, time.Now().UTC()), nil
}

func buildReport(order *LabOrder, now time.Time) *Report {
	rep := &Report{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		PatientID:   order.PatientID,
		Priority:    order.Priority,
		Status:      order.Status,
		GeneratedAt: now,
		CompletedAt: order.CompletedAt,
		CompletedBy: order.CompletedBy,
		Summary:     order.Summarize(),
	}

	for _, d := range order.Details {
		section := ReportSection{
			DetailID:   d.ID,
			TestCode:   d.Test.Code,
			TestName:   d.Test.Name,
			SampleType: string(d.Test.SampleType),
		}
		if len(d.Test.Parameters) == 0 {
			// Tests with no structured parameters still show whatever was
			// recorded free-form against the detail.
			for i := range d.Results {
				r := &d.Results[i]
				section.Rows = append(section.Rows, ReportRow{
					ParameterName:  d.Test.Name,
					Value:          r.ValueText,
					Classification: ClassNormal,
					Notes:          r.Notes,
					RecordedAt:     &r.RecordedAt,
				})
			}
		}
		for i := range d.Test.Parameters {
			p := &d.Test.Parameters[i]
			row := ReportRow{
				ParameterName:  p.Name,
				Unit:           deref(p.Unit),
				Reference:      referenceDisplay(p),
				Classification: ClassNotEvaluable,
			}
			if r := d.result(&p.ID); r != nil {
				row.Value = r.ValueText
				row.Notes = r.Notes
				row.RecordedAt = &r.RecordedAt
				row.Classification = Classify(*p, r.ValueText)
			}
			section.Rows = append(section.Rows, row)
		}
		rep.Sections = append(rep.Sections, section)
	}
	return rep
}

// referenceDisplay renders the expected range for print. Free-text reference
// wins when present; otherwise the numeric bounds are formatted, one-sided
// ranges included.
func referenceDisplay(p *ParameterSnapshot) string {
	if p.ReferenceText != nil && *p.ReferenceText != "" {
		return *p.ReferenceText
	}
	switch {
	case p.RefMin != nil && p.RefMax != nil:
		return fmt.Sprintf("%g - %g", *p.RefMin, *p.RefMax)
	case p.RefMin != nil:
		return fmt.Sprintf(">= %g", *p.RefMin)
	case p.RefMax != nil:
		return fmt.Sprintf("<= %g", *p.RefMax)
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
