package lab

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/catalog"
)

// Priority of a lab order.
type Priority string

const (
	PriorityRoutine Priority = "routine"
	PriorityUrgent  Priority = "urgent"
)

// ParameterSnapshot is a parameter definition frozen into an order.
type ParameterSnapshot struct {
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

// TestSnapshot is the catalog definition of an ordered test as it stood at
// order time. Later catalog edits never reach existing orders.
type TestSnapshot struct {
	DefinitionID  uuid.UUID           `json:"definition_id"`
	Code          string              `json:"code"`
	Name          string              `json:"name"`
	Category      string              `json:"category"`
	SampleType    catalog.SampleType  `json:"sample_type"`
	PriceMinor    int64               `json:"price_minor"`
	DurationHours int                 `json:"duration_hours"`
	Parameters    []ParameterSnapshot `json:"parameters"`
}

// SnapshotDefinition copies a catalog definition into an order-local snapshot.
func SnapshotDefinition(def *catalog.TestDefinition) TestSnapshot {
	snap := TestSnapshot{
		DefinitionID:  def.ID,
		Code:          def.Code,
		Name:          def.Name,
		Category:      def.Category,
		SampleType:    def.SampleType,
		PriceMinor:    def.PriceMinor,
		DurationHours: def.DurationHours,
	}
	for _, p := range def.Parameters {
		snap.Parameters = append(snap.Parameters, ParameterSnapshot{
			ID:            p.ID,
			Name:          p.Name,
			Code:          p.Code,
			Unit:          p.Unit,
			SortOrder:     p.SortOrder,
			ReferenceText: p.ReferenceText,
			RefMin:        p.RefMin,
			RefMax:        p.RefMax,
			CriticalMin:   p.CriticalMin,
			CriticalMax:   p.CriticalMax,
		})
	}
	return snap
}

// Parameter returns the snapshot parameter with the given ID, or nil.
func (t *TestSnapshot) Parameter(id uuid.UUID) *ParameterSnapshot {
	for i := range t.Parameters {
		if t.Parameters[i].ID == id {
			return &t.Parameters[i]
		}
	}
	return nil
}

// RecordedResult is one value recorded against an ordered test. ParameterID
// is nil for the single whole-test result of a parameter-less test. Values
// are stored as text so qualitative results sit next to numeric ones.
type RecordedResult struct {
	ParameterID *uuid.UUID `json:"parameter_id,omitempty"`
	ValueText   string     `json:"value_text"`
	Notes       *string    `json:"notes,omitempty"`
	RecordedAt  time.Time  `json:"recorded_at"`
}

// OrderDetail is one ordered test within a lab order. It owns at most one
// recorded result per parameter (exactly one, keyed nil, for a
// parameter-less test).
type OrderDetail struct {
	ID      uuid.UUID        `json:"id"`
	Test    TestSnapshot     `json:"test"`
	Notes   *string          `json:"notes,omitempty"`
	Results []RecordedResult `json:"results"`
}

func (d *OrderDetail) result(parameterID *uuid.UUID) *RecordedResult {
	for i := range d.Results {
		r := &d.Results[i]
		if parameterID == nil && r.ParameterID == nil {
			return r
		}
		if parameterID != nil && r.ParameterID != nil && *r.ParameterID == *parameterID {
			return r
		}
	}
	return nil
}

// upsertResult overwrites any existing result for the same parameter key.
func (d *OrderDetail) upsertResult(res RecordedResult) {
	if existing := d.result(res.ParameterID); existing != nil {
		*existing = res
		return
	}
	d.Results = append(d.Results, res)
}

// LabOrder is the aggregate root for one laboratory order.
type LabOrder struct {
	ID                 uuid.UUID      `json:"id"`
	OrderNumber        string         `json:"order_number"`
	PatientID          uuid.UUID      `json:"patient_id"`
	RequestingDoctorID *uuid.UUID     `json:"requesting_doctor_id,omitempty"`
	Priority           Priority       `json:"priority"`
	Status             Status         `json:"status"`
	Notes              *string        `json:"notes,omitempty"`
	IsPaid             bool           `json:"is_paid"`
	TotalAmountMinor   int64          `json:"total_amount_minor"`
	CreatedAt          time.Time      `json:"created_at"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	CompletedBy        *string        `json:"completed_by,omitempty"`
	VersionID          int            `json:"version_id"`
	Details            []*OrderDetail `json:"details"`
}

// GetVersionID returns the current version.
func (o *LabOrder) GetVersionID() int { return o.VersionID }

// SetVersionID sets the current version.
func (o *LabOrder) SetVersionID(v int) { o.VersionID = v }

// Detail returns the order detail with the given ID, or nil.
func (o *LabOrder) Detail(id uuid.UUID) *OrderDetail {
	for _, d := range o.Details {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (o *LabOrder) resultCount() int {
	n := 0
	for _, d := range o.Details {
		n += len(d.Results)
	}
	return n
}

// OrderSummary is a read-only projection of an order for reporting.
type OrderSummary struct {
	OrderID          uuid.UUID  `json:"order_id"`
	OrderNumber      string     `json:"order_number"`
	Status           Status     `json:"status"`
	Priority         Priority   `json:"priority"`
	IsPaid           bool       `json:"is_paid"`
	TotalAmountMinor int64      `json:"total_amount_minor"`
	TestCount        int        `json:"test_count"`
	ExpectedResults  int        `json:"expected_results"`
	RecordedResults  int        `json:"recorded_results"`
	NormalCount      int        `json:"normal_count"`
	AbnormalCount    int        `json:"abnormal_count"`
	CriticalCount    int        `json:"critical_count"`
	NotEvaluable     int        `json:"not_evaluable_count"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CompletedBy      *string    `json:"completed_by,omitempty"`
}
