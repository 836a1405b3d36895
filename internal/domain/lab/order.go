package lab

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/catalog"
)

// NewOrder builds a pending order from catalog-selected tests, snapshotting
// each definition. The total is the sum of snapshot prices in minor units.
func NewOrder(orderNumber string, patientID uuid.UUID, defs []*catalog.TestDefinition, priority Priority, doctorID *uuid.UUID) (*LabOrder, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyTestSelection
	}
	if priority == "" {
		priority = PriorityRoutine
	}

	order := &LabOrder{
		ID:                 uuid.New(),
		OrderNumber:        orderNumber,
		PatientID:          patientID,
		RequestingDoctorID: doctorID,
		Priority:           priority,
		Status:             StatusPending,
		CreatedAt:          time.Now().UTC(),
		VersionID:          1,
	}
	for _, def := range defs {
		order.Details = append(order.Details, &OrderDetail{
			ID:   uuid.New(),
			Test: SnapshotDefinition(def),
		})
		order.TotalAmountMinor += def.PriceMinor
	}
	return order, nil
}

// RecordResult upserts one value against an ordered test and returns its
// classification. Re-recording the same parameter overwrites the previous
// value. As a documented side effect, the first write against a pending or
// samples_collected order advances it to processing.
//
// parameterID must be set when the test defines parameters and must be nil
// for a parameter-less test; a mismatch fails with ErrParameterRequired.
func (o *LabOrder) RecordResult(detailID uuid.UUID, parameterID *uuid.UUID, valueText string, notes *string) (Classification, error) {
	if o.Status.Terminal() {
		return "", ErrOrderAlreadyFinalized
	}

	detail := o.Detail(detailID)
	if detail == nil {
		return "", ErrUnknownDetail
	}

	var param ParameterSnapshot
	if len(detail.Test.Parameters) > 0 {
		if parameterID == nil {
			return "", ErrParameterRequired
		}
		p := detail.Test.Parameter(*parameterID)
		if p == nil {
			return "", ErrUnknownParameter
		}
		param = *p
	} else if parameterID != nil {
		return "", ErrParameterRequired
	}

	detail.upsertResult(RecordedResult{
		ParameterID: parameterID,
		ValueText:   valueText,
		Notes:       notes,
		RecordedAt:  time.Now().UTC(),
	})

	if o.Status == StatusPending || o.Status == StatusSamplesCollected {
		o.Status = StatusProcessing
	}

	return Classify(param, valueText), nil
}

// Transition applies a lifecycle change. Completing stamps the order with
// the acting user and time; cancelling freezes it. Completion never checks
// that every parameter has a value — partial result sets are valid reports.
// From pending or samples_collected, completing is only allowed while the
// order has no recorded results.
func (o *LabOrder) Transition(to Status, actorID string) error {
	if !to.Valid() {
		return ErrIllegalTransition
	}
	if err := CanTransition(o.Status, to); err != nil {
		return err
	}
	if to == StatusCompleted && o.Status != StatusProcessing && o.resultCount() > 0 {
		return ErrIllegalTransition
	}

	o.Status = to
	switch to {
	case StatusCompleted:
		now := time.Now().UTC()
		o.CompletedAt = &now
		if actorID != "" {
			o.CompletedBy = &actorID
		}
	case StatusCancelled:
		// completion stamps stay unset; cancelled orders were never reported
	}
	return nil
}

// Summarize recomputes classification counts from the snapshot thresholds
// and current values. It has no side effects.
func (o *LabOrder) Summarize() OrderSummary {
	s := OrderSummary{
		OrderID:          o.ID,
		OrderNumber:      o.OrderNumber,
		Status:           o.Status,
		Priority:         o.Priority,
		IsPaid:           o.IsPaid,
		TotalAmountMinor: o.TotalAmountMinor,
		TestCount:        len(o.Details),
		CompletedAt:      o.CompletedAt,
		CompletedBy:      o.CompletedBy,
	}
	for _, d := range o.Details {
		expected := len(d.Test.Parameters)
		if expected == 0 {
			expected = 1
		}
		s.ExpectedResults += expected
		s.RecordedResults += len(d.Results)

		for i := range d.Results {
			r := &d.Results[i]
			var param ParameterSnapshot
			if r.ParameterID != nil {
				if p := d.Test.Parameter(*r.ParameterID); p != nil {
					param = *p
				}
			}
			switch Classify(param, r.ValueText) {
			case ClassNormal:
				s.NormalCount++
			case ClassAbnormal:
				s.AbnormalCount++
			case ClassCritical:
				s.CriticalCount++
			case ClassNotEvaluable:
				s.NotEvaluable++
			}
		}
	}
	return s
}
