package lab

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/catalog"
)

type Service struct {
	orders  Repository
	catalog catalog.Repository
}

func NewService(orders Repository, cat catalog.Repository) *Service {
	return &Service{orders: orders, catalog: cat}
}

// CreateOrderInput carries everything needed to open a lab order.
type CreateOrderInput struct {
	PatientID          uuid.UUID  `json:"patient_id"`
	TestCodes          []string   `json:"test_codes"`
	Priority           Priority   `json:"priority"`
	RequestingDoctorID *uuid.UUID `json:"requesting_doctor_id,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
}

// CreateOrder resolves the selected catalog codes, snapshots them into a new
// pending order and persists it.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*LabOrder, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if len(in.TestCodes) == 0 {
		return nil, ErrEmptyTestSelection
	}

	defs := make([]*catalog.TestDefinition, 0, len(in.TestCodes))
	for _, code := range in.TestCodes {
		def, err := s.catalog.GetByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("resolve test code %q: %w", code, err)
		}
		if !def.Active {
			return nil, fmt.Errorf("test %q is no longer orderable", code)
		}
		defs = append(defs, def)
	}

	orderNumber, err := s.orders.NextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order, err := NewOrder(orderNumber, in.PatientID, defs, in.Priority, in.RequestingDoctorID)
	if err != nil {
		return nil, err
	}
	order.Notes = in.Notes

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// RecordResultInput identifies one value to record.
type RecordResultInput struct {
	DetailID    uuid.UUID  `json:"detail_id"`
	ParameterID *uuid.UUID `json:"parameter_id,omitempty"`
	ValueText   string     `json:"value_text"`
	Notes       *string    `json:"notes,omitempty"`
}

// RecordResult applies one result to the order and persists it atomically.
// The returned classification is for caller-side highlighting; it is never
// stored. A concurrent writer surfaces as ErrConcurrentModification — reload
// and retry.
func (s *Service) RecordResult(ctx context.Context, orderID uuid.UUID, in RecordResultInput) (Classification, *LabOrder, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", nil, fmt.Errorf("load order: %w", err)
	}

	cls, err := order.RecordResult(in.DetailID, in.ParameterID, in.ValueText, in.Notes)
	if err != nil {
		return "", nil, err
	}

	detail := order.Detail(in.DetailID)
	result := detail.result(in.ParameterID)
	if err := s.orders.SaveResult(ctx, order, in.DetailID, result); err != nil {
		return "", nil, err
	}
	return cls, order, nil
}

// TransitionStatus applies a lifecycle change and persists it.
func (s *Service) TransitionStatus(ctx context.Context, orderID uuid.UUID, to Status, actorID string) (*LabOrder, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if err := order.Transition(to, actorID); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Complete marks the order finished, stamping who signed it off.
func (s *Service) Complete(ctx context.Context, orderID uuid.UUID, actorID string) (*LabOrder, error) {
	return s.TransitionStatus(ctx, orderID, StatusCompleted, actorID)
}

// Cancel voids a non-terminal order.
func (s *Service) Cancel(ctx context.Context, orderID uuid.UUID) (*LabOrder, error) {
	return s.TransitionStatus(ctx, orderID, StatusCancelled, "")
}

// MarkPaid flips the payment flag. Invoicing itself lives in the billing
// module; the lab only tracks whether the order has been settled.
func (s *Service) MarkPaid(ctx context.Context, orderID uuid.UUID) (*LabOrder, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order.IsPaid {
		return order, nil
	}
	order.IsPaid = true
	if err := s.orders.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*LabOrder, error) {
	return s.orders.GetByID(ctx, orderID)
}

func (s *Service) GetByOrderNumber(ctx context.Context, orderNumber string) (*LabOrder, error) {
	return s.orders.GetByOrderNumber(ctx, orderNumber)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabOrder, int, error) {
	return s.orders.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*LabOrder, int, error) {
	return s.orders.ListByStatus(ctx, status, limit, offset)
}

// Summarize produces the read-only classification roll-up for an order.
func (s *Service) Summarize(ctx context.Context, orderID uuid.UUID) (OrderSummary, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return OrderSummary{}, fmt.Errorf("load order: %w", err)
	}
	return order.Summarize(), nil
}
