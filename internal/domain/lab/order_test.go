package lab

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/catalog"
)


// cbcDefinition has one ranged numeric parameter and one free-text one.
func cbcDefinition() *catalog.TestDefinition {
	return &catalog.TestDefinition{
		ID:         uuid.New(),
		Code:       "CBC",
		Name:       "Complete Blood Count",
		Category:   "hematology",
		SampleType: catalog.SampleBlood,
		PriceMinor: 2500,
		Active:     true,
		Parameters: []catalog.ParameterDefinition{
			{
				ID:     uuid.New(),
				Name:   "Hemoglobin",
				Unit:   str("g/dL"),
				RefMin: f64(12), RefMax: f64(16),
				CriticalMin: f64(7), CriticalMax: f64(20),
			},
			{
				ID:            uuid.New(),
				Name:          "Blood Group",
				ReferenceText: str("A/B/AB/O"),
			},
		},
	}
}

// cultureDefinition has no structured parameters.
func cultureDefinition() *catalog.TestDefinition {
	return &catalog.TestDefinition{
		ID:         uuid.New(),
		Code:       "UCULT",
		Name:       "Urine Culture",
		Category:   "microbiology",
		SampleType: catalog.SampleUrine,
		PriceMinor: 4000,
		Active:     true,
	}
}

func newTestOrder(t *testing.T, defs ...*catalog.TestDefinition) *LabOrder {
	t.Helper()
	order, err := NewOrder("LAB-000001", uuid.New(), defs, PriorityRoutine, nil)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	return order
}

func TestNewOrderSnapshotsAndTotals(t *testing.T) {
	cbc := cbcDefinition()
	cult := cultureDefinition()
	order := newTestOrder(t, cbc, cult)

	if order.Status != StatusPending {
		t.Errorf("status = %s, want %s", order.Status, StatusPending)
	}
	if order.TotalAmountMinor != 6500 {
		t.Errorf("total = %d, want 6500", order.TotalAmountMinor)
	}
	if len(order.Details) != 2 {
		t.Fatalf("details = %d, want 2", len(order.Details))
	}
	if order.VersionID != 1 {
		t.Errorf("version = %d, want 1", order.VersionID)
	}

	// Later catalog edits must not reach the snapshot.
	cbc.Name = "Renamed"
	cbc.Parameters[0].RefMax = f64(99)
	snap := order.Details[0].Test
	if snap.Name != "Complete Blood Count" {
		t.Errorf("snapshot name mutated: %s", snap.Name)
	}
	if *snap.Parameters[0].RefMax != 16 {
		t.Errorf("snapshot ref max mutated: %v", *snap.Parameters[0].RefMax)
	}
}

func TestNewOrderEmptySelection(t *testing.T) {
	_, err := NewOrder("LAB-000002", uuid.New(), nil, PriorityRoutine, nil)
	if !errors.Is(err, ErrEmptyTestSelection) {
		t.Fatalf("err = %v, want ErrEmptyTestSelection", err)
	}
}

func TestRecordResultAdvancesOnce(t *testing.T) {
	order := newTestOrder(t, cbcDefinition())
	detail := order.Details[0]
	hb := detail.Test.Parameters[0].ID

	cls, err := order.RecordResult(detail.ID, &hb, "13.5", nil)
	if err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if cls != ClassNormal {
		t.Errorf("classification = %s, want %s", cls, ClassNormal)
	}
	if order.Status != StatusProcessing {
		t.Errorf("status = %s, want %s after first result", order.Status, StatusProcessing)
	}

	bg := detail.Test.Parameters[1].ID
	if _, err := order.RecordResult(detail.ID, &bg, "O", nil); err != nil {
		t.Fatalf("second RecordResult: %v", err)
	}
	if order.Status != StatusProcessing {
		t.Errorf("status = %s, want %s to stay put", order.Status, StatusProcessing)
	}
}

func TestRecordResultUpsert(t *testing.T) {
	order := newTestOrder(t, cbcDefinition())
	detail := order.Details[0]
	hb := detail.Test.Parameters[0].ID

	if _, err := order.RecordResult(detail.ID, &hb, "11", str("first draw")); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	cls, err := order.RecordResult(detail.ID, &hb, "13", nil)
	if err != nil {
		t.Fatalf("RecordResult overwrite: %v", err)
	}
	if cls != ClassNormal {
		t.Errorf("classification = %s, want %s", cls, ClassNormal)
	}
	if len(detail.Results) != 1 {
		t.Fatalf("results = %d, want 1 after overwrite", len(detail.Results))
	}
	if detail.Results[0].ValueText != "13" {
		t.Errorf("value = %q, want last write", detail.Results[0].ValueText)
	}
	if detail.Results[0].Notes != nil {
		t.Error("overwrite should replace notes, not merge")
	}
}

func TestRecordResultParameterKeying(t *testing.T) {
	order := newTestOrder(t, cbcDefinition(), cultureDefinition())
	cbcDetail, cultDetail := order.Details[0], order.Details[1]
	hb := cbcDetail.Test.Parameters[0].ID

	if _, err := order.RecordResult(cbcDetail.ID, nil, "13", nil); !errors.Is(err, ErrParameterRequired) {
		t.Errorf("nil parameter on parameterized test: err = %v, want ErrParameterRequired", err)
	}
	if _, err := order.RecordResult(cultDetail.ID, &hb, "growth", nil); !errors.Is(err, ErrParameterRequired) {
		t.Errorf("parameter on parameter-less test: err = %v, want ErrParameterRequired", err)
	}

	stranger := uuid.New()
	if _, err := order.RecordResult(cbcDetail.ID, &stranger, "13", nil); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("foreign parameter: err = %v, want ErrUnknownParameter", err)
	}
	if _, err := order.RecordResult(uuid.New(), &hb, "13", nil); !errors.Is(err, ErrUnknownDetail) {
		t.Errorf("foreign detail: err = %v, want ErrUnknownDetail", err)
	}

	cls, err := order.RecordResult(cultDetail.ID, nil, "No growth after 48h", nil)
	if err != nil {
		t.Fatalf("whole-test result: %v", err)
	}
	if cls != ClassNormal {
		t.Errorf("classification = %s, want %s", cls, ClassNormal)
	}
}

func TestRecordResultOnFinalizedOrder(t *testing.T) {
	order := newTestOrder(t, cbcDefinition())
	detail := order.Details[0]
	hb := detail.Test.Parameters[0].ID
	if _, err := order.RecordResult(detail.ID, &hb, "13", nil); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if err := order.Transition(StatusCompleted, "tech-1"); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if _, err := order.RecordResult(detail.ID, &hb, "14", nil); !errors.Is(err, ErrOrderAlreadyFinalized) {
		t.Fatalf("err = %v, want ErrOrderAlreadyFinalized", err)
	}
}

func TestTransitionCompletionStamps(t *testing.T) {
	order := newTestOrder(t, cbcDefinition())
	if err := order.Transition(StatusProcessing, ""); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if order.CompletedAt != nil || order.CompletedBy != nil {
		t.Fatal("completion stamps set before completion")
	}
	if err := order.Transition(StatusCompleted, "tech-1"); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if order.CompletedAt == nil {
		t.Error("completed_at not stamped")
	}
	if order.CompletedBy == nil || *order.CompletedBy != "tech-1" {
		t.Errorf("completed_by = %v, want tech-1", order.CompletedBy)
	}
}

func TestTransitionCancelLeavesStampsUnset(t *testing.T) {
	order := newTestOrder(t, cbcDefinition())
	if err := order.Transition(StatusCancelled, "tech-1"); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if order.CompletedAt != nil || order.CompletedBy != nil {
		t.Error("cancelled order must not carry completion stamps")
	}
}

func TestTransitionEarlyCompletionGate(t *testing.T) {
	// Empty pending order may be completed directly.
	order := newTestOrder(t, cbcDefinition())
	if err := order.Transition(StatusCompleted, "tech-1"); err != nil {
		t.Fatalf("empty completion: %v", err)
	}

	// A recorded result forces the order through processing, so a stale
	// pending status with results refuses completion.
	order = newTestOrder(t, cbcDefinition())
	hb := order.Details[0].Test.Parameters[0].ID
	if _, err := order.RecordResult(order.Details[0].ID, &hb, "13", nil); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	order.Status = StatusPending
	if err := order.Transition(StatusCompleted, "tech-1"); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("err = %v, want ErrIllegalTransition", err)
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	order := newTestOrder(t, cbcDefinition())
	if err := order.Transition(Status("archived"), ""); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("err = %v, want ErrIllegalTransition", err)
	}
}

func TestSummarizeRecomputes(t *testing.T) {
	order := newTestOrder(t, cbcDefinition(), cultureDefinition())
	cbcDetail, cultDetail := order.Details[0], order.Details[1]
	hb := cbcDetail.Test.Parameters[0].ID
	bg := cbcDetail.Test.Parameters[1].ID

	if _, err := order.RecordResult(cbcDetail.ID, &hb, "6.5", nil); err != nil { // below critical min
		t.Fatalf("RecordResult: %v", err)
	}
	if _, err := order.RecordResult(cbcDetail.ID, &bg, "O", nil); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if _, err := order.RecordResult(cultDetail.ID, nil, "", nil); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}

	s := order.Summarize()
	if s.TestCount != 2 {
		t.Errorf("test count = %d, want 2", s.TestCount)
	}
	if s.ExpectedResults != 3 { // two parameters + one whole-test slot
		t.Errorf("expected results = %d, want 3", s.ExpectedResults)
	}
	if s.RecordedResults != 3 {
		t.Errorf("recorded results = %d, want 3", s.RecordedResults)
	}
	if s.CriticalCount != 1 || s.NormalCount != 1 || s.NotEvaluable != 1 || s.AbnormalCount != 0 {
		t.Errorf("counts = critical %d normal %d not-evaluable %d abnormal %d",
			s.CriticalCount, s.NormalCount, s.NotEvaluable, s.AbnormalCount)
	}

	// A threshold correction in the snapshot shows up on the next roll-up.
	cbcDetail.Test.Parameters[0].CriticalMin = f64(6)
	s = order.Summarize()
	if s.CriticalCount != 0 || s.AbnormalCount != 1 {
		t.Errorf("after correction: critical %d abnormal %d", s.CriticalCount, s.AbnormalCount)
	}
}
