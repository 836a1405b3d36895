package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	defs map[uuid.UUID]*TestDefinition
}

func newMockRepo() *mockRepo {
	return &mockRepo{defs: make(map[uuid.UUID]*TestDefinition)}
}

func (m *mockRepo) Create(_ context.Context, def *TestDefinition) error {
	def.ID = uuid.New()
	for i := range def.Parameters {
		if def.Parameters[i].ID == uuid.Nil {
			def.Parameters[i].ID = uuid.New()
		}
	}
	m.defs[def.ID] = def
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*TestDefinition, error) {
	def, ok := m.defs[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return def, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*TestDefinition, error) {
	for _, def := range m.defs {
		if def.Code == code {
			return def, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) Update(_ context.Context, def *TestDefinition) error {
	if _, ok := m.defs[def.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.defs[def.ID] = def
	return nil
}

func (m *mockRepo) List(_ context.Context, category string, activeOnly bool, limit, offset int) ([]*TestDefinition, int, error) {
	var result []*TestDefinition
	for _, def := range m.defs {
		if category != "" && def.Category != category {
			continue
		}
		if activeOnly && !def.Active {
			continue
		}
		result = append(result, def)
	}
	return result, len(result), nil
}

func TestServiceCreate(t *testing.T) {
	svc := NewService(newMockRepo())
	def := validDefinition()
	if err := svc.Create(context.Background(), def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !def.Active {
		t.Error("expected new definition to be active")
	}
	if def.ID == uuid.Nil {
		t.Error("expected generated id")
	}
}

func TestServiceCreateRejectsDuplicateCode(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Create(context.Background(), validDefinition()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := svc.Create(context.Background(), validDefinition())
	if err == nil {
		t.Error("expected error for duplicate code")
	}
}

func TestServiceCreateRejectsMalformedParameter(t *testing.T) {
	svc := NewService(newMockRepo())
	def := validDefinition()
	def.Parameters[0].RefMin = nil
	def.Parameters[0].RefMax = nil
	def.Parameters[0].ReferenceText = nil
	err := svc.Create(context.Background(), def)
	if !errors.Is(err, ErrInvalidParameterDefinition) {
		t.Errorf("expected ErrInvalidParameterDefinition, got %v", err)
	}
}

func TestServiceDeactivate(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	def := validDefinition()
	svc.Create(context.Background(), def)

	if err := svc.Deactivate(context.Background(), def.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), def.ID)
	if got.Active {
		t.Error("expected definition to be inactive")
	}
}

func TestServiceListFiltersByCategory(t *testing.T) {
	svc := NewService(newMockRepo())
	svc.Create(context.Background(), validDefinition())
	other := validDefinition()
	other.Code = "LFT"
	other.Category = "biochemistry"
	svc.Create(context.Background(), other)

	items, total, err := svc.List(context.Background(), "hematology", true, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected 1 hematology test, got %d", total)
	}
}
