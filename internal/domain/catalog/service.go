package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, def *TestDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if existing, err := s.repo.GetByCode(ctx, def.Code); err == nil && existing != nil {
		return fmt.Errorf("test code %q already exists", def.Code)
	}
	def.Active = true
	return s.repo.Create(ctx, def)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TestDefinition, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*TestDefinition, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Update(ctx context.Context, def *TestDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, def)
}

// Deactivate removes a test from the orderable catalog without touching
// orders that already reference it.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	def.Active = false
	return s.repo.Update(ctx, def)
}

func (s *Service) List(ctx context.Context, category string, activeOnly bool, limit, offset int) ([]*TestDefinition, int, error) {
	return s.repo.List(ctx, category, activeOnly, limit, offset)
}
