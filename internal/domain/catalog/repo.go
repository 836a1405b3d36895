package catalog

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, def *TestDefinition) error
	GetByID(ctx context.Context, id uuid.UUID) (*TestDefinition, error)
	GetByCode(ctx context.Context, code string) (*TestDefinition, error)
	Update(ctx context.Context, def *TestDefinition) error
	List(ctx context.Context, category string, activeOnly bool, limit, offset int) ([]*TestDefinition, int, error)
}
