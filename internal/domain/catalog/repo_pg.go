package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const defCols = `id, code, name, category, sample_type, price_minor, duration_hours,
	active, parameters, created_at, updated_at`

func scanDef(row pgx.Row) (*TestDefinition, error) {
	var d TestDefinition
	err := row.Scan(&d.ID, &d.Code, &d.Name, &d.Category, &d.SampleType,
		&d.PriceMinor, &d.DurationHours, &d.Active, &d.Parameters,
		&d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, def *TestDefinition) error {
	def.ID = uuid.New()
	for i := range def.Parameters {
		if def.Parameters[i].ID == uuid.Nil {
			def.Parameters[i].ID = uuid.New()
		}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lab_test_definition (id, code, name, category, sample_type,
			price_minor, duration_hours, active, parameters)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		def.ID, def.Code, def.Name, def.Category, def.SampleType,
		def.PriceMinor, def.DurationHours, def.Active, def.Parameters)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*TestDefinition, error) {
	return scanDef(r.pool.QueryRow(ctx, `SELECT `+defCols+` FROM lab_test_definition WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*TestDefinition, error) {
	return scanDef(r.pool.QueryRow(ctx, `SELECT `+defCols+` FROM lab_test_definition WHERE code = $1`, code))
}

func (r *repoPG) Update(ctx context.Context, def *TestDefinition) error {
	for i := range def.Parameters {
		if def.Parameters[i].ID == uuid.Nil {
			def.Parameters[i].ID = uuid.New()
		}
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE lab_test_definition SET name=$2, category=$3, sample_type=$4,
			price_minor=$5, duration_hours=$6, active=$7, parameters=$8, updated_at=NOW()
		WHERE id = $1`,
		def.ID, def.Name, def.Category, def.SampleType,
		def.PriceMinor, def.DurationHours, def.Active, def.Parameters)
	return err
}

func (r *repoPG) List(ctx context.Context, category string, activeOnly bool, limit, offset int) ([]*TestDefinition, int, error) {
	query := `SELECT ` + defCols + ` FROM lab_test_definition WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM lab_test_definition WHERE 1=1`
	var args []interface{}
	idx := 1

	if category != "" {
		query += fmt.Sprintf(` AND category = $%d`, idx)
		countQuery += fmt.Sprintf(` AND category = $%d`, idx)
		args = append(args, category)
		idx++
	}
	if activeOnly {
		query += ` AND active`
		countQuery += ` AND active`
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY code LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*TestDefinition
	for rows.Next() {
		d, err := scanDef(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}
