package lab

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

const orderCols = `id, order_number, patient_id, requesting_doctor_id, priority, status,
	notes, is_paid, total_amount_minor, created_at, completed_at, completed_by, version_id`

func scanOrder(row pgx.Row) (*LabOrder, error) {
	var o LabOrder
	err := row.Scan(&o.ID, &o.OrderNumber, &o.PatientID, &o.RequestingDoctorID,
		&o.Priority, &o.Status, &o.Notes, &o.IsPaid, &o.TotalAmountMinor,
		&o.CreatedAt, &o.CompletedAt, &o.CompletedBy, &o.VersionID)
	return &o, err
}

func (r *repoPG) Create(ctx context.Context, order *LabOrder) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO lab_order (id, order_number, patient_id, requesting_doctor_id,
			priority, status, notes, is_paid, total_amount_minor, created_at, version_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		order.ID, order.OrderNumber, order.PatientID, order.RequestingDoctorID,
		order.Priority, order.Status, order.Notes, order.IsPaid,
		order.TotalAmountMinor, order.CreatedAt, order.VersionID)
	if err != nil {
		return err
	}

	for _, d := range order.Details {
		_, err = tx.Exec(ctx, `
			INSERT INTO lab_order_detail (id, order_id, test_snapshot, notes)
			VALUES ($1,$2,$3,$4)`,
			d.ID, order.ID, d.Test, d.Notes)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabOrder, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderCols+` FROM lab_order WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadDetails(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repoPG) GetByOrderNumber(ctx context.Context, orderNumber string) (*LabOrder, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderCols+` FROM lab_order WHERE order_number = $1`, orderNumber))
	if err != nil {
		return nil, err
	}
	if err := r.loadDetails(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repoPG) loadDetails(ctx context.Context, order *LabOrder) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, test_snapshot, notes FROM lab_order_detail
		WHERE order_id = $1 ORDER BY created_at, id`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d OrderDetail
		if err := rows.Scan(&d.ID, &d.Test, &d.Notes); err != nil {
			return err
		}
		order.Details = append(order.Details, &d)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	resultRows, err := r.pool.Query(ctx, `
		SELECT detail_id, parameter_id, value_text, notes, recorded_at
		FROM lab_recorded_result
		WHERE detail_id = ANY (SELECT id FROM lab_order_detail WHERE order_id = $1)
		ORDER BY recorded_at`, order.ID)
	if err != nil {
		return err
	}
	defer resultRows.Close()

	for resultRows.Next() {
		var detailID uuid.UUID
		var res RecordedResult
		if err := resultRows.Scan(&detailID, &res.ParameterID, &res.ValueText, &res.Notes, &res.RecordedAt); err != nil {
			return err
		}
		if d := order.Detail(detailID); d != nil {
			d.Results = append(d.Results, res)
		}
	}
	return resultRows.Err()
}

func (r *repoPG) listQuery(ctx context.Context, where string, arg interface{}, limit, offset int) ([]*LabOrder, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lab_order WHERE `+where, arg).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderCols+` FROM lab_order WHERE `+where+` ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		arg, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*LabOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, o := range orders {
		if err := r.loadDetails(ctx, o); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabOrder, int, error) {
	return r.listQuery(ctx, `patient_id = $1`, patientID, limit, offset)
}

func (r *repoPG) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*LabOrder, int, error) {
	return r.listQuery(ctx, `status = $1`, status, limit, offset)
}

// UpdateOrder writes header fields guarded by the version check: zero rows
// affected means another writer got there first.
func (r *repoPG) UpdateOrder(ctx context.Context, order *LabOrder) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE lab_order SET status=$2, notes=$3, is_paid=$4,
			completed_at=$5, completed_by=$6, version_id=version_id+1
		WHERE id = $1 AND version_id = $7`,
		order.ID, order.Status, order.Notes, order.IsPaid,
		order.CompletedAt, order.CompletedBy, order.VersionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentModification
	}
	order.VersionID++
	return nil
}

// SaveResult upserts the result row and bumps the order header in one
// transaction, so a result write and its implicit status advance land
// together or not at all.
func (r *repoPG) SaveResult(ctx context.Context, order *LabOrder, detailID uuid.UUID, result *RecordedResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO lab_recorded_result (detail_id, parameter_id, value_text, notes, recorded_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (detail_id, parameter_key) DO UPDATE
		SET value_text = EXCLUDED.value_text,
		    notes = EXCLUDED.notes,
		    recorded_at = EXCLUDED.recorded_at`,
		detailID, result.ParameterID, result.ValueText, result.Notes, result.RecordedAt)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE lab_order SET status=$2, version_id=version_id+1
		WHERE id = $1 AND version_id = $3`,
		order.ID, order.Status, order.VersionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentModification
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	order.VersionID++
	return nil
}

// NextOrderNumber issues numbers from a dedicated sequence, formatted for
// human use on requisition slips.
func (r *repoPG) NextOrderNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('lab_order_number_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	return fmt.Sprintf("LAB-%06d", n), nil
}
