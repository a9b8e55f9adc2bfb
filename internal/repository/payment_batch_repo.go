package repository

import (
	"context"
	"time"

	"github.com/mbeiro/StudioAppBack/internal/models"
)

type CreatePaymentBatchInput struct {
	InstructorID int64
	Reference    string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	TotalAmount  float64
}

type CreateBatchItemInput struct {
	BatchID           int64
	CheckInID         int64
	ClassID           int64
	PerSessionPrice   float64
	InstructorPayment float64
	AdminEarnings     float64
}

type PaymentBatchRepository struct {
	db DBTX
}

func NewPaymentBatchRepository(db DBTX) *PaymentBatchRepository {
	return &PaymentBatchRepository{db: db}
}

func (r *PaymentBatchRepository) Create(
	ctx context.Context,
	input CreatePaymentBatchInput,
) (*models.PaymentBatch, error) {
	query := `
		INSERT INTO instructor_payment_batches (instructor_id, reference, period_start, period_end, total_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, instructor_id, reference, period_start, period_end, total_amount, created_at
	`
	var batch models.PaymentBatch
	err := r.db.QueryRow(
		ctx,
		query,
		input.InstructorID,
		input.Reference,
		input.PeriodStart,
		input.PeriodEnd,
		input.TotalAmount,
	).Scan(
		&batch.ID,
		&batch.InstructorID,
		&batch.Reference,
		&batch.PeriodStart,
		&batch.PeriodEnd,
		&batch.TotalAmount,
		&batch.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *PaymentBatchRepository) CreateItem(
	ctx context.Context,
	input CreateBatchItemInput,
) (*models.PaymentBatchItem, error) {
	query := `
		INSERT INTO instructor_payment_batch_items (
			batch_id, check_in_id, class_id, per_session_price, instructor_payment, admin_earnings
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, batch_id, check_in_id, class_id, per_session_price,
			instructor_payment, admin_earnings, created_at
	`
	var item models.PaymentBatchItem
	err := r.db.QueryRow(
		ctx,
		query,
		input.BatchID,
		input.CheckInID,
		input.ClassID,
		input.PerSessionPrice,
		input.InstructorPayment,
		input.AdminEarnings,
	).Scan(
		&item.ID,
		&item.BatchID,
		&item.CheckInID,
		&item.ClassID,
		&item.PerSessionPrice,
		&item.InstructorPayment,
		&item.AdminEarnings,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PaymentBatchRepository) GetByID(ctx context.Context, batchID int64) (*models.PaymentBatch, error) {
	query := `
		SELECT id, instructor_id, reference, period_start, period_end, total_amount, created_at
		FROM instructor_payment_batches
		WHERE id = $1
	`
	var batch models.PaymentBatch
	err := r.db.QueryRow(ctx, query, batchID).Scan(
		&batch.ID,
		&batch.InstructorID,
		&batch.Reference,
		&batch.PeriodStart,
		&batch.PeriodEnd,
		&batch.TotalAmount,
		&batch.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *PaymentBatchRepository) ListItems(ctx context.Context, batchID int64) ([]models.PaymentBatchItem, error) {
	query := `
		SELECT id, batch_id, check_in_id, class_id, per_session_price,
			instructor_payment, admin_earnings, created_at
		FROM instructor_payment_batch_items
		WHERE batch_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.PaymentBatchItem, 0)
	for rows.Next() {
		var item models.PaymentBatchItem
		if err := rows.Scan(
			&item.ID,
			&item.BatchID,
			&item.CheckInID,
			&item.ClassID,
			&item.PerSessionPrice,
			&item.InstructorPayment,
			&item.AdminEarnings,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// List returns batches newest first, for every instructor when instructorID
// is zero.
func (r *PaymentBatchRepository) List(ctx context.Context, instructorID int64) ([]models.PaymentBatch, error) {
	query := `
		SELECT id, instructor_id, reference, period_start, period_end, total_amount, created_at
		FROM instructor_payment_batches
	`
	args := []any{}
	if instructorID > 0 {
		args = append(args, instructorID)
		query += ` WHERE instructor_id = $1`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := make([]models.PaymentBatch, 0)
	for rows.Next() {
		var batch models.PaymentBatch
		if err := rows.Scan(
			&batch.ID,
			&batch.InstructorID,
			&batch.Reference,
			&batch.PeriodStart,
			&batch.PeriodEnd,
			&batch.TotalAmount,
			&batch.CreatedAt,
		); err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return batches, nil
}
