package repository

import (
	"context"

	"github.com/mbeiro/StudioAppBack/internal/models"
)

type CreateClassInput struct {
	Name            string
	InstructorID    int64
	ScheduleDays    []string
	ScheduleTime    string
	DurationMinutes int
	PaymentMode     string
	FlatAmount      float64
	Percentage      *float64
	Capacity        int
}

type ClassRepository struct {
	db DBTX
}

func NewClassRepository(db DBTX) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `
	id, name, instructor_id, schedule_days, schedule_time, duration_min,
	payment_mode, flat_amount, percentage, capacity, is_active, created_at, updated_at
`

func (r *ClassRepository) Create(ctx context.Context, input CreateClassInput) (*models.Class, error) {
	query := `
		INSERT INTO classes (
			name, instructor_id, schedule_days, schedule_time, duration_min,
			payment_mode, flat_amount, percentage, capacity, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true)
		RETURNING ` + classColumns
	return r.scanOne(ctx, query,
		input.Name,
		input.InstructorID,
		input.ScheduleDays,
		input.ScheduleTime,
		input.DurationMinutes,
		input.PaymentMode,
		input.FlatAmount,
		input.Percentage,
		input.Capacity,
	)
}

func (r *ClassRepository) Update(ctx context.Context, classID int64, input CreateClassInput) (*models.Class, error) {
	query := `
		UPDATE classes
		SET name = $2, instructor_id = $3, schedule_days = $4, schedule_time = $5,
			duration_min = $6, payment_mode = $7, flat_amount = $8, percentage = $9,
			capacity = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + classColumns
	return r.scanOne(ctx, query,
		classID,
		input.Name,
		input.InstructorID,
		input.ScheduleDays,
		input.ScheduleTime,
		input.DurationMinutes,
		input.PaymentMode,
		input.FlatAmount,
		input.Percentage,
		input.Capacity,
	)
}

func (r *ClassRepository) GetByID(ctx context.Context, classID int64) (*models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1`
	return r.scanOne(ctx, query, classID)
}

func (r *ClassRepository) List(ctx context.Context, activeOnly bool) ([]models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name ASC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := make([]models.Class, 0)
	for rows.Next() {
		var class models.Class
		if err := rows.Scan(
			&class.ID,
			&class.Name,
			&class.InstructorID,
			&class.Days,
			&class.Time,
			&class.DurationMinutes,
			&class.Mode,
			&class.FlatAmount,
			&class.Percentage,
			&class.Capacity,
			&class.IsActive,
			&class.CreatedAt,
			&class.UpdatedAt,
		); err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *ClassRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE instructor_id = $1 ORDER BY name ASC, id ASC`

	rows, err := r.db.Query(ctx, query, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := make([]models.Class, 0)
	for rows.Next() {
		var class models.Class
		if err := rows.Scan(
			&class.ID,
			&class.Name,
			&class.InstructorID,
			&class.Days,
			&class.Time,
			&class.DurationMinutes,
			&class.Mode,
			&class.FlatAmount,
			&class.Percentage,
			&class.Capacity,
			&class.IsActive,
			&class.CreatedAt,
			&class.UpdatedAt,
		); err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *ClassRepository) SetActive(ctx context.Context, classID int64, active bool) (*models.Class, error) {
	query := `
		UPDATE classes
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + classColumns
	return r.scanOne(ctx, query, classID, active)
}

func (r *ClassRepository) scanOne(ctx context.Context, query string, args ...any) (*models.Class, error) {
	var class models.Class
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&class.ID,
		&class.Name,
		&class.InstructorID,
		&class.Days,
		&class.Time,
		&class.DurationMinutes,
		&class.Mode,
		&class.FlatAmount,
		&class.Percentage,
		&class.Capacity,
		&class.IsActive,
		&class.CreatedAt,
		&class.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &class, nil
}
