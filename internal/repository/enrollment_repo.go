package repository

import (
	"context"

	"github.com/mbeiro/StudioAppBack/internal/models"
)

type EnrollmentRepository struct {
	db DBTX
}

func NewEnrollmentRepository(db DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Upsert enrolls the member in the class, or points an existing enrollment at
// the latest package purchase.
func (r *EnrollmentRepository) Upsert(
	ctx context.Context,
	classID int64,
	memberID int64,
	packagePurchaseID *int64,
) (*models.Enrollment, error) {
	query := `
		INSERT INTO class_enrollments (class_id, member_id, package_purchase_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (class_id, member_id)
		DO UPDATE SET package_purchase_id = EXCLUDED.package_purchase_id
		RETURNING id, class_id, member_id, package_purchase_id, enrolled_at
	`
	var enrollment models.Enrollment
	err := r.db.QueryRow(ctx, query, classID, memberID, packagePurchaseID).Scan(
		&enrollment.ID,
		&enrollment.ClassID,
		&enrollment.MemberID,
		&enrollment.PackagePurchaseID,
		&enrollment.EnrolledAt,
	)
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID int64) ([]models.Enrollment, error) {
	query := `
		SELECT id, class_id, member_id, package_purchase_id, enrolled_at
		FROM class_enrollments
		WHERE class_id = $1
		ORDER BY enrolled_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]models.Enrollment, 0)
	for rows.Next() {
		var enrollment models.Enrollment
		if err := rows.Scan(
			&enrollment.ID,
			&enrollment.ClassID,
			&enrollment.MemberID,
			&enrollment.PackagePurchaseID,
			&enrollment.EnrolledAt,
		); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *EnrollmentRepository) CountByClass(ctx context.Context, classID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM class_enrollments WHERE class_id = $1`, classID).
		Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
