package repository

import (
	"context"
	"time"

	"github.com/mbeiro/StudioAppBack/internal/models"
)

type CreateCheckInInput struct {
	SessionID         int64
	MemberID          int64
	PurchaseType      string
	PackagePurchaseID *int64
	DropInPurchaseID  *int64
}

// OutstandingCheckIn is a check-in not yet covered by a payment batch, joined
// with everything the payment calculator needs: the class policy, the funding
// purchase and the session key.
type OutstandingCheckIn struct {
	CheckIn      models.CheckIn
	MemberName   string
	ClassID      int64
	ClassName    string
	InstructorID int64
	PaymentMode  string
	FlatAmount   float64
	Percentage   *float64
	SessionDate  time.Time
	SessionTime  string
	AmountPaid   float64
	NumSessions  int
}

type CheckInRepository struct {
	db DBTX
}

func NewCheckInRepository(db DBTX) *CheckInRepository {
	return &CheckInRepository{db: db}
}

func (r *CheckInRepository) Create(ctx context.Context, input CreateCheckInInput) (*models.CheckIn, error) {
	query := `
		INSERT INTO check_ins (session_id, member_id, purchase_type, package_purchase_id, drop_in_purchase_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, session_id, member_id, purchase_type, package_purchase_id,
			drop_in_purchase_id, payment_batch_id, checked_in_at
	`
	var checkIn models.CheckIn
	err := r.db.QueryRow(
		ctx,
		query,
		input.SessionID,
		input.MemberID,
		input.PurchaseType,
		input.PackagePurchaseID,
		input.DropInPurchaseID,
	).Scan(
		&checkIn.ID,
		&checkIn.SessionID,
		&checkIn.MemberID,
		&checkIn.PurchaseType,
		&checkIn.PackagePurchaseID,
		&checkIn.DropInPurchaseID,
		&checkIn.PaymentBatchID,
		&checkIn.CheckedInAt,
	)
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}

func (r *CheckInRepository) ListBySession(ctx context.Context, sessionID int64) ([]models.CheckIn, error) {
	query := `
		SELECT id, session_id, member_id, purchase_type, package_purchase_id,
			drop_in_purchase_id, payment_batch_id, checked_in_at
		FROM check_ins
		WHERE session_id = $1
		ORDER BY checked_in_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checkIns := make([]models.CheckIn, 0)
	for rows.Next() {
		var checkIn models.CheckIn
		if err := rows.Scan(
			&checkIn.ID,
			&checkIn.SessionID,
			&checkIn.MemberID,
			&checkIn.PurchaseType,
			&checkIn.PackagePurchaseID,
			&checkIn.DropInPurchaseID,
			&checkIn.PaymentBatchID,
			&checkIn.CheckedInAt,
		); err != nil {
			return nil, err
		}
		checkIns = append(checkIns, checkIn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return checkIns, nil
}

const outstandingQuery = `
	SELECT ci.id, ci.session_id, ci.member_id, ci.purchase_type, ci.package_purchase_id,
		ci.drop_in_purchase_id, ci.payment_batch_id, ci.checked_in_at,
		m.full_name, c.id, c.name, c.instructor_id, c.payment_mode, c.flat_amount, c.percentage,
		s.session_date, s.session_time,
		COALESCE(pp.amount_paid, dp.amount_paid, 0),
		COALESCE(pp.num_classes, dp.credits_total, 1)
	FROM check_ins ci
	JOIN class_sessions s ON s.id = ci.session_id
	JOIN classes c ON c.id = s.class_id
	JOIN members m ON m.id = ci.member_id
	LEFT JOIN class_package_purchases pp ON pp.id = ci.package_purchase_id
	LEFT JOIN drop_in_credit_purchases dp ON dp.id = ci.drop_in_purchase_id
	WHERE ci.payment_batch_id IS NULL
`

func (r *CheckInRepository) ListOutstanding(
	ctx context.Context,
	instructorID int64,
) ([]OutstandingCheckIn, error) {
	return r.listOutstanding(ctx, instructorID, false)
}

// ListOutstandingForUpdate locks the outstanding check-in rows so a batch
// finalization cannot race another one over the same rows.
func (r *CheckInRepository) ListOutstandingForUpdate(
	ctx context.Context,
	instructorID int64,
) ([]OutstandingCheckIn, error) {
	return r.listOutstanding(ctx, instructorID, true)
}

func (r *CheckInRepository) listOutstanding(
	ctx context.Context,
	instructorID int64,
	forUpdate bool,
) ([]OutstandingCheckIn, error) {
	query := outstandingQuery
	args := []any{}
	if instructorID > 0 {
		args = append(args, instructorID)
		query += ` AND c.instructor_id = $1`
	}
	query += ` ORDER BY s.session_date ASC, s.session_time ASC, ci.id ASC`
	if forUpdate {
		query += ` FOR UPDATE OF ci`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outstanding := make([]OutstandingCheckIn, 0)
	for rows.Next() {
		var row OutstandingCheckIn
		if err := rows.Scan(
			&row.CheckIn.ID,
			&row.CheckIn.SessionID,
			&row.CheckIn.MemberID,
			&row.CheckIn.PurchaseType,
			&row.CheckIn.PackagePurchaseID,
			&row.CheckIn.DropInPurchaseID,
			&row.CheckIn.PaymentBatchID,
			&row.CheckIn.CheckedInAt,
			&row.MemberName,
			&row.ClassID,
			&row.ClassName,
			&row.InstructorID,
			&row.PaymentMode,
			&row.FlatAmount,
			&row.Percentage,
			&row.SessionDate,
			&row.SessionTime,
			&row.AmountPaid,
			&row.NumSessions,
		); err != nil {
			return nil, err
		}
		outstanding = append(outstanding, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return outstanding, nil
}

// MarkBatched stamps the finalized batch onto the check-ins it covers.
func (r *CheckInRepository) MarkBatched(ctx context.Context, checkInIDs []int64, batchID int64) error {
	if len(checkInIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(
		ctx,
		`UPDATE check_ins SET payment_batch_id = $1 WHERE id = ANY($2)`,
		batchID,
		checkInIDs,
	)
	return err
}
