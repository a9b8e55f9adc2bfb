package repository

import (
	"context"

	"github.com/mbeiro/StudioAppBack/internal/models"
)

type CreatePackagePurchaseInput struct {
	MemberID   int64
	ClassID    int64
	AmountPaid float64
	NumClasses int
}

type CreateDropInPurchaseInput struct {
	MemberID     int64
	AmountPaid   float64
	CreditsTotal int
}

type PurchaseRepository struct {
	db DBTX
}

func NewPurchaseRepository(db DBTX) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) CreatePackage(
	ctx context.Context,
	input CreatePackagePurchaseInput,
) (*models.PackagePurchase, error) {
	query := `
		INSERT INTO class_package_purchases (member_id, class_id, amount_paid, num_classes, classes_used)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id, member_id, class_id, amount_paid, num_classes, classes_used, purchased_at
	`
	var purchase models.PackagePurchase
	err := r.db.QueryRow(ctx, query, input.MemberID, input.ClassID, input.AmountPaid, input.NumClasses).Scan(
		&purchase.ID,
		&purchase.MemberID,
		&purchase.ClassID,
		&purchase.AmountPaid,
		&purchase.NumClasses,
		&purchase.ClassesUsed,
		&purchase.PurchasedAt,
	)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) CreateDropIn(
	ctx context.Context,
	input CreateDropInPurchaseInput,
) (*models.DropInCreditPurchase, error) {
	query := `
		INSERT INTO drop_in_credit_purchases (member_id, amount_paid, credits_total, credits_used)
		VALUES ($1, $2, $3, 0)
		RETURNING id, member_id, amount_paid, credits_total, credits_used, purchased_at
	`
	var purchase models.DropInCreditPurchase
	err := r.db.QueryRow(ctx, query, input.MemberID, input.AmountPaid, input.CreditsTotal).Scan(
		&purchase.ID,
		&purchase.MemberID,
		&purchase.AmountPaid,
		&purchase.CreditsTotal,
		&purchase.CreditsUsed,
		&purchase.PurchasedAt,
	)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// GetActivePackageForUpdate locks the oldest package of the member for the
// class that still has sessions left.
func (r *PurchaseRepository) GetActivePackageForUpdate(
	ctx context.Context,
	memberID int64,
	classID int64,
) (*models.PackagePurchase, error) {
	query := `
		SELECT id, member_id, class_id, amount_paid, num_classes, classes_used, purchased_at
		FROM class_package_purchases
		WHERE member_id = $1 AND class_id = $2 AND classes_used < num_classes
		ORDER BY purchased_at ASC, id ASC
		LIMIT 1
		FOR UPDATE
	`
	var purchase models.PackagePurchase
	err := r.db.QueryRow(ctx, query, memberID, classID).Scan(
		&purchase.ID,
		&purchase.MemberID,
		&purchase.ClassID,
		&purchase.AmountPaid,
		&purchase.NumClasses,
		&purchase.ClassesUsed,
		&purchase.PurchasedAt,
	)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// GetActiveDropInForUpdate locks the oldest punch card of the member that
// still has credits left.
func (r *PurchaseRepository) GetActiveDropInForUpdate(
	ctx context.Context,
	memberID int64,
) (*models.DropInCreditPurchase, error) {
	query := `
		SELECT id, member_id, amount_paid, credits_total, credits_used, purchased_at
		FROM drop_in_credit_purchases
		WHERE member_id = $1 AND credits_used < credits_total
		ORDER BY purchased_at ASC, id ASC
		LIMIT 1
		FOR UPDATE
	`
	var purchase models.DropInCreditPurchase
	err := r.db.QueryRow(ctx, query, memberID).Scan(
		&purchase.ID,
		&purchase.MemberID,
		&purchase.AmountPaid,
		&purchase.CreditsTotal,
		&purchase.CreditsUsed,
		&purchase.PurchasedAt,
	)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// ConsumePackage burns one session from the package. The guard on
// classes_used makes concurrent over-consumption lose the race instead of
// going negative; no rows back means the credit is gone.
func (r *PurchaseRepository) ConsumePackage(ctx context.Context, purchaseID int64) (*models.PackagePurchase, error) {
	query := `
		UPDATE class_package_purchases
		SET classes_used = classes_used + 1
		WHERE id = $1 AND classes_used < num_classes
		RETURNING id, member_id, class_id, amount_paid, num_classes, classes_used, purchased_at
	`
	var purchase models.PackagePurchase
	err := r.db.QueryRow(ctx, query, purchaseID).Scan(
		&purchase.ID,
		&purchase.MemberID,
		&purchase.ClassID,
		&purchase.AmountPaid,
		&purchase.NumClasses,
		&purchase.ClassesUsed,
		&purchase.PurchasedAt,
	)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) ConsumeDropIn(ctx context.Context, purchaseID int64) (*models.DropInCreditPurchase, error) {
	query := `
		UPDATE drop_in_credit_purchases
		SET credits_used = credits_used + 1
		WHERE id = $1 AND credits_used < credits_total
		RETURNING id, member_id, amount_paid, credits_total, credits_used, purchased_at
	`
	var purchase models.DropInCreditPurchase
	err := r.db.QueryRow(ctx, query, purchaseID).Scan(
		&purchase.ID,
		&purchase.MemberID,
		&purchase.AmountPaid,
		&purchase.CreditsTotal,
		&purchase.CreditsUsed,
		&purchase.PurchasedAt,
	)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) ListPackagesByMember(
	ctx context.Context,
	memberID int64,
) ([]models.PackagePurchase, error) {
	query := `
		SELECT id, member_id, class_id, amount_paid, num_classes, classes_used, purchased_at
		FROM class_package_purchases
		WHERE member_id = $1
		ORDER BY purchased_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]models.PackagePurchase, 0)
	for rows.Next() {
		var purchase models.PackagePurchase
		if err := rows.Scan(
			&purchase.ID,
			&purchase.MemberID,
			&purchase.ClassID,
			&purchase.AmountPaid,
			&purchase.NumClasses,
			&purchase.ClassesUsed,
			&purchase.PurchasedAt,
		); err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *PurchaseRepository) ListDropInsByMember(
	ctx context.Context,
	memberID int64,
) ([]models.DropInCreditPurchase, error) {
	query := `
		SELECT id, member_id, amount_paid, credits_total, credits_used, purchased_at
		FROM drop_in_credit_purchases
		WHERE member_id = $1
		ORDER BY purchased_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]models.DropInCreditPurchase, 0)
	for rows.Next() {
		var purchase models.DropInCreditPurchase
		if err := rows.Scan(
			&purchase.ID,
			&purchase.MemberID,
			&purchase.AmountPaid,
			&purchase.CreditsTotal,
			&purchase.CreditsUsed,
			&purchase.PurchasedAt,
		); err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}
