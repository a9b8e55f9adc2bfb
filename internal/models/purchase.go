package models

import "time"

const (
	PurchaseTypePackage = "package"
	PurchaseTypeDropIn  = "drop_in"
)

// PackagePurchase is a prepaid bundle of sessions for one specific class.
type PackagePurchase struct {
	ID          int64     `json:"id"`
	MemberID    int64     `json:"member_id"`
	ClassID     int64     `json:"class_id"`
	AmountPaid  float64   `json:"amount_paid"`
	NumClasses  int       `json:"num_classes"`
	ClassesUsed int       `json:"classes_used"`
	PurchasedAt time.Time `json:"purchased_at"`
}

func (p *PackagePurchase) Remaining() int {
	return p.NumClasses - p.ClassesUsed
}

// DropInCreditPurchase is a punch card of single-session credits usable for
// any class.
type DropInCreditPurchase struct {
	ID           int64     `json:"id"`
	MemberID     int64     `json:"member_id"`
	AmountPaid   float64   `json:"amount_paid"`
	CreditsTotal int       `json:"credits_total"`
	CreditsUsed  int       `json:"credits_used"`
	PurchasedAt  time.Time `json:"purchased_at"`
}

func (p *DropInCreditPurchase) Remaining() int {
	return p.CreditsTotal - p.CreditsUsed
}

type Enrollment struct {
	ID                int64     `json:"id"`
	ClassID           int64     `json:"class_id"`
	MemberID          int64     `json:"member_id"`
	PackagePurchaseID *int64    `json:"package_purchase_id"`
	EnrolledAt        time.Time `json:"enrolled_at"`
}
