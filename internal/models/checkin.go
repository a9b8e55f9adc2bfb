package models

import "time"

type CheckIn struct {
	ID                int64     `json:"id"`
	SessionID         int64     `json:"session_id"`
	MemberID          int64     `json:"member_id"`
	PurchaseType      string    `json:"purchase_type"`
	PackagePurchaseID *int64    `json:"package_purchase_id"`
	DropInPurchaseID  *int64    `json:"drop_in_purchase_id"`
	PaymentBatchID    *int64    `json:"payment_batch_id"`
	CheckedInAt       time.Time `json:"checked_in_at"`
}

type CheckInDetail struct {
	CheckIn
	Session    ClassSession `json:"session"`
	MemberName string       `json:"member_name"`
	ClassName  string       `json:"class_name"`
}
