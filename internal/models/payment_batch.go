package models

import "time"

// PaymentBatch is a finalized payout covering every outstanding check-in of
// one instructor over one pay period. Item amounts are stored exactly as
// computed at finalization time so historical batches do not shift if a class
// policy changes later.
type PaymentBatch struct {
	ID           int64     `json:"id"`
	InstructorID int64     `json:"instructor_id"`
	Reference    string    `json:"reference"`
	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`
	TotalAmount  float64   `json:"total_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

type PaymentBatchItem struct {
	ID                int64     `json:"id"`
	BatchID           int64     `json:"batch_id"`
	CheckInID         int64     `json:"check_in_id"`
	ClassID           int64     `json:"class_id"`
	PerSessionPrice   float64   `json:"per_session_price"`
	InstructorPayment float64   `json:"instructor_payment"`
	AdminEarnings     float64   `json:"admin_earnings"`
	CreatedAt         time.Time `json:"created_at"`
}

type PaymentBatchDetail struct {
	PaymentBatch
	Items []PaymentBatchItem `json:"items"`
}
