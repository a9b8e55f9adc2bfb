package models

import "time"

const (
	PaymentModeFlat       = "flat"
	PaymentModePercentage = "percentage"
)

// ClassSchedule is the weekly recurrence pattern of a class: the weekdays it
// runs on and the start time shared by every occurrence. An empty Days slice
// means the class has no recurring schedule.
type ClassSchedule struct {
	Days            []string `json:"schedule_days"`
	Time            string   `json:"schedule_time"`
	DurationMinutes int      `json:"duration_minutes"`
}

// PaymentPolicy determines how the instructor is paid per session: a fixed
// amount, or a percentage of the per-session revenue. A nil Percentage falls
// back to the default split in the billing package.
type PaymentPolicy struct {
	Mode       string   `json:"payment_mode"`
	FlatAmount float64  `json:"flat_amount"`
	Percentage *float64 `json:"percentage"`
}

type Class struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	InstructorID int64  `json:"instructor_id"`
	ClassSchedule
	PaymentPolicy
	Capacity  int       `json:"capacity"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
