package billing

import (
	"time"

	"github.com/mbeiro/StudioAppBack/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultPercentage applies when a percentage-mode class has no configured
// split: the instructor keeps 70% of per-session revenue.
const DefaultPercentage = 70.0

var oneHundred = decimal.NewFromInt(100)

// Round2 rounds a currency amount to the nearest cent, half up.
func Round2(amount float64) float64 {
	rounded, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return rounded
}

// PerSessionPrice derives the value of one session from a prepaid bundle.
// A degenerate bundle size is treated as a single session rather than
// failing the whole payment projection.
func PerSessionPrice(amountPaid float64, numSessions int) float64 {
	if numSessions < 1 {
		numSessions = 1
	}
	price, _ := decimal.NewFromFloat(amountPaid).
		DivRound(decimal.NewFromInt(int64(numSessions)), 2).
		Float64()
	return price
}

// InstructorPayment computes the per-session payout under the class policy.
// Flat mode returns the configured amount untouched regardless of revenue;
// percentage mode takes the configured share of the per-session price,
// rounded to the cent.
func InstructorPayment(policy models.PaymentPolicy, perSessionPrice float64) float64 {
	if policy.Mode == models.PaymentModeFlat {
		return policy.FlatAmount
	}

	percentage := DefaultPercentage
	if policy.Percentage != nil {
		percentage = *policy.Percentage
	}
	payment, _ := decimal.NewFromFloat(perSessionPrice).
		Mul(decimal.NewFromFloat(percentage)).
		DivRound(oneHundred, 2).
		Float64()
	return payment
}

// AdminEarnings is the studio margin left after the instructor payout. It is
// derived from the already-rounded payment so that payout plus margin
// reconstructs the rounded per-session price to the cent.
func AdminEarnings(perSessionPrice, instructorPayment float64) float64 {
	earnings, _ := decimal.NewFromFloat(perSessionPrice).
		Sub(decimal.NewFromFloat(instructorPayment)).
		Round(2).
		Float64()
	return earnings
}

// Visibility selects which line item fields a caller may see.
type Visibility int

const (
	// AdminVisibility exposes the full revenue split.
	AdminVisibility Visibility = iota
	// InstructorVisibility exposes only the instructor's own payout.
	InstructorVisibility
)

// LineItem is the derived payment record for one check-in. It is computed on
// read and never persisted until a batch is finalized.
type LineItem struct {
	CheckInID         int64
	ClassID           int64
	ClassName         string
	InstructorID      int64
	MemberID          int64
	MemberName        string
	SessionDate       time.Time
	SessionTime       string
	PerSessionPrice   float64
	InstructorPayment float64
	AdminEarnings     float64
}

// LineItemView is the caller-facing shape of a LineItem. Revenue fields the
// viewer may not see are omitted from the payload entirely.
type LineItemView struct {
	CheckInID         int64     `json:"check_in_id"`
	ClassID           int64     `json:"class_id"`
	ClassName         string    `json:"class_name"`
	InstructorID      int64     `json:"instructor_id"`
	MemberID          int64     `json:"member_id"`
	MemberName        string    `json:"member_name"`
	SessionDate       time.Time `json:"session_date"`
	SessionTime       string    `json:"session_time"`
	InstructorPayment float64   `json:"instructor_payment"`
	PerSessionPrice   *float64  `json:"per_session_price,omitempty"`
	AdminEarnings     *float64  `json:"admin_earnings,omitempty"`
}

// NewLineItem computes the full revenue split for one check-in.
func NewLineItem(checkIn models.CheckIn, class models.Class, perSessionPrice float64) LineItem {
	payment := InstructorPayment(class.PaymentPolicy, perSessionPrice)
	return LineItem{
		CheckInID:         checkIn.ID,
		ClassID:           class.ID,
		ClassName:         class.Name,
		InstructorID:      class.InstructorID,
		MemberID:          checkIn.MemberID,
		PerSessionPrice:   perSessionPrice,
		InstructorPayment: payment,
		AdminEarnings:     AdminEarnings(perSessionPrice, payment),
	}
}

// RestrictedTo returns the item as seen by the given viewer.
func (li LineItem) RestrictedTo(visibility Visibility) LineItemView {
	view := LineItemView{
		CheckInID:         li.CheckInID,
		ClassID:           li.ClassID,
		ClassName:         li.ClassName,
		InstructorID:      li.InstructorID,
		MemberID:          li.MemberID,
		MemberName:        li.MemberName,
		SessionDate:       li.SessionDate,
		SessionTime:       li.SessionTime,
		InstructorPayment: li.InstructorPayment,
	}
	if visibility == AdminVisibility {
		price := li.PerSessionPrice
		earnings := li.AdminEarnings
		view.PerSessionPrice = &price
		view.AdminEarnings = &earnings
	}
	return view
}
