package billing

import (
	"testing"

	"github.com/mbeiro/StudioAppBack/internal/models"
)

func percentagePolicy(value float64) models.PaymentPolicy {
	return models.PaymentPolicy{Mode: models.PaymentModePercentage, Percentage: &value}
}

func TestRound2HalfUp(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{14.999, 15.00},
		{15.001, 15.00},
		{6.425, 6.43},
		{6.4249, 6.42},
		{0, 0},
		{25, 25},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, expected %v", tc.in, got, tc.want)
		}
	}
}

func TestPerSessionPrice(t *testing.T) {
	if got := PerSessionPrice(150, 7); got != 21.43 {
		t.Fatalf("expected 21.43 for a $150 package over 7 classes, got %v", got)
	}
	if got := PerSessionPrice(100, 10); got != 10 {
		t.Fatalf("expected 10, got %v", got)
	}
}

func TestPerSessionPriceGuardsDegenerateDivisor(t *testing.T) {
	for _, numSessions := range []int{0, -3} {
		if got := PerSessionPrice(80, numSessions); got != 80 {
			t.Errorf("num_sessions=%d: expected the full amount 80, got %v", numSessions, got)
		}
	}
}

func TestInstructorPaymentFlatIgnoresPrice(t *testing.T) {
	policy := models.PaymentPolicy{Mode: models.PaymentModeFlat, FlatAmount: 25}
	for _, price := range []float64{0, 9.99, 21.43, 500} {
		if got := InstructorPayment(policy, price); got != 25 {
			t.Errorf("price %v: expected flat 25, got %v", price, got)
		}
	}
}

func TestInstructorPaymentPercentageRoundsHalfUp(t *testing.T) {
	// $150 package over 7 classes: 21.43 * 0.7 = 15.001, rounds to 15.00.
	payment := InstructorPayment(percentagePolicy(70), 21.43)
	if payment != 15.00 {
		t.Fatalf("expected 15.00, got %v", payment)
	}
	if earnings := AdminEarnings(21.43, payment); earnings != 6.43 {
		t.Fatalf("expected admin earnings 6.43, got %v", earnings)
	}
}

func TestInstructorPaymentDefaultsToSeventyPercent(t *testing.T) {
	policy := models.PaymentPolicy{Mode: models.PaymentModePercentage}
	if got := InstructorPayment(policy, 10); got != 7 {
		t.Fatalf("expected the default 70%% split, got %v", got)
	}
}

func TestPaymentSplitReconciles(t *testing.T) {
	prices := []float64{21.43, 10, 33.33, 0.01, 12.50, 99.99}
	percentages := []float64{70, 50, 33, 100, 0, 66.6}
	for _, price := range prices {
		for _, pct := range percentages {
			payment := InstructorPayment(percentagePolicy(pct), price)
			earnings := AdminEarnings(price, payment)
			if Round2(payment+earnings) != Round2(price) {
				t.Errorf("price %v at %v%%: %v + %v does not reconstruct the price",
					price, pct, payment, earnings)
			}
		}
	}
}

func TestNewLineItemComputesSplit(t *testing.T) {
	class := models.Class{
		ID:           4,
		Name:         "Evening Yoga",
		InstructorID: 9,
		PaymentPolicy: models.PaymentPolicy{
			Mode: models.PaymentModePercentage,
		},
	}
	checkIn := models.CheckIn{ID: 77, MemberID: 12}

	item := NewLineItem(checkIn, class, 20)
	if item.InstructorPayment != 14 || item.AdminEarnings != 6 {
		t.Fatalf("expected 14/6 split, got %v/%v", item.InstructorPayment, item.AdminEarnings)
	}
	if item.CheckInID != 77 || item.ClassID != 4 || item.InstructorID != 9 || item.MemberID != 12 {
		t.Fatalf("line item lost its identifiers: %+v", item)
	}
}

func TestLineItemVisibility(t *testing.T) {
	item := LineItem{
		CheckInID:         1,
		PerSessionPrice:   20,
		InstructorPayment: 14,
		AdminEarnings:     6,
	}

	adminView := item.RestrictedTo(AdminVisibility)
	if adminView.PerSessionPrice == nil || *adminView.PerSessionPrice != 20 {
		t.Fatalf("admin view must expose the per-session price, got %+v", adminView)
	}
	if adminView.AdminEarnings == nil || *adminView.AdminEarnings != 6 {
		t.Fatalf("admin view must expose admin earnings, got %+v", adminView)
	}

	instructorView := item.RestrictedTo(InstructorVisibility)
	if instructorView.PerSessionPrice != nil || instructorView.AdminEarnings != nil {
		t.Fatalf("instructor view must hide revenue fields, got %+v", instructorView)
	}
	if instructorView.InstructorPayment != 14 {
		t.Fatalf("instructor view must keep the payout, got %v", instructorView.InstructorPayment)
	}
}
