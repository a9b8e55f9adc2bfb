package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mbeiro/StudioAppBack/internal/models"
	"github.com/mbeiro/StudioAppBack/internal/services"
)

type stubCheckInService struct {
	checkInResult *models.CheckInDetail
	checkInErr    error
	rosterResult  []models.CheckIn
	rosterErr     error

	lastQRToken   string
	lastClassID   int64
	lastSessionID int64
}

func (s *stubCheckInService) CheckIn(_ context.Context, qrToken string, classID int64) (*models.CheckInDetail, error) {
	s.lastQRToken = qrToken
	s.lastClassID = classID
	return s.checkInResult, s.checkInErr
}

func (s *stubCheckInService) SessionRoster(_ context.Context, sessionID int64) ([]models.CheckIn, error) {
	s.lastSessionID = sessionID
	return s.rosterResult, s.rosterErr
}

func checkInTestApp(handler *CheckInHandler) *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/check-ins", handler.Scan)
	app.Get("/api/v1/sessions/:id/roster", handler.SessionRoster)
	return app
}

func TestScanRecordsCheckIn(t *testing.T) {
	service := &stubCheckInService{
		checkInResult: &models.CheckInDetail{
			CheckIn: models.CheckIn{ID: 31, SessionID: 8, MemberID: 12, PurchaseType: "package"},
			Session: models.ClassSession{
				ID:          8,
				ClassID:     3,
				SessionDate: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
				SessionTime: "18:00",
			},
			MemberName: "Dana Reyes",
			ClassName:  "Evening Yoga",
		},
	}
	handler := &CheckInHandler{checkInService: service}
	app := checkInTestApp(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/check-ins",
		strings.NewReader(`{"qr_token": "qr-dana", "class_id": 3}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastQRToken != "qr-dana" {
		t.Fatalf("expected qr token qr-dana, got %q", service.lastQRToken)
	}
	if service.lastClassID != 3 {
		t.Fatalf("expected class id 3, got %d", service.lastClassID)
	}

	var detail models.CheckInDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.ID != 31 || detail.ClassName != "Evening Yoga" {
		t.Fatalf("unexpected payload: %+v", detail)
	}
}

func TestScanRejectsMissingFields(t *testing.T) {
	service := &stubCheckInService{}
	handler := &CheckInHandler{checkInService: service}
	app := checkInTestApp(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/check-ins",
		strings.NewReader(`{"qr_token": ""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.lastQRToken != "" {
		t.Fatalf("service should not have been called")
	}
}

func TestScanErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"unknown member", services.ErrMemberNotFound, http.StatusNotFound},
		{"inactive member", services.ErrMemberInactive, http.StatusUnprocessableEntity},
		{"unknown class", services.ErrClassNotFound, http.StatusNotFound},
		{"inactive class", services.ErrClassInactive, http.StatusUnprocessableEntity},
		{"no credit", services.ErrNoCredit, http.StatusPaymentRequired},
		{"duplicate scan", services.ErrAlreadyCheckedIn, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := &CheckInHandler{checkInService: &stubCheckInService{checkInErr: tc.serviceErr}}
			app := checkInTestApp(handler)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/check-ins",
				strings.NewReader(`{"qr_token": "qr-dana", "class_id": 3}`))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestSessionRosterReturnsCheckIns(t *testing.T) {
	service := &stubCheckInService{
		rosterResult: []models.CheckIn{
			{ID: 31, SessionID: 8, MemberID: 12, PurchaseType: "package"},
			{ID: 32, SessionID: 8, MemberID: 14, PurchaseType: "drop_in"},
		},
	}
	handler := &CheckInHandler{checkInService: service}
	app := checkInTestApp(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/8/roster", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastSessionID != 8 {
		t.Fatalf("expected session id 8, got %d", service.lastSessionID)
	}

	var payload struct {
		CheckIns []models.CheckIn `json:"check_ins"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.CheckIns) != 2 {
		t.Fatalf("expected 2 check-ins, got %d", len(payload.CheckIns))
	}
}
