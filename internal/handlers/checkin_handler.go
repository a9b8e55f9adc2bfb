package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mbeiro/StudioAppBack/internal/models"
	"github.com/mbeiro/StudioAppBack/internal/services"
)

type CheckInHandler struct {
	checkInService checkInApplicationService
}

type checkInApplicationService interface {
	CheckIn(ctx context.Context, qrToken string, classID int64) (*models.CheckInDetail, error)
	SessionRoster(ctx context.Context, sessionID int64) ([]models.CheckIn, error)
}

func NewCheckInHandler(checkInService *services.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkInService: checkInService}
}

type scanRequest struct {
	QRToken string `json:"qr_token" validate:"required"`
	ClassID int64  `json:"class_id" validate:"required,gt=0"`
}

// Scan handles a QR scan at the front desk: the member's token plus the
// class they are walking into.
func (h *CheckInHandler) Scan(c *fiber.Ctx) error {
	var req scanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	detail, err := h.checkInService.CheckIn(c.Context(), req.QRToken, req.ClassID)
	if err != nil {
		return checkInError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(detail)
}

func (h *CheckInHandler) SessionRoster(c *fiber.Ctx) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	checkIns, err := h.checkInService.SessionRoster(c.Context(), sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to fetch session roster"})
	}
	return c.JSON(fiber.Map{"check_ins": checkIns})
}

func checkInError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrMemberNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Member not found"})
	case errors.Is(err, services.ErrMemberInactive):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Member is inactive"})
	case errors.Is(err, services.ErrClassNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	case errors.Is(err, services.ErrClassInactive):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Class is inactive"})
	case errors.Is(err, services.ErrNoCredit):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "No remaining credit"})
	case errors.Is(err, services.ErrAlreadyCheckedIn):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Already checked in to this session"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record check-in"})
	}
}
