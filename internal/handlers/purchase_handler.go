package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mbeiro/StudioAppBack/internal/services"
)

type PurchaseHandler struct {
	membershipService *services.MembershipService
}

func NewPurchaseHandler(membershipService *services.MembershipService) *PurchaseHandler {
	return &PurchaseHandler{membershipService: membershipService}
}

type sellPackageRequest struct {
	MemberID   int64   `json:"member_id" validate:"required,gt=0"`
	ClassID    int64   `json:"class_id" validate:"required,gt=0"`
	AmountPaid float64 `json:"amount_paid" validate:"gte=0"`
	NumClasses int     `json:"num_classes" validate:"required,gt=0"`
}

type sellDropInRequest struct {
	MemberID     int64   `json:"member_id" validate:"required,gt=0"`
	AmountPaid   float64 `json:"amount_paid" validate:"gte=0"`
	CreditsTotal int     `json:"credits_total" validate:"required,gt=0"`
}

// SellPackage records a class package sale and enrolls the member.
func (h *PurchaseHandler) SellPackage(c *fiber.Ctx) error {
	var req sellPackageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	purchase, err := h.membershipService.SellPackage(
		c.Context(), req.MemberID, req.ClassID, req.AmountPaid, req.NumClasses)
	if err != nil {
		return purchaseError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(purchase)
}

// SellDropIn records a punch card sale of single-session credits.
func (h *PurchaseHandler) SellDropIn(c *fiber.Ctx) error {
	var req sellDropInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	purchase, err := h.membershipService.SellDropInCredits(
		c.Context(), req.MemberID, req.AmountPaid, req.CreditsTotal)
	if err != nil {
		return purchaseError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(purchase)
}

func (h *PurchaseHandler) ListByMember(c *fiber.Ctx) error {
	memberID, err := pathID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member id"})
	}

	purchases, err := h.membershipService.ListMemberPurchases(c.Context(), memberID)
	if err != nil {
		return purchaseError(c, err)
	}
	return c.JSON(purchases)
}

func (h *PurchaseHandler) ClassEnrollments(c *fiber.Ctx) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	enrollments, err := h.membershipService.ClassEnrollments(c.Context(), classID)
	if err != nil {
		return purchaseError(c, err)
	}
	return c.JSON(fiber.Map{"enrollments": enrollments})
}

func purchaseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrMemberNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Member not found"})
	case errors.Is(err, services.ErrClassNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	case errors.Is(err, services.ErrClassInactive):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Class is inactive"})
	case errors.Is(err, services.ErrClassFull):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Class is at capacity"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid purchase payload"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process purchase"})
	}
}
