package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mbeiro/StudioAppBack/internal/billing"
	"github.com/mbeiro/StudioAppBack/internal/models"
	"github.com/mbeiro/StudioAppBack/internal/schedule"
	"github.com/mbeiro/StudioAppBack/internal/services"
)

type PaymentHandler struct {
	paymentService paymentApplicationService
	engine         *schedule.Engine
	payoutDay      string
}

type paymentApplicationService interface {
	OutstandingLineItems(ctx context.Context, instructorID int64) ([]billing.LineItem, error)
	FinalizeBatch(ctx context.Context, instructorID int64, periodStart, periodEnd time.Time) (*models.PaymentBatchDetail, error)
	GetBatch(ctx context.Context, batchID int64) (*models.PaymentBatchDetail, error)
	ListBatches(ctx context.Context, instructorID int64) ([]models.PaymentBatch, error)
	ExportBatchCSV(ctx context.Context, batchID int64, w io.Writer) error
}

func NewPaymentHandler(
	paymentService *services.PaymentService,
	engine *schedule.Engine,
	payoutDay string,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		engine:         engine,
		payoutDay:      payoutDay,
	}
}

// Outstanding lists the computed line items for check-ins not yet folded into
// a batch. Admins see the full revenue split across all instructors (or one,
// via ?instructor_id=); instructors see only their own payouts.
func (h *PaymentHandler) Outstanding(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)

	var instructorID int64
	visibility := billing.AdminVisibility
	if role == "admin" {
		instructorID = int64(c.QueryInt("instructor_id", 0))
	} else {
		userID, ok := authenticatedUserID(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
		instructorID = userID
		visibility = billing.InstructorVisibility
	}

	items, err := h.paymentService.OutstandingLineItems(c.Context(), instructorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to compute outstanding payments"})
	}

	views := make([]billing.LineItemView, 0, len(items))
	for _, item := range items {
		views = append(views, item.RestrictedTo(visibility))
	}
	return c.JSON(fiber.Map{"line_items": views})
}

type finalizeBatchRequest struct {
	InstructorID int64  `json:"instructor_id" validate:"required,gt=0"`
	PeriodStart  string `json:"period_start"`
	PeriodEnd    string `json:"period_end"`
}

// FinalizeBatch folds an instructor's outstanding check-ins into a persisted
// batch. When no explicit period is given, the payout week ending on the
// studio's configured payout day is used.
func (h *PaymentHandler) FinalizeBatch(c *fiber.Ctx) error {
	var req finalizeBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	periodStart, periodEnd, err := h.batchPeriod(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Invalid period, expected YYYY-MM-DD dates"})
	}

	detail, err := h.paymentService.FinalizeBatch(c.Context(), req.InstructorID, periodStart, periodEnd)
	if err != nil {
		if errors.Is(err, services.ErrNothingToPay) {
			return c.Status(fiber.StatusUnprocessableEntity).
				JSON(fiber.Map{"error": "No outstanding check-ins for instructor"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to finalize payment batch"})
	}
	return c.Status(fiber.StatusCreated).JSON(detail)
}

func (h *PaymentHandler) batchPeriod(req finalizeBatchRequest) (time.Time, time.Time, error) {
	if req.PeriodStart == "" && req.PeriodEnd == "" {
		return h.engine.PayPeriodEnding(h.payoutDay)
	}

	periodStart, err := time.Parse("2006-01-02", req.PeriodStart)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	periodEnd, err := time.Parse("2006-01-02", req.PeriodEnd)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if periodEnd.Before(periodStart) {
		return time.Time{}, time.Time{}, errors.New("period end before start")
	}
	return periodStart, periodEnd, nil
}

// ListBatches returns finalized batches; instructors only see their own.
func (h *PaymentHandler) ListBatches(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)

	var instructorID int64
	if role == "admin" {
		instructorID = int64(c.QueryInt("instructor_id", 0))
	} else {
		userID, ok := authenticatedUserID(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
		instructorID = userID
	}

	batches, err := h.paymentService.ListBatches(c.Context(), instructorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to list payment batches"})
	}
	return c.JSON(fiber.Map{"batches": batches})
}

func (h *PaymentHandler) GetBatch(c *fiber.Ctx) error {
	batchID, err := pathID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	detail, err := h.paymentService.GetBatch(c.Context(), batchID)
	if err != nil {
		return batchError(c, err)
	}

	role, _ := c.Locals("role").(string)
	if role != "admin" {
		userID, ok := authenticatedUserID(c)
		if !ok || detail.InstructorID != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
	}
	return c.JSON(detail)
}

// ExportBatchCSV streams a finalized batch as a CSV download.
func (h *PaymentHandler) ExportBatchCSV(c *fiber.Ctx) error {
	batchID, err := pathID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	var buf bytes.Buffer
	if err := h.paymentService.ExportBatchCSV(c.Context(), batchID, &buf); err != nil {
		return batchError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=payment_batch_%d.csv", batchID))
	return c.Send(buf.Bytes())
}

func batchError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrBatchNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment batch not found"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payment batch"})
}
