package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mbeiro/StudioAppBack/internal/services"
)

type ClassHandler struct {
	classService *services.ClassService
}

func NewClassHandler(classService *services.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

type classRequest struct {
	Name            string   `json:"name" validate:"required"`
	InstructorID    int64    `json:"instructor_id" validate:"required,gt=0"`
	ScheduleDays    []string `json:"schedule_days" validate:"required,min=1"`
	ScheduleTime    string   `json:"schedule_time"`
	DurationMinutes int      `json:"duration_minutes" validate:"required,gt=0"`
	PaymentMode     string   `json:"payment_mode" validate:"required,oneof=flat percentage"`
	FlatAmount      float64  `json:"flat_amount" validate:"gte=0"`
	Percentage      *float64 `json:"percentage" validate:"omitempty,gte=0,lte=100"`
	Capacity        int      `json:"capacity" validate:"gte=0"`
}

func (r classRequest) toInput() services.ClassInput {
	return services.ClassInput{
		Name:            r.Name,
		InstructorID:    r.InstructorID,
		ScheduleDays:    r.ScheduleDays,
		ScheduleTime:    r.ScheduleTime,
		DurationMinutes: r.DurationMinutes,
		PaymentMode:     r.PaymentMode,
		FlatAmount:      r.FlatAmount,
		Percentage:      r.Percentage,
		Capacity:        r.Capacity,
	}
}

func (h *ClassHandler) Create(c *fiber.Ctx) error {
	var req classRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	class, err := h.classService.CreateClass(c.Context(), req.toInput())
	if err != nil {
		return classError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(class)
}

func (h *ClassHandler) Update(c *fiber.Ctx) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	var req classRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	class, err := h.classService.UpdateClass(c.Context(), classID, req.toInput())
	if err != nil {
		return classError(c, err)
	}
	return c.JSON(class)
}

func (h *ClassHandler) Get(c *fiber.Ctx) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	class, err := h.classService.GetClass(c.Context(), classID)
	if err != nil {
		return classError(c, err)
	}
	return c.JSON(class)
}

func (h *ClassHandler) List(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active", false)

	classes, err := h.classService.ListClasses(c.Context(), activeOnly)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to list classes"})
	}
	return c.JSON(fiber.Map{"classes": classes})
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

func (h *ClassHandler) SetActive(c *fiber.Ctx) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	var req setActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	class, err := h.classService.SetActive(c.Context(), classID, req.IsActive)
	if err != nil {
		return classError(c, err)
	}
	return c.JSON(class)
}

// Sessions projects the class's weekly pattern onto the requested date range.
func (h *ClassHandler) Sessions(c *fiber.Ctx) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Query params 'from' and 'to' are required (YYYY-MM-DD)"})
	}

	occurrences, err := h.classService.ProjectedSessions(c.Context(), classID, from, to)
	if err != nil {
		return classError(c, err)
	}
	return c.JSON(fiber.Map{"sessions": occurrences})
}

func (h *ClassHandler) UpcomingSessions(c *fiber.Ctx) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	count := c.QueryInt("count", 5)
	if count < 1 {
		count = 1
	}

	occurrences, err := h.classService.UpcomingSessions(c.Context(), classID, count)
	if err != nil {
		return classError(c, err)
	}
	return c.JSON(fiber.Map{"sessions": occurrences})
}

func classError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrClassNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	case errors.Is(err, services.ErrInstructorNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Instructor not found"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class payload"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process class"})
	}
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	return strconv.ParseInt(c.Params(name), 10, 64)
}
