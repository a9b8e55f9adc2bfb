package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mbeiro/StudioAppBack/internal/services"
)

type MemberHandler struct {
	membershipService *services.MembershipService
}

func NewMemberHandler(membershipService *services.MembershipService) *MemberHandler {
	return &MemberHandler{membershipService: membershipService}
}

type createMemberRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var req createMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	member, err := h.membershipService.CreateMember(c.Context(), req.FullName, req.Email)
	if err != nil {
		return memberError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

func (h *MemberHandler) List(c *fiber.Ctx) error {
	page, limit := clampPaging(c.QueryInt("page", 1), c.QueryInt("limit", defaultPageLimit))

	members, total, err := h.membershipService.ListMembers(c.Context(), (page-1)*limit, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to list members"})
	}

	return c.JSON(fiber.Map{
		"members":    members,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *MemberHandler) Get(c *fiber.Ctx) error {
	memberID, err := pathID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member id"})
	}

	member, err := h.membershipService.GetMember(c.Context(), memberID)
	if err != nil {
		return memberError(c, err)
	}
	return c.JSON(member)
}

func (h *MemberHandler) SetActive(c *fiber.Ctx) error {
	memberID, err := pathID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member id"})
	}

	var req setActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	member, err := h.membershipService.SetMemberActive(c.Context(), memberID, req.IsActive)
	if err != nil {
		return memberError(c, err)
	}
	return c.JSON(member)
}

func memberError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrMemberNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Member not found"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member payload"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process member"})
	}
}
