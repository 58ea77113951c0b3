package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/opsdesk/internal/api/dto"
	"github.com/opsdesk/opsdesk/internal/auth"
	"github.com/opsdesk/opsdesk/internal/service"
	apperrors "github.com/opsdesk/opsdesk/pkg/util"
)

// ActorsHandler manages account administration endpoints.
type ActorsHandler struct {
	service *service.ActorService
}

// NewActorsHandler constructs handler.
func NewActorsHandler(actorService *service.ActorService) *ActorsHandler {
	return &ActorsHandler{service: actorService}
}

// CreateActor POST /actors.
func (h *ActorsHandler) CreateActor(c *fiber.Ctx) error {
	creator, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateActorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	actor, err := h.service.CreateActor(c.Context(), creator, service.ActorCreateInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		Department:  req.Department,
		CompanyCode: req.CompanyCode,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewActorResponse(actor)})
}

// ListEmployees GET /actors/employees.
func (h *ActorsHandler) ListEmployees(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var department *string
	if dep := c.Query("department"); dep != "" {
		department = &dep
	}

	employees, err := h.service.ListEmployees(c.Context(), actor, department)
	if err != nil {
		return err
	}
	items := make([]dto.ActorResponse, 0, len(employees))
	for i := range employees {
		items = append(items, dto.NewActorResponse(&employees[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeactivateActor DELETE /actors/:id.
func (h *ActorsHandler) DeactivateActor(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	target, err := h.service.Deactivate(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewActorResponse(target)})
}
