package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-ops/grievance-service/internal/api/dto"
	"github.com/campus-ops/grievance-service/internal/auth"
	"github.com/campus-ops/grievance-service/internal/domain"
	"github.com/campus-ops/grievance-service/internal/service"
	apperrors "github.com/campus-ops/grievance-service/pkg/util"
)

// AdminGrievancesHandler exposes department-admin grievance operations.
type AdminGrievancesHandler struct {
	grievances  *service.GrievanceService
	assignments *service.AssignmentService
}

// NewAdminGrievancesHandler constructs handler.
func NewAdminGrievancesHandler(grievanceService *service.GrievanceService, assignmentService *service.AssignmentService) *AdminGrievancesHandler {
	return &AdminGrievancesHandler{grievances: grievanceService, assignments: assignmentService}
}

// ListAll GET /admin/grievances. Master admin only.
func (h *AdminGrievancesHandler) ListAll(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	grievances, err := h.grievances.GetAll(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": grievanceResponses(grievances)})
}

// ListByCategory GET /admin/grievances/category/:category.
func (h *AdminGrievancesHandler) ListByCategory(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	category := c.Params("category")
	grievances, err := h.grievances.GetByCategory(c.Context(), principal.User.ID, category)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": grievanceResponses(grievances)})
}

// Assign POST /admin/grievances/:id/assign.
func (h *AdminGrievancesHandler) Assign(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.StaffID == "" {
		return apperrors.NewValidationError("staff_id required", nil)
	}

	grievance, warning, err := h.assignments.Assign(c.Context(), principal.User.ID, c.Params("id"), req.StaffID, req.Deadline)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AssignResponse{
		Grievance: grievanceResponse(grievance),
		Warning:   warning,
	}})
}

// ResolveExtension POST /admin/grievances/:id/extension/resolve.
func (h *AdminGrievancesHandler) ResolveExtension(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ResolveExtensionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	grievance, err := h.grievances.ResolveExtension(c.Context(), principal.User.ID, c.Params("id"), req.Approve)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": grievanceResponse(grievance)})
}

func staffPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.SubjectType != domain.SubjectTypeStaff || principal.User == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	return principal, nil
}
