package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-ops/grievance-service/internal/api/dto"
	"github.com/campus-ops/grievance-service/internal/domain"
	"github.com/campus-ops/grievance-service/internal/service"
	apperrors "github.com/campus-ops/grievance-service/pkg/util"
)

// AdminStaffHandler exposes staff-directory administration.
type AdminStaffHandler struct {
	staff *service.StaffService
}

// NewAdminStaffHandler constructs handler.
func NewAdminStaffHandler(staffService *service.StaffService) *AdminStaffHandler {
	return &AdminStaffHandler{staff: staffService}
}

// List GET /admin/staff?department=X.
func (h *AdminStaffHandler) List(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	var department *string
	if d := c.Query("department"); d != "" {
		department = &d
	}
	records, err := h.staff.ListStaff(c.Context(), department)
	if err != nil {
		return err
	}
	items := make([]dto.StaffResponse, 0, len(records))
	for i := range records {
		items = append(items, staffResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /admin/staff/:id.
func (h *AdminStaffHandler) Get(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	record, err := h.staff.GetStaff(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(record)})
}

// AdminStatus GET /admin/staff/:id/status.
func (h *AdminStaffHandler) AdminStatus(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	status, err := h.staff.CheckAdminStatus(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": status})
}

// Promote POST /admin/staff/promote.
func (h *AdminStaffHandler) Promote(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PromoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.StaffID == "" || req.Department == "" {
		return apperrors.NewValidationError("staff_id and department required", nil)
	}

	record, err := h.staff.Promote(c.Context(), principal.User.ID, req.StaffID, req.Department)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(record)})
}

// Demote POST /admin/staff/:id/demote.
func (h *AdminStaffHandler) Demote(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	result, err := h.staff.Demote(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DemoteResponse{
		StaffID:                c.Params("id"),
		ModifiedGrievanceCount: result.ModifiedGrievanceCount,
	}})
}

func staffResponse(record *domain.StaffRecord) dto.StaffResponse {
	return dto.StaffResponse{
		ID:              record.ID,
		FullName:        record.FullName,
		AdminDepartment: record.AdminDepartment,
		IsDeptAdmin:     record.IsDeptAdmin,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
