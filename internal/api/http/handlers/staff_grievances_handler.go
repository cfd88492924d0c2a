package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-ops/grievance-service/internal/api/dto"
	"github.com/campus-ops/grievance-service/internal/auth"
	"github.com/campus-ops/grievance-service/internal/domain"
	"github.com/campus-ops/grievance-service/internal/service"
	apperrors "github.com/campus-ops/grievance-service/pkg/util"
)

// StaffGrievancesHandler exposes the assigned-staff workflow endpoints.
type StaffGrievancesHandler struct {
	grievances *service.GrievanceService
}

// NewStaffGrievancesHandler constructs handler.
func NewStaffGrievancesHandler(grievanceService *service.GrievanceService) *StaffGrievancesHandler {
	return &StaffGrievancesHandler{grievances: grievanceService}
}

// ListAssigned GET /staff/grievances. Returns the reduced projection.
func (h *StaffGrievancesHandler) ListAssigned(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.SubjectType != domain.SubjectTypeStaff {
		return apperrors.NewUnauthorized("staff required")
	}
	summaries, err := h.grievances.GetAssignedTo(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	items := make([]dto.GrievanceSummaryResponse, 0, len(summaries))
	for i := range summaries {
		items = append(items, summaryResponse(&summaries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateStatus PATCH /staff/grievances/:id/status.
func (h *StaffGrievancesHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.SubjectType != domain.SubjectTypeStaff {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	grievance, err := h.grievances.UpdateStatus(c.Context(), principal.User.ID, c.Params("id"), domain.GrievanceStatus(req.Status), req.Remarks)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": grievanceResponse(grievance)})
}

// RequestExtension POST /staff/grievances/:id/extension.
func (h *StaffGrievancesHandler) RequestExtension(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.SubjectType != domain.SubjectTypeStaff {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.ExtensionRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RequestedDate == "" {
		return apperrors.NewValidationError("requested date required", nil)
	}

	grievance, err := h.grievances.RequestExtension(c.Context(), principal.User.ID, c.Params("id"), req.RequestedDate, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": grievanceResponse(grievance)})
}

// ListHistory GET /staff/grievances/:id/history.
func (h *StaffGrievancesHandler) ListHistory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.SubjectType != domain.SubjectTypeStaff {
		return apperrors.NewUnauthorized("staff required")
	}
	entries, err := h.grievances.ListHistory(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.HistoryResponse{
			ID:            entry.ID,
			ChangeType:    entry.ChangeType,
			ChangedByType: entry.ChangedByType,
			ChangedByID:   entry.ChangedByID,
			OldValue:      entry.OldValue,
			NewValue:      entry.NewValue,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func summaryResponse(s *domain.GrievanceSummary) dto.GrievanceSummaryResponse {
	return dto.GrievanceSummaryResponse{
		ID:           s.ID,
		Name:         s.Name,
		RegID:        s.RegID,
		Category:     s.Category,
		Message:      s.Message,
		Status:       s.Status,
		DeadlineDate: s.DeadlineDate,
		CreatedAt:    s.CreatedAt,
	}
}
