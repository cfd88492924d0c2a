package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-ops/grievance-service/internal/api/dto"
	"github.com/campus-ops/grievance-service/internal/auth"
	"github.com/campus-ops/grievance-service/internal/domain"
	"github.com/campus-ops/grievance-service/internal/service"
	apperrors "github.com/campus-ops/grievance-service/pkg/util"
)

// GrievancesHandler manages the student-facing grievance endpoints.
type GrievancesHandler struct {
	grievances *service.GrievanceService
}

// NewGrievancesHandler constructs handler.
func NewGrievancesHandler(grievanceService *service.GrievanceService) *GrievancesHandler {
	return &GrievancesHandler{grievances: grievanceService}
}

// Submit POST /grievances.
func (h *GrievancesHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SubmitGrievanceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	grievance, err := h.grievances.Submit(c.Context(), principal.User.ID, service.SubmitInput{
		StudentProgram: req.StudentProgram,
		Category:       req.Category,
		Message:        req.Message,
		Attachment:     req.Attachment,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": grievanceResponse(grievance)})
}

// ListOwn GET /grievances.
func (h *GrievancesHandler) ListOwn(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	grievances, err := h.grievances.GetByUser(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": grievanceResponses(grievances)})
}

// Get GET /grievances/:id.
func (h *GrievancesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	grievance, err := h.grievances.GetForUser(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": grievanceResponse(grievance)})
}

// Verify POST /grievances/:id/verify.
func (h *GrievancesHandler) Verify(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.VerifyResolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	grievance, err := h.grievances.VerifyResolution(c.Context(), principal.User.ID, c.Params("id"), req.Accept, req.Feedback)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": grievanceResponse(grievance)})
}

// ListMessages GET /grievances/:id/messages.
func (h *GrievancesHandler) ListMessages(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	isStaff := principal.SubjectType == domain.SubjectTypeStaff
	msgs, err := h.grievances.ListMessages(c.Context(), principal.User.ID, isStaff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": messageResponses(msgs)})
}

// AddMessage POST /grievances/:id/messages.
func (h *GrievancesHandler) AddMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	isStaff := principal.SubjectType == domain.SubjectTypeStaff
	msg, err := h.grievances.AddMessage(c.Context(), principal.User.ID, isStaff, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

func grievanceResponse(g *domain.Grievance) dto.GrievanceResponse {
	resp := dto.GrievanceResponse{
		ID:                   g.ID,
		UserID:               g.UserID,
		Name:                 g.Name,
		Email:                g.Email,
		Phone:                g.Phone,
		RegID:                g.RegID,
		StudentProgram:       g.StudentProgram,
		Category:             g.Category,
		Message:              g.Message,
		Attachment:           g.Attachment,
		AssignedTo:           g.AssignedTo,
		AssignedRole:         g.AssignedRole,
		AssignedBy:           g.AssignedBy,
		DeadlineDate:         g.DeadlineDate,
		Status:               g.Status,
		ResolvedBy:           g.ResolvedBy,
		ResolutionRemarks:    g.ResolutionRemarks,
		ResolutionProposedAt: g.ResolutionProposedAt,
		CreatedAt:            g.CreatedAt,
		UpdatedAt:            g.UpdatedAt,
	}
	if g.Extension != nil {
		resp.Extension = &dto.ExtensionResponse{
			RequestedDate: g.Extension.RequestedDate,
			Reason:        g.Extension.Reason,
			Status:        g.Extension.Status,
		}
	}
	return resp
}

func grievanceResponses(grievances []domain.Grievance) []dto.GrievanceResponse {
	items := make([]dto.GrievanceResponse, 0, len(grievances))
	for i := range grievances {
		items = append(items, grievanceResponse(&grievances[i]))
	}
	return items
}

func messageResponse(msg *domain.GrievanceMessage) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         msg.ID,
		AuthorType: msg.AuthorType,
		AuthorID:   msg.AuthorID,
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
	}
}

func messageResponses(msgs []domain.GrievanceMessage) []dto.MessageResponse {
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, messageResponse(&msgs[i]))
	}
	return items
}
