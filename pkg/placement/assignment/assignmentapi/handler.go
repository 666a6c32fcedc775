package assignmentapi

import (
	"github.com/Abraxas-365/workforce/pkg/iam/auth"
	"github.com/Abraxas-365/workforce/pkg/iam/scopes"
	"github.com/Abraxas-365/workforce/pkg/kernel"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment/assignmentsrv"
	"github.com/gofiber/fiber/v2"
)

// AssignmentHandlers maneja las rutas del motor de aprobaciones con Fiber
type AssignmentHandlers struct {
	service *assignmentsrv.ApprovalService
}

// NewAssignmentHandlers crea un nuevo handler de asignaciones
func NewAssignmentHandlers(service *assignmentsrv.ApprovalService) *AssignmentHandlers {
	return &AssignmentHandlers{service: service}
}

// RegisterRoutes registra las rutas de asignaciones en Fiber
func (h *AssignmentHandlers) RegisterRoutes(router fiber.Router, authMiddleware *auth.TokenMiddleware) {
	assignments := router.Group("/assignments", authMiddleware.Authenticate())
	assignments.Get("/:id", authMiddleware.RequireScope(scopes.ScopeAssignmentsRead), h.GetAssignment)
	assignments.Post("/:id/decision", authMiddleware.RequireAdmin(), h.Decide)
	assignments.Post("/bulk-decision", authMiddleware.RequireAdmin(), h.DecideBulk)

	jobRoles := router.Group("/job-roles", authMiddleware.Authenticate())
	jobRoles.Get("/:id/assignments", authMiddleware.RequireScope(scopes.ScopeAssignmentsRead), h.ListByJobRole)
	jobRoles.Get("/:id/status", authMiddleware.RequireScope(scopes.ScopeRequirementsRead), h.JobRoleStatus)
}

// Decide aplica la decisión del admin sobre una asignación
func (h *AssignmentHandlers) Decide(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrUnauthorized()
	}

	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "assignment id is required",
		})
	}

	var req assignment.DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updated, err := h.service.Decide(c.Context(), authContext, kernel.AssignmentID(id), req)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// DecideBulk aplica la decisión del admin sobre varias asignaciones
func (h *AssignmentHandlers) DecideBulk(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrUnauthorized()
	}

	var req assignment.BulkDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.service.DecideBulk(c.Context(), authContext, req)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// GetAssignment retorna una asignación por ID
func (h *AssignmentHandlers) GetAssignment(c *fiber.Ctx) error {
	id := c.Params("id")

	a, err := h.service.GetAssignment(c.Context(), kernel.AssignmentID(id))
	if err != nil {
		return err
	}

	return c.JSON(a)
}

// ListByJobRole retorna las asignaciones de un puesto
func (h *AssignmentHandlers) ListByJobRole(c *fiber.Ctx) error {
	id := c.Params("id")

	as, err := h.service.ListByJobRole(c.Context(), kernel.JobRoleID(id))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"assignments": as,
		"total":       len(as),
	})
}

// JobRoleStatus retorna la lectura derivada del avance de un puesto
func (h *AssignmentHandlers) JobRoleStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	status, err := h.service.JobRoleStatus(c.Context(), kernel.JobRoleID(id))
	if err != nil {
		return err
	}

	return c.JSON(status)
}
