package assignmentsrv

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/workforce/pkg/audit"
	"github.com/Abraxas-365/workforce/pkg/kernel"
	"github.com/Abraxas-365/workforce/pkg/logx"
	"github.com/Abraxas-365/workforce/pkg/notify"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment"
	"github.com/Abraxas-365/workforce/pkg/placement/requirement"
)

// ApprovalService es el orquestador de aprobaciones: el único escritor de los
// tres estados de una asignación y de los agregados que derivan de ellos.
// Cada operación corre dentro de una transacción del Store; las notificaciones
// generadas se publican recién después del commit.
type ApprovalService struct {
	store        assignment.Store
	outbox       notify.Outbox
	agencyAppURL string
}

// NewApprovalService crea una nueva instancia del orquestador
func NewApprovalService(store assignment.Store, outbox notify.Outbox, agencyAppURL string) *ApprovalService {
	return &ApprovalService{
		store:        store,
		outbox:       outbox,
		agencyAppURL: agencyAppURL,
	}
}

// ============================================================================
// Single Decision
// ============================================================================

// Decide aplica la decisión del admin sobre una sola asignación. Un rechazo
// por esta vía devuelve el perfil a revisión para que la agencia lo reenvíe.
func (s *ApprovalService) Decide(ctx context.Context, actor *kernel.AuthContext, id kernel.AssignmentID, req assignment.DecisionRequest) (*assignment.Assignment, error) {
	if !actor.IsAdmin() {
		return nil, assignment.ErrForbidden().WithDetail("role", string(actor.Role))
	}
	if !req.Status.IsTerminalDecision() {
		return nil, assignment.ErrInvalidStatus().WithDetail("status", string(req.Status))
	}

	var (
		updated *assignment.Assignment
		pending []notify.Notification
	)

	err := s.store.Transact(ctx, func(ctx context.Context, tx assignment.Tx) error {
		a, err := tx.Assignments().FindByID(ctx, id)
		if err != nil {
			return err
		}

		role, err := tx.JobRoles().FindByID(ctx, a.JobRoleID)
		if err != nil {
			return err
		}

		oldData := snapshot(a)

		if req.Status == assignment.StatusAccepted {
			a.AdminAccept()
			if err := s.shortlistProfile(ctx, tx, a.ProfileID, role.RequirementID); err != nil {
				return err
			}
		} else {
			feedback := ""
			if req.Feedback != nil {
				feedback = *req.Feedback
			}
			a.AdminReject(feedback)

			// Vía individual: el perfil vuelve a revisión, la agencia puede
			// reenviarlo.
			profile, err := tx.Profiles().FindByID(ctx, a.ProfileID)
			if err != nil {
				return err
			}
			profile.ReturnToReview()
			if err := tx.Profiles().Save(ctx, *profile); err != nil {
				return err
			}
		}

		if err := tx.Assignments().Save(ctx, *a); err != nil {
			return err
		}

		if err := s.refreshJobRole(ctx, tx, role, &pending); err != nil {
			return err
		}
		if err := s.refreshRequirement(ctx, tx, role.RequirementID); err != nil {
			return err
		}

		entry := audit.NewEntry(
			audit.ActionAssignmentDecision,
			"labour_assignment",
			a.ID.String(),
			*actor.UserID,
			oldData,
			snapshot(a),
		)
		if err := tx.Audit().Record(ctx, entry); err != nil {
			return err
		}

		// Releer: el ranking pudo haber cambiado la marca de respaldo.
		updated, err = tx.Assignments().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.flush(ctx, pending)
	return updated, nil
}

// ============================================================================
// Bulk Decision
// ============================================================================

// DecideBulk aplica la misma decisión del admin sobre varias asignaciones en
// una sola transacción. Las asignaciones que ya están en el estado terminal
// opuesto se omiten, lo que hace la operación idempotente y segura de
// reintentar. Cualquier fallo aborta el lote completo.
func (s *ApprovalService) DecideBulk(ctx context.Context, actor *kernel.AuthContext, req assignment.BulkDecisionRequest) (*assignment.BulkDecisionResult, error) {
	if !actor.IsAdmin() {
		return nil, assignment.ErrForbidden().WithDetail("role", string(actor.Role))
	}
	if !req.Status.IsTerminalDecision() {
		return nil, assignment.ErrInvalidStatus().WithDetail("status", string(req.Status))
	}
	if len(req.AssignmentIDs) == 0 {
		return nil, assignment.ErrInvalidStatus().WithDetail("reason", "assignment_ids is empty")
	}
	if req.Status == assignment.StatusRejected && (req.Feedback == nil || *req.Feedback == "") {
		return nil, assignment.ErrMissingFeedback()
	}

	var (
		result  assignment.BulkDecisionResult
		pending []notify.Notification
	)

	err := s.store.Transact(ctx, func(ctx context.Context, tx assignment.Tx) error {
		result = assignment.BulkDecisionResult{}

		assignments, err := tx.Assignments().FindByIDs(ctx, req.AssignmentIDs)
		if err != nil {
			return err
		}
		if missing := missingIDs(req.AssignmentIDs, assignments); len(missing) > 0 {
			return assignment.ErrNotFound().WithDetail("missing_ids", missing)
		}

		roles := make(map[kernel.JobRoleID]*requirement.JobRole)
		for _, a := range assignments {
			if _, ok := roles[a.JobRoleID]; ok {
				continue
			}
			role, err := tx.JobRoles().FindByID(ctx, a.JobRoleID)
			if err != nil {
				return err
			}
			roles[a.JobRoleID] = role
		}

		touchedRoles := make(map[kernel.JobRoleID]bool)

		for _, a := range assignments {
			oldData := snapshot(a)

			// No-ops: un rechazo previo nunca se revierte masivamente y repetir
			// la misma decisión no hace nada, lo que vuelve el lote seguro de
			// reintentar. Un rechazo sí puede revertir una aceptación previa.
			// La petición omitida igual queda auditada.
			skip := a.AdminStatus == assignment.StatusRejected ||
				(req.Status == assignment.StatusAccepted && a.AdminStatus == assignment.StatusAccepted)

			if skip {
				result.Skipped = append(result.Skipped, a.ID)
			} else {
				role := roles[a.JobRoleID]

				if req.Status == assignment.StatusAccepted {
					a.AdminAccept()
					a.AgencyStatus = assignment.StatusAccepted
					// Nunca degradar una aceptación previa del cliente.
					if a.ClientStatus != assignment.StatusAccepted {
						a.ClientStatus = assignment.StatusSubmitted
					}
					if err := s.shortlistProfile(ctx, tx, a.ProfileID, role.RequirementID); err != nil {
						return err
					}
				} else {
					a.AdminReject(*req.Feedback)
					a.AgencyStatus = assignment.StatusNeedsRevision
					a.ClientStatus = assignment.StatusPending

					// Vía masiva: el perfil queda rechazado y se libera del
					// requerimiento.
					profile, err := tx.Profiles().FindByID(ctx, a.ProfileID)
					if err != nil {
						return err
					}
					profile.Reject()
					if err := tx.Profiles().Save(ctx, *profile); err != nil {
						return err
					}
				}

				if err := tx.Assignments().Save(ctx, *a); err != nil {
					return err
				}
				touchedRoles[a.JobRoleID] = true
				result.Updated = append(result.Updated, *a)
			}

			entry := audit.NewEntry(
				audit.ActionAssignmentBulkDecision,
				"labour_assignment",
				a.ID.String(),
				*actor.UserID,
				oldData,
				snapshot(a),
			)
			if err := tx.Audit().Record(ctx, entry); err != nil {
				return err
			}
		}

		touchedRequirements := make(map[kernel.RequirementID]bool)
		for roleID := range touchedRoles {
			role := roles[roleID]
			if err := s.refreshJobRole(ctx, tx, role, &pending); err != nil {
				return err
			}
			touchedRequirements[role.RequirementID] = true
		}

		// El cumplimiento de un requerimiento es una conjunción sobre todos
		// sus puestos, así que se reevalúa aunque haya cambiado uno solo.
		for reqID := range touchedRequirements {
			if err := s.refreshRequirement(ctx, tx, reqID); err != nil {
				return err
			}
		}

		// Releer las actualizadas: el ranking pudo haber cambiado marcas de
		// respaldo después de la escritura inicial.
		for i, a := range result.Updated {
			fresh, err := tx.Assignments().FindByID(ctx, a.ID)
			if err != nil {
				return err
			}
			result.Updated[i] = *fresh
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.flush(ctx, pending)
	return &result, nil
}

// ============================================================================
// Reads
// ============================================================================

// GetAssignment retorna una asignación por ID
func (s *ApprovalService) GetAssignment(ctx context.Context, id kernel.AssignmentID) (*assignment.Assignment, error) {
	var out *assignment.Assignment
	err := s.store.Transact(ctx, func(ctx context.Context, tx assignment.Tx) error {
		a, err := tx.Assignments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByJobRole retorna las asignaciones de un puesto
func (s *ApprovalService) ListByJobRole(ctx context.Context, jobRoleID kernel.JobRoleID) ([]*assignment.Assignment, error) {
	var out []*assignment.Assignment
	err := s.store.Transact(ctx, func(ctx context.Context, tx assignment.Tx) error {
		if _, err := tx.JobRoles().FindByID(ctx, jobRoleID); err != nil {
			return err
		}
		as, err := tx.Assignments().FindByJobRole(ctx, jobRoleID)
		if err != nil {
			return err
		}
		out = as
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// JobRoleStatus computa la lectura derivada del avance de un puesto
func (s *ApprovalService) JobRoleStatus(ctx context.Context, jobRoleID kernel.JobRoleID) (*assignment.RoleStatusResponse, error) {
	var out *assignment.RoleStatusResponse
	err := s.store.Transact(ctx, func(ctx context.Context, tx assignment.Tx) error {
		role, err := tx.JobRoles().FindByID(ctx, jobRoleID)
		if err != nil {
			return err
		}
		as, err := tx.Assignments().FindByJobRole(ctx, jobRoleID)
		if err != nil {
			return err
		}
		out = &assignment.RoleStatusResponse{
			JobRoleID:        role.ID,
			SubmissionStatus: assignment.AggregateSubmissionStatus(as, role.Quantity),
			Quantity:         role.Quantity,
			AcceptedPrimary:  assignment.AcceptedPrimaries(as),
			NeedsMoreLabour:  role.NeedsMoreLabour,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================================
// Pipeline Stages
// ============================================================================

// refreshJobRole corre el ranking y el agregador sobre un puesto, persiste lo
// que cambió y deja pendiente la notificación de escasez si la bandera pasó de
// false a true en esta operación.
func (s *ApprovalService) refreshJobRole(ctx context.Context, tx assignment.Tx, role *requirement.JobRole, pending *[]notify.Notification) error {
	all, err := tx.Assignments().FindByJobRole(ctx, role.ID)
	if err != nil {
		return err
	}

	for _, changed := range assignment.Rank(all, role.Quantity) {
		if err := tx.Assignments().Save(ctx, *changed); err != nil {
			return err
		}
	}

	newStatus := assignment.AggregateRoleAdminStatus(all, role.AdminStatus)
	needsMore := assignment.AcceptedPrimaries(all) < role.Quantity
	flipped := !role.NeedsMoreLabour && needsMore

	if role.AdminStatus != newStatus || role.NeedsMoreLabour != needsMore {
		role.AdminStatus = newStatus
		role.NeedsMoreLabour = needsMore
		if err := tx.JobRoles().Save(ctx, *role); err != nil {
			return err
		}
	}

	if flipped {
		n, err := s.buildShortageNotification(ctx, tx, role)
		if err != nil {
			return err
		}
		if n != nil {
			*pending = append(*pending, *n)
		}
	}

	return nil
}

// refreshRequirement pasa el requerimiento a revisión del cliente cuando todos
// sus puestos alcanzan la cantidad solicitada de asignaciones cumplidas. La
// transición inversa no existe en este motor.
func (s *ApprovalService) refreshRequirement(ctx context.Context, tx assignment.Tx, reqID kernel.RequirementID) error {
	req, err := tx.Requirements().FindByID(ctx, reqID)
	if err != nil {
		return err
	}
	if req.Status == requirement.RequirementStatusClientReview {
		return nil
	}

	roles, err := tx.JobRoles().FindByRequirement(ctx, reqID)
	if err != nil {
		return err
	}
	if len(roles) == 0 {
		return nil
	}

	for _, role := range roles {
		as, err := tx.Assignments().FindByJobRole(ctx, role.ID)
		if err != nil {
			return err
		}
		if assignment.FulfilledCount(as) < role.Quantity {
			return nil
		}
	}

	req.MoveToClientReview()
	return tx.Requirements().Save(ctx, *req)
}

// buildShortageNotification arma la notificación de alta prioridad para el
// dueño de la agencia asignada al puesto
func (s *ApprovalService) buildShortageNotification(ctx context.Context, tx assignment.Tx, role *requirement.JobRole) (*notify.Notification, error) {
	if role.AssignedAgencyID == nil {
		return nil, nil
	}

	ag, err := tx.Agencies().FindByID(ctx, *role.AssignedAgencyID)
	if err != nil {
		return nil, err
	}
	req, err := tx.Requirements().FindByID(ctx, role.RequirementID)
	if err != nil {
		return nil, err
	}

	n := notify.New(
		ag.OwnerUserID,
		ag.Email,
		fmt.Sprintf("Se requieren más candidatos para %s", role.Title),
		fmt.Sprintf("El puesto %q del cliente %s quedó por debajo de la cantidad solicitada. Envíe más candidatos para cubrir los cupos.", role.Title, req.ClientName),
		notify.PriorityHigh,
		fmt.Sprintf("%s/requirements/%s", s.agencyAppURL, role.RequirementID),
	)
	return &n, nil
}

// flush publica las notificaciones pendientes después del commit. Es un efecto
// best-effort: un fallo se registra y no altera el estado ya confirmado.
func (s *ApprovalService) flush(ctx context.Context, pending []notify.Notification) {
	if len(pending) == 0 {
		return
	}
	if err := s.outbox.Publish(ctx, pending); err != nil {
		logx.WithFields(logx.Fields{
			"count": len(pending),
		}).Errorf("failed to publish shortage notifications: %v", err)
	}
}

// ============================================================================
// Helpers
// ============================================================================

func (s *ApprovalService) shortlistProfile(ctx context.Context, tx assignment.Tx, profileID kernel.ProfileID, reqID kernel.RequirementID) error {
	profile, err := tx.Profiles().FindByID(ctx, profileID)
	if err != nil {
		return err
	}
	profile.Shortlist(reqID)
	return tx.Profiles().Save(ctx, *profile)
}

func snapshot(a *assignment.Assignment) map[string]any {
	data := map[string]any{
		"agency_status": string(a.AgencyStatus),
		"admin_status":  string(a.AdminStatus),
		"client_status": string(a.ClientStatus),
		"is_backup":     a.IsBackup,
	}
	if a.AdminFeedback != nil {
		data["admin_feedback"] = *a.AdminFeedback
	}
	if a.ClientFeedback != nil {
		data["client_feedback"] = *a.ClientFeedback
	}
	return data
}

func missingIDs(requested []kernel.AssignmentID, found []*assignment.Assignment) []string {
	present := make(map[kernel.AssignmentID]bool, len(found))
	for _, a := range found {
		present[a.ID] = true
	}
	var missing []string
	for _, id := range requested {
		if !present[id] {
			missing = append(missing, id.String())
		}
	}
	return missing
}
