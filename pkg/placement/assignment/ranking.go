package assignment

import (
	"sort"

	"github.com/Abraxas-365/workforce/pkg/placement/requirement"
)

// ============================================================================
// Allocation Ranker
// ============================================================================

// Rank decide qué asignaciones aceptadas de un puesto son primarias y cuáles
// de respaldo. Las aceptadas más antiguas (CreatedAt ascendente, desempate por
// ID) ocupan los cupos de la cantidad solicitada; el resto pasa a respaldo.
// Una asignación no aceptada nunca queda marcada como respaldo.
//
// La función es idempotente: sobre un conjunto ya rankeado no produce cambios.
// Muta los elementos en el lugar y retorna los que cambiaron, para que el
// llamador persista solo lo necesario.
func Rank(assignments []*Assignment, quantity int) []*Assignment {
	accepted := make([]*Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.AdminStatus == StatusAccepted {
			accepted = append(accepted, a)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		if accepted[i].CreatedAt.Equal(accepted[j].CreatedAt) {
			return accepted[i].ID < accepted[j].ID
		}
		return accepted[i].CreatedAt.Before(accepted[j].CreatedAt)
	})

	var changed []*Assignment

	for i, a := range accepted {
		backup := i >= quantity
		if a.IsBackup != backup {
			a.IsBackup = backup
			changed = append(changed, a)
		}
	}

	// Una asignación que dejó de estar aceptada no puede conservar la marca
	// de respaldo de una aceptación anterior.
	for _, a := range assignments {
		if a.AdminStatus != StatusAccepted && a.IsBackup {
			a.IsBackup = false
			changed = append(changed, a)
		}
	}

	return changed
}

// ============================================================================
// Status Aggregator - funciones puras sobre el conjunto de asignaciones
// ============================================================================

// AcceptedPrimaries cuenta las asignaciones aceptadas primarias de un puesto
func AcceptedPrimaries(assignments []*Assignment) int {
	count := 0
	for _, a := range assignments {
		if a.IsAcceptedPrimary() {
			count++
		}
	}
	return count
}

// FulfilledCount cuenta las asignaciones listas para revisión del cliente
func FulfilledCount(assignments []*Assignment) int {
	count := 0
	for _, a := range assignments {
		if a.IsFulfilled() {
			count++
		}
	}
	return count
}

// AggregateRoleAdminStatus deriva el estado admin de un puesto a partir de sus
// asignaciones. Un rechazo pesa más que cualquier aceptación; con decisiones
// aún pendientes el estado previo se conserva.
func AggregateRoleAdminStatus(assignments []*Assignment, prior requirement.JobRoleAdminStatus) requirement.JobRoleAdminStatus {
	if len(assignments) == 0 {
		return prior
	}

	allAccepted := true
	for _, a := range assignments {
		if a.AdminStatus == StatusRejected {
			return requirement.JobRoleNeedsRevision
		}
		if a.AdminStatus != StatusAccepted {
			allAccepted = false
		}
	}

	if allAccepted {
		return requirement.JobRoleAccepted
	}
	return prior
}

// AggregateSubmissionStatus computa la lectura derivada del avance de un
// puesto frente al cliente
func AggregateSubmissionStatus(assignments []*Assignment, quantity int) SubmissionStatus {
	if len(assignments) == 0 {
		return SubmissionNone
	}

	clientAccepted := 0
	for _, a := range assignments {
		if a.ClientStatus == StatusRejected {
			return SubmissionNeedsRevision
		}
		if a.ClientStatus == StatusAccepted {
			clientAccepted++
		}
	}

	switch {
	case clientAccepted == 0:
		return SubmissionNone
	case clientAccepted < quantity:
		return SubmissionPartial
	default:
		return SubmissionFullyAccepted
	}
}
