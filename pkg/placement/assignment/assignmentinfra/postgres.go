package assignmentinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/Abraxas-365/workforce/pkg/audit"
	"github.com/Abraxas-365/workforce/pkg/errx"
	"github.com/Abraxas-365/workforce/pkg/kernel"
	"github.com/Abraxas-365/workforce/pkg/placement/agency"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment"
	"github.com/Abraxas-365/workforce/pkg/placement/labour"
	"github.com/Abraxas-365/workforce/pkg/placement/requirement"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ============================================================================
// Postgres Store - unidad de trabajo serializable
// ============================================================================

// PostgresStore implementa assignment.Store sobre PostgreSQL
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore crea una nueva unidad de trabajo sobre PostgreSQL
func NewPostgresStore(db *sqlx.DB) assignment.Store {
	return &PostgresStore{db: db}
}

// Transact ejecuta fn dentro de una transacción serializable. Un conflicto de
// serialización o un deadlock se reporta como ASSIGNMENT_CONFLICT para que el
// llamador reintente el lote completo.
func (s *PostgresStore) Transact(ctx context.Context, fn func(ctx context.Context, tx assignment.Tx) error) error {
	sqlTx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return errx.Wrap(err, "failed to begin transaction", errx.TypeInternal)
	}

	if err := fn(ctx, newPgTx(sqlTx)); err != nil {
		_ = sqlTx.Rollback()
		return mapConflict(err)
	}

	if err := sqlTx.Commit(); err != nil {
		return mapConflict(errx.Wrap(err, "failed to commit transaction", errx.TypeInternal))
	}
	return nil
}

// mapConflict convierte fallos de aislamiento de Postgres en el error de
// conflicto reintentable del dominio
func mapConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		if pqErr.Code == "40001" || pqErr.Code == "40P01" {
			return assignment.ErrConflict().WithDetail("pq_code", string(pqErr.Code))
		}
	}
	return err
}

// pgTx agrupa los repositorios construidos sobre la misma transacción
type pgTx struct {
	assignments  *PostgresAssignmentRepository
	jobRoles     *PostgresJobRoleRepository
	requirements *PostgresRequirementRepository
	profiles     *PostgresProfileRepository
	agencies     *PostgresAgencyRepository
	auditRepo    *PostgresAuditRepository
}

func newPgTx(tx *sqlx.Tx) *pgTx {
	return &pgTx{
		assignments:  &PostgresAssignmentRepository{ext: tx},
		jobRoles:     &PostgresJobRoleRepository{ext: tx},
		requirements: &PostgresRequirementRepository{ext: tx},
		profiles:     &PostgresProfileRepository{ext: tx},
		agencies:     &PostgresAgencyRepository{ext: tx},
		auditRepo:    &PostgresAuditRepository{ext: tx},
	}
}

func (t *pgTx) Assignments() assignment.AssignmentRepository    { return t.assignments }
func (t *pgTx) JobRoles() requirement.JobRoleRepository         { return t.jobRoles }
func (t *pgTx) Requirements() requirement.RequirementRepository { return t.requirements }
func (t *pgTx) Profiles() labour.ProfileRepository              { return t.profiles }
func (t *pgTx) Agencies() agency.AgencyRepository               { return t.agencies }
func (t *pgTx) Audit() audit.Repository                         { return t.auditRepo }

// ============================================================================
// Assignment Repository
// ============================================================================

const assignmentColumns = `
	id, profile_id, job_role_id, agency_id,
	agency_status, admin_status, client_status,
	admin_feedback, client_feedback, is_backup,
	created_at, updated_at`

// PostgresAssignmentRepository implementación de PostgreSQL para asignaciones
type PostgresAssignmentRepository struct {
	ext sqlx.ExtContext
}

// Create inserta una nueva asignación
func (r *PostgresAssignmentRepository) Create(ctx context.Context, a assignment.Assignment) error {
	query := `
		INSERT INTO labour_assignments (
			id, profile_id, job_role_id, agency_id,
			agency_status, admin_status, client_status,
			admin_feedback, client_feedback, is_backup,
			created_at, updated_at
		) VALUES (
			:id, :profile_id, :job_role_id, :agency_id,
			:agency_status, :admin_status, :client_status,
			:admin_feedback, :client_feedback, :is_backup,
			:created_at, :updated_at
		)`

	_, err := sqlx.NamedExecContext(ctx, r.ext, query, a)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errx.New("assignment already exists", errx.TypeConflict).
				WithDetail("assignment_id", a.ID.String())
		}
		return errx.Wrap(err, "failed to create assignment", errx.TypeInternal).
			WithDetail("assignment_id", a.ID.String())
	}
	return nil
}

// FindByID busca una asignación por ID
func (r *PostgresAssignmentRepository) FindByID(ctx context.Context, id kernel.AssignmentID) (*assignment.Assignment, error) {
	query := `SELECT` + assignmentColumns + ` FROM labour_assignments WHERE id = $1`

	var a assignment.Assignment
	err := sqlx.GetContext(ctx, r.ext, &a, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, assignment.ErrNotFound().WithDetail("assignment_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find assignment by id", errx.TypeInternal).
			WithDetail("assignment_id", id.String())
	}
	return &a, nil
}

// FindByIDs busca varias asignaciones por ID; no reporta las ausentes
func (r *PostgresAssignmentRepository) FindByIDs(ctx context.Context, ids []kernel.AssignmentID) ([]*assignment.Assignment, error) {
	query := `SELECT` + assignmentColumns + ` FROM labour_assignments WHERE id = ANY($1) ORDER BY created_at ASC, id ASC`

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}

	var assignments []assignment.Assignment
	err := sqlx.SelectContext(ctx, r.ext, &assignments, query, pq.Array(raw))
	if err != nil {
		return nil, errx.Wrap(err, "failed to find assignments by ids", errx.TypeInternal)
	}
	return toPointers(assignments), nil
}

// FindByJobRole busca todas las asignaciones de un puesto
func (r *PostgresAssignmentRepository) FindByJobRole(ctx context.Context, jobRoleID kernel.JobRoleID) ([]*assignment.Assignment, error) {
	query := `SELECT` + assignmentColumns + ` FROM labour_assignments WHERE job_role_id = $1 ORDER BY created_at ASC, id ASC`

	var assignments []assignment.Assignment
	err := sqlx.SelectContext(ctx, r.ext, &assignments, query, jobRoleID.String())
	if err != nil {
		return nil, errx.Wrap(err, "failed to find assignments by job role", errx.TypeInternal).
			WithDetail("job_role_id", jobRoleID.String())
	}
	return toPointers(assignments), nil
}

// FindByAgency busca todas las asignaciones presentadas por una agencia
func (r *PostgresAssignmentRepository) FindByAgency(ctx context.Context, agencyID kernel.AgencyID) ([]*assignment.Assignment, error) {
	query := `SELECT` + assignmentColumns + ` FROM labour_assignments WHERE agency_id = $1 ORDER BY created_at ASC, id ASC`

	var assignments []assignment.Assignment
	err := sqlx.SelectContext(ctx, r.ext, &assignments, query, agencyID.String())
	if err != nil {
		return nil, errx.Wrap(err, "failed to find assignments by agency", errx.TypeInternal).
			WithDetail("agency_id", agencyID.String())
	}
	return toPointers(assignments), nil
}

// Save actualiza los estados, el feedback y la marca de respaldo en conjunto
func (r *PostgresAssignmentRepository) Save(ctx context.Context, a assignment.Assignment) error {
	query := `
		UPDATE labour_assignments SET
			agency_status = :agency_status,
			admin_status = :admin_status,
			client_status = :client_status,
			admin_feedback = :admin_feedback,
			client_feedback = :client_feedback,
			is_backup = :is_backup,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := sqlx.NamedExecContext(ctx, r.ext, query, a)
	if err != nil {
		return errx.Wrap(err, "failed to update assignment", errx.TypeInternal).
			WithDetail("assignment_id", a.ID.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return assignment.ErrNotFound().WithDetail("assignment_id", a.ID.String())
	}
	return nil
}

func toPointers(assignments []assignment.Assignment) []*assignment.Assignment {
	result := make([]*assignment.Assignment, len(assignments))
	for i := range assignments {
		result[i] = &assignments[i]
	}
	return result
}

// ============================================================================
// Job Role Repository
// ============================================================================

// PostgresJobRoleRepository implementación de PostgreSQL para puestos
type PostgresJobRoleRepository struct {
	ext sqlx.ExtContext
}

const jobRoleColumns = `
	id, requirement_id, title, quantity,
	admin_status, needs_more_labour, assigned_agency_id,
	created_at, updated_at`

// FindByID busca un puesto por ID
func (r *PostgresJobRoleRepository) FindByID(ctx context.Context, id kernel.JobRoleID) (*requirement.JobRole, error) {
	query := `SELECT` + jobRoleColumns + ` FROM job_roles WHERE id = $1`

	var jr requirement.JobRole
	err := sqlx.GetContext(ctx, r.ext, &jr, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, requirement.ErrJobRoleNotFound().WithDetail("job_role_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find job role by id", errx.TypeInternal).
			WithDetail("job_role_id", id.String())
	}
	return &jr, nil
}

// FindByRequirement busca los puestos de un requerimiento
func (r *PostgresJobRoleRepository) FindByRequirement(ctx context.Context, requirementID kernel.RequirementID) ([]*requirement.JobRole, error) {
	query := `SELECT` + jobRoleColumns + ` FROM job_roles WHERE requirement_id = $1 ORDER BY created_at ASC`

	var roles []requirement.JobRole
	err := sqlx.SelectContext(ctx, r.ext, &roles, query, requirementID.String())
	if err != nil {
		return nil, errx.Wrap(err, "failed to find job roles by requirement", errx.TypeInternal).
			WithDetail("requirement_id", requirementID.String())
	}

	result := make([]*requirement.JobRole, len(roles))
	for i := range roles {
		result[i] = &roles[i]
	}
	return result, nil
}

// Save actualiza el estado agregado y la bandera de escasez de un puesto
func (r *PostgresJobRoleRepository) Save(ctx context.Context, jr requirement.JobRole) error {
	query := `
		UPDATE job_roles SET
			admin_status = :admin_status,
			needs_more_labour = :needs_more_labour,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := sqlx.NamedExecContext(ctx, r.ext, query, jr)
	if err != nil {
		return errx.Wrap(err, "failed to update job role", errx.TypeInternal).
			WithDetail("job_role_id", jr.ID.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return requirement.ErrJobRoleNotFound().WithDetail("job_role_id", jr.ID.String())
	}
	return nil
}

// ============================================================================
// Requirement Repository
// ============================================================================

// PostgresRequirementRepository implementación de PostgreSQL para requerimientos
type PostgresRequirementRepository struct {
	ext sqlx.ExtContext
}

// FindByID busca un requerimiento por ID
func (r *PostgresRequirementRepository) FindByID(ctx context.Context, id kernel.RequirementID) (*requirement.Requirement, error) {
	query := `
		SELECT id, client_id, client_name, status, created_at, updated_at
		FROM requirements
		WHERE id = $1`

	var req requirement.Requirement
	err := sqlx.GetContext(ctx, r.ext, &req, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, requirement.ErrRequirementNotFound().WithDetail("requirement_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find requirement by id", errx.TypeInternal).
			WithDetail("requirement_id", id.String())
	}
	return &req, nil
}

// Save actualiza el estado de un requerimiento
func (r *PostgresRequirementRepository) Save(ctx context.Context, req requirement.Requirement) error {
	query := `
		UPDATE requirements SET
			status = :status,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := sqlx.NamedExecContext(ctx, r.ext, query, req)
	if err != nil {
		return errx.Wrap(err, "failed to update requirement", errx.TypeInternal).
			WithDetail("requirement_id", req.ID.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return requirement.ErrRequirementNotFound().WithDetail("requirement_id", req.ID.String())
	}
	return nil
}

// ============================================================================
// Labour Profile Repository
// ============================================================================

// PostgresProfileRepository implementación de PostgreSQL para perfiles
type PostgresProfileRepository struct {
	ext sqlx.ExtContext
}

const profileColumns = `
	id, full_name, agency_id, status, current_requirement_id,
	created_at, updated_at`

// FindByID busca un perfil por ID
func (r *PostgresProfileRepository) FindByID(ctx context.Context, id kernel.ProfileID) (*labour.Profile, error) {
	query := `SELECT` + profileColumns + ` FROM labour_profiles WHERE id = $1`

	var p labour.Profile
	err := sqlx.GetContext(ctx, r.ext, &p, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, labour.ErrProfileNotFound().WithDetail("profile_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find labour profile by id", errx.TypeInternal).
			WithDetail("profile_id", id.String())
	}
	return &p, nil
}

// FindByAgency busca los perfiles presentados por una agencia
func (r *PostgresProfileRepository) FindByAgency(ctx context.Context, agencyID kernel.AgencyID) ([]*labour.Profile, error) {
	query := `SELECT` + profileColumns + ` FROM labour_profiles WHERE agency_id = $1 ORDER BY created_at ASC`

	var profiles []labour.Profile
	err := sqlx.SelectContext(ctx, r.ext, &profiles, query, agencyID.String())
	if err != nil {
		return nil, errx.Wrap(err, "failed to find labour profiles by agency", errx.TypeInternal).
			WithDetail("agency_id", agencyID.String())
	}

	result := make([]*labour.Profile, len(profiles))
	for i := range profiles {
		result[i] = &profiles[i]
	}
	return result, nil
}

// Save actualiza el estado y la referencia al requerimiento de un perfil
func (r *PostgresProfileRepository) Save(ctx context.Context, p labour.Profile) error {
	query := `
		UPDATE labour_profiles SET
			status = :status,
			current_requirement_id = :current_requirement_id,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := sqlx.NamedExecContext(ctx, r.ext, query, p)
	if err != nil {
		return errx.Wrap(err, "failed to update labour profile", errx.TypeInternal).
			WithDetail("profile_id", p.ID.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return labour.ErrProfileNotFound().WithDetail("profile_id", p.ID.String())
	}
	return nil
}

// ============================================================================
// Agency Repository
// ============================================================================

// PostgresAgencyRepository implementación de PostgreSQL para agencias
type PostgresAgencyRepository struct {
	ext sqlx.ExtContext
}

// FindByID busca una agencia por ID
func (r *PostgresAgencyRepository) FindByID(ctx context.Context, id kernel.AgencyID) (*agency.Agency, error) {
	query := `
		SELECT id, name, owner_user_id, email, created_at, updated_at
		FROM agencies
		WHERE id = $1`

	var ag agency.Agency
	err := sqlx.GetContext(ctx, r.ext, &ag, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, agency.ErrAgencyNotFound().WithDetail("agency_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find agency by id", errx.TypeInternal).
			WithDetail("agency_id", id.String())
	}
	return &ag, nil
}

// ============================================================================
// Audit Repository
// ============================================================================

// PostgresAuditRepository implementación de PostgreSQL para auditoría
type PostgresAuditRepository struct {
	ext sqlx.ExtContext
}

// Record inserta una entrada de auditoría en la misma transacción que el
// cambio que audita
func (r *PostgresAuditRepository) Record(ctx context.Context, e audit.Entry) error {
	oldData, err := json.Marshal(e.OldData)
	if err != nil {
		return errx.Wrap(err, "failed to marshal audit old data", errx.TypeInternal)
	}
	newData, err := json.Marshal(e.NewData)
	if err != nil {
		return errx.Wrap(err, "failed to marshal audit new data", errx.TypeInternal)
	}

	query := `
		INSERT INTO audit_log (
			id, action, entity_type, entity_id, actor_id,
			old_data, new_data, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.ext.ExecContext(ctx, query,
		e.ID, string(e.Action), e.EntityType, e.EntityID, e.ActorID.String(),
		oldData, newData, e.CreatedAt,
	)
	if err != nil {
		return errx.Wrap(err, "failed to record audit entry", errx.TypeInternal).
			WithDetail("entity_id", e.EntityID)
	}
	return nil
}
