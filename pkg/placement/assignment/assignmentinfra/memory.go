package assignmentinfra

import (
	"context"
	"sync"

	"github.com/Abraxas-365/workforce/pkg/audit"
	"github.com/Abraxas-365/workforce/pkg/kernel"
	"github.com/Abraxas-365/workforce/pkg/placement/agency"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment"
	"github.com/Abraxas-365/workforce/pkg/placement/labour"
	"github.com/Abraxas-365/workforce/pkg/placement/requirement"
)

// ============================================================================
// Memory Store - unidad de trabajo en memoria para tests y desarrollo
// ============================================================================

// memState es el estado completo del store; las transacciones trabajan sobre
// una copia y la publican solo si la función termina sin error
type memState struct {
	assignments  map[kernel.AssignmentID]assignment.Assignment
	jobRoles     map[kernel.JobRoleID]requirement.JobRole
	requirements map[kernel.RequirementID]requirement.Requirement
	profiles     map[kernel.ProfileID]labour.Profile
	agencies     map[kernel.AgencyID]agency.Agency
	auditLog     []audit.Entry
}

func newMemState() *memState {
	return &memState{
		assignments:  make(map[kernel.AssignmentID]assignment.Assignment),
		jobRoles:     make(map[kernel.JobRoleID]requirement.JobRole),
		requirements: make(map[kernel.RequirementID]requirement.Requirement),
		profiles:     make(map[kernel.ProfileID]labour.Profile),
		agencies:     make(map[kernel.AgencyID]agency.Agency),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.assignments {
		c.assignments[k] = v
	}
	for k, v := range s.jobRoles {
		c.jobRoles[k] = v
	}
	for k, v := range s.requirements {
		c.requirements[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.agencies {
		c.agencies[k] = v
	}
	c.auditLog = append(c.auditLog, s.auditLog...)
	return c
}

// MemoryStore implementa assignment.Store en memoria. El mutex serializa las
// transacciones por completo, el equivalente local del aislamiento
// serializable que exige el motor.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

// NewMemoryStore crea una unidad de trabajo en memoria vacía
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

// Transact ejecuta fn sobre una copia del estado y la publica en el commit.
// Si fn falla no queda visible ninguna escritura parcial.
func (s *MemoryStore) Transact(ctx context.Context, fn func(ctx context.Context, tx assignment.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(ctx, &memTx{state: working}); err != nil {
		return err
	}
	s.state = working
	return nil
}

// ============================================================================
// Seeding helpers - para tests y arranque en modo desarrollo
// ============================================================================

// SeedAgency agrega una agencia al estado
func (s *MemoryStore) SeedAgency(a agency.Agency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.agencies[a.ID] = a
}

// SeedRequirement agrega un requerimiento al estado
func (s *MemoryStore) SeedRequirement(r requirement.Requirement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.requirements[r.ID] = r
}

// SeedJobRole agrega un puesto al estado
func (s *MemoryStore) SeedJobRole(jr requirement.JobRole) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.jobRoles[jr.ID] = jr
}

// SeedProfile agrega un perfil al estado
func (s *MemoryStore) SeedProfile(p labour.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.profiles[p.ID] = p
}

// SeedAssignment agrega una asignación al estado
func (s *MemoryStore) SeedAssignment(a assignment.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.assignments[a.ID] = a
}

// AuditEntries retorna una copia del registro de auditoría acumulado
func (s *MemoryStore) AuditEntries() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Entry, len(s.state.auditLog))
	copy(out, s.state.auditLog)
	return out
}

// ============================================================================
// Tx implementation
// ============================================================================

type memTx struct {
	state *memState
}

func (t *memTx) Assignments() assignment.AssignmentRepository    { return &memAssignmentRepo{t.state} }
func (t *memTx) JobRoles() requirement.JobRoleRepository         { return &memJobRoleRepo{t.state} }
func (t *memTx) Requirements() requirement.RequirementRepository { return &memRequirementRepo{t.state} }
func (t *memTx) Profiles() labour.ProfileRepository              { return &memProfileRepo{t.state} }
func (t *memTx) Agencies() agency.AgencyRepository               { return &memAgencyRepo{t.state} }
func (t *memTx) Audit() audit.Repository                         { return &memAuditRepo{t.state} }

type memAssignmentRepo struct{ state *memState }

func (r *memAssignmentRepo) Create(_ context.Context, a assignment.Assignment) error {
	r.state.assignments[a.ID] = a
	return nil
}

func (r *memAssignmentRepo) FindByID(_ context.Context, id kernel.AssignmentID) (*assignment.Assignment, error) {
	a, ok := r.state.assignments[id]
	if !ok {
		return nil, assignment.ErrNotFound().WithDetail("assignment_id", id.String())
	}
	return &a, nil
}

func (r *memAssignmentRepo) FindByIDs(_ context.Context, ids []kernel.AssignmentID) ([]*assignment.Assignment, error) {
	var out []*assignment.Assignment
	for _, id := range ids {
		if a, ok := r.state.assignments[id]; ok {
			copied := a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memAssignmentRepo) FindByJobRole(_ context.Context, jobRoleID kernel.JobRoleID) ([]*assignment.Assignment, error) {
	var out []*assignment.Assignment
	for _, a := range r.state.assignments {
		if a.JobRoleID == jobRoleID {
			copied := a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memAssignmentRepo) FindByAgency(_ context.Context, agencyID kernel.AgencyID) ([]*assignment.Assignment, error) {
	var out []*assignment.Assignment
	for _, a := range r.state.assignments {
		if a.AgencyID == agencyID {
			copied := a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memAssignmentRepo) Save(_ context.Context, a assignment.Assignment) error {
	if _, ok := r.state.assignments[a.ID]; !ok {
		return assignment.ErrNotFound().WithDetail("assignment_id", a.ID.String())
	}
	r.state.assignments[a.ID] = a
	return nil
}

type memJobRoleRepo struct{ state *memState }

func (r *memJobRoleRepo) FindByID(_ context.Context, id kernel.JobRoleID) (*requirement.JobRole, error) {
	jr, ok := r.state.jobRoles[id]
	if !ok {
		return nil, requirement.ErrJobRoleNotFound().WithDetail("job_role_id", id.String())
	}
	return &jr, nil
}

func (r *memJobRoleRepo) FindByRequirement(_ context.Context, requirementID kernel.RequirementID) ([]*requirement.JobRole, error) {
	var out []*requirement.JobRole
	for _, jr := range r.state.jobRoles {
		if jr.RequirementID == requirementID {
			copied := jr
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memJobRoleRepo) Save(_ context.Context, jr requirement.JobRole) error {
	if _, ok := r.state.jobRoles[jr.ID]; !ok {
		return requirement.ErrJobRoleNotFound().WithDetail("job_role_id", jr.ID.String())
	}
	r.state.jobRoles[jr.ID] = jr
	return nil
}

type memRequirementRepo struct{ state *memState }

func (r *memRequirementRepo) FindByID(_ context.Context, id kernel.RequirementID) (*requirement.Requirement, error) {
	req, ok := r.state.requirements[id]
	if !ok {
		return nil, requirement.ErrRequirementNotFound().WithDetail("requirement_id", id.String())
	}
	return &req, nil
}

func (r *memRequirementRepo) Save(_ context.Context, req requirement.Requirement) error {
	if _, ok := r.state.requirements[req.ID]; !ok {
		return requirement.ErrRequirementNotFound().WithDetail("requirement_id", req.ID.String())
	}
	r.state.requirements[req.ID] = req
	return nil
}

type memProfileRepo struct{ state *memState }

func (r *memProfileRepo) FindByID(_ context.Context, id kernel.ProfileID) (*labour.Profile, error) {
	p, ok := r.state.profiles[id]
	if !ok {
		return nil, labour.ErrProfileNotFound().WithDetail("profile_id", id.String())
	}
	return &p, nil
}

func (r *memProfileRepo) FindByAgency(_ context.Context, agencyID kernel.AgencyID) ([]*labour.Profile, error) {
	var out []*labour.Profile
	for _, p := range r.state.profiles {
		if p.AgencyID == agencyID {
			copied := p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memProfileRepo) Save(_ context.Context, p labour.Profile) error {
	if _, ok := r.state.profiles[p.ID]; !ok {
		return labour.ErrProfileNotFound().WithDetail("profile_id", p.ID.String())
	}
	r.state.profiles[p.ID] = p
	return nil
}

type memAgencyRepo struct{ state *memState }

func (r *memAgencyRepo) FindByID(_ context.Context, id kernel.AgencyID) (*agency.Agency, error) {
	ag, ok := r.state.agencies[id]
	if !ok {
		return nil, agency.ErrAgencyNotFound().WithDetail("agency_id", id.String())
	}
	return &ag, nil
}

type memAuditRepo struct{ state *memState }

func (r *memAuditRepo) Record(_ context.Context, e audit.Entry) error {
	r.state.auditLog = append(r.state.auditLog, e)
	return nil
}
