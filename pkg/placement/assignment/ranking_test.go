package assignment_test

import (
	"testing"
	"time"

	"github.com/Abraxas-365/workforce/pkg/kernel"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment"
	"github.com/Abraxas-365/workforce/pkg/placement/requirement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var baseTime = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

func accepted(id string, offset time.Duration) *assignment.Assignment {
	return &assignment.Assignment{
		ID:           kernel.AssignmentID(id),
		AdminStatus:  assignment.StatusAccepted,
		AgencyStatus: assignment.StatusAccepted,
		ClientStatus: assignment.StatusSubmitted,
		CreatedAt:    baseTime.Add(offset),
	}
}

func pending(id string, offset time.Duration) *assignment.Assignment {
	return &assignment.Assignment{
		ID:           kernel.AssignmentID(id),
		AdminStatus:  assignment.StatusPending,
		AgencyStatus: assignment.StatusSubmitted,
		ClientStatus: assignment.StatusPending,
		CreatedAt:    baseTime.Add(offset),
	}
}

func backupFlags(assignments []*assignment.Assignment) map[string]bool {
	out := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		out[a.ID.String()] = a.IsBackup
	}
	return out
}

// =============================================================================
// RANKING TESTS
// =============================================================================

func TestRank_OldestAcceptedFillPrimarySlots(t *testing.T) {
	// GIVEN: Three accepted assignments for a role that asks for two
	// WHEN: Ranking the set
	// THEN: The two oldest are primary, the newest becomes backup

	all := []*assignment.Assignment{
		accepted("c", 2*time.Minute),
		accepted("a", 0),
		accepted("b", time.Minute),
	}

	changed := assignment.Rank(all, 2)

	require.Len(t, changed, 1)
	assert.Equal(t, kernel.AssignmentID("c"), changed[0].ID)

	flags := backupFlags(all)
	assert.False(t, flags["a"])
	assert.False(t, flags["b"])
	assert.True(t, flags["c"])
}

func TestRank_TieBreakByID(t *testing.T) {
	// GIVEN: Two accepted assignments created at the exact same instant
	// WHEN: Ranking with a single primary slot
	// THEN: The lower ID wins the slot, deterministically

	all := []*assignment.Assignment{
		accepted("b", 0),
		accepted("a", 0),
	}

	assignment.Rank(all, 1)

	flags := backupFlags(all)
	assert.False(t, flags["a"])
	assert.True(t, flags["b"])
}

func TestRank_Idempotent(t *testing.T) {
	// GIVEN: A set that has already been ranked
	// WHEN: Ranking it again with the same quantity
	// THEN: Nothing changes

	all := []*assignment.Assignment{
		accepted("a", 0),
		accepted("b", time.Minute),
		accepted("c", 2*time.Minute),
	}

	first := assignment.Rank(all, 2)
	require.NotEmpty(t, first)

	second := assignment.Rank(all, 2)
	assert.Empty(t, second)
}

func TestRank_PromotesBackupWhenPrimaryDrops(t *testing.T) {
	// GIVEN: A ranked set where "a" and "b" are primary and "c" is backup
	// WHEN: "a" gets rejected and the set is ranked again
	// THEN: "c" is promoted to primary and "a" carries no backup mark

	a := accepted("a", 0)
	b := accepted("b", time.Minute)
	c := accepted("c", 2*time.Minute)
	all := []*assignment.Assignment{a, b, c}
	assignment.Rank(all, 2)
	require.True(t, c.IsBackup)

	a.AdminReject("not a fit")
	changed := assignment.Rank(all, 2)

	require.Len(t, changed, 1)
	assert.Equal(t, kernel.AssignmentID("c"), changed[0].ID)
	assert.False(t, c.IsBackup)
	assert.False(t, a.IsBackup)
}

func TestRank_ClearsStrayBackupOnNonAccepted(t *testing.T) {
	// GIVEN: A rejected assignment that still carries a backup mark
	// WHEN: Ranking the set
	// THEN: The stray mark is cleared

	stale := pending("a", 0)
	stale.AdminStatus = assignment.StatusRejected
	stale.IsBackup = true

	changed := assignment.Rank([]*assignment.Assignment{stale}, 1)

	require.Len(t, changed, 1)
	assert.False(t, stale.IsBackup)
}

func TestRank_IgnoresPendingAssignments(t *testing.T) {
	// GIVEN: A mix of accepted and pending assignments
	// WHEN: Ranking with room to spare
	// THEN: Pending assignments never receive a backup mark

	all := []*assignment.Assignment{
		accepted("a", 0),
		pending("b", time.Minute),
		pending("c", 2*time.Minute),
	}

	assignment.Rank(all, 1)

	flags := backupFlags(all)
	assert.False(t, flags["a"])
	assert.False(t, flags["b"])
	assert.False(t, flags["c"])
}

// =============================================================================
// AGGREGATOR TESTS
// =============================================================================

func TestAggregateRoleAdminStatus_RejectionDominates(t *testing.T) {
	all := []*assignment.Assignment{
		accepted("a", 0),
		accepted("b", time.Minute),
	}
	all[1].AdminStatus = assignment.StatusRejected

	got := assignment.AggregateRoleAdminStatus(all, requirement.JobRoleUnderReview)
	assert.Equal(t, requirement.JobRoleNeedsRevision, got)
}

func TestAggregateRoleAdminStatus_AllAccepted(t *testing.T) {
	all := []*assignment.Assignment{
		accepted("a", 0),
		accepted("b", time.Minute),
	}

	got := assignment.AggregateRoleAdminStatus(all, requirement.JobRoleUnderReview)
	assert.Equal(t, requirement.JobRoleAccepted, got)
}

func TestAggregateRoleAdminStatus_PendingKeepsPrior(t *testing.T) {
	// GIVEN: One accepted and one still pending assignment
	// WHEN: Aggregating with a prior status
	// THEN: The prior status is preserved until every decision lands

	all := []*assignment.Assignment{
		accepted("a", 0),
		pending("b", time.Minute),
	}

	got := assignment.AggregateRoleAdminStatus(all, requirement.JobRoleUnderReview)
	assert.Equal(t, requirement.JobRoleUnderReview, got)
}

func TestAggregateRoleAdminStatus_EmptySetKeepsPrior(t *testing.T) {
	got := assignment.AggregateRoleAdminStatus(nil, requirement.JobRoleNeedsRevision)
	assert.Equal(t, requirement.JobRoleNeedsRevision, got)
}

func TestAggregateSubmissionStatus(t *testing.T) {
	clientAccepted := func(id string, offset time.Duration) *assignment.Assignment {
		a := accepted(id, offset)
		a.ClientStatus = assignment.StatusAccepted
		return a
	}
	clientRejected := func(id string, offset time.Duration) *assignment.Assignment {
		a := accepted(id, offset)
		a.ClientStatus = assignment.StatusRejected
		return a
	}

	tests := []struct {
		name        string
		assignments []*assignment.Assignment
		quantity    int
		want        assignment.SubmissionStatus
	}{
		{
			name:     "empty set",
			quantity: 2,
			want:     assignment.SubmissionNone,
		},
		{
			name:        "no client acceptances yet",
			assignments: []*assignment.Assignment{accepted("a", 0)},
			quantity:    2,
			want:        assignment.SubmissionNone,
		},
		{
			name:        "client rejection dominates",
			assignments: []*assignment.Assignment{clientAccepted("a", 0), clientRejected("b", time.Minute)},
			quantity:    2,
			want:        assignment.SubmissionNeedsRevision,
		},
		{
			name:        "partial acceptance",
			assignments: []*assignment.Assignment{clientAccepted("a", 0), accepted("b", time.Minute)},
			quantity:    2,
			want:        assignment.SubmissionPartial,
		},
		{
			name:        "fully accepted",
			assignments: []*assignment.Assignment{clientAccepted("a", 0), clientAccepted("b", time.Minute)},
			quantity:    2,
			want:        assignment.SubmissionFullyAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assignment.AggregateSubmissionStatus(tt.assignments, tt.quantity)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCounters(t *testing.T) {
	a := accepted("a", 0)
	b := accepted("b", time.Minute)
	b.IsBackup = true
	c := pending("c", 2*time.Minute)

	all := []*assignment.Assignment{a, b, c}

	assert.Equal(t, 1, assignment.AcceptedPrimaries(all))
	assert.Equal(t, 1, assignment.FulfilledCount(all))
}
