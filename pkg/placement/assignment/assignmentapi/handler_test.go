package assignmentapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abraxas-365/workforce/pkg/config"
	"github.com/Abraxas-365/workforce/pkg/errx"
	"github.com/Abraxas-365/workforce/pkg/iam/auth"
	"github.com/Abraxas-365/workforce/pkg/iam/scopes"
	"github.com/Abraxas-365/workforce/pkg/kernel"
	"github.com/Abraxas-365/workforce/pkg/notify"
	"github.com/Abraxas-365/workforce/pkg/placement/agency"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment/assignmentapi"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment/assignmentinfra"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment/assignmentsrv"
	"github.com/Abraxas-365/workforce/pkg/placement/labour"
	"github.com/Abraxas-365/workforce/pkg/placement/requirement"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type nullOutbox struct{}

func (nullOutbox) Publish(_ context.Context, _ []notify.Notification) error { return nil }

func newTestApp(t *testing.T) (*fiber.App, *auth.JWTService) {
	t.Helper()

	store := assignmentinfra.NewMemoryStore()
	agID := kernel.AgencyID("ag-1")
	store.SeedAgency(agency.Agency{ID: agID, Name: "North Agency", OwnerUserID: "owner-1", Email: "owner@north.test"})
	store.SeedRequirement(requirement.Requirement{ID: "req-1", ClientName: "Acme Foods", Status: requirement.RequirementStatusSubmitted})
	store.SeedJobRole(requirement.JobRole{
		ID:               "role-1",
		RequirementID:    "req-1",
		Title:            "Welder",
		Quantity:         1,
		AdminStatus:      requirement.JobRoleUnderReview,
		NeedsMoreLabour:  true,
		AssignedAgencyID: &agID,
	})
	store.SeedProfile(labour.Profile{ID: "profile-1", FullName: "Worker One", AgencyID: agID, Status: labour.ProfileStatusUnderReview})
	store.SeedAssignment(assignment.Assignment{
		ID:           "asg-1",
		ProfileID:    "profile-1",
		JobRoleID:    "role-1",
		AgencyID:     agID,
		AgencyStatus: assignment.StatusSubmitted,
		AdminStatus:  assignment.StatusPending,
		ClientStatus: assignment.StatusPending,
		CreatedAt:    time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC),
	})

	svc := assignmentsrv.NewApprovalService(store, nullOutbox{}, "https://agency.test")
	handlers := assignmentapi.NewAssignmentHandlers(svc)

	tokenService := auth.NewJWTServiceFromConfig(&config.JWTConfig{
		SecretKey: "test-secret-key-0123456789-0123456789",
		Issuer:    "workforce",
		Audience:  []string{"workforce-api"},
	})
	middleware := auth.NewTokenMiddleware(tokenService)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*errx.Error); ok {
				return c.Status(e.HTTPStatus).JSON(fiber.Map{
					"error": e.Message,
					"code":  e.Code,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	handlers.RegisterRoutes(app.Group("/api/v1"), middleware)

	return app, tokenService
}

func bearerToken(t *testing.T, tokens *auth.JWTService, role kernel.Role, userScopes []string) string {
	t.Helper()
	token, err := tokens.GenerateAccessToken("user-"+kernel.UserID(role), role, userScopes, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, path, authHeader string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

// =============================================================================
// ROUTE TESTS
// =============================================================================

func TestRoutes_RequireAuthentication(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/assignments/asg-1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_UNAUTHORIZED", body["code"])
}

func TestDecisionRoute_AdminOnly(t *testing.T) {
	app, tokens := newTestApp(t)
	agencyAuth := bearerToken(t, tokens, kernel.RoleAgency, scopes.GetScopesByGroup("agency"))

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/assignments/asg-1/decision", agencyAuth, assignment.DecisionRequest{
		Status: assignment.StatusAccepted,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDecisionRoute_AcceptFlow(t *testing.T) {
	app, tokens := newTestApp(t)
	adminAuth := bearerToken(t, tokens, kernel.RoleAdmin, scopes.GetScopesByGroup("admin"))

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/assignments/asg-1/decision", adminAuth, assignment.DecisionRequest{
		Status: assignment.StatusAccepted,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ACCEPTED", body["admin_status"])
	assert.Equal(t, false, body["is_backup"])

	// The derived role read reflects the accepted primary.
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/job-roles/role-1/status", adminAuth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["accepted_primary"])
	assert.Equal(t, false, body["needs_more_labour"])
}

func TestDecisionRoute_InvalidStatus(t *testing.T) {
	app, tokens := newTestApp(t)
	adminAuth := bearerToken(t, tokens, kernel.RoleAdmin, scopes.GetScopesByGroup("admin"))

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/assignments/asg-1/decision", adminAuth, assignment.DecisionRequest{
		Status: assignment.StatusSubmitted,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ASSIGNMENT_INVALID_STATUS", body["code"])
}

func TestBulkDecisionRoute_MissingFeedback(t *testing.T) {
	app, tokens := newTestApp(t)
	adminAuth := bearerToken(t, tokens, kernel.RoleAdmin, scopes.GetScopesByGroup("admin"))

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/assignments/bulk-decision", adminAuth, assignment.BulkDecisionRequest{
		AssignmentIDs: []kernel.AssignmentID{"asg-1"},
		Status:        assignment.StatusRejected,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ASSIGNMENT_MISSING_FEEDBACK", body["code"])
}

func TestReadRoutes_ClientScope(t *testing.T) {
	app, tokens := newTestApp(t)
	clientAuth := bearerToken(t, tokens, kernel.RoleClient, scopes.GetScopesByGroup("client"))

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/assignments/asg-1", clientAuth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "asg-1", body["id"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/job-roles/role-1/assignments", clientAuth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])
}
