package adminController

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fstop/enrollment"
	"fstop/identity"
	"fstop/middleware"
	"fstop/models"
	"fstop/utils"
	"fstop/validators/adminValidator"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	app      *fiber.App
	svc      *enrollment.Service
	sessions *middleware.Sessions
}

// newEnv seeds an admin and an enrolled student "u1".
func newEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	sel := enrollment.NewSelector(enrollment.NewMemoryStore(), enrollment.NewMemoryStore(), utils.RetryPolicy{}, zap.NewNop())
	svc := enrollment.NewService(sel, zap.NewNop(), enrollment.Options{})

	_, err := svc.Initialize(ctx, "admin-1", "admin@example.com", nil)
	require.NoError(t, err)
	_, err = svc.AddCapability(ctx, "admin-1", models.CapAdmin)
	require.NoError(t, err)
	_, err = svc.Initialize(ctx, "u1", "u1@example.com", nil)
	require.NoError(t, err)
	_, err = svc.EnrollInCourse(ctx, "u1", "course-1")
	require.NoError(t, err)

	env := &testEnv{svc: svc, sessions: middleware.NewSessions("test-secret", time.Hour)}
	h := NewHandler(svc)

	env.app = fiber.New()
	group := env.app.Group("/api/admin", env.sessions.Required(), middleware.RequireAdmin(svc))
	group.Get("/stats", h.GetStats)
	group.Get("/enrollments/:userId", adminValidator.TargetUser(), h.GetEnrollment)
	group.Post("/enrollments/:userId/capabilities", adminValidator.TargetUser(), adminValidator.Capability(), h.AddCapability)
	group.Delete("/enrollments/:userId/capabilities/:capability", adminValidator.TargetUser(), adminValidator.Capability(), h.RemoveCapability)
	group.Put("/enrollments/:userId/status", adminValidator.TargetUser(), adminValidator.Status(), h.SetStatus)
	return env
}

func (env *testEnv) call(t *testing.T, uid, method, path, body string) (int, map[string]any) {
	t.Helper()
	token, _, err := env.sessions.Issue(&identity.Identity{UID: uid, Email: uid + "@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func record(body map[string]any) map[string]any {
	return body["data"].(map[string]any)["record"].(map[string]any)
}

func TestCapabilities(t *testing.T) {
	ctx := context.Background()

	t.Run("should grant a capability from the request body", func(t *testing.T) {
		env := newEnv(t)
		status, body := env.call(t, "admin-1", http.MethodPost, "/api/admin/enrollments/u1/capabilities", `{"capability":"admin"}`)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, []any{"enrolled", "admin"}, record(body)["roles"])
		assert.Equal(t, "primary-store", body["data"].(map[string]any)["source"])
	})

	t.Run("should revoke course access with the enrolled capability", func(t *testing.T) {
		env := newEnv(t)
		status, body := env.call(t, "admin-1", http.MethodDelete, "/api/admin/enrollments/u1/capabilities/enrolled", "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, []any{}, record(body)["roles"])

		access, err := env.svc.CheckAccess(ctx, "u1", "course-1")
		require.NoError(t, err)
		assert.False(t, access.IsEnrolled)
		assert.False(t, access.HasAccess)
	})

	t.Run("should reject an unknown capability", func(t *testing.T) {
		env := newEnv(t)
		status, body := env.call(t, "admin-1", http.MethodPost, "/api/admin/enrollments/u1/capabilities", `{"capability":"owner"}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Unknown capability!", body["data"].(map[string]any)["capability"])
	})

	t.Run("should report a missing record", func(t *testing.T) {
		env := newEnv(t)
		status, _ := env.call(t, "admin-1", http.MethodDelete, "/api/admin/enrollments/ghost/capabilities/admin", "")
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("should unenroll by setting the status inactive", func(t *testing.T) {
		env := newEnv(t)
		status, body := env.call(t, "admin-1", http.MethodPut, "/api/admin/enrollments/u1/status", `{"status":" Inactive "}`)
		require.Equal(t, http.StatusOK, status)
		rec := record(body)
		assert.Equal(t, "inactive", rec["status"])
		assert.Equal(t, []any{"enrolled"}, rec["roles"])
		assert.Equal(t, []any{"course-1"}, rec["enrolledCourses"])

		access, err := env.svc.CheckAccess(ctx, "u1", "course-1")
		require.NoError(t, err)
		assert.True(t, access.IsEnrolled)
		assert.False(t, access.HasAccess)
	})

	t.Run("should reject an unknown status", func(t *testing.T) {
		env := newEnv(t)
		status, _ := env.call(t, "admin-1", http.MethodPut, "/api/admin/enrollments/u1/status", `{"status":"banned"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestAdminGate(t *testing.T) {
	env := newEnv(t)

	t.Run("should refuse a caller without the admin capability", func(t *testing.T) {
		status, _ := env.call(t, "u1", http.MethodPut, "/api/admin/enrollments/u1/status", `{"status":"active"}`)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("should serve stats to an admin", func(t *testing.T) {
		status, body := env.call(t, "admin-1", http.MethodGet, "/api/admin/stats", "")
		require.Equal(t, http.StatusOK, status)
		data := body["data"].(map[string]any)
		assert.Equal(t, float64(2), data["totalUsers"])
		assert.Equal(t, float64(1), data["totalEnrolled"])
	})

	t.Run("should report an unknown enrollment", func(t *testing.T) {
		status, body := env.call(t, "admin-1", http.MethodGet, "/api/admin/enrollments/ghost", "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Enrollment record not found!", body["message"])
	})
}
