package progressController

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fstop/apperr"
	"fstop/enrollment"
	"fstop/identity"
	"fstop/middleware"
	"fstop/models"
	"fstop/models/course"
	"fstop/progress"
	"fstop/validators/progressValidator"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContent struct {
	course *course.Course
}

func (f *fakeContent) CourseBySlug(_ context.Context, slug string) (*course.Course, error) {
	if f.course == nil || f.course.Slug.Current != slug {
		return nil, nil
	}
	return f.course, nil
}

// fakeEngine keeps one record and applies writes the way the real engine does.
type fakeEngine struct {
	rec     *models.ProgressRecord
	ensured int
}

func (f *fakeEngine) EnsureProgress(_ context.Context, userID string, crs *course.Course) (*models.ProgressRecord, error) {
	f.ensured++
	if f.rec == nil {
		f.rec = &models.ProgressRecord{
			ID:               "p-1",
			UserID:           userID,
			CourseID:         crs.ID,
			CompletedLessons: []string{},
			CurrentModule:    crs.FirstModuleID(),
			Source:           models.SourcePrimary,
		}
	}
	return f.rec.Clone(), nil
}

func (f *fakeEngine) MarkLessonComplete(_ context.Context, progressID, lessonID string, crs *course.Course) (*models.ProgressRecord, error) {
	if !crs.HasLesson(lessonID) {
		return nil, apperr.Msg("test", apperr.Validation, "lesson does not belong to this course")
	}
	if progressID != f.rec.ID {
		return nil, apperr.Msg("test", apperr.NotFound, "progress record not found")
	}
	if !f.rec.HasCompleted(lessonID) {
		f.rec.CompletedLessons = append(f.rec.CompletedLessons, lessonID)
	}
	f.rec.OverallProgress = progress.CompletionPercent(len(f.rec.CompletedLessons), crs.TotalLessons())
	return f.rec.Clone(), nil
}

func (f *fakeEngine) SetCurrentModule(_ context.Context, progressID, moduleID string) (*models.ProgressRecord, error) {
	if progressID != f.rec.ID {
		return nil, apperr.Msg("test", apperr.NotFound, "progress record not found")
	}
	f.rec.CurrentModule = moduleID
	return f.rec.Clone(), nil
}

type fakeAccess struct {
	hasAccess bool
}

func (f fakeAccess) CheckAccess(context.Context, string, string) (*enrollment.Access, error) {
	return &enrollment.Access{IsEnrolled: f.hasAccess, HasAccess: f.hasAccess, Roles: []string{}}, nil
}

func sampleCourse() *course.Course {
	return &course.Course{
		ID:   "course-1",
		Slug: course.Slug{Current: "fstop-to-success"},
		Modules: []course.Module{
			{ID: "m1", ModuleNumber: 1, Lessons: []course.Lesson{{ID: "l1", LessonNumber: 1}, {ID: "l2", LessonNumber: 2}}},
			{ID: "m2", ModuleNumber: 2, Lessons: []course.Lesson{{ID: "l3", LessonNumber: 1}, {ID: "l4", LessonNumber: 2}}},
		},
	}
}

type testEnv struct {
	app    *fiber.App
	engine *fakeEngine
	token  string
}

func newEnv(t *testing.T, hasAccess bool) *testEnv {
	t.Helper()
	sessions := middleware.NewSessions("test-secret", time.Hour)
	access := fakeAccess{hasAccess: hasAccess}
	env := &testEnv{engine: &fakeEngine{}}
	h := NewHandler(&fakeContent{course: sampleCourse()}, env.engine, access)

	env.app = fiber.New()
	group := env.app.Group("/api/progress", sessions.Required(), middleware.RequireAccess(access, nil))
	group.Post("/:slug/lessons/:lessonId/complete", progressValidator.CompleteLesson(), h.MarkLessonComplete)
	group.Put("/:slug/current-module", progressValidator.SetCurrentModule(), h.SetCurrentModule)

	token, _, err := sessions.Issue(&identity.Identity{UID: "uid-1", Email: "ann@example.com"})
	require.NoError(t, err)
	env.token = token
	return env
}

func (env *testEnv) call(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+env.token)
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

func TestMarkLessonComplete(t *testing.T) {
	t.Run("should record the lesson and return module states", func(t *testing.T) {
		env := newEnv(t, true)

		status, body := env.call(t, http.MethodPost, "/api/progress/fstop-to-success/lessons/l1/complete", "")
		require.Equal(t, http.StatusOK, status)
		data := body["data"].(map[string]any)
		rec := data["progress"].(map[string]any)
		assert.Equal(t, []any{"l1"}, rec["completedLessons"])
		assert.Equal(t, float64(25), rec["overallProgress"])

		modules := data["modules"].([]any)
		require.Len(t, modules, 2)
		assert.Equal(t, true, modules[0].(map[string]any)["accessible"])
		assert.Equal(t, false, modules[1].(map[string]any)["accessible"])

		status, body = env.call(t, http.MethodPost, "/api/progress/fstop-to-success/lessons/l2/complete", "")
		require.Equal(t, http.StatusOK, status)
		modules = body["data"].(map[string]any)["modules"].([]any)
		assert.Equal(t, true, modules[1].(map[string]any)["accessible"])
		assert.Equal(t, 2, env.engine.ensured)
	})

	t.Run("should reject a lesson from another course", func(t *testing.T) {
		env := newEnv(t, true)
		status, body := env.call(t, http.MethodPost, "/api/progress/fstop-to-success/lessons/elsewhere/complete", "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "lesson does not belong to this course", body["message"])
	})

	t.Run("should report an unknown course", func(t *testing.T) {
		env := newEnv(t, true)
		status, _ := env.call(t, http.MethodPost, "/api/progress/unknown/lessons/l1/complete", "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Zero(t, env.engine.ensured)
	})

	t.Run("should require enrollment", func(t *testing.T) {
		env := newEnv(t, false)
		status, body := env.call(t, http.MethodPost, "/api/progress/fstop-to-success/lessons/l1/complete", "")
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, false, body["status"])
		assert.Nil(t, env.engine.rec)
	})

	t.Run("should require a session", func(t *testing.T) {
		env := newEnv(t, true)
		env.token = ""
		status, _ := env.call(t, http.MethodPost, "/api/progress/fstop-to-success/lessons/l1/complete", "")
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestSetCurrentModule(t *testing.T) {
	t.Run("should move to a module of the course", func(t *testing.T) {
		env := newEnv(t, true)
		status, body := env.call(t, http.MethodPut, "/api/progress/fstop-to-success/current-module", `{"moduleId":"m2"}`)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "m2", body["data"].(map[string]any)["currentModule"])
		assert.Equal(t, "m2", env.engine.rec.CurrentModule)
	})

	t.Run("should reject a module from another course", func(t *testing.T) {
		env := newEnv(t, true)
		status, body := env.call(t, http.MethodPut, "/api/progress/fstop-to-success/current-module", `{"moduleId":"m9"}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Module does not belong to this course!", body["message"])
		assert.Equal(t, "m1", env.engine.rec.CurrentModule)
	})

	t.Run("should require a module id", func(t *testing.T) {
		env := newEnv(t, true)
		status, body := env.call(t, http.MethodPut, "/api/progress/fstop-to-success/current-module", `{}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, body["data"], "moduleId")
	})
}
