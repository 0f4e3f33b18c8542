package courseController

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fstop/apperr"
	"fstop/enrollment"
	"fstop/identity"
	"fstop/middleware"
	"fstop/models"
	"fstop/models/course"
	"fstop/validators/progressValidator"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeContent struct {
	course *course.Course
	pages  map[string]*course.LessonPage
	err    error
}

func (f *fakeContent) Courses(context.Context) ([]course.Course, error) {
	if f.course == nil {
		return []course.Course{}, f.err
	}
	return []course.Course{*f.course}, f.err
}

func (f *fakeContent) CourseBySlug(_ context.Context, slug string) (*course.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.course == nil || f.course.Slug.Current != slug {
		return nil, nil
	}
	return f.course, nil
}

func (f *fakeContent) LessonPage(_ context.Context, slug string) (*course.LessonPage, error) {
	return f.pages[slug], f.err
}

type fakeTracker struct {
	records map[string]*models.ProgressRecord
	err     error
}

func (f *fakeTracker) GetProgress(_ context.Context, userID, courseID string) (*models.ProgressRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[userID+"/"+courseID], nil
}

func (f *fakeTracker) EnsureProgress(_ context.Context, userID string, crs *course.Course) (*models.ProgressRecord, error) {
	key := userID + "/" + crs.ID
	if rec, ok := f.records[key]; ok {
		return rec, nil
	}
	rec := &models.ProgressRecord{ID: "p-1", UserID: userID, CourseID: crs.ID, CompletedLessons: []string{}, Source: models.SourcePrimary}
	f.records[key] = rec
	return rec, nil
}

type fakeAccess struct {
	hasAccess bool
}

func (f fakeAccess) CheckAccess(context.Context, string, string) (*enrollment.Access, error) {
	return &enrollment.Access{IsEnrolled: f.hasAccess, HasAccess: f.hasAccess}, nil
}

func sampleCourse() *course.Course {
	return &course.Course{
		ID:    "course-1",
		Title: "F-STOP to Success",
		Slug:  course.Slug{Current: "fstop-to-success"},
		Modules: []course.Module{
			{ID: "m1", ModuleNumber: 1, Lessons: []course.Lesson{{ID: "l1", LessonNumber: 1}, {ID: "l2", LessonNumber: 2}}},
			{ID: "m2", ModuleNumber: 2, Lessons: []course.Lesson{{ID: "l3", LessonNumber: 1}}},
		},
	}
}

type testEnv struct {
	app      *fiber.App
	content  *fakeContent
	tracker  *fakeTracker
	sessions *middleware.Sessions
}

func newEnv(hasAccess bool) *testEnv {
	env := &testEnv{
		content: &fakeContent{
			course: sampleCourse(),
			pages: map[string]*course.LessonPage{
				"lesson-3": {Lesson: &course.Lesson{ID: "l3", Title: "Lesson 3"}, Previous: &course.LessonLink{ID: "l2", Slug: "lesson-2"}},
				"stray":    {Lesson: &course.Lesson{ID: "elsewhere"}},
			},
		},
		tracker:  &fakeTracker{records: map[string]*models.ProgressRecord{}},
		sessions: middleware.NewSessions("test-secret", time.Hour),
	}
	access := fakeAccess{hasAccess: hasAccess}
	h := NewHandler(env.content, env.tracker, access, "fstop-to-success", zap.NewNop())

	app := fiber.New()
	app.Get("/api/course", h.GetFeaturedCourse)
	app.Get("/api/user-progress", progressValidator.UserProgress(), h.GetUserProgress)
	app.Get("/api/courses/:slug", h.GetCourseDetails)
	app.Get("/api/courses/:slug/lessons/:lessonSlug", env.sessions.Required(), h.GetLesson)
	app.Get("/api/dashboard/:slug", env.sessions.Required(), h.GetDashboard)
	env.app = app
	return env
}

func (env *testEnv) get(t *testing.T, path string, authed bool) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authed {
		token, _, err := env.sessions.Issue(&identity.Identity{UID: "uid-1"})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestGetFeaturedCourse(t *testing.T) {
	t.Run("should return the course document", func(t *testing.T) {
		env := newEnv(true)
		status, raw := env.get(t, "/api/course", false)
		assert.Equal(t, http.StatusOK, status)
		body := decode(t, raw)
		assert.Equal(t, "course-1", body["_id"])
		assert.Len(t, body["modules"], 2)
	})

	t.Run("should answer 404 when the course is missing", func(t *testing.T) {
		env := newEnv(true)
		env.content.course = nil
		status, raw := env.get(t, "/api/course", false)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "F-Stop to Success course not found", decode(t, raw)["error"])
	})

	t.Run("should answer 500 when the content store fails", func(t *testing.T) {
		env := newEnv(true)
		env.content.err = apperr.E("test", apperr.UpstreamUnavailable, errors.New("down"))
		status, raw := env.get(t, "/api/course", false)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Failed to fetch course data", decode(t, raw)["error"])
	})
}

func TestGetUserProgress(t *testing.T) {
	env := newEnv(true)

	t.Run("should require both parameters", func(t *testing.T) {
		status, raw := env.get(t, "/api/user-progress?userId=uid-1", false)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "userId and courseId are required", decode(t, raw)["error"])
	})

	t.Run("should answer null without a record", func(t *testing.T) {
		status, raw := env.get(t, "/api/user-progress?userId=uid-1&courseId=course-1", false)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "null", string(raw))
	})

	t.Run("should return the record", func(t *testing.T) {
		env.tracker.records["uid-1/course-1"] = &models.ProgressRecord{ID: "p-1", UserID: "uid-1", CourseID: "course-1", CompletedLessons: []string{"l1"}, OverallProgress: 33}
		status, raw := env.get(t, "/api/user-progress?userId=uid-1&courseId=course-1", false)
		assert.Equal(t, http.StatusOK, status)
		body := decode(t, raw)
		assert.Equal(t, float64(33), body["overallProgress"])
		assert.Equal(t, []any{"l1"}, body["completedLessons"])
	})

	t.Run("should answer 500 on store failure", func(t *testing.T) {
		failing := newEnv(true)
		failing.tracker.err = errors.New("boom")
		status, raw := failing.get(t, "/api/user-progress?userId=uid-1&courseId=course-1", false)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Failed to fetch user progress", decode(t, raw)["error"])
	})
}

func TestGetCourseDetails(t *testing.T) {
	env := newEnv(true)

	status, raw := env.get(t, "/api/courses/fstop-to-success", false)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "course-1", decode(t, raw)["data"].(map[string]any)["_id"])

	status, _ = env.get(t, "/api/courses/unknown", false)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetLesson(t *testing.T) {
	t.Run("should lock a lesson in an unfinished module", func(t *testing.T) {
		env := newEnv(true)
		status, raw := env.get(t, "/api/courses/fstop-to-success/lessons/lesson-3", true)
		require.Equal(t, http.StatusOK, status)
		data := decode(t, raw)["data"].(map[string]any)
		assert.Equal(t, false, data["moduleAccessible"])
		assert.Equal(t, false, data["completed"])
		assert.Equal(t, "lesson-2", data["previous"].(map[string]any)["slug"])
	})

	t.Run("should unlock the next module once the previous one is done", func(t *testing.T) {
		env := newEnv(true)
		env.tracker.records["uid-1/course-1"] = &models.ProgressRecord{UserID: "uid-1", CourseID: "course-1", CompletedLessons: []string{"l1", "l2"}}
		status, raw := env.get(t, "/api/courses/fstop-to-success/lessons/lesson-3", true)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, decode(t, raw)["data"].(map[string]any)["moduleAccessible"])
	})

	t.Run("should hide lessons of other courses", func(t *testing.T) {
		env := newEnv(true)
		status, _ := env.get(t, "/api/courses/fstop-to-success/lessons/stray", true)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("should require enrollment", func(t *testing.T) {
		env := newEnv(false)
		status, raw := env.get(t, "/api/courses/fstop-to-success/lessons/lesson-3", true)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, false, decode(t, raw)["data"].(map[string]any)["hasAccess"])
	})

	t.Run("should require a session", func(t *testing.T) {
		env := newEnv(true)
		status, _ := env.get(t, "/api/courses/fstop-to-success/lessons/lesson-3", false)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestGetDashboard(t *testing.T) {
	env := newEnv(true)

	status, raw := env.get(t, "/api/dashboard/fstop-to-success", true)
	require.Equal(t, http.StatusOK, status)
	data := decode(t, raw)["data"].(map[string]any)
	assert.Equal(t, float64(3), data["totalLessons"])
	assert.Len(t, data["modules"], 2)
	assert.Contains(t, env.tracker.records, "uid-1/course-1")

	status, _ = env.get(t, "/api/dashboard/unknown", true)
	assert.Equal(t, http.StatusNotFound, status)
}
