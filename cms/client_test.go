package cms

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fstop/apperr"
	"fstop/config"
	"fstop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.Sanity{
		ProjectID:  "proj",
		Dataset:    "production",
		APIVersion: "2024-01-01",
		ReadToken:  "read-token",
		WriteToken: "write-token",
	}, WithBaseURL(server.URL))
}

func writeResult(w http.ResponseWriter, result string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"result":` + result + `}`))
}

func TestFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("should send the query with json-encoded parameters", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/v2024-01-01/data/query/production", r.URL.Path)
			assert.Equal(t, "Bearer read-token", r.Header.Get("Authorization"))
			q := r.URL.Query()
			assert.Equal(t, "published", q.Get("perspective"))
			assert.Equal(t, `"fstop-to-success"`, q.Get("$slug"))
			assert.Contains(t, q.Get("query"), "slug.current == $slug")
			writeResult(w, `{
				"_id": "course-1",
				"title": "F-STOP to Success",
				"slug": {"current": "fstop-to-success"},
				"modules": [
					{"_id": "m2", "moduleNumber": 2, "lessons": [{"_id": "l3", "lessonNumber": 1}]},
					{"_id": "m1", "moduleNumber": 1, "lessons": [
						{"_id": "l2", "lessonNumber": 2},
						{"_id": "l1", "lessonNumber": 1}
					]}
				]
			}`)
		})

		crs, err := client.CourseBySlug(ctx, "fstop-to-success")
		require.NoError(t, err)
		require.NotNil(t, crs)
		assert.Equal(t, "m1", crs.Modules[0].ID)
		assert.Equal(t, "l1", crs.Modules[0].Lessons[0].ID)
		assert.Equal(t, 3, crs.TotalLessons())
	})

	t.Run("should return nil for a null result", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeResult(w, "null")
		})

		crs, err := client.CourseBySlug(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, crs)

		id, err := client.DocumentIDBySlug(ctx, "course", "missing")
		require.NoError(t, err)
		assert.Empty(t, id)

		list, err := client.Courses(ctx)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("should classify upstream failures", func(t *testing.T) {
		tests := []struct {
			status int
			kind   apperr.Kind
		}{
			{http.StatusServiceUnavailable, apperr.UpstreamUnavailable},
			{http.StatusTooManyRequests, apperr.UpstreamUnavailable},
			{http.StatusNotFound, apperr.NotFound},
			{http.StatusConflict, apperr.Duplicate},
			{http.StatusBadRequest, apperr.Internal},
		}
		for _, tt := range tests {
			t.Run(http.StatusText(tt.status), func(t *testing.T) {
				client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
				})
				_, err := client.Courses(ctx)
				assert.True(t, apperr.Is(err, tt.kind), "got %v", err)
			})
		}
	})

	t.Run("should mark progress documents as primary", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, `"u1"`, r.URL.Query().Get("$userId"))
			assert.Equal(t, `"course-1"`, r.URL.Query().Get("$courseId"))
			writeResult(w, `{"_id":"p1","userId":"u1","courseId":"course-1","completedLessons":["l1"],"overallProgress":20,"lastAccessed":"2024-03-15T10:00:00Z","enrollmentDate":"2024-03-01T10:00:00Z"}`)
		})

		rec, err := client.ProgressByUserAndCourse(ctx, "u1", "course-1")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, models.SourcePrimary, rec.Source)
		assert.Equal(t, []string{"l1"}, rec.CompletedLessons)
		assert.Equal(t, 20, rec.OverallProgress)
	})
}

func TestReadRouting(t *testing.T) {
	ctx := context.Background()
	var apiHits, cdnHits []string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiHits = append(apiHits, r.Header.Get("Authorization"))
		writeResult(w, `{"_id":"p1","userId":"u1","courseId":"course-1","completedLessons":["l1"]}`)
	}))
	t.Cleanup(api.Close)
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cdnHits = append(cdnHits, r.Header.Get("Authorization"))
		writeResult(w, `[]`)
	}))
	t.Cleanup(cdn.Close)

	client := NewClient(config.Sanity{
		ProjectID:  "proj",
		Dataset:    "production",
		APIVersion: "2024-01-01",
		UseCDN:     true,
		ReadToken:  "read-token",
		WriteToken: "write-token",
	}, WithBaseURL(api.URL), WithReadURL(cdn.URL))

	t.Run("should read progress from the API host", func(t *testing.T) {
		rec, err := client.ProgressByUserAndCourse(ctx, "u1", "course-1")
		require.NoError(t, err)
		require.NotNil(t, rec)
		_, err = client.ProgressByID(ctx, "p1")
		require.NoError(t, err)

		assert.Equal(t, []string{"Bearer write-token", "Bearer write-token"}, apiHits)
		assert.Empty(t, cdnHits)
	})

	t.Run("should read content through the CDN", func(t *testing.T) {
		_, err := client.Courses(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Bearer read-token"}, cdnHits)
		assert.Len(t, apiHits, 2)
	})
}

func TestLessonPage(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("$slug") == `"lesson-b"`:
			writeResult(w, `{"_id":"b","title":"B","slug":{"current":"lesson-b"},"lessonNumber":1,"course":{"_id":"course-1"}}`)
		case q.Get("$courseId") == `"course-1"`:
			writeResult(w, `[
				{"_id":"c","title":"C","slug":"lesson-c","lessonNumber":1,"moduleNumber":2},
				{"_id":"b","title":"B","slug":"lesson-b","lessonNumber":2,"moduleNumber":1},
				{"_id":"a","title":"A","slug":"lesson-a","lessonNumber":1,"moduleNumber":1}
			]`)
		default:
			writeResult(w, "null")
		}
	})

	t.Run("should link neighbours across modules", func(t *testing.T) {
		page, err := client.LessonPage(ctx, "lesson-b")
		require.NoError(t, err)
		require.NotNil(t, page)
		require.NotNil(t, page.Previous)
		require.NotNil(t, page.Next)
		assert.Equal(t, "lesson-a", page.Previous.Slug)
		assert.Equal(t, "lesson-c", page.Next.Slug)
	})

	t.Run("should return nil for an unknown lesson", func(t *testing.T) {
		page, err := client.LessonPage(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, page)
	})
}

func TestNeighbours(t *testing.T) {
	entries := []LessonEntry{{ID: "a", Slug: "a"}, {ID: "b", Slug: "b"}}

	prev, next := Neighbours(entries, "a")
	assert.Nil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, "b", next.Slug)

	prev, next = Neighbours(entries, "b")
	require.NotNil(t, prev)
	assert.Equal(t, "a", prev.Slug)
	assert.Nil(t, next)

	prev, next = Neighbours(entries, "z")
	assert.Nil(t, prev)
	assert.Nil(t, next)
}

func TestMutate(t *testing.T) {
	ctx := context.Background()

	t.Run("should create with the write token", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v2024-01-01/data/mutate/production", r.URL.Path)
			assert.Equal(t, "true", r.URL.Query().Get("returnDocuments"))
			assert.Equal(t, "Bearer write-token", r.Header.Get("Authorization"))

			var body struct {
				Mutations []map[string]map[string]any `json:"mutations"`
			}
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, &body))
			require.Len(t, body.Mutations, 1)
			assert.Equal(t, "userProgress", body.Mutations[0]["create"]["_type"])

			_, _ = w.Write([]byte(`{"transactionId":"tx","results":[{"id":"p1","operation":"create"}]}`))
		})

		id, err := client.Create(ctx, Document{"_type": "userProgress", "userId": "u1"})
		require.NoError(t, err)
		assert.Equal(t, "p1", id)
	})

	t.Run("should require a document type", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		_, err := client.Create(ctx, Document{"title": "x"})
		assert.True(t, apperr.Is(err, apperr.Validation))
	})

	t.Run("should decode the patched document", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			assert.True(t, strings.Contains(string(raw), `"currentModule":"m2"`))
			_, _ = w.Write([]byte(`{"results":[{"id":"p1","operation":"update","document":{"_id":"p1","currentModule":"m2"}}]}`))
		})

		var out models.ProgressRecord
		require.NoError(t, client.Patch(ctx, "p1", map[string]any{"currentModule": "m2"}, &out))
		assert.Equal(t, "m2", out.CurrentModule)
	})

	t.Run("should report a missing document on patch", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results":[]}`))
		})
		err := client.Patch(ctx, "gone", map[string]any{"x": 1}, nil)
		assert.True(t, apperr.Is(err, apperr.NotFound))
	})
}

func TestCourseSummaries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("query"), `"lessonCount": count(`)
		writeResult(w, `[
			{"_id":"course-2","_createdAt":"2024-03-15T10:00:00Z","title":"F-STOP to Success","slug":"fstop-to-success","moduleCount":8,"lessonCount":42},
			{"_id":"course-1","_createdAt":"2024-03-01T10:00:00Z","title":"F-STOP to Success","slug":"fstop-to-success","moduleCount":1,"lessonCount":0}
		]`)
	})

	summaries, err := client.CourseSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 42, summaries[0].LessonCount)
	assert.Equal(t, 2024, summaries[0].CreatedAt.Year())

	empty := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { writeResult(w, "[]") })
	summaries, err = empty.CourseSummaries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
