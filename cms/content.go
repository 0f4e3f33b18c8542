package cms

import (
	"context"
	"sort"
	"time"

	"fstop/models"
	"fstop/models/course"
)

// Courses lists every published course without modules.
func (c *Client) Courses(ctx context.Context) ([]course.Course, error) {
	var out []course.Course
	if _, err := c.fetch(ctx, "cms.Courses", coursesQuery, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []course.Course{}
	}
	return out, nil
}

// CourseBySlug returns the course with ordered modules and lessons, or nil.
func (c *Client) CourseBySlug(ctx context.Context, slug string) (*course.Course, error) {
	var out course.Course
	ok, err := c.fetch(ctx, "cms.CourseBySlug", courseBySlugQuery, map[string]any{"slug": slug}, &out)
	if err != nil || !ok {
		return nil, err
	}
	out.Sort()
	return &out, nil
}

func (c *Client) CourseByID(ctx context.Context, id string) (*course.Course, error) {
	var out course.Course
	ok, err := c.fetch(ctx, "cms.CourseByID", courseByIDQuery, map[string]any{"id": id}, &out)
	if err != nil || !ok {
		return nil, err
	}
	out.Sort()
	return &out, nil
}

// CourseSummary is a course with the number of modules and lessons that
// reference it.
type CourseSummary struct {
	ID          string    `json:"_id"`
	CreatedAt   time.Time `json:"_createdAt"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ModuleCount int       `json:"moduleCount"`
	LessonCount int       `json:"lessonCount"`
}

// CourseSummaries lists every course, newest first, for checking imports.
func (c *Client) CourseSummaries(ctx context.Context) ([]CourseSummary, error) {
	var out []CourseSummary
	if _, err := c.fetch(ctx, "cms.CourseSummaries", courseSummariesQuery, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []CourseSummary{}
	}
	return out, nil
}

// LessonBySlug returns the full lesson document, or nil.
func (c *Client) LessonBySlug(ctx context.Context, slug string) (*course.Lesson, error) {
	var out course.Lesson
	ok, err := c.fetch(ctx, "cms.LessonBySlug", lessonBySlugQuery, map[string]any{"slug": slug}, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// LessonEntry is one lesson in course order.
type LessonEntry struct {
	ID           string `json:"_id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	LessonNumber int    `json:"lessonNumber"`
	ModuleNumber int    `json:"moduleNumber"`
}

// CourseLessons returns every lesson of the course ordered by module number,
// then lesson number.
func (c *Client) CourseLessons(ctx context.Context, courseID string) ([]LessonEntry, error) {
	var out []LessonEntry
	if _, err := c.fetch(ctx, "cms.CourseLessons", courseLessonsQuery, map[string]any{"courseId": courseID}, &out); err != nil {
		return nil, err
	}
	SortLessons(out)
	return out, nil
}

// LessonPage fetches a lesson and its previous and next lessons across the
// whole course. It returns nil when the lesson does not exist.
func (c *Client) LessonPage(ctx context.Context, slug string) (*course.LessonPage, error) {
	lesson, err := c.LessonBySlug(ctx, slug)
	if err != nil || lesson == nil {
		return nil, err
	}
	page := &course.LessonPage{Lesson: lesson}

	courseID := ""
	if lesson.Course != nil {
		courseID = lesson.Course.ID
	}
	if courseID == "" {
		return page, nil
	}
	entries, err := c.CourseLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	page.Previous, page.Next = Neighbours(entries, lesson.ID)
	return page, nil
}

func SortLessons(entries []LessonEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ModuleNumber != entries[j].ModuleNumber {
			return entries[i].ModuleNumber < entries[j].ModuleNumber
		}
		return entries[i].LessonNumber < entries[j].LessonNumber
	})
}

// Neighbours returns the lessons before and after lessonID in an ordered list.
func Neighbours(entries []LessonEntry, lessonID string) (prev, next *course.LessonLink) {
	for i, e := range entries {
		if e.ID != lessonID {
			continue
		}
		if i > 0 {
			p := entries[i-1]
			prev = &course.LessonLink{ID: p.ID, Slug: p.Slug, Title: p.Title}
		}
		if i+1 < len(entries) {
			n := entries[i+1]
			next = &course.LessonLink{ID: n.ID, Slug: n.Slug, Title: n.Title}
		}
		return prev, next
	}
	return nil, nil
}

// ProgressByUserAndCourse returns the progress document, or nil. Progress is
// read uncached because it is rewritten from what was read.
func (c *Client) ProgressByUserAndCourse(ctx context.Context, userID, courseID string) (*models.ProgressRecord, error) {
	var out models.ProgressRecord
	ok, err := c.fetchFresh(ctx, "cms.ProgressByUserAndCourse", progressByUserAndCourseQuery,
		map[string]any{"userId": userID, "courseId": courseID}, &out)
	if err != nil || !ok {
		return nil, err
	}
	out.Source = models.SourcePrimary
	return &out, nil
}

func (c *Client) ProgressByID(ctx context.Context, id string) (*models.ProgressRecord, error) {
	var out models.ProgressRecord
	ok, err := c.fetchFresh(ctx, "cms.ProgressByID", progressByIDQuery, map[string]any{"id": id}, &out)
	if err != nil || !ok {
		return nil, err
	}
	out.Source = models.SourcePrimary
	return &out, nil
}

// DocumentIDBySlug returns the id of the published document of docType with
// the given slug, or "".
func (c *Client) DocumentIDBySlug(ctx context.Context, docType, slug string) (string, error) {
	var id string
	if _, err := c.fetch(ctx, "cms.DocumentIDBySlug", documentIDBySlugQuery,
		map[string]any{"type": docType, "slug": slug}, &id); err != nil {
		return "", err
	}
	return id, nil
}
