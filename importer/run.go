// Package importer turns a folder of module directories and lesson text files
// into course, module and lesson documents in the content store.
package importer

import (
	"context"
	"fmt"
	"os"
	"time"

	"fstop/cms"
	"fstop/models/course"

	"go.uber.org/zap"
)

// Writer is the part of the content store client the importer needs.
type Writer interface {
	DocumentIDBySlug(ctx context.Context, docType, slug string) (string, error)
	Create(ctx context.Context, doc cms.Document) (string, error)
}

// Skipped records a lesson file that was not imported.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Report summarises an import run.
type Report struct {
	DryRun       bool      `json:"dryRun"`
	InstructorID string    `json:"instructorId"`
	CourseID     string    `json:"courseId"`
	CourseExists bool      `json:"courseExists"`
	Modules      int       `json:"modules"`
	Lessons      int       `json:"lessons"`
	Skipped      []Skipped `json:"skipped"`
}

type Importer struct {
	cfg *Config
	w   Writer
	log *zap.Logger
	now func() time.Time
}

func New(cfg *Config, w Writer, log *zap.Logger) *Importer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Importer{cfg: cfg, w: w, log: log, now: time.Now}
}

// Run scans root and creates the instructor (when missing), the course, its
// modules and its lessons. With SkipExisting, an existing course slug ends the
// run before anything is written. With DryRun, nothing is written and
// placeholder ids are reported.
func (im *Importer) Run(ctx context.Context, root string) (*Report, error) {
	st, err := Scan(root, im.cfg)
	if err != nil {
		return nil, err
	}
	im.log.Info("course directory scanned",
		zap.String("root", root),
		zap.Int("modules", len(st.Modules)),
		zap.Int("lessons", st.LessonCount()))

	rep := &Report{DryRun: im.cfg.Options.DryRun, Skipped: []Skipped{}}

	if im.cfg.Options.SkipExisting {
		id, err := im.w.DocumentIDBySlug(ctx, "course", im.cfg.Course.Slug)
		if err != nil {
			return nil, fmt.Errorf("look up course %s: %w", im.cfg.Course.Slug, err)
		}
		if id != "" {
			im.log.Info("course already exists, skipping import", zap.String("courseId", id))
			rep.CourseID = id
			rep.CourseExists = true
			return rep, nil
		}
	}

	if rep.InstructorID, err = im.ensureInstructor(ctx); err != nil {
		return nil, err
	}
	if rep.CourseID, err = im.createCourse(ctx, rep.InstructorID); err != nil {
		return nil, err
	}

	for _, m := range st.Modules {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		moduleID, err := im.createModule(ctx, m, rep.CourseID)
		if err != nil {
			return rep, err
		}
		rep.Modules++

		for _, l := range m.Lessons {
			created, reason, err := im.createLesson(ctx, l, moduleID, rep.CourseID)
			if err != nil {
				return rep, err
			}
			if !created {
				im.log.Warn("lesson skipped", zap.String("path", l.Path), zap.String("reason", reason))
				rep.Skipped = append(rep.Skipped, Skipped{Path: l.Path, Reason: reason})
				continue
			}
			rep.Lessons++
		}
	}

	im.log.Info("import finished",
		zap.Bool("dryRun", rep.DryRun),
		zap.String("courseId", rep.CourseID),
		zap.Int("modules", rep.Modules),
		zap.Int("lessons", rep.Lessons),
		zap.Int("skipped", len(rep.Skipped)))
	return rep, nil
}

func (im *Importer) ensureInstructor(ctx context.Context) (string, error) {
	ins := im.cfg.Instructor
	id, err := im.w.DocumentIDBySlug(ctx, "author", ins.Slug)
	if err != nil {
		return "", fmt.Errorf("look up instructor %s: %w", ins.Slug, err)
	}
	if id != "" {
		im.log.Info("using existing instructor", zap.String("instructorId", id))
		return id, nil
	}
	return im.create(ctx, "instructor", cms.Document{
		"_type": "author",
		"name":  ins.Name,
		"slug":  course.Slug{Current: ins.Slug},
		"bio":   ins.Bio,
	})
}

func (im *Importer) createCourse(ctx context.Context, instructorID string) (string, error) {
	c := im.cfg.Course
	return im.create(ctx, "course", cms.Document{
		"_type":       "course",
		"title":       c.Title,
		"slug":        course.Slug{Current: c.Slug},
		"description": c.Description,
		"instructor":  reference(instructorID),
		"price":       c.Price,
		"difficulty":  c.Difficulty,
		"category":    c.Category,
		"publishedAt": im.now().UTC().Format(time.RFC3339),
	})
}

func (im *Importer) createModule(ctx context.Context, m ScannedModule, courseID string) (string, error) {
	return im.create(ctx, "module", cms.Document{
		"_type":             "module",
		"title":             m.Title,
		"slug":              course.Slug{Current: Slugify(m.Title)},
		"course":            reference(courseID),
		"moduleNumber":      m.ModuleNumber,
		"description":       fmt.Sprintf("Module %d of the %s course", m.ModuleNumber, im.cfg.Course.Title),
		"estimatedDuration": im.cfg.Options.DefaultModuleDuration,
		"isPublished":       im.cfg.Options.AutoPublish,
	})
}

// createLesson reports created=false with a reason for files it cannot use.
func (im *Importer) createLesson(ctx context.Context, l ScannedLesson, moduleID, courseID string) (bool, string, error) {
	if !l.Readable {
		return false, "unsupported file type, convert to .txt or .md", nil
	}
	raw, err := os.ReadFile(l.Path)
	if err != nil {
		return false, err.Error(), nil
	}
	if len(raw) == 0 {
		return false, "empty file", nil
	}

	sections := ParseSections(string(raw), im.cfg.Headers)
	doc := cms.Document{
		"_type":              "lesson",
		"title":              l.Title,
		"slug":               course.Slug{Current: Slugify(l.Title)},
		"module":             reference(moduleID),
		"course":             reference(courseID),
		"lessonNumber":       l.LessonNumber,
		"estimatedDuration":  im.cfg.Options.DefaultLessonDuration,
		"difficulty":         im.cfg.Course.Difficulty,
		"introduction":       TextToBlocks(sections[SectionIntroduction]),
		"whatYoullCover":     TextToBlocks(sections[SectionWhatYoullCover]),
		"mainTeachingPoints": TextToBlocks(sections[SectionMainTeachingPoints]),
		"reviewAndOutcome":   TextToBlocks(sections[SectionReviewAndOutcome]),
		"nextSteps":          TextToBlocks(sections[SectionNextSteps]),
		"actionTask":         nil,
		"isPublished":        im.cfg.Options.AutoPublish,
		"publishedAt":        im.now().UTC().Format(time.RFC3339),
	}
	if task := sections[SectionActionTask]; task != "" {
		doc["actionTask"] = course.ActionTask{
			Title:          "Course Action Task",
			Instructions:   TextToBlocks(task),
			EstimatedTime:  15,
			IsPersonalTask: true,
		}
	}

	if _, err := im.create(ctx, "lesson", doc); err != nil {
		return false, "", err
	}
	return true, "", nil
}

func (im *Importer) create(ctx context.Context, kind string, doc cms.Document) (string, error) {
	if im.cfg.Options.DryRun {
		slug, _ := doc["slug"].(course.Slug)
		id := "dry-run." + kind + "." + slug.Current
		im.log.Info("dry run: would create "+kind, zap.String("id", id), zap.Any("title", doc["title"]))
		return id, nil
	}
	id, err := im.w.Create(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("create %s %v: %w", kind, doc["title"], err)
	}
	im.log.Info(kind+" created", zap.String("id", id), zap.Any("title", doc["title"]))
	return id, nil
}

func reference(id string) map[string]string {
	return map[string]string{"_type": "reference", "_ref": id}
}
