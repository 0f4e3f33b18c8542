package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScannedLesson is one lesson file found under a module directory.
type ScannedLesson struct {
	Title        string `json:"title"`
	FileName     string `json:"fileName"`
	LessonNumber int    `json:"lessonNumber"`
	Path         string `json:"path"`
	// Readable is false for listed extensions whose content cannot be parsed (.docx).
	Readable bool `json:"readable"`
}

// ScannedModule is one top-level directory of the course folder.
type ScannedModule struct {
	Title        string          `json:"title"`
	FolderName   string          `json:"folderName"`
	ModuleNumber int             `json:"moduleNumber"`
	Path         string          `json:"path"`
	Lessons      []ScannedLesson `json:"lessons"`
}

// Structure is the result of scanning a course folder.
type Structure struct {
	Root        string          `json:"root"`
	Modules     []ScannedModule `json:"modules"`
	CourseFiles []string        `json:"courseFiles"`
}

// LessonCount is the number of lesson files across all modules.
func (s *Structure) LessonCount() int {
	n := 0
	for _, m := range s.Modules {
		n += len(m.Lessons)
	}
	return n
}

// Scan reads the course folder at root. Every top-level directory is a module
// and every file with a supported extension inside it is a lesson. Numbers
// come from the first digits in a name, else from the entry's position.
func Scan(root string, cfg *Config) (*Structure, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("course directory %s: %w", root, err)
	}

	st := &Structure{Root: root, Modules: []ScannedModule{}, CourseFiles: []string{}}
	lessonPos := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !e.IsDir() {
			if readable(filepath.Ext(e.Name())) {
				st.CourseFiles = append(st.CourseFiles, e.Name())
			}
			continue
		}

		modulePath := filepath.Join(root, e.Name())
		mod := ScannedModule{
			Title:      e.Name(),
			FolderName: e.Name(),
			Path:       modulePath,
			Lessons:    []ScannedLesson{},
		}
		if n, ok := ExtractNumber(e.Name()); ok {
			mod.ModuleNumber = n
		} else {
			mod.ModuleNumber = len(st.Modules) + 1
		}

		files, err := os.ReadDir(modulePath)
		if err != nil {
			return nil, fmt.Errorf("module directory %s: %w", modulePath, err)
		}
		for _, f := range files {
			ext := filepath.Ext(f.Name())
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") || !cfg.Supports(ext) {
				continue
			}
			lessonPos++
			l := ScannedLesson{
				Title:    TitleFromFile(f.Name()),
				FileName: f.Name(),
				Path:     filepath.Join(modulePath, f.Name()),
				Readable: readable(ext),
			}
			if n, ok := ExtractNumber(f.Name()); ok {
				l.LessonNumber = n
			} else {
				l.LessonNumber = lessonPos
			}
			mod.Lessons = append(mod.Lessons, l)
		}
		sort.SliceStable(mod.Lessons, func(i, j int) bool {
			return mod.Lessons[i].LessonNumber < mod.Lessons[j].LessonNumber
		})
		st.Modules = append(st.Modules, mod)
	}

	sort.SliceStable(st.Modules, func(i, j int) bool {
		return st.Modules[i].ModuleNumber < st.Modules[j].ModuleNumber
	})
	return st, nil
}

func readable(ext string) bool {
	return ext == ".txt" || ext == ".md"
}
