package progress

import (
	"fstop/models"
	"fstop/models/course"
)

// CompletionPercent is round(100*completed/total) with halves rounded up,
// clamped to 0..100. An empty course is 0%.
func CompletionPercent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	pct := (200*completed + total) / (2 * total)
	if pct > 100 {
		return 100
	}
	return pct
}

// ModuleAccessible reports whether modules[index] may be opened. modules must
// be in module-number order. The first module is always open; any other
// module needs every lesson of every earlier module completed.
func ModuleAccessible(modules []course.Module, index int, completed map[string]bool) bool {
	if index <= 0 {
		return index == 0
	}
	if index >= len(modules) {
		return false
	}
	for _, m := range modules[:index] {
		for _, l := range m.Lessons {
			if !completed[l.ID] {
				return false
			}
		}
	}
	return true
}

// ModuleState is the dashboard view of one module.
type ModuleState struct {
	ModuleID         string `json:"moduleId"`
	Title            string `json:"title"`
	ModuleNumber     int    `json:"moduleNumber"`
	Accessible       bool   `json:"accessible"`
	Completed        bool   `json:"completed"`
	Current          bool   `json:"current"`
	CompletedLessons int    `json:"completedLessons"`
	TotalLessons     int    `json:"totalLessons"`
}

// ModuleStates computes gating and per-module counts for a sorted course.
// rec may be nil, in which case only the first module is accessible.
func ModuleStates(crs *course.Course, rec *models.ProgressRecord) []ModuleState {
	completed := map[string]bool{}
	current := ""
	if rec != nil {
		for _, id := range rec.CompletedLessons {
			completed[id] = true
		}
		current = rec.CurrentModule
	}

	states := make([]ModuleState, 0, len(crs.Modules))
	for i, m := range crs.Modules {
		done := 0
		for _, l := range m.Lessons {
			if completed[l.ID] {
				done++
			}
		}
		states = append(states, ModuleState{
			ModuleID:         m.ID,
			Title:            m.Title,
			ModuleNumber:     m.ModuleNumber,
			Accessible:       ModuleAccessible(crs.Modules, i, completed),
			Completed:        len(m.Lessons) > 0 && done == len(m.Lessons),
			Current:          m.ID == current,
			CompletedLessons: done,
			TotalLessons:     len(m.Lessons),
		})
	}
	return states
}
