package course

import "sort"

// Slug mirrors the content store's slug object.
type Slug struct {
	Current string `json:"current"`
}

// Image is a reference to a content-store asset.
type Image struct {
	Asset struct {
		Ref  string `json:"_ref"`
		Type string `json:"_type"`
	} `json:"asset"`
	Alt string `json:"alt,omitempty"`
}

type Instructor struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Bio   string `json:"bio,omitempty"`
	Image *Image `json:"image,omitempty"`
}

// Course represents a learning course. It is authored in the content store and
// read-only here.
type Course struct {
	ID              string      `json:"_id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Slug            Slug        `json:"slug"`
	Instructor      *Instructor `json:"instructor,omitempty"`
	Price           float64     `json:"price"`
	Difficulty      string      `json:"difficulty,omitempty"`
	Category        string      `json:"category,omitempty"`
	FeaturedImage   *Image      `json:"featuredImage,omitempty"`
	PublishedAt     string      `json:"publishedAt,omitempty"`
	LearningOutcome []string    `json:"learningOutcomes,omitempty"`
	Modules         []Module    `json:"modules"`
}

// Sort orders modules by module number and lessons by lesson number.
// Equal numbers keep their fetched order.
func (c *Course) Sort() {
	sort.SliceStable(c.Modules, func(i, j int) bool {
		return c.Modules[i].ModuleNumber < c.Modules[j].ModuleNumber
	})
	for i := range c.Modules {
		lessons := c.Modules[i].Lessons
		sort.SliceStable(lessons, func(a, b int) bool {
			return lessons[a].LessonNumber < lessons[b].LessonNumber
		})
	}
}

// TotalLessons is the number of lessons across all modules.
func (c *Course) TotalLessons() int {
	total := 0
	for _, m := range c.Modules {
		total += len(m.Lessons)
	}
	return total
}

// FirstModuleID returns the id of the lowest-numbered module, or "".
func (c *Course) FirstModuleID() string {
	if len(c.Modules) == 0 {
		return ""
	}
	first := c.Modules[0]
	for _, m := range c.Modules[1:] {
		if m.ModuleNumber < first.ModuleNumber {
			first = m
		}
	}
	return first.ID
}

// HasLesson reports whether lessonID belongs to any module of the course.
func (c *Course) HasLesson(lessonID string) bool {
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if l.ID == lessonID {
				return true
			}
		}
	}
	return false
}

// HasModule reports whether moduleID belongs to the course.
func (c *Course) HasModule(moduleID string) bool {
	for _, m := range c.Modules {
		if m.ID == moduleID {
			return true
		}
	}
	return false
}
