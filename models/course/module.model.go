package course

// Module represents a section/module within a course, ordered by ModuleNumber.
type Module struct {
	ID                string   `json:"_id"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	Slug              Slug     `json:"slug"`
	ModuleNumber      int      `json:"moduleNumber"`
	EstimatedDuration float64  `json:"estimatedDuration,omitempty"`
	Objectives        []string `json:"objectives,omitempty"`
	FeaturedImage     *Image   `json:"featuredImage,omitempty"`
	IsPublished       bool     `json:"isPublished,omitempty"`
	Lessons           []Lesson `json:"lessons"`
}
