package course

import "encoding/json"

// Span is a run of text inside a portable-text block.
type Span struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

// Block is one portable-text paragraph.
type Block struct {
	Type     string            `json:"_type"`
	Key      string            `json:"_key"`
	Style    string            `json:"style,omitempty"`
	MarkDefs []json.RawMessage `json:"markDefs"`
	Children []Span            `json:"children,omitempty"`
}

type ActionTask struct {
	Title          string  `json:"title"`
	Instructions   []Block `json:"instructions"`
	EstimatedTime  int     `json:"estimatedTime"`
	IsPersonalTask bool    `json:"isPersonalTask"`
}

type Resource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Ref is the minimal projection of a referenced document.
type Ref struct {
	ID           string `json:"_id"`
	Title        string `json:"title"`
	Slug         Slug   `json:"slug"`
	ModuleNumber int    `json:"moduleNumber,omitempty"`
}

// Lesson represents one lesson, ordered by LessonNumber within its module.
type Lesson struct {
	ID                  string      `json:"_id"`
	Title               string      `json:"title"`
	Slug                Slug        `json:"slug"`
	LessonNumber        int         `json:"lessonNumber"`
	VideoURL            string      `json:"videoUrl,omitempty"`
	EstimatedDuration   float64     `json:"estimatedDuration,omitempty"`
	Difficulty          string      `json:"difficulty,omitempty"`
	Introduction        []Block     `json:"introduction,omitempty"`
	WhatYoullCover      []Block     `json:"whatYoullCover,omitempty"`
	MainTeachingPoints  []Block     `json:"mainTeachingPoints,omitempty"`
	ReviewAndOutcome    []Block     `json:"reviewAndOutcome,omitempty"`
	NextSteps           []Block     `json:"nextSteps,omitempty"`
	ActionTask          *ActionTask `json:"actionTask,omitempty"`
	AdditionalResources []Resource  `json:"additionalResources,omitempty"`
	FeaturedImage       *Image      `json:"featuredImage,omitempty"`
	IsPublished         bool        `json:"isPublished,omitempty"`
	Module              *Ref        `json:"module,omitempty"`
	Course              *Ref        `json:"course,omitempty"`
}

// LessonLink is a navigation target.
type LessonLink struct {
	ID    string `json:"_id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// LessonPage is a lesson with its neighbours in course order.
type LessonPage struct {
	Lesson   *Lesson     `json:"lesson"`
	Previous *LessonLink `json:"previous"`
	Next     *LessonLink `json:"next"`
}
