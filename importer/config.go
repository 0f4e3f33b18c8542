package importer

import (
	"fmt"

	"github.com/spf13/viper"
)

// Section names a lesson field filled from a block of text in a lesson file.
type Section string

const (
	SectionIntroduction       Section = "introduction"
	SectionWhatYoullCover     Section = "whatYoullCover"
	SectionMainTeachingPoints Section = "mainTeachingPoints"
	SectionReviewAndOutcome   Section = "reviewAndOutcome"
	SectionNextSteps          Section = "nextSteps"
	SectionActionTask         Section = "actionTask"
)

// SectionOrder is the order headers are tested in. The first section whose
// synonym appears in a line wins.
var SectionOrder = []Section{
	SectionIntroduction,
	SectionWhatYoullCover,
	SectionMainTeachingPoints,
	SectionReviewAndOutcome,
	SectionNextSteps,
	SectionActionTask,
}

type CourseDefaults struct {
	Title       string  `mapstructure:"title"`
	Slug        string  `mapstructure:"slug"`
	Description string  `mapstructure:"description"`
	Price       float64 `mapstructure:"price"`
	Difficulty  string  `mapstructure:"difficulty"`
	Category    string  `mapstructure:"category"`
}

type InstructorDefaults struct {
	Name string `mapstructure:"name"`
	Slug string `mapstructure:"slug"`
	Bio  string `mapstructure:"bio"`
}

type Options struct {
	SkipExisting          bool `mapstructure:"skip_existing"`
	AutoPublish           bool `mapstructure:"auto_publish"`
	DefaultLessonDuration int  `mapstructure:"default_lesson_duration"`
	DefaultModuleDuration int  `mapstructure:"default_module_duration"`
	DryRun                bool `mapstructure:"dry_run"`
}

// Config drives a scan and an import run.
type Config struct {
	Extensions []string             `mapstructure:"extensions"`
	Headers    map[Section][]string `mapstructure:"-"`
	Course     CourseDefaults       `mapstructure:"course"`
	Instructor InstructorDefaults   `mapstructure:"instructor"`
	Options    Options              `mapstructure:"options"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("extensions", []string{".txt", ".md", ".docx"})
	v.SetDefault("headers.introduction", []string{"introduction", "welcome", "intro"})
	v.SetDefault("headers.whatYoullCover", []string{"what you'll cover", "why it's important", "overview"})
	v.SetDefault("headers.mainTeachingPoints", []string{"main teaching", "main points", "content", "teaching points"})
	v.SetDefault("headers.reviewAndOutcome", []string{"review", "outcome", "summary", "recap"})
	v.SetDefault("headers.nextSteps", []string{"next steps", "what's next", "moving forward"})
	v.SetDefault("headers.actionTask", []string{"action task", "homework", "assignment", "practice"})

	v.SetDefault("course.title", "F-STOP to Success")
	v.SetDefault("course.slug", "fstop-to-success")
	v.SetDefault("course.description", "Complete photography business course")
	v.SetDefault("course.price", 297)
	v.SetDefault("course.difficulty", "intermediate")
	v.SetDefault("course.category", "photography")

	v.SetDefault("instructor.name", "Kelly Gauthier")
	v.SetDefault("instructor.slug", "kelly-gauthier")
	v.SetDefault("instructor.bio", "Photography and Business Expert")

	v.SetDefault("options.skip_existing", true)
	v.SetDefault("options.auto_publish", true)
	v.SetDefault("options.default_lesson_duration", 30)
	v.SetDefault("options.default_module_duration", 3)
	v.SetDefault("options.dry_run", false)
}

// DefaultConfig returns the built-in import settings.
func DefaultConfig() *Config {
	cfg, _ := LoadConfig("")
	return cfg
}

// LoadConfig reads path (YAML) over the built-in defaults. An empty path uses
// the defaults only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	defaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read import config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode import config: %w", err)
	}

	// viper lowercases map keys, so headers are read per section.
	cfg.Headers = make(map[Section][]string, len(SectionOrder))
	for _, s := range SectionOrder {
		cfg.Headers[s] = v.GetStringSlice("headers." + string(s))
	}
	return &cfg, nil
}

// Supports reports whether ext is listed as a lesson file extension.
func (c *Config) Supports(ext string) bool {
	for _, e := range c.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
