package importer

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"fstop/models/course"

	"github.com/google/uuid"
)

var (
	firstNumber  = regexp.MustCompile(`\d+`)
	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	dashes       = regexp.MustCompile(`-+`)
)

// ParseSections splits lesson text into sections. A line containing any
// synonym of a section (case-insensitive) starts that section and is itself
// dropped. Text before the first header is dropped. Sections are trimmed.
func ParseSections(text string, headers map[Section][]string) map[Section]string {
	sections := make(map[Section]string)
	var (
		current Section
		buf     strings.Builder
	)

	for _, line := range strings.Split(text, "\n") {
		if found := matchHeader(line, headers); found != "" {
			if current != "" {
				sections[current] = strings.TrimSpace(buf.String())
			}
			current = found
			buf.Reset()
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if current != "" {
		sections[current] = strings.TrimSpace(buf.String())
	}
	return sections
}

func matchHeader(line string, headers map[Section][]string) Section {
	l := strings.ToLower(strings.TrimSpace(line))
	for _, s := range SectionOrder {
		for _, h := range headers[s] {
			if h != "" && strings.Contains(l, strings.ToLower(h)) {
				return s
			}
		}
	}
	return ""
}

// TextToBlocks turns paragraphs separated by a blank line into portable-text
// blocks. Empty text yields no blocks.
func TextToBlocks(text string) []course.Block {
	if text == "" {
		return []course.Block{}
	}
	paragraphs := strings.Split(text, "\n\n")
	blocks := make([]course.Block, 0, len(paragraphs))
	for _, p := range paragraphs {
		blocks = append(blocks, course.Block{
			Type:     "block",
			Key:      randomKey(),
			Style:    "normal",
			MarkDefs: []json.RawMessage{},
			Children: []course.Span{{
				Type:  "span",
				Key:   randomKey(),
				Text:  strings.TrimSpace(p),
				Marks: []string{},
			}},
		})
	}
	return blocks
}

func randomKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// Slugify lowercases text, drops punctuation and joins words with single dashes.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = dashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ExtractNumber returns the first run of digits in name. ok is false when
// there is none or it is zero.
func ExtractNumber(name string) (n int, ok bool) {
	m := firstNumber.FindString(name)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// TitleFromFile strips the extension from a lesson file name.
func TitleFromFile(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
