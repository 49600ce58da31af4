// Package courses loads a course catalog and summarises it as markdown.
package courses

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/marcus/phonebook/internal/models"
)

//go:embed catalog.toml
var defaultCatalog string

var ErrEmptyCatalog = errors.New("catalog has no courses")

type catalog struct {
	Courses []models.Course `toml:"courses"`
}

// Default returns the built-in catalog.
func Default() ([]models.Course, error) {
	return Parse(defaultCatalog)
}

// Load reads a TOML catalog from path.
func Load(path string) ([]models.Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes a TOML catalog.
func Parse(data string) ([]models.Course, error) {
	var c catalog
	md, err := toml.Decode(data, &c)
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse catalog: unknown key %s", undecoded[0])
	}
	if len(c.Courses) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c.Courses, nil
}

// Markdown renders each course as a heading, its parts, and the total.
func Markdown(courses []models.Course) string {
	var sb strings.Builder
	for i, c := range courses {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "## %s\n\n", c.Name)
		for _, p := range c.Parts {
			fmt.Fprintf(&sb, "- %s %d\n", p.Name, p.Exercises)
		}
		fmt.Fprintf(&sb, "\n**total of %d exercises**\n", c.Total())
	}
	return sb.String()
}
