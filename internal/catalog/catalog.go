package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Difficulty is the workout tier. Order matters: Easy < Medium < Hard.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// Difficulties lists every tier in rendering order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// ParseDifficulty accepts easy, medium or hard in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	v, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Category splits exercises into strength and mobility work.
type Category int

const (
	Strength Category = iota
	Mobility
)

// Categories lists every category in rendering order.
var Categories = []Category{Strength, Mobility}

func (c Category) String() string {
	switch c {
	case Strength:
		return "strength"
	case Mobility:
		return "mobility"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory accepts strength or mobility in any case.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strength":
		return Strength, nil
	case "mobility":
		return Mobility, nil
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// Exercise is a single catalog entry. Reps (or seconds, see Unit) are drawn from [Min, Max].
type Exercise struct {
	Name string `json:"name" yaml:"name"`
	Min  int    `json:"min" yaml:"min"`
	Max  int    `json:"max" yaml:"max"`
	Unit string `json:"unit" yaml:"unit"`
}

// Format is the encoding of a catalog document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported catalog extension %q", filepath.Ext(path))
}

type key struct {
	difficulty Difficulty
	category   Category
}

// Catalog holds the exercise definitions. It is immutable after loading.
type Catalog struct {
	exercises map[key][]Exercise
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &Error{Err: ErrMalformed, Detail: err.Error()}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Err: ErrMalformed, Detail: fmt.Sprintf("reading %s: %v", path, err)}
	}

	return Parse(data, format)
}

// Parse decodes a document of the form {difficulty: {category: [exercise, ...]}}.
// Every (difficulty, category) pair must be present and non-empty.
func Parse(data []byte, format Format) (*Catalog, error) {
	var raw map[string]map[string][]Exercise

	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, &Error{Err: ErrMalformed, Detail: fmt.Sprintf("unknown format %q", format)}
	}
	if err != nil {
		return nil, &Error{Err: ErrMalformed, Detail: err.Error()}
	}

	c := &Catalog{exercises: make(map[key][]Exercise)}

	for diffName, byCategory := range raw {
		d, err := ParseDifficulty(diffName)
		if err != nil {
			return nil, &Error{Err: ErrMalformed, Detail: err.Error()}
		}
		for catName, exercises := range byCategory {
			cat, err := ParseCategory(catName)
			if err != nil {
				return nil, &Error{Err: ErrMalformed, Detail: err.Error()}
			}
			for i, e := range exercises {
				if err := validateExercise(e); err != nil {
					return nil, &Error{Difficulty: d, Category: cat, Err: ErrMalformed,
						Detail: fmt.Sprintf("exercise #%d: %v", i+1, err)}
				}
			}
			c.exercises[key{d, cat}] = append([]Exercise(nil), exercises...)
		}
	}

	for _, d := range Difficulties {
		for _, cat := range Categories {
			if len(c.exercises[key{d, cat}]) == 0 {
				return nil, &Error{Difficulty: d, Category: cat, Err: ErrMissingCategory}
			}
		}
	}

	return c, nil
}

func validateExercise(e Exercise) error {
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("empty name")
	}
	if strings.ContainsAny(e.Name, "|\r\n") {
		return fmt.Errorf("%q: name must not contain '|' or line breaks", e.Name)
	}
	if e.Min < 0 {
		return fmt.Errorf("%s: min %d is negative", e.Name, e.Min)
	}
	if e.Max < e.Min {
		return fmt.Errorf("%s: max %d is below min %d", e.Name, e.Max, e.Min)
	}
	return nil
}

// ExercisesFor returns a copy of the exercises for the pair.
func (c *Catalog) ExercisesFor(d Difficulty, cat Category) []Exercise {
	return append([]Exercise(nil), c.exercises[key{d, cat}]...)
}

// Size returns the total number of exercises.
func (c *Catalog) Size() int {
	n := 0
	for _, list := range c.exercises {
		n += len(list)
	}
	return n
}

// RenderList formats every exercise grouped by difficulty and category.
func (c *Catalog) RenderList() string {
	var sb strings.Builder
	sb.WriteString("Exercises\n")

	for _, d := range Difficulties {
		for _, cat := range Categories {
			fmt.Fprintf(&sb, "\n%s %s\n", d, cat)
			for _, e := range c.exercises[key{d, cat}] {
				fmt.Fprintf(&sb, "• %s: %d - %d %s\n", e.Name, e.Min, e.Max, e.Unit)
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
