package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validJSON = `{
  "easy": {
    "strength": [{"name": "pushups", "min": 5, "max": 10, "unit": "reps"}],
    "mobility": [{"name": "neck circles", "min": 30, "max": 60, "unit": "sec"}]
  },
  "medium": {
    "strength": [{"name": "squats", "min": 10, "max": 20, "unit": "reps"}],
    "mobility": [{"name": "hip openers", "min": 30, "max": 60, "unit": "sec"}]
  },
  "hard": {
    "strength": [{"name": "burpees", "min": 10, "max": 15, "unit": "reps"}],
    "mobility": [{"name": "deep squat hold", "min": 60, "max": 90, "unit": "sec"}]
  }
}`

const validYAML = `
easy:
  strength:
    - {name: pushups, min: 5, max: 10, unit: reps}
  mobility:
    - {name: neck circles, min: 30, max: 60, unit: sec}
medium:
  strength:
    - {name: squats, min: 10, max: 20, unit: reps}
  mobility:
    - {name: hip openers, min: 30, max: 60, unit: sec}
hard:
  strength:
    - {name: burpees, min: 10, max: 15, unit: reps}
  mobility:
    - {name: deep squat hold, min: 60, max: 90, unit: sec}
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json catalog", "exercises.json", validJSON},
		{"yaml catalog", "exercises.yaml", validYAML},
		{"yml extension", "exercises.yml", validYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(writeTemp(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if c.Size() != 6 {
				t.Errorf("Size() = %d, want 6", c.Size())
			}
			got := c.ExercisesFor(Medium, Strength)
			if len(got) != 1 || got[0].Name != "squats" {
				t.Errorf("ExercisesFor(medium, strength) = %+v, want squats", got)
			}
		})
	}
}

func TestParse_MissingCategory(t *testing.T) {
	doc := `{
  "easy": {"strength": [{"name": "a", "min": 1, "max": 2, "unit": "reps"}], "mobility": [{"name": "b", "min": 1, "max": 2, "unit": "sec"}]},
  "medium": {"strength": [{"name": "c", "min": 1, "max": 2, "unit": "reps"}], "mobility": []},
  "hard": {"strength": [{"name": "d", "min": 1, "max": 2, "unit": "reps"}], "mobility": [{"name": "e", "min": 1, "max": 2, "unit": "sec"}]}
}`
	_, err := Parse([]byte(doc), FormatJSON)
	if !errors.Is(err, ErrMissingCategory) {
		t.Fatalf("Parse() error = %v, want ErrMissingCategory", err)
	}

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("Parse() error type = %T, want *Error", err)
	}
	if cerr.Difficulty != Medium || cerr.Category != Mobility {
		t.Errorf("error pair = %s/%s, want medium/mobility", cerr.Difficulty, cerr.Category)
	}
}

func TestParse_MissingDifficulty(t *testing.T) {
	doc := `{"easy": {"strength": [{"name": "a", "min": 1, "max": 2, "unit": "reps"}], "mobility": [{"name": "b", "min": 1, "max": 2, "unit": "sec"}]}}`
	if _, err := Parse([]byte(doc), FormatJSON); !errors.Is(err, ErrMissingCategory) {
		t.Fatalf("Parse() error = %v, want ErrMissingCategory", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"broken json", `{"easy": `},
		{"unknown difficulty", `{"brutal": {"strength": []}}`},
		{"unknown category", `{"easy": {"cardio": []}}`},
		{"max below min", strings.Replace(validJSON, `"min": 5, "max": 10`, `"min": 10, "max": 5`, 1)},
		{"negative min", strings.Replace(validJSON, `"min": 5, "max": 10`, `"min": -1, "max": 10`, 1)},
		{"empty name", strings.Replace(validJSON, `"name": "pushups"`, `"name": " "`, 1)},
		{"pipe in name", strings.Replace(validJSON, `"name": "pushups"`, `"name": "push|ups"`, 1)},
		{"newline in name", strings.Replace(validJSON, `"name": "pushups"`, `"name": "push\nups"`, 1)},
		{"carriage return in name", strings.Replace(validJSON, `"name": "pushups"`, `"name": "push\rups"`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatJSON)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Parse() error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load(writeTemp(t, "exercises.txt", validJSON))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("Load() error = %v, want ErrMalformed", err)
	}
}

func TestExercisesForReturnsCopy(t *testing.T) {
	c, err := Parse([]byte(validJSON), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	list := c.ExercisesFor(Easy, Strength)
	list[0].Name = "changed"

	if got := c.ExercisesFor(Easy, Strength)[0].Name; got != "pushups" {
		t.Errorf("catalog mutated through copy: name = %q", got)
	}
}

func TestRenderList_Order(t *testing.T) {
	c, err := Parse([]byte(validJSON), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	out := c.RenderList()

	headers := []string{"easy strength", "easy mobility", "medium strength", "medium mobility", "hard strength", "hard mobility"}
	last := -1
	for _, h := range headers {
		idx := strings.Index(out, h)
		if idx < 0 {
			t.Fatalf("RenderList() missing %q", h)
		}
		if idx < last {
			t.Errorf("RenderList() %q out of order", h)
		}
		last = idx
	}
	if !strings.Contains(out, "pushups: 5 - 10 reps") {
		t.Errorf("RenderList() missing exercise row:\n%s", out)
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    Difficulty
		wantErr bool
	}{
		{"easy", Easy, false},
		{"MEDIUM", Medium, false},
		{" hard ", Hard, false},
		{"extreme", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDifficulty(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDifficulty(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDifficulty(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
