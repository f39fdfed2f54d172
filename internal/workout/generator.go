package workout

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"movebot/internal/catalog"

	"github.com/google/uuid"
)

// ErrInsufficientExercises means a category has fewer exercises than requested.
var ErrInsufficientExercises = errors.New("insufficient exercises")

// GenerationError reports which pair could not be filled.
type GenerationError struct {
	Difficulty catalog.Difficulty
	Category   catalog.Category
	Have       int
	Want       int
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s/%s: %v: have %d, want %d",
		e.Difficulty, e.Category, ErrInsufficientExercises, e.Have, e.Want)
}

func (e *GenerationError) Unwrap() error { return ErrInsufficientExercises }

// Source is the random source used for sampling. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// NewSource returns a PCG-backed source for the given seed.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Counts is how many exercises of each category go into every difficulty.
type Counts struct {
	Strength int
	Mobility int
}

// Total returns the number of items per difficulty.
func (c Counts) Total() int { return c.Strength + c.Mobility }

// Item is one exercise with its drawn repetition count.
type Item struct {
	Name string `json:"name"`
	Reps int    `json:"reps"`
	Unit string `json:"unit"`
}

// Set is one generated workout across all difficulties.
type Set struct {
	ID        uuid.UUID                     `json:"id"`
	CreatedAt time.Time                     `json:"created_at"`
	Items     map[catalog.Difficulty][]Item `json:"items"`
}

// For returns a copy of the items for a difficulty.
func (s *Set) For(d catalog.Difficulty) []Item {
	return append([]Item(nil), s.Items[d]...)
}

// Generate builds a new Set. For every difficulty it samples counts.Strength distinct strength
// exercises and counts.Mobility distinct mobility exercises, then draws reps in [Min, Max].
func Generate(c *catalog.Catalog, counts Counts, rng Source) (*Set, error) {
	set := &Set{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Items:     make(map[catalog.Difficulty][]Item, len(catalog.Difficulties)),
	}

	for _, d := range catalog.Difficulties {
		items := make([]Item, 0, counts.Total())
		for _, cat := range catalog.Categories {
			want := counts.Strength
			if cat == catalog.Mobility {
				want = counts.Mobility
			}

			chosen, err := sample(c.ExercisesFor(d, cat), want, rng)
			if err != nil {
				var gerr *GenerationError
				if errors.As(err, &gerr) {
					gerr.Difficulty = d
					gerr.Category = cat
				}
				return nil, err
			}

			for _, e := range chosen {
				items = append(items, Item{
					Name: e.Name,
					Reps: e.Min + rng.IntN(e.Max-e.Min+1),
					Unit: e.Unit,
				})
			}
		}
		set.Items[d] = items
	}

	return set, nil
}

// sample picks k distinct exercises with a partial Fisher-Yates shuffle, keeping draw order.
func sample(pool []catalog.Exercise, k int, rng Source) ([]catalog.Exercise, error) {
	if k < 0 || k > len(pool) {
		return nil, &GenerationError{Have: len(pool), Want: k}
	}

	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}

	out := make([]catalog.Exercise, 0, k)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out = append(out, pool[idx[i]])
	}
	return out, nil
}
