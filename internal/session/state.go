package session

import (
	"errors"
	"sync"
	"time"

	"movebot/internal/catalog"
	"movebot/internal/workout"
)

// ErrNoActiveWorkout is returned until the first workout has been generated.
var ErrNoActiveWorkout = errors.New("no active workout")

// Entry is one exercise of a completed workout.
type Entry struct {
	Name string `json:"name"`
	Reps int    `json:"reps"`
}

// Record is a user's report of a finished workout.
type Record struct {
	UserID     string             `json:"user_id"`
	UserName   string             `json:"user_name"`
	Timestamp  time.Time          `json:"timestamp"`
	Difficulty catalog.Difficulty `json:"difficulty"`
	Workout    []Entry            `json:"workout"`
}

// State holds the current workout and the completions not yet persisted.
// One mutex guards both; it is never held across I/O.
type State struct {
	mu      sync.Mutex
	current *workout.Set
	pending map[string]Record
	order   []string
}

// New returns an empty State with no active workout.
func New() *State {
	return &State{pending: make(map[string]Record)}
}

// ReplaceWorkout swaps in a new workout. Pending completions are kept.
func (s *State) ReplaceWorkout(set *workout.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = set
}

// Current returns the active workout, or nil before the first generation.
func (s *State) Current() *workout.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CurrentWorkoutFor returns a copy of the active items for a difficulty.
func (s *State) CurrentWorkoutFor(d catalog.Difficulty) ([]workout.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoActiveWorkout
	}
	return s.current.For(d), nil
}

// RecordCompletion snapshots the active workout for d and stores it as the user's pending
// record, replacing any earlier one from the same cycle.
func (s *State) RecordCompletion(userID, userName string, d catalog.Difficulty, ts time.Time) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Record{}, ErrNoActiveWorkout
	}

	items := s.current.Items[d]
	entries := make([]Entry, len(items))
	for i, it := range items {
		entries[i] = Entry{Name: it.Name, Reps: it.Reps}
	}

	rec := Record{
		UserID:     userID,
		UserName:   userName,
		Timestamp:  ts,
		Difficulty: d,
		Workout:    entries,
	}
	s.put(rec)
	return rec, nil
}

// DrainPending returns all pending records in first-insertion order and clears them.
func (s *State) DrainPending() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.snapshot()
	s.pending = make(map[string]Record)
	s.order = nil
	return out
}

// Requeue puts back records from a batch that failed to persist. A user who completed
// again after the drain keeps the newer record.
func (s *State) Requeue(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		if _, ok := s.pending[rec.UserID]; ok {
			continue
		}
		s.put(rec)
	}
}

// Pending returns a copy of the pending records without clearing them.
func (s *State) Pending() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// put must be called with mu held.
func (s *State) put(rec Record) {
	if _, ok := s.pending[rec.UserID]; !ok {
		s.order = append(s.order, rec.UserID)
	}
	s.pending[rec.UserID] = rec
}

// snapshot must be called with mu held.
func (s *State) snapshot() []Record {
	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.pending[id])
	}
	return out
}
