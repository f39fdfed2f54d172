package scheduler

import (
	"sync"
	"time"

	"movebot/internal/workout"
)

// RandomInterval is a cron.Schedule that fires a uniformly random number of seconds
// in [Min, Max] after the previous activation.
type RandomInterval struct {
	Min time.Duration
	Max time.Duration

	mu  sync.Mutex
	rng workout.Source
}

// NewRandomInterval returns a schedule drawing delays from rng.
func NewRandomInterval(min, max time.Duration, rng workout.Source) *RandomInterval {
	if max < min {
		min, max = max, min
	}
	return &RandomInterval{Min: min, Max: max, rng: rng}
}

// Next implements cron.Schedule.
func (s *RandomInterval) Next(t time.Time) time.Time {
	spread := int((s.Max - s.Min) / time.Second)

	s.mu.Lock()
	extra := s.rng.IntN(spread + 1)
	s.mu.Unlock()

	return t.Add(s.Min + time.Duration(extra)*time.Second)
}

// ActiveHours limits broadcasts to [From, To] o'clock inclusive, on weekdays unless
// Weekends is set.
type ActiveHours struct {
	From     int
	To       int
	Weekends bool
}

// Contains reports whether t falls inside the window.
func (h ActiveHours) Contains(t time.Time) bool {
	hour := t.Hour()
	if hour < h.From || hour > h.To {
		return false
	}
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return h.Weekends
	}
	return true
}
