package interview

import (
	"fmt"
	"time"
)

// Schedule is the fixed ordered sequence of difficulty slots and the
// per-difficulty answer budgets. It is configuration, not behavior: the
// engine never changes it after the question set is materialized.
type Schedule struct {
	Sequence []Difficulty
	Budgets  map[Difficulty]time.Duration
}

// DefaultSchedule mirrors the standard interview format: two questions
// per difficulty, 20s/60s/120s budgets.
func DefaultSchedule() Schedule {
	return Schedule{
		Sequence: []Difficulty{
			DifficultyEasy, DifficultyEasy,
			DifficultyMedium, DifficultyMedium,
			DifficultyHard, DifficultyHard,
		},
		Budgets: map[Difficulty]time.Duration{
			DifficultyEasy:   20 * time.Second,
			DifficultyMedium: 60 * time.Second,
			DifficultyHard:   120 * time.Second,
		},
	}
}

// Validate checks that every slot has a known difficulty and a positive
// budget.
func (s Schedule) Validate() error {
	if len(s.Sequence) == 0 {
		return fmt.Errorf("schedule has no question slots")
	}
	for i, d := range s.Sequence {
		if !d.Valid() {
			return fmt.Errorf("slot %d: unknown difficulty %q", i, d)
		}
		if s.Budgets[d] <= 0 {
			return fmt.Errorf("slot %d: no time budget for difficulty %q", i, d)
		}
	}
	return nil
}
