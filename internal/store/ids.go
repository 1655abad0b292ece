package store

import (
	"strconv"

	"habittracker/internal/model"
)

// IDSource mints identifiers for new habits.
// The returned id must not be held by any record in existing.
type IDSource interface {
	NextID(existing model.HabitCollection) string
}

// SequenceIDs mints increasing decimal ids. It is not safe for concurrent
// use on its own; the Store calls it under its dispatch lock.
type SequenceIDs struct {
	next uint64
}

// NewSequenceIDs starts the sequence after the largest numeric id in seed.
func NewSequenceIDs(seed model.HabitCollection) *SequenceIDs {
	var highest uint64
	seed.Each(func(h model.Habit) {
		if n, err := strconv.ParseUint(h.ID, 10, 64); err == nil && n > highest {
			highest = n
		}
	})
	return &SequenceIDs{next: highest + 1}
}

func (s *SequenceIDs) NextID(existing model.HabitCollection) string {
	for {
		id := strconv.FormatUint(s.next, 10)
		s.next++
		if !existing.Contains(id) {
			return id
		}
	}
}
