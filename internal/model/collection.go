package model

import "encoding/json"

// HabitCollection is an immutable, ordered snapshot of habits.
// Insertion order is the display order.
type HabitCollection struct {
	habits []Habit
}

// NewHabitCollection copies habits into a new collection.
func NewHabitCollection(habits ...Habit) HabitCollection {
	if len(habits) == 0 {
		return HabitCollection{}
	}
	cp := make([]Habit, len(habits))
	copy(cp, habits)
	return HabitCollection{habits: cp}
}

// Habits returns a copy of the records in collection order.
func (c HabitCollection) Habits() []Habit {
	out := make([]Habit, len(c.habits))
	copy(out, c.habits)
	return out
}

func (c HabitCollection) Len() int {
	return len(c.habits)
}

// Find returns the habit with the given id.
func (c HabitCollection) Find(id string) (Habit, bool) {
	for _, h := range c.habits {
		if h.ID == id {
			return h, true
		}
	}
	return Habit{}, false
}

// Contains reports whether any record holds id.
func (c HabitCollection) Contains(id string) bool {
	_, ok := c.Find(id)
	return ok
}

// Each calls fn for every record in order without copying the collection.
func (c HabitCollection) Each(fn func(Habit)) {
	for _, h := range c.habits {
		fn(h)
	}
}

func (c HabitCollection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Habits())
}
