package store

import (
	"strings"

	"habittracker/internal/model"
)

// Reduce applies one action to c and returns the next collection.
// c is never modified. Unknown ids are a no-op, not an error.
// Only AddHabit consults ids, and only after it has been validated.
func Reduce(c model.HabitCollection, action model.Action, ids IDSource) (model.HabitCollection, error) {
	switch a := action.(type) {
	case model.ToggleHabit:
		habits := c.Habits()
		for i := range habits {
			if habits[i].ID == a.ID {
				habits[i].Completed = !habits[i].Completed
			}
		}
		return model.NewHabitCollection(habits...), nil

	case model.ResetHabits:
		habits := c.Habits()
		for i := range habits {
			habits[i].Completed = false
		}
		return model.NewHabitCollection(habits...), nil

	case model.AddHabit:
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return c, &ValidationError{Field: "name", Reason: "must not be empty"}
		}
		target := a.Target
		if target <= 0 {
			target = model.DefaultTarget
		}
		habit := model.Habit{
			ID:        ids.NextID(c),
			Name:      name,
			Category:  strings.TrimSpace(a.Category),
			Target:    target,
			Completed: false,
		}
		return model.NewHabitCollection(append(c.Habits(), habit)...), nil

	case model.DeleteHabit:
		habits := c.Habits()
		for i := range habits {
			if habits[i].ID == a.ID {
				habits = append(habits[:i], habits[i+1:]...)
				break
			}
		}
		return model.NewHabitCollection(habits...), nil

	case nil:
		return c, &ValidationError{Field: "action", Reason: "is nil"}
	}

	return c, &ValidationError{Field: "action", Reason: "unsupported kind " + action.Kind()}
}
