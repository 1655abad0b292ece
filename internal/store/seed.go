package store

import "habittracker/internal/model"

// Seed returns the sample habits every new session starts with.
func Seed() model.HabitCollection {
	return model.NewHabitCollection(
		model.Habit{ID: "1", Name: "Morning Exercise", Category: "Health", Target: 30},
		model.Habit{ID: "2", Name: "Read Book", Category: "Learning", Target: 20},
		model.Habit{ID: "3", Name: "Meditation", Category: "Mindfulness", Target: 10, Completed: true},
		model.Habit{ID: "4", Name: "Drink Water", Category: "Health", Target: 8, Completed: true},
		model.Habit{ID: "5", Name: "Code Practice", Category: "Learning", Target: 60},
	)
}
