package model

// Action is a request to change the habit collection.
// The concrete variants are ToggleHabit, ResetHabits, AddHabit and DeleteHabit.
type Action interface {
	// Kind is a stable lowercase name used for logs and metrics.
	Kind() string
	isAction()
}

// ToggleHabit flips Completed on the habit with ID.
type ToggleHabit struct {
	ID string
}

// ResetHabits marks every habit as not completed.
type ResetHabits struct{}

// AddHabit appends a new, not completed habit.
type AddHabit struct {
	Name     string
	Category string
	Target   int
}

// DeleteHabit removes the habit with ID.
type DeleteHabit struct {
	ID string
}

func (ToggleHabit) Kind() string { return "toggle" }
func (ResetHabits) Kind() string { return "reset" }
func (AddHabit) Kind() string    { return "add" }
func (DeleteHabit) Kind() string { return "delete" }

func (ToggleHabit) isAction() {}
func (ResetHabits) isAction() {}
func (AddHabit) isAction()    {}
func (DeleteHabit) isAction() {}
