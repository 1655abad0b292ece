package store

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"habittracker/internal/model"
)

func mustDispatch(t *testing.T, s *Store, a model.Action) model.HabitCollection {
	t.Helper()
	next, err := s.Dispatch(a)
	if err != nil {
		t.Fatalf("Dispatch(%#v): %v", a, err)
	}
	return next
}

func TestSeed(t *testing.T) {
	s := NewSeeded()
	habits := s.GetState().Habits()
	if len(habits) != 5 {
		t.Fatalf("seed len = %d, want 5", len(habits))
	}
	completed := 0
	for _, h := range habits {
		if h.Completed {
			completed++
		}
	}
	if completed != 2 {
		t.Fatalf("seed completed = %d, want 2", completed)
	}
}

func TestToggleInvolution(t *testing.T) {
	s := NewSeeded()
	before := s.GetState()

	once := mustDispatch(t, s, model.ToggleHabit{ID: "2"})
	h, _ := once.Find("2")
	if !h.Completed {
		t.Fatal("first toggle should complete habit 2")
	}
	for _, other := range before.Habits() {
		if other.ID == "2" {
			continue
		}
		got, _ := once.Find(other.ID)
		if got != other {
			t.Fatalf("toggle touched %s: %#v -> %#v", other.ID, other, got)
		}
	}

	twice := mustDispatch(t, s, model.ToggleHabit{ID: "2"})
	if !reflect.DeepEqual(twice, before) {
		t.Fatalf("double toggle changed state:\n got %#v\nwant %#v", twice.Habits(), before.Habits())
	}
}

func TestToggleUnknownID(t *testing.T) {
	s := NewSeeded()
	before := s.GetState()
	after, err := s.Dispatch(model.ToggleHabit{ID: "nonexistent"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(after, before) {
		t.Fatalf("state changed on unknown id")
	}
}

func TestResetIdempotent(t *testing.T) {
	s := NewSeeded()
	once := mustDispatch(t, s, model.ResetHabits{})
	for _, h := range once.Habits() {
		if h.Completed {
			t.Fatalf("habit %s still completed after reset", h.ID)
		}
	}
	twice := mustDispatch(t, s, model.ResetHabits{})
	if !reflect.DeepEqual(once, twice) {
		t.Fatal("second reset changed state")
	}
}

func TestAddThenDelete(t *testing.T) {
	s := NewSeeded()
	before := s.GetState()

	added := mustDispatch(t, s, model.AddHabit{Name: "Stretch", Category: "Fitness", Target: 15})
	if added.Len() != 6 {
		t.Fatalf("len after add = %d, want 6", added.Len())
	}
	habits := added.Habits()
	h := habits[len(habits)-1]
	if h.Name != "Stretch" || h.Category != "Fitness" || h.Target != 15 || h.Completed {
		t.Fatalf("unexpected new habit %#v", h)
	}
	if before.Contains(h.ID) {
		t.Fatalf("minted id %q collides with seed", h.ID)
	}

	deleted := mustDispatch(t, s, model.DeleteHabit{ID: h.ID})
	if !reflect.DeepEqual(deleted, before) {
		t.Fatalf("add+delete did not restore seed:\n got %#v", deleted.Habits())
	}
}

func TestAddNormalizesInput(t *testing.T) {
	s := New(model.NewHabitCollection())
	got := mustDispatch(t, s, model.AddHabit{Name: "  Walk  ", Category: " Health ", Target: -3})
	h := got.Habits()[0]
	if h.Name != "Walk" || h.Category != "Health" {
		t.Fatalf("text not trimmed: %#v", h)
	}
	if h.Target != model.DefaultTarget {
		t.Fatalf("target = %d, want %d", h.Target, model.DefaultTarget)
	}
}

func TestAddRejectsBlankName(t *testing.T) {
	s := NewSeeded()
	calls := 0
	s.Subscribe(func(model.HabitCollection) { calls++ })

	before := s.GetState()
	_, err := s.Dispatch(model.AddHabit{Name: "   ", Category: "Health", Target: 10})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if verr.Field != "name" {
		t.Fatalf("field = %q", verr.Field)
	}
	if !reflect.DeepEqual(s.GetState(), before) {
		t.Fatal("state committed on validation failure")
	}
	if calls != 0 {
		t.Fatalf("listener called %d times on failure", calls)
	}
}

func TestDeleteUnknownID(t *testing.T) {
	s := NewSeeded()
	before := s.GetState()
	after := mustDispatch(t, s, model.DeleteHabit{ID: "42"})
	if !reflect.DeepEqual(after, before) {
		t.Fatal("delete of unknown id changed state")
	}
}

func TestNilAction(t *testing.T) {
	s := NewSeeded()
	if _, err := s.Dispatch(nil); err == nil {
		t.Fatal("expected error for nil action")
	}
}

func TestIDsStayUnique(t *testing.T) {
	s := NewSeeded()
	for i := 0; i < 50; i++ {
		next := mustDispatch(t, s, model.AddHabit{Name: "h", Target: 1})
		if i%3 == 0 {
			habits := next.Habits()
			mustDispatch(t, s, model.DeleteHabit{ID: habits[i%len(habits)].ID})
		}
		seen := map[string]bool{}
		for _, h := range s.GetState().Habits() {
			if seen[h.ID] {
				t.Fatalf("duplicate id %q after %d steps", h.ID, i)
			}
			seen[h.ID] = true
		}
	}
}

type fixedIDs []string

func (f *fixedIDs) NextID(model.HabitCollection) string {
	id := (*f)[0]
	*f = (*f)[1:]
	return id
}

func TestSequenceSkipsHeldIDs(t *testing.T) {
	c := model.NewHabitCollection(model.Habit{ID: "1"}, model.Habit{ID: "3"})
	ids := NewSequenceIDs(model.NewHabitCollection(model.Habit{ID: "1"}))
	if got := ids.NextID(c); got != "2" {
		t.Fatalf("first id = %q, want 2", got)
	}
	if got := ids.NextID(c); got != "4" {
		t.Fatalf("second id = %q, want 4", got)
	}
}

func TestWithIDSource(t *testing.T) {
	ids := fixedIDs{"abc"}
	s := New(model.NewHabitCollection(), WithIDSource(&ids))
	got := mustDispatch(t, s, model.AddHabit{Name: "x"})
	if got.Habits()[0].ID != "abc" {
		t.Fatalf("id = %q", got.Habits()[0].ID)
	}
}

func TestSubscribeOrderAndUnsubscribe(t *testing.T) {
	s := NewSeeded()
	var order []string
	var seen model.HabitCollection

	unsubA := s.Subscribe(func(c model.HabitCollection) {
		order = append(order, "a")
		seen = c
	})
	s.Subscribe(func(model.HabitCollection) { order = append(order, "b") })

	next := mustDispatch(t, s, model.ResetHabits{})
	if !reflect.DeepEqual(order, []string{"a", "b"}) {
		t.Fatalf("order = %v", order)
	}
	if !reflect.DeepEqual(seen, next) || !reflect.DeepEqual(s.GetState(), next) {
		t.Fatal("listener did not see committed snapshot")
	}

	unsubA()
	unsubA()
	order = nil
	mustDispatch(t, s, model.ToggleHabit{ID: "1"})
	if !reflect.DeepEqual(order, []string{"b"}) {
		t.Fatalf("order after unsubscribe = %v", order)
	}
}

func TestConcurrentDispatch(t *testing.T) {
	s := New(model.NewHabitCollection())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Dispatch(model.AddHabit{Name: "n"}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if got := s.GetState().Len(); got != 20 {
		t.Fatalf("len = %d, want 20", got)
	}
}

func TestTransitionReturnsPreviousSnapshot(t *testing.T) {
	s := NewSeeded()
	start := s.GetState()

	before, after, err := s.Transition(model.ToggleHabit{ID: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, start) {
		t.Fatal("before is not the pre-dispatch state")
	}
	if h, _ := after.Find("1"); !h.Completed {
		t.Fatal("after does not include the toggle")
	}

	before, after, err = s.Transition(model.AddHabit{Name: " "})
	if err == nil {
		t.Fatal("want validation error")
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatal("failed transition changed the snapshot")
	}
}

func TestConcurrentDeleteSeesItsOwnBefore(t *testing.T) {
	s := NewSeeded()
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		found int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			before, _, err := s.Transition(model.DeleteHabit{ID: "1"})
			if err != nil {
				t.Error(err)
				return
			}
			if before.Contains("1") {
				mu.Lock()
				found++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if found != 1 {
		t.Fatalf("%d deletes saw the habit, want exactly 1", found)
	}
}
