// Package view computes read-only projections of a habit collection:
// progress counts, status filters and sorted listings. Nothing here
// keeps state between calls.
package view

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"habittracker/internal/model"
)

type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Remaining is the number of habits not yet completed.
func (p Progress) Remaining() int {
	return p.Total - p.Completed
}

// Aggregate counts completed habits. Percentage is rounded half up and is
// 0 for an empty collection.
func Aggregate(c model.HabitCollection) Progress {
	p := Progress{Total: c.Len()}
	c.Each(func(h model.Habit) {
		if h.Completed {
			p.Completed++
		}
	})
	if p.Total > 0 {
		p.Percentage = (p.Completed*200 + p.Total) / (p.Total * 2)
	}
	return p
}

type FilterMode string

const (
	FilterAll       FilterMode = "all"
	FilterCompleted FilterMode = "completed"
	FilterPending   FilterMode = "pending"
)

var FilterModes = []FilterMode{FilterAll, FilterCompleted, FilterPending}

// ParseFilterMode falls back to FilterAll for unknown input.
func ParseFilterMode(s string) FilterMode {
	switch m := FilterMode(strings.ToLower(strings.TrimSpace(s))); m {
	case FilterCompleted, FilterPending:
		return m
	}
	return FilterAll
}

// Label is the capitalized mode name shown on filter buttons.
func (m FilterMode) Label() string {
	s := string(m)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Filter keeps the habits matching mode, in collection order.
func Filter(c model.HabitCollection, mode FilterMode) []model.Habit {
	out := make([]model.Habit, 0, c.Len())
	c.Each(func(h model.Habit) {
		switch mode {
		case FilterCompleted:
			if !h.Completed {
				return
			}
		case FilterPending:
			if h.Completed {
				return
			}
		}
		out = append(out, h)
	})
	return out
}

type SortKey string

const (
	SortByName     SortKey = "name"
	SortByCategory SortKey = "category"
	SortByTarget   SortKey = "target"
)

var SortKeys = []SortKey{SortByName, SortByCategory, SortByTarget}

// ParseSortKey falls back to SortByName for unknown input.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByCategory, SortByTarget:
		return k
	}
	return SortByName
}

func (k SortKey) Label() string {
	switch k {
	case SortByCategory:
		return "Category"
	case SortByTarget:
		return "Target (minutes)"
	}
	return "Name"
}

// Sort returns a sorted copy of habits. Equal keys keep their input order.
// Text keys use English collation, so case and accents order the way a
// reader expects rather than by byte value.
func Sort(habits []model.Habit, key SortKey) []model.Habit {
	out := slices.Clone(habits)
	if out == nil {
		out = []model.Habit{}
	}

	switch key {
	case SortByTarget:
		slices.SortStableFunc(out, func(a, b model.Habit) int {
			return cmp.Compare(a.Target, b.Target)
		})
	case SortByCategory:
		col := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b model.Habit) int {
			return col.CompareString(a.Category, b.Category)
		})
	default:
		col := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b model.Habit) int {
			return col.CompareString(a.Name, b.Name)
		})
	}
	return out
}

// FilterAndSort filters first so only the matching habits are sorted.
func FilterAndSort(c model.HabitCollection, mode FilterMode, key SortKey) []model.Habit {
	return Sort(Filter(c, mode), key)
}
