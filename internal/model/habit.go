package model

import (
	"strconv"
	"strings"
)

// DefaultTarget is used when a submitted target is absent or not a positive number.
const DefaultTarget = 30

// CategorySuggestions are offered by the add form; categories are free text.
var CategorySuggestions = []string{"Health", "Learning", "Mindfulness", "Fitness", "Work"}

type Habit struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Target    int    `json:"target"`
	Completed bool   `json:"completed"`
}

// ParseTarget coerces raw form input into a target in minutes.
// Leading digits are taken ("15min" -> 15); anything that does not
// yield a positive integer becomes DefaultTarget.
func ParseTarget(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultTarget
	}

	end := 0
	if s[0] == '+' || s[0] == '-' {
		end = 1
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return DefaultTarget
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return DefaultTarget
	}
	return n
}
