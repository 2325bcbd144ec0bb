package models

import "slices"

// Habit is a tracked habit and the days it was completed on.
type Habit struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	CompletedDates []string `json:"completed_dates"`
}

// HasDate reports whether day is marked as completed.
func (h Habit) HasDate(day string) bool {
	return slices.Contains(h.CompletedDates, day)
}

// WithDate returns a copy of h with day marked or unmarked. A day appears at
// most once.
func (h Habit) WithDate(day string, completed bool) Habit {
	dates := make([]string, 0, len(h.CompletedDates)+1)
	for _, d := range h.CompletedDates {
		if d != day {
			dates = append(dates, d)
		}
	}
	if completed {
		dates = append(dates, day)
	}
	h.CompletedDates = dates
	return h
}

// HabitUpdate is the partial payload for updating a habit. A nil field is
// left unchanged; an empty CompletedDates clears every date.
type HabitUpdate struct {
	Name           *string   `json:"name,omitempty"`
	CompletedDates *[]string `json:"completed_dates,omitempty"`
}
