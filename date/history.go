package date

import (
	"iter"
	"slices"
)

// History is a series of values indexed by day, kept in chronological order with at most one
// value per day.
type History[T any] struct {
	days   []Date
	values []T
}

// search returns the position of day, or where it would be inserted.
func (h *History[T]) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, Date.Compare)
}

// Len returns the number of days.
func (h *History[T]) Len() int { return len(h.days) }

// Days returns a copy of the days in chronological order.
func (h *History[T]) Days() []Date { return slices.Clone(h.days) }

// Get returns the value of day, and false if there is none.
func (h *History[T]) Get(day Date) (value T, ok bool) {
	if i, found := h.search(day); found {
		return h.values[i], true
	}
	return value, false
}

// Append sets the value of day, replacing the previous one.
func (h *History[T]) Append(day Date, value T) *History[T] {
	i, found := h.search(day)
	if found {
		h.values[i] = value
		return h
	}
	h.days = slices.Insert(h.days, i, day)
	h.values = slices.Insert(h.values, i, value)
	return h
}

// Delete removes the value of day and reports whether there was one.
func (h *History[T]) Delete(day Date) bool {
	i, found := h.search(day)
	if !found {
		return false
	}
	h.days = slices.Delete(h.days, i, i+1)
	h.values = slices.Delete(h.values, i, i+1)
	return true
}

// Values iterates over the days and their values in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, day := range h.days {
			if !yield(day, h.values[i]) {
				return
			}
		}
	}
}
