package date

import (
	"slices"
	"testing"
)

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Test is about appending two values in reverse order and checking that everything is
	// as expected at every step of the way.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[1] != d1 {
		t.Errorf("history[1].day = %v want %v", h.days[1], d1)
	}
	if h.days[0] != d2 {
		t.Errorf("history[0].day = %v want %v", h.days[0], d2)
	}
	if h.values[1] != v1 {
		t.Errorf("history[1].value = %v want %v", h.values[1], v1)
	}
	if h.values[0] != v2 {
		t.Errorf("history[0].value = %v want %v", h.values[0], v2)
	}
}

func TestAppend_Replace(t *testing.T) {
	h := new(History[float64])
	d := New(2025, 3, 3)
	h.Append(d, 1).Append(d.Add(-1), 0.5).Append(d, 2)

	if h.Len() != 2 {
		t.Fatalf("Len() = %v want 2", h.Len())
	}
	if v, ok := h.Get(d); !ok || v != 2 {
		t.Errorf("Get(%v) = %v, %v want 2, true", d, v, ok)
	}
}

func TestDelete(t *testing.T) {
	h := new(History[int])
	d := New(2025, 1, 10)
	h.Append(d, 1).Append(d.Add(1), 2)

	if !h.Delete(d) {
		t.Errorf("Delete(%v) = false want true", d)
	}
	if h.Delete(d) {
		t.Errorf("second Delete(%v) = true want false", d)
	}
	if _, ok := h.Get(d); ok {
		t.Errorf("Get(%v) found a deleted day", d)
	}
	if got := h.Days(); !slices.Equal(got, []Date{d.Add(1)}) {
		t.Errorf("Days() = %v want [%v]", got, d.Add(1))
	}
}

func TestAppend_Order(t *testing.T) {
	h := new(History[int])
	h.Append(New(2025, 1, 20), 20).Append(New(2025, 1, 10), 10).Append(New(2025, 1, 15), 15)

	want := []Date{New(2025, 1, 10), New(2025, 1, 15), New(2025, 1, 20)}
	if got := h.Days(); !slices.Equal(got, want) {
		t.Errorf("Days() = %v want %v", got, want)
	}
	var values []int
	for _, v := range h.Values() {
		values = append(values, v)
	}
	if !slices.Equal(values, []int{10, 15, 20}) {
		t.Errorf("Values() = %v want [10 15 20]", values)
	}
}

func TestCompare(t *testing.T) {
	d := New(2025, 3, 1)
	testCases := []struct {
		x    Date
		want int
	}{
		{d.Add(-1), 1},
		{d, 0},
		{New(2025, 2, 29), 0}, // normalized to March 1st
		{d.Add(1), -1},
	}
	for _, tc := range testCases {
		if got := d.Compare(tc.x); got != tc.want {
			t.Errorf("%v.Compare(%v) = %v want %v", d, tc.x, got, tc.want)
		}
	}
}
