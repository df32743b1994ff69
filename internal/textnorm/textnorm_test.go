package textnorm

import (
	"testing"
	"time"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Período", "periodo"},
		{"BANCO NACIONAL DE MÉXICO", "banco nacional de mexico"},
		{"Año", "ano"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Fatalf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMonthNumber(t *testing.T) {
	tests := []struct {
		in   string
		want time.Month
		ok   bool
	}{
		{"Enero", time.January, true},
		{"dic", time.December, true},
		{"DEC", time.December, true},
		{"sept", 0, false},
		{"set", time.September, true},
		{"Ago.", time.August, true},
		{"foo", 0, false},
	}

	for _, tt := range tests {
		got, ok := MonthNumber(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("MonthNumber(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCivilDate(t *testing.T) {
	if _, ok := CivilDate(2024, time.February, 30); ok {
		t.Fatalf("expected 30 Feb to be rejected")
	}
	if _, ok := CivilDate(2024, 13, 1); ok {
		t.Fatalf("expected month 13 to be rejected")
	}
	got, ok := CivilDate(2024, time.February, 29)
	if !ok || got.Format(time.DateOnly) != "2024-02-29" {
		t.Fatalf("expected leap day, got %v ok=%v", got, ok)
	}
}

func TestLeading(t *testing.T) {
	pages := []string{"a", "b", "c", "d"}
	if got := Leading(pages, 3); len(got) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(got))
	}
	if got := Leading(pages[:1], 3); len(got) != 1 {
		t.Fatalf("expected 1 page, got %d", len(got))
	}
}
