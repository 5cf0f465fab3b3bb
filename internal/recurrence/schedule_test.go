package recurrence

import (
	"testing"
	"time"

	"github.com/ferrinbar/chorewheel/internal/apperr"
)

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
}

func TestNewRejectsNonPositiveInterval(t *testing.T) {
	for _, days := range []int{0, -1, -7} {
		if _, err := New(d(2026, 2, 1), days, nil); err == nil {
			t.Errorf("New with interval %d should error", days)
		} else if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("New with interval %d: kind = %v, want validation", days, apperr.KindOf(err))
		}
	}
}

func TestNewRejectsUntilBeforeStart(t *testing.T) {
	until := d(2026, 1, 31)
	_, err := New(d(2026, 2, 1), 7, &until)
	if err == nil {
		t.Fatal("expected error for until before start")
	}
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want validation", apperr.KindOf(err))
	}
}

func TestNewAllowsUntilEqualStart(t *testing.T) {
	until := d(2026, 2, 1)
	if _, err := New(d(2026, 2, 1), 7, &until); err != nil {
		t.Fatalf("New with until == start: %v", err)
	}
}

func TestNextAfterOnLattice(t *testing.T) {
	start := d(2026, 2, 1)
	s, err := New(start, 7, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name  string
		after time.Time
		want  time.Time
	}{
		{"exactly at start", start, d(2026, 2, 8)},
		{"mid interval", start.AddDate(0, 0, 3), d(2026, 2, 8)},
		{"just before next point", d(2026, 2, 8).Add(-time.Minute), d(2026, 2, 8)},
		{"exactly on a lattice point", d(2026, 2, 8), d(2026, 2, 15)},
		{"several intervals out", start.AddDate(0, 0, 20), d(2026, 2, 22)},
	}

	for _, tt := range tests {
		got := s.NextAfter(tt.after)
		if got == nil {
			t.Errorf("%s: NextAfter(%v) = nil, want %v", tt.name, tt.after, tt.want)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("%s: NextAfter(%v) = %v, want %v", tt.name, tt.after, *got, tt.want)
		}
	}
}

func TestNextAfterBeforeStartYieldsStart(t *testing.T) {
	start := d(2026, 2, 1)
	s, _ := New(start, 7, nil)

	got := s.NextAfter(start.AddDate(0, 0, -1))
	if got == nil {
		t.Fatal("NextAfter before start = nil, want start")
	}
	if !got.Equal(start) {
		t.Errorf("NextAfter before start = %v, want %v", *got, start)
	}
}

func TestNextAfterPastUntil(t *testing.T) {
	start := d(2026, 2, 1)
	until := d(2026, 2, 10)
	s, _ := New(start, 7, &until)

	// Next point after Feb 8 would be Feb 15, past the cutoff.
	if got := s.NextAfter(d(2026, 2, 8)); got != nil {
		t.Errorf("NextAfter past until = %v, want nil", *got)
	}

	// Feb 8 itself is still within the cutoff.
	got := s.NextAfter(start)
	if got == nil || !got.Equal(d(2026, 2, 8)) {
		t.Errorf("NextAfter within until = %v, want Feb 8", got)
	}
}

func TestNextAfterDailyInterval(t *testing.T) {
	start := d(2026, 2, 1)
	s, _ := New(start, 1, nil)

	got := s.NextAfter(start.Add(6 * time.Hour))
	want := d(2026, 2, 2)
	if got == nil || !got.Equal(want) {
		t.Errorf("NextAfter = %v, want %v", got, want)
	}
}

func TestNextAfterUnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown schedule kind")
		}
	}()

	s := Schedule{Kind: "lunar", Start: d(2026, 2, 1), IntervalDays: 7}
	s.NextAfter(d(2026, 2, 3))
}
