package deck

import (
	"errors"
	"reflect"
	"testing"
)

func TestExtractPrefix(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"100_first.svg", 100},
		{"0100_first.svg", 100},
		{"-10_before.svg", -10},
		{"+5_after.svg", 5},
		{"0.svg", 0},
	}
	for _, tc := range cases {
		got, err := ExtractPrefix(tc.name)
		if err != nil {
			t.Errorf("ExtractPrefix(%q): %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ExtractPrefix(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}

	if _, err := ExtractPrefix("unnumbered.svg"); !errors.Is(err, ErrNoPrefix) {
		t.Errorf("ExtractPrefix(unnumbered.svg) = %v, want ErrNoPrefix", err)
	}
}

func TestReplacePrefix(t *testing.T) {
	got, err := ReplacePrefix("0100_foo.svg", 150, 5)
	if err != nil {
		t.Fatalf("ReplacePrefix: %v", err)
	}
	if got != "00150_foo.svg" {
		t.Errorf("ReplacePrefix = %q, want 00150_foo.svg", got)
	}

	got, err = ReplacePrefix("slides/100_foo.svg", 7, 3)
	if err != nil {
		t.Fatalf("ReplacePrefix: %v", err)
	}
	if got != "slides/007_foo.svg" {
		t.Errorf("ReplacePrefix = %q, want slides/007_foo.svg", got)
	}

	if _, err := ReplacePrefix("foo.svg", 1, 5); !errors.Is(err, ErrNoPrefix) {
		t.Errorf("ReplacePrefix(foo.svg) = %v, want ErrNoPrefix", err)
	}
}

func TestTryInsertNumber(t *testing.T) {
	cases := []struct {
		existing      []int
		position      int
		allowNegative bool
		want          int
		wantErr       error
	}{
		// Appending, including to an empty sequence.
		{nil, 0, false, 100, nil},
		{[]int{100, 200}, 2, false, 300, nil},
		// Midpoint of a gap.
		{[]int{100, 200}, 1, false, 150, nil},
		// Inserting at the start stays non-negative by default...
		{[]int{100, 200}, 0, false, 49, nil},
		// ...but goes negative when allowed.
		{[]int{5}, 0, true, -95, nil},
		// No gap.
		{[]int{0, 1}, 1, false, 0, ErrNoFreeNumber},
		// Refuses to work on negative sequences by default.
		{[]int{-100}, 0, false, 0, ErrNegative},
	}
	for _, tc := range cases {
		got, err := tryInsertNumber(tc.existing, tc.position, tc.allowNegative, PreferredStepSize)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("tryInsertNumber(%v, %d) error = %v, want %v",
					tc.existing, tc.position, err, tc.wantErr)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("tryInsertNumber(%v, %d) = (%d, %v), want %d",
				tc.existing, tc.position, got, err, tc.want)
		}
	}
}

func TestSqueezeInLeadingNumber(t *testing.T) {
	// A gap later in the sequence: spread the shifted numbers evenly.
	got := squeezeInLeadingNumber([]int{10, 11, 20}, PreferredStepSize)
	if !reflect.DeepEqual(got, []int{11, 14, 17, 20}) {
		t.Errorf("squeeze([10 11 20]) = %v, want [11 14 17 20]", got)
	}

	// No gap anywhere: renumber everything with the preferred step.
	got = squeezeInLeadingNumber([]int{1, 2}, PreferredStepSize)
	if !reflect.DeepEqual(got, []int{100, 200, 300}) {
		t.Errorf("squeeze([1 2]) = %v, want [100 200 300]", got)
	}
}

func TestInsertNumberWithoutRenumbering(t *testing.T) {
	number, renumberings, err := InsertNumber([]int{100, 200}, 1, false)
	if err != nil {
		t.Fatalf("InsertNumber: %v", err)
	}
	if number != 150 || len(renumberings) != 0 {
		t.Errorf("got (%d, %v), want (150, none)", number, renumberings)
	}
}

func TestInsertNumberShiftsUp(t *testing.T) {
	// [0 1 2] has no room anywhere; shifting the tail up is the only
	// option since nothing fits below 0.
	number, renumberings, err := InsertNumber([]int{0, 1, 2}, 1, false)
	if err != nil {
		t.Fatalf("InsertNumber: %v", err)
	}
	if number != 100 {
		t.Errorf("number = %d, want 100", number)
	}
	// Largest first, so no rename lands on an occupied number.
	want := []Renumbering{{From: 2, To: 300}, {From: 1, To: 200}}
	if !reflect.DeepEqual(renumberings, want) {
		t.Errorf("renumberings = %v, want %v", renumberings, want)
	}
}

func TestInsertNumberShiftsDown(t *testing.T) {
	// Moving the single predecessor down is less disruptive than
	// shifting the whole tail up.
	number, renumberings, err := InsertNumber([]int{10, 11, 12}, 1, false)
	if err != nil {
		t.Fatalf("InsertNumber: %v", err)
	}
	if number != 7 {
		t.Errorf("number = %d, want 7", number)
	}
	want := []Renumbering{{From: 10, To: 3}}
	if !reflect.DeepEqual(renumberings, want) {
		t.Errorf("renumberings = %v, want %v", renumberings, want)
	}
}

func TestInsertNumberRejectsBadInput(t *testing.T) {
	if _, _, err := InsertNumber([]int{2, 1}, 0, false); err == nil {
		t.Error("expected error for unsorted input")
	}
	if _, _, err := InsertNumber([]int{1, 1}, 0, false); err == nil {
		t.Error("expected error for duplicate numbers")
	}
	if _, _, err := InsertNumber([]int{1}, 5, false); err == nil {
		t.Error("expected error for out-of-range position")
	}
}
