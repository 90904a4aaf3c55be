package ui

import "testing"

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello w…"},
		{"hello", 0, ""},
		// Wide characters count as two cells.
		{"日本語のテスト", 7, "日本語…"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight should not truncate, got %q", got)
	}
}

func TestDisplayLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Bullet one", "Bullet one"},
		{"Bullet one <1->", "Bullet one"},
		{"Bullet one @first <1->", "Bullet one"},
		{"Summary <2> @recap @end", "Summary"},
		{"<1-3>", ""},
	}
	for _, tc := range cases {
		if got := displayLabel(tc.in); got != tc.want {
			t.Errorf("displayLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
