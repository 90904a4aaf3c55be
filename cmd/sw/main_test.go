package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vanderheijden86/slidewalk/pkg/config"
)

func TestResolveDeckDir(t *testing.T) {
	cfg := config.Config{
		Decks: []config.Deck{{Name: "talk", Path: "/srv/decks/talk"}},
	}

	if got, err := resolveDeckDir(cfg, "", "slides/"); err != nil || got != "slides/" {
		t.Errorf("explicit arg: got (%q, %v)", got, err)
	}
	if got, err := resolveDeckDir(cfg, "talk", ""); err != nil || got != "/srv/decks/talk" {
		t.Errorf("named deck: got (%q, %v)", got, err)
	}
	if _, err := resolveDeckDir(cfg, "missing", ""); err == nil {
		t.Error("unknown deck name should fail")
	}
	if got, err := resolveDeckDir(cfg, "", ""); err != nil || got != "." {
		t.Errorf("default: got (%q, %v)", got, err)
	}

	// An explicit directory wins over a named deck.
	if got, _ := resolveDeckDir(cfg, "talk", "other/"); got != "other/" {
		t.Errorf("arg should win over name, got %q", got)
	}
}

const annotateFixture = `<svg xmlns="http://www.w3.org/2000/svg"
     xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape">
  <g inkscape:groupmode="layer" inkscape:label="Bullet &lt;1-&gt;"/>
  <g inkscape:groupmode="layer" inkscape:label="Base"/>
</svg>`

func TestAnnotateDeck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "100_intro.svg")
	if err := os.WriteFile(path, []byte(annotateFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := annotateDeck(dir); err != nil {
		t.Fatalf("annotateDeck: %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "slidie:steps") {
		t.Errorf("annotated file missing step attributes:\n%s", out)
	}
}

func TestAnnotateDeckEmptyDir(t *testing.T) {
	if err := annotateDeck(t.TempDir()); err != nil {
		t.Errorf("empty dir should be a no-op, got %v", err)
	}
}

const emptySlide = `<svg xmlns="http://www.w3.org/2000/svg"/>`

func writeDeck(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(emptySlide), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func deckNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestMvSlideIntoGap(t *testing.T) {
	dir := t.TempDir()
	writeDeck(t, dir, "100_a.svg", "200_b.svg", "300_c.svg")

	// Move c between a and b: the midpoint 150 is free, nothing else
	// gets renamed.
	if err := mvSlide(filepath.Join(dir, "300_c.svg"), 2); err != nil {
		t.Fatalf("mvSlide: %v", err)
	}
	got := deckNames(t, dir)
	want := []string{"100_a.svg", "150_c.svg", "200_b.svg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestMvSlideRenumbers(t *testing.T) {
	dir := t.TempDir()
	writeDeck(t, dir, "0_a.svg", "1_b.svg", "2_c.svg")

	// No gap before b: the higher numbers shift up.
	if err := mvSlide(filepath.Join(dir, "2_c.svg"), 2); err != nil {
		t.Fatalf("mvSlide: %v", err)
	}
	got := deckNames(t, dir)
	want := []string{"0_a.svg", "100_c.svg", "200_b.svg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestMvSlideInsertsUnnumberedFile(t *testing.T) {
	dir := t.TempDir()
	writeDeck(t, dir, "100_a.svg")
	if err := os.WriteFile(filepath.Join(dir, "new.svg"), []byte(emptySlide), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := mvSlide(filepath.Join(dir, "new.svg"), 2); err != nil {
		t.Fatalf("mvSlide: %v", err)
	}
	got := deckNames(t, dir)
	want := []string{"100_a.svg", "200_new.svg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestMvSlideRejectsBadPosition(t *testing.T) {
	dir := t.TempDir()
	writeDeck(t, dir, "100_a.svg", "200_b.svg")

	if err := mvSlide(filepath.Join(dir, "200_b.svg"), 0); err == nil {
		t.Error("position 0 should fail")
	}
	if err := mvSlide(filepath.Join(dir, "200_b.svg"), 3); err == nil {
		t.Error("position past the end should fail")
	}
}
