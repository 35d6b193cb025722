package texpos

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"testing"
	"time"
)

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"icons.png", true},
		{"ICONS.PNG", true},
		{"photo.jpeg", true},
		{"anim.webp", true},
		{"scan.TIFF", true},
		{"notes.txt", false},
		{"icons.png.swp", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := isImageFile(tt.name); got != tt.want {
			t.Errorf("isImageFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDebouncer(t *testing.T) {
	var d debouncer
	t0 := time.Unix(1000, 0)

	if !d.allow("a.png", t0) {
		t.Fatal("first event dropped")
	}
	if d.allow("a.png", t0.Add(reloadDebounce/2)) {
		t.Error("repeated event inside the window delivered")
	}
	if !d.allow("b.png", t0.Add(reloadDebounce/2)) {
		t.Error("event for another file dropped")
	}
	if !d.allow("a.png", t0.Add(reloadDebounce)) {
		t.Error("event after the window dropped")
	}
}

func TestDebouncer_PrunesOldEntries(t *testing.T) {
	var d debouncer
	t0 := time.Unix(1000, 0)

	for i := range 100 {
		d.allow("art/"+strconv.Itoa(i)+".png", t0)
	}
	if len(d.last) != 100 {
		t.Fatalf("tracked %d files, want 100", len(d.last))
	}

	d.allow("late.png", t0.Add(2*reloadDebounce))
	if len(d.last) != 1 {
		t.Errorf("tracked %d files after the window, want 1", len(d.last))
	}
}

func TestWatchDirs(t *testing.T) {
	m := Manifest{Assets: []ManifestEntry{
		{Name: "a", Path: "hack/data/art/a.png"},
		{Name: "b", Path: "hack/data/art/b.png"},
		{Name: "c", Path: "mods/c.png"},
		{Name: "d", Path: "d.png"},
	}}
	got := WatchDirs("/root", m)
	want := []string{
		filepath.Join("/root", "hack", "data", "art"),
		filepath.Join("/root", "mods"),
		filepath.Join("/root"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("WatchDirs = %v, want %v", got, want)
	}
}

func TestWatcher_ReportsImageWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "icons.png")
	if err := os.WriteFile(target, tilesetPNG(t, 8, 12, 8, 12), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		if got != target {
			t.Errorf("event for %q, want %q", got, target)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for image write")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("NewWatcher on missing directory returned nil error")
	}
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, ok := <-w.Events; ok {
		t.Error("Events not closed")
	}
}
