package library

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, dir, name string, content []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLibrary_list_filters_extensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp4", []byte("x"))
	touch(t, dir, "b.webm", []byte("x"))
	touch(t, dir, "c.mkv", []byte("x"))
	touch(t, dir, "notes.txt", []byte("x"))
	touch(t, dir, "cover.png", []byte("x"))
	if err := os.Mkdir(filepath.Join(dir, "sub.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}

	videos := New(dir).List()
	if len(videos) != 3 {
		t.Fatalf("got %d videos, want 3: %+v", len(videos), videos)
	}
	for _, v := range videos {
		if v.Name == "notes.txt" || v.Name == "cover.png" {
			t.Errorf("non-video listed: %q", v.Name)
		}
	}
}

func TestLibrary_thumbnail_lookup(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.mp4", []byte("v"))
	touch(t, dir, "movie.png", []byte{0x89, 0x50, 0x4e, 0x47})
	touch(t, dir, "bare.mp4", []byte("v"))

	byName := make(map[string]Video)
	for _, v := range New(dir).List() {
		byName[v.Name] = v
	}

	withThumb := byName["movie.mp4"]
	if withThumb.Thumbnail != "/thumbnails/movie.png" {
		t.Errorf("thumbnail path = %q", withThumb.Thumbnail)
	}
	if !strings.HasPrefix(withThumb.PNGData, "data:image/png;base64,") {
		t.Errorf("pngData not a data URI: %q", withThumb.PNGData)
	}

	bare := byName["bare.mp4"]
	if bare.Thumbnail != "" || bare.PNGData != "" {
		t.Errorf("video without thumbnail should have empty fields: %+v", bare)
	}
}

func TestLibrary_missing_dir_is_empty_list(t *testing.T) {
	videos := New(filepath.Join(t.TempDir(), "nope")).List()
	if len(videos) != 0 {
		t.Errorf("got %d videos from missing dir, want 0", len(videos))
	}
}
