package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	stored, n, err := s.Save("slides.pdf", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if n != 5 {
		t.Fatalf("n=%d, want 5", n)
	}
	if !strings.HasSuffix(stored, "-slides.pdf") {
		t.Fatalf("stored=%q, want sanitized original as suffix", stored)
	}
	got, err := os.ReadFile(filepath.Join(dir, stored))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("content=%q", got)
	}
}

func TestStoreSaveNamesNeverCollide(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	a, _, err := s.Save("notes.txt", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("save a: %v", err)
	}
	b, _, err := s.Save("notes.txt", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("save b: %v", err)
	}
	if a == b {
		t.Fatalf("two uploads stored as %q", a)
	}
}

func TestStoreSaveStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	stored, _, err := s.Save("../../etc/passwd", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.ContainsAny(stored, "/\\") {
		t.Fatalf("stored=%q escapes the uploads dir", stored)
	}
	if _, err := os.Stat(filepath.Join(dir, stored)); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
}

func TestStoreRemove(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	stored, _, err := s.Save("doc.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Remove(stored); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), stored)); !os.IsNotExist(err) {
		t.Fatalf("file still there: %v", err)
	}
	// Removing again is not an error.
	if err := s.Remove(stored); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"slides.pdf", "slides.pdf"},
		{"my report (final).docx", "my_report__final_.docx"},
		{"über.txt", "_ber.txt"},
		{"", "file"},
		{".", "file"},
		{"a b", "a_b"},
	}
	for _, tc := range cases {
		if got := sanitize(tc.in); got != tc.want {
			t.Errorf("sanitize(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
