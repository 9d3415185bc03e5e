package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Replaces Existing Note", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "apple.md")
		if err := os.WriteFile(filename, []byte("---\ncalories: 10\n---\n"), 0644); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		want := "---\ncalories: 52\n---\n"
		if err := writeFileAtomic(filename, []byte(want), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		got, err := os.ReadFile(filename)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if string(got) != want {
			t.Errorf("expected %q, got %q", want, string(got))
		}
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		if err := writeFileAtomic(filepath.Join(dir, "oats.md"), []byte("oats"), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), TempFilePrefix) {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing", "rice.md")
		if err := writeFileAtomic(filename, []byte("rice"), 0644); err == nil {
			t.Error("expected error when directory is missing, got nil")
		}
	})
}
