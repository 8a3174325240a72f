package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("creating directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(name), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

func newManager() *OSFilesystemManager {
	return NewOSFilesystemManager([]string{".jpg", "jpeg", ".TIF", ".tiff"}, []string{".*"})
}

func TestOSFilesystemManager_FindImages(t *testing.T) {
	t.Run("returns images sorted by name", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFiles(t, dir, "000044230003.jpg", "000044230001.JPG", "000044230002.tif", "exif.txt", "000044230001.thm")

		m := newManager()
		root, err := m.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		got, err := m.FindImages(root)
		if err != nil {
			t.Fatalf("FindImages() error = %v", err)
		}

		want := []string{"000044230001.JPG", "000044230002.tif", "000044230003.jpg"}
		if len(got) != len(want) {
			t.Fatalf("len(FindImages()) = %d, want %d", len(got), len(want))
		}
		for i, p := range got {
			if p.Name() != want[i] {
				t.Errorf("FindImages()[%d] = %q, want %q", i, p.Name(), want[i])
			}
		}
	})

	t.Run("skips hidden and ignored files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFiles(t, dir, "12_01.jpg", "._12_01.jpg", "12_contact.jpg")
		if err := os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte("*_contact.jpg\n"), 0644); err != nil {
			t.Fatalf("writing ignore file: %v", err)
		}

		m := newManager()
		root, _ := m.Resolve(dir)
		got, err := m.FindImages(root)
		if err != nil {
			t.Fatalf("FindImages() error = %v", err)
		}
		if len(got) != 1 || got[0].Name() != "12_01.jpg" {
			t.Errorf("FindImages() = %v, want only 12_01.jpg", got)
		}
	})

	t.Run("does not descend into subdirectories", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFiles(t, dir, "roll_12/12_01.jpg")

		m := newManager()
		root, _ := m.Resolve(dir)
		got, err := m.FindImages(root)
		if err != nil {
			t.Fatalf("FindImages() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len(FindImages()) = %d, want 0", len(got))
		}
	})
}

func TestOSFilesystemManager_FindDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "roll_12/12_01.jpg", "roll_13/12_01.jpg", ".cache/x.jpg", "roll_13/rescans/13_01.jpg")

	m := newManager()
	root, _ := m.Resolve(dir)
	got, err := m.FindDirectories(root)
	if err != nil {
		t.Fatalf("FindDirectories() error = %v", err)
	}

	want := []string{
		dir,
		filepath.Join(dir, "roll_12"),
		filepath.Join(dir, "roll_13"),
		filepath.Join(dir, "roll_13", "rescans"),
	}
	if len(got) != len(want) {
		t.Fatalf("len(FindDirectories()) = %d, want %d", len(got), len(want))
	}
	for i, p := range got {
		if p.String() != want[i] {
			t.Errorf("FindDirectories()[%d] = %q, want %q", i, p.String(), want[i])
		}
	}
}

func TestOSFilesystemManager_FindDirectories_IgnoreFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "roll_12/12_01.jpg", "contact_sheets/12.jpg", "roll_13/13_01.jpg", "roll_13/rescans/13_01.jpg")
	if err := os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte("contact_*\n"), 0644); err != nil {
		t.Fatalf("writing ignore file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "roll_13", IgnoreFileName), []byte("rescans\n"), 0644); err != nil {
		t.Fatalf("writing ignore file: %v", err)
	}

	m := newManager()
	root, _ := m.Resolve(dir)
	got, err := m.FindDirectories(root)
	if err != nil {
		t.Fatalf("FindDirectories() error = %v", err)
	}

	want := []string{dir, filepath.Join(dir, "roll_12"), filepath.Join(dir, "roll_13")}
	if len(got) != len(want) {
		t.Fatalf("FindDirectories() = %v, want %v", got, want)
	}
	for i, p := range got {
		if p.String() != want[i] {
			t.Errorf("FindDirectories()[%d] = %q, want %q", i, p.String(), want[i])
		}
	}
}

func TestOSFilesystemManager_RemoveThumbnails(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "12_01.jpg", "12_01.THM", "12_02.thm")

	m := newManager()
	root, _ := m.Resolve(dir)
	n, err := m.RemoveThumbnails(root)
	if err != nil {
		t.Fatalf("RemoveThumbnails() error = %v", err)
	}
	if n != 2 {
		t.Errorf("RemoveThumbnails() = %d, want 2", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "12_01.jpg")); err != nil {
		t.Errorf("image was removed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "12_02.thm")); !os.IsNotExist(err) {
		t.Errorf("thumbnail still present: %v", err)
	}
}

func TestOSFilesystemManager_WriteFile(t *testing.T) {
	t.Run("creates a new file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "exif.txt")

		if err := newManager().WriteFile(path, []byte("Film=Ilford HP5+\n")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(got) != "Film=Ilford HP5+\n" {
			t.Errorf("content = %q, want %q", got, "Film=Ilford HP5+\n")
		}
	})

	t.Run("replaces a file and keeps its permissions", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "scan.jpg")
		if err := os.WriteFile(path, []byte("rewritten"), 0600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		if err := newManager().WriteFile(path, []byte("original")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("permissions = %v, want 0600", info.Mode().Perm())
		}
		entries, _ := os.ReadDir(filepath.Dir(path))
		if len(entries) != 1 {
			t.Errorf("directory has %d entries, want 1 (temp file left behind)", len(entries))
		}
	})
}

func TestOSFilesystemManager_Resolve(t *testing.T) {
	t.Run("missing path is an error", func(t *testing.T) {
		t.Parallel()
		if _, err := newManager().Resolve(filepath.Join(t.TempDir(), "absent")); err == nil {
			t.Error("Resolve() expected error for missing path")
		}
	})

	t.Run("opening a directory is an error", func(t *testing.T) {
		t.Parallel()
		m := newManager()
		dir, err := m.Resolve(t.TempDir())
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if _, err := m.Open(dir); err == nil {
			t.Error("Open() expected error for a directory")
		}
	})
}
