package scratch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireCreatesUniqueDirectories(t *testing.T) {
	base := t.TempDir()

	a, err := Acquire(base, "test")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer a.Release()

	b, err := Acquire(base, "test")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer b.Release()

	if a.Path() == b.Path() {
		t.Fatalf("two acquisitions returned the same path: %s", a.Path())
	}
	if info, err := os.Stat(a.Path()); err != nil || !info.IsDir() {
		t.Fatalf("acquired path is not a directory: %v", err)
	}
}

func TestCreateFileSizesAndPatterns(t *testing.T) {
	base := t.TempDir()
	a, err := Acquire(base, "file")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer a.Release()

	if err := a.CreateFile("data.bin", 4096, Random, 1); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	info, err := os.Stat(filepath.Join(a.Path(), "data.bin"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 4096 {
		t.Fatalf("file size = %d, want 4096", info.Size())
	}
}

func TestCreateTreePopulatesExpectedLayout(t *testing.T) {
	base := t.TempDir()
	a, err := Acquire(base, "tree")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer a.Release()

	if err := a.CreateTree(3, 4, 128, Zero, 1); err != nil {
		t.Fatalf("CreateTree: %v", err)
	}

	entries, err := os.ReadDir(a.Path())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d top-level directories, want 3", len(entries))
	}
	for _, d := range entries {
		files, err := os.ReadDir(filepath.Join(a.Path(), d.Name()))
		if err != nil {
			t.Fatalf("ReadDir(%s): %v", d.Name(), err)
		}
		if len(files) != 4 {
			t.Fatalf("dir %s has %d files, want 4", d.Name(), len(files))
		}
	}
}

func TestReleaseRemovesTheTree(t *testing.T) {
	base := t.TempDir()
	a, err := Acquire(base, "release")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	path := a.Path()

	if leftover := a.Release(); leftover != "" {
		t.Fatalf("Release left behind: %s", leftover)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("scratch area still exists after Release: %v", err)
	}
}

func TestAcquireDefaultsToTempDir(t *testing.T) {
	a, err := Acquire("", "default")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer a.Release()
	want, err := filepath.EvalSymlinks(os.TempDir())
	if err != nil {
		want = os.TempDir()
	}
	got, err := filepath.EvalSymlinks(filepath.Dir(a.Path()))
	if err != nil {
		got = filepath.Dir(a.Path())
	}
	if got != want {
		t.Fatalf("Acquire(\"\", ...) path %s not under os.TempDir() %s", a.Path(), os.TempDir())
	}
}
