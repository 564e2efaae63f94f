// Package scratch provides scoped acquisition of a uniquely-named temporary
// working directory for a single workload invocation, with guaranteed
// release on every exit path. The acquisition/release shape and the
// retry-on-cleanup behaviour are adapted from environment.Environment's
// Setup/Cleanup lifecycle, specialised to a plain filesystem scratch tree
// rather than a chroot/jail.
package scratch

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// Pattern selects the byte content written by CreateFile/CreateTree.
type Pattern int

const (
	Zero Pattern = iota
	Random
	Text
)

// SetupError reports that a scratch area could not be created — insufficient
// free space, permission denied, or an equivalent filesystem failure.
type SetupError struct {
	Op   string
	Path string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("scratch setup failed (%s): %s: %v", e.Op, e.Path, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// Area is a scoped temporary directory owned exclusively by the workload
// that acquired it. Release unconditionally removes the tree, retrying a
// bounded number of times to tolerate transient antivirus/indexer holds.
type Area struct {
	root string
}

// Acquire creates a uniquely-named directory under base (os.TempDir() when
// base is empty) and returns a handle to it. On a second attempt with a
// fresh path if the first fails, per the SetupError local-recovery rule —
// callers that still get an error back should convert it to a Skipped
// workload outcome rather than retrying further.
func Acquire(base, prefix string) (*Area, error) {
	if base == "" {
		base = os.TempDir()
	}
	area, err := acquireOnce(base, prefix)
	if err != nil {
		area, err = acquireOnce(base, prefix)
	}
	if err != nil {
		return nil, &SetupError{Op: "mkdir", Path: base, Err: err}
	}
	return area, nil
}

func acquireOnce(base, prefix string) (*Area, error) {
	name := fmt.Sprintf("%s-%d-%06d", prefix, os.Getpid(), rand.Intn(1_000_000))
	path := filepath.Join(base, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}
	return &Area{root: path}, nil
}

// Path returns the scratch area's root directory.
func (a *Area) Path() string { return a.root }

// CreateFile writes a single file of the given size under the scratch
// area, relative path rel, with content generated per Pattern.
func (a *Area) CreateFile(rel string, size int64, pattern Pattern, seed int64) error {
	full := filepath.Join(a.root, rel)
	if dir := filepath.Dir(full); dir != a.root {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &SetupError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	f, err := os.Create(full)
	if err != nil {
		return &SetupError{Op: "create", Path: full, Err: err}
	}
	defer f.Close()
	if err := writePattern(f, size, pattern, seed); err != nil {
		return &SetupError{Op: "write", Path: full, Err: err}
	}
	return nil
}

// CreateTree populates dirs directories each containing filesPerDir files
// of fileSize bytes, generated per Pattern. Used by workloads that need a
// broad file/dir topology (file_enum, dir_traversal).
func (a *Area) CreateTree(dirs, filesPerDir int, fileSize int64, pattern Pattern, seed int64) error {
	for d := 0; d < dirs; d++ {
		dirPath := filepath.Join(a.root, fmt.Sprintf("d%04d", d))
		if err := os.MkdirAll(dirPath, 0o755); err != nil {
			return &SetupError{Op: "mkdir", Path: dirPath, Err: err}
		}
		for f := 0; f < filesPerDir; f++ {
			filePath := filepath.Join(dirPath, fmt.Sprintf("f%04d", f))
			fh, err := os.Create(filePath)
			if err != nil {
				return &SetupError{Op: "create", Path: filePath, Err: err}
			}
			err = writePattern(fh, fileSize, pattern, seed+int64(d*filesPerDir+f))
			fh.Close()
			if err != nil {
				return &SetupError{Op: "write", Path: filePath, Err: err}
			}
		}
	}
	return nil
}

func writePattern(w *os.File, size int64, pattern Pattern, seed int64) error {
	const chunkSize = 64 * 1024
	buf := make([]byte, chunkSize)
	rng := rand.New(rand.NewSource(seed))

	switch pattern {
	case Zero:
		// buf is already zeroed.
	case Random:
		rng.Read(buf)
	case Text:
		const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 \n"
		for i := range buf {
			buf[i] = alphabet[rng.Intn(len(alphabet))]
		}
	}

	remaining := size
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}

// Release removes the scratch tree, retrying a bounded number of times
// with a short backoff to tolerate transient holds (e.g. antivirus
// scanners). Files still present after the retry budget are not treated
// as a workload failure — the caller should log them and move on.
func (a *Area) Release() (leftover string) {
	const attempts = 5
	var err error
	for i := 0; i < attempts; i++ {
		if err = os.RemoveAll(a.root); err == nil {
			return ""
		}
		time.Sleep(time.Duration(i+1) * 20 * time.Millisecond)
	}
	if _, statErr := os.Stat(a.root); statErr == nil {
		return a.root
	}
	return ""
}
