package benchlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Viewer tails a session's run log, adapted from log.ViewLog/usePager but
// specialised to a live follow rather than a one-shot dump — the
// `benchforge watch` command's use case.
type Viewer struct {
	path string
}

// NewViewer opens a Viewer over the run log under dir.
func NewViewer(dir string) *Viewer {
	return &Viewer{path: filepath.Join(dir, "00_run.log")}
}

// Dump writes the entire log so far to w.
func (v *Viewer) Dump(w io.Writer) error {
	f, err := os.Open(v.path)
	if err != nil {
		return err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fmt.Fprintln(w, scanner.Text())
	}
	return scanner.Err()
}

// Follow streams new lines appended to the log to w until stop is closed,
// polling every interval (matching monitor-style "tail -f" behaviour
// without requiring inotify/kqueue support on every platform).
func (v *Viewer) Follow(w io.Writer, interval time.Duration, stop <-chan struct{}) error {
	f, err := os.Open(v.path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			fmt.Fprint(w, line)
		}
		if err == io.EOF {
			time.Sleep(interval)
			continue
		}
		if err != nil {
			return err
		}
	}
}
