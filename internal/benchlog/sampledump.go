package benchlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// SampleDump is a per-workload raw-sample log, adapted from
// log.PackageLogger's per-port build log: used when a session runs with
// verbose diagnostics enabled, to debug a workload's raw series without
// polluting the chronological run log.
type SampleDump struct {
	workloadID string
	file       *os.File
	mu         sync.Mutex
}

// NewSampleDump creates the per-workload dump file under dir.
func NewSampleDump(dir, workloadID string) (*SampleDump, error) {
	safeName := strings.ReplaceAll(workloadID, "/", "_")
	f, err := os.Create(filepath.Join(dir, safeName+".samples.log"))
	if err != nil {
		return nil, err
	}
	sd := &SampleDump{workloadID: workloadID, file: f}
	sd.writeHeader()
	return sd, nil
}

func (sd *SampleDump) writeHeader() {
	fmt.Fprintf(sd.file, "%s\n", strings.Repeat("=", 70))
	fmt.Fprintf(sd.file, "Workload: %s\n", sd.workloadID)
	fmt.Fprintf(sd.file, "Started: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(sd.file, "%s\n\n", strings.Repeat("=", 70))
}

// WriteSeries dumps the raw sample series, one value per line.
func (sd *SampleDump) WriteSeries(series []float64) {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	for i, v := range series {
		fmt.Fprintf(sd.file, "%d\t%v\n", i, v)
	}
	sd.file.Sync()
}

// Close closes the dump file.
func (sd *SampleDump) Close() {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	sd.file.Close()
}
