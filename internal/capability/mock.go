package capability

// Mock is a Provider whose answers are set directly, for workload tests
// that need to exercise both the Skip path (no display adapter) and the
// full-run path without depending on the test machine's own hardware.
type Mock struct {
	DisplayAdapter bool
	DropFileCache  bool
	DurableSync    bool
}

func (m Mock) HasDisplayAdapter() bool    { return m.DisplayAdapter }
func (m Mock) CanDropFileCache() bool     { return m.DropFileCache }
func (m Mock) DurableSyncSupported() bool { return m.DurableSync }

func init() {
	Register("mock", Mock{})
}
