// Package registry collects every concrete workload package's self
// registration in declaration order and panics on a duplicate workload ID.
// It does not feed the session: internal/workloads.DefaultRegistry builds
// the orchestrator's Registry from each domain package's Workloads()
// (projectops, buildperf, responsiveness, graphics). Each domain package registers its
// workloads from its own init(), in table order, matching
// environment.Register's panic-on-duplicate-ID discipline.
package registry

import "benchforge/internal/workload"

var (
	order []string
	byID  = map[string]workload.Workload{}
)

// Register adds w to the fixed order. Panics on a duplicate ID — two
// workloads sharing an ID is a programming error, never a runtime state.
func Register(w workload.Workload) {
	id := w.ID()
	if _, exists := byID[id]; exists {
		panic("registry: workload already registered: " + id)
	}
	byID[id] = w
	order = append(order, id)
}

// All returns every registered workload in declared order.
func All() []workload.Workload {
	out := make([]workload.Workload, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}
