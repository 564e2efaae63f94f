// Package workloads wires every concrete workload package's Workloads()
// into a single orchestrator.Registry in the fixed table order spec.md
// §4.5 declares: ProjectOperations, BuildPerformance, Responsiveness,
// then the optional Graphics category. Each domain package also
// self-registers into workloads/registry from its own init() (panicking
// on an accidental duplicate ID); DefaultRegistry builds the
// cross-category order explicitly rather than depending on Go's
// unspecified init order between sibling packages.
package workloads

import (
	"benchforge/internal/orchestrator"
	"benchforge/internal/workload"
	"benchforge/internal/workloads/buildperf"
	"benchforge/internal/workloads/graphics"
	"benchforge/internal/workloads/projectops"
	"benchforge/internal/workloads/responsiveness"
)

// DefaultRegistry assembles the full, fixed-order registry of every
// built-in workload, graphics included — graphics workloads always
// register themselves and individually Skip without a display adapter.
func DefaultRegistry() *orchestrator.Registry {
	var ordered []workload.Workload
	ordered = append(ordered, projectops.Workloads()...)
	ordered = append(ordered, buildperf.Workloads()...)
	ordered = append(ordered, responsiveness.Workloads()...)
	ordered = append(ordered, graphics.Workloads()...)
	return orchestrator.NewRegistry(ordered...)
}
