package cluster

import (
	"context"

	"github.com/mshekow/vm-benchmark/util"
)

// The lifecycle phase of a workload unit as reported by the cluster.
type UnitStatus string

const (
	UnitPending   UnitStatus = "Pending"
	UnitRunning   UnitStatus = "Running"
	UnitSucceeded UnitStatus = "Succeeded"
	UnitFailed    UnitStatus = "Failed"
)

// A Client schedules workload units on a cluster (usually Kubernetes pods, but could
// be anything that runs a container to completion and keeps its console output).
type Client interface {
	// Creates one workload unit pinned to the given VM type and returns its ID.
	// A unit with the same identity that already exists is replaced.
	CreateUnit(ctx context.Context, vmType, image string, nodeSelector map[string]string) (string, error)

	// Returns the unit's current lifecycle phase.
	UnitStatus(ctx context.Context, unitID string) (UnitStatus, error)

	// Returns the unit's captured stdout. Valid once the unit has started.
	UnitLog(ctx context.Context, unitID string) (string, error)

	// Best-effort cleanup of the unit.
	DeleteUnit(ctx context.Context, unitID string) error
}

// UnitName returns the deterministic unit name for a VM type. Reuse-existing mode
// relies on this to locate units it did not create itself.
func UnitName(vmType string) string {
	return util.SanitizeNameRFC1123("benchmark-" + vmType)
}
