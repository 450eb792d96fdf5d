package report

import (
	"github.com/mshekow/vm-benchmark/parser"
	"github.com/mshekow/vm-benchmark/store"
)

// ComparisonRow is one line of the output matrix: a metric identity and the value
// each VM type measured for it. A VM type that never produced the metric (failed,
// timed out, or the tool did not report it) has no entry in Values.
type ComparisonRow struct {
	Identity parser.Identity
	Values   map[string]float64

	// Normalized holds 100*value/min(row) per VM type, so the best value maps to
	// exactly 100%. Populated only when aggregation ran with normalize set and the
	// row minimum is positive.
	Normalized map[string]float64
}

// Aggregate merges the per-VM-type metric lists into comparison rows. Row order is
// the order each identity was first seen, walking VM types in declared order and each
// VM type's metrics in parse order, so repeated runs produce diff-friendly output.
// If a run reported the same identity twice, the last value wins.
func Aggregate(results map[string]*store.RunResult, vmTypes []string, normalize bool) []*ComparisonRow {
	order := []parser.Identity{}
	cells := map[parser.Identity]map[string]float64{}
	for _, vmType := range vmTypes {
		rr, ok := results[vmType]
		if !ok {
			continue
		}
		for _, rec := range rr.Metrics {
			id := rec.Identity()
			if _, ok := cells[id]; !ok {
				cells[id] = map[string]float64{}
				order = append(order, id)
			}
			cells[id][vmType] = rec.Value
		}
	}

	rows := make([]*ComparisonRow, 0, len(order))
	for _, id := range order {
		row := &ComparisonRow{Identity: id, Values: cells[id]}
		if normalize {
			row.Normalized = normalizeRow(row.Values)
		}
		rows = append(rows, row)
	}
	return rows
}

// normalizeRow rescales a row against its minimum. Rows without values, or whose
// minimum is not positive, get no normalized values.
func normalizeRow(values map[string]float64) map[string]float64 {
	first := true
	minimum := 0.0
	for _, v := range values {
		if first || v < minimum {
			minimum = v
			first = false
		}
	}
	if first || minimum <= 0 {
		return nil
	}

	normalized := make(map[string]float64, len(values))
	for vmType, v := range values {
		normalized[vmType] = 100 * v / minimum
	}
	return normalized
}
