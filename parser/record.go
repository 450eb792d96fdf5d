package parser

// MetricRecord is one measured value extracted from a workload's log.
type MetricRecord struct {
	Tool  string
	Test  string
	Unit  string
	Value float64
}

// Identity is the triple used to align metrics across VM types.
type Identity struct {
	Tool string
	Test string
	Unit string
}

func (r *MetricRecord) Identity() Identity {
	return Identity{Tool: r.Tool, Test: r.Test, Unit: r.Unit}
}

func (id Identity) Label() string {
	return id.Tool + ";" + id.Test + ";" + id.Unit
}
