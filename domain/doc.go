// Package domain defines the core data structures of the launch dashboard.
// It contains the launch record model, the chart figure description produced by the
// filter operations, and the repository interfaces the backends implement.
//
// The package has no knowledge of CSV parsing, SQL or rendering; the dataset, db and
// render packages depend on it, never the other way around.
package domain
