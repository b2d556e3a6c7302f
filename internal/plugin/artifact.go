package plugin

import "time"

// Artifact is the tabular payload steps exchange: rows of named values
// with an ordered column list and free-form metadata. Produced by sources
// and processors, consumed by processors and endpoints.
type Artifact struct {
	// Columns in their original order.
	Columns []string
	// Rows keyed by column name.
	Rows []map[string]any
	// Metadata accumulated along the pipeline.
	Metadata map[string]any
	// Source labels where the data came from, e.g. "csv:data/users.csv".
	Source string
	// CreatedAt is when the artifact was produced.
	CreatedAt time.Time
}

// NewArtifact builds an artifact with initialized metadata.
func NewArtifact(columns []string, rows []map[string]any, source string) *Artifact {
	return &Artifact{
		Columns:   columns,
		Rows:      rows,
		Metadata:  make(map[string]any),
		Source:    source,
		CreatedAt: time.Now(),
	}
}

// RowCount returns the number of rows.
func (a *Artifact) RowCount() int {
	if a == nil {
		return 0
	}
	return len(a.Rows)
}

// HasColumn reports whether the artifact carries the named column.
func (a *Artifact) HasColumn(name string) bool {
	for _, c := range a.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddMetadata records a metadata entry, allocating the map if needed.
func (a *Artifact) AddMetadata(key string, value any) {
	if a.Metadata == nil {
		a.Metadata = make(map[string]any)
	}
	a.Metadata[key] = value
}
