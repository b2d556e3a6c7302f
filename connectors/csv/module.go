// Package csv provides the CSV file source and endpoint connectors.
// All values read from CSV files are strings; typing (if any) is left to
// downstream processors and endpoints.
package csv

import (
	stdcsv "encoding/csv"
	"fmt"
	"io"

	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
)

// Module implements plugin.Module for this package.
type Module struct{}

// Register wires the csv source and endpoint into the registry.
func (Module) Register(r *plugin.Registry) {
	r.RegisterSource("csv", newSource)
	r.RegisterEndpoint("csv", newEndpoint)
}

// DecodeArtifact reads CSV data (header row first) into an artifact.
// Shared with the object-store connector, which speaks the same format.
func DecodeArtifact(r io.Reader, source string) (*plugin.Artifact, error) {
	records, err := stdcsv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return plugin.NewArtifact(nil, nil, source), nil
	}

	columns := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return plugin.NewArtifact(columns, rows, source), nil
}

// EncodeArtifact writes an artifact as CSV. withHeader controls whether
// the column row is emitted, which append mode suppresses.
func EncodeArtifact(w io.Writer, a *plugin.Artifact, withHeader bool) error {
	cw := stdcsv.NewWriter(w)
	if withHeader {
		if err := cw.Write(a.Columns); err != nil {
			return err
		}
	}
	record := make([]string, len(a.Columns))
	for _, row := range a.Rows {
		for i, col := range a.Columns {
			record[i] = ""
			if v, ok := row[col]; ok && v != nil {
				record[i] = fmt.Sprint(v)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
