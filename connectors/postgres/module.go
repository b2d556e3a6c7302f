// Package postgres provides a PostgreSQL endpoint built on pgx.
package postgres

import (
	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
)

// Module implements plugin.Module for this package.
type Module struct{}

// Register wires the postgres endpoint into the registry.
func (Module) Register(r *plugin.Registry) {
	r.RegisterEndpoint("postgres", newEndpoint)
}
