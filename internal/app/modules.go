package app

import (
	"github.com/alexeiveselov92/dft-pipeline/connectors/csv"
	"github.com/alexeiveselov92/dft-pipeline/connectors/postgres"
	"github.com/alexeiveselov92/dft-pipeline/connectors/s3"
	"github.com/alexeiveselov92/dft-pipeline/connectors/validator"
	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
)

// CoreModules returns the built-in connector set registered when no
// explicit modules are supplied.
func CoreModules() []plugin.Module {
	return []plugin.Module{
		csv.Module{},
		validator.Module{},
		postgres.Module{},
		s3.Module{},
	}
}
