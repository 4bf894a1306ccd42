package ports

import (
	"gonum.org/v1/gonum/mat"
)

// ImputerPort fills missing (NaN) cells of a matrix
type ImputerPort interface {
	// Name identifies the strategy in result tables
	Name() string

	// Impute returns a new complete matrix of the same shape; the input is left untouched.
	Impute(m mat.Matrix) (*mat.Dense, error)
}

// ImputerFactory resolves a strategy name to an imputer. fill is used by "constant".
type ImputerFactory func(name string, fill float64) (ImputerPort, error)
