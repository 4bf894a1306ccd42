package ports

import (
	"math/rand"

	"imputelab/domain/missingness"

	"gonum.org/v1/gonum/mat"
)

// InjectorPort removes values from a complete matrix according to a missingness spec.
// rng may be nil for deterministic policies.
type InjectorPort interface {
	Inject(m mat.Matrix, spec missingness.Spec, rng *rand.Rand) (*mat.Dense, error)
}
