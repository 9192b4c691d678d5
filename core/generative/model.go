// Package generative bundles the tensors of a categorical generative
// model: observation likelihood, action-conditioned transitions,
// outcome preferences, and the initial state prior. Constructors
// produce the standard tensors used by the reference workflow.
package generative

import (
	"math/rand"

	"github.com/adalundhe/praxis/core/distribution"
	"github.com/adalundhe/praxis/core/fault"
)

// Model holds one hidden-state factor and one observation modality.
//
// PA and PB are optional Dirichlet concentration parameters over A and
// B. They exist so a learning extension can thread pseudo-counts
// through the same interfaces; the inference core accepts and ignores
// them, and they stay nil when learning is disabled.
type Model struct {
	A distribution.Categorical // likelihood, shape (|O|, |S|)
	B distribution.Categorical // transitions, shape (|S|, |S|, |U|)
	C []float64                // log-preferences per outcome, length |O|
	D distribution.Categorical // initial state prior, length |S|

	PA *distribution.Categorical
	PB *distribution.Categorical
}

// NumStates returns |S|.
func (m *Model) NumStates() int { return m.B.Shape()[0] }

// NumObservations returns |O|.
func (m *Model) NumObservations() int { return m.A.Shape()[0] }

// NumActions returns |U|.
func (m *Model) NumActions() int { return m.B.Shape()[2] }

// Validate cross-checks every tensor against the others. Shape
// disagreements are ConfigErrors; unnormalized probability tables are
// DomainErrors. Detection is eager so the control loop halts before
// the first timestep rather than mid-run.
func (m *Model) Validate() error {
	const op = "generative.Validate"

	if m.A.Rank() != 2 {
		return fault.Configf(op, "likelihood must be rank 2, got rank %d", m.A.Rank())
	}
	if m.B.Rank() != 3 {
		return fault.Configf(op, "transition tensor must be rank 3, got rank %d", m.B.Rank())
	}
	aShape, bShape := m.A.Shape(), m.B.Shape()
	numObs, numStates := aShape[0], aShape[1]
	if bShape[0] != numStates || bShape[1] != numStates {
		return fault.Configf(op, "transition shape %v does not match %d states", bShape, numStates)
	}
	if len(m.C) != numObs {
		return fault.Configf(op, "preference length %d does not match %d outcomes", len(m.C), numObs)
	}
	if m.D.Rank() != 1 || m.D.Len() != numStates {
		return fault.Configf(op, "prior must be rank 1 over %d states", numStates)
	}
	if !m.A.IsNormalized() {
		return fault.Domainf(op, "likelihood columns are not normalized")
	}
	if !m.B.IsNormalized() {
		return fault.Domainf(op, "transition slices are not normalized")
	}
	if !m.D.IsNormalized() {
		return fault.Domainf(op, "prior is not normalized")
	}
	return nil
}

// RandomLikelihood draws a random normalized (numObs x numStates)
// likelihood table from rng.
func RandomLikelihood(numObs, numStates int, rng *rand.Rand) (distribution.Categorical, error) {
	data := make([]float64, numObs*numStates)
	for i := range data {
		data[i] = rng.Float64()
	}
	c, err := distribution.New(data, numObs, numStates)
	if err != nil {
		return distribution.Categorical{}, err
	}
	return c.Normalize()
}

// TiledIdentityTransitions builds the (n x n x n) transition tensor
// whose action-a slice is the identity matrix cyclically shifted down
// by a rows: action a moves state s to state (s+a) mod n. Every slice
// is column-stochastic; action 0 is the identity.
func TiledIdentityTransitions(n int) (distribution.Categorical, error) {
	if n < 1 {
		return distribution.Categorical{}, fault.Configf("generative.TiledIdentityTransitions", "state count must be >= 1, got %d", n)
	}
	data := make([]float64, n*n*n)
	for a := 0; a < n; a++ {
		for s := 0; s < n; s++ {
			next := (s + a) % n
			data[(next*n+s)*n+a] = 1
		}
	}
	return distribution.New(data, n, n, n)
}

// Preferences copies a log-preference vector. Values need not be
// normalized; higher means more preferred.
func Preferences(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	return out
}
