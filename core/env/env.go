// Package env implements the generative process: the environment's
// true hidden state and the tensors that produce observations and
// transitions. Process tensors are never handed to the inference core;
// the agent only ever sees sampled outcomes.
package env

import (
	"math/rand"

	"github.com/adalundhe/praxis/core/distribution"
	"github.com/adalundhe/praxis/core/fault"
)

// Environment is a partially observed Markov process over one hidden
// state factor emitting one observation modality.
type Environment struct {
	a distribution.Categorical // true likelihood, shape (|O|, |S|)
	b distribution.Categorical // true transitions, shape (|S|, |S|, |U|)

	state        int
	initialState int
}

// New validates the process tensors and places the hidden state at
// initialState.
func New(a, b distribution.Categorical, initialState int) (*Environment, error) {
	const op = "env.New"

	if a.Rank() != 2 {
		return nil, fault.Configf(op, "likelihood must be rank 2, got rank %d", a.Rank())
	}
	if b.Rank() != 3 {
		return nil, fault.Configf(op, "transition tensor must be rank 3, got rank %d", b.Rank())
	}
	numStates := a.Shape()[1]
	bShape := b.Shape()
	if bShape[0] != numStates || bShape[1] != numStates {
		return nil, fault.Configf(op, "transition shape %v does not match %d states", bShape, numStates)
	}
	if initialState < 0 || initialState >= numStates {
		return nil, fault.Configf(op, "initial state %d out of range [0,%d)", initialState, numStates)
	}
	if !a.IsNormalized() {
		return nil, fault.Domainf(op, "likelihood columns are not normalized")
	}
	if !b.IsNormalized() {
		return nil, fault.Domainf(op, "transition slices are not normalized")
	}
	return &Environment{a: a, b: b, state: initialState, initialState: initialState}, nil
}

// State returns the current hidden state index.
func (e *Environment) State() int { return e.state }

// Reset returns the hidden state to its initial value.
func (e *Environment) Reset() { e.state = e.initialState }

// Observe samples an observation from the likelihood column of the
// current hidden state.
func (e *Environment) Observe(rng *rand.Rand) (int, error) {
	col, err := e.a.Column(e.state)
	if err != nil {
		return 0, err
	}
	dist, err := distribution.New(col, len(col))
	if err != nil {
		return 0, err
	}
	return dist.Sample(rng)
}

// Step applies the first factor's action: the next hidden state is
// sampled from the transition slice's column for the current state.
func (e *Environment) Step(action []int, rng *rand.Rand) (int, error) {
	const op = "env.Step"

	if len(action) == 0 {
		return 0, fault.Configf(op, "action tuple is empty")
	}
	numActions := e.b.Shape()[2]
	if action[0] < 0 || action[0] >= numActions {
		return 0, fault.Configf(op, "action %d out of range [0,%d)", action[0], numActions)
	}
	slice, err := e.b.Slice(action[0])
	if err != nil {
		return 0, err
	}
	col, err := slice.Column(e.state)
	if err != nil {
		return 0, err
	}
	dist, err := distribution.New(col, len(col))
	if err != nil {
		return 0, err
	}
	next, err := dist.Sample(rng)
	if err != nil {
		return 0, err
	}
	e.state = next
	return next, nil
}
