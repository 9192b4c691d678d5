// Package inference implements the single-timestep active-inference
// core: variational state estimation, expected-free-energy policy
// evaluation, and stochastic action selection. All functions are pure;
// randomness enters only through explicitly passed generators.
package inference

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/adalundhe/praxis/core/distribution"
	"github.com/adalundhe/praxis/core/fault"
)

const (
	// maxFixedPointSweeps bounds the variational update loop. One
	// hidden-state factor and one modality converge in a single sweep;
	// the budget leaves headroom for multi-factor generalizations.
	maxFixedPointSweeps = 16

	// fixedPointTol is the per-entry stability threshold that ends the
	// sweep loop early.
	fixedPointTol = 1e-9
)

// InferStates computes the approximate posterior over hidden states
// given an observation likelihood, an observed outcome index, and a
// prior belief. Each fixed-point sweep combines log-prior with the
// observation's log-likelihood evidence and renormalizes through a
// softmax; sweeps repeat until the belief stabilizes or the iteration
// budget is exhausted. The result is always normalized.
func InferStates(a distribution.Categorical, observation int, prior distribution.Categorical) (distribution.Categorical, error) {
	const op = "inference.InferStates"

	if a.Rank() != 2 {
		return distribution.Categorical{}, fault.Configf(op, "likelihood must be rank 2, got rank %d", a.Rank())
	}
	if prior.Rank() != 1 {
		return distribution.Categorical{}, fault.Configf(op, "prior must be rank 1, got rank %d", prior.Rank())
	}
	shape := a.Shape()
	numObs, numStates := shape[0], shape[1]
	if prior.Len() != numStates {
		return distribution.Categorical{}, fault.Configf(op, "prior length %d does not match %d states", prior.Len(), numStates)
	}
	if observation < 0 || observation >= numObs {
		return distribution.Categorical{}, fault.Configf(op, "observation %d out of range [0,%d)", observation, numObs)
	}

	evidence, err := a.Row(observation)
	if err != nil {
		return distribution.Categorical{}, err
	}
	if floats.Sum(evidence) == 0 {
		return distribution.Categorical{}, fault.Domainf(op, "likelihood has a zero column for outcome %d; posterior is undefined", observation)
	}

	logPrior := safeLog(prior.Values())
	logEvidence := safeLog(evidence)

	q := prior.Values()
	logQ := make([]float64, numStates)
	next := make([]float64, numStates)
	for sweep := 0; sweep < maxFixedPointSweeps; sweep++ {
		for s := 0; s < numStates; s++ {
			logQ[s] = logPrior[s] + logEvidence[s]
		}
		lse := floats.LogSumExp(logQ)
		if math.IsInf(lse, -1) {
			return distribution.Categorical{}, fault.Domainf(op, "zero-likelihood evidence for outcome %d under the prior; posterior is undefined", observation)
		}
		for s := 0; s < numStates; s++ {
			next[s] = math.Exp(logQ[s] - lse)
		}
		if maxAbsDiff(next, q) < fixedPointTol {
			copy(q, next)
			break
		}
		copy(q, next)
	}

	return distribution.New(q, numStates)
}

// safeLog returns elementwise natural logs, mapping zero to -Inf
// instead of propagating a domain panic.
func safeLog(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if v == 0 {
			out[i] = math.Inf(-1)
		} else {
			out[i] = math.Log(v)
		}
	}
	return out
}

func maxAbsDiff(a, b []float64) float64 {
	max := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > max {
			max = d
		}
	}
	return max
}
