package inference

import (
	"math"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/floats"

	"github.com/adalundhe/praxis/core/distribution"
	"github.com/adalundhe/praxis/core/fault"
	"github.com/adalundhe/praxis/core/policies"
)

// InferPolicies scores every candidate policy by its expected free
// energy and converts the scores into a posterior over policies.
//
// Per policy, beliefs are rolled forward through the transition slice
// of each action and projected into observation space through the
// likelihood; each step contributes a risk term (negative alignment of
// predicted observations with the preference vector) and an ambiguity
// term (expected observation entropy under the predicted state
// belief). The policy posterior is softmax(-gamma * EFE), computed
// shift-invariantly: adding a constant to every EFE value leaves it
// unchanged, and equal EFE values yield the uniform posterior.
//
// The Dirichlet concentration parameters pA and pB are accepted for
// forward compatibility with parameter learning and may be nil; this
// core ignores their influence on the EFE. Callers that do not learn
// pass nil rather than inflating pseudo-counts.
func InferPolicies(
	qs distribution.Categorical,
	a distribution.Categorical,
	pA *distribution.Categorical,
	b distribution.Categorical,
	pB *distribution.Categorical,
	c []float64,
	pols []policies.Policy,
	gamma float64,
) (distribution.Categorical, []float64, error) {
	const op = "inference.InferPolicies"

	if len(pols) == 0 {
		return distribution.Categorical{}, nil, fault.Configf(op, "policy list is empty")
	}
	if gamma < 0 || math.IsNaN(gamma) {
		return distribution.Categorical{}, nil, fault.Configf(op, "precision gamma must be non-negative, got %g", gamma)
	}
	if a.Rank() != 2 {
		return distribution.Categorical{}, nil, fault.Configf(op, "likelihood must be rank 2, got rank %d", a.Rank())
	}
	if b.Rank() != 3 {
		return distribution.Categorical{}, nil, fault.Configf(op, "transition tensor must be rank 3, got rank %d", b.Rank())
	}
	aShape, bShape := a.Shape(), b.Shape()
	numObs, numStates, numActions := aShape[0], aShape[1], bShape[2]
	if bShape[0] != numStates || bShape[1] != numStates {
		return distribution.Categorical{}, nil, fault.Configf(op, "transition shape %v does not match %d states", bShape, numStates)
	}
	if qs.Rank() != 1 || qs.Len() != numStates {
		return distribution.Categorical{}, nil, fault.Configf(op, "state belief must be rank 1 over %d states", numStates)
	}
	if len(c) != numObs {
		return distribution.Categorical{}, nil, fault.Configf(op, "preference length %d does not match %d outcomes", len(c), numObs)
	}
	if !a.IsNormalized() {
		return distribution.Categorical{}, nil, fault.Domainf(op, "likelihood columns are not normalized")
	}
	if !b.IsNormalized() {
		return distribution.Categorical{}, nil, fault.Domainf(op, "transition slices are not normalized")
	}
	// Observation entropy per state, shared by every policy.
	entropy, err := a.ColumnEntropies()
	if err != nil {
		return distribution.Categorical{}, nil, err
	}

	// Per-action transition matrices, sliced once.
	slices := make([]distribution.Categorical, numActions)
	for u := 0; u < numActions; u++ {
		slices[u], err = b.Slice(u)
		if err != nil {
			return distribution.Categorical{}, nil, err
		}
	}

	efe := make([]float64, len(pols))
	for i, pol := range pols {
		belief := qs.Values()
		g := 0.0
		for t, step := range pol {
			if len(step) == 0 {
				return distribution.Categorical{}, nil, fault.Configf(op, "policy %d step %d has no factor actions", i, t)
			}
			action := step[0]
			if action < 0 || action >= numActions {
				return distribution.Categorical{}, nil, fault.Configf(op, "policy %d step %d action %d out of range [0,%d)", i, t, action, numActions)
			}
			belief, err = slices[action].Dot(belief)
			if err != nil {
				return distribution.Categorical{}, nil, err
			}
			predictedObs, err := a.Dot(belief)
			if err != nil {
				return distribution.Categorical{}, nil, err
			}
			risk := -vek.Dot(predictedObs, c)
			ambiguity := vek.Dot(entropy, belief)
			g += risk + ambiguity
		}
		efe[i] = g
	}

	qpi, err := softmaxNegative(efe, gamma)
	if err != nil {
		return distribution.Categorical{}, nil, err
	}
	return qpi, efe, nil
}

// softmaxNegative maps energies to softmax(-gamma*energies). The
// log-sum-exp form subtracts the maximum logit, so the result is
// invariant to constant shifts and never divides by zero.
func softmaxNegative(energies []float64, gamma float64) (distribution.Categorical, error) {
	logits := make([]float64, len(energies))
	for i, e := range energies {
		logits[i] = -gamma * e
	}
	lse := floats.LogSumExp(logits)
	probs := make([]float64, len(logits))
	for i, l := range logits {
		probs[i] = math.Exp(l - lse)
	}
	return distribution.New(probs, len(probs))
}
