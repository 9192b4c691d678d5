package inference

import (
	"math/rand"

	"github.com/adalundhe/praxis/core/distribution"
	"github.com/adalundhe/praxis/core/fault"
	"github.com/adalundhe/praxis/core/policies"
)

// SamplingMode selects how the policy posterior is turned into a
// concrete action.
type SamplingMode string

const (
	// SampleMarginalAction marginalizes the policy posterior onto each
	// factor's first-timestep action and samples factors independently.
	SampleMarginalAction SamplingMode = "marginal_action"

	// SampleFullPolicy samples one whole policy from the posterior and
	// executes its first-timestep action.
	SampleFullPolicy SamplingMode = "full_policy"
)

// SampleAction draws the action tuple to execute this timestep, one
// action index per factor. It fails with a ConfigError on an
// unrecognized mode, an empty policy list, or a posterior whose length
// does not match the policy list.
func SampleAction(
	qpi distribution.Categorical,
	pols []policies.Policy,
	actionCounts []int,
	mode SamplingMode,
	rng *rand.Rand,
) ([]int, error) {
	const op = "inference.SampleAction"

	if len(pols) == 0 {
		return nil, fault.Configf(op, "policy list is empty")
	}
	if qpi.Rank() != 1 || qpi.Len() != len(pols) {
		return nil, fault.Configf(op, "policy posterior length %d does not match %d policies", qpi.Len(), len(pols))
	}
	if len(actionCounts) == 0 {
		return nil, fault.Configf(op, "action counts are empty")
	}

	switch mode {
	case SampleMarginalAction:
		return sampleMarginal(qpi, pols, actionCounts, rng)
	case SampleFullPolicy:
		return sampleFullPolicy(qpi, pols, actionCounts, rng)
	default:
		return nil, fault.Configf(op, "unrecognized sampling mode %q", mode)
	}
}

func sampleMarginal(qpi distribution.Categorical, pols []policies.Policy, actionCounts []int, rng *rand.Rand) ([]int, error) {
	weights := qpi.Values()
	action := make([]int, len(actionCounts))
	for f, count := range actionCounts {
		marginal := make([]float64, count)
		for i, pol := range pols {
			first := pol[0]
			if f >= len(first) {
				return nil, fault.Configf("inference.SampleAction", "policy %d carries %d factors, want %d", i, len(first), len(actionCounts))
			}
			a := first[f]
			if a < 0 || a >= count {
				return nil, fault.Configf("inference.SampleAction", "policy %d factor %d action %d out of range [0,%d)", i, f, a, count)
			}
			marginal[a] += weights[i]
		}
		dist, err := distribution.New(marginal, count)
		if err != nil {
			return nil, err
		}
		dist, err = dist.Normalize()
		if err != nil {
			return nil, err
		}
		action[f], err = dist.Sample(rng)
		if err != nil {
			return nil, err
		}
	}
	return action, nil
}

func sampleFullPolicy(qpi distribution.Categorical, pols []policies.Policy, actionCounts []int, rng *rand.Rand) ([]int, error) {
	idx, err := qpi.Sample(rng)
	if err != nil {
		return nil, err
	}
	first := pols[idx][0]
	if len(first) != len(actionCounts) {
		return nil, fault.Configf("inference.SampleAction", "policy %d carries %d factors, want %d", idx, len(first), len(actionCounts))
	}
	action := make([]int, len(first))
	copy(action, first)
	return action, nil
}
