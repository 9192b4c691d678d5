// Package policies enumerates candidate action sequences over a
// planning horizon. A policy holds one action index per state factor
// per timestep; factors outside the controllable set are pinned to
// action zero.
package policies

import (
	"github.com/adalundhe/praxis/core/fault"
)

// Policy is an ordered action sequence, indexed [timestep][factor].
type Policy [][]int

// ActionCounts returns the number of admissible actions per factor:
// the factor's state-space size when controllable, one otherwise.
func ActionCounts(stateSizes []int, controllable []int) []int {
	counts := make([]int, len(stateSizes))
	for i := range counts {
		counts[i] = 1
	}
	for _, f := range controllable {
		if f >= 0 && f < len(stateSizes) {
			counts[f] = stateSizes[f]
		}
	}
	return counts
}

// Enumerate returns every admissible policy of length horizon: the
// cartesian product of the controllable action ranges repeated across
// timesteps. Ordering is deterministic and lexicographic with the
// final (factor, timestep) position varying fastest, so policy indices
// are stable across the evaluator and the sampler.
func Enumerate(stateSizes []int, controllable []int, horizon int) ([]Policy, error) {
	if horizon < 1 {
		return nil, fault.Configf("policies.Enumerate", "horizon must be >= 1, got %d", horizon)
	}
	if len(stateSizes) == 0 {
		return nil, fault.Configf("policies.Enumerate", "at least one state factor is required")
	}
	for i, n := range stateSizes {
		if n < 1 {
			return nil, fault.Configf("policies.Enumerate", "state factor %d has size %d, want >= 1", i, n)
		}
	}
	if len(controllable) == 0 {
		return nil, fault.Configf("policies.Enumerate", "at least one controllable factor is required")
	}
	for _, f := range controllable {
		if f < 0 || f >= len(stateSizes) {
			return nil, fault.Configf("policies.Enumerate", "controllable factor %d out of range [0,%d)", f, len(stateSizes))
		}
	}

	counts := ActionCounts(stateSizes, controllable)
	numFactors := len(stateSizes)

	// Odometer over horizon*numFactors digits, last digit fastest.
	total := 1
	for t := 0; t < horizon; t++ {
		for _, n := range counts {
			total *= n
		}
	}

	digits := make([]int, horizon*numFactors)
	out := make([]Policy, 0, total)
	for {
		p := make(Policy, horizon)
		for t := 0; t < horizon; t++ {
			step := make([]int, numFactors)
			copy(step, digits[t*numFactors:(t+1)*numFactors])
			p[t] = step
		}
		out = append(out, p)

		pos := len(digits) - 1
		for pos >= 0 {
			digits[pos]++
			if digits[pos] < counts[pos%numFactors] {
				break
			}
			digits[pos] = 0
			pos--
		}
		if pos < 0 {
			return out, nil
		}
	}
}
