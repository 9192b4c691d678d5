package inference

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/praxis/core/distribution"
	"github.com/adalundhe/praxis/core/fault"
	"github.com/adalundhe/praxis/core/policies"
)

func TestSampleActionMarginalInRange(t *testing.T) {
	pols, err := policies.Enumerate([]int{3}, []int{0}, 1)
	require.NoError(t, err)
	qpi, err := distribution.New([]float64{0.2, 0.5, 0.3}, 3)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 100; i++ {
		action, err := SampleAction(qpi, pols, []int{3}, SampleMarginalAction, rng)
		require.NoError(t, err)
		require.Len(t, action, 1)
		assert.Contains(t, []int{0, 1, 2}, action[0])
	}
}

func TestSampleActionMarginalPointMass(t *testing.T) {
	pols, err := policies.Enumerate([]int{3}, []int{0}, 1)
	require.NoError(t, err)
	qpi, err := distribution.OneHot(3, 1)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 25; i++ {
		action, err := SampleAction(qpi, pols, []int{3}, SampleMarginalAction, rng)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, action)
	}
}

func TestSampleActionMarginalCollapsesSharedFirstActions(t *testing.T) {
	// Horizon 2: policies 0..3 have first actions 0,0,1,1. A posterior
	// mass of 0.9 on the first two must put 0.9 on first action 0.
	pols, err := policies.Enumerate([]int{2}, []int{0}, 2)
	require.NoError(t, err)
	qpi, err := distribution.New([]float64{0.5, 0.4, 0.06, 0.04}, 4)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	counts := map[int]int{}
	for i := 0; i < 2000; i++ {
		action, err := SampleAction(qpi, pols, []int{2}, SampleMarginalAction, rng)
		require.NoError(t, err)
		counts[action[0]]++
	}
	assert.Greater(t, counts[0], 1600)
	assert.Greater(t, counts[1], 50)
}

func TestSampleActionFullPolicy(t *testing.T) {
	pols, err := policies.Enumerate([]int{2}, []int{0}, 2)
	require.NoError(t, err)
	qpi, err := distribution.OneHot(4, 2)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(3))

	action, err := SampleAction(qpi, pols, []int{2}, SampleFullPolicy, rng)
	require.NoError(t, err)
	// Policy 2 is {{1},{0}}; its first action is 1.
	assert.Equal(t, []int{1}, action)
}

func TestSampleActionDeterministicUnderSeed(t *testing.T) {
	pols, err := policies.Enumerate([]int{3}, []int{0}, 1)
	require.NoError(t, err)
	qpi, err := distribution.New([]float64{0.3, 0.3, 0.4}, 3)
	require.NoError(t, err)

	first, err := SampleAction(qpi, pols, []int{3}, SampleMarginalAction, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		got, err := SampleAction(qpi, pols, []int{3}, SampleMarginalAction, rand.New(rand.NewSource(99)))
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestSampleActionUnknownMode(t *testing.T) {
	pols, err := policies.Enumerate([]int{3}, []int{0}, 1)
	require.NoError(t, err)
	qpi := distribution.Uniform(3)

	_, err = SampleAction(qpi, pols, []int{3}, SamplingMode("greedy"), rand.New(rand.NewSource(1)))
	require.Error(t, err)
	assert.True(t, fault.IsConfig(err))
}

func TestSampleActionEmptyPolicies(t *testing.T) {
	qpi := distribution.Uniform(3)
	_, err := SampleAction(qpi, nil, []int{3}, SampleMarginalAction, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	assert.True(t, fault.IsConfig(err))
}

func TestSampleActionPosteriorLengthMismatch(t *testing.T) {
	pols, err := policies.Enumerate([]int{3}, []int{0}, 1)
	require.NoError(t, err)
	qpi := distribution.Uniform(5)

	_, err = SampleAction(qpi, pols, []int{3}, SampleMarginalAction, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	assert.True(t, fault.IsConfig(err))
}
