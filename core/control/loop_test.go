package control

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/adalundhe/praxis/core/distribution"
	"github.com/adalundhe/praxis/core/env"
	"github.com/adalundhe/praxis/core/fault"
	"github.com/adalundhe/praxis/core/generative"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newScenario(t *testing.T, seed int64) (*generative.Model, *env.Environment) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))

	a, err := generative.RandomLikelihood(4, 3, rng)
	require.NoError(t, err)
	b, err := generative.TiledIdentityTransitions(3)
	require.NoError(t, err)
	model := &generative.Model{
		A: a,
		B: b,
		C: generative.Preferences([]float64{-2, 0, 0, 2}),
		D: distribution.Uniform(3),
	}

	world, err := env.New(a, b, 0)
	require.NoError(t, err)
	return model, world
}

func TestRunAccumulatesHistory(t *testing.T) {
	model, world := newScenario(t, 42)
	loop, err := New(model, world, Options{
		Rng:    rand.New(rand.NewSource(1)),
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	history, err := loop.Run(5)
	require.NoError(t, err)
	require.NotEmpty(t, history.RunID)
	require.Len(t, history.Steps, 5)

	for _, step := range history.Steps {
		assert.InDelta(t, 1.0, floats.Sum(step.Belief), 1e-9)
		assert.InDelta(t, 1.0, floats.Sum(step.PolicyPosterior), 1e-9)
		assert.Len(t, step.EFE, 3)
		require.Len(t, step.Action, 1)
		assert.GreaterOrEqual(t, step.Action[0], 0)
		assert.Less(t, step.Action[0], 3)
		assert.GreaterOrEqual(t, step.Observation, 0)
		assert.Less(t, step.Observation, 4)
	}
}

func TestRunDeterministicUnderSeed(t *testing.T) {
	run := func() *History {
		model, world := newScenario(t, 42)
		loop, err := New(model, world, Options{
			Rng:    rand.New(rand.NewSource(7)),
			Logger: quietLogger(),
		})
		require.NoError(t, err)
		h, err := loop.Run(10)
		require.NoError(t, err)
		return h
	}

	first := run()
	second := run()
	require.Len(t, second.Steps, len(first.Steps))
	for i := range first.Steps {
		assert.Equal(t, first.Steps[i].Observation, second.Steps[i].Observation, "step %d", i)
		assert.Equal(t, first.Steps[i].Action, second.Steps[i].Action, "step %d", i)
		assert.Equal(t, first.Steps[i].NextState, second.Steps[i].NextState, "step %d", i)
		assert.InDeltaSlice(t, first.Steps[i].Belief, second.Steps[i].Belief, 1e-12, "step %d", i)
	}
}

func TestRunHorizonTwo(t *testing.T) {
	model, world := newScenario(t, 42)
	loop, err := New(model, world, Options{
		Horizon: 2,
		Rng:     rand.New(rand.NewSource(5)),
		Logger:  quietLogger(),
	})
	require.NoError(t, err)

	history, err := loop.Run(3)
	require.NoError(t, err)
	for _, step := range history.Steps {
		assert.Len(t, step.EFE, 9)
	}
}

func TestRunFullPolicyMode(t *testing.T) {
	model, world := newScenario(t, 42)
	loop, err := New(model, world, Options{
		Mode:   "full_policy",
		Rng:    rand.New(rand.NewSource(5)),
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	history, err := loop.Run(4)
	require.NoError(t, err)
	assert.Len(t, history.Steps, 4)
}

func TestRunRejectsBadTimesteps(t *testing.T) {
	model, world := newScenario(t, 42)
	loop, err := New(model, world, Options{
		Rng:    rand.New(rand.NewSource(2)),
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	_, err = loop.Run(0)
	require.Error(t, err)
	assert.True(t, fault.IsConfig(err))
}

func TestNewRejectsInvalidModel(t *testing.T) {
	model, world := newScenario(t, 42)
	model.C = []float64{0}

	_, err := New(model, world, Options{
		Rng:    rand.New(rand.NewSource(2)),
		Logger: quietLogger(),
	})
	require.Error(t, err)
	assert.True(t, fault.IsConfig(err))
}

func TestNewRequiresRng(t *testing.T) {
	model, world := newScenario(t, 42)
	_, err := New(model, world, Options{Logger: quietLogger()})
	require.Error(t, err)
	assert.True(t, fault.IsConfig(err))
}

func TestRunHaltsOnUnknownMode(t *testing.T) {
	model, world := newScenario(t, 42)
	loop, err := New(model, world, Options{
		Mode:   "argmax",
		Rng:    rand.New(rand.NewSource(2)),
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	history, err := loop.Run(3)
	require.Error(t, err)
	assert.True(t, fault.IsConfig(err))
	assert.Empty(t, history.Steps)
}
