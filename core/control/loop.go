// Package control drives the perception-action cycle: at each
// timestep it pulls an observation from the environment, runs state
// estimation, evaluates policies by expected free energy, samples an
// action, and advances the environment. Stages are strictly
// sequential; each stage's output is the next stage's input, and the
// loop halts on the first error.
package control

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/adalundhe/praxis/core/distribution"
	"github.com/adalundhe/praxis/core/env"
	"github.com/adalundhe/praxis/core/fault"
	"github.com/adalundhe/praxis/core/generative"
	"github.com/adalundhe/praxis/core/inference"
	"github.com/adalundhe/praxis/core/policies"
)

// Step records what happened at one timestep.
type Step struct {
	Observation     int
	Belief          []float64
	EFE             []float64
	PolicyPosterior []float64
	Action          []int
	NextState       int
}

// History accumulates the per-timestep record of one run.
type History struct {
	RunID string
	Steps []Step
}

// Loop couples a generative model with an environment and runs the
// active-inference cycle.
type Loop struct {
	model  *generative.Model
	world  *env.Environment
	pols   []policies.Policy
	counts []int
	gamma  float64
	mode   inference.SamplingMode
	rng    *rand.Rand
	logger *slog.Logger
	prior  distribution.Categorical
}

// Options configures a Loop. Gamma, Horizon, and Mode have working
// defaults; Rng is required for reproducible runs.
type Options struct {
	Gamma   float64
	Horizon int
	Mode    inference.SamplingMode
	Rng     *rand.Rand
	Logger  *slog.Logger
}

// New validates the model, enumerates the policy set once, and seeds
// the belief with the model's initial prior.
func New(model *generative.Model, world *env.Environment, opts Options) (*Loop, error) {
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("validate model: %w", err)
	}
	if opts.Rng == nil {
		return nil, fault.Configf("control.New", "a random source is required")
	}
	if opts.Gamma == 0 {
		opts.Gamma = 16
	}
	if opts.Horizon == 0 {
		opts.Horizon = 1
	}
	if opts.Mode == "" {
		opts.Mode = inference.SampleMarginalAction
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	stateSizes := []int{model.NumStates()}
	pols, err := policies.Enumerate(stateSizes, []int{0}, opts.Horizon)
	if err != nil {
		return nil, fmt.Errorf("enumerate policies: %w", err)
	}

	return &Loop{
		model:  model,
		world:  world,
		pols:   pols,
		counts: policies.ActionCounts(stateSizes, []int{0}),
		gamma:  opts.Gamma,
		mode:   opts.Mode,
		rng:    opts.Rng,
		logger: opts.Logger,
		prior:  model.D,
	}, nil
}

// Run executes the requested number of strictly sequential timesteps
// and returns the accumulated history. The first Domain or Config error halts the
// run; there is no retry or recovery at this level.
func (l *Loop) Run(timesteps int) (*History, error) {
	if timesteps < 1 {
		return nil, fault.Configf("control.Run", "timesteps must be >= 1, got %d", timesteps)
	}

	history := &History{
		RunID: uuid.NewString(),
		Steps: make([]Step, 0, timesteps),
	}
	l.logger.Info("run starting",
		"run_id", history.RunID,
		"timesteps", timesteps,
		"policies", len(l.pols),
		"gamma", l.gamma,
		"mode", string(l.mode))

	for t := 0; t < timesteps; t++ {
		step, err := l.step(t)
		if err != nil {
			return history, fmt.Errorf("timestep %d: %w", t, err)
		}
		history.Steps = append(history.Steps, step)
	}

	l.logger.Info("run complete", "run_id", history.RunID, "steps", len(history.Steps))
	return history, nil
}

func (l *Loop) step(t int) (Step, error) {
	observation, err := l.world.Observe(l.rng)
	if err != nil {
		return Step{}, fmt.Errorf("observe: %w", err)
	}

	posterior, err := inference.InferStates(l.model.A, observation, l.prior)
	if err != nil {
		return Step{}, fmt.Errorf("infer states: %w", err)
	}

	qpi, efe, err := inference.InferPolicies(
		posterior, l.model.A, l.model.PA, l.model.B, l.model.PB,
		l.model.C, l.pols, l.gamma)
	if err != nil {
		return Step{}, fmt.Errorf("infer policies: %w", err)
	}

	action, err := inference.SampleAction(qpi, l.pols, l.counts, l.mode, l.rng)
	if err != nil {
		return Step{}, fmt.Errorf("sample action: %w", err)
	}

	nextState, err := l.world.Step(action, l.rng)
	if err != nil {
		return Step{}, fmt.Errorf("environment step: %w", err)
	}

	// The predictive density under the executed action becomes the
	// next timestep's prior.
	slice, err := l.model.B.Slice(action[0])
	if err != nil {
		return Step{}, err
	}
	predicted, err := slice.Dot(posterior.Values())
	if err != nil {
		return Step{}, err
	}
	l.prior, err = distribution.New(predicted, len(predicted))
	if err != nil {
		return Step{}, err
	}

	l.logger.Debug("timestep complete",
		"t", t,
		"observation", observation,
		"action", action,
		"next_state", nextState)

	return Step{
		Observation:     observation,
		Belief:          posterior.Values(),
		EFE:             efe,
		PolicyPosterior: qpi.Values(),
		Action:          action,
		NextState:       nextState,
	}, nil
}
