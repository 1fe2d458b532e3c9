/*
Copyright © 2026 Malte Hoffs

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

package simulation

import (
	"fmt"

	"github.com/mhoffs/fluxsim/cbmodel"
	"github.com/mhoffs/fluxsim/solver"
)

// Numeric defaults. Big-M magnitudes must dominate the model's flux bound
// scale; override them when bounds exceed the defaults.
const (
	// DefaultLoopBigM is the big-M constant of the cycle-free encoding.
	DefaultLoopBigM = 1e4
	// DefaultRoomBigM is the big-M constant of the minimal-perturbation
	// encoding.
	DefaultRoomBigM = 1e6
	// DefaultDelta is the relative perturbation tolerance of ROOM.
	DefaultDelta = 0.03
	// DefaultEpsilon is the absolute perturbation tolerance of ROOM.
	DefaultEpsilon = 0.001
	// DefaultCoefficientCutoff filters numerical noise out of null-space
	// basis coefficients.
	DefaultCoefficientCutoff = 1e-12
)

// Option configures a simulation call.
type Option func(*config)

type config struct {
	objective    map[string]float64
	dir          solver.Direction
	constraints  map[string]solver.Bounds
	problem      *Problem
	shadowPrices bool
	reducedCosts bool
	reactions    []string
	internal     []string
	reference    map[string]float64
	bigM         float64
	bigMSet      bool
	delta        float64
	epsilon      float64
	cutoff       float64
}

func newConfig(opts []Option) *config {
	cfg := &config{
		dir:     solver.Maximize,
		delta:   DefaultDelta,
		epsilon: DefaultEpsilon,
		cutoff:  DefaultCoefficientCutoff,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// problemFor returns the configured Problem, checking that it was built for
// the given model, or builds a fresh one.
func (cfg *config) problemFor(model *cbmodel.Model) (*Problem, error) {
	if cfg.problem != nil {
		if cfg.problem.model != model {
			return nil, fmt.Errorf("%w: have %q, want %q",
				ErrModelMismatch, cfg.problem.model.Name(), model.Name())
		}
		return cfg.problem, nil
	}
	return NewProblem(model)
}

func (cfg *config) solveOptions() []solver.SolveOption {
	var opts []solver.SolveOption
	if cfg.constraints != nil {
		opts = append(opts, solver.WithBounds(cfg.constraints))
	}
	return opts
}

func (cfg *config) loopBigM() float64 {
	if cfg.bigMSet {
		return cfg.bigM
	}
	return DefaultLoopBigM
}

func (cfg *config) roomBigM() float64 {
	if cfg.bigMSet {
		return cfg.bigM
	}
	return DefaultRoomBigM
}

// WithObjective overrides the model's default objective coefficients.
func WithObjective(objective map[string]float64) Option {
	return func(cfg *config) {
		cfg.objective = objective
	}
}

// WithDirection sets the optimization sense of the primary objective. The
// default is solver.Maximize.
func WithDirection(dir solver.Direction) Option {
	return func(cfg *config) {
		cfg.dir = dir
	}
}

// WithConstraints overrides reaction flux bounds for the duration of the call,
// e.g. to model environmental conditions or knockouts. Keys must be existing
// reaction ids.
func WithConstraints(constraints map[string]solver.Bounds) Option {
	return func(cfg *config) {
		cfg.constraints = constraints
	}
}

// WithProblem reuses a previously built Problem, keeping any installed problem
// extensions. The Problem must have been built for the same model.
func WithProblem(p *Problem) Option {
	return func(cfg *config) {
		cfg.problem = p
	}
}

// WithShadowPrices requests metabolite shadow prices in the solution (FBA
// only).
func WithShadowPrices() Option {
	return func(cfg *config) {
		cfg.shadowPrices = true
	}
}

// WithReducedCosts requests reaction reduced costs in the solution (FBA only).
func WithReducedCosts() Option {
	return func(cfg *config) {
		cfg.reducedCosts = true
	}
}

// WithReactions restricts which reactions PFBA includes in the minimized flux
// sum. The default is all reactions.
func WithReactions(ids []string) Option {
	return func(cfg *config) {
		cfg.reactions = ids
	}
}

// WithInternal supplies the set of internal reactions for CycleFreeFBA
// explicitly instead of deriving it from the stoichiometry.
func WithInternal(ids []string) Option {
	return func(cfg *config) {
		cfg.internal = ids
	}
}

// WithReference supplies the reference flux distribution for MOMA, LinearMOMA
// and ROOM. The default is the model's parsimonious flux distribution.
func WithReference(reference map[string]float64) Option {
	return func(cfg *config) {
		cfg.reference = reference
	}
}

// WithBigM overrides the big-M constant of the active binary encoding
// (DefaultLoopBigM for CycleFreeFBA, DefaultRoomBigM for ROOM).
func WithBigM(m float64) Option {
	return func(cfg *config) {
		cfg.bigM = m
		cfg.bigMSet = true
	}
}

// WithDelta overrides ROOM's relative perturbation tolerance.
func WithDelta(delta float64) Option {
	return func(cfg *config) {
		cfg.delta = delta
	}
}

// WithEpsilon overrides ROOM's absolute perturbation tolerance.
func WithEpsilon(epsilon float64) Option {
	return func(cfg *config) {
		cfg.epsilon = epsilon
	}
}

// WithCoefficientCutoff overrides the magnitude below which null-space basis
// coefficients are dropped from loop-law constraints.
func WithCoefficientCutoff(cutoff float64) Option {
	return func(cfg *config) {
		cfg.cutoff = cutoff
	}
}
