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

/*
Package simulation implements constraint-based simulation of metabolic flux.

All methods share the same scheme: a base flux-balance problem built from a
cbmodel.Model is extended with auxiliary variables and constraints, solved
through the solver backend, and the resulting flux distribution is returned
restricted to the model's own reactions.

The entry points are:

	FBA          flux balance analysis (one linear solve)
	PFBA         parsimonious FBA: minimal total flux at the optimal objective
	CycleFreeFBA loopless FBA: forbids thermodynamically infeasible cycles
	MOMA         minimization of metabolic adjustment (quadratic distance)
	LinearMOMA   linear relaxation of MOMA (absolute deviation)
	ROOM         regulatory on/off minimization (count of perturbed fluxes)

Each call either receives a Problem via WithProblem or builds a fresh one.
A Problem binds one backend instance to one model and records which problem
extensions have been installed on it, so repeated calls against the same
Problem reuse the augmented structure instead of duplicating it.
*/
package simulation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/mhoffs/fluxsim/cbmodel"
	"github.com/mhoffs/fluxsim/solver"
)

// ErrModelMismatch is returned when a Problem built for one model is passed to
// a simulation of a different model.
var ErrModelMismatch = errors.New("problem was built for a different model")

// pinConstraint is the fixed name of the temporary constraint that pins the
// primary objective to its optimal value during a parsimonious solve. It is
// removed again before the call returns.
const pinConstraint = "pfba_objective_pin"

type extension int

const (
	extParsimonious extension = iota
	extCycleFree
	extLinearAdjustment
	extPerturbation
)

// Problem binds an optimization backend instance to a single model and tracks
// which problem extensions have been installed on it. Reusing one Problem
// across calls avoids rebuilding the augmented structure; reusing it across
// models is impossible by construction, which closes the stale-augmentation
// hazard of flag-on-the-solver designs.
//
// A Problem is not safe for concurrent use.
type Problem struct {
	model   *cbmodel.Model
	backend solver.Backend

	installed map[extension]bool

	// reference snapshots for augmentations whose constraints embed
	// reference-dependent right-hand sides
	adjustmentRef map[string]float64
	roomRows      map[string][2]float64
}

// NewProblem builds a fresh HiGHS-backed problem for the model.
func NewProblem(model *cbmodel.Model, opts ...solver.Option) (*Problem, error) {
	backend, err := solver.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewProblemWithBackend(model, backend)
}

// NewProblemWithBackend builds a problem for the model on a caller-supplied
// backend instance. The backend is (re)initialized from the model, discarding
// anything previously added to it.
func NewProblemWithBackend(model *cbmodel.Model, backend solver.Backend) (*Problem, error) {
	if err := backend.Build(model); err != nil {
		return nil, fmt.Errorf("building problem: %w", err)
	}
	return &Problem{
		model:     model,
		backend:   backend,
		installed: make(map[extension]bool),
	}, nil
}

// Model returns the model this problem was built for.
func (p *Problem) Model() *cbmodel.Model {
	return p.model
}

// Backend returns the underlying backend instance.
func (p *Problem) Backend() solver.Backend {
	return p.backend
}

// Reset rebuilds the backend from the model, discarding every installed
// extension.
func (p *Problem) Reset() error {
	if err := p.backend.Build(p.model); err != nil {
		return fmt.Errorf("resetting problem: %w", err)
	}
	p.installed = make(map[extension]bool)
	p.adjustmentRef = nil
	p.roomRows = nil
	return nil
}

// FBA runs a flux balance analysis: one linear solve of the model's
// stoichiometric constraints and bounds. The model's default objective and the
// maximize sense are used unless overridden. Infeasibility is reported through
// the solution status, never as an error.
func FBA(model *cbmodel.Model, opts ...Option) (*solver.Solution, error) {
	cfg := newConfig(opts)

	p, err := cfg.problemFor(model)
	if err != nil {
		return nil, err
	}

	objective := cfg.objective
	if objective == nil {
		objective = model.Objective()
	}

	sopts := cfg.solveOptions()
	if cfg.shadowPrices {
		sopts = append(sopts, solver.WithShadowPrices())
	}
	if cfg.reducedCosts {
		sopts = append(sopts, solver.WithReducedCosts())
	}

	sol, err := p.backend.SolveLP(objective, cfg.dir, sopts...)
	if err != nil {
		return nil, err
	}

	restrictToModel(sol, model)
	return sol, nil
}

// PFBA runs a parsimonious flux balance analysis: among the flux vectors that
// achieve the optimal primary objective it returns one of minimal total
// absolute flux. The returned solution's objective value is the minimized
// total flux; if the primary solve is non-optimal, that solution is returned
// unchanged.
//
// WithReactions restricts the set of reactions whose flux is minimized; all
// reversible reactions are still split into nonnegative parts so that repeated
// calls with different subsets can share the installed structure.
func PFBA(model *cbmodel.Model, opts ...Option) (*solver.Solution, error) {
	cfg := newConfig(opts)

	p, err := cfg.problemFor(model)
	if err != nil {
		return nil, err
	}

	objective := cfg.objective
	if objective == nil {
		objective = model.Objective()
	}

	pre, err := p.backend.SolveLP(objective, cfg.dir, cfg.solveOptions()...)
	if err != nil {
		return nil, err
	}
	if !pre.IsOptimal() {
		restrictToModel(pre, model)
		return pre, nil
	}

	if err := p.backend.AddConstraint(pinConstraint, termsOf(objective), solver.Equal, pre.Objective); err != nil {
		return nil, err
	}
	p.backend.Update()
	defer p.backend.RemoveConstraint(pinConstraint)

	if err := p.installFluxSplit(); err != nil {
		return nil, err
	}

	minimized := cfg.reactions
	if minimized == nil {
		minimized = model.ReactionIDs()
	}
	minObjective := make(map[string]float64, len(minimized))
	for _, id := range minimized {
		r, err := model.Reaction(id)
		if err != nil {
			return nil, err
		}
		if r.Reversible() {
			minObjective[id+"+"] = 1
			minObjective[id+"-"] = 1
		} else {
			minObjective[id] = 1
		}
	}

	sol, err := p.backend.SolveLP(minObjective, solver.Minimize, cfg.solveOptions()...)
	if err != nil {
		return nil, err
	}

	restrictToModel(sol, model)
	return sol, nil
}

// installFluxSplit adds, once per problem, a pair of nonnegative variables per
// reversible reaction bounding the positive and negative part of its flux.
func (p *Problem) installFluxSplit() error {
	if p.installed[extParsimonious] {
		return nil
	}

	for _, r := range p.model.Reactions() {
		if !r.Reversible() {
			continue
		}
		if err := p.backend.AddVariable(r.ID+"+", 0, math.Inf(1), solver.ContinuousVariable); err != nil {
			return err
		}
		if err := p.backend.AddVariable(r.ID+"-", 0, math.Inf(1), solver.ContinuousVariable); err != nil {
			return err
		}
	}
	p.backend.Update()

	for _, r := range p.model.Reactions() {
		if !r.Reversible() {
			continue
		}
		// pos >= flux and neg >= -flux
		err := p.backend.AddConstraint("split_pos_"+r.ID,
			[]solver.Term{{Var: r.ID, Coef: -1}, {Var: r.ID + "+", Coef: 1}}, solver.GreaterEqual, 0)
		if err != nil {
			return err
		}
		err = p.backend.AddConstraint("split_neg_"+r.ID,
			[]solver.Term{{Var: r.ID, Coef: 1}, {Var: r.ID + "-", Coef: 1}}, solver.GreaterEqual, 0)
		if err != nil {
			return err
		}
	}
	p.backend.Update()

	p.installed[extParsimonious] = true
	return nil
}

// restrictToModel filters a solution in place so that only the model's own
// reactions appear in the value mapping, only metabolites in the shadow
// prices, and only reactions in the reduced costs. Auxiliary variables added
// by problem extensions never leak to callers.
func restrictToModel(sol *solver.Solution, model *cbmodel.Model) {
	if sol.Values != nil {
		values := make(map[string]float64, len(sol.Values))
		for name, v := range sol.Values {
			if model.HasReaction(name) {
				values[name] = v
			}
		}
		sol.Values = values
	}
	if sol.ShadowPrices != nil {
		prices := make(map[string]float64, len(sol.ShadowPrices))
		for name, v := range sol.ShadowPrices {
			if model.HasMetabolite(name) {
				prices[name] = v
			}
		}
		sol.ShadowPrices = prices
	}
	if sol.ReducedCosts != nil {
		costs := make(map[string]float64, len(sol.ReducedCosts))
		for name, v := range sol.ReducedCosts {
			if model.HasReaction(name) {
				costs[name] = v
			}
		}
		sol.ReducedCosts = costs
	}
}

// termsOf converts an objective mapping to constraint terms in deterministic
// order.
func termsOf(objective map[string]float64) []solver.Term {
	ids := sortedKeys(objective)
	terms := make([]solver.Term, 0, len(ids))
	for _, id := range ids {
		terms = append(terms, solver.Term{Var: id, Coef: objective[id]})
	}
	return terms
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
