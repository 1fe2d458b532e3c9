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
	"math"

	"github.com/mhoffs/fluxsim/cbmodel"
	"github.com/mhoffs/fluxsim/solver"
)

// MOMA runs a minimization-of-metabolic-adjustment simulation: it returns the
// feasible flux distribution of minimal squared Euclidean distance to a
// reference distribution, typically the wild type. The reference defaults to
// the model's parsimonious flux distribution.
//
// The solve is a single quadratic program; the reported objective value is the
// squared distance sum((v-ref)^2) itself.
func MOMA(model *cbmodel.Model, opts ...Option) (*solver.Solution, error) {
	cfg := newConfig(opts)

	reference, pre, err := cfg.referenceFor(model)
	if err != nil {
		return nil, err
	}
	if pre != nil {
		return pre, nil
	}

	p, err := cfg.problemFor(model)
	if err != nil {
		return nil, err
	}

	ids := sortedKeys(reference)
	quadratic := make([]solver.QuadTerm, 0, len(ids))
	linear := make(map[string]float64, len(ids))
	offset := 0.0
	for _, id := range ids {
		ref := reference[id]
		// (v-ref)^2 expands to v^2 - 2*ref*v + ref^2
		quadratic = append(quadratic, solver.QuadTerm{V1: id, V2: id, Coef: 1})
		linear[id] = -2 * ref
		offset += ref * ref
	}

	sol, err := p.backend.SolveQP(quadratic, linear, offset, solver.Minimize, cfg.solveOptions()...)
	if err != nil {
		return nil, err
	}

	restrictToModel(sol, model)
	return sol, nil
}

// LinearMOMA runs the linear relaxation of MOMA: it minimizes the total
// absolute deviation sum(|v-ref|) from the reference distribution instead of
// the squared distance. The reference defaults to the model's parsimonious
// flux distribution.
func LinearMOMA(model *cbmodel.Model, opts ...Option) (*solver.Solution, error) {
	cfg := newConfig(opts)

	reference, pre, err := cfg.referenceFor(model)
	if err != nil {
		return nil, err
	}
	if pre != nil {
		return pre, nil
	}

	p, err := cfg.problemFor(model)
	if err != nil {
		return nil, err
	}

	if err := p.installAdjustment(reference); err != nil {
		return nil, err
	}

	objective := make(map[string]float64, 2*len(reference))
	for id := range reference {
		objective[id+"_d+"] = 1
		objective[id+"_d-"] = 1
	}

	sol, err := p.backend.SolveLP(objective, solver.Minimize, cfg.solveOptions()...)
	if err != nil {
		return nil, err
	}

	restrictToModel(sol, model)
	return sol, nil
}

// referenceFor resolves the reference flux distribution, running a
// parsimonious FBA on a fresh problem when none was supplied. A non-optimal
// prerequisite solve is returned as-is through the second return value, per
// the error policy: callers propagate it unchanged.
func (cfg *config) referenceFor(model *cbmodel.Model) (map[string]float64, *solver.Solution, error) {
	if cfg.reference != nil {
		for id := range cfg.reference {
			if _, err := model.Reaction(id); err != nil {
				return nil, nil, err
			}
		}
		return cfg.reference, nil, nil
	}
	wt, err := PFBA(model)
	if err != nil {
		return nil, nil, err
	}
	if !wt.IsOptimal() {
		return nil, wt, nil
	}
	return wt.Values, nil, nil
}

// installAdjustment adds the split deviation variables and their bounding
// constraints. The constraint right-hand sides embed the reference values, so
// a repeated call with a changed reference replaces the affected rows instead
// of reusing stale ones.
func (p *Problem) installAdjustment(reference map[string]float64) error {
	ids := sortedKeys(reference)

	if !p.installed[extLinearAdjustment] {
		p.adjustmentRef = make(map[string]float64, len(ids))
		for _, id := range ids {
			if err := p.addAdjustmentRows(id, reference[id], false); err != nil {
				return err
			}
		}
		p.backend.Update()
		p.installed[extLinearAdjustment] = true
		return nil
	}

	for _, id := range ids {
		old, ok := p.adjustmentRef[id]
		if ok && old == reference[id] {
			continue
		}
		if err := p.addAdjustmentRows(id, reference[id], ok); err != nil {
			return err
		}
	}
	p.backend.Update()
	return nil
}

// addAdjustmentRows installs d+ and d- for one reaction; with replace set, the
// existing constraint rows are dropped first (the variables are kept).
func (p *Problem) addAdjustmentRows(id string, ref float64, replace bool) error {
	dPos, dNeg := id+"_d+", id+"_d-"

	if replace {
		if err := p.backend.RemoveConstraint("adj_pos_" + id); err != nil {
			return err
		}
		if err := p.backend.RemoveConstraint("adj_neg_" + id); err != nil {
			return err
		}
	} else {
		if err := p.backend.AddVariable(dPos, 0, math.Inf(1), solver.ContinuousVariable); err != nil {
			return err
		}
		if err := p.backend.AddVariable(dNeg, 0, math.Inf(1), solver.ContinuousVariable); err != nil {
			return err
		}
	}

	// d+ >= v - ref and d- >= ref - v
	err := p.backend.AddConstraint("adj_pos_"+id,
		[]solver.Term{{Var: id, Coef: -1}, {Var: dPos, Coef: 1}}, solver.GreaterEqual, -ref)
	if err != nil {
		return err
	}
	err = p.backend.AddConstraint("adj_neg_"+id,
		[]solver.Term{{Var: id, Coef: 1}, {Var: dNeg, Coef: 1}}, solver.GreaterEqual, ref)
	if err != nil {
		return err
	}

	p.adjustmentRef[id] = ref
	return nil
}
