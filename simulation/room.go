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

// ROOM runs a regulatory on/off minimization simulation: it returns a feasible
// flux distribution minimizing the number of reactions whose flux deviates
// significantly from the reference. A deviation is significant when it leaves
// the window ref ± (delta*|ref| + epsilon); delta and epsilon default to
// DefaultDelta and DefaultEpsilon. The reference defaults to the model's
// parsimonious flux distribution; model reactions absent from a user-supplied
// reference are treated as reference zero.
//
// The result is a mixed-integer problem with one binary indicator per
// reaction; the reported objective value is the perturbation count.
func ROOM(model *cbmodel.Model, opts ...Option) (*solver.Solution, error) {
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

	if err := p.installPerturbation(reference, cfg); err != nil {
		return nil, err
	}

	// objective is rebuilt on every call, the indicators persist
	objective := make(map[string]float64, len(model.ReactionIDs()))
	for _, id := range model.ReactionIDs() {
		objective["y_"+id] = 1
	}

	sol, err := p.backend.SolveLP(objective, solver.Minimize, cfg.solveOptions()...)
	if err != nil {
		return nil, err
	}

	restrictToModel(sol, model)
	return sol, nil
}

// installPerturbation adds one binary indicator per reaction and the two big-M
// rows tying it to the significance window around the reference value. The
// windows embed the reference and tolerances, so a repeated call with changed
// parameters replaces the affected rows.
func (p *Problem) installPerturbation(reference map[string]float64, cfg *config) error {
	bigM := cfg.roomBigM()

	fresh := !p.installed[extPerturbation]
	if fresh {
		p.roomRows = make(map[string][2]float64, len(p.model.ReactionIDs()))
		for _, id := range p.model.ReactionIDs() {
			if err := p.backend.AddVariable("y_"+id, 0, 1, solver.BinaryVariable); err != nil {
				return err
			}
		}
		p.backend.Update()
	}

	for _, id := range p.model.ReactionIDs() {
		ref := reference[id]
		upper := ref + cfg.delta*math.Abs(ref) + cfg.epsilon
		lower := ref - cfg.delta*math.Abs(ref) - cfg.epsilon

		if old, ok := p.roomRows[id]; ok {
			if old[0] == lower && old[1] == upper {
				continue
			}
			if err := p.backend.RemoveConstraint("room_ub_" + id); err != nil {
				return err
			}
			if err := p.backend.RemoveConstraint("room_lb_" + id); err != nil {
				return err
			}
		}

		// y=0 confines the flux to [lower, upper]; y=1 relaxes both sides to
		// the big-M range
		err := p.backend.AddConstraint("room_ub_"+id,
			[]solver.Term{{Var: id, Coef: 1}, {Var: "y_" + id, Coef: upper - bigM}}, solver.LessEqual, upper)
		if err != nil {
			return err
		}
		err = p.backend.AddConstraint("room_lb_"+id,
			[]solver.Term{{Var: id, Coef: 1}, {Var: "y_" + id, Coef: lower + bigM}}, solver.GreaterEqual, lower)
		if err != nil {
			return err
		}
		p.roomRows[id] = [2]float64{lower, upper}
	}
	p.backend.Update()

	p.installed[extPerturbation] = true
	return nil
}
