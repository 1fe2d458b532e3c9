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

// Package phaseplane implements phenotype phase plane analysis: a
// two-dimensional sweep of flux balance solves with two reaction fluxes fixed
// to grid values (Edwards et al. 2001).
package phaseplane

import (
	"fmt"

	"github.com/mhoffs/fluxsim/cbmodel"
	"github.com/mhoffs/fluxsim/simulation"
	"github.com/mhoffs/fluxsim/solver"
)

// Result holds the phase plane grids. Objective[i][j] is the optimal objective
// with ReactionX fixed to XRange[i] and ReactionY fixed to YRange[j];
// ShadowPriceX and ShadowPriceY hold the shadow prices of the metabolite
// associated with each swept reaction. Grid points whose fixed fluxes are
// infeasible are left at zero.
type Result struct {
	ReactionX string
	ReactionY string
	XRange    []float64
	YRange    []float64

	Objective    [][]float64
	ShadowPriceX [][]float64
	ShadowPriceY [][]float64
}

// Analyze sweeps the two reactions over their value ranges, running one flux
// balance solve per grid point on a shared problem instance. Additional
// simulation options (objective override, direction) are passed through to
// every solve; the per-point flux constraints and the shared problem take
// precedence over conflicting options.
func Analyze(model *cbmodel.Model, reactionX, reactionY string, xRange, yRange []float64, opts ...simulation.Option) (*Result, error) {
	rx, err := model.Reaction(reactionX)
	if err != nil {
		return nil, err
	}
	ry, err := model.Reaction(reactionY)
	if err != nil {
		return nil, err
	}

	metX, err := firstMetabolite(rx)
	if err != nil {
		return nil, err
	}
	metY, err := firstMetabolite(ry)
	if err != nil {
		return nil, err
	}

	p, err := simulation.NewProblem(model)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ReactionX:    reactionX,
		ReactionY:    reactionY,
		XRange:       xRange,
		YRange:       yRange,
		Objective:    makeGrid(len(xRange), len(yRange)),
		ShadowPriceX: makeGrid(len(xRange), len(yRange)),
		ShadowPriceY: makeGrid(len(xRange), len(yRange)),
	}

	for i, vx := range xRange {
		for j, vy := range yRange {
			constraints := map[string]solver.Bounds{
				reactionX: {Lower: vx, Upper: vx},
				reactionY: {Lower: vy, Upper: vy},
			}
			callOpts := append(append([]simulation.Option{}, opts...),
				simulation.WithProblem(p),
				simulation.WithConstraints(constraints),
				simulation.WithShadowPrices(),
			)

			sol, err := simulation.FBA(model, callOpts...)
			if err != nil {
				return nil, err
			}
			if !sol.IsOptimal() {
				continue
			}
			res.Objective[i][j] = sol.Objective
			res.ShadowPriceX[i][j] = sol.ShadowPrices[metX]
			res.ShadowPriceY[i][j] = sol.ShadowPrices[metY]
		}
	}

	return res, nil
}

// firstMetabolite picks the reaction's associated metabolite: its first in
// lexicographic order, which for single-metabolite boundary reactions is the
// only one.
func firstMetabolite(r *cbmodel.Reaction) (string, error) {
	mets := r.Metabolites()
	if len(mets) == 0 {
		return "", fmt.Errorf("reaction %s touches no metabolite", r.ID)
	}
	return mets[0], nil
}

func makeGrid(nx, ny int) [][]float64 {
	grid := make([][]float64, nx)
	for i := range grid {
		grid[i] = make([]float64, ny)
	}
	return grid
}
