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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhoffs/fluxsim/cbmodel"
	"github.com/mhoffs/fluxsim/solver"
)

// cycleModel is a pure internal 2-cycle: r1 converts A to B and r2 converts B
// back to A, both reversible, with no boundary flux forcing either one. Any
// equal flux through both is stoichiometrically balanced but thermodynamically
// infeasible.
func cycleModel(t *testing.T) *cbmodel.Model {
	t.Helper()

	m := cbmodel.New("cycle")
	require.NoError(t, m.AddMetabolite("A"))
	require.NoError(t, m.AddMetabolite("B"))
	_, err := m.AddReaction("r1", map[string]float64{"A": -1, "B": 1}, -10, 10)
	require.NoError(t, err)
	_, err = m.AddReaction("r2", map[string]float64{"B": -1, "A": 1}, -10, 10)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(map[string]float64{"r1": 1}))
	return m
}

// chainWithCycleModel extends the cycle with boundary reactions so that a net
// A-to-B conversion of 5 is forced; the cycle on top of it is not.
func chainWithCycleModel(t *testing.T) *cbmodel.Model {
	t.Helper()

	m := cbmodel.New("chain_with_cycle")
	require.NoError(t, m.AddMetabolite("A"))
	require.NoError(t, m.AddMetabolite("B"))
	_, err := m.AddReaction("up_A", map[string]float64{"A": 1}, 0, 5)
	require.NoError(t, err)
	_, err = m.AddReaction("r1", map[string]float64{"A": -1, "B": 1}, -10, 10)
	require.NoError(t, err)
	_, err = m.AddReaction("r2", map[string]float64{"B": -1, "A": 1}, -10, 10)
	require.NoError(t, err)
	_, err = m.AddReaction("ex_B", map[string]float64{"B": -1}, 0, 5)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(map[string]float64{"ex_B": 1}))
	return m
}

func TestCycleFreeFBAZeroesPureCycle(t *testing.T) {
	m := cycleModel(t)

	// the plain solver happily circulates flux around the cycle
	base, err := FBA(m)
	require.NoError(t, err)
	require.True(t, base.IsOptimal())
	assert.InDelta(t, 10.0, base.Objective, delta)
	assert.InDelta(t, 10.0, base.Value("r2"), delta)

	// the loop law forbids it
	sol, err := CycleFreeFBA(m)
	require.NoError(t, err)
	require.True(t, sol.IsOptimal())
	assert.InDelta(t, 0.0, sol.Objective, delta)
	assert.InDelta(t, 0.0, sol.Value("r1"), delta)
	assert.InDelta(t, 0.0, sol.Value("r2"), delta)
}

func TestCycleFreeFBAKeepsForcedFlux(t *testing.T) {
	m := chainWithCycleModel(t)

	sol, err := CycleFreeFBA(m)
	require.NoError(t, err)

	require.True(t, sol.IsOptimal())
	assert.InDelta(t, 5.0, sol.Objective, delta)
	// the net conversion survives, but only one cycle member carries it
	assert.InDelta(t, 5.0, sol.Value("r1")-sol.Value("r2"), delta)
	assert.InDelta(t, 0.0, sol.Value("r1")*sol.Value("r2"), delta)
}

func TestCycleFreeFBAStripsAuxiliaries(t *testing.T) {
	m := cycleModel(t)

	sol, err := CycleFreeFBA(m)
	require.NoError(t, err)

	require.True(t, sol.IsOptimal())
	assert.Len(t, sol.Values, 2)
	assert.Contains(t, sol.Values, "r1")
	assert.Contains(t, sol.Values, "r2")
}

func TestCycleFreeFBAExplicitInternalSet(t *testing.T) {
	m := cycleModel(t)

	sol, err := CycleFreeFBA(m, WithInternal([]string{"r1", "r2"}))
	require.NoError(t, err)
	require.True(t, sol.IsOptimal())
	assert.InDelta(t, 0.0, sol.Objective, delta)

	_, err = CycleFreeFBA(cycleModel(t), WithInternal([]string{"missing"}))
	assert.ErrorIs(t, err, cbmodel.ErrUnknownReaction)
}

func TestCycleFreeFBAReusesInstalledStructure(t *testing.T) {
	m := cycleModel(t)
	p, err := NewProblem(m)
	require.NoError(t, err)

	first, err := CycleFreeFBA(m, WithProblem(p))
	require.NoError(t, err)
	second, err := CycleFreeFBA(m, WithProblem(p), WithDirection(solver.Minimize))
	require.NoError(t, err)

	assert.InDelta(t, 0.0, first.Objective, delta)
	assert.InDelta(t, 0.0, second.Objective, delta)
}

func TestNullspaceBasis(t *testing.T) {
	// kernel of [1 1] is spanned by (1,-1)/sqrt(2)
	basis, err := nullspaceBasis([][]float64{{1, 1}}, 2)
	require.NoError(t, err)
	require.Len(t, basis, 1)
	assert.InDelta(t, 0.0, basis[0][0]+basis[0][1], 1e-10)

	// full-rank matrix has an empty kernel
	basis, err = nullspaceBasis([][]float64{{1, 0}, {0, 1}}, 2)
	require.NoError(t, err)
	assert.Empty(t, basis)

	// no rows at all: the kernel is the whole space
	basis, err = nullspaceBasis(nil, 3)
	require.NoError(t, err)
	assert.Len(t, basis, 3)

	// the 2-cycle internal matrix has a one-dimensional kernel along (1,1)
	basis, err = nullspaceBasis([][]float64{{-1, 1}, {1, -1}}, 2)
	require.NoError(t, err)
	require.Len(t, basis, 1)
	assert.InDelta(t, 0.0, basis[0][0]-basis[0][1], 1e-10)
}
