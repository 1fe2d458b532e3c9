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
package solver

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhoffs/fluxsim/cbmodel"
)

const delta = 0.0000001 // acceptable numerical deviation for test results

func newBackend(t *testing.T) *HighsBackend {
	t.Helper()
	b, err := New()
	require.NoError(t, err)
	return b
}

func TestSolveLP(t *testing.T) {
	b := newBackend(t)

	for _, name := range []string{"x1", "x2", "x3"} {
		require.NoError(t, b.AddVariable(name, 0, math.Inf(1), ContinuousVariable))
	}
	require.NoError(t, b.AddConstraint("c1", []Term{{"x1", 2}, {"x2", 1}, {"x3", 1}}, LessEqual, 14))
	require.NoError(t, b.AddConstraint("c2", []Term{{"x1", 4}, {"x2", 2}, {"x3", 3}}, LessEqual, 28))
	require.NoError(t, b.AddConstraint("c3", []Term{{"x1", 2}, {"x2", 5}, {"x3", 5}}, LessEqual, 30))

	res, err := b.SolveLP(map[string]float64{"x1": 1, "x2": 2, "x3": -1}, Maximize)
	require.NoError(t, err)

	expected := map[string]float64{"x1": 5, "x2": 4, "x3": 0}

	assert.Equal(t, StatusOptimal, res.Status)
	// ignore numerical inaccuracies
	assert.InDelta(t, 13.0, res.Objective, delta)
	for name, x := range expected {
		assert.InDelta(t, x, res.Value(name), delta)
	}
}

func TestSolveMIP(t *testing.T) {
	b := newBackend(t)

	require.NoError(t, b.AddVariable("a", 0, 1, BinaryVariable))
	require.NoError(t, b.AddVariable("b", 0, 1, BinaryVariable))
	require.NoError(t, b.AddConstraint("pick_one", []Term{{"a", 1}, {"b", 1}}, LessEqual, 1))

	res, err := b.SolveLP(map[string]float64{"a": 3, "b": 2}, Maximize)
	require.NoError(t, err)

	assert.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 3.0, res.Objective, delta)
	assert.InDelta(t, 1.0, res.Value("a"), delta)
	assert.InDelta(t, 0.0, res.Value("b"), delta)
}

func TestSolveQP(t *testing.T) {
	b := newBackend(t)

	require.NoError(t, b.AddVariable("x", 0, 10, ContinuousVariable))

	// minimize (x-2)^2 = x^2 - 4x + 4
	res, err := b.SolveQP([]QuadTerm{{"x", "x", 1}}, map[string]float64{"x": -4}, 4, Minimize)
	require.NoError(t, err)

	assert.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 2.0, res.Value("x"), 0.0001)
	assert.InDelta(t, 0.0, res.Objective, 0.0001)
}

func TestBuildFromModel(t *testing.T) {
	m := cbmodel.New("chain")
	require.NoError(t, m.AddMetabolite("m"))
	_, err := m.AddReaction("up", map[string]float64{"m": 1}, 0, 10)
	require.NoError(t, err)
	_, err = m.AddReaction("out", map[string]float64{"m": -1}, 0, 10)
	require.NoError(t, err)

	b := newBackend(t)
	require.NoError(t, b.Build(m))

	res, err := b.SolveLP(map[string]float64{"out": 1}, Maximize)
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 10.0, res.Objective, delta)
	assert.InDelta(t, 10.0, res.Value("up"), delta) // balance forces up == out
}

func TestBoundsOverrideIsTemporary(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.AddVariable("x", 0, 10, ContinuousVariable))

	res, err := b.SolveLP(map[string]float64{"x": 1}, Maximize, WithBounds(map[string]Bounds{"x": {0, 3}}))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, res.Objective, delta)

	res, err = b.SolveLP(map[string]float64{"x": 1}, Maximize)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, res.Objective, delta)
}

func TestRemoveConstraint(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.AddVariable("x", 0, 10, ContinuousVariable))
	require.NoError(t, b.AddConstraint("cap", []Term{{"x", 1}}, LessEqual, 4))

	res, err := b.SolveLP(map[string]float64{"x": 1}, Maximize)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, res.Objective, delta)

	require.NoError(t, b.RemoveConstraint("cap"))
	res, err = b.SolveLP(map[string]float64{"x": 1}, Maximize)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, res.Objective, delta)

	assert.ErrorIs(t, b.RemoveConstraint("cap"), ErrUnknownConstraint)
}

func TestNameErrors(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.AddVariable("x", 0, 1, ContinuousVariable))

	assert.ErrorIs(t, b.AddVariable("x", 0, 1, ContinuousVariable), ErrDuplicateVariable)
	assert.ErrorIs(t, b.AddConstraint("c", []Term{{"nope", 1}}, Equal, 0), ErrUnknownVariable)

	require.NoError(t, b.AddConstraint("c", []Term{{"x", 1}}, Equal, 0))
	assert.ErrorIs(t, b.AddConstraint("c", []Term{{"x", 1}}, Equal, 0), ErrDuplicateConstraint)

	_, err := b.SolveLP(map[string]float64{"nope": 1}, Maximize)
	assert.ErrorIs(t, err, ErrUnknownVariable)
}

func TestNonOptimalStatuses(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.AddVariable("x", 0, 1, ContinuousVariable))
	require.NoError(t, b.AddConstraint("impossible", []Term{{"x", 1}}, GreaterEqual, 2))

	res, err := b.SolveLP(map[string]float64{"x": 1}, Maximize)
	require.NoError(t, err) // infeasibility is a status, not an error
	assert.Equal(t, StatusInfeasible, res.Status)

	b = newBackend(t)
	require.NoError(t, b.AddVariable("x", 0, math.Inf(1), ContinuousVariable))
	res, err = b.SolveLP(map[string]float64{"x": 1}, Maximize)
	require.NoError(t, err)
	assert.Equal(t, StatusUnbounded, res.Status)
}

func TestDualValues(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.AddVariable("x", 0, 10, ContinuousVariable))
	require.NoError(t, b.AddVariable("y", 0, 10, ContinuousVariable))
	require.NoError(t, b.AddConstraint("budget", []Term{{"x", 1}, {"y", 1}}, LessEqual, 5))

	res, err := b.SolveLP(map[string]float64{"x": 2, "y": 1}, Maximize,
		WithShadowPrices(), WithReducedCosts())
	require.NoError(t, err)

	assert.Equal(t, StatusOptimal, res.Status)
	assert.Contains(t, res.ShadowPrices, "budget")
	assert.Len(t, res.ReducedCosts, 2)
}

type captureLogger struct {
	lines []string
}

func (l *captureLogger) Print(v ...interface{}) {
	l.lines = append(l.lines, fmt.Sprint(v...))
}

func TestLogger(t *testing.T) {
	logger := &captureLogger{}
	b, err := New(WithLogger(logger))
	require.NoError(t, err)

	require.NoError(t, b.AddVariable("x", 0, 1, ContinuousVariable))
	_, err = b.SolveLP(map[string]float64{"x": 1}, Maximize)
	require.NoError(t, err)

	assert.NotEmpty(t, logger.lines)
}
