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

// Package cbmodel holds the constraint-based model data layer: reactions with
// stoichiometry and flux bounds, metabolites, and a default objective.
//
// A Model is a passive container. The simulation package reads it to build
// optimization problems but never mutates it, so a single Model can back any
// number of concurrent simulations.
package cbmodel

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownReaction     = errors.New("unknown reaction")
	ErrUnknownMetabolite   = errors.New("unknown metabolite")
	ErrDuplicateReaction   = errors.New("duplicate reaction")
	ErrDuplicateMetabolite = errors.New("duplicate metabolite")
)

// Reaction is a single network reaction: its stoichiometry maps metabolite ids
// to coefficients (negative for consumption, positive for production) and its
// flux is constrained to [LowerBound, UpperBound]. Reactions are treated as
// immutable once added to a Model.
type Reaction struct {
	ID            string
	Stoichiometry map[string]float64
	LowerBound    float64
	UpperBound    float64
}

// Reversible reports whether the reaction can carry negative flux.
func (r *Reaction) Reversible() bool {
	return r.LowerBound < 0
}

// Internal reports whether the reaction is an internal network reaction, as
// opposed to a boundary (exchange) reaction. A reaction touching more than one
// metabolite is internal.
func (r *Reaction) Internal() bool {
	return len(r.Stoichiometry) > 1
}

// Metabolites returns the ids of the metabolites the reaction touches, in
// lexicographic order.
func (r *Reaction) Metabolites() []string {
	ids := make([]string, 0, len(r.Stoichiometry))
	for id := range r.Stoichiometry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Model is a genome-scale constraint-based model: a set of reactions over a
// set of metabolites, plus a default objective. Reactions and metabolites keep
// their insertion order so that derived matrices are deterministic.
type Model struct {
	name          string
	reactions     map[string]*Reaction
	reactionIDs   []string
	metabolites   map[string]bool
	metaboliteIDs []string
	objective     map[string]float64
}

// New returns an empty model with the given (purely informational) name.
func New(name string) *Model {
	return &Model{
		name:        name,
		reactions:   make(map[string]*Reaction),
		metabolites: make(map[string]bool),
		objective:   make(map[string]float64),
	}
}

// Name returns the name provided upon instantiation of the model.
func (m *Model) Name() string {
	return m.name
}

// AddMetabolite registers a metabolite id.
func (m *Model) AddMetabolite(id string) error {
	if m.metabolites[id] {
		return fmt.Errorf("%w: %s", ErrDuplicateMetabolite, id)
	}
	m.metabolites[id] = true
	m.metaboliteIDs = append(m.metaboliteIDs, id)
	return nil
}

// AddReaction registers a reaction. Every metabolite referenced by the
// stoichiometry must already exist in the model. A reaction with an empty
// stoichiometry is permitted; it models a pure boundary flux.
func (m *Model) AddReaction(id string, stoichiometry map[string]float64, lower, upper float64) (*Reaction, error) {
	if _, ok := m.reactions[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateReaction, id)
	}
	coeffs := make(map[string]float64, len(stoichiometry))
	for metID, coeff := range stoichiometry {
		if !m.metabolites[metID] {
			return nil, fmt.Errorf("%w: %s (in reaction %s)", ErrUnknownMetabolite, metID, id)
		}
		coeffs[metID] = coeff
	}
	r := &Reaction{
		ID:            id,
		Stoichiometry: coeffs,
		LowerBound:    lower,
		UpperBound:    upper,
	}
	m.reactions[id] = r
	m.reactionIDs = append(m.reactionIDs, id)
	return r, nil
}

// Reaction looks up a reaction by id.
func (m *Model) Reaction(id string) (*Reaction, error) {
	r, ok := m.reactions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReaction, id)
	}
	return r, nil
}

// Reactions returns the model's reactions in insertion order.
func (m *Model) Reactions() []*Reaction {
	rs := make([]*Reaction, len(m.reactionIDs))
	for i, id := range m.reactionIDs {
		rs[i] = m.reactions[id]
	}
	return rs
}

// ReactionIDs returns the reaction ids in insertion order.
func (m *Model) ReactionIDs() []string {
	ids := make([]string, len(m.reactionIDs))
	copy(ids, m.reactionIDs)
	return ids
}

// HasReaction reports whether the model contains the given reaction id.
func (m *Model) HasReaction(id string) bool {
	_, ok := m.reactions[id]
	return ok
}

// Metabolites returns the metabolite ids in insertion order.
func (m *Model) Metabolites() []string {
	ids := make([]string, len(m.metaboliteIDs))
	copy(ids, m.metaboliteIDs)
	return ids
}

// HasMetabolite reports whether the model contains the given metabolite id.
func (m *Model) HasMetabolite(id string) bool {
	return m.metabolites[id]
}

// SetObjective replaces the model's default objective. Every referenced
// reaction must exist.
func (m *Model) SetObjective(objective map[string]float64) error {
	obj := make(map[string]float64, len(objective))
	for id, coeff := range objective {
		if _, ok := m.reactions[id]; !ok {
			return fmt.Errorf("%w: %s (in objective)", ErrUnknownReaction, id)
		}
		obj[id] = coeff
	}
	m.objective = obj
	return nil
}

// Objective returns a copy of the model's default objective coefficients.
func (m *Model) Objective() map[string]float64 {
	obj := make(map[string]float64, len(m.objective))
	for id, coeff := range m.objective {
		obj[id] = coeff
	}
	return obj
}
