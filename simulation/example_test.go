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
package simulation_test

import (
	"fmt"
	"log"

	"github.com/mhoffs/fluxsim/cbmodel"
	"github.com/mhoffs/fluxsim/simulation"
)

func ExampleFBA() {
	m := cbmodel.New("toy")

	if err := m.AddMetabolite("glc"); err != nil {
		log.Fatal(err)
	}
	if _, err := m.AddReaction("uptake", map[string]float64{"glc": 1}, 0, 10); err != nil {
		log.Fatal(err)
	}
	if _, err := m.AddReaction("growth", map[string]float64{"glc": -1}, 0, 100); err != nil {
		log.Fatal(err)
	}
	if err := m.SetObjective(map[string]float64{"growth": 1}); err != nil {
		log.Fatal(err)
	}

	sol, err := simulation.FBA(m)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(sol.Status)
	fmt.Printf("%.0f\n", sol.Objective)
	// Output:
	// optimal
	// 10
}
