/*
 * spacegroup_test.go, part of gomatter.
 *
 * Copyright 2025 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 * goMatter is developed at the Universidad de Santiago de Chile
 * (USACH).
 *
 */

package spacegroup

import (
	"fmt"
	"math"
	"testing"

	matter "github.com/rmera/gomatter"
)

func TestOperatorParsing(Te *testing.T) {
	op, err := ParseOp("-y+1/2,x+1/2,z+1/2")
	if err != nil {
		Te.Error(err)
	}
	wantW := [3][3]float64{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if op.W[i][j] != wantW[i][j] {
				Te.Errorf("W[%d][%d]: got %v, want %v", i, j, op.W[i][j], wantW[i][j])
			}
		}
		if math.Abs(op.T[i]-0.5) > 1e-12 {
			Te.Errorf("T[%d]: got %v, want 0.5", i, op.T[i])
		}
	}
	if _, err := ParseOp("x,y"); err == nil {
		Te.Error("2-component operator should not parse")
	}
	if _, err := ParseOp("x,q,z"); err == nil {
		Te.Error("operator with a bad variable should not parse")
	}
}

func TestGroupOrders(Te *testing.T) {
	orders := map[int]int{
		1:   1,
		2:   2,
		62:  8,
		123: 16,
		136: 16,
		166: 36,
		186: 12,
		194: 24,
		221: 48,
		225: 192,
		227: 192,
		229: 96,
	}
	for num, want := range orders {
		g, err := Lookup(num)
		if err != nil {
			Te.Error(err)
			continue
		}
		if g.Len() != want {
			Te.Errorf("group %d (%s): %d operations, want %d", num, g.Symbol, g.Len(), want)
		}
	}
}

func TestSymbolLookup(Te *testing.T) {
	for _, symbol := range []string{"Fd-3m", "P6_3/mmc", "P63/mmc", "P4/mmm"} {
		g, err := LookupSymbol(symbol)
		if err != nil {
			Te.Error(err)
			continue
		}
		fmt.Println(symbol, "->", g.Number)
	}
	if _, err := LookupSymbol("Xy-3z"); err == nil {
		Te.Error("nonsense symbol should not resolve")
	}
	if _, err := Lookup(300); err == nil {
		Te.Error("group number 300 should not resolve")
	}
}

//builds the diamond structure of silicon and checks the expanded sites
//against the known conventional-cell positions.
func TestDiamond(Te *testing.T) {
	conf, err := Build(&Spec{
		Number: 227,
		A:      5.431, B: 5.431, C: 5.431,
		Alpha: 90, Beta: 90, Gamma: 90,
		Basis: []Site{{"Si", [3]float64{0, 0, 0}}},
	})
	if err != nil {
		Te.Fatal(err)
	}
	if conf.Len() != 8 {
		Te.Fatalf("diamond Si: %d atoms, want 8", conf.Len())
	}
	want := [][3]float64{
		{0, 0, 0}, {0, 0.5, 0.5}, {0.5, 0, 0.5}, {0.5, 0.5, 0},
		{0.25, 0.25, 0.25}, {0.25, 0.75, 0.75}, {0.75, 0.25, 0.75}, {0.75, 0.75, 0.25},
	}
	frac, err := conf.Fractional()
	if err != nil {
		Te.Fatal(err)
	}
	for _, w := range want {
		found := false
		for i := 0; i < conf.Len(); i++ {
			if fracDist(wrap(frac.At(i, 0)), w[0]) < 1e-6 &&
				fracDist(wrap(frac.At(i, 1)), w[1]) < 1e-6 &&
				fracDist(wrap(frac.At(i, 2)), w[2]) < 1e-6 {
				found = true
				break
			}
		}
		if !found {
			Te.Errorf("diamond site %v missing from the expansion", w)
		}
	}
}

func TestRocksalt(Te *testing.T) {
	conf, err := Build(&Spec{
		Symbol: "Fm-3m",
		A:      5.64, B: 5.64, C: 5.64,
		Alpha: 90, Beta: 90, Gamma: 90,
		Basis: []Site{
			{"Na", [3]float64{0, 0, 0}},
			{"Cl", [3]float64{0.5, 0.5, 0.5}},
		},
	})
	if err != nil {
		Te.Fatal(err)
	}
	if conf.Len() != 8 {
		Te.Fatalf("rocksalt: %d atoms, want 8", conf.Len())
	}
	counts := map[string]int{}
	for _, s := range conf.Symbols() {
		counts[s]++
	}
	if counts["Na"] != 4 || counts["Cl"] != 4 {
		Te.Errorf("rocksalt stoichiometry off: %v", counts)
	}
}

func TestRutile(Te *testing.T) {
	conf, err := Build(&Spec{
		Number: 136,
		A:      4.593, B: 4.593, C: 2.959,
		Alpha: 90, Beta: 90, Gamma: 90,
		Basis: []Site{
			{"Ti", [3]float64{0, 0, 0}},
			{"O", [3]float64{0.3053, 0.3053, 0}},
		},
	})
	if err != nil {
		Te.Fatal(err)
	}
	counts := map[string]int{}
	for _, s := range conf.Symbols() {
		counts[s]++
	}
	fmt.Println("rutile cell:", counts)
	if counts["Ti"] != 2 || counts["O"] != 4 {
		Te.Errorf("rutile stoichiometry off: %v", counts)
	}
}

func TestOrbitCollision(Te *testing.T) {
	_, err := Build(&Spec{
		Number: 225,
		A:      5.64, B: 5.64, C: 5.64,
		Alpha: 90, Beta: 90, Gamma: 90,
		Basis: []Site{
			{"Na", [3]float64{0, 0, 0}},
			{"Cl", [3]float64{0, 0, 0}},
		},
	})
	if err == nil {
		Te.Fatal("two species on the same site should not build")
	}
	if _, ok := err.(*matter.InvalidSymmetryError); !ok {
		Te.Errorf("expected InvalidSymmetryError, got %T: %v", err, err)
	}
	fmt.Println("collision correctly rejected:", err)
}

func TestBuildValidation(Te *testing.T) {
	base := Spec{
		Number: 221,
		A:      4, B: 4, C: 4,
		Alpha: 90, Beta: 90, Gamma: 90,
		Basis: []Site{{"Fe", [3]float64{0, 0, 0}}},
	}
	bad := base
	bad.A = -1
	if _, err := Build(&bad); err == nil {
		Te.Error("negative lattice length should not build")
	}
	bad = base
	bad.Gamma = 185
	if _, err := Build(&bad); err == nil {
		Te.Error("angle outside (0,180) should not build")
	}
	bad = base
	bad.Basis = []Site{{"Fe", [3]float64{1.2, 0, 0}}}
	if _, err := Build(&bad); err == nil {
		Te.Error("fractional coordinate outside [0,1) should not build")
	}
	bad = base
	bad.Basis = nil
	if _, err := Build(&bad); err == nil {
		Te.Error("empty basis should not build")
	}
	bad = base
	bad.Number = 7 //not in the table
	if _, err := Build(&bad); err == nil {
		Te.Error("group outside the table should not build")
	}
}

//Check should accept a structure built by the group itself, and reject
//it after a symmetry-breaking distortion.
func TestCheck(Te *testing.T) {
	g, err := Lookup(227)
	if err != nil {
		Te.Fatal(err)
	}
	conf, err := Build(&Spec{
		Number: 227,
		A:      5.431, B: 5.431, C: 5.431,
		Alpha: 90, Beta: 90, Gamma: 90,
		Basis: []Site{{"Si", [3]float64{0, 0, 0}}},
	})
	if err != nil {
		Te.Fatal(err)
	}
	maps, err := g.Check(conf, 1e-4)
	if err != nil {
		Te.Fatal(err)
	}
	if len(maps) != g.Len() {
		Te.Errorf("got %d atom mappings, want %d", len(maps), g.Len())
	}
	//break the symmetry
	coords := conf.Coords.Copy()
	coords.Set(0, 0, coords.At(0, 0)+0.3)
	conf.SetCoords(coords)
	if _, err := g.Check(conf, 1e-4); err == nil {
		Te.Error("distorted structure should fail the symmetry check")
	}
}
