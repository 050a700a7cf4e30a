/*
 * matter_test.go, part of gomatter.
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

package matter

import (
	"fmt"
	"math"
	"path/filepath"
	"testing"

	v3 "github.com/rmera/gomatter/v3"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func siPair(Te *testing.T) *Configuration {
	coords, err := v3.NewMatrix([]float64{0, 0, 0, 1.3577, 1.3577, 1.3577})
	if err != nil {
		Te.Fatal(err)
	}
	cell, err := v3.NewMatrix([]float64{5.431, 0, 0, 0, 5.431, 0, 0, 0, 5.431})
	if err != nil {
		Te.Fatal(err)
	}
	conf, err := NewConfiguration([]string{"Si", "Si"}, coords, cell, [3]bool{true, true, true})
	if err != nil {
		Te.Fatal(err)
	}
	return conf
}

func TestNewConfiguration(Te *testing.T) {
	conf := siPair(Te)
	if conf.Len() != 2 {
		Te.Fatalf("len: %d", conf.Len())
	}
	if m := conf.Atom(0).Mass; math.Abs(m-28.085) > 0.01 {
		Te.Errorf("silicon mass not filled in: %v", m)
	}
	if !conf.Periodic() {
		Te.Error("should be periodic")
	}
	fmt.Println("volume:", conf.Volume())
	//count mismatch
	coords, _ := v3.NewMatrix([]float64{0, 0, 0})
	if _, err := NewConfiguration([]string{"Si", "Si"}, coords, nil, [3]bool{}); err == nil {
		Te.Error("symbol/coordinate count mismatch should be rejected")
	}
	//pbc without a cell
	if _, err := NewConfiguration([]string{"Si"}, coords, nil, [3]bool{true, false, false}); err == nil {
		Te.Error("periodicity without a cell should be rejected")
	}
	//singular cell
	badcell, _ := v3.NewMatrix([]float64{1, 0, 0, 2, 0, 0, 0, 0, 1})
	if _, err := NewConfiguration([]string{"Si"}, coords, badcell, [3]bool{true, true, true}); err == nil {
		Te.Error("singular cell should be rejected")
	}
	//the builder owns its own copy of the coordinates: writing through
	//the caller's matrix afterwards must not reach the configuration.
	mine, _ := NewConfiguration([]string{"Si"}, coords, nil, [3]bool{})
	coords.Set(0, 0, 99)
	if mine.Coords.At(0, 0) == 99 {
		Te.Error("configuration shares the caller's coordinate matrix")
	}
}

func TestFractional(Te *testing.T) {
	conf := siPair(Te)
	frac, err := conf.Fractional()
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(frac.At(1, 0)-0.25) > 1e-10 {
		Te.Errorf("fractional coordinate: got %v, want 0.25", frac.At(1, 0))
	}
}

func TestRattle(Te *testing.T) {
	conf := siPair(Te)
	before := conf.Coords.Copy()
	//stdev 0 is the identity, down to the bit.
	if err := Rattle(conf, 0, rand.NewSource(1)); err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < conf.Len(); i++ {
		for k := 0; k < 3; k++ {
			if conf.Coords.At(i, k) != before.At(i, k) {
				Te.Fatal("rattle with stdev 0 must not move anything")
			}
		}
	}
	//same seed, same perturbation
	confA, confB := siPair(Te), siPair(Te)
	if err := Rattle(confA, 0.1, rand.NewSource(33)); err != nil {
		Te.Fatal(err)
	}
	if err := Rattle(confB, 0.1, rand.NewSource(33)); err != nil {
		Te.Fatal(err)
	}
	moved := false
	for i := 0; i < confA.Len(); i++ {
		for k := 0; k < 3; k++ {
			if confA.Coords.At(i, k) != confB.Coords.At(i, k) {
				Te.Fatal("same seed should give the same rattle")
			}
			if confA.Coords.At(i, k) != before.At(i, k) {
				moved = true
			}
		}
	}
	if !moved {
		Te.Error("rattle with stdev 0.1 should move the atoms")
	}
	//bad inputs
	if err := Rattle(conf, -0.1, rand.NewSource(1)); err == nil {
		Te.Error("negative stdev should be rejected")
	}
	if err := Rattle(conf, 0.1, nil); err == nil {
		Te.Error("nil source should be rejected")
	}
}

func TestCacheInvalidation(Te *testing.T) {
	conf := siPair(Te)
	res := &Result{Energy: -7.5, Forces: v3.Zeros(2)}
	conf.SetCached(res)
	if conf.Cached() == nil {
		Te.Fatal("cache should hold")
	}
	if err := Rattle(conf, 0.05, rand.NewSource(2)); err != nil {
		Te.Fatal(err)
	}
	if conf.Cached() != nil {
		Te.Error("rattle must invalidate the cached result")
	}
	conf.SetCached(res)
	conf.SetCoords(conf.Coords.Copy())
	if conf.Cached() != nil {
		Te.Error("SetCoords must invalidate the cached result")
	}
	conf.SetCached(res)
	conf.SetCell(conf.Cell.Copy())
	if conf.Cached() != nil {
		Te.Error("SetCell must invalidate the cached result")
	}
}

func TestXYZRoundTrip(Te *testing.T) {
	conf := siPair(Te)
	name := filepath.Join(Te.TempDir(), "si.xyz")
	if err := XYZWrite(name, conf, "silicon pair"); err != nil {
		Te.Fatal(err)
	}
	back, err := XYZRead(name)
	if err != nil {
		Te.Fatal(err)
	}
	if back.Len() != conf.Len() {
		Te.Fatalf("atom count: %d vs %d", back.Len(), conf.Len())
	}
	if back.Atom(1).Symbol != "Si" {
		Te.Errorf("symbol lost: %v", back.Atom(1).Symbol)
	}
	if math.Abs(back.Coords.At(1, 2)-1.3577) > 1e-5 {
		Te.Errorf("coordinate off: %v", back.Coords.At(1, 2))
	}
	if !back.Periodic() {
		Te.Fatal("lattice lost on the round trip")
	}
	if math.Abs(back.Cell.At(0, 0)-5.431) > 1e-5 {
		Te.Errorf("cell off: %v", back.Cell.At(0, 0))
	}
}

func TestResultHelpers(Te *testing.T) {
	stress := v3.Dense2Matrix(mat.NewDense(3, 3, []float64{
		1, 6, 5,
		6, 2, 4,
		5, 4, 3,
	}))
	res := &Result{Energy: -16, Forces: v3.Zeros(2), Stress: stress}
	voigt := res.Voigt()
	for i, want := range []float64{1, 2, 3, 4, 5, 6} {
		if voigt[i] != want {
			Te.Errorf("voigt[%d]: got %v, want %v", i, voigt[i], want)
		}
	}
	if res.PerAtom(8) != -2 {
		Te.Errorf("per-atom energy: got %v", res.PerAtom(8))
	}
	cp := res.Copy()
	cp.Forces.Set(0, 0, 99)
	if res.Forces.At(0, 0) == 99 {
		Te.Error("Copy should not share the forces")
	}
}

func TestErrors(Te *testing.T) {
	err := NewOracleEvaluation(fmt.Errorf("socket closed"), "test")
	var target Error = err
	deco := target.Decorate("caller2")
	if len(deco) == 0 {
		Te.Error("decoration lost")
	}
	if err.Unwrap() == nil {
		Te.Error("wrapped error lost")
	}
	nde := NewNumericalDivergence(42, "went to infinity")
	if nde.LastStep != 42 {
		Te.Errorf("last step: got %d", nde.LastStep)
	}
}

func TestUnits(Te *testing.T) {
	if Celsius2Kelvin(26.85) != 300 {
		Te.Errorf("celsius conversion: got %v", Celsius2Kelvin(26.85))
	}
	if math.Abs(GPa2eVA3*EVA32GPa-1) > 1e-12 {
		Te.Error("pressure conversion factors are not inverses")
	}
	//1 fs in internal time units, from sqrt(amu A^2/eV)
	if math.Abs(FS-0.0982269475) > 1e-9 {
		Te.Errorf("time conversion: %v", FS)
	}
}
