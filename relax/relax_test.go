/*
 * relax_test.go, part of gomatter.
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

package relax

import (
	"context"
	"fmt"
	"math"
	"testing"

	matter "github.com/rmera/gomatter"
	"github.com/rmera/gomatter/oracle"
	"github.com/rmera/gomatter/spacegroup"
	v3 "github.com/rmera/gomatter/v3"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

//an Einstein crystal with displaced atoms: the minimum is the reference
//sites and the minimum energy is zero, exactly.
func displacedEinstein(Te *testing.T, seed uint64) (*matter.Configuration, *oracle.Einstein) {
	ref, err := v3.NewMatrix([]float64{0, 0, 0, 2.5, 0, 0, 0, 2.5, 0, 0, 0, 2.5})
	if err != nil {
		Te.Fatal(err)
	}
	conf, err := matter.NewConfiguration([]string{"Si", "Si", "Si", "Si"}, ref.Copy(), nil, [3]bool{})
	if err != nil {
		Te.Fatal(err)
	}
	if err := matter.Rattle(conf, 0.3, rand.NewSource(seed)); err != nil {
		Te.Fatal(err)
	}
	return conf, oracle.NewEinstein(4.0, ref)
}

func argonFCC(Te *testing.T, a float64) *matter.Configuration {
	fracs := [][3]float64{{0, 0, 0}, {0, 0.5, 0.5}, {0.5, 0, 0.5}, {0.5, 0.5, 0}}
	data := make([]float64, 0, 12)
	symbols := make([]string, 0, 4)
	for _, f := range fracs {
		data = append(data, f[0]*a, f[1]*a, f[2]*a)
		symbols = append(symbols, "Ar")
	}
	coords, err := v3.NewMatrix(data)
	if err != nil {
		Te.Fatal(err)
	}
	cell, err := v3.NewMatrix([]float64{a, 0, 0, 0, a, 0, 0, 0, a})
	if err != nil {
		Te.Fatal(err)
	}
	conf, err := matter.NewConfiguration(symbols, coords, cell, [3]bool{true, true, true})
	if err != nil {
		Te.Fatal(err)
	}
	return conf
}

func TestBFGSEinstein(Te *testing.T) {
	conf, ein := displacedEinstein(Te, 1)
	rep, err := Run(context.Background(), ein, conf, &Options{Fmax: 1e-4})
	if err != nil {
		Te.Fatal(err)
	}
	if rep.Status != Converged {
		Te.Fatalf("status %v after %d steps", rep.Status, rep.Steps)
	}
	final := rep.Energies[len(rep.Energies)-1]
	if final > 1e-8 {
		Te.Errorf("minimum energy should be ~0, got %v", final)
	}
	for i := 0; i < conf.Len(); i++ {
		d := math.Abs(conf.Coords.At(i, 1) - ein.Ref.At(i, 1))
		if d > 1e-3 {
			Te.Errorf("atom %d is %v A off its site", i, d)
		}
	}
	fmt.Println("bfgs converged in", rep.Steps, "steps")
}

func TestFIREEinstein(Te *testing.T) {
	conf, ein := displacedEinstein(Te, 2)
	rep, err := Run(context.Background(), ein, conf, &Options{Algorithm: FIRE, Fmax: 1e-4, MaxSteps: 2000})
	if err != nil {
		Te.Fatal(err)
	}
	if rep.Status != Converged {
		Te.Fatalf("status %v after %d steps", rep.Status, rep.Steps)
	}
	first := rep.Energies[0]
	final := rep.Energies[len(rep.Energies)-1]
	if final >= first {
		Te.Errorf("energy did not go down: %v -> %v", first, final)
	}
	//with the uphill reset, no accepted state ever sits above the
	//starting one.
	if final > 1e-8 {
		Te.Errorf("minimum energy should be ~0, got %v", final)
	}
}

//On a spring stiff enough that the starting time step overshoots
//badly, the optimizer rejects and reverts many times. The energy of
//the accepted point must never rise, not even right after a revert.
func TestFIREAcceptedEnergyNeverRises(Te *testing.T) {
	const k = 1200.0
	opt := newFIRE(0.2)
	dof := []float64{0.1, 0.02, -0.05}
	f := make([]float64, 3)
	accepted := math.Inf(1)
	for s := 0; s < 400; s++ {
		e := 0.0
		for i, x := range dof {
			e += 0.5 * k * x * x
			f[i] = -k * x
		}
		dof = opt.step(dof, f, e)
		if opt.lastE > accepted {
			Te.Fatalf("accepted energy rose at step %d: %v -> %v", s, accepted, opt.lastE)
		}
		accepted = opt.lastE
	}
	if accepted > 1e-6 {
		Te.Errorf("did not descend: %v", accepted)
	}
}

func TestMaxStepsIsAStatus(Te *testing.T) {
	conf, ein := displacedEinstein(Te, 3)
	rep, err := Run(context.Background(), ein, conf, &Options{Fmax: 1e-12, MaxSteps: 2})
	if err != nil {
		Te.Fatalf("running out of steps must not be an error, got %v", err)
	}
	if rep.Status != MaxStepsExceeded {
		Te.Errorf("status: got %v, want MaxStepsExceeded", rep.Status)
	}
	if rep.Err != nil {
		Te.Errorf("report should carry no error, got %v", rep.Err)
	}
}

type brokenOracle struct{}

func (brokenOracle) Evaluate(ctx context.Context, conf *matter.Configuration) (*matter.Result, error) {
	return nil, matter.NewOracleEvaluation(fmt.Errorf("model blew a fuse"), "brokenOracle")
}

func (b brokenOracle) EvaluateBatch(ctx context.Context, confs []*matter.Configuration) ([]*matter.Result, error) {
	return nil, matter.NewOracleEvaluation(fmt.Errorf("model blew a fuse"), "brokenOracle")
}

//an oracle that never returns stress, to probe the filter check.
type stressless struct{}

func (stressless) Evaluate(ctx context.Context, conf *matter.Configuration) (*matter.Result, error) {
	return &matter.Result{Energy: 0, Forces: v3.Zeros(conf.Len())}, nil
}

func (s stressless) EvaluateBatch(ctx context.Context, confs []*matter.Configuration) ([]*matter.Result, error) {
	ret := make([]*matter.Result, len(confs))
	for i, c := range confs {
		ret[i], _ = s.Evaluate(ctx, c)
	}
	return ret, nil
}

func TestOracleFailure(Te *testing.T) {
	conf, _ := displacedEinstein(Te, 4)
	rep, err := Run(context.Background(), brokenOracle{}, conf, nil)
	if err == nil || rep.Status != Failed {
		Te.Fatalf("expected a Failed relaxation, got %v, %v", rep.Status, err)
	}
	if _, ok := err.(*matter.OracleEvaluationError); !ok {
		Te.Errorf("expected OracleEvaluationError, got %T", err)
	}
}

func TestUnsupportedFilters(Te *testing.T) {
	conf, ein := displacedEinstein(Te, 5)
	rep, err := Run(context.Background(), ein, conf, &Options{Filter: FilterFrechet})
	if err == nil || rep.Status != Failed {
		Te.Fatal("cell filter on a non-periodic structure should fail")
	}
	if _, ok := err.(*matter.UnsupportedFilterError); !ok {
		Te.Errorf("expected UnsupportedFilterError, got %T", err)
	}
	conf2, ein2 := displacedEinstein(Te, 6)
	if rep, err := Run(context.Background(), ein2, conf2, &Options{Filter: "banana"}); err == nil || rep.Status != Failed {
		Te.Error("unknown filter name should fail")
	}
	//a periodic structure, but an oracle with no stress to offer.
	ar := argonFCC(Te, 5.3)
	rep, err = Run(context.Background(), stressless{}, ar, &Options{Filter: FilterUnitCell})
	if err == nil || rep.Status != Failed {
		Te.Fatal("cell filter without stress should fail")
	}
	if _, ok := err.(*matter.UnsupportedFilterError); !ok {
		Te.Errorf("expected UnsupportedFilterError, got %T", err)
	}
}

func TestCancellation(Te *testing.T) {
	conf, ein := displacedEinstein(Te, 7)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := Run(ctx, ein, conf, nil)
	if err == nil || rep.Status != Failed {
		Te.Fatal("a canceled context should abort the relaxation")
	}
}

//variable-cell relaxation of LJ argon from a stretched cell: both
//filters should land on a stress-free cell, shrinking it on the way.
func TestCellRelaxation(Te *testing.T) {
	for _, filt := range []string{FilterUnitCell, FilterFrechet} {
		conf := argonFCC(Te, 5.8)
		v0 := conf.Volume()
		lj := oracle.NewLJ(0.0104, 3.4, 0)
		rep, err := Run(context.Background(), lj, conf, &Options{Filter: filt, MaxSteps: 500})
		if err != nil {
			Te.Fatalf("%s: %v", filt, err)
		}
		if rep.Status != Converged {
			Te.Fatalf("%s: status %v after %d steps", filt, rep.Status, rep.Steps)
		}
		if conf.Volume() >= v0 {
			Te.Errorf("%s: stretched cell did not shrink: %v -> %v", filt, v0, conf.Volume())
		}
		//converged means the cell rows of the generalized force are
		//below Fmax too, so the residual stress is small.
		s := rep.Last.Stress
		for i := 0; i < 3; i++ {
			if math.Abs(s.At(i, i)) > 0.01 {
				Te.Errorf("%s: residual stress %v too large", filt, s.At(i, i))
			}
		}
		fmt.Println(filt, "converged in", rep.Steps, "steps, a =", conf.Cell.At(0, 0))
	}
}

//silicon diamond under the full machinery: symmetry constraint plus
//exponential cell filter. Every atom sits on a special position, so
//the symmetrized forces vanish identically and only the cell breathes.
func TestSiliconDiamond(Te *testing.T) {
	group, err := spacegroup.Lookup(227)
	if err != nil {
		Te.Fatal(err)
	}
	conf, err := spacegroup.Build(&spacegroup.Spec{
		Number: 227,
		A:      5.9, B: 5.9, C: 5.9,
		Alpha: 90, Beta: 90, Gamma: 90,
		Basis: []spacegroup.Site{{Symbol: "Si", Frac: [3]float64{0, 0, 0}}},
	})
	if err != nil {
		Te.Fatal(err)
	}
	lj := oracle.NewLJ(0.5, 2.0, 0)
	rep, err := Run(context.Background(), lj, conf, &Options{
		Filter: FilterFrechet, Group: group, MaxSteps: 500,
	})
	if err != nil {
		Te.Fatal(err)
	}
	if rep.Status != Converged {
		Te.Fatalf("status %v after %d steps", rep.Status, rep.Steps)
	}
	//the group must survive the relaxation.
	if _, err := group.Check(conf, 1e-4); err != nil {
		Te.Errorf("relaxation broke the symmetry: %v", err)
	}
	//and the cell must stay cubic.
	c := conf.Cell
	if math.Abs(c.At(0, 0)-c.At(1, 1)) > 1e-6 || math.Abs(c.At(1, 1)-c.At(2, 2)) > 1e-6 {
		Te.Error("cubic cell lost its shape")
	}
	fmt.Println("diamond relaxed to a =", c.At(0, 0), "in", rep.Steps, "steps")
}

//a rattled structure relaxed under the symmetry constraint of the
//group it no longer satisfies must be refused at setup.
func TestSymmetryRefusesBrokenInput(Te *testing.T) {
	group, err := spacegroup.Lookup(227)
	if err != nil {
		Te.Fatal(err)
	}
	conf, err := spacegroup.Build(&spacegroup.Spec{
		Number: 227,
		A:      5.43, B: 5.43, C: 5.43,
		Alpha: 90, Beta: 90, Gamma: 90,
		Basis: []spacegroup.Site{{Symbol: "Si", Frac: [3]float64{0, 0, 0}}},
	})
	if err != nil {
		Te.Fatal(err)
	}
	if err := matter.Rattle(conf, 0.2, rand.NewSource(11)); err != nil {
		Te.Fatal(err)
	}
	rep, err := Run(context.Background(), oracle.NewLJ(0.5, 2.0, 0), conf, &Options{Group: group})
	if err == nil || rep.Status != Failed {
		Te.Fatal("rattled structure should be refused by the symmetry constraint")
	}
	if _, ok := err.(*matter.InvalidSymmetryError); !ok {
		Te.Errorf("expected InvalidSymmetryError, got %T", err)
	}
}

func TestMany(Te *testing.T) {
	confs := make([]*matter.Configuration, 4)
	var ein *oracle.Einstein
	for i := range confs {
		confs[i], ein = displacedEinstein(Te, uint64(20+i))
	}
	reports := Many(context.Background(), ein, confs, &Options{Fmax: 1e-4}, 2)
	for i, rep := range reports {
		if rep == nil || rep.Status != Converged {
			Te.Errorf("structure %d did not converge: %+v", i, rep)
		}
	}
}

func TestExpm(Te *testing.T) {
	zero := mat.NewDense(3, 3, nil)
	if d := mat.Norm(expmDiff(expm(zero), eye(3)), 1); d > 1e-14 {
		Te.Errorf("expm(0) != I, off by %v", d)
	}
	diag := mat.NewDense(3, 3, []float64{1, 0, 0, 0, -2, 0, 0, 0, 0.5})
	e := expm(diag)
	for i, want := range []float64{math.E, math.Exp(-2), math.Exp(0.5)} {
		if math.Abs(e.At(i, i)-want) > 1e-12 {
			Te.Errorf("expm diagonal %d: got %v, want %v", i, e.At(i, i), want)
		}
	}
	//the Frechet derivative at zero is the direction itself.
	dir := mat.NewDense(3, 3, []float64{0, 1, 0, 0, 0, 0, 2, 0, 0})
	der := expmFrechet(zero, dir)
	if d := mat.Norm(expmDiff(der, dir), 1); d > 1e-12 {
		Te.Errorf("frechet derivative at 0 should be the direction, off by %v", d)
	}
}

func expmDiff(a, b *mat.Dense) *mat.Dense {
	var d mat.Dense
	d.Sub(a, b)
	return &d
}
