/*
 * lj.go, part of gomatter.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package oracle

import (
	"context"
	"math"

	matter "github.com/rmera/gomatter"
	v3 "github.com/rmera/gomatter/v3"
	"gonum.org/v1/gonum/mat"
)

//LJ is a single-component Lennard-Jones potential with minimum-image
//periodic boundary conditions. Epsilon is in eV, Sigma and Cutoff in
//Angstrom. A non-positive Cutoff means all minimum-image pairs
//interact; with a cutoff, the potential is shifted so it vanishes at
//the cutoff.
type LJ struct {
	Epsilon float64
	Sigma   float64
	Cutoff  float64
}

//NewLJ returns a Lennard-Jones oracle with the given well depth (eV)
//and size parameter (A).
func NewLJ(epsilon, sigma, cutoff float64) *LJ {
	return &LJ{Epsilon: epsilon, Sigma: sigma, Cutoff: cutoff}
}

//pairEnergy returns U(r2) and U'(r)/r for a squared distance, both
//already including the cutoff shift.
func (L *LJ) pair(r2 float64) (u, dudrOverR float64) {
	s2 := L.Sigma * L.Sigma / r2
	s6 := s2 * s2 * s2
	u = 4 * L.Epsilon * (s6*s6 - s6)
	if L.Cutoff > 0 {
		sc2 := L.Sigma * L.Sigma / (L.Cutoff * L.Cutoff)
		sc6 := sc2 * sc2 * sc2
		u -= 4 * L.Epsilon * (sc6*sc6 - sc6)
	}
	//dU/dr * 1/r
	dudrOverR = 4 * L.Epsilon * (-12*s6*s6 + 6*s6) / r2
	return u, dudrOverR
}

//minimumImage returns the Cartesian displacement from atom i to atom j
//under the minimum-image convention, given the fractional displacement
//and the cell. For non-periodic axes the raw displacement is kept.
func minimumImage(df [3]float64, pbc [3]bool, cell *v3.Matrix) [3]float64 {
	for k := 0; k < 3; k++ {
		if pbc[k] {
			df[k] -= math.Round(df[k])
		}
	}
	var d [3]float64
	for k := 0; k < 3; k++ {
		d[k] = df[0]*cell.At(0, k) + df[1]*cell.At(1, k) + df[2]*cell.At(2, k)
	}
	return d
}

//Evaluate computes energy, forces and (for periodic structures) the
//virial stress of the configuration. It implements matter.Oracle.
func (L *LJ) Evaluate(ctx context.Context, conf *matter.Configuration) (*matter.Result, error) {
	return L.evaluate(ctx, conf, false)
}

//EvaluateBatch evaluates each configuration independently. The pair
//loop runs in the opposite order from Evaluate, so results can differ
//from the single-call path by floating-point reduction noise, as the
//oracle contract allows.
func (L *LJ) EvaluateBatch(ctx context.Context, confs []*matter.Configuration) ([]*matter.Result, error) {
	ret := make([]*matter.Result, len(confs))
	for i, conf := range confs {
		res, err := L.evaluate(ctx, conf, true)
		if err != nil {
			return nil, err
		}
		ret[i] = res
	}
	return ret, nil
}

func (L *LJ) evaluate(ctx context.Context, conf *matter.Configuration, reversed bool) (*matter.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, matter.NewOracleEvaluation(err, "oracle.LJ.Evaluate")
	}
	if err := conf.Corrupted(); err != nil {
		return nil, matter.NewOracleEvaluation(err, "oracle.LJ.Evaluate")
	}
	n := conf.Len()
	forces := v3.Zeros(n)
	var energy float64
	var stress [3][3]float64
	periodic := conf.Periodic()
	var frac *v3.Matrix
	var err error
	if periodic {
		frac, err = conf.Fractional()
		if err != nil {
			return nil, matter.NewOracleEvaluation(err, "oracle.LJ.Evaluate")
		}
	}
	cut2 := L.Cutoff * L.Cutoff
	//pair indices in forward or reversed order. The physics is
	//identical either way; only the summation order, and hence the
	//floating-point rounding, changes.
	for a := 0; a < n-1; a++ {
		if err := ctx.Err(); err != nil {
			return nil, matter.NewOracleEvaluation(err, "oracle.LJ.Evaluate")
		}
		i := a
		if reversed {
			i = n - 2 - a
		}
		for b := i + 1; b < n; b++ {
			j := b
			if reversed {
				j = n - 1 + i + 1 - b
			}
			var d [3]float64
			if periodic {
				df := [3]float64{
					frac.At(j, 0) - frac.At(i, 0),
					frac.At(j, 1) - frac.At(i, 1),
					frac.At(j, 2) - frac.At(i, 2),
				}
				d = minimumImage(df, conf.PBC, conf.Cell)
			} else {
				for k := 0; k < 3; k++ {
					d[k] = conf.Coords.At(j, k) - conf.Coords.At(i, k)
				}
			}
			r2 := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
			if r2 < 1e-12 {
				return nil, matter.NewOracleEvaluation(
					matter.NewInvalidStructure("atoms %d and %d overlap", i, j), "oracle.LJ.Evaluate")
			}
			if L.Cutoff > 0 && r2 > cut2 {
				continue
			}
			u, fr := L.pair(r2)
			energy += u
			//F_i = -dU/dr * rhat pointing from j to i; d goes i->j.
			for k := 0; k < 3; k++ {
				forces.Set(i, k, forces.At(i, k)+fr*d[k])
				forces.Set(j, k, forces.At(j, k)-fr*d[k])
			}
			if periodic {
				for ka := 0; ka < 3; ka++ {
					for kb := 0; kb < 3; kb++ {
						stress[ka][kb] += fr * d[ka] * d[kb]
					}
				}
			}
		}
	}
	res := &matter.Result{Energy: energy, Forces: forces}
	if periodic {
		vol := conf.Volume()
		s := mat.NewDense(3, 3, nil)
		for ka := 0; ka < 3; ka++ {
			for kb := 0; kb < 3; kb++ {
				s.Set(ka, kb, stress[ka][kb]/vol)
			}
		}
		res.Stress = v3.Dense2Matrix(s)
	}
	return res, nil
}
