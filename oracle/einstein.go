/*
 * einstein.go, part of gomatter.
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

	matter "github.com/rmera/gomatter"
	v3 "github.com/rmera/gomatter/v3"
	"gonum.org/v1/gonum/mat"
)

//Einstein is an Einstein crystal: each atom is tethered to a reference
//site by an independent harmonic spring, E = (k/2) Sum |r_i - r0_i|^2.
//The model is exactly solvable, so its minima, frequencies and thermal
//averages are known in closed form; the relaxation and dynamics test
//suites lean on that.
type Einstein struct {
	K   float64    //spring constant, eV/A^2
	Ref *v3.Matrix //Nx3 reference sites
}

//NewEinstein returns an Einstein-crystal oracle tethering atoms to the
//given reference sites with spring constant k (eV/A^2). The reference
//is copied.
func NewEinstein(k float64, ref *v3.Matrix) *Einstein {
	return &Einstein{K: k, Ref: ref.Copy()}
}

//Evaluate implements matter.Oracle. The stress of a periodic
//configuration is zero: the springs do not couple to the cell.
func (E *Einstein) Evaluate(ctx context.Context, conf *matter.Configuration) (*matter.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, matter.NewOracleEvaluation(err, "oracle.Einstein.Evaluate")
	}
	if err := conf.Corrupted(); err != nil {
		return nil, matter.NewOracleEvaluation(err, "oracle.Einstein.Evaluate")
	}
	n := conf.Len()
	if E.Ref.NVecs() != n {
		return nil, matter.NewOracleEvaluation(
			matter.NewInvalidStructure("einstein crystal has %d sites but the configuration has %d atoms",
				E.Ref.NVecs(), n), "oracle.Einstein.Evaluate")
	}
	forces := v3.Zeros(n)
	var energy float64
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			d := conf.Coords.At(i, k) - E.Ref.At(i, k)
			energy += 0.5 * E.K * d * d
			forces.Set(i, k, -E.K*d)
		}
	}
	res := &matter.Result{Energy: energy, Forces: forces}
	if conf.Periodic() {
		res.Stress = v3.Dense2Matrix(mat.NewDense(3, 3, nil))
	}
	return res, nil
}

//EvaluateBatch evaluates each configuration with the single-call path;
//for this oracle the two paths are bit-identical.
func (E *Einstein) EvaluateBatch(ctx context.Context, confs []*matter.Configuration) ([]*matter.Result, error) {
	ret := make([]*matter.Result, len(confs))
	for i, conf := range confs {
		res, err := E.Evaluate(ctx, conf)
		if err != nil {
			return nil, err
		}
		ret[i] = res
	}
	return ret, nil
}
