/*
 * symmetry.go, part of gomatter.
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

package relax

import (
	matter "github.com/rmera/gomatter"
	"github.com/rmera/gomatter/spacegroup"
	v3 "github.com/rmera/gomatter/v3"
	"gonum.org/v1/gonum/mat"
)

//symmetrizer projects forces and stress onto the subspace invariant
//under a space group, so a relaxation started from a symmetric
//structure stays on its Wyckoff positions. The atom permutations are
//fixed at setup, where the structure is also verified to actually
//satisfy the group; the Cartesian rotations are rebuilt from the
//current cell, since cell filters deform it.
type symmetrizer struct {
	group *spacegroup.Group
	ops   []spacegroup.Op
	maps  [][]int
}

func newSymmetrizer(g *spacegroup.Group, conf *matter.Configuration, tol float64) (*symmetrizer, error) {
	maps, err := g.Check(conf, tol)
	if err != nil {
		return nil, err
	}
	return &symmetrizer{group: g, ops: g.Operations(), maps: maps}, nil
}

//rotations returns the Cartesian rotation of each operation for the
//given cell: with row-vector coordinates r = f*C, the fractional
//rotation W becomes R = C^-1 W^T C, applied as r' = r*R.
func (S *symmetrizer) rotations(cell *v3.Matrix) ([]*mat.Dense, error) {
	var cinv mat.Dense
	if err := cinv.Inverse(cell); err != nil {
		return nil, matter.NewInvalidStructure("relax: singular cell in symmetrization")
	}
	rots := make([]*mat.Dense, len(S.ops))
	for g, op := range S.ops {
		w := mat.NewDense(3, 3, nil)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				w.Set(i, j, op.W[i][j])
			}
		}
		r := mat.NewDense(3, 3, nil)
		r.Mul(&cinv, w.T())
		r.Mul(r, cell)
		rots[g] = r
	}
	return rots, nil
}

//apply replaces the forces and stress of res with their group
//averages. res is modified in place.
func (S *symmetrizer) apply(conf *matter.Configuration, res *matter.Result) error {
	rots, err := S.rotations(conf.Cell)
	if err != nil {
		return err
	}
	n := conf.Len()
	norm := 1 / float64(len(S.ops))
	sym := mat.NewDense(n, 3, nil)
	for g, rot := range rots {
		var rotated mat.Dense
		rotated.Mul(res.Forces.Dense, rot)
		for i := 0; i < n; i++ {
			j := S.maps[g][i]
			for k := 0; k < 3; k++ {
				sym.Set(j, k, sym.At(j, k)+rotated.At(i, k)*norm)
			}
		}
	}
	res.Forces = v3.Dense2Matrix(sym)
	if res.Stress != nil {
		acc := mat.NewDense(3, 3, nil)
		for _, rot := range rots {
			var t mat.Dense
			t.Mul(rot.T(), res.Stress.Dense)
			t.Mul(&t, rot)
			acc.Add(acc, &t)
		}
		acc.Scale(norm, acc)
		res.Stress = v3.Dense2Matrix(acc)
	}
	return nil
}
