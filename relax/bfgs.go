/*
 * bfgs.go, part of gomatter.
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
	"math"

	"gonum.org/v1/gonum/mat"
)

//a minimizer proposes, from the current dof vector, its generalized
//forces and the objective value, the next dof vector. Implementations
//keep whatever state they need between calls.
type minimizer interface {
	step(dof, f []float64, energy float64) []float64
}

//bfgs is a quasi-Newton minimizer: it maintains an approximate Hessian,
//updated from force differences, and steps along the Newton direction
//with the eigenvalues floored and the per-row displacement clamped to
//maxstep. The initial Hessian is alpha times the identity.
type bfgs struct {
	alpha   float64
	maxstep float64
	h       *mat.SymDense
	r0, f0  []float64
}

func newBFGS(alpha, maxstep float64) *bfgs {
	return &bfgs{alpha: alpha, maxstep: maxstep}
}

func (B *bfgs) step(dof, f []float64, energy float64) []float64 {
	n := len(dof)
	if B.h == nil {
		B.h = mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			B.h.SetSym(i, i, B.alpha)
		}
	}
	B.update(dof, f)
	var eig mat.EigenSym
	if !eig.Factorize(B.h, true) {
		//a failed factorization leaves us with steepest descent.
		return B.fallback(dof, f)
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	//project the forces onto the eigenbasis and divide by |omega|.
	proj := make([]float64, n)
	for k := 0; k < n; k++ {
		var s float64
		for i := 0; i < n; i++ {
			s += vecs.At(i, k) * f[i]
		}
		om := math.Abs(vals[k])
		if om < 1e-10 {
			om = 1e-10
		}
		proj[k] = s / om
	}
	dr := make([]float64, n)
	for i := 0; i < n; i++ {
		var s float64
		for k := 0; k < n; k++ {
			s += vecs.At(i, k) * proj[k]
		}
		dr[i] = s
	}
	clampRows(dr, B.maxstep)
	B.r0 = append([]float64{}, dof...)
	B.f0 = append([]float64{}, f...)
	out := make([]float64, n)
	for i := range out {
		out[i] = dof[i] + dr[i]
	}
	return out
}

//update applies the rank-two BFGS correction from the last step.
func (B *bfgs) update(dof, f []float64) {
	if B.r0 == nil {
		return
	}
	n := len(dof)
	dr := make([]float64, n)
	dg := make([]float64, n)
	var drNorm float64
	for i := 0; i < n; i++ {
		dr[i] = dof[i] - B.r0[i]
		dg[i] = B.f0[i] - f[i] //gradient difference
		drNorm += dr[i] * dr[i]
	}
	if math.Sqrt(drNorm) < 1e-7 {
		return
	}
	var a float64
	for i := 0; i < n; i++ {
		a += dr[i] * dg[i]
	}
	hdr := make([]float64, n)
	var b float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			hdr[i] += B.h.At(i, j) * dr[j]
		}
	}
	for i := 0; i < n; i++ {
		b += dr[i] * hdr[i]
	}
	if math.Abs(a) < 1e-12 || math.Abs(b) < 1e-12 {
		return
	}
	B.h.SymRankOne(B.h, 1/a, mat.NewVecDense(n, dg))
	B.h.SymRankOne(B.h, -1/b, mat.NewVecDense(n, hdr))
}

func (B *bfgs) fallback(dof, f []float64) []float64 {
	n := len(dof)
	dr := make([]float64, n)
	for i := range dr {
		dr[i] = f[i] / B.alpha
	}
	clampRows(dr, B.maxstep)
	out := make([]float64, n)
	for i := range out {
		out[i] = dof[i] + dr[i]
	}
	return out
}

//clampRows rescales the displacement so no 3-component row moves
//further than maxstep.
func clampRows(dr []float64, maxstep float64) {
	var longest float64
	for i := 0; i+2 < len(dr); i += 3 {
		l := math.Sqrt(dr[i]*dr[i] + dr[i+1]*dr[i+1] + dr[i+2]*dr[i+2])
		if l > longest {
			longest = l
		}
	}
	if longest > maxstep {
		s := maxstep / longest
		for i := range dr {
			dr[i] *= s
		}
	}
}
