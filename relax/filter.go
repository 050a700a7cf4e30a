/*
 * filter.go, part of gomatter.
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

	matter "github.com/rmera/gomatter"
	v3 "github.com/rmera/gomatter/v3"
	"gonum.org/v1/gonum/mat"
)

//A filter maps a Configuration to the vector of degrees of freedom the
//minimizer works on, and back. The positions filter exposes the 3N
//Cartesian coordinates; the cell filters append the degrees of freedom
//of the lattice, so positions and cell relax together. The dof vector
//is organized as rows of 3, and the convergence criterion applies to
//the per-row norm of the generalized forces, cell rows included.
type filter interface {
	//ndof returns the dof count for an n-atom configuration.
	ndof(n int) int
	//pack extracts the dof vector from the configuration.
	pack(conf *matter.Configuration) ([]float64, error)
	//unpack writes the dof vector back into the configuration.
	unpack(conf *matter.Configuration, dof []float64) error
	//forces returns the generalized forces on the dof (-dE/d(dof)) and
	//the objective value (the enthalpy, for cell filters under
	//pressure).
	forces(conf *matter.Configuration, res *matter.Result) ([]float64, float64, error)
	//needsStress reports whether the filter requires the oracle to
	//return a stress tensor.
	needsStress() bool
}

//positionsFilter is the trivial filter: fixed cell, dof = coordinates.
type positionsFilter struct{}

func (positionsFilter) ndof(n int) int    { return 3 * n }
func (positionsFilter) needsStress() bool { return false }

func (positionsFilter) pack(conf *matter.Configuration) ([]float64, error) {
	n := conf.Len()
	dof := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			dof[3*i+k] = conf.Coords.At(i, k)
		}
	}
	return dof, nil
}

func (positionsFilter) unpack(conf *matter.Configuration, dof []float64) error {
	coords, err := v3.NewMatrix(append([]float64{}, dof...))
	if err != nil {
		return err
	}
	conf.SetCoords(coords)
	return nil
}

func (positionsFilter) forces(conf *matter.Configuration, res *matter.Result) ([]float64, float64, error) {
	n := conf.Len()
	f := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			f[3*i+k] = res.Forces.At(i, k)
		}
	}
	return f, res.Energy, nil
}

//cellFilter relaxes positions and cell together. The deformation of
//the cell relative to the starting cell is either the linear
//deformation gradient F itself, or, in exponential form, its matrix
//logarithm u with F = expm(u). The exponential form keeps F positive
//definite for any step the minimizer takes, which is what makes it the
//robust choice for variable-cell relaxations.
//
//The dof layout is 3N coordinates followed by the 9 components of the
//cell block, scaled by factor. Pressure is in eV/A^3 and enters both
//the cell forces and the objective, which becomes the enthalpy
//E + P*V.
type cellFilter struct {
	exp      bool
	pressure float64
	factor   float64
	origCell *mat.Dense //rows are the starting lattice vectors
	logU     *mat.Dense //exponential form only: current log-deformation
}

//newUnitCellFilter relaxes the cell through the linear deformation
//gradient, in the manner of a traditional unit-cell filter.
func newUnitCellFilter(pressure float64, natoms int) *cellFilter {
	return &cellFilter{exp: false, pressure: pressure, factor: float64(natoms)}
}

//newFrechetCellFilter relaxes the cell through the matrix logarithm of
//the deformation gradient, with the gradient of the exponential map
//evaluated exactly (via the Frechet derivative).
func newFrechetCellFilter(pressure float64) *cellFilter {
	return &cellFilter{exp: true, pressure: pressure, factor: 1, logU: mat.NewDense(3, 3, nil)}
}

func (F *cellFilter) ndof(n int) int    { return 3*n + 9 }
func (F *cellFilter) needsStress() bool { return true }

//deformGrad returns the current deformation gradient. In linear form
//it is recovered from the cell, as Fg = (C0^-1 C)^T; in exponential
//form it is expm of the stored log-deformation.
func (F *cellFilter) deformGrad(conf *matter.Configuration) (*mat.Dense, error) {
	if F.origCell == nil {
		F.origCell = mat.DenseCopyOf(conf.Cell)
	}
	if F.exp {
		return expm(F.logU), nil
	}
	var inv mat.Dense
	if err := inv.Inverse(F.origCell); err != nil {
		return nil, matter.NewInvalidStructure("relax: singular reference cell")
	}
	var prod mat.Dense
	prod.Mul(&inv, conf.Cell)
	var fg mat.Dense
	fg.CloneFrom(prod.T())
	return &fg, nil
}

func (F *cellFilter) pack(conf *matter.Configuration) ([]float64, error) {
	fg, err := F.deformGrad(conf)
	if err != nil {
		return nil, err
	}
	var finv mat.Dense
	if err := finv.Inverse(fg); err != nil {
		return nil, matter.NewInvalidStructure("relax: singular deformation gradient")
	}
	n := conf.Len()
	dof := make([]float64, 3*n+9)
	//undeformed positions: r0 = r * F^-T
	var r0 mat.Dense
	r0.Mul(conf.Coords, finv.T())
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			dof[3*i+k] = r0.At(i, k)
		}
	}
	cellBlock := fg
	if F.exp {
		cellBlock = F.logU
	}
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			dof[3*n+3*i+k] = F.factor * cellBlock.At(i, k)
		}
	}
	return dof, nil
}

func (F *cellFilter) unpack(conf *matter.Configuration, dof []float64) error {
	n := conf.Len()
	cellBlock := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			cellBlock.Set(i, k, dof[3*n+3*i+k]/F.factor)
		}
	}
	var fg *mat.Dense
	if F.exp {
		F.logU.CloneFrom(cellBlock)
		fg = expm(F.logU)
	} else {
		fg = cellBlock
	}
	var newCell mat.Dense
	newCell.Mul(F.origCell, fg.T())
	r0 := mat.NewDense(n, 3, append([]float64{}, dof[:3*n]...))
	var r mat.Dense
	r.Mul(r0, fg.T())
	conf.SetCell(v3.Dense2Matrix(&newCell))
	conf.SetCoords(v3.Dense2Matrix(&r))
	return nil
}

func (F *cellFilter) forces(conf *matter.Configuration, res *matter.Result) ([]float64, float64, error) {
	if res.Stress == nil {
		return nil, 0, matter.NewUnsupportedFilter("cell relaxation requires an oracle that returns stress")
	}
	fg, err := F.deformGrad(conf)
	if err != nil {
		return nil, 0, err
	}
	n := conf.Len()
	vol := conf.Volume()
	//virial = -V (sigma + P I), the generalized force conjugate to the
	//deformation gradient.
	virial := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			v := -vol * res.Stress.At(i, k)
			if i == k {
				v -= vol * F.pressure
			}
			virial.Set(i, k, v)
		}
	}
	//atomic forces conjugate to the undeformed positions: f0 = f * Fg
	var f0 mat.Dense
	f0.Mul(res.Forces.Dense, fg)
	//virialTilde = Fg^-1 applied from the left to virial^T, transposed
	//back, as for the linear filter.
	var vt mat.Dense
	if err := vt.Solve(fg, virial.T()); err != nil {
		return nil, 0, matter.NewInvalidStructure("relax: singular deformation gradient")
	}
	var virialT mat.Dense
	virialT.CloneFrom(vt.T())
	dof := make([]float64, 3*n+9)
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			dof[3*i+k] = f0.At(i, k)
		}
	}
	if F.exp {
		//chain rule through the exponential map: the force on u_ij is
		//the Frechet derivative of expm at u along e_ij, contracted
		//with the virial.
		for i := 0; i < 3; i++ {
			for k := 0; k < 3; k++ {
				dir := mat.NewDense(3, 3, nil)
				dir.Set(i, k, 1)
				der := expmFrechet(F.logU, dir)
				var sum float64
				for a := 0; a < 3; a++ {
					for b := 0; b < 3; b++ {
						sum += der.At(a, b) * virialT.At(a, b)
					}
				}
				dof[3*n+3*i+k] = sum / F.factor
			}
		}
	} else {
		for i := 0; i < 3; i++ {
			for k := 0; k < 3; k++ {
				dof[3*n+3*i+k] = virialT.At(i, k) / F.factor
			}
		}
	}
	return dof, res.Energy + F.pressure*vol, nil
}

//expm computes the matrix exponential by scaling and squaring with a
//Taylor series. Fine for the small, well-scaled matrices the cell
//filters produce.
func expm(A *mat.Dense) *mat.Dense {
	n, _ := A.Dims()
	norm := mat.Norm(A, 1)
	s := 0
	for norm > 0.5 {
		norm /= 2
		s++
	}
	scale := math.Pow(2, -float64(s))
	B := mat.NewDense(n, n, nil)
	B.Scale(scale, A)
	X := eye(n)
	term := eye(n)
	for k := 1; k <= 24; k++ {
		var t mat.Dense
		t.Mul(term, B)
		t.Scale(1/float64(k), &t)
		term = &t
		X.Add(X, term)
		if mat.Norm(term, 1) < 1e-18 {
			break
		}
	}
	for i := 0; i < s; i++ {
		var sq mat.Dense
		sq.Mul(X, X)
		X.CloneFrom(&sq)
	}
	return X
}

//expmFrechet returns the directional (Frechet) derivative of expm at A
//along E, read off the upper-right block of expm([[A,E],[0,A]]).
func expmFrechet(A, E *mat.Dense) *mat.Dense {
	n, _ := A.Dims()
	block := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			block.Set(i, j, A.At(i, j))
			block.Set(n+i, n+j, A.At(i, j))
			block.Set(i, n+j, E.At(i, j))
		}
	}
	full := expm(block)
	der := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			der.Set(i, j, full.At(i, n+j))
		}
	}
	return der
}

func eye(n int) *mat.Dense {
	I := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		I.Set(i, i, 1)
	}
	return I
}
