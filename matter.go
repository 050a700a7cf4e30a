/*
 * matter.go, part of gomatter.
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

package matter

import (
	"fmt"
	"math"

	v3 "github.com/rmera/gomatter/v3"
	"gonum.org/v1/gonum/mat"
)

//singularCellTol is the determinant threshold under which a cell is
//considered singular.
const singularCellTol = 1e-10

//Atom contains the per-atom information other than coordinates and
//velocities, which are kept in matrices.
type Atom struct {
	Symbol string
	Mass   float64 //amu
	Tag    int     //for anything the caller might want to keep that is not a float.
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	at := new(Atom)
	*at = *A
	return at
}

//Result is the output of one oracle evaluation: potential energy (eV),
//per-atom forces (eV/A) and stress tensor (eV/A^3). Stress is nil for
//non-periodic structures.
type Result struct {
	Energy float64
	Forces *v3.Matrix //Nx3
	Stress *v3.Matrix //3x3, or nil
}

//Copy returns a deep copy of the result.
func (R *Result) Copy() *Result {
	if R == nil {
		return nil
	}
	ret := &Result{Energy: R.Energy}
	if R.Forces != nil {
		ret.Forces = R.Forces.Copy()
	}
	if R.Stress != nil {
		ret.Stress = R.Stress.Copy()
	}
	return ret
}

//PerAtom returns the energy per atom for a structure of n atoms.
func (R *Result) PerAtom(n int) float64 {
	if n <= 0 {
		panic("PerAtom: non-positive atom count")
	}
	return R.Energy / float64(n)
}

//Voigt returns the stress tensor in 6-component Voigt order
//(xx, yy, zz, yz, xz, xy). Panics on a nil stress.
func (R *Result) Voigt() [6]float64 {
	s := R.Stress
	if s == nil {
		panic("Voigt: nil stress")
	}
	return [6]float64{s.At(0, 0), s.At(1, 1), s.At(2, 2), s.At(1, 2), s.At(0, 2), s.At(0, 1)}
}

//Configuration is the central structure of goMatter: an ordered set of
//atoms with Cartesian coordinates, an optional periodic cell, and,
//possibly, velocities and a cached oracle result.
//
//Atoms, Coords, Vels and Cell are exported so the numerical engines can
//work on them without copies, but whoever mutates Coords or Cell directly
//must call InvalidateCache afterwards; the SetCoords and SetCell helpers
//do it for you. The cached result, when present, always corresponds to
//the current coordinates and cell.
type Configuration struct {
	Atoms  []*Atom
	Coords *v3.Matrix //Nx3 Cartesian, Angstrom
	Vels   *v3.Matrix //Nx3, A per internal time unit. nil until assigned.
	Cell   *v3.Matrix //3x3, rows are lattice vectors. nil for non-periodic structures.
	PBC    [3]bool
	cached *Result
}

//NewConfiguration is the free-form atoms builder: it assembles a
//Configuration from explicit species and Cartesian coordinates, plus an
//optional cell and periodicity flags. There is no symmetry expansion.
//Masses are filled from the symbol table when known.
func NewConfiguration(symbols []string, coords *v3.Matrix, cell *v3.Matrix, pbc [3]bool) (*Configuration, error) {
	if coords == nil {
		return nil, NewInvalidStructure("nil coordinates")
	}
	if len(symbols) != coords.NVecs() {
		return nil, NewInvalidStructure("%d species given for %d coordinates", len(symbols), coords.NVecs())
	}
	if cell != nil {
		if r, c := cell.Dims(); r != 3 || c != 3 {
			return nil, NewInvalidStructure("cell must be a 3x3 matrix")
		}
		if math.Abs(v3.Det(cell)) < singularCellTol {
			return nil, NewInvalidStructure("singular cell (zero determinant)")
		}
	}
	if cell == nil && (pbc[0] || pbc[1] || pbc[2]) {
		return nil, NewInvalidStructure("periodic flags set without a cell")
	}
	conf := new(Configuration)
	conf.Atoms = make([]*Atom, len(symbols))
	for i, s := range symbols {
		m := symbolMass[s] //a zero mass is caught by Masses(), if it ever matters
		conf.Atoms[i] = &Atom{Symbol: s, Mass: m}
	}
	conf.Coords = coords.Copy() //the caller keeps its matrix, the cache invariant stays ours
	if cell != nil {
		conf.Cell = cell.Copy()
	}
	conf.PBC = pbc
	return conf, nil
}

//Len returns the number of atoms in the configuration.
func (C *Configuration) Len() int {
	return len(C.Atoms)
}

//Atom returns the Atom corresponding to the index i. Panics if out of range.
func (C *Configuration) Atom(i int) *Atom {
	if i >= C.Len() {
		panic("Configuration: requested Atom out of bounds")
	}
	return C.Atoms[i]
}

//Symbols returns the ordered element symbols of the configuration.
func (C *Configuration) Symbols() []string {
	ret := make([]string, C.Len())
	for i, at := range C.Atoms {
		ret[i] = at.Symbol
	}
	return ret
}

//Masses returns a slice with the masses of all atoms, in amu, and an
//error if any of them has not been obtained.
func (C *Configuration) Masses() ([]float64, error) {
	mass := make([]float64, C.Len())
	for i := 0; i < C.Len(); i++ {
		at := C.Atom(i)
		if at.Mass <= 0 {
			return nil, NewInvalidStructure("no mass for atom %d (%s)", i, at.Symbol)
		}
		mass[i] = at.Mass
	}
	return mass, nil
}

//Periodic returns true if the configuration has a cell and at least one
//periodic direction.
func (C *Configuration) Periodic() bool {
	return C.Cell != nil && (C.PBC[0] || C.PBC[1] || C.PBC[2])
}

//Volume returns the cell volume in A^3. Panics on a non-periodic
//configuration, as a volume is meaningless there.
func (C *Configuration) Volume() float64 {
	if C.Cell == nil {
		panic("Configuration: Volume requested without a cell")
	}
	return math.Abs(v3.Det(C.Cell))
}

//Fractional returns the fractional (cell-relative) coordinates of the
//configuration as a new matrix. It returns an error on a nil or singular
//cell.
func (C *Configuration) Fractional() (*v3.Matrix, error) {
	if C.Cell == nil {
		return nil, NewInvalidStructure("fractional coordinates requested without a cell")
	}
	var inv mat.Dense
	if err := inv.Inverse(C.Cell.Dense); err != nil {
		return nil, NewInvalidStructure("singular cell: %v", err)
	}
	frac := v3.Zeros(C.Len())
	frac.Dense.Mul(C.Coords.Dense, &inv)
	return frac, nil
}

//Copy returns a deep copy of the configuration, including any velocities
//and cached result.
func (C *Configuration) Copy() *Configuration {
	if err := C.Corrupted(); err != nil {
		panic(err.Error()) //copying a corrupted Configuration means the program is wrong.
	}
	conf := new(Configuration)
	conf.Atoms = make([]*Atom, C.Len())
	for i, at := range C.Atoms {
		conf.Atoms[i] = at.Copy()
	}
	conf.Coords = C.Coords.Copy()
	if C.Vels != nil {
		conf.Vels = C.Vels.Copy()
	}
	if C.Cell != nil {
		conf.Cell = C.Cell.Copy()
	}
	conf.PBC = C.PBC
	conf.cached = C.cached.Copy()
	return conf
}

//Corrupted checks that the number of coordinates (and velocities, if
//present) matches the number of atoms, and that the cell, if present, is
//3x3. It returns an error describing the problem, or nil.
func (C *Configuration) Corrupted() error {
	if C.Coords == nil {
		return NewInvalidStructure("nil coordinates")
	}
	if C.Len() != C.Coords.NVecs() {
		return NewInvalidStructure("inconsistent atoms/coordinates: %d vs %d", C.Len(), C.Coords.NVecs())
	}
	if C.Vels != nil && C.Vels.NVecs() != C.Len() {
		return NewInvalidStructure("inconsistent atoms/velocities: %d vs %d", C.Len(), C.Vels.NVecs())
	}
	if C.Cell != nil {
		if r, c := C.Cell.Dims(); r != 3 || c != 3 {
			return NewInvalidStructure("cell is %dx%d, not 3x3", r, c)
		}
	}
	return nil
}

//SetCoords copies the given coordinates over the current ones and
//invalidates the cached result. The given matrix is not retained.
func (C *Configuration) SetCoords(coords *v3.Matrix) {
	if coords.NVecs() != C.Len() {
		panic(fmt.Sprintf("Configuration: wrong number of coordinates (%d)", coords.NVecs()))
	}
	C.Coords.Dense.Copy(coords.Dense)
	C.InvalidateCache()
}

//SetCell copies the given 3x3 cell over the current one and invalidates
//the cached result.
func (C *Configuration) SetCell(cell *v3.Matrix) {
	if r, c := cell.Dims(); r != 3 || c != 3 {
		panic("Configuration: cell must be 3x3")
	}
	if C.Cell == nil {
		C.Cell = v3.Zeros(3)
	}
	C.Cell.Dense.Copy(cell.Dense)
	C.InvalidateCache()
}

//InvalidateCache drops the cached oracle result. It must be called after
//any direct mutation of Coords or Cell.
func (C *Configuration) InvalidateCache() {
	C.cached = nil
}

//Cached returns the cached oracle result for the current coordinates and
//cell, or nil if there is none.
func (C *Configuration) Cached() *Result {
	return C.cached
}

//SetCached stores an oracle result for the current coordinates and cell.
//The caller asserts that res was computed for the configuration exactly
//as it is now.
func (C *Configuration) SetCached(res *Result) {
	C.cached = res
}
