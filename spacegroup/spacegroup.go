/*
 * spacegroup.go, part of gomatter.
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

/*
Package spacegroup implements the symmetry-aware crystal builder of
goMatter: given a space group (number or Hermann-Mauguin symbol), the six
lattice parameters and a basis of (species, fractional coordinate) pairs,
it expands the basis under the operators of the group and returns a fully
periodic Configuration.

Operators are stored as generator strings in the familiar "x,y,z"
notation of the International Tables, and the full operator list is
recovered by closure plus the lattice centering translations. The table
covers the groups that actually show up in the structures goMatter
targets; anything else is an InvalidSymmetryError, by contract.
*/
package spacegroup

import (
	"fmt"
	"math"
	"strings"

	matter "github.com/rmera/gomatter"
	v3 "github.com/rmera/gomatter/v3"
)

//symprec is the tolerance used to decide that two fractional positions
//are the same site.
const symprec = 1e-5

//Op is one symmetry operation in fractional coordinates: f' = W*f + T,
//with the translation reduced mod 1.
type Op struct {
	W [3][3]float64
	T [3]float64
}

//Apply returns the image of the fractional position f under the
//operation, reduced mod 1 to [0,1).
func (o Op) Apply(f [3]float64) [3]float64 {
	var r [3]float64
	for i := 0; i < 3; i++ {
		r[i] = o.W[i][0]*f[0] + o.W[i][1]*f[1] + o.W[i][2]*f[2] + o.T[i]
		r[i] = wrap(r[i])
	}
	return r
}

//compose returns the operation equivalent to applying b first, then a.
func compose(a, b Op) Op {
	var c Op
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				c.W[i][j] += a.W[i][k] * b.W[k][j]
			}
		}
		c.T[i] = a.W[i][0]*b.T[0] + a.W[i][1]*b.T[1] + a.W[i][2]*b.T[2] + a.T[i]
		c.T[i] = wrap(c.T[i])
	}
	return c
}

func (o Op) equal(b Op) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(o.W[i][j]-b.W[i][j]) > symprec {
				return false
			}
		}
		if fracDist(o.T[i], b.T[i]) > symprec {
			return false
		}
	}
	return true
}

//wrap reduces a fractional coordinate to [0,1), snapping values within
//symprec of 1 back to 0.
func wrap(f float64) float64 {
	f -= math.Floor(f)
	if f >= 1-symprec {
		f = 0
	}
	if math.Abs(f) < symprec {
		f = 0
	}
	return f
}

//fracDist is the distance between two fractional coordinates on the
//circle, i.e. 0.999 and 0.001 are close.
func fracDist(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 0.5 {
		d = 1 - d
	}
	return d
}

//Group is a space group: its number, conventional Hermann-Mauguin
//symbol, and full list of symmetry operations (centering included).
type Group struct {
	Number int
	Symbol string
	ops    []Op
}

//Operations returns a copy of the full operator list of the group.
func (G *Group) Operations() []Op {
	ret := make([]Op, len(G.ops))
	copy(ret, G.ops)
	return ret
}

//Len returns the order of the group (operators per conventional cell).
func (G *Group) Len() int {
	return len(G.ops)
}

//Lookup returns the group with the given international number.
//Numbers outside the curated table produce an InvalidSymmetryError.
func Lookup(number int) (*Group, error) {
	e, ok := groups[number]
	if !ok {
		if number < 1 || number > 230 {
			return nil, matter.NewInvalidSymmetry("space group number %d out of range", number)
		}
		return nil, matter.NewInvalidSymmetry("space group %d not in the operator table", number)
	}
	return expandEntry(number, e)
}

//LookupSymbol returns the group with the given Hermann-Mauguin symbol.
//Spaces in the symbol are ignored, and the underscore of screw axes is
//optional ("P4/mmm", "Fd-3m", "P6_3/mmc" and "P63/mmc" all work).
func LookupSymbol(symbol string) (*Group, error) {
	want := normalizeSymbol(symbol)
	for num, e := range groups {
		if normalizeSymbol(e.symbol) == want {
			return expandEntry(num, e)
		}
	}
	return nil, matter.NewInvalidSymmetry("unrecognized space group symbol %q", symbol)
}

func normalizeSymbol(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

//expandEntry builds the full operator list for a table entry: parse the
//generators, close the set under composition, then add the centering
//translations.
func expandEntry(number int, e entry) (*Group, error) {
	ops := []Op{identityOp()}
	for _, g := range e.generators {
		op, err := ParseOp(g)
		if err != nil {
			return nil, matter.NewInvalidSymmetry("space group %d: %v", number, err)
		}
		ops = appendUniqueOp(ops, op)
	}
	//closure. The orders involved are tiny, so the quadratic loop is fine.
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(ops); i++ {
			for j := 0; j < len(ops); j++ {
				c := compose(ops[i], ops[j])
				l := len(ops)
				ops = appendUniqueOp(ops, c)
				if len(ops) != l {
					changed = true
				}
				if len(ops) > 48*4 {
					return nil, matter.NewInvalidSymmetry("space group %d: generator closure does not terminate", number)
				}
			}
		}
	}
	full := make([]Op, 0, len(ops)*len(centerings[e.lattice]))
	for _, cen := range centerings[e.lattice] {
		for _, op := range ops {
			c := op
			for i := 0; i < 3; i++ {
				c.T[i] = wrap(c.T[i] + cen[i])
			}
			full = append(full, c)
		}
	}
	return &Group{Number: number, Symbol: e.symbol, ops: full}, nil
}

func identityOp() Op {
	return Op{W: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

func appendUniqueOp(ops []Op, op Op) []Op {
	for _, o := range ops {
		if o.equal(op) {
			return ops
		}
	}
	return append(ops, op)
}

//ParseOp parses one symmetry operation in "x,y,z" notation, e.g.
//"-y+1/2,x+1/2,z+1/2" or "x-y,x,z".
func ParseOp(s string) (Op, error) {
	var op Op
	comps := strings.Split(s, ",")
	if len(comps) != 3 {
		return op, fmt.Errorf("operator %q does not have 3 components", s)
	}
	for i, comp := range comps {
		comp = strings.ReplaceAll(comp, " ", "")
		if comp == "" {
			return op, fmt.Errorf("empty component in operator %q", s)
		}
		sign := 1.0
		for pos := 0; pos < len(comp); {
			ch := comp[pos]
			switch {
			case ch == '+':
				sign = 1
				pos++
			case ch == '-':
				sign = -1
				pos++
			case ch == 'x' || ch == 'y' || ch == 'z':
				op.W[i][int(ch-'x')] += sign
				sign = 1
				pos++
			case ch >= '0' && ch <= '9' || ch == '.':
				start := pos
				for pos < len(comp) && (comp[pos] >= '0' && comp[pos] <= '9' || comp[pos] == '.') {
					pos++
				}
				var num float64
				if _, err := fmt.Sscan(comp[start:pos], &num); err != nil {
					return op, fmt.Errorf("bad number in operator component %q", comp)
				}
				if pos < len(comp) && comp[pos] == '/' {
					pos++
					start = pos
					for pos < len(comp) && comp[pos] >= '0' && comp[pos] <= '9' {
						pos++
					}
					var den float64
					if _, err := fmt.Sscan(comp[start:pos], &den); err != nil || den == 0 {
						return op, fmt.Errorf("bad fraction in operator component %q", comp)
					}
					num /= den
				}
				op.T[i] = wrap(op.T[i] + sign*num)
				sign = 1
			default:
				return op, fmt.Errorf("unexpected character %q in operator component %q", ch, comp)
			}
		}
	}
	return op, nil
}

//Site is one basis entry for the crystal builder.
type Site struct {
	Symbol string
	Frac   [3]float64
}

//Spec collects everything the crystal builder needs. Either Number or
//Symbol identifies the group; when both are given, Number wins.
//Angles are in degrees, lengths in Angstrom.
type Spec struct {
	Number  int
	Symbol  string
	A, B, C float64
	Alpha   float64
	Beta    float64
	Gamma   float64
	Basis   []Site
}

//CellFromParameters builds the 3x3 cell matrix (rows are lattice
//vectors) from the six lattice parameters, with a along x and b in the
//xy plane. Angles in degrees.
func CellFromParameters(a, b, c, alpha, beta, gamma float64) (*v3.Matrix, error) {
	if a <= 0 || b <= 0 || c <= 0 {
		return nil, matter.NewInvalidStructure("non-positive lattice length (a=%v b=%v c=%v)", a, b, c)
	}
	for _, ang := range []float64{alpha, beta, gamma} {
		if ang <= 0 || ang >= 180 {
			return nil, matter.NewInvalidStructure("lattice angle %v out of (0,180)", ang)
		}
	}
	ca := math.Cos(alpha * matter.Deg2Rad)
	cb := math.Cos(beta * matter.Deg2Rad)
	cg := math.Cos(gamma * matter.Deg2Rad)
	sg := math.Sin(gamma * matter.Deg2Rad)
	czy := (ca - cb*cg) / sg
	arg := 1 - cb*cb - czy*czy
	if arg <= 0 {
		return nil, matter.NewInvalidStructure("lattice angles (%v,%v,%v) do not define a cell", alpha, beta, gamma)
	}
	cell, _ := v3.NewMatrix([]float64{
		a, 0, 0,
		b * cg, b * sg, 0,
		c * cb, c * czy, c * math.Sqrt(arg),
	})
	return cell, nil
}

//Build is the crystal builder: it validates the spec, expands the basis
//under the operators of the group, and returns a Configuration periodic
//in all three directions. Two different species falling on the same
//expanded site means the basis is inconsistent with the group, and is an
//InvalidSymmetryError.
func Build(spec *Spec) (*matter.Configuration, error) {
	var group *Group
	var err error
	if spec.Number != 0 {
		group, err = Lookup(spec.Number)
	} else {
		group, err = LookupSymbol(spec.Symbol)
	}
	if err != nil {
		return nil, err
	}
	cell, err := CellFromParameters(spec.A, spec.B, spec.C, spec.Alpha, spec.Beta, spec.Gamma)
	if err != nil {
		return nil, err
	}
	if len(spec.Basis) == 0 {
		return nil, matter.NewInvalidStructure("empty basis")
	}
	for i, site := range spec.Basis {
		for _, f := range site.Frac {
			if f < 0 || f >= 1 {
				return nil, matter.NewInvalidStructure("basis site %d: fractional coordinate %v out of [0,1)", i, f)
			}
		}
		if site.Symbol == "" {
			return nil, matter.NewInvalidStructure("basis site %d: empty species", i)
		}
	}
	type expanded struct {
		symbol string
		origin int //index of the basis site this came from
		frac   [3]float64
	}
	var sites []expanded
	for bi, b := range spec.Basis {
		for _, op := range group.Operations() {
			pos := op.Apply(b.Frac)
			dup := false
			for _, s := range sites {
				if fracDist(s.frac[0], pos[0]) < symprec &&
					fracDist(s.frac[1], pos[1]) < symprec &&
					fracDist(s.frac[2], pos[2]) < symprec {
					if s.origin != bi {
						return nil, matter.NewInvalidSymmetry(
							"basis sites %d (%s) and %d (%s) share a symmetry orbit in %s",
							s.origin, s.symbol, bi, b.Symbol, group.Symbol)
					}
					dup = true
					break
				}
			}
			if !dup {
				sites = append(sites, expanded{b.Symbol, bi, pos})
			}
		}
	}
	symbols := make([]string, len(sites))
	data := make([]float64, 0, len(sites)*3)
	for i, s := range sites {
		symbols[i] = s.symbol
		//fractional to Cartesian: r = f*Cell, rows of Cell being the
		//lattice vectors.
		for j := 0; j < 3; j++ {
			data = append(data, s.frac[0]*cell.At(0, j)+s.frac[1]*cell.At(1, j)+s.frac[2]*cell.At(2, j))
		}
	}
	coords, err := v3.NewMatrix(data)
	if err != nil {
		return nil, err
	}
	conf, err := matter.NewConfiguration(symbols, coords, cell, [3]bool{true, true, true})
	if err != nil {
		return nil, err
	}
	return conf, nil
}

//Check verifies that conf is invariant under every operation of the
//group, i.e. that each operation maps the fractional coordinates onto a
//same-species site, within tol (Angstrom-free, fractional tolerance).
//It returns the per-operation atom mapping, which the relaxation
//engine's symmetry constraint reuses.
func (G *Group) Check(conf *matter.Configuration, tol float64) ([][]int, error) {
	if tol <= 0 {
		tol = symprec * 10
	}
	frac, err := conf.Fractional()
	if err != nil {
		return nil, err
	}
	n := conf.Len()
	fracs := make([][3]float64, n)
	for i := 0; i < n; i++ {
		fracs[i] = [3]float64{wrap(frac.At(i, 0)), wrap(frac.At(i, 1)), wrap(frac.At(i, 2))}
	}
	maps := make([][]int, len(G.ops))
	for oi, op := range G.ops {
		maps[oi] = make([]int, n)
		for i := 0; i < n; i++ {
			img := op.Apply(fracs[i])
			found := -1
			for j := 0; j < n; j++ {
				if conf.Atom(j).Symbol != conf.Atom(i).Symbol {
					continue
				}
				if fracDist(img[0], fracs[j][0]) < tol &&
					fracDist(img[1], fracs[j][1]) < tol &&
					fracDist(img[2], fracs[j][2]) < tol {
					found = j
					break
				}
			}
			if found < 0 {
				return nil, matter.NewInvalidSymmetry(
					"structure is not invariant under %s: atom %d has no image under operation %d",
					G.Symbol, i, oi)
			}
			maps[oi][i] = found
		}
	}
	return maps, nil
}
