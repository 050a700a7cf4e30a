/*
 * xyz.go, part of gomatter.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/gomatter/v3"
)

//Plain and lightly-extended XYZ input/output. The only extension
//understood is a Lattice="ax ay az bx by bz cx cy cz" entry in the
//comment line, which carries the cell for periodic structures, in the
//extended-XYZ convention.

//XYZWriteTo writes conf to w in XYZ format. If the configuration is
//periodic, the cell goes into the comment line as a Lattice entry;
//otherwise the given comment is used verbatim.
func XYZWriteTo(w io.Writer, conf *Configuration, comment string) error {
	if err := conf.Corrupted(); err != nil {
		return errDecorate(err, "XYZWriteTo")
	}
	if _, err := fmt.Fprintf(w, "%d\n", conf.Len()); err != nil {
		return err
	}
	if conf.Cell != nil {
		c := conf.Cell
		comment = fmt.Sprintf("Lattice=\"%g %g %g %g %g %g %g %g %g\" %s",
			c.At(0, 0), c.At(0, 1), c.At(0, 2),
			c.At(1, 0), c.At(1, 1), c.At(1, 2),
			c.At(2, 0), c.At(2, 1), c.At(2, 2), comment)
	}
	if _, err := fmt.Fprintf(w, "%s\n", strings.TrimSpace(comment)); err != nil {
		return err
	}
	for i := 0; i < conf.Len(); i++ {
		_, err := fmt.Fprintf(w, "%-2s  %12.6f%12.6f%12.6f\n", conf.Atom(i).Symbol,
			conf.Coords.At(i, 0), conf.Coords.At(i, 1), conf.Coords.At(i, 2))
		if err != nil {
			return err
		}
	}
	return nil
}

//XYZWrite writes conf to the file xyzname, which is created, or
//overwritten if it exists.
func XYZWrite(xyzname string, conf *Configuration, comment string) error {
	out, err := os.Create(xyzname)
	if err != nil {
		return err
	}
	defer out.Close()
	return XYZWriteTo(out, conf, comment)
}

//XYZReadFrom reads one XYZ frame from r and returns the corresponding
//Configuration. If the comment line carries a Lattice entry, the
//returned configuration is periodic in all three directions.
func XYZReadFrom(r io.Reader) (*Configuration, error) {
	buf := bufio.NewReader(r)
	line, err := buf.ReadString('\n')
	if err != nil {
		return nil, NewInvalidStructure("ill-formatted XYZ: %v", err)
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms <= 0 {
		return nil, NewInvalidStructure("ill-formatted XYZ: bad atom count %q", strings.TrimSpace(line))
	}
	comment, err := buf.ReadString('\n')
	if err != nil {
		return nil, NewInvalidStructure("ill-formatted XYZ: missing comment line")
	}
	cell, err := parseLattice(comment)
	if err != nil {
		return nil, errDecorate(err, "XYZReadFrom")
	}
	symbols := make([]string, natoms)
	coords := make([]float64, 0, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err := buf.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, NewInvalidStructure("ill-formatted XYZ: %v", err)
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, NewInvalidStructure("XYZ line %d ill-formed: %q", i, strings.TrimSpace(line))
		}
		symbols[i] = fields[0]
		for j := 1; j <= 3; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, NewInvalidStructure("XYZ line %d: %v", i, err)
			}
			coords = append(coords, v)
		}
	}
	mcoords, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, err
	}
	pbc := [3]bool{}
	if cell != nil {
		pbc = [3]bool{true, true, true}
	}
	return NewConfiguration(symbols, mcoords, cell, pbc)
}

//XYZRead reads the first frame of the XYZ file with the given name.
func XYZRead(xyzname string) (*Configuration, error) {
	f, err := os.Open(xyzname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return XYZReadFrom(f)
}

//parseLattice extracts a Lattice="..." entry from an XYZ comment line,
//returning nil (and no error) if there is none.
func parseLattice(comment string) (*v3.Matrix, error) {
	const key = "Lattice=\""
	start := strings.Index(comment, key)
	if start < 0 {
		return nil, nil
	}
	rest := comment[start+len(key):]
	end := strings.Index(rest, "\"")
	if end < 0 {
		return nil, NewInvalidStructure("unterminated Lattice entry in XYZ comment")
	}
	fields := strings.Fields(rest[:end])
	if len(fields) != 9 {
		return nil, NewInvalidStructure("Lattice entry has %d components, want 9", len(fields))
	}
	data := make([]float64, 9)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, NewInvalidStructure("bad Lattice component %q", f)
		}
		data[i] = v
	}
	cell, _ := v3.NewMatrix(data) //9 components, cannot fail
	return cell, nil
}
