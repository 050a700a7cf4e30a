/*
 * traj.go, part of gomatter.
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
Package traj persists molecular dynamics trajectories as zstd-compressed
text. Each frame carries its step, time, potential and kinetic energy
and temperature, followed by fixed-precision integer-encoded positions
and velocities, one atom per line, and a terminator mark. The format is
append-friendly and survives truncation at frame boundaries.

Writer implements md.Sink, so it can be handed straight to md.Run to
stream a simulation to disk as it happens.
*/
package traj

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rmera/gomatter/md"
	v3 "github.com/rmera/gomatter/v3"
)

const (
	coordPrec = 4 //decimal places kept for positions
	velPrec   = 7 //velocities are small numbers, they need more
)

//Writer appends frames to a compressed trajectory file.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	natoms    int
	filename  string
	writeable bool
}

//NewWriter creates the trajectory file and writes its header: the
//key=value metadata pairs, then the atom count.
func NewWriter(name string, natoms int, header map[string]string) (*Writer, error) {
	W := new(Writer)
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, nil, true}
	}
	W.h, err = zstd.NewWriter(W.f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	W.natoms = natoms
	W.filename = name
	W.writeable = true
	for k, v := range header {
		if _, err := fmt.Fprintf(W.h, "%s=%v\n", k, v); err != nil {
			return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
		}
	}
	if _, err := fmt.Fprintf(W.h, "** %d\n", natoms); err != nil {
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	return W, nil
}

//Len returns the number of atoms per frame.
func (W *Writer) Len() int {
	return W.natoms
}

//WriteFrame appends one frame. It implements md.Sink.
func (W *Writer) WriteFrame(frame *md.Frame) error {
	if !W.writeable {
		return Error{TrajUnIniWrite, W.filename, []string{"WriteFrame"}, true}
	}
	if frame == nil || frame.Coords == nil {
		return Error{NilCoordinates, W.filename, []string{"WriteFrame"}, true}
	}
	if v := frame.Coords.NVecs(); v != W.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, W.natoms), W.filename, []string{"WriteFrame"}, true}
	}
	if _, err := fmt.Fprintf(W.h, "# %d %.6f %.8f %.8f %.4f\n", frame.Step, frame.Time, frame.Epot, frame.Ekin, frame.Temp); err != nil {
		return Error{err.Error(), W.filename, []string{"WriteFrame"}, true}
	}
	cp := math.Pow(10, coordPrec)
	vp := math.Pow(10, velPrec)
	for i := 0; i < W.natoms; i++ {
		var v [3]int64
		for k := 0; k < 3; k++ {
			v[k] = 0
			if frame.Vels != nil {
				v[k] = int64(math.RoundToEven(frame.Vels.At(i, k) * vp))
			}
		}
		_, err := fmt.Fprintf(W.h, "%d %d %d %d %d %d\n",
			int64(math.RoundToEven(frame.Coords.At(i, 0)*cp)),
			int64(math.RoundToEven(frame.Coords.At(i, 1)*cp)),
			int64(math.RoundToEven(frame.Coords.At(i, 2)*cp)),
			v[0], v[1], v[2])
		if err != nil {
			return Error{err.Error(), W.filename, []string{"WriteFrame"}, true}
		}
	}
	if _, err := W.h.Write([]byte("*\n")); err != nil {
		return Error{err.Error(), W.filename, []string{"WriteFrame"}, true}
	}
	return nil
}

//Close flushes and closes the trajectory. The Writer can not be used
//afterwards.
func (W *Writer) Close() {
	if W == nil || !W.writeable {
		return
	}
	W.h.Close()
	W.f.Close()
	W.writeable = false
}

//Reader walks a trajectory frame by frame.
type Reader struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	readable bool
}

//zstd.Decoder.Close returns nothing, so it needs a shim to be an
//io.ReadCloser.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (z zstdql) Close() error {
	z.closeql()
	return nil
}

//NewReader opens a trajectory, reads the header, and returns the handle
//together with the metadata map (nil when the file has none).
func NewReader(name string) (*Reader, map[string]string, error) {
	R := new(Reader)
	R.natoms = -1
	R.filename = name
	var err error
	R.f, err = os.Open(name)
	if err != nil {
		return nil, nil, Error{UnableToOpen + ": " + err.Error(), name, nil, true}
	}
	dec, err := zstd.NewReader(bufio.NewReader(R.f))
	if err != nil {
		return nil, nil, Error{"Can't read header: " + err.Error(), name, []string{"NewReader"}, true}
	}
	R.dec = zstdql{dec.Close, dec}
	R.h = bufio.NewReader(R.dec)
	var m map[string]string
	for {
		str, err := R.h.ReadString('\n')
		if err != nil {
			return nil, nil, Error{"Can't read header: " + err.Error(), name, []string{"NewReader"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			fields := strings.Fields(str)
			if len(fields) < 2 {
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", str), name, []string{"NewReader"}, true}
			}
			R.natoms, err = strconv.Atoi(fields[1])
			if err != nil {
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s': %s", fields[1], err.Error()), name, []string{"NewReader"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, nil, Error{"Malformed header line: " + str, name, []string{"NewReader"}, true}
		}
		if m == nil {
			m = make(map[string]string)
		}
		m[kv[0]] = kv[1]
	}
	R.readable = true
	return R, m, nil
}

//Readable returns true if Next can still be called on the handle.
func (R *Reader) Readable() bool {
	return R.readable
}

//Len returns the number of atoms in each frame.
func (R *Reader) Len() int {
	return R.natoms
}

//Next returns the next frame of the trajectory. At the end of the
//trajectory it closes the handle and returns a LastFrameError, which is
//not an actual failure.
func (R *Reader) Next() (*md.Frame, error) {
	if !R.readable {
		return nil, Error{TrajUnIniRead, R.filename, []string{"Next"}, true}
	}
	head, err := R.h.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			R.Close()
			return nil, newLastFrameError(R.filename, "Next")
		}
		return nil, Error{err.Error(), R.filename, []string{"Next"}, true}
	}
	frame := new(md.Frame)
	if _, err := fmt.Sscanf(strings.TrimSpace(head), "# %d %f %f %f %f",
		&frame.Step, &frame.Time, &frame.Epot, &frame.Ekin, &frame.Temp); err != nil {
		return nil, Error{"Malformed frame header: " + head, R.filename, []string{"Next"}, true}
	}
	cp := math.Pow(10, coordPrec)
	vp := math.Pow(10, velPrec)
	coords := v3.Zeros(R.natoms)
	vels := v3.Zeros(R.natoms)
	for i := 0; i < R.natoms; i++ {
		line, err := R.h.ReadString('\n')
		if err != nil {
			return nil, Error{"Truncated frame: " + err.Error(), R.filename, []string{"Next"}, true}
		}
		fields := strings.Fields(line)
		if len(fields) != 6 {
			return nil, Error{"Ill formatted atom line: " + line, R.filename, []string{"Next"}, true}
		}
		for k := 0; k < 6; k++ {
			v, err := strconv.ParseInt(fields[k], 10, 64)
			if err != nil {
				return nil, Error{fmt.Sprintf("Can't parse field %d (%s): %s", k, fields[k], err.Error()), R.filename, []string{"Next"}, true}
			}
			if k < 3 {
				coords.Set(i, k, float64(v)/cp)
			} else {
				vels.Set(i, k-3, float64(v)/vp)
			}
		}
	}
	mark, err := R.h.ReadString('\n')
	if err != nil || mark[0] != '*' {
		return nil, Error{"Missing frame termination mark", R.filename, []string{"Next"}, true}
	}
	frame.Coords = coords
	frame.Vels = vels
	return frame, nil
}

//Close closes the handle and marks it unreadable.
func (R *Reader) Close() {
	if !R.readable {
		return
	}
	R.dec.Close()
	R.f.Close()
	R.readable = false
}

//Error is the general structure for trajectory errors.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("traj file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file the failing trajectory was associated with.
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical.
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	UnableToOpen   = "Unable to open file"
	NilCoordinates = "Given nil coordinates"
)

//LastFrameError signals a normal end of trajectory; callers can test
//for it with a type assertion on the NormalLastFrameTermination method.
type LastFrameError struct {
	deco     []string
	fileName string
}

//NormalLastFrameTermination does nothing; it marks the type.
func (E LastFrameError) NormalLastFrameTermination() {}

func (E LastFrameError) FileName() string { return E.fileName }

func (E LastFrameError) Error() string { return "EOF" }

func (E LastFrameError) Critical() bool { return false }

func (E LastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastFrameError(filename string, caller string) *LastFrameError {
	e := new(LastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
