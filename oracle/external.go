/*
 * external.go, part of gomatter.
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
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	matter "github.com/rmera/gomatter"
	v3 "github.com/rmera/gomatter/v3"
	"gonum.org/v1/gonum/mat"
)

//External drives a machine-learned potential through an external
//program. The structure is written in extended XYZ, the program is run
//with the chosen model and device, and energy, forces and stress are
//read back from the extended XYZ it produces. Any failure of the
//subprocess or of the output parsing surfaces as an
//OracleEvaluationError.
type External struct {
	command   string
	inputname string
	wrkdir    string
	model     string
	device    string
}

//Available models and devices.
const (
	Model1M = "1M"
	Model5M = "5M"

	DeviceCUDA = "cuda"
	DeviceCPU  = "cpu"
)

//NewExternal returns a handle for the given executable, with the
//defaults set.
func NewExternal(command string) *External {
	run := new(External)
	run.command = command
	run.SetDefaults()
	return run
}

//SetDefaults selects the small model, and the GPU if one appears to be
//present, falling back to the CPU otherwise.
func (O *External) SetDefaults() {
	O.inputname = "gomatter"
	O.model = Model1M
	O.device = DeviceCPU
	if _, err := exec.LookPath("nvidia-smi"); err == nil {
		O.device = DeviceCUDA
	}
}

func (O *External) SetName(name string) {
	O.inputname = name
}

//SetWorkDir sets the directory where input and output files are
//written. The default is the current directory.
func (O *External) SetWorkDir(dir string) {
	O.wrkdir = dir
}

//SetModel selects the model size. Only Model1M and Model5M are
//understood.
func (O *External) SetModel(model string) error {
	if model != Model1M && model != Model5M {
		return fmt.Errorf("external oracle: unknown model %q", model)
	}
	O.model = model
	return nil
}

//SetDevice selects the compute device, DeviceCUDA or DeviceCPU.
func (O *External) SetDevice(device string) error {
	if device != DeviceCUDA && device != DeviceCPU {
		return fmt.Errorf("external oracle: unknown device %q", device)
	}
	O.device = device
	return nil
}

func (O *External) path(name string) string {
	if O.wrkdir == "" {
		return name
	}
	return filepath.Join(O.wrkdir, name)
}

//Evaluate implements matter.Oracle: it writes the configuration,
//runs the external program under ctx, and parses the result back.
func (O *External) Evaluate(ctx context.Context, conf *matter.Configuration) (*matter.Result, error) {
	if err := conf.Corrupted(); err != nil {
		return nil, matter.NewOracleEvaluation(err, "oracle.External.Evaluate")
	}
	in := O.path(O.inputname + ".xyz")
	out := O.path(O.inputname + ".out.xyz")
	if err := matter.XYZWrite(in, conf, ""); err != nil {
		return nil, matter.NewOracleEvaluation(err, "oracle.External.Evaluate")
	}
	cmd := exec.CommandContext(ctx, O.command, in, out,
		"--model", O.model, "--device", O.device)
	if O.wrkdir != "" {
		cmd.Dir = O.wrkdir
	}
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, matter.NewOracleEvaluation(
			fmt.Errorf("%s: %v: %s", O.command, err, strings.TrimSpace(string(output))),
			"oracle.External.Evaluate")
	}
	res, err := readResult(out, conf.Len())
	if err != nil {
		return nil, matter.NewOracleEvaluation(err, "oracle.External.Evaluate")
	}
	return res, nil
}

//EvaluateBatch runs the configurations one after the other through the
//same handle. The program is free to batch internally in future
//protocol revisions; either way callers must tolerate floating-point
//level differences against the single-call path.
func (O *External) EvaluateBatch(ctx context.Context, confs []*matter.Configuration) ([]*matter.Result, error) {
	ret := make([]*matter.Result, len(confs))
	base := O.inputname
	defer func() { O.inputname = base }()
	for i, conf := range confs {
		O.inputname = fmt.Sprintf("%s_%d", base, i)
		res, err := O.Evaluate(ctx, conf)
		if err != nil {
			return nil, err
		}
		ret[i] = res
	}
	return ret, nil
}

//readResult parses the extended XYZ the external program writes:
//energy= and optionally stress="..." (9 numbers, row-major) in the
//comment line, and per-atom lines with symbol, position and force.
func readResult(name string, natoms int) (*matter.Result, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, fmt.Errorf("%s: empty output", name)
	}
	var n int
	if _, err := fmt.Sscan(strings.TrimSpace(scanner.Text()), &n); err != nil {
		return nil, fmt.Errorf("%s: bad atom count: %v", name, err)
	}
	if n != natoms {
		return nil, fmt.Errorf("%s: output has %d atoms, expected %d", name, n, natoms)
	}
	if !scanner.Scan() {
		return nil, fmt.Errorf("%s: missing comment line", name)
	}
	comment := scanner.Text()
	res := new(matter.Result)
	found := false
	for _, field := range strings.Fields(comment) {
		if strings.HasPrefix(field, "energy=") {
			if _, err := fmt.Sscan(strings.TrimPrefix(field, "energy="), &res.Energy); err != nil {
				return nil, fmt.Errorf("%s: bad energy: %v", name, err)
			}
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%s: no energy in comment line", name)
	}
	if idx := strings.Index(comment, `stress="`); idx >= 0 {
		rest := comment[idx+len(`stress="`):]
		end := strings.Index(rest, `"`)
		if end < 0 {
			return nil, fmt.Errorf("%s: unterminated stress field", name)
		}
		vals := strings.Fields(rest[:end])
		if len(vals) != 9 {
			return nil, fmt.Errorf("%s: stress has %d components, expected 9", name, len(vals))
		}
		data := make([]float64, 9)
		for i, v := range vals {
			if _, err := fmt.Sscan(v, &data[i]); err != nil {
				return nil, fmt.Errorf("%s: bad stress component: %v", name, err)
			}
		}
		res.Stress = v3.Dense2Matrix(mat.NewDense(3, 3, data))
	}
	forces := v3.Zeros(natoms)
	for i := 0; i < natoms; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("%s: truncated at atom %d", name, i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 7 {
			return nil, fmt.Errorf("%s: atom %d: expected symbol, position and force", name, i)
		}
		for k := 0; k < 3; k++ {
			var v float64
			if _, err := fmt.Sscan(fields[4+k], &v); err != nil {
				return nil, fmt.Errorf("%s: atom %d: bad force: %v", name, i, err)
			}
			forces.Set(i, k, v)
		}
	}
	res.Forces = forces
	return res, nil
}
