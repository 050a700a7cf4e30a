/*
 * relax.go, part of gomatter.
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
Package relax drives structures to local minima of an oracle's
potential energy surface. It offers BFGS and FIRE minimizers, optional
variable-cell relaxation through a linear or exponential (Frechet) cell
filter, an external pressure, and a space-group constraint that keeps a
symmetric starting structure on its Wyckoff positions.

A relaxation ends in one of three terminal states: Converged when the
largest generalized force drops below Fmax, MaxStepsExceeded when the
step budget runs out first (a normal outcome, not an error), or Failed
when the oracle errors out or the numbers stop being finite.
*/
package relax

import (
	"context"
	"math"
	"sync"

	matter "github.com/rmera/gomatter"
	"github.com/rmera/gomatter/spacegroup"
)

//Minimization algorithms.
const (
	BFGS = "bfgs"
	FIRE = "fire"
)

//Cell filters. FilterPositions relaxes atomic positions in a fixed
//cell; the other two relax the cell too, and require an oracle that
//returns stress and a periodic structure.
const (
	FilterPositions = "positions"
	FilterUnitCell  = "unitcell"
	FilterFrechet   = "frechet"
)

//Status is the state of a relaxation.
type Status int

const (
	Running Status = iota
	Converged
	MaxStepsExceeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "Running"
	case Converged:
		return "Converged"
	case MaxStepsExceeded:
		return "MaxStepsExceeded"
	case Failed:
		return "Failed"
	}
	return "Unknown"
}

//Options collects the knobs of a relaxation. The zero value is not
//usable directly; call SetDefaults or build one with defaults applied
//through Run, which calls it for you on missing fields.
type Options struct {
	Fmax      float64 //convergence threshold on the largest force row norm, eV/A
	MaxSteps  int     //step budget
	Algorithm string  //BFGS or FIRE
	Filter    string  //FilterPositions, FilterUnitCell or FilterFrechet
	Pressure  float64 //external pressure for cell filters, GPa
	MaxStep   float64 //largest per-atom displacement per step, A
	Alpha     float64 //initial Hessian diagonal for BFGS, eV/A^2
	Group     *spacegroup.Group
	SymTol    float64 //fractional tolerance for the symmetry check
}

func (O *Options) SetDefaults() {
	if O.Fmax == 0 {
		O.Fmax = 0.05
	}
	if O.MaxSteps == 0 {
		O.MaxSteps = 200
	}
	if O.Algorithm == "" {
		O.Algorithm = BFGS
	}
	if O.Filter == "" {
		O.Filter = FilterPositions
	}
	if O.MaxStep == 0 {
		O.MaxStep = 0.2
	}
	if O.Alpha == 0 {
		O.Alpha = 70
	}
}

//Report is the outcome of a relaxation: the terminal status, the
//number of minimizer steps taken, the per-step objective and largest
//force (for plotting and diagnostics), the last oracle result, and the
//error behind a Failed status.
type Report struct {
	Status   Status
	Steps    int
	Energies []float64
	Fmaxs    []float64
	Last     *matter.Result
	Err      error
}

//Run relaxes conf in place under the given oracle and options, and
//returns a report. The returned error is non-nil only when the status
//is Failed; running out of steps is reported through the status alone.
func Run(ctx context.Context, or matter.Oracle, conf *matter.Configuration, opts *Options) (*Report, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.SetDefaults()
	rep := &Report{Status: Running}
	var filt filter
	switch opts.Filter {
	case FilterPositions:
		filt = positionsFilter{}
	case FilterUnitCell, FilterFrechet:
		if !conf.Periodic() {
			err := matter.NewUnsupportedFilter("filter %q requires a periodic structure", opts.Filter)
			rep.Status, rep.Err = Failed, err
			return rep, err
		}
		if opts.Filter == FilterUnitCell {
			filt = newUnitCellFilter(opts.Pressure*matter.GPa2eVA3, conf.Len())
		} else {
			filt = newFrechetCellFilter(opts.Pressure * matter.GPa2eVA3)
		}
	default:
		err := matter.NewUnsupportedFilter("unknown filter %q", opts.Filter)
		rep.Status, rep.Err = Failed, err
		return rep, err
	}
	var min minimizer
	switch opts.Algorithm {
	case BFGS:
		min = newBFGS(opts.Alpha, opts.MaxStep)
	case FIRE:
		min = newFIRE(opts.MaxStep)
	default:
		err := matter.NewInvalidStructure("relax: unknown algorithm %q", opts.Algorithm)
		rep.Status, rep.Err = Failed, err
		return rep, err
	}
	var sym *symmetrizer
	if opts.Group != nil {
		var err error
		sym, err = newSymmetrizer(opts.Group, conf, opts.SymTol)
		if err != nil {
			rep.Status, rep.Err = Failed, err
			return rep, err
		}
	}
	for step := 0; ; step++ {
		res, err := evaluate(ctx, or, conf)
		if err != nil {
			rep.Status, rep.Err = Failed, err
			return rep, err
		}
		if sym != nil {
			if err := sym.apply(conf, res); err != nil {
				rep.Status, rep.Err = Failed, err
				return rep, err
			}
		}
		fdof, obj, err := filt.forces(conf, res)
		if err != nil {
			rep.Status, rep.Err = Failed, err
			return rep, err
		}
		if !allFinite(fdof) || math.IsNaN(obj) || math.IsInf(obj, 0) {
			err := matter.NewNumericalDivergence(step, "relaxation produced non-finite forces or energy")
			rep.Status, rep.Err = Failed, err
			return rep, err
		}
		rep.Last = res
		rep.Steps = step
		rep.Energies = append(rep.Energies, obj)
		fmax := maxRowNorm(fdof)
		rep.Fmaxs = append(rep.Fmaxs, fmax)
		if fmax < opts.Fmax {
			rep.Status = Converged
			return rep, nil
		}
		if step >= opts.MaxSteps {
			rep.Status = MaxStepsExceeded
			return rep, nil
		}
		dof, err := filt.pack(conf)
		if err != nil {
			rep.Status, rep.Err = Failed, err
			return rep, err
		}
		dof = min.step(dof, fdof, obj)
		if err := filt.unpack(conf, dof); err != nil {
			rep.Status, rep.Err = Failed, err
			return rep, err
		}
	}
}

//evaluate calls the oracle, using the cached result when the
//configuration carries one, and wrapping any non-goMatter error.
func evaluate(ctx context.Context, or matter.Oracle, conf *matter.Configuration) (*matter.Result, error) {
	if res := conf.Cached(); res != nil {
		return res.Copy(), nil
	}
	res, err := or.Evaluate(ctx, conf)
	if err != nil {
		if _, ok := err.(matter.Error); !ok {
			err = matter.NewOracleEvaluation(err, "relax.Run")
		}
		return nil, err
	}
	conf.SetCached(res)
	return res.Copy(), nil
}

func maxRowNorm(f []float64) float64 {
	var max float64
	for i := 0; i+2 < len(f); i += 3 {
		l := math.Sqrt(f[i]*f[i] + f[i+1]*f[i+1] + f[i+2]*f[i+2])
		if l > max {
			max = l
		}
	}
	return max
}

func allFinite(f []float64) bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

//Many relaxes several structures concurrently, each with its own copy
//of the options, spreading them over the given number of workers (or
//one per structure, if workers is not positive). The reports come back
//in input order; failed relaxations carry their error in Report.Err.
func Many(ctx context.Context, or matter.Oracle, confs []*matter.Configuration, opts *Options, workers int) []*Report {
	if workers <= 0 || workers > len(confs) {
		workers = len(confs)
	}
	reports := make([]*Report, len(confs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				o := new(Options)
				if opts != nil {
					*o = *opts
				}
				rep, _ := Run(ctx, or, confs[i], o)
				reports[i] = rep
			}
		}()
	}
	for i := range confs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return reports
}
