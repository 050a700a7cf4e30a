/*
 * md.go, part of gomatter.
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
Package md runs constant-temperature molecular dynamics on an oracle's
potential energy surface. Integration is velocity Verlet; the
temperature is held by a thermostat, either Nose-Hoover or Berendsen,
applied as a velocity correction after each step. Positions are in
Angstrom, the time step is given in femtoseconds, and energies come out
in eV.

The engine samples a frame every SampleEvery steps and hands it to the
optional Sink, so trajectories can be streamed to disk while the run
goes on. A run that produces non-finite coordinates or velocities stops
with a Failed status and a NumericalDivergenceError naming the last
healthy step.
*/
package md

import (
	"context"
	"math"

	matter "github.com/rmera/gomatter"
	v3 "github.com/rmera/gomatter/v3"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

//Status is the state of a dynamics run.
type Status int

const (
	Running Status = iota
	Finished
	Failed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "Running"
	case Finished:
		return "Finished"
	case Failed:
		return "Failed"
	}
	return "Unknown"
}

//A Frame is one sampled point of a trajectory. Coordinates and
//velocities are copies, safe to keep after the run moves on.
type Frame struct {
	Step   int
	Time   float64 //fs
	Epot   float64
	Ekin   float64
	Temp   float64 //instantaneous kinetic temperature, K
	Coords *v3.Matrix
	Vels   *v3.Matrix
}

//A Sink receives frames as they are sampled. traj.Writer implements
//this.
type Sink interface {
	WriteFrame(*Frame) error
}

//Options for a dynamics run. Dt is in femtoseconds; Taut, the
//thermostat coupling time, also in femtoseconds, defaults to 1000
//times the time step.
type Options struct {
	Dt          float64
	Steps       int
	Temperature float64 //target, K
	Thermostat  Thermostat
	Taut        float64
	SampleEvery int
	Sink        Sink
}

func (O *Options) SetDefaults() {
	if O.Dt == 0 {
		O.Dt = 1
	}
	if O.Steps == 0 {
		O.Steps = 1000
	}
	if O.SampleEvery == 0 {
		O.SampleEvery = 10
	}
	if O.Taut == 0 {
		O.Taut = 1000 * O.Dt
	}
}

//Report is the outcome of a run: terminal status, steps completed, the
//sampled frames, and the error behind a Failed status.
type Report struct {
	Status Status
	Steps  int
	Frames []*Frame
	Err    error
}

//KineticEnergy returns the kinetic energy of the configuration in eV,
//from its velocities and masses. It returns 0 for a configuration with
//no velocities.
func KineticEnergy(conf *matter.Configuration) (float64, error) {
	if conf.Vels == nil {
		return 0, nil
	}
	masses, err := conf.Masses()
	if err != nil {
		return 0, err
	}
	var ke float64
	for i := 0; i < conf.Len(); i++ {
		var v2 float64
		for k := 0; k < 3; k++ {
			v := conf.Vels.At(i, k)
			v2 += v * v
		}
		ke += 0.5 * masses[i] * v2
	}
	return ke, nil
}

//Temperature returns the instantaneous kinetic temperature in K.
func Temperature(conf *matter.Configuration) (float64, error) {
	ke, err := KineticEnergy(conf)
	if err != nil {
		return 0, err
	}
	dof := 3 * conf.Len()
	if dof == 0 {
		return 0, nil
	}
	return 2 * ke / (float64(dof) * matter.KB), nil
}

//Run integrates the equations of motion of conf, in place, for
//opts.Steps steps. Velocities must be present; MaxwellBoltzmann sets
//them up. The returned error is non-nil only for a Failed run.
func Run(ctx context.Context, or matter.Oracle, conf *matter.Configuration, opts *Options) (*Report, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.SetDefaults()
	rep := &Report{Status: Running}
	if conf.Vels == nil {
		err := matter.NewInvalidStructure("md: configuration has no velocities")
		rep.Status, rep.Err = Failed, err
		return rep, err
	}
	masses, err := conf.Masses()
	if err != nil {
		rep.Status, rep.Err = Failed, err
		return rep, err
	}
	therm := opts.Thermostat
	if therm == nil {
		therm = nopThermostat{}
	}
	dt := opts.Dt * matter.FS //internal time units
	res, err := evaluate(ctx, or, conf)
	if err != nil {
		rep.Status, rep.Err = Failed, err
		return rep, err
	}
	if diverged(res) {
		err := matter.NewNumericalDivergence(0, "non-finite forces or energy on the starting structure")
		rep.Status, rep.Err = Failed, err
		return rep, err
	}
	if err := sample(rep, conf, res.Energy, 0, opts); err != nil {
		rep.Status, rep.Err = Failed, err
		return rep, err
	}
	n := conf.Len()
	for step := 1; step <= opts.Steps; step++ {
		//velocity Verlet: half kick, drift, force update, half kick.
		for i := 0; i < n; i++ {
			for k := 0; k < 3; k++ {
				conf.Vels.Set(i, k, conf.Vels.At(i, k)+0.5*dt*res.Forces.At(i, k)/masses[i])
			}
		}
		coords := conf.Coords.Copy()
		for i := 0; i < n; i++ {
			for k := 0; k < 3; k++ {
				coords.Set(i, k, coords.At(i, k)+dt*conf.Vels.At(i, k))
			}
		}
		conf.SetCoords(coords)
		if !conf.Coords.IsFinite() || !conf.Vels.IsFinite() {
			err := matter.NewNumericalDivergence(step-1, "dynamics blew up at step %d (dt=%v fs)", step, opts.Dt)
			rep.Status, rep.Err = Failed, err
			return rep, err
		}
		res, err = evaluate(ctx, or, conf)
		if err != nil {
			rep.Status, rep.Err = Failed, err
			return rep, err
		}
		if diverged(res) {
			err := matter.NewNumericalDivergence(step-1, "dynamics blew up at step %d (dt=%v fs)", step, opts.Dt)
			rep.Status, rep.Err = Failed, err
			return rep, err
		}
		for i := 0; i < n; i++ {
			for k := 0; k < 3; k++ {
				conf.Vels.Set(i, k, conf.Vels.At(i, k)+0.5*dt*res.Forces.At(i, k)/masses[i])
			}
		}
		if err := therm.Adjust(conf, dt, opts.Temperature, opts.Taut*matter.FS); err != nil {
			rep.Status, rep.Err = Failed, err
			return rep, err
		}
		rep.Steps = step
		if step%opts.SampleEvery == 0 || step == opts.Steps {
			if err := sample(rep, conf, res.Energy, step, opts); err != nil {
				rep.Status, rep.Err = Failed, err
				return rep, err
			}
		}
	}
	rep.Status = Finished
	return rep, nil
}

func sample(rep *Report, conf *matter.Configuration, epot float64, step int, opts *Options) error {
	ke, err := KineticEnergy(conf)
	if err != nil {
		return err
	}
	temp, err := Temperature(conf)
	if err != nil {
		return err
	}
	frame := &Frame{
		Step:   step,
		Time:   float64(step) * opts.Dt,
		Epot:   epot,
		Ekin:   ke,
		Temp:   temp,
		Coords: conf.Coords.Copy(),
		Vels:   conf.Vels.Copy(),
	}
	rep.Frames = append(rep.Frames, frame)
	if opts.Sink != nil {
		return opts.Sink.WriteFrame(frame)
	}
	return nil
}

func evaluate(ctx context.Context, or matter.Oracle, conf *matter.Configuration) (*matter.Result, error) {
	res, err := or.Evaluate(ctx, conf)
	if err != nil {
		if _, ok := err.(matter.Error); !ok {
			err = matter.NewOracleEvaluation(err, "md.Run")
		}
		return nil, err
	}
	return res, nil
}

//diverged reports whether the result carries non-finite numbers, the
//usual symptom of a time step too large for the system.
func diverged(res *matter.Result) bool {
	return res.Forces == nil || !res.Forces.IsFinite() ||
		math.IsNaN(res.Energy) || math.IsInf(res.Energy, 0)
}

//MaxwellBoltzmann draws velocities from the Maxwell-Boltzmann
//distribution at temperature T and removes the center-of-mass drift.
//The source must not be nil; reruns with the same seed give the same
//velocities.
func MaxwellBoltzmann(conf *matter.Configuration, T float64, src rand.Source) error {
	if src == nil {
		return matter.NewInvalidStructure("md: nil random source")
	}
	if T < 0 {
		return matter.NewInvalidStructure("md: negative temperature %v", T)
	}
	masses, err := conf.Masses()
	if err != nil {
		return err
	}
	n := conf.Len()
	vels := v3.Zeros(n)
	for i := 0; i < n; i++ {
		normal := distuv.Normal{Mu: 0, Sigma: math.Sqrt(matter.KB * T / masses[i]), Src: src}
		for k := 0; k < 3; k++ {
			vels.Set(i, k, normal.Rand())
		}
	}
	//remove center-of-mass motion
	var totalM float64
	var p [3]float64
	for i := 0; i < n; i++ {
		totalM += masses[i]
		for k := 0; k < 3; k++ {
			p[k] += masses[i] * vels.At(i, k)
		}
	}
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			vels.Set(i, k, vels.At(i, k)-p[k]/totalM)
		}
	}
	conf.Vels = vels
	return nil
}
