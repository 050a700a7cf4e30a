/*
 * thermostat.go, part of gomatter.
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

package md

import (
	"math"

	matter "github.com/rmera/gomatter"
)

//A Thermostat corrects the velocities after each velocity Verlet step
//to keep the kinetic temperature near the target. dt and taut are in
//internal time units. Implementations are stateful and must not be
//shared between concurrent runs.
type Thermostat interface {
	Adjust(conf *matter.Configuration, dt, target, taut float64) error
}

//nopThermostat leaves the velocities alone (plain NVE).
type nopThermostat struct{}

func (nopThermostat) Adjust(conf *matter.Configuration, dt, target, taut float64) error {
	return nil
}

//NoseHoover is a single-variable Nose-Hoover thermostat: an auxiliary
//friction zeta integrates the mismatch between instantaneous and
//target temperature, and the velocities feel it as a drag (or a boost,
//when the system runs cold). Unlike Berendsen, it samples the true
//canonical ensemble.
type NoseHoover struct {
	zeta float64
}

//NewNoseHoover returns a thermostat with the friction at rest.
func NewNoseHoover() *NoseHoover {
	return new(NoseHoover)
}

func (N *NoseHoover) Adjust(conf *matter.Configuration, dt, target, taut float64) error {
	if target <= 0 {
		return matter.NewInvalidStructure("md: thermostat target temperature %v", target)
	}
	temp, err := Temperature(conf)
	if err != nil {
		return err
	}
	//d(zeta)/dt = (T/T0 - 1)/taut^2
	N.zeta += dt * (temp/target - 1) / (taut * taut)
	scale := math.Exp(-N.zeta * dt)
	n := conf.Len()
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			conf.Vels.Set(i, k, conf.Vels.At(i, k)*scale)
		}
	}
	return nil
}

//Berendsen rescales the velocities toward the target temperature with
//relaxation time taut. It equilibrates fast but suppresses the kinetic
//energy fluctuations of the canonical ensemble; good for warming a
//structure up, not for computing ensemble averages.
type Berendsen struct{}

//NewBerendsen returns a Berendsen (weak-coupling) thermostat.
func NewBerendsen() *Berendsen {
	return new(Berendsen)
}

func (B *Berendsen) Adjust(conf *matter.Configuration, dt, target, taut float64) error {
	if target <= 0 {
		return matter.NewInvalidStructure("md: thermostat target temperature %v", target)
	}
	temp, err := Temperature(conf)
	if err != nil {
		return err
	}
	if temp == 0 {
		return nil
	}
	arg := 1 + dt/taut*(target/temp-1)
	//keep the rescaling within a sane window, as customary when the
	//instantaneous temperature is far off.
	if arg < 0.64 {
		arg = 0.64
	} else if arg > 1.5625 {
		arg = 1.5625
	}
	scale := math.Sqrt(arg)
	n := conf.Len()
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			conf.Vels.Set(i, k, conf.Vels.At(i, k)*scale)
		}
	}
	return nil
}
