/*
 * units.go, part of gomatter.
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

//goMatter works in eV, Angstrom and amu. Everything else is derived from
//those. In particular the internal time unit is A*sqrt(amu/eV), about
//10.18 fs, so a femtosecond is the constant FS below, and velocities are
//in A per internal time unit.

//Conversions
const (
	Deg2Rad = 0.0174533
	Rad2Deg = 1 / 0.0174533
	//1 eV/A^3 is 160.21766208 GPa. Pressures given in GPa must be
	//multiplied by GPa2eVA3 before they are handed to the relaxation
	//engine.
	GPa2eVA3 = 1 / 160.21766208
	EVA32GPa = 160.21766208
	//One femtosecond in internal time units.
	FS = 0.0982269475
)

//Physical constants
const (
	//Boltzmann constant in eV/K.
	KB = 8.617333262e-5
)

//Celsius2Kelvin converts a temperature in degrees Celsius to Kelvin.
func Celsius2Kelvin(t float64) float64 {
	return t + 273.15
}
