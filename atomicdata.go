/*
 * atomicdata.go, part of gomatter.
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

//A map for assigning mass (in amu) to elements.
//Note that only elements that tend to show up in the structures goMatter
//deals with are present. An element missing here can still be used, by
//setting the Mass field of the Atom by hand.
var symbolMass = map[string]float64{
	"H":  1.008,
	"He": 4.0026,
	"Li": 6.94,
	"Be": 9.012,
	"B":  10.81,
	"C":  12.011,
	"N":  14.007,
	"O":  15.999,
	"F":  18.998,
	"Na": 22.990,
	"Mg": 24.305,
	"Al": 26.982,
	"Si": 28.085,
	"P":  30.974,
	"S":  32.06,
	"Cl": 35.45,
	"K":  39.098,
	"Ar": 39.948,
	"Ca": 40.078,
	"Ti": 47.867,
	"V":  50.942,
	"Cr": 51.996,
	"Mn": 54.938,
	"Fe": 55.845,
	"Co": 58.933,
	"Ni": 58.693,
	"Cu": 63.546,
	"Zn": 65.38,
	"Ga": 69.723,
	"Ge": 72.630,
	"As": 74.922,
	"Se": 78.971,
	"Br": 79.904,
	"Sr": 87.62,
	"Zr": 91.224,
	"Nb": 92.906,
	"Mo": 95.95,
	"Ru": 101.07,
	"Rh": 102.906,
	"Pd": 106.42,
	"Ag": 107.868,
	"Cd": 112.414,
	"In": 114.818,
	"Sn": 118.710,
	"Sb": 121.760,
	"Te": 127.60,
	"I":  126.904,
	"Cs": 132.905,
	"Ba": 137.327,
	"Hf": 178.49,
	"Ta": 180.948,
	"W":  183.84,
	"Re": 186.207,
	"Os": 190.23,
	"Ir": 192.217,
	"Pt": 195.084,
	"Au": 196.967,
	"Hg": 200.592,
	"Pb": 207.2,
	"Bi": 208.980,
}

//SymbolMass returns the mass, in amu, for the element with the given
//symbol, and whether the element is known to goMatter.
func SymbolMass(symbol string) (float64, bool) {
	m, ok := symbolMass[symbol]
	return m, ok
}
