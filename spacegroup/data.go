/*
 * data.go, part of gomatter.
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

package spacegroup

//entry is one row of the curated operator table: the conventional
//Hermann-Mauguin symbol, the centering letter, and the generators of
//the group (the identity and the centering translations are implied).
//Centrosymmetric groups on two origin choices use origin choice 1
//(inversion not necessarily at the origin).
type entry struct {
	symbol     string
	lattice    byte
	generators []string
}

//centerings are the pure lattice translations of each Bravais
//centering, the null translation included.
var centerings = map[byte][][3]float64{
	'P': {{0, 0, 0}},
	'A': {{0, 0, 0}, {0, 0.5, 0.5}},
	'B': {{0, 0, 0}, {0.5, 0, 0.5}},
	'C': {{0, 0, 0}, {0.5, 0.5, 0}},
	'I': {{0, 0, 0}, {0.5, 0.5, 0.5}},
	'F': {{0, 0, 0}, {0, 0.5, 0.5}, {0.5, 0, 0.5}, {0.5, 0.5, 0}},
	//R in the hexagonal (obverse) setting.
	'R': {{0, 0, 0}, {2.0 / 3, 1.0 / 3, 1.0 / 3}, {1.0 / 3, 2.0 / 3, 2.0 / 3}},
}

//groups covers the space groups of the structure types goMatter is used
//for: the common metallic, semiconductor, oxide and molecular-crystal
//groups. Monoclinic groups are in the b-unique setting, trigonal groups
//in hexagonal axes.
var groups = map[int]entry{
	1:   {"P1", 'P', nil},
	2:   {"P-1", 'P', []string{"-x,-y,-z"}},
	3:   {"P2", 'P', []string{"-x,y,-z"}},
	4:   {"P2_1", 'P', []string{"-x,y+1/2,-z"}},
	5:   {"C2", 'C', []string{"-x,y,-z"}},
	6:   {"Pm", 'P', []string{"x,-y,z"}},
	8:   {"Cm", 'C', []string{"x,-y,z"}},
	10:  {"P2/m", 'P', []string{"-x,y,-z", "-x,-y,-z"}},
	12:  {"C2/m", 'C', []string{"-x,y,-z", "-x,-y,-z"}},
	14:  {"P2_1/c", 'P', []string{"-x,y+1/2,-z+1/2", "-x,-y,-z"}},
	15:  {"C2/c", 'C', []string{"-x,y,-z+1/2", "-x,-y,-z"}},
	16:  {"P222", 'P', []string{"-x,-y,z", "x,-y,-z"}},
	19:  {"P2_12_12_1", 'P', []string{"-x+1/2,-y,z+1/2", "x+1/2,-y+1/2,-z"}},
	25:  {"Pmm2", 'P', []string{"-x,-y,z", "x,-y,z"}},
	47:  {"Pmmm", 'P', []string{"-x,-y,z", "x,-y,-z", "-x,-y,-z"}},
	62:  {"Pnma", 'P', []string{"-x+1/2,-y,z+1/2", "-x,y+1/2,-z", "-x,-y,-z"}},
	63:  {"Cmcm", 'C', []string{"-x,-y,z+1/2", "-x,y,z", "-x,-y,-z"}},
	69:  {"Fmmm", 'F', []string{"-x,-y,z", "x,-y,-z", "-x,-y,-z"}},
	71:  {"Immm", 'I', []string{"-x,-y,z", "x,-y,-z", "-x,-y,-z"}},
	99:  {"P4mm", 'P', []string{"-y,x,z", "x,-y,z"}},
	123: {"P4/mmm", 'P', []string{"-y,x,z", "x,-y,-z", "-x,-y,-z"}},
	136: {"P4_2/mnm", 'P', []string{"-y+1/2,x+1/2,z+1/2", "-x+1/2,y+1/2,-z+1/2", "-x,-y,-z"}},
	139: {"I4/mmm", 'I', []string{"-y,x,z", "x,-y,-z", "-x,-y,-z"}},
	148: {"R-3", 'R', []string{"-y,x-y,z", "-x,-y,-z"}},
	160: {"R3m", 'R', []string{"-y,x-y,z", "y,x,z"}},
	164: {"P-3m1", 'P', []string{"-y,x-y,z", "y,x,-z", "-x,-y,-z"}},
	166: {"R-3m", 'R', []string{"-y,x-y,z", "y,x,z", "-x,-y,-z"}},
	186: {"P6_3mc", 'P', []string{"-y,x-y,z", "-x,-y,z+1/2", "-y,-x,z"}},
	191: {"P6/mmm", 'P', []string{"x-y,x,z", "y,x,-z", "-x,-y,-z"}},
	194: {"P6_3/mmc", 'P', []string{"-y,x-y,z", "-x,-y,z+1/2", "y,x,-z", "-x,-y,-z"}},
	195: {"P23", 'P', []string{"z,x,y", "-x,-y,z", "x,-y,-z"}},
	198: {"P2_13", 'P', []string{"z,x,y", "-x+1/2,-y,z+1/2", "-x,y+1/2,-z+1/2"}},
	200: {"Pm-3", 'P', []string{"z,x,y", "-x,-y,z", "x,-y,-z", "-x,-y,-z"}},
	215: {"P-43m", 'P', []string{"z,x,y", "-x,-y,z", "x,-y,-z", "y,x,z"}},
	216: {"F-43m", 'F', []string{"z,x,y", "-x,-y,z", "x,-y,-z", "y,x,z"}},
	221: {"Pm-3m", 'P', []string{"z,x,y", "-x,-y,z", "x,-y,-z", "y,x,z", "-x,-y,-z"}},
	225: {"Fm-3m", 'F', []string{"z,x,y", "-x,-y,z", "x,-y,-z", "y,x,z", "-x,-y,-z"}},
	//Origin choice 1: point symmetry -43m at the origin, inversion
	//through (1/8,1/8,1/8).
	227: {"Fd-3m", 'F', []string{"z,x,y", "-x,-y,z", "x,-y,-z", "y,x,z", "-x+1/4,-y+1/4,-z+1/4"}},
	229: {"Im-3m", 'I', []string{"z,x,y", "-x,-y,z", "x,-y,-z", "y,x,z", "-x,-y,-z"}},
}
