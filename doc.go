/*
 * doc.go, part of gomatter.
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
Package matter provides the structures to represent atomic configurations,
periodic or not, together with the contract for external force-field models
("oracles") that evaluate their energies, forces and stresses.

goMatter orchestrates atomistic simulation workflows: a configuration is
built (either expanded from a space group and basis, by the
gomatter/spacegroup package, or assembled directly from species and
Cartesian coordinates), optionally perturbed with Rattle, and then handed
to the gomatter/relax engine to be driven towards a local energy minimum,
and/or to the gomatter/md engine to be advanced in time under a
thermostat. Both engines only ever talk to the force field through the
Oracle interface defined here, so any model, in-process or external, can
drive them.

Units are eV for energy, Angstrom for length, amu for mass and eV/A^3 for
pressure and stress. See the constants in units.go for the derived time
unit and conversion factors.

Many functions here panic instead of returning errors. This is because
they are "fundamental" functions, so, if something goes wrong in them, the
program is way-most likely wrong and should crash.
*/
package matter
