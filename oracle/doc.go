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
Package oracle provides implementations of the matter.Oracle contract:
force fields that map a Configuration to energy, forces and stress.

Two analytic potentials are included, a periodic Lennard-Jones fluid and
an Einstein crystal of harmonic site restraints; both are cheap and
exactly reproducible, which makes them the workhorses of the relaxation
and dynamics test suites. External wraps a machine-learned potential
driven through an external program, exchanging structures in extended
XYZ, in the same spirit as the QM program handles of goChem.

Every oracle honors the determinism contract: evaluating the same
Configuration twice in single-call mode returns bit-identical numbers.
Batch evaluation is allowed to differ from single evaluation within
floating-point reduction noise, and callers must not rely on the two
paths agreeing exactly.
*/
package oracle
