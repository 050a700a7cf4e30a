/*
 * interfaces.go, part of gomatter.
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

import "context"

//Oracle is the contract for an energy/force/stress evaluator, typically a
//pretrained force-field model. goMatter never looks inside the model: the
//relaxation and MD engines drive their structures exclusively through
//this interface.
//
//An evaluation is a blocking, cancellable unit of work with no partial
//results; implementations should honor ctx between (not within) internal
//stages, and the engines check it between steps.
type Oracle interface {

	//Evaluate returns the potential energy (eV), per-atom forces
	//(eV/A, one row per atom) and stress tensor (eV/A^3) for conf.
	//For identical input, Evaluate must return bit-identical results.
	//For non-periodic configurations the stress may be nil.
	Evaluate(ctx context.Context, conf *Configuration) (*Result, error)

	//EvaluateBatch evaluates an ordered batch of configurations.
	//Results come back in input order. Batched evaluation is NOT
	//required to reproduce single-call results bit by bit: arithmetic
	//reordering under batching makes a small, bounded divergence an
	//accepted property of the contract, not a defect.
	EvaluateBatch(ctx context.Context, confs []*Configuration) ([]*Result, error)
}

//Masser can return a slice with the masses of each atom in the structure.
type Masser interface {

	//Returns a slice with the masses of all atoms, in amu.
	Masses() ([]float64, error)
}
