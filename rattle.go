/*
 * rattle.go, part of gomatter.
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

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

//Rattle displaces every atom of conf by a vector drawn from an isotropic
//normal distribution with standard deviation stdev (in A), and
//invalidates the cached result. The cell and the species are never
//touched. A stdev of zero is the identity, and leaves the configuration,
//cache included, exactly as it was.
//
//The random source is supplied by the caller, so runs can be made
//reproducible by seeding it, and parallel runs can each own their source.
func Rattle(conf *Configuration, stdev float64, src rand.Source) error {
	if stdev < 0 {
		return NewInvalidStructure("negative rattle stdev %v", stdev)
	}
	if err := conf.Corrupted(); err != nil {
		return errDecorate(err, "Rattle")
	}
	if stdev == 0 {
		return nil
	}
	if src == nil {
		return NewInvalidStructure("nil random source")
	}
	normal := distuv.Normal{Mu: 0, Sigma: stdev, Src: src}
	for i := 0; i < conf.Len(); i++ {
		for j := 0; j < 3; j++ {
			conf.Coords.Set(i, j, conf.Coords.At(i, j)+normal.Rand())
		}
	}
	conf.InvalidateCache()
	return nil
}
