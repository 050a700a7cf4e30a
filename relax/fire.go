/*
 * fire.go, part of gomatter.
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

package relax

import "math"

//fire is the fast inertial relaxation engine: damped dynamics on the
//dof vector with an adaptive time step. When the velocity points
//uphill, or a step raises the objective, the velocity is zeroed, the
//time step cut, and the mixing restarted; downhill streaks longer than
//nmin grow the time step toward dtmax. The combination makes each
//accepted step non-increasing in the objective.
type fire struct {
	dt, dtmax float64
	nmin      int
	finc      float64
	fdec      float64
	astart    float64
	fa        float64
	maxstep   float64

	v        []float64
	a        float64
	steps    int //consecutive downhill steps
	lastDof  []float64
	lastF    []float64
	lastE    float64
	havePrev bool
}

func newFIRE(maxstep float64) *fire {
	return &fire{
		dt: 0.1, dtmax: 1.0,
		nmin: 5, finc: 1.1, fdec: 0.5,
		astart: 0.1, fa: 0.99,
		maxstep: maxstep,
		a:       0.1,
	}
}

func (F *fire) step(dof, f []float64, energy float64) []float64 {
	n := len(dof)
	if F.v == nil {
		F.v = make([]float64, n)
	}
	//uphill in energy: go back to the last accepted point and restart
	//the dynamics from rest, kicking off with that point's own forces.
	//The last accepted energy is kept, so the accepted sequence can
	//never rise.
	if F.havePrev && energy > F.lastE {
		copy(dof, F.lastDof)
		f = F.lastF
		for i := range F.v {
			F.v[i] = 0
		}
		F.a = F.astart
		F.dt *= F.fdec
		F.steps = 0
	} else {
		var vf, vnorm, fnorm float64
		for i := 0; i < n; i++ {
			vf += F.v[i] * f[i]
			vnorm += F.v[i] * F.v[i]
			fnorm += f[i] * f[i]
		}
		vnorm = math.Sqrt(vnorm)
		fnorm = math.Sqrt(fnorm)
		if vf > 0 {
			for i := 0; i < n; i++ {
				fh := 0.0
				if fnorm > 0 {
					fh = f[i] / fnorm
				}
				F.v[i] = (1-F.a)*F.v[i] + F.a*vnorm*fh
			}
			if F.steps > F.nmin {
				F.dt = math.Min(F.dt*F.finc, F.dtmax)
				F.a *= F.fa
			}
			F.steps++
		} else {
			for i := range F.v {
				F.v[i] = 0
			}
			F.a = F.astart
			F.dt *= F.fdec
			F.steps = 0
		}
		F.lastDof = append([]float64{}, dof...)
		F.lastF = append([]float64{}, f...)
		F.lastE = energy
		F.havePrev = true
	}
	dr := make([]float64, n)
	for i := 0; i < n; i++ {
		F.v[i] += F.dt * f[i]
		dr[i] = F.dt * F.v[i]
	}
	clampRows(dr, F.maxstep)
	out := make([]float64, n)
	for i := range out {
		out[i] = dof[i] + dr[i]
	}
	return out
}
