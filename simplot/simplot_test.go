/*
 * simplot_test.go, part of gomatter.
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

package simplot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/gomatter/md"
	"github.com/rmera/gomatter/relax"
)

func TestPlots(Te *testing.T) {
	dir := Te.TempDir()
	rep := &relax.Report{
		Status:   relax.Converged,
		Energies: []float64{-1.0, -1.4, -1.55, -1.58},
		Fmaxs:    []float64{1.2, 0.5, 0.1, 0.01},
	}
	name := filepath.Join(dir, "relaxation")
	if err := Relaxation(rep, "test relaxation", name); err != nil {
		Te.Fatal(err)
	}
	if _, err := os.Stat(name + ".png"); err != nil {
		Te.Error("relaxation plot not written")
	}
	frames := []*md.Frame{
		{Time: 0, Temp: 350, Epot: -2, Ekin: 0.3},
		{Time: 10, Temp: 320, Epot: -2.1, Ekin: 0.25},
		{Time: 20, Temp: 301, Epot: -2.15, Ekin: 0.22},
	}
	name = filepath.Join(dir, "temperature")
	if err := Temperature(frames, 300, "test temperature", name); err != nil {
		Te.Fatal(err)
	}
	if _, err := os.Stat(name + ".png"); err != nil {
		Te.Error("temperature plot not written")
	}
	name = filepath.Join(dir, "energy")
	if err := EnergyBalance(frames, "test energies", name); err != nil {
		Te.Fatal(err)
	}
	if _, err := os.Stat(name + ".png"); err != nil {
		Te.Error("energy plot not written")
	}
}
