/*
 * simplot.go, part of gomatter.
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

//Package simplot draws the standard diagnostic plots of a simulation:
//the objective of a relaxation against its step, and the temperature of
//a dynamics run against time.
package simplot

import (
	"fmt"

	"github.com/rmera/gomatter/md"
	"github.com/rmera/gomatter/relax"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

//Relaxation plots the objective (energy, or enthalpy under pressure)
//of a relaxation report against the step number, and saves it as
//plotname.png.
func Relaxation(rep *relax.Report, title, plotname string) error {
	if rep == nil || len(rep.Energies) == 0 {
		panic("Given nil or empty report")
	}
	p := basicPlot(title, "Step", "Energy (eV)")
	pts := make(plotter.XYs, len(rep.Energies))
	for i, e := range rep.Energies {
		pts[i].X = float64(i)
		pts[i].Y = e
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)
	return p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s.png", plotname))
}

//Temperature plots the instantaneous temperature of the sampled frames
//against time, with a horizontal line at the target when it is
//positive, and saves it as plotname.png.
func Temperature(frames []*md.Frame, target float64, title, plotname string) error {
	if len(frames) == 0 {
		panic("Given no frames")
	}
	p := basicPlot(title, "Time (fs)", "Temperature (K)")
	pts := make(plotter.XYs, len(frames))
	for i, f := range frames {
		pts[i].X = f.Time
		pts[i].Y = f.Temp
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)
	if target > 0 {
		ref := plotter.XYs{{X: frames[0].Time, Y: target}, {X: frames[len(frames)-1].Time, Y: target}}
		refline, err := plotter.NewLine(ref)
		if err != nil {
			return err
		}
		refline.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(refline)
	}
	return p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s.png", plotname))
}

//EnergyBalance plots potential, kinetic and total energy of a dynamics
//run against time, and saves it as plotname.png.
func EnergyBalance(frames []*md.Frame, title, plotname string) error {
	if len(frames) == 0 {
		panic("Given no frames")
	}
	p := basicPlot(title, "Time (fs)", "Energy (eV)")
	pot := make(plotter.XYs, len(frames))
	kin := make(plotter.XYs, len(frames))
	tot := make(plotter.XYs, len(frames))
	for i, f := range frames {
		pot[i].X, pot[i].Y = f.Time, f.Epot
		kin[i].X, kin[i].Y = f.Time, f.Ekin
		tot[i].X, tot[i].Y = f.Time, f.Epot+f.Ekin
	}
	series := []struct {
		name string
		pts  plotter.XYs
	}{{"potential", pot}, {"kinetic", kin}, {"total", tot}}
	for _, s := range series {
		name, pts := s.name, s.pts
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		p.Add(line)
		p.Legend.Add(name, line)
	}
	return p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s.png", plotname))
}
