/*
 * rgplot.go, part of micelle.
 *
 * Copyright 2024 Raul Mera <rauldotmeraatusachdotcl>
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
 */

// Package chemplot produces PNG plots of per-frame properties of a trajectory.
package chemplot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Series is a named set of values, one per frame.
type Series struct {
	Name   string
	Values []float64
}

func basicTimePlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

// TimePlot plots each series against times, as lines, and saves the result
// to plotname.png. Every series must have as many values as times.
func TimePlot(times []float64, series []Series, title, xlabel, ylabel, plotname string) error {
	if len(times) == 0 {
		return fmt.Errorf("chemplot.TimePlot: nothing to plot")
	}
	p := basicTimePlot(title, xlabel, ylabel)
	for key, s := range series {
		if len(s.Values) != len(times) {
			return fmt.Errorf("chemplot.TimePlot: series %s has %d values for %d times", s.Name, len(s.Values), len(times))
		}
		xys := make(plotter.XYs, len(times))
		for i, t := range times {
			xys[i].X = t
			xys[i].Y = s.Values[i]
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("chemplot.TimePlot: series %s: %w", s.Name, err)
		}
		l.LineStyle.Width = vg.Points(1.5)
		l.LineStyle.Color = colors(key, len(series))
		p.Add(l)
		p.Legend.Add(s.Name, l)
	}
	filename := fmt.Sprintf("%s.png", plotname)
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}

// RgPlot plots the total and per-axis radii of gyration against time, and saves the
// plot to plotname.png.
func RgPlot(times, rg, rgx, rgy, rgz []float64, title, plotname string) error {
	series := []Series{
		{"Rg total", rg},
		{"Rg x", rgx},
		{"Rg y", rgy},
		{"Rg z", rgz},
	}
	return TimePlot(times, series, title, "Time", "Radius of gyration (A)", plotname)
}
