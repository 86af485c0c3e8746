/*
 * report.go, part of micelle.
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

package pipeline

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/rmera/micelle/chemstat"
	"github.com/rmera/micelle/histo"
	"github.com/rmera/micelle/metrics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const reportBins = 10

// Summary holds simple statistics of the metrics of a run.
type Summary struct {
	MeanRg, StdRg   float64
	MinRg, MaxRg    float64
	MeanKappa2      float64
	MeanPrincipal   [3]float64
	RgDistribution  *histo.Data
	RgACF           []float64 //normalized autocorrelation of Rg, per sampled-frame lag
	RgDecorrelation int       //first lag where RgACF < 1/e, or -1
}

// Summarize returns the statistics for frames, which can't be empty.
func Summarize(frames []metrics.Frame) (*Summary, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames to summarize")
	}
	rg := make([]float64, len(frames))
	kappa := make([]float64, len(frames))
	var principal [3][]float64
	for i := range principal {
		principal[i] = make([]float64, len(frames))
	}
	for i, f := range frames {
		rg[i] = f.Rg
		kappa[i] = f.Kappa2
		for j := range principal {
			principal[j][i] = f.Principal[j]
		}
	}
	S := new(Summary)
	S.MeanRg, S.StdRg = stat.MeanStdDev(rg, nil)
	if len(rg) < 2 {
		S.StdRg = 0
	}
	S.MinRg, S.MaxRg = floats.Min(rg), floats.Max(rg)
	S.MeanKappa2 = stat.Mean(kappa, nil)
	for j := range principal {
		S.MeanPrincipal[j] = stat.Mean(principal[j], nil)
	}
	S.RgDistribution = histo.NewData(histo.EvenDividers(S.MinRg, S.MaxRg, reportBins), rg)
	S.RgACF = chemstat.AutoCorrelation(rg)
	S.RgDecorrelation = chemstat.DecorrelationLag(S.RgACF)
	return S, nil
}

// Report writes to w a text summary of the run: a chart of the radius of
// gyration over the sampled frames, its distribution, and the mean shape.
func Report(w io.Writer, name string, frames []metrics.Frame) error {
	S, err := Summarize(frames)
	if err != nil {
		return err
	}
	rg := make([]float64, len(frames))
	for i, f := range frames {
		rg[i] = f.Rg
	}
	graph := asciigraph.Plot(rg,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s Rg (A) vs sampled frame", name)),
	)
	decorr := "not reached"
	if S.RgDecorrelation >= 0 {
		decorr = fmt.Sprintf("%d sampled frames", S.RgDecorrelation)
	}
	_, err = fmt.Fprintf(w, "%s\n\nRg: mean %.3f A, std %.3f A, min %.3f A, max %.3f A\n"+
		"Principal radii (mean): %.3f %.3f %.3f A\nRelative shape anisotropy (mean): %.4f\n"+
		"Rg decorrelation (1/e): %s\n\nRg distribution\n%s\n",
		graph, S.MeanRg, S.StdRg, S.MinRg, S.MaxRg,
		S.MeanPrincipal[0], S.MeanPrincipal[1], S.MeanPrincipal[2], S.MeanKappa2, decorr, S.RgDistribution)
	return err
}
