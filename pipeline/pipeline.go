/*
 * pipeline.go, part of micelle.
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

// Package pipeline turns a trajectory into a down-sampled multi-model PDB file and
// a JSON time series of its center of geometry and radii of gyration.
//
// The frames are read once, in order, as a Stream of Records. Each output is an
// independent Consumer of that stream.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	chem "github.com/rmera/micelle"
	"github.com/rmera/micelle/chemplot"
	"github.com/rmera/micelle/config"
	"github.com/rmera/micelle/metrics"
)

// Result describes what a run produced.
type Result struct {
	PDB     string //the multi-model PDB file
	JSON    string //the metrics file
	Sampled string //the sampled trajectory, or empty
	Plot    string //the PNG plot, or empty
	Read    int    //frames read from the trajectory
	Frames  []metrics.Frame
	Payload metrics.Payload
}

// NFrames returns the number of sampled frames.
func (R *Result) NFrames() int {
	return len(R.Frames)
}

// Run processes the trajectory given in cfg. Messages are logged to logger,
// which can be nil. On failure, the PDB (and sampled trajectory) may be
// truncated, but the JSON file is only written after all frames were processed.
func Run(cfg *config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	src, err := Open(cfg.Structure, cfg.Trajectory, logger)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	logger.Printf("Read %d atoms from %s, trajectory format %s", src.Mol.Len(), cfg.Structure, src.Format)
	sel, err := chem.Select(src.Mol, cfg.SelectionString())
	if err != nil {
		return nil, fmt.Errorf("selecting atoms: %w", err)
	}
	if len(sel) == 0 {
		return nil, fmt.Errorf("selection %q matched no atoms", cfg.SelectionString())
	}
	top, err := src.Mol.SomeAtoms(sel)
	if err != nil {
		return nil, fmt.Errorf("selecting atoms: %w", err)
	}
	stream, err := NewStream(src.Traj, sel, NewSampler(cfg.Stride))
	if err != nil {
		return nil, err
	}
	res := &Result{PDB: cfg.PDBOut(), JSON: cfg.JSONOut(), Sampled: cfg.SampledOut()}

	pdb, err := chem.NewPDBWriter(res.PDB, top)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", res.PDB, err)
	}
	//the b-factors of the structure's first model go to every written model.
	if len(src.Mol.Bfactors) > 0 {
		bf := make([]float64, len(sel))
		for i, j := range sel {
			bf[i] = src.Mol.Bfactors[0][j]
		}
		if err := pdb.SetBfactors(bf); err != nil {
			pdb.Close()
			return nil, err
		}
	}
	collector := NewMetricsConsumer(cfg.Name, cfg.Stride)
	cons := &consumers{list: []Consumer{NewWriterConsumer(pdb), collector}}
	defer cons.Close()
	if res.Sampled != "" {
		header := map[string]string{"name": cfg.Name, "stride": fmt.Sprint(cfg.Stride)}
		sw, err := NewSampledWriter(res.Sampled, cfg.SampledFormat, len(sel), header)
		if err != nil {
			return nil, err
		}
		cons.list = append(cons.list, sw)
	}

	for stream.Scan() {
		if err := cons.Consume(stream.Record()); err != nil {
			return nil, err
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	if err := cons.Close(); err != nil {
		return nil, err
	}
	res.Read = stream.Read()
	res.Frames = collector.C.Frames()
	res.Payload = collector.C.Payload()
	logger.Printf("Read %d frames, kept %d with stride %d", res.Read, res.NFrames(), cfg.Stride)
	if err := res.Payload.WriteFile(res.JSON); err != nil {
		return nil, err
	}
	if cfg.Plot && res.NFrames() > 0 {
		res.Plot = cfg.PlotOut() + ".png"
		p := res.Payload
		if err := chemplot.RgPlot(p.Times, p.Rg, p.RgX, p.RgY, p.RgZ, cfg.Name, cfg.PlotOut()); err != nil {
			return nil, fmt.Errorf("plotting: %w", err)
		}
	}
	return res, nil
}

// consumers feeds each record to all its consumers, and closes all of them once.
type consumers struct {
	list   []Consumer
	closed bool
}

func (C *consumers) Consume(r *Record) error {
	for _, c := range C.list {
		if err := c.Consume(r); err != nil {
			return fmt.Errorf("frame %d: %w", r.Index, err)
		}
	}
	return nil
}

func (C *consumers) Close() error {
	if C.closed {
		return nil
	}
	C.closed = true
	var errs []error
	for _, c := range C.list {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
