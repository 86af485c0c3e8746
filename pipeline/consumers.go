/*
 * consumers.go, part of micelle.
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

	chem "github.com/rmera/micelle"
	"github.com/rmera/micelle/metrics"
	"github.com/rmera/micelle/traj/dcd"
	"github.com/rmera/micelle/traj/stf"
)

// Consumer takes the records of a Stream, in order.
type Consumer interface {
	Consume(r *Record) error
	//Close releases whatever the consumer holds. It is called once, after the last record
	//or after a failure.
	Close() error
}

// WriterConsumer puts the coordinates of each record in a trajectory writer.
type WriterConsumer struct {
	w chem.TrajWriter
}

// NewWriterConsumer returns a consumer that writes each record to w.
func NewWriterConsumer(w chem.TrajWriter) *WriterConsumer {
	return &WriterConsumer{w: w}
}

func (W *WriterConsumer) Consume(r *Record) error {
	if r.Box != nil {
		return W.w.WNext(r.Coords, r.Box)
	}
	return W.w.WNext(r.Coords)
}

func (W *WriterConsumer) Close() error {
	return W.w.Close()
}

// LazyWriterConsumer opens its writer when the first record arrives, so the
// writer can know whether the frames carry a box.
type LazyWriterConsumer struct {
	open func(first *Record) (chem.TrajWriter, error)
	w    chem.TrajWriter
}

func (L *LazyWriterConsumer) Consume(r *Record) error {
	if L.w == nil {
		w, err := L.open(r)
		if err != nil {
			return err
		}
		L.w = w
	}
	if r.Box != nil {
		return L.w.WNext(r.Coords, r.Box)
	}
	return L.w.WNext(r.Coords)
}

func (L *LazyWriterConsumer) Close() error {
	if L.w == nil {
		return nil
	}
	return L.w.Close()
}

// NewSampledWriter returns a consumer that writes the records to the trajectory
// name, in the format given ("stf" or "dcd"). The DCD file has a unit cell
// if the first record has a box.
func NewSampledWriter(name, format string, natoms int, header map[string]string) (*LazyWriterConsumer, error) {
	var open func(*Record) (chem.TrajWriter, error)
	switch format {
	case "stf":
		open = func(*Record) (chem.TrajWriter, error) { return stf.NewWriter(name, natoms, header) }
	case "dcd":
		open = func(first *Record) (chem.TrajWriter, error) { return dcd.NewWriter(name, natoms, first.Box != nil) }
	default:
		return nil, fmt.Errorf("unknown trajectory format %q", format)
	}
	return &LazyWriterConsumer{open: open}, nil
}

// MetricsConsumer collects the metrics of each record.
type MetricsConsumer struct {
	C *metrics.Collector
}

// NewMetricsConsumer returns a consumer that collects metrics for the system name.
func NewMetricsConsumer(name string, stride int) *MetricsConsumer {
	return &MetricsConsumer{C: metrics.NewCollector(name, stride)}
}

func (M *MetricsConsumer) Consume(r *Record) error {
	M.C.Add(r.Metrics)
	return nil
}

func (M *MetricsConsumer) Close() error { return nil }
