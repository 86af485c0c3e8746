/*
 * payload.go, part of micelle.
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

package metrics

import (
	"encoding/json"
	"fmt"
	"os"
)

// Payload is the metrics time series, as written to JSON. All the slices
// have NFrames elements, the i-th element of each corresponding to the
// i-th sampled frame.
type Payload struct {
	Name    string    `json:"name"`
	Stride  int       `json:"stride"`
	NFrames int       `json:"n_frames"`
	Times   []float64 `json:"times"`
	CX      []float64 `json:"cx"`
	CY      []float64 `json:"cy"`
	CZ      []float64 `json:"cz"`
	Rg      []float64 `json:"rg"`
	RgX     []float64 `json:"rgx"`
	RgY     []float64 `json:"rgy"`
	RgZ     []float64 `json:"rgz"`
}

// Collector accumulates the metrics of the sampled frames, in order.
type Collector struct {
	name   string
	stride int
	frames []Frame
}

// NewCollector returns an empty collector for the system name, sampled with stride.
func NewCollector(name string, stride int) *Collector {
	return &Collector{name: name, stride: stride}
}

// Add appends the metrics for the next sampled frame.
func (C *Collector) Add(f Frame) {
	C.frames = append(C.frames, f)
}

// Len returns the number of frames collected.
func (C *Collector) Len() int {
	return len(C.frames)
}

// Frames returns the collected frames. The slice is not a copy.
func (C *Collector) Frames() []Frame {
	return C.frames
}

// Payload returns the collected metrics as parallel series.
func (C *Collector) Payload() Payload {
	n := len(C.frames)
	p := Payload{
		Name:    C.name,
		Stride:  C.stride,
		NFrames: n,
		Times:   make([]float64, n),
		CX:      make([]float64, n),
		CY:      make([]float64, n),
		CZ:      make([]float64, n),
		Rg:      make([]float64, n),
		RgX:     make([]float64, n),
		RgY:     make([]float64, n),
		RgZ:     make([]float64, n),
	}
	for i, f := range C.frames {
		p.Times[i] = f.Time
		p.CX[i], p.CY[i], p.CZ[i] = f.Center[0], f.Center[1], f.Center[2]
		p.Rg[i] = f.Rg
		p.RgX[i], p.RgY[i], p.RgZ[i] = f.AxisRg[0], f.AxisRg[1], f.AxisRg[2]
	}
	return p
}

// Check returns an error if the series in the payload don't all have NFrames elements.
func (p Payload) Check() error {
	series := map[string][]float64{"times": p.Times, "cx": p.CX, "cy": p.CY, "cz": p.CZ,
		"rg": p.Rg, "rgx": p.RgX, "rgy": p.RgY, "rgz": p.RgZ}
	for k, v := range series {
		if len(v) != p.NFrames {
			return fmt.Errorf("metrics: series %s has %d elements for %d frames", k, len(v), p.NFrames)
		}
	}
	return nil
}

// Marshal returns the payload as indented JSON, two spaces per level, with
// the keys in a fixed order.
func (p Payload) Marshal() ([]byte, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(p, "", "  ")
}

// WriteFile writes the payload as JSON to the file name.
func (p Payload) WriteFile(name string) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		return fmt.Errorf("metrics: writing %s: %w", name, err)
	}
	return nil
}
