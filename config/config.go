/*
 * config.go, part of micelle.
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

// Package config defines the configuration of a micelle run: where the
// trajectory comes from, where the outputs go, and how frames and atoms
// are selected.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains the parameters of a run.
type Config struct {
	// Structure is the PDB file with the topology and, possibly, the first frame(s).
	Structure string `koanf:"structure"`

	// Trajectory is the coordinate trajectory (xtc, dcd, stf). If empty, the
	// models in Structure are used as the trajectory.
	Trajectory string `koanf:"trajectory"`

	// OutDir is the directory where all outputs are written. Created if needed.
	OutDir string `koanf:"out_dir"`

	// Name is the system name, used in the JSON payload and as prefix for the outputs.
	Name string `koanf:"name"`

	// Stride keeps one of every Stride frames, starting from the first.
	Stride int `koanf:"stride"`

	// AllAtoms uses every atom. If false, Selection is used.
	AllAtoms bool `koanf:"all_atoms"`

	// Selection is a named selection, such as "protein" or "resname C12 SDS".
	Selection string `koanf:"selection"`

	// SampledFormat, if not empty, also writes the sampled frames as a
	// trajectory: "stf" or "dcd".
	SampledFormat string `koanf:"sampled_format"`

	// Report prints a summary (charts, histogram) of the metrics.
	Report bool `koanf:"report"`

	// Plot saves a PNG plot of the radii of gyration.
	Plot bool `koanf:"plot"`
}

// Default returns the configuration with the default values.
func Default() *Config {
	return &Config{
		Structure:  "C12.pdb",
		Trajectory: "C12_skip.xtc",
		OutDir:     ".",
		Name:       "C12",
		Stride:     5,
		AllAtoms:   true,
		Selection:  "protein",
	}
}

// Load builds a Config by layering the YAML file path over the defaults.
func Load(path string) (*Config, error) {
	base := Default()
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
	}
	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate returns an error wrapping ErrInvalidConfig if the configuration can't be used.
func (c *Config) Validate() error {
	switch {
	case c.Stride < 1:
		return fmt.Errorf("%w: stride must be at least 1, got %d", ErrInvalidConfig, c.Stride)
	case c.Structure == "":
		return fmt.Errorf("%w: structure must not be empty", ErrInvalidConfig)
	case c.Name == "":
		return fmt.Errorf("%w: name must not be empty", ErrInvalidConfig)
	case strings.ContainsRune(c.Name, filepath.Separator):
		return fmt.Errorf("%w: name %q contains a path separator", ErrInvalidConfig, c.Name)
	case !c.AllAtoms && strings.TrimSpace(c.Selection) == "":
		return fmt.Errorf("%w: selection must not be empty unless all_atoms is set", ErrInvalidConfig)
	}
	switch c.SampledFormat {
	case "", "stf", "dcd":
	default:
		return fmt.Errorf("%w: unknown sampled_format %q", ErrInvalidConfig, c.SampledFormat)
	}
	return nil
}

// SelectionString returns the atom selection in effect.
func (c *Config) SelectionString() string {
	if c.AllAtoms {
		return "all"
	}
	return c.Selection
}

// PDBOut returns the path of the multi-model PDB output.
func (c *Config) PDBOut() string {
	return filepath.Join(c.OutDir, c.Name+"_multiframe.pdb")
}

// JSONOut returns the path of the metrics JSON output.
func (c *Config) JSONOut() string {
	return filepath.Join(c.OutDir, c.Name+"_metrics.json")
}

// SampledOut returns the path of the sampled trajectory, or an empty string if
// none is to be written.
func (c *Config) SampledOut() string {
	if c.SampledFormat == "" {
		return ""
	}
	return filepath.Join(c.OutDir, c.Name+"_sampled."+c.SampledFormat)
}

// PlotOut returns the path, without the .png extension, of the Rg plot.
func (c *Config) PlotOut() string {
	return filepath.Join(c.OutDir, c.Name+"_rg")
}
