/*
 * config_test.go, part of micelle.
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

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/micelle/config"
	"github.com/smartystreets/goconvey/convey"
)

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "micelle.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		cfg := config.Default()

		convey.Convey("Then it should carry the original constants", func() {
			convey.So(cfg.Structure, convey.ShouldEqual, "C12.pdb")
			convey.So(cfg.Trajectory, convey.ShouldEqual, "C12_skip.xtc")
			convey.So(cfg.OutDir, convey.ShouldEqual, ".")
			convey.So(cfg.Name, convey.ShouldEqual, "C12")
			convey.So(cfg.Stride, convey.ShouldEqual, 5)
			convey.So(cfg.AllAtoms, convey.ShouldBeTrue)
			convey.So(cfg.SelectionString(), convey.ShouldEqual, "all")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the output paths should derive from the name", func() {
			convey.So(cfg.PDBOut(), convey.ShouldEqual, "C12_multiframe.pdb")
			convey.So(cfg.JSONOut(), convey.ShouldEqual, "C12_metrics.json")
			convey.So(cfg.SampledOut(), convey.ShouldEqual, "")
			convey.So(cfg.PlotOut(), convey.ShouldEqual, "C12_rg")
		})
	})
}

func TestLoad(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		convey.Convey("When loading a YAML file", func() {
			path := writeConfigFile(t, `
trajectory: run.dcd
out_dir: public
stride: 10
all_atoms: false
selection: resname C12
sampled_format: stf
`)
			cfg, err := config.Load(path)

			convey.Convey("Then the file values should override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Trajectory, convey.ShouldEqual, "run.dcd")
				convey.So(cfg.Stride, convey.ShouldEqual, 10)
				convey.So(cfg.SelectionString(), convey.ShouldEqual, "resname C12")
				convey.So(cfg.SampledOut(), convey.ShouldEqual, filepath.Join("public", "C12_sampled.stf"))
			})

			convey.Convey("Then the missing keys should keep their defaults", func() {
				convey.So(cfg.Structure, convey.ShouldEqual, "C12.pdb")
				convey.So(cfg.Name, convey.ShouldEqual, "C12")
				convey.So(cfg.Report, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the file does not exist", func() {
			cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the YAML is invalid", func() {
			cfg, err := config.Load(writeConfigFile(t, `invalid: yaml: content: [`))

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the values are invalid", func() {
			cfg, err := config.Load(writeConfigFile(t, "stride: 0\n"))

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given a valid configuration", t, func() {
		cfg := config.Default()

		convey.Convey("A negative stride should be rejected", func() {
			cfg.Stride = -1
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("An empty structure should be rejected", func() {
			cfg.Structure = ""
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("An empty name should be rejected", func() {
			cfg.Name = ""
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("An unknown sampled format should be rejected", func() {
			cfg.SampledFormat = "xyz"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("An empty selection should be rejected without all_atoms", func() {
			cfg.AllAtoms = false
			cfg.Selection = " "
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("An empty trajectory is fine", func() {
			cfg.Trajectory = ""
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
