/*
 * main.go, part of micelle.
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

// Command micelle down-samples the trajectory of a micelle into a multi-model PDB
// file and writes the center and radii of gyration of each sampled frame as JSON.
//
// It takes no arguments. The defaults (C12.pdb, C12_skip.xtc, stride 5) can be
// changed with a micelle.yaml file in the working directory.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/rmera/micelle/config"
	"github.com/rmera/micelle/pipeline"
)

const configFile = "micelle.yaml"

func main() {
	log.SetFlags(0)
	log.SetPrefix("micelle: ")
	cfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}
	res, err := pipeline.Run(cfg, log.Default())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Wrote:", res.PDB)
	fmt.Println("Wrote:", res.JSON)
	if res.Sampled != "" {
		fmt.Println("Wrote:", res.Sampled)
	}
	if res.Plot != "" {
		fmt.Println("Wrote:", res.Plot)
	}
	fmt.Println("Frames:", res.NFrames())
	if cfg.Report && res.NFrames() > 0 {
		if err := pipeline.Report(os.Stdout, cfg.Name, res.Frames); err != nil {
			log.Fatal(err)
		}
	}
}

// loadConfig returns the defaults, overlaid by the file name if it exists.
func loadConfig(name string) (*config.Config, error) {
	if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return config.Load(name)
}
