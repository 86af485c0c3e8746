/*
 * open.go, part of micelle.
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
	"log"
	"path/filepath"
	"strings"

	chem "github.com/rmera/micelle"
	"github.com/rmera/micelle/traj/dcd"
	"github.com/rmera/micelle/traj/stf"
	"github.com/rmera/micelle/traj/xtc"
)

// Source is a structure file and a trajectory read as one sequence of frames.
type Source struct {
	Mol    *chem.Molecule //the structure, which provides the topology
	Traj   chem.Traj
	Format string //format of the trajectory: xtc, dcd, stf or pdb.
	closer func()
}

// Open reads the PDB file structure and opens trajectory, chosen by its extension.
// If trajectory is empty, the models in the structure file are the trajectory.
// The number of atoms in the trajectory must match the structure.
// Non-fatal problems reading the trajectory are reported to logger.
func Open(structure, trajectory string, logger *log.Logger) (*Source, error) {
	mol, err := chem.PDBFileRead(structure)
	if err != nil {
		return nil, fmt.Errorf("reading structure %s: %w", structure, err)
	}
	S := &Source{Mol: mol, closer: func() {}}
	if trajectory == "" {
		S.Traj = mol
		S.Format = "pdb"
		return S, nil
	}
	ext := strings.ToLower(filepath.Ext(trajectory))
	switch {
	case ext == ".xtc":
		t, err := xtc.New(trajectory)
		if err != nil {
			return nil, fmt.Errorf("opening trajectory: %w", err)
		}
		S.Traj, S.Format, S.closer = t, "xtc", t.Close
	case ext == ".dcd" || ext == ".gz" || ext == ".lzw":
		t, err := dcd.New(trajectory, logger)
		if err != nil {
			return nil, fmt.Errorf("opening trajectory: %w", err)
		}
		S.Traj, S.Format, S.closer = t, "dcd", t.Close
	case strings.HasPrefix(ext, ".st"):
		t, _, err := stf.New(trajectory, logger)
		if err != nil {
			return nil, fmt.Errorf("opening trajectory: %w", err)
		}
		S.Traj, S.Format, S.closer = t, "stf", t.Close
	case ext == ".pdb" || ext == ".ent":
		t, err := chem.PDBFileRead(trajectory)
		if err != nil {
			return nil, fmt.Errorf("opening trajectory: %w", err)
		}
		S.Traj, S.Format = t, "pdb"
	default:
		return nil, fmt.Errorf("unknown trajectory format for %s", trajectory)
	}
	if S.Traj.Len() != mol.Len() {
		S.Close()
		return nil, fmt.Errorf("trajectory %s has %d atoms, structure %s has %d", trajectory, S.Traj.Len(), structure, mol.Len())
	}
	return S, nil
}

// Close closes the trajectory. It can be called more than once.
func (S *Source) Close() {
	S.closer()
}
