/*
 * doc.go, part of micelle.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*
Package chem is the main package of micelle. It provides atom, topology and molecule
structures, reading and writing of (multi-model) PDB files, atom selections, and the
interfaces shared by the trajectory readers and writers in the traj subpackages.

Capabilities:

  - Reads single- and multi-model PDB files, including the unit cell.
  - Writes multi-model PDB files one model at a time (PDBWriter), so long
    trajectories never need to be in memory.
  - Selects atoms by name, residue name, chain, or as "protein"/"not water".
  - A Molecule read from a multi-model PDB can itself be read as a trajectory.

Trajectories are read with the Traj interface. The end of a trajectory is signaled
by an error that implements LastFrameError, which is not a failure.
*/
package chem
