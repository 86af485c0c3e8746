/*
 * dcd_write.go, part of micelle.
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

package dcd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	chem "github.com/rmera/micelle"
	v3 "github.com/rmera/micelle/v3"
)

// DCDWObj is a container for an Charmm/NAMD binary trajectory file
// opened for writing
type DCDWObj struct {
	natoms    int32
	writable  bool //Is it ready to be written on
	filename  string
	unitcell  bool
	frames    int32
	dcd       *os.File //The DCD file
	dcdFields [][]float32
	buf       *bytes.Buffer
	endian    binary.ByteOrder
}

// NewWriter initializes a DCD trajectory for writing. If unitcell is given and true,
// each frame carries a unit cell block (zeroes when WNext gets no box).
func NewWriter(filename string, natoms int, unitcell ...bool) (*DCDWObj, error) {
	traj := new(DCDWObj)
	traj.natoms = int32(natoms)
	traj.unitcell = len(unitcell) > 0 && unitcell[0]
	if err := traj.initWrite(filename); err != nil {
		if traj.dcd != nil {
			traj.dcd.Close()
		}
		return nil, errDecorate(err, "NewWriter", filename)
	}
	traj.dcdFields = make([][]float32, 3)
	for i := range traj.dcdFields {
		traj.dcdFields[i] = make([]float32, natoms)
	}
	return traj, nil
}

// Len returns the number of atoms per frame.
func (D *DCDWObj) Len() int {
	return int(D.natoms)
}

// Close updates the number of frames in the header and closes the file.
func (D *DCDWObj) Close() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	err := D.updateFrames()
	if err2 := D.dcd.Close(); err == nil && err2 != nil {
		err = Error{err2.Error(), D.filename, []string{"os.File.Close", "Close"}, true}
	}
	return err
}

// initWrite creates the file and writes the header for a CHARMM-style, little endian DCD.
func (D *DCDWObj) initWrite(name string) error {
	D.endian = binary.LittleEndian
	D.filename = name
	if D.natoms <= 0 {
		return Error{"Trajectory not initialized correctly, the number of atoms is set to zero!", D.filename, []string{"initWrite"}, true}
	}
	var err error
	D.dcd, err = os.Create(name)
	if err != nil {
		return Error{err.Error(), D.filename, []string{"os.Create", "initWrite"}, true}
	}
	D.buf = new(bytes.Buffer)
	icntrl := make([]int32, 20)
	//icntrl[0] is the number of frames, updated when the file is closed.
	icntrl[2] = 1 //step interval (nsavc)
	if D.unitcell {
		icntrl[10] = 1
	}
	icntrl[19] = 24 //charmm version, let's say, 24
	B := D.buf
	binary.Write(B, D.endian, int32(84))
	B.WriteString("CORD")
	binary.Write(B, D.endian, icntrl[:9])
	binary.Write(B, D.endian, float32(1)) //delta time
	binary.Write(B, D.endian, icntrl[10:])
	binary.Write(B, D.endian, int32(84))
	//how many units of mAXTITLE does the title have?
	var ntitle int32 = 1
	title := make([]byte, ntitle*mAXTITLE)
	copy(title, "REMARKS WRITTEN WITH MICELLE")
	for i := len("REMARKS WRITTEN WITH MICELLE"); i < len(title); i++ {
		title[i] = ' '
	}
	binary.Write(B, D.endian, 4+ntitle*mAXTITLE)
	binary.Write(B, D.endian, ntitle)
	B.Write(title)
	binary.Write(B, D.endian, 4+ntitle*mAXTITLE)
	//ok, this is important, the number of atoms in each snapshot
	binary.Write(B, D.endian, int32(4))
	binary.Write(B, D.endian, D.natoms)
	binary.Write(B, D.endian, int32(4))
	if _, err := D.dcd.Write(B.Bytes()); err != nil {
		return Error{err.Error(), D.filename, []string{"os.File.Write", "initWrite"}, true}
	}
	D.writable = true
	return nil
}

// WNext writes the next frame to the trajectory. If the trajectory was created with
// a unit cell and box is given, the box is written in the unit cell block.
func (D *DCDWObj) WNext(towrite *v3.Matrix, box ...[]float64) error {
	if !D.writable {
		return Error{TrajUnIniWrite, D.filename, []string{"WNext"}, true}
	}
	if towrite == nil {
		return Error{"got nil coordinates", D.filename, []string{"WNext"}, true}
	}
	if int32(towrite.NVecs()) != D.natoms {
		return Error{fmt.Sprintf("%d coordinates given for %d atoms", towrite.NVecs(), D.natoms), D.filename, []string{"WNext"}, true}
	}
	for i := 0; i < int(D.natoms); i++ {
		D.dcdFields[0][i] = float32(towrite.At(i, 0))
		D.dcdFields[1][i] = float32(towrite.At(i, 1))
		D.dcdFields[2][i] = float32(towrite.At(i, 2))
	}
	D.buf.Reset()
	if D.unitcell {
		var cell [6]float64
		if len(box) > 0 {
			if p, ok := chem.BoxParameters(box[0]); ok {
				//A, gamma, B, beta, alpha, C. Angles as cosines, like NAMD.
				cell = [6]float64{p[0], math.Cos(p[5] * math.Pi / 180), p[1], math.Cos(p[4] * math.Pi / 180), math.Cos(p[3] * math.Pi / 180), p[2]}
			}
		}
		binary.Write(D.buf, D.endian, int32(48))
		binary.Write(D.buf, D.endian, cell)
		binary.Write(D.buf, D.endian, int32(48))
	}
	if err := D.wnextRaw(D.dcdFields); err != nil {
		return errDecorate(err, "WNext", D.filename)
	}
	D.frames++
	return nil
}

// wnextRaw writes a frame given as one float32 slice per axis, after whatever
// is already in the buffer.
func (D *DCDWObj) wnextRaw(blocks [][]float32) error {
	if len(blocks[0]) != int(D.natoms) || len(blocks[1]) != int(D.natoms) || len(blocks[2]) != int(D.natoms) {
		return Error{NotEnoughSpace, D.filename, []string{"wnextRaw"}, true}
	}
	for _, b := range blocks {
		D.writeFloat32Block(b)
	}
	if _, err := D.dcd.Write(D.buf.Bytes()); err != nil {
		return Error{err.Error(), D.filename, []string{"os.File.Write", "wnextRaw"}, true}
	}
	return nil
}

// writeFloat32Block puts a block of float32s in the buffer, with its size before and after.
// Writes to a bytes.Buffer don't fail.
func (D *DCDWObj) writeFloat32Block(block []float32) {
	var blocksize int32 = int32(len(block)) * 4 //the size is in bytes
	binary.Write(D.buf, D.endian, blocksize)
	binary.Write(D.buf, D.endian, block)
	binary.Write(D.buf, D.endian, blocksize)
}

// DCD requires the number of frames at the begining.
func (D *DCDWObj) updateFrames() error {
	currentoffset, err := D.dcd.Seek(0, io.SeekCurrent) //we'll need it to go back
	if err != nil {
		return Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	//the number of frames is right after the 84 and the magic number.
	if _, err = D.dcd.Seek(8, io.SeekStart); err != nil {
		return Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	if err := binary.Write(D.dcd, D.endian, D.frames); err != nil {
		return Error{err.Error(), D.filename, []string{"binary.Write", "updateFrames"}, true}
	}
	if _, err = D.dcd.Seek(currentoffset, io.SeekStart); err != nil {
		return Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	return nil
}
