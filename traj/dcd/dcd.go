/*
 * dcd.go, part of micelle.
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
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	chem "github.com/rmera/micelle"
	v3 "github.com/rmera/micelle/v3"
)

const mAXTITLE int32 = 80

// The DCD time unit (AKMA) in ps.
const akma2ps = 0.04888821

// DCDObj is a container for an Charmm/NAMD binary trajectory file.
type DCDObj struct {
	natoms       int32
	nframes      int32 //as declared in the header, it can be 0 for unfinished files.
	istart       int32
	nsavc        int32
	delta        float64 //in AKMA units
	readLast     bool    //Have we read the last frame?
	readable     bool    //Is it ready to be read?
	filename     string
	charmm       bool //Charmm traj?
	extrablock   bool
	fourdim      bool
	read         int //frames read so far
	fhandle      *os.File
	decompressor io.ReadCloser //nil for plain DCD files
	dcd          *bufio.Reader //The DCD file
	dcdFields    [][]float32
	cell         [6]float64
	hascell      bool
	endian       binary.ByteOrder
	logger       *log.Logger
}

// New opens the DCD file filename for reading and returns a pointer to the trajectory.
// CHARMM, NAMD and X-plor files are supported, in both endiannesses, but not files
// with fixed atoms. Files with the .gz or .lzw extension are decompressed on the fly.
// Non-fatal problems are reported to logger, if given, or to the standard logger.
func New(filename string, logger ...*log.Logger) (*DCDObj, error) {
	traj := &DCDObj{logger: log.Default()}
	if len(logger) > 0 && logger[0] != nil {
		traj.logger = logger[0]
	}
	if err := traj.initRead(filename); err != nil {
		if traj.fhandle != nil {
			traj.fhandle.Close()
		}
		return nil, errDecorate(err, "New", filename)
	}
	traj.dcdFields = make([][]float32, 3)
	traj.dcdFields[0] = make([]float32, int(traj.natoms))
	traj.dcdFields[1] = make([]float32, int(traj.natoms))
	traj.dcdFields[2] = make([]float32, int(traj.natoms))
	return traj, nil
}

// Readable returns true if the object is ready to be read from
// false otherwise. It doesnt guarantee that there is something
// to read.
func (D *DCDObj) Readable() bool {
	return D.readable
}

// initRead reads the DCD header.
func (D *DCDObj) initRead(name string) error {
	D.endian = binary.LittleEndian
	D.filename = name
	NB := bytes.NewBuffer //shortness sake
	wrapbinerr := func(err error) error {
		return Error{err.Error(), D.filename, []string{"binary.Read", "initRead"}, true}
	}
	source, err := D.prepSource(name)
	if err != nil {
		return errDecorate(err, "initRead", D.filename)
	}
	D.dcd = bufio.NewReader(source)
	var check int32
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrapbinerr(err)
	}
	//The first thing we should read is an 84 (the size of the first block).
	//If this fails it means that the file is big endian.
	if check != 84 {
		D.endian = binary.BigEndian
		if swapped := int32(binary.BigEndian.Uint32(binary.LittleEndian.AppendUint32(nil, uint32(check)))); swapped != 84 {
			return Error{"First block size is not 84 in any byte order", D.filename, []string{"initRead"}, true}
		}
	}
	//Then the magic number "CORD"
	magic := make([]byte, 4)
	if err := binary.Read(D.dcd, D.endian, magic); err != nil {
		return wrapbinerr(err)
	}
	if string(magic) != "CORD" {
		return Error{"Wrong magic number " + string(magic), D.filename, []string{"initRead"}, true}
	}
	//We first read a big chuck for random access.
	buf := make([]byte, 80)
	if err := binary.Read(D.dcd, D.endian, buf); err != nil {
		return wrapbinerr(err)
	}
	for _, v := range []struct {
		offset int
		to     *int32
	}{{0, &D.nframes}, {4, &D.istart}, {8, &D.nsavc}} {
		if err := binary.Read(NB(buf[v.offset:]), D.endian, v.to); err != nil {
			return wrapbinerr(err)
		}
	}
	//X-plor sets this last int to zero, charmm sets it to its version number.
	//if we have a charmm file we get some additional flags.
	if err := binary.Read(NB(buf[76:]), D.endian, &check); err != nil {
		return wrapbinerr(err)
	}
	if check != 0 {
		D.charmm = true
		if err := binary.Read(NB(buf[40:]), D.endian, &check); err != nil {
			return wrapbinerr(err)
		}
		D.extrablock = check != 0
		if err := binary.Read(NB(buf[44:]), D.endian, &check); err != nil {
			return wrapbinerr(err)
		}
		D.fourdim = check == 1
		var delta float32
		if err := binary.Read(NB(buf[36:]), D.endian, &delta); err != nil {
			return wrapbinerr(err)
		}
		D.delta = float64(delta)
	} else {
		//X-plor stores the time step as a double.
		if err := binary.Read(NB(buf[36:]), D.endian, &D.delta); err != nil {
			return wrapbinerr(err)
		}
	}
	var fixed int32
	if err := binary.Read(NB(buf[32:]), D.endian, &fixed); err != nil {
		return wrapbinerr(err)
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrapbinerr(err)
	}
	if check != 84 {
		return Error{WrongFormat, D.filename, []string{"initRead"}, true}
	}
	//the title block
	var blocksize int32
	if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
		return wrapbinerr(err)
	}
	//how many units of MAXTITLE does the title have?
	var ntitle int32
	if err := binary.Read(D.dcd, D.endian, &ntitle); err != nil {
		return wrapbinerr(err)
	}
	if ntitle < 0 || 4+ntitle*mAXTITLE != blocksize {
		return Error{fmt.Sprintf("Title block of %d bytes can't have %d lines", blocksize, ntitle), D.filename, []string{"initRead"}, true}
	}
	if _, err := D.dcd.Discard(int(mAXTITLE * ntitle)); err != nil {
		return wrapbinerr(err)
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrapbinerr(err)
	}
	if check != blocksize {
		return Error{SecurityCheckFailed, D.filename, []string{"initRead"}, true}
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrapbinerr(err)
	}
	if check != 4 { //one must read a 4 before the natoms
		return Error{WrongFormat, D.filename, []string{"initRead"}, true}
	}
	if err := binary.Read(D.dcd, D.endian, &D.natoms); err != nil {
		return wrapbinerr(err)
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrapbinerr(err)
	}
	if check != 4 { //and one more 4
		return Error{WrongFormat, D.filename, []string{"initRead"}, true}
	}
	if fixed != 0 {
		return Error{"Fixed atoms not supported", D.filename, []string{"initRead"}, true}
	}
	if D.natoms <= 0 {
		return Error{fmt.Sprintf("Invalid number of atoms: %d", D.natoms), D.filename, []string{"initRead"}, true}
	}
	if D.nsavc <= 0 {
		D.nsavc = 1
	}
	D.readable = true
	return nil
}

// Next Reads the next frame in a DCDObj that has been initialized for read
// With initread. If keep is nil, the coordinates are discarded.
// If box is given and the trajectory has a unit cell, the cell vectors are put in box[0].
func (D *DCDObj) Next(keep *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return Error{TrajUnIni, D.filename, []string{"Next"}, true}
	}
	if err := D.nextRaw(D.dcdFields); err != nil {
		if _, ok := err.(*lastFrameError); ok {
			D.Close()
		}
		return errDecorate(err, "Next", D.filename)
	}
	D.read++
	if len(box) > 0 && len(box[0]) >= 9 && D.hascell {
		copy(box[0], chem.BoxVectors(D.cell))
	}
	if keep == nil {
		return nil
	}
	if keep.NVecs() != int(D.natoms) {
		return Error{fmt.Sprintf("Matrix of %d vectors given for %d atoms", keep.NVecs(), D.natoms), D.filename, []string{"Next"}, true}
	}
	for i := 0; i < int(D.natoms); i++ {
		keep.Set(i, 0, float64(D.dcdFields[0][i]))
		keep.Set(i, 1, float64(D.dcdFields[1][i]))
		keep.Set(i, 2, float64(D.dcdFields[2][i]))
	}
	return nil
}

// Time returns the simulation time, in ps, of the last frame read.
func (D *DCDObj) Time() (float64, bool) {
	if D.read == 0 || D.delta == 0 {
		return 0, false
	}
	step := float64(D.istart) + float64(D.read-1)*float64(D.nsavc)
	return step * D.delta * akma2ps, true
}

// NFrames returns the number of frames declared in the header. Some programs
// leave it at zero until the file is closed.
func (D *DCDObj) NFrames() int {
	return int(D.nframes)
}

// nextRaw reads the next frame into blocks, as one float32 slice per axis.
func (D *DCDObj) nextRaw(blocks [][]float32) error {
	if len(blocks[0]) != int(D.natoms) || len(blocks[1]) != int(D.natoms) || len(blocks[2]) != int(D.natoms) {
		return Error{NotEnoughSpace, D.filename, []string{"nextRaw"}, true}
	}
	if D.readLast {
		return newlastFrameError(D.filename, "nextRaw")
	}
	var blocksize int32
	if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
		if errors.Is(err, io.EOF) {
			//nothing bad happened here, the trajectory just ended.
			return newlastFrameError(D.filename, "nextRaw")
		}
		return Error{err.Error(), D.filename, []string{"binary.Read", "nextRaw"}, true}
	}
	//Even when there is an extra block, it is not present in all
	//snapshots for some trajectories, so we must use the block size to see if
	//there is an extra block or if the X block starts inmediately
	if D.extrablock && blocksize != D.natoms*4 {
		if err := D.readCell(blocksize); err != nil {
			return errDecorate(err, "nextRaw", D.filename)
		}
		blocksize = 0
	}
	for i := 0; i < 3; i++ {
		//we collect the block size only if it has not been collected before
		if blocksize == 0 {
			if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
				return Error{err.Error(), D.filename, []string{"binary.Read", "nextRaw"}, true}
			}
		}
		if err := D.readFloat32Block(blocksize, blocks[i]); err != nil {
			return errDecorate(err, "nextRaw", D.filename)
		}
		blocksize = 0
	}
	//we skip the 4-D values if they exist. Apparently this is not present in the
	//last snapshot, so we use an EOF here to signal that we have read the last snapshot.
	if D.charmm && D.fourdim {
		if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
			if !errors.Is(err, io.EOF) {
				return Error{err.Error(), D.filename, []string{"binary.Read", "nextRaw"}, true}
			}
			D.readLast = true
			return nil
		}
		if _, err := D.readByteBlock(blocksize); err != nil {
			return errDecorate(err, "nextRaw", D.filename)
		}
	}
	return nil
}

// readCell reads the unit cell block. The cell is stored as A, gamma, B, beta, alpha, C.
// Angles are in degrees, or, for CHARMM and NAMD>=2.5, as cosines.
func (D *DCDObj) readCell(blocksize int32) error {
	block, err := D.readByteBlock(blocksize)
	if err != nil {
		return errDecorate(err, "readCell", D.filename)
	}
	if blocksize != 48 {
		//something else, we just skip it.
		D.hascell = false
		return nil
	}
	var cell [6]float64
	if err := binary.Read(bytes.NewBuffer(block), D.endian, &cell); err != nil {
		return Error{err.Error(), D.filename, []string{"binary.Read", "readCell"}, true}
	}
	angles := [3]float64{cell[4], cell[3], cell[1]} //alpha, beta, gamma
	for i, v := range angles {
		if v >= -1 && v <= 1 {
			angles[i] = math.Acos(v) * 180 / math.Pi
		}
	}
	D.cell = [6]float64{cell[0], cell[2], cell[5], angles[0], angles[1], angles[2]}
	D.hascell = cell[0] > 0 && cell[2] > 0 && cell[5] > 0
	return nil
}

// readFloat32Block reads a block of float32 into block, which must have the
// appropiate size, and checks the block size at the end.
func (D *DCDObj) readFloat32Block(blocksize int32, block []float32) error {
	if blocksize != int32(len(block))*4 {
		return Error{fmt.Sprintf("Coordinate block of %d bytes for %d atoms", blocksize, len(block)), D.filename, []string{"readFloat32Block"}, true}
	}
	var check int32
	if err := binary.Read(D.dcd, D.endian, block); err != nil {
		return Error{err.Error(), D.filename, []string{"binary.Read", "readFloat32Block"}, true}
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return Error{err.Error(), D.filename, []string{"binary.Read", "readFloat32Block"}, true}
	}
	if check != blocksize {
		return Error{SecurityCheckFailed, D.filename, []string{"readFloat32Block"}, true}
	}
	return nil
}

// readByteBlock reads blocksize bytes and the trailing block size.
func (D *DCDObj) readByteBlock(blocksize int32) ([]byte, error) {
	if blocksize < 0 {
		return nil, Error{WrongFormat, D.filename, []string{"readByteBlock"}, true}
	}
	var check int32
	block := make([]byte, blocksize)
	if _, err := io.ReadFull(D.dcd, block); err != nil {
		return nil, Error{err.Error(), D.filename, []string{"io.ReadFull", "readByteBlock"}, true}
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return nil, Error{err.Error(), D.filename, []string{"binary.Read", "readByteBlock"}, true}
	}
	if check != blocksize {
		return nil, Error{SecurityCheckFailed, D.filename, []string{"readByteBlock"}, true}
	}
	return block, nil
}

// Len returns the number of atoms per frame in the DCDObj.
func (D *DCDObj) Len() int {
	return int(D.natoms)
}

// Close closes the file and marks the object as unreadable.
func (D *DCDObj) Close() {
	if !D.readable {
		return
	}
	if D.decompressor != nil {
		D.decompressor.Close()
	}
	D.fhandle.Close()
	D.readable = false
}
