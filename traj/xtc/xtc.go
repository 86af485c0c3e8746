/*
 * xtc.go, part of micelle.
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

package xtc

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	v3 "github.com/rmera/micelle/v3"
)

const xtcMagic = 1995

// XTCObj is a container for a GROMACS XTC binary trajectory file.
// The file is read sequentially, with no external libraries.
type XTCObj struct {
	readable bool
	natoms   int
	filename string
	f        *os.File
	r        *bufio.Reader
	step     int32
	time     float32
	read     int //frames read so far
	coords   []float32
	word     [4]byte
}

// New opens the XTC file filename for reading. The number of atoms is
// taken from the first frame.
func New(filename string) (*XTCObj, error) {
	traj := new(XTCObj)
	if err := traj.initRead(filename); err != nil {
		if traj.f != nil {
			traj.f.Close()
		}
		return nil, errDecorate(err, "New", filename)
	}
	return traj, nil
}

// Readable returns true if the object is ready to be read from
// false otherwise. It doesnt guarantee that there is something
// to read.
func (X *XTCObj) Readable() bool {
	return X.readable
}

// initRead opens the file and reads the number of atoms from the
// header of the first frame, without consuming it.
func (X *XTCObj) initRead(name string) error {
	var err error
	X.filename = name
	X.f, err = os.Open(name)
	if err != nil {
		return Error{UnableToOpen + ": " + err.Error(), X.filename, []string{"os.Open", "initRead"}, true}
	}
	X.r = bufio.NewReader(X.f)
	head, err := X.r.Peek(8)
	if err != nil {
		return Error{"Can't read the first frame header: " + err.Error(), X.filename, []string{"initRead"}, true}
	}
	if m := int32(binary.BigEndian.Uint32(head)); m != xtcMagic {
		return Error{fmt.Sprintf("Wrong magic number %d", m), X.filename, []string{"initRead"}, true}
	}
	X.natoms = int(int32(binary.BigEndian.Uint32(head[4:])))
	if X.natoms <= 0 {
		return Error{fmt.Sprintf("Invalid number of atoms: %d", X.natoms), X.filename, []string{"initRead"}, true}
	}
	X.coords = make([]float32, 3*X.natoms)
	X.readable = true
	return nil
}

// Next Reads the next frame in a XTCObj that has been initialized for read
// With initread. If output is not nil, the coordinates, in A, are put in it.
// If box is given, the box vectors, in A, are put in box[0].
func (X *XTCObj) Next(output *v3.Matrix, box ...[]float64) error {
	if !X.readable {
		return Error{TrajUnIni, X.filename, []string{"Next"}, true}
	}
	if output != nil && output.NVecs() != X.natoms {
		return Error{fmt.Sprintf("Matrix of %d vectors given for %d atoms", output.NVecs(), X.natoms), X.filename, []string{"Next"}, true}
	}
	magic, err := X.readInt()
	if err != nil {
		if errors.Is(err, io.EOF) {
			X.Close()
			return newlastFrameError(X.filename, "Next") //This is not really an error and should be catched in the calling function
		}
		return X.critical(err, "Next")
	}
	if magic != xtcMagic {
		return X.critical(fmt.Errorf("wrong magic number %d in frame %d", magic, X.read), "Next")
	}
	natoms, err := X.readInt()
	if err != nil {
		return X.critical(err, "Next")
	}
	if int(natoms) != X.natoms {
		return X.critical(fmt.Errorf("frame %d has %d atoms, expected %d", X.read, natoms, X.natoms), "Next")
	}
	if X.step, err = X.readInt(); err != nil {
		return X.critical(err, "Next")
	}
	if X.time, err = X.readFloat(); err != nil {
		return X.critical(err, "Next")
	}
	for i := 0; i < 9; i++ {
		b, err := X.readFloat()
		if err != nil {
			return X.critical(err, "Next")
		}
		if len(box) > 0 && len(box[0]) >= 9 {
			box[0][i] = 10 * float64(b) //nm to Angstroms
		}
	}
	if err := X.readCoords(X.coords); err != nil {
		return X.critical(err, "Next")
	}
	X.read++
	if output == nil {
		return nil
	}
	for i := 0; i < X.natoms; i++ {
		for j := 0; j < 3; j++ {
			output.Set(i, j, 10*float64(X.coords[3*i+j])) //nm to Angstroms
		}
	}
	return nil
}

// Time returns the time, in ps, of the last frame read.
func (X *XTCObj) Time() (float64, bool) {
	if X.read == 0 {
		return 0, false
	}
	return float64(X.time), true
}

// Step returns the MD step of the last frame read.
func (X *XTCObj) Step() int {
	return int(X.step)
}

// Len returns the number of atoms per frame in the XTCObj.
func (X *XTCObj) Len() int {
	return X.natoms
}

// Close closes the file and marks the object as unreadable.
func (X *XTCObj) Close() {
	if !X.readable {
		return
	}
	X.f.Close()
	X.readable = false
}

// critical closes the trajectory, as there is no way to find the next frame
// after a failure, and returns an error for it.
func (X *XTCObj) critical(err error, caller string) error {
	X.Close()
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return Error{ReadError + ": " + err.Error(), X.filename, []string{caller}, true}
}

func (X *XTCObj) readInt() (int32, error) {
	if _, err := io.ReadFull(X.r, X.word[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(X.word[:])), nil
}

func (X *XTCObj) readFloat() (float32, error) {
	i, err := X.readInt()
	return math.Float32frombits(uint32(i)), err
}

// readCoords reads the (possibly compressed) coordinates of a frame, in nm, into dst.
func (X *XTCObj) readCoords(dst []float32) error {
	lsize, err := X.readInt()
	if err != nil {
		return err
	}
	if int(lsize) != X.natoms {
		return fmt.Errorf("coordinate block for %d atoms, expected %d", lsize, X.natoms)
	}
	//Small systems are not compressed.
	if lsize <= 9 {
		for i := range dst {
			if dst[i], err = X.readFloat(); err != nil {
				return err
			}
		}
		return nil
	}
	precision, err := X.readFloat()
	if err != nil {
		return err
	}
	if precision <= 0 {
		return fmt.Errorf("invalid precision %f", precision)
	}
	var minint, maxint [3]int32
	for i := 0; i < 3; i++ {
		if minint[i], err = X.readInt(); err != nil {
			return err
		}
	}
	for i := 0; i < 3; i++ {
		if maxint[i], err = X.readInt(); err != nil {
			return err
		}
	}
	var sizeint [3]uint32
	var bitsizeint [3]int
	bitsize := 0
	for i := range sizeint {
		sizeint[i] = uint32(maxint[i]-minint[i]) + 1
	}
	//check if one of the sizes is to big to be multiplied
	if (sizeint[0] | sizeint[1] | sizeint[2]) > 0xffffff {
		for i := range sizeint {
			bitsizeint[i] = sizeOfInt(sizeint[i])
		}
	} else {
		bitsize = sizeOfInts(sizeint[:])
	}
	smallidx, err := X.readInt()
	if err != nil {
		return err
	}
	if smallidx < firstIdx || int(smallidx) >= lastIdx {
		return fmt.Errorf("invalid compression index %d", smallidx)
	}
	tmp := max(int(smallidx)-1, firstIdx)
	smaller := int32(magicInts[tmp] / 2)
	smallnum := int32(magicInts[smallidx] / 2)
	sizesmall := [3]uint32{magicInts[smallidx], magicInts[smallidx], magicInts[smallidx]}
	nbytes, err := X.readInt()
	if err != nil {
		return err
	}
	if nbytes < 0 {
		return fmt.Errorf("invalid compressed block size %d", nbytes)
	}
	//XDR opaque data is padded to a multiple of 4 bytes.
	data := make([]byte, int(nbytes)+(4-int(nbytes)%4)%4)
	if _, err := io.ReadFull(X.r, data); err != nil {
		return err
	}
	bits := &bitReader{data: data[:nbytes]}
	inv := 1.0 / precision
	var thiscoord, prevcoord [3]int32
	var run int32
	out := 0
	put := func(c [3]int32) error {
		if out+3 > len(dst) {
			return fmt.Errorf("more than %d atoms in the compressed block", lsize)
		}
		dst[out] = float32(c[0]) * inv
		dst[out+1] = float32(c[1]) * inv
		dst[out+2] = float32(c[2]) * inv
		out += 3
		return nil
	}
	for i := int32(0); i < lsize; {
		if bitsize == 0 {
			for j := range thiscoord {
				thiscoord[j] = int32(bits.decodeBits(bitsizeint[j]))
			}
		} else {
			bits.decodeInts(bitsize, sizeint[:], thiscoord[:])
		}
		i++
		for j := range thiscoord {
			thiscoord[j] += minint[j]
		}
		prevcoord = thiscoord
		//run is kept from the previous atom unless the flag is set
		issmaller := int32(0)
		if bits.decodeBits(1) == 1 {
			run = int32(bits.decodeBits(5))
			issmaller = run % 3
			run -= issmaller
			issmaller--
		}
		if run > 0 {
			for k := int32(0); k < run; k += 3 {
				bits.decodeInts(int(smallidx), sizesmall[:], thiscoord[:])
				i++
				for j := range thiscoord {
					thiscoord[j] += prevcoord[j] - smallnum
				}
				if k == 0 {
					//the first and second atoms are interchanged, for better
					//compression of water molecules.
					thiscoord, prevcoord = prevcoord, thiscoord
					if err := put(prevcoord); err != nil {
						return err
					}
				} else {
					prevcoord = thiscoord
				}
				if err := put(thiscoord); err != nil {
					return err
				}
			}
		} else {
			if err := put(thiscoord); err != nil {
				return err
			}
		}
		smallidx += issmaller
		if smallidx < firstIdx || int(smallidx) >= lastIdx {
			return fmt.Errorf("invalid compression index %d", smallidx)
		}
		if issmaller < 0 {
			smallnum = smaller
			if smallidx > firstIdx {
				smaller = int32(magicInts[smallidx-1] / 2)
			} else {
				smaller = 0
			}
		} else if issmaller > 0 {
			smaller = smallnum
			smallnum = int32(magicInts[smallidx] / 2)
		}
		sizesmall = [3]uint32{magicInts[smallidx], magicInts[smallidx], magicInts[smallidx]}
	}
	if bits.overrun {
		return fmt.Errorf("compressed coordinates end prematurely")
	}
	if out != len(dst) {
		return fmt.Errorf("%d atoms in the compressed block, expected %d", out/3, lsize)
	}
	return nil
}
