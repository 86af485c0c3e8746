/*
 * stf_write.go, part of micelle.
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

package stf

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/lzw"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"

	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/micelle/v3"
)

// StfW is a STF trajectory opened for writing.
type StfW struct {
	f         *os.File
	h         io.WriteCloser
	w         *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	prec      int
	frames    int
}

// NewWriter creates a STF trajectory for writing frames of natoms atoms. The header
// map is written in the file's header, sorted by key. A "prec" key, if present, sets the
// precision (number of decimals kept), otherwise the default of 2 is used and written.
// A compression level can be given for the gzip and deflate formats.
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	level := 9
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	S := new(StfW)
	S.filename = name
	S.natoms = natoms
	S.prec = defaultPrec
	if natoms <= 0 {
		return nil, Error{fmt.Sprintf("Invalid number of atoms: %d", natoms), name, []string{"NewWriter"}, true}
	}
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"os.Create", "NewWriter"}, true}
	}
	switch compressionKind(name) {
	case 'l':
		S.h = lzw.NewWriter(S.f, lzw.MSB, lzwLitwidth)
	case 'z':
		S.h, err = gzip.NewWriterLevel(S.f, level)
	case 'r':
		S.h, err = flate.NewWriter(S.f, level)
	default:
		S.h, err = zstd.NewWriter(S.f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
	if err != nil {
		S.f.Close()
		return nil, Error{"Can't start the compressor: " + err.Error(), S.filename, []string{"NewWriter"}, true}
	}
	S.w = bufio.NewWriter(S.h)
	h := make(map[string]string, len(header)+1)
	maps.Copy(h, header)
	if p, ok := h["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec <= 0 {
			S.h.Close()
			S.f.Close()
			return nil, Error{"Invalid precision: " + p, S.filename, []string{"NewWriter"}, true}
		}
		S.prec = prec
	}
	h["prec"] = strconv.Itoa(S.prec)
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(S.w, "%s=%s\n", k, h[k])
	}
	fmt.Fprintf(S.w, "** %d\n", S.natoms)
	S.writeable = true
	return S, nil
}

// Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

// Frames returns the number of frames written so far.
func (S *StfW) Frames() int {
	return S.frames
}

func coordsEncode(f [3]float64, prec int) string {
	p := math.Pow(10.0, float64(prec))
	var temp [3]int
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

// WNext writes the coordinates in coord as the next frame in the trajectory. If box is given
// the 9 box vector components are written in the frame termination line.
func (S *StfW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	v := coord.NVecs()
	if v != S.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	var floats [3]float64
	for i := 0; i < v; i++ {
		floats[0] = coord.At(i, 0)
		floats[1] = coord.At(i, 1)
		floats[2] = coord.At(i, 2)
		S.w.WriteString(coordsEncode(floats, S.prec))
	}
	var err error
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		_, err = fmt.Fprintf(S.w, "* %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f\n", b[0],
			b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		_, err = S.w.WriteString("*\n")
	}
	if err != nil {
		return Error{err.Error(), S.filename, []string{"WNext"}, true}
	}
	S.frames++
	return nil
}

// Close flushes the data, closes the compressor and the file.
func (S *StfW) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.w.Flush()
	if err2 := S.h.Close(); err == nil {
		err = err2
	}
	if err2 := S.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}
