/*
 * stf.go, part of micelle.
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
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/micelle/v3"
)

const (
	lzwLitwidth int = 8
	defaultPrec int = 2
)

// StfR is a STF trajectory opened for reading.
type StfR struct {
	f            *os.File
	dec          io.ReadCloser
	h            *bufio.Reader
	intermediate *bufio.Reader
	natoms       int
	filename     string
	prec         int
	readable     bool
	boxwarned    bool
	logger       *log.Logger //for non-fatal problems with the file
}

// Why couldn't *zstd.Decoder implement io.ReadCloser? :-(
type stdql struct {
	*zstd.Decoder
}

// Close closes the decoder. It can not be used after this call
func (s stdql) Close() error {
	s.Decoder.Close()
	return nil
}

// compressionKind returns the compression used for a STF file, given by the
// last character of its name: l for lzw, z for gzip, r for raw deflate, and
// zstd for anything else (the default .stf).
func compressionKind(name string) byte {
	name = strings.ToLower(name)
	if name == "" {
		return 's'
	}
	switch c := name[len(name)-1]; c {
	case 'l', 'z', 'r':
		return c
	default:
		return 's'
	}
}

// New opens a STF trajectory for reading, and returns a pointer
// to the handle, a map with the metadata in the header
// and error or nil. Non-fatal problems, such as frames without box, are
// reported to logger, if given, or to the standard logger.
func New(name string, logger ...*log.Logger) (*StfR, map[string]string, error) {
	S := new(StfR)
	S.logger = log.Default()
	if len(logger) > 0 && logger[0] != nil {
		S.logger = logger[0]
	}
	S.natoms = -1 //just so we know if things don't work
	S.prec = defaultPrec
	S.filename = name
	m, err := S.initRead()
	if err != nil {
		if S.dec != nil {
			S.dec.Close()
		}
		if S.f != nil {
			S.f.Close()
		}
		return nil, nil, errDecorate(err, "New", name)
	}
	return S, m, nil
}

func (S *StfR) initRead() (map[string]string, error) {
	var err error
	S.f, err = os.Open(S.filename)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), S.filename, []string{"os.Open", "initRead"}, true}
	}
	S.intermediate = bufio.NewReader(S.f)
	switch compressionKind(S.filename) {
	case 'l':
		S.dec = lzw.NewReader(S.intermediate, lzw.MSB, lzwLitwidth)
	case 'z':
		var g *gzip.Reader
		g, err = gzip.NewReader(S.intermediate)
		if err == nil {
			S.dec = g
		}
	case 'r':
		S.dec = flate.NewReader(S.intermediate)
	default:
		var d *zstd.Decoder
		d, err = zstd.NewReader(S.intermediate)
		if err == nil {
			S.dec = stdql{d}
		}
	}
	if err != nil {
		return nil, Error{"Can't read header " + err.Error(), S.filename, []string{"initRead"}, true}
	}
	S.h = bufio.NewReader(S.dec)
	m := make(map[string]string)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			return nil, Error{"Can't read header " + err.Error(), S.filename, []string{"initRead"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				return nil, Error{fmt.Sprintf("Can't read atom number from '%s'", str), S.filename, []string{"initRead"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil || S.natoms <= 0 {
				return nil, Error{fmt.Sprintf("Can't read atom number from '%s'", nat[1]), S.filename, []string{"initRead"}, true}
			}
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			return nil, Error{"Malformed header line: " + str, S.filename, []string{"initRead"}, true}
		}
		m[k] = v
	}
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			S.prec = prec
		} else {
			S.logger.Printf("Invalid precision for trajectory %s. Will assume the default", S.filename)
		}
	}
	S.readable = true
	return m, nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S.readable
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := math.Pow(10.0, float64(prec))
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("Ill formated coordinates line in stf, %d fields: %s", len(s), str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s). Error: %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

// Next puts in the given matrix (c) the coordinates for the next frame of the trajectory
// and, if given, and the information is present, puts the box vector information in box.
// If c is nil, the frame is read, and checked, but discarded.
// The end of the trajectory is signaled with an error implementing chem.LastFrameError.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return Error{TrajUnIni, S.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() != S.natoms {
		return Error{fmt.Sprintf("Matrix of %d vectors given for %d atoms", c.NVecs(), S.natoms), S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			//EOF is only fine before the first atom of a frame
			if errors.Is(err, io.EOF) && i == 0 && b == "" {
				S.Close()
				return newlastFrameError(S.filename, "Next")
			}
			return S.critical(fmt.Sprintf("%s: atom %d: %s", ReadError, i, err.Error()))
		}
		if strings.HasPrefix(b, "*") {
			return S.critical(fmt.Sprintf("%s: frame with %d atoms, expected %d", WrongFormat, i, S.natoms))
		}
		if err = coordsDecode(b, &temp, S.prec); err != nil {
			return S.critical(err.Error())
		}
		if c == nil {
			continue
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil && s == "" {
		return S.critical("Can't read the frame termination mark: " + err.Error())
	}
	if s[0] != '*' {
		return S.critical(WrongFormat + ": more atoms than expected in frame")
	}
	if len(box) == 0 || len(box[0]) < 9 {
		return nil
	}
	fields := strings.Fields(s)
	if len(fields) < 10 { // The "*" and the 9 numbers
		if !S.boxwarned {
			S.logger.Printf("Trajectory file %s does not contain (correct) box information", S.filename) //just a head-up
			S.boxwarned = true
		}
		return nil
	}
	var errbox error
	for j, v := range fields[1:10] {
		box[0][j], errbox = strconv.ParseFloat(v, 64)
		if errbox != nil {
			break
		}
	}
	//If we got an error reading any of the values, we just set the whole thing to zero
	//and log, no error returned.
	if errbox != nil {
		S.logger.Printf("Failed to read box in a frame from %s", S.filename) //just a head-up
		for i := range box[0][:9] {
			box[0][i] = 0.0
		}
	}
	return nil
}

func (S *StfR) critical(msg string) error {
	S.Close()
	return Error{msg, S.filename, []string{"Next"}, true}
}

// Close closes the object, and marks it as unreadable
func (S *StfR) Close() {
	if !S.readable {
		return
	}
	S.dec.Close()
	S.f.Close()
	S.readable = false
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}
