/*
 * compressed.go, part of micelle.
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
	"compress/flate"
	"compress/lzw"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	lzwOrder        = lzw.MSB
	lzwLitwidth int = 8
)

//prepSource takes a filename, opens the file and returns an object that will
//read data from the file, either 'as is' or decompressing first, depending on the file
//extension. File extensions supported are .dcd (non-compressed dcd), .gz (deflate) and .lzw.
//If the extension doesn't match any supported type, a message will be logged and the
//non-compressed dcd format will be assumed. prepSource only returns an error if the file can't be opened.
func (D *DCDObj) prepSource(fname string) (io.Reader, error) {
	var err error
	D.fhandle, err = os.Open(fname)
	if err != nil {
		return nil, Error{err.Error(), fname, []string{"os.Open", "prepSource"}, true}
	}
	reader := bufio.NewReader(D.fhandle)
	fk := strings.TrimPrefix(strings.ToLower(filepath.Ext(fname)), ".")
	switch fk {
	case "dcd":
		return reader, nil
	case "lzw":
		D.decompressor = lzw.NewReader(reader, lzwOrder, lzwLitwidth)
	case "gz":
		D.decompressor = flate.NewReader(reader)
	default:
		//if it's not a plain DCD, you'll get an error later.
		D.logger.Printf("Format string %s not supported. %s will be assumed to be a plain DCD file", fk, fname)
		return reader, nil
	}
	return D.decompressor, nil
}
