/*
 * xdr.go, part of micelle.
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

//Bit-level routines for the xdrfile coordinate compression used in XTC files.
//The compressed coordinates are a big-endian bit stream. Integers are packed
//either with a fixed number of bits each, or, three at a time, as a single
//mixed-radix number.

const firstIdx = 9 //the first meaningful entry in magicInts

var magicInts = [...]uint32{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 8, 10, 12, 16, 20, 25, 32, 40, 50, 64,
	80, 101, 128, 161, 203, 256, 322, 406, 512, 645, 812, 1024, 1290,
	1625, 2048, 2580, 3250, 4096, 5060, 6501, 8192, 10321, 13003,
	16384, 20642, 26007, 32768, 41285, 52015, 65536, 82570, 104031,
	131072, 165140, 208063, 262144, 330280, 416127, 524287, 660561,
	832255, 1048576, 1321122, 1664510, 2097152, 2642245, 3329021,
	4194304, 5284491, 6658042, 8388607, 10568983, 13316085, 16777216,
}

const lastIdx = len(magicInts)

// sizeOfInt returns the number of bits needed to store size.
func sizeOfInt(size uint32) int {
	var num uint64 = 1
	bits := 0
	for uint64(size) >= num && bits < 32 {
		bits++
		num <<= 1
	}
	return bits
}

// sizeOfInts returns the number of bits needed to store the product of
// the sizes, i.e. any set of integers with the values 0<=i<sizes[j].
func sizeOfInts(sizes []uint32) int {
	var bytes [32]uint32
	nbytes := 1
	bytes[0] = 1
	for _, s := range sizes {
		var tmp uint64
		bytecnt := 0
		for ; bytecnt < nbytes; bytecnt++ {
			tmp = uint64(bytes[bytecnt])*uint64(s) + tmp
			bytes[bytecnt] = uint32(tmp & 0xff)
			tmp >>= 8
		}
		for tmp != 0 {
			bytes[bytecnt] = uint32(tmp & 0xff)
			bytecnt++
			tmp >>= 8
		}
		nbytes = bytecnt
	}
	bits := 0
	var num uint32 = 1
	nbytes--
	for bytes[nbytes] >= num {
		bits++
		num *= 2
	}
	return bits + nbytes*8
}

// bitReader reads integers of arbitrary bit-length from a byte slice.
type bitReader struct {
	data     []byte
	cnt      int
	lastbits uint
	lastbyte uint32
	overrun  bool //set if a read went past the end of the data.
}

func (b *bitReader) nextByte() uint32 {
	if b.cnt >= len(b.data) {
		b.overrun = true
		return 0
	}
	ret := uint32(b.data[b.cnt])
	b.cnt++
	return ret
}

// decodeBits returns the next nbits bits as an unsigned integer.
func (b *bitReader) decodeBits(nbits int) uint32 {
	mask := uint32((uint64(1) << uint(nbits)) - 1)
	var num uint32
	for nbits >= 8 {
		b.lastbyte = (b.lastbyte << 8) | b.nextByte()
		num |= (b.lastbyte >> b.lastbits) << uint(nbits-8)
		nbits -= 8
	}
	if nbits > 0 {
		if b.lastbits < uint(nbits) {
			b.lastbits += 8
			b.lastbyte = (b.lastbyte << 8) | b.nextByte()
		}
		b.lastbits -= uint(nbits)
		num |= (b.lastbyte >> b.lastbits) & ((1 << uint(nbits)) - 1)
	}
	return num & mask
}

// decodeInts unpacks len(nums) integers packed in nbits bits,
// with nums[i] in [0, sizes[i]).
func (b *bitReader) decodeInts(nbits int, sizes []uint32, nums []int32) {
	var bytes [32]uint32
	nbytes := 0
	for nbits > 8 {
		bytes[nbytes] = b.decodeBits(8)
		nbytes++
		nbits -= 8
	}
	if nbits > 0 {
		bytes[nbytes] = b.decodeBits(nbits)
		nbytes++
	}
	for i := len(nums) - 1; i > 0; i-- {
		var num uint64
		for j := nbytes - 1; j >= 0; j-- {
			num = (num << 8) | uint64(bytes[j])
			p := num / uint64(sizes[i])
			bytes[j] = uint32(p)
			num -= p * uint64(sizes[i])
		}
		nums[i] = int32(num)
	}
	nums[0] = int32(bytes[0] | (bytes[1] << 8) | (bytes[2] << 16) | (bytes[3] << 24))
}
