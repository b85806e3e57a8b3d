// Package frame implements the bit layout shared by both ends of the
// two-wire link.
//
// A frame is 11 bit-times, least significant bit first on the wire:
//
//	bit  0      start, always 0
//	bits 1..8   data, LSB first
//	bit  9      odd parity over the data bits
//	bit  10     stop, always 1
package frame

import (
	"math/bits"

	"github.com/ardnew/softps2/pkg"
)

// Frame geometry.
const (
	Bits      = 11 // start + 8 data + parity + stop
	DataBits  = 8
	checkBits = DataBits + 1 // data + parity

	startBit  = 0
	dataShift = 1
	parityBit = 1 << 9
	StopBit   = 1 << 10
)

// Parity returns the bit that gives v plus the parity bit an odd number of
// set bits: 1 when v has an even population count, otherwise 0.
func Parity(v byte) uint16 {
	return uint16(^bits.OnesCount8(v) & 1)
}

// Encode returns the 11-bit frame carrying v, start bit in bit 0.
func Encode(v byte) uint16 {
	return startBit | uint16(v)<<dataShift | Parity(v)*parityBit | StopBit
}

// Check validates a 9-bit data+parity group as captured from the wire (data
// in bits 0..7, parity in bit 8) and returns the data byte. It returns
// [pkg.ErrParity] unless the group has an odd number of set bits.
func Check(group uint16) (byte, error) {
	if bits.OnesCount16(group&(1<<checkBits-1))&1 == 0 {
		return 0, pkg.ErrParity
	}
	return byte(group), nil
}

// Decode validates a complete 11-bit frame in the layout produced by
// [Encode] and returns its data byte. It returns [pkg.ErrFraming] if the
// start or stop bit is wrong and [pkg.ErrParity] if parity fails.
func Decode(f uint16) (byte, error) {
	if f&1 != 0 || f&StopBit == 0 {
		return 0, pkg.ErrFraming
	}
	return Check(f >> dataShift)
}

// Levels expands a frame into its wire levels in transmission order.
func Levels(f uint16) [Bits]bool {
	var out [Bits]bool
	for i := range out {
		out[i] = f>>i&1 != 0
	}
	return out
}

// FromLevels packs wire levels in transmission order into a frame.
func FromLevels(levels [Bits]bool) uint16 {
	var f uint16
	for i, l := range levels {
		if l {
			f |= 1 << i
		}
	}
	return f
}
