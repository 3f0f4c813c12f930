//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/markkurossi/ote/ot"
)

// SelectionVector holds the receiver's n selection bits. The vector
// has a sparse view of one byte per bit for cheap indexing and a
// dense packed view for matrix columns. For protocol sessions n must
// be a positive multiple of 128.
type SelectionVector struct {
	n    int
	bits *bitset.BitSet
}

// NewSelectionVector creates a zero selection vector of n bits.
func NewSelectionVector(n int) *SelectionVector {
	return &SelectionVector{
		n:    n,
		bits: bitset.New(uint(n)),
	}
}

// SelectionFromBools creates a selection vector from the flag values.
func SelectionFromBools(flags []bool) *SelectionVector {
	sv := NewSelectionVector(len(flags))
	for i, f := range flags {
		if f {
			sv.bits.Set(uint(i))
		}
	}
	return sv
}

// SelectionFromBits creates a selection vector from the sparse
// 0x00/0x01 byte per bit representation.
func SelectionFromBits(bits []byte) *SelectionVector {
	sv := NewSelectionVector(len(bits))
	for i, b := range bits {
		if b&1 != 0 {
			sv.bits.Set(uint(i))
		}
	}
	return sv
}

// RandomSelection draws a uniform selection vector of n bits from the
// generator.
func RandomSelection(prg *ot.PRG, n int) *SelectionVector {
	return SelectionFromBits(prg.Bits(n))
}

// Len returns the number of selection bits.
func (sv *SelectionVector) Len() int {
	return sv.n
}

// Bit returns the value of the selection bit i.
func (sv *SelectionVector) Bit(i int) bool {
	return sv.bits.Test(uint(i))
}

// SetBit sets the selection bit i to the value v.
func (sv *SelectionVector) SetBit(i int, v bool) {
	sv.bits.SetTo(uint(i), v)
}

// Count returns the Hamming weight of the selection vector.
func (sv *SelectionVector) Count() int {
	return int(sv.bits.Count())
}

// Blocks returns the dense block representation of the selection
// vector. The length must be a multiple of 128.
func (sv *SelectionVector) Blocks() []ot.Block {
	if sv.n%128 != 0 {
		panic("otext: selection length not a multiple of 128")
	}
	words := sv.bits.Bytes()
	blocks := make([]ot.Block, sv.n/128)
	for i := range blocks {
		blocks[i] = ot.MakeBlock(words[2*i+1], words[2*i])
	}
	return blocks
}

// Bytes returns the sparse one byte per bit representation of the
// selection vector.
func (sv *SelectionVector) Bytes() []byte {
	bits := make([]byte, sv.n)
	for i := range bits {
		if sv.bits.Test(uint(i)) {
			bits[i] = 1
		}
	}
	return bits
}
