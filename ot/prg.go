//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
)

// PRG implements a seedable pseudo-random generator as AES-128 in
// counter mode with a zero IV, keyed by a 128 bit seed. For a fixed
// seed and request sequence the output is byte-identical across runs
// and platforms; both peers of an extension session rely on this to
// expand the same one-time pads from the transferred keys.
type PRG struct {
	stream cipher.Stream
}

// NewPRG creates a new PRG. If seed is nil, the seed is drawn from
// the operating system entropy source; protocol sessions must use
// this mode for their local randomness.
func NewPRG(seed *Block) (*PRG, error) {
	var s Block
	if seed == nil {
		var err error
		s, err = NewBlock(rand.Reader)
		if err != nil {
			return nil, err
		}
	} else {
		s = *seed
	}
	return &PRG{
		stream: newPrgStream(s),
	}, nil
}

// Reseed replaces the generator state with a fresh stream keyed by
// seed. No state survives the reseed.
func (p *PRG) Reseed(seed Block) {
	p.stream = newPrgStream(seed)
}

// Bits generates n random bits as one 0x00/0x01 byte per bit.
func (p *PRG) Bits(n int) []byte {
	buf := make([]byte, n)
	p.stream.XORKeyStream(buf, buf)
	for i := range buf {
		buf[i] &= 1
	}
	return buf
}

// Blocks generates n random blocks.
func (p *PRG) Blocks(n int) []Block {
	buf := make([]byte, n*BlockBytes)
	p.stream.XORKeyStream(buf, buf)

	result := make([]Block, n)
	BlocksFromDense(result, buf)
	return result
}

// BitMatrix generates a random rows x cols bit matrix in the
// column-contiguous layout: column j occupies the byte range
// [j*rows/8, (j+1)*rows/8). The dimensions must be multiples of 8.
func (p *PRG) BitMatrix(rows, cols int) []byte {
	if rows%8 != 0 || cols%8 != 0 {
		panic("ot: bit matrix dimensions not multiples of 8")
	}
	buf := make([]byte, rows*cols/8)
	p.stream.XORKeyStream(buf, buf)
	return buf
}

func newPrgStream(seed Block) cipher.Stream {
	var data BlockData
	block, err := aes.NewCipher(seed.Bytes(&data))
	if err != nil {
		panic(err)
	}
	var iv [16]byte
	return cipher.NewCTR(block, iv[:])
}
