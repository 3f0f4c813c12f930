//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// IKNP OT Extension:
//
// Extending oblivious transfers efficiently
//  - https://www.iacr.org/archive/crypto2003/27290145/27290145.pdf
//
// More Efficient Oblivious Transfer and Extensions for Faster Secure
// Computation
//  - https://eprint.iacr.org/2013/552.pdf
//
// Better Concrete Security for Half-Gates Garbling (in the
// Multi-Instance Setting)
//  - https://eprint.iacr.org/2019/1168.pdf

// Package otext implements the IKNP oblivious transfer extension: a
// batch of 128 base OTs is expanded into n transfers of 128 bit
// messages using only symmetric primitives. The package provides the
// two-sided variant, where both messages cross the wire, and the
// one-sided variant, where only the chosen message does.
package otext

import (
	"errors"
	"fmt"

	"github.com/markkurossi/ote/ot"
	"github.com/markkurossi/ote/p2p"
)

const (
	// BaseLen defines the security parameter k of the IKNP protocol:
	// the number of base OTs and the width of the extension matrix.
	BaseLen = 128
)

// ErrExtendLen is returned when the extension length is not a
// positive multiple of 128.
var ErrExtendLen = errors.New("extend length not a positive multiple of 128")

// checkParams validates the session parameters. It runs before any
// I/O so that a violation leaves no partial protocol state on either
// peer.
func checkParams(params *Params, n int) error {
	if n <= 0 || n%128 != 0 {
		return fmt.Errorf("otext: %w: %d", ErrExtendLen, n)
	}
	if params.Malicious {
		return errors.New("otext: malicious parameters not supported")
	}
	return nil
}

// Send runs the sender side of the two-sided OT extension: the
// receiver of the session learns m0[i] or m1[i] for each i according
// to its selection bits, and nothing else; the sender learns nothing
// about the selection. The function panics if the message vectors
// have different lengths.
//
// Both peers must agree on the extension length and on the public
// parameters out of band. The connection is exclusively owned by the
// session for the duration of the call.
func Send(conn *p2p.Conn, params *Params, m0, m1 []ot.Block) error {
	if len(m0) != len(m1) {
		panic("otext: len(m0) != len(m1)")
	}
	n := len(m0)
	if err := checkParams(params, n); err != nil {
		return err
	}
	qt, s, err := senderExpand(conn, params, n)
	if err != nil {
		return err
	}
	defer zeroBytes(qt)

	// Outer transfer: D0 = m0 ⊕ H(q), D1 = m1 ⊕ H(q ⊕ s).
	crh := ot.NewCRH()
	d0 := make([]ot.Block, n)
	d1 := make([]ot.Block, n)

	var row ot.Block
	for i := 0; i < n; i++ {
		row.SetBytes(qt[i*ot.BlockBytes:])
		d0[i] = m0[i]
		d0[i].Xor(crh.HashBlock(row))

		row.Xor(s)
		d1[i] = m1[i]
		d1[i].Xor(crh.HashBlock(row))
	}
	if err := conn.SendBlocks(d0); err != nil {
		return err
	}
	if err := conn.SendBlocks(d1); err != nil {
		return err
	}
	return conn.Flush()
}

// Receive runs the receiver side of the two-sided OT extension. On
// return result[i] holds the message selected by choices bit i.
func Receive(conn *p2p.Conn, params *Params, choices *SelectionVector) (
	[]ot.Block, error) {

	n := choices.Len()
	if err := checkParams(params, n); err != nil {
		return nil, err
	}
	tt, err := receiverExpand(conn, params, choices)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(tt)

	d0 := make([]ot.Block, n)
	d1 := make([]ot.Block, n)
	if err := conn.ReceiveBlocks(d0); err != nil {
		return nil, err
	}
	if err := conn.ReceiveBlocks(d1); err != nil {
		return nil, err
	}

	crh := ot.NewCRH()
	result := make([]ot.Block, n)

	var row ot.Block
	for i := 0; i < n; i++ {
		row.SetBytes(tt[i*ot.BlockBytes:])
		if choices.Bit(i) {
			result[i] = d1[i]
		} else {
			result[i] = d0[i]
		}
		result[i].Xor(crh.HashBlock(row))
	}
	return result, nil
}

// OnesidedSend runs the sender side of the one-sided OT extension:
// only the chosen message is transferred and the unchosen slot is
// compressed away. The receiver learns m[i] for its set selection
// bits and nothing for the clear ones.
func OnesidedSend(conn *p2p.Conn, params *Params, m []ot.Block) error {
	n := len(m)
	if err := checkParams(params, n); err != nil {
		return err
	}
	qt, s, err := senderExpand(conn, params, n)
	if err != nil {
		return err
	}
	defer zeroBytes(qt)

	// Outer transfer: one ciphertext E = m ⊕ H(q ⊕ s) per row.
	crh := ot.NewCRH()

	var row, e ot.Block
	var data ot.BlockData
	for i := 0; i < n; i++ {
		row.SetBytes(qt[i*ot.BlockBytes:])
		row.Xor(s)

		e = m[i]
		e.Xor(crh.HashBlock(row))
		if err := conn.SendBlock(e, &data); err != nil {
			return err
		}
	}
	return conn.Flush()
}

// OnesidedReceive runs the receiver side of the one-sided OT
// extension. The result holds one message per set selection bit, in
// selection order; its length is the Hamming weight of choices.
func OnesidedReceive(conn *p2p.Conn, params *Params,
	choices *SelectionVector) ([]ot.Block, error) {

	n := choices.Len()
	if err := checkParams(params, n); err != nil {
		return nil, err
	}
	tt, err := receiverExpand(conn, params, choices)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(tt)

	crh := ot.NewCRH()
	result := make([]ot.Block, 0, choices.Count())

	var row, e ot.Block
	var data ot.BlockData
	for i := 0; i < n; i++ {
		if err := conn.ReceiveBlock(&e, &data); err != nil {
			return nil, err
		}
		// Only the rows with a set selection bit decrypt.
		if choices.Bit(i) {
			row.SetBytes(tt[i*ot.BlockBytes:])
			e.Xor(crh.HashBlock(row))
			result = append(result, e)
		}
	}
	return result, nil
}

// senderExpand runs the sender phases shared by both variants: base
// OT in the reverse direction, inner column transfer, and the
// transpose. It returns the row-contiguous n x 128 matrix whose row
// i is q_i, and the dense block s of the sender's selection bits.
// The caller must zeroize the matrix.
func senderExpand(conn *p2p.Conn, params *Params, n int) (
	[]byte, ot.Block, error) {

	var sBlock ot.Block
	nb := n / 128

	prg, err := ot.NewPRG(nil)
	if err != nil {
		return nil, sBlock, err
	}

	// The base OT runs in the reverse direction: this peer receives
	// one key per matrix column, selected by its secret bit s[j].
	s := prg.Bits(BaseLen)
	flags := make([]bool, BaseLen)
	for j, bit := range s {
		flags[j] = bit == 1
	}
	keys := make([]ot.Block, BaseLen)
	base := ot.NewNP(&params.BaseOT)
	if err := base.Receive(conn, flags, keys); err != nil {
		return nil, sBlock, err
	}
	defer zeroBlocks(keys)

	// Decrypt the acquired share of each column: the key selects one
	// of the two inner ciphertexts and the key's pad removes it.
	q := make([]byte, BaseLen*n/8)
	defer zeroBytes(q)

	c0 := make([]ot.Block, nb)
	c1 := make([]ot.Block, nb)
	col := make([]ot.Block, nb)
	defer zeroBlocks(col)

	for j := 0; j < BaseLen; j++ {
		if err := conn.ReceiveBlocks(c0); err != nil {
			return nil, sBlock, err
		}
		if err := conn.ReceiveBlocks(c1); err != nil {
			return nil, sBlock, err
		}
		prg.Reseed(keys[j])
		pad := prg.Blocks(nb)

		if s[j] == 0 {
			ot.XorBlocksTo(col, c0, pad)
		} else {
			ot.XorBlocksTo(col, c1, pad)
		}
		zeroBlocks(pad)
		ot.DenseBits(q[j*n/8:], col)
	}

	qt := make([]byte, len(q))
	Transpose(qt, q, BaseLen, n)

	sBlock = ot.FromSparseBits(s)[0]
	return qt, sBlock, nil
}

// receiverExpand runs the receiver phases shared by both variants:
// matrix and key generation, base OT in the reverse direction, inner
// column transfer, and the transpose. It returns the row-contiguous
// n x 128 matrix whose row i is t_i. The caller must zeroize the
// matrix.
func receiverExpand(conn *p2p.Conn, params *Params,
	choices *SelectionVector) ([]byte, error) {

	n := choices.Len()
	nb := n / 128

	prg, err := ot.NewPRG(nil)
	if err != nil {
		return nil, err
	}

	t := prg.BitMatrix(n, BaseLen)
	defer zeroBytes(t)
	k0 := prg.Blocks(BaseLen)
	k1 := prg.Blocks(BaseLen)
	defer zeroBlocks(k0)
	defer zeroBlocks(k1)

	// Transfer the column keys with this peer as the base OT sender.
	base := ot.NewNP(&params.BaseOT)
	if err := base.Send(conn, k0, k1); err != nil {
		return nil, err
	}

	bBlocks := choices.Blocks()

	// Inner transfer: for each column j send t_j under k0 and
	// t_j ⊕ b under k1, in column order, C0 before C1.
	tcol := make([]ot.Block, nb)
	u := make([]ot.Block, nb)
	c := make([]ot.Block, nb)
	defer zeroBlocks(tcol)
	defer zeroBlocks(u)

	for j := 0; j < BaseLen; j++ {
		ot.BlocksFromDense(tcol, t[j*n/8:(j+1)*n/8])
		ot.XorBlocksTo(u, tcol, bBlocks)

		prg.Reseed(k0[j])
		pad := prg.Blocks(nb)
		ot.XorBlocksTo(c, tcol, pad)
		zeroBlocks(pad)
		if err := conn.SendBlocks(c); err != nil {
			return nil, err
		}

		prg.Reseed(k1[j])
		pad = prg.Blocks(nb)
		ot.XorBlocksTo(c, u, pad)
		if err := conn.SendBlocks(c); err != nil {
			return nil, err
		}
		zeroBlocks(pad)
	}
	if err := conn.Flush(); err != nil {
		return nil, err
	}

	tt := make([]byte, len(t))
	Transpose(tt, t, BaseLen, n)

	return tt, nil
}

func zeroBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

func zeroBlocks(blocks []ot.Block) {
	for i := range blocks {
		blocks[i] = ot.Block{}
	}
}
