//
// ot.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.

// Package ot implements the building blocks of oblivious transfer:
// 128 bit blocks, a seedable AES-CTR pseudo-random generator, a
// correlation-robust hash, and the Naor-Pinkas base 1-out-of-2
// oblivious transfer.
package ot

// BaseOT defines the base 1-out-of-2 oblivious transfer on 128 bit
// block messages. The sender calls Send with the message vectors m0
// and m1. The receiver calls Receive with the selection flags; on
// return result[i] holds m0[i] or m1[i] according to flags[i]. The
// higher level protocol must ensure the vector lengths match.
type BaseOT interface {
	// Send sends the message pairs (m0[i], m1[i]) with OT.
	Send(io IO, m0, m1 []Block) error

	// Receive receives the messages selected by the flag values.
	Receive(io IO, flags []bool, result []Block) error
}
