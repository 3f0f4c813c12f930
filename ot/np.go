//
// np.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// Naor-Pinkas OT - Efficient Oblivious Transfer Protocols.
//  - https://dl.acm.org/doi/10.5555/365411.365502

package ot

import (
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"math/big"
)

var (
	_ BaseOT = &NP{}
)

// npCoordBytes defines the serialized length of one P-256 coordinate.
const npCoordBytes = 32

// NPParams contains the Naor-Pinkas public parameters: the point C
// with unknown discrete logarithm. The parameters are immutable after
// setup and both peers must hold byte-identical values.
type NPParams struct {
	Cx *big.Int
	Cy *big.Int
}

// NPSetup generates new Naor-Pinkas public parameters.
func NPSetup(rand io.Reader) (*NPParams, error) {
	curve := elliptic.P256()

	// c <- Zq, C = G^c. The scalar c is discarded; for the
	// semi-honest model it is enough that neither party chose C.
	c, err := randScalar(rand, curve)
	if err != nil {
		return nil, err
	}
	Cx, Cy := curve.ScalarBaseMult(c.Bytes())

	return &NPParams{
		Cx: Cx,
		Cy: Cy,
	}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler. The encoding is
// the packed 32-byte X and Y coordinates of C.
func (p *NPParams) MarshalBinary() ([]byte, error) {
	if p.Cx == nil || p.Cy == nil {
		return nil, fmt.Errorf("ot: uninitialized Naor-Pinkas parameters")
	}
	buf := make([]byte, 2*npCoordBytes)
	p.Cx.FillBytes(buf[:npCoordBytes])
	p.Cy.FillBytes(buf[npCoordBytes:])
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *NPParams) UnmarshalBinary(data []byte) error {
	if len(data) != 2*npCoordBytes {
		return fmt.Errorf("ot: invalid Naor-Pinkas parameters: %d bytes",
			len(data))
	}
	Cx := new(big.Int).SetBytes(data[:npCoordBytes])
	Cy := new(big.Int).SetBytes(data[npCoordBytes:])

	if !elliptic.P256().IsOnCurve(Cx, Cy) {
		return fmt.Errorf("ot: Naor-Pinkas point not on curve")
	}
	p.Cx = Cx
	p.Cy = Cy
	return nil
}

// NP implements the Naor-Pinkas base OT as the BaseOT interface.
type NP struct {
	params *NPParams
	curve  elliptic.Curve
	hash   hash.Hash
	digest []byte
}

// NewNP creates a new Naor-Pinkas base OT with the public parameters
// params.
func NewNP(params *NPParams) *NP {
	return &NP{
		params: params,
		curve:  elliptic.P256(),
		hash:   sha256.New(),
		digest: make([]byte, 0, sha256.Size),
	}
}

// Send sends the message pairs (m0[i], m1[i]) with OT. The function
// panics if the message vectors have different lengths.
func (np *NP) Send(io IO, m0, m1 []Block) error {
	if len(m0) != len(m1) {
		panic("ot: len(m0) != len(m1)")
	}
	curveParams := np.curve.Params()
	count := len(m0)

	// The receiver sends PK0 for each instance.
	pk0x := make([]*big.Int, count)
	pk0y := make([]*big.Int, count)
	for i := 0; i < count; i++ {
		x, y, err := np.receivePoint(io)
		if err != nil {
			return err
		}
		pk0x[i] = x
		pk0y[i] = y
	}

	// r <- Zq, R = G^r for the whole batch; the KDF separates
	// instances with the tweak.
	r, err := randScalar(rand.Reader, np.curve)
	if err != nil {
		return err
	}
	rBytes := r.Bytes()

	Rx, Ry := np.curve.ScalarBaseMult(rBytes)
	if err := np.sendPoint(io, Rx, Ry); err != nil {
		return err
	}

	var data BlockData
	for i := 0; i < count; i++ {
		// E0 = m0 ⊕ KDF(PK0^r, 2i)
		sx, sy := np.curve.ScalarMult(pk0x[i], pk0y[i], rBytes)
		e0 := xorKey(np.kdf(sx, sy, uint64(2*i)), m0[i].Bytes(&data))
		if err := io.SendData(e0); err != nil {
			return err
		}

		// PK1 = C - PK0, E1 = m1 ⊕ KDF(PK1^r, 2i+1)
		pk1x, pk1y := np.curve.Add(np.params.Cx, np.params.Cy,
			pk0x[i], new(big.Int).Sub(curveParams.P, pk0y[i]))
		sx, sy = np.curve.ScalarMult(pk1x, pk1y, rBytes)
		e1 := xorKey(np.kdf(sx, sy, uint64(2*i+1)), m1[i].Bytes(&data))
		if err := io.SendData(e1); err != nil {
			return err
		}
	}
	return io.Flush()
}

// Receive receives the messages selected by the flag values. The
// function panics if the flag and result vectors have different
// lengths.
func (np *NP) Receive(io IO, flags []bool, result []Block) error {
	if len(flags) != len(result) {
		panic("ot: len(flags) != len(result)")
	}
	curveParams := np.curve.Params()
	count := len(flags)

	// PK_b = G^k, PK_{1-b} = C - PK_b; send PK0.
	ks := make([]*big.Int, count)
	for i := 0; i < count; i++ {
		k, err := randScalar(rand.Reader, np.curve)
		if err != nil {
			return err
		}
		ks[i] = k

		Bx, By := np.curve.ScalarBaseMult(k.Bytes())
		if flags[i] {
			// PK0 = C - PK_1
			Bx, By = np.curve.Add(np.params.Cx, np.params.Cy,
				Bx, new(big.Int).Sub(curveParams.P, By))
		}
		if err := np.sendPoint(io, Bx, By); err != nil {
			return err
		}
	}
	if err := io.Flush(); err != nil {
		return err
	}

	Rx, Ry, err := np.receivePoint(io)
	if err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		// The chosen key is R^k = PK_b^r.
		sx, sy := np.curve.ScalarMult(Rx, Ry, ks[i].Bytes())

		var id uint64
		if flags[i] {
			id = uint64(2*i + 1)
		} else {
			id = uint64(2 * i)
		}
		key := np.kdf(sx, sy, id)

		e0, err := io.ReceiveData()
		if err != nil {
			return err
		}
		e1, err := io.ReceiveData()
		if err != nil {
			return err
		}
		var e []byte
		if flags[i] {
			e = e1
		} else {
			e = e0
		}
		result[i].SetBytes(xorKey(key, e))
	}
	return nil
}

func (np *NP) sendPoint(io IO, x, y *big.Int) error {
	buf := make([]byte, 2*npCoordBytes)
	x.FillBytes(buf[:npCoordBytes])
	y.FillBytes(buf[npCoordBytes:])
	return io.SendData(buf)
}

func (np *NP) receivePoint(io IO) (*big.Int, *big.Int, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return nil, nil, err
	}
	if len(data) != 2*npCoordBytes {
		return nil, nil, fmt.Errorf("ot: invalid point: %d bytes", len(data))
	}
	x := new(big.Int).SetBytes(data[:npCoordBytes])
	y := new(big.Int).SetBytes(data[npCoordBytes:])
	if !np.curve.IsOnCurve(x, y) {
		return nil, nil, fmt.Errorf("ot: point not on curve")
	}
	return x, y, nil
}

func (np *NP) kdf(x, y *big.Int, id uint64) []byte {
	np.hash.Reset()
	np.hash.Write(x.Bytes())
	np.hash.Write(y.Bytes())

	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], id)
	np.hash.Write(tmp[:])

	np.digest = np.hash.Sum(np.digest[:0])
	return np.digest[:BlockBytes]
}

func randScalar(rnd io.Reader, curve elliptic.Curve) (*big.Int, error) {
	return rand.Int(rnd, curve.Params().N)
}

func xorKey(key, data []byte) []byte {
	result := make([]byte, len(data))
	for i := range data {
		result[i] = key[i%len(key)] ^ data[i]
	}
	return result
}
