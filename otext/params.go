//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"fmt"
	"io"

	"github.com/markkurossi/ote/ot"
)

// Params contains the public parameters of the OT extension. The
// parameters are immutable after setup and shared between peers;
// both peers must hold byte-identical values. Params may be shared
// read-only across concurrent sessions.
//
// The Malicious flag is carried and serialized for parameter
// compatibility but the protocol is semi-honest only; sessions with
// the flag set are rejected.
type Params struct {
	Malicious bool
	BaseOT    ot.NPParams
}

// Setup generates new public parameters.
func Setup(rand io.Reader) (*Params, error) {
	base, err := ot.NPSetup(rand)
	if err != nil {
		return nil, err
	}
	return &Params{
		BaseOT: *base,
	}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler. The encoding is
// the packed base OT parameters followed by one malicious byte.
func (p *Params) MarshalBinary() ([]byte, error) {
	base, err := p.BaseOT.MarshalBinary()
	if err != nil {
		return nil, err
	}
	var malicious byte
	if p.Malicious {
		malicious = 1
	}
	return append(base, malicious), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Params) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("otext: truncated parameters: %d bytes", len(data))
	}
	switch data[len(data)-1] {
	case 0:
		p.Malicious = false
	case 1:
		p.Malicious = true
	default:
		return fmt.Errorf("otext: invalid malicious flag %d",
			data[len(data)-1])
	}
	return p.BaseOT.UnmarshalBinary(data[:len(data)-1])
}
