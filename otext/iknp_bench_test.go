//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"crypto/rand"
	"testing"

	"github.com/markkurossi/ote/ot"
	"github.com/markkurossi/ote/p2p"
)

func benchmarkExtension(b *testing.B, n int) {
	params, err := Setup(rand.Reader)
	if err != nil {
		b.Fatal(err)
	}

	m0 := make([]ot.Block, n)
	m1 := make([]ot.Block, n)
	prg, err := ot.NewPRG(nil)
	if err != nil {
		b.Fatal(err)
	}
	choices := RandomSelection(prg, n)

	b.SetBytes(int64(n * ot.BlockBytes))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sConn, rConn := p2p.Pipe()
		done := make(chan error)

		go func() {
			done <- Send(sConn, params, m0, m1)
		}()
		_, err := Receive(rConn, params, choices)
		if err != nil {
			b.Fatal(err)
		}
		if err := <-done; err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExtension1K(b *testing.B) {
	benchmarkExtension(b, 1024)
}

func BenchmarkExtension64K(b *testing.B) {
	benchmarkExtension(b, 65536)
}

func BenchmarkExtension1M(b *testing.B) {
	benchmarkExtension(b, 1<<20)
}
