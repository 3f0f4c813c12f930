//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/markkurossi/ote/ot"
	"github.com/markkurossi/ote/p2p"
)

func testParams(t *testing.T) *Params {
	t.Helper()
	params, err := Setup(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return params
}

// runPair runs the sender and receiver functions concurrently over an
// in-memory connection pair.
func runPair(t *testing.T, sender, receiver func(conn *p2p.Conn) error) {
	t.Helper()

	sConn, rConn := p2p.Pipe()
	done := make(chan error)

	go func() {
		done <- sender(sConn)
	}()
	rErr := receiver(rConn)
	sErr := <-done

	if sErr != nil {
		t.Fatalf("sender: %v", sErr)
	}
	if rErr != nil {
		t.Fatalf("receiver: %v", rErr)
	}
}

func testExtension(t *testing.T, params *Params, m0, m1 []ot.Block,
	choices *SelectionVector) []ot.Block {
	t.Helper()

	var result []ot.Block
	runPair(t,
		func(conn *p2p.Conn) error {
			return Send(conn, params, m0, m1)
		},
		func(conn *p2p.Conn) error {
			var err error
			result, err = Receive(conn, params, choices)
			return err
		})
	return result
}

func TestSendReceiveAllZero(t *testing.T) {
	const n = 128
	params := testParams(t)

	m0 := make([]ot.Block, n)
	m1 := make([]ot.Block, n)
	for i := 0; i < n; i++ {
		m0[i] = ot.MakeBlock(0, uint64(i))
		m1[i] = ot.MakeBlock(0, uint64(i^0xff))
	}
	choices := NewSelectionVector(n)

	result := testExtension(t, params, m0, m1, choices)
	for i := 0; i < n; i++ {
		if !result[i].Equal(m0[i]) {
			t.Errorf("result %d: %v, expected %v", i, result[i], m0[i])
		}
	}
}

func TestSendReceiveAllOne(t *testing.T) {
	const n = 128
	params := testParams(t)

	m0 := make([]ot.Block, n)
	m1 := make([]ot.Block, n)
	for i := 0; i < n; i++ {
		m0[i] = ot.MakeBlock(0, uint64(i))
		m1[i] = ot.MakeBlock(0, uint64(i^0xff))
	}
	choices := NewSelectionVector(n)
	for i := 0; i < n; i++ {
		choices.SetBit(i, true)
	}

	result := testExtension(t, params, m0, m1, choices)
	for i := 0; i < n; i++ {
		if !result[i].Equal(m1[i]) {
			t.Errorf("result %d: %v, expected %v", i, result[i], m1[i])
		}
	}
}

func TestSendReceiveAlternating(t *testing.T) {
	const n = 256
	params := testParams(t)

	m0 := make([]ot.Block, n)
	m1 := make([]ot.Block, n)
	for i := 0; i < n; i++ {
		m1[i] = ot.MakeBlock(^uint64(0), ^uint64(0))
	}
	choices := NewSelectionVector(n)
	for i := 1; i < n; i += 2 {
		choices.SetBit(i, true)
	}

	result := testExtension(t, params, m0, m1, choices)
	for i := 0; i < n; i++ {
		expected := m0[i]
		if i%2 == 1 {
			expected = m1[i]
		}
		if !result[i].Equal(expected) {
			t.Errorf("result %d: %v, expected %v", i, result[i], expected)
		}
	}
}

func TestSendReceiveRandom(t *testing.T) {
	n := 65536
	if testing.Short() {
		n = 1024
	}
	params := testParams(t)

	m0 := make([]ot.Block, n)
	m1 := make([]ot.Block, n)
	var err error
	for i := 0; i < n; i++ {
		m0[i], err = ot.NewBlock(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		m1[i], err = ot.NewBlock(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
	}
	prg, err := ot.NewPRG(nil)
	if err != nil {
		t.Fatal(err)
	}
	choices := RandomSelection(prg, n)

	result := testExtension(t, params, m0, m1, choices)
	for i := 0; i < n; i++ {
		expected := m0[i]
		if choices.Bit(i) {
			expected = m1[i]
		}
		if !result[i].Equal(expected) {
			t.Fatalf("result %d: %v, expected %v", i, result[i], expected)
		}
	}
}

func TestOnesided(t *testing.T) {
	const n = 128
	params := testParams(t)

	m := make([]ot.Block, n)
	for i := 0; i < n; i++ {
		m[i] = ot.MakeBlock(0, uint64(i))
	}
	set := []int{0, 7, 63, 127}
	choices := NewSelectionVector(n)
	for _, i := range set {
		choices.SetBit(i, true)
	}

	var result []ot.Block
	runPair(t,
		func(conn *p2p.Conn) error {
			return OnesidedSend(conn, params, m)
		},
		func(conn *p2p.Conn) error {
			var err error
			result, err = OnesidedReceive(conn, params, choices)
			return err
		})

	if len(result) != len(set) {
		t.Fatalf("result length %d, expected %d", len(result), len(set))
	}
	for j, i := range set {
		if !result[j].Equal(m[i]) {
			t.Errorf("result %d: %v, expected %v", j, result[j], m[i])
		}
	}
}

func TestOnesidedRandom(t *testing.T) {
	const n = 512
	params := testParams(t)

	m := make([]ot.Block, n)
	var err error
	for i := 0; i < n; i++ {
		m[i], err = ot.NewBlock(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
	}
	prg, err := ot.NewPRG(nil)
	if err != nil {
		t.Fatal(err)
	}
	choices := RandomSelection(prg, n)

	var result []ot.Block
	runPair(t,
		func(conn *p2p.Conn) error {
			return OnesidedSend(conn, params, m)
		},
		func(conn *p2p.Conn) error {
			var err error
			result, err = OnesidedReceive(conn, params, choices)
			return err
		})

	if len(result) != choices.Count() {
		t.Fatalf("result length %d, expected %d",
			len(result), choices.Count())
	}
	idx := 0
	for i := 0; i < n; i++ {
		if !choices.Bit(i) {
			continue
		}
		if !result[idx].Equal(m[i]) {
			t.Errorf("result %d: %v, expected %v", idx, result[idx], m[i])
		}
		idx++
	}
}

func TestExtendLenErrors(t *testing.T) {
	params := testParams(t)

	// The parameter check must run before any I/O: a nil connection
	// would panic if the functions touched the network.
	for _, n := range []int{129, 127, 100} {
		m := make([]ot.Block, n)
		if err := Send(nil, params, m, m); !errors.Is(err, ErrExtendLen) {
			t.Errorf("Send(n=%d): %v, expected ErrExtendLen", n, err)
		}
		if err := OnesidedSend(nil, params, m); !errors.Is(err, ErrExtendLen) {
			t.Errorf("OnesidedSend(n=%d): %v, expected ErrExtendLen", n, err)
		}
		choices := NewSelectionVector(n)
		if _, err := Receive(nil, params, choices); !errors.Is(
			err, ErrExtendLen) {
			t.Errorf("Receive(n=%d): %v, expected ErrExtendLen", n, err)
		}
		if _, err := OnesidedReceive(nil, params, choices); !errors.Is(
			err, ErrExtendLen) {
			t.Errorf("OnesidedReceive(n=%d): %v, expected ErrExtendLen",
				n, err)
		}
	}

	var m0 []ot.Block
	if err := Send(nil, params, m0, m0); !errors.Is(err, ErrExtendLen) {
		t.Errorf("Send(n=0): %v, expected ErrExtendLen", err)
	}
}

func TestMaliciousUnsupported(t *testing.T) {
	params := testParams(t)
	params.Malicious = true

	m := make([]ot.Block, 128)
	if err := Send(nil, params, m, m); err == nil {
		t.Errorf("malicious parameters accepted")
	}
	if _, err := Receive(nil, params, NewSelectionVector(128)); err == nil {
		t.Errorf("malicious parameters accepted")
	}
}

// recordEnd wraps one endpoint of a connection and records the bytes
// written into it.
type recordEnd struct {
	r   io.Reader
	w   io.Writer
	m   sync.Mutex
	buf bytes.Buffer
}

func (r *recordEnd) Read(data []byte) (int, error) {
	return r.r.Read(data)
}

func (r *recordEnd) Write(data []byte) (int, error) {
	r.m.Lock()
	r.buf.Write(data)
	r.m.Unlock()
	return r.w.Write(data)
}

// TestReceiverTranscript verifies that the receiver's outbound
// transcript does not leak the selection bits: the bit frequency of
// the transcript must be independent of the selection vector.
func TestReceiverTranscript(t *testing.T) {
	const n = 4096
	params := testParams(t)

	ones := func(choices *SelectionVector) float64 {
		ar, aw := io.Pipe()
		br, bw := io.Pipe()

		rec := &recordEnd{r: br, w: aw}
		sConn := p2p.NewConn(&recordEnd{r: ar, w: bw})
		rConn := p2p.NewConn(rec)

		m0 := make([]ot.Block, n)
		m1 := make([]ot.Block, n)

		done := make(chan error)
		go func() {
			done <- Send(sConn, params, m0, m1)
		}()
		if _, err := Receive(rConn, params, choices); err != nil {
			t.Fatal(err)
		}
		if err := <-done; err != nil {
			t.Fatal(err)
		}

		rec.m.Lock()
		defer rec.m.Unlock()
		var count, total int
		for _, b := range rec.buf.Bytes() {
			for i := 0; i < 8; i++ {
				count += int((b >> i) & 1)
				total++
			}
		}
		return float64(count) / float64(total)
	}

	zero := NewSelectionVector(n)
	one := NewSelectionVector(n)
	for i := 0; i < n; i++ {
		one.SetBit(i, true)
	}

	f0 := ones(zero)
	f1 := ones(one)

	diff := f0 - f1
	if diff < 0 {
		diff = -diff
	}
	if diff > 0.01 {
		t.Errorf("transcript bit frequency depends on selection: "+
			"%.4f vs %.4f", f0, f1)
	}
}
