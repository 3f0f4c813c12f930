//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command otebench runs an IKNP OT extension session and prints a
// timing report. Without network flags it plays both roles over an
// in-process pipe; with -l it listens and plays the sender, with -c
// it connects and plays the receiver.
//
// Both endpoints derive the message vectors from the shared -seed,
// and the receiver also derives its selection bits from it, so that
// the receiver can verify its outputs without a second channel.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/chacha20"

	"github.com/markkurossi/ote/ot"
	"github.com/markkurossi/ote/otext"
	"github.com/markkurossi/ote/p2p"
)

var (
	defaultSeed = "8bf8ecbfc1b03ad7c47fbbcaa8aafe5a13c78c42bbd20f2bd1cd11466fa9fb2b"
)

func main() {
	listen := flag.String("l", "", "listen address for the sender role")
	connect := flag.String("c", "", "peer address for the receiver role")
	n := flag.Int("n", 1<<16, "number of extended transfers")
	onesided := flag.Bool("onesided", false, "run the one-sided variant")
	seedFlag := flag.String("seed", defaultSeed, "message derivation seed")
	flag.Parse()

	seed, err := hex.DecodeString(*seedFlag)
	if err != nil || len(seed) != chacha20.KeySize {
		log.Fatalf("invalid seed: must be %d hex bytes", chacha20.KeySize)
	}

	switch {
	case *listen != "":
		conn, err := p2p.Listen(*listen)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()
		if err := runSender(conn, seed, *n, *onesided); err != nil {
			log.Fatal(err)
		}

	case *connect != "":
		conn, err := p2p.Dial(*connect)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()
		if err := runReceiver(conn, seed, *n, *onesided); err != nil {
			log.Fatal(err)
		}

	default:
		sConn, rConn := p2p.Pipe()
		done := make(chan error)
		go func() {
			done <- runSender(sConn, seed, *n, *onesided)
		}()
		err := runReceiver(rConn, seed, *n, *onesided)
		if serr := <-done; serr != nil {
			log.Fatal(serr)
		}
		if err != nil {
			log.Fatal(err)
		}
	}
}

func runSender(conn *p2p.Conn, seed []byte, n int, onesided bool) error {
	timing := otext.NewTiming()

	params, err := otext.Setup(rand.Reader)
	if err != nil {
		return err
	}
	data, err := params.MarshalBinary()
	if err != nil {
		return err
	}
	if err := conn.SendData(data); err != nil {
		return err
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	timing.Sample("Setup", nil)

	m0, m1 := deriveMessages(seed, n)
	timing.Sample("Derive", nil)

	if onesided {
		err = otext.OnesidedSend(conn, params, m1)
	} else {
		err = otext.Send(conn, params, m0, m1)
	}
	if err != nil {
		return err
	}
	timing.Sample("Extend", []string{
		fmt.Sprintf("n=%d", n),
	})

	fmt.Printf("Sender:\n")
	timing.Print(conn.Stats)
	return nil
}

func runReceiver(conn *p2p.Conn, seed []byte, n int, onesided bool) error {
	timing := otext.NewTiming()

	data, err := conn.ReceiveData()
	if err != nil {
		return err
	}
	params := new(otext.Params)
	if err := params.UnmarshalBinary(data); err != nil {
		return err
	}
	timing.Sample("Setup", nil)

	m0, m1 := deriveMessages(seed, n)
	choices := deriveChoices(seed, n)
	timing.Sample("Derive", nil)

	var result []ot.Block
	if onesided {
		result, err = otext.OnesidedReceive(conn, params, choices)
	} else {
		result, err = otext.Receive(conn, params, choices)
	}
	if err != nil {
		return err
	}
	timing.Sample("Extend", []string{
		fmt.Sprintf("n=%d", n),
	})

	// Verify against the derived messages.
	var failed int
	if onesided {
		idx := 0
		for i := 0; i < n; i++ {
			if !choices.Bit(i) {
				continue
			}
			if !result[idx].Equal(m1[i]) {
				failed++
			}
			idx++
		}
		if idx != len(result) {
			return fmt.Errorf("result length %d, expected %d",
				len(result), idx)
		}
	} else {
		for i := 0; i < n; i++ {
			expected := m0[i]
			if choices.Bit(i) {
				expected = m1[i]
			}
			if !result[i].Equal(expected) {
				failed++
			}
		}
	}

	fmt.Printf("Receiver:\n")
	timing.Print(conn.Stats)

	if failed > 0 {
		fmt.Printf("verify failed for %d transfers\n", failed)
		os.Exit(1)
	}
	fmt.Printf("verified %d transfers\n", len(result))
	return nil
}

// deriveMessages expands the seed into the two message vectors.
func deriveMessages(seed []byte, n int) ([]ot.Block, []ot.Block) {
	buf := make([]byte, 2*n*ot.BlockBytes)
	expand(seed, 1, buf)

	return ot.FromDenseBits(buf[:n*ot.BlockBytes]),
		ot.FromDenseBits(buf[n*ot.BlockBytes:])
}

// deriveChoices expands the seed into the selection bits.
func deriveChoices(seed []byte, n int) *otext.SelectionVector {
	buf := make([]byte, n)
	expand(seed, 2, buf)
	return otext.SelectionFromBits(buf)
}

func expand(seed []byte, domain byte, buf []byte) {
	var nonce [chacha20.NonceSize]byte
	nonce[0] = domain

	cipher, err := chacha20.NewUnauthenticatedCipher(seed, nonce[:])
	if err != nil {
		panic(err)
	}
	cipher.XORKeyStream(buf, buf)
}
