//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"log"
	"net"
	"time"
)

// Listen waits for one inbound connection on addr and wraps it into a
// Conn.
func Listen(addr string) (*Conn, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer listener.Close()

	nc, err := listener.Accept()
	if err != nil {
		return nil, err
	}
	return NewConn(nc), nil
}

// Dial connects to the peer at addr, retrying until the peer is
// listening, and wraps the connection into a Conn.
func Dial(addr string) (*Conn, error) {
	for {
		nc, err := net.Dial("tcp", addr)
		if err != nil {
			delay := 5 * time.Second
			log.Printf("connect to %s failed, retrying in %s", addr, delay)
			<-time.After(delay)
			continue
		}
		return NewConn(nc), nil
	}
}
