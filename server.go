/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package quark

import (
	"errors"
	"log"
	"net"
	"time"
)

// keepAliveListener wraps a *net.TCPListener so every accepted connection
// carries OS-level TCP keepalives. Keepalives detect a dead peer even
// though quark never reuses the connection for a second request.
type keepAliveListener struct {
	*net.TCPListener
}

func (l keepAliveListener) Accept() (net.Conn, error) {
	conn, err := l.AcceptTCP()
	if err != nil {
		return nil, err
	}
	conn.SetKeepAlive(true)
	conn.SetKeepAlivePeriod(3 * time.Minute)
	return conn, nil
}

// Serve runs the accept loop. It blocks on ln.Accept forever, dispatching
// each connection to its own goroutine running serve. Every Accept error is
// logged to stderr and the loop continues — Accept can fail transiently
// (fd exhaustion, a dropped incoming SYN, and the like) without the
// listener itself being unusable — and Serve only returns once the
// listener has actually been closed out from under it.
func Serve(ln net.Listener, cfg *Config) error {
	if tl, ok := ln.(*net.TCPListener); ok {
		ln = keepAliveListener{tl}
	}
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			log.Println("accept:", err)
			continue
		}
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic serving %s: %v", conn.RemoteAddr(), r)
				}
			}()
			serve(conn, cfg)
		}()
	}
}
