/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package quark

import (
	"io"
	"net"
	"strings"

	"github.com/bieganski/quark/codec"
)

// crlfcrlf is the four-byte terminator a request's header block ends with.
const crlfcrlf = "\r\n\r\n"

var knownMethods = []string{"HEAD", "GET"} // longest-match order: HEAD before GET is irrelevant, neither prefixes the other

// ParseRequest reads one request off conn, bounded by HeaderMax bytes, and
// parses the request line and recognized fields. On any parse failure it
// returns (nil, status) where status is the code the caller should route
// through writeError; on success it returns a populated *Request and
// StatusOK.
func ParseRequest(conn net.Conn) (*Request, Status) {
	raw, st := readHeaderBlock(conn)
	if st != StatusOK {
		return nil, st
	}

	// Strip the trailing blank-line CRLF readHeaderBlock stopped at.
	raw = raw[:len(raw)-2]

	lineEnd := strings.Index(raw, "\r\n")
	if lineEnd < 0 {
		return nil, StatusBadRequest
	}
	reqLine := raw[:lineEnd]
	rest := raw[lineEnd+2:]

	req := &Request{}
	st = parseRequestLine(reqLine, req)
	if st != StatusOK {
		return nil, st
	}

	st = parseFields(rest, req)
	if st != StatusOK {
		return nil, st
	}

	return req, StatusOK
}

// readHeaderBlock reads from conn into a bounded buffer until the CRLFCRLF
// terminator appears at the tail, the buffer fills without it, or the
// connection errors/times out.
func readHeaderBlock(conn net.Conn) (string, Status) {
	buf := make([]byte, 0, HeaderMax)
	chunk := make([]byte, 512)
	for {
		if strings.HasSuffix(string(buf), crlfcrlf) {
			return string(buf), StatusOK
		}
		if len(buf) >= HeaderMax {
			return "", StatusRequestHeaderFields
		}

		toRead := chunk
		if room := HeaderMax - len(buf); room < len(toRead) {
			toRead = chunk[:room]
		}
		n, err := conn.Read(toRead)
		if n > 0 {
			buf = append(buf, toRead[:n]...)
			if strings.HasSuffix(string(buf), crlfcrlf) {
				return string(buf), StatusOK
			}
		}
		if err != nil {
			if err == io.EOF {
				return "", StatusBadRequest
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return "", StatusRequestTimeout
			}
			return "", StatusRequestTimeout
		}
	}
}

// parseRequestLine parses "METHOD SP target SP HTTP/1.x\r\n" (reqLine has
// the trailing CRLF already stripped) into req.Method and req.Target.
func parseRequestLine(reqLine string, req *Request) Status {
	method, st := matchMethod(reqLine)
	if st != StatusOK {
		return st
	}
	rest := reqLine[len(method):]
	if len(rest) == 0 || rest[0] != ' ' {
		return StatusBadRequest
	}
	rest = rest[1:]

	sp := strings.IndexByte(rest, ' ')
	if sp < 0 {
		return StatusBadRequest
	}
	target := rest[:sp]
	version := rest[sp+1:]

	if len(target) > PathMax {
		return StatusRequestHeaderFields
	}
	if len(target) == 0 || target[0] != '/' {
		return StatusBadRequest
	}

	switch version {
	case "HTTP/1.0", "HTTP/1.1":
		// ok
	default:
		if strings.HasPrefix(version, "HTTP/") {
			return StatusHTTPVersionNotSupp
		}
		return StatusBadRequest
	}

	req.Method = method
	req.Target = codec.Decode(target)
	if len(req.Target) > PathMax-1 {
		return StatusRequestHeaderFields
	}
	return StatusOK
}

// matchMethod finds the longest known method prefixing reqLine. On no
// match it reports 405 (the Allow: HEAD, GET header accompanying the 405
// response body is added by the caller via writeError).
func matchMethod(reqLine string) (string, Status) {
	best := ""
	for _, m := range knownMethods {
		if strings.HasPrefix(reqLine, m) && len(m) > len(best) {
			best = m
		}
	}
	if best == "" {
		return "", StatusMethodNotAllowed
	}
	return best, StatusOK
}

// parseFields scans the header lines in rest (CRLF-terminated, trailing
// blank line already stripped by the caller) for the recognized field
// names, keeping the last occurrence of each.
func parseFields(rest string, req *Request) Status {
	for len(rest) > 0 {
		lineEnd := strings.Index(rest, "\r\n")
		if lineEnd < 0 {
			return StatusBadRequest
		}
		line := rest[:lineEnd]
		rest = rest[lineEnd+2:]

		f, ok := matchField(line)
		if !ok {
			continue // unrecognized field name: skip the line, no diagnostic
		}

		name := fieldNames[f]
		if len(line) <= len(name) || line[len(name)] != ':' {
			return StatusBadRequest
		}
		value := line[len(name)+1:]
		for len(value) > 0 && value[0] == ' ' {
			value = value[1:]
		}
		if len(value) > FieldMax {
			return StatusRequestHeaderFields
		}
		req.Fields[f] = value
	}
	return StatusOK
}

// matchField finds the longest recognized field name prefixing line.
func matchField(line string) (Field, bool) {
	best := Field(-1)
	bestLen := -1
	for f := Field(0); f < numFields; f++ {
		name := fieldNames[f]
		if strings.HasPrefix(line, name) && len(name) > bestLen {
			best, bestLen = f, len(name)
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
