/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package quark

import "fmt"

// Status is the closed set of HTTP status codes quark emits.
type Status int

const (
	StatusOK                  Status = 200
	StatusPartialContent      Status = 206
	StatusMovedPermanently    Status = 301
	StatusNotModified         Status = 304
	StatusBadRequest          Status = 400
	StatusForbidden           Status = 403
	StatusNotFound            Status = 404
	StatusMethodNotAllowed    Status = 405
	StatusRequestTimeout      Status = 408
	StatusRequestHeaderFields Status = 431
	StatusInternalServerError Status = 500
	StatusHTTPVersionNotSupp  Status = 505
)

var reasonPhrases = map[Status]string{
	StatusOK:                  "OK",
	StatusPartialContent:      "Partial Content",
	StatusMovedPermanently:    "Moved Permanently",
	StatusNotModified:         "Not Modified",
	StatusBadRequest:          "Bad Request",
	StatusForbidden:           "Forbidden",
	StatusNotFound:            "Not Found",
	StatusMethodNotAllowed:    "Method Not Allowed",
	StatusRequestTimeout:      "Request Timeout",
	StatusRequestHeaderFields: "Request Header Fields Too Large",
	StatusInternalServerError: "Internal Server Error",
	StatusHTTPVersionNotSupp:  "HTTP Version Not Supported",
}

// Reason returns the canonical reason phrase for st, or "Unknown Status"
// for any value outside the closed set this type defines.
func (st Status) Reason() string {
	if r, ok := reasonPhrases[st]; ok {
		return r
	}
	return "Unknown Status"
}

func (st Status) String() string {
	return fmt.Sprintf("%d %s", int(st), st.Reason())
}
