/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package quark

import (
	"fmt"
	"io"

	"github.com/bieganski/quark/hdr"
	"github.com/bieganski/quark/timestamp"
)

// writeError emits a status line, the standard header block, and a minimal
// HTML body for st. It returns the effective status for logging: st on
// success, StatusRequestTimeout if the write itself failed.
func writeError(w io.Writer, st Status) Status {
	body := fmt.Sprintf(
		"<head><title>%s</title></head><body><h1>%s</h1></body>",
		st.String(), st.String(),
	)

	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", int(st), st.Reason()); err != nil {
		return StatusRequestTimeout
	}

	fields := []hdr.Field{
		{Name: hdr.Date, Value: timestamp.Format(timeNow())},
		{Name: hdr.Connection, Value: "close"},
	}
	if st == StatusMethodNotAllowed {
		fields = append(fields, hdr.Field{Name: hdr.Allow, Value: "HEAD, GET"})
	}
	fields = append(fields, hdr.Field{Name: hdr.ContentType, Value: "text/html"})

	if err := hdr.WriteFields(w, fields); err != nil {
		return StatusRequestTimeout
	}
	if _, err := io.WriteString(w, body); err != nil {
		return StatusRequestTimeout
	}
	return st
}
