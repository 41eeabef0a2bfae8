/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package quark

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bieganski/quark/codec"
	"github.com/bieganski/quark/hdr"
	"github.com/bieganski/quark/listing"
	"github.com/bieganski/quark/mimetype"
	"github.com/bieganski/quark/pathutil"
	"github.com/bieganski/quark/timestamp"
)

// Respond normalizes the target, applies hidden-file policy, stats it,
// handles trailing-slash redirect, resolves directory index, honors
// conditional GET and range requests, resolves MIME, and sends the body,
// in that order. It returns the final Status for the caller (conn.go) to
// log. Every branch either writes a response itself (via
// writeError/writeRedirect/writeNotModified/writeListing/sendFile) or
// delegates to one that does — Respond never returns without having
// written exactly one response.
//
// Respond resolves all filesystem paths relative to the current directory,
// never against cfg.ServeDir: cfg.ServeDir only tells startup.Bootstrap
// where to chdir and chroot before Serve ever runs, so by the time a
// request reaches here "/" on the wire already is "." on disk.
func Respond(w net.Conn, req *Request, cfg *Config) Status {
	realTarget, err := pathutil.Normalize(req.Target)
	if err != nil {
		return writeError(w, StatusBadRequest)
	}

	if isHidden(realTarget) {
		return writeError(w, StatusForbidden)
	}

	// fsPath is resolved relative to the process's current directory, not
	// re-joined against cfg.ServeDir: by the time Serve is running,
	// startup.Bootstrap has already chdir'd into cfg.ServeDir and
	// chroot(".")'d, so "/" on the wire and "." on disk name the same
	// directory. Joining cfg.ServeDir in here a second time would look the
	// target up inside cfg.ServeDir/cfg.ServeDir/... within the jail.
	fsPath := filepath.Join(".", filepath.FromSlash(realTarget))
	fi, err := os.Stat(fsPath)
	if err != nil {
		return writeError(w, statForStatFailure(err))
	}

	if fi.IsDir() && !strings.HasSuffix(realTarget, "/") {
		if len(realTarget)+1 > PathMax {
			return writeError(w, StatusRequestHeaderFields)
		}
		realTarget += "/"
	}

	if realTarget != req.Target {
		return writeRedirect(w, codec.Encode(realTarget))
	}

	if fi.IsDir() {
		return respondDirectory(w, req, cfg, fsPath, realTarget)
	}
	return respondFile(w, req, cfg, fsPath, filepath.Base(fsPath), fi)
}

// respondDirectory serves DocIndex inside the directory if it is a
// regular file, else renders a listing (if enabled) or fails with a
// policy status.
func respondDirectory(w net.Conn, req *Request, cfg *Config, fsPath, realTarget string) Status {
	indexTarget := realTarget + cfg.DocIndex
	if len(indexTarget) > PathMax {
		return writeError(w, StatusRequestHeaderFields)
	}
	indexPath := filepath.Join(".", filepath.FromSlash(indexTarget))
	indexFi, err := os.Stat(indexPath)
	if err == nil && indexFi.Mode().IsRegular() {
		return respondFile(w, req, cfg, indexPath, cfg.DocIndex, indexFi)
	}

	if cfg.ListDirs {
		return writeListing(w, req, fsPath, realTarget)
	}
	if err == nil { // candidate exists but is not a regular file
		return writeError(w, StatusForbidden)
	}
	return writeError(w, statForStatFailure(err))
}

// respondFile handles a resolved regular file: conditional check, range
// parsing, MIME resolution, and send.
func respondFile(w net.Conn, req *Request, cfg *Config, servePath, serveName string, fi os.FileInfo) Status {
	if ims := req.Field(FieldIfModifiedSince); ims != "" {
		parsed, err := timestamp.ParseIMFFixdate(ims)
		if err != nil {
			return writeError(w, StatusBadRequest)
		}
		if !fi.ModTime().Truncate(time.Second).After(parsed) {
			return writeNotModified(w)
		}
	}

	size := fi.Size()
	lower, upper := int64(0), size
	hasRange := false
	if rv := req.Field(FieldRange); rv != "" {
		hasRange = true
		var st Status
		lower, upper, st = parseRange(rv, size)
		if st != StatusOK {
			return writeError(w, st)
		}
	}

	f, err := os.Open(servePath)
	if err != nil {
		return writeError(w, StatusForbidden)
	}
	defer f.Close()

	if _, err := f.Seek(lower, io.SeekStart); err != nil {
		return writeError(w, StatusInternalServerError)
	}

	contentType := mimetype.Resolve(cfg.Mimes, serveName)
	return sendFile(w, req.Method, f, fi.ModTime(), lower, upper, size, hasRange, contentType)
}

// isHidden reports whether p (already normalized) begins with "." or
// contains a "/."-prefixed component anywhere.
func isHidden(p string) bool {
	return strings.HasPrefix(p, ".") || strings.Contains(p, "/.")
}

func statForStatFailure(err error) Status {
	if errors.Is(err, fs.ErrPermission) {
		return StatusForbidden
	}
	return StatusNotFound
}

func writeRedirect(w net.Conn, location string) Status {
	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", int(StatusMovedPermanently), StatusMovedPermanently.Reason()); err != nil {
		return StatusRequestTimeout
	}
	fields := []hdr.Field{
		{Name: hdr.Date, Value: timestamp.Format(timeNow())},
		{Name: hdr.Connection, Value: "close"},
		{Name: hdr.Location, Value: location},
		{Name: hdr.ContentType, Value: "text/html"},
	}
	if err := hdr.WriteFields(w, fields); err != nil {
		return StatusRequestTimeout
	}
	return StatusMovedPermanently
}

func writeNotModified(w net.Conn) Status {
	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", int(StatusNotModified), StatusNotModified.Reason()); err != nil {
		return StatusRequestTimeout
	}
	fields := []hdr.Field{
		{Name: hdr.Date, Value: timestamp.Format(timeNow())},
		{Name: hdr.Connection, Value: "close"},
	}
	if err := hdr.WriteFields(w, fields); err != nil {
		return StatusRequestTimeout
	}
	return StatusNotModified
}

// writeListing renders the directory index. The body is rendered twice —
// once discarded, to learn its length for Content-Length before any
// header is written, and once (unless the method is HEAD) for real, since
// the body's length isn't known until it has been produced.
func writeListing(w net.Conn, req *Request, dirPath, reqTarget string) Status {
	n, err := listing.Write(io.Discard, true, dirPath, reqTarget)
	if err != nil {
		return writeError(w, statForStatFailure(err))
	}

	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", int(StatusOK), StatusOK.Reason()); err != nil {
		return StatusRequestTimeout
	}
	fields := []hdr.Field{
		{Name: hdr.Date, Value: timestamp.Format(timeNow())},
		{Name: hdr.Connection, Value: "close"},
		{Name: hdr.ContentType, Value: "text/html"},
		{Name: hdr.ContentLength, Value: strconv.FormatInt(n, 10)},
	}
	if err := hdr.WriteFields(w, fields); err != nil {
		return StatusRequestTimeout
	}
	if req.Method == "HEAD" {
		return StatusOK
	}
	if _, err := listing.Write(w, false, dirPath, reqTarget); err != nil {
		return StatusRequestTimeout
	}
	return StatusOK
}

// parseRange parses a "bytes=lower-upper" value against size, returning an
// exclusive-upper [lower, upper) pair: a wire value "bytes=2-4" yields the
// internal pair (2, 5), so Content-Length = upper - lower == 3 while the
// Content-Range header (built from upper-1) still reads "bytes 2-4/size"
// on the wire. strconv.ParseInt is used instead of an atoi-style silent
// truncation, so overflow is a 400 rather than undefined behavior.
func parseRange(v string, size int64) (lower, upper int64, st Status) {
	const prefix = "bytes="
	if !strings.HasPrefix(v, prefix) {
		return 0, 0, StatusBadRequest
	}
	v = v[len(prefix):]

	dash := strings.IndexByte(v, '-')
	if dash < 0 {
		return 0, 0, StatusBadRequest
	}
	lowerStr, upperStr := v[:dash], v[dash+1:]

	if lowerStr == "" {
		lower = 0
	} else {
		n, err := strconv.ParseInt(lowerStr, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, StatusBadRequest
		}
		lower = n
	}

	if upperStr == "" {
		upper = size
	} else {
		n, err := strconv.ParseInt(upperStr, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, StatusBadRequest
		}
		if n < lower {
			return 0, 0, StatusBadRequest
		}
		upper = n + 1
	}

	if upper > size {
		upper = size
	}
	if lower > upper {
		return 0, 0, StatusBadRequest
	}
	return lower, upper, StatusOK
}

// sendFile emits the status line, standard headers, and (for GET) the
// byte range [lower, upper) of f, in sendChunk-sized reads with
// write-retry.
func sendFile(w net.Conn, method string, f *os.File, modTime time.Time, lower, upper, size int64, hasRange bool, contentType string) Status {
	st := StatusOK
	if hasRange {
		st = StatusPartialContent
	}

	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", int(st), st.Reason()); err != nil {
		return StatusRequestTimeout
	}

	length := upper - lower
	fields := []hdr.Field{
		{Name: hdr.Date, Value: timestamp.Format(timeNow())},
		{Name: hdr.Connection, Value: "close"},
		{Name: hdr.LastModified, Value: timestamp.Format(modTime)},
		{Name: hdr.ContentType, Value: contentType},
		{Name: hdr.ContentLength, Value: strconv.FormatInt(length, 10)},
	}
	if hasRange {
		fields = append(fields, hdr.Field{
			Name:  hdr.ContentRange,
			Value: fmt.Sprintf("bytes %d-%d/%d", lower, upper-1, size),
		})
	}
	if err := hdr.WriteFields(w, fields); err != nil {
		return StatusRequestTimeout
	}

	if method == "HEAD" {
		return st
	}

	remaining := length
	buf := make([]byte, sendChunk)
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		read, err := f.Read(buf[:n])
		if read > 0 {
			if werr := writeFull(w, buf[:read]); werr != nil {
				return StatusRequestTimeout
			}
			remaining -= int64(read)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return StatusInternalServerError
		}
	}
	return st
}

// writeFull retries partial writes until buf is fully written or an error
// occurs.
func writeFull(w net.Conn, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}
