/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package listing renders the auto-generated directory index: directories
// sorted before files, then lexicographically by name.
//
// The HTML template is deliberately plain: no sizes, no dates, no
// percent- or HTML-escaping of entry names. That last point is a
// documented limitation, not an oversight: a name containing '"', '<',
// '&' or a space will break the generated href or allow markup injection
// into the listing page. A served document root under adversarial
// control of untrusted uploaders should not enable listdirs.
package listing

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// entryKind classifies a directory entry for both sorting and the href
// suffix character.
type entryKind int

const (
	kindFile entryKind = iota
	kindDir
	kindFIFO
	kindSymlink
	kindSocket
)

func (k entryKind) suffix() string {
	switch k {
	case kindDir:
		return "/"
	case kindFIFO:
		return "|"
	case kindSymlink:
		return "@"
	case kindSocket:
		return "="
	default:
		return ""
	}
}

type entry struct {
	name string
	kind entryKind
}

func classify(fi os.FileInfo) entryKind {
	switch {
	case fi.Mode()&os.ModeDir != 0:
		return kindDir
	case fi.Mode()&os.ModeNamedPipe != 0:
		return kindFIFO
	case fi.Mode()&os.ModeSymlink != 0:
		return kindSymlink
	case fi.Mode()&os.ModeSocket != 0:
		return kindSocket
	default:
		return kindFile
	}
}

// readEntries scans dirPath, dropping dotfiles, and returns entries sorted
// with directories first and then byte-wise lexicographic by name.
func readEntries(dirPath string) ([]entry, error) {
	f, err := os.Open(dirPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	infos, err := f.Readdir(-1)
	if err != nil {
		return nil, err
	}

	entries := make([]entry, 0, len(infos))
	for _, fi := range infos {
		name := fi.Name()
		if len(name) > 0 && name[0] == '.' {
			continue
		}
		entries = append(entries, entry{name: name, kind: classify(fi)})
	}

	sort.Slice(entries, func(i, j int) bool {
		di, dj := entries[i].kind == kindDir, entries[j].kind == kindDir
		if di != dj {
			return di // directories first
		}
		return entries[i].name < entries[j].name
	})
	return entries, nil
}

// Write renders the HTML index for dirPath into w. reqTarget is the
// normalized request path (used only for the page title). When head is
// true the body is measured but not written, matching HEAD semantics; the
// returned byte count is always the full body length so the caller can
// set Content-Length before writing headers.
func Write(w io.Writer, head bool, dirPath, reqTarget string) (int64, error) {
	entries, err := readEntries(dirPath)
	if err != nil {
		return 0, err
	}

	var buf countingBuffer
	fmt.Fprintf(&buf, "<head><title>Index of %s</title></head><body>\n", reqTarget)
	fmt.Fprintf(&buf, "<a href=\"..\">..</a><br>\n")
	for _, e := range entries {
		suf := e.kind.suffix()
		fmt.Fprintf(&buf, "<a href=\"%s\">%s%s</a><br>\n", e.name, e.name, suf)
	}
	io.WriteString(&buf, "</body>\n")

	if head {
		return buf.n, nil
	}
	n, err := w.Write(buf.bytes())
	return int64(n), err
}

// countingBuffer accumulates the rendered page so its length is known
// before any bytes reach the wire — Content-Length must precede the body,
// and the listing body is never streamed.
type countingBuffer struct {
	n   int64
	buf []byte
}

func (c *countingBuffer) Write(p []byte) (int, error) {
	c.buf = append(c.buf, p...)
	c.n += int64(len(p))
	return len(p), nil
}

func (c *countingBuffer) bytes() []byte { return c.buf }
