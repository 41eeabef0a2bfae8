/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package mimetype resolves a filename suffix to a content type against a
// caller-supplied table. It does not delegate to stdlib
// mime.TypeByExtension: this resolver needs an exact, case-sensitive
// suffix match against a configured ordered table and a fixed default,
// not the OS mime-registry-aware lookup stdlib mime performs.
package mimetype

import "strings"

// DefaultType is returned when name has no suffix, or the suffix matches no
// entry in the table.
const DefaultType = "application/octet-stream"

// Entry is one (extension, content-type) pair from Config.Mimes.
type Entry struct {
	Ext  string
	Type string
}

// Resolve finds the last "." in name and compares the suffix after it,
// case-sensitively, against entries[].Ext in order. The first match wins.
// A name with no "." always resolves to DefaultType.
func Resolve(entries []Entry, name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return DefaultType
	}
	suffix := name[i+1:]
	for _, e := range entries {
		if e.Ext == suffix {
			return e.Type
		}
	}
	return DefaultType
}
