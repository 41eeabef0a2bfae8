/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package quark

import (
	"time"

	"github.com/bieganski/quark/mimetype"
)

// Size and timing limits.
const (
	// PathMax bounds a decoded request target, including the notional
	// terminator (quark's Go strings are not NUL-terminated, but the byte
	// budget is kept identical).
	PathMax = 4096

	// FieldMax bounds a decoded recognized-field value.
	FieldMax = 200

	// HeaderMax bounds the raw bytes read before the terminating blank
	// line must appear.
	HeaderMax = 4096

	// ConnTimeout is applied to both the read and write deadline of every
	// accepted connection.
	ConnTimeout = 30 * time.Second

	// sendChunk is the fixed read/write buffer size used to stream file
	// bodies.
	sendChunk = 8 << 10
)

// Config is the immutable, process-wide configuration snapshot built once
// at startup. A *Config is handed to every worker and never mutated after
// startup.Bootstrap returns — there is no setter on this type.
type Config struct {
	// Host, Port: TCP bind endpoint, mutually exclusive with UDSName.
	Host string
	Port int

	// UDSName: Unix-socket path, mutually exclusive with Host/Port.
	UDSName string

	// ServeDir is the directory the process chroots into before serving.
	ServeDir string

	// User, Group: identities dropped to after binding (both must resolve
	// to non-root after the drop).
	User  string
	Group string

	// DocIndex is the filename served in lieu of a directory listing.
	DocIndex string

	// ListDirs enables an auto-generated HTML listing when DocIndex is
	// absent from a requested directory.
	ListDirs bool

	// Mimes is the ordered (extension, content-type) table consulted by
	// mimetype.Resolve.
	Mimes []mimetype.Entry

	// MaxNProcs is the soft/hard NPROC rlimit startup.Bootstrap raises
	// before the accept loop begins.
	MaxNProcs uint64
}

// UnixSocket reports whether cfg is configured to bind a Unix-domain
// socket rather than a TCP endpoint.
func (cfg *Config) UnixSocket() bool {
	return cfg.UDSName != ""
}
