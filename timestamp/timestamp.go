/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package timestamp formats and parses the IMF-fixdate strings used on the
// wire for Date, Last-Modified and If-Modified-Since.
package timestamp

import "time"

// Layout is the IMF-fixdate layout, hard-coding GMT as the zone. The time
// being formatted must be in UTC for Format to produce the correct string.
const Layout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Format renders t as an IMF-fixdate string. A zero t is replaced by the
// current wall time. The string is built via AppendFormat into a stack
// buffer to avoid an intermediate allocation.
func Format(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	var buf [64]byte
	return string(t.UTC().AppendFormat(buf[:0], Layout))
}

// ParseIMFFixdate parses s using the single strict IMF-fixdate layout.
// This is deliberately single-format, unlike the RFC850/ANSIC fallback
// chain some HTTP date parsers use: an If-Modified-Since value under any
// other layout is a parse failure (400), not a silently accepted
// alternate format.
func ParseIMFFixdate(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}
