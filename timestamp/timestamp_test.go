/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package timestamp

import (
	"testing"
	"time"
)

func TestFormatRoundTrip(t *testing.T) {
	in := time.Date(2024, time.March, 2, 15, 4, 5, 0, time.UTC)
	got := Format(in)
	want := "Sat, 02 Mar 2024 15:04:05 GMT"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
	parsed, err := ParseIMFFixdate(got)
	if err != nil {
		t.Fatalf("ParseIMFFixdate(%q): %v", got, err)
	}
	if !parsed.Equal(in) {
		t.Fatalf("ParseIMFFixdate(%q) = %v, want %v", got, parsed, in)
	}
}

func TestFormatZeroUsesNow(t *testing.T) {
	before := time.Now().UTC()
	got := Format(time.Time{})
	parsed, err := ParseIMFFixdate(got)
	if err != nil {
		t.Fatalf("ParseIMFFixdate(%q): %v", got, err)
	}
	if parsed.Before(before.Add(-2 * time.Second)) {
		t.Fatalf("Format(zero) produced stale timestamp: %v", parsed)
	}
}

func TestParseIMFFixdateRejectsOtherLayouts(t *testing.T) {
	cases := []string{
		"Saturday, 02-Mar-24 15:04:05 GMT", // RFC850
		"Sat Mar  2 15:04:05 2024",         // ANSIC
		"not a time at all",
	}
	for _, s := range cases {
		if _, err := ParseIMFFixdate(s); err == nil {
			t.Errorf("ParseIMFFixdate(%q): want error, got none", s)
		}
	}
}
