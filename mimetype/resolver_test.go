/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package mimetype

import "testing"

func TestResolve(t *testing.T) {
	table := []Entry{
		{Ext: "html", Type: "text/html"},
		{Ext: "HTML", Type: "text/html-upper"},
		{Ext: "css", Type: "text/css"},
		{Ext: "txt", Type: "text/plain"},
	}
	cases := []struct{ name, want string }{
		{"index.html", "text/html"},
		{"index.HTML", "text/html-upper"},
		{"style.css", "text/css"},
		{"archive.tar.gz", DefaultType},
		{"noext", DefaultType},
		{"README.txt", "text/plain"},
		{"", DefaultType},
	}
	for _, c := range cases {
		if got := Resolve(table, c.name); got != c.want {
			t.Errorf("Resolve(table, %q) = %q, want %q", c.name, got, c.want)
		}
	}
}
