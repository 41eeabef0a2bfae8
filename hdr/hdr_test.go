/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

import (
	"bytes"
	"testing"
)

func TestWriteFieldsOrderPreserved(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFields(&buf, []Field{
		{Name: Date, Value: "Sat, 02 Mar 2024 15:04:05 GMT"},
		{Name: Connection, Value: "close"},
		{Name: ContentType, Value: "text/html"},
	})
	if err != nil {
		t.Fatalf("WriteFields: %v", err)
	}
	want := "Date: Sat, 02 Mar 2024 15:04:05 GMT\r\n" +
		"Connection: close\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n"
	if buf.String() != want {
		t.Fatalf("WriteFields output = %q, want %q", buf.String(), want)
	}
}

func TestWriteFieldsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFields(&buf, nil); err != nil {
		t.Fatalf("WriteFields: %v", err)
	}
	if buf.String() != "\r\n" {
		t.Fatalf("WriteFields(nil) = %q, want %q", buf.String(), "\r\n")
	}
}
