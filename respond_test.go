/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package quark

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bieganski/quark/mimetype"
)

func testConfig(dir string) *Config {
	return &Config{
		ServeDir: dir,
		DocIndex: "index.html",
		ListDirs: true,
		Mimes: []mimetype.Entry{
			{Ext: "html", Type: "text/html"},
			{Ext: "txt", Type: "text/plain"},
		},
	}
}

// roundtrip sends raw on a net.Pipe, runs ParseRequest+Respond against
// cfg on the server half, and returns the full response text. Respond
// resolves filesystem paths relative to the current directory (mirroring
// the chdir startup.Bootstrap performs before chroot), so roundtrip chdir's
// into cfg.ServeDir for the duration of the call and restores the previous
// working directory afterward.
func roundtrip(t *testing.T, cfg *Config, raw string) string {
	t.Helper()

	prevDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(cfg.ServeDir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(prevDir)

	client, server := net.Pipe()
	defer client.Close()

	go client.Write([]byte(raw))

	done := make(chan string, 1)
	go func() {
		r := bufio.NewReader(client)
		var sb strings.Builder
		buf := make([]byte, 4096)
		for {
			n, err := r.Read(buf)
			sb.Write(buf[:n])
			if err != nil {
				break
			}
		}
		done <- sb.String()
	}()

	req, st := ParseRequest(server)
	if st != StatusOK {
		writeError(server, st)
	} else {
		Respond(server, req, cfg)
	}
	server.Close()

	return <-done
}

// Scenario 1: a decoded path containing a hidden ("/.") component is 403.
func TestScenarioHiddenPathIsForbidden(t *testing.T) {
	dir := t.TempDir()
	resp := roundtrip(t, testConfig(dir), "GET /%2e%2e/etc/passwd HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 403") {
		t.Fatalf("response = %q, want 403 prefix", resp)
	}
}

// Scenario 2: a non-canonical target redirects to the canonical one.
func TestScenarioNonCanonicalPathRedirects(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "a"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a", "c"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp := roundtrip(t, testConfig(dir), "GET /a//b/../c HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 301") {
		t.Fatalf("response = %q, want 301 prefix", resp)
	}
	if !strings.Contains(resp, "Location: /a/c") {
		t.Fatalf("response missing Location: /a/c: %q", resp)
	}

	resp2 := roundtrip(t, testConfig(dir), "GET /a/c HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(resp2, "HTTP/1.1 200") {
		t.Fatalf("follow-up response = %q, want 200 prefix", resp2)
	}
	if !strings.Contains(resp2, "Content-Length: 5") {
		t.Fatalf("follow-up response missing Content-Length: 5: %q", resp2)
	}
	if !strings.HasSuffix(resp2, "hello") {
		t.Fatalf("follow-up response body != hello: %q", resp2)
	}
}

// Scenario 3: HEAD reports Content-Length with no body.
func TestScenarioHeadOmitsBody(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("123456789012"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp := roundtrip(t, testConfig(dir), "HEAD /index.html HTTP/1.0\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 200") {
		t.Fatalf("response = %q, want 200 prefix", resp)
	}
	if !strings.Contains(resp, "Content-Length: 12") {
		t.Fatalf("response missing Content-Length: 12: %q", resp)
	}
	if !strings.HasSuffix(resp, "\r\n\r\n") {
		t.Fatalf("response has a body, want none: %q", resp)
	}
}

// Scenario 4: directory listing sorts directories first, skips dotfiles.
func TestScenarioDirectoryListing(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "dirB"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp := roundtrip(t, testConfig(dir), "GET / HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 200") {
		t.Fatalf("response = %q, want 200 prefix", resp)
	}
	if !strings.Contains(resp, "text/html") {
		t.Fatalf("response missing text/html Content-Type: %q", resp)
	}
	if strings.Contains(resp, ".hidden") {
		t.Fatalf("response lists hidden file: %q", resp)
	}
	dirIdx := strings.Index(resp, "dirB/")
	fileIdx := strings.Index(resp, "a.txt")
	if dirIdx < 0 || fileIdx < 0 || dirIdx > fileIdx {
		t.Fatalf("response doesn't list dirB/ before a.txt: %q", resp)
	}
	if !strings.Contains(resp, "..") {
		t.Fatalf("response missing parent link: %q", resp)
	}
}

// Scenario 5: a valid byte range returns 206 with the exclusive-upper
// Content-Length convention.
func TestScenarioByteRange(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "file"), []byte("abcdefgh"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp := roundtrip(t, testConfig(dir), "GET /file HTTP/1.1\r\nRange: bytes=2-4\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 206") {
		t.Fatalf("response = %q, want 206 prefix", resp)
	}
	if !strings.Contains(resp, "Content-Length: 3") {
		t.Fatalf("response missing Content-Length: 3: %q", resp)
	}
	if !strings.Contains(resp, "Content-Range: bytes 2-4/8") {
		t.Fatalf("response missing Content-Range: bytes 2-4/8: %q", resp)
	}
	if !strings.HasSuffix(resp, "cde") {
		t.Fatalf("response body != cde: %q", resp)
	}
}

// Scenario 6: an unrecognized method is 405 with an Allow header.
func TestScenarioUnknownMethodIs405(t *testing.T) {
	dir := t.TempDir()
	resp := roundtrip(t, testConfig(dir), "POST / HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 405") {
		t.Fatalf("response = %q, want 405 prefix", resp)
	}
	if !strings.Contains(resp, "Allow: HEAD, GET") {
		t.Fatalf("response missing Allow: HEAD, GET: %q", resp)
	}
}

// Testable property 5: If-Modified-Since at or after mtime short-circuits
// to 304 with no body.
func TestIfModifiedSinceNotModified(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	resp := roundtrip(t, testConfig(dir), "GET /file.txt HTTP/1.1\r\nIf-Modified-Since: "+mtime.UTC().Format(timeLayoutForTest)+"\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 304") {
		t.Fatalf("response = %q, want 304 prefix", resp)
	}
	if !strings.HasSuffix(resp, "\r\n\r\n") {
		t.Fatalf("304 response carries a body: %q", resp)
	}
}

const timeLayoutForTest = "Mon, 02 Jan 2006 15:04:05 GMT"
