/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bieganski/quark"
	"github.com/bieganski/quark/mimetype"
	"github.com/bieganski/quark/startup"
)

// version is quark's release tag, printed by -v.
const version = "0.1.0"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("quark", pflag.ContinueOnError)

	showVersion := flags.BoolP("version", "v", false, "print version and exit")
	host := flags.StringP("host", "h", "", "bind host (TCP mode)")
	port := flags.IntP("port", "p", 0, "bind port (TCP mode)")
	udsName := flags.StringP("unix", "U", "", "bind a Unix-domain socket instead of TCP")
	servedir := flags.StringP("dir", "d", "", "directory to chroot and serve (required)")
	userName := flags.StringP("user", "u", "", "user to drop privileges to (required)")
	groupName := flags.StringP("group", "g", "", "group to drop privileges to (required)")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("usage: quark [-v] [[[-h host] [-p port]] | [-U udsocket]] [-d dir] [-u user] [-g group]")
	}

	if *showVersion {
		fmt.Fprintln(os.Stderr, "quark", version)
		return nil
	}

	cfg, err := configFromFlags(*host, *port, *udsName, *servedir, *userName, *groupName)
	if err != nil {
		return err
	}

	ln, err := startup.Bootstrap(cfg)
	if err != nil {
		return err
	}
	return quark.Serve(ln, cfg)
}

// configFromFlags validates the TCP/Unix mutual exclusion the CLI grammar
// requires and fills in the fixed defaults (document index, MIME table,
// worker NPROC ceiling) that quark ships with.
func configFromFlags(host string, port int, udsName, servedir, userName, groupName string) (*quark.Config, error) {
	if servedir == "" || userName == "" || groupName == "" {
		return nil, fmt.Errorf("-d, -u, and -g are all required")
	}
	if udsName != "" && (host != "" || port != 0) {
		return nil, fmt.Errorf("-U is mutually exclusive with -h/-p")
	}
	if udsName == "" && port == 0 {
		return nil, fmt.Errorf("either -U or -p (with optional -h) must be given")
	}

	return &quark.Config{
		Host:      host,
		Port:      port,
		UDSName:   udsName,
		ServeDir:  servedir,
		User:      userName,
		Group:     groupName,
		DocIndex:  "index.html",
		ListDirs:  true,
		MaxNProcs: 256,
		Mimes:     defaultMimes,
	}, nil
}

// defaultMimes is the suffix table mimetype.Resolve consults ahead of its
// application/octet-stream default.
var defaultMimes = []mimetype.Entry{
	{Ext: "html", Type: "text/html"},
	{Ext: "htm", Type: "text/html"},
	{Ext: "css", Type: "text/css"},
	{Ext: "js", Type: "application/javascript"},
	{Ext: "json", Type: "application/json"},
	{Ext: "txt", Type: "text/plain"},
	{Ext: "png", Type: "image/png"},
	{Ext: "jpg", Type: "image/jpeg"},
	{Ext: "jpeg", Type: "image/jpeg"},
	{Ext: "gif", Type: "image/gif"},
	{Ext: "svg", Type: "image/svg+xml"},
	{Ext: "ico", Type: "image/x-icon"},
	{Ext: "pdf", Type: "application/pdf"},
}
