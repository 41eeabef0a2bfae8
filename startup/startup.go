/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package startup is quark's external glue: the listening socket,
// privilege drop, and process-limit tuning the request-handling core
// treats as an opaque collaborator. None of the core packages import
// this one; main wires them together.
package startup

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/bieganski/quark"
)

// Bootstrap raises RLIMIT_NPROC, resolves user/group, binds the listening
// socket, chdir+chroots into cfg.ServeDir, then drops privileges, in that
// order. It returns the bound listener ready for quark.Serve, or an error
// describing the first failed step — the caller (cmd/quark) turns any
// error into an exit(1) diagnostic.
func Bootstrap(cfg *quark.Config) (net.Listener, error) {
	if err := raiseNProc(cfg.MaxNProcs); err != nil {
		return nil, fmt.Errorf("startup: raising RLIMIT_NPROC: %w", err)
	}

	uid, gid, err := resolveIdentity(cfg.User, cfg.Group)
	if err != nil {
		return nil, fmt.Errorf("startup: resolving user/group: %w", err)
	}

	ln, err := bind(cfg)
	if err != nil {
		return nil, fmt.Errorf("startup: binding listener: %w", err)
	}

	if err := unix.Chdir(cfg.ServeDir); err != nil {
		ln.Close()
		return nil, fmt.Errorf("startup: chdir %s: %w", cfg.ServeDir, err)
	}
	if err := unix.Chroot("."); err != nil {
		ln.Close()
		return nil, fmt.Errorf("startup: chroot: %w", err)
	}

	if err := dropPrivileges(uid, gid); err != nil {
		ln.Close()
		return nil, fmt.Errorf("startup: dropping privileges: %w", err)
	}

	return ln, nil
}

// raiseNProc raises both the soft and hard RLIMIT_NPROC to n.
func raiseNProc(n uint64) error {
	if n == 0 {
		return nil
	}
	limit := unix.Rlimit{Cur: n, Max: n}
	return unix.Setrlimit(unix.RLIMIT_NPROC, &limit)
}

// resolveIdentity looks up userName/groupName, refusing any resolution
// that would leave the process root after the drop.
func resolveIdentity(userName, groupName string) (uid, gid int, err error) {
	u, err := user.Lookup(userName)
	if err != nil {
		return 0, 0, fmt.Errorf("unknown user %q: %w", userName, err)
	}
	g, err := user.LookupGroup(groupName)
	if err != nil {
		return 0, 0, fmt.Errorf("unknown group %q: %w", groupName, err)
	}
	uid, err = strconv.Atoi(u.Uid)
	if err != nil {
		return 0, 0, fmt.Errorf("non-numeric uid for %q: %w", userName, err)
	}
	gid, err = strconv.Atoi(g.Gid)
	if err != nil {
		return 0, 0, fmt.Errorf("non-numeric gid for %q: %w", groupName, err)
	}
	if uid == 0 || gid == 0 {
		return 0, 0, fmt.Errorf("refusing to run as uid/gid 0 (user=%s group=%s)", userName, groupName)
	}
	return uid, gid, nil
}

// dropPrivileges replaces the supplementary groups with gid alone, then
// sets gid before uid —
// the usual order, since setuid may make the process unable to call
// setgid afterward.
func dropPrivileges(uid, gid int) error {
	if err := unix.Setgroups([]int{gid}); err != nil {
		return fmt.Errorf("setgroups: %w", err)
	}
	if err := unix.Setgid(gid); err != nil {
		return fmt.Errorf("setgid: %w", err)
	}
	if err := unix.Setuid(uid); err != nil {
		return fmt.Errorf("setuid: %w", err)
	}
	return nil
}

// bind opens the TCP or Unix-domain listening socket cfg names; the two
// are mutually exclusive, enforced by cmd/quark's flag parsing before
// Bootstrap is ever called.
func bind(cfg *quark.Config) (net.Listener, error) {
	if cfg.UnixSocket() {
		return bindUnix(cfg.UDSName)
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	return net.Listen("tcp", addr)
}

// bindUnix unlinks any stale socket file left by a previous run before
// binding.
func bindUnix(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
}
