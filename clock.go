/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package quark

import "time"

// timeNow is a package-level indirection over time.Now so tests can
// observe a fixed clock without touching every call site.
var timeNow = time.Now
