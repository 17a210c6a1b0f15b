// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package main

import "github.com/hapfreq/hapfreq"

func main() {
	hapfreq.Main()
}
