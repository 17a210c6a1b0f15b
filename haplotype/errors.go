// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package haplotype

import "fmt"

// ChunkSizeError is returned when a query reaches further past the
// current window than one chunk extension can cover. The fix is a
// larger chunk size.
type ChunkSizeError struct {
	MinSite, MaxSite int
	ChunkEnd         int
	ChunkSize        int
}

func (e *ChunkSizeError) Error() string {
	return fmt.Sprintf("chunk size %d is not large enough to hold sites [%d,%d] (window ends at %d); try increasing the chunk size", e.ChunkSize, e.MinSite, e.MaxSite, e.ChunkEnd)
}

// WindowError is returned when a site is requested outside the
// current window, e.g., a query that starts before the window after
// the window has moved forward.
type WindowError struct {
	Site       int
	ChunkStart int
	ChunkEnd   int
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("site %d is outside the current window [%d,%d)", e.Site, e.ChunkStart, e.ChunkEnd)
}

// TableSizeError is returned when the combo space of a query exceeds
// the configured limit.
type TableSizeError struct {
	Bounds    []int
	MaxCombos int
}

func (e *TableSizeError) Error() string {
	return fmt.Sprintf("combo space for bounds %v exceeds limit %d", e.Bounds, e.MaxCombos)
}
