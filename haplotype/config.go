// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package haplotype

const (
	DefaultChunkSize = 100000
	DefaultMaxCombos = 1 << 26
)

type Config struct {
	// Number of rows added to the window each time it is
	// extended. A single query cannot span more than this many
	// sites past the end of the current window.
	ChunkSize int

	// Largest combo space (product of bounds+1) a frequency query
	// is allowed to allocate.
	MaxCombos int
}

func (cfg Config) withDefaults() Config {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.MaxCombos <= 0 {
		cfg.MaxCombos = DefaultMaxCombos
	}
	return cfg
}
