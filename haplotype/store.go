// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package haplotype

import (
	"bufio"
	"bytes"
	"fmt"
	"hash"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
)

// Store provides random access to the rows (sites) of a haplotype
// file within a window that only moves forward.
//
// The file has one line per site and one comma-separated column per
// haplotype. The window [chunkStart, chunkEnd) is extended by
// ChunkSize rows at a time, reading from where the previous extension
// stopped, so a sequence of queries with non-decreasing site ranges
// reads each byte of the file once.
//
// A Store is not safe for concurrent use. After EnsureWindow returns
// an I/O or parse error, the Store must be Reset before reuse.
type Store struct {
	path string
	file *os.File
	rdr  *bufio.Reader
	cfg  Config

	chunkStart  int
	chunkEnd    int
	chunkOffset int64 // file offset of the row at chunkEnd
	rows        [][]int8
	numH        int

	bytesRead int64
	digest    hash.Hash
}

// Open opens the haplotype file at path. No data is read until the
// first call to EnsureWindow.
func Open(path string, cfg Config) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	digest, err := blake2b.New256(nil)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Store{
		path:   path,
		file:   f,
		cfg:    cfg.withDefaults(),
		digest: digest,
	}, nil
}

func (s *Store) Close() error {
	return s.file.Close()
}

// Window returns the site range currently buffered.
func (s *Store) Window() (start, end int) {
	return s.chunkStart, s.chunkEnd
}

// NumHaplotypes returns the number of columns in the file, or 0 if no
// rows have been read yet.
func (s *Store) NumHaplotypes() int {
	return s.numH
}

// BytesRead returns the total number of file bytes consumed by window
// extensions over the life of the Store.
func (s *Store) BytesRead() int64 {
	return s.bytesRead
}

// Digest returns the blake2b-256 hash of the bytes consumed since the
// Store was opened or last Reset. After the window has advanced past
// the end of the file, it equals the hash of the whole file.
func (s *Store) Digest() []byte {
	return s.digest.Sum(nil)
}

// Reset discards the window. The next EnsureWindow call starts
// reading at the beginning of the file.
func (s *Store) Reset() {
	s.chunkStart = 0
	s.chunkEnd = 0
	s.chunkOffset = 0
	s.rows = nil
	s.digest.Reset()
}

// EnsureWindow makes sure sites minSite..maxSite (inclusive) are
// buffered, extending the window by one chunk if needed.
//
// Rows already buffered at or after minSite are kept; rows before
// minSite are dropped. minSite must not be less than the start of
// the current window.
func (s *Store) EnsureWindow(minSite, maxSite int) error {
	if minSite < 0 || minSite > maxSite {
		return fmt.Errorf("invalid site range [%d,%d]", minSite, maxSite)
	}
	if minSite < s.chunkStart {
		return &WindowError{Site: minSite, ChunkStart: s.chunkStart, ChunkEnd: s.chunkEnd}
	}
	if maxSite < s.chunkEnd {
		return nil
	}
	if maxSite >= s.chunkEnd+s.cfg.ChunkSize {
		return &ChunkSizeError{MinSite: minSite, MaxSite: maxSite, ChunkEnd: s.chunkEnd, ChunkSize: s.cfg.ChunkSize}
	}

	var carry [][]int8
	if minSite < s.chunkEnd {
		if from := minSite - s.chunkStart; from < len(s.rows) {
			carry = s.rows[from:]
		}
	}
	rows := make([][]int8, len(carry), len(carry)+s.cfg.ChunkSize)
	copy(rows, carry)

	if _, err := s.file.Seek(s.chunkOffset, io.SeekStart); err != nil {
		return fmt.Errorf("%s: seek to %d: %w", s.path, s.chunkOffset, err)
	}
	// Buffered data is stale after the seek.
	if s.rdr == nil {
		s.rdr = bufio.NewReaderSize(s.file, 1<<20)
	} else {
		s.rdr.Reset(s.file)
	}
	offset := s.chunkOffset
	site := s.chunkEnd
	for len(rows)-len(carry) < s.cfg.ChunkSize {
		line, err := s.rdr.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("%s: %w", s.path, err)
		}
		offset += int64(len(line))
		s.bytesRead += int64(len(line))
		s.digest.Write(line)
		if len(bytes.TrimSpace(line)) > 0 {
			row, perr := s.parseRow(line)
			if perr != nil {
				return fmt.Errorf("%s: site %d: %w", s.path, site, perr)
			}
			rows = append(rows, row)
			site++
		}
		if err == io.EOF {
			break
		}
	}

	log.WithFields(log.Fields{
		"path":    s.path,
		"carried": len(carry),
		"read":    len(rows) - len(carry),
		"offset":  offset,
	}).Debugf("window [%d,%d) -> [%d,%d)", s.chunkStart, s.chunkEnd, minInt(minSite, s.chunkEnd), s.chunkEnd+s.cfg.ChunkSize)

	s.chunkStart = minInt(minSite, s.chunkEnd)
	s.chunkEnd += s.cfg.ChunkSize
	s.chunkOffset = offset
	s.rows = rows
	return nil
}

// Row returns the alt-allele calls at the given site, one per
// haplotype. The returned slice must not be modified.
func (s *Store) Row(site int) ([]int8, error) {
	if site < s.chunkStart || site >= s.chunkEnd {
		return nil, &WindowError{Site: site, ChunkStart: s.chunkStart, ChunkEnd: s.chunkEnd}
	}
	idx := site - s.chunkStart
	if idx >= len(s.rows) {
		return nil, fmt.Errorf("%s: site %d is past end of file (%d sites)", s.path, site, s.chunkStart+len(s.rows))
	}
	return s.rows[idx], nil
}

func (s *Store) parseRow(line []byte) ([]int8, error) {
	line = bytes.TrimRight(line, "\r\n")
	fields := bytes.Split(line, []byte{','})
	if s.numH > 0 && len(fields) != s.numH {
		return nil, fmt.Errorf("row has %d haplotypes, expected %d", len(fields), s.numH)
	}
	row := make([]int8, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseInt(string(bytes.TrimSpace(f)), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("haplotype %d: %w", i, err)
		}
		row[i] = int8(x)
	}
	if s.numH == 0 {
		s.numH = len(row)
	}
	return row, nil
}

// ReadHaplotypes reads the entire file, independently of the window,
// and returns it transposed: one slice of numSites calls per
// haplotype. If the file does not have exactly numSites lines, a
// warning is logged and the slices have one entry per line actually
// read.
func (s *Store) ReadHaplotypes(numSites int) ([][]int8, error) {
	if numSites < 0 {
		return nil, fmt.Errorf("invalid number of sites %d", numSites)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var haps [][]int8
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1<<20), 1<<30)
	lines := 0
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		row, err := s.parseRow(scanner.Bytes())
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", s.path, lines+1, err)
		}
		if haps == nil {
			haps = make([][]int8, len(row))
			for i := range haps {
				haps[i] = make([]int8, 0, numSites)
			}
		}
		for i, x := range row {
			haps[i] = append(haps[i], x)
		}
		lines++
		log.Tracef("%s: read line %d / %d", s.path, lines, numSites)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	if lines != numSites {
		log.Warnf("%s: expected %d sites, found %d lines in haplotype file", s.path, numSites, lines)
	}
	return haps, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
