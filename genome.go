// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package hapfreq

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Genome maps chromosome names to reference sequences.
type Genome map[string]string

// Sequence returns length bases of chrom starting at 0-based offset
// start. ok is false if chrom is missing or the range extends past
// its end.
func (g Genome) Sequence(chrom string, start, length int) (seq string, ok bool) {
	s, ok := g[chrom]
	if !ok || start < 0 || length < 0 || start+length > len(s) {
		return "", false
	}
	return s[start : start+length], true
}

// ReadGenome reads FASTA-formatted sequences from r. The sequence
// name is the first space-delimited word of each header line. If
// targetChrom is non-empty, all other sequences are skipped.
// Sequences with no bases are omitted.
func ReadGenome(r io.Reader, targetChrom string) (Genome, error) {
	g := Genome{}
	var seqlabel string
	var seq strings.Builder
	skip := true
	flush := func() {
		if !skip && seq.Len() > 0 {
			g[seqlabel] = seq.String()
			log.Debugf("read %s (%d bases)", seqlabel, seq.Len())
		}
		seq.Reset()
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), 1<<30)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r\n")
		if len(line) > 0 && line[0] == '>' {
			flush()
			seqlabel = strings.SplitN(line[1:], " ", 2)[0]
			skip = targetChrom != "" && seqlabel != targetChrom
			continue
		}
		if !skip {
			seq.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return g, nil
}

// LoadGenome reads a FASTA file, which may be gzip-compressed.
func LoadGenome(path, targetChrom string) (Genome, error) {
	f, err := zopen(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := ReadGenome(f, targetChrom)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("%s: read %d sequences", path, len(g))
	return g, nil
}
