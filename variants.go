// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package hapfreq

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// VariantSet holds the variants of one chromosome, in file order.
// Variant i corresponds to row i of the chromosome's haplotype file.
type VariantSet struct {
	Positions []int // 0-based
	Refs      []string
	Alts      [][]string
	Freqs     [][]float64
}

func (vs *VariantSet) Len() int {
	return len(vs.Positions)
}

func (vs *VariantSet) NumAlts(i int) int {
	return len(vs.Alts[i])
}

// Bounds returns the number of alt alleles at each of the given
// sites, i.e., the largest call a haplotype can have there.
func (vs *VariantSet) Bounds(sites []int) []int {
	bounds := make([]int, len(sites))
	for i, site := range sites {
		bounds[i] = vs.NumAlts(site)
	}
	return bounds
}

func (vs *VariantSet) addVar(pos int, ref, alt string, freq float64) {
	vs.Positions = append(vs.Positions, pos)
	vs.Refs = append(vs.Refs, ref)
	vs.Alts = append(vs.Alts, []string{alt})
	vs.Freqs = append(vs.Freqs, []float64{freq})
}

func (vs *VariantSet) addAltToLast(alt string, freq float64) {
	last := len(vs.Positions) - 1
	vs.Alts[last] = append(vs.Alts[last], alt)
	vs.Freqs[last] = append(vs.Freqs[last], freq)
}

// VariantConsistencyError is returned when a variant's alt allele
// records end before the number of alts it declares.
type VariantConsistencyError struct {
	Line  int
	Name  string // variant with missing alts
	Found string // name on the record where the next alt was expected, or "" at end of input
}

func (e *VariantConsistencyError) Error() string {
	if e.Found == "" {
		return fmt.Sprintf("line %d: couldn't find all alternate alleles for variant %s (reached end of input)", e.Line, e.Name)
	}
	return fmt.Sprintf("line %d: couldn't find all alternate alleles for variant %s (found %s)", e.Line, e.Name, e.Found)
}

// ReferenceMismatchError is returned when variant ref alleles do not
// match the reference genome.
type ReferenceMismatchError struct {
	Inconsistent int
	Total        int
}

func (e *ReferenceMismatchError) Error() string {
	return fmt.Sprintf("%d / %d variants are inconsistent with the reference genome", e.Inconsistent, e.Total)
}

type ParseOptions struct {
	// If non-nil, check each variant's ref allele against the
	// genome.
	Genome Genome

	// If non-empty, skip records for other chromosomes.
	TargetChrom string
}

// 1ksnp columns
const (
	colChrom = iota
	colPos
	colRef
	colAlt
	colFreq
	_
	colNumAlts
	colName
	numCols
)

// Parse1kSNP reads variants in 1ksnp format: tab-separated chrom,
// 1-based pos, ref, alt, freq, (unused), number of alts, name. A
// variant with N alts has N consecutive records, one per alt.
//
// The returned map is keyed by chromosome name.
func Parse1kSNP(r io.Reader, opts ParseOptions) (map[string]*VariantSet, error) {
	vardict := map[string]*VariantSet{}
	var (
		nVar, nTarget, nNonTarget int
		currName, currChr         string
		currNAlt                  int
		wrongCount                int
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), 1<<26)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		row := strings.Split(line, "\t")
		if len(row) < numCols {
			return nil, fmt.Errorf("line %d: expected %d fields, found %d", lineNum, numCols, len(row))
		}
		if opts.TargetChrom != "" {
			if row[colChrom] != opts.TargetChrom {
				nNonTarget++
				continue
			}
			nTarget++
		}
		freq, err := strconv.ParseFloat(row[colFreq], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: freq: %w", lineNum, err)
		}
		numAlts, err := strconv.Atoi(row[colNumAlts])
		if err != nil {
			return nil, fmt.Errorf("line %d: number of alts: %w", lineNum, err)
		}

		if currNAlt == 0 {
			if currChr != "" && row[colChrom] != currChr {
				log.Infof("starting chromosome %s; %d variants so far", row[colChrom], nVar)
			}
			pos, err := strconv.Atoi(row[colPos])
			if err != nil {
				return nil, fmt.Errorf("line %d: pos: %w", lineNum, err)
			} else if pos < 1 {
				return nil, fmt.Errorf("line %d: invalid pos %d", lineNum, pos)
			}
			pos--
			currChr = row[colChrom]
			currName = row[colName]
			ref := row[colRef]
			vs := vardict[currChr]
			if vs == nil {
				vs = &VariantSet{}
				vardict[currChr] = vs
			}
			vs.addVar(pos, ref, row[colAlt], freq)
			nVar++
			currNAlt = 1
			if opts.Genome != nil {
				if seq, ok := opts.Genome.Sequence(currChr, pos, len(ref)); !ok || seq != ref {
					wrongCount++
				}
			}
		} else {
			if row[colName] != currName {
				return nil, &VariantConsistencyError{Line: lineNum, Name: currName, Found: row[colName]}
			}
			vardict[currChr].addAltToLast(row[colAlt], freq)
			currNAlt++
		}
		if currNAlt >= numAlts {
			currName = ""
			currNAlt = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if currNAlt > 0 {
		return nil, &VariantConsistencyError{Line: lineNum, Name: currName}
	}
	log.WithFields(log.Fields{
		"target":    nTarget,
		"nontarget": nNonTarget,
	}).Infof("parsed %d variants from %d chromosomes", nVar, len(vardict))
	if wrongCount > 0 {
		return nil, &ReferenceMismatchError{Inconsistent: wrongCount, Total: nVar}
	}
	return vardict, nil
}

// LoadVariants reads a 1ksnp file, which may be gzip-compressed.
func LoadVariants(path string, opts ParseOptions) (map[string]*VariantSet, error) {
	f, err := zopen(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vardict, err := Parse1kSNP(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vardict, nil
}
