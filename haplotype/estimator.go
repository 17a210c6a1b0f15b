// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package haplotype

import (
	"errors"
	"fmt"

	"github.com/hapfreq/hapfreq/combo"
	"github.com/hapfreq/hapfreq/goodturing"
	"gonum.org/v1/gonum/floats"
)

// Ceiling on the number of pseudo-observations ReferenceFrequency
// adds to its denominator.
const RefFreqNormalizerCap = 256

// Estimator computes allele-combination frequencies over sets of
// sites in a Store.
//
// Every query takes sites, ascending site indices, and bounds, the
// maximum alt-allele call at each of those sites (i.e., its number of
// alt alleles). Successive queries must not start before the start
// of the previous query's window; see Store.EnsureWindow.
type Estimator struct {
	store     *Store
	maxCombos int
}

func NewEstimator(store *Store) *Estimator {
	return &Estimator{store: store, maxCombos: store.cfg.MaxCombos}
}

// Combo is an allele vector and its frequency.
type Combo struct {
	Alleles   []int
	Frequency float64
}

// Frequencies returns the smoothed frequency of every combo of
// alleles at the given sites, indexed by combo id (see
// combo.Encode). The smoothing method depends on len(sites); see
// SmoothingFor.
//
// Good-Turing smoothing fails with an error if the count histogram
// gives it nothing to work with, e.g., every combo was observed
// exactly once.
func (e *Estimator) Frequencies(sites, bounds []int) ([]float64, error) {
	return e.FrequenciesWith(sites, bounds, SmoothingFor(len(sites)))
}

// FrequenciesWith is like Frequencies, but uses the given smoothing
// method regardless of the number of sites.
func (e *Estimator) FrequenciesWith(sites, bounds []int, sm Smoothing) ([]float64, error) {
	rows, numH, err := e.load(sites, bounds)
	if err != nil {
		return nil, err
	}
	size, ok := combo.Size(bounds)
	if !ok || size > e.maxCombos {
		return nil, &TableSizeError{Bounds: bounds, MaxCombos: e.maxCombos}
	}

	counts := make([]int, size)
	if sm == AddOne {
		for i := range counts {
			counts[i] = 1
		}
	}
	v := make([]int, len(sites))
	for h := 0; h < numH; h++ {
		for i, row := range rows {
			v[i] = int(row[h])
		}
		id, err := combo.Encode(v, bounds)
		if err != nil {
			return nil, err
		}
		counts[id]++
	}

	freqs := make([]float64, size)
	switch sm {
	case NoSmoothing:
		for i, c := range counts {
			freqs[i] = float64(c) / float64(numH)
		}
	case AddOne:
		total := float64(size + numH)
		for i, c := range counts {
			freqs[i] = float64(c) / total
		}
	case GoodTuring:
		maxCount := 0
		for _, c := range counts {
			if maxCount < c {
				maxCount = c
			}
		}
		hist := make([]int, maxCount+1)
		for _, c := range counts {
			hist[c]++
		}
		p := goodturing.Smooth(hist)
		if floats.Sum(p) == 0 {
			return nil, fmt.Errorf("good-turing smoothing undefined for count histogram %v", hist)
		}
		for i, c := range counts {
			freqs[i] = p[c]
		}
	default:
		return nil, fmt.Errorf("unsupported smoothing %s", sm)
	}
	return freqs, nil
}

// ReferenceFrequency returns the add-one smoothed frequency of the
// all-reference combo at the given sites. The number of
// pseudo-observations in the denominator is capped at
// RefFreqNormalizerCap, since only one combo is being estimated.
func (e *Estimator) ReferenceFrequency(sites, bounds []int) (float64, error) {
	rows, numH, err := e.load(sites, bounds)
	if err != nil {
		return 0, err
	}
	pseudo := RefFreqNormalizerCap
	if size, ok := combo.Size(bounds); ok && size < pseudo {
		pseudo = size
	}
	refCount := 1
haplotypes:
	for h := 0; h < numH; h++ {
		for _, row := range rows {
			if row[h] != 0 {
				continue haplotypes
			}
		}
		refCount++
	}
	return float64(refCount) / float64(pseudo+numH), nil
}

// ObservedCombos returns every combo that occurs in at least one
// haplotype and has an alt allele at the first site, with its
// unsmoothed frequency. Combos are listed in order of first
// occurrence.
func (e *Estimator) ObservedCombos(sites, bounds []int) ([]Combo, error) {
	rows, numH, err := e.load(sites, bounds)
	if err != nil {
		return nil, err
	}
	index := map[int]int{}
	var ids, counts []int
	v := make([]int, len(sites))
	for h := 0; h < numH; h++ {
		if rows[0][h] == 0 {
			continue
		}
		for i, row := range rows {
			v[i] = int(row[h])
		}
		id, err := combo.Encode(v, bounds)
		if err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			counts[i]++
		} else {
			index[id] = len(ids)
			ids = append(ids, id)
			counts = append(counts, 1)
		}
	}
	ret := make([]Combo, len(ids))
	for i, id := range ids {
		ret[i] = Combo{
			Alleles:   combo.Decode(id, bounds),
			Frequency: float64(counts[i]) / float64(numH),
		}
	}
	return ret, nil
}

// load validates a query, makes sure the store's window covers it,
// and returns the rows for the given sites and the number of
// haplotypes.
func (e *Estimator) load(sites, bounds []int) ([][]int8, int, error) {
	if len(sites) == 0 {
		return nil, 0, errors.New("query has no sites")
	} else if len(sites) != len(bounds) {
		return nil, 0, fmt.Errorf("query has %d sites but %d bounds", len(sites), len(bounds))
	}
	for i := 1; i < len(sites); i++ {
		if sites[i] <= sites[i-1] {
			return nil, 0, fmt.Errorf("query sites are not in ascending order: %v", sites)
		}
	}
	if err := e.store.EnsureWindow(sites[0], sites[len(sites)-1]); err != nil {
		return nil, 0, err
	}
	rows := make([][]int8, len(sites))
	for i, site := range sites {
		row, err := e.store.Row(site)
		if err != nil {
			return nil, 0, err
		}
		rows[i] = row
	}
	numH := e.store.NumHaplotypes()
	if numH == 0 {
		return nil, 0, fmt.Errorf("%s: no haplotypes", e.store.path)
	}
	return rows, numH, nil
}
