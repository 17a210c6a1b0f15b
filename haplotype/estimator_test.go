// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package haplotype

import (
	"errors"
	"math"

	"github.com/hapfreq/hapfreq/combo"
	"gopkg.in/check.v1"
)

type estimatorSuite struct {
	stores []*Store
}

var _ = check.Suite(&estimatorSuite{})

func (s *estimatorSuite) TearDownTest(c *check.C) {
	for _, store := range s.stores {
		c.Check(store.Close(), check.IsNil)
	}
	s.stores = nil
}

func (s *estimatorSuite) open(c *check.C, path string, cfg Config) *Store {
	store, err := Open(path, cfg)
	c.Assert(err, check.IsNil)
	s.stores = append(s.stores, store)
	return store
}

func (s *estimatorSuite) newEstimator(c *check.C, rows [][]int, cfg Config) *Estimator {
	return NewEstimator(s.open(c, writeHaplotypes(c, rows), cfg))
}

func sumFloats(x []float64) float64 {
	total := 0.0
	for _, v := range x {
		total += v
	}
	return total
}

func (s *estimatorSuite) TestSingleSite(c *check.C) {
	est := s.newEstimator(c, [][]int{{0, 1, 0, 1}}, Config{})
	freqs, err := est.Frequencies([]int{0}, []int{1})
	c.Assert(err, check.IsNil)
	c.Check(freqs, check.DeepEquals, []float64{0.5, 0.5})
}

func (s *estimatorSuite) TestSingleSiteUnobservedAllele(c *check.C) {
	est := s.newEstimator(c, [][]int{{0, 1, 1, 1}}, Config{})
	freqs, err := est.Frequencies([]int{0}, []int{2})
	c.Assert(err, check.IsNil)
	c.Check(freqs, check.DeepEquals, []float64{0.25, 0.75, 0})
}

func (s *estimatorSuite) TestAddOne(c *check.C) {
	est := s.newEstimator(c, [][]int{
		{0, 1, 0},
		{0, 0, 1},
	}, Config{})
	freqs, err := est.Frequencies([]int{0, 1}, []int{1, 1})
	c.Assert(err, check.IsNil)
	c.Assert(freqs, check.HasLen, 4)
	for i, expect := range []float64{2. / 7, 2. / 7, 2. / 7, 1. / 7} {
		c.Check(math.Abs(freqs[i]-expect) < 1e-12, check.Equals, true, check.Commentf("combo %d: %v", i, freqs[i]))
	}
	c.Check(math.Abs(sumFloats(freqs)-1) < 1e-12, check.Equals, true)
}

func (s *estimatorSuite) TestGoodTuring(c *check.C) {
	// 9 sites, 6 haplotypes, two of them identical
	rows := make([][]int, 9)
	for i := range rows {
		rows[i] = []int{0, 1, i % 2, (i / 2) % 2, 1, 0}
	}
	rows[0][5] = 1
	est := s.newEstimator(c, rows, Config{})
	sites := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}
	bounds := []int{1, 1, 1, 1, 1, 1, 1, 1, 1}
	freqs, err := est.Frequencies(sites, bounds)
	c.Assert(err, check.IsNil)
	c.Assert(freqs, check.HasLen, 512)
	c.Check(math.Abs(sumFloats(freqs)-1) < 1e-9, check.Equals, true, check.Commentf("sum %v", sumFloats(freqs)))

	allAlt, err := combo.Encode(bounds, bounds)
	c.Assert(err, check.IsNil)
	allRef := 0
	c.Check(freqs[allAlt] > freqs[allRef], check.Equals, true)
	for _, f := range freqs {
		c.Check(f >= 0, check.Equals, true)
	}
}

func (s *estimatorSuite) TestGoodTuringAllSingletons(c *check.C) {
	est := s.newEstimator(c, [][]int{{0, 1}}, Config{})
	freqs, err := est.FrequenciesWith([]int{0}, []int{1}, GoodTuring)
	c.Check(freqs, check.IsNil)
	c.Check(err, check.ErrorMatches, `good-turing smoothing undefined for count histogram \[0 2\]`)

	freqs, err = est.FrequenciesWith([]int{0}, []int{1}, AddOne)
	c.Assert(err, check.IsNil)
	c.Check(freqs, check.DeepEquals, []float64{0.5, 0.5})
}

func (s *estimatorSuite) TestFrequenciesWith(c *check.C) {
	est := s.newEstimator(c, [][]int{{0, 1, 1}, {0, 0, 1}}, Config{})
	freqs, err := est.FrequenciesWith([]int{0, 1}, []int{1, 1}, NoSmoothing)
	c.Assert(err, check.IsNil)
	c.Check(freqs, check.DeepEquals, []float64{1. / 3, 0, 1. / 3, 1. / 3})

	freqs, err = est.FrequenciesWith([]int{0}, []int{1}, AddOne)
	c.Assert(err, check.IsNil)
	c.Check(freqs, check.DeepEquals, []float64{2. / 5, 3. / 5})

	_, err = est.FrequenciesWith([]int{0}, []int{1}, Smoothing(9))
	c.Check(err, check.ErrorMatches, `unsupported smoothing Smoothing\(9\)`)
}

func (s *estimatorSuite) TestReferenceFrequencyCap(c *check.C) {
	est := s.newEstimator(c, [][]int{make([]int, 300), make([]int, 300)}, Config{})
	f, err := est.ReferenceFrequency([]int{0, 1}, []int{255, 3})
	c.Assert(err, check.IsNil)
	c.Check(f, check.Equals, 301./556)
}

func (s *estimatorSuite) TestReferenceFrequencyMixed(c *check.C) {
	rows := [][]int{make([]int, 300), make([]int, 300)}
	for h := 0; h < 100; h++ {
		rows[0][h] = 1
	}
	rows[1][299] = 3
	est := s.newEstimator(c, rows, Config{})

	// 17*16 combos > 256
	f, err := est.ReferenceFrequency([]int{0, 1}, []int{16, 15})
	c.Assert(err, check.IsNil)
	c.Check(f, check.Equals, 200./556)

	// 2*4 combos
	f, err = est.ReferenceFrequency([]int{0, 1}, []int{1, 3})
	c.Assert(err, check.IsNil)
	c.Check(f, check.Equals, 200./308)
}

func (s *estimatorSuite) TestObservedCombos(c *check.C) {
	est := s.newEstimator(c, [][]int{
		{1, 0, 1, 2},
		{0, 0, 0, 1},
	}, Config{})
	combos, err := est.ObservedCombos([]int{0, 1}, []int{2, 1})
	c.Assert(err, check.IsNil)
	c.Check(combos, check.DeepEquals, []Combo{
		{Alleles: []int{1, 0}, Frequency: 0.5},
		{Alleles: []int{2, 1}, Frequency: 0.25},
	})

	est = s.newEstimator(c, [][]int{{0, 0}, {1, 1}}, Config{})
	combos, err = est.ObservedCombos([]int{0, 1}, []int{1, 1})
	c.Assert(err, check.IsNil)
	c.Check(combos, check.HasLen, 0)
}

func (s *estimatorSuite) TestSlidingQueries(c *check.C) {
	rows := tenRows()
	est := s.newEstimator(c, rows, Config{ChunkSize: 3})
	for i := 0; i+1 < len(rows); i++ {
		freqs, err := est.FrequenciesWith([]int{i, i + 1}, []int{2, 2}, NoSmoothing)
		c.Assert(err, check.IsNil)
		for h := 0; h < 3; h++ {
			id, err := combo.Encode([]int{rows[i][h], rows[i+1][h]}, []int{2, 2})
			c.Assert(err, check.IsNil)
			c.Check(freqs[id], check.Equals, 1./3)
		}
	}
	_, err := est.Frequencies([]int{0}, []int{2})
	var werr *WindowError
	c.Check(errors.As(err, &werr), check.Equals, true)
}

func (s *estimatorSuite) TestQueryErrors(c *check.C) {
	est := s.newEstimator(c, [][]int{{0, 2}, {1, 0}}, Config{MaxCombos: 3})

	_, err := est.Frequencies(nil, nil)
	c.Check(err, check.ErrorMatches, `query has no sites`)
	_, err = est.Frequencies([]int{0, 1}, []int{1})
	c.Check(err, check.ErrorMatches, `query has 2 sites but 1 bounds`)
	_, err = est.Frequencies([]int{1, 0}, []int{1, 1})
	c.Check(err, check.ErrorMatches, `query sites are not in ascending order.*`)

	_, err = est.Frequencies([]int{0, 1}, []int{2, 1})
	var terr *TableSizeError
	c.Check(errors.As(err, &terr), check.Equals, true)

	_, err = est.Frequencies([]int{0}, []int{1})
	var rerr *combo.AlleleRangeError
	c.Check(errors.As(err, &rerr), check.Equals, true)
}

func (s *estimatorSuite) TestEmptyFile(c *check.C) {
	est := NewEstimator(s.open(c, writeFile(c, ""), Config{}))
	_, err := est.Frequencies([]int{0}, []int{1})
	c.Check(err, check.ErrorMatches, `.*past end of file.*`)
}
