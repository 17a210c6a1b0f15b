// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package hapfreq

import (
	"bytes"
	"errors"
	"strings"

	"gopkg.in/check.v1"
)

type variantsSuite struct{}

var _ = check.Suite(&variantsSuite{})

func (s *variantsSuite) TestReadGenome(c *check.C) {
	fasta := ">chr1 first\nACGT\nTT  \n>chr2\nGG\r\n>empty\n>chr3 x y\nA\n"
	g, err := ReadGenome(strings.NewReader(fasta), "")
	c.Assert(err, check.IsNil)
	c.Check(g, check.DeepEquals, Genome{"chr1": "ACGTTT", "chr2": "GG", "chr3": "A"})

	g, err = ReadGenome(strings.NewReader(fasta), "chr2")
	c.Assert(err, check.IsNil)
	c.Check(g, check.DeepEquals, Genome{"chr2": "GG"})

	g, err = ReadGenome(strings.NewReader(fasta), "chr9")
	c.Assert(err, check.IsNil)
	c.Check(g, check.HasLen, 0)
}

func (s *variantsSuite) TestSequence(c *check.C) {
	g := Genome{"chr1": "ACGTTT"}
	for _, trial := range []struct {
		chrom         string
		start, length int
		seq           string
		ok            bool
	}{
		{"chr1", 0, 1, "A", true},
		{"chr1", 2, 3, "GTT", true},
		{"chr1", 5, 1, "T", true},
		{"chr1", 6, 0, "", true},
		{"chr1", 5, 2, "", false},
		{"chr1", -1, 1, "", false},
		{"chr2", 0, 1, "", false},
	} {
		c.Logf("=== %v", trial)
		seq, ok := g.Sequence(trial.chrom, trial.start, trial.length)
		c.Check(seq, check.Equals, trial.seq)
		c.Check(ok, check.Equals, trial.ok)
	}
}

func (s *variantsSuite) TestLoadGenomeGzip(c *check.C) {
	fnm := c.MkDir() + "/ref.fa.gz"
	w, err := zcreate(fnm, nil)
	c.Assert(err, check.IsNil)
	_, err = w.Write([]byte(testGenome()))
	c.Assert(err, check.IsNil)
	c.Assert(w.Close(), check.IsNil)

	g, err := LoadGenome(fnm, "chr1")
	c.Assert(err, check.IsNil)
	c.Check(g["chr1"], check.HasLen, 600)
	seq, ok := g.Sequence("chr1", 499, 1)
	c.Check(ok, check.Equals, true)
	c.Check(seq, check.Equals, "T")
}

func (s *variantsSuite) TestParse1kSNP(c *check.C) {
	vardict, err := Parse1kSNP(strings.NewReader(testVars+"chr2\t5\tA\tC\t0.1\t.\t1\trs4\n"), ParseOptions{})
	c.Assert(err, check.IsNil)
	c.Assert(vardict, check.HasLen, 2)
	vs := vardict["chr1"]
	c.Check(vs.Len(), check.Equals, 3)
	c.Check(vs.Positions, check.DeepEquals, []int{9, 19, 499})
	c.Check(vs.Refs, check.DeepEquals, []string{"A", "C", "T"})
	c.Check(vs.Alts, check.DeepEquals, [][]string{{"G"}, {"T", "G"}, {"A"}})
	c.Check(vs.Freqs, check.DeepEquals, [][]float64{{0.5}, {0.25, 0.25}, {0.5}})
	c.Check(vs.NumAlts(1), check.Equals, 2)
	c.Check(vs.Bounds([]int{0, 1, 2}), check.DeepEquals, []int{1, 2, 1})
	c.Check(vardict["chr2"].Positions, check.DeepEquals, []int{4})

	vardict, err = Parse1kSNP(strings.NewReader(testVars+"chr2\t5\tA\tC\t0.1\t.\t1\trs4\n"), ParseOptions{TargetChrom: "chr2"})
	c.Assert(err, check.IsNil)
	c.Check(vardict, check.HasLen, 1)
	c.Check(vardict["chr2"].Len(), check.Equals, 1)
}

func (s *variantsSuite) TestMissingAlt(c *check.C) {
	input := "chr1\t20\tC\tT\t0.25\t.\t2\trs2\nchr1\t30\tA\tG\t0.5\t.\t1\trs5\n"
	_, err := Parse1kSNP(strings.NewReader(input), ParseOptions{})
	var verr *VariantConsistencyError
	c.Assert(errors.As(err, &verr), check.Equals, true)
	c.Check(verr.Line, check.Equals, 2)
	c.Check(verr.Name, check.Equals, "rs2")
	c.Check(err, check.ErrorMatches, `line 2: couldn't find all alternate alleles for variant rs2 \(found rs5\)`)
}

func (s *variantsSuite) TestTruncatedVariant(c *check.C) {
	for _, trial := range []struct {
		input string
		line  int
	}{
		{"chr1\t10\tA\tG\t0.5\t.\t1\trs1\nchr1\t20\tC\tT\t0.25\t.\t2\trs2\n", 2},
		{"chr1\t20\tC\tT\t0.25\t.\t3\trs2\nchr1\t20\tC\tG\t0.25\t.\t3\trs2\n\n", 3},
	} {
		c.Logf("=== %q", trial.input)
		vardict, err := Parse1kSNP(strings.NewReader(trial.input), ParseOptions{})
		c.Check(vardict, check.IsNil)
		var verr *VariantConsistencyError
		c.Assert(errors.As(err, &verr), check.Equals, true)
		c.Check(verr.Name, check.Equals, "rs2")
		c.Check(verr.Line, check.Equals, trial.line)
		c.Check(err, check.ErrorMatches, `line [0-9]+: couldn't find all alternate alleles for variant rs2 \(reached end of input\)`)
	}
}

func (s *variantsSuite) TestReferenceMismatch(c *check.C) {
	g, err := ReadGenome(strings.NewReader(testGenome()), "")
	c.Assert(err, check.IsNil)
	_, err = Parse1kSNP(strings.NewReader(testVars), ParseOptions{Genome: g})
	c.Check(err, check.IsNil)

	bad := strings.Replace(testVars, "chr1\t500\tT", "chr1\t500\tG", 1)
	_, err = Parse1kSNP(strings.NewReader(bad), ParseOptions{Genome: g})
	var rerr *ReferenceMismatchError
	c.Assert(errors.As(err, &rerr), check.Equals, true)
	c.Check(*rerr, check.Equals, ReferenceMismatchError{Inconsistent: 1, Total: 3})
}

func (s *variantsSuite) TestParseErrors(c *check.C) {
	for _, trial := range []struct {
		input string
		err   string
	}{
		{"chr1\t10\tA\n", `line 1: expected 8 fields, found 3`},
		{"chr1\tx\tA\tG\t0.5\t.\t1\trs1\n", `line 1: pos: .*invalid syntax`},
		{"chr1\t0\tA\tG\t0.5\t.\t1\trs1\n", `line 1: invalid pos 0`},
		{"chr1\t10\tA\tG\tx\t.\t1\trs1\n", `line 1: freq: .*invalid syntax`},
		{"chr1\t10\tA\tG\t0.5\t.\tx\trs1\n", `line 1: number of alts: .*invalid syntax`},
	} {
		c.Logf("=== %q", trial.input)
		_, err := Parse1kSNP(strings.NewReader(trial.input), ParseOptions{})
		c.Check(err, check.ErrorMatches, trial.err)
	}
}

func (s *variantsSuite) TestWriteVars(c *check.C) {
	var buf bytes.Buffer
	found, err := WriteVars(strings.NewReader(testVars), []int{10, 20}, &buf)
	c.Assert(err, check.IsNil)
	c.Check(found, check.Equals, 2)
	c.Check(buf.String(), check.Equals, "rs1.0\tsingle\tchr1\t9\tG\n"+
		"rs2.0\tsingle\tchr1\t19\tT\n"+
		"rs2.1\tsingle\tchr1\t19\tG\n")

	buf.Reset()
	found, err = WriteVars(strings.NewReader(testVars), []int{15, 1000}, &buf)
	c.Assert(err, check.IsNil)
	c.Check(found, check.Equals, 0)
	c.Check(buf.Len(), check.Equals, 0)

	_, err = WriteVars(strings.NewReader(testVars), []int{20, 10}, &buf)
	c.Check(err, check.ErrorMatches, `target positions are not sorted`)
}

func (s *variantsSuite) TestReadLocs(c *check.C) {
	locs, err := readLocs(strings.NewReader("10\n\n 20 \n30\n"))
	c.Assert(err, check.IsNil)
	c.Check(locs, check.DeepEquals, []int{10, 20, 30})
	_, err = readLocs(strings.NewReader("10\nx\n"))
	c.Check(err, check.ErrorMatches, `line 2: .*invalid syntax`)
}

func (s *variantsSuite) TestWindows(c *check.C) {
	vs := &VariantSet{Positions: []int{0, 5, 10, 200, 205}}
	for _, trial := range []struct {
		window, maxSites int
		expect           [][]int
	}{
		{10, 0, [][]int{{0, 1}, {1, 2}, {2}, {3, 4}, {4}}},
		{10, 1, [][]int{{0}, {1}, {2}, {3}, {4}}},
		{1000, 3, [][]int{{0, 1, 2}, {1, 2, 3}, {2, 3, 4}, {3, 4}, {4}}},
		{1, 0, [][]int{{0}, {1}, {2}, {3}, {4}}},
	} {
		c.Logf("=== %v", trial)
		c.Check(Windows(vs, trial.window, trial.maxSites), check.DeepEquals, trial.expect)
	}
	c.Check(Windows(&VariantSet{}, 10, 0), check.HasLen, 0)
}
