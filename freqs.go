// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package hapfreq

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/hapfreq/hapfreq/combo"
	"github.com/hapfreq/hapfreq/haplotype"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Tolerance for a frequency table's sum deviating from 1 before a
// warning is logged.
const tableSumTolerance = 1e-6

type freqsCmd struct {
	queryArgs
	outputFormat string
	smoothing    string
	minFreq      float64
}

func (cmd *freqsCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	cmd.queryArgs.Flags(flags)
	outputFilename := flags.String("o", "-", "output `file` (.gz suffix compresses tsv output)")
	flags.StringVar(&cmd.outputFormat, "output-format", "tsv", "output `format`: tsv or npy")
	flags.StringVar(&cmd.smoothing, "smoothing", "auto", "smoothing `method`: auto, none, add-one, or good-turing")
	flags.Float64Var(&cmd.minFreq, "min-freq", 0, "omit combos with frequency below `F`")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	} else if flags.NArg() > 0 {
		err = fmt.Errorf("errant command line arguments after parsed flags: %v", flags.Args())
		return 2
	}
	err = cmd.queryArgs.check()
	if err != nil {
		return 2
	}
	sm, auto, err := haplotype.ParseSmoothing(cmd.smoothing)
	if err != nil {
		return 2
	}
	if cmd.outputFormat != "tsv" && cmd.outputFormat != "npy" {
		err = fmt.Errorf("invalid -output-format %q", cmd.outputFormat)
		return 2
	}

	run, err := cmd.queryArgs.open()
	if err != nil {
		return 1
	}
	defer run.Close()

	output, err := zcreate(*outputFilename, stdout)
	if err != nil {
		return 1
	}
	defer output.Close()
	bufw := bufio.NewWriter(output)
	smoothingFor := func(nsites int) haplotype.Smoothing {
		if auto {
			return haplotype.SmoothingFor(nsites)
		}
		return sm
	}
	if cmd.outputFormat == "npy" {
		err = cmd.doNumpy(run, bufw, smoothingFor)
	} else {
		err = cmd.doTSV(run, bufw, smoothingFor)
	}
	if err != nil {
		return 1
	}
	err = bufw.Flush()
	if err != nil {
		return 1
	}
	err = output.Close()
	if err != nil {
		return 1
	}
	return 0
}

// frequencies runs one query and checks the resulting table.
func (cmd *freqsCmd) frequencies(run *queryRun, sites, bounds []int, sm haplotype.Smoothing) ([]float64, error) {
	freqs, err := run.estimator.FrequenciesWith(sites, bounds, sm)
	if err != nil {
		return nil, err
	}
	if total := floats.Sum(freqs); math.Abs(total-1) > tableSumTolerance {
		log.WithFields(log.Fields{
			"sites":     fmt.Sprintf("%d-%d", sites[0], sites[len(sites)-1]),
			"smoothing": sm,
		}).Warnf("frequency table sums to %g", total)
	}
	return freqs, nil
}

// doTSV writes one line per combo:
//
//	chrom firstPos lastPos nsites smoothing entropy combo freq
func (cmd *freqsCmd) doTSV(run *queryRun, w io.Writer, smoothingFor func(int) haplotype.Smoothing) error {
	_, err := fmt.Fprintln(w, "chrom\tfirstPos\tlastPos\tnsites\tsmoothing\tentropy\tcombo\tfreq")
	if err != nil {
		return err
	}
	return run.each(cmd.window, cmd.maxSites, func(query int, sites, bounds []int) error {
		sm := smoothingFor(len(sites))
		freqs, err := cmd.frequencies(run, sites, bounds, sm)
		if err != nil {
			return err
		}
		first, last := run.span(sites)
		prefix := fmt.Sprintf("%s\t%d\t%d\t%d\t%s\t%.6g\t", run.chrom, first, last, len(sites), sm, stat.Entropy(freqs))
		for id, f := range freqs {
			if f < cmd.minFreq {
				continue
			}
			_, err = fmt.Fprintf(w, "%s%s\t%.6g\n", prefix, joinInts(combo.Decode(id, bounds)), f)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// doNumpy writes a float64 matrix with one row per combo: query
// index, combo id, frequency.
func (cmd *freqsCmd) doNumpy(run *queryRun, w io.Writer, smoothingFor func(int) haplotype.Smoothing) error {
	var out []float64
	err := run.each(cmd.window, cmd.maxSites, func(query int, sites, bounds []int) error {
		freqs, err := cmd.frequencies(run, sites, bounds, smoothingFor(len(sites)))
		if err != nil {
			return err
		}
		for id, f := range freqs {
			if f < cmd.minFreq {
				continue
			}
			out = append(out, float64(query), float64(id), f)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return writeNumpyFloat64(w, out, len(out)/3, 3)
}

func joinInts(x []int) string {
	s := make([]string, len(x))
	for i, v := range x {
		s[i] = strconv.Itoa(v)
	}
	return strings.Join(s, ",")
}
