// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package hapfreq

import (
	"bufio"
	"flag"
	"fmt"
	"io"
)

type refFreqCmd struct {
	queryArgs
}

func (cmd *refFreqCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	cmd.queryArgs.Flags(flags)
	outputFilename := flags.String("o", "-", "output `file` (.gz suffix compresses)")
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
	err = cmd.doRefFreq(run, bufw)
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

func (cmd *refFreqCmd) doRefFreq(run *queryRun, w io.Writer) error {
	_, err := fmt.Fprintln(w, "chrom\tfirstPos\tlastPos\tnsites\trefFreq")
	if err != nil {
		return err
	}
	return run.each(cmd.window, cmd.maxSites, func(query int, sites, bounds []int) error {
		f, err := run.estimator.ReferenceFrequency(sites, bounds)
		if err != nil {
			return err
		}
		first, last := run.span(sites)
		_, err = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.6g\n", run.chrom, first, last, len(sites), f)
		return err
	})
}
