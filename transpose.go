// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package hapfreq

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"strconv"
)

// transposeCmd rewrites a haplotype file with one line per haplotype
// and one comma-separated column per variant.
type transposeCmd struct {
	queryArgs
}

func (cmd *transposeCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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
	haps, err := run.store.ReadHaplotypes(run.variants.Len())
	if err != nil {
		return 1
	}
	output, err := zcreate(*outputFilename, stdout)
	if err != nil {
		return 1
	}
	defer output.Close()
	bufw := bufio.NewWriter(output)
	err = writeTransposed(bufw, haps)
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

func writeTransposed(w io.Writer, haps [][]int8) error {
	var line []byte
	for _, calls := range haps {
		line = line[:0]
		for i, x := range calls {
			if i > 0 {
				line = append(line, ',')
			}
			line = strconv.AppendInt(line, int64(x), 10)
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}
