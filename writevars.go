// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package hapfreq

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// WriteVars copies the 1ksnp records at the given 1-based positions
// (ascending) from r to w, one line per alt allele:
//
//	name.altIndex  single  chrom  pos(0-based)  alt
//
// It returns the number of distinct positions found.
func WriteVars(r io.Reader, locs []int, w io.Writer) (found int, err error) {
	if !sort.IntsAreSorted(locs) {
		return 0, errors.New("target positions are not sorted")
	}
	lastLoc := -1
	currID := 0
	numAlts := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), 1<<26)
	for lineNum := 1; scanner.Scan() && currID < len(locs); lineNum++ {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		row := strings.Split(line, "\t")
		if len(row) < numCols {
			return found, fmt.Errorf("line %d: expected %d fields, found %d", lineNum, numCols, len(row))
		}
		loc, err := strconv.Atoi(row[colPos])
		if err != nil {
			return found, fmt.Errorf("line %d: pos: %w", lineNum, err)
		}
		for currID < len(locs) && loc > locs[currID] {
			currID++
			numAlts = 0
		}
		if currID == len(locs) {
			break
		}
		if loc != locs[currID] {
			continue
		}
		_, err = fmt.Fprintf(w, "%s.%d\tsingle\t%s\t%d\t%s\n", row[colName], numAlts, row[colChrom], loc-1, row[colAlt])
		if err != nil {
			return found, err
		}
		if loc != lastLoc {
			found++
		}
		lastLoc = loc
		numAlts++
	}
	if err := scanner.Err(); err != nil {
		return found, err
	}
	log.Infof("Found %d / %d target vars", found, len(locs))
	return found, nil
}

// readLocs reads one integer per line, ignoring blank lines.
func readLocs(r io.Reader) ([]int, error) {
	var locs []int
	scanner := bufio.NewScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			continue
		}
		loc, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		locs = append(locs, loc)
	}
	return locs, scanner.Err()
}

type writeVars struct{}

func (cmd *writeVars) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	varsFilename := flags.String("vars", "", "1ksnp variant `file` (may be .gz)")
	locsFilename := flags.String("locs", "", "target positions `file`, one 1-based position per line, ascending")
	outputFilename := flags.String("o", "-", "output `file` (.gz suffix compresses)")
	loglevel := flags.String("loglevel", "info", "logging threshold (trace, debug, info, warn, error, fatal, or panic)")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	} else if flags.NArg() > 0 {
		err = fmt.Errorf("errant command line arguments after parsed flags: %v", flags.Args())
		return 2
	} else if *varsFilename == "" || *locsFilename == "" {
		err = errors.New("-vars and -locs are required")
		return 2
	}
	lvl, err := log.ParseLevel(*loglevel)
	if err != nil {
		return 2
	}
	log.SetLevel(lvl)

	locsFile, err := zopen(*locsFilename)
	if err != nil {
		return 1
	}
	defer locsFile.Close()
	locs, err := readLocs(locsFile)
	if err != nil {
		err = fmt.Errorf("%s: %w", *locsFilename, err)
		return 1
	}

	input, err := zopen(*varsFilename)
	if err != nil {
		return 1
	}
	defer input.Close()
	output, err := zcreate(*outputFilename, stdout)
	if err != nil {
		return 1
	}
	defer output.Close()
	bufw := bufio.NewWriter(output)
	_, err = WriteVars(input, locs, bufw)
	if err != nil {
		err = fmt.Errorf("%s: %w", *varsFilename, err)
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
