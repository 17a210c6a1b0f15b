// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package hapfreq

import (
	"errors"
	"flag"
	"fmt"
	"sort"

	"github.com/hapfreq/hapfreq/haplotype"
	log "github.com/sirupsen/logrus"
)

// queryArgs are the flags shared by the subcommands that run
// frequency queries over a haplotype file.
type queryArgs struct {
	haplotypes string
	vars       string
	ref        string
	chrom      string
	window     int
	maxSites   int
	chunkSize  int
	maxCombos  int
	loglevel   string
}

func (q *queryArgs) Flags(flags *flag.FlagSet) {
	flags.StringVar(&q.haplotypes, "haplotypes", "", "haplotype `file`: one line per variant, one comma-separated column per haplotype")
	flags.StringVar(&q.vars, "vars", "", "1ksnp variant `file` (may be .gz)")
	flags.StringVar(&q.ref, "ref", "", "reference genome fasta `file` (may be .gz); if given, variant ref alleles are checked against it")
	flags.StringVar(&q.chrom, "chrom", "", "only use variants on `chromosome` (required if the variant file has more than one)")
	flags.IntVar(&q.window, "window", 100, "query all variants within `N` bases of each variant")
	flags.IntVar(&q.maxSites, "max-sites", 10, "maximum `N` variants per query (0 = unlimited)")
	flags.IntVar(&q.chunkSize, "chunk-size", haplotype.DefaultChunkSize, "read haplotype file `N` lines at a time")
	flags.IntVar(&q.maxCombos, "max-combos", haplotype.DefaultMaxCombos, "refuse queries with more than `N` possible allele combinations")
	flags.StringVar(&q.loglevel, "loglevel", "info", "logging threshold (trace, debug, info, warn, error, fatal, or panic)")
}

// check validates flag values and sets the log level. An error is a
// usage error.
func (q *queryArgs) check() error {
	if q.haplotypes == "" || q.vars == "" {
		return errors.New("-haplotypes and -vars are required")
	} else if q.window < 1 {
		return fmt.Errorf("invalid -window %d", q.window)
	} else if q.maxSites < 0 {
		return fmt.Errorf("invalid -max-sites %d", q.maxSites)
	} else if q.chunkSize < 1 {
		return fmt.Errorf("invalid -chunk-size %d", q.chunkSize)
	} else if q.maxSites > q.chunkSize {
		return fmt.Errorf("-max-sites %d exceeds -chunk-size %d", q.maxSites, q.chunkSize)
	}
	lvl, err := log.ParseLevel(q.loglevel)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

// queryRun holds the variants and haplotype store for one
// chromosome.
type queryRun struct {
	chrom     string
	variants  *VariantSet
	store     *haplotype.Store
	estimator *haplotype.Estimator
}

func (q *queryArgs) open() (*queryRun, error) {
	var genome Genome
	if q.ref != "" {
		var err error
		genome, err = LoadGenome(q.ref, q.chrom)
		if err != nil {
			return nil, err
		}
	}
	vardict, err := LoadVariants(q.vars, ParseOptions{Genome: genome, TargetChrom: q.chrom})
	if err != nil {
		return nil, err
	}
	chrom := q.chrom
	if chrom == "" {
		if len(vardict) != 1 {
			var chroms []string
			for name := range vardict {
				chroms = append(chroms, name)
			}
			sort.Strings(chroms)
			return nil, fmt.Errorf("%s: -chrom is required: found %d chromosomes %q", q.vars, len(chroms), chroms)
		}
		for name := range vardict {
			chrom = name
		}
	}
	vs := vardict[chrom]
	if vs == nil || vs.Len() == 0 {
		return nil, fmt.Errorf("%s: no variants on chromosome %q", q.vars, chrom)
	}
	store, err := haplotype.Open(q.haplotypes, haplotype.Config{ChunkSize: q.chunkSize, MaxCombos: q.maxCombos})
	if err != nil {
		return nil, err
	}
	return &queryRun{
		chrom:     chrom,
		variants:  vs,
		store:     store,
		estimator: haplotype.NewEstimator(store),
	}, nil
}

func (run *queryRun) Close() error {
	return run.store.Close()
}

// each calls fn once per query window, in order. bounds has the
// number of alt alleles at each site.
func (run *queryRun) each(window, maxSites int, fn func(query int, sites, bounds []int) error) error {
	queries := Windows(run.variants, window, maxSites)
	for i, sites := range queries {
		err := fn(i, sites, run.variants.Bounds(sites))
		if err != nil {
			return fmt.Errorf("query %d (sites %d-%d): %w", i, sites[0], sites[len(sites)-1], err)
		}
	}
	log.WithFields(log.Fields{
		"chrom":     run.chrom,
		"queries":   len(queries),
		"bytesRead": run.store.BytesRead(),
		"digest":    fmt.Sprintf("%x", run.store.Digest()),
	}).Info("done")
	return nil
}

// span returns the 0-based positions of the first and last sites.
func (run *queryRun) span(sites []int) (first, last int) {
	return run.variants.Positions[sites[0]], run.variants.Positions[sites[len(sites)-1]]
}
