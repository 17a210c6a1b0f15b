// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package haplotype

import "fmt"

// Smoothing selects how raw combo counts are turned into
// probabilities.
type Smoothing int

const (
	// NoSmoothing: count / haplotypes.
	NoSmoothing Smoothing = iota
	// AddOne: (count + 1) / (combos + haplotypes).
	AddOne
	// GoodTuring: probability of a combo seen c times is
	// estimated from the number of combos seen c+1 times.
	GoodTuring
)

// Queries with more sites than this use Good-Turing smoothing. With
// that many sites the combo space is usually much larger than the
// number of haplotypes, and add-one assigns too much mass to
// unobserved combos.
const AddOneMaxSites = 8

// SmoothingFor returns the smoothing used for a query over nsites
// sites.
func SmoothingFor(nsites int) Smoothing {
	switch {
	case nsites > AddOneMaxSites:
		return GoodTuring
	case nsites > 1:
		return AddOne
	default:
		return NoSmoothing
	}
}

func (sm Smoothing) String() string {
	switch sm {
	case NoSmoothing:
		return "none"
	case AddOne:
		return "add-one"
	case GoodTuring:
		return "good-turing"
	default:
		return fmt.Sprintf("Smoothing(%d)", int(sm))
	}
}

// ParseSmoothing is the inverse of String. For "auto" or "" it
// returns auto=true, meaning the caller should use SmoothingFor.
func ParseSmoothing(s string) (sm Smoothing, auto bool, err error) {
	switch s {
	case "auto", "":
		return 0, true, nil
	case "none":
		return NoSmoothing, false, nil
	case "add-one":
		return AddOne, false, nil
	case "good-turing":
		return GoodTuring, false, nil
	default:
		return 0, false, fmt.Errorf("unknown smoothing %q (expected auto, none, add-one, or good-turing)", s)
	}
}
