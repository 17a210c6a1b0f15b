// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package combo maps allele-count vectors to and from integer combo
// ids using mixed-radix arithmetic.
//
// Position i of a vector holds an alt-allele call in [0, bounds[i]],
// so it is a digit in base bounds[i]+1. The first position is the
// most significant digit.
package combo

import (
	"fmt"
	"math"
)

// AlleleRangeError indicates a vector component outside [0, bound],
// which means the input data is corrupt or the caller's bounds do not
// match the haplotype file.
type AlleleRangeError struct {
	Vector   []int
	Bounds   []int
	Position int
}

func (e *AlleleRangeError) Error() string {
	if len(e.Vector) != len(e.Bounds) {
		return fmt.Sprintf("allele vector %v has %d entries but bounds %v has %d", e.Vector, len(e.Vector), e.Bounds, len(e.Bounds))
	}
	return fmt.Sprintf("allele vector %v out of range at position %d (bounds %v)", e.Vector, e.Position, e.Bounds)
}

// Size returns the number of distinct vectors for the given bounds,
// i.e., the product of bounds[i]+1. ok is false if the product does
// not fit in an int.
func Size(bounds []int) (n int, ok bool) {
	n = 1
	for _, b := range bounds {
		radix := b + 1
		if radix < 1 || n > math.MaxInt/radix {
			return 0, false
		}
		n *= radix
	}
	return n, true
}

// Encode returns the combo id of vector v.
func Encode(v, bounds []int) (int, error) {
	if len(v) != len(bounds) {
		return 0, &AlleleRangeError{Vector: append([]int(nil), v...), Bounds: bounds, Position: -1}
	}
	id := 0
	for i, a := range v {
		if a < 0 || a > bounds[i] {
			return 0, &AlleleRangeError{Vector: append([]int(nil), v...), Bounds: bounds, Position: i}
		}
		id = id*(bounds[i]+1) + a
	}
	return id, nil
}

// Decode is the inverse of Encode.
func Decode(id int, bounds []int) []int {
	v := make([]int, len(bounds))
	for i := len(bounds) - 1; i > 0; i-- {
		radix := bounds[i] + 1
		v[i] = id % radix
		id /= radix
	}
	if len(v) > 0 {
		v[0] = id
	}
	return v
}
