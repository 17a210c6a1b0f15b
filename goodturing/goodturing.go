// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package goodturing implements Good-Turing smoothing over a
// frequency-of-frequencies histogram.
package goodturing

// Smooth returns p such that p[c] is the smoothed probability of a
// single outcome that was observed exactly c times, given hist[c], the
// number of outcomes observed exactly c times.
//
// Empty buckets between c and the next non-empty bucket are linearly
// interpolated. The last bucket is not estimated: its weight is the
// index of the last estimated bucket, len(hist)-2. Consequently p does
// not sum to 1, but sum(hist[c]*p[c]) does.
//
// If hist has fewer than two buckets, or no outcome was observed more
// than zero times, the result is all zeros.
func Smooth(hist []int) []float64 {
	maxc := len(hist)
	adj := make([]float64, maxc)
	if maxc < 2 {
		return adj
	}
	var total float64
	last := maxc - 2
	for i := 0; i <= last; i++ {
		if hist[i] == 0 {
			continue
		}
		next := float64(hist[i+1])
		if next == 0 {
			j := i + 1
			for j < maxc && hist[j] == 0 {
				j++
			}
			if j < maxc {
				next = float64(hist[i]) + float64(hist[j]-hist[i])/float64(j-i)
			} else {
				next = float64(hist[i])
			}
		}
		adj[i] = float64(i+1) * next / float64(hist[i])
		total += float64(i+1) * next
	}
	adj[maxc-1] = float64(last)
	total += float64(last) * float64(hist[maxc-1])
	if total == 0 {
		for i := range adj {
			adj[i] = 0
		}
		return adj
	}
	for i := range adj {
		adj[i] /= total
	}
	return adj
}
