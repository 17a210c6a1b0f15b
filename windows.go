// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package hapfreq

// Windows returns one query per variant i: the sites i..j where j is
// the last variant within windowBases of variant i, limited to
// maxSites sites per query (maxSites <= 0 means no limit).
//
// Both ends of successive queries are non-decreasing, so the queries
// can be answered in order by a haplotype.Store.
func Windows(vs *VariantSet, windowBases, maxSites int) [][]int {
	n := vs.Len()
	queries := make([][]int, 0, n)
	j := 0
	for i := 0; i < n; i++ {
		if j < i {
			j = i
		}
		for j+1 < n && vs.Positions[j+1]-vs.Positions[i] < windowBases && (maxSites <= 0 || j+1-i < maxSites) {
			j++
		}
		sites := make([]int, j-i+1)
		for k := range sites {
			sites[k] = i + k
		}
		queries = append(queries, sites)
	}
	return queries
}
