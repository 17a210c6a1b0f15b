// Copyright (C) The Hapfreq Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package hapfreq

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kshedden/gonpy"
)

// writeNumpyFloat64 writes a rows x cols float64 matrix in .npy
// format.
func writeNumpyFloat64(w io.Writer, out []float64, rows, cols int) error {
	if len(out) != rows*cols {
		return fmt.Errorf("bug: %d values for %d x %d matrix", len(out), rows, cols)
	}
	bufw := bufio.NewWriterSize(w, 1<<20)
	npw, err := gonpy.NewWriter(nopCloser{bufw})
	if err != nil {
		return fmt.Errorf("gonpy.NewWriter: %w", err)
	}
	npw.Shape = []int{rows, cols}
	err = npw.WriteFloat64(out)
	if err != nil {
		return fmt.Errorf("WriteFloat64: %w", err)
	}
	return bufw.Flush()
}
