// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package calculation

import (
	"context"

	"golang.org/x/exp/rand"
)

// PValueSource provides raw p-values for the observed study set and
// for random study sets of the same size drawn from the population.
// Resampling based corrections use it to obtain a null distribution.
type PValueSource interface {
	Calculate(ctx context.Context, progress TermProgress) ([]Property, error)
	CalculateRandom(ctx context.Context, src rand.Source, progress TermProgress) ([]Property, error)
	Len() int
}

// Correction is a multiple test correction. Adjust sets the PAdjusted
// field of each property that is not ignored.
type Correction interface {
	Name() string
	Adjust(ctx context.Context, props []Property, src PValueSource) error
}

// None is the identity correction.
type None struct{}

func (None) Name() string { return "None" }

// Adjust sets the adjusted p-value of each property that is not ignored
// to its raw p-value.
func (None) Adjust(_ context.Context, props []Property, _ PValueSource) error {
	for i := range props {
		if props[i].Ignore {
			continue
		}
		props[i].PAdjusted = props[i].P
	}
	return nil
}
