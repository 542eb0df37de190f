// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package calculation

import (
	"context"
	"math"
	"sort"

	"github.com/pbenner/threadpool"
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat"
)

// MinPNull returns the minimum raw p-value over the non-ignored terms
// of each of n random study sets drawn by src. Permutation i is drawn
// from a source seeded with seed+i, so the result does not depend on
// the number of threads in pool. Permutations without any annotated
// term have a minimum of 1.
func MinPNull(ctx context.Context, src PValueSource, n int, seed uint64, pool threadpool.ThreadPool) ([]float64, error) {
	null := make([]float64, n)
	if n == 0 {
		return null, nil
	}
	g := pool.NewJobGroup()
	err := pool.AddRangeJob(0, n, g, func(i int, pool threadpool.ThreadPool, erf func() error) error {
		if erf() != nil {
			return nil
		}
		props, err := src.CalculateRandom(ctx, rand.NewSource(seed+uint64(i)), nil)
		if err != nil {
			return err
		}
		min := 1.0
		for _, p := range props {
			if !p.Ignore && p.P < min {
				min = p.P
			}
		}
		null[i] = min
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = pool.Wait(g)
	if err != nil {
		return nil, err
	}
	return null, nil
}

// NullQuantile returns the empirical q quantile of the null
// distribution. It returns NaN if null is empty.
func NullQuantile(null []float64, q float64) float64 {
	if len(null) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), null...)
	sort.Float64s(s)
	return stat.Quantile(q, stat.Empirical, s, nil)
}
