// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hypergeom provides exact point and upper tail probabilities
// of the hypergeometric distribution.
package hypergeom

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/combin"
)

// support returns the range of the number of successes that can be
// observed when drawing n items from a population of N items holding
// K successes.
func support(N, K, n int) (lo, hi int) {
	lo = n - (N - K)
	if lo < 0 {
		lo = 0
	}
	hi = n
	if K < hi {
		hi = K
	}
	return lo, hi
}

func valid(N, K, n int) bool {
	return N >= 0 && K >= 0 && K <= N && n >= 0 && n <= N
}

// logDHyper returns the log probability of k successes for k within
// the support of the distribution.
func logDHyper(k, N, K, n int) float64 {
	return combin.LogGeneralizedBinomial(float64(K), float64(k)) +
		combin.LogGeneralizedBinomial(float64(N-K), float64(n-k)) -
		combin.LogGeneralizedBinomial(float64(N), float64(n))
}

// DHyper returns the probability of observing exactly k successes
// when drawing n items without replacement from a population of N
// items of which K are successes. DHyper returns zero for invalid
// parameters and for k outside the support of the distribution.
func DHyper(k, N, K, n int) float64 {
	if !valid(N, K, n) {
		return 0
	}
	lo, hi := support(N, K, n)
	if k < lo || k > hi {
		return 0
	}
	return clamp(math.Exp(logDHyper(k, N, K, n)))
}

// PHyper returns the upper tail probability P(X >= k) of observing at
// least k successes when drawing n items without replacement from a
// population of N items of which the fraction p are successes. The
// number of successes is round(p*N), and n is limited to N.
func PHyper(N int, p float64, n, k int) float64 {
	if N <= 0 {
		return 1
	}
	K := int(math.Round(p * float64(N)))
	switch {
	case K < 0:
		K = 0
	case K > N:
		K = N
	}
	if n < 0 {
		n = 0
	}
	if n > N {
		n = N
	}

	lo, hi := support(N, K, n)
	if k <= lo {
		return 1
	}
	if k > hi {
		return 0
	}
	terms := make([]float64, hi-k+1)
	for i := range terms {
		terms[i] = logDHyper(k+i, N, K, n)
	}
	return clamp(math.Exp(floats.LogSumExp(terms)))
}

// PMin returns the smallest upper tail p-value that can be obtained
// for a term annotated to K of N population genes. This is the
// probability of drawing exactly the K annotated genes in a sample
// of size K.
func PMin(K, N int) float64 {
	return DHyper(K, N, K, K)
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
