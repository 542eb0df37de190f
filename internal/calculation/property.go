// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package calculation

import (
	"fmt"
	"math"

	"github.com/kortschak/enrich/internal/ontology"
)

// Method identifies the calculation that produced a Property.
type Method int

const (
	MethodTermForTerm Method = iota
	MethodTopologyWeighted
)

func (m Method) String() string {
	switch m {
	case MethodTermForTerm:
		return "Term-For-Term"
	case MethodTopologyWeighted:
		return "Topology-Weighted"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Property is the statistical result for a single term.
type Property struct {
	Term ontology.TermID

	// P is the raw p-value, PMin is the smallest
	// p-value achievable given the population
	// annotation count of the term and PAdjusted
	// is the p-value after multiple test correction.
	P, PMin, PAdjusted float64

	AnnotatedStudyGenes      int
	AnnotatedPopulationGenes int

	// Ignore indicates the term has no annotated
	// study genes and must not be counted as a
	// hypothesis during multiple test correction.
	Ignore bool

	// Method is the calculation that produced
	// the property.
	Method Method

	// Weights holds the per-gene weights for
	// the term. It is only non-nil for
	// properties produced by the topology
	// weighted calculation.
	Weights *Weights
}

// Significant returns whether the adjusted p-value of the term is
// below alpha.
func (p *Property) Significant(alpha float64) bool {
	return p.PAdjusted < alpha
}

// check panics if any probability held by p is outside [0,1].
func (p *Property) check() {
	for _, v := range [...]struct {
		name string
		val  float64
	}{
		{"p", p.P},
		{"p_min", p.PMin},
		{"p_adjusted", p.PAdjusted},
	} {
		if !(0 <= v.val && v.val <= 1) {
			panic(fmt.Sprintf("calculation: %s for %s out of range: %v", v.name, p.Term, v.val))
		}
	}
}

// Weights is a sparse gene weight map. Genes without an explicit
// weight have weight 1. Weights are always in (0,1].
type Weights struct {
	w map[string]float64
}

func newWeights() *Weights {
	return &Weights{w: make(map[string]float64)}
}

// Weight returns the weight of gene.
func (w *Weights) Weight(gene string) float64 {
	if w == nil {
		return 1
	}
	v, ok := w.w[gene]
	if !ok {
		return 1
	}
	return v
}

// Len returns the number of genes with an explicit weight.
func (w *Weights) Len() int {
	if w == nil {
		return 0
	}
	return len(w.w)
}

// Sum returns the sum of the weights of genes.
func (w *Weights) Sum(genes []string) float64 {
	var sum float64
	for _, g := range genes {
		sum += w.Weight(g)
	}
	return sum
}

// scale multiplies the weight of gene by f. Weights that would
// underflow to zero are held at the smallest positive float64.
func (w *Weights) scale(gene string, f float64) {
	v := w.Weight(gene) * f
	if v < math.SmallestNonzeroFloat64 {
		v = math.SmallestNonzeroFloat64
	}
	if !(v <= 1) {
		panic(fmt.Sprintf("calculation: weight for %s out of range: %v", gene, v))
	}
	w.w[gene] = v
}
