// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package calculation

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/kortschak/enrich/internal/association"
	"github.com/kortschak/enrich/internal/enumeration"
	"github.com/kortschak/enrich/internal/geneset"
	"github.com/kortschak/enrich/internal/hypergeom"
	"github.com/kortschak/enrich/internal/ontology"
)

// TopologyWeighted is the topology weighted enrichment calculation.
//
// Terms annotated in the study set are processed level by level from
// the deepest level to the root. Each term is tested with a weighted
// hypergeometric test and its result compared with those of its
// annotated children. When no child is more significant than the
// term, the weights of the term's genes are reduced at each child by
// the ratio of the significances and the child is retested. Otherwise
// the weights of genes at all the terms between the term and the root
// are divided by the ratio for each more significant child.
type TopologyWeighted struct {
	// Options is applied to the enumeration
	// of the population and study sets.
	Options *geneset.EnumerateOptions

	// Progress, if not nil, receives level
	// progress of the calculation.
	Progress LevelProgress
}

func (TopologyWeighted) Name() string { return MethodTopologyWeighted.String() }

// SupportsCorrection returns false. The weight redistribution performed
// by the calculation takes the place of a multiple test correction.
func (TopologyWeighted) SupportsCorrection() bool { return false }

// CalculateStudySet returns the result for the study set. The adjusted
// p-value of each term is its raw p-value and corr is ignored.
func (m TopologyWeighted) CalculateStudySet(ctx context.Context, ont *ontology.Ontology, assoc *association.Container, population, study *geneset.GeneSet, _ Correction) (*Result, error) {
	r := NewResult(ont, study.Name(), population.Len(), study.Len())
	r.calculation = m.Name()
	r.correction = None{}.Name()

	run := topologyRun{
		ont:    ont,
		pop:    population.Enumerate(ont, assoc, m.Options),
		study:  study.Enumerate(ont, assoc, m.Options),
		result: r,
	}

	levels := ont.Levels(run.study.Terms())
	maxLevel := levels.MaxLevel()
	if m.Progress != nil {
		m.Progress.Init(maxLevel)
	}
	for i := maxLevel; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if m.Progress != nil {
			m.Progress.Update(maxLevel - i + 1)
		}
		for _, u := range levels.Terms(i) {
			var children []ontology.TermID
			for _, c := range ont.Children(u) {
				if run.study.Contains(c) {
					children = append(children, c)
				}
			}
			err := run.computeTermSig(u, children)
			if err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// topologyRun holds the state of a single topology weighted
// calculation. The gene weights are held by the properties of the
// result and are not shared between runs.
type topologyRun struct {
	ont   *ontology.Ontology
	pop   *enumeration.Enumerator
	study *enumeration.Enumerator

	result *Result
}

func (run *topologyRun) computeTermSig(u ontology.TermID, children []ontology.TermID) error {
	if run.ont.IsArtificialRoot(u) {
		return nil
	}
	prop, err := run.wFisher(u)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return nil
	}

	ratios := make([]float64, len(children))
	var sig []int
	for i, c := range children {
		child, err := run.ensure(c)
		if err != nil {
			return err
		}
		ratios[i] = sigRatio(child.P, prop.P)
		if ratios[i] > 1 {
			sig = append(sig, i)
		}
	}

	if len(sig) == 0 {
		// u is the most significant term of its family.
		genes := run.pop.Annotated(u).Total
		for i, c := range children {
			child, err := run.ensure(c)
			if err != nil {
				return err
			}
			for _, g := range genes {
				child.Weights.scale(g, ratios[i])
			}
			_, err = run.wFisher(c)
			if err != nil {
				return err
			}
		}
		return nil
	}

	var upper []ontology.TermID
	for t := range run.ont.Ancestors(u) {
		if t == u || run.ont.IsRoot(t) {
			continue
		}
		upper = append(upper, t)
	}
	sort.Slice(upper, func(i, j int) bool { return upper[i] < upper[j] })
	for _, i := range sig {
		f := 1 / ratios[i]
		for _, t := range upper {
			up, err := run.ensure(t)
			if err != nil {
				return err
			}
			for _, g := range run.pop.Annotated(t).Total {
				up.Weights.scale(g, f)
			}
		}
	}
	return nil
}

// sigRatio returns the ratio of the parent's p-value to the child's.
// A child with a zero p-value is infinitely more significant than its
// parent.
func sigRatio(child, parent float64) float64 {
	if child == 0 {
		return math.Inf(1)
	}
	return parent / child
}

// ensure returns the property for t, creating it with unit weights if
// it does not yet exist.
func (run *topologyRun) ensure(t ontology.TermID) (*Property, error) {
	if p, ok := run.result.Property(t); ok {
		return p, nil
	}
	k := run.study.Annotated(t).TotalCount()
	K := run.pop.Annotated(t).TotalCount()
	p := &Property{
		Term:                     t,
		P:                        1,
		PMin:                     hypergeom.PMin(K, len(run.pop.Genes())),
		PAdjusted:                1,
		AnnotatedStudyGenes:      k,
		AnnotatedPopulationGenes: K,
		Ignore:                   k == 0,
		Method:                   MethodTopologyWeighted,
		Weights:                  newWeights(),
	}
	err := run.result.Add(p)
	if err != nil {
		return nil, fmt.Errorf("topology weighted: %w", err)
	}
	return p, nil
}

// wFisher performs the weighted hypergeometric test for u using the
// current gene weights of u.
func (run *topologyRun) wFisher(u ontology.TermID) (*Property, error) {
	prop, err := run.ensure(u)
	if err != nil {
		return nil, err
	}
	w := prop.Weights

	// The enumerators hold canonical gene names,
	// so the set sizes are taken from them rather
	// than from the gene sets.
	annotatedPop := w.Sum(run.pop.Annotated(u).Total)
	annotatedStudy := w.Sum(run.study.Annotated(u).Total)
	pop := w.Sum(run.pop.Genes())
	study := w.Sum(run.study.Genes())

	if annotatedStudy != 0 {
		N := ceilCount(pop)
		prop.P = hypergeom.PHyper(N, float64(ceilCount(annotatedPop))/float64(N), floorCount(study), floorCount(annotatedStudy))
	} else {
		prop.P = 1
		prop.PMin = 1
	}
	prop.PAdjusted = prop.P
	prop.check()
	return prop, nil
}

// countTol is the tolerance within which a weighted count is
// considered to be an integer.
const countTol = 1e-9

func ceilCount(x float64) int {
	if r := math.Round(x); math.Abs(x-r) < countTol {
		return int(r)
	}
	return int(math.Ceil(x))
}

func floorCount(x float64) int {
	if r := math.Round(x); math.Abs(x-r) < countTol {
		return int(r)
	}
	return int(math.Floor(x))
}
