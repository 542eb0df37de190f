// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package calculation

import (
	"context"
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/kortschak/enrich/internal/association"
	"github.com/kortschak/enrich/internal/geneset"
	"github.com/kortschak/enrich/internal/hypergeom"
	"github.com/kortschak/enrich/internal/index"
	"github.com/kortschak/enrich/internal/ontology"
)

// TermForTerm calculates independent hypergeometric p-values for each
// term annotated in a population. The population index is built once
// and shared by all calculations, so a TermForTerm may be used
// concurrently.
type TermForTerm struct {
	ont        *ontology.Ontology
	assoc      *association.Container
	population *geneset.GeneSet
	study      *geneset.GeneSet

	idx     *index.Index
	dropped int
}

// NewTermForTerm returns a TermForTerm for the observed study set and
// population. The enumeration options are applied to the population.
// If indexes is not nil, the population index is obtained from it,
// otherwise a new index is built.
func NewTermForTerm(ont *ontology.Ontology, assoc *association.Container, population, study *geneset.GeneSet, opts *geneset.EnumerateOptions, indexes *index.Cache) *TermForTerm {
	e := population.Enumerate(ont, assoc, opts)
	var idx *index.Index
	if indexes != nil {
		idx = indexes.Index(e)
	} else {
		idx = index.New(e)
	}
	_, dropped := idx.StudyIndices(study.Genes(), assoc)
	return &TermForTerm{
		ont:        ont,
		assoc:      assoc,
		population: population,
		study:      study,
		idx:        idx,
		dropped:    dropped,
	}
}

// Len returns the number of p-values produced by each calculation.
func (c *TermForTerm) Len() int { return c.idx.Len() }

// Dropped returns the number of genes in the observed study set that
// could not be found in the population.
func (c *TermForTerm) Dropped() int { return c.dropped }

// StudySize returns the number of genes in the observed study set.
func (c *TermForTerm) StudySize() int { return c.study.Len() }

// Calculate returns the p-values for the observed study set.
func (c *TermForTerm) Calculate(ctx context.Context, progress TermProgress) ([]Property, error) {
	return c.CalculateFor(ctx, c.study, progress)
}

// CalculateRandom returns the p-values for a study set of the same size
// as the observed study set drawn uniformly without replacement from
// the population using src.
func (c *TermForTerm) CalculateRandom(ctx context.Context, src rand.Source, progress TermProgress) ([]Property, error) {
	random, err := c.population.RandomSubset(c.study.Len(), src)
	if err != nil {
		return nil, err
	}
	return c.CalculateFor(ctx, random, progress)
}

// CalculateFor returns the p-values for an arbitrary study set of the
// population. Genes of the study that are not in the population are
// not counted as annotated study genes, but do count towards the size
// of the study.
func (c *TermForTerm) CalculateFor(ctx context.Context, study *geneset.GeneSet, progress TermProgress) ([]Property, error) {
	studyIdx, _ := c.idx.StudyIndices(study.Genes(), c.assoc)
	n := study.Len()
	N := c.population.Len()

	props := make([]Property, c.idx.Len())
	for i := range props {
		if i%progressInterval == 0 {
			if progress != nil {
				progress.Update(i)
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		items := c.idx.TermItems(i)
		k := index.Intersect(studyIdx, items)
		K := len(items)

		p := Property{
			Term:                     c.idx.Term(i),
			AnnotatedStudyGenes:      k,
			AnnotatedPopulationGenes: K,
			Method:                   MethodTermForTerm,
		}
		if k == 0 {
			p.P = 1
			p.PMin = 1
			p.Ignore = true
		} else {
			p.P = hypergeom.PHyper(N, float64(K)/float64(N), n, k)
			p.PMin = hypergeom.PMin(K, N)
		}
		p.PAdjusted = p.P
		p.check()
		props[i] = p
	}
	return props, nil
}

// TermForTermMethod is the term-for-term enrichment calculation.
type TermForTermMethod struct {
	// Options is applied to the enumeration
	// of the population.
	Options *geneset.EnumerateOptions

	// Indexes, if not nil, holds population
	// indexes shared between study sets.
	Indexes *index.Cache

	// Progress, if not nil, receives progress
	// of the observed study set calculation.
	Progress TermProgress
}

func (TermForTermMethod) Name() string             { return MethodTermForTerm.String() }
func (TermForTermMethod) SupportsCorrection() bool { return true }

// Calculator returns the TermForTerm used by m for the study set.
func (m TermForTermMethod) Calculator(ont *ontology.Ontology, assoc *association.Container, population, study *geneset.GeneSet) *TermForTerm {
	return NewTermForTerm(ont, assoc, population, study, m.Options, m.Indexes)
}

// CalculateStudySet returns the result for the study set corrected by
// corr. If corr is nil, no correction is applied.
func (m TermForTermMethod) CalculateStudySet(ctx context.Context, ont *ontology.Ontology, assoc *association.Container, population, study *geneset.GeneSet, corr Correction) (*Result, error) {
	if corr == nil {
		corr = None{}
	}
	c := m.Calculator(ont, assoc, population, study)
	props, err := c.Calculate(ctx, m.Progress)
	if err != nil {
		return nil, err
	}
	err = corr.Adjust(ctx, props, c)
	if err != nil {
		return nil, fmt.Errorf("%s correction: %w", corr.Name(), err)
	}

	r := NewResult(ont, study.Name(), population.Len(), study.Len())
	r.calculation = m.Name()
	r.correction = corr.Name()
	for i := range props {
		props[i].check()
		err = r.Add(&props[i])
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}
