// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package calculation

import (
	"errors"
	"fmt"

	"github.com/kortschak/enrich/internal/ontology"
)

// ErrInvalidArgument is returned when a property without a term, or
// for a term already held, is added to a Result.
var ErrInvalidArgument = errors.New("calculation: invalid argument")

// Result holds the term properties of an enrichment calculation for
// a single study set. Properties are held in insertion order.
type Result struct {
	ont *ontology.Ontology

	study          string
	populationSize int
	studySize      int

	calculation string
	correction  string

	props []*Property
	index map[ontology.TermID]int
}

// NewResult returns a new empty Result for the named study set.
func NewResult(ont *ontology.Ontology, study string, populationSize, studySize int) *Result {
	return &Result{
		ont:            ont,
		study:          study,
		populationSize: populationSize,
		studySize:      studySize,
		index:          make(map[ontology.TermID]int),
	}
}

// Add adds p to the result.
func (r *Result) Add(p *Property) error {
	if p == nil || p.Term == "" {
		return fmt.Errorf("%w: property without term", ErrInvalidArgument)
	}
	if _, ok := r.index[p.Term]; ok {
		return fmt.Errorf("%w: duplicate property for %s", ErrInvalidArgument, p.Term)
	}
	r.index[p.Term] = len(r.props)
	r.props = append(r.props, p)
	return nil
}

// Property returns the property for the term id.
func (r *Result) Property(id ontology.TermID) (*Property, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.props[i], true
}

// Properties returns the properties in insertion order. The returned
// slice must not be modified.
func (r *Result) Properties() []*Property { return r.props }

// Len returns the number of properties held.
func (r *Result) Len() int { return len(r.props) }

// GoodTerms returns the terms with a minimum achievable p-value below
// threshold. These are the only terms that could be significant at
// that threshold for any study set of the population.
func (r *Result) GoodTerms(threshold float64) map[ontology.TermID]bool {
	good := make(map[ontology.TermID]bool)
	for _, p := range r.props {
		if p.PMin < threshold {
			good[p.Term] = true
		}
	}
	return good
}

// Significant returns the properties with an adjusted p-value below
// alpha in insertion order.
func (r *Result) Significant(alpha float64) []*Property {
	var sig []*Property
	for _, p := range r.props {
		if p.Significant(alpha) {
			sig = append(sig, p)
		}
	}
	return sig
}

// Ontology returns the ontology the result was calculated over.
func (r *Result) Ontology() *ontology.Ontology { return r.ont }

// StudyName returns the name of the study set.
func (r *Result) StudyName() string { return r.study }

// PopulationSize returns the number of genes in the population.
func (r *Result) PopulationSize() int { return r.populationSize }

// StudySize returns the number of genes in the study set.
func (r *Result) StudySize() int { return r.studySize }

// CalculationName returns the name of the calculation that produced
// the result.
func (r *Result) CalculationName() string { return r.calculation }

// CorrectionName returns the name of the multiple test correction
// applied to the result.
func (r *Result) CorrectionName() string { return r.correction }
