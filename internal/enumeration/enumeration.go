// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package enumeration builds the per-term sets of genes annotated to
// terms of an ontology, propagating annotations to all ancestors
// according to the true-path rule.
package enumeration

import (
	"github.com/kortschak/enrich/internal/association"
	"github.com/kortschak/enrich/internal/ontology"
)

// Annotations holds the genes annotated to a term. Direct holds genes
// annotated to the term itself and Total holds those annotated to the
// term or any of its descendants. Both are in insertion order and
// free of duplicates.
type Annotations struct {
	Direct []string
	Total  []string

	direct map[string]bool
	total  map[string]bool
}

// DirectCount returns the number of directly annotated genes.
func (a *Annotations) DirectCount() int { return len(a.Direct) }

// TotalCount returns the number of genes annotated to the term or
// any of its descendants.
func (a *Annotations) TotalCount() int { return len(a.Total) }

func (a *Annotations) addDirect(gene string) {
	if a.direct[gene] {
		return
	}
	a.direct[gene] = true
	a.Direct = append(a.Direct, gene)
}

func (a *Annotations) addTotal(gene string) {
	if a.total[gene] {
		return
	}
	a.total[gene] = true
	a.Total = append(a.Total, gene)
}

// Enumerator holds the annotated genes for every term reached by
// annotation propagation from a collection of genes.
type Enumerator struct {
	ont *ontology.Ontology

	annotations map[ontology.TermID]*Annotations
	terms       []ontology.TermID

	genes       []string
	seen        map[string]bool
	unannotated []string
}

// New returns a new empty Enumerator for the given ontology.
func New(ont *ontology.Ontology) *Enumerator {
	return &Enumerator{
		ont:         ont,
		annotations: make(map[ontology.TermID]*Annotations),
		seen:        make(map[string]bool),
	}
}

// Push adds the associations of the gene held by item to the
// enumerator. If evidences is not empty, only associations with an
// evidence code in evidences are considered. Associations to terms
// that are not in the ontology are ignored. Push returns whether any
// association of the item was used.
func (e *Enumerator) Push(item *association.Item, evidences map[string]bool) bool {
	var direct []ontology.TermID
	for _, a := range item.Associations {
		if len(evidences) != 0 && !evidences[a.Evidence] {
			continue
		}
		if !e.ont.Has(a.Term) {
			continue
		}
		direct = append(direct, a.Term)
	}
	if len(direct) == 0 {
		return false
	}

	gene := item.Name
	if !e.seen[gene] {
		e.seen[gene] = true
		e.genes = append(e.genes, gene)
	}
	for _, t := range direct {
		e.annotationsFor(t).addDirect(gene)
	}
	e.ont.WalkToSource(direct, func(t ontology.TermID) bool {
		e.annotationsFor(t).addTotal(gene)
		return true
	})
	return true
}

// AddUnannotated records a gene that had no usable annotation.
func (e *Enumerator) AddUnannotated(gene string) {
	e.unannotated = append(e.unannotated, gene)
}

func (e *Enumerator) annotationsFor(t ontology.TermID) *Annotations {
	a, ok := e.annotations[t]
	if !ok {
		a = &Annotations{direct: make(map[string]bool), total: make(map[string]bool)}
		e.annotations[t] = a
		e.terms = append(e.terms, t)
	}
	return a
}

// RemoveTerms removes all terms for which remove returns true.
func (e *Enumerator) RemoveTerms(remove func(ontology.TermID, *Annotations) bool) {
	terms := e.terms[:0]
	for _, t := range e.terms {
		if remove(t, e.annotations[t]) {
			delete(e.annotations, t)
			continue
		}
		terms = append(terms, t)
	}
	for i := len(terms); i < len(e.terms); i++ {
		e.terms[i] = ""
	}
	e.terms = terms
}

// Annotated returns the annotations for the term t. If t has no
// annotated genes, an empty Annotations is returned.
func (e *Enumerator) Annotated(t ontology.TermID) *Annotations {
	a, ok := e.annotations[t]
	if !ok {
		return &Annotations{}
	}
	return a
}

// Contains returns whether t has any annotated gene.
func (e *Enumerator) Contains(t ontology.TermID) bool {
	_, ok := e.annotations[t]
	return ok
}

// Terms returns the annotated terms in the order they were first
// reached. The returned slice must not be modified.
func (e *Enumerator) Terms() []ontology.TermID { return e.terms }

// Len returns the total number of annotated terms.
func (e *Enumerator) Len() int { return len(e.terms) }

// Genes returns the distinct annotated genes in the order they were
// pushed. The returned slice must not be modified.
func (e *Enumerator) Genes() []string { return e.genes }

// Unannotated returns the genes that were recorded as having no
// usable annotation.
func (e *Enumerator) Unannotated() []string { return e.unannotated }

// Ontology returns the ontology the enumerator was built over.
func (e *Enumerator) Ontology() *ontology.Ontology { return e.ont }
