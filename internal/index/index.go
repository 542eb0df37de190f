// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package index provides dense integer indexing of population genes
// and annotated terms.
package index

import (
	"sort"

	"github.com/kortschak/enrich/internal/enumeration"
	"github.com/kortschak/enrich/internal/ontology"
)

// Resolver maps a gene name to its canonical name.
type Resolver interface {
	Name(gene string) (string, bool)
}

// Index holds gene and term indexes for a population. An Index is
// immutable and safe for concurrent use.
type Index struct {
	items   []string
	itemIdx map[string]int

	terms     []ontology.TermID
	termIdx   map[ontology.TermID]int
	termItems [][]int
}

// New returns an Index for the population enumeration e. Genes are
// numbered in the order of e.Genes and terms in the order of e.Terms.
func New(e *enumeration.Enumerator) *Index {
	genes := e.Genes()
	idx := Index{
		items:     genes,
		itemIdx:   make(map[string]int, len(genes)),
		terms:     e.Terms(),
		termIdx:   make(map[ontology.TermID]int, e.Len()),
		termItems: make([][]int, e.Len()),
	}
	for i, g := range genes {
		idx.itemIdx[g] = i
	}
	for i, t := range idx.terms {
		idx.termIdx[t] = i
		total := e.Annotated(t).Total
		items := make([]int, len(total))
		for j, g := range total {
			items[j] = idx.itemIdx[g]
		}
		sort.Ints(items)
		idx.termItems[i] = items
	}
	return &idx
}

// Len returns the number of annotated terms.
func (idx *Index) Len() int { return len(idx.terms) }

// Items returns the number of indexed genes.
func (idx *Index) Items() int { return len(idx.items) }

// Term returns the ith term.
func (idx *Index) Term(i int) ontology.TermID { return idx.terms[i] }

// TermIndex returns the index of term t.
func (idx *Index) TermIndex(t ontology.TermID) (int, bool) {
	i, ok := idx.termIdx[t]
	return i, ok
}

// TermItems returns the sorted indexes of the genes annotated to
// the ith term. The returned slice must not be modified.
func (idx *Index) TermItems(i int) []int { return idx.termItems[i] }

// Gene returns the name of the ith gene.
func (idx *Index) Gene(i int) string { return idx.items[i] }

// Lookup returns the index of gene. If the gene is not directly
// indexed and r is not nil, the canonical name of the gene obtained
// from r is tried.
func (idx *Index) Lookup(gene string, r Resolver) (int, bool) {
	i, ok := idx.itemIdx[gene]
	if ok || r == nil {
		return i, ok
	}
	name, ok := r.Name(gene)
	if !ok {
		return 0, false
	}
	i, ok = idx.itemIdx[name]
	return i, ok
}

// StudyIndices returns the sorted indexes of the genes in the study
// and the number of genes that could not be resolved.
func (idx *Index) StudyIndices(genes []string, r Resolver) (indices []int, dropped int) {
	indices = make([]int, 0, len(genes))
	for _, g := range genes {
		i, ok := idx.Lookup(g, r)
		if !ok {
			dropped++
			continue
		}
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices, dropped
}

// Intersect returns the number of elements common to the strictly
// ascending slices a and b.
func Intersect(a, b []int) int {
	var n, i, j int
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			n++
			i++
			j++
		}
	}
	return n
}
