// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geneset provides named gene sets used as study and
// population sets in enrichment analyses.
package geneset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/kortschak/enrich/internal/association"
	"github.com/kortschak/enrich/internal/enumeration"
	"github.com/kortschak/enrich/internal/ontology"
)

// ErrSampleSize is returned when a random subset larger than the
// gene set is requested.
var ErrSampleSize = errors.New("geneset: sample size out of range")

// Attribute is the optional attribute of a gene in a set.
type Attribute struct {
	Description string

	// Value is a numeric value associated
	// with the gene, for example a score.
	// It is only meaningful if Valued is
	// true.
	Value  float64
	Valued bool
}

// merge returns the attribute formed by combining a and b, preferring
// values held by a.
func (a Attribute) merge(b Attribute) Attribute {
	if a.Description == "" {
		a.Description = b.Description
	}
	if !a.Valued && b.Valued {
		a.Value = b.Value
		a.Valued = true
	}
	return a
}

// prefer returns whether b should replace a when two entries refer to
// the same gene.
func (a Attribute) prefer(b Attribute) bool {
	if a.Valued && b.Valued {
		return b.Value < a.Value
	}
	return !a.Valued && b.Valued
}

// GeneSet is a named collection of unique gene identifiers, each with
// an optional attribute. The order of genes is the order of insertion.
//
// The term enumeration of a GeneSet is cached. Mutating the set
// invalidates the cache. Mutation must not be concurrent with reading
// the set; doing so panics if detected.
type GeneSet struct {
	name string

	genes []string
	attrs map[string]Attribute

	// mu guards mutation and the lazy
	// build of the enumeration cache.
	mu       sync.Mutex
	mutating atomic.Bool
	cache    atomic.Pointer[cached]

	randomID atomic.Int64
}

type cached struct {
	key  cacheKey
	enum *enumeration.Enumerator
}

type cacheKey struct {
	ont       *ontology.Ontology
	assoc     *association.Container
	evidences string
}

// New returns a new empty GeneSet with the given name.
func New(name string) *GeneSet {
	return &GeneSet{name: name, attrs: make(map[string]Attribute)}
}

// Name returns the name of the set.
func (s *GeneSet) Name() string { return s.name }

// SetName sets the name of the set.
func (s *GeneSet) SetName(name string) { s.name = name }

// String implements fmt.Stringer.
func (s *GeneSet) String() string {
	return fmt.Sprintf("%s (n=%d)", s.name, s.Len())
}

// Len returns the number of genes in the set.
func (s *GeneSet) Len() int {
	s.checkRead()
	return len(s.genes)
}

// Genes returns the genes of the set in insertion order. The returned
// slice must not be modified.
func (s *GeneSet) Genes() []string {
	s.checkRead()
	return s.genes
}

// Contains returns whether gene is in the set.
func (s *GeneSet) Contains(gene string) bool {
	s.checkRead()
	_, ok := s.attrs[gene]
	return ok
}

// Attribute returns the attribute of gene.
func (s *GeneSet) Attribute(gene string) (Attribute, bool) {
	s.checkRead()
	a, ok := s.attrs[gene]
	return a, ok
}

// Description returns the description of gene, or the empty string if
// gene is not in the set.
func (s *GeneSet) Description(gene string) string {
	a, _ := s.Attribute(gene)
	return a.Description
}

// HasOnlyValued returns whether every gene of the set has a numeric
// value.
func (s *GeneSet) HasOnlyValued() bool {
	s.checkRead()
	for _, a := range s.attrs {
		if !a.Valued {
			return false
		}
	}
	return true
}

func (s *GeneSet) checkRead() {
	if s.mutating.Load() {
		panic("geneset: read during concurrent mutation of " + s.name)
	}
}

// mutate calls fn holding the set's lock and invalidates the cached
// enumeration.
func (s *GeneSet) mutate(fn func()) {
	s.mu.Lock()
	s.mutating.Store(true)
	defer func() {
		s.cache.Store(nil)
		s.mutating.Store(false)
		s.mu.Unlock()
	}()
	fn()
}

// Add adds gene with the given attribute to the set. If the gene is
// already present, its attribute is replaced.
func (s *GeneSet) Add(gene string, attr Attribute) {
	s.mutate(func() { s.add(gene, attr) })
}

func (s *GeneSet) add(gene string, attr Attribute) {
	if _, ok := s.attrs[gene]; !ok {
		s.genes = append(s.genes, gene)
	}
	s.attrs[gene] = attr
}

// AddGenes adds the genes to the set with empty attributes.
func (s *GeneSet) AddGenes(genes ...string) {
	s.mutate(func() {
		for _, g := range genes {
			s.add(g, Attribute{})
		}
	})
}

// Remove removes the genes from the set.
func (s *GeneSet) Remove(genes ...string) {
	s.mutate(func() {
		s.remove(genes)
	})
}

func (s *GeneSet) remove(genes []string) {
	drop := make(map[string]bool, len(genes))
	for _, g := range genes {
		if _, ok := s.attrs[g]; ok {
			drop[g] = true
			delete(s.attrs, g)
		}
	}
	if len(drop) == 0 {
		return
	}
	kept := s.genes[:0]
	for _, g := range s.genes {
		if !drop[g] {
			kept = append(kept, g)
		}
	}
	for i := len(kept); i < len(s.genes); i++ {
		s.genes[i] = ""
	}
	s.genes = kept
}

// Reset discards the cached enumeration.
func (s *GeneSet) Reset() {
	s.mu.Lock()
	s.cache.Store(nil)
	s.mu.Unlock()
}

// FilterDuplicates merges genes that refer to the same annotated gene
// under different names, keeping the canonical name. Genes without
// associations are retained. It returns the number of removed entries.
func (s *GeneSet) FilterDuplicates(assoc *association.Container) int {
	var removed int
	s.mutate(func() {
		genes := make([]string, 0, len(s.genes))
		attrs := make(map[string]Attribute, len(s.attrs))
		for _, g := range s.genes {
			name := g
			if canon, ok := assoc.Name(g); ok {
				name = canon
			}
			cur := s.attrs[g]
			prev, ok := attrs[name]
			if !ok {
				genes = append(genes, name)
				attrs[name] = cur
				continue
			}
			if prev.prefer(cur) {
				attrs[name] = cur
			}
		}
		removed = len(s.genes) - len(genes)
		s.genes = genes
		s.attrs = attrs
	})
	return removed
}

// Resolution holds the outcome of FilterUnannotated.
type Resolution struct {
	// Removed is the list of genes without
	// any association.
	Removed []string

	// ObjectSymbol, ObjectID and Synonym are
	// the number of retained genes resolved
	// by each naming scheme.
	ObjectSymbol, ObjectID, Synonym int
}

// FilterUnannotated removes genes that have no association in assoc.
func (s *GeneSet) FilterUnannotated(assoc *association.Container) Resolution {
	var r Resolution
	s.mutate(func() {
		for _, g := range s.genes {
			switch {
			case assoc.IsObjectSymbol(g):
				r.ObjectSymbol++
			case assoc.IsObjectID(g):
				if _, ok := assoc.Get(g); ok {
					r.ObjectID++
				} else {
					r.Removed = append(r.Removed, g)
				}
			case assoc.IsSynonym(g):
				if _, ok := assoc.Get(g); ok {
					r.Synonym++
				} else {
					r.Removed = append(r.Removed, g)
				}
			default:
				r.Removed = append(r.Removed, g)
			}
		}
		s.remove(r.Removed)
	})
	return r
}

// ApplyMapping renames genes according to mapping. Genes without an
// entry are unaffected, genes mapped to "-" are discarded and genes
// mapped to the same name have their attributes merged. It returns
// the number of mapped, unmapped and discarded genes.
func (s *GeneSet) ApplyMapping(mapping map[string]string) (mapped, unmapped, discarded int) {
	s.mutate(func() {
		genes := make([]string, 0, len(s.genes))
		attrs := make(map[string]Attribute, len(s.attrs))
		for _, g := range s.genes {
			attr := s.attrs[g]
			name, ok := mapping[g]
			switch {
			case !ok:
				name = g
				unmapped++
			case name == "-":
				discarded++
				continue
			default:
				mapped++
			}
			if prev, ok := attrs[name]; ok {
				attrs[name] = prev.merge(attr)
				continue
			}
			genes = append(genes, name)
			attrs[name] = attr
		}
		s.genes = genes
		s.attrs = attrs
	})
	return mapped, unmapped, discarded
}

// EnumerateOptions holds optional parameters for Enumerate.
type EnumerateOptions struct {
	// Evidences restricts the considered
	// associations to those with the listed
	// evidence codes. If empty, all are used.
	Evidences []string

	// Remove, if not nil, is called for
	// each annotated term after enumeration
	// and terms for which it returns true
	// are removed.
	Remove func(ontology.TermID, *enumeration.Annotations) bool
}

// Enumerate returns the genes annotated to each term of ont for the
// genes of the set. The result is cached and returned by subsequent
// calls with the same ontology, associations and evidence codes until
// the set is mutated or Reset. The Remove option does not form part of
// the cache key.
func (s *GeneSet) Enumerate(ont *ontology.Ontology, assoc *association.Container, opts *EnumerateOptions) *enumeration.Enumerator {
	key := cacheKey{ont: ont, assoc: assoc}
	var evidences map[string]bool
	if opts != nil && len(opts.Evidences) != 0 {
		ev := append([]string(nil), opts.Evidences...)
		sort.Strings(ev)
		key.evidences = strings.Join(ev, "\x00")
		evidences = make(map[string]bool, len(ev))
		for _, e := range ev {
			evidences[e] = true
		}
	}

	if c := s.cache.Load(); c != nil && c.key == key {
		return c.enum
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.cache.Load(); c != nil && c.key == key {
		return c.enum
	}

	e := enumeration.New(ont)
	for _, g := range s.genes {
		it, ok := assoc.Get(g)
		if !ok || !e.Push(it, evidences) {
			e.AddUnannotated(g)
		}
	}
	if opts != nil && opts.Remove != nil {
		e.RemoveTerms(opts.Remove)
	}
	s.cache.Store(&cached{key: key, enum: e})
	return e
}

// RandomSubset returns a new GeneSet holding k genes drawn uniformly
// without replacement from s, with their attributes. If src is nil the
// global source is used. The returned set is given a unique name
// derived from the name of s.
func (s *GeneSet) RandomSubset(k int, src rand.Source) (*GeneSet, error) {
	s.checkRead()
	if k < 0 || k > len(s.genes) {
		return nil, fmt.Errorf("%w: %d of %d", ErrSampleSize, k, len(s.genes))
	}
	idx := make([]int, k)
	if k != 0 {
		sampleuv.WithoutReplacement(idx, len(s.genes), src)
		sort.Ints(idx)
	}

	sub := New(fmt.Sprintf("%s-random-%d", s.name, s.randomID.Add(1)-1))
	sub.genes = make([]string, k)
	for i, j := range idx {
		g := s.genes[j]
		sub.genes[i] = g
		sub.attrs[g] = s.attrs[g]
	}
	return sub, nil
}
