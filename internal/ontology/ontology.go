// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ontology

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/formats/rdf"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/kortschak/gogo"
)

// ArtificialRoot is the term inserted above the roots of an ontology
// that has more than one root, for example the three Gene Ontology
// aspects.
const ArtificialRoot TermID = "GO:0000000"

const (
	subClassOf   = "<rdfs:subClassOf>"
	label        = "<rdfs:label>"
	hasNamespace = "<oboInOwl:hasOBONamespace>"
	rdfType      = "<rdf:type>"
	owlClass     = "<owl:Class>"
	deprecated   = "<owl:deprecated>"

	termPrefix = "<obo:"
)

// TermID is the stable identifier of an ontology term in its
// CURIE form, for example GO:0008150.
type TermID string

// IRI returns the local IRI form of the term identifier as it is
// stored in the ontology graph, <obo:GO_0008150>.
func (id TermID) IRI() string {
	return termPrefix + strings.Replace(string(id), ":", "_", 1) + ">"
}

// idOf returns the TermID for an <obo:*> IRI term value.
func idOf(v string) TermID {
	return TermID(strings.Replace(strip(v, termPrefix, ">"), "_", ":", 1))
}

// Term is an ontology term.
type Term struct {
	ID        TermID
	Name      string
	Namespace string
}

// Ontology is a directed acyclic graph of terms connected by
// is-a (rdfs:subClassOf) relationships. An Ontology must be
// built with Build before it is used and is immutable and
// safe for concurrent use afterwards.
type Ontology struct {
	g *gogo.Graph

	built      bool
	terms      []TermID
	roots      []TermID
	root       TermID
	artificial bool

	// current holds the terms that
	// are not obsolete.
	current map[TermID]bool

	// levels holds the longest distance of
	// each term from the root.
	levels map[TermID]int
}

// New returns a new empty Ontology.
func New() *Ontology {
	return &Ontology{g: gogo.NewGraph()}
}

// AddTerm adds a term with the given name and namespace to the ontology.
func (o *Ontology) AddTerm(id TermID, name, namespace string) error {
	if o.built {
		return errors.New("ontology: add to built ontology")
	}
	subj, err := rdf.NewIRITerm(iriText(id))
	if err != nil {
		return fmt.Errorf("ontology: invalid term id %q: %w", id, err)
	}
	o.add(subj, rdfType, owlClass)
	if name != "" {
		obj, err := rdf.NewLiteralTerm(name, "")
		if err != nil {
			return err
		}
		o.g.AddStatement(&rdf.Statement{Subject: subj, Predicate: rdf.Term{Value: label}, Object: obj})
	}
	if namespace != "" {
		obj, err := rdf.NewLiteralTerm(namespace, "")
		if err != nil {
			return err
		}
		o.g.AddStatement(&rdf.Statement{Subject: subj, Predicate: rdf.Term{Value: hasNamespace}, Object: obj})
	}
	return nil
}

// AddIsA adds an is-a relationship from child to parent.
func (o *Ontology) AddIsA(child, parent TermID) error {
	if o.built {
		return errors.New("ontology: add to built ontology")
	}
	subj, err := rdf.NewIRITerm(iriText(child))
	if err != nil {
		return fmt.Errorf("ontology: invalid term id %q: %w", child, err)
	}
	_, err = rdf.NewIRITerm(iriText(parent))
	if err != nil {
		return fmt.Errorf("ontology: invalid term id %q: %w", parent, err)
	}
	o.add(subj, subClassOf, parent.IRI())
	return nil
}

func (o *Ontology) add(subj rdf.Term, pred, obj string) {
	o.g.AddStatement(&rdf.Statement{
		Subject:   subj,
		Predicate: rdf.Term{Value: pred},
		Object:    rdf.Term{Value: obj},
	})
}

// iriText returns the text of the IRI for id without angle quotes.
func iriText(id TermID) string {
	return strip(id.IRI(), "<", ">")
}

// Build finalises the ontology. It identifies the roots, inserting
// ArtificialRoot if there is more than one, and computes term levels.
// Build returns an error if the is-a relationships contain a cycle.
func (o *Ontology) Build() error {
	if o.built {
		return nil
	}
	nodes := o.g.Nodes()
	for nodes.Next() {
		t := nodes.Node().(rdf.Term)
		if !strings.HasPrefix(t.Value, termPrefix) {
			continue
		}
		if o.literal(t, deprecated) == "true" {
			continue
		}
		o.terms = append(o.terms, idOf(t.Value))
	}
	sortIDs(o.terms)
	o.current = make(map[TermID]bool, len(o.terms)+1)
	for _, id := range o.terms {
		o.current[id] = true
	}
	for _, id := range o.terms {
		if len(o.Parents(id)) == 0 {
			o.roots = append(o.roots, id)
		}
	}

	switch len(o.roots) {
	case 0:
		if len(o.terms) != 0 {
			return errors.New("ontology: no root term")
		}
	case 1:
		o.root = o.roots[0]
	default:
		err := o.AddTerm(ArtificialRoot, "root", "")
		if err != nil {
			return err
		}
		for _, r := range o.roots {
			err = o.AddIsA(r, ArtificialRoot)
			if err != nil {
				return err
			}
		}
		o.root = ArtificialRoot
		o.artificial = true
		o.current[ArtificialRoot] = true
		o.terms = append(o.terms, ArtificialRoot)
		sortIDs(o.terms)
	}

	o.levels = make(map[TermID]int, len(o.terms))
	onStack := make(map[TermID]bool)
	for _, id := range o.terms {
		_, err := o.levelOf(id, onStack)
		if err != nil {
			return err
		}
	}

	o.built = true
	return nil
}

// levelOf returns the longest distance of id from the root, recording
// it and the levels of all its ancestors.
func (o *Ontology) levelOf(id TermID, onStack map[TermID]bool) (int, error) {
	if l, ok := o.levels[id]; ok {
		return l, nil
	}
	if onStack[id] {
		return 0, fmt.Errorf("ontology: is-a cycle through %s", id)
	}
	onStack[id] = true
	l := 0
	for _, p := range o.Parents(id) {
		pl, err := o.levelOf(p, onStack)
		if err != nil {
			return 0, err
		}
		if pl+1 > l {
			l = pl + 1
		}
	}
	delete(onStack, id)
	o.levels[id] = l
	return l, nil
}

// Len returns the number of terms in the ontology.
func (o *Ontology) Len() int { return len(o.terms) }

// Terms returns all the term IDs in the ontology in lexical order.
// The returned slice must not be modified.
func (o *Ontology) Terms() []TermID { return o.terms }

// Root returns the root term of the ontology. If the ontology has
// more than one natural root, this is ArtificialRoot.
func (o *Ontology) Root() TermID { return o.root }

// IsRoot returns whether id is the root of the ontology.
func (o *Ontology) IsRoot(id TermID) bool { return id == o.root }

// IsArtificialRoot returns whether id is the artificial root of the
// ontology.
func (o *Ontology) IsArtificialRoot(id TermID) bool {
	return o.artificial && id == ArtificialRoot
}

// Has returns whether id is a current term in the ontology.
// Obsolete terms are not held.
func (o *Ontology) Has(id TermID) bool {
	return o.current[id]
}

// Term returns the term for id.
func (o *Ontology) Term(id TermID) (Term, bool) {
	if !o.Has(id) {
		return Term{}, false
	}
	t, ok := o.g.TermFor(id.IRI())
	if !ok {
		return Term{}, false
	}
	return Term{
		ID:        id,
		Name:      o.literal(t, label),
		Namespace: o.literal(t, hasNamespace),
	}, true
}

// literal returns the text of the first literal object of t with
// the given predicate.
func (o *Ontology) literal(t rdf.Term, pred string) string {
	vals := o.g.Query(t).Out(func(s *rdf.Statement) bool {
		return s.Predicate.Value == pred
	}).Result()
	for _, v := range vals {
		text, _, kind, err := v.Parts()
		if err != nil {
			panic(fmt.Errorf("invalid term in graph: %w", err))
		}
		if kind == rdf.Literal {
			return text
		}
	}
	return ""
}

// Parents returns the direct is-a parents of id in lexical order.
// Obsolete terms are not included.
func (o *Ontology) Parents(id TermID) []TermID {
	t, ok := o.g.TermFor(id.IRI())
	if !ok || !o.Has(id) {
		return nil
	}
	return o.currentOf(ids(o.g.Query(t).Out(func(s *rdf.Statement) bool {
		return s.Predicate.Value == subClassOf &&
			strings.HasPrefix(s.Object.Value, termPrefix)
	}).Unique().Result()))
}

// Children returns the direct is-a children of id in lexical order.
// Obsolete terms are not included.
func (o *Ontology) Children(id TermID) []TermID {
	t, ok := o.g.TermFor(id.IRI())
	if !ok || !o.Has(id) {
		return nil
	}
	return o.currentOf(ids(o.g.Query(t).In(func(s *rdf.Statement) bool {
		return s.Predicate.Value == subClassOf &&
			strings.HasPrefix(s.Subject.Value, termPrefix)
	}).Unique().Result()))
}

// currentOf returns the terms of s that are not obsolete, filtering
// s in place.
func (o *Ontology) currentOf(s []TermID) []TermID {
	n := 0
	for _, id := range s {
		if o.Has(id) {
			s[n] = id
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return s[:n]
}

// WalkToSource performs a breadth-first walk from each of the terms in
// from towards the root, calling fn for each term, including the
// starting terms. Each term is visited at most once. The walk is
// terminated if fn returns false.
func (o *Ontology) WalkToSource(from []TermID, fn func(TermID) bool) {
	o.walk(o.g, isSubClassOf, from, fn)
}

// WalkToSinks performs a breadth-first walk from each of the terms in
// from away from the root, calling fn for each term, including the
// starting terms. Each term is visited at most once. The walk is
// terminated if fn returns false.
func (o *Ontology) WalkToSinks(from []TermID, fn func(TermID) bool) {
	o.walk(reverse{o.g}, hasSubClass, from, fn)
}

func (o *Ontology) walk(g traverse.Graph, filter func(graph.Edge) bool, from []TermID, fn func(TermID) bool) {
	bf := traverse.BreadthFirst{Traverse: func(e graph.Edge) bool {
		return filter(e) &&
			o.Has(idOf(e.From().(rdf.Term).Value)) &&
			o.Has(idOf(e.To().(rdf.Term).Value))
	}}
	for _, id := range from {
		t, ok := o.g.TermFor(id.IRI())
		if !ok || !o.Has(id) || bf.Visited(t) {
			continue
		}
		stop := bf.Walk(g, t, func(n graph.Node, _ int) bool {
			return !fn(idOf(n.(rdf.Term).Value))
		})
		if stop != nil {
			return
		}
	}
}

// Ancestors returns the terms of the graph induced between the root
// and id, including both.
func (o *Ontology) Ancestors(id TermID) map[TermID]bool {
	up := make(map[TermID]bool)
	o.WalkToSource([]TermID{id}, func(t TermID) bool {
		up[t] = true
		return true
	})
	return up
}

// TermLevels holds a set of terms grouped by their level in the
// ontology.
type TermLevels struct {
	levels  map[TermID]int
	byLevel [][]TermID
}

// MaxLevel returns the deepest level in the set, or -1 if the set is
// empty.
func (l *TermLevels) MaxLevel() int { return len(l.byLevel) - 1 }

// Terms returns the terms at level i in lexical order.
func (l *TermLevels) Terms(i int) []TermID {
	if i < 0 || i >= len(l.byLevel) {
		return nil
	}
	return l.byLevel[i]
}

// Level returns the level of id.
func (l *TermLevels) Level(id TermID) (int, bool) {
	d, ok := l.levels[id]
	return d, ok
}

// Levels returns the levels of the provided terms. The level of a term
// is its longest distance from the root, so every term is deeper than
// each of its parents. Terms not in the ontology are ignored.
func (o *Ontology) Levels(terms []TermID) *TermLevels {
	l := TermLevels{levels: make(map[TermID]int, len(terms))}
	for _, id := range terms {
		d, ok := o.levels[id]
		if !ok {
			continue
		}
		l.levels[id] = d
		for len(l.byLevel) <= d {
			l.byLevel = append(l.byLevel, nil)
		}
		l.byLevel[d] = append(l.byLevel[d], id)
	}
	for _, s := range l.byLevel {
		sortIDs(s)
	}
	return &l
}

// isSubClassOf is a traverse edge filter. It accepts statements where
//
//  any -- <rdfs:subClassOf> -> <obo:*
//
// for out queries from a term.
func isSubClassOf(e graph.Edge) bool {
	return gogo.ConnectedByAny(e, func(s *rdf.Statement) bool {
		return s.Predicate.Value == subClassOf &&
			strings.HasPrefix(s.Object.Value, termPrefix)
	})
}

// hasSubClass is a traverse edge filter. It accepts statements where
//
//  <obo:* <- <rdfs:subClassOf> -- any
//
// for in queries from a term.
func hasSubClass(e graph.Edge) bool {
	return gogo.ConnectedByAny(e, func(s *rdf.Statement) bool {
		return s.Predicate.Value == subClassOf &&
			strings.HasPrefix(s.Subject.Value, termPrefix)
	})
}

// reverse implements the traverse.Graph reversing the direction of edges.
type reverse struct {
	*gogo.Graph
}

func (g reverse) From(id int64) graph.Nodes      { return g.Graph.To(id) }
func (g reverse) Edge(uid, vid int64) graph.Edge { return g.Graph.Edge(vid, uid) }

func ids(terms []rdf.Term) []TermID {
	if len(terms) == 0 {
		return nil
	}
	s := make([]TermID, len(terms))
	for i, t := range terms {
		s[i] = idOf(t.Value)
	}
	sortIDs(s)
	return s
}

func sortIDs(s []TermID) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}

func strip(s, prefix, suffix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, prefix), suffix)
}
