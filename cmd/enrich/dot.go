// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"sort"

	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/kortschak/enrich/internal/calculation"
	"github.com/kortschak/enrich/internal/ontology"
)

// writeDOT writes the graph of terms significant at alpha and their
// ancestors to path in DOT format.
func writeDOT(path string, r *calculation.Result, alpha float64) error {
	g := newSignificanceGraph(r, alpha)
	b, err := dot.Marshal(g, r.StudyName(), "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// significanceGraph is the is-a graph of significant terms and their
// ancestors with edges directed from child to parent.
type significanceGraph struct {
	*simple.DirectedGraph

	nodes map[ontology.TermID]termNode
}

func newSignificanceGraph(r *calculation.Result, alpha float64) significanceGraph {
	ont := r.Ontology()
	keep := make(map[ontology.TermID]bool)
	for _, p := range r.Significant(alpha) {
		for t := range ont.Ancestors(p.Term) {
			keep[t] = true
		}
	}
	terms := make([]ontology.TermID, 0, len(keep))
	for t := range keep {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i] < terms[j] })

	attrs := r.Attributes(alpha, true)
	g := significanceGraph{
		DirectedGraph: simple.NewDirectedGraph(),
		nodes:         make(map[ontology.TermID]termNode, len(terms)),
	}
	for i, t := range terms {
		n := termNode{id: int64(i), term: t, attrs: attrs.Attributes(t)}
		g.AddNode(n)
		g.nodes[t] = n
	}
	for _, t := range terms {
		for _, p := range ont.Parents(t) {
			if pn, ok := g.nodes[p]; ok {
				g.SetEdge(simple.Edge{F: g.nodes[t], T: pn})
			}
		}
	}
	return g
}

func (g significanceGraph) DOTAttributers() (graph, node, edge encoding.Attributer) {
	return attr{{Key: "rankdir", Value: "BT"}}, attr{}, attr{}
}

type attr []encoding.Attribute

func (a attr) Attributes() []encoding.Attribute {
	return a
}

// termNode implements graph.Node and dot.Node to allow the
// term ID and its rendering attributes to be given to the DOT
// encoder.
type termNode struct {
	id    int64
	term  ontology.TermID
	attrs []encoding.Attribute
}

func (n termNode) ID() int64                        { return n.id }
func (n termNode) DOTID() string                    { return string(n.term) }
func (n termNode) Attributes() []encoding.Attribute { return n.attrs }
