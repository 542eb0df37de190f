// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ontology

import (
	"io"
	"strings"

	"gonum.org/v1/gonum/graph/formats/rdf"

	"github.com/kortschak/enrich/internal/owl"
)

// namespaces maps full IRI namespaces to the local qualified name
// prefixes used within the ontology graph.
var namespaces = []struct{ iri, local string }{
	{iri: "http://www.geneontology.org/formats/oboInOwl#", local: "oboInOwl:"},
	{iri: "http://www.w3.org/1999/02/22-rdf-syntax-ns#", local: "rdf:"},
	{iri: "http://www.w3.org/2000/01/rdf-schema#", local: "rdfs:"},
	{iri: "http://www.w3.org/2002/07/owl#", local: "owl:"},
	{iri: "http://purl.obolibrary.org/obo/", local: "obo:"},
}

// Decode returns a built Ontology from the RDF N-Triples or N-Quads
// in r. Statements may use either full IRIs or the local form
//
//  <obo:GO_0000001> <rdfs:subClassOf> <obo:GO_0000002> .
//
// Only is-a, label, namespace, deprecation and class type statements
// are retained. Deprecated terms are excluded from the built ontology.
func Decode(r io.Reader) (*Ontology, error) {
	return decode(rdf.NewDecoder(r))
}

// DecodeOWL returns a built Ontology from the Gene Ontology OBO in OWL
// RDF/XML in r, as distributed at
// http://current.geneontology.org/ontology/go.owl.
func DecodeOWL(r io.Reader) (*Ontology, error) {
	return decode(owl.NewDecoder(r))
}

type statementDecoder interface {
	Unmarshal() (*rdf.Statement, error)
}

func decode(dec statementDecoder) (*Ontology, error) {
	o := New()
	for {
		s, err := dec.Unmarshal()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			break
		}

		s.Subject.Value = compact(s.Subject.Value)
		s.Predicate.Value = compact(s.Predicate.Value)
		s.Object.Value = compact(s.Object.Value)

		// This list must include all predicates used in queries.
		switch s.Predicate.Value {
		case subClassOf, label, hasNamespace, rdfType, deprecated:
		default:
			continue
		}
		if !strings.HasPrefix(s.Subject.Value, termPrefix) {
			continue
		}
		if s.Predicate.Value == subClassOf && !strings.HasPrefix(s.Object.Value, termPrefix) {
			// Restrictions are blank nodes; only named
			// superclasses form the is-a DAG.
			continue
		}

		s.Subject.UID = 0
		s.Predicate.UID = 0
		s.Object.UID = 0
		s.Label = rdf.Term{}
		o.g.AddStatement(s)
	}
	err := o.Build()
	if err != nil {
		return nil, err
	}
	return o, nil
}

// compact replaces a known full IRI namespace in v with its local
// prefix. Non-IRI terms are returned unaltered.
func compact(v string) string {
	if !strings.HasPrefix(v, "<") {
		return v
	}
	for _, ns := range namespaces {
		if strings.HasPrefix(v, "<"+ns.iri) {
			return "<" + ns.local + strings.TrimPrefix(v, "<"+ns.iri)
		}
	}
	return v
}
