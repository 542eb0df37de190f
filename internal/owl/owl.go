// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package owl implements decoding the class hierarchy of a Gene Ontology
// OBO in OWL RDF/XML dataset. It is not a complete RDF/XML parser
// implementation; only named classes with their labels, namespaces,
// deprecation and named superclasses are decoded.
package owl

import (
	"encoding/xml"
	"io"

	"gonum.org/v1/gonum/graph/formats/rdf"
)

const (
	rdfNS      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	rdfsNS     = "http://www.w3.org/2000/01/rdf-schema#"
	owlNS      = "http://www.w3.org/2002/07/owl#"
	oboInOwlNS = "http://www.geneontology.org/formats/oboInOwl#"
)

var (
	rdfType         = mustTerm(rdf.NewIRITerm(rdfNS + "type"))
	owlClass        = mustTerm(rdf.NewIRITerm(owlNS + "Class"))
	subClassOf      = mustTerm(rdf.NewIRITerm(rdfsNS + "subClassOf"))
	label           = mustTerm(rdf.NewIRITerm(rdfsNS + "label"))
	hasOBONamespace = mustTerm(rdf.NewIRITerm(oboInOwlNS + "hasOBONamespace"))
	deprecated      = mustTerm(rdf.NewIRITerm(owlNS + "deprecated"))

	rdfRoot  = xml.Name{Space: rdfNS, Local: "RDF"}
	classTag = xml.Name{Space: owlNS, Local: "Class"}
)

// Decoder is a Gene Ontology OBO in OWL decoder. Statements returned by
// Unmarshal hold full IRIs and plain literals and have no UIDs set.
type Decoder struct {
	xml *xml.Decoder

	buf  []*rdf.Statement
	seen map[[3]string]bool
}

// NewDecoder returns a new Decoder that takes input from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		xml:  xml.NewDecoder(r),
		seen: make(map[[3]string]bool),
	}
}

// Unmarshal returns the next unique statement from the input stream.
// It returns io.EOF when the stream is exhausted.
func (dec *Decoder) Unmarshal() (*rdf.Statement, error) {
	for {
		for len(dec.buf) == 0 {
			err := dec.fillBuffer()
			if err != nil {
				return nil, err
			}
		}
		s := dec.buf[0]
		dec.buf[0] = nil
		dec.buf = dec.buf[1:]
		triple := [3]string{s.Subject.Value, s.Predicate.Value, s.Object.Value}
		if !dec.seen[triple] {
			dec.seen[triple] = true
			return s, nil
		}
	}
}

func (dec *Decoder) fillBuffer() error {
	tok, err := dec.xml.Token()
	if err != nil {
		return err
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		return nil
	}
	switch start.Name {
	case rdfRoot:
		// Descend into the document.
		return nil
	case classTag:
		var c class
		err = dec.xml.DecodeElement(&c, &start)
		if err != nil {
			return err
		}
		dec.buf, err = c.collect(dec.buf)
		return err
	default:
		return dec.xml.Skip()
	}
}

// class is an owl:Class element. Restrictions and other anonymous
// superclasses are not retained.
type class struct {
	About string `xml:"about,attr"`

	Label           []literal  `xml:"label"`
	HasOBONamespace []literal  `xml:"hasOBONamespace"`
	Deprecated      []literal  `xml:"deprecated"`
	SubClassOf      []resource `xml:"subClassOf"`
}

type literal struct {
	Text string `xml:",chardata"`
}

type resource struct {
	Resource string `xml:"resource,attr"`
}

func (c class) collect(dst []*rdf.Statement) ([]*rdf.Statement, error) {
	if c.About == "" {
		return dst, nil
	}
	subj, err := rdf.NewIRITerm(c.About)
	if err != nil {
		return dst, err
	}
	dst = append(dst, &rdf.Statement{Subject: subj, Predicate: rdfType, Object: owlClass})
	for _, p := range []struct {
		pred rdf.Term
		vals []literal
	}{
		{pred: label, vals: c.Label},
		{pred: hasOBONamespace, vals: c.HasOBONamespace},
		{pred: deprecated, vals: c.Deprecated},
	} {
		for _, v := range p.vals {
			obj, err := rdf.NewLiteralTerm(v.Text, "")
			if err != nil {
				return dst, err
			}
			dst = append(dst, &rdf.Statement{Subject: subj, Predicate: p.pred, Object: obj})
		}
	}
	for _, r := range c.SubClassOf {
		if r.Resource == "" {
			continue
		}
		obj, err := rdf.NewIRITerm(r.Resource)
		if err != nil {
			return dst, err
		}
		dst = append(dst, &rdf.Statement{Subject: subj, Predicate: subClassOf, Object: obj})
	}
	return dst, nil
}

func mustTerm(t rdf.Term, err error) rdf.Term {
	if err != nil {
		panic(err)
	}
	return t
}
