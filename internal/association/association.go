// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package association provides the mapping between gene identifiers
// and the ontology terms they are annotated to.
package association

import (
	"io"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/formats/rdf"

	"github.com/kortschak/enrich/internal/ontology"
)

// Association is a single annotation of a gene to a term.
type Association struct {
	Term     ontology.TermID
	Evidence string
}

// Item holds all the associations of a gene under its canonical name.
type Item struct {
	Name         string
	Associations []Association
}

// Container holds gene to term associations along with the synonyms
// and object identifiers that can be used to refer to the genes.
// A Container is safe for concurrent use once it is no longer being
// modified.
type Container struct {
	items    map[string]*Item
	synonyms map[string]string
	objectID map[string]string
}

// New returns a new empty Container.
func New() *Container {
	return &Container{
		items:    make(map[string]*Item),
		synonyms: make(map[string]string),
		objectID: make(map[string]string),
	}
}

// Add adds an association between gene and term with the given evidence
// code. Duplicate associations are ignored.
func (c *Container) Add(gene string, term ontology.TermID, evidence string) {
	it, ok := c.items[gene]
	if !ok {
		it = &Item{Name: gene}
		c.items[gene] = it
	}
	a := Association{Term: term, Evidence: evidence}
	for _, e := range it.Associations {
		if e == a {
			return
		}
	}
	it.Associations = append(it.Associations, a)
}

// AddSynonym records syn as a synonym of gene.
func (c *Container) AddSynonym(gene, syn string) {
	if syn == gene {
		return
	}
	c.synonyms[syn] = gene
}

// AddObjectID records id as the database object identifier of gene.
func (c *Container) AddObjectID(gene, id string) {
	if id == gene {
		return
	}
	c.objectID[id] = gene
}

// Get returns the associations for the gene referred to by name. The
// name is resolved as an object symbol, then an object identifier and
// then a synonym.
func (c *Container) Get(name string) (*Item, bool) {
	if it, ok := c.items[name]; ok {
		return it, true
	}
	if g, ok := c.objectID[name]; ok {
		it, ok := c.items[g]
		return it, ok
	}
	if g, ok := c.synonyms[name]; ok {
		it, ok := c.items[g]
		return it, ok
	}
	return nil, false
}

// Name returns the canonical object symbol for name.
func (c *Container) Name(name string) (string, bool) {
	it, ok := c.Get(name)
	if !ok {
		return "", false
	}
	return it.Name, true
}

// IsObjectSymbol returns whether name is a canonical object symbol.
func (c *Container) IsObjectSymbol(name string) bool {
	_, ok := c.items[name]
	return ok
}

// IsObjectID returns whether name is an object identifier.
func (c *Container) IsObjectID(name string) bool {
	_, ok := c.objectID[name]
	return ok
}

// IsSynonym returns whether name is a synonym.
func (c *Container) IsSynonym(name string) bool {
	_, ok := c.synonyms[name]
	return ok
}

// Len returns the number of annotated genes.
func (c *Container) Len() int { return len(c.items) }

// Genes returns the canonical names of all annotated genes in lexical
// order.
func (c *Container) Genes() []string {
	genes := make([]string, 0, len(c.items))
	for g := range c.items {
		genes = append(genes, g)
	}
	sort.Strings(genes)
	return genes
}

const (
	annotates = "<local:annotates>"
	synonym   = "<local:synonym>"
	objectID  = "<local:objectID>"

	genePrefix     = "<ensembl:"
	termPrefix     = "<obo:"
	evidencePrefix = "<evidence:"
)

// Decode returns a Container holding the associations in the RDF
// N-Triples or N-Quads in r. The statements are expected to have
// local IRI namespaces and be in the following forms:
//
//   <obo:GO_0000000> <local:annotates> <ensembl:ENSG00000000000> <evidence:IEA> .
//   <ensembl:ENSG00000000000> <local:synonym> "SYMBOL" .
//   <ensembl:ENSG00000000000> <local:objectID> "ID" .
//
// The graph label of an annotation is the optional evidence code.
// Other statements are ignored.
func Decode(r io.Reader) (*Container, error) {
	c := New()
	dec := rdf.NewDecoder(r)
	for {
		s, err := dec.Unmarshal()
		if err != nil {
			if err == io.EOF {
				return c, nil
			}
			return nil, err
		}

		switch s.Predicate.Value {
		case annotates:
			if !strings.HasPrefix(s.Subject.Value, termPrefix) || !strings.HasPrefix(s.Object.Value, genePrefix) {
				continue
			}
			term := ontology.TermID(strings.Replace(strip(s.Subject.Value, termPrefix, ">"), "_", ":", 1))
			var evidence string
			if strings.HasPrefix(s.Label.Value, evidencePrefix) {
				evidence = strip(s.Label.Value, evidencePrefix, ">")
			}
			c.Add(strip(s.Object.Value, genePrefix, ">"), term, evidence)
		case synonym, objectID:
			if !strings.HasPrefix(s.Subject.Value, genePrefix) {
				continue
			}
			text, _, kind, err := s.Object.Parts()
			if err != nil {
				return nil, err
			}
			if kind != rdf.Literal {
				continue
			}
			gene := strip(s.Subject.Value, genePrefix, ">")
			if s.Predicate.Value == synonym {
				c.AddSynonym(gene, text)
			} else {
				c.AddObjectID(gene, text)
			}
		}
	}
}

func strip(s, prefix, suffix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, prefix), suffix)
}
