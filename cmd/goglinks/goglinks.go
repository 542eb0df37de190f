// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// goglinks maps Ensembl ENSG gene identifiers to GO terms based on
// Ensembl database cross-reference data, writing the gene to term
// associations and gene symbol synonyms read by enrich.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/formats/rdf"

	"github.com/kortschak/gogo"

	"github.com/kortschak/enrich/internal/input"
)

func main() {
	var (
		orgPath  = flag.String("org", "", "specify the Ensembl organism data (.nt/.nq[.gz|.zst] - required)")
		xrefPath = flag.String("xref", "", "specify the Ensembl xref data (.nt/.nq[.gz|.zst] - required)")
		evidence = flag.String("evidence", "IEA", "specify the evidence code to label associations with (empty for none)")
		help     = flag.Bool("help", false, "print help text")
	)

	flag.Parse()

	if *help {
		flag.Usage()
		fmt.Fprintf(os.Stderr, `
%s maps ENSG identifiers to GO terms based on Ensembl cross-reference
data. It outputs the mapping as RDF quads in the form:

 <obo:GO_0000000> <local:annotates> <ensembl:ENSG00000000000> <evidence:IEA> .

for each GO term to Ensembl gene annotation, and

 <ensembl:ENSG00000000000> <local:synonym> "SYMBOL" .

for each labelled gene.

Input data can be obtained from ftp://ftp.ensembl.org/pub/current_rdf
in Turtle format. These files must first be converted to N-Triples.

Input files may be gzip or zstd compressed and the output is written
uncompressed to standard output.

Copyright ©2020 Dan Kortschak. All rights reserved.

`, filepath.Base(os.Args[0]))
		os.Exit(0)
	}

	if *orgPath == "" || *xrefPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	log.Println(os.Args)
	g := gogo.NewGraph()
	for _, path := range []string{*orgPath, *xrefPath} {
		log.Printf("[loading %s]", path)
		r, err := input.Open(path)
		if err != nil {
			log.Fatal(err)
		}
		err = decodeInto(g, r)
		r.Close()
		if err != nil {
			log.Fatalf("error during decoding %s: %v", path, err)
		}
	}

	log.Println("[writing links]")
	w := bufio.NewWriter(os.Stdout)
	err := writeLinks(w, g, *evidence)
	if err != nil {
		log.Fatal(err)
	}
	err = w.Flush()
	if err != nil {
		log.Fatal(err)
	}
}

const (
	ensemblGene       = "<http://rdf.ebi.ac.uk/resource/ensembl/"
	ensemblTranscript = "<http://rdf.ebi.ac.uk/resource/ensembl.transcript/"
	identifiersGO     = "<http://identifiers.org/go/GO:"

	transcribedFrom = "<obo:SO_transcribed_from>"
	seeAlso         = "<rdfs:seeAlso>"
	label           = "<rdfs:label>"
)

// decodeInto adds the transcript, GO cross-reference and gene label
// statements in the RDF N-Triples or N-Quads in r to g, in their
// local namespace form.
func decodeInto(g *gogo.Graph, r io.Reader) error {
	dec := rdf.NewDecoder(r)
	for {
		s, err := dec.Unmarshal()
		if err != nil {
			if err != io.EOF {
				return err
			}
			return nil
		}

		switch s.Predicate.Value {
		case transcribedFrom:
		case "<http://purl.obolibrary.org/obo/SO_transcribed_from>":
			s.Subject.Value = "<transcript:" + strings.TrimPrefix(s.Subject.Value, ensemblTranscript)
			s.Predicate.Value = transcribedFrom
			s.Object.Value = "<ensembl:" + strings.TrimPrefix(s.Object.Value, ensemblGene)
		case seeAlso:
		case "<http://www.w3.org/2000/01/rdf-schema#seeAlso>":
			if !strings.HasPrefix(s.Object.Value, identifiersGO) {
				continue
			}
			s.Subject.Value = "<transcript:" + strings.TrimPrefix(s.Subject.Value, ensemblTranscript)
			s.Predicate.Value = seeAlso
			s.Object.Value = "<obo:GO_" + strings.TrimPrefix(s.Object.Value, identifiersGO)
		case label:
		case "<http://www.w3.org/2000/01/rdf-schema#label>":
			if !strings.HasPrefix(s.Subject.Value, ensemblGene) {
				continue
			}
			s.Subject.Value = "<ensembl:" + strings.TrimPrefix(s.Subject.Value, ensemblGene)
			s.Predicate.Value = label
		default:
			continue
		}

		s.Subject.UID = 0
		s.Predicate.UID = 0
		s.Object.UID = 0
		s.Label = rdf.Term{}

		g.AddStatement(s)
	}
}

// writeLinks writes the GO term annotations of each Ensembl gene in g,
// reached through the gene's transcripts, and the gene's label as a
// synonym. Genes are written in lexical order.
func writeLinks(w io.Writer, g *gogo.Graph, evidence string) error {
	var genes []rdf.Term
	nodes := g.Nodes()
	for nodes.Next() {
		gene := nodes.Node().(rdf.Term)
		if strings.HasPrefix(gene.Value, "<ensembl:") {
			genes = append(genes, gene)
		}
	}
	sort.Slice(genes, func(i, j int) bool { return genes[i].Value < genes[j].Value })

	var evidenceLabel rdf.Term
	if evidence != "" {
		evidenceLabel = rdf.Term{Value: "<evidence:" + evidence + ">"}
	}
	for _, gene := range genes {
		// We are emitting directly, so we need to ensure statement
		// uniqueness. A seen per start node is enough for this.
		seen := make(map[int64]bool)

		// Get all GO terms reachable from the ENSG via an ENST
		// since that is how the Ensembl GO annotation work.
		terms := g.Query(gene).In(func(s *rdf.Statement) bool {
			// <transcript:Y> <obo:SO_transcribed_from> <ensembl:X> .
			return s.Predicate.Value == transcribedFrom

		}).Out(func(s *rdf.Statement) bool {
			if seen[s.Object.UID] {
				return false
			}

			// <transcript:Y> <rdfs:seeAlso> <obo:GO_Z> .
			ok := s.Predicate.Value == seeAlso &&
				strings.HasPrefix(s.Object.Value, "<obo:GO_")
			if ok {
				seen[s.Object.UID] = true
			}
			return ok

		}).Result()
		sort.Slice(terms, func(i, j int) bool { return terms[i].Value < terms[j].Value })

		for _, t := range terms {
			_, err := fmt.Fprintln(w, &rdf.Statement{
				Subject:   rdf.Term{Value: t.Value},
				Predicate: rdf.Term{Value: "<local:annotates>"},
				Object:    rdf.Term{Value: gene.Value},
				Label:     evidenceLabel,
			})
			if err != nil {
				return err
			}
		}

		names := g.Query(gene).Out(func(s *rdf.Statement) bool {
			return s.Predicate.Value == label
		}).Result()
		sort.Slice(names, func(i, j int) bool { return names[i].Value < names[j].Value })
		for _, n := range names {
			_, err := fmt.Fprintln(w, &rdf.Statement{
				Subject:   rdf.Term{Value: gene.Value},
				Predicate: rdf.Term{Value: "<local:synonym>"},
				Object:    rdf.Term{Value: n.Value},
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
