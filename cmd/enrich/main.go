// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// enrich performs ontology term enrichment analysis of study gene sets
// against a population gene set, writing a tsv table of term
// p-values for each study set to the output directory. It logs study
// genes that do not have term annotations to stderr.
//
// The ontology is expected to be in Gene Ontology OBO in OWL format,
// indicated by an .owl extension, or in RDF N-Triples or N-Quads, with
// either full IRIs or local prefixes, for example:
//
//  <obo:GO_0000002> <rdfs:subClassOf> <obo:GO_0000001> .
//  <obo:GO_0000002> <rdfs:label> "child term" .
//  <obo:GO_0000002> <oboInOwl:hasOBONamespace> "biological_process" .
//
// The gene to term associations are expected to be in RDF N-Quads in
// the form:
//
//  <obo:GO_0000000> <local:annotates> <ensembl:ENSG00000000000> <evidence:IEA> .
//  <ensembl:ENSG00000000000> <local:synonym> "SYMBOL" .
//
// for each term annotation and gene synonym. Input files may be gzip
// or zstd compressed, indicated by a .gz or .zst extension.
//
// Study and population sets are lists of gene names, one per line,
// optionally followed by tab separated description and value columns.
// If no population is given, all genes with associations are used.
//
// Options may be given in a TOML configuration file. Options set on
// the command line take precedence over the configuration file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pbenner/threadpool"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kortschak/enrich/internal/association"
	"github.com/kortschak/enrich/internal/calculation"
	"github.com/kortschak/enrich/internal/config"
	"github.com/kortschak/enrich/internal/geneset"
	"github.com/kortschak/enrich/internal/input"
	"github.com/kortschak/enrich/internal/workset"
)

func main() {
	def := config.DefaultConfig()
	var (
		cfgpath   = flag.String("config", "", "specify a TOML configuration file")
		ontopath  = flag.String("ontology", "", "specify the ontology file (.owl/.nt/.nq[.gz|.zst] - required)")
		assocpath = flag.String("associations", "", "specify the gene to term associations (.nq[.gz|.zst] - required)")
		poppath   = flag.String("population", "", "specify the population gene set (default all associated genes)")
		studies   = flag.String("studies", "", "specify comma separated study gene set files (required)")
		method    = flag.String("method", def.Method, "specify the calculation (term-for-term or topology-weighted)")
		alpha     = flag.Float64("alpha", def.Alpha, "specify the significance level")
		evidence  = flag.String("evidence", "", "specify comma separated evidence codes to use (default all)")
		perms     = flag.Int("permutations", def.Permutations, "specify the number of permutations for the minimum p null (term-for-term only)")
		seed      = flag.Uint64("seed", def.Seed, "specify the permutation seed")
		threads   = flag.Int("threads", def.Threads, "specify the number of permutation threads (0 uses all CPUs)")
		out       = flag.String("out", def.Out, "specify the output directory")
		dotOut    = flag.Bool("dot", def.Dot, "write DOT graphs of significant terms")
		plots     = flag.Bool("plots", def.Plots, "write p-value plots")
		help      = flag.Bool("help", false, "print help text")
	)
	flag.Parse()

	if *help {
		flag.Usage()
		fmt.Fprintf(os.Stderr, `
%s performs ontology term enrichment analysis of study gene sets
against a population gene set, writing a tsv table of term p-values
for each study set to the output directory.

The ontology is expected to be in OBO in OWL format (.owl) or RDF
N-Triples or N-Quads. The OWL file can be obtained from
http://current.geneontology.org/ontology/go.owl. The gene to term
associations in RDF N-Quads in the form:

 <obo:GO_0000000> <local:annotates> <ensembl:ENSG00000000000> <evidence:IEA> .

Input files may be gzip or zstd compressed.

Copyright ©2020 Dan Kortschak. All rights reserved.

`, filepath.Base(os.Args[0]))
		os.Exit(0)
	}

	cfg := def
	visit := flag.VisitAll
	if *cfgpath != "" {
		var err error
		cfg, err = config.Read(*cfgpath)
		if err != nil {
			log.Fatal(err)
		}
		// Only flags set on the command line
		// override the configuration file.
		visit = flag.Visit
	}
	override := map[string]func(){
		"ontology":     func() { cfg.Ontology = *ontopath },
		"associations": func() { cfg.Associations = *assocpath },
		"population":   func() { cfg.Population = *poppath },
		"studies":      func() { cfg.Studies = splitList(*studies) },
		"method":       func() { cfg.Method = *method },
		"alpha":        func() { cfg.Alpha = *alpha },
		"evidence":     func() { cfg.Evidence = splitList(*evidence) },
		"permutations": func() { cfg.Permutations = *perms },
		"seed":         func() { cfg.Seed = *seed },
		"threads":      func() { cfg.Threads = *threads },
		"out":          func() { cfg.Out = *out },
		"dot":          func() { cfg.Dot = *dotOut },
		"plots":        func() { cfg.Plots = *plots },
	}
	visit(func(f *flag.Flag) {
		if set, ok := override[f.Name]; ok {
			set()
		}
	})
	err := cfg.Validate()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	log.Println(os.Args)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = run(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	f := strings.Split(s, ",")
	for i, e := range f {
		f[i] = strings.TrimSpace(e)
	}
	return f
}

func run(ctx context.Context, cfg *config.Config) error {
	pr := message.NewPrinter(language.English)

	for _, d := range []string{
		cfg.Out,
		filepath.Join(cfg.Out, "plots"),
	} {
		if d != cfg.Out && !cfg.Plots {
			continue
		}
		err := os.MkdirAll(d, 0o755)
		if err != nil {
			return err
		}
	}

	loader, err := workset.NewLoader(cfg.CacheSize)
	if err != nil {
		return err
	}
	loader.Start()
	defer loader.Stop()

	log.Println("[loading work set]")
	data, err := loader.Obtain(ctx, workset.WorkSet{
		Name:         filepath.Base(cfg.Ontology),
		Ontology:     cfg.Ontology,
		Associations: cfg.Associations,
	}, loadProgress{})
	if err != nil {
		return fmt.Errorf("failed to load work set: %w", err)
	}
	ont, assoc := data.Ontology, data.Associations
	log.Print(pr.Sprintf("loaded %d terms and %d annotated genes", ont.Len(), assoc.Len()))

	log.Println("[reading population]")
	population, err := readPopulation(cfg.Population, assoc)
	if err != nil {
		return fmt.Errorf("failed to read population: %w", err)
	}
	log.Print(pr.Sprintf("population %s has %d genes", population.Name(), population.Len()))

	opts := &geneset.EnumerateOptions{Evidences: cfg.Evidence}
	calc, err := calculation.ByName(cfg.Method, opts)
	if err != nil {
		return err
	}

	var pool threadpool.ThreadPool
	if cfg.Permutations != 0 {
		n := cfg.Threads
		if n == 0 {
			n = runtime.NumCPU()
		}
		pool = threadpool.New(n, 100*n)
	}

	for _, path := range cfg.Studies {
		log.Printf("[reading study set %s]", path)
		study, err := readGeneSet(path, studyName(path))
		if err != nil {
			return fmt.Errorf("failed to read study set: %w", err)
		}
		if n := study.FilterDuplicates(assoc); n != 0 {
			log.Print(pr.Sprintf("removed %d duplicate genes from %s", n, study.Name()))
		}
		res := study.FilterUnannotated(assoc)
		for _, g := range res.Removed {
			log.Printf("no annotation for %s in %s", g, study.Name())
		}
		log.Print(pr.Sprintf("%s: %d genes resolved by symbol, %d by object ID and %d by synonym",
			study.Name(), res.ObjectSymbol, res.ObjectID, res.Synonym))
		var missing []string
		for _, g := range study.Genes() {
			if !population.Contains(g) {
				missing = append(missing, g)
			}
		}
		if len(missing) != 0 {
			log.Print(pr.Sprintf("adding %d study genes to population", len(missing)))
			population.AddGenes(missing...)
		}

		log.Printf("[calculating %s enrichment for %s]", calc.Name(), study.Name())
		switch c := calc.(type) {
		case calculation.TermForTermMethod:
			c.Progress = &termProgress{name: study.Name()}
			calc = c
		case calculation.TopologyWeighted:
			c.Progress = &levelProgress{name: study.Name()}
			calc = c
		}
		result, err := calc.CalculateStudySet(ctx, ont, assoc, population, study, calculation.None{})
		if err != nil {
			return fmt.Errorf("failed to calculate enrichment for %s: %w", study.Name(), err)
		}
		sig := result.Significant(cfg.Alpha)
		log.Print(pr.Sprintf("%d of %d terms significant at alpha=%v", len(sig), result.Len(), cfg.Alpha))

		threshold := 0.0
		if cfg.Permutations != 0 {
			if m, ok := calc.(calculation.TermForTermMethod); ok {
				log.Printf("[building minimum p null for %s]", study.Name())
				tft := m.Calculator(ont, assoc, population, study)
				null, err := calculation.MinPNull(ctx, tft, cfg.Permutations, cfg.Seed, pool)
				if err != nil {
					return fmt.Errorf("failed to build null for %s: %w", study.Name(), err)
				}
				threshold = calculation.NullQuantile(null, cfg.Alpha)
				log.Print(pr.Sprintf("%d permutation threshold: p < %v", cfg.Permutations, threshold))
			} else {
				log.Printf("permutation null not supported by %s", calc.Name())
			}
		}

		log.Printf("[writing results for %s]", study.Name())
		err = writeTable(filepath.Join(cfg.Out, study.Name()+".tsv"), result, threshold)
		if err != nil {
			return err
		}
		if cfg.Dot {
			err = writeDOT(filepath.Join(cfg.Out, study.Name()+".dot"), result, cfg.Alpha)
			if err != nil {
				return err
			}
		}
		if cfg.Plots {
			err = plotPValues(filepath.Join(cfg.Out, "plots"), result, cfg.Alpha, threshold)
			if err != nil {
				log.Println(err)
			}
		}
	}
	return nil
}

// readPopulation returns the population gene set at path, or all the
// genes of assoc if path is empty.
func readPopulation(path string, assoc *association.Container) (*geneset.GeneSet, error) {
	if path == "" {
		s := geneset.New("population")
		s.AddGenes(assoc.Genes()...)
		return s, nil
	}
	s, err := readGeneSet(path, studyName(path))
	if err != nil {
		return nil, err
	}
	s.FilterDuplicates(assoc)
	return s, nil
}

func readGeneSet(path, name string) (*geneset.GeneSet, error) {
	f, err := input.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return geneset.Read(f, name)
}

// studyName returns the base name of path without compression and
// file type extensions.
func studyName(path string) string {
	name := filepath.Base(input.Uncompressed(path))
	return strings.TrimSuffix(name, filepath.Ext(name))
}
