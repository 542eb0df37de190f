// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package calculation implements ontology term enrichment
// calculations over study sets drawn from a population of genes.
//
// Two calculations are provided. The term-for-term calculation tests
// each annotated term independently with a one-sided hypergeometric
// test. The topology weighted calculation processes terms from the
// deepest annotated level towards the root, redistributing per-gene
// weights between related terms so that the signal of a gene set is
// attributed to the most specific significant terms.
package calculation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kortschak/enrich/internal/association"
	"github.com/kortschak/enrich/internal/geneset"
	"github.com/kortschak/enrich/internal/index"
	"github.com/kortschak/enrich/internal/ontology"
)

// Calculation is an enrichment calculation.
type Calculation interface {
	// Name returns the name of the calculation.
	Name() string

	// SupportsCorrection returns whether the
	// calculation's results may be subjected
	// to multiple test correction.
	SupportsCorrection() bool

	// CalculateStudySet returns the result
	// of the calculation for the study set.
	CalculateStudySet(ctx context.Context, ont *ontology.Ontology, assoc *association.Container, population, study *geneset.GeneSet, corr Correction) (*Result, error)
}

// indexCacheSize is the number of population indexes
// held by a calculation returned by ByName.
const indexCacheSize = 4

// ByName returns the calculation with the given name. Names are matched
// case-insensitively and may use hyphens or spaces as separators.
func ByName(name string, opts *geneset.EnumerateOptions) (Calculation, error) {
	switch strings.ToLower(strings.ReplaceAll(name, " ", "-")) {
	case "term-for-term", "tft":
		indexes, err := index.NewCache(indexCacheSize)
		if err != nil {
			return nil, err
		}
		return TermForTermMethod{Options: opts, Indexes: indexes}, nil
	case "topology-weighted", "topology", "tw":
		return TopologyWeighted{Options: opts}, nil
	default:
		return nil, fmt.Errorf("unknown calculation: %q", name)
	}
}
