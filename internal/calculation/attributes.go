// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package calculation

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/encoding"

	"github.com/kortschak/enrich/internal/ontology"
)

// AttributeProvider returns the DOT rendering attributes of a term.
type AttributeProvider interface {
	Attributes(id ontology.TermID) []encoding.Attribute
}

// Attributes returns an AttributeProvider that labels terms with their
// ID and name and, if counts is true, their annotation counts. Terms
// significant at alpha are filled with a colour whose hue depends on
// the namespace of the term and whose saturation decreases with rank.
// Significant terms without significant descendants are outlined.
func (r *Result) Attributes(alpha float64, counts bool) AttributeProvider {
	sorted := make([]*Property, len(r.props))
	copy(sorted, r.props)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PAdjusted != sorted[j].PAdjusted {
			return sorted[i].PAdjusted < sorted[j].PAdjusted
		}
		return sorted[i].P < sorted[j].P
	})

	a := nodeAttributes{
		result: r,
		alpha:  alpha,
		counts: counts,
		rank:   make(map[ontology.TermID]int, len(sorted)),
	}
	for i, p := range sorted {
		a.rank[p.Term] = i
		if p.Significant(alpha) {
			a.significant++
		}
	}
	return a
}

type nodeAttributes struct {
	result *Result
	alpha  float64
	counts bool

	rank        map[ontology.TermID]int
	significant int
}

func (a nodeAttributes) Attributes(id ontology.TermID) []encoding.Attribute {
	r := a.result
	term, _ := r.ont.Term(id)

	label := string(id)
	if term.Name != "" {
		label += "\n" + term.Name
	}
	prop, ok := r.Property(id)
	if ok && a.counts {
		label += fmt.Sprintf("\n%d/%d, %d/%d",
			prop.AnnotatedPopulationGenes, r.populationSize,
			prop.AnnotatedStudyGenes, r.studySize)
	}
	attrs := []encoding.Attribute{
		{Key: "shape", Value: "box"},
		{Key: "label", Value: label},
	}
	if !ok || !prop.Significant(a.alpha) {
		return attrs
	}

	extremal := true
	r.ont.WalkToSinks(r.ont.Children(id), func(t ontology.TermID) bool {
		p, ok := r.Property(t)
		if ok && p.Significant(a.alpha) {
			extremal = false
			return false
		}
		return true
	})

	rank := a.rank[id]
	if rank >= a.significant {
		panic(fmt.Sprintf("calculation: rank of significant term %s out of range: %d >= %d", id, rank, a.significant))
	}
	saturation := 1 - (float64(rank+1)/float64(a.significant))*0.8
	style := "filled"
	if extremal {
		style += ",setlinewidth(3)"
	}
	return append(attrs,
		encoding.Attribute{Key: "gradientangle", Value: "270"},
		encoding.Attribute{Key: "style", Value: style},
		encoding.Attribute{Key: "fillcolor", Value: fmt.Sprintf("white:%f,%f,%f", namespaceHue(term.Namespace), saturation, 1.0)},
	)
}

// namespaceHue returns the fill hue for terms in the given namespace.
func namespaceHue(ns string) float64 {
	switch ns {
	case "molecular_function":
		return 60.0 / 360
	case "cellular_component":
		return 300.0 / 360
	default:
		// biological_process and unknown.
		return 120.0 / 360
	}
}
