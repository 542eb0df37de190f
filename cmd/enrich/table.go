// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/kortschak/enrich/internal/calculation"
)

// writeTable writes the properties of r to path as a tsv table ordered
// by adjusted p-value. If threshold is positive, a column reporting
// whether each term's raw p-value is below the permutation threshold
// is included.
func writeTable(path string, r *calculation.Result, threshold float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	err = formatTable(w, r, threshold)
	if err != nil {
		return err
	}
	return w.Flush()
}

func formatTable(w io.Writer, r *calculation.Result, threshold float64) error {
	header := []string{
		"ID", "Pop.total", "Pop.term", "Study.total", "Study.term",
		"p", "p.adjusted", "p.min", "is.trivial",
	}
	if threshold > 0 {
		header = append(header, "p.null.significant")
	}
	header = append(header, "name")
	_, err := fmt.Fprintf(w, "%s\n", strings.Join(header, "\t"))
	if err != nil {
		return err
	}

	ont := r.Ontology()
	for _, p := range sortedProperties(r) {
		term, _ := ont.Term(p.Term)
		_, err = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%v\t%v\t%v\t%t",
			p.Term,
			r.PopulationSize(), p.AnnotatedPopulationGenes,
			r.StudySize(), p.AnnotatedStudyGenes,
			p.P, p.PAdjusted, p.PMin, p.Ignore,
		)
		if err != nil {
			return err
		}
		if threshold > 0 {
			_, err = fmt.Fprintf(w, "\t%t", !p.Ignore && p.P < threshold)
			if err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, "\t%q\n", term.Name)
		if err != nil {
			return err
		}
	}
	return nil
}

// sortedProperties returns the properties of r ordered by adjusted
// p-value, raw p-value and then term.
func sortedProperties(r *calculation.Result) []*calculation.Property {
	props := make([]*calculation.Property, 0, r.Len())
	for _, p := range r.Properties() {
		props = append(props, p)
	}
	sort.Slice(props, func(i, j int) bool {
		switch {
		case props[i].PAdjusted != props[j].PAdjusted:
			return props[i].PAdjusted < props[j].PAdjusted
		case props[i].P != props[j].P:
			return props[i].P < props[j].P
		default:
			return props[i].Term < props[j].Term
		}
	})
	return props
}
