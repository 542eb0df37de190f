// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geneset

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/kortschak/enrich/internal/association"
	"github.com/kortschak/enrich/internal/enumeration"
	"github.com/kortschak/enrich/internal/ontology"
)

// chain returns the ontology GO:0000001 <- GO:0000002 <- GO:0000003
// and GO:0000001 <- GO:0000004.
func chain(t *testing.T) *ontology.Ontology {
	t.Helper()
	o := ontology.New()
	for _, id := range []ontology.TermID{"GO:0000001", "GO:0000002", "GO:0000003", "GO:0000004"} {
		if err := o.AddTerm(id, "", "biological_process"); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range [][2]ontology.TermID{
		{"GO:0000002", "GO:0000001"},
		{"GO:0000003", "GO:0000002"},
		{"GO:0000004", "GO:0000001"},
	} {
		if err := o.AddIsA(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	if err := o.Build(); err != nil {
		t.Fatal(err)
	}
	return o
}

func testAssociations() *association.Container {
	a := association.New()
	a.Add("G1", "GO:0000003", "IDA")
	a.Add("G2", "GO:0000002", "IEA")
	a.Add("G3", "GO:0000004", "IDA")
	a.Add("G3", "GO:0000002", "IEA")
	a.Add("G5", "GO:9999999", "IDA")
	a.AddSynonym("G1", "alias1")
	return a
}

func TestEnumerate(t *testing.T) {
	ont := chain(t)
	assoc := testAssociations()

	s := New("study")
	s.AddGenes("alias1", "G2", "G3", "G4", "G5")

	e := s.Enumerate(ont, assoc, nil)
	if e.Len() != 4 {
		t.Errorf("unexpected number of annotated terms: got:%d want:4", e.Len())
	}
	for _, test := range []struct {
		term   ontology.TermID
		direct []string
		total  []string
	}{
		{term: "GO:0000001", total: []string{"G1", "G2", "G3"}},
		{term: "GO:0000002", direct: []string{"G2", "G3"}, total: []string{"G1", "G2", "G3"}},
		{term: "GO:0000003", direct: []string{"G1"}, total: []string{"G1"}},
		{term: "GO:0000004", direct: []string{"G3"}, total: []string{"G3"}},
	} {
		a := e.Annotated(test.term)
		direct := append([]string(nil), a.Direct...)
		total := append([]string(nil), a.Total...)
		sort.Strings(direct)
		sort.Strings(total)
		if !reflect.DeepEqual(direct, test.direct) && !(len(direct) == 0 && len(test.direct) == 0) {
			t.Errorf("unexpected direct annotations for %s: got:%v want:%v", test.term, direct, test.direct)
		}
		if !reflect.DeepEqual(total, test.total) {
			t.Errorf("unexpected total annotations for %s: got:%v want:%v", test.term, total, test.total)
		}
	}
	if !reflect.DeepEqual(e.Genes(), []string{"G1", "G2", "G3"}) {
		t.Errorf("unexpected annotated genes: %v", e.Genes())
	}
	if !reflect.DeepEqual(e.Unannotated(), []string{"G4", "G5"}) {
		t.Errorf("unexpected unannotated genes: %v", e.Unannotated())
	}

	if again := s.Enumerate(ont, assoc, nil); again != e {
		t.Error("enumeration of unmodified set was not cached")
	}

	s.AddGenes("G6")
	if again := s.Enumerate(ont, assoc, nil); again == e {
		t.Error("enumeration cache not invalidated by mutation")
	}

	iea := s.Enumerate(ont, assoc, &EnumerateOptions{Evidences: []string{"IEA"}})
	if iea.Contains("GO:0000004") || iea.Contains("GO:0000003") {
		t.Errorf("evidence filter not applied: terms %v", iea.Terms())
	}

	removed := s.Enumerate(ont, association.New(), &EnumerateOptions{
		Remove: func(id ontology.TermID, _ *enumeration.Annotations) bool { return true },
	})
	if removed.Len() != 0 {
		t.Errorf("unexpected terms after removal: %v", removed.Terms())
	}
}

func TestFilters(t *testing.T) {
	assoc := testAssociations()
	assoc.AddObjectID("G2", "P2")

	s := New("study")
	s.Add("alias1", Attribute{Description: "first", Value: 0.5, Valued: true})
	s.Add("G1", Attribute{Description: "second", Value: 0.1, Valued: true})
	s.AddGenes("P2", "G4", "unknown")

	n := s.FilterDuplicates(assoc)
	if n != 1 {
		t.Errorf("unexpected number of duplicates: got:%d want:1", n)
	}
	if a, _ := s.Attribute("G1"); a.Description != "second" {
		t.Errorf("unexpected retained attribute: %+v", a)
	}

	r := s.FilterUnannotated(assoc)
	sort.Strings(r.Removed)
	if !reflect.DeepEqual(r.Removed, []string{"G4", "unknown"}) {
		t.Errorf("unexpected removed genes: %v", r.Removed)
	}
	if r.ObjectSymbol != 2 || r.ObjectID != 0 || r.Synonym != 0 {
		t.Errorf("unexpected resolution counts: %+v", r)
	}
	if !reflect.DeepEqual(s.Genes(), []string{"G1", "G2"}) {
		t.Errorf("unexpected genes after filtering: %v", s.Genes())
	}

	mapped, unmapped, discarded := s.ApplyMapping(map[string]string{"G1": "-", "G2": "G9"})
	if mapped != 1 || unmapped != 0 || discarded != 1 {
		t.Errorf("unexpected mapping counts: %d %d %d", mapped, unmapped, discarded)
	}
	if !reflect.DeepEqual(s.Genes(), []string{"G9"}) {
		t.Errorf("unexpected genes after mapping: %v", s.Genes())
	}
}

func TestRandomSubset(t *testing.T) {
	pop := New("population")
	const n = 50
	for i := 0; i < n; i++ {
		pop.AddGenes(fmt.Sprintf("G%02d", i))
	}

	const k = 10
	counts := make(map[string]int)
	const draws = 20000
	src := rand.NewSource(1)
	for i := 0; i < draws; i++ {
		sub, err := pop.RandomSubset(k, src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sub.Len() != k {
			t.Fatalf("unexpected subset size: got:%d want:%d", sub.Len(), k)
		}
		seen := make(map[string]bool)
		for _, g := range sub.Genes() {
			if seen[g] {
				t.Fatalf("duplicate gene %s in subset", g)
			}
			if !pop.Contains(g) {
				t.Fatalf("gene %s not in population", g)
			}
			seen[g] = true
			counts[g]++
		}
	}

	// Each gene is selected with probability k/n.
	want := float64(draws) * k / n
	sd := math.Sqrt(want * (1 - float64(k)/n))
	for g, c := range counts {
		if math.Abs(float64(c)-want) > 5*sd {
			t.Errorf("non-uniform selection of %s: got:%d want:%.0f±%.0f", g, c, want, 5*sd)
		}
	}

	a, _ := pop.RandomSubset(k, rand.NewSource(42))
	b, _ := pop.RandomSubset(k, rand.NewSource(42))
	if !reflect.DeepEqual(a.Genes(), b.Genes()) {
		t.Error("subsets from identical sources differ")
	}
	if a.Name() == b.Name() {
		t.Errorf("subset names not unique: %q", a.Name())
	}

	_, err := pop.RandomSubset(n+1, src)
	if err == nil {
		t.Error("expected error for oversized sample")
	}
}

func TestConcurrentMutationPanics(t *testing.T) {
	s := New("study")
	s.AddGenes("G1")
	s.mutating.Store(true)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for read during mutation")
		}
	}()
	s.Len()
}

func TestRead(t *testing.T) {
	const input = `# study set
G1	first gene	0.01
G2
G3	third

G1	replaced	0.5
`
	s, err := Read(strings.NewReader(input), "study")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(s.Genes(), []string{"G1", "G2", "G3"}) {
		t.Errorf("unexpected genes: %v", s.Genes())
	}
	a, _ := s.Attribute("G1")
	if a != (Attribute{Description: "replaced", Value: 0.5, Valued: true}) {
		t.Errorf("unexpected attribute: %+v", a)
	}
	if s.Description("G3") != "third" {
		t.Errorf("unexpected description: %q", s.Description("G3"))
	}
	if s.HasOnlyValued() {
		t.Error("unexpected all valued status")
	}
}
