// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enumeration

import (
	"reflect"
	"sort"
	"testing"

	"github.com/kortschak/enrich/internal/association"
	"github.com/kortschak/enrich/internal/ontology"
)

// testOntology returns the DAG
//
//  GO:0000001
//    |      \
//  GO:0000002 GO:0000004
//    |
//  GO:0000003
func testOntology(t *testing.T) *ontology.Ontology {
	t.Helper()
	o := ontology.New()
	for _, id := range []ontology.TermID{"GO:0000001", "GO:0000002", "GO:0000003", "GO:0000004"} {
		err := o.AddTerm(id, "", "biological_process")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for _, e := range [][2]ontology.TermID{
		{"GO:0000002", "GO:0000001"},
		{"GO:0000003", "GO:0000002"},
		{"GO:0000004", "GO:0000001"},
	} {
		err := o.AddIsA(e[0], e[1])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	err := o.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return o
}

func TestEnumerator(t *testing.T) {
	assoc := association.New()
	assoc.Add("g1", "GO:0000003", "IDA")
	assoc.Add("g2", "GO:0000002", "IEA")
	assoc.Add("g2", "GO:0000004", "IEA")
	assoc.Add("g3", "GO:0000009", "IDA")

	e := New(testOntology(t))
	item := func(name string) *association.Item {
		it, ok := assoc.Get(name)
		if !ok {
			t.Fatalf("missing test item %s", name)
		}
		return it
	}
	for _, test := range []struct {
		gene      string
		evidences map[string]bool
		want      bool
	}{
		{gene: "g1", want: true},
		{gene: "g2", evidences: map[string]bool{"IDA": true}, want: false},
		{gene: "g2", want: true},
		{gene: "g3", want: false},
	} {
		got := e.Push(item(test.gene), test.evidences)
		if got != test.want {
			t.Errorf("unexpected push result for %s with %v: got:%t want:%t", test.gene, test.evidences, got, test.want)
		}
	}
	e.AddUnannotated("g3")

	if !reflect.DeepEqual(e.Genes(), []string{"g1", "g2"}) {
		t.Errorf("unexpected genes: %v", e.Genes())
	}
	if !reflect.DeepEqual(e.Unannotated(), []string{"g3"}) {
		t.Errorf("unexpected unannotated genes: %v", e.Unannotated())
	}

	for _, test := range []struct {
		term   ontology.TermID
		direct []string
		total  []string
	}{
		{term: "GO:0000001", direct: nil, total: []string{"g1", "g2"}},
		{term: "GO:0000002", direct: []string{"g2"}, total: []string{"g1", "g2"}},
		{term: "GO:0000003", direct: []string{"g1"}, total: []string{"g1"}},
		{term: "GO:0000004", direct: []string{"g2"}, total: []string{"g2"}},
	} {
		a := e.Annotated(test.term)
		if !reflect.DeepEqual(a.Direct, test.direct) {
			t.Errorf("unexpected direct annotations for %s: got:%v want:%v", test.term, a.Direct, test.direct)
		}
		if !reflect.DeepEqual(a.Total, test.total) {
			t.Errorf("unexpected total annotations for %s: got:%v want:%v", test.term, a.Total, test.total)
		}
	}
	if e.Len() != 4 {
		t.Errorf("unexpected number of terms: got:%d want:4", e.Len())
	}
	if n := e.Annotated("GO:0000009").TotalCount(); n != 0 {
		t.Errorf("unexpected annotation count for unknown term: %d", n)
	}

	e.RemoveTerms(func(_ ontology.TermID, a *Annotations) bool {
		return a.TotalCount() < 2
	})
	got := append([]ontology.TermID(nil), e.Terms()...)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := []ontology.TermID{"GO:0000001", "GO:0000002"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected terms after removal: got:%v want:%v", got, want)
	}
	if e.Contains("GO:0000003") {
		t.Error("removed term still present")
	}
}
