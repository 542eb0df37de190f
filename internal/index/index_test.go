// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"reflect"
	"sort"
	"testing"

	"github.com/kortschak/enrich/internal/association"
	"github.com/kortschak/enrich/internal/enumeration"
	"github.com/kortschak/enrich/internal/ontology"
)

func TestIntersect(t *testing.T) {
	for _, test := range []struct {
		a, b []int
		want int
	}{
		{a: nil, b: nil, want: 0},
		{a: []int{1, 2, 3}, b: nil, want: 0},
		{a: []int{1, 2, 3}, b: []int{1, 2, 3}, want: 3},
		{a: []int{1, 3, 5, 7}, b: []int{2, 3, 4, 7, 9}, want: 2},
		{a: []int{0, 10, 20}, b: []int{5, 15, 25}, want: 0},
	} {
		got := Intersect(test.a, test.b)
		if got != test.want {
			t.Errorf("unexpected intersection of %v and %v: got:%d want:%d", test.a, test.b, got, test.want)
		}
		if rev := Intersect(test.b, test.a); rev != got {
			t.Errorf("intersection not symmetric for %v and %v: %d != %d", test.a, test.b, got, rev)
		}
	}
}

func TestIndex(t *testing.T) {
	o := ontology.New()
	for _, id := range []ontology.TermID{"GO:0000001", "GO:0000002", "GO:0000003"} {
		if err := o.AddTerm(id, "", ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := o.AddIsA("GO:0000002", "GO:0000001"); err != nil {
		t.Fatal(err)
	}
	if err := o.AddIsA("GO:0000003", "GO:0000001"); err != nil {
		t.Fatal(err)
	}
	if err := o.Build(); err != nil {
		t.Fatal(err)
	}

	assoc := association.New()
	assoc.Add("G1", "GO:0000002", "")
	assoc.Add("G2", "GO:0000003", "")
	assoc.Add("G3", "GO:0000002", "")
	assoc.AddSynonym("G3", "alias3")

	e := enumeration.New(o)
	for _, g := range []string{"G1", "G2", "G3"} {
		it, _ := assoc.Get(g)
		e.Push(it, nil)
	}

	idx := New(e)
	if idx.Len() != 3 {
		t.Errorf("unexpected number of terms: got:%d want:3", idx.Len())
	}
	if idx.Items() != 3 {
		t.Errorf("unexpected number of items: got:%d want:3", idx.Items())
	}
	for i := 0; i < idx.Items(); i++ {
		j, ok := idx.Lookup(idx.Gene(i), nil)
		if !ok || j != i {
			t.Errorf("gene index not bijective at %d: got:%d", i, j)
		}
	}

	for _, test := range []struct {
		term ontology.TermID
		want []string
	}{
		{term: "GO:0000001", want: []string{"G1", "G2", "G3"}},
		{term: "GO:0000002", want: []string{"G1", "G3"}},
		{term: "GO:0000003", want: []string{"G2"}},
	} {
		i, ok := idx.TermIndex(test.term)
		if !ok {
			t.Errorf("missing term %s", test.term)
			continue
		}
		items := idx.TermItems(i)
		if !sort.IntsAreSorted(items) {
			t.Errorf("term items not sorted for %s: %v", test.term, items)
		}
		var got []string
		for _, j := range items {
			got = append(got, idx.Gene(j))
		}
		sort.Strings(got)
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("unexpected genes for %s: got:%v want:%v", test.term, got, test.want)
		}
	}

	study, dropped := idx.StudyIndices([]string{"alias3", "G9", "G1"}, assoc)
	if dropped != 1 {
		t.Errorf("unexpected dropped count: got:%d want:1", dropped)
	}
	want := []int{0, 2}
	if !reflect.DeepEqual(study, want) {
		t.Errorf("unexpected study indices: got:%v want:%v", study, want)
	}
}

func TestCache(t *testing.T) {
	o := ontology.New()
	for _, id := range []ontology.TermID{"GO:0000001", "GO:0000002"} {
		if err := o.AddTerm(id, "", ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := o.AddIsA("GO:0000002", "GO:0000001"); err != nil {
		t.Fatal(err)
	}
	if err := o.Build(); err != nil {
		t.Fatal(err)
	}
	assoc := association.New()
	assoc.Add("G1", "GO:0000002", "")
	it, _ := assoc.Get("G1")

	a := enumeration.New(o)
	a.Push(it, nil)
	b := enumeration.New(o)
	b.Push(it, nil)

	c, err := NewCache(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx := c.Index(a)
	if c.Index(a) != idx {
		t.Error("index rebuilt for cached enumeration")
	}
	if c.Len() != 1 {
		t.Errorf("unexpected cache length: got:%d want:1", c.Len())
	}
	if c.Index(b) == idx {
		t.Error("index shared between distinct enumerations")
	}
	if c.Index(a) == idx {
		t.Error("evicted index returned")
	}

	_, err = NewCache(0)
	if err == nil {
		t.Error("expected error for zero cache size")
	}
}
