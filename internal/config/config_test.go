// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	const input = `
ontology = "go.nt.gz"
associations = "goa.nq.zst"
studies = ["up.txt", "down.txt"]
method = "topology-weighted"
evidence = ["IDA", "IMP"]
permutations = 1000
seed = 42
dot = true
`
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(input), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Config{
		Ontology:     "go.nt.gz",
		Associations: "goa.nq.zst",
		Studies:      []string{"up.txt", "down.txt"},
		Method:       "topology-weighted",
		Alpha:        0.05,
		Evidence:     []string{"IDA", "IMP"},
		Permutations: 1000,
		Seed:         42,
		Out:          ".",
		Dot:          true,
		CacheSize:    2,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected config:\ngot: %+v\nwant:%+v", got, want)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	for _, test := range []struct {
		name  string
		input string
		want  string
	}{
		{name: "syntax", input: `ontology = `, want: "failed to parse"},
		{name: "missing ontology", input: `associations = "a"
studies = ["s"]`, want: "ontology is required"},
		{name: "missing studies", input: `ontology = "o"
associations = "a"`, want: "at least one study"},
		{name: "bad method", input: `ontology = "o"
associations = "a"
studies = ["s"]
method = "parent-child"`, want: "unknown method"},
		{name: "bad alpha", input: `ontology = "o"
associations = "a"
studies = ["s"]
alpha = 1.5`, want: "alpha out of range"},
	} {
		path := filepath.Join(dir, strings.ReplaceAll(test.name, " ", "_")+".toml")
		err := os.WriteFile(path, []byte(test.input), 0o644)
		if err != nil {
			t.Fatal(err)
		}
		_, err = Load(path)
		if err == nil || !strings.Contains(err.Error(), test.want) {
			t.Errorf("unexpected error for %s: got:%v want:%s", test.name, err, test.want)
		}
	}

	_, err := Load(filepath.Join(dir, "missing.toml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.toml")
	err := os.WriteFile(path, []byte(`ontology = "go.nt"
alpha = 0.01
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := DefaultConfig()
	want.Ontology = "go.nt"
	want.Alpha = 0.01
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected config:\ngot: %+v\nwant:%+v", got, want)
	}
	if err = got.Validate(); err == nil {
		t.Error("expected validation error for partial config")
	}
}

func TestValidateMethod(t *testing.T) {
	for _, test := range []struct {
		method string
		valid  bool
	}{
		{method: "term-for-term", valid: true},
		{method: "tft", valid: true},
		{method: "Term For Term", valid: true},
		{method: "topology-weighted", valid: true},
		{method: "topology", valid: true},
		{method: "tw", valid: true},
		{method: "parent-child", valid: false},
		{method: "", valid: false},
	} {
		c := DefaultConfig()
		c.Ontology = "o"
		c.Associations = "a"
		c.Studies = []string{"s"}
		c.Method = test.method
		err := c.Validate()
		if (err == nil) != test.valid {
			t.Errorf("unexpected validation result for method %q: got:%v want valid:%t", test.method, err, test.valid)
		}
	}
}
