// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package input

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const text = `<obo:GO_0000002> <rdfs:subClassOf> <obo:GO_0000001> .
<obo:GO_0000001> <rdfs:label> "biological_process" .
`

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "ontology.nt")
	err := os.WriteFile(plain, []byte(text), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	gz := filepath.Join(dir, "ontology.nt.gz")
	f, err := os.Create(gz)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	_, err = io.WriteString(gw, text)
	if err != nil {
		t.Fatal(err)
	}
	if err = gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err = f.Close(); err != nil {
		t.Fatal(err)
	}

	zst := filepath.Join(dir, "ontology.nt.zst")
	f, err = os.Create(zst)
	if err != nil {
		t.Fatal(err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	_, err = io.WriteString(zw, text)
	if err != nil {
		t.Fatal(err)
	}
	if err = zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err = f.Close(); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{plain, gz, zst} {
		r, err := Open(path)
		if err != nil {
			t.Errorf("unexpected error opening %s: %v", path, err)
			continue
		}
		got, err := io.ReadAll(r)
		if err != nil {
			t.Errorf("unexpected error reading %s: %v", path, err)
		}
		if string(got) != text {
			t.Errorf("unexpected content for %s:\ngot: %q\nwant:%q", path, got, text)
		}
		if err = r.Close(); err != nil {
			t.Errorf("unexpected error closing %s: %v", path, err)
		}
	}

	_, err = Open(filepath.Join(dir, "missing.nt"))
	if !os.IsNotExist(err) {
		t.Errorf("unexpected error for missing file: %v", err)
	}

	bad := filepath.Join(dir, "bad.gz")
	err = os.WriteFile(bad, []byte(text), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Open(bad)
	if err == nil {
		t.Error("expected error for invalid gzip stream")
	}
}

func TestUncompressed(t *testing.T) {
	for _, test := range []struct {
		path string
		want string
	}{
		{path: "go.owl.gz", want: "go.owl"},
		{path: "dir/goa.nq.zst", want: "dir/goa.nq"},
		{path: "study.txt", want: "study.txt"},
		{path: "archive.gz.txt", want: "archive.gz.txt"},
	} {
		got := Uncompressed(test.path)
		if got != test.want {
			t.Errorf("unexpected path for %q: got:%q want:%q", test.path, got, test.want)
		}
	}
}
