// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geneset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Read returns a GeneSet with the given name holding the genes listed
// in r. Each line holds a gene identifier, optionally followed by tab
// separated description and numeric value columns. Empty lines and
// lines starting with '#' are ignored. If a gene is listed more than
// once, the last attribute is retained.
func Read(r io.Reader, name string) (*GeneSet, error) {
	c := csv.NewReader(r)
	c.Comma = '\t'
	c.Comment = '#'
	c.FieldsPerRecord = -1
	c.LazyQuotes = true

	s := New(name)
	for {
		rec, err := c.Read()
		if err != nil {
			if err == io.EOF {
				return s, nil
			}
			return nil, err
		}
		gene := strings.TrimSpace(rec[0])
		if gene == "" {
			continue
		}
		var attr Attribute
		if len(rec) > 1 {
			attr.Description = strings.TrimSpace(rec[1])
		}
		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing value for %q in %q: %v", gene, name, err)
			}
			attr.Value = v
			attr.Valued = true
		}
		s.add(gene, attr)
	}
}
