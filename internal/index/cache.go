// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kortschak/enrich/internal/enumeration"
)

// Cache holds the indexes of recently used population enumerations.
// Since a population enumeration is only rebuilt when the population,
// ontology, associations or enumeration options change, an index held
// for an enumeration is valid for as long as the enumeration is in use.
// A Cache is safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	cache *lru.Cache[*enumeration.Enumerator, *Index]
}

// NewCache returns a Cache holding up to size indexes.
func NewCache(size int) (*Cache, error) {
	c, err := lru.New[*enumeration.Enumerator, *Index](size)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	return &Cache{cache: c}, nil
}

// Index returns the index for the population enumeration e, building
// it if it is not held by the cache.
func (c *Cache) Index(e *enumeration.Enumerator) *Index {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.cache.Get(e)
	if ok {
		return idx
	}
	idx = New(e)
	c.cache.Add(e, idx)
	return idx
}

// Len returns the number of indexes held by the cache.
func (c *Cache) Len() int { return c.cache.Len() }
