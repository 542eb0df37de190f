// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package workset provides loading and caching of the ontology and
// association data needed by an enrichment analysis.
package workset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kortschak/enrich/internal/association"
	"github.com/kortschak/enrich/internal/input"
	"github.com/kortschak/enrich/internal/ontology"
)

// ErrStopped is returned for requests made to a Loader that is not
// running.
var ErrStopped = errors.New("workset: loader not running")

// WorkSet names the ontology and association files of an analysis.
type WorkSet struct {
	Name         string
	Ontology     string
	Associations string
}

func (ws WorkSet) key() key { return key{ontology: ws.Ontology, associations: ws.Associations} }

type key struct {
	ontology     string
	associations string
}

// Data is the loaded data of a WorkSet.
type Data struct {
	Ontology     *ontology.Ontology
	Associations *association.Container
}

// Progress receives coarse progress of work set loading.
// Implementations must not block.
type Progress interface {
	InitGauge(max int)
	UpdateGauge(current int)
	Message(text string)
}

type nopProgress struct{}

func (nopProgress) InitGauge(int)   {}
func (nopProgress) UpdateGauge(int) {}
func (nopProgress) Message(string)  {}

// Loader loads work sets on a single goroutine, holding recently used
// data in a cache. A Loader must be started with Start before use and
// stopped with Stop when it is no longer needed.
type Loader struct {
	cache *lru.Cache[key, *Data]

	// load is the work set loader. It is
	// replaceable for testing.
	load func(context.Context, WorkSet, Progress) (*Data, error)

	mu       sync.Mutex
	requests chan request
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

type op int

const (
	obtain op = iota
	release
	clean
)

type request struct {
	op       op
	ctx      context.Context
	ws       WorkSet
	progress Progress
	reply    chan<- reply
}

type reply struct {
	data *Data
	err  error
}

// NewLoader returns a new Loader holding at most size loaded work sets.
func NewLoader(size int) (*Loader, error) {
	cache, err := lru.New[key, *Data](size)
	if err != nil {
		return nil, fmt.Errorf("workset: %w", err)
	}
	return &Loader{cache: cache, load: Load}, nil
}

// Start starts the loader. Calling Start on a running loader is a no-op.
func (l *Loader) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.requests != nil {
		return
	}
	l.requests = make(chan request)
	l.done = make(chan struct{})
	l.ctx, l.cancel = context.WithCancel(context.Background())
	go l.run(l.ctx, l.requests, l.done)
}

// Stop stops the loader, waiting for any load in progress to complete.
// Requests made after Stop return ErrStopped until the loader is
// started again. Cached data is retained.
func (l *Loader) Stop() {
	l.mu.Lock()
	if l.requests == nil {
		l.mu.Unlock()
		return
	}
	l.cancel()
	done := l.done
	l.requests = nil
	l.mu.Unlock()
	<-done
}

func (l *Loader) run(ctx context.Context, requests <-chan request, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-requests:
			var rep reply
			switch req.op {
			case obtain:
				rep.data, rep.err = l.obtain(ctx, req)
			case release:
				l.cache.Remove(req.ws.key())
			case clean:
				l.cache.Purge()
			}
			req.reply <- rep
		}
	}
}

func (l *Loader) obtain(ctx context.Context, req request) (*Data, error) {
	k := req.ws.key()
	if d, ok := l.cache.Get(k); ok {
		return d, nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-req.ctx.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	d, err := l.load(ctx, req.ws, req.progress)
	if err != nil {
		return nil, err
	}
	l.cache.Add(k, d)
	return d, nil
}

// send passes the request to the loader goroutine and waits for its
// reply.
func (l *Loader) send(ctx context.Context, req request) (*Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	requests, done := l.requests, l.done
	l.mu.Unlock()
	if requests == nil {
		return nil, ErrStopped
	}

	// The reply channel is buffered so the loader
	// goroutine never blocks on an abandoned request.
	c := make(chan reply, 1)
	req.ctx = ctx
	req.reply = c
	select {
	case requests <- req:
	case <-done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case rep := <-c:
		return rep.data, rep.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Obtain returns the loaded data for ws, loading it if it is not held
// in the cache. If progress is not nil, it receives progress of the
// load.
func (l *Loader) Obtain(ctx context.Context, ws WorkSet, progress Progress) (*Data, error) {
	if progress == nil {
		progress = nopProgress{}
	}
	return l.send(ctx, request{op: obtain, ws: ws, progress: progress})
}

// Release removes the data for ws from the cache.
func (l *Loader) Release(ws WorkSet) error {
	_, err := l.send(context.Background(), request{op: release, ws: ws})
	return err
}

// CleanCache removes all data from the cache.
func (l *Loader) CleanCache() error {
	_, err := l.send(context.Background(), request{op: clean})
	return err
}

// Cached returns the number of work sets held in the cache.
func (l *Loader) Cached() int { return l.cache.Len() }

// Load loads the ontology and associations named by ws. Ontology files
// with an .owl extension are decoded as OBO in OWL RDF/XML and others
// as RDF N-Triples or N-Quads.
func Load(ctx context.Context, ws WorkSet, progress Progress) (*Data, error) {
	progress.InitGauge(2)

	progress.Message("loading ontology " + ws.Ontology)
	f, err := input.Open(ws.Ontology)
	if err != nil {
		return nil, fmt.Errorf("failed to open ontology: %w", err)
	}
	decode := ontology.Decode
	if filepath.Ext(input.Uncompressed(ws.Ontology)) == ".owl" {
		decode = ontology.DecodeOWL
	}
	ont, err := decode(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to decode ontology %s: %w", ws.Ontology, err)
	}
	progress.UpdateGauge(1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	progress.Message("loading associations " + ws.Associations)
	f, err = input.Open(ws.Associations)
	if err != nil {
		return nil, fmt.Errorf("failed to open associations: %w", err)
	}
	assoc, err := association.Decode(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to decode associations %s: %w", ws.Associations, err)
	}
	progress.UpdateGauge(2)

	return &Data{Ontology: ont, Associations: assoc}, nil
}
