// Package reactive is a small explicit dependency graph: versioned inputs
// and memoized derived nodes that recompute only when an upstream version
// moved. It replaces an automatic reactive store with pull-based
// invalidation; the contract it keeps is that no reader ever observes a mix
// of old and new values from one node's dependencies.
package reactive

import (
	"context"
	"sync"
)

// Graph owns the single mutex all node operations run under. One evaluation
// pass holds the lock from staleness check through recompute, which is what
// makes a pass atomic.
type Graph struct {
	mu sync.Mutex
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Dep is the version edge between nodes. refresh is called with the graph
// lock held; derived nodes bring themselves up to date before reporting.
type Dep interface {
	refresh() uint64
}

// Input is a mutable leaf value.
type Input[T any] struct {
	g       *Graph
	value   T
	version uint64
	subs    []func()
}

// NewInput creates an input with its zero value at version 0.
func NewInput[T any](g *Graph) *Input[T] {
	return &Input[T]{g: g}
}

// Set replaces the value and bumps the version, invalidating every derived
// node that read it. Subscribers run after the lock is released.
func (i *Input[T]) Set(v T) {
	i.g.mu.Lock()
	i.value = v
	i.version++
	subs := i.subs
	i.g.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Get returns the current value.
func (i *Input[T]) Get() T {
	i.g.mu.Lock()
	defer i.g.mu.Unlock()
	return i.value
}

// Peek returns the current value without locking. Only valid inside a
// derived node's compute function, where the graph lock is already held.
func (i *Input[T]) Peek() T {
	return i.value
}

// Subscribe registers a callback fired after every Set.
func (i *Input[T]) Subscribe(fn func()) {
	i.g.mu.Lock()
	defer i.g.mu.Unlock()
	i.subs = append(i.subs, fn)
}

func (i *Input[T]) refresh() uint64 {
	return i.version
}

// Derived is a memoized pure computation over declared dependencies.
type Derived[T any] struct {
	g         *Graph
	compute   func() (T, error)
	deps      []Dep
	depVers   []uint64
	cached    T
	cachedErr error
	valid     bool
	version   uint64
	computes  uint64
}

// NewDerived creates a derived node. compute may read its dependencies only
// through Peek/peekValue; deps must list every node it reads.
func NewDerived[T any](g *Graph, compute func() (T, error), deps ...Dep) *Derived[T] {
	return &Derived[T]{
		g:       g,
		compute: compute,
		deps:    deps,
		depVers: make([]uint64, len(deps)),
	}
}

// Value brings the node up to date and returns its value. Upstream derived
// nodes refresh first, so within this one pass the compute function sees a
// consistent generation of every dependency.
func (d *Derived[T]) Value() (T, error) {
	d.g.mu.Lock()
	defer d.g.mu.Unlock()
	d.refresh()
	return d.cached, d.cachedErr
}

// Peek returns the cached value without refreshing or locking. Only valid
// inside a downstream compute function.
func (d *Derived[T]) Peek() T {
	return d.cached
}

// Recomputes reports how many times the node actually recomputed. Used to
// assert invalidation granularity.
func (d *Derived[T]) Recomputes() uint64 {
	d.g.mu.Lock()
	defer d.g.mu.Unlock()
	return d.computes
}

func (d *Derived[T]) refresh() uint64 {
	stale := !d.valid
	for idx, dep := range d.deps {
		v := dep.refresh()
		if v != d.depVers[idx] {
			stale = true
		}
		d.depVers[idx] = v
	}
	if stale {
		d.cached, d.cachedErr = d.compute()
		d.valid = true
		d.version++
		d.computes++
	}
	return d.version
}

// AsyncInput is a leaf resolved by an asynchronous fetch. Readers see
// (zero, false) until the first resolution completes. Concurrent Resolve
// calls for the same generation coalesce into one fetch.
type AsyncInput[T any] struct {
	g        *Graph
	fetch    func(ctx context.Context) (T, error)
	value    T
	resolved bool
	version  uint64
	inflight chan struct{}
}

// NewAsyncInput creates an unresolved async input.
func NewAsyncInput[T any](g *Graph, fetch func(ctx context.Context) (T, error)) *AsyncInput[T] {
	return &AsyncInput[T]{g: g, fetch: fetch}
}

// Resolve runs the fetch unless a value is already present or another
// resolve is in flight, in which case it waits for that one. Last resolved
// wins on races; results are idempotent reads so that is acceptable.
func (a *AsyncInput[T]) Resolve(ctx context.Context) error {
	a.g.mu.Lock()
	if a.resolved {
		a.g.mu.Unlock()
		return nil
	}
	if a.inflight != nil {
		wait := a.inflight
		a.g.mu.Unlock()
		select {
		case <-wait:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	done := make(chan struct{})
	a.inflight = done
	fetch := a.fetch
	a.g.mu.Unlock()

	value, err := fetch(ctx)

	a.g.mu.Lock()
	a.inflight = nil
	if err == nil {
		a.value = value
		a.resolved = true
		a.version++
	}
	a.g.mu.Unlock()
	close(done)
	return err
}

// Get returns the value and whether it has resolved.
func (a *AsyncInput[T]) Get() (T, bool) {
	a.g.mu.Lock()
	defer a.g.mu.Unlock()
	return a.value, a.resolved
}

// Peek returns the value and resolution state without locking. Only valid
// inside a derived compute function.
func (a *AsyncInput[T]) Peek() (T, bool) {
	return a.value, a.resolved
}

// Invalidate discards the resolved value so the next Resolve fetches again.
func (a *AsyncInput[T]) Invalidate() {
	a.g.mu.Lock()
	defer a.g.mu.Unlock()
	a.resolved = false
	a.version++
}

// Set short-circuits the fetch with a known value.
func (a *AsyncInput[T]) Set(v T) {
	a.g.mu.Lock()
	defer a.g.mu.Unlock()
	a.value = v
	a.resolved = true
	a.version++
}

func (a *AsyncInput[T]) refresh() uint64 {
	return a.version
}
