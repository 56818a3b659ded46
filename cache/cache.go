// Package cache implements the content-addressed evaluation-point
// store (spec component C3): exact lookup by Point, the
// smart_insert at-most-one-evaluation guarantee, best-feasible/
// best-infeasible scanning, and bounded-size eviction.
//
// It generalizes Baaaaam-optim/optim_test.go's ad hoc dedup helper
// (uniqof/fillfromuniq) into a persistent, thread-safe map, and
// repurposes Baaaaam-optim/pop/pop.go's github.com/petar/GoLLRB/llrb usage
// (Baaaaam-optim/pop/pop.go's NewConstr worst-violator tree) as the
// eviction-priority structure.
package cache

import (
	"crypto/sha1"
	"sync"

	"github.com/petar/GoLLRB/llrb"
	"github.com/rwcarlsen/mads"
)

// tagItem orders cache entries by their insertion tag for eviction
// (oldest first), satisfying "lowest-priority first" per spec 4.1/9's
// eviction note.
type tagItem struct {
	tag   uint64
	entry *Entry
}

func (a tagItem) Less(than llrb.Item) bool {
	return a.tag < than.(tagItem).tag
}

// Cache is a thread-safe, content-addressed store of evaluated trial
// points (spec DATA MODEL, "Cache entry"; spec 4.3).
type Cache struct {
	mu         sync.RWMutex
	entries    map[[sha1.Size]byte]*Entry
	evictTree  *llrb.LLRB
	nextTag    uint64
	cacheHits  uint64
	maxEntries int // 0 means unbounded

	pinned map[[sha1.Size]byte]bool // entries never evicted (current x*, x degree)
}

// New builds an empty Cache. maxEntries <= 0 means unbounded (no
// eviction), matching MAX_CACHE_MEMORY being optional (spec 6, 9).
func New(maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[[sha1.Size]byte]*Entry),
		evictTree:  llrb.New(),
		maxEntries: maxEntries,
		pinned:     make(map[[sha1.Size]byte]bool),
	}
}

// Find returns the cache entry for p, if any.
func (c *Cache) Find(p mads.Point) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[p.Hash()]
	return e, ok
}

// Len returns the number of distinct points currently cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CacheHits returns how many SmartInsert calls were satisfied without
// requiring a new evaluation - the counter MAX_EVAL (as opposed to
// MAX_BB_EVAL) depends on (spec 4.3).
func (c *Cache) CacheHits() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cacheHits
}

// SmartInsert is the cache's key operation (spec 4.3). If p is absent
// it is created and a fresh pending Eval of the given kind is
// attached; needsEval is true and the caller must evaluate it. If
// present and already evaluated maxEvals times for kind, the cache-hit
// counter is bumped and needsEval is false. If present with an
// in-flight (pending) evaluation of kind, needsEval is false without
// bumping the hit counter - this is the at-most-one-evaluation
// guarantee: nobody double-submits a point already being evaluated.
func (c *Cache) SmartInsert(p mads.Point, kind EvaluatorKind, maxEvals int) (entry *Entry, needsEval bool) {
	if maxEvals <= 0 {
		maxEvals = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := p.Hash()
	e, ok := c.entries[hash]
	if !ok {
		e = newEntry(p, c.nextTag)
		c.nextTag++
		c.entries[hash] = e
		c.evictTree.InsertNoReplace(tagItem{tag: e.Tag, entry: e})
		c.evictIfNeeded()
		e.Evals[kind] = append(e.Evals[kind], &Eval{Status: Pending, Tag: c.nextEvalTag()})
		return e, true
	}

	if e.HasPending(kind) {
		return e, false
	}
	if e.CountCompleted(kind) >= maxEvals {
		c.cacheHits++
		return e, false
	}
	e.Evals[kind] = append(e.Evals[kind], &Eval{Status: Pending, Tag: c.nextEvalTag()})
	return e, true
}

func (c *Cache) nextEvalTag() uint64 {
	t := c.nextTag
	c.nextTag++
	return t
}

// Complete writes the outcome of an in-flight evaluation back into the
// cache (spec 4.4, dispatch loop step 4: "Write results into the
// cache"). It replaces the most recent pending Eval for kind with the
// supplied result.
func (c *Cache) Complete(p mads.Point, kind EvaluatorKind, out []float64, types []mads.OutputType, status Status, counted bool) *Eval {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[p.Hash()]
	if !ok {
		return nil
	}
	evs := e.Evals[kind]
	var target *Eval
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Status == Pending {
			target = evs[i]
			break
		}
	}
	if target == nil {
		return nil
	}
	target.Output = out
	target.Status = status
	target.Counted = counted
	if status == OK {
		f, h := mads.ComputeFH(out, types)
		target.F, target.H = f, h
	} else {
		target.H = infinity
	}
	return target
}

// RestoreEval writes a precomputed f/h directly into a pending eval
// rather than recomputing it from output types, used by package
// persist to reload a cache file losslessly (spec 6(a)) without
// needing the original BB_OUTPUT_TYPE declaration on hand.
func (c *Cache) RestoreEval(p mads.Point, kind EvaluatorKind, out []float64, f mads.Float, h float64, status Status, counted bool) *Eval {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[p.Hash()]
	if !ok {
		return nil
	}
	evs := e.Evals[kind]
	var target *Eval
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Status == Pending {
			target = evs[i]
			break
		}
	}
	if target == nil {
		return nil
	}
	target.Output = out
	target.Status = status
	target.Counted = counted
	target.F, target.H = f, h
	return target
}

const infinity = 1e308 // kept finite to stay a legal float64 "definitely worse than any real h"

// Pin marks p as a current incumbent (x* or x degree) so eviction
// never removes it (spec 9: "preserve x* and x degree").
func (c *Cache) Pin(p mads.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pinned[p.Hash()] = true
}

// Unpin releases a previous Pin, e.g. when an incumbent is superseded.
func (c *Cache) Unpin(p mads.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pinned, p.Hash())
}

// evictIfNeeded removes lowest-tag (oldest), unpinned entries until
// the cache is back within maxEntries. Caller must hold c.mu.
func (c *Cache) evictIfNeeded() {
	if c.maxEntries <= 0 || len(c.entries) <= c.maxEntries {
		return
	}
	for len(c.entries) > c.maxEntries {
		var victim *tagItem
		c.evictTree.AscendGreaterOrEqual(tagItem{tag: 0}, func(i llrb.Item) bool {
			it := i.(tagItem)
			if c.pinned[it.entry.Point.Hash()] {
				return true // keep scanning past pinned entries
			}
			victim = &it
			return false
		})
		if victim == nil {
			return // everything left is pinned
		}
		c.evictTree.Delete(*victim)
		delete(c.entries, victim.entry.Point.Hash())
	}
}

// Range calls fn for every cache entry matching pred, used by
// trust-region model builders and surrogate-sort range scans (spec
// 4.3, "range scan by predicate"). Iteration stops early if fn returns
// false.
func (c *Cache) Range(pred func(*Entry) bool, fn func(*Entry) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if pred == nil || pred(e) {
			if !fn(e) {
				return
			}
		}
	}
}

// BestFeasible returns the cached entry with h == 0 minimizing f for
// kind, or nil if none exists.
func (c *Cache) BestFeasible(kind EvaluatorKind) *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var best *Entry
	var bestF float64
	for _, e := range c.entries {
		ev := e.Latest(kind)
		if ev == nil || ev.Status != OK || ev.H != 0 {
			continue
		}
		if best == nil || ev.F.Value() < bestF {
			best, bestF = e, ev.F.Value()
		}
	}
	return best
}

// BestInfeasible returns the cached entry with minimal h subject to
// h <= hmax (f as tie-breaker) for kind, or nil if none exists.
func (c *Cache) BestInfeasible(kind EvaluatorKind, hmax float64) *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var best *Entry
	var bestH, bestF float64
	for _, e := range c.entries {
		ev := e.Latest(kind)
		if ev == nil || ev.Status != OK || ev.H == 0 || ev.H > hmax {
			continue
		}
		if best == nil || ev.H < bestH || (ev.H == bestH && ev.F.Value() < bestF) {
			best, bestH, bestF = e, ev.H, ev.F.Value()
		}
	}
	return best
}

// Clear removes every entry and resets the hit counter and tag
// sequence (explicit clear, spec 4.3's "Lifecycle" note).
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[[sha1.Size]byte]*Entry)
	c.evictTree = llrb.New()
	c.cacheHits = 0
	c.nextTag = 0
	c.pinned = make(map[[sha1.Size]byte]bool)
}
