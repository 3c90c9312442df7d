package frontier

import (
	"sync"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/extractor"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/urlutil"
)

/*
Frontier Responsibilities
- Hold the run-level dedup set, keyed by canonical detail URL
- Hand out admitted refs in admission order
- Knows nothing about:
	- fetching
	- extraction
	- downloading
	- the ledger

It is a data structure + policy module, not a pipeline executor.

Concurrency: Submit is an atomic check-and-insert so two concurrent callers
can never both admit the same detail URL. Dequeue is safe from any worker.
*/
type Frontier struct {
	mu      sync.Mutex
	visited Set[string]
	queue   *FIFOQueue[extractor.EpisodeRef]
}

func NewFrontier() Frontier {
	return Frontier{
		visited: NewSet[string](),
		queue:   NewFIFOQueue[extractor.EpisodeRef](),
	}
}

// Submit admits ref unless its canonical detail URL has already been seen
// during this run. It reports whether the ref was admitted.
func (f *Frontier) Submit(ref extractor.EpisodeRef) bool {
	canonical := urlutil.Canonicalize(ref.DetailURL())
	key := canonical.String()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited.Contains(key) {
		return false
	}
	f.visited.Add(key)
	f.queue.Enqueue(ref)
	return true
}

// Dequeue hands out the next admitted ref in admission order.
func (f *Frontier) Dequeue() (extractor.EpisodeRef, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.queue.Dequeue()
}

// VisitedCount returns the number of distinct detail URLs seen this run.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.visited.Size()
}

// PendingCount returns the number of admitted refs not yet dequeued.
func (f *Frontier) PendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.queue.Size()
}
