// Package queue implements the evaluator queue (spec component C5):
// a priority-ordered pending set, a bounded-concurrency dispatcher,
// opportunistic early stop, and budget/cancellation.
//
// The dispatcher loop is grounded on
// rwcarlsen-cloudlus/cloudlus/server.go's networked job dispatcher
// (its dispatcher
// goroutine and fetchjobs/pushjobs channel protocol), collapsed to an
// in-process worker pool the way
// rwcarlsen-cloudlus/cloudlus/worker.go's RunForeverFrom loop consumes
// work. The opportunistic early-stop wrapper follows
// Baaaaam-optim/pattern/pattern.go's objStopper, generalized from "stop
// once any candidate beats Best" to a caller-supplied predicate.
package queue

import (
	"context"
	"sync"

	"github.com/petar/GoLLRB/llrb"
	"github.com/rwcarlsen/mads"
)

// SortKey orders pending trial points before dispatch (spec 4.4:
// direction-of-last-success, lexicographic, random, static-surrogate,
// quadratic-model ranking are all valid strategies). Lower Key values
// are dispatched first.
type SortKey func(p mads.Point) float64

// Task is one trial point submitted to the queue for evaluation.
type Task struct {
	Point mads.Point
	Eval  func(ctx context.Context, p mads.Point) ([]float64, error)

	seq int64 // submission order, used as a stable tie-breaker
	key float64
}

// Result pairs a submitted task with its outcome.
type Result struct {
	Task   Task
	Output []float64
	Err    error
}

type taskItem struct {
	t Task
}

func (a taskItem) Less(than llrb.Item) bool {
	b := than.(taskItem)
	if a.t.key != b.t.key {
		return a.t.key < b.t.key
	}
	return a.t.seq < b.t.seq
}

// Queue dispatches Tasks to at most Workers concurrent evaluations,
// in priority order, with opportunistic early cancellation (spec 4.4).
type Queue struct {
	Workers int
	Sort    SortKey

	// StopIf, when non-nil, is checked after every completed Result; if
	// it returns true the queue cancels all in-flight and not-yet
	// dispatched tasks (opportunistic strategy, spec 4.4/12).
	StopIf func(Result) bool

	// OnCancel, when non-nil, is called once for every task still
	// sitting in the pending set once Run stops - whether StopIf fired,
	// ctx was cancelled, or the caller simply never submitted enough
	// work to keep every worker busy. It lets a caller record the
	// dropped tasks (e.g. as cache.Cancelled entries) instead of having
	// them vanish with no trace.
	OnCancel func(Task)

	mu      sync.Mutex
	pending *llrb.LLRB
	seq     int64
}

// New builds a Queue with the given worker count (must be >= 1) and
// sort key. A nil key leaves submission order unchanged (FIFO).
func New(workers int, key SortKey) *Queue {
	if workers < 1 {
		workers = 1
	}
	if key == nil {
		key = func(mads.Point) float64 { return 0 }
	}
	return &Queue{Workers: workers, Sort: key, pending: llrb.New()}
}

// Submit enqueues a task for later dispatch by Run.
func (q *Queue) Submit(t Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	t.seq = q.seq
	q.seq++
	t.key = q.Sort(t.Point)
	q.pending.InsertNoReplace(taskItem{t})
}

// Len reports the number of tasks still waiting to be dispatched.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending.Len()
}

func (q *Queue) popMin() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	item := q.pending.DeleteMin()
	if item == nil {
		return Task{}, false
	}
	return item.(taskItem).t, true
}

// Run drains every submitted task through Workers concurrent
// goroutines, lowest key first, and returns results as they complete
// (not in submission order). If StopIf ever returns true, or ctx is
// cancelled, remaining pending tasks are dropped (and, if OnCancel is
// set, reported through it) and in-flight ones are allowed to finish
// but their results are discarded once the stop fires - mirroring
// pattern.go's objStopper, which stops polling further directions the
// instant one succeeds rather than waiting for the whole block.
func (q *Queue) Run(ctx context.Context) []Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan Result)
	processed := make(chan struct{})
	var wg sync.WaitGroup
	var stopped struct {
		sync.Mutex
		yes bool
	}

	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			stopped.Lock()
			halt := stopped.yes
			stopped.Unlock()
			if halt {
				return
			}
			t, ok := q.popMin()
			if !ok {
				return
			}
			out, err := t.Eval(ctx, t.Point)
			select {
			case results <- Result{Task: t, Output: out, Err: err}:
				// Wait for StopIf's verdict on this result before
				// popping another task.
				<-processed
			case <-ctx.Done():
				return
			}
		}
	}

	wg.Add(q.Workers)
	for i := 0; i < q.Workers; i++ {
		go worker()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var out []Result
	halted := false
	for r := range results {
		if !halted {
			out = append(out, r)
			if q.StopIf != nil && q.StopIf(r) {
				halted = true
				stopped.Lock()
				stopped.yes = true
				stopped.Unlock()
				cancel()
			}
		}
		processed <- struct{}{}
	}

	if q.OnCancel != nil {
		for {
			t, ok := q.popMin()
			if !ok {
				break
			}
			q.OnCancel(t)
		}
	}
	return out
}
