package queue

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/rwcarlsen/mads"
)

func constEval(v float64) func(context.Context, mads.Point) ([]float64, error) {
	return func(ctx context.Context, p mads.Point) ([]float64, error) {
		return []float64{v}, nil
	}
}

func TestRunDispatchesAllTasks(t *testing.T) {
	q := New(2, nil)
	for i := 0; i < 5; i++ {
		q.Submit(Task{Point: mads.NewPoint([]float64{float64(i)}), Eval: constEval(float64(i))})
	}
	results := q.Run(context.Background())
	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
}

func TestSortKeyOrdersDispatchForSingleWorker(t *testing.T) {
	q := New(1, func(p mads.Point) float64 { return -p.At(0).Value() })
	var order []float64
	var mu atomicOrder
	for i := 0; i < 3; i++ {
		v := float64(i)
		q.Submit(Task{
			Point: mads.NewPoint([]float64{v}),
			Eval: func(ctx context.Context, p mads.Point) ([]float64, error) {
				mu.add(p.At(0).Value())
				return []float64{0}, nil
			},
		})
	}
	q.Run(context.Background())
	order = mu.vals
	// highest value (2) has the lowest key (-2) so dispatches first with one worker.
	if len(order) != 3 || order[0] != 2 {
		t.Errorf("dispatch order = %v, want first element 2", order)
	}
}

type atomicOrder struct {
	vals []float64
}

func (a *atomicOrder) add(v float64) { a.vals = append(a.vals, v) }

func TestStopIfCancelsRemaining(t *testing.T) {
	q := New(1, nil)
	var dispatched int32
	for i := 0; i < 10; i++ {
		q.Submit(Task{
			Point: mads.NewPoint([]float64{float64(i)}),
			Eval: func(ctx context.Context, p mads.Point) ([]float64, error) {
				atomic.AddInt32(&dispatched, 1)
				return []float64{p.At(0).Value()}, nil
			},
		})
	}
	q.StopIf = func(r Result) bool { return r.Output[0] == 0 }
	q.Run(context.Background())
	if atomic.LoadInt32(&dispatched) >= 10 {
		t.Error("expected StopIf to cut off dispatch before all 10 tasks ran")
	}
}

func TestLenReflectsPending(t *testing.T) {
	q := New(1, nil)
	q.Submit(Task{Point: mads.NewPoint([]float64{1}), Eval: constEval(1)})
	q.Submit(Task{Point: mads.NewPoint([]float64{2}), Eval: constEval(2)})
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
}
