package processor

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ZaguanLabs/sitelai"
)

// Future is the result of a pending translation.
type Future[T any] struct {
	val  T
	err  error
	done chan struct{}
}

// Resolved returns a future that is already complete.
func Resolved[T any](val T) *Future[T] {
	f := &Future[T]{val: val, done: make(chan struct{})}
	close(f.done)
	return f
}

// Await blocks until the future completes.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.val, f.err
}

// IsComplete reports whether Await would return without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// tracker is the set of pending translations of one document. A task may
// spawn further tasks; wait returns once all of them have completed.
type tracker struct {
	wg    sync.WaitGroup
	spans atomic.Int64

	mu       sync.Mutex
	failures []trackedFailure
}

type trackedFailure struct {
	seq int64
	f   *sitelai.Failure
}

// spawn runs fn in its own goroutine. The future completes before the
// tracker's count drops, so tasks spawned inside fn are always waited for.
func spawn[T any](tr *tracker, fn func(seq int64) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	seq := tr.spans.Add(1)

	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		defer close(f.done)
		f.val, f.err = fn(seq)
	}()

	return f
}

func (tr *tracker) fail(seq int64, node, source string, err error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.failures = append(tr.failures, trackedFailure{
		seq: seq,
		f:   &sitelai.Failure{Node: node, Source: source, Err: err},
	})
}

// wait blocks until every spawned task has completed and returns the
// failures in the order their tasks were scheduled.
func (tr *tracker) wait() (spans int, failures []*sitelai.Failure) {
	tr.wg.Wait()

	tr.mu.Lock()
	defer tr.mu.Unlock()
	sort.Slice(tr.failures, func(i, j int) bool {
		return tr.failures[i].seq < tr.failures[j].seq
	})
	for _, tf := range tr.failures {
		failures = append(failures, tf.f)
	}
	return int(tr.spans.Load()), failures
}
