package litho

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/go-drift/litho/pkg/errors"
)

// executor runs background layouts. Without threads every task runs inline
// on the caller.
type executor struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

func newExecutor(threads int) *executor {
	e := &executor{}
	if threads > 0 {
		e.sem = semaphore.NewWeighted(int64(threads))
	}
	return e
}

func (e *executor) inline() bool { return e.sem == nil }

// Go runs fn, in the background when the executor has threads.
func (e *executor) Go(fn func()) {
	if e.inline() {
		fn()
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer errors.Recover("litho.layout")
		if err := e.sem.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer e.sem.Release(1)
		fn()
	}()
}

// Wait blocks until every started task returned.
func (e *executor) Wait() { e.wg.Wait() }
