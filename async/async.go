// Package async implements a minimal future / promise API for tracking
// operations which complete in the background.
package async

import (
	"time"
)

// OpFuture represents an operation which is executing in the background. The
// operation has completed when Done selects. Err may be invoked to determine
// whether the operation succeeded or failed.
type OpFuture interface {
	// Done selects when operation background execution has finished.
	Done() <-chan struct{}
	// Err blocks until Done() and returns the final error of the OpFuture.
	Err() error
}

// OpFutures is a set of OpFuture instances.
type OpFutures map[OpFuture]struct{}

// AsyncOperation is a simple, minimal implementation of the OpFuture interface.
type AsyncOperation struct {
	doneCh chan struct{} // Closed to signal operation has completed.
	err    error         // Error on operation completion.
}

// NewAsyncOperation returns a new AsyncOperation.
func NewAsyncOperation() *AsyncOperation { return &AsyncOperation{doneCh: make(chan struct{})} }

// Done selects when Resolve is called.
func (o *AsyncOperation) Done() <-chan struct{} { return o.doneCh }

// Err blocks until Resolve is called, then returns its error.
func (o *AsyncOperation) Err() error {
	<-o.Done()
	return o.err
}

// Resolve marks the AsyncOperation as completed with the given error.
// Resolve must be called exactly once.
func (o *AsyncOperation) Resolve(err error) {
	o.err = err
	close(o.doneCh)
}

// FinishedOperation is a convenience that returns an already-resolved AsyncOperation.
func FinishedOperation(err error) OpFuture {
	var op = NewAsyncOperation()
	op.Resolve(err)
	return op
}

// WaitWithPeriodicTask repeatedly invokes |task| with period |period| until
// the OpFuture is resolved.
func WaitWithPeriodicTask(op OpFuture, period time.Duration, task func()) {
	var ticker = time.NewTicker(period)

	for {
		select {
		case <-op.Done():
			ticker.Stop()
			return
		case <-ticker.C:
			task()
		}
	}
}
