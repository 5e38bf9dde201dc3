package async

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestAsyncOperationResolution(t *testing.T) {
	var op = NewAsyncOperation()

	select {
	case <-op.Done():
		t.Fatal("expected Done to block before Resolve")
	default:
	}

	go op.Resolve(errors.New("an error"))
	require.EqualError(t, op.Err(), "an error")

	select {
	case <-op.Done():
	default:
		t.Fatal("expected Done to select after Resolve")
	}
}

func TestFinishedOperation(t *testing.T) {
	require.NoError(t, FinishedOperation(nil).Err())
	require.EqualError(t, FinishedOperation(errors.New("boom")).Err(), "boom")
}

func TestWaitWithPeriodicTask(t *testing.T) {
	var op = NewAsyncOperation()
	var ticks int64

	// The task must never block the wait loop from observing resolution,
	// regardless of how many periods elapse first.
	time.AfterFunc(30*time.Millisecond, func() { op.Resolve(nil) })
	WaitWithPeriodicTask(op, time.Millisecond, func() { atomic.AddInt64(&ticks, 1) })

	require.NotZero(t, atomic.LoadInt64(&ticks))
}
