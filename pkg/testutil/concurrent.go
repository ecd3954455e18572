package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	dErrors "ria/pkg/domain-errors"
	"ria/pkg/platform/sentinel"
)

// ConcurrentResult counts how a batch of racing calls ended.
type ConcurrentResult struct {
	Successes     int32
	Errors        int32
	Conflicts     int32
	NotFounds     int32
	InvalidStates int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Conflicts + r.NotFounds + r.InvalidStates
}

func (r *ConcurrentResult) bucket(err error) *int32 {
	switch {
	case err == nil:
		return &r.Successes
	case errors.Is(err, sentinel.ErrConflict), dErrors.HasCode(err, dErrors.CodeConflict):
		return &r.Conflicts
	case errors.Is(err, sentinel.ErrNotFound), dErrors.HasCode(err, dErrors.CodeNotFound):
		return &r.NotFounds
	case dErrors.HasCode(err, dErrors.CodeInvalidState):
		return &r.InvalidStates
	default:
		return &r.Errors
	}
}

// RunConcurrent releases n goroutines at once and buckets each call's error by
// store sentinel or domain code. Unrecognised errors count as Errors.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var (
		result ConcurrentResult
		start  = make(chan struct{})
		wg     sync.WaitGroup
	)
	wg.Add(n)
	for i := range n {
		go func() {
			defer wg.Done()
			<-start
			atomic.AddInt32(result.bucket(fn(i)), 1)
		}()
	}
	close(start)
	wg.Wait()
	return &result
}
