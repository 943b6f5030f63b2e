// Package parallel runs indexed work with a bounded number of goroutines.
package parallel

import (
	"context"
	"errors"
	"sync"

	"github.com/hashicorp/go-multierror"
)

var ErrInvalidParallelism = errors.New("degree of parallelism must be > 0")

type Processor func(ctx context.Context, idx int) error

// ForEach calls process for every index in [0, total),
// with at most n calls running at once.
//
// Errors are coalesced into a single *multierror.Error,
// ordered by index. Once ctx is done, items that have not started
// are not processed, and report ctx.Err().
//
// If callers need process to return actual data,
// they should allocate a slice of the data they need,
// and assign to the slice index while processing.
func ForEach(ctx context.Context, total int, n int, process Processor) error {
	if n <= 0 {
		return ErrInvalidParallelism
	}

	semaphore := make(chan struct{}, n)
	errs := make([]error, total)

	wg := sync.WaitGroup{}
	wg.Add(total)
	for i := 0; i < total; i++ {
		go func(i int) {
			defer wg.Done()
			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-semaphore }()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			errs[i] = process(ctx, i)
		}(i)
	}
	wg.Wait()
	return multierror.Append(nil, errs...).ErrorOrNil()
}
