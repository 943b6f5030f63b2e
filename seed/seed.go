// Package seed loads raw profiles from a json file into a store.
package seed

import (
	"context"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/lithictech/go-profiles/async"
	"github.com/lithictech/go-profiles/logctx"
	"github.com/lithictech/go-profiles/parallel"
	"github.com/lithictech/go-profiles/pathutils"
	"github.com/lithictech/go-profiles/profile"
	"github.com/lithictech/go-profiles/stopwatch"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Record is the raw, unvalidated data for one profile.
type Record = map[string]interface{}

// Creator is the part of the store seeding needs.
type Creator interface {
	Create(raw map[string]interface{}) (profile.Profile, error)
}

// LoadFile reads a json array of profile objects from path.
func LoadFile(path string) ([]Record, error) {
	var records []Record
	if err := pathutils.UnmarshalJsonFile(path, &records); err != nil {
		return nil, errors.Wrapf(err, "loading seed file %s", path)
	}
	return records, nil
}

// Result counts how Apply went.
type Result struct {
	Created int
	Failed  int
}

// Apply creates every record in store, with up to parallelism creates at once.
// Every record is attempted; the returned error is a *multierror.Error
// naming the index of each record that failed.
func Apply(ctx context.Context, store Creator, records []Record, parallelism int) (Result, error) {
	var created int64
	sw := stopwatch.Start(ctx, "seed_apply")
	err := parallel.ForEach(ctx, len(records), parallelism, func(ctx context.Context, idx int) error {
		if _, err := store.Create(records[idx]); err != nil {
			return errors.Wrapf(err, "record %d", idx)
		}
		atomic.AddInt64(&created, 1)
		return nil
	})
	res := Result{Created: int(created), Failed: len(records) - int(created)}
	fields := logrus.Fields{"seed_created": res.Created, "seed_failed": res.Failed}
	if err != nil {
		if merr, ok := err.(*multierror.Error); ok {
			for _, e := range merr.Errors {
				logctx.Logger(ctx).WithError(e).Warn("seed_record_failed")
			}
		}
		sw.Fail(err, stopwatch.FinishOpts{Fields: fields})
		return res, err
	}
	sw.FinishWith(stopwatch.FinishOpts{Fields: fields})
	return res, nil
}

// ApplyFile is LoadFile followed by Apply.
func ApplyFile(ctx context.Context, store Creator, path string, parallelism int) (Result, error) {
	records, err := LoadFile(path)
	if err != nil {
		return Result{}, err
	}
	return Apply(ctx, store, records, parallelism)
}

// ErrInProgress is returned by Progress.Err until seeding finishes.
var ErrInProgress = errors.New("seeding in progress")

// Progress reports on a seeding run started with Start.
type Progress struct {
	done   chan struct{}
	result Result
	err    error
}

// Finished returns a Progress that is already done,
// for when there is nothing to seed.
func Finished() *Progress {
	p := &Progress{done: make(chan struct{})}
	close(p.done)
	return p
}

// Start runs Apply through goer, and returns immediately
// (if goer is async.Async) with a Progress to watch it.
func Start(ctx context.Context, goer async.Goer, store Creator, records []Record, parallelism int) *Progress {
	p := &Progress{done: make(chan struct{})}
	goer(ctx, "seed", func(ctx context.Context) {
		defer close(p.done)
		p.result, p.err = Apply(ctx, store, records, parallelism)
	})
	return p
}

// Done is closed once seeding finishes.
func (p *Progress) Done() <-chan struct{} {
	return p.done
}

// Err is ErrInProgress while seeding runs, and nil after.
// Records that failed to seed do not make it an error;
// use Wait for those.
func (p *Progress) Err() error {
	select {
	case <-p.done:
		return nil
	default:
		return ErrInProgress
	}
}

// Wait blocks until seeding finishes or ctx is done,
// and returns what Apply returned.
func (p *Progress) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
