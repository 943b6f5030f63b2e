/*
Package stopwatch is used to time things.
Create a stopwatch with Start,
then on success record the timing with Finish.

It's recommended you do not record errors,
since they can have vastly different timings.
Use Fail so the elapsed time is still logged,
but under a separate event.
*/
package stopwatch

import (
	"context"
	"time"

	"github.com/lithictech/go-profiles/logctx"
	"github.com/sirupsen/logrus"
)

type Stopwatch struct {
	start     time.Time
	operation string
	logger    *logrus.Entry
}

// Start logs the start of operation to the logger in c.
func Start(c context.Context, operation string) *Stopwatch {
	return StartWith(logctx.Logger(c), operation)
}

func StartWith(logger *logrus.Entry, operation string) *Stopwatch {
	sw := &Stopwatch{
		start:     time.Now(),
		operation: operation,
		logger:    logger,
	}
	sw.logger.Debug(operation + "_started")
	return sw
}

type FinishOpts struct {
	Logger *logrus.Entry
	Fields logrus.Fields
}

func (sw *Stopwatch) FinishWith(opts FinishOpts) {
	sw.entry(opts).Info(sw.operation + "_finished")
}

func (sw *Stopwatch) Finish() {
	sw.FinishWith(FinishOpts{})
}

// Fail logs the elapsed time at warn level, along with err.
func (sw *Stopwatch) Fail(err error, opts FinishOpts) {
	sw.entry(opts).WithError(err).Warn(sw.operation + "_failed")
}

func (sw *Stopwatch) Elapsed() time.Duration {
	return time.Since(sw.start)
}

func (sw *Stopwatch) entry(opts FinishOpts) *logrus.Entry {
	logger := sw.logger
	if opts.Logger != nil {
		logger = opts.Logger
	}
	return logger.WithFields(opts.Fields).WithField("elapsed", sw.Elapsed().Seconds())
}
