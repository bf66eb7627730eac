package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Await defaults
const (
	DefaultInterval = 2 * time.Second
	DefaultCeiling  = 480 * time.Second
)

var errStillPending = errors.New("run still pending")

// Options controls how Await waits for a run.
type Options struct {
	Interval time.Duration // poll interval
	Ceiling  time.Duration // wall-clock limit for submit plus polling
	// OnProgress receives each new backend progress message once, in order.
	OnProgress func(msg string)
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Ceiling <= 0 {
		o.Ceiling = DefaultCeiling
	}
	return o
}

// Await submits req and waits for a terminal result. Inline results are
// returned directly; otherwise the run is polled at a constant interval.
//
// Exceeding the ceiling yields a failed RunResult with ErrorKindTimeout rather
// than an error. An error is returned only when the submission or a poll fails
// for good, or when ctx itself is cancelled. Transient poll errors are retried
// on the poll interval; errors matching IsPermanent end the wait at once.
func Await(ctx context.Context, client Client, req RunRequest, opts Options) (*RunResult, error) {
	opts = opts.withDefaults()

	runCtx, cancel := context.WithTimeout(ctx, opts.Ceiling)
	defer cancel()

	progress := &progressForwarder{fn: opts.OnProgress}

	sub, err := client.Submit(runCtx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if runCtx.Err() != nil {
			return timedOut("", opts.Ceiling), nil
		}
		return nil, &Failure{Status: StatusFailed, Cause: fmt.Errorf("submit run: %w", err)}
	}

	if sub.Result != nil && sub.Result.Status.Terminal() {
		progress.forward(sub.Result.Progress)
		return sub.Result, nil
	}
	if sub.RunID == "" {
		return nil, &Failure{Status: StatusFailed, Err: &RunError{Kind: ErrorKindEngine, Message: "backend returned neither a result nor a run id"}}
	}

	poll := func() (*RunResult, error) {
		res, err := client.Get(runCtx, sub.RunID)
		if IsPermanent(err) {
			return nil, backoff.Permanent(err)
		}
		if err != nil {
			return nil, err
		}
		progress.forward(res.Progress)
		if !res.Status.Terminal() {
			return nil, errStillPending
		}
		return res, nil
	}

	res, err := backoff.Retry(runCtx, poll,
		backoff.WithBackOff(backoff.NewConstantBackOff(opts.Interval)),
		backoff.WithMaxElapsedTime(opts.Ceiling),
	)
	if err == nil {
		return res, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	// Anything short of a permanent error means the ceiling ran out first.
	if runCtx.Err() != nil || !IsPermanent(err) {
		return timedOut(sub.RunID, opts.Ceiling), nil
	}
	return nil, &Failure{RunID: sub.RunID, Status: StatusFailed, Cause: fmt.Errorf("poll run: %w", err)}
}

func timedOut(runID string, ceiling time.Duration) *RunResult {
	return &RunResult{
		RunID:  runID,
		Status: StatusFailed,
		Error: &RunError{
			Kind:    ErrorKindTimeout,
			Message: fmt.Sprintf("run did not finish within %s", ceiling),
		},
	}
}

// progressForwarder delivers only messages it has not delivered yet.
type progressForwarder struct {
	fn   func(string)
	sent int
}

func (p *progressForwarder) forward(all []string) {
	if p.fn == nil || len(all) <= p.sent {
		return
	}
	for _, msg := range all[p.sent:] {
		p.fn(msg)
	}
	p.sent = len(all)
}
