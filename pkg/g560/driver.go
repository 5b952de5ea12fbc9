// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package g560

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Transport sends one report to the device. Implementations need not be
// safe for concurrent use; a Driver never sends in parallel.
type Transport interface {
	Send(ctx context.Context, frame []byte) error
}

// Policy controls how often a frame is sent.
//
// Every frame is sent RunTimes times regardless of the outcome of earlier
// runs. Within a run, a failed send is retried up to RetryTimes attempts in
// total, waiting RetryInterval after each failure.
type Policy struct {
	RunTimes      int
	RetryTimes    int
	RetryInterval time.Duration
}

// DefaultPolicy returns the 3 runs x 3 attempts, 30ms policy
func DefaultPolicy() Policy {
	return Policy{
		RunTimes:      RunTimes,
		RetryTimes:    RetryTimes,
		RetryInterval: RetryInterval,
	}
}

// Validate checks that the policy sends at least once
func (p Policy) Validate() error {
	if p.RunTimes < 1 {
		return fmt.Errorf("run times must be at least 1, got %d", p.RunTimes)
	}
	if p.RetryTimes < 1 {
		return fmt.Errorf("retry times must be at least 1, got %d", p.RetryTimes)
	}
	if p.RetryInterval < 0 {
		return fmt.Errorf("retry interval must not be negative, got %v", p.RetryInterval)
	}
	return nil
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures a Driver
type Option func(*Driver)

// WithPolicy replaces the default dispatch policy
func WithPolicy(p Policy) Option {
	return func(d *Driver) { d.policy = p }
}

// WithLogger sets the logger used for transfer warnings
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSleep replaces the retry backoff wait. Used by tests.
func WithSleep(fn SleepFunc) Option {
	return func(d *Driver) {
		if fn != nil {
			d.sleep = fn
		}
	}
}

// Driver dispatches commands to one exclusively owned Transport
type Driver struct {
	transport Transport
	policy    Policy
	logger    *slog.Logger
	sleep     SleepFunc
}

// NewDriver creates a driver sending over t
func NewDriver(t Transport, opts ...Option) *Driver {
	d := &Driver{
		transport: t,
		policy:    DefaultPolicy(),
		logger:    slog.Default(),
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Policy returns the driver's dispatch policy
func (d *Driver) Policy() Policy {
	return d.policy
}

// Close closes the transport if it is closable
func (d *Driver) Close() error {
	if c, ok := d.transport.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// CommandResult records how one command fared
type CommandResult struct {
	Command Command
	Frame   [FrameSize]byte

	// Attempts is the number of Send calls made for this command
	Attempts int
	// Runs is the number of repetitions performed
	Runs int
	// FailedRuns counts repetitions in which every attempt failed
	FailedRuns int
	// LastErr is the most recent transfer error, if any
	LastErr error
}

// Delivered reports whether at least one repetition got through
func (r CommandResult) Delivered() bool {
	return r.FailedRuns < r.Runs
}

// Report summarizes a Run
type Report struct {
	RunID    string
	Commands []CommandResult
}

// Failed returns the commands no repetition of which was delivered
func (r *Report) Failed() []CommandResult {
	var out []CommandResult
	for _, c := range r.Commands {
		if !c.Delivered() {
			out = append(out, c)
		}
	}
	return out
}

// OK reports whether every command was delivered at least once
func (r *Report) OK() bool {
	return len(r.Failed()) == 0
}

// Attempts returns the total number of Send calls
func (r *Report) Attempts() int {
	n := 0
	for _, c := range r.Commands {
		n += c.Attempts
	}
	return n
}

// Run compresses commands to one per zone and sends each in turn.
//
// Transfer failures never make Run fail: they are logged and recorded in the
// returned Report. The only error returned is the context's, when ctx is
// cancelled mid-dispatch; the partial report is returned alongside it.
func (d *Driver) Run(ctx context.Context, commands []Command) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	logger := d.logger.With("run_id", report.RunID)

	compressed := Compress(commands)
	logger.Debug("dispatching commands", "requested", len(commands), "compressed", len(compressed))

	for _, cmd := range compressed {
		result, err := d.dispatch(ctx, logger, cmd)
		report.Commands = append(report.Commands, result)
		if err != nil {
			return report, err
		}
	}

	return report, nil
}

// dispatch sends one command RunTimes times with retries
func (d *Driver) dispatch(ctx context.Context, logger *slog.Logger, cmd Command) (CommandResult, error) {
	logger = logger.With("zone", cmd.Zone().String(), "mode", ModeName(cmd))

	// Never sent, so never delivered
	if !cmd.Zone().Valid() {
		logger.Warn("skipping command", "err", ErrInvalidZone)
		return CommandResult{
			Command:    cmd,
			Runs:       1,
			FailedRuns: 1,
			LastErr:    fmt.Errorf("%w: %s", ErrInvalidZone, cmd.Zone()),
		}, nil
	}

	frame := Encode(cmd)
	result := CommandResult{Command: cmd, Frame: frame}
	logger.Debug("sending frame", "frame", FormatHex(frame[:]))

	for run := 0; run < d.policy.RunTimes; run++ {
		result.Runs++
		sent := false

		for attempt := 0; attempt < d.policy.RetryTimes; attempt++ {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			result.Attempts++
			err := d.transport.Send(ctx, frame[:])
			if err == nil {
				sent = true
				break
			}

			result.LastErr = err
			logger.Debug("send failed", "run", run+1, "attempt", attempt+1, "err", err)

			if err := d.sleep(ctx, d.policy.RetryInterval); err != nil {
				return result, err
			}
		}

		if !sent {
			result.FailedRuns++
			logger.Warn("retries exhausted", "run", run+1, "attempts", d.policy.RetryTimes, "err", result.LastErr)
		}
	}

	if !result.Delivered() {
		logger.Warn("command not delivered", "attempts", result.Attempts, "err", result.LastErr)
	}

	return result, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
