// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package g560

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pyreworks/pyrectl/pkg/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errTransfer = errors.New("control out failed")

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Send(ctx context.Context, frame []byte) error {
	args := m.Called(ctx, append([]byte(nil), frame...))
	return args.Error(0)
}

type closingTransport struct {
	mockTransport
	closed bool
}

func (c *closingTransport) Close() error {
	c.closed = true
	return nil
}

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return nil
}

func newTestDriver(t Transport, sleeps *sleepRecorder, opts ...Option) *Driver {
	base := []Option{
		WithSleep(sleeps.sleep),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewDriver(t, append(base, opts...)...)
}

func TestRun_AllAttemptsFail(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.Anything).Return(errTransfer)
	sleeps := &sleepRecorder{}

	report, err := newTestDriver(tr, sleeps).Run(context.Background(), []Command{NewOff(LeftPrimary)})

	require.NoError(t, err, "transfer errors must not fail Run")
	tr.AssertNumberOfCalls(t, "Send", RunTimes*RetryTimes)

	assert.Len(t, sleeps.calls, RunTimes*RetryTimes)
	for _, d := range sleeps.calls {
		assert.Equal(t, 30*time.Millisecond, d)
	}

	require.Len(t, report.Commands, 1)
	res := report.Commands[0]
	assert.Equal(t, 9, res.Attempts)
	assert.Equal(t, 3, res.Runs)
	assert.Equal(t, 3, res.FailedRuns)
	assert.ErrorIs(t, res.LastErr, errTransfer)
	assert.False(t, res.Delivered())
	assert.False(t, report.OK())
	assert.Len(t, report.Failed(), 1)
}

func TestRun_SucceedsOnSecondAttempt(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.Anything).Return(errTransfer).Once()
	tr.On("Send", mock.Anything, mock.Anything).Return(nil)
	sleeps := &sleepRecorder{}

	report, err := newTestDriver(tr, sleeps).Run(context.Background(), []Command{NewOff(LeftPrimary)})

	require.NoError(t, err)
	// 2 calls in the first repetition, 1 in each of the other two
	tr.AssertNumberOfCalls(t, "Send", 4)
	assert.Len(t, sleeps.calls, 1)

	res := report.Commands[0]
	assert.Equal(t, 4, res.Attempts)
	assert.Equal(t, 0, res.FailedRuns)
	assert.True(t, res.Delivered())
	assert.True(t, report.OK())
}

func TestRun_OneRepetitionExhausted(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.Anything).Return(errTransfer).Times(3)
	tr.On("Send", mock.Anything, mock.Anything).Return(nil)
	sleeps := &sleepRecorder{}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	report, err := newTestDriver(tr, sleeps, WithLogger(logger)).Run(context.Background(), []Command{NewOff(RightPrimary)})

	require.NoError(t, err)
	tr.AssertNumberOfCalls(t, "Send", 5)

	res := report.Commands[0]
	assert.Equal(t, 1, res.FailedRuns)
	assert.True(t, res.Delivered(), "later repetitions got through")
	assert.True(t, report.OK())

	assert.Contains(t, logs.String(), "retries exhausted")
	assert.Contains(t, logs.String(), "zone=right-primary")
	assert.NotContains(t, logs.String(), "command not delivered")
}

func TestRun_InvalidZoneNotSent(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.Anything).Return(nil)
	sleeps := &sleepRecorder{}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	report, err := newTestDriver(tr, sleeps, WithLogger(logger)).Run(context.Background(), []Command{
		NewOff(Zone(7)),
		NewOff(LeftPrimary),
	})

	require.NoError(t, err)
	tr.AssertNumberOfCalls(t, "Send", RunTimes)

	require.Len(t, report.Commands, 2)
	assert.Equal(t, LeftPrimary, report.Commands[0].Command.Zone())
	assert.True(t, report.Commands[0].Delivered())

	bad := report.Commands[1]
	assert.ErrorIs(t, bad.LastErr, ErrInvalidZone)
	assert.Zero(t, bad.Attempts)
	assert.False(t, bad.Delivered())
	assert.False(t, report.OK())
	assert.Contains(t, logs.String(), "zone=zone(7)")
}

func TestRun_SendsEncodedFrames(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.Anything).Return(nil)
	sleeps := &sleepRecorder{}

	red := color.RGB8{R: 255}
	cmd := NewSolid(LeftPrimary, red)
	_, err := newTestDriver(tr, sleeps).Run(context.Background(), []Command{cmd})
	require.NoError(t, err)

	want := Encode(cmd)
	require.Len(t, tr.Calls, RunTimes)
	for _, call := range tr.Calls {
		assert.Equal(t, want[:], call.Arguments.Get(1).([]byte))
	}
	assert.Empty(t, sleeps.calls)
}

func TestRun_CompressesBeforeSending(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.Anything).Return(nil)
	sleeps := &sleepRecorder{}

	cmds := []Command{
		NewSolid(LeftPrimary, color.RGB8{R: 255}),
		NewCycle(RightSecondary, 1000, 50),
		NewOff(LeftPrimary),
	}
	report, err := newTestDriver(tr, sleeps).Run(context.Background(), cmds)
	require.NoError(t, err)

	tr.AssertNumberOfCalls(t, "Send", 2*RunTimes)
	require.Len(t, report.Commands, 2)

	sent := make(map[Zone]Command)
	for _, res := range report.Commands {
		sent[res.Command.Zone()] = res.Command
	}
	assert.Equal(t, NewOff(LeftPrimary), sent[LeftPrimary])
	assert.Equal(t, NewCycle(RightSecondary, 1000, 50), sent[RightSecondary])

	offFrame := Encode(NewOff(LeftPrimary))
	for _, call := range tr.Calls {
		frame := call.Arguments.Get(1).([]byte)
		assert.NotEqual(t, byte(0xFF), frame[6], "superseded solid frame must not be sent")
		if frame[4] == 0x00 {
			assert.Equal(t, offFrame[:], frame)
		}
	}
}

func TestRun_NoCommands(t *testing.T) {
	tr := &mockTransport{}
	report, err := newTestDriver(tr, &sleepRecorder{}).Run(context.Background(), nil)

	require.NoError(t, err)
	tr.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	assert.Empty(t, report.Commands)
	assert.True(t, report.OK())
	assert.NotEmpty(t, report.RunID)
}

func TestRun_CustomPolicy(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.Anything).Return(errTransfer)
	sleeps := &sleepRecorder{}

	policy := Policy{RunTimes: 2, RetryTimes: 4, RetryInterval: 5 * time.Millisecond}
	d := newTestDriver(tr, sleeps, WithPolicy(policy))
	report, err := d.Run(context.Background(), []Command{NewOff(LeftSecondary)})

	require.NoError(t, err)
	assert.Equal(t, policy, d.Policy())
	tr.AssertNumberOfCalls(t, "Send", 8)
	assert.Equal(t, 8, report.Attempts())
	assert.Equal(t, 5*time.Millisecond, sleeps.calls[0])
}

func TestRun_ContextCancelled(t *testing.T) {
	tr := &mockTransport{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newTestDriver(tr, &sleepRecorder{}).Run(ctx, []Command{NewOff(LeftPrimary), NewOff(RightPrimary)})

	assert.ErrorIs(t, err, context.Canceled)
	tr.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	assert.Len(t, report.Commands, 1)
}

func TestRun_CancelledDuringBackoff(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.Anything).Return(errTransfer)
	ctx, cancel := context.WithCancel(context.Background())

	d := NewDriver(tr,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithSleep(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}),
	)
	_, err := d.Run(ctx, []Command{NewOff(LeftPrimary)})

	assert.ErrorIs(t, err, context.Canceled)
	tr.AssertNumberOfCalls(t, "Send", 1)
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))
	require.NoError(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())
	assert.Error(t, Policy{RunTimes: 0, RetryTimes: 1}.Validate())
	assert.Error(t, Policy{RunTimes: 1, RetryTimes: 0}.Validate())
	assert.Error(t, Policy{RunTimes: 1, RetryTimes: 1, RetryInterval: -time.Second}.Validate())

	// A zero interval retries immediately
	assert.NoError(t, Policy{RunTimes: 1, RetryTimes: 1}.Validate())
}

func TestDriver_Close(t *testing.T) {
	ct := &closingTransport{}
	require.NoError(t, NewDriver(ct).Close())
	assert.True(t, ct.closed)

	require.NoError(t, NewDriver(&mockTransport{}).Close())
}
