// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// port is the part of serial.Port the bridge uses
type port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// SerialBridge forwards reports to a bridge on a serial line
type SerialBridge struct {
	port       port
	ackTimeout time.Duration
	name       string
}

// OpenSerial opens a serial port connection to a bridge
func OpenSerial(portName string, baudRate int, ackTimeout time.Duration) (*SerialBridge, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	b, err := newSerialBridge(p, ackTimeout)
	if err != nil {
		p.Close()
		return nil, err
	}
	b.name = fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate)
	return b, nil
}

func newSerialBridge(p port, ackTimeout time.Duration) (*SerialBridge, error) {
	if ackTimeout <= 0 {
		ackTimeout = DefaultAckTimeout
	}
	if err := p.SetReadTimeout(ackTimeout); err != nil {
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}
	return &SerialBridge{port: p, ackTimeout: ackTimeout, name: "Serial"}, nil
}

// String describes the connection
func (s *SerialBridge) String() string {
	return s.name
}

// Send writes one framed transfer and waits for the bridge's reply
func (s *SerialBridge) Send(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := MarshalTransfer(NewReportTransfer(frame))
	if err != nil {
		return err
	}
	encoded, err := EncodeFrame(payload)
	if err != nil {
		return err
	}

	// Stale bytes from an earlier timed-out exchange would read as this reply
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to flush input: %w", err)
	}

	n, err := s.port.Write(encoded)
	if err != nil {
		return fmt.Errorf("serial write failed: %w", err)
	}
	if n != len(encoded) {
		return fmt.Errorf("serial write short: wrote %d of %d bytes", n, len(encoded))
	}

	return s.awaitReply(ctx)
}

// awaitReply reads until an ACK or NAK arrives. Other bytes are line noise
// or bridge log output and are skipped. A read returning no data means the
// port read timeout expired.
func (s *SerialBridge) awaitReply(ctx context.Context) error {
	deadline := time.Now().Add(s.ackTimeout)
	buf := make([]byte, 64)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := s.port.Read(buf)
		if err != nil {
			return fmt.Errorf("serial read failed: %w", err)
		}

		for _, b := range buf[:n] {
			switch b {
			case Ack:
				return nil
			case Nak:
				return ErrNak
			}
		}

		if n == 0 || time.Now().After(deadline) {
			return ErrAckTimeout
		}
	}
}

// Close closes the serial port
func (s *SerialBridge) Close() error {
	return s.port.Close()
}
