// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package bridge sends G560 reports to a remote USB host instead of a locally
// attached device.
//
// Each report travels as a CBOR-encoded ControlTransfer that the bridge
// replays as a USB control transfer. Over a serial link the message is
// framed with start/end bytes, byte stuffing and a CRC-16-CCITT; over
// WebSocket each message is one binary frame. In both cases the bridge
// answers every message with a single ACK or NAK byte.
package bridge

import (
	"errors"
	"time"
)

// Framing bytes
const (
	StartByte = 0x7E
	EndByte   = 0x7F
	EscByte   = 0x7D
	EscXor    = 0x20
)

// Reply bytes
const (
	Ack = 0x06
	Nak = 0x15
)

// MaxPayloadSize bounds the CBOR message so its length fits the length byte
const MaxPayloadSize = 128

// CRC-16-CCITT configuration
const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF
)

// DefaultAckTimeout is how long a bridge waits for the reply byte
const DefaultAckTimeout = 500 * time.Millisecond

var (
	// ErrNak is returned when the bridge rejects a transfer
	ErrNak = errors.New("bridge rejected transfer")
	// ErrAckTimeout is returned when no reply arrives in time
	ErrAckTimeout = errors.New("timed out waiting for bridge reply")
)
