// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/pyreworks/pyrectl/pkg/g560"
)

// ControlTransfer is a USB control-out transfer for the bridge to replay.
// CBOR encoding uses integer keys for compactness.
type ControlTransfer struct {
	RequestType uint8  `cbor:"1,keyasint"`
	Request     uint8  `cbor:"2,keyasint"`
	Value       uint16 `cbor:"3,keyasint"`
	Index       uint16 `cbor:"4,keyasint"`
	Data        []byte `cbor:"5,keyasint"`
}

var encMode cbor.EncMode

func init() {
	var err error

	encMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("bridge: failed to create CBOR encoder mode: %v", err))
	}
}

// NewReportTransfer wraps a G560 report in the SET_REPORT setup fields
func NewReportTransfer(frame []byte) ControlTransfer {
	return ControlTransfer{
		RequestType: g560.ControlRequestType,
		Request:     g560.ControlRequest,
		Value:       g560.ControlValue,
		Index:       g560.ControlIndex,
		Data:        frame,
	}
}

// MarshalTransfer encodes a transfer to CBOR
func MarshalTransfer(t ControlTransfer) ([]byte, error) {
	data, err := encMode.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode control transfer: %w", err)
	}
	if len(data) > MaxPayloadSize {
		return nil, fmt.Errorf("control transfer too large: %d bytes (max %d)", len(data), MaxPayloadSize)
	}
	return data, nil
}
