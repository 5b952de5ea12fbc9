// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package usb opens the G560 lighting interface through libusb and sends
// reports to it as class control transfers.
package usb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"
	"github.com/pyreworks/pyrectl/pkg/g560"
)

// DefaultTimeout bounds a single control transfer
const DefaultTimeout = time.Second

// ErrInterfaceNotFound is returned when no device with the G560 vendor and
// product id is attached
var ErrInterfaceNotFound = fmt.Errorf("could not find g560 device with vendor_id 0x%04x and product_id 0x%04x",
	g560.VendorID, g560.ProductID)

// ClaimError is returned when the device exists but could not be opened or
// its lighting interface could not be claimed
type ClaimError struct {
	Op  string
	Err error
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("could not open g560 device: %s: %v", e.Op, e.Err)
}

func (e *ClaimError) Unwrap() error { return e.Err }

// TransferError is returned when a control transfer fails or is short
type TransferError struct {
	Written int
	Err     error
}

func (e *TransferError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("control out failed: short write (%d bytes)", e.Written)
	}
	return fmt.Sprintf("control out failed: %v", e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Options configures Open
type Options struct {
	// Timeout for each control transfer; zero means DefaultTimeout
	Timeout time.Duration
}

// controller is the part of *gousb.Device used for sending
type controller interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
}

// Device is a claimed G560 lighting interface. It implements g560.Transport.
type Device struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	ctrl controller
}

var _ g560.Transport = (*Device)(nil)

// Open finds the G560, detaches any kernel driver from its lighting interface
// and claims it.
func Open(opts Options) (*Device, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	uctx := gousb.NewContext()
	d := &Device{ctx: uctx}

	dev, err := uctx.OpenDeviceWithVIDPID(gousb.ID(g560.VendorID), gousb.ID(g560.ProductID))
	if err != nil {
		d.Close()
		return nil, &ClaimError{Op: "open", Err: err}
	}
	if dev == nil {
		d.Close()
		return nil, ErrInterfaceNotFound
	}
	d.dev = dev
	d.ctrl = dev
	dev.ControlTimeout = opts.Timeout

	if err := dev.SetAutoDetach(true); err != nil {
		d.Close()
		return nil, &ClaimError{Op: "detach kernel driver", Err: err}
	}

	cfgNum, err := dev.ActiveConfigNum()
	if err != nil {
		d.Close()
		return nil, &ClaimError{Op: "active config", Err: err}
	}

	cfg, err := dev.Config(cfgNum)
	if err != nil {
		d.Close()
		return nil, &ClaimError{Op: fmt.Sprintf("config %d", cfgNum), Err: err}
	}
	d.cfg = cfg

	intf, err := cfg.Interface(g560.InterfaceNumber, 0)
	if err != nil {
		d.Close()
		return nil, &ClaimError{Op: fmt.Sprintf("claim interface %d", g560.InterfaceNumber), Err: err}
	}
	d.intf = intf

	return d, nil
}

// Send writes one report as a SET_REPORT class control transfer
func (d *Device) Send(ctx context.Context, frame []byte) error {
	return send(ctx, d.ctrl, frame)
}

func send(ctx context.Context, ctrl controller, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := ctrl.Control(g560.ControlRequestType, g560.ControlRequest, g560.ControlValue, g560.ControlIndex, frame)
	if err != nil {
		return &TransferError{Written: n, Err: err}
	}
	if n != len(frame) {
		return &TransferError{Written: n}
	}
	return nil
}

// Close releases the interface and the device
func (d *Device) Close() error {
	var errs []error
	if d.intf != nil {
		d.intf.Close()
		d.intf = nil
	}
	if d.cfg != nil {
		errs = append(errs, d.cfg.Close())
		d.cfg = nil
	}
	if d.dev != nil {
		errs = append(errs, d.dev.Close())
		d.dev = nil
	}
	if d.ctx != nil {
		errs = append(errs, d.ctx.Close())
		d.ctx = nil
	}
	return errors.Join(errs...)
}
