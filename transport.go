// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TransportOption configures a DeviceTransport.
type TransportOption func(*DeviceTransport)

// WithExchangeTimeout bounds every exchange, including the time the operator
// takes to confirm.
func WithExchangeTimeout(timeout time.Duration) TransportOption {
	return func(t *DeviceTransport) {
		t.timeout = timeout
	}
}

// DeviceTransport speaks the APDU wire format to a LedgerDevice.
type DeviceTransport struct {
	device  LedgerDevice
	timeout time.Duration
}

// NewTransport returns a transport over a connected device, usually obtained
// from LedgerAdmin.Connect.
func NewTransport(device LedgerDevice, opts ...TransportOption) *DeviceTransport {
	t := &DeviceTransport{device: device}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *DeviceTransport) Exchange(ctx context.Context, req Request) (Response, error) {
	command, err := req.Bytes()
	if err != nil {
		return Response{}, err
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	raw, err := t.device.Exchange(ctx, command)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, ErrTimeout) {
			return Response{}, contextError(ctx)
		}
		return Response{}, fmt.Errorf("%s: %w", req.Ins, err)
	}

	return ParseResponse(raw)
}

func (t *DeviceTransport) Close() error {
	return t.device.Close()
}

// EmulatedTransport runs the protocol against an in-process EmulatedDevice.
type EmulatedTransport struct {
	*DeviceTransport
	device *EmulatedDevice
}

func NewEmulatedTransport(device *EmulatedDevice, opts ...TransportOption) *EmulatedTransport {
	return &EmulatedTransport{
		DeviceTransport: NewTransport(device, opts...),
		device:          device,
	}
}

// Device returns the emulated device behind the transport.
func (t *EmulatedTransport) Device() *EmulatedDevice {
	return t.device
}

func (t *EmulatedTransport) OnInteraction(fn func(Interaction)) func() {
	return t.device.OnInteraction(fn)
}
