// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_radix

import "context"

// LedgerAdmin defines the interface for managing Ledger devices.
type LedgerAdmin interface {
	CountDevices() int
	ListDevices() ([]string, error)
	Connect(deviceIndex int) (LedgerDevice, error)
}

// LedgerDevice exchanges raw APDU frames with a device. Exchange returns
// ErrDisconnected when the channel closes and ErrTimeout when no frame
// arrives in time.
type LedgerDevice interface {
	Exchange(ctx context.Context, command []byte) ([]byte, error)
	Close() error
}

// Transport exchanges requests and responses with a device. Only one
// exchange may be outstanding at a time.
type Transport interface {
	Exchange(ctx context.Context, req Request) (Response, error)
	Close() error
}

// InteractionSource is implemented by transports that can observe the
// operator answering prompts on the device. The returned function
// unregisters fn.
type InteractionSource interface {
	OnInteraction(fn func(Interaction)) func()
}
