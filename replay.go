// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"context"
	"fmt"
	"sync"
)

// ReplayTransport answers requests from a recording, in order.
type ReplayTransport struct {
	mu        sync.Mutex
	exchanges []RecordedExchange
	next      int
}

func NewReplayTransport(exchanges []RecordedExchange) *ReplayTransport {
	return &ReplayTransport{exchanges: exchanges}
}

func (t *ReplayTransport) Exchange(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.next >= len(t.exchanges) {
		return Response{}, fmt.Errorf("%w: recording exhausted after %d exchanges", ErrDisconnected, len(t.exchanges))
	}

	recorded := t.exchanges[t.next]
	if !recorded.Request.equalWire(req) {
		return Response{}, fmt.Errorf("%w: exchange %d expected %s", ErrReplayMismatch, t.next, recorded.Request.Ins)
	}
	t.next++

	log.Debugf("[REPLAY] %s <= %s", req.Ins, recorded.Response.StatusCode)
	return recorded.Response, nil
}

// Remaining returns the number of exchanges not yet replayed.
func (t *ReplayTransport) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.exchanges) - t.next
}

func (t *ReplayTransport) Close() error {
	return nil
}
