// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// RecordedExchange is a request, its response and the operator interactions
// observed while it was outstanding.
type RecordedExchange struct {
	ID           uuid.UUID     `cbor:"id"`
	Request      Request       `cbor:"request"`
	Response     Response      `cbor:"response"`
	Interactions []Interaction `cbor:"interactions"`
}

// Recorder is an append-only log of exchanges and interactions.
type Recorder struct {
	mu        sync.Mutex
	exchanges []RecordedExchange
	userIO    []Interaction
	pending   []Interaction
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordInteraction logs an interaction and attaches it to the next
// recorded exchange.
func (r *Recorder) RecordInteraction(interaction Interaction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.userIO = append(r.userIO, interaction)
	r.pending = append(r.pending, interaction)
}

func (r *Recorder) RecordExchange(req Request, resp Response) RecordedExchange {
	r.mu.Lock()
	defer r.mu.Unlock()

	exchange := RecordedExchange{
		ID:           uuid.New(),
		Request:      req,
		Response:     resp,
		Interactions: r.pending,
	}
	r.pending = nil
	r.exchanges = append(r.exchanges, exchange)

	return exchange
}

// discardPending forgets interactions that did not lead to a response.
func (r *Recorder) discardPending() {
	r.mu.Lock()
	r.pending = nil
	r.mu.Unlock()
}

func (r *Recorder) Recorded() []RecordedExchange {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]RecordedExchange(nil), r.exchanges...)
}

func (r *Recorder) UserIO() []Interaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Interaction(nil), r.userIO...)
}

// Last returns the most recent exchange.
func (r *Recorder) Last() (RecordedExchange, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.exchanges) == 0 {
		return RecordedExchange{}, false
	}
	return r.exchanges[len(r.exchanges)-1], true
}

type recording struct {
	Exchanges []RecordedExchange `cbor:"exchanges"`
	UserIO    []Interaction      `cbor:"user_io"`
}

// MarshalCBOR exports the log.
func (r *Recorder) MarshalCBOR() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return cbor.Marshal(recording{Exchanges: r.exchanges, UserIO: r.userIO})
}

// LoadRecording decodes the exchanges of a log exported with MarshalCBOR.
func LoadRecording(data []byte) ([]RecordedExchange, error) {
	var rec recording
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding recording: %w", err)
	}
	return rec.Exchanges, nil
}
