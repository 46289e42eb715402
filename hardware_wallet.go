// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/sync/semaphore"

	"github.com/luxfi/ledger-radix-go/hdpath"
	"github.com/luxfi/ledger-radix-go/semver"
)

// Option configures a HardwareWallet.
type Option func(*HardwareWallet)

// WithRecorder logs every exchange and operator interaction to rec.
func WithRecorder(rec *Recorder) Option {
	return func(w *HardwareWallet) {
		w.recorder = rec
	}
}

// WithMetrics reports exchanges and interactions to m.
func WithMetrics(m *Metrics) Option {
	return func(w *HardwareWallet) {
		w.metrics = m
	}
}

// HardwareWallet drives the Radix application on a device. Calls are
// serialized: at most one exchange is outstanding on the transport.
type HardwareWallet struct {
	transport Transport
	recorder  *Recorder
	metrics   *Metrics
	channel   *semaphore.Weighted
	detach    func()
}

// New returns a wallet over transport. A transport serves one wallet at a
// time: interactions are attributed to the exchange outstanding on this
// wallet, and Close detaches the wallet before closing the transport.
func New(transport Transport, opts ...Option) *HardwareWallet {
	w := &HardwareWallet{
		transport: transport,
		channel:   semaphore.NewWeighted(1),
		detach:    func() {},
	}
	for _, opt := range opts {
		opt(w)
	}

	if source, ok := transport.(InteractionSource); ok && (w.recorder != nil || w.metrics != nil) {
		w.detach = source.OnInteraction(w.observeInteraction)
	}

	return w
}

func (w *HardwareWallet) observeInteraction(interaction Interaction) {
	log.Debugf("operator pressed %s for %s", interaction.Button, interaction.Prompt.Instruction)
	if w.recorder != nil {
		w.recorder.RecordInteraction(interaction)
	}
	if w.metrics != nil {
		w.metrics.observeInteraction(interaction)
	}
}

// GetVersion returns the version of the application running on the device.
func (w *HardwareWallet) GetVersion(ctx context.Context) (semver.SemVer, error) {
	resp, err := w.exchange(ctx, getVersionRequest())
	if err != nil {
		return semver.SemVer{}, err
	}
	return decodeVersion(resp)
}

// GetPublicKey returns the compressed public key at path.
func (w *HardwareWallet) GetPublicKey(ctx context.Context, path hdpath.Path, requireConfirmation bool) (*btcec.PublicKey, error) {
	req, err := getPublicKeyRequest(path, requireConfirmation)
	if err != nil {
		return nil, err
	}
	resp, err := w.exchange(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodePublicKey(resp)
}

// SignHash signs hash with the key at path.
func (w *HardwareWallet) SignHash(ctx context.Context, path hdpath.Path, hash chainhash.Hash, requireConfirmation bool) (*ecdsa.Signature, error) {
	req, err := signHashRequest(path, hash, requireConfirmation)
	if err != nil {
		return nil, err
	}
	resp, err := w.exchange(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeSignature(resp)
}

// KeyExchange performs Diffie-Hellman between the key at path and
// publicKeyOfOtherParty and returns the shared point.
func (w *HardwareWallet) KeyExchange(ctx context.Context, path hdpath.Path, publicKeyOfOtherParty *btcec.PublicKey, requireConfirmation bool) (*btcec.PublicKey, error) {
	req, err := keyExchangeRequest(path, publicKeyOfOtherParty, requireConfirmation)
	if err != nil {
		return nil, err
	}
	resp, err := w.exchange(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeSharedPoint(resp)
}

// Close stops observing the transport and closes it.
func (w *HardwareWallet) Close() error {
	w.detach()
	return w.transport.Close()
}

// exchange sends req once and checks the status word. Failures are never
// retried.
func (w *HardwareWallet) exchange(ctx context.Context, req Request) (resp Response, err error) {
	if err := w.channel.Acquire(ctx, 1); err != nil {
		return Response{}, contextError(ctx)
	}
	defer w.channel.Release(1)

	started := time.Now()
	if w.metrics != nil {
		defer func() {
			w.metrics.observeExchange(req.Ins, started, err)
		}()
	}

	log.Debugf("%s p1=%d data=%x", req.Ins, req.P1, req.Data)

	resp, err = w.transport.Exchange(ctx, req)
	if err != nil {
		if w.recorder != nil {
			w.recorder.discardPending()
		}
		log.Debugf("%s failed: %v", req.Ins, err)
		return Response{}, err
	}

	if w.recorder != nil {
		w.recorder.RecordExchange(req, resp)
	}

	if err := checkStatus(req, resp); err != nil {
		log.Debugf("%s: %v", req.Ins, err)
		return Response{}, err
	}

	log.Debugf("%s completed in %s", req.Ins, time.Since(started))
	return resp, nil
}
