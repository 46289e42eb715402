// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/sync/semaphore"

	"github.com/luxfi/ledger-radix-go/semver"
)

// DeviceState is the position of the emulated firmware in an exchange.
type DeviceState uint8

const (
	StateIdle DeviceState = iota
	StateReceived
	StatePrompting
	StateAccepted
	StateRejected
	StateResponded
	StateFailed
)

func (s DeviceState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateReceived:
		return "Received"
	case StatePrompting:
		return "Prompting"
	case StateAccepted:
		return "Accepted"
	case StateRejected:
		return "Rejected"
	case StateResponded:
		return "Responded"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("DeviceState(%d)", uint8(s))
	}
}

// EmulatedConfig configures an EmulatedDevice.
type EmulatedConfig struct {
	// Mnemonic is the BIP39 phrase the key material derives from.
	Mnemonic   string
	Passphrase string
	// Version is reported by GetVersion.
	Version semver.SemVer
	// IO connects the device to a simulated operator. Without it every
	// confirmation is granted.
	IO *EmulatedIO
	// ConfirmationTimeout bounds how long a prompt waits for a button press.
	// Zero waits until the caller gives up.
	ConfirmationTimeout time.Duration
}

// EmulatedDevice behaves like the Radix application on a physical device.
type EmulatedDevice struct {
	master              *hdkeychain.ExtendedKey
	version             semver.SemVer
	io                  *EmulatedIO
	confirmationTimeout time.Duration

	busy *semaphore.Weighted

	mu          sync.Mutex
	state       DeviceState
	closed      bool
	promptSeq   uint64
	observerSeq uint64
	observers   []observer
}

type observer struct {
	id uint64
	fn func(Interaction)
}

func NewEmulatedDevice(cfg EmulatedConfig) (*EmulatedDevice, error) {
	if !bip39.IsMnemonicValid(cfg.Mnemonic) {
		return nil, fmt.Errorf("%w: invalid mnemonic", ErrInvalidArgument)
	}
	seed := bip39.NewSeed(cfg.Mnemonic, cfg.Passphrase)

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}

	return &EmulatedDevice{
		master:              master,
		version:             cfg.Version,
		io:                  cfg.IO,
		confirmationTimeout: cfg.ConfirmationTimeout,
		busy:                semaphore.NewWeighted(1),
	}, nil
}

func (d *EmulatedDevice) State() DeviceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *EmulatedDevice) setState(state DeviceState) {
	d.mu.Lock()
	d.state = state
	d.mu.Unlock()
}

// OnInteraction registers fn to be called for every button press the
// operator makes on a prompt. fn runs before the exchange completes. The
// returned function unregisters fn.
func (d *EmulatedDevice) OnInteraction(fn func(Interaction)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observerSeq++
	id := d.observerSeq
	d.observers = append(d.observers, observer{id: id, fn: fn})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, o := range d.observers {
			if o.id == id {
				d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

func (d *EmulatedDevice) notify(interaction Interaction) {
	d.mu.Lock()
	observers := append([]observer(nil), d.observers...)
	d.mu.Unlock()

	for _, o := range observers {
		o.fn(interaction)
	}
}

func (d *EmulatedDevice) newPrompt(ins Instruction) (Prompt, <-chan ButtonPress, func()) {
	d.mu.Lock()
	d.promptSeq++
	id := d.promptSeq
	d.mu.Unlock()

	presses := make(chan ButtonPress)
	done := make(chan struct{})
	prompt := Prompt{
		ID:          id,
		Instruction: ins,
		Kind:        PromptRequireConfirmation,
		presses:     presses,
		done:        done,
	}
	return prompt, presses, func() { close(done) }
}

// Reset drops any unread prompt and returns to Idle.
func (d *EmulatedDevice) Reset() {
	d.drain()
	d.setState(StateIdle)
}

func (d *EmulatedDevice) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

func (d *EmulatedDevice) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Exchange processes one command APDU and returns the response APDU.
// Protocol failures are answered with a status word like the firmware does;
// only cancellation, timeouts and a closed device return an error.
func (d *EmulatedDevice) Exchange(ctx context.Context, command []byte) ([]byte, error) {
	if err := d.busy.Acquire(ctx, 1); err != nil {
		return nil, contextError(ctx)
	}
	defer d.busy.Release(1)

	if d.isClosed() {
		return nil, ErrDisconnected
	}

	log.Debugf("[EMU] => %x", command)
	d.setState(StateReceived)

	data, status, err := d.process(ctx, command)
	if err != nil {
		d.Reset()
		d.setState(StateFailed)
		return nil, err
	}

	if status == StatusOK {
		d.setState(StateResponded)
	} else {
		d.setState(StateFailed)
	}

	response, err := Response{StatusCode: status, Data: data}.Bytes()
	if err != nil {
		return nil, err
	}
	log.Debugf("[EMU] <= %x", response)

	return response, nil
}

// respondFunc computes the response payload once the request is allowed to
// proceed.
type respondFunc func() ([]byte, StatusCode)

func (d *EmulatedDevice) process(ctx context.Context, command []byte) ([]byte, StatusCode, error) {
	req, err := ParseRequest(command)
	if err != nil {
		log.Debugf("[EMU] unparsable command: %v", err)
		return nil, StatusWrongLength, nil
	}
	if req.Cla != CLA {
		return nil, StatusClaNotSupported, nil
	}
	if req.P2 != 0 || req.P1 > p1Confirmation {
		return nil, StatusInvalidP1P2, nil
	}

	respond, status := d.prepare(req)
	if status != StatusOK {
		return nil, status, nil
	}

	if req.RequiresConfirmation() {
		accepted, err := d.confirm(ctx, req.Ins)
		if err != nil {
			return nil, 0, err
		}
		if !accepted {
			return nil, StatusUserRejected, nil
		}
	}

	data, status := respond()
	return data, status, nil
}

// prepare validates the request shape and returns how to answer it.
func (d *EmulatedDevice) prepare(req Request) (respondFunc, StatusCode) {
	switch req.Ins {
	case InsGetVersion:
		if req.P1 != p1NoConfirmation {
			return nil, StatusInvalidP1P2
		}
		if len(req.Data) != 0 {
			return nil, StatusWrongLength
		}
		return func() ([]byte, StatusCode) {
			return d.version.Bytes(), StatusOK
		}, StatusOK

	case InsGetPublicKey:
		if len(req.Data) != pathPayloadSize {
			return nil, StatusWrongLength
		}
		privateKey, err := d.privateKey(req.Data)
		if err != nil {
			return nil, StatusInvalidData
		}
		return func() ([]byte, StatusCode) {
			return privateKey.PubKey().SerializeCompressed(), StatusOK
		}, StatusOK

	case InsSignHash:
		if len(req.Data) != signHashPayloadSize {
			return nil, StatusWrongLength
		}
		privateKey, err := d.privateKey(req.Data[:pathPayloadSize])
		if err != nil {
			return nil, StatusInvalidData
		}
		hash := req.Data[pathPayloadSize:]
		return func() ([]byte, StatusCode) {
			return ecdsa.Sign(privateKey, hash).Serialize(), StatusOK
		}, StatusOK

	case InsKeyExchange:
		if len(req.Data) != keyExchangePayloadSize {
			return nil, StatusWrongLength
		}
		privateKey, err := d.privateKey(req.Data[:pathPayloadSize])
		if err != nil {
			return nil, StatusInvalidData
		}
		publicKeyOfOtherParty, err := btcec.ParsePubKey(req.Data[pathPayloadSize:])
		if err != nil {
			return nil, StatusInvalidData
		}
		return func() ([]byte, StatusCode) {
			return sharedPoint(privateKey, publicKeyOfOtherParty), StatusOK
		}, StatusOK

	default:
		return nil, StatusInsNotSupported
	}
}

func (d *EmulatedDevice) privateKey(pathData []byte) (*btcec.PrivateKey, error) {
	path, err := decodePath(pathData)
	if err != nil {
		return nil, err
	}

	key := d.master
	for _, index := range path.Values() {
		key, err = key.Derive(index)
		if err != nil {
			return nil, err
		}
	}
	return key.ECPrivKey()
}

func sharedPoint(privateKey *btcec.PrivateKey, publicKey *btcec.PublicKey) []byte {
	var point, result btcec.JacobianPoint
	publicKey.AsJacobian(&point)
	btcec.ScalarMultNonConst(&privateKey.Key, &point, &result)
	result.ToAffine()
	return btcec.NewPublicKey(&result.X, &result.Y).SerializeUncompressed()[1:]
}

// confirm shows a prompt and waits for the operator. It reports whether the
// operator accepted. Presses on earlier prompts cannot reach this one.
func (d *EmulatedDevice) confirm(ctx context.Context, ins Instruction) (bool, error) {
	if d.io == nil {
		log.Debugf("[EMU] no operator attached, confirming %s", ins)
		return true, nil
	}

	if d.confirmationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.confirmationTimeout)
		defer cancel()
	}

	prompt, presses, dismiss := d.newPrompt(ins)
	defer dismiss()

	d.drain()
	d.setState(StatePrompting)

	select {
	case d.io.Prompts <- prompt:
	case <-ctx.Done():
		return false, contextError(ctx)
	}

	recorded := prompt.detached()
	for {
		select {
		case press := <-presses:
			d.notify(Interaction{Prompt: recorded, Button: press})
			switch press {
			case ButtonRightAccept:
				d.setState(StateAccepted)
				return true, nil
			case ButtonLeftReject:
				d.setState(StateRejected)
				return false, nil
			default:
				log.Debugf("[EMU] %s while confirming %s", press, ins)
			}
		case <-ctx.Done():
			return false, contextError(ctx)
		}
	}
}

// drain drops a prompt nobody picked up.
func (d *EmulatedDevice) drain() {
	if d.io == nil {
		return
	}
	for {
		select {
		case <-d.io.Prompts:
		default:
			return
		}
	}
}

// contextError turns an expired deadline into ErrTimeout and passes
// cancellation through.
func contextError(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
