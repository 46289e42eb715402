// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	ledger "github.com/luxfi/ledger-radix-go"
	"github.com/luxfi/ledger-radix-go/semver"
)

// session is a wallet over the configured transport, recording when a
// record file is configured.
type session struct {
	wallet   *ledger.HardwareWallet
	recorder *ledger.Recorder
	stop     context.CancelFunc
}

func openSession(c *cli.Context) (*session, error) {
	transport, stop, err := openTransport(c)
	if err != nil {
		return nil, err
	}

	s := &session{stop: stop}
	var opts []ledger.Option
	if vip.GetString(RecordFileKey) != "" && vip.GetString(TransportKey) != transportReplay {
		s.recorder = ledger.NewRecorder()
		opts = append(opts, ledger.WithRecorder(s.recorder))
	}
	s.wallet = ledger.New(transport, opts...)
	return s, nil
}

func openTransport(c *cli.Context) (ledger.Transport, context.CancelFunc, error) {
	var opts []ledger.TransportOption
	if timeout := vip.GetDuration(TimeoutKey); timeout > 0 {
		opts = append(opts, ledger.WithExchangeTimeout(timeout))
	}

	switch strings.ToLower(vip.GetString(TransportKey)) {
	case transportEmulated:
		operator := ledger.NewEmulatedIO()
		device, err := ledger.NewEmulatedDevice(ledger.EmulatedConfig{
			Mnemonic: vip.GetString(MnemonicKey),
			Version:  semver.MustParse(vip.GetString(EmulatedVersionKey)),
			IO:       operator,
		})
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithCancel(c.Context)
		go operator.Respond(ctx, askOperator(os.Stdin, c.App.Writer))
		return ledger.NewEmulatedTransport(device, opts...), cancel, nil

	case transportReplay:
		data, err := os.ReadFile(vip.GetString(RecordFileKey))
		if err != nil {
			return nil, nil, err
		}
		exchanges, err := ledger.LoadRecording(data)
		if err != nil {
			return nil, nil, err
		}
		return ledger.NewReplayTransport(exchanges), func() {}, nil

	default:
		device, err := ledger.NewLedgerAdmin().Connect(vip.GetInt(DeviceIndexKey))
		if err != nil {
			return nil, nil, err
		}
		return ledger.NewTransport(device, opts...), func() {}, nil
	}
}

// askOperator shows each prompt on out and reads the decision from in.
func askOperator(in io.Reader, out io.Writer) func(ledger.Prompt) ledger.ButtonPress {
	scanner := bufio.NewScanner(in)
	return func(prompt ledger.Prompt) ledger.ButtonPress {
		for {
			fmt.Fprintf(out, "device asks to confirm %s [y/n]: ", prompt.Instruction)
			if !scanner.Scan() {
				return ledger.ButtonLeftReject
			}
			switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
			case "y", "yes":
				return ledger.ButtonRightAccept
			case "n", "no":
				return ledger.ButtonLeftReject
			}
		}
	}
}

// close releases the transport and writes the recording.
func (s *session) close() error {
	defer s.stop()

	if err := s.wallet.Close(); err != nil {
		return err
	}
	if s.recorder == nil {
		return nil
	}

	data, err := s.recorder.MarshalCBOR()
	if err != nil {
		return err
	}
	return os.WriteFile(vip.GetString(RecordFileKey), data, 0644)
}

// withSession opens a session, runs fn and closes the session.
func withSession(fn func(c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return err
		}
		runErr := fn(c, s)
		if err := s.close(); err != nil && runErr == nil {
			return err
		}
		return runErr
	}
}
