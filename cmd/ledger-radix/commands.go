// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/urfave/cli/v2"

	ledger "github.com/luxfi/ledger-radix-go"
	"github.com/luxfi/ledger-radix-go/hdpath"
)

const defaultPath = "m/44'/536'/0'/0/0'"

var pathFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "path",
		Usage: "derivation path m/44'/536'/account'/change/address'",
		Value: defaultPath,
	},
	&cli.BoolFlag{
		Name:  "confirm",
		Usage: "ask the operator to confirm on the device",
	},
}

var devices = cli.Command{
	Name:  "devices",
	Usage: "list connected Ledger devices",
	Action: func(c *cli.Context) error {
		paths, err := ledger.NewLedgerAdmin().ListDevices()
		if err != nil {
			return err
		}
		for i, p := range paths {
			fmt.Fprintf(c.App.Writer, "%d\t%s\n", i, p)
		}
		return nil
	},
}

var version = cli.Command{
	Name:  "version",
	Usage: "print the version of the Radix application",
	Action: withSession(func(c *cli.Context, s *session) error {
		v, err := s.wallet.GetVersion(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, v)
		return nil
	}),
}

var pubkey = cli.Command{
	Name:  "pubkey",
	Usage: "print the compressed public key at a path",
	Flags: pathFlags,
	Action: withSession(func(c *cli.Context, s *session) error {
		path, err := hdpath.Parse(c.String("path"))
		if err != nil {
			return err
		}
		key, err := s.wallet.GetPublicKey(c.Context, path, c.Bool("confirm"))
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, hex.EncodeToString(key.SerializeCompressed()))
		return nil
	}),
}

var sign = cli.Command{
	Name:  "sign",
	Usage: "sign a 32 byte hash, or the double SHA256 of a message",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:  "hash",
			Usage: "hex encoded hash",
		},
		&cli.StringFlag{
			Name:  "message",
			Usage: "message to hash and sign",
		},
	}, pathFlags...),
	Action: withSession(func(c *cli.Context, s *session) error {
		path, err := hdpath.Parse(c.String("path"))
		if err != nil {
			return err
		}
		hash, err := hashToSign(c)
		if err != nil {
			return err
		}
		signature, err := s.wallet.SignHash(c.Context, path, hash, c.Bool("confirm"))
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, hex.EncodeToString(signature.Serialize()))
		return nil
	}),
}

var ecdh = cli.Command{
	Name:  "ecdh",
	Usage: "derive the shared point with another party's public key",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "pubkey",
			Usage:    "hex encoded public key of the other party",
			Required: true,
		},
	}, pathFlags...),
	Action: withSession(func(c *cli.Context, s *session) error {
		path, err := hdpath.Parse(c.String("path"))
		if err != nil {
			return err
		}
		raw, err := hex.DecodeString(c.String("pubkey"))
		if err != nil {
			return err
		}
		other, err := btcec.ParsePubKey(raw)
		if err != nil {
			return err
		}
		point, err := s.wallet.KeyExchange(c.Context, path, other, c.Bool("confirm"))
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, hex.EncodeToString(ledger.SharedPointBytes(point)))
		return nil
	}),
}

func hashToSign(c *cli.Context) (chainhash.Hash, error) {
	switch {
	case c.IsSet("hash") && c.IsSet("message"):
		return chainhash.Hash{}, errors.New("use either --hash or --message")
	case c.IsSet("hash"):
		raw, err := hex.DecodeString(c.String("hash"))
		if err != nil {
			return chainhash.Hash{}, err
		}
		var hash chainhash.Hash
		if err := hash.SetBytes(raw); err != nil {
			return chainhash.Hash{}, err
		}
		return hash, nil
	case c.IsSet("message"):
		return chainhash.DoubleHashH([]byte(c.String("message"))), nil
	default:
		return chainhash.Hash{}, errors.New("--hash or --message is required")
	}
}
