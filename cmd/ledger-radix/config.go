// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"

	"github.com/luxfi/ledger-radix-go/semver"
)

const (
	// TransportKey selects the device: hid, emulated or replay
	TransportKey = "TRANSPORT"
	// DeviceIndexKey is the index of the HID device to connect to
	DeviceIndexKey = "DEVICE_INDEX"
	// MnemonicKey seeds the emulated device
	MnemonicKey = "MNEMONIC"
	// EmulatedVersionKey is the application version the emulated device reports
	EmulatedVersionKey = "EMULATED_VERSION"
	// TimeoutKey bounds every exchange, confirmation included
	TimeoutKey = "TIMEOUT"
	// RecordFileKey is where the session recording is written, or read from
	// with the replay transport
	RecordFileKey = "RECORD_FILE"

	transportHID      = "hid"
	transportEmulated = "emulated"
	transportReplay   = "replay"

	defaultMnemonic = "equip will roof matter pink blind book anxiety banner elbow sun young"
)

var vip *viper.Viper

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("LEDGER_RADIX")
	vip.AutomaticEnv()

	vip.SetDefault(TransportKey, transportHID)
	vip.SetDefault(DeviceIndexKey, 0)
	vip.SetDefault(MnemonicKey, defaultMnemonic)
	vip.SetDefault(EmulatedVersionKey, "0.0.1")
	vip.SetDefault(TimeoutKey, 2*time.Minute)
	vip.SetDefault(RecordFileKey, "")
}

var flagKeys = map[string]string{
	"transport":        TransportKey,
	"device":           DeviceIndexKey,
	"mnemonic":         MnemonicKey,
	"emulated-version": EmulatedVersionKey,
	"timeout":          TimeoutKey,
	"record":           RecordFileKey,
}

// applyFlags lets flags given on the command line win over the environment.
func applyFlags(c *cli.Context) error {
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			vip.Set(key, c.Value(flag))
		}
	}
	return validate()
}

func validate() error {
	switch transport := strings.ToLower(vip.GetString(TransportKey)); transport {
	case transportHID, transportEmulated:
	case transportReplay:
		if vip.GetString(RecordFileKey) == "" {
			return fmt.Errorf("replay transport requires %s", RecordFileKey)
		}
	default:
		return fmt.Errorf("unknown transport %q", transport)
	}

	if _, err := semver.Parse(vip.GetString(EmulatedVersionKey)); err != nil {
		return err
	}
	if vip.GetDuration(TimeoutKey) < 0 {
		return fmt.Errorf("%s must not be negative", TimeoutKey)
	}
	return nil
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "transport",
			Usage: "hid, emulated or replay",
		},
		&cli.IntFlag{
			Name:  "device",
			Usage: "index of the HID device",
		},
		&cli.StringFlag{
			Name:  "mnemonic",
			Usage: "BIP39 mnemonic of the emulated device",
		},
		&cli.StringFlag{
			Name:  "emulated-version",
			Usage: "version reported by the emulated device",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "bound on every exchange, confirmation included",
		},
		&cli.StringFlag{
			Name:  "record",
			Usage: "file the session recording is written to (read from with --transport replay)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "log every frame",
		},
	}
}
