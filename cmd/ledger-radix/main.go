// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	ledger "github.com/luxfi/ledger-radix-go"
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "ledger-radix"
	app.Usage = "Talk to the Radix application on a Ledger device or its emulator"
	app.Flags = globalFlags()
	app.Before = func(c *cli.Context) error {
		if c.Bool("verbose") {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			ledger.SetLogger(logger)
		}
		return applyFlags(c)
	}
	app.Commands = append(
		app.Commands,
		&devices,
		&version,
		&pubkey,
		&sign,
		&ecdh,
	)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[ledger-radix] %v\n", err)
	os.Exit(1)
}
