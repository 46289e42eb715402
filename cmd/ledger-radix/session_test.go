// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledger "github.com/luxfi/ledger-radix-go"
)

func TestAskOperator(t *testing.T) {
	var out bytes.Buffer
	ask := askOperator(strings.NewReader("maybe\ny\nno\n"), &out)
	prompt := ledger.Prompt{Instruction: ledger.InsSignHash, Kind: ledger.PromptRequireConfirmation}

	assert.Equal(t, ledger.ButtonRightAccept, ask(prompt))
	assert.Equal(t, ledger.ButtonLeftReject, ask(prompt))
	assert.Equal(t, ledger.ButtonLeftReject, ask(prompt), "end of input rejects")
	assert.Equal(t, 4, strings.Count(out.String(), "confirm SignHash"))
}

func TestValidate(t *testing.T) {
	defer vip.Set(TransportKey, transportHID)

	vip.Set(TransportKey, transportEmulated)
	require.NoError(t, validate())

	vip.Set(TransportKey, "bluetooth")
	assert.Error(t, validate())

	vip.Set(TransportKey, transportReplay)
	vip.Set(RecordFileKey, "")
	assert.Error(t, validate())
}
