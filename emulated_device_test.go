// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ledger-radix-go/semver"
)

func newTestDevice(t *testing.T, io *EmulatedIO) *EmulatedDevice {
	t.Helper()
	device, err := NewEmulatedDevice(EmulatedConfig{
		Mnemonic: testMnemonic,
		Version:  semver.MustParse("1.2.3"),
		IO:       io,
	})
	require.NoError(t, err)
	return device
}

func exchangeRaw(t *testing.T, device *EmulatedDevice, command string) Response {
	t.Helper()
	raw, err := hex.DecodeString(command)
	require.NoError(t, err)

	out, err := device.Exchange(context.Background(), raw)
	require.NoError(t, err)

	resp, err := ParseResponse(out)
	require.NoError(t, err)
	return resp
}

func TestNewEmulatedDeviceRejectsBadMnemonic(t *testing.T) {
	_, err := NewEmulatedDevice(EmulatedConfig{Mnemonic: "not a mnemonic"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEmulatedDeviceStatusWords(t *testing.T) {
	device := newTestDevice(t, nil)
	assert.Equal(t, StateIdle, device.State())

	cases := []struct {
		name    string
		command string
		status  StatusCode
	}{
		{"version", "aa00000000", StatusOK},
		{"wrong class", "e000000000", StatusClaNotSupported},
		{"unknown instruction", "aa42000000", StatusInsNotSupported},
		{"p2 set", "aa00000100", StatusInvalidP1P2},
		{"p1 out of range", "aa08020000", StatusInvalidP1P2},
		{"version with confirmation", "aa00010000", StatusInvalidP1P2},
		{"version with payload", "aa0000000101", StatusWrongLength},
		{"short path", "aa080000080000000200000001", StatusWrongLength},
		{"sign without hash", "aa0200000c000000020000000100000003", StatusWrongLength},
		{"key exchange with bad point", "aa04000011000000020000000100000003" + "0500000000", StatusWrongLength},
		{"truncated", "aa00", StatusWrongLength},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := exchangeRaw(t, device, c.command)
			assert.Equal(t, c.status, resp.StatusCode)
			if c.status == StatusOK {
				assert.Equal(t, StateResponded, device.State())
			} else {
				assert.Empty(t, resp.Data)
				assert.Equal(t, StateFailed, device.State())
			}
		})
	}
}

func TestEmulatedDeviceInvalidCounterparty(t *testing.T) {
	device := newTestDevice(t, nil)

	notAPoint := "000000020000000100000003" + "04" + hex.EncodeToString(make([]byte, 64))
	resp := exchangeRaw(t, device, "aa040000"+hex.EncodeToString([]byte{byte(keyExchangePayloadSize)})+notAPoint)
	assert.Equal(t, StatusInvalidData, resp.StatusCode)
}

func TestEmulatedDeviceAutoConfirmsWithoutIO(t *testing.T) {
	device := newTestDevice(t, nil)

	var seen []Interaction
	device.OnInteraction(func(i Interaction) { seen = append(seen, i) })

	resp := exchangeRaw(t, device, "aa0801000c000000020000000100000003")
	assert.Equal(t, StatusOK, resp.StatusCode)
	assert.Equal(t, expectedPublicKey, hex.EncodeToString(resp.Data))
	assert.Empty(t, seen)
}

func TestEmulatedDeviceConfirmation(t *testing.T) {
	io := NewEmulatedIO()
	device := newTestDevice(t, io)

	var seen []Interaction
	device.OnInteraction(func(i Interaction) { seen = append(seen, i) })

	pressed := make(chan struct{})
	go func() {
		defer close(pressed)
		prompt := <-io.Prompts
		assert.Equal(t, InsGetPublicKey, prompt.Instruction)
		assert.Equal(t, StatePrompting, device.State())
		assert.True(t, prompt.Press(ButtonBothNavigate))
		assert.True(t, prompt.Press(ButtonRightAccept))
	}()

	resp := exchangeRaw(t, device, "aa0801000c000000020000000100000003")
	<-pressed
	assert.Equal(t, StatusOK, resp.StatusCode)
	assert.Equal(t, StateResponded, device.State())

	require.Len(t, seen, 2)
	assert.Equal(t, ButtonBothNavigate, seen[0].Button)
	assert.False(t, seen[0].Accepted())
	assert.Equal(t, ButtonRightAccept, seen[1].Button)
	assert.Equal(t, InsGetPublicKey, seen[1].Prompt.Instruction)
	assert.Equal(t, seen[0].Prompt.ID, seen[1].Prompt.ID)
}

func TestEmulatedDevicePromptsAreSingleUse(t *testing.T) {
	io := NewEmulatedIO()
	device := newTestDevice(t, io)

	ctx, cancel := context.WithCancel(context.Background())
	held := make(chan Prompt, 1)
	go func() {
		prompt := <-io.Prompts
		held <- prompt
		cancel()
	}()

	raw, _ := hex.DecodeString("aa0801000c000000020000000100000003")
	_, err := device.Exchange(ctx, raw)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, device.State())

	abandoned := <-held
	assert.False(t, abandoned.Press(ButtonRightAccept))

	pressed := make(chan struct{})
	go func() {
		defer close(pressed)
		prompt := <-io.Prompts
		assert.NotEqual(t, abandoned.ID, prompt.ID)
		assert.False(t, abandoned.Press(ButtonRightAccept))
		assert.True(t, prompt.Press(ButtonLeftReject))
		assert.False(t, prompt.Press(ButtonRightAccept))
	}()

	resp := exchangeRaw(t, device, "aa0801000c000000020000000100000003")
	<-pressed
	assert.Equal(t, StatusUserRejected, resp.StatusCode)
	assert.Equal(t, StateFailed, device.State())
}

func TestEmulatedDeviceDropsUnreadPrompt(t *testing.T) {
	io := NewEmulatedIO()
	device, err := NewEmulatedDevice(EmulatedConfig{
		Mnemonic:            testMnemonic,
		IO:                  io,
		ConfirmationTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	raw, _ := hex.DecodeString("aa0801000c000000020000000100000003")
	_, err = device.Exchange(context.Background(), raw)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Empty(t, io.Prompts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go io.Respond(ctx, AlwaysAccept)

	resp := exchangeRaw(t, device, "aa0801000c000000020000000100000003")
	assert.Equal(t, StatusOK, resp.StatusCode)
}

func TestEmulatedDeviceUnregisterObserver(t *testing.T) {
	io := NewEmulatedIO()
	device := newTestDevice(t, io)

	var first, second int
	unregister := device.OnInteraction(func(Interaction) { first++ })
	device.OnInteraction(func(Interaction) { second++ })
	unregister()
	unregister()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go io.Respond(ctx, AlwaysAccept)

	resp := exchangeRaw(t, device, "aa0801000c000000020000000100000003")
	assert.Equal(t, StatusOK, resp.StatusCode)
	assert.Zero(t, first)
	assert.Equal(t, 1, second)
}

func TestEmulatedDeviceConfirmationTimeout(t *testing.T) {
	device, err := NewEmulatedDevice(EmulatedConfig{
		Mnemonic:            testMnemonic,
		IO:                  NewEmulatedIO(),
		ConfirmationTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	raw, _ := hex.DecodeString("aa0801000c000000020000000100000003")
	_, err = device.Exchange(context.Background(), raw)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, StateFailed, device.State())

	device.Reset()
	assert.Equal(t, StateIdle, device.State())
}

func TestEmulatedDeviceClosed(t *testing.T) {
	device := newTestDevice(t, nil)
	require.NoError(t, device.Close())

	_, err := device.Exchange(context.Background(), []byte{0xaa, 0x00, 0x00, 0x00, 0x00})
	assert.ErrorIs(t, err, ErrDisconnected)
}
