// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ledger-radix-go/semver"
)

func recordSession(t *testing.T) *Recorder {
	t.Helper()

	e := emulateHardwareWallet(t, semver.MustParse("2.5.9"))
	startOperator(t, e.io, func(p Prompt) ButtonPress {
		if p.Instruction == InsSignHash {
			return ButtonLeftReject
		}
		return ButtonRightAccept
	})

	ctx := context.Background()
	_, err := e.wallet.GetVersion(ctx)
	require.NoError(t, err)
	_, err = e.wallet.GetPublicKey(ctx, testPath(t), true)
	require.NoError(t, err)
	_, err = e.wallet.SignHash(ctx, testPath(t), testHash(), true)
	require.ErrorIs(t, err, ErrUserRejected)

	return e.store
}

func TestRecorderAttachesInteractions(t *testing.T) {
	store := recordSession(t)

	recorded := store.Recorded()
	require.Len(t, recorded, 3)
	assert.Empty(t, recorded[0].Interactions)
	require.Len(t, recorded[1].Interactions, 1)
	assert.True(t, recorded[1].Interactions[0].Accepted())
	require.Len(t, recorded[2].Interactions, 1)
	assert.False(t, recorded[2].Interactions[0].Accepted())
	assert.Equal(t, StatusUserRejected, recorded[2].Response.StatusCode)

	assert.Len(t, store.UserIO(), 2)
	assert.NotEqual(t, recorded[0].ID, recorded[1].ID)
}

func TestRecorderDiscardsInteractionsOfFailedExchanges(t *testing.T) {
	store := NewRecorder()
	store.RecordInteraction(Interaction{Prompt: Prompt{Instruction: InsSignHash}, Button: ButtonRightAccept})
	store.discardPending()

	exchange := store.RecordExchange(getVersionRequest(), Response{StatusCode: StatusOK, Data: []byte{1, 2, 3}})
	assert.Empty(t, exchange.Interactions)
	assert.Len(t, store.UserIO(), 1)

	_, ok := NewRecorder().Last()
	assert.False(t, ok)
}

func TestRecordingRoundTrip(t *testing.T) {
	store := recordSession(t)

	data, err := store.MarshalCBOR()
	require.NoError(t, err)

	loaded, err := LoadRecording(data)
	require.NoError(t, err)

	recorded := store.Recorded()
	require.Len(t, loaded, len(recorded))
	for i := range recorded {
		assert.Equal(t, recorded[i].ID, loaded[i].ID)
		assert.True(t, recorded[i].Request.equalWire(loaded[i].Request))
		assert.Equal(t, recorded[i].Request.ExpectedStatusCodes, loaded[i].Request.ExpectedStatusCodes)
		assert.Equal(t, recorded[i].Response.StatusCode, loaded[i].Response.StatusCode)
		assert.Equal(t, hex.EncodeToString(recorded[i].Response.Data), hex.EncodeToString(loaded[i].Response.Data))
		assert.Len(t, loaded[i].Interactions, len(recorded[i].Interactions))
	}

	_, err = LoadRecording([]byte{0xff, 0x00})
	assert.Error(t, err)
}

func TestReplayTransport(t *testing.T) {
	store := recordSession(t)
	replay := NewReplayTransport(store.Recorded())
	wallet := New(replay)
	ctx := context.Background()

	version, err := wallet.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2.5.9", version.String())

	publicKey, err := wallet.GetPublicKey(ctx, testPath(t), true)
	require.NoError(t, err)
	assert.Equal(t, expectedPublicKey, hex.EncodeToString(publicKey.SerializeCompressed()))

	_, err = wallet.SignHash(ctx, testPath(t), testHash(), true)
	require.ErrorIs(t, err, ErrUserRejected)
	assert.Zero(t, replay.Remaining())

	_, err = wallet.GetVersion(ctx)
	assert.ErrorIs(t, err, ErrDisconnected)
	assert.NoError(t, wallet.Close())
}

func TestReplayTransportMismatch(t *testing.T) {
	store := recordSession(t)
	replay := NewReplayTransport(store.Recorded())
	wallet := New(replay)

	_, err := wallet.GetPublicKey(context.Background(), testPath(t), true)
	require.ErrorIs(t, err, ErrReplayMismatch)
	assert.Equal(t, 3, replay.Remaining())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = replay.Exchange(ctx, getVersionRequest())
	assert.ErrorIs(t, err, context.Canceled)
}
