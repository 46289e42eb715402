// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ledger-radix-go/semver"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	io := NewEmulatedIO()
	device, err := NewEmulatedDevice(EmulatedConfig{Mnemonic: testMnemonic, Version: semver.MustParse("1.0.0"), IO: io})
	require.NoError(t, err)
	wallet := New(NewEmulatedTransport(device), WithMetrics(metrics))
	startOperator(t, io, AlwaysReject)

	ctx := context.Background()
	_, err = wallet.GetVersion(ctx)
	require.NoError(t, err)
	_, err = wallet.GetPublicKey(ctx, testPath(t), true)
	require.ErrorIs(t, err, ErrUserRejected)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.exchanges.WithLabelValues("GetVersion", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.exchanges.WithLabelValues("GetPublicKey", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.interactions.WithLabelValues("GetPublicKey", "LeftReject")))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.duration))

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "timeout", outcome(contextError(expiredContext(t))))
	assert.Equal(t, "disconnected", outcome(ErrDisconnected))
	assert.Equal(t, "error", outcome(ErrMalformedResponse))
	assert.Equal(t, "rejected", outcome(&StatusCodeError{Code: StatusUserRejected}))
}

func expiredContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	t.Cleanup(cancel)
	<-ctx.Done()
	return ctx
}
