// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytesEqualsParse(t *testing.T) {
	fromBytes, err := FromBytes([]byte{2, 5, 9})
	require.NoError(t, err)

	fromString, err := Parse("2.5.9")
	require.NoError(t, err)

	assert.True(t, fromBytes.Equal(fromString))
	assert.Equal(t, "2.5.9", fromBytes.String())
	assert.Equal(t, []byte{2, 5, 9}, fromString.Bytes())
}

func TestParse(t *testing.T) {
	v, err := Parse("255.0.17")
	require.NoError(t, err)
	assert.Equal(t, SemVer{Major: 255, Minor: 0, Patch: 17}, v)
}

func TestMalformedVersion(t *testing.T) {
	for _, b := range [][]byte{nil, {}, {1}, {1, 2}, {1, 2, 3, 4}} {
		_, err := FromBytes(b)
		assert.ErrorIs(t, err, ErrMalformedVersion)
	}

	for _, s := range []string{"", "1", "1.2", "1.2.3.4", "a.b.c", "1.2.x", "256.0.0", "1.2.3-rc1", "1.2.3+build", "01.2.3", "-1.2.3", "v1.2.3"} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrMalformedVersion, s)
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("nope") })
	assert.NotPanics(t, func() { MustParse("1.0.0") })
}
