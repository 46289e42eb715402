// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

// Package semver holds the three byte application version reported by the
// device.
package semver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Size is the serialized length of a version.
const Size = 3

var ErrMalformedVersion = errors.New("malformed version")

type SemVer struct {
	Major uint8
	Minor uint8
	Patch uint8
}

// FromBytes maps byte 0, 1 and 2 to major, minor and patch.
func FromBytes(b []byte) (SemVer, error) {
	if len(b) != Size {
		return SemVer{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedVersion, Size, len(b))
	}
	return SemVer{Major: b[0], Minor: b[1], Patch: b[2]}, nil
}

// Parse parses "major.minor.patch".
func Parse(s string) (SemVer, error) {
	v := "v" + s
	if !semver.IsValid(v) || semver.Canonical(v) != v || semver.Prerelease(v) != "" {
		return SemVer{}, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
	}

	parts := strings.Split(s, ".")
	var fields [Size]uint8
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return SemVer{}, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
		}
		fields[i] = uint8(n)
	}

	return FromBytes(fields[:])
}

// MustParse is like Parse but panics on error.
func MustParse(s string) SemVer {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v SemVer) Bytes() []byte {
	return []byte{v.Major, v.Minor, v.Patch}
}

func (v SemVer) Equal(other SemVer) bool {
	return v == other
}

func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
