// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package hdpath

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// HardenedOffset is added to the index of a hardened component.
	HardenedOffset int64 = 0x80000000

	MinIndex int64 = math.MinInt32
	MaxIndex int64 = math.MaxInt32
)

var (
	// ErrInvalidPathComponent is returned when a component is not an integer
	// or falls outside the 32-bit signed range.
	ErrInvalidPathComponent = errors.New("invalid path component")
	// ErrMalformedPath is returned when separators are misused.
	ErrMalformedPath = errors.New("malformed path")
)

// Component is a single level of a derivation path.
type Component struct {
	index    int32
	hardened bool
	level    int
}

// NewComponent validates index against the 32-bit signed range.
func NewComponent(index int64, hardened bool, level int) (Component, error) {
	if err := validateIndex(index); err != nil {
		return Component{}, err
	}
	if level < 0 {
		return Component{}, fmt.Errorf("%w: negative level %d", ErrInvalidPathComponent, level)
	}
	return Component{index: int32(index), hardened: hardened, level: level}, nil
}

func validateIndex(index int64) error {
	if index > MaxIndex {
		return fmt.Errorf("%w: %d larger than int32 max value", ErrInvalidPathComponent, index)
	}
	if index < MinIndex {
		return fmt.Errorf("%w: %d smaller than int32 min value", ErrInvalidPathComponent, index)
	}
	return nil
}

// Index returns the value before hardening.
func (c Component) Index() int32 { return c.index }

func (c Component) Hardened() bool { return c.hardened }

func (c Component) Level() int { return c.level }

// Value returns the wire value, index + 0x80000000 for hardened components.
func (c Component) Value() int64 {
	if c.hardened {
		return int64(c.index) + HardenedOffset
	}
	return int64(c.index)
}

// Bytes returns the wire value as 4 big-endian bytes.
func (c Component) Bytes() []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(c.Value()))
	return buf
}

func (c Component) String() string {
	return DefaultFormat.formatComponent(c)
}

func (c Component) withLevel(level int) Component {
	c.level = level
	return c
}

// ParseComponent parses a single component with the default format.
func ParseComponent(s string, level int) (Component, error) {
	return DefaultFormat.ParseComponent(s, level)
}

// ParseComponent parses a component such as "44'" or "3".
func (f Format) ParseComponent(s string, level int) (Component, error) {
	if err := f.validate(); err != nil {
		return Component{}, err
	}
	if strings.Contains(s, f.Separator) {
		return Component{}, fmt.Errorf("%w: component %q contains separator %q", ErrMalformedPath, s, f.Separator)
	}

	raw := s
	hardened := false
	if strings.HasSuffix(raw, f.Hardener) {
		hardened = true
		raw = strings.TrimSuffix(raw, f.Hardener)
	}

	index, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Component{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidPathComponent, s)
	}

	return NewComponent(index, hardened, level)
}

func (f Format) formatComponent(c Component) string {
	s := strconv.FormatInt(int64(c.index), 10)
	if c.hardened {
		s += f.Hardener
	}
	return s
}
