// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package hdpath

import (
	"fmt"
	"strings"
)

// RootMarker prefixes every absolute path.
const RootMarker = "m"

// Format describes how paths are written.
type Format struct {
	Separator string
	Hardener  string
}

func (f Format) validate() error {
	switch {
	case f.Separator == "":
		return fmt.Errorf("%w: empty separator", ErrMalformedPath)
	case f.Hardener == "":
		return fmt.Errorf("%w: empty hardener", ErrMalformedPath)
	case f.Separator == f.Hardener:
		return fmt.Errorf("%w: separator and hardener are both %q", ErrMalformedPath, f.Separator)
	}
	return nil
}

// DefaultFormat renders paths like m/44'/536'/0'/0/0.
var DefaultFormat = Format{Separator: "/", Hardener: "'"}

// Path is a non-empty hierarchical deterministic derivation path.
type Path struct {
	components []Component
}

// NewPath builds a path from components. Levels are reassigned by depth.
func NewPath(components ...Component) (Path, error) {
	if len(components) == 0 {
		return Path{}, fmt.Errorf("%w: path has no components", ErrMalformedPath)
	}
	cs := make([]Component, len(components))
	for i, c := range components {
		cs[i] = c.withLevel(i + 1)
	}
	return Path{components: cs}, nil
}

// Parse parses a path with the default format.
func Parse(s string) (Path, error) {
	return DefaultFormat.Parse(s)
}

// Parse parses an absolute path such as m/44'/536'/2'/1/3.
func (f Format) Parse(s string) (Path, error) {
	if err := f.validate(); err != nil {
		return Path{}, err
	}

	elems := strings.Split(s, f.Separator)
	if len(elems) < 2 || elems[0] != RootMarker {
		return Path{}, fmt.Errorf("%w: %q must start with %q", ErrMalformedPath, s, RootMarker+f.Separator)
	}

	components := make([]Component, 0, len(elems)-1)
	for i, elem := range elems[1:] {
		if elem == "" {
			return Path{}, fmt.Errorf("%w: empty component in %q", ErrMalformedPath, s)
		}
		c, err := f.ParseComponent(elem, i+1)
		if err != nil {
			return Path{}, err
		}
		components = append(components, c)
	}

	return Path{components: components}, nil
}

// Components returns a copy of the path components.
func (p Path) Components() []Component {
	cs := make([]Component, len(p.components))
	copy(cs, p.components)
	return cs
}

func (p Path) Len() int { return len(p.components) }

// IsZero reports whether p was never built.
func (p Path) IsZero() bool { return len(p.components) == 0 }

// Values returns the BIP32 child indexes in path order.
func (p Path) Values() []uint32 {
	values := make([]uint32, len(p.components))
	for i, c := range p.components {
		values[i] = uint32(c.Value())
	}
	return values
}

// Bytes serializes every component as 4 big-endian bytes, in path order.
func (p Path) Bytes() []byte {
	buf := make([]byte, 0, 4*len(p.components))
	for _, c := range p.components {
		buf = append(buf, c.Bytes()...)
	}
	return buf
}

func (p Path) String() string {
	return DefaultFormat.Format(p)
}

// Format renders p using the separator and hardener of f.
func (f Format) Format(p Path) string {
	if p.IsZero() {
		return ""
	}
	parts := make([]string, 0, len(p.components)+1)
	parts = append(parts, RootMarker)
	for _, c := range p.components {
		parts = append(parts, f.formatComponent(c))
	}
	return strings.Join(parts, f.Separator)
}
