// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"errors"
	"fmt"

	"github.com/luxfi/ledger-radix-go/hdpath"
	"github.com/luxfi/ledger-radix-go/semver"
)

var (
	ErrInvalidPathComponent = hdpath.ErrInvalidPathComponent
	ErrMalformedPath        = hdpath.ErrMalformedPath
	ErrMalformedVersion     = semver.ErrMalformedVersion

	// ErrUnexpectedStatusCode is returned when the device answers with a
	// status word the request does not accept.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrMalformedResponse is returned when a response payload does not have
	// the shape the operation expects.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrUnsupportedInstruction is returned when the device does not know
	// the instruction.
	ErrUnsupportedInstruction = errors.New("unsupported instruction")
	// ErrUserRejected is returned when the operator declines on the device.
	ErrUserRejected = errors.New("rejected by user on device")
	ErrDisconnected = errors.New("device disconnected")
	ErrTimeout      = errors.New("timeout waiting for device")

	ErrInvalidArgument = errors.New("invalid argument")
	ErrReplayMismatch  = errors.New("request does not match recording")
)

// StatusCodeError carries a status word the request did not accept.
type StatusCodeError struct {
	Instruction Instruction
	Code        StatusCode
	Expected    []StatusCode
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("%s: device answered %s to %s, expected %v",
		e.kind(), e.Code, e.Instruction, e.Expected)
}

// Is lets callers tell a rejection apart from a communication error.
func (e *StatusCodeError) Is(target error) bool {
	return target == e.kind()
}

func (e *StatusCodeError) kind() error {
	switch e.Code {
	case StatusUserRejected:
		return ErrUserRejected
	case StatusInsNotSupported:
		return ErrUnsupportedInstruction
	default:
		return ErrUnexpectedStatusCode
	}
}
