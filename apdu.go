// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"bytes"
	"fmt"

	"github.com/skythen/apdu"
)

// CLA is the instruction class of the Radix application.
const CLA byte = 0xAA

// Instruction is the APDU opcode of an operation.
type Instruction byte

const (
	InsGetVersion   Instruction = 0x00
	InsSignHash     Instruction = 0x02
	InsKeyExchange  Instruction = 0x04
	InsGetPublicKey Instruction = 0x08
)

func (i Instruction) String() string {
	switch i {
	case InsGetVersion:
		return "GetVersion"
	case InsSignHash:
		return "SignHash"
	case InsKeyExchange:
		return "KeyExchange"
	case InsGetPublicKey:
		return "GetPublicKey"
	default:
		return fmt.Sprintf("Instruction(0x%02x)", byte(i))
	}
}

// StatusCode is the two byte status word closing every response.
type StatusCode uint16

const (
	StatusOK              StatusCode = 0x9000
	StatusWrongLength     StatusCode = 0x6700
	StatusUserRejected    StatusCode = 0x6985
	StatusInvalidData     StatusCode = 0x6a80
	StatusInvalidP1P2     StatusCode = 0x6b00
	StatusInsNotSupported StatusCode = 0x6d00
	StatusClaNotSupported StatusCode = 0x6e00
)

func (s StatusCode) String() string {
	return fmt.Sprintf("0x%04x", uint16(s))
}

const (
	p1NoConfirmation byte = 0x00
	p1Confirmation   byte = 0x01

	maxDataLength = 0xff
)

// Request is a command APDU together with the status words that count as
// success for it.
type Request struct {
	Cla                 byte
	Ins                 Instruction
	P1                  byte
	P2                  byte
	Data                []byte
	ExpectedStatusCodes []StatusCode
}

// Bytes encodes the request as [cla][ins][p1][p2][lc][data]. Lc is always
// present, zero when there is no payload, as Ledger applications expect.
func (r Request) Bytes() ([]byte, error) {
	if len(r.Data) > maxDataLength {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrInvalidArgument, len(r.Data), maxDataLength)
	}
	buf := make([]byte, 0, 5+len(r.Data))
	buf = append(buf, r.Cla, byte(r.Ins), r.P1, r.P2, byte(len(r.Data)))
	return append(buf, r.Data...), nil
}

// Accepts reports whether code is one of the expected status words.
func (r Request) Accepts(code StatusCode) bool {
	for _, expected := range r.ExpectedStatusCodes {
		if expected == code {
			return true
		}
	}
	return false
}

// RequiresConfirmation reports whether the request asks the device to
// prompt the operator.
func (r Request) RequiresConfirmation() bool {
	return r.P1 == p1Confirmation
}

func (r Request) equalWire(other Request) bool {
	return r.Cla == other.Cla && r.Ins == other.Ins && r.P1 == other.P1 &&
		r.P2 == other.P2 && bytes.Equal(r.Data, other.Data)
}

// ParseRequest decodes a command APDU as produced by Request.Bytes.
func ParseRequest(raw []byte) (Request, error) {
	capdu, err := apdu.ParseCapdu(raw)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Cla:  capdu.Cla,
		Ins:  Instruction(capdu.Ins),
		P1:   capdu.P1,
		P2:   capdu.P2,
		Data: cloneBytes(capdu.Data),
	}, nil
}

// Response is a response APDU.
type Response struct {
	StatusCode StatusCode
	Data       []byte
}

// Bytes encodes the response as [data][sw1][sw2].
func (r Response) Bytes() ([]byte, error) {
	rapdu := apdu.Rapdu{
		Data: r.Data,
		SW1:  byte(r.StatusCode >> 8),
		SW2:  byte(r.StatusCode),
	}
	return rapdu.Bytes()
}

// ParseResponse decodes a response APDU.
func ParseResponse(raw []byte) (Response, error) {
	rapdu, err := apdu.ParseRapdu(raw)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return Response{
		StatusCode: StatusCode(uint16(rapdu.SW1)<<8 | uint16(rapdu.SW2)),
		Data:       cloneBytes(rapdu.Data),
	}, nil
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}
