// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const (
	// Channel and PacketSize are what Ledger devices use over HID.
	Channel    = 0x0101
	PacketSize = 64

	tagAPDU          = 0x05
	frameHeaderSize  = 5
	frameLengthSize  = 2
	minFramePacketSz = frameHeaderSize + frameLengthSize + 1
)

// WrapCommandAPDU turns the command into a sequence of HID packets:
// [channel:2][tag:1][seq:2] followed by the payload, the first packet
// carrying the total command length in 2 bytes.
func WrapCommandAPDU(channel uint16, command []byte, packetSize int) ([][]byte, error) {
	if packetSize < minFramePacketSz {
		return nil, fmt.Errorf("packet size must be at least %d", minFramePacketSz)
	}
	if len(command) > 0xffff {
		return nil, errors.New("command too long")
	}

	payload := make([]byte, frameLengthSize, frameLengthSize+len(command))
	binary.BigEndian.PutUint16(payload, uint16(len(command)))
	payload = append(payload, command...)

	var chunks [][]byte
	for seq := uint16(0); len(payload) > 0; seq++ {
		packet := make([]byte, packetSize)
		binary.BigEndian.PutUint16(packet[0:2], channel)
		packet[2] = tagAPDU
		binary.BigEndian.PutUint16(packet[3:5], seq)

		n := copy(packet[frameHeaderSize:], payload)
		payload = payload[n:]
		chunks = append(chunks, packet)
	}

	return chunks, nil
}

// UnwrapResponseAPDU reassembles a response from the packets returned by
// next. Errors from next are passed through unchanged.
func UnwrapResponseAPDU(channel uint16, next func() ([]byte, error), packetSize int) ([]byte, error) {
	var response []byte
	total := -1

	for seq := uint16(0); total < 0 || len(response) < total; seq++ {
		packet, err := next()
		if err != nil {
			return nil, err
		}
		if len(packet) > packetSize {
			packet = packet[:packetSize]
		}
		if len(packet) < frameHeaderSize {
			return nil, fmt.Errorf("%w: frame of %d bytes", ErrMalformedResponse, len(packet))
		}
		if received := binary.BigEndian.Uint16(packet[0:2]); received != channel {
			return nil, fmt.Errorf("%w: frame on channel 0x%04x", ErrMalformedResponse, received)
		}
		if packet[2] != tagAPDU {
			return nil, fmt.Errorf("%w: frame tag 0x%02x", ErrMalformedResponse, packet[2])
		}
		if received := binary.BigEndian.Uint16(packet[3:5]); received != seq {
			return nil, fmt.Errorf("%w: frame sequence %d, expected %d", ErrMalformedResponse, received, seq)
		}

		body := packet[frameHeaderSize:]
		if seq == 0 {
			if len(body) < frameLengthSize {
				return nil, fmt.Errorf("%w: first frame without length", ErrMalformedResponse)
			}
			total = int(binary.BigEndian.Uint16(body[:frameLengthSize]))
			body = body[frameLengthSize:]
		}
		response = append(response, body...)
	}

	return response[:total], nil
}

// readResponse reassembles a response APDU from the frames read off the
// device. A closed channel means the device is gone; no frame within
// readTimeout or an expired ctx is a timeout.
func readResponse(ctx context.Context, frames <-chan []byte, readTimeout time.Duration) ([]byte, error) {
	next := func() ([]byte, error) {
		timer := time.NewTimer(readTimeout)
		defer timer.Stop()

		select {
		case frame, ok := <-frames:
			if !ok {
				return nil, ErrDisconnected
			}
			return frame, nil
		case <-timer.C:
			return nil, fmt.Errorf("%w: no frame within %s", ErrTimeout, readTimeout)
		case <-ctx.Done():
			return nil, contextError(ctx)
		}
	}

	response, err := UnwrapResponseAPDU(Channel, next, PacketSize)
	if err != nil {
		return nil, err
	}
	if len(response) < 2 {
		return nil, fmt.Errorf("%w: response too short: %d bytes", ErrMalformedResponse, len(response))
	}
	return response, nil
}
