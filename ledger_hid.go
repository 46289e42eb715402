//go:build !ledger_mock
// +build !ledger_mock

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/hid"
)

const (
	VendorLedger         = 0x2c97
	UsagePageLedgerNanoS = 0xffa0

	// DefaultReadTimeout is how long a read waits for the next frame. The
	// device sends nothing while the operator is deciding.
	DefaultReadTimeout = 2 * time.Minute

	readBufferFrames = 16
)

type LedgerAdminHID struct {
	ReadTimeout time.Duration
}

type LedgerDeviceHID struct {
	device      *hid.Device
	readTimeout time.Duration
	readCo      *sync.Once
	readChannel chan []byte
}

// list of supported product ids as well as their corresponding interfaces
// based on https://github.com/LedgerHQ/ledger-live/blob/develop/libs/ledgerjs/packages/devices/src/index.ts
var supportedLedgerProductID = map[uint8]int{
	0x40: 0, // Ledger Nano X
	0x10: 0, // Ledger Nano S
	0x50: 0, // Ledger Nano S Plus
	0x60: 0, // Ledger Stax
	0x70: 0, // Ledger Flex
}

func NewLedgerAdmin() LedgerAdmin {
	return &LedgerAdminHID{ReadTimeout: DefaultReadTimeout}
}

func (admin *LedgerAdminHID) ListDevices() ([]string, error) {
	devices := hid.Enumerate(0, 0)
	if len(devices) == 0 {
		log.Debug("No devices. Ledger LOCKED OR Other Program/Web Browser may have control of device.")
	}

	var paths []string
	for _, d := range devices {
		logDeviceInfo(d)
		if d.VendorID == VendorLedger && isLedgerDevice(d) {
			paths = append(paths, d.Path)
		}
	}

	return paths, nil
}

func logDeviceInfo(d hid.DeviceInfo) {
	log.Debugf("============ %s", d.Path)
	log.Debugf("VendorID      : %x", d.VendorID)
	log.Debugf("ProductID     : %x", d.ProductID)
	log.Debugf("Release       : %x", d.Release)
	log.Debugf("Serial        : %x", d.Serial)
	log.Debugf("Manufacturer  : %s", d.Manufacturer)
	log.Debugf("Product       : %s", d.Product)
	log.Debugf("UsagePage     : %x", d.UsagePage)
	log.Debugf("Usage         : %x", d.Usage)
}

func isLedgerDevice(d hid.DeviceInfo) bool {
	deviceFound := d.UsagePage == UsagePageLedgerNanoS

	// Workarounds for possible empty usage pages
	productIDMM := uint8(d.ProductID >> 8)
	if interfaceID, supported := supportedLedgerProductID[productIDMM]; deviceFound || (supported && (interfaceID == d.Interface)) {
		return true
	}

	return false
}

func (admin *LedgerAdminHID) CountDevices() int {
	devices := hid.Enumerate(0, 0)

	count := 0
	for _, d := range devices {
		if d.VendorID == VendorLedger && isLedgerDevice(d) {
			count++
		}
	}

	return count
}

func (admin *LedgerAdminHID) Connect(deviceIndex int) (LedgerDevice, error) {
	readTimeout := admin.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}

	devices := hid.Enumerate(0, 0)

	currentIndex := 0
	for _, d := range devices {
		if d.VendorID == VendorLedger && isLedgerDevice(d) {
			if currentIndex == deviceIndex {
				device, err := d.Open()
				if err != nil {
					return nil, err
				}
				return &LedgerDeviceHID{
					device:      device,
					readTimeout: readTimeout,
					readCo:      &sync.Once{},
					readChannel: make(chan []byte, readBufferFrames),
				}, nil
			}
			currentIndex++
		}
	}

	return nil, errors.New("device not found")
}

func (ledger *LedgerDeviceHID) write(buffer []byte) (int, error) {
	totalBytes := len(buffer)
	totalWrittenBytes := 0
	for totalBytes > totalWrittenBytes {
		writtenBytes, err := ledger.device.Write(buffer[totalWrittenBytes:])
		if err != nil {
			return totalWrittenBytes, err
		}
		totalWrittenBytes += writtenBytes
	}
	return totalWrittenBytes, nil
}

func (ledger *LedgerDeviceHID) Read() <-chan []byte {
	ledger.readCo.Do(func() {
		go ledger.readThread()
	})
	return ledger.readChannel
}

func (ledger *LedgerDeviceHID) readThread() {
	defer close(ledger.readChannel)
	for {
		buffer := make([]byte, PacketSize)
		readBytes, err := ledger.device.Read(buffer)
		if err != nil {
			return
		}
		select {
		case ledger.readChannel <- buffer[:readBytes]:
		default:
			log.Debugf("[HID] dropped frame %x", buffer[:readBytes])
		}
	}
}

// drainStale discards frames left over from an abandoned exchange.
func (ledger *LedgerDeviceHID) drainStale(readChannel <-chan []byte) {
	for {
		select {
		case buffer, ok := <-readChannel:
			if !ok {
				return
			}
			log.Debugf("[HID] discarded stale frame %x", buffer)
		default:
			return
		}
	}
}

func (ledger *LedgerDeviceHID) Exchange(ctx context.Context, command []byte) ([]byte, error) {
	if len(command) < 5 {
		return nil, errors.New("APDU commands should not be smaller than 5")
	}

	readChannel := ledger.Read()
	ledger.drainStale(readChannel)

	log.Debugf("[HID] => %x", command)

	// write all the packets
	if err := ledger.sendChunks(command); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDisconnected, err)
	}

	return ledger.getResponse(ctx, readChannel)
}

func (ledger *LedgerDeviceHID) sendChunks(command []byte) error {
	chunks, err := WrapCommandAPDU(Channel, command, PacketSize)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		_, err := ledger.write(chunk)
		if err != nil {
			return err
		}
	}
	return nil
}

func (ledger *LedgerDeviceHID) getResponse(ctx context.Context, readChannel <-chan []byte) ([]byte, error) {
	response, err := readResponse(ctx, readChannel, ledger.readTimeout)
	if err != nil {
		return nil, err
	}

	log.Debugf("[HID] <= %x", response)
	return response, nil
}

func (ledger *LedgerDeviceHID) Close() error {
	return ledger.device.Close()
}
