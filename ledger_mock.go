//go:build ledger_mock
// +build ledger_mock

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"errors"

	"github.com/luxfi/ledger-radix-go/semver"
)

// MockMnemonic seeds the device returned by the mock admin.
const MockMnemonic = "equip will roof matter pink blind book anxiety banner elbow sun young"

// MockVersion is reported by the mock device.
var MockVersion = semver.SemVer{Major: 0, Minor: 0, Patch: 1}

type LedgerAdminMock struct{}

func NewLedgerAdmin() LedgerAdmin {
	return &LedgerAdminMock{}
}

func (admin *LedgerAdminMock) CountDevices() int {
	return 1
}

func (admin *LedgerAdminMock) ListDevices() ([]string, error) {
	return []string{"mock"}, nil
}

// Connect returns an emulated device that confirms every prompt.
func (admin *LedgerAdminMock) Connect(deviceIndex int) (LedgerDevice, error) {
	if deviceIndex != 0 {
		return nil, errors.New("device not found")
	}
	device, err := NewEmulatedDevice(EmulatedConfig{
		Mnemonic: MockMnemonic,
		Version:  MockVersion,
	})
	if err != nil {
		return nil, err
	}
	return device, nil
}
