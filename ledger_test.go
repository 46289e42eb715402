// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

var (
	_ Transport         = (*DeviceTransport)(nil)
	_ Transport         = (*EmulatedTransport)(nil)
	_ Transport         = (*ReplayTransport)(nil)
	_ InteractionSource = (*EmulatedTransport)(nil)
	_ LedgerDevice      = (*EmulatedDevice)(nil)
)
