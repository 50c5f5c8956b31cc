// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package regmap provides 32-bit register access to memory mapped hardware.
// Device drivers take the Regmap interface so they can run over a real
// /dev/mem window or an in-memory register file under test.
package regmap

type Regmap interface {
	Read(off uint32) (uint32, error)
	Write(off uint32, v uint32) error

	// UpdateBits does a read-modify-write restricted to the masked bits.
	UpdateBits(off, mask, v uint32) error
}
