// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package ocm manages Zynq-class on-chip SRAM: the block address layout
// selected by the SLCR configuration word, an allocation pool over the
// resulting windows, and the controller's parity machinery.
package ocm

import (
	"github.com/platinasystems/clkgen/regmap"
	"github.com/platinasystems/log"
)

const (
	HighBase    = 0xfffc0000
	LowBase     = 0x0
	BlockSize   = 0x10000
	Blocks      = 4
	Granularity = 32
)

// Window is one contiguous stretch of SRAM address space.
type Window struct {
	Start uint32
	End   uint32
}

func (w Window) Size() uint32 { return w.End - w.Start + 1 }

// Layout derives the SRAM windows from the SLCR OCM configuration word:
// bit i of cfg places 64 KiB block i at the high alias, otherwise it sits
// at the low one. Blocks that land back to back merge into one window.
func Layout(cfg uint32) []Window {
	var ws []Window
	for i := uint32(0); i < Blocks; i++ {
		base := uint32(LowBase)
		if cfg&(1<<i) != 0 {
			base = HighBase
		}
		start := base + i*BlockSize
		end := start + BlockSize - 1
		if n := len(ws); n > 0 && start == ws[n-1].End+1 {
			ws[n-1].End = end
		} else {
			ws = append(ws, Window{start, end})
		}
	}
	return ws
}

// Dev is one on-chip SRAM instance: its windows, an allocator over them,
// and the parity controls of the OCM controller block.
type Dev struct {
	Windows []Window
	Pool    *Pool
	Parity  Parity

	mem *regmap.DevMem // set when the device mapped its own window
}

// New lays out the SRAM from cfg, builds the pool, and enables parity
// checking on the controller.
func New(regs regmap.Regmap, cfg uint32) (*Dev, error) {
	ws := Layout(cfg)
	d := &Dev{
		Windows: ws,
		Pool:    NewPool(ws),
		Parity:  Parity{regs},
	}
	if err := d.Parity.Enable(); err != nil {
		return nil, err
	}
	for _, w := range ws {
		log.Printf("ocm window: %d KiB at %#x", w.Size()/1024, w.Start)
	}
	return d, nil
}
