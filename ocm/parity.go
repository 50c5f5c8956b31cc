// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package ocm

import (
	"github.com/platinasystems/clkgen/regmap"
	"github.com/platinasystems/log"
)

const (
	parityCtlReg     = 0x0
	parityEnableBits = 0x1e

	parityErrAddrReg = 0x4

	irqStsReg     = 0x8
	irqStsErrMask = 0x7
)

// Parity drives the parity checking of the OCM controller block.
type Parity struct {
	Regs regmap.Regmap
}

func (p Parity) Enable() error {
	return p.Regs.Write(parityCtlReg, parityEnableBits)
}

func (p Parity) Disable() error {
	return p.Regs.Write(parityCtlReg, 0)
}

// Fault describes a latched parity error.
type Fault struct {
	Status uint32 // error bits of the interrupt status register
	Addr   uint32 // failing SRAM address
}

// Check polls the interrupt status register. It returns a Fault when error
// status is latched, nil when the SRAM is clean.
func (p Parity) Check() (*Fault, error) {
	sts, err := p.Regs.Read(irqStsReg)
	if err != nil {
		return nil, err
	}
	if sts&irqStsErrMask == 0 {
		return nil, nil
	}
	addr, err := p.Regs.Read(parityErrAddrReg)
	if err != nil {
		return nil, err
	}
	f := &Fault{Status: sts & irqStsErrMask, Addr: addr}
	log.Printf("err", "ocm parity error at %#04x (stat: %#08x)",
		f.Addr, f.Status)
	return f, nil
}
