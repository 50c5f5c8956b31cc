// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package ocm

import (
	"github.com/platinasystems/clkgen/regmap"
)

const (
	CtrlBase = 0xf800c000
	CtrlSize = 0x1000

	slcrBase   = 0xf8000000
	slcrSize   = 0x1000
	slcrOcmCfg = 0x910
	ocmCfgMask = 0xf
)

// Attach maps the OCM controller through /dev/mem, reads the SLCR block
// mapping, and builds the device view. Close releases the mapping.
func Attach() (*Dev, error) {
	slcr, err := regmap.MapDevMem(slcrBase, slcrSize)
	if err != nil {
		return nil, err
	}
	cfg, err := slcr.Read(slcrOcmCfg)
	slcr.Close()
	if err != nil {
		return nil, err
	}
	mem, err := regmap.MapDevMem(CtrlBase, CtrlSize)
	if err != nil {
		return nil, err
	}
	d, err := New(mem, cfg&ocmCfgMask)
	if err != nil {
		mem.Close()
		return nil, err
	}
	d.mem = mem
	return d, nil
}

func (d *Dev) Close() error {
	if d.mem == nil {
		return nil
	}
	return d.mem.Close()
}
