// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package gcc describes the root clock generators of the SoC's global
// clock controller: parent maps, divider widths, and frequency tables for
// the generators the platform reprograms at runtime. The board's PLL tree
// is fixed by firmware, so parent rates are constants here.
package gcc

import (
	"sort"

	"github.com/platinasystems/clkgen/rcg"
	"github.com/platinasystems/clkgen/regmap"
)

const (
	Base = 0xfc400000
	Size = 0x4000

	iomemName = "fc400000.clock-controller"
)

// parent-map indices
const (
	srcXO = iota
	srcGPLL0
)

const (
	xoRate    = 19200000
	gpll0Rate = 600000000
)

var (
	xoGPLL0      = []uint32{0, 1}
	parentRates  = rcg.Rates{xoRate, gpll0Rate}
)

var uartAppsTbl = []rcg.Freq{
	{Hz: 3686400, Src: srcGPLL0, PreDiv: 1, M: 96, N: 15625},
	{Hz: 7372800, Src: srcGPLL0, PreDiv: 1, M: 192, N: 15625},
	{Hz: 14745600, Src: srcGPLL0, PreDiv: 1, M: 384, N: 15625},
	{Hz: 16000000, Src: srcGPLL0, PreDiv: 4, M: 1, N: 15},
	{Hz: 19200000, Src: srcXO, PreDiv: 0, M: 0, N: 0},
	{Hz: 24000000, Src: srcGPLL0, PreDiv: 9, M: 1, N: 5},
	{Hz: 32000000, Src: srcGPLL0, PreDiv: 1, M: 4, N: 75},
	{Hz: 48000000, Src: srcGPLL0, PreDiv: 24, M: 0, N: 0},
	{Hz: 0, Src: 0, PreDiv: 0, M: 0, N: 0},
}

var sdccAppsTbl = []rcg.Freq{
	{Hz: 144000, Src: srcXO, PreDiv: 31, M: 3, N: 25},
	{Hz: 400000, Src: srcXO, PreDiv: 23, M: 1, N: 4},
	{Hz: 20000000, Src: srcGPLL0, PreDiv: 29, M: 1, N: 2},
	{Hz: 25000000, Src: srcGPLL0, PreDiv: 23, M: 1, N: 2},
	{Hz: 50000000, Src: srcGPLL0, PreDiv: 23, M: 0, N: 0},
	{Hz: 100000000, Src: srcGPLL0, PreDiv: 11, M: 0, N: 0},
	{Hz: 200000000, Src: srcGPLL0, PreDiv: 5, M: 0, N: 0},
	{Hz: 0, Src: 0, PreDiv: 0, M: 0, N: 0},
}

var usbHsSystemTbl = []rcg.Freq{
	{Hz: 75000000, Src: srcGPLL0, PreDiv: 15, M: 0, N: 0},
	{Hz: 0, Src: 0, PreDiv: 0, M: 0, N: 0},
}

// Clocks builds the controller set over regs. Every generator shares the
// register window; offsets are per instance.
func Clocks(regs regmap.Regmap) map[string]*rcg.Controller {
	byName := make(map[string]*rcg.Controller)
	for _, c := range []*rcg.Controller{
		{
			Name:      "blsp1_uart2_apps",
			CmdOffset: 0x070c,
			MNDWidth:  16,
			HIDWidth:  5,
			ParentMap: xoGPLL0,
			FreqTbl:   uartAppsTbl,
		},
		{
			Name:      "sdcc1_apps",
			CmdOffset: 0x04d0,
			MNDWidth:  8,
			HIDWidth:  5,
			ParentMap: xoGPLL0,
			FreqTbl:   sdccAppsTbl,
		},
		{
			Name:      "sdcc2_apps",
			CmdOffset: 0x0510,
			MNDWidth:  8,
			HIDWidth:  5,
			ParentMap: xoGPLL0,
			FreqTbl:   sdccAppsTbl,
		},
		{
			Name:      "usb_hs_system",
			CmdOffset: 0x0490,
			HIDWidth:  5,
			ParentMap: xoGPLL0,
			FreqTbl:   usbHsSystemTbl,
		},
	} {
		c.Regs = regs
		c.Parents = parentRates
		byName[c.Name] = c
	}
	return byName
}

// Group is an attached clock controller: the clock set plus the mapping
// it runs over.
type Group struct {
	ByName map[string]*rcg.Controller

	mem *regmap.DevMem
}

// Attach maps the controller window through /dev/mem, after checking the
// kernel lists it, and builds the clock set.
func Attach() (*Group, error) {
	if err := regmap.CheckIomem(iomemName, Base, Size); err != nil {
		return nil, err
	}
	mem, err := regmap.MapDevMem(Base, Size)
	if err != nil {
		return nil, err
	}
	return &Group{ByName: Clocks(mem), mem: mem}, nil
}

func (g *Group) Close() error {
	if g.mem == nil {
		return nil
	}
	return g.mem.Close()
}

// Names lists the clock set in a stable order.
func (g *Group) Names() []string {
	names := make([]string, 0, len(g.ByName))
	for name := range g.ByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
