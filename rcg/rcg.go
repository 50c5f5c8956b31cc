// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package rcg drives root clock generators of the kind found in Qualcomm
// global clock controllers: a source selector, a half-integer divider, and
// an optional M/N/D fractional stage, all latched through an update
// handshake in the command register.
//
// A Controller is not internally locked. The caller must allow at most one
// mutating operation (SetRate, SetParent) at a time per generator and must
// serialize those against reads, or a reader can observe a half-programmed
// M/N/D/CFG mix.
package rcg

import (
	"errors"
	"fmt"
	"time"

	"github.com/platinasystems/clkgen/regmap"
	"github.com/platinasystems/log"
)

const (
	cmdReg      = 0x0
	cmdUpdate   = 1 << 0
	cmdRootEn   = 1 << 1
	cmdDirtyCfg = 1 << 4
	cmdDirtyN   = 1 << 5
	cmdDirtyM   = 1 << 6
	cmdDirtyD   = 1 << 7
	cmdRootOff  = 1 << 31

	cfgReg          = 0x4
	cfgSrcDivShift  = 0
	cfgSrcSelShift  = 8
	cfgSrcSelMask   = 0x7 << cfgSrcSelShift
	cfgModeShift    = 12
	cfgModeMask     = 0x3 << cfgModeShift
	cfgModeDualEdge = 0x2 << cfgModeShift

	mReg = 0x8
	nReg = 0xc
	dReg = 0x10
)

const updatePolls = 500

var (
	ErrNoMatchingFreq = errors.New("no matching frequency")
	ErrUnknownSource  = errors.New("unknown source select")
	ErrBadParentIndex = errors.New("parent index out of range")
)

// Freq is one row of a generator's frequency table: the target output rate,
// the parent to run from, and the divider settings that produce Hz from that
// parent. Tables are ordered ascending by Hz; a zero Hz row ends the table.
// N == 0 means the row uses the integer/half-integer divider only.
type Freq struct {
	Hz     uint64
	Src    int // index into the generator's parent map
	PreDiv uint32
	M, N   uint32
}

// Parents answers rate queries for a generator's parent clocks by
// parent-map index.
type Parents interface {
	RateByIndex(src int) (uint64, error)
}

// Rates is a fixed rate list implementing Parents, indexed like the
// generator's parent map.
type Rates []uint64

func (r Rates) RateByIndex(src int) (uint64, error) {
	if src < 0 || src >= len(r) {
		return 0, fmt.Errorf("parent %d: %w", src, ErrBadParentIndex)
	}
	return r[src], nil
}

// Determined is the outcome of a rate request: the rate the generator will
// deliver, and which parent at what rate is needed to deliver it.
type Determined struct {
	Hz          uint64
	ParentIndex int
	ParentRate  uint64
}

// Controller programs one root clock generator. The identity fields are
// fixed per instance; Regs and Parents are the injected hardware and
// clock-tree backends.
type Controller struct {
	Name      string
	CmdOffset uint32   // byte offset of the CMD register block
	MNDWidth  uint32   // M/N/D field width in bits, 0 if no fractional stage
	HIDWidth  uint32   // half-integer divider field width in bits
	ParentMap []uint32 // parent index to hardware source-select code
	FreqTbl   []Freq

	// Propagate allows DetermineRate to ask for a parent rate change
	// instead of taking the parent's current rate.
	Propagate bool

	Regs    regmap.Regmap
	Parents Parents

	delay    func(time.Duration) // nil means time.Sleep
	timeouts uint32
}

func (c *Controller) reg(off uint32) uint32 { return c.CmdOffset + off }

// Enabled reports whether the generator's root is running, i.e. the
// ROOT_OFF status bit is clear.
func (c *Controller) Enabled() (bool, error) {
	cmd, err := c.Regs.Read(c.reg(cmdReg))
	if err != nil {
		return false, err
	}
	return cmd&cmdRootOff == 0, nil
}

// Parent returns the parent-map index of the source the hardware has
// selected.
func (c *Controller) Parent() (int, error) {
	cfg, err := c.Regs.Read(c.reg(cfgReg))
	if err != nil {
		return 0, err
	}
	code := (cfg & cfgSrcSelMask) >> cfgSrcSelShift
	for i, want := range c.ParentMap {
		if code == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s: source code %#x: %w",
		c.Name, code, ErrUnknownSource)
}

// SetParent selects the parent at the given parent-map index and commits.
func (c *Controller) SetParent(index int) error {
	if index < 0 || index >= len(c.ParentMap) {
		return fmt.Errorf("%s: parent %d: %w",
			c.Name, index, ErrBadParentIndex)
	}
	err := c.Regs.UpdateBits(c.reg(cfgReg), cfgSrcSelMask,
		c.ParentMap[index]<<cfgSrcSelShift)
	if err != nil {
		return err
	}
	return c.updateConfig()
}

// RecalcRate computes the output rate from the current register state and
// the given parent rate. It does not touch the hardware configuration.
func (c *Controller) RecalcRate(parentRate uint64) (uint64, error) {
	cfg, err := c.Regs.Read(c.reg(cfgReg))
	if err != nil {
		return 0, err
	}
	var m, n, mode uint32
	if c.MNDWidth > 0 {
		mask := uint32(1)<<c.MNDWidth - 1
		m, err = c.Regs.Read(c.reg(mReg))
		if err != nil {
			return 0, err
		}
		m &= mask
		raw, err := c.Regs.Read(c.reg(nReg))
		if err != nil {
			return 0, err
		}
		n = DecodeN(raw, m, c.MNDWidth)
		mode = (cfg & cfgModeMask) >> cfgModeShift
	}
	hidDiv := (cfg >> cfgSrcDivShift) & (uint32(1)<<c.HIDWidth - 1)
	return calcRate(parentRate, m, n, mode, hidDiv), nil
}

// Rate reads the selected parent, asks Parents for its rate, and recalcs
// the output rate from it.
func (c *Controller) Rate() (uint64, error) {
	i, err := c.Parent()
	if err != nil {
		return 0, err
	}
	parentRate, err := c.Parents.RateByIndex(i)
	if err != nil {
		return 0, err
	}
	return c.RecalcRate(parentRate)
}

// calcRate derives the output from the parent rate: the half-integer
// divider gives parent * 2 / (hidDiv+1), then dual-edge mode applies the
// fractional m/n. Both divisions truncate; hidDiv == 0 bypasses the
// divider entirely. The halving is applied first; the order matters for
// odd intermediate rates.
func calcRate(parentRate uint64, m, n, mode, hidDiv uint32) uint64 {
	rate := parentRate
	if hidDiv != 0 {
		rate *= 2
		rate /= uint64(hidDiv) + 1
	}
	if mode != 0 && n != 0 {
		rate = rate * uint64(m) / uint64(n)
	}
	return rate
}

// findFreq returns the first table row whose target is at least rate.
func findFreq(tbl []Freq, rate uint64) (Freq, bool) {
	for _, f := range tbl {
		if f.Hz == 0 {
			break
		}
		if rate <= f.Hz {
			return f, true
		}
	}
	return Freq{}, false
}

// DetermineRate finds the table row for the requested rate and reports what
// the generator needs from its parent. With Propagate set, the parent rate
// is computed back through the row's dividers, reversing the halving before
// the multiply to match the hardware's half-integer semantics; otherwise
// the parent keeps its current rate and the row only names which parent to
// use. The achieved rate is always the row's target, not the computed
// parent-side value.
func (c *Controller) DetermineRate(rate uint64) (Determined, error) {
	f, ok := findFreq(c.FreqTbl, rate)
	if !ok {
		return Determined{}, fmt.Errorf("%s: %d Hz: %w",
			c.Name, rate, ErrNoMatchingFreq)
	}
	d := Determined{Hz: f.Hz, ParentIndex: f.Src}
	if c.Propagate {
		r := rate
		if f.PreDiv != 0 {
			r /= 2
			r *= uint64(f.PreDiv) + 1
		}
		if f.N != 0 {
			r = r * uint64(f.N) / uint64(f.M)
		}
		d.ParentRate = r
	} else {
		r, err := c.Parents.RateByIndex(f.Src)
		if err != nil {
			return Determined{}, err
		}
		d.ParentRate = r
	}
	return d, nil
}

// SetRate programs the generator for the requested rate: M/N/D first when
// the row has a fractional stage, then divider, source select and mode in
// one CFG update, then the commit handshake. The register writes are not
// transactional; a backend failure partway leaves the generator in a mixed
// old/new state for the caller to recover from.
func (c *Controller) SetRate(rate uint64) error {
	f, ok := findFreq(c.FreqTbl, rate)
	if !ok {
		return fmt.Errorf("%s: %d Hz: %w",
			c.Name, rate, ErrNoMatchingFreq)
	}
	if c.MNDWidth > 0 && f.N != 0 {
		mask := uint32(1)<<c.MNDWidth - 1
		err := c.Regs.UpdateBits(c.reg(mReg), mask, f.M)
		if err != nil {
			return err
		}
		err = c.Regs.UpdateBits(c.reg(nReg), mask,
			EncodeN(f.M, f.N, c.MNDWidth))
		if err != nil {
			return err
		}
		err = c.Regs.UpdateBits(c.reg(dReg), mask,
			EncodeD(f.N, c.MNDWidth))
		if err != nil {
			return err
		}
	}
	mask := uint32(1)<<c.HIDWidth - 1
	mask |= cfgSrcSelMask | cfgModeMask
	cfg := f.PreDiv << cfgSrcDivShift
	cfg |= c.ParentMap[f.Src] << cfgSrcSelShift
	if c.MNDWidth > 0 && f.N != 0 {
		cfg |= cfgModeDualEdge
	}
	if err := c.Regs.UpdateBits(c.reg(cfgReg), mask, cfg); err != nil {
		return err
	}
	return c.updateConfig()
}

// updateConfig sets the update bit and polls until the hardware consumes
// the pending configuration. A generator that never acknowledges within
// updatePolls microseconds is logged and counted but not failed: software
// retry cannot unwedge it and the caller has nothing better to do than
// carry on.
func (c *Controller) updateConfig() error {
	err := c.Regs.UpdateBits(c.reg(cmdReg), cmdUpdate, cmdUpdate)
	if err != nil {
		return err
	}
	sleep := c.delay
	if sleep == nil {
		sleep = time.Sleep
	}
	for count := updatePolls; count > 0; count-- {
		cmd, err := c.Regs.Read(c.reg(cmdReg))
		if err != nil {
			return err
		}
		if cmd&cmdUpdate == 0 {
			return nil
		}
		sleep(time.Microsecond)
	}
	c.timeouts++
	log.Print("warning: ", c.Name, ": rcg didn't update its configuration")
	return nil
}

// Timeouts reports how many commit handshakes ended with the update bit
// still pending.
func (c *Controller) Timeouts() uint32 { return c.timeouts }
