// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package ocm

import (
	"errors"
	"testing"

	"github.com/platinasystems/clkgen/regmap"
)

func TestLayout(t *testing.T) {
	for _, x := range []struct {
		cfg  uint32
		want []Window
	}{
		// all low: one contiguous 256 KiB window at 0
		{0x0, []Window{{0x0, 0x3ffff}}},
		// all high: one contiguous 256 KiB window at the alias
		{0xf, []Window{{0xfffc0000, 0xffffffff}}},
		// top block high: 192 KiB low, 64 KiB at the top block slot
		{0x8, []Window{{0x0, 0x2ffff}, {0xffff0000, 0xffffffff}}},
		// bottom block high, rest low
		{0x1, []Window{{0xfffc0000, 0xfffcffff}, {0x10000, 0x3ffff}}},
		// alternating: four separate blocks
		{0x5, []Window{
			{0xfffc0000, 0xfffcffff},
			{0x10000, 0x1ffff},
			{0xfffe0000, 0xfffeffff},
			{0x30000, 0x3ffff},
		}},
	} {
		got := Layout(x.cfg)
		if len(got) != len(x.want) {
			t.Errorf("cfg %#x: got %v, want %v", x.cfg, got, x.want)
			continue
		}
		for i := range got {
			if got[i] != x.want[i] {
				t.Errorf("cfg %#x window %d: got %v, want %v",
					x.cfg, i, got[i], x.want[i])
			}
		}
	}
}

func TestPoolAllocFree(t *testing.T) {
	p := NewPool([]Window{{0x0, 0xffff}})
	if got := p.Size(); got != 0x10000 {
		t.Fatalf("size = %#x", got)
	}
	a, err := p.Alloc(100)
	if err != nil {
		t.Fatal(err)
	}
	if a != 0 {
		t.Errorf("first alloc at %#x", a)
	}
	b, err := p.Alloc(32)
	if err != nil {
		t.Fatal(err)
	}
	// 100 bytes rounds up to 4 granules
	if b != 4*Granularity {
		t.Errorf("second alloc at %#x", b)
	}
	if got := p.Avail(); got != 0x10000-5*Granularity {
		t.Errorf("avail = %#x", got)
	}
	if err = p.Free(a, 100); err != nil {
		t.Fatal(err)
	}
	// freed range is reused
	c, err := p.Alloc(64)
	if err != nil {
		t.Fatal(err)
	}
	if c != 0 {
		t.Errorf("realloc at %#x", c)
	}
}

func TestPoolExhaustion(t *testing.T) {
	p := NewPool([]Window{{0x0, 0x3ff}}) // 1 KiB
	if _, err := p.Alloc(0x401); !errors.Is(err, ErrNoSpace) {
		t.Errorf("oversized alloc: got %v", err)
	}
	a, err := p.Alloc(0x400)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = p.Alloc(1); !errors.Is(err, ErrNoSpace) {
		t.Errorf("full pool: got %v", err)
	}
	if err = p.Free(a, 0x400); err != nil {
		t.Fatal(err)
	}
	if _, err = p.Alloc(0x400); err != nil {
		t.Errorf("after free: %v", err)
	}
}

func TestPoolBadFree(t *testing.T) {
	p := NewPool([]Window{{0x10000, 0x1ffff}})
	a, err := p.Alloc(64)
	if err != nil {
		t.Fatal(err)
	}
	if err = p.Free(a, 64); err != nil {
		t.Fatal(err)
	}
	if err = p.Free(a, 64); !errors.Is(err, ErrBadFree) {
		t.Errorf("double free: got %v", err)
	}
	if err = p.Free(0x50000, 32); !errors.Is(err, ErrBadFree) {
		t.Errorf("foreign address: got %v", err)
	}
	if err = p.Free(0x10007, 32); !errors.Is(err, ErrBadFree) {
		t.Errorf("misaligned address: got %v", err)
	}
}

func TestPoolSpansWindows(t *testing.T) {
	// two disjoint windows; an alloc never straddles them
	p := NewPool([]Window{{0x0, 0xfff}, {0xfffc0000, 0xfffc0fff}})
	a, err := p.Alloc(0x1000)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Alloc(0x1000)
	if err != nil {
		t.Fatal(err)
	}
	if a != 0 || b != 0xfffc0000 {
		t.Errorf("allocs at %#x, %#x", a, b)
	}
}

func TestParity(t *testing.T) {
	sim := regmap.NewSim()
	p := Parity{sim}
	if err := p.Enable(); err != nil {
		t.Fatal(err)
	}
	if got := sim.Regs[parityCtlReg]; got != parityEnableBits {
		t.Errorf("ctl = %#x", got)
	}
	f, err := p.Check()
	if err != nil {
		t.Fatal(err)
	}
	if f != nil {
		t.Errorf("clean SRAM reported fault %+v", f)
	}
	sim.Regs[irqStsReg] = 0x5
	sim.Regs[parityErrAddrReg] = 0x1234
	f, err = p.Check()
	if err != nil {
		t.Fatal(err)
	}
	if f == nil || f.Status != 0x5 || f.Addr != 0x1234 {
		t.Errorf("got %+v", f)
	}
	// non-error status bits alone are not a fault
	sim.Regs[irqStsReg] = 0x8
	if f, _ = p.Check(); f != nil {
		t.Errorf("got %+v", f)
	}
}

func TestNewEnablesParity(t *testing.T) {
	sim := regmap.NewSim()
	d, err := New(sim, 0x0)
	if err != nil {
		t.Fatal(err)
	}
	if sim.Regs[parityCtlReg] != parityEnableBits {
		t.Error("parity not enabled")
	}
	if len(d.Windows) != 1 || d.Pool.Size() != Blocks*BlockSize {
		t.Errorf("layout %v, pool %#x", d.Windows, d.Pool.Size())
	}
}
