// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package regmap

import (
	"errors"
	"strings"
	"testing"

	mmap "github.com/edsrzf/mmap-go"
)

const iomemSample = `00000000-0000ffff : reserved
f8000000-f8000fff : slcr
fc400000-fc403fff : gcc
fc400000-fc403fff : fc400000.clock-controller
fffc0000-ffffffff : sram
`

func TestParseIomem(t *testing.T) {
	regions, err := ParseIomem(strings.NewReader(iomemSample))
	if err != nil {
		t.Fatal(err)
	}
	spans := regions["gcc"]
	if len(spans) != 1 {
		t.Fatalf("gcc spans = %v", spans)
	}
	if spans[0].Start != 0xfc400000 || spans[0].End != 0xfc403fff {
		t.Errorf("gcc span = %v", spans[0])
	}
	if len(regions["fc400000.clock-controller"]) != 1 {
		t.Error("missing duplicate-range region")
	}
}

func TestCheckWindow(t *testing.T) {
	regions, err := ParseIomem(strings.NewReader(iomemSample))
	if err != nil {
		t.Fatal(err)
	}
	if err = regions.CheckWindow("gcc", 0xfc400000, 0x4000); err != nil {
		t.Errorf("whole region: %v", err)
	}
	if err = regions.CheckWindow("gcc", 0xfc400700, 0x100); err != nil {
		t.Errorf("inner window: %v", err)
	}
	if err = regions.CheckWindow("gcc", 0xfc400000, 0x4001); err == nil {
		t.Error("window past region end accepted")
	}
	if err = regions.CheckWindow("nothere", 0xfc400000, 4); err == nil {
		t.Error("unknown region accepted")
	}
}

func TestSimFaults(t *testing.T) {
	sim := NewSim()
	fault := errors.New("bus fault")
	sim.ReadErr[8] = fault
	if _, err := sim.Read(8); !errors.Is(err, fault) {
		t.Errorf("got %v", err)
	}
	sim.WriteErr[12] = fault
	if err := sim.Write(12, 1); !errors.Is(err, fault) {
		t.Errorf("got %v", err)
	}
	if err := sim.UpdateBits(12, 1, 1); !errors.Is(err, fault) {
		t.Errorf("got %v", err)
	}
}

func TestSimUpdateBits(t *testing.T) {
	sim := NewSim()
	sim.Regs[4] = 0xffffffff
	if err := sim.UpdateBits(4, 0x700, 0x200); err != nil {
		t.Fatal(err)
	}
	if got := sim.Regs[4]; got != 0xfffffaff {
		t.Errorf("got %#x", got)
	}
}

// devMemBuf fakes a mapped window without touching /dev/mem.
func devMemBuf(size uint32) *DevMem {
	return &DevMem{buf: mmap.MMap(make([]byte, size)), size: size}
}

func TestDevMemAccess(t *testing.T) {
	m := devMemBuf(16)
	if err := m.Write(4, 0x12345678); err != nil {
		t.Fatal(err)
	}
	if v, err := m.Read(4); err != nil || v != 0x12345678 {
		t.Errorf("got %#x, %v", v, err)
	}
	if err := m.UpdateBits(4, 0xff, 0xaa); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.Read(4); v != 0x123456aa {
		t.Errorf("got %#x", v)
	}
}

func TestDevMemBounds(t *testing.T) {
	m := devMemBuf(16)
	if _, err := m.Read(2); err == nil {
		t.Error("misaligned read accepted")
	}
	if _, err := m.Read(16); err == nil {
		t.Error("read past window accepted")
	}
	if err := m.Write(13, 0); err == nil {
		t.Error("misaligned write accepted")
	}
	if v, err := m.Read(12); err != nil || v != 0 {
		t.Errorf("last register: %#x, %v", v, err)
	}
}
