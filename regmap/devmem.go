// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package regmap

import (
	"fmt"
	"os"
	"unsafe"

	mmap "github.com/edsrzf/mmap-go"
)

const memFile = "/dev/mem"
const pageSize = 4096

// DevMem is a register window mapped from physical memory through /dev/mem.
// Accesses are full 32-bit loads and stores at 32-bit aligned offsets.
type DevMem struct {
	buf  mmap.MMap
	offs uintptr
	base uintptr
	size uint32
}

// MapDevMem maps size bytes of physical address space starting at physAddr.
// The mapping has to start at a page boundary, so physAddr is rounded down
// and the difference carried as an access offset.
func MapDevMem(physAddr uintptr, size uint32) (*DevMem, error) {
	f, err := os.OpenFile(memFile, os.O_RDWR|os.O_SYNC, os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("couldn't open %s: %v", memFile, err)
	}
	pagemask := ^uintptr(pageSize - 1)
	mapAddr := physAddr & pagemask
	n := int(size) + int(physAddr-mapAddr)
	buf, err := mmap.MapRegion(f, n, mmap.RDWR, 0, int64(mapAddr))
	f.Close() // mapping outlives the fd
	if err != nil {
		return nil, fmt.Errorf("couldn't map %#x+%#x: %v",
			physAddr, size, err)
	}
	return &DevMem{
		buf:  buf,
		offs: physAddr - mapAddr,
		base: physAddr,
		size: size,
	}, nil
}

func (m *DevMem) reg(off uint32) (*uint32, error) {
	if off&3 != 0 {
		return nil, fmt.Errorf("regmap: offset %#x not 32-bit aligned",
			off)
	}
	if off > m.size-4 || m.size < 4 {
		return nil, fmt.Errorf(
			"regmap: offset %#x outside %#x byte window at %#x",
			off, m.size, m.base)
	}
	return (*uint32)(unsafe.Pointer(&m.buf[m.offs+uintptr(off)])), nil
}

func (m *DevMem) Read(off uint32) (uint32, error) {
	r, err := m.reg(off)
	if err != nil {
		return 0, err
	}
	return *r, nil
}

func (m *DevMem) Write(off uint32, v uint32) error {
	r, err := m.reg(off)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func (m *DevMem) UpdateBits(off, mask, v uint32) error {
	r, err := m.reg(off)
	if err != nil {
		return err
	}
	*r = *r&^mask | v&mask
	return nil
}

func (m *DevMem) Close() error {
	return m.buf.Unmap()
}
