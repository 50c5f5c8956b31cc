// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package ocm

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNoSpace = errors.New("pool exhausted")
	ErrBadFree = errors.New("free of unallocated range")
)

// Pool hands out Granularity-aligned ranges of the SRAM windows,
// first fit. Unlike the clock hardware paths, the pool locks itself:
// allocations come from arbitrary goroutines.
type Pool struct {
	mutex  sync.Mutex
	chunks []chunk
}

type chunk struct {
	start uint32
	units uint32
	used  []uint64 // one bit per Granularity unit
}

func NewPool(ws []Window) *Pool {
	p := &Pool{}
	for _, w := range ws {
		units := w.Size() / Granularity
		p.chunks = append(p.chunks, chunk{
			start: w.Start,
			units: units,
			used:  make([]uint64, (units+63)/64),
		})
	}
	return p
}

func (c *chunk) get(unit uint32) bool {
	return c.used[unit/64]&(1<<(unit%64)) != 0
}

func (c *chunk) set(unit uint32)   { c.used[unit/64] |= 1 << (unit % 64) }
func (c *chunk) clear(unit uint32) { c.used[unit/64] &^= 1 << (unit % 64) }

func units(size uint32) uint32 {
	return (size + Granularity - 1) / Granularity
}

// Alloc reserves size bytes and returns the SRAM address of the range.
func (p *Pool) Alloc(size uint32) (uint32, error) {
	if size == 0 {
		return 0, fmt.Errorf("zero size: %w", ErrNoSpace)
	}
	n := units(size)
	p.mutex.Lock()
	defer p.mutex.Unlock()
	for i := range p.chunks {
		c := &p.chunks[i]
		var run uint32
		for u := uint32(0); u < c.units; u++ {
			if c.get(u) {
				run = 0
				continue
			}
			run++
			if run == n {
				first := u + 1 - n
				for v := first; v <= u; v++ {
					c.set(v)
				}
				return c.start + first*Granularity, nil
			}
		}
	}
	return 0, fmt.Errorf("%d bytes: %w", size, ErrNoSpace)
}

// Free releases a range returned by Alloc. The whole range must be
// currently allocated and addr must have come from this pool.
func (p *Pool) Free(addr, size uint32) error {
	n := units(size)
	p.mutex.Lock()
	defer p.mutex.Unlock()
	for i := range p.chunks {
		c := &p.chunks[i]
		if addr < c.start || addr > c.start+(c.units-1)*Granularity {
			continue
		}
		if (addr-c.start)%Granularity != 0 {
			return fmt.Errorf("%#x: misaligned: %w", addr, ErrBadFree)
		}
		first := (addr - c.start) / Granularity
		if first+n > c.units {
			return fmt.Errorf("%#x+%#x: past window: %w",
				addr, size, ErrBadFree)
		}
		for u := first; u < first+n; u++ {
			if !c.get(u) {
				return fmt.Errorf("%#x+%#x: %w",
					addr, size, ErrBadFree)
			}
		}
		for u := first; u < first+n; u++ {
			c.clear(u)
		}
		return nil
	}
	return fmt.Errorf("%#x: not in any window: %w", addr, ErrBadFree)
}

// Size is the total pool capacity in bytes.
func (p *Pool) Size() uint32 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	var total uint32
	for i := range p.chunks {
		total += p.chunks[i].units * Granularity
	}
	return total
}

// Avail is the unallocated capacity in bytes. Fragmentation may keep an
// Alloc of Avail bytes from succeeding.
func (p *Pool) Avail() uint32 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	var free uint32
	for i := range p.chunks {
		c := &p.chunks[i]
		for u := uint32(0); u < c.units; u++ {
			if !c.get(u) {
				free += Granularity
			}
		}
	}
	return free
}
