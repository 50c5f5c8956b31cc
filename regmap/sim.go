// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package regmap

// Sim is an in-memory register file. Tests of Regmap consumers use it to
// model device behavior: per offset faults and read/write hooks stand in for
// bus errors and hardware that reacts to register traffic.
type Sim struct {
	Regs     map[uint32]uint32
	ReadErr  map[uint32]error
	WriteErr map[uint32]error

	// OnRead may rewrite the value a read returns.
	OnRead func(off, v uint32) uint32

	// OnWrite runs after the store, with the stored value.
	OnWrite func(off, v uint32)

	Reads  int
	Writes int
}

func NewSim() *Sim {
	return &Sim{
		Regs:     make(map[uint32]uint32),
		ReadErr:  make(map[uint32]error),
		WriteErr: make(map[uint32]error),
	}
}

func (s *Sim) Read(off uint32) (uint32, error) {
	s.Reads++
	if err := s.ReadErr[off]; err != nil {
		return 0, err
	}
	v := s.Regs[off]
	if s.OnRead != nil {
		v = s.OnRead(off, v)
		s.Regs[off] = v
	}
	return v, nil
}

func (s *Sim) Write(off uint32, v uint32) error {
	s.Writes++
	if err := s.WriteErr[off]; err != nil {
		return err
	}
	s.Regs[off] = v
	if s.OnWrite != nil {
		s.OnWrite(off, v)
	}
	return nil
}

func (s *Sim) UpdateBits(off, mask, v uint32) error {
	if err := s.ReadErr[off]; err != nil {
		return err
	}
	if err := s.WriteErr[off]; err != nil {
		return err
	}
	s.Regs[off] = s.Regs[off]&^mask | v&mask
	s.Writes++
	if s.OnWrite != nil {
		s.OnWrite(off, s.Regs[off])
	}
	return nil
}
