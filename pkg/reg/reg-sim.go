// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements an in-memory register block used for simulation and tests.
package reg

import (
	"sync"

	"k8s.io/klog/v2"
)

// ReadHook returns the value presented for a register read. The result is latched
// into the register, so hooks model status bits that change on their own.
type ReadHook func(cur uint32) uint32

// WriteHook observes a completed register write.
type WriteHook func(val uint32)

// Access is one journaled register write.
type Access struct {
	Offset uint32
	Value  uint32
}

// Sim is a sparse register block. Registers never written read as zero.
type Sim struct {
	noCopy noCopy

	name       string
	mu         sync.Mutex
	mem        map[uint32]uint32
	reads      map[uint32]int
	readHooks  map[uint32]ReadHook
	writeHooks map[uint32]WriteHook
	journal    []Access
}

func NewSim(name string) *Sim {
	return &Sim{
		name:       name,
		mem:        map[uint32]uint32{},
		reads:      map[uint32]int{},
		readHooks:  map[uint32]ReadHook{},
		writeHooks: map[uint32]WriteHook{},
	}
}

func (s *Sim) Read32(offset uint32) uint32 {
	s.mu.Lock()
	val := s.mem[offset]
	hook := s.readHooks[offset]
	s.reads[offset]++
	s.mu.Unlock()

	if hook != nil {
		val = hook(val)
		s.Poke(offset, val)
	}
	return val
}

func (s *Sim) Write32(offset uint32, val uint32) {
	s.mu.Lock()
	s.mem[offset] = val
	s.journal = append(s.journal, Access{Offset: offset, Value: val})
	hook := s.writeHooks[offset]
	s.mu.Unlock()
	klog.V(DBG_LVL_DEEP_DETAIL).InfoS("reg.Sim.Write32", "name", s.name, "offset", hex(offset), "val", hex(val))

	if hook != nil {
		hook(val)
	}
}

// Peek reads a register without running hooks or counting the access
func (s *Sim) Peek(offset uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mem[offset]
}

// Poke sets a register without running hooks or journaling
func (s *Sim) Poke(offset uint32, val uint32) {
	s.mu.Lock()
	s.mem[offset] = val
	s.mu.Unlock()
}

func (s *Sim) OnRead(offset uint32, hook ReadHook) {
	s.mu.Lock()
	s.readHooks[offset] = hook
	s.mu.Unlock()
}

func (s *Sim) OnWrite(offset uint32, hook WriteHook) {
	s.mu.Lock()
	s.writeHooks[offset] = hook
	s.mu.Unlock()
}

// Reads returns how many times offset was read through Read32
func (s *Sim) Reads(offset uint32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[offset]
}

// Journal returns a copy of all writes in order
func (s *Sim) Journal() []Access {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Access, len(s.journal))
	copy(out, s.journal)
	return out
}

// Writes returns the values written to one offset, in order
func (s *Sim) Writes(offset uint32) []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uint32
	for _, a := range s.journal {
		if a.Offset == offset {
			out = append(out, a.Value)
		}
	}
	return out
}

func (s *Sim) ResetJournal() {
	s.mu.Lock()
	s.journal = nil
	s.mu.Unlock()
}

func (s *Sim) Name() string {
	return s.name
}
