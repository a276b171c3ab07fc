// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements a behavioral PHY model on top of a simulated register block
package phy

import (
	"sync"

	"github.com/Seagate/ddr-lib/pkg/reg"
)

// PIR trigger bit to the PGSR0 done bit it completes
var doneFor = []struct {
	trigger reg.Field
	done    reg.Field
}{
	{PIR_PLL_INIT, PGSR0_PLDONE},
	{PIR_ZCAL, PGSR0_ZCDONE},
	{PIR_DCAL, PGSR0_DCDONE},
	{PIR_CTRL_DRAM_INIT, PGSR0_DIDONE},
	{PIR_WR_LEV, PGSR0_WLDONE},
	{PIR_QS_GATE, PGSR0_QSGDONE},
	{PIR_WR_LEV_ADJ, PGSR0_WLADONE},
	{PIR_RD_DESKEW, PGSR0_RDDONE},
	{PIR_WR_DESKEW, PGSR0_WDDONE},
	{PIR_RD_EYE, PGSR0_REDONE},
	{PIR_WR_EYE, PGSR0_WEDONE},
	{PIR_VREF, PGSR0_VDONE},
}

// SimPHY completes PIR triggered phases after Latency reads of PGSR0.
// A trigger clears the previous done and error bits.
type SimPHY struct {
	Latency int

	// Errors maps a PIR trigger bit to PGSR0 error bits raised with its done bit
	Errors map[reg.Field]uint32

	// LockAfter is the PLL init attempt that first locks, 0 locks on the first
	LockAfter int

	// OnTrigger observes every PIR write before the model reacts
	OnTrigger func(pir uint32)

	mu       sync.Mutex
	sim      *reg.Sim
	pending  uint32
	reads    int
	attempts int
	pirLog   []uint32
}

// Simulate attaches a PHY model to sim
func Simulate(sim *reg.Sim, latency int) *SimPHY {
	p := &SimPHY{Latency: latency, Errors: map[reg.Field]uint32{}, sim: sim}
	sim.OnWrite(PIR, p.trigger)
	sim.OnRead(PGSR0, p.status)
	return p
}

func (p *SimPHY) trigger(pir uint32) {
	if p.OnTrigger != nil {
		p.OnTrigger(pir)
	}
	if PIR_INIT.Read(pir) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pirLog = append(p.pirLog, pir)

	pending := PGSR0_IDONE.Mask()
	for _, d := range doneFor {
		if pir&d.trigger.Mask() != 0 {
			pending |= d.done.Mask() | p.Errors[d.trigger]
		}
	}
	// everything but the lock bit restarts
	lock := p.sim.Peek(PGSR0) & PGSR0_APLOCK.Mask()
	if PIR_PLL_INIT.Read(pir) == 1 {
		p.attempts++
		locked := p.attempts >= p.LockAfter
		lock = PGSR0_APLOCK.Set(locked)
		for _, lane := range pllLanes {
			p.sim.Poke(DX(lane, DXGSR0), DXGSR0_DPLOCK.Set(locked))
		}
	}
	p.sim.Poke(PGSR0, lock)
	p.pending = pending
	p.reads = 0
}

func (p *SimPHY) status(cur uint32) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reads++
	if p.Latency >= 0 && p.reads >= p.Latency {
		cur |= p.pending
	}
	return cur
}

// Triggers returns every PIR value written with the init bit set
func (p *SimPHY) Triggers() []uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint32(nil), p.pirLog...)
}

// PLLAttempts counts PLL init triggers
func (p *SimPHY) PLLAttempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}
