// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package bringup

import (
	"github.com/Seagate/ddr-lib/pkg/ddrc"
	"github.com/Seagate/ddr-lib/pkg/phy"
	"github.com/Seagate/ddr-lib/pkg/reg"
)

// DevMemHardware owns the /dev/mem windows used by a bring-up
type DevMemHardware struct {
	Hardware
	windows []*reg.DevMem
}

// OpenHardware maps the controller, reset and PHY windows, and memSize bytes of
// DRAM at DDR_LO_BASE when memSize is not zero.
func OpenHardware(memSize int) (*DevMemHardware, error) {
	h := &DevMemHardware{}
	open := func(name string, base int64, size int) (*reg.DevMem, error) {
		m, err := reg.OpenDevMem(name, base, size)
		if err != nil {
			h.Close()
			return nil, err
		}
		h.windows = append(h.windows, m)
		return m, nil
	}

	var err error
	if h.DDRC, err = open("ddrc", ddrc.DDRC_BASE, ddrc.DDRC_SIZE); err != nil {
		return nil, err
	}
	if h.CRF, err = open("crf_apb", ddrc.CRF_APB_BASE, ddrc.CRF_APB_SIZE); err != nil {
		return nil, err
	}
	if h.PHY, err = open("ddr_phy", phy.DDR_PHY_BASE, phy.DDR_PHY_SIZE); err != nil {
		return nil, err
	}
	if memSize > 0 {
		if h.Mem, err = open("ddr", DDR_LO_BASE, memSize); err != nil {
			return nil, err
		}
		h.MemBase = DDR_LO_BASE
		h.MemSize = memSize
	}
	return h, nil
}

func (h *DevMemHardware) Close() error {
	var first error
	for i := len(h.windows) - 1; i >= 0; i-- {
		if err := h.windows[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	h.windows = nil
	return first
}

// SimHardware is a complete simulated board: every PHY phase finishes after
// latency status reads and the controller enters Normal mode out of reset.
type SimHardware struct {
	Hardware
	DDRCSim  *reg.Sim
	CRFSim   *reg.Sim
	PHYSim   *reg.Sim
	PHYModel *phy.SimPHY
}

func NewSimHardware(latency int, memSize int) *SimHardware {
	s := &SimHardware{
		DDRCSim: reg.NewSim("ddrc"),
		CRFSim:  reg.NewSim("crf_apb"),
		PHYSim:  reg.NewSim("ddr_phy"),
	}
	s.CRFSim.Poke(ddrc.CRF_WPROT, ddrc.WPROT_ACTIVE.Set(true))
	ddrc.Simulate(s.DDRCSim, s.CRFSim)
	s.PHYModel = phy.Simulate(s.PHYSim, latency)

	s.DDRC = s.DDRCSim
	s.CRF = s.CRFSim
	s.PHY = s.PHYSim
	if memSize > 0 {
		s.Mem = reg.NewRAM(memSize)
		s.MemBase = DDR_LO_BASE
		s.MemSize = memSize
	}
	return s
}
