// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements a behavioral controller model on top of simulated register blocks
package ddrc

import (
	"github.com/Seagate/ddr-lib/pkg/reg"
)

// Simulate makes the simulated controller report Normal mode once the DDR
// subsystem reset is released, and Init while it is held.
func Simulate(ddrcSim, crfSim *reg.Sim) {
	crfSim.Poke(RST_DDR_SS, RST_DDR_SS_DDR_RESET.Set(true))
	ddrcSim.OnRead(STAT, func(cur uint32) uint32 {
		mode := uint32(MODE_NORMAL)
		if RST_DDR_SS_DDR_RESET.Read(crfSim.Peek(RST_DDR_SS)) == 1 {
			mode = uint32(MODE_INIT)
		}
		STAT_OPERATING_MODE.Write(&cur, mode)
		return cur
	})
}
