// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the DDR PHY register layout (Zynq UltraScale+ UG1087, DDR_PHY module)
package phy

import (
	"github.com/Seagate/ddr-lib/pkg/reg"
)

const (
	DDR_PHY_BASE = 0xFD08_0000
	DDR_PHY_SIZE = 0x2000
)

// PHY register offsets
const (
	PIR       = 0x004
	PGCR0     = 0x010
	PGCR1     = 0x014
	PGCR2     = 0x018
	PGCR3     = 0x01C
	PGCR5     = 0x024
	PGSR0     = 0x030
	PTR0      = 0x040
	PTR1      = 0x044
	PLLCR0    = 0x068
	DSGCR     = 0x090
	GPR0      = 0x0C0
	GPR1      = 0x0C4
	DCR       = 0x100
	DTPR0     = 0x110
	DTPR1     = 0x114
	DTPR2     = 0x118
	DTPR3     = 0x11C
	DTPR4     = 0x120
	DTPR5     = 0x124
	DTPR6     = 0x128
	RDIMMGCR0 = 0x140
	RDIMMGCR1 = 0x144
	RDIMMCR0  = 0x150
	RDIMMCR1  = 0x154
	MR0       = 0x180
	MR1       = 0x184
	MR2       = 0x188
	MR3       = 0x18C
	MR4       = 0x190
	MR5       = 0x194
	MR6       = 0x198
	MR11      = 0x1AC
	MR12      = 0x1B0
	MR13      = 0x1B4
	MR14      = 0x1B8
	MR22      = 0x1D8
	DTCR0     = 0x200
	DTCR1     = 0x204
	CATR0     = 0x240
	DQSDR0    = 0x250
	RIOCR5    = 0x4F4
	ACIOCR0   = 0x500
	ACIOCR2   = 0x508
	ACIOCR3   = 0x50C
	ACIOCR4   = 0x510
	IOVCR0    = 0x520
	VTCR0     = 0x528
	VTCR1     = 0x52C
	ACBDLR1   = 0x544
	ACBDLR2   = 0x548
	ACBDLR6   = 0x558
	ACBDLR7   = 0x55C
	ACBDLR8   = 0x560
	ACBDLR9   = 0x564
	ZQCR      = 0x680
	ZQ0PR0    = 0x684
	ZQ0OR0    = 0x694
	ZQ0OR1    = 0x698
	ZQ1PR0    = 0x6A4
)

// Byte lane registers. Lanes 0-7 carry data, lane 8 the check bits.
const (
	DX_BASE   = 0x700
	DX_STRIDE = 0x100
	DXGCR0    = 0x000
	DXGCR1    = 0x004
	DXGCR2    = 0x008
	DXGCR3    = 0x00C
	DXGCR4    = 0x010
	DXGCR5    = 0x014
	DXGCR6    = 0x018
	DXGSR0    = 0x0E0

	// DX8 slice registers, slice 15 broadcasts to all slices
	DX8SL_BASE   = 0x1400
	DX8SL_STRIDE = 0x40
	DX8SLB       = 15
	SL_OSC       = 0x000
	SL_PLLCR0    = 0x004
	SL_DQSCTL    = 0x01C
	SL_DXCTL2    = 0x02C
	SL_IOCR      = 0x030

	DX8_SLICES = 5
)

func DX(lane int, offset uint32) uint32 {
	return DX_BASE + uint32(lane)*DX_STRIDE + offset
}

func DX8SL(slice int, offset uint32) uint32 {
	return DX8SL_BASE + uint32(slice)*DX8SL_STRIDE + offset
}

// PIR trigger bits
var (
	PIR_ZCAL_BYPASS    = reg.Bit(30)
	PIR_DQS2DQ         = reg.Bit(20)
	PIR_RDIMM_INIT     = reg.Bit(19)
	PIR_CTRL_DRAM_INIT = reg.Bit(18)
	PIR_VREF           = reg.Bit(17)
	PIR_WR_EYE         = reg.Bit(15)
	PIR_RD_EYE         = reg.Bit(14)
	PIR_WR_DESKEW      = reg.Bit(13)
	PIR_RD_DESKEW      = reg.Bit(12)
	PIR_WR_LEV_ADJ     = reg.Bit(11)
	PIR_QS_GATE        = reg.Bit(10)
	PIR_WR_LEV         = reg.Bit(9)
	PIR_DRAM_INIT      = reg.Bit(8)
	PIR_DRAM_RST       = reg.Bit(7)
	PIR_PHY_RST        = reg.Bit(6)
	PIR_DCAL           = reg.Bit(5)
	PIR_PLL_INIT       = reg.Bit(4)
	PIR_ZCAL           = reg.Bit(1)
	PIR_INIT           = reg.Bit(0)
)

// PGSR0 status bits
var (
	PGSR0_APLOCK     = reg.Bit(31)
	PGSR0_CAWRN      = reg.Bit(29)
	PGSR0_CAERR      = reg.Bit(28)
	PGSR0_WEERR      = reg.Bit(27)
	PGSR0_REERR      = reg.Bit(26)
	PGSR0_WDERR      = reg.Bit(25)
	PGSR0_RDERR      = reg.Bit(24)
	PGSR0_WLAERR     = reg.Bit(23)
	PGSR0_QSGERR     = reg.Bit(22)
	PGSR0_WLERR      = reg.Bit(21)
	PGSR0_ZCERR      = reg.Bit(20)
	PGSR0_VERR       = reg.Bit(19)
	PGSR0_DQS2DQERR  = reg.Bit(18)
	PGSR0_DQS2DQDONE = reg.Bit(15)
	PGSR0_VDONE      = reg.Bit(14)
	PGSR0_CADONE     = reg.Bit(12)
	PGSR0_WEDONE     = reg.Bit(11)
	PGSR0_REDONE     = reg.Bit(10)
	PGSR0_WDDONE     = reg.Bit(9)
	PGSR0_RDDONE     = reg.Bit(8)
	PGSR0_WLADONE    = reg.Bit(7)
	PGSR0_QSGDONE    = reg.Bit(6)
	PGSR0_WLDONE     = reg.Bit(5)
	PGSR0_DIDONE     = reg.Bit(4)
	PGSR0_ZCDONE     = reg.Bit(3)
	PGSR0_DCDONE     = reg.Bit(2)
	PGSR0_PLDONE     = reg.Bit(1)
	PGSR0_IDONE      = reg.Bit(0)

	DXGSR0_DPLOCK = reg.Bit(16)

	// static read mode overrides used during VREF training
	PGCR3_RDMODE     = reg.Field{Offset: 3, Width: 2}
	SL_DXCTL2_RDMODE = reg.Field{Offset: 4, Width: 2}
	DTCR0_RFSHDT     = reg.Field{Offset: 28, Width: 4}
)

// bits masks the union of fields
func bits(fields ...reg.Field) uint32 {
	var m uint32
	for _, f := range fields {
		m |= f.Mask()
	}
	return m
}
