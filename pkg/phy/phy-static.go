// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the static PHY configuration for the ZCU111 DDR4 SO-DIMM at DDR4-2133
package phy

import (
	"github.com/Seagate/ddr-lib/pkg/reg"
)

// Training configuration: PLL dividers, timing parameters, mode registers, I/O
// calibration and byte lane control. Generated by the vendor tooling for the
// Micron MTA4ATF51264HZ-2G6E1.
var staticConfig = reg.Image{
	{Name: "PGCR0", Offset: PGCR0, Value: 0x07001E00},
	{Name: "PGCR2", Offset: PGCR2, Value: 0x00F10010},
	{Name: "PGCR3", Offset: PGCR3, Value: 0x55AA5480},
	{Name: "PGCR5", Offset: PGCR5, Value: 0x010100F4},
	{Name: "PTR0", Offset: PTR0, Value: 0x42C21590},
	{Name: "PTR1", Offset: PTR1, Value: 0xD05512C0},
	{Name: "PLLCR0", Offset: PLLCR0, Value: 0x01100000},
	{Name: "DSGCR", Offset: DSGCR, Value: 0x02A04161},
	{Name: "GPR0", Offset: GPR0, Value: 0x00000000},
	{Name: "GPR1", Offset: GPR1, Value: 0x000000E5},
	{Name: "DCR", Offset: DCR, Value: 0x0800040C},
	{Name: "DTPR0", Offset: DTPR0, Value: 0x07240F08},
	{Name: "DTPR1", Offset: DTPR1, Value: 0x28200008},
	{Name: "DTPR2", Offset: DTPR2, Value: 0x000F0300},
	{Name: "DTPR3", Offset: DTPR3, Value: 0x83000800},
	{Name: "DTPR4", Offset: DTPR4, Value: 0x01762B07},
	{Name: "DTPR5", Offset: DTPR5, Value: 0x00330F08},
	{Name: "DTPR6", Offset: DTPR6, Value: 0x00000E0F},
	{Name: "RDIMMGCR0", Offset: RDIMMGCR0, Value: 0x08400020},
	{Name: "RDIMMGCR1", Offset: RDIMMGCR1, Value: 0x00000C80},
	{Name: "RDIMMCR0", Offset: RDIMMCR0, Value: 0x00000000},
	{Name: "RDIMMCR1", Offset: RDIMMCR1, Value: 0x00000300},
	{Name: "MR0", Offset: MR0, Value: 0x00000630},
	{Name: "MR1", Offset: MR1, Value: 0x00000301},
	{Name: "MR2", Offset: MR2, Value: 0x00000020},
	{Name: "MR3", Offset: MR3, Value: 0x00000200},
	{Name: "MR4", Offset: MR4, Value: 0x00000000},
	{Name: "MR5", Offset: MR5, Value: 0x000006C0},
	{Name: "MR6", Offset: MR6, Value: 0x00000819},
	{Name: "MR11", Offset: MR11, Value: 0x00000000},
	{Name: "MR12", Offset: MR12, Value: 0x0000004D},
	{Name: "MR13", Offset: MR13, Value: 0x00000008},
	{Name: "MR14", Offset: MR14, Value: 0x0000004D},
	{Name: "MR22", Offset: MR22, Value: 0x00000000},
	{Name: "DTCR0", Offset: DTCR0, Value: 0x800091C7},
	{Name: "DTCR1", Offset: DTCR1, Value: 0x00010236},
	{Name: "CATR0", Offset: CATR0, Value: 0x00141054},
	{Name: "DQSDR0", Offset: DQSDR0, Value: 0x00088000},
	{Name: "RIOCR5", Offset: RIOCR5, Value: 0x00000005},
	{Name: "ACIOCR0", Offset: ACIOCR0, Value: 0x30000028},
	{Name: "ACIOCR2", Offset: ACIOCR2, Value: 0x0A000000},
	{Name: "ACIOCR3", Offset: ACIOCR3, Value: 0x00000009},
	{Name: "ACIOCR4", Offset: ACIOCR4, Value: 0x0A000000},
	{Name: "IOVCR0", Offset: IOVCR0, Value: 0x0300B0CE},
	{Name: "VTCR0", Offset: VTCR0, Value: 0xF9032019},
	{Name: "VTCR1", Offset: VTCR1, Value: 0x07F001E3},
	{Name: "ACBDLR1", Offset: ACBDLR1, Value: 0x00000000},
	{Name: "ACBDLR2", Offset: ACBDLR2, Value: 0x00000000},
	{Name: "ACBDLR6", Offset: ACBDLR6, Value: 0x00000000},
	{Name: "ACBDLR7", Offset: ACBDLR7, Value: 0x00000000},
	{Name: "ACBDLR8", Offset: ACBDLR8, Value: 0x00000000},
	{Name: "ACBDLR9", Offset: ACBDLR9, Value: 0x00000000},
	{Name: "ZQCR", Offset: ZQCR, Value: 0x008AAA58},
	{Name: "ZQ0PR0", Offset: ZQ0PR0, Value: 0x000079DD},
	{Name: "ZQ0OR0", Offset: ZQ0OR0, Value: 0x01E10210},
	{Name: "ZQ0OR1", Offset: ZQ0OR1, Value: 0x01E10000},
	{Name: "ZQ1PR0", Offset: ZQ1PR0, Value: 0x00087BDB},
	{Name: "DX0GCR0", Offset: DX(0, DXGCR0), Value: 0x40800604},
	{Name: "DX0GCR1", Offset: DX(0, DXGCR1), Value: 0x00007FFF},
	{Name: "DX0GCR3", Offset: DX(0, DXGCR3), Value: 0x3F000008},
	{Name: "DX0GCR4", Offset: DX(0, DXGCR4), Value: 0x0E00B03C},
	{Name: "DX0GCR5", Offset: DX(0, DXGCR5), Value: 0x09095555},
	{Name: "DX0GCR6", Offset: DX(0, DXGCR6), Value: 0x09092B2B},
	{Name: "DX1GCR0", Offset: DX(1, DXGCR0), Value: 0x40800604},
	{Name: "DX1GCR1", Offset: DX(1, DXGCR1), Value: 0x00007FFF},
	{Name: "DX1GCR3", Offset: DX(1, DXGCR3), Value: 0x3F000008},
	{Name: "DX1GCR4", Offset: DX(1, DXGCR4), Value: 0x0E00B03C},
	{Name: "DX1GCR5", Offset: DX(1, DXGCR5), Value: 0x09095555},
	{Name: "DX1GCR6", Offset: DX(1, DXGCR6), Value: 0x09092B2B},
	{Name: "DX2GCR0", Offset: DX(2, DXGCR0), Value: 0x40800604},
	{Name: "DX2GCR1", Offset: DX(2, DXGCR1), Value: 0x00007FFF},
	{Name: "DX2GCR3", Offset: DX(2, DXGCR3), Value: 0x3F000008},
	{Name: "DX2GCR4", Offset: DX(2, DXGCR4), Value: 0x0E00B004},
	{Name: "DX2GCR5", Offset: DX(2, DXGCR5), Value: 0x09095555},
	{Name: "DX2GCR6", Offset: DX(2, DXGCR6), Value: 0x09092B2B},
	{Name: "DX3GCR0", Offset: DX(3, DXGCR0), Value: 0x40800604},
	{Name: "DX3GCR1", Offset: DX(3, DXGCR1), Value: 0x00007FFF},
	{Name: "DX3GCR3", Offset: DX(3, DXGCR3), Value: 0x3F000008},
	{Name: "DX3GCR4", Offset: DX(3, DXGCR4), Value: 0x0E00B004},
	{Name: "DX3GCR5", Offset: DX(3, DXGCR5), Value: 0x09095555},
	{Name: "DX3GCR6", Offset: DX(3, DXGCR6), Value: 0x09092B2B},
	{Name: "DX4GCR0", Offset: DX(4, DXGCR0), Value: 0x40800604},
	{Name: "DX4GCR1", Offset: DX(4, DXGCR1), Value: 0x00007FFF},
	{Name: "DX4GCR2", Offset: DX(4, DXGCR2), Value: 0x00000000},
	{Name: "DX4GCR3", Offset: DX(4, DXGCR3), Value: 0x3F000008},
	{Name: "DX4GCR4", Offset: DX(4, DXGCR4), Value: 0x0E00B004},
	{Name: "DX4GCR5", Offset: DX(4, DXGCR5), Value: 0x09095555},
	{Name: "DX4GCR6", Offset: DX(4, DXGCR6), Value: 0x09092B2B},
	{Name: "DX5GCR0", Offset: DX(5, DXGCR0), Value: 0x40800604},
	{Name: "DX5GCR1", Offset: DX(5, DXGCR1), Value: 0x00007FFF},
	{Name: "DX5GCR2", Offset: DX(5, DXGCR2), Value: 0x00000000},
	{Name: "DX5GCR3", Offset: DX(5, DXGCR3), Value: 0x3F000008},
	{Name: "DX5GCR4", Offset: DX(5, DXGCR4), Value: 0x0E00B03C},
	{Name: "DX5GCR5", Offset: DX(5, DXGCR5), Value: 0x09095555},
	{Name: "DX5GCR6", Offset: DX(5, DXGCR6), Value: 0x09092B2B},
	{Name: "DX6GCR0", Offset: DX(6, DXGCR0), Value: 0x40800604},
	{Name: "DX6GCR1", Offset: DX(6, DXGCR1), Value: 0x00007FFF},
	{Name: "DX6GCR2", Offset: DX(6, DXGCR2), Value: 0x00000000},
	{Name: "DX6GCR3", Offset: DX(6, DXGCR3), Value: 0x3F000008},
	{Name: "DX6GCR4", Offset: DX(6, DXGCR4), Value: 0x0E00B004},
	{Name: "DX6GCR5", Offset: DX(6, DXGCR5), Value: 0x09095555},
	{Name: "DX6GCR6", Offset: DX(6, DXGCR6), Value: 0x09092B2B},
	{Name: "DX7GCR0", Offset: DX(7, DXGCR0), Value: 0x40800604},
	{Name: "DX7GCR1", Offset: DX(7, DXGCR1), Value: 0x00007FFF},
	{Name: "DX7GCR2", Offset: DX(7, DXGCR2), Value: 0x00000000},
	{Name: "DX7GCR3", Offset: DX(7, DXGCR3), Value: 0x3F000008},
	{Name: "DX7GCR4", Offset: DX(7, DXGCR4), Value: 0x0E00B03C},
	{Name: "DX7GCR5", Offset: DX(7, DXGCR5), Value: 0x09095555},
	{Name: "DX7GCR6", Offset: DX(7, DXGCR6), Value: 0x09092B2B},
	{Name: "DX8GCR0", Offset: DX(8, DXGCR0), Value: 0x80803660},
	{Name: "DX8GCR1", Offset: DX(8, DXGCR1), Value: 0x55556000},
	{Name: "DX8GCR2", Offset: DX(8, DXGCR2), Value: 0xAAAAAAAA},
	{Name: "DX8GCR3", Offset: DX(8, DXGCR3), Value: 0x0029A4A4},
	{Name: "DX8GCR4", Offset: DX(8, DXGCR4), Value: 0x0C00B000},
	{Name: "DX8GCR5", Offset: DX(8, DXGCR5), Value: 0x09095555},
	{Name: "DX8GCR6", Offset: DX(8, DXGCR6), Value: 0x09092B2B},
	{Name: "DX8SL0OSC", Offset: DX8SL(0, SL_OSC), Value: 0x2A019FFE},
	{Name: "DX8SL0PLLCR0", Offset: DX8SL(0, SL_PLLCR0), Value: 0x01100000},
	{Name: "DX8SL0DQSCTL", Offset: DX8SL(0, SL_DQSCTL), Value: 0x01264300},
	{Name: "DX8SL0DXCTL2", Offset: DX8SL(0, SL_DXCTL2), Value: 0x00041800},
	{Name: "DX8SL0IOCR", Offset: DX8SL(0, SL_IOCR), Value: 0x70800000},
	{Name: "DX8SL1OSC", Offset: DX8SL(1, SL_OSC), Value: 0x2A019FFE},
	{Name: "DX8SL1PLLCR0", Offset: DX8SL(1, SL_PLLCR0), Value: 0x01100000},
	{Name: "DX8SL1DQSCTL", Offset: DX8SL(1, SL_DQSCTL), Value: 0x01264300},
	{Name: "DX8SL1DXCTL2", Offset: DX8SL(1, SL_DXCTL2), Value: 0x00041800},
	{Name: "DX8SL1IOCR", Offset: DX8SL(1, SL_IOCR), Value: 0x70800000},
	{Name: "DX8SL2OSC", Offset: DX8SL(2, SL_OSC), Value: 0x2A019FFE},
	{Name: "DX8SL2PLLCR0", Offset: DX8SL(2, SL_PLLCR0), Value: 0x01100000},
	{Name: "DX8SL2DQSCTL", Offset: DX8SL(2, SL_DQSCTL), Value: 0x01264300},
	{Name: "DX8SL2DXCTL2", Offset: DX8SL(2, SL_DXCTL2), Value: 0x00041800},
	{Name: "DX8SL2IOCR", Offset: DX8SL(2, SL_IOCR), Value: 0x70800000},
	{Name: "DX8SL3OSC", Offset: DX8SL(3, SL_OSC), Value: 0x2A019FFE},
	{Name: "DX8SL3PLLCR0", Offset: DX8SL(3, SL_PLLCR0), Value: 0x01100000},
	{Name: "DX8SL3DQSCTL", Offset: DX8SL(3, SL_DQSCTL), Value: 0x01264300},
	{Name: "DX8SL3DXCTL2", Offset: DX8SL(3, SL_DXCTL2), Value: 0x00041800},
	{Name: "DX8SL3IOCR", Offset: DX8SL(3, SL_IOCR), Value: 0x70800000},
	{Name: "DX8SL4OSC", Offset: DX8SL(4, SL_OSC), Value: 0x15019FFE},
	{Name: "DX8SL4PLLCR0", Offset: DX8SL(4, SL_PLLCR0), Value: 0x21100000},
	{Name: "DX8SL4DQSCTL", Offset: DX8SL(4, SL_DQSCTL), Value: 0x01266300},
	{Name: "DX8SL4DXCTL2", Offset: DX8SL(4, SL_DXCTL2), Value: 0x00041800},
	{Name: "DX8SL4IOCR", Offset: DX8SL(4, SL_IOCR), Value: 0x70400000},
	{Name: "DX8SLBDQSCTL", Offset: DX8SL(DX8SLB, SL_DQSCTL), Value: 0x012643C4},
}

// StaticConfig returns a copy of the static load, in programming order
func StaticConfig() reg.Image {
	img := make(reg.Image, len(staticConfig))
	copy(img, staticConfig)
	return img
}
