// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the quantities derived from a decoded SPD configuration
package spd

import (
	"fmt"
	"math"
	"math/bits"
)

const (
	DDR4_BURST_LEN    = 8
	DDR4_TREFI_MAX_PS = 7_800_000 // normal temperature range
	DDR4_TWR_MIN_NS   = 15        // all speed bins, JESD79-4
	LOG2_1_MIB        = 23
)

// Number of bank groups
func (c *GeneralConfig) BankGroups() uint8 {
	return c.BGAddrBits * 2 // 0 -> 0, 1 -> 2, 2 -> 4
}

// Number of banks per bank group
func (c *GeneralConfig) BanksPerGroup() uint8 {
	return 1 << c.BankAddrBits
}

func (c *GeneralConfig) MinClockPeriodNs() float32 {
	return float32(c.TCKAvgMinPs) / 1000.0
}

// Maximum clock frequency in MHz from tCKmin, 0 when tCKmin is unset
func (c *GeneralConfig) MaxClkMHz() uint32 {
	if c.TCKAvgMinPs == 0 {
		return 0
	}
	return 1_000_000 / c.TCKAvgMinPs
}

// Minimum clock frequency in MHz from tCKmax, 0 when tCKmax is unset
func (c *GeneralConfig) MinClkMHz() uint32 {
	if c.TCKAvgMaxPs == 0 {
		return 0
	}
	return 1_000_000 / c.TCKAvgMaxPs
}

// SpeedBinMHz is the data rate, twice the maximum clock, rounded up
func (c *GeneralConfig) SpeedBinMHz() uint32 {
	if c.TCKAvgMinPs == 0 {
		return 0
	}
	return divCeil(2_000_000, c.TCKAvgMinPs)
}

// LogicalRanks counts the individually addressable dies. Monolithic and multi load
// stack packages have one logical rank per package rank, 3DS parts one per die.
func (c *GeneralConfig) LogicalRanks() uint8 {
	if c.PackageType == PACKAGE_MONOLITHIC || c.SignalLoading == LOADING_MULTI_LOAD_STACK {
		return c.PackageRanks
	}
	return c.PackageRanks * c.DieCount
}

// RankAddrBits is log2 of the logical rank count rounded up to a power of two
func (c *GeneralConfig) RankAddrBits() uint8 {
	n := c.LogicalRanks()
	if n <= 1 {
		return 0
	}
	return uint8(bits.Len8(n - 1))
}

func (c *GeneralConfig) RankCapacityMegabytes() uint32 {
	return uint32(c.CapacityMegabits) / 8 * uint32(c.BusWidth) / uint32(c.DeviceWidth)
}

// Module capacity per JEDEC 21-C page 4.1.2.12-15
func (c *GeneralConfig) ModuleCapacityMegabytes() uint32 {
	return c.RankCapacityMegabytes() * uint32(c.LogicalRanks())
}

// PsToNck converts picoseconds to clock cycles with the 0.01 clock guardband of
// JEDEC 21-C page 4.1.2.12-19, rounding up. Single precision matches the reference rounding.
func (c *GeneralConfig) PsToNck(ps uint32) uint32 {
	if c.TCKAvgMinPs == 0 {
		return 0
	}
	return uint32(math.Ceil(float64(float32(ps)/float32(c.TCKAvgMinPs) - 0.01)))
}

func (c *GeneralConfig) BurstLen() uint8 {
	return DDR4_BURST_LEN
}

func (c *GeneralConfig) RowDensity() uint32 {
	return uint32(bits.Len32(c.RankCapacityMegabytes())-1) + LOG2_1_MIB
}

func (c *GeneralConfig) TREFIPs() uint32 {
	return DDR4_TREFI_MAX_PS
}

// CASLatency is ceil(tAAmin in ns) + 1 plus the read DBI adder. The result is in ns;
// ReadLatencyNck converts it to clocks.
func (c *GeneralConfig) CASLatency() uint32 {
	extra := uint32(0)
	if c.Policy.RdDBI {
		if c.MaxClkMHz() <= 933 {
			extra = 2
		} else {
			extra = 3
		}
	}
	return divCeil(c.TAAMinPs, 1000) + 1 + extra
}

func (c *GeneralConfig) CASWriteLatency() uint32 {
	return divCeil(c.TAAMinPs, 1000)
}

// TRFCMinPs picks the refresh cycle time of the configured fine granularity refresh mode
func (c *GeneralConfig) TRFCMinPs() uint32 {
	switch c.Policy.FineGranularityRefresh {
	case FGR_X2:
		return c.TRFC2MinPs
	case FGR_X4:
		return c.TRFC4MinPs
	}
	return c.TRFC1MinPs
}

func (c *GeneralConfig) CtlClockMHz() uint32 {
	return c.MaxClkMHz() / 2
}

func (c *GeneralConfig) CtlClockPeriodNs() float32 {
	return c.MinClockPeriodNs() * 2.0
}

// TXPNck is the greater of 4 clocks or 6 ns
func (c *GeneralConfig) TXPNck() uint32 {
	return maxU32(c.PsToNck(6_000), 4)
}

func (c *GeneralConfig) ParityLatencyNck() uint32 {
	if !c.Policy.Parity {
		return 0
	}
	switch speed := c.SpeedBinMHz(); {
	case speed < 2400:
		return 4
	case speed < 2933:
		return 5
	}
	return 6
}

// AdditiveLatencyNck is fixed at 0 (MR1 AL disabled)
func (c *GeneralConfig) AdditiveLatencyNck() uint32 {
	return 0
}

// registered modules add one cycle through the register
func (c *GeneralConfig) registeredAdder() uint32 {
	if c.Module.Registered() {
		return 1
	}
	return 0
}

func (c *GeneralConfig) ReadLatencyNck() uint32 {
	return c.PsToNck(c.CASLatency()*1000) + c.AdditiveLatencyNck() + c.ParityLatencyNck() + c.registeredAdder()
}

func (c *GeneralConfig) WriteLatencyNck() uint32 {
	return c.PsToNck(c.CASWriteLatency()*1000) + c.AdditiveLatencyNck() + c.ParityLatencyNck() + c.registeredAdder()
}

func (c *GeneralConfig) TXSMinNs() uint32 {
	return c.TRFCMinPs()/1000 + 10
}

func (c *GeneralConfig) TXSFastMinNs() uint32 {
	return c.TRFC4MinPs/1000 + 10
}

func (c *GeneralConfig) TXSAbortMinNs() uint32 {
	return c.TXSFastMinNs()
}

func (c *GeneralConfig) TDLLKMinNck() uint32 {
	switch speed := c.SpeedBinMHz(); {
	case speed < 2133:
		return 597
	case speed < 2666:
		return 768
	}
	return 1024
}

func (c *GeneralConfig) TXSDLLMinNck() uint32 {
	return c.TDLLKMinNck()
}

func (c *GeneralConfig) TMRDPDAMinNck() uint32 {
	return maxU32(c.PsToNck(10_000), 16)
}

func (c *GeneralConfig) TWRMinNs() uint32 {
	return DDR4_TWR_MIN_NS
}

// JESD79-4 Table 3, CAS latency to the A12 A6 A5 A4 A2 code
var mr0CASCodes = map[uint32]uint16{
	9: 0, 10: 1, 11: 2, 12: 3, 13: 4, 14: 5, 15: 6, 16: 7,
	18: 8, 20: 9, 22: 10, 24: 11, 23: 12, 17: 13, 19: 14, 21: 15,
}

// JESD79-4 Table 2, write recovery clocks to the A13 A11 A10 A9 code. 22 and 24 are out of order.
var mr0WRCodes = map[uint32]uint16{
	10: 0, 12: 1, 14: 2, 16: 3, 18: 4, 20: 5, 24: 6, 22: 7, 26: 8, 28: 9,
}

// MR0 encodes mode register 0 from the CAS latency, write recovery and burst length
func (c *GeneralConfig) MR0() (uint16, error) {
	var mr0 uint16

	cl := c.CASLatency()
	code, ok := mr0CASCodes[cl]
	if !ok {
		return 0, fmt.Errorf("spd: CAS latency %d has no MR0 encoding", cl)
	}
	mr0 |= (code & 0x1) << 2
	mr0 |= (code >> 1 & 0x7) << 4

	wr := c.PsToNck(c.TWRMinNs() * 1000)
	if wr < 10 {
		wr = 10
	}
	wr += wr & 1
	code, ok = mr0WRCodes[wr]
	if !ok {
		return 0, fmt.Errorf("spd: write recovery %d nCK has no MR0 encoding", wr)
	}
	mr0 |= (code & 0x7) << 9
	mr0 |= (code >> 3 & 0x1) << 13

	// Zynq DDRC does not support on the fly burst length (0b01)
	if c.BurstLen() == 4 {
		mr0 |= 0b10
	}
	return mr0, nil
}

func divCeil(a, b uint32) uint32 {
	return (a + b - 1) / b
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
