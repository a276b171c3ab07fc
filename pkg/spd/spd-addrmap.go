// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the HIF address map and the reverse maps consumed by the
// controller ADDRMAP registers.
package spd

import "fmt"

const (
	HIF_ADDR_BITS = 40

	MAX_ROW_ADDR_BITS  = 18
	MAX_COL_ADDR_BITS  = 12
	MAX_BANK_ADDR_BITS = 3
	MAX_BG_ADDR_BITS   = 2

	HIF_COL_OFFSET  = 100
	HIF_ROW_OFFSET  = 200
	HIF_BANK_OFFSET = 300
	HIF_BG_OFFSET   = 400
	HIF_RANK_OFFSET = 500

	// values the controller reads as "bit unused"
	ADDRMAP_UNUSED_5B = 0x1F
	ADDRMAP_UNUSED_4B = 0xF
)

// HIFAddrMap lays out the host interface address from bit 0 upward: column, bank group,
// bank, row, then rank. Each slot holds HIF_<kind>_OFFSET plus the bit index of that kind.
// Narrow buses skip the low column bits.
func (c *GeneralConfig) HIFAddrMap() [HIF_ADDR_BITS]uint32 {
	var m [HIF_ADDR_BITS]uint32
	i := 0
	put := func(offset uint32, from, to uint32) {
		for j := from; j < to; j++ {
			m[i] = offset + j
			i++
		}
	}

	start := uint32(0)
	switch c.BusWidth {
	case 16:
		start = 2
	case 32:
		start = 1
	}
	put(HIF_COL_OFFSET, start, uint32(c.ColAddrBits))
	put(HIF_BG_OFFSET, 0, uint32(c.BGAddrBits))
	put(HIF_BANK_OFFSET, 0, uint32(c.BankAddrBits))
	put(HIF_ROW_OFFSET, 0, uint32(c.RowAddrBits))
	put(HIF_RANK_OFFSET, 0, uint32(c.RankAddrBits()))
	return m
}

// scanHIF returns how far past its base position bit j of a kind sits in the HIF map.
// The controller fields encode the bit position as base + j + value.
func scanHIF(hif [HIF_ADDR_BITS]uint32, kind string, target uint32, base uint32) (uint32, error) {
	for i := base; i < HIF_ADDR_BITS; i++ {
		if hif[i] == target {
			return i - base, nil
		}
	}
	return 0, fmt.Errorf("spd: %s address bit %d not found at or above HIF bit %d", kind, target%100, base)
}

// BankAddrMap gives the ADDRMAP1 bank fields, 0x1F for unused bits
func (c *GeneralConfig) BankAddrMap() ([MAX_BANK_ADDR_BITS]uint32, error) {
	hif := c.HIFAddrMap()
	m := [MAX_BANK_ADDR_BITS]uint32{ADDRMAP_UNUSED_5B, ADDRMAP_UNUSED_5B, ADDRMAP_UNUSED_5B}
	for j := uint32(0); j < uint32(c.BankAddrBits); j++ {
		v, err := scanHIF(hif, "bank", HIF_BANK_OFFSET+j, j+2)
		if err != nil {
			return m, err
		}
		m[j] = v
	}
	return m, nil
}

// BGAddrMap gives the ADDRMAP8 bank group fields, 0x1F for unused bits
func (c *GeneralConfig) BGAddrMap() ([MAX_BG_ADDR_BITS]uint32, error) {
	hif := c.HIFAddrMap()
	m := [MAX_BG_ADDR_BITS]uint32{ADDRMAP_UNUSED_5B, ADDRMAP_UNUSED_5B}
	for j := uint32(0); j < uint32(c.BGAddrBits); j++ {
		v, err := scanHIF(hif, "bank group", HIF_BG_OFFSET+j, j+2)
		if err != nil {
			return m, err
		}
		m[j] = v
	}
	return m, nil
}

// ColAddrMap gives the ADDRMAP2-4 column fields. Column bits 0 and 1 are fixed and
// keep the unused value 0xF.
func (c *GeneralConfig) ColAddrMap() ([MAX_COL_ADDR_BITS]uint32, error) {
	hif := c.HIFAddrMap()
	var m [MAX_COL_ADDR_BITS]uint32
	for j := range m {
		m[j] = ADDRMAP_UNUSED_4B
	}
	for j := uint32(2); j < uint32(c.ColAddrBits); j++ {
		v, err := scanHIF(hif, "column", HIF_COL_OFFSET+j, j)
		if err != nil {
			return m, err
		}
		m[j] = v
	}
	return m, nil
}

// RowAddrMap gives the ADDRMAP5-7 and 9-11 row fields, 0xF for unused bits
func (c *GeneralConfig) RowAddrMap() ([MAX_ROW_ADDR_BITS]uint32, error) {
	hif := c.HIFAddrMap()
	var m [MAX_ROW_ADDR_BITS]uint32
	for j := range m {
		m[j] = ADDRMAP_UNUSED_4B
	}
	for j := uint32(0); j < uint32(c.RowAddrBits); j++ {
		v, err := scanHIF(hif, "row", HIF_ROW_OFFSET+j, j+6)
		if err != nil {
			return m, err
		}
		m[j] = v
	}
	return m, nil
}
