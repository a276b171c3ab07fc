// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package spd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHIFOrder(t *testing.T) {
	cfg := &GeneralConfig{
		ColAddrBits:  10,
		BGAddrBits:   1,
		BankAddrBits: 2,
		RowAddrBits:  16,
		BusWidth:     64,
		PackageType:  PACKAGE_MONOLITHIC,
		PackageRanks: 2,
	}
	hif := cfg.HIFAddrMap()

	want := []uint32{}
	for j := uint32(0); j < 10; j++ {
		want = append(want, HIF_COL_OFFSET+j)
	}
	want = append(want, HIF_BG_OFFSET, HIF_BANK_OFFSET, HIF_BANK_OFFSET+1)
	for j := uint32(0); j < 16; j++ {
		want = append(want, HIF_ROW_OFFSET+j)
	}
	want = append(want, HIF_RANK_OFFSET)

	assert.Equal(t, want, hif[:len(want)])
	for i := len(want); i < HIF_ADDR_BITS; i++ {
		assert.Zero(t, hif[i], "bit %d", i)
	}
}

func TestHIFNarrowBus(t *testing.T) {
	cfg := &GeneralConfig{ColAddrBits: 10, BankAddrBits: 2, RowAddrBits: 14, BusWidth: 32, PackageType: PACKAGE_MONOLITHIC, PackageRanks: 1}
	hif := cfg.HIFAddrMap()
	assert.Equal(t, uint32(HIF_COL_OFFSET+1), hif[0])
	assert.Equal(t, uint32(HIF_BANK_OFFSET), hif[9])

	// the low column bits are dropped, so column 2 is never found at or above HIF bit 2
	_, err := cfg.ColAddrMap()
	assert.Error(t, err)
}

func TestAddrMapsFixture(t *testing.T) {
	cfg := decodeFixture(t, DefaultPolicy())

	bank, err := cfg.BankAddrMap()
	require.NoError(t, err)
	assert.Equal(t, [MAX_BANK_ADDR_BITS]uint32{9, 9, 0x1F}, bank)

	bg, err := cfg.BGAddrMap()
	require.NoError(t, err)
	assert.Equal(t, [MAX_BG_ADDR_BITS]uint32{8, 0x1F}, bg)

	col, err := cfg.ColAddrMap()
	require.NoError(t, err)
	assert.Equal(t, [MAX_COL_ADDR_BITS]uint32{0xF, 0xF, 0, 0, 0, 0, 0, 0, 0, 0, 0xF, 0xF}, col)

	row, err := cfg.RowAddrMap()
	require.NoError(t, err)
	for j := 0; j < 16; j++ {
		assert.Equal(t, uint32(7), row[j], "row %d", j)
	}
	assert.Equal(t, uint32(0xF), row[16])
	assert.Equal(t, uint32(0xF), row[17])
}
