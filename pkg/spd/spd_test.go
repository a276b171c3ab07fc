// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package spd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const FIXTURE = "testdata/micron-4atf51264hz.hex"

func loadFixture(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile(FIXTURE)
	require.NoError(t, err)
	spd, err := ParseHex(string(b))
	require.NoError(t, err)
	require.Len(t, spd, SPD_SIZE)
	return spd
}

// patch returns a copy of the fixture with byte i set to v and the base CRC resealed
func patch(t *testing.T, i int, v uint8) []byte {
	spd := loadFixture(t)
	spd[i] = v
	SealSection(spd[:SPD_SECTION_SIZE])
	return spd
}

func TestLayoutSizes(t *testing.T) {
	assert.Equal(t, SPD_SECTION_SIZE, StructSize(SPD_DDR4_BASE{}))
	assert.Equal(t, SPD_SECTION_SIZE, StructSize(SPD_DDR4_UNBUFFERED{}))
	assert.Equal(t, SPD_MANUFACTURING_LENGTH, StructSize(SPD_DDR4_MANUFACTURING{}))
}

func TestDecodeFixture(t *testing.T) {
	cfg, err := Decode(loadFixture(t))
	require.NoError(t, err)

	assert.Equal(t, uint16(512), cfg.SPDBytesTotal)
	assert.Equal(t, uint16(384), cfg.SPDBytesUsed)
	assert.Equal(t, uint8(1), cfg.SPDEncoding)
	assert.Equal(t, uint8(1), cfg.SPDAdditions)
	assert.Equal(t, DDR4, cfg.DeviceType)

	assert.Equal(t, MODULE_UNBUFFERED, cfg.Module.Kind)
	assert.Equal(t, uint8(3), cfg.Module.ModuleType)
	require.NotNil(t, cfg.Module.Unbuffered)
	assert.Equal(t, UnbufferedConfig{
		RawCardExtension:        0,
		ModuleNominalHeight:     0x11,
		ModuleMaxThicknessBack:  1,
		ModuleMaxThicknessFront: 1,
		RefRawCardRev:           1,
		RefRawCard:              1,
		Rank1Mirrored:           true,
	}, *cfg.Module.Unbuffered)

	assert.Equal(t, uint8(1), cfg.BGAddrBits)
	assert.Equal(t, uint8(2), cfg.BankAddrBits)
	assert.Equal(t, uint16(8192), cfg.CapacityMegabits)
	assert.Equal(t, uint8(16), cfg.RowAddrBits)
	assert.Equal(t, uint8(10), cfg.ColAddrBits)
	assert.Equal(t, PACKAGE_MONOLITHIC, cfg.PackageType)
	assert.Equal(t, uint8(1), cfg.DieCount)
	assert.Equal(t, LOADING_UNSPECIFIED, cfg.SignalLoading)
	assert.Equal(t, uint16(8192), cfg.TMAW)
	assert.Equal(t, uint8(8), cfg.MAC)
	assert.True(t, cfg.Vdd12Endurant)
	assert.True(t, cfg.Vdd12Operable)
	assert.Equal(t, uint8(1), cfg.PackageRanks)
	assert.Equal(t, uint8(16), cfg.DeviceWidth)
	assert.Equal(t, uint8(0), cfg.BusWidthExtension)
	assert.Equal(t, uint8(64), cfg.BusWidth)
	assert.False(t, cfg.HasThermalSensor)

	assert.Equal(t, uint32(125), cfg.MTBPs)
	assert.Equal(t, uint32(1), cfg.FTBPs)
	assert.Equal(t, uint32(750), cfg.TCKAvgMinPs)
	assert.Equal(t, uint32(1600), cfg.TCKAvgMaxPs)
	assert.Equal(t, uint32(0x3FF8), cfg.SupportedCASLatencies)
	assert.Equal(t, uint32(13750), cfg.TAAMinPs)
	assert.Equal(t, uint32(13750), cfg.TRCDMinPs)
	assert.Equal(t, uint32(13750), cfg.TRPMinPs)
	assert.Equal(t, uint32(32000), cfg.TRASMinPs)
	assert.Equal(t, uint32(45750), cfg.TRCMinPs)
	assert.Equal(t, uint32(350000), cfg.TRFC1MinPs)
	assert.Equal(t, uint32(260000), cfg.TRFC2MinPs)
	assert.Equal(t, uint32(160000), cfg.TRFC4MinPs)
	assert.Equal(t, uint32(30000), cfg.TFAWMinPs)
	assert.Equal(t, uint32(5300), cfg.TRRDSMinPs)
	assert.Equal(t, uint32(6400), cfg.TRRDLMinPs)
	assert.Equal(t, uint32(5000), cfg.TCCDLMinPs)

	assert.Equal(t, [18]uint8{0x0C, 0x2C, 0x15, 0x35, 0x15, 0x35, 0x0B, 0x2C, 0x00,
		0x00, 0x15, 0x35, 0x0B, 0x35, 0x0B, 0x35, 0x0B, 0x2C}, cfg.DQMap)
	assert.Equal(t, DefaultPolicy(), cfg.Policy)
}

func TestDecodeDeterministic(t *testing.T) {
	spd := loadFixture(t)
	first, err := Decode(spd)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := Decode(spd)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDecodeLength(t *testing.T) {
	_, err := Decode(make([]byte, 256))
	var lerr *LengthError
	assert.ErrorAs(t, err, &lerr)
}

func TestBaseCRCBitFlip(t *testing.T) {
	spd := loadFixture(t)
	for i := 0; i < SPD_CRC_COVERED; i++ {
		for bit := 0; bit < 8; bit++ {
			spd[i] ^= 1 << bit
			_, err := Decode(spd)
			var crcErr *CRCError
			if assert.ErrorAs(t, err, &crcErr, "byte %d bit %d", i, bit) {
				assert.Equal(t, "base", crcErr.Section)
			}
			spd[i] ^= 1 << bit
		}
	}
	_, err := Decode(spd)
	assert.NoError(t, err)
}

func TestModuleCRC(t *testing.T) {
	spd := loadFixture(t)
	spd[SPD_MODULE_START+3] ^= 1
	_, err := Decode(spd)
	var crcErr *CRCError
	require.ErrorAs(t, err, &crcErr)
	assert.Equal(t, string(MODULE_UNBUFFERED), crcErr.Section)

	SealSection(spd[SPD_MODULE_START : SPD_MODULE_START+SPD_SECTION_SIZE])
	cfg, err := Decode(spd)
	require.NoError(t, err)
	assert.False(t, cfg.Module.Unbuffered.Rank1Mirrored)
}

func TestReconstructTiming(t *testing.T) {
	assert.Equal(t, uint32(10005), ReconstructTiming(80, 5, 125, 1))
	assert.Equal(t, uint32(9995), ReconstructTiming(80, -5, 125, 1))
	assert.Equal(t, uint32(1600), ReconstructTiming(0x0D, int8(-25), 125, 1))
	assert.Equal(t, uint32(0), ReconstructTiming(0, 0, 125, 1))

	// the fine offset of tAA lives at byte 123
	spd := loadFixture(t)
	spd[24] = 80
	spd[123] = 5
	SealSection(spd[:SPD_SECTION_SIZE])
	cfg, err := Decode(spd)
	require.NoError(t, err)
	assert.Equal(t, uint32(10005), cfg.TAAMinPs)
}

func TestClockPeriods(t *testing.T) {
	cases := []struct {
		name  string
		bytes map[int]uint8
		at    int
		field string
	}{
		{"zero tCKmin", map[int]uint8{18: 0, 125: 0}, 18, "tCKAVGmin"},
		{"zero tCKmax", map[int]uint8{19: 0, 124: 0}, 19, "tCKAVGmax"},
		{"tCKmax below tCKmin", map[int]uint8{19: 0x05, 124: 0}, 19, "tCKAVGmax"},
		{"fine offset below zero", map[int]uint8{18: 0, 125: 0x9C}, 18, "tCKAVGmin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spd := loadFixture(t)
			for i, v := range tc.bytes {
				spd[i] = v
			}
			SealSection(spd[:SPD_SECTION_SIZE])

			var cfg *GeneralConfig
			var err error
			require.NotPanics(t, func() { cfg, err = Decode(spd) })
			assert.Nil(t, cfg)
			var rerr *ReservedError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tc.at, rerr.Byte)
			assert.Equal(t, tc.field, rerr.Field)
		})
	}
}

func TestReservedPatterns(t *testing.T) {
	cases := []struct {
		name  string
		byte  int
		value uint8
		field string
	}{
		{"bytes total", 0, 0x33, "spd_bytes_total"},
		{"bytes used", 0, 0x25, "spd_bytes_used"},
		{"device type", 2, 0x0D, "device_type"},
		{"extended module type", 3, 0x00, "module_type"},
		{"module type", 3, 0x07, "module_type"},
		{"bank groups", 4, 0xC5, "bg_addr_bits"},
		{"banks", 4, 0x65, "bank_addr_bits"},
		{"capacity", 4, 0x48, "capacity"},
		{"rows", 5, 0x39, "row_addr_bits"},
		{"columns", 5, 0x25, "col_addr_bits"},
		{"signal loading", 6, 0x03, "signal_loading"},
		{"tMAW", 7, 0x38, "t_maw"},
		{"mac 7", 7, 0x07, "mac"},
		{"mac 9", 7, 0x09, "mac"},
		{"package ranks", 12, 0x22, "package_ranks"},
		{"device width", 12, 0x06, "device_width"},
		{"bus width extension", 13, 0x13, "bus_width_extension"},
		{"bus width", 13, 0x07, "bus_width"},
		{"medium timebase", 17, 0x04, "medium_timebase"},
		{"fine timebase", 17, 0x01, "fine_timebase"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spd := patch(t, tc.byte, tc.value)

			err := Validate(spd)
			var rerr *ReservedError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tc.byte, rerr.Byte)
			assert.Equal(t, tc.value, rerr.Value)
			assert.Equal(t, tc.field, rerr.Field)

			_, err = Decode(spd)
			assert.ErrorAs(t, err, &rerr)
		})
	}
}

func TestValidPatterns(t *testing.T) {
	assert.NoError(t, Validate(loadFixture(t)))
	for _, v := range []uint8{0x12, 0x24} {
		assert.NoError(t, Validate(patch(t, 0, v)))
	}
	for _, v := range []uint8{0x0B, 0x0C, 0x0F, 0x10} {
		assert.NoError(t, Validate(patch(t, 2, v)))
	}
}

func TestModuleVariants(t *testing.T) {
	cases := []struct {
		moduleType uint8
		kind       ModuleKind
	}{
		{0x2, MODULE_UNBUFFERED},
		{0x3, MODULE_UNBUFFERED},
		{0xD, MODULE_UNBUFFERED},
		{0x1, MODULE_REGISTERED},
		{0x5, MODULE_REGISTERED},
		{0x8, MODULE_REGISTERED},
		{0x4, MODULE_LOAD_REDUCED},
	}
	for _, tc := range cases {
		cfg, err := Decode(patch(t, 3, tc.moduleType))
		require.NoError(t, err)
		assert.Equal(t, tc.kind, cfg.Module.Kind)
		assert.Equal(t, tc.kind == MODULE_UNBUFFERED, cfg.Module.Unbuffered != nil)
	}
}

func TestPolicyValidate(t *testing.T) {
	p := DefaultPolicy()
	assert.NoError(t, p.Validate())
	p.FineGranularityRefresh = "3x"
	assert.Error(t, p.Validate())
	_, err := DecodeWithPolicy(loadFixture(t), p)
	assert.Error(t, err)

	for n, want := range map[int]FGRMode{1: FGR_X1, 2: FGR_X2, 4: FGR_X4} {
		got, err := ParseFGRMode(n)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = ParseFGRMode(3)
	assert.Error(t, err)
}

func TestBitFieldRead(t *testing.T) {
	type sample struct {
		Low    bitfield_3b
		Mid    bitfield_5b
		Word   uint16
		Signed int8
	}
	s, err := parseStruct([]byte{0xA5, 0x34, 0x12, 0xFE}, sample{})
	require.NoError(t, err)
	assert.Equal(t, bitfield_3b(0x5), s.Low)
	assert.Equal(t, bitfield_5b(0x14), s.Mid)
	assert.Equal(t, uint16(0x1234), s.Word)
	assert.Equal(t, int8(-2), s.Signed)

	_, err = parseStruct([]byte{0xA5}, sample{})
	assert.Error(t, err)
	assert.Error(t, BitFieldRead([]byte{0}, sample{}))
}

func TestCRC16(t *testing.T) {
	// CRC-16/XMODEM check value
	assert.Equal(t, uint16(0x31C3), CRC16([]byte("123456789")))
	assert.Equal(t, uint16(0), CRC16(nil))
}

func TestReadFile(t *testing.T) {
	want := loadFixture(t)
	got, err := ReadFile(FIXTURE)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	bin := filepath.Join(t.TempDir(), "spd.bin")
	require.NoError(t, os.WriteFile(bin, want, 0o644))
	got, err = ReadFile(bin)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ParseHex("23 11 0z")
	assert.Error(t, err)
}
