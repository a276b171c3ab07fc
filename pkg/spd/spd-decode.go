// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the DDR4 SPD decoder
package spd

import (
	"k8s.io/klog/v2"
)

// ReconstructTiming calculates a timing as coarse * mtb + fine * ftb in picoseconds.
// The fine offset is signed and lives at the opposite end of the section from its coarse byte.
func ReconstructTiming(coarse uint16, fine int8, mtbPs uint32, ftbPs uint32) uint32 {
	return uint32(int64(mtbPs)*int64(coarse) + int64(ftbPs)*int64(fine))
}

// Decode parses a 512 byte SPD image with the default policy
func Decode(spd []byte) (*GeneralConfig, error) {
	return DecodeWithPolicy(spd, DefaultPolicy())
}

// DecodeWithPolicy parses a 512 byte SPD image. The base section CRC, the reserved
// bit patterns and the module section CRC are checked before any field is trusted.
func DecodeWithPolicy(spd []byte, policy Policy) (*GeneralConfig, error) {
	if len(spd) != SPD_SIZE {
		return nil, &LengthError{Length: len(spd)}
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if err := checkSectionCRC("base", spd[SPD_BASE_START:SPD_BASE_START+SPD_SECTION_SIZE]); err != nil {
		return nil, err
	}
	if err := Validate(spd); err != nil {
		return nil, err
	}

	base, err := parseStruct(spd[SPD_BASE_START:], SPD_DDR4_BASE{})
	if err != nil {
		return nil, err
	}

	module, err := decodeModule(spd, uint8(base.Module_Type))
	if err != nil {
		return nil, err
	}

	mtb, ftb := uint32(125), uint32(1)
	cfg := &GeneralConfig{
		SPDBytesTotal: 128 << base.Bytes_Total,
		SPDBytesUsed:  128 * uint16(base.Bytes_Used),
		SPDEncoding:   uint8(base.Encoding),
		SPDAdditions:  uint8(base.Additions),

		DeviceType: deviceTypes[base.Device_Type],
		Module:     module,

		BGAddrBits:       uint8(base.BG_Addr),
		BankAddrBits:     uint8(base.Bank_Addr) + 2,
		CapacityMegabits: 256 << base.Capacity,
		RowAddrBits:      uint8(base.Row_Addr) + 12,
		ColAddrBits:      uint8(base.Col_Addr) + 9,

		PackageType:   PACKAGE_MONOLITHIC,
		DieCount:      uint8(base.Die_Count) + 1,
		SignalLoading: signalLoadings[base.Signal_Loading],

		TMAW: 8192 >> base.TMAW,
		MAC:  uint8(base.MAC),

		Vdd12Endurant: UintToBool(base.Vdd_12_Endurant),
		Vdd12Operable: UintToBool(base.Vdd_12_Operable),

		PackageRanks:      uint8(base.Package_Ranks) + 1,
		DeviceWidth:       4 << base.Device_Width,
		BusWidthExtension: uint8(base.Bus_Width_Ext) << 3,
		BusWidth:          8 << base.Bus_Width,
		HasThermalSensor:  UintToBool(base.Thermal_Sensor),

		MTBPs: mtb,
		FTBPs: ftb,

		TCKAvgMinPs:           ReconstructTiming(uint16(base.TCK_Min), base.TCK_Min_Fine, mtb, ftb),
		TCKAvgMaxPs:           ReconstructTiming(uint16(base.TCK_Max), base.TCK_Max_Fine, mtb, ftb),
		SupportedCASLatencies: base.CAS_Latencies,
		TAAMinPs:              ReconstructTiming(uint16(base.TAA_Min), base.TAA_Min_Fine, mtb, ftb),
		TRCDMinPs:             ReconstructTiming(uint16(base.TRCD_Min), base.TRCD_Min_Fine, mtb, ftb),
		TRPMinPs:              ReconstructTiming(uint16(base.TRP_Min), base.TRP_Min_Fine, mtb, ftb),
		TRASMinPs:             ReconstructTiming(uint16(base.TRAS_Min_Upper)<<8|uint16(base.TRAS_Min_Lsb), 0, mtb, ftb),
		TRCMinPs:              ReconstructTiming(uint16(base.TRC_Min_Upper)<<8|uint16(base.TRC_Min_Lsb), base.TRC_Min_Fine, mtb, ftb),
		TRFC1MinPs:            ReconstructTiming(base.TRFC1_Min, 0, mtb, ftb),
		TRFC2MinPs:            ReconstructTiming(base.TRFC2_Min, 0, mtb, ftb),
		TRFC4MinPs:            ReconstructTiming(base.TRFC4_Min, 0, mtb, ftb),
		TFAWMinPs:             ReconstructTiming(uint16(base.TFAW_Min_Upper)<<8|uint16(base.TFAW_Min_Lsb), 0, mtb, ftb),
		TRRDSMinPs:            ReconstructTiming(uint16(base.TRRD_S_Min), base.TRRD_S_Min_Fine, mtb, ftb),
		TRRDLMinPs:            ReconstructTiming(uint16(base.TRRD_L_Min), base.TRRD_L_Min_Fine, mtb, ftb),
		TCCDLMinPs:            ReconstructTiming(uint16(base.TCCD_L_Min), base.TCCD_L_Min_Fine, mtb, ftb),

		DQMap: base.DQ_Map,

		Policy: policy,
	}
	if base.Package_Type == 1 {
		cfg.PackageType = PACKAGE_NON_MONOLITHIC
	}
	if err := checkClockPeriods(spd, cfg); err != nil {
		return nil, err
	}

	klog.V(DBG_LVL_INFO).InfoS("spd.Decode", "device", cfg.DeviceType, "module", cfg.Module.Kind,
		"capacityMB", cfg.ModuleCapacityMegabytes(), "speedBin", cfg.SpeedBinMHz())
	return cfg, nil
}

// Bounds on the DDR4 average clock period in ps. Every speed bin from 1600 to
// 3200 MT/s lies inside, the margin only admits slightly off fine offsets.
const (
	DDR4_TCK_FLOOR_PS = 500
	DDR4_TCK_CEIL_PS  = 2_000
)

// checkClockPeriods rejects clock periods every derived timing would divide by.
// A negative fine offset larger than the coarse value wraps and lands above the ceiling.
func checkClockPeriods(spd []byte, cfg *GeneralConfig) error {
	plausible := func(ps uint32) bool { return ps >= DDR4_TCK_FLOOR_PS && ps <= DDR4_TCK_CEIL_PS }
	if !plausible(cfg.TCKAvgMinPs) {
		return &ReservedError{Byte: 18, Value: spd[18], Field: "tCKAVGmin"}
	}
	if !plausible(cfg.TCKAvgMaxPs) || cfg.TCKAvgMaxPs < cfg.TCKAvgMinPs {
		return &ReservedError{Byte: 19, Value: spd[19], Field: "tCKAVGmax"}
	}
	return nil
}

var deviceTypes = map[uint8]DeviceType{
	0x0B: DDR3,
	0x0C: DDR4,
	0x0F: LPDDR3,
	0x10: LPDDR4,
}

var signalLoadings = map[bitfield_2b]SignalLoading{
	0: LOADING_UNSPECIFIED,
	1: LOADING_MULTI_LOAD_STACK,
	2: LOADING_SINGLE_LOAD_STACK,
}

// decodeModule checks the module specific section and decodes it for the variant named by moduleType
func decodeModule(spd []byte, moduleType uint8) (ModuleConfig, error) {
	m := ModuleConfig{ModuleType: moduleType}
	switch {
	case contains(UNBUFFERED_MODULE_TYPES, moduleType):
		m.Kind = MODULE_UNBUFFERED
	case contains(REGISTERED_MODULE_TYPES, moduleType):
		m.Kind = MODULE_REGISTERED
	case contains(LOAD_REDUCED_MODULE_TYPES, moduleType):
		m.Kind = MODULE_LOAD_REDUCED
	default:
		return m, &ReservedError{Byte: 3, Value: spd[3], Field: "module_type"}
	}

	section := spd[SPD_MODULE_START : SPD_MODULE_START+SPD_SECTION_SIZE]
	if err := checkSectionCRC(string(m.Kind), section); err != nil {
		return m, err
	}
	if m.Kind != MODULE_UNBUFFERED {
		return m, nil
	}

	raw, err := parseStruct(section, SPD_DDR4_UNBUFFERED{})
	if err != nil {
		return m, err
	}
	m.Unbuffered = &UnbufferedConfig{
		RawCardExtension:        uint8(raw.Raw_Card_Ext),
		ModuleNominalHeight:     uint8(raw.Nominal_Height),
		ModuleMaxThicknessBack:  uint8(raw.Max_Thickness_Back),
		ModuleMaxThicknessFront: uint8(raw.Max_Thickness_Front),
		RefRawCardRev:           uint8(raw.Ref_Raw_Card_Rev),
		RefRawCard:              uint8(raw.Ref_Raw_Card),
		Rank1Mirrored:           UintToBool(raw.Rank_1_Mirrored),
	}
	return m, nil
}
