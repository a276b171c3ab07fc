// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the decoded SPD configuration types and the bring-up policy
package spd

import (
	"fmt"
)

const (
	DBG_LVL_DEFAULT     = iota //0
	DBG_LVL_BASIC              //1
	DBG_LVL_INFO               //2
	DBG_LVL_DETAIL             //3
	DBG_LVL_DEEP_DETAIL        //4
)

// DeviceType : SDRAM device type from byte 2
type DeviceType string

// List of SDRAM device types
const (
	DDR3   DeviceType = "DDR3"
	DDR4   DeviceType = "DDR4"
	LPDDR3 DeviceType = "LPDDR3"
	LPDDR4 DeviceType = "LPDDR4"
)

// PackageType : primary SDRAM package type from byte 6
type PackageType string

const (
	PACKAGE_MONOLITHIC     PackageType = "Monolithic"
	PACKAGE_NON_MONOLITHIC PackageType = "NonMonolithic"
)

// SignalLoading : stacked package signal loading from byte 6
type SignalLoading string

const (
	LOADING_UNSPECIFIED       SignalLoading = "Unspecified"
	LOADING_MULTI_LOAD_STACK  SignalLoading = "MultiLoadStack"
	LOADING_SINGLE_LOAD_STACK SignalLoading = "SingleLoadStack"
)

// ModuleKind : the module configuration variant selected by the module type of byte 3
type ModuleKind string

const (
	MODULE_UNBUFFERED   ModuleKind = "Unbuffered"
	MODULE_REGISTERED   ModuleKind = "Registered"
	MODULE_LOAD_REDUCED ModuleKind = "LoadReduced"
)

// FGRMode : fine granularity refresh mode
type FGRMode string

const (
	FGR_X1 FGRMode = "1x"
	FGR_X2 FGRMode = "2x"
	FGR_X4 FGRMode = "4x"
)

// ParseFGRMode maps a refresh rate multiplier (1, 2 or 4) to its mode
func ParseFGRMode(n int) (FGRMode, error) {
	switch n {
	case 1:
		return FGR_X1, nil
	case 2:
		return FGR_X2, nil
	case 4:
		return FGR_X4, nil
	}
	return "", fmt.Errorf("spd: unsupported fine granularity refresh mode %dx", n)
}

// Module specific bytes 128-131 of unbuffered memory modules (Annex L.1)
type UnbufferedConfig struct {
	RawCardExtension        uint8 `json:"RawCardExtension"`
	ModuleNominalHeight     uint8 `json:"ModuleNominalHeight"`
	ModuleMaxThicknessBack  uint8 `json:"ModuleMaxThicknessBack"`
	ModuleMaxThicknessFront uint8 `json:"ModuleMaxThicknessFront"`
	RefRawCardRev           uint8 `json:"RefRawCardRev"`
	RefRawCard              uint8 `json:"RefRawCard"`
	Rank1Mirrored           bool  `json:"Rank1Mirrored"`
}

// ModuleConfig carries the module specific section. Registered and load reduced
// modules are recognized but have no decoded fields yet.
type ModuleConfig struct {
	Kind       ModuleKind        `json:"Kind"`
	ModuleType uint8             `json:"ModuleType"`
	Unbuffered *UnbufferedConfig `json:"Unbuffered,omitempty"`
}

func (m ModuleConfig) Registered() bool {
	return m.Kind == MODULE_REGISTERED
}

// Policy holds the controller options that are not derived from SPD contents
type Policy struct {
	DM                     bool    `json:"DM"`
	RdDBI                  bool    `json:"RdDBI"`
	WrDBI                  bool    `json:"WrDBI"`
	ECC                    bool    `json:"ECC"`
	SecondClock            bool    `json:"SecondClock"`
	Parity                 bool    `json:"Parity"`
	CRC                    bool    `json:"CRC"`
	PowerDown              bool    `json:"PowerDown"`
	ClockStop              bool    `json:"ClockStop"`
	SelfRefresh            bool    `json:"SelfRefresh"`
	LPAutoSelfRefresh      bool    `json:"LPAutoSelfRefresh"`
	TempRefMode            bool    `json:"TempRefMode"`
	TempRefRange           bool    `json:"TempRefRange"`
	FineGranularityRefresh FGRMode `json:"FineGranularityRefresh"`
	SelfRefreshAbort       bool    `json:"SelfRefreshAbort"`
	VRef                   bool    `json:"VRef"`
	Geardown               bool    `json:"Geardown"`
}

// DefaultPolicy is the minimal bring-up policy: data mask and VREF training on,
// every optional controller feature off.
func DefaultPolicy() Policy {
	return Policy{
		DM:                     true,
		FineGranularityRefresh: FGR_X1,
		VRef:                   true,
	}
}

func (p Policy) Validate() error {
	switch p.FineGranularityRefresh {
	case FGR_X1, FGR_X2, FGR_X4:
		return nil
	}
	return fmt.Errorf("spd: invalid fine granularity refresh mode %q", p.FineGranularityRefresh)
}

// GeneralConfig is the decoded and validated SPD image. Timing values are in picoseconds.
// Derived quantities are methods so the struct stays a minimal copy of the EEPROM contents.
type GeneralConfig struct {
	SPDBytesTotal uint16 `json:"SPDBytesTotal"`
	SPDBytesUsed  uint16 `json:"SPDBytesUsed"`
	SPDEncoding   uint8  `json:"SPDEncoding"`
	SPDAdditions  uint8  `json:"SPDAdditions"`

	DeviceType DeviceType   `json:"DeviceType"`
	Module     ModuleConfig `json:"Module"`

	BGAddrBits       uint8  `json:"BGAddrBits"`
	BankAddrBits     uint8  `json:"BankAddrBits"`
	CapacityMegabits uint16 `json:"CapacityMegabits"`
	RowAddrBits      uint8  `json:"RowAddrBits"`
	ColAddrBits      uint8  `json:"ColAddrBits"`

	PackageType   PackageType   `json:"PackageType"`
	DieCount      uint8         `json:"DieCount"`
	SignalLoading SignalLoading `json:"SignalLoading"`

	TMAW uint16 `json:"TMAW"` // units of tREFI
	MAC  uint8  `json:"MAC"`

	Vdd12Endurant bool `json:"Vdd12Endurant"`
	Vdd12Operable bool `json:"Vdd12Operable"`

	PackageRanks      uint8 `json:"PackageRanks"`
	DeviceWidth       uint8 `json:"DeviceWidth"`
	BusWidthExtension uint8 `json:"BusWidthExtension"`
	BusWidth          uint8 `json:"BusWidth"`
	HasThermalSensor  bool  `json:"HasThermalSensor"`

	MTBPs uint32 `json:"MTBPs"`
	FTBPs uint32 `json:"FTBPs"`

	TCKAvgMinPs uint32 `json:"TCKAvgMinPs"`
	TCKAvgMaxPs uint32 `json:"TCKAvgMaxPs"`
	// bit n set means CL = n + 7 is supported
	SupportedCASLatencies uint32 `json:"SupportedCASLatencies"`
	TAAMinPs              uint32 `json:"TAAMinPs"`
	TRCDMinPs             uint32 `json:"TRCDMinPs"`
	TRPMinPs              uint32 `json:"TRPMinPs"`
	TRASMinPs             uint32 `json:"TRASMinPs"`
	TRCMinPs              uint32 `json:"TRCMinPs"`
	TRFC1MinPs            uint32 `json:"TRFC1MinPs"`
	TRFC2MinPs            uint32 `json:"TRFC2MinPs"`
	TRFC4MinPs            uint32 `json:"TRFC4MinPs"`
	TFAWMinPs             uint32 `json:"TFAWMinPs"`
	TRRDSMinPs            uint32 `json:"TRRDSMinPs"`
	TRRDLMinPs            uint32 `json:"TRRDLMinPs"`
	TCCDLMinPs            uint32 `json:"TCCDLMinPs"`

	DQMap [18]uint8 `json:"DQMap"`

	Policy Policy `json:"Policy"`
}
