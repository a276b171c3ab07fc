// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the raw DDR4 SPD layout based on JEDEC Standard No. 21-C Annex L
package spd

const (
	SPD_SIZE                 = 512
	SPD_SECTION_SIZE         = 128
	SPD_CRC_COVERED          = 126
	SPD_BASE_START           = 0
	SPD_MODULE_START         = 128
	SPD_MANUFACTURING_START  = 320
	SPD_MANUFACTURING_LENGTH = 64
)

// Base configuration section, bytes 0-127
type SPD_DDR4_BASE struct {
	// 0
	Bytes_Used  bitfield_4b
	Bytes_Total bitfield_3b
	RsvdP0      bitfield_1b
	// 1
	Additions bitfield_4b
	Encoding  bitfield_4b
	// 2
	Device_Type uint8
	// 3
	Module_Type  bitfield_4b
	Hybrid_Media bitfield_3b
	Hybrid       bitfield_1b
	// 4
	Capacity  bitfield_4b
	Bank_Addr bitfield_2b
	BG_Addr   bitfield_2b
	// 5
	Col_Addr bitfield_3b
	Row_Addr bitfield_3b
	RsvdP5   bitfield_2b
	// 6
	Signal_Loading bitfield_2b
	RsvdP6         bitfield_2b
	Die_Count      bitfield_3b
	Package_Type   bitfield_1b
	// 7
	MAC    bitfield_4b
	TMAW   bitfield_2b
	RsvdP7 bitfield_2b
	// 8-10
	Thermal_Refresh   uint8
	Optional_Features uint8
	RsvdP10           uint8
	// 11
	Vdd_12_Operable bitfield_1b
	Vdd_12_Endurant bitfield_1b
	RsvdP11         bitfield_6b
	// 12
	Device_Width  bitfield_3b
	Package_Ranks bitfield_3b
	Rank_Mix      bitfield_1b
	RsvdP12       bitfield_1b
	// 13
	Bus_Width     bitfield_3b
	Bus_Width_Ext bitfield_2b
	RsvdP13       bitfield_3b
	// 14
	RsvdP14        bitfield_7b
	Thermal_Sensor bitfield_1b
	// 15-16
	Ext_Module_Type uint8
	RsvdP16         uint8
	// 17
	FTB     bitfield_2b
	MTB     bitfield_2b
	RsvdP17 bitfield_4b
	// 18-26
	TCK_Min       uint8
	TCK_Max       uint8
	CAS_Latencies uint32
	TAA_Min       uint8
	TRCD_Min      uint8
	TRP_Min       uint8
	// 27-29
	TRAS_Min_Upper bitfield_4b
	TRC_Min_Upper  bitfield_4b
	TRAS_Min_Lsb   uint8
	TRC_Min_Lsb    uint8
	// 30-35
	TRFC1_Min uint16
	TRFC2_Min uint16
	TRFC4_Min uint16
	// 36-37
	TFAW_Min_Upper bitfield_4b
	RsvdP36        bitfield_4b
	TFAW_Min_Lsb   uint8
	// 38-40
	TRRD_S_Min uint8
	TRRD_L_Min uint8
	TCCD_L_Min uint8
	RsvdP41    [19]byte
	// 60-77
	DQ_Map  [18]uint8
	RsvdP78 [39]byte
	// 117-125, fine offsets in reverse order
	TCCD_L_Min_Fine int8
	TRRD_L_Min_Fine int8
	TRRD_S_Min_Fine int8
	TRC_Min_Fine    int8
	TRP_Min_Fine    int8
	TRCD_Min_Fine   int8
	TAA_Min_Fine    int8
	TCK_Max_Fine    int8
	TCK_Min_Fine    int8
	// 126-127
	CRC uint16
}

// Module specific section for unbuffered modules (UDIMM, SO-DIMM), bytes 128-255
type SPD_DDR4_UNBUFFERED struct {
	// 128
	Nominal_Height bitfield_5b
	Raw_Card_Ext   bitfield_3b
	// 129
	Max_Thickness_Front bitfield_4b
	Max_Thickness_Back  bitfield_4b
	// 130
	Ref_Raw_Card     bitfield_5b
	Ref_Raw_Card_Rev bitfield_2b
	Ref_Raw_Card_Ext bitfield_1b
	// 131
	Rank_1_Mirrored bitfield_1b
	RsvdP131        bitfield_7b
	RsvdP132        [122]byte
	// 254-255
	CRC uint16
}

// Module supplier's data, bytes 320-383
type SPD_DDR4_MANUFACTURING struct {
	Mfr_ID_Lsb      uint8
	Mfr_ID_Msb      uint8
	Location        uint8
	Year            uint8
	Week            uint8
	Serial          uint32
	Part_Number     [20]byte
	Revision        uint8
	DRAM_Mfr_ID_Lsb uint8
	DRAM_Mfr_ID_Msb uint8
	DRAM_Stepping   uint8
	Mfr_Specific    [29]byte
	RsvdP382        uint16
}
