// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the DDR controller and FPD reset register layout (Zynq UltraScale+ UG1087)
package ddrc

import (
	"github.com/Seagate/ddr-lib/pkg/reg"
)

const (
	DDRC_BASE = 0xFD07_0000
	DDRC_SIZE = 0x3000

	CRF_APB_BASE = 0xFD1A_0000
	CRF_APB_SIZE = 0x1000
)

// DDRC register offsets
const (
	MSTR       = 0x000
	STAT       = 0x004
	MRCTRL0    = 0x010
	DERATEEN   = 0x020
	PWRCTL     = 0x030
	PWRTMG     = 0x034
	RFSHCTL0   = 0x050
	RFSHCTL1   = 0x054
	RFSHCTL3   = 0x060
	RFSHTMG    = 0x064
	ECCCFG0    = 0x070
	CRCPARCTL1 = 0x0C4
	CRCPARCTL2 = 0x0C8
	INIT0      = 0x0D0
	INIT1      = 0x0D4
	INIT3      = 0x0DC
	DIMMCTL    = 0x0F0
	DRAMTMG0   = 0x100
	DRAMTMG1   = 0x104
	DRAMTMG2   = 0x108
	DRAMTMG4   = 0x110
	DRAMTMG8   = 0x120
	DRAMTMG12  = 0x130
	ADDRMAP0   = 0x200
	ADDRMAP1   = 0x204
	ADDRMAP2   = 0x208
	ADDRMAP3   = 0x20C
	ADDRMAP4   = 0x210
	ADDRMAP5   = 0x214
	ADDRMAP6   = 0x218
	ADDRMAP7   = 0x21C
	ADDRMAP8   = 0x220
	ADDRMAP9   = 0x224
	ADDRMAP10  = 0x228
	ADDRMAP11  = 0x22C
	DQMAP0     = 0x280
	DQMAP1     = 0x284
	DQMAP2     = 0x288
	DQMAP3     = 0x28C
	DQMAP4     = 0x290
	DQMAP5     = 0x294
)

// CRF_APB register offsets
const (
	CRF_WPROT  = 0x01C
	RST_DDR_SS = 0x108
)

var (
	MSTR_DEVICE_CONFIG  = reg.Field{Offset: 30, Width: 2}
	MSTR_ACTIVE_RANKS   = reg.Field{Offset: 24, Width: 2}
	MSTR_BURST_RDWR     = reg.Field{Offset: 16, Width: 4}
	MSTR_DATA_BUS_WIDTH = reg.Field{Offset: 12, Width: 2}
	MSTR_LPDDR4         = reg.Bit(5)
	MSTR_DDR4           = reg.Bit(4)
	MSTR_LPDDR3         = reg.Bit(3)
	MSTR_DDR3           = reg.Bit(0)

	STAT_SELFREF_STATE  = reg.Field{Offset: 8, Width: 2}
	STAT_SELFREF_TYPE   = reg.Field{Offset: 4, Width: 2}
	STAT_OPERATING_MODE = reg.Field{Offset: 0, Width: 3}

	DERATEEN_RC_DERATE_VALUE = reg.Field{Offset: 8, Width: 2}

	PWRCTL_EN_DFI_DRAM_CLK_DISABLE = reg.Bit(3)
	PWRCTL_POWERDOWN_EN            = reg.Bit(1)
	PWRCTL_SELFREF_EN              = reg.Bit(0)

	RFSHCTL1_TIMER1_START_VALUE_X32 = reg.Field{Offset: 16, Width: 12}
	RFSHCTL3_REFRESH_MODE           = reg.Field{Offset: 4, Width: 3}
	RFSHTMG_T_RFC_NOM_X32           = reg.Field{Offset: 16, Width: 12}
	RFSHTMG_T_RFC_MIN               = reg.Field{Offset: 0, Width: 10}

	ECCCFG0_ECC_MODE = reg.Field{Offset: 0, Width: 3}

	CRCPARCTL1_CRC_ENABLE          = reg.Bit(4)
	CRCPARCTL1_PARITY_ENABLE       = reg.Bit(0)
	CRCPARCTL2_T_PAR_ALERT_PW_MAX  = reg.Field{Offset: 16, Width: 9}
	CRCPARCTL2_T_CRC_ALERT_PW_MAX  = reg.Field{Offset: 8, Width: 5}
	CRCPARCTL2_RETRY_FIFO_MAX_HOLD = reg.Field{Offset: 0, Width: 6}
	INIT0_POST_CKE_X1024           = reg.Field{Offset: 16, Width: 10}
	INIT0_PRE_CKE_X1024            = reg.Field{Offset: 0, Width: 12}
	INIT1_DRAM_RSTN_X1024          = reg.Field{Offset: 16, Width: 9}
	INIT3_MR                       = reg.Field{Offset: 16, Width: 16}
	INIT3_EMR                      = reg.Field{Offset: 0, Width: 16}
	DIMMCTL_DIMM_ADDR_MIRR_EN      = reg.Bit(1)
	DRAMTMG0_T_FAW                 = reg.Field{Offset: 16, Width: 6}
	DRAMTMG1_T_XP                  = reg.Field{Offset: 16, Width: 5}
	DRAMTMG1_T_RC                  = reg.Field{Offset: 0, Width: 7}
	DRAMTMG2_WRITE_LATENCY         = reg.Field{Offset: 24, Width: 6}
	DRAMTMG2_READ_LATENCY          = reg.Field{Offset: 16, Width: 6}
	DRAMTMG4_T_RCD                 = reg.Field{Offset: 24, Width: 5}
	DRAMTMG4_T_CCD                 = reg.Field{Offset: 16, Width: 4}
	DRAMTMG4_T_RRD                 = reg.Field{Offset: 8, Width: 4}
	DRAMTMG4_T_RP                  = reg.Field{Offset: 0, Width: 5}
	DRAMTMG8_T_XS_FAST_X32         = reg.Field{Offset: 24, Width: 7}
	DRAMTMG8_T_XS_ABORT_X32        = reg.Field{Offset: 16, Width: 7}
	DRAMTMG8_T_XS_DLL_X32          = reg.Field{Offset: 8, Width: 7}
	DRAMTMG8_T_XS_X32              = reg.Field{Offset: 0, Width: 7}
	DRAMTMG12_T_MRD_PDA            = reg.Field{Offset: 0, Width: 5}
	ADDRMAP0_CS_BIT0               = reg.Field{Offset: 0, Width: 5}
	ADDRMAP8_BG_B1                 = reg.Field{Offset: 8, Width: 5}
	ADDRMAP8_BG_B0                 = reg.Field{Offset: 0, Width: 5}
	ADDRMAP5_ROW_B2_10             = reg.Field{Offset: 16, Width: 4}
	DQMAP4_CB_4_7                  = reg.Field{Offset: 8, Width: 8}
	DQMAP4_CB_0_3                  = reg.Field{Offset: 0, Width: 8}
	WPROT_ACTIVE                   = reg.Bit(0)
	RST_DDR_SS_DDR_RESET           = reg.Bit(3)
)

// ADDRMAP bank, column and row fields are packed as bytes, 5 bits wide for bank and
// bank group and 4 bits wide for column and row selectors.
func addrmapByte(i int, width int) reg.Field {
	return reg.Field{Offset: 8 * i, Width: width}
}

// MSTR device_config encodings
var deviceConfigs = map[uint8]uint32{
	8:  0b01,
	16: 0b10,
	32: 0b11,
}

// MSTR burst_rdwr encodings, BL/2
var burstEncodings = map[uint8]uint32{
	4:  0b0010,
	8:  0b0100,
	16: 0b1000,
}

// MSTR data_bus_width encodings
var busWidths = map[uint8]uint32{
	64: 0b00,
	32: 0b01,
	16: 0b10,
}
