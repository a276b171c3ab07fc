// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the derivation of the DDR controller register image from a decoded SPD
package ddrc

import (
	"fmt"
	"math"

	"github.com/Seagate/ddr-lib/pkg/reg"
	"github.com/Seagate/ddr-lib/pkg/spd"
)

const (
	DBG_LVL_DEFAULT     = iota //0
	DBG_LVL_BASIC              //1
	DBG_LVL_INFO               //2
	DBG_LVL_DETAIL             //3
	DBG_LVL_DEEP_DETAIL        //4
)

// JEDEC init timings
const (
	TINIT_POST_CKE_PS = 400_000     // tXPR lower bound after CKE high
	TINIT_PRE_CKE_PS  = 500_000_000 // RESET_n high to CKE high
	TINIT_RSTN_PS     = 100_000     // RESET_n low pulse
	RC_DERATE_NS      = 3.75
	CRC_ALERT_PW_MAX  = 5
)

// UnsupportedError reports a configuration the controller has no encoding for
type UnsupportedError struct {
	Field string
	Value uint32
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("ddrc: unsupported %s %d", e.Field, e.Value)
}

// Image is the ordered list of writes programmed while the controller is held in reset
type Image = reg.Image

// builder collects the image and remembers the first field that overflowed
type builder struct {
	img Image
	err error
}

func (b *builder) add(name string, offset uint32, val uint32) {
	b.img = append(b.img, reg.Write{Name: name, Offset: offset, Value: val})
}

func (b *builder) pack(field string, f reg.Field, val uint32) uint32 {
	if !f.Fits(val) && b.err == nil {
		b.err = &UnsupportedError{Field: field, Value: val}
	}
	return f.Value(val)
}

func lookup(table map[uint8]uint32, field string, key uint8) (uint32, error) {
	v, ok := table[key]
	if !ok {
		return 0, &UnsupportedError{Field: field, Value: uint32(key)}
	}
	return v, nil
}

// Derive computes the controller register image for cfg. The result depends only on
// cfg, so deriving twice yields the same writes in the same order.
func Derive(cfg *spd.GeneralConfig) (Image, error) {
	b := &builder{}
	if cfg.TCKAvgMinPs == 0 {
		return nil, &UnsupportedError{Field: "tCKAVGmin", Value: 0}
	}

	if err := b.master(cfg); err != nil {
		return nil, err
	}
	b.refresh(cfg)
	if err := b.initRegs(cfg); err != nil {
		return nil, err
	}
	b.timing(cfg)
	if err := b.addrmap(cfg); err != nil {
		return nil, err
	}
	b.dqmap(cfg)

	if b.err != nil {
		return nil, b.err
	}
	return b.img, nil
}

func (b *builder) master(cfg *spd.GeneralConfig) error {
	devCfg, err := lookup(deviceConfigs, "device width", cfg.DeviceWidth)
	if err != nil {
		return err
	}
	burst, err := lookup(burstEncodings, "burst length", cfg.BurstLen())
	if err != nil {
		return err
	}
	busWidth, err := lookup(busWidths, "bus width", cfg.BusWidth)
	if err != nil {
		return err
	}
	ranks := uint32(cfg.LogicalRanks())
	if ranks == 0 || ranks > 2 {
		return &UnsupportedError{Field: "logical ranks", Value: ranks}
	}

	var mstr uint32
	mstr |= MSTR_DEVICE_CONFIG.Value(devCfg)
	mstr |= MSTR_ACTIVE_RANKS.Value(1<<ranks - 1)
	mstr |= MSTR_BURST_RDWR.Value(burst)
	mstr |= MSTR_DATA_BUS_WIDTH.Value(busWidth)
	mstr |= MSTR_LPDDR4.Set(cfg.DeviceType == spd.LPDDR4)
	mstr |= MSTR_DDR4.Set(cfg.DeviceType == spd.DDR4)
	mstr |= MSTR_LPDDR3.Set(cfg.DeviceType == spd.LPDDR3)
	mstr |= MSTR_DDR3.Set(cfg.DeviceType == spd.DDR3)
	b.add("MSTR", MSTR, mstr)

	rcDerate := uint32(math.Ceil(float64(float32(RC_DERATE_NS) / cfg.CtlClockPeriodNs())))
	b.add("DERATEEN", DERATEEN, b.pack("DERATEEN.rc_derate_value", DERATEEN_RC_DERATE_VALUE, rcDerate))

	p := cfg.Policy
	b.add("PWRCTL", PWRCTL, PWRCTL_EN_DFI_DRAM_CLK_DISABLE.Set(p.ClockStop)|
		PWRCTL_POWERDOWN_EN.Set(p.PowerDown)|
		PWRCTL_SELFREF_EN.Set(p.SelfRefresh))
	return nil
}

func (b *builder) refresh(cfg *spd.GeneralConfig) {
	p := cfg.Policy

	// the x32 registers count in units of 32 controller clocks, 64 DRAM clocks
	trefiX32 := cfg.PsToNck(cfg.TREFIPs()) / 64

	// stagger the refresh of a second rank by half an interval
	var timer1 uint32
	if cfg.RankAddrBits() == 1 {
		timer1 = trefiX32 / 2
	}
	b.add("RFSHCTL1", RFSHCTL1, b.pack("RFSHCTL1.timer1_start_value_x32", RFSHCTL1_TIMER1_START_VALUE_X32, timer1))

	var mode uint32
	nom := trefiX32
	if p.TempRefRange {
		nom /= 2
	}
	switch p.FineGranularityRefresh {
	case spd.FGR_X2:
		mode = 0b001
		nom = minU32(nom/2, 0x7FF)
	case spd.FGR_X4:
		mode = 0b010
		nom = minU32(nom/4, 0x3FF)
	default:
		nom = minU32(nom, 0xFFE)
	}
	b.add("RFSHCTL3", RFSHCTL3, RFSHCTL3_REFRESH_MODE.Value(mode))

	trfcMin := divCeil(cfg.PsToNck(cfg.TRFCMinPs()), 2)
	b.add("RFSHTMG", RFSHTMG, RFSHTMG_T_RFC_NOM_X32.Value(nom)|
		b.pack("RFSHTMG.t_rfc_min", RFSHTMG_T_RFC_MIN, trfcMin))

	var ecc uint32
	if p.ECC {
		ecc = 0b100 // SEC/DED over 64 bits
	}
	b.add("ECCCFG0", ECCCFG0, ECCCFG0_ECC_MODE.Value(ecc))

	b.add("CRCPARCTL1", CRCPARCTL1, CRCPARCTL1_CRC_ENABLE.Set(p.CRC)|CRCPARCTL1_PARITY_ENABLE.Set(p.Parity))
	tParAlert := divCeil(cfg.SpeedBinMHz()*3, 100)
	b.add("CRCPARCTL2", CRCPARCTL2, b.pack("CRCPARCTL2.t_par_alert_pw_max", CRCPARCTL2_T_PAR_ALERT_PW_MAX, tParAlert)|
		CRCPARCTL2_T_CRC_ALERT_PW_MAX.Value(CRC_ALERT_PW_MAX))
}

func (b *builder) initRegs(cfg *spd.GeneralConfig) error {
	post := divCeil(cfg.PsToNck(TINIT_POST_CKE_PS)/1024, 2)
	pre := divCeil(cfg.PsToNck(TINIT_PRE_CKE_PS)/1024, 2)
	b.add("INIT0", INIT0, b.pack("INIT0.post_cke_x1024", INIT0_POST_CKE_X1024, post)|
		b.pack("INIT0.pre_cke_x1024", INIT0_PRE_CKE_X1024, pre))

	rstn := divCeil(cfg.PsToNck(TINIT_RSTN_PS)/1024, 2)
	b.add("INIT1", INIT1, b.pack("INIT1.dram_rstn_x1024", INIT1_DRAM_RSTN_X1024, rstn))

	mr0, err := cfg.MR0()
	if err != nil {
		return err
	}
	b.add("INIT3", INIT3, INIT3_MR.Value(uint32(mr0)))

	mirrored := cfg.Module.Unbuffered != nil && cfg.Module.Unbuffered.Rank1Mirrored
	b.add("DIMMCTL", DIMMCTL, DIMMCTL_DIMM_ADDR_MIRR_EN.Set(mirrored))
	return nil
}

// timing registers count in controller clocks, half the DRAM clock
func (b *builder) timing(cfg *spd.GeneralConfig) {
	half := func(nck uint32) uint32 { return divCeil(nck, 2) }

	b.add("DRAMTMG0", DRAMTMG0, b.pack("DRAMTMG0.t_faw", DRAMTMG0_T_FAW, half(cfg.PsToNck(cfg.TFAWMinPs))))

	txp := half(cfg.TXPNck() + cfg.ParityLatencyNck())
	trc := half(cfg.PsToNck(cfg.TRCMinPs))
	b.add("DRAMTMG1", DRAMTMG1, b.pack("DRAMTMG1.t_xp", DRAMTMG1_T_XP, txp)|
		b.pack("DRAMTMG1.t_rc", DRAMTMG1_T_RC, trc))

	b.add("DRAMTMG2", DRAMTMG2, b.pack("DRAMTMG2.write_latency", DRAMTMG2_WRITE_LATENCY, half(cfg.WriteLatencyNck()))|
		b.pack("DRAMTMG2.read_latency", DRAMTMG2_READ_LATENCY, half(cfg.ReadLatencyNck())))

	trcd := half(cfg.PsToNck(cfg.TRCDMinPs) - cfg.AdditiveLatencyNck())
	tccd := half(cfg.PsToNck(cfg.TCCDLMinPs))
	trrd := half(cfg.PsToNck(cfg.TRRDLMinPs))
	trp := divCeil(cfg.TRPMinPs, cfg.TCKAvgMinPs)/2 + 1
	b.add("DRAMTMG4", DRAMTMG4, b.pack("DRAMTMG4.t_rcd", DRAMTMG4_T_RCD, trcd)|
		b.pack("DRAMTMG4.t_ccd", DRAMTMG4_T_CCD, tccd)|
		b.pack("DRAMTMG4.t_rrd", DRAMTMG4_T_RRD, trrd)|
		b.pack("DRAMTMG4.t_rp", DRAMTMG4_T_RP, trp))

	x32 := func(nck uint32) uint32 { return half(nck / 32) }
	b.add("DRAMTMG8", DRAMTMG8,
		b.pack("DRAMTMG8.t_xs_fast_x32", DRAMTMG8_T_XS_FAST_X32, x32(cfg.PsToNck(cfg.TXSFastMinNs()*1000)))|
			b.pack("DRAMTMG8.t_xs_abort_x32", DRAMTMG8_T_XS_ABORT_X32, x32(cfg.PsToNck(cfg.TXSAbortMinNs()*1000)))|
			b.pack("DRAMTMG8.t_xs_dll_x32", DRAMTMG8_T_XS_DLL_X32, x32(cfg.TXSDLLMinNck()))|
			b.pack("DRAMTMG8.t_xs_x32", DRAMTMG8_T_XS_X32, x32(cfg.PsToNck(cfg.TXSMinNs()*1000))))

	b.add("DRAMTMG12", DRAMTMG12, b.pack("DRAMTMG12.t_mrd_pda", DRAMTMG12_T_MRD_PDA, half(cfg.TMRDPDAMinNck())))
}

// packBytes places one selector per byte lane of the register, lowest index first
func (b *builder) packBytes(name string, width int, vals ...uint32) uint32 {
	var r uint32
	for i, v := range vals {
		r |= b.pack(fmt.Sprintf("%s[%d]", name, i), addrmapByte(i, width), v)
	}
	return r
}

func (b *builder) addrmap(cfg *spd.GeneralConfig) error {
	bank, err := cfg.BankAddrMap()
	if err != nil {
		return err
	}
	bg, err := cfg.BGAddrMap()
	if err != nil {
		return err
	}
	col, err := cfg.ColAddrMap()
	if err != nil {
		return err
	}
	row, err := cfg.RowAddrMap()
	if err != nil {
		return err
	}

	// single chip select, cs bit unused
	b.add("ADDRMAP0", ADDRMAP0, ADDRMAP0_CS_BIT0.Value(spd.ADDRMAP_UNUSED_5B))
	b.add("ADDRMAP1", ADDRMAP1, b.packBytes("ADDRMAP1", 5, bank[0], bank[1], bank[2]))
	b.add("ADDRMAP2", ADDRMAP2, b.packBytes("ADDRMAP2", 4, col[2], col[3], col[4], col[5]))
	b.add("ADDRMAP3", ADDRMAP3, b.packBytes("ADDRMAP3", 4, col[6], col[7], col[8], col[9]))
	b.add("ADDRMAP4", ADDRMAP4, b.packBytes("ADDRMAP4", 4, col[10], col[11]))
	// row bits 2..10 are mapped individually through ADDRMAP9-11
	b.add("ADDRMAP5", ADDRMAP5, b.packBytes("ADDRMAP5", 4, row[0], row[1], 0, row[11])|ADDRMAP5_ROW_B2_10.Value(spd.ADDRMAP_UNUSED_4B))
	b.add("ADDRMAP6", ADDRMAP6, b.packBytes("ADDRMAP6", 4, row[12], row[13], row[14], row[15]))
	b.add("ADDRMAP7", ADDRMAP7, b.packBytes("ADDRMAP7", 4, row[16], row[17]))
	b.add("ADDRMAP8", ADDRMAP8, b.pack("ADDRMAP8.bg_b1", ADDRMAP8_BG_B1, bg[1])|b.pack("ADDRMAP8.bg_b0", ADDRMAP8_BG_B0, bg[0]))
	b.add("ADDRMAP9", ADDRMAP9, b.packBytes("ADDRMAP9", 4, row[2], row[3], row[4], row[5]))
	b.add("ADDRMAP10", ADDRMAP10, b.packBytes("ADDRMAP10", 4, row[6], row[7], row[8], row[9]))
	b.add("ADDRMAP11", ADDRMAP11, b.packBytes("ADDRMAP11", 4, row[10]))
	return nil
}

// SPD bytes 60-77 describe the nibbles of the 64 data bits (0-7, 10-17) and the
// 8 check bits (8-9)
func (b *builder) dqmap(cfg *spd.GeneralConfig) {
	dq := func(i ...int) uint32 {
		vals := make([]uint32, len(i))
		for j, n := range i {
			vals[j] = uint32(cfg.DQMap[n])
		}
		return b.packBytes("DQMAP", 8, vals...)
	}
	b.add("DQMAP0", DQMAP0, dq(0, 1, 2, 3))
	b.add("DQMAP1", DQMAP1, dq(4, 5, 6, 7))
	b.add("DQMAP2", DQMAP2, dq(10, 11, 12, 13))
	b.add("DQMAP3", DQMAP3, dq(14, 15, 16, 17))
	b.add("DQMAP4", DQMAP4, DQMAP4_CB_4_7.Value(uint32(cfg.DQMap[9]))|DQMAP4_CB_0_3.Value(uint32(cfg.DQMap[8])))
}

func divCeil(a, b uint32) uint32 {
	return (a + b - 1) / b
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
