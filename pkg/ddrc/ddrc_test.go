// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package ddrc

import (
	"context"
	"errors"
	"testing"

	"github.com/Seagate/ddr-lib/pkg/reg"
	"github.com/Seagate/ddr-lib/pkg/spd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const SPD_FIXTURE = "../spd/testdata/micron-4atf51264hz.hex"

func decodeFixture(t *testing.T, policy spd.Policy) *spd.GeneralConfig {
	t.Helper()
	raw, err := spd.ReadFile(SPD_FIXTURE)
	require.NoError(t, err)
	cfg, err := spd.DecodeWithPolicy(raw, policy)
	require.NoError(t, err)
	return cfg
}

func deriveFixture(t *testing.T, policy spd.Policy) Image {
	t.Helper()
	img, err := Derive(decodeFixture(t, policy))
	require.NoError(t, err)
	return img
}

func assertRegs(t *testing.T, img Image, want map[string]uint32) {
	t.Helper()
	for name, val := range want {
		w, ok := img.Lookup(name)
		if assert.True(t, ok, name) {
			assert.Equalf(t, val, w.Value, "%s: got 0x%08X want 0x%08X", name, w.Value, val)
		}
	}
}

type regValue struct {
	Name   string
	Offset uint32
	Value  uint32
}

// Register values for the Micron MTA4ATF51264HZ-2G6E1 as derived by the reference
// algorithm and pinned to catch regressions. They are not independent golden data.
var fixtureRegs = []regValue{
	{"MSTR", MSTR, 0x81040010},
	{"DERATEEN", DERATEEN, 0x00000300},
	{"PWRCTL", PWRCTL, 0x00000000},
	{"RFSHCTL1", RFSHCTL1, 0x00000000},
	{"RFSHCTL3", RFSHCTL3, 0x00000000},
	{"RFSHTMG", RFSHTMG, 0x00A200EA},
	{"ECCCFG0", ECCCFG0, 0x00000000},
	{"CRCPARCTL1", CRCPARCTL1, 0x00000000},
	{"CRCPARCTL2", CRCPARCTL2, 0x00510500},
	{"INIT0", INIT0, 0x00000146},
	{"INIT1", INIT1, 0x00000000},
	{"INIT3", INIT3, 0x0A300000},
	{"DIMMCTL", DIMMCTL, 0x00000002},
	{"DRAMTMG0", DRAMTMG0, 0x00140000},
	{"DRAMTMG1", DRAMTMG1, 0x0004001F},
	{"DRAMTMG2", DRAMTMG2, 0x0A0A0000},
	{"DRAMTMG4", DRAMTMG4, 0x0A04050A},
	{"DRAMTMG8", DRAMTMG8, 0x04041008},
	{"DRAMTMG12", DRAMTMG12, 0x00000008},
	{"ADDRMAP0", ADDRMAP0, 0x0000001F},
	{"ADDRMAP1", ADDRMAP1, 0x001F0909},
	{"ADDRMAP2", ADDRMAP2, 0x00000000},
	{"ADDRMAP3", ADDRMAP3, 0x00000000},
	{"ADDRMAP4", ADDRMAP4, 0x00000F0F},
	{"ADDRMAP5", ADDRMAP5, 0x070F0707},
	{"ADDRMAP6", ADDRMAP6, 0x07070707},
	{"ADDRMAP7", ADDRMAP7, 0x00000F0F},
	{"ADDRMAP8", ADDRMAP8, 0x00001F08},
	{"ADDRMAP9", ADDRMAP9, 0x07070707},
	{"ADDRMAP10", ADDRMAP10, 0x07070707},
	{"ADDRMAP11", ADDRMAP11, 0x00000007},
	{"DQMAP0", DQMAP0, 0x35152C0C},
	{"DQMAP1", DQMAP1, 0x2C0B3515},
	{"DQMAP2", DQMAP2, 0x350B3515},
	{"DQMAP3", DQMAP3, 0x2C0B350B},
	{"DQMAP4", DQMAP4, 0x00000000},
}

func TestDeriveFixture(t *testing.T) {
	img := deriveFixture(t, spd.DefaultPolicy())
	require.Len(t, img, len(fixtureRegs))
	for i, want := range fixtureRegs {
		got := img[i]
		assert.Equal(t, want.Name, got.Name)
		assert.Equalf(t, want.Offset, got.Offset, "%s offset", want.Name)
		assert.Equalf(t, want.Value, got.Value, "%s: got 0x%08X want 0x%08X", want.Name, got.Value, want.Value)
	}
}

func TestDeriveDeterministic(t *testing.T) {
	cfg := decodeFixture(t, spd.DefaultPolicy())
	a, err := Derive(cfg)
	require.NoError(t, err)
	b, err := Derive(cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDerivePolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy func(p *spd.Policy)
		want   map[string]uint32
	}{
		{
			name:   "ecc",
			policy: func(p *spd.Policy) { p.ECC = true },
			want:   map[string]uint32{"ECCCFG0": 0x4},
		},
		{
			name:   "parity",
			policy: func(p *spd.Policy) { p.Parity = true },
			want: map[string]uint32{
				"CRCPARCTL1": 0x1,
				"DRAMTMG1":   0x0007001F,
				"DRAMTMG2":   0x0C0D0000,
			},
		},
		{
			name:   "crc",
			policy: func(p *spd.Policy) { p.CRC = true },
			want:   map[string]uint32{"CRCPARCTL1": 0x10},
		},
		{
			name: "power saving",
			policy: func(p *spd.Policy) {
				p.PowerDown = true
				p.SelfRefresh = true
				p.ClockStop = true
			},
			want: map[string]uint32{"PWRCTL": 0xB},
		},
		{
			name:   "fgr 2x",
			policy: func(p *spd.Policy) { p.FineGranularityRefresh = spd.FGR_X2 },
			want: map[string]uint32{
				"RFSHCTL3": 0x10,
				"RFSHTMG":  0x005100AE,
			},
		},
		{
			name:   "fgr 4x",
			policy: func(p *spd.Policy) { p.FineGranularityRefresh = spd.FGR_X4 },
			want: map[string]uint32{
				"RFSHCTL3": 0x20,
				"RFSHTMG":  0x0028006B,
			},
		},
		{
			name:   "extended temperature range",
			policy: func(p *spd.Policy) { p.TempRefRange = true },
			want:   map[string]uint32{"RFSHTMG": 0x005100EA},
		},
		{
			name:   "read dbi",
			policy: func(p *spd.Policy) { p.RdDBI = true },
			want: map[string]uint32{
				"INIT3":    0x0A400000,
				"DRAMTMG2": 0x0A0C0000,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := spd.DefaultPolicy()
			tt.policy(&p)
			assertRegs(t, deriveFixture(t, p), tt.want)
		})
	}
}

func TestDeriveDualRank(t *testing.T) {
	cfg := decodeFixture(t, spd.DefaultPolicy())
	cfg.PackageRanks = 2
	cfg.Module.Unbuffered.Rank1Mirrored = false

	img, err := Derive(cfg)
	require.NoError(t, err)
	assertRegs(t, img, map[string]uint32{
		"MSTR":     0x83040010,
		"RFSHCTL1": 0x00510000,
		"DIMMCTL":  0,
	})
}

func TestDeriveUnsupported(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *spd.GeneralConfig)
		field  string
	}{
		{"x4 devices", func(c *spd.GeneralConfig) { c.DeviceWidth = 4 }, "device width"},
		{"8 bit bus", func(c *spd.GeneralConfig) { c.BusWidth = 8 }, "bus width"},
		{"four ranks", func(c *spd.GeneralConfig) { c.PackageRanks = 4 }, "logical ranks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := decodeFixture(t, spd.DefaultPolicy())
			tt.mutate(cfg)
			_, err := Derive(cfg)
			var ue *UnsupportedError
			require.True(t, errors.As(err, &ue), "got %v", err)
			assert.Equal(t, tt.field, ue.Field)
		})
	}
}

func TestDeriveFieldOverflow(t *testing.T) {
	cfg := decodeFixture(t, spd.DefaultPolicy())
	// 500 ns tFAW needs 334 controller clocks, t_faw holds 63
	cfg.TFAWMinPs = 500_000
	_, err := Derive(cfg)
	var ue *UnsupportedError
	require.True(t, errors.As(err, &ue), "got %v", err)
	assert.Equal(t, "DRAMTMG0.t_faw", ue.Field)
}

func TestPackBytesOverflow(t *testing.T) {
	b := &builder{}
	assert.Equal(t, uint32(0x0F0F0707), b.packBytes("ADDRMAP6", 4, 7, 7, 15, 15))
	require.NoError(t, b.err)

	// HIF offsets above 15 do not fit a row selector
	b.packBytes("ADDRMAP6", 4, 7, 16)
	var ue *UnsupportedError
	require.True(t, errors.As(b.err, &ue), "got %v", b.err)
	assert.Equal(t, "ADDRMAP6[1]", ue.Field)
	assert.Equal(t, uint32(16), ue.Value)
}

func TestImageJSON(t *testing.T) {
	b, err := reg.Write{Name: "MSTR", Offset: MSTR, Value: 0x81040010}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"Name":"MSTR","Offset":"0x000","Value":"0x81040010"}`, string(b))
}

func newController() (*Controller, *reg.Sim, *reg.Sim) {
	ddrc := reg.NewSim("ddrc")
	crf := reg.NewSim("crf_apb")
	crf.Poke(CRF_WPROT, 1)
	return NewController(ddrc, crf), ddrc, crf
}

func TestConfigure(t *testing.T) {
	c, ddrc, crf := newController()

	// every DDRC write must land while the controller is held in reset
	inReset := true
	for _, w := range fixtureRegs {
		ddrc.OnWrite(w.Offset, func(uint32) {
			inReset = inReset && crf.Peek(RST_DDR_SS)&RST_DDR_SS_DDR_RESET.Mask() != 0
		})
	}

	img, err := c.Configure(decodeFixture(t, spd.DefaultPolicy()))
	require.NoError(t, err)
	assert.True(t, inReset)
	assert.False(t, c.InReset())

	journal := ddrc.Journal()
	require.Len(t, journal, len(img))
	for i, w := range img {
		assert.Equal(t, reg.Access{Offset: w.Offset, Value: w.Value}, journal[i])
	}

	assert.Equal(t, []reg.Access{
		{Offset: CRF_WPROT, Value: 0},
		{Offset: RST_DDR_SS, Value: 0x8},
		{Offset: CRF_WPROT, Value: 1},
		{Offset: CRF_WPROT, Value: 0},
		{Offset: RST_DDR_SS, Value: 0},
		{Offset: CRF_WPROT, Value: 1},
	}, crf.Journal())
}

func TestConfigureRejectsBeforeReset(t *testing.T) {
	c, ddrc, crf := newController()
	cfg := decodeFixture(t, spd.DefaultPolicy())
	cfg.DeviceWidth = 4

	_, err := c.Configure(cfg)
	require.Error(t, err)
	assert.Empty(t, crf.Journal())
	assert.Empty(t, ddrc.Journal())
}

func TestOperatingMode(t *testing.T) {
	tests := []struct {
		raw  uint32
		want OperatingMode
		name string
	}{
		{0, MODE_INIT, "Init"},
		{1, MODE_NORMAL, "Normal"},
		{2, MODE_POWER_DOWN, "PowerDown"},
		{3, MODE_SELF_REFRESH, "SelfRefresh"},
		{4, MODE_MPSM, "MPSM/DeepPowerDown"},
		{7, MODE_MPSM, "MPSM/DeepPowerDown"},
	}
	for _, tt := range tests {
		m := DecodeOperatingMode(tt.raw)
		assert.Equal(t, tt.want, m)
		assert.Equal(t, tt.name, m.String())
	}

	c, ddrc, _ := newController()
	ddrc.Poke(STAT, 0x303) // self refresh, selfref_state set
	assert.Equal(t, MODE_SELF_REFRESH, c.OperatingMode())
}

func TestWaitNormal(t *testing.T) {
	c, ddrc, _ := newController()
	reads := 0
	ddrc.OnRead(STAT, func(cur uint32) uint32 {
		reads++
		if reads >= 3 {
			return 1
		}
		return 0
	})
	require.NoError(t, c.WaitNormal(context.Background(), reg.Timeout{Iterations: 10}))
	assert.Equal(t, 3, ddrc.Reads(STAT))
}

func TestWaitNormalTimeout(t *testing.T) {
	c, ddrc, _ := newController()
	ddrc.Poke(STAT, 0)
	err := c.WaitNormal(context.Background(), reg.Timeout{Iterations: 50})
	require.Error(t, err)
	assert.True(t, errors.Is(err, reg.ErrTimeout))
	assert.Contains(t, err.Error(), "mode Init")
	assert.Equal(t, 50, ddrc.Reads(STAT))
}

func TestSimulate(t *testing.T) {
	c, ddrc, crf := newController()
	Simulate(ddrc, crf)
	assert.True(t, c.InReset())
	assert.Equal(t, MODE_INIT, c.OperatingMode())

	_, err := c.Configure(decodeFixture(t, spd.DefaultPolicy()))
	require.NoError(t, err)
	require.NoError(t, c.WaitNormal(context.Background(), reg.Timeout{Iterations: 1}))
	assert.Equal(t, MODE_NORMAL, c.OperatingMode())
}
