// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements DDR controller programming, reset control and mode polling
package ddrc

import (
	"context"
	"fmt"

	"github.com/Seagate/ddr-lib/pkg/reg"
	"github.com/Seagate/ddr-lib/pkg/spd"
	"k8s.io/klog/v2"
)

// OperatingMode : DDRC STAT.operating_mode
type OperatingMode uint8

const (
	MODE_INIT OperatingMode = iota
	MODE_NORMAL
	MODE_POWER_DOWN
	MODE_SELF_REFRESH
	MODE_MPSM // DDR4 maximum power saving; deep power-down on LPDDR
)

func (m OperatingMode) String() string {
	switch m {
	case MODE_INIT:
		return "Init"
	case MODE_NORMAL:
		return "Normal"
	case MODE_POWER_DOWN:
		return "PowerDown"
	case MODE_SELF_REFRESH:
		return "SelfRefresh"
	}
	return "MPSM/DeepPowerDown"
}

// DecodeOperatingMode maps the 3-bit STAT field. Every value with bit 2 set is MPSM.
func DecodeOperatingMode(raw uint32) OperatingMode {
	if raw >= 4 {
		return MODE_MPSM
	}
	return OperatingMode(raw)
}

// Controller drives the DDRC and the DDR subsystem reset in CRF_APB.
// Each Block should be the only handle on its register window.
type Controller struct {
	DDRC reg.Block
	CRF  reg.Block
}

func NewController(ddrc, crf reg.Block) *Controller {
	return &Controller{DDRC: ddrc, CRF: crf}
}

// Configure derives the register image and programs it with the controller held in
// reset. Derivation errors are returned before the reset is touched.
func (c *Controller) Configure(cfg *spd.GeneralConfig) (Image, error) {
	img, err := Derive(cfg)
	if err != nil {
		return nil, fmt.Errorf("ddrc: derive register image: %w", err)
	}
	klog.V(DBG_LVL_INFO).InfoS("ddrc.Configure", "writes", len(img))

	c.AssertReset()
	img.Apply(c.DDRC)
	c.DeassertReset()

	klog.V(DBG_LVL_BASIC).Info("ddrc configured")
	return img, nil
}

func (c *Controller) AssertReset() {
	c.setReset(true)
}

func (c *Controller) DeassertReset() {
	c.setReset(false)
}

// CRF_APB registers are write protected outside of an unlock window
func (c *Controller) unlocked(fn func()) {
	c.CRF.Write32(CRF_WPROT, WPROT_ACTIVE.Set(false))
	defer c.CRF.Write32(CRF_WPROT, WPROT_ACTIVE.Set(true))
	fn()
}

func (c *Controller) setReset(on bool) {
	klog.V(DBG_LVL_DETAIL).InfoS("ddrc.setReset", "ddr_reset", on)
	c.unlocked(func() {
		if on {
			reg.SetBits(c.CRF, RST_DDR_SS, RST_DDR_SS_DDR_RESET.Mask())
		} else {
			reg.ClearBits(c.CRF, RST_DDR_SS, RST_DDR_SS_DDR_RESET.Mask())
		}
	})
}

func (c *Controller) InReset() bool {
	return reg.ReadField(c.CRF, RST_DDR_SS, RST_DDR_SS_DDR_RESET) == 1
}

func (c *Controller) OperatingMode() OperatingMode {
	return DecodeOperatingMode(reg.ReadField(c.DDRC, STAT, STAT_OPERATING_MODE))
}

// WaitNormal polls STAT until the controller reports Normal operation
func (c *Controller) WaitNormal(ctx context.Context, t reg.Timeout) error {
	val, n, err := reg.Poll(ctx, c.DDRC, STAT, func(v uint32) bool {
		return DecodeOperatingMode(STAT_OPERATING_MODE.Read(v)) == MODE_NORMAL
	}, t)
	if err != nil {
		mode := DecodeOperatingMode(STAT_OPERATING_MODE.Read(val))
		return fmt.Errorf("ddrc: waiting for Normal mode after %d reads, mode %s: %w", n, mode, err)
	}
	klog.V(DBG_LVL_BASIC).InfoS("ddrc operating mode Normal", "reads", n)
	return nil
}
