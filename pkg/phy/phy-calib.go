// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the DDR PHY initialization and training sequence
package phy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Seagate/ddr-lib/pkg/reg"
	"k8s.io/klog/v2"
)

const (
	DBG_LVL_DEFAULT     = iota //0
	DBG_LVL_BASIC              //1
	DBG_LVL_INFO               //2
	DBG_LVL_DETAIL             //3
	DBG_LVL_DEEP_DETAIL        //4
)

const DEFAULT_PLL_RETRIES = 10

// PGCR1 value loaded before the training phase
const PGCR1_TRAINING = 0x00000040

// Phase : one step of the PHY initialization sequence
type Phase string

const (
	PHASE_STATIC    Phase = "static configuration"
	PHASE_PLL       Phase = "PLL initialization"
	PHASE_CAL       Phase = "impedance and delay line calibration"
	PHASE_DRAM_INIT Phase = "DRAM initialization"
	PHASE_TRAINING  Phase = "data training"
	PHASE_VREF      Phase = "VREF training"
	PHASE_RETRAIN   Phase = "eye retraining"
)

var ErrPLLLock = errors.New("phy: DDR PLLs failed to lock")

// TimeoutError reports a phase whose done bits did not all assert within the poll budget
type TimeoutError struct {
	Phase      Phase
	Iterations int
	PGSR0      uint32
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("phy: %s timed out after %d reads, PGSR0 0x%08X", e.Phase, e.Iterations, e.PGSR0)
}

func (e *TimeoutError) Unwrap() error {
	return reg.ErrTimeout
}

// TrainingError reports PGSR0 error flags raised by a completed phase
type TrainingError struct {
	Phase Phase
	Flags uint32
	PGSR0 uint32
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("phy: %s failed: %s (PGSR0 0x%08X)", e.Phase, FlagNames(e.Flags), e.PGSR0)
}

var errorFlagNames = []struct {
	f    reg.Field
	name string
}{
	{PGSR0_CAERR, "CA"},
	{PGSR0_WEERR, "write eye"},
	{PGSR0_REERR, "read eye"},
	{PGSR0_WDERR, "write deskew"},
	{PGSR0_RDERR, "read deskew"},
	{PGSR0_WLAERR, "write leveling adjust"},
	{PGSR0_QSGERR, "DQS gating"},
	{PGSR0_WLERR, "write leveling"},
	{PGSR0_ZCERR, "impedance calibration"},
	{PGSR0_VERR, "VREF"},
	{PGSR0_DQS2DQERR, "DQS2DQ"},
}

// FlagNames lists the PGSR0 error flags set in flags
func FlagNames(flags uint32) string {
	var names []string
	for _, e := range errorFlagNames {
		if flags&e.f.Mask() != 0 {
			names = append(names, e.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

var (
	TRAINING_TRIGGER = bits(PIR_CTRL_DRAM_INIT, PIR_WR_EYE, PIR_RD_EYE, PIR_WR_DESKEW, PIR_RD_DESKEW,
		PIR_WR_LEV_ADJ, PIR_QS_GATE, PIR_WR_LEV)
	TRAINING_DONE = bits(PGSR0_WEDONE, PGSR0_REDONE, PGSR0_WDDONE, PGSR0_RDDONE, PGSR0_WLADONE,
		PGSR0_QSGDONE, PGSR0_WLDONE)
	TRAINING_ERRORS = bits(PGSR0_CAERR, PGSR0_WEERR, PGSR0_REERR, PGSR0_WDERR, PGSR0_RDERR,
		PGSR0_WLAERR, PGSR0_QSGERR, PGSR0_WLERR, PGSR0_ZCERR, PGSR0_VERR, PGSR0_DQS2DQERR)
)

// one PLL per pair of byte lanes
var pllLanes = []int{0, 2, 4, 6}

// Calibrator runs the PHY state machine over a PHY register block. Every poll is
// bounded by Timeout. Only the PLL phase is retried, up to PLLRetries attempts.
type Calibrator struct {
	Block      reg.Block
	Timeout    reg.Timeout
	PLLRetries int
}

func NewCalibrator(b reg.Block) *Calibrator {
	return &Calibrator{
		Block:      b,
		Timeout:    reg.DefaultTimeout(),
		PLLRetries: DEFAULT_PLL_RETRIES,
	}
}

// Run executes all phases in order and stops at the first failure
func (c *Calibrator) Run(ctx context.Context) error {
	c.LoadStatic()
	steps := []struct {
		phase Phase
		fn    func(context.Context) error
	}{
		{PHASE_PLL, c.InitPLLs},
		{PHASE_CAL, c.Calibrate},
		{PHASE_DRAM_INIT, c.WaitDRAMInit},
		{PHASE_TRAINING, c.Train},
		{PHASE_VREF, c.TrainVREF},
		{PHASE_RETRAIN, c.Retrain},
	}
	for _, s := range steps {
		klog.V(DBG_LVL_BASIC).InfoS("phy phase start", "phase", s.phase)
		if err := s.fn(ctx); err != nil {
			klog.ErrorS(err, "phy phase failed", "phase", s.phase)
			return err
		}
		klog.V(DBG_LVL_BASIC).InfoS("phy phase done", "phase", s.phase)
	}
	return nil
}

// LoadStatic programs StaticConfig. No polling is involved.
func (c *Calibrator) LoadStatic() {
	klog.V(DBG_LVL_BASIC).InfoS("phy phase start", "phase", PHASE_STATIC, "writes", len(staticConfig))
	staticConfig.Apply(c.Block)
}

func (c *Calibrator) trigger(pir uint32) {
	klog.V(DBG_LVL_DETAIL).InfoS("phy.trigger", "PIR", fmt.Sprintf("0x%08X", pir|PIR_INIT.Mask()))
	c.Block.Write32(PIR, pir|PIR_INIT.Mask())
}

// wait polls PGSR0 until every bit of done is set and returns the last PGSR0 value
func (c *Calibrator) wait(ctx context.Context, phase Phase, done uint32) (uint32, error) {
	val, n, err := reg.Poll(ctx, c.Block, PGSR0, func(v uint32) bool { return v&done == done }, c.Timeout)
	if errors.Is(err, reg.ErrTimeout) {
		return val, &TimeoutError{Phase: phase, Iterations: n, PGSR0: val}
	}
	if err != nil {
		return val, fmt.Errorf("phy: %s: %w", phase, err)
	}
	klog.V(DBG_LVL_DEEP_DETAIL).InfoS("phy.wait", "phase", phase, "reads", n, "PGSR0", fmt.Sprintf("0x%08X", val))
	return val, nil
}

func (c *Calibrator) pllLocked() bool {
	if PGSR0_APLOCK.Read(c.Block.Read32(PGSR0)) == 0 {
		return false
	}
	for _, lane := range pllLanes {
		if DXGSR0_DPLOCK.Read(c.Block.Read32(DX(lane, DXGSR0))) == 0 {
			return false
		}
	}
	return true
}

// InitPLLs starts the PHY PLLs and checks the analog and byte lane lock bits. A
// timed out attempt and an attempt without lock both consume one retry.
func (c *Calibrator) InitPLLs(ctx context.Context) error {
	retries := c.PLLRetries
	if retries <= 0 {
		retries = DEFAULT_PLL_RETRIES
	}
	for attempt := 1; attempt <= retries; attempt++ {
		c.trigger(bits(PIR_CTRL_DRAM_INIT, PIR_PLL_INIT))
		_, err := c.wait(ctx, PHASE_PLL, PGSR0_PLDONE.Mask())
		var te *TimeoutError
		switch {
		case errors.As(err, &te):
			klog.V(DBG_LVL_INFO).InfoS("phy PLL init timed out", "attempt", attempt, "PGSR0", fmt.Sprintf("0x%08X", te.PGSR0))
			continue
		case err != nil:
			return err
		}
		if c.pllLocked() {
			klog.V(DBG_LVL_INFO).InfoS("phy PLLs locked", "attempt", attempt)
			return nil
		}
		klog.V(DBG_LVL_INFO).InfoS("phy PLLs not locked", "attempt", attempt)
	}
	return fmt.Errorf("%w after %d attempts", ErrPLLLock, retries)
}

// Calibrate runs impedance and digital delay line calibration in parallel
func (c *Calibrator) Calibrate(ctx context.Context) error {
	c.trigger(bits(PIR_CTRL_DRAM_INIT, PIR_PHY_RST, PIR_DCAL, PIR_ZCAL))
	_, err := c.wait(ctx, PHASE_CAL, bits(PGSR0_ZCDONE, PGSR0_DCDONE, PGSR0_IDONE))
	return err
}

// WaitDRAMInit hands DRAM initialization to the controller and waits for it
func (c *Calibrator) WaitDRAMInit(ctx context.Context) error {
	c.trigger(PIR_CTRL_DRAM_INIT.Mask())
	_, err := c.wait(ctx, PHASE_DRAM_INIT, bits(PGSR0_DIDONE, PGSR0_IDONE))
	return err
}

// Train runs write leveling, DQS gating, deskew and eye training, then fails on
// any error flag.
func (c *Calibrator) Train(ctx context.Context) error {
	c.Block.Write32(PGCR1, PGCR1_TRAINING)
	c.trigger(TRAINING_TRIGGER)
	val, err := c.wait(ctx, PHASE_TRAINING, TRAINING_DONE)
	if err != nil {
		return err
	}
	if flags := val & TRAINING_ERRORS; flags != 0 {
		return &TrainingError{Phase: PHASE_TRAINING, Flags: flags, PGSR0: val}
	}
	return nil
}

// staticReadMode switches the PHY to static read mode with refresh during training,
// and returns a func that restores normal mode.
func (c *Calibrator) staticReadMode() (restore func()) {
	dtcr0 := c.Block.Read32(DTCR0)
	next := dtcr0
	DTCR0_RFSHDT.Write(&next, 1)
	c.Block.Write32(DTCR0, next)
	reg.SetBits(c.Block, PGCR3, PGCR3_RDMODE.Mask())
	for sl := 0; sl < DX8_SLICES; sl++ {
		reg.SetBits(c.Block, DX8SL(sl, SL_DXCTL2), SL_DXCTL2_RDMODE.Mask())
	}

	return func() {
		reg.ClearBits(c.Block, PGCR3, PGCR3_RDMODE.Mask())
		for sl := 0; sl < DX8_SLICES; sl++ {
			reg.ClearBits(c.Block, DX8SL(sl, SL_DXCTL2), SL_DXCTL2_RDMODE.Mask())
		}
		c.Block.Write32(DTCR0, dtcr0)
	}
}

// TrainVREF runs DRAM and host VREF training in static read mode
func (c *Calibrator) TrainVREF(ctx context.Context) error {
	restore := c.staticReadMode()
	defer restore()

	c.trigger(bits(PIR_CTRL_DRAM_INIT, PIR_VREF))
	val, err := c.wait(ctx, PHASE_VREF, bits(PGSR0_VDONE, PGSR0_IDONE))
	if err != nil {
		return err
	}
	if val&PGSR0_VERR.Mask() != 0 {
		return &TrainingError{Phase: PHASE_VREF, Flags: val & PGSR0_VERR.Mask(), PGSR0: val}
	}
	return nil
}

// Retrain repeats write and read eye training with the trained VREF
func (c *Calibrator) Retrain(ctx context.Context) error {
	c.trigger(bits(PIR_WR_EYE, PIR_RD_EYE))
	_, err := c.wait(ctx, PHASE_RETRAIN, bits(PGSR0_WEDONE, PGSR0_REDONE, PGSR0_IDONE))
	return err
}
