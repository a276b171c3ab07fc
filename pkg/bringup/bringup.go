// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the DDR bring-up sequence: SPD decode, controller
// programming, PHY training and the optional memory test.
package bringup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Seagate/ddr-lib/pkg/ddrc"
	"github.com/Seagate/ddr-lib/pkg/phy"
	"github.com/Seagate/ddr-lib/pkg/reg"
	"github.com/Seagate/ddr-lib/pkg/spd"
	"k8s.io/klog/v2"
)

const (
	DBG_LVL_DEFAULT     = iota //0
	DBG_LVL_BASIC              //1
	DBG_LVL_INFO               //2
	DBG_LVL_DETAIL             //3
	DBG_LVL_DEEP_DETAIL        //4
)

// ZCU111 DDR4 SO-DIMM. The controller supports 2133 MT/s for a single rank module.
const (
	DDR_DATA_RATE_HZ = 2_133_333_333

	// low DDR window, skipping the first MiB
	DDR_LO_BASE = 0x0010_0000
	DDR_LO_SIZE = 2047 << 20
)

// ClockError reports a data rate the module cannot run at
type ClockError struct {
	DataRateMHz uint32
	MinMHz      uint32
	MaxMHz      uint32
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("bringup: data rate %d MT/s outside the module range %d-%d MT/s", e.DataRateMHz, e.MinMHz, e.MaxMHz)
}

var ErrNoMemWindow = errors.New("bringup: memory test requested without a memory window")

type Options struct {
	Policy     spd.Policy
	Timeout    reg.Timeout
	PLLRetries int
	MemTestMB  int
	DataRateHz uint32 // clock tree output, 0 skips the range check
}

func DefaultOptions() Options {
	return Options{
		Policy:     spd.DefaultPolicy(),
		Timeout:    reg.DefaultTimeout(),
		PLLRetries: phy.DEFAULT_PLL_RETRIES,
		DataRateHz: DDR_DATA_RATE_HZ,
	}
}

// Hardware holds one handle per register window. Mem is only needed for the memory test.
type Hardware struct {
	DDRC    reg.Block
	CRF     reg.Block
	PHY     reg.Block
	Mem     reg.Block
	MemBase uint64
	MemSize int
}

type Report struct {
	Config   *spd.GeneralConfig `json:"Config"`
	Identity *spd.Identity      `json:"Identity"`
	DDRC     reg.Image          `json:"DDRC"`
	Mode     string             `json:"Mode"`
	MemTest  *MemTestReport     `json:"MemTest,omitempty"`
	Elapsed  time.Duration      `json:"Elapsed"`
}

func checkDataRate(cfg *spd.GeneralConfig, hz uint32) error {
	if hz == 0 {
		return nil
	}
	mhz := hz / 1_000_000
	lo := 2 * cfg.MinClkMHz()
	hi := cfg.SpeedBinMHz()
	if mhz < lo || mhz > hi {
		return &ClockError{DataRateMHz: mhz, MinMHz: lo, MaxMHz: hi}
	}
	return nil
}

// Run brings up DRAM from a raw SPD image. Any error leaves DRAM unusable.
func Run(ctx context.Context, spdBytes []byte, hw Hardware, opts Options) (*Report, error) {
	start := time.Now()
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}

	cfg, err := spd.DecodeWithPolicy(spdBytes, opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("bringup: decode SPD: %w", err)
	}
	id, err := spd.DecodeIdentity(spdBytes)
	if err != nil {
		return nil, fmt.Errorf("bringup: decode SPD identity: %w", err)
	}
	klog.V(DBG_LVL_BASIC).InfoS("bringup: SPD decoded", "module", id.PartNumber, "MB", cfg.ModuleCapacityMegabytes(),
		"speedBin", cfg.SpeedBinMHz(), "ranks", cfg.LogicalRanks())

	if err := checkDataRate(cfg, opts.DataRateHz); err != nil {
		return nil, err
	}
	if opts.MemTestMB > 0 && (hw.Mem == nil || opts.MemTestMB<<20 > hw.MemSize) {
		return nil, ErrNoMemWindow
	}

	// The controller and PHY sequence is the primary. The memory test is a secondary
	// and may only touch DRAM once the primary releases the gate without error.
	gate := NewGate()
	var secondary chan memTestResult
	if opts.MemTestMB > 0 {
		secondary = make(chan memTestResult, 1)
		go func() {
			if err := gate.Wait(ctx); err != nil {
				secondary <- memTestResult{err: err}
				return
			}
			r, err := NewMemTest(hw.Mem, hw.MemBase, opts.MemTestMB<<20).Run(ctx)
			secondary <- memTestResult{report: r, err: err}
		}()
	}

	report := &Report{Config: cfg, Identity: id}
	_, err = gate.RunPrimary(ctx, func(ctx context.Context) error {
		return primary(ctx, cfg, hw, opts, report)
	})
	if secondary != nil {
		r := <-secondary
		if err == nil {
			report.MemTest, err = r.report, r.err
		}
	}
	if err != nil {
		return nil, err
	}
	report.Elapsed = time.Since(start)
	klog.V(DBG_LVL_BASIC).InfoS("bringup: DDR ready", "elapsed", report.Elapsed)
	return report, nil
}

type memTestResult struct {
	report *MemTestReport
	err    error
}

// primary programs the controller, trains the PHY and waits for Normal mode
func primary(ctx context.Context, cfg *spd.GeneralConfig, hw Hardware, opts Options, report *Report) error {
	ctl := ddrc.NewController(hw.DDRC, hw.CRF)
	img, err := ctl.Configure(cfg)
	if err != nil {
		return err
	}
	report.DDRC = img
	klog.V(DBG_LVL_INFO).Infof("bringup: DDRC image\n%s", img)

	cal := phy.NewCalibrator(hw.PHY)
	cal.Timeout = opts.Timeout
	if opts.PLLRetries > 0 {
		cal.PLLRetries = opts.PLLRetries
	}
	if err := cal.Run(ctx); err != nil {
		return err
	}

	if err := ctl.WaitNormal(ctx, opts.Timeout); err != nil {
		return err
	}
	report.Mode = ctl.OperatingMode().String()
	return nil
}
