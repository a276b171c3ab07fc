// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Seagate/ddr-lib/pkg/bringup"
	"github.com/Seagate/ddr-lib/pkg/ddrc"
	"github.com/Seagate/ddr-lib/pkg/reg"
	"github.com/Seagate/ddr-lib/pkg/spd"

	"k8s.io/klog/v2"
)

var Version = "1.0.0"

// This variable is filled in during the linker step - -ldflags "-X main.buildTime=`date -u '+%Y-%m-%dT%H:%M:%S'`"
var buildTime = ""

var helptxt = `
ddr-util is a command line tool to decode DDR4 SPD data and bring up the DDR controller and PHY.

Usage:
./ddr-util [--version] [--help] [--spd-file=PATH | --i2c-bus=N] [--decode] [--regs] [--bringup | --simulate]
           [--memtest-mb=N] [--ecc] [--parity] [--crc] [--rd-dbi] [--wr-dbi] [--power-down] [--self-refresh]
           [--fgr=1|2|4] [--timeout-iter=N] [--timeout=DURATION] [--verbosity=0]

Which:
	version            : Print the version of this application and exit
	help               : Print the help text and exit
	spd-file=PATH      : Read the SPD image from a file, hex text when the name ends in .hex
	i2c-bus=N          : Read the SPD image from the EEPROM on /dev/i2c-N
	decode             : Print the decoded SPD, derived quantities and module identity
	regs               : Print the DDR controller register image
	bringup            : Run the bring-up sequence on the hardware through /dev/mem
	simulate           : Run the bring-up sequence on simulated registers
	memtest-mb=N       : Pattern test N MiB of DRAM after bring-up
	ecc, parity, crc   : Enable the controller feature
	rd-dbi, wr-dbi     : Enable read or write data bus inversion
	power-down         : Enable power-down entry when idle
	self-refresh       : Enable self refresh entry when idle
	fgr=1|2|4          : Fine granularity refresh mode
	timeout-iter=N     : Status register reads before a phase times out
	timeout=DURATION   : Wall clock limit for a phase, 0 for none
	verbosity          : Set the log level verbosity, where 0 is no longing and 4 is very verbose
`

const (
	DefaultVerbosity  = "0" // Default log level
	DefaultSimLatency = 8   // status reads until a simulated phase completes
)

type Settings struct {
	Version     bool          // Print the version of this application and exit if true
	Verbosity   string        // The log level verbosity, where 0 is no longing and 4 is very verbose
	Help        bool          // Print the help text and exit
	SPDFile     string        // SPD image file
	I2CBus      int           // SPD EEPROM bus, -1 when unused
	Decode      bool          // Print the decoded SPD
	Regs        bool          // Print the DDRC register image
	Bringup     bool          // Bring up the hardware
	Simulate    bool          // Bring up simulated hardware
	MemTestMB   int           // Memory test size
	Policy      spd.Policy    // Controller options
	TimeoutIter int           // Poll iteration bound
	Timeout     time.Duration // Poll wall clock bound
}

// InitFlags: initialize the configuration data using command line args, ENV, or a file
func (s *Settings) InitContext(args []string, ctx context.Context) (error, context.Context) {

	newContext := ctx

	flags := flag.NewFlagSet(args[0], flag.ExitOnError)

	var (
		version     = flags.Bool("version", false, "Display version and exit")
		verbosity   = flags.String("verbosity", DefaultVerbosity, "Log level verbosity")
		help        = flags.Bool("help", false, "Print the help text")
		spdFile     = flags.String("spd-file", "", "SPD image file, hex text when the name ends in .hex")
		i2cBus      = flags.Int("i2c-bus", -1, "Read the SPD EEPROM on /dev/i2c-N")
		decode      = flags.Bool("decode", false, "Print the decoded SPD as JSON")
		regs        = flags.Bool("regs", false, "Print the DDRC register image as JSON")
		bring       = flags.Bool("bringup", false, "Bring up DDR through /dev/mem")
		simulate    = flags.Bool("simulate", false, "Bring up simulated DDR registers")
		memtestMB   = flags.Int("memtest-mb", 0, "MiB of DRAM to pattern test after bring-up")
		ecc         = flags.Bool("ecc", false, "Enable ECC")
		parity      = flags.Bool("parity", false, "Enable C/A parity")
		crc         = flags.Bool("crc", false, "Enable write CRC")
		rdDBI       = flags.Bool("rd-dbi", false, "Enable read DBI")
		wrDBI       = flags.Bool("wr-dbi", false, "Enable write DBI")
		powerDown   = flags.Bool("power-down", false, "Enable idle power-down")
		selfRefresh = flags.Bool("self-refresh", false, "Enable idle self refresh")
		fgr         = flags.Int("fgr", 1, "Fine granularity refresh mode 1, 2 or 4")
		timeoutIter = flags.Int("timeout-iter", reg.DEFAULT_POLL_ITERATIONS, "Status reads before a phase times out")
		timeout     = flags.Duration("timeout", 0, "Wall clock limit per phase")
	)

	// Parse 1) command line arguments, 2) env variables, 3) config file settings, and 4) defaults (in this order)
	err := flags.Parse(args[1:])
	if err != nil {
		return err, newContext
	}

	// Update the configuration object with the parsed values
	s.Version = *version
	s.Verbosity = *verbosity
	s.Help = *help
	s.SPDFile = *spdFile
	s.I2CBus = *i2cBus
	s.Decode = *decode
	s.Regs = *regs
	s.Bringup = *bring
	s.Simulate = *simulate
	s.MemTestMB = *memtestMB
	s.TimeoutIter = *timeoutIter
	s.Timeout = *timeout

	s.Policy = spd.DefaultPolicy()
	s.Policy.ECC = *ecc
	s.Policy.Parity = *parity
	s.Policy.CRC = *crc
	s.Policy.RdDBI = *rdDBI
	s.Policy.WrDBI = *wrDBI
	s.Policy.PowerDown = *powerDown
	s.Policy.SelfRefresh = *selfRefresh
	s.Policy.FineGranularityRefresh, err = spd.ParseFGRMode(*fgr)
	if err != nil {
		return err, newContext
	}

	if s.Bringup && s.Simulate {
		return fmt.Errorf("--bringup and --simulate are exclusive"), newContext
	}

	if len(args) == 1 {
		s.Help = true
	}

	return nil, newContext
}

func PrintTableToStdout(table any, prefix, indent string) {
	s, _ := json.MarshalIndent(table, prefix, indent)
	fmt.Print(string(s), "\n")
}

// Derived quantities shown by --decode
type derived struct {
	BankGroups            uint8   `json:"BankGroups"`
	BanksPerGroup         uint8   `json:"BanksPerGroup"`
	LogicalRanks          uint8   `json:"LogicalRanks"`
	RankCapacityMegabytes uint32  `json:"RankCapacityMegabytes"`
	ModuleCapacityMB      uint32  `json:"ModuleCapacityMegabytes"`
	MaxClkMHz             uint32  `json:"MaxClkMHz"`
	MinClkMHz             uint32  `json:"MinClkMHz"`
	SpeedBinMHz           uint32  `json:"SpeedBinMHz"`
	CtlClockPeriodNs      float32 `json:"CtlClockPeriodNs"`
	CASLatency            uint32  `json:"CASLatency"`
	CASWriteLatency       uint32  `json:"CASWriteLatency"`
	ReadLatencyNck        uint32  `json:"ReadLatencyNck"`
	WriteLatencyNck       uint32  `json:"WriteLatencyNck"`
	TREFIPs               uint32  `json:"TREFIPs"`
	TWRMinNs              uint32  `json:"TWRMinNs"`
	MR0                   string  `json:"MR0"`
}

func deriveSummary(cfg *spd.GeneralConfig) derived {
	d := derived{
		BankGroups:            cfg.BankGroups(),
		BanksPerGroup:         cfg.BanksPerGroup(),
		LogicalRanks:          cfg.LogicalRanks(),
		RankCapacityMegabytes: cfg.RankCapacityMegabytes(),
		ModuleCapacityMB:      cfg.ModuleCapacityMegabytes(),
		MaxClkMHz:             cfg.MaxClkMHz(),
		MinClkMHz:             cfg.MinClkMHz(),
		SpeedBinMHz:           cfg.SpeedBinMHz(),
		CtlClockPeriodNs:      cfg.CtlClockPeriodNs(),
		CASLatency:            cfg.CASLatency(),
		CASWriteLatency:       cfg.CASWriteLatency(),
		ReadLatencyNck:        cfg.ReadLatencyNck(),
		WriteLatencyNck:       cfg.WriteLatencyNck(),
		TREFIPs:               cfg.TREFIPs(),
		TWRMinNs:              cfg.TWRMinNs(),
	}
	if mr0, err := cfg.MR0(); err == nil {
		d.MR0 = fmt.Sprintf("0x%04X", mr0)
	} else {
		d.MR0 = err.Error()
	}
	return d
}

func readSPD(ctx context.Context, s *Settings) ([]byte, error) {
	if s.SPDFile != "" {
		return spd.ReadFile(s.SPDFile)
	}
	if s.I2CBus >= 0 {
		return spd.NewEEPROM(spd.LinuxSMBus{Index: s.I2CBus}).Read(ctx)
	}
	return nil, fmt.Errorf("no SPD source, use --spd-file or --i2c-bus")
}

func main() {

	// Extract settings and initialize context using command line args, env, config file, or defaults
	settings := Settings{}
	ctx := context.Background()
	var err error
	err, ctx = settings.InitContext(os.Args, ctx)

	if err != nil {
		fmt.Printf("ERROR: parsing parameters, err=%v\n", err)
		os.Exit(1)
	}

	// Set verbosity level according to the 'verbosity' flag
	var l klog.Level
	l.Set(settings.Verbosity)

	// ddr-util banner
	args := strings.Join(os.Args[1:], " ")
	klog.V(1).InfoS("ddr-util", "args", args)
	klog.V(2).InfoS("ddr-util", "settings", settings)

	if settings.Version {
		fmt.Println("[] ddr-util", "version", Version, "build", buildTime)
		os.Exit(0)
	}

	if settings.Help {
		fmt.Print(helptxt)
		os.Exit(0)
	}

	raw, err := readSPD(ctx, &settings)
	if err != nil {
		klog.Fatalf("ddr-util: read SPD: %v", err)
	}

	if settings.Decode || settings.Regs {
		cfg, err := spd.DecodeWithPolicy(raw, settings.Policy)
		if err != nil {
			klog.Fatalf("ddr-util: %v", err)
		}

		if settings.Decode {
			id, err := spd.DecodeIdentity(raw)
			if err != nil {
				klog.Fatalf("ddr-util: %v", err)
			}
			fmt.Printf("\nSPD General Config:\n")
			PrintTableToStdout(cfg, "   ", "   ")
			fmt.Printf("\nDerived:\n")
			PrintTableToStdout(deriveSummary(cfg), "   ", "   ")
			fmt.Printf("\nModule Identity:\n")
			PrintTableToStdout(id, "   ", "   ")
		}

		if settings.Regs {
			img, err := ddrc.Derive(cfg)
			if err != nil {
				klog.Fatalf("ddr-util: %v", err)
			}
			fmt.Printf("\nDDRC Register Image:\n")
			PrintTableToStdout(img, "   ", "   ")
		}
	}

	if settings.Bringup || settings.Simulate {
		opts := bringup.DefaultOptions()
		opts.Policy = settings.Policy
		opts.Timeout = reg.Timeout{Iterations: settings.TimeoutIter, Deadline: settings.Timeout}
		opts.MemTestMB = settings.MemTestMB

		var hw bringup.Hardware
		if settings.Simulate {
			hw = bringup.NewSimHardware(DefaultSimLatency, settings.MemTestMB<<20).Hardware
		} else {
			dev, err := bringup.OpenHardware(settings.MemTestMB << 20)
			if err != nil {
				klog.Fatalf("ddr-util: %v", err)
			}
			defer dev.Close()
			hw = dev.Hardware
		}

		report, err := bringup.Run(ctx, raw, hw, opts)
		if err != nil {
			// DRAM is unusable past this point
			klog.Fatalf("ddr-util: bring-up failed: %v", err)
		}
		fmt.Printf("\nBring-up Report:\n")
		PrintTableToStdout(struct {
			Mode     string
			Module   string
			Megabyte uint32
			Elapsed  string
			MemTest  *bringup.MemTestReport `json:",omitempty"`
		}{report.Mode, report.Identity.PartNumber, report.Config.ModuleCapacityMegabytes(), report.Elapsed.String(), report.MemTest}, "   ", "   ")
	}
}
