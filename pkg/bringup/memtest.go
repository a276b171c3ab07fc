// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the post bring-up pattern test over a DRAM window
package bringup

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/Seagate/ddr-lib/pkg/reg"
	"k8s.io/klog/v2"
)

const (
	MEMTEST_CHUNK       = 1 << 20
	MEMTEST_MAX_REPORTS = 16
)

var MEMTEST_PATTERNS = []uint32{0xFFFFFFFF, 0x55555555, 0xAAAAAAAA, 0x00000000}

type Mismatch struct {
	Addr     uint64
	Expected uint32
	Actual   uint32
}

// MemTestError carries the total mismatch count and the lowest addressed mismatches
type MemTestError struct {
	Count      int
	Mismatches []Mismatch
}

func (e *MemTestError) Error() string {
	if len(e.Mismatches) == 0 {
		return fmt.Sprintf("bringup: memtest found %d mismatches", e.Count)
	}
	m := e.Mismatches[0]
	return fmt.Sprintf("bringup: memtest found %d mismatches, first at 0x%08X: expected 0x%08X, read 0x%08X",
		e.Count, m.Addr, m.Expected, m.Actual)
}

type MemTestReport struct {
	Bytes    int
	Patterns int
	Elapsed  time.Duration
	ReadGiBs float64 // verify bandwidth of the last pattern
}

// MemTest writes then verifies each pattern over Size bytes of Mem. Base is only
// used to report physical addresses.
type MemTest struct {
	Mem        reg.Block
	Base       uint64
	Size       int
	ChunkSize  int
	Workers    int
	MaxReports int
}

func NewMemTest(mem reg.Block, base uint64, size int) *MemTest {
	return &MemTest{
		Mem:        mem,
		Base:       base,
		Size:       size,
		ChunkSize:  MEMTEST_CHUNK,
		Workers:    runtime.NumCPU(),
		MaxReports: MEMTEST_MAX_REPORTS,
	}
}

type regionResult struct {
	count      int
	mismatches []Mismatch
	err        error
}

func (t *MemTest) Run(ctx context.Context) (*MemTestReport, error) {
	if t.Size <= 0 || t.Size%4 != 0 {
		return nil, fmt.Errorf("bringup: memtest size %d is not a positive multiple of 4", t.Size)
	}
	if t.ChunkSize <= 0 || t.ChunkSize%4 != 0 {
		t.ChunkSize = MEMTEST_CHUNK
	}
	if t.MaxReports <= 0 {
		t.MaxReports = MEMTEST_MAX_REPORTS
	}
	workers := t.Workers
	if workers <= 0 {
		workers = 1
	}
	if chunks := (t.Size + t.ChunkSize - 1) / t.ChunkSize; workers > chunks {
		workers = chunks
	}

	report := &MemTestReport{Bytes: t.Size, Patterns: len(MEMTEST_PATTERNS)}
	start := time.Now()
	for i, p := range MEMTEST_PATTERNS {
		klog.V(DBG_LVL_BASIC).InfoS("memtest phase", "phase", i, "pattern", fmt.Sprintf("0x%08X", p), "MiB", t.Size>>20)

		if _, err := t.fanOut(ctx, workers, p, t.writeRegion); err != nil {
			return nil, err
		}

		verifyStart := time.Now()
		res, err := t.fanOut(ctx, workers, p, t.verifyRegion)
		if err != nil {
			return nil, err
		}
		if res.count > 0 {
			return nil, &MemTestError{Count: res.count, Mismatches: res.mismatches}
		}
		if d := time.Since(verifyStart); d > 0 {
			report.ReadGiBs = float64(t.Size) / float64(1<<30) / d.Seconds()
		}
	}
	report.Elapsed = time.Since(start)
	klog.V(DBG_LVL_BASIC).InfoS("memtest passed", "MiB", t.Size>>20, "elapsed", report.Elapsed)
	return report, nil
}

// fanOut splits the window into one region per worker, on chunk boundaries
func (t *MemTest) fanOut(ctx context.Context, workers int, pattern uint32,
	fn func(ctx context.Context, s, e int, pattern uint32, ch chan regionResult)) (regionResult, error) {
	chunks := (t.Size + t.ChunkSize - 1) / t.ChunkSize
	ch := make(chan regionResult, workers)
	for i := 0; i < workers; i++ {
		s := i * chunks / workers * t.ChunkSize
		e := (i + 1) * chunks / workers * t.ChunkSize
		if e > t.Size {
			e = t.Size
		}
		go fn(ctx, s, e, pattern, ch)
	}

	var total regionResult
	for i := 0; i < workers; i++ {
		r := <-ch
		if r.err != nil && total.err == nil {
			total.err = r.err
		}
		total.count += r.count
		total.mismatches = append(total.mismatches, r.mismatches...)
	}
	if total.err != nil {
		return total, total.err
	}

	sort.Slice(total.mismatches, func(i, j int) bool { return total.mismatches[i].Addr < total.mismatches[j].Addr })
	if len(total.mismatches) > t.MaxReports {
		total.mismatches = total.mismatches[:t.MaxReports]
	}
	return total, nil
}

func (t *MemTest) writeRegion(ctx context.Context, s, e int, pattern uint32, ch chan regionResult) {
	klog.V(DBG_LVL_DETAIL).Infof("memtest.writeRegion: startAddr 0x%X endAddr 0x%X", s, e)
	for c := s; c < e; c += t.ChunkSize {
		if err := ctx.Err(); err != nil {
			ch <- regionResult{err: err}
			return
		}
		end := c + t.ChunkSize
		if end > e {
			end = e
		}
		for off := c; off < end; off += 4 {
			t.Mem.Write32(uint32(off), pattern)
		}
		klog.V(DBG_LVL_DEEP_DETAIL).Infof("memtest.writeRegion: %d MiB", (end-1)>>20)
	}
	ch <- regionResult{}
}

func (t *MemTest) verifyRegion(ctx context.Context, s, e int, pattern uint32, ch chan regionResult) {
	klog.V(DBG_LVL_DETAIL).Infof("memtest.verifyRegion: startAddr 0x%X endAddr 0x%X", s, e)
	var r regionResult
	for c := s; c < e; c += t.ChunkSize {
		if err := ctx.Err(); err != nil {
			ch <- regionResult{err: err}
			return
		}
		end := c + t.ChunkSize
		if end > e {
			end = e
		}
		for off := c; off < end; off += 4 {
			got := t.Mem.Read32(uint32(off))
			if got == pattern {
				continue
			}
			r.count++
			if len(r.mismatches) < t.MaxReports {
				m := Mismatch{Addr: t.Base + uint64(off), Expected: pattern, Actual: got}
				r.mismatches = append(r.mismatches, m)
				klog.V(DBG_LVL_BASIC).Infof("Mismatch: Address %08X expect %08X get %08X", m.Addr, m.Expected, m.Actual)
			}
		}
	}
	ch <- r
}
