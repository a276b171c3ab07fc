// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package bringup

import (
	"context"
	"sync"
	"testing"

	"github.com/Seagate/ddr-lib/pkg/reg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stuckRAM reads back with some bits stuck at one
type stuckRAM struct {
	reg.RAM
	stuck map[uint32]uint32
	all   uint32
}

func (m stuckRAM) Read32(offset uint32) uint32 {
	return m.RAM.Read32(offset) | m.stuck[offset] | m.all
}

// countingRAM counts writes per offset
type countingRAM struct {
	reg.RAM
	mu     sync.Mutex
	writes map[uint32]int
}

func (m *countingRAM) Write32(offset uint32, val uint32) {
	m.mu.Lock()
	m.writes[offset]++
	m.mu.Unlock()
	m.RAM.Write32(offset, val)
}

func TestMemTestPass(t *testing.T) {
	mem := reg.NewRAM(64 << 10)
	mt := NewMemTest(mem, DDR_LO_BASE, mem.Size())
	mt.ChunkSize = 4096
	mt.Workers = 4

	report, err := mt.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 64<<10, report.Bytes)
	assert.Equal(t, 4, report.Patterns)
	for i := range mem {
		require.Equal(t, uint32(0), mem[i])
	}
}

func TestMemTestCoversUnevenWindow(t *testing.T) {
	mem := &countingRAM{RAM: reg.NewRAM(10 << 10), writes: map[uint32]int{}}
	mt := NewMemTest(mem, 0, 10<<10)
	mt.ChunkSize = 4096
	mt.Workers = 8

	_, err := mt.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, mem.writes, (10<<10)/4)
	for off, n := range mem.writes {
		assert.Equal(t, len(MEMTEST_PATTERNS), n, "offset 0x%X", off)
	}
}

func TestMemTestStuckBit(t *testing.T) {
	mem := stuckRAM{RAM: reg.NewRAM(16 << 10), stuck: map[uint32]uint32{0x2000: 1, 0x100: 1}}
	mt := NewMemTest(mem, DDR_LO_BASE, 16<<10)
	mt.ChunkSize = 4096
	mt.Workers = 4

	_, err := mt.Run(context.Background())
	var me *MemTestError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 2, me.Count)
	assert.Equal(t, []Mismatch{
		{Addr: DDR_LO_BASE + 0x100, Expected: 0xAAAAAAAA, Actual: 0xAAAAAAAB},
		{Addr: DDR_LO_BASE + 0x2000, Expected: 0xAAAAAAAA, Actual: 0xAAAAAAAB},
	}, me.Mismatches)
	assert.Contains(t, err.Error(), "first at 0x00100100")
}

func TestMemTestMaxReports(t *testing.T) {
	mem := stuckRAM{RAM: reg.NewRAM(16 << 10), all: 1}
	mt := NewMemTest(mem, 0, 16<<10)
	mt.ChunkSize = 4096
	mt.Workers = 4
	mt.MaxReports = 3

	_, err := mt.Run(context.Background())
	var me *MemTestError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, (16<<10)/4, me.Count)
	require.Len(t, me.Mismatches, 3)
	for i, m := range me.Mismatches {
		assert.Equal(t, uint64(i*4), m.Addr)
	}
}

func TestMemTestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mt := NewMemTest(reg.NewRAM(8<<10), 0, 8<<10)
	_, err := mt.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemTestBadSize(t *testing.T) {
	for _, size := range []int{0, -4, 6} {
		_, err := NewMemTest(reg.NewRAM(64), 0, size).Run(context.Background())
		assert.Error(t, err, "size %d", size)
	}
}
