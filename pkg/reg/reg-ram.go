// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements a plain word array block used as simulated DRAM.
package reg

import (
	"sync/atomic"
)

// RAM is a dense block of 32-bit words. Unlike Sim it keeps no journal, so it
// can stand in for large memory windows.
type RAM []uint32

func NewRAM(size int) RAM {
	return make(RAM, size/4)
}

func (m RAM) Read32(offset uint32) uint32 {
	return atomic.LoadUint32(&m[offset>>2])
}

func (m RAM) Write32(offset uint32, val uint32) {
	atomic.StoreUint32(&m[offset>>2], val)
}

func (m RAM) Size() int {
	return len(m) * 4
}
