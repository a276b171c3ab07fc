// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements a register block backed by a /dev/mem mapping of a physical window.
package reg

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"k8s.io/klog/v2"
)

const PAGE_SIZE = 0x1000

var ErrBusy = errors.New("reg: physical window already owned by another handle")

// RangeError reports an access outside a mapped window or off word alignment
type RangeError struct {
	Name   string
	Offset uint32
	Size   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("reg: %s offset 0x%X outside window of 0x%X bytes", e.Name, e.Offset, e.Size)
}

type span struct {
	name      string
	base, end int64
}

// Physical windows currently mapped
var (
	ownedMu sync.Mutex
	owned   []span
)

// claim records [base, base+size) as owned, failing when it overlaps a mapped window.
// The caller holds ownedMu.
func claim(name string, base int64, size int) error {
	s := span{name: name, base: base, end: base + int64(size)}
	for _, o := range owned {
		if s.base < o.end && o.base < s.end {
			return fmt.Errorf("%s at 0x%X overlaps %s at 0x%X: %w", name, base, o.name, o.base, ErrBusy)
		}
	}
	owned = append(owned, s)
	return nil
}

func release(base int64) {
	ownedMu.Lock()
	defer ownedMu.Unlock()
	for i, o := range owned {
		if o.base == base {
			owned = append(owned[:i], owned[i+1:]...)
			return
		}
	}
}

// DevMem owns one mmap'ed physical register window.
// Only one DevMem may exist per window at a time.
type DevMem struct {
	noCopy noCopy

	name         string
	err          atomic.Pointer[RangeError] // first out of range access
	base         int64                      // physical address of offset 0
	size         int                        // usable bytes from base
	mmap         []byte                     // page aligned mapping around the window
	skew         int                        // base - aligned base
	dev_mem_file *os.File                   // this holds the file pointer to the /dev/mem system file
}

// OpenDevMem maps size bytes of physical memory at base for read/write access.
// Windows must be word aligned and may not overlap one already open.
func OpenDevMem(name string, base int64, size int) (*DevMem, error) {
	if base&3 != 0 || size <= 0 || size&3 != 0 {
		return nil, fmt.Errorf("reg: %s window 0x%X+0x%X is not word aligned", name, base, size)
	}
	alignedBase := base &^ (PAGE_SIZE - 1)
	skew := int(base - alignedBase)
	mapSize := (skew + size + PAGE_SIZE - 1) &^ (PAGE_SIZE - 1)

	ownedMu.Lock()
	defer ownedMu.Unlock()
	if err := claim(name, base, size); err != nil {
		return nil, err
	}

	file, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		owned = owned[:len(owned)-1]
		return nil, fmt.Errorf("open /dev/mem: %w", err)
	}
	klog.V(DBG_LVL_INFO).Infof("reg.OpenDevMem %s: phyaddr 0x%X size 0x%X", name, alignedBase, mapSize)
	mmap, err := syscall.Mmap(int(file.Fd()), alignedBase, mapSize, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		file.Close()
		owned = owned[:len(owned)-1]
		return nil, fmt.Errorf("mmap %s at 0x%X: %w", name, alignedBase, err)
	}

	klog.V(DBG_LVL_BASIC).InfoS("reg.OpenDevMem mapped", "name", name, "base", hex(base), "size", hex(size))
	return &DevMem{
		name:         name,
		base:         base,
		size:         size,
		mmap:         mmap,
		skew:         skew,
		dev_mem_file: file,
	}, nil
}

// word returns nil for an access outside the window and remembers the first one in Err
func (m *DevMem) word(offset uint32) *uint32 {
	if offset&3 != 0 || int(offset)+4 > m.size {
		err := &RangeError{Name: m.name, Offset: offset, Size: m.size}
		klog.ErrorS(err, "reg.DevMem access dropped")
		m.err.CompareAndSwap(nil, err)
		return nil
	}
	return (*uint32)(unsafe.Pointer(&m.mmap[m.skew+int(offset)]))
}

// Read32 performs a single 32-bit load; the window is device memory.
// Out of range reads return 0.
func (m *DevMem) Read32(offset uint32) uint32 {
	w := m.word(offset)
	if w == nil {
		return 0
	}
	return atomic.LoadUint32(w)
}

func (m *DevMem) Write32(offset uint32, val uint32) {
	klog.V(DBG_LVL_DEEP_DETAIL).InfoS("reg.DevMem.Write32", "name", m.name, "offset", hex(offset), "val", hex(val))
	if w := m.word(offset); w != nil {
		atomic.StoreUint32(w, val)
	}
}

// Err reports the first access that fell outside the window
func (m *DevMem) Err() error {
	if e := m.err.Load(); e != nil {
		return e
	}
	return nil
}

func (m *DevMem) Size() int {
	return m.size
}

// Close unmaps the window and releases ownership.
func (m *DevMem) Close() error {
	if m.mmap == nil {
		return nil
	}
	err := syscall.Munmap(m.mmap)
	m.mmap = nil
	if cerr := m.dev_mem_file.Close(); err == nil {
		err = cerr
	}

	release(m.base)
	if err == nil {
		err = m.Err()
	}
	klog.V(DBG_LVL_DETAIL).InfoS("reg.DevMem closed", "name", m.name)
	return err
}
