// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file defines the register block abstraction shared by the DDR controller and PHY drivers.
package reg

import (
	"k8s.io/klog/v2"
)

const (
	DBG_LVL_DEFAULT     = iota //0
	DBG_LVL_BASIC              //1
	DBG_LVL_INFO               //2
	DBG_LVL_DETAIL             //3
	DBG_LVL_DEEP_DETAIL        //4
)

// Block is a window of 32-bit memory mapped registers addressed by byte offset.
type Block interface {
	Read32(offset uint32) uint32
	Write32(offset uint32, val uint32)
}

func Modify(b Block, offset uint32, fn func(cur uint32) uint32) {
	cur := b.Read32(offset)
	next := fn(cur)
	klog.V(DBG_LVL_DEEP_DETAIL).InfoS("reg.Modify", "offset", hex(offset), "cur", hex(cur), "next", hex(next))
	b.Write32(offset, next)
}

func SetBits(b Block, offset uint32, bits uint32) {
	Modify(b, offset, func(cur uint32) uint32 { return cur | bits })
}

func ClearBits(b Block, offset uint32, bits uint32) {
	Modify(b, offset, func(cur uint32) uint32 { return cur &^ bits })
}

func ReadField(b Block, offset uint32, f Field) uint32 {
	return f.Read(b.Read32(offset))
}

// WriteField updates one field and preserves the rest of the register
func WriteField(b Block, offset uint32, f Field, val uint32) {
	Modify(b, offset, func(cur uint32) uint32 {
		f.Write(&cur, val)
		return cur
	})
}
