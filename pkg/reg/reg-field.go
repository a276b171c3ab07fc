// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements bit-field packing helpers for 32-bit hardware registers.
package reg

import "fmt"

// Field is a bit range [Offset, Offset+Width) inside a 32-bit register word
type Field struct {
	Offset int
	Width  int
}

// Bit returns a single-bit field at position n
func Bit(n int) Field {
	return Field{Offset: n, Width: 1}
}

func (f Field) Mask() uint32 {
	return (1<<f.Width - 1) << f.Offset
}

func (f Field) Read(reg uint32) uint32 {
	return (reg >> f.Offset) & (1<<f.Width - 1)
}

func (f Field) Write(reg *uint32, val uint32) {
	*reg = (*reg &^ f.Mask()) | f.Value(val)
}

// Value returns val shifted into position and truncated to the field width
func (f Field) Value(val uint32) uint32 {
	return (val << f.Offset) & f.Mask()
}

// Fits reports whether val can be stored without truncation
func (f Field) Fits(val uint32) bool {
	return val <= 1<<f.Width-1
}

// Set is Value for boolean flags
func (f Field) Set(on bool) uint32 {
	if on {
		return f.Value(1)
	}
	return 0
}

func (f Field) String() string {
	if f.Width == 1 {
		return fmt.Sprintf("[%d]", f.Offset)
	}
	return fmt.Sprintf("[%d:%d]", f.Offset+f.Width-1, f.Offset)
}
