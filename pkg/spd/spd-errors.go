// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package spd

import "fmt"

// CRCError reports a section whose stored CRC does not match its contents
type CRCError struct {
	Section  string
	Expected uint16
	Actual   uint16
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("spd: %s section CRC mismatch. Expected: %#X, actual: %#X", e.Section, e.Expected, e.Actual)
}

// ReservedError reports a reserved or unsupported bit pattern in an SPD byte
type ReservedError struct {
	Byte  int
	Value uint8
	Field string
}

func (e *ReservedError) Error() string {
	return fmt.Sprintf("spd: invalid SPD data at byte %d (%s). Data: %#X", e.Byte, e.Field, e.Value)
}

// LengthError reports an SPD image of the wrong size
type LengthError struct {
	Length int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("spd: image is %d bytes, want %d", e.Length, SPD_SIZE)
}
