// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the table of reserved and unsupported SPD bit patterns.
package spd

// ReservedRule checks one bit range of one SPD byte. The extracted value
// (b >> Shift) & Mask must be listed in Allowed when Allowed is set, and must
// not be listed in Reject.
type ReservedRule struct {
	Byte    int
	Field   string
	Shift   uint
	Mask    uint8
	Allowed []uint8
	Reject  []uint8
}

func (r ReservedRule) Check(spd []byte) error {
	v := (spd[r.Byte] >> r.Shift) & r.Mask
	if r.Allowed != nil && !contains(r.Allowed, v) {
		return &ReservedError{Byte: r.Byte, Value: spd[r.Byte], Field: r.Field}
	}
	if contains(r.Reject, v) {
		return &ReservedError{Byte: r.Byte, Value: spd[r.Byte], Field: r.Field}
	}
	return nil
}

func contains(list []uint8, v uint8) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func span(lo, hi uint8) []uint8 {
	out := []uint8{}
	for v := int(lo); v <= int(hi); v++ {
		out = append(out, uint8(v))
	}
	return out
}

// Module types of byte 3 bits 3-0, per variant
var (
	UNBUFFERED_MODULE_TYPES   = []uint8{0x2, 0x3, 0x6, 0x9, 0xC, 0xD}
	REGISTERED_MODULE_TYPES   = []uint8{0x1, 0x5, 0x8}
	LOAD_REDUCED_MODULE_TYPES = []uint8{0x4}
)

// ReservedRules lists every reserved or unsupported pattern in the base section, in byte order
var ReservedRules = []ReservedRule{
	{Byte: 0, Field: "spd_bytes_total", Shift: 4, Mask: 0x7, Allowed: []uint8{0x1, 0x2}},
	{Byte: 0, Field: "spd_bytes_used", Shift: 0, Mask: 0xF, Allowed: []uint8{0x1, 0x2, 0x3, 0x4}},
	{Byte: 2, Field: "device_type", Shift: 0, Mask: 0xFF, Allowed: []uint8{0x0B, 0x0C, 0x0F, 0x10}},
	{Byte: 3, Field: "module_type", Shift: 0, Mask: 0xF, Allowed: append(append(append([]uint8{},
		UNBUFFERED_MODULE_TYPES...), REGISTERED_MODULE_TYPES...), LOAD_REDUCED_MODULE_TYPES...)},
	{Byte: 4, Field: "bg_addr_bits", Shift: 6, Mask: 0x3, Reject: []uint8{0x3}},
	{Byte: 4, Field: "bank_addr_bits", Shift: 4, Mask: 0x3, Reject: []uint8{0x2, 0x3}},
	{Byte: 4, Field: "capacity", Shift: 0, Mask: 0xF, Reject: span(0x8, 0xF)},
	{Byte: 5, Field: "row_addr_bits", Shift: 3, Mask: 0x1F, Reject: []uint8{0x7}},
	{Byte: 5, Field: "col_addr_bits", Shift: 0, Mask: 0x7, Reject: span(0x4, 0x7)},
	{Byte: 6, Field: "signal_loading", Shift: 0, Mask: 0x3, Reject: []uint8{0x3}},
	{Byte: 7, Field: "t_maw", Shift: 4, Mask: 0xF, Reject: []uint8{0x3}},
	{Byte: 7, Field: "mac", Shift: 0, Mask: 0x7, Reject: []uint8{0x7}},
	{Byte: 7, Field: "mac", Shift: 0, Mask: 0xF, Reject: span(0x9, 0xF)},
	{Byte: 12, Field: "package_ranks", Shift: 5, Mask: 0x1, Reject: []uint8{0x1}},
	{Byte: 12, Field: "device_width", Shift: 2, Mask: 0x1, Reject: []uint8{0x1}},
	{Byte: 13, Field: "bus_width_extension", Shift: 4, Mask: 0x1, Reject: []uint8{0x1}},
	{Byte: 13, Field: "bus_width", Shift: 2, Mask: 0x1, Reject: []uint8{0x1}},
	{Byte: 17, Field: "medium_timebase", Shift: 2, Mask: 0x3, Allowed: []uint8{0x0}},
	{Byte: 17, Field: "fine_timebase", Shift: 0, Mask: 0x3, Allowed: []uint8{0x0}},
}

// Validate applies ReservedRules to an SPD image in one pass and returns the first violation
func Validate(spd []byte) error {
	if len(spd) < SPD_SECTION_SIZE {
		return &LengthError{Length: len(spd)}
	}
	for _, r := range ReservedRules {
		if err := r.Check(spd); err != nil {
			return err
		}
	}
	return nil
}
