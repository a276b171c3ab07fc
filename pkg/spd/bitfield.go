// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the bitfield handling for binary structure.
// Code largely leveraged from go lang's "encoding/binary" library,
// which enables field parsing at Byte level. This file extends the
// capacity into bit level so SPD bytes can be described field by field.

package spd

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"k8s.io/klog/v2"
)

type bitfield_1b uint8
type bitfield_2b uint8
type bitfield_3b uint8
type bitfield_4b uint8
type bitfield_5b uint8
type bitfield_6b uint8
type bitfield_7b uint8

var bitfieldWidths = map[reflect.Type]int{
	reflect.TypeOf(bitfield_1b(0)): 1,
	reflect.TypeOf(bitfield_2b(0)): 2,
	reflect.TypeOf(bitfield_3b(0)): 3,
	reflect.TypeOf(bitfield_4b(0)): 4,
	reflect.TypeOf(bitfield_5b(0)): 5,
	reflect.TypeOf(bitfield_6b(0)): 6,
	reflect.TypeOf(bitfield_7b(0)): 7,
}

// dataSize returns the number of bytes the decoded value of v occupies in memory.
// For compound structures, it sums the sizes of the elements. If the type of v
// is not acceptable, dataSize returns -1.
func dataSize(v reflect.Value) int {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return 0
		}
		if s := dataSize(v.Index(0)); s >= 0 {
			return s * v.Len()
		}
		return -1

	case reflect.Struct:
		sum := 0
		for i, n := 0, v.NumField(); i < n; i++ {
			s := dataSize(v.Field(i))
			if s < 0 {
				return -1
			}
			sum += s
		}
		return sum

	case reflect.Bool,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Type().Size())
	}
	return -1
}

// bitSizeOfArray returns a list of the bit width of each leaf field
func bitSizeOfArray(v reflect.Value) []int {
	t := v.Type()
	if w, ok := bitfieldWidths[t]; ok {
		return []int{w}
	}

	switch t.Kind() {
	case reflect.Array, reflect.Slice:
		widths := []int{}
		if v.Len() != 0 {
			s := bitSizeOfArray(v.Index(0))
			for i, n := 0, v.Len(); i < n; i++ {
				widths = append(widths, s...)
			}
		}
		return widths
	case reflect.Struct:
		widths := []int{}
		for i, n := 0, t.NumField(); i < n; i++ {
			widths = append(widths, bitSizeOfArray(v.Field(i))...)
		}
		return widths
	case reflect.Bool,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return []int{int(t.Size()) * 8}
	}
	klog.V(DBG_LVL_INFO).InfoS("bitfield.bitSizeOfArray error", "kind", t.Kind().String())
	return []int{}
}

// BitFieldRead decodes the little endian bit stream in b into data, which must be
// a pointer to a fixed-size struct. Fields are consumed LSB first, so a struct of
// bitfield_Nb members describes one byte from bit 0 upward.
// Bytes in b past the end of the struct are ignored.
func BitFieldRead(b []byte, data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Pointer {
		return fmt.Errorf("bitfield.BitFieldRead: invalid type %s", reflect.TypeOf(data).String())
	}
	v = v.Elem()
	size := dataSize(v)
	if size < 0 {
		return fmt.Errorf("bitfield.BitFieldRead: invalid type %s", reflect.TypeOf(data).String())
	}
	widths := bitSizeOfArray(v)

	buf := make([]byte, size)
	if err := readByBit(b, buf, widths); err != nil {
		return err
	}
	fill(v, buf)
	return nil
}

// readByBit unpacks each bit field of src into its own byte aligned slot of buf
func readByBit(src []byte, buf []byte, m []int) error {
	total := 0
	for _, width := range m {
		total += width
	}
	if need := (total + 7) >> 3; len(src) < need {
		return fmt.Errorf("bitfield: need %d bytes, have %d", need, len(src))
	}

	bitOfs := 0
	i := 0
	for _, width := range m {
		endBit := bitOfs + width - 1
		startByte := bitOfs >> 3
		endByte := endBit >> 3
		bitWidthMask := uint64((1 << width) - 1)
		bitShift := bitOfs - startByte*8
		val := uint64(0)
		klog.V(DBG_LVL_DEEP_DETAIL).InfoS("bitfield.readByBit", "bitOfs", bitOfs, "bitWidth", width, "startByte", startByte, "endByte", endByte, "bitShift", bitShift)

		// extract related field into a uint64, and then apply the shift and mask
		structByteSize := endByte - startByte
		if structByteSize >= 8 {
			return fmt.Errorf("bitfield: unsupported width %d", width)
		}
		for iShift := 0; iShift <= structByteSize; iShift++ {
			val |= uint64(src[startByte+iShift]) << (8 * iShift)
		}
		val = (val >> uint64(bitShift)) & bitWidthMask

		dataByteSize := (width - 1) >> 3
		for iShift := 0; iShift <= dataByteSize; iShift++ {
			buf[i+iShift] = byte(val >> (8 * iShift))
		}
		i += 1 + dataByteSize
		bitOfs += width
	}
	return nil
}

// fill stores the byte aligned slots of buf into the leaves of v in declaration
// order and returns the remaining bytes. SPD fields are little endian.
func fill(v reflect.Value, buf []byte) []byte {
	switch v.Kind() {
	case reflect.Array, reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			buf = fill(v.Index(i), buf)
		}
		return buf

	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if f := v.Field(i); f.CanSet() {
				buf = fill(f, buf)
			} else {
				buf = buf[dataSize(f):]
			}
		}
		return buf
	}

	n := int(v.Type().Size())
	var raw uint64
	switch n {
	case 1:
		raw = uint64(buf[0])
	case 2:
		raw = uint64(binary.LittleEndian.Uint16(buf))
	case 4:
		raw = uint64(binary.LittleEndian.Uint32(buf))
	case 8:
		raw = binary.LittleEndian.Uint64(buf)
	}

	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(raw != 0)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// sign extend from the field size
		shift := 64 - 8*n
		v.SetInt(int64(raw<<shift) >> shift)
	default:
		v.SetUint(raw)
	}
	return buf[n:]
}

// parseStruct decodes b into a copy of s
func parseStruct[T any](b []byte, s T) (T, error) {
	newStruct := s
	err := BitFieldRead(b, &newStruct)
	return newStruct, err
}

// StructSize returns the encoded size of s in bytes
func StructSize(s any) int {
	bits := 0
	for _, w := range bitSizeOfArray(reflect.ValueOf(s)) {
		bits += w
	}
	return (bits + 7) >> 3
}
