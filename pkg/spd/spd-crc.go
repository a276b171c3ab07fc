// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package spd

import "k8s.io/klog/v2"

// CRC16 computes the SPD CRC (JEDEC 21-C page 4.1.2.12-37): CCITT polynomial 0x1021,
// initial value 0, MSB first.
func CRC16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// checkSectionCRC verifies a 128 byte section against the CRC stored little endian in its last two bytes
func checkSectionCRC(name string, section []byte) error {
	expected := uint16(section[127])<<8 | uint16(section[126])
	actual := CRC16(section[:SPD_CRC_COVERED])
	if expected != actual {
		return &CRCError{Section: name, Expected: expected, Actual: actual}
	}
	klog.V(DBG_LVL_DETAIL).InfoS("spd CRC check passed", "section", name, "crc", hex(actual))
	return nil
}

// SealSection rewrites the CRC bytes of a 128 byte section to match its contents
func SealSection(section []byte) {
	crc := CRC16(section[:SPD_CRC_COVERED])
	section[126] = byte(crc)
	section[127] = byte(crc >> 8)
}
