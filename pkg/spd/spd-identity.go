// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the module supplier data of bytes 320-383
package spd

import (
	"fmt"
	"strings"
)

// Identity describes who built the module and when
type Identity struct {
	Manufacturer      string `json:"Manufacturer"`
	ManufacturerID    uint16 `json:"ManufacturerID"`
	Location          uint8  `json:"Location"`
	ManufacturingDate string `json:"ManufacturingDate,omitempty"`
	Serial            string `json:"Serial"`
	PartNumber        string `json:"PartNumber"`
	Revision          uint8  `json:"Revision"`
	DRAMManufacturer  string `json:"DRAMManufacturer"`
}

// Common JEDEC JEP-106 manufacturer codes, keyed by id byte << 8 | bank byte
var jedecManufacturers = map[uint16]string{
	0x2C80: "Micron",
	0xCE80: "Samsung",
	0xAD80: "SK Hynix",
	0x4F01: "Transcend",
	0x9801: "Kingston",
	0x0B83: "A-DATA",
	0xCD04: "G.Skill",
	0x5105: "Qimonda",
	0x2503: "Kingmax",
	0x029E: "Corsair",
	0xC102: "Infineon",
}

// JEDECManufacturer names a JEP-106 code from its bank (continuation) byte and id byte.
// Unknown codes are reported by bank and index.
func JEDECManufacturer(bank, id uint8) string {
	if name, ok := jedecManufacturers[uint16(id)<<8|uint16(bank)]; ok {
		return name
	}
	return fmt.Sprintf("Bank %d, 0x%02X", bank&0x7F+1, id&0x7F)
}

// DecodeIdentity reads the manufacturing section. It accepts any image that covers
// bytes 320-383 and never fails on content.
func DecodeIdentity(spd []byte) (*Identity, error) {
	end := SPD_MANUFACTURING_START + SPD_MANUFACTURING_LENGTH
	if len(spd) < end {
		return nil, &LengthError{Length: len(spd)}
	}
	raw, err := parseStruct(spd[SPD_MANUFACTURING_START:end], SPD_DDR4_MANUFACTURING{})
	if err != nil {
		return nil, err
	}

	id := &Identity{
		Manufacturer:     JEDECManufacturer(raw.Mfr_ID_Lsb, raw.Mfr_ID_Msb),
		ManufacturerID:   uint16(raw.Mfr_ID_Msb)<<8 | uint16(raw.Mfr_ID_Lsb),
		Location:         raw.Location,
		Serial:           fmt.Sprintf("%08X", raw.Serial),
		PartNumber:       strings.TrimRight(string(raw.Part_Number[:]), " \x00"),
		Revision:         raw.Revision,
		DRAMManufacturer: JEDECManufacturer(raw.DRAM_Mfr_ID_Lsb, raw.DRAM_Mfr_ID_Msb),
	}
	if raw.Year != 0 && raw.Week != 0 {
		id.ManufacturingDate = fmt.Sprintf("%04d-W%02d", 2000+bcd(raw.Year), bcd(raw.Week))
	}
	return id, nil
}
