// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package spd

import (
	enchex "encoding/hex"
	"fmt"
	"os"
	"strings"
)

// ParseHex decodes a whitespace separated hex dump
func ParseHex(text string) ([]byte, error) {
	b, err := enchex.DecodeString(strings.Join(strings.Fields(text), ""))
	if err != nil {
		return nil, fmt.Errorf("spd: parse hex dump: %w", err)
	}
	return b, nil
}

// ReadFile loads an SPD image saved as raw bytes, or as a hex dump when the
// name ends in .hex
func ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".hex") {
		return ParseHex(string(b))
	}
	return b, nil
}
