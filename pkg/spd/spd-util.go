// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package spd

import "fmt"

// Wrapper function to shorten int to hex convertion call
func hex(a any) string {
	return fmt.Sprintf("%X", a)
}

// bcd decodes a two digit binary coded decimal byte
func bcd(b uint8) int {
	return int(b>>4)*10 + int(b&0xf)
}

func UintToBool(i bitfield_1b) bool {
	return i == 1
}
