// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements named register write lists shared by the controller and PHY configuration.
package reg

import (
	"encoding/json"
	"fmt"
	"strings"

	"k8s.io/klog/v2"
)

// Write is one named register write
type Write struct {
	Name   string
	Offset uint32
	Value  uint32
}

func (w Write) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name   string `json:"Name"`
		Offset string `json:"Offset"`
		Value  string `json:"Value"`
	}{w.Name, fmt.Sprintf("0x%03X", w.Offset), fmt.Sprintf("0x%08X", w.Value)})
}

// Image is an ordered list of register writes
type Image []Write

// Lookup returns the first write to the named register
func (img Image) Lookup(name string) (Write, bool) {
	for _, w := range img {
		if w.Name == name {
			return w, true
		}
	}
	return Write{}, false
}

func (img Image) String() string {
	var sb strings.Builder
	for _, w := range img {
		fmt.Fprintf(&sb, "%-16s 0x%04X 0x%08X\n", w.Name, w.Offset, w.Value)
	}
	return sb.String()
}

// Apply writes every register of img to b in order
func (img Image) Apply(b Block) {
	for _, w := range img {
		klog.V(DBG_LVL_DETAIL).InfoS("reg.Image.Apply", "reg", w.Name, "offset", hex(w.Offset), "value", hex(w.Value))
		b.Write32(w.Offset, w.Value)
	}
}
