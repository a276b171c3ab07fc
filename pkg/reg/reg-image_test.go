// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package reg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageApply(t *testing.T) {
	img := Image{
		{Name: "A", Offset: 0x10, Value: 1},
		{Name: "B", Offset: 0x04, Value: 2},
		{Name: "A2", Offset: 0x10, Value: 3},
	}
	s := NewSim("img")
	img.Apply(s)
	assert.Equal(t, []Access{{0x10, 1}, {0x04, 2}, {0x10, 3}}, s.Journal())
	assert.Equal(t, uint32(3), s.Peek(0x10))

	w, ok := img.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, uint32(0x04), w.Offset)
	_, ok = img.Lookup("C")
	assert.False(t, ok)
}

func TestImageJSON(t *testing.T) {
	b, err := json.Marshal(Image{{Name: "MSTR", Offset: 0, Value: 0x81040010}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Name":"MSTR","Offset":"0x000","Value":"0x81040010"}]`, string(b))
	assert.Equal(t, "MSTR             0x0000 0x81040010\n", Image{{Name: "MSTR", Value: 0x81040010}}.String())
}
