// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package spd

import (
	"context"
	"errors"
	"testing"

	"github.com/platinasystems/i2c"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus models the mux and an EE1004 SPD behind it
type fakeBus struct {
	image     []byte
	mux       uint8
	page      int
	failEvery int // fail every Nth transaction when set
	calls     int
	badMux    bool
}

func (f *fakeBus) Do(addr int, rw i2c.RW, cmd uint8, size i2c.SMBusSize, data *i2c.SMBusData) error {
	f.calls++
	if f.failEvery > 0 && f.calls%f.failEvery == 0 {
		return errors.New("nack")
	}
	switch {
	case addr == DEFAULT_MUX_ADDR && rw == i2c.Write:
		f.mux = cmd
	case addr == DEFAULT_MUX_ADDR && rw == i2c.Read:
		data[0] = f.mux
		if f.badMux {
			data[0] = ^f.mux
		}
	case addr == EE1004_SPA0:
		f.page = 0
	case addr == EE1004_SPA1:
		f.page = 1
	case addr == DEFAULT_SPD_ADDR && rw == i2c.Read:
		if f.mux != DEFAULT_MUX_SELECT {
			return errors.New("no device")
		}
		data[0] = f.image[f.page*EE1004_PAGE+int(cmd)]
	default:
		return errors.New("unexpected transaction")
	}
	return nil
}

func TestEEPROMRead(t *testing.T) {
	image := loadFixture(t)
	bus := &fakeBus{image: image}
	spd, err := NewEEPROM(bus).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image, spd)

	_, err = Decode(spd)
	assert.NoError(t, err)
}

func TestEEPROMRetry(t *testing.T) {
	image := loadFixture(t)
	bus := &fakeBus{image: image, failEvery: 7}
	spd, err := NewEEPROM(bus).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image, spd)
}

func TestEEPROMRetryExhausted(t *testing.T) {
	bus := &fakeBus{image: loadFixture(t), failEvery: 1}
	e := NewEEPROM(bus)
	e.Retries = 2
	_, err := e.Read(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 3, bus.calls)
}

func TestEEPROMMuxMismatch(t *testing.T) {
	bus := &fakeBus{image: loadFixture(t), badMux: true}
	_, err := NewEEPROM(bus).Read(context.Background())
	assert.ErrorContains(t, err, "mux")
}

func TestEEPROMCancel(t *testing.T) {
	bus := &fakeBus{image: loadFixture(t), failEvery: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEEPROM(bus).Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLinuxSMBusMissingBus(t *testing.T) {
	var bus SMBus = LinuxSMBus{Index: 4095}
	var data i2c.SMBusData
	err := bus.Do(DEFAULT_SPD_ADDR, i2c.Read, 0, i2c.ByteData, &data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/i2c-4095")
}
