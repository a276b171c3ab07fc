// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements reading the SPD EEPROM (EE1004) over SMBus
package spd

import (
	"context"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"github.com/platinasystems/i2c"
	"k8s.io/klog/v2"
)

// ZCU111 SO-DIMM wiring
const (
	DEFAULT_MUX_ADDR   = 0x74
	DEFAULT_MUX_SELECT = 0x08
	DEFAULT_SPD_ADDR   = 0x51
	DEFAULT_RETRIES    = 5

	// EE1004 set page addresses, any write selects the page
	EE1004_SPA0 = 0x36
	EE1004_SPA1 = 0x37
	EE1004_PAGE = 256
)

// SMBus performs one SMBus transaction with the slave at addr
type SMBus interface {
	Do(addr int, rw i2c.RW, cmd uint8, size i2c.SMBusSize, data *i2c.SMBusData) error
}

// LinuxSMBus is an SMBus on /dev/i2c-<Index>
type LinuxSMBus struct {
	Index int
}

func (l LinuxSMBus) Do(addr int, rw i2c.RW, cmd uint8, size i2c.SMBusSize, data *i2c.SMBusData) error {
	return i2c.Do(l.Index, addr, func(bus *i2c.Bus) error {
		return bus.Do(rw, cmd, size, data)
	})
}

// EEPROM reads a DDR4 SPD image behind an I2C mux
type EEPROM struct {
	Bus       SMBus
	MuxAddr   int
	MuxSelect uint8
	SPDAddr   int
	Retries   int
	Backoff   backoff.Backoff
}

func NewEEPROM(bus SMBus) *EEPROM {
	return &EEPROM{
		Bus:       bus,
		MuxAddr:   DEFAULT_MUX_ADDR,
		MuxSelect: DEFAULT_MUX_SELECT,
		SPDAddr:   DEFAULT_SPD_ADDR,
		Retries:   DEFAULT_RETRIES,
		Backoff: backoff.Backoff{
			Min:    1 * time.Millisecond,
			Max:    100 * time.Millisecond,
			Factor: 2,
			Jitter: false,
		},
	}
}

// do runs one transaction, retrying failures with backoff
func (e *EEPROM) do(ctx context.Context, addr int, rw i2c.RW, cmd uint8, size i2c.SMBusSize, data *i2c.SMBusData) error {
	b := e.Backoff
	b.Reset()
	var err error
	for attempt := 0; attempt <= e.Retries; attempt++ {
		if err = e.Bus.Do(addr, rw, cmd, size, data); err == nil {
			return nil
		}
		d := b.Duration()
		klog.V(DBG_LVL_DETAIL).InfoS("spd.EEPROM retry", "addr", hex(addr), "cmd", hex(cmd), "attempt", attempt, "wait", d, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	return fmt.Errorf("spd: i2c transaction to %#x failed after %d attempts: %w", addr, e.Retries+1, err)
}

// SelectMux routes the SPD EEPROM onto the bus and confirms the selection
func (e *EEPROM) SelectMux(ctx context.Context) error {
	var data i2c.SMBusData
	if err := e.do(ctx, e.MuxAddr, i2c.Write, e.MuxSelect, i2c.Byte, &data); err != nil {
		return err
	}
	data[0] = 0
	if err := e.do(ctx, e.MuxAddr, i2c.Read, 0, i2c.Byte, &data); err != nil {
		return err
	}
	if data[0] != e.MuxSelect {
		return fmt.Errorf("spd: i2c mux selection failed, wrote %#x read back %#x", e.MuxSelect, data[0])
	}
	return nil
}

func (e *EEPROM) readPage(ctx context.Context, spa int, out []byte) error {
	var data i2c.SMBusData
	if err := e.do(ctx, spa, i2c.Write, 0, i2c.Byte, &data); err != nil {
		return err
	}
	for i := range out {
		if err := e.do(ctx, e.SPDAddr, i2c.Read, uint8(i), i2c.ByteData, &data); err != nil {
			return err
		}
		out[i] = data[0]
	}
	return nil
}

// Read returns the full 512 byte SPD image, lower page then upper page
func (e *EEPROM) Read(ctx context.Context) ([]byte, error) {
	if err := e.SelectMux(ctx); err != nil {
		return nil, err
	}
	spd := make([]byte, SPD_SIZE)
	if err := e.readPage(ctx, EE1004_SPA0, spd[:EE1004_PAGE]); err != nil {
		return nil, err
	}
	if err := e.readPage(ctx, EE1004_SPA1, spd[EE1004_PAGE:]); err != nil {
		return nil, err
	}
	klog.V(DBG_LVL_BASIC).InfoS("spd.EEPROM read done", "addr", hex(e.SPDAddr), "bytes", len(spd))
	return spd, nil
}
