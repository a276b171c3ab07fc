// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the primary-core gate around the bring-up sequence
package bringup

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"k8s.io/klog/v2"
)

// Gate lets exactly one caller run the bring-up sequence. Every other caller waits
// until the sequence completes and then observes its result. DRAM must not be
// touched by a secondary before Wait returns nil.
type Gate struct {
	claimed atomic.Bool
	once    sync.Once
	done    chan struct{}
	err     error
}

func NewGate() *Gate {
	return &Gate{done: make(chan struct{})}
}

// Claim returns true for the first caller only
func (g *Gate) Claim() bool {
	return g.claimed.CompareAndSwap(false, true)
}

// Release publishes the sequence result and wakes every waiter. Only the first call
// has an effect.
func (g *Gate) Release(err error) {
	g.once.Do(func() {
		g.err = err
		close(g.done)
	})
}

// Wait blocks until Release and returns the sequence error
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.done:
		return g.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunPrimary runs fn if the caller wins the claim, otherwise it waits for the
// primary. primary reports which of the two happened.
func (g *Gate) RunPrimary(ctx context.Context, fn func(context.Context) error) (primary bool, err error) {
	if !g.Claim() {
		klog.V(DBG_LVL_INFO).Info("bringup: waiting for primary")
		return false, g.Wait(ctx)
	}
	defer func() {
		if r := recover(); r != nil {
			g.Release(fmt.Errorf("bringup: primary panicked: %v", r))
			panic(r)
		}
	}()
	err = fn(ctx)
	g.Release(err)
	return true, err
}
