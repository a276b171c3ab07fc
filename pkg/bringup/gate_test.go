// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package bringup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateSinglePrimary(t *testing.T) {
	g := NewGate()
	errTrain := errors.New("training failed")
	var runs, primaries int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			primary, err := g.RunPrimary(context.Background(), func(context.Context) error {
				atomic.AddInt32(&runs, 1)
				<-release
				return errTrain
			})
			if primary {
				atomic.AddInt32(&primaries, 1)
			}
			errs[i] = err
		}(i)
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), runs)
	assert.Equal(t, int32(1), primaries)
	for _, err := range errs {
		assert.ErrorIs(t, err, errTrain)
	}
}

func TestGateWaitBlocksUntilRelease(t *testing.T) {
	g := NewGate()
	require.True(t, g.Claim())
	assert.False(t, g.Claim())

	done := make(chan error)
	go func() { done <- g.Wait(context.Background()) }()
	select {
	case <-done:
		t.Fatal("Wait returned before Release")
	case <-time.After(10 * time.Millisecond):
	}

	g.Release(nil)
	assert.NoError(t, <-done)
}

func TestGateReleaseOnce(t *testing.T) {
	g := NewGate()
	first := errors.New("first")
	g.Release(first)
	g.Release(nil)
	assert.Equal(t, first, g.Wait(context.Background()))
}

func TestGateWaitCanceled(t *testing.T) {
	g := NewGate()
	g.Claim()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, g.Wait(ctx), context.Canceled)
}

func TestGatePrimaryPanic(t *testing.T) {
	g := NewGate()
	assert.Panics(t, func() {
		g.RunPrimary(context.Background(), func(context.Context) error { panic("boom") })
	})
	err := g.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked: boom")
}
