// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements bounded status register polling.
package reg

import (
	"context"
	"errors"
	"time"

	"k8s.io/klog/v2"
)

const DEFAULT_POLL_ITERATIONS = 1_000_000

// ctx and deadline are only checked every POLL_CHECK_INTERVAL reads when busy polling
const POLL_CHECK_INTERVAL = 256

var ErrTimeout = errors.New("reg: poll timed out")

// Timeout bounds a poll loop by read count, by wall clock, or both.
// Whichever limit is reached first ends the poll.
type Timeout struct {
	Iterations int           // max register reads, 0 for no count limit
	Deadline   time.Duration // max elapsed time, 0 for no time limit
	Interval   time.Duration // sleep between reads, 0 to busy poll
}

func DefaultTimeout() Timeout {
	return Timeout{Iterations: DEFAULT_POLL_ITERATIONS}
}

func (t Timeout) bounded() Timeout {
	if t.Iterations <= 0 && t.Deadline <= 0 {
		t.Iterations = DEFAULT_POLL_ITERATIONS
	}
	return t
}

// Poll reads offset until cond holds. It returns the last value read and the
// number of reads performed. ErrTimeout is returned when the Timeout runs out,
// ctx.Err() when the context ends first.
func Poll(ctx context.Context, b Block, offset uint32, cond func(uint32) bool, t Timeout) (uint32, int, error) {
	t = t.bounded()
	var deadline time.Time
	if t.Deadline > 0 {
		deadline = time.Now().Add(t.Deadline)
	}

	var val uint32
	for n := 1; ; n++ {
		val = b.Read32(offset)
		if cond(val) {
			klog.V(DBG_LVL_DEEP_DETAIL).InfoS("reg.Poll done", "offset", hex(offset), "val", hex(val), "reads", n)
			return val, n, nil
		}
		if t.Iterations > 0 && n >= t.Iterations {
			return val, n, ErrTimeout
		}
		if t.Interval > 0 || n%POLL_CHECK_INTERVAL == 0 {
			if err := ctx.Err(); err != nil {
				return val, n, err
			}
			if !deadline.IsZero() && time.Now().After(deadline) {
				return val, n, ErrTimeout
			}
		}
		if t.Interval > 0 {
			time.Sleep(t.Interval)
		}
	}
}
