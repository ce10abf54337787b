/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package offload

import (
	"time"
)

// ConsumeOptions configures the channel-based Consume sequence.
type ConsumeOptions struct {
	BufferSize   int           // Channel buffer size (default: 16)
	PollInterval time.Duration // Idle wait between broker polls (default: 250ms)
}

// ConsumeOption is a functional option for configuring Consume.
type ConsumeOption func(*ConsumeOptions)

func defaultConsumeOptions() ConsumeOptions {
	return ConsumeOptions{
		BufferSize:   16,
		PollInterval: 250 * time.Millisecond,
	}
}

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) ConsumeOption {
	return func(opts *ConsumeOptions) {
		if size > 0 {
			opts.BufferSize = size
		}
	}
}

// WithConsumePollInterval sets the idle wait between broker polls.
func WithConsumePollInterval(d time.Duration) ConsumeOption {
	return func(opts *ConsumeOptions) {
		if d > 0 {
			opts.PollInterval = d
		}
	}
}
