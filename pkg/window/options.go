/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package window

import (
	"fmt"
	"time"
)

const (
	// DefaultHeartbeatEvent is the clock event that paces splits of triggered plots between triggers.
	DefaultHeartbeatEvent int32 = 0x0F
	// DefaultHeartbeatDivisor is how many heartbeats pass between two splits.
	DefaultHeartbeatDivisor = 5
)

type Options struct {
	// maxPoints caps the points taken from one reply, 0 means unlimited
	maxPoints int
	// frameLimit stops the windower after that many frames, 0 means unlimited
	frameLimit int
	// heartbeatEvent is the clock event that splits triggered frames between triggers
	heartbeatEvent int32
	// heartbeatDivisor is the number of heartbeats per split
	heartbeatDivisor int
	// clock stamps emitted frames
	clock func() time.Time
}

func DefaultOptions() *Options {
	return &Options{
		heartbeatEvent:   DefaultHeartbeatEvent,
		heartbeatDivisor: DefaultHeartbeatDivisor,
		clock:            time.Now,
	}
}

type Option func(options *Options) error

// WithMaxPoints sets the maximum number of points kept from a single reply
func WithMaxPoints(n int) Option {
	return func(o *Options) error {
		if n < 0 {
			return fmt.Errorf("max points must not be negative, got %d", n)
		}
		o.maxPoints = n
		return nil
	}
}

// WithFrameLimit sets the number of frames after which the windower stops
func WithFrameLimit(n int) Option {
	return func(o *Options) error {
		if n < 0 {
			return fmt.Errorf("frame limit must not be negative, got %d", n)
		}
		o.frameLimit = n
		return nil
	}
}

// WithHeartbeatEvent sets the clock event used to pace splits of triggered plots
func WithHeartbeatEvent(event int32) Option {
	return func(o *Options) error {
		o.heartbeatEvent = event
		return nil
	}
}

// WithHeartbeatDivisor sets how many heartbeats pass between two splits
func WithHeartbeatDivisor(n int) Option {
	return func(o *Options) error {
		if n <= 0 {
			return fmt.Errorf("heartbeat divisor must be positive, got %d", n)
		}
		o.heartbeatDivisor = n
		return nil
	}
}

// WithClock sets the wall clock used to stamp frames
func WithClock(clock func() time.Time) Option {
	return func(o *Options) error {
		if clock == nil {
			return fmt.Errorf("clock must not be nil")
		}
		o.clock = clock
		return nil
	}
}

func buildOptions(opts []Option) (*Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}
