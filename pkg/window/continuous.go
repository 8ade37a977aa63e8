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
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/shared/logging"
)

// Continuous emits a plot frame each time every channel of the plot has reported.
type Continuous struct {
	opts *Options
	seed *acsys.PlotFrame
}

// NewContinuous returns a continuous windower whose frames carry the plot id and channel metadata of seed.
func NewContinuous(seed *acsys.PlotFrame, opts ...Option) (*Continuous, error) {
	if seed == nil {
		return nil, errors.New("a seed frame is required")
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Continuous{opts: o, seed: seed.Reseed()}, nil
}

// Run consumes in until it is closed, ctx is done or the frame limit is reached, and returns the frames produced.
func (c *Continuous) Run(ctx context.Context, in <-chan acsys.ChannelReply) <-chan *acsys.PlotFrame {
	out := make(chan *acsys.PlotFrame)
	log := logging.FromContext(ctx).With("windower", "continuous", "plotID", c.seed.PlotID)
	go func() {
		defer close(out)
		frame := c.seed.Reseed()
		emitted := 0
		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-in:
				if !ok {
					return
				}
				if !c.add(log, frame, r) || !frame.Ready() {
					continue
				}
				ready := frame
				frame = ready.Reseed()
				ready.Timestamp = acsys.FromTime(c.opts.clock())
				select {
				case <-ctx.Done():
					return
				case out <- ready:
				}
				framesEmitted.WithLabelValues("continuous").Inc()
				emitted++
				if c.opts.frameLimit > 0 && emitted >= c.opts.frameLimit {
					log.Infow("Frame limit reached", zap.Int("frames", emitted))
					return
				}
			}
		}
	}()
	return out
}

// add folds a reply into frame and reports whether the reply belonged to the plot.
func (c *Continuous) add(log *zap.SugaredLogger, frame *acsys.PlotFrame, r acsys.ChannelReply) bool {
	if r.Ref < 0 || r.Ref >= len(frame.Channels) {
		log.Warnw("Dropping reply for an unknown channel", zap.Int("ref", r.Ref))
		droppedReplies.WithLabelValues("continuous").Inc()
		return false
	}
	ch := &frame.Channels[r.Ref]
	data := make([]acsys.Reading, 0, len(r.Readings))
	for _, rd := range r.Readings {
		if s, ok := rd.Value.(acsys.Status); ok {
			ch.AddStatus(int16(s))
			continue
		}
		data = append(data, rd)
	}
	// Statuses don't count against the point budget.
	stride := decimationStride(len(data), c.opts.maxPoints)
	kept := 0
	for i := 0; i < len(data); i += stride {
		ch.Points = append(ch.Points, data[i])
		kept++
	}
	if dropped := len(data) - kept; dropped > 0 {
		decimatedReadings.Add(float64(dropped))
	}
	return true
}

// decimationStride is the step that keeps at most maxPoints of n readings. maxPoints of 0 disables decimation.
func decimationStride(n, maxPoints int) int {
	if maxPoints <= 0 || n <= maxPoints {
		return 1
	}
	return (n + maxPoints - 1) / maxPoints
}
