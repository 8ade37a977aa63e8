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

package datastream

import (
	"context"

	"go.uber.org/zap"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/shared/logging"
)

// EndStreamAt cuts the stream at end, a timestamp in seconds since the epoch. Readings later than end are removed;
// a channel whose reply was cut is considered complete. Once every one of the channelCount channels is complete
// the output is closed, even if the input keeps producing.
//
// With a nil end the input is returned as is.
func EndStreamAt(ctx context.Context, in <-chan acsys.ChannelReply, channelCount int, end *float64) <-chan acsys.ChannelReply {
	if end == nil {
		return in
	}
	out := make(chan acsys.ChannelReply)
	h := newHorizon(channelCount, *end)
	log := logging.FromContext(ctx).With("stage", "horizon")
	go func() {
		defer close(out)
		for !h.done() {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-in:
				if !ok {
					return
				}
				r, ok = h.apply(r)
				if !ok {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case out <- r:
				}
			}
		}
		log.Infow("All channels reached the end of the requested range", zap.Float64("end", h.end))
	}()
	return out
}

type horizon struct {
	end       float64
	active    []bool
	remaining int
}

func newHorizon(channelCount int, end float64) *horizon {
	h := &horizon{end: end, active: make([]bool, max(channelCount, 0))}
	for i := range h.active {
		h.active[i] = true
	}
	h.remaining = len(h.active)
	return h
}

func (h *horizon) done() bool {
	return h.remaining == 0
}

// apply truncates the reply at the horizon and reports whether anything is left to emit.
func (h *horizon) apply(r acsys.ChannelReply) (acsys.ChannelReply, bool) {
	if len(r.Readings) == 0 {
		return r, false
	}
	n := acsys.PartitionAfter(r.Readings, h.end)
	if n < len(r.Readings) {
		horizonTruncations.Inc()
		if r.Ref >= 0 && r.Ref < len(h.active) && h.active[r.Ref] {
			h.active[r.Ref] = false
			h.remaining--
		}
		r.Readings = r.Readings[:n]
	}
	return r, n > 0
}
