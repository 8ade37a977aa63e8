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
	"go.uber.org/zap"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

type bufferState int

const (
	// buffering means the archiver has not finished the channel; live data is held back.
	buffering bufferState = iota
	// feedThrough means the archive is done and live data passes straight through.
	feedThrough
)

func (s bufferState) String() string {
	switch s {
	case buffering:
		return "buffering"
	case feedThrough:
		return "feed-through"
	default:
		return "unknown"
	}
}

// channelBuffer holds back the live readings of one channel until the archiver signals the end of its data.
type channelBuffer struct {
	log     *zap.SugaredLogger
	state   bufferState
	pending []acsys.Reading
}

func newChannelBuffer(log *zap.SugaredLogger) *channelBuffer {
	return &channelBuffer{log: log, state: buffering}
}

// processLive returns the readings to emit now. ok is false while the channel is buffering, in which case the
// readings were queued.
func (b *channelBuffer) processLive(readings []acsys.Reading) (out []acsys.Reading, ok bool) {
	if b.state == feedThrough {
		return readings, true
	}
	b.pending = append(b.pending, readings...)
	return nil, false
}

// processArchived returns the readings to emit for an archived batch. An empty batch marks the end of the archive:
// everything buffered is released and the channel switches to feed-through.
func (b *channelBuffer) processArchived(readings []acsys.Reading) []acsys.Reading {
	if b.state == feedThrough {
		b.log.Warnw("Archived data received after the end of the archive", zap.Int("readings", len(readings)))
		protocolViolations.WithLabelValues("archived_after_feed_through").Inc()
		return readings
	}
	if len(readings) > 0 {
		return readings
	}
	out := b.pending
	b.pending = nil
	b.state = feedThrough
	b.log.Debugw("Archive complete, switching to feed-through", zap.Int("released", len(out)))
	return out
}
