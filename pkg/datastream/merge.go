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

// Merge combines a stream of archived replies with a stream of live replies for channelCount channels.
//
// For every channel, all archived readings are delivered before any live reading. Live data is queued until the
// archiver sends the channel's end-of-archive marker, an empty reply. The live stream keeps being drained while the
// archive is read, so a slow archiver never stalls the live producer. When both inputs have data ready, archived
// replies are preferred.
//
// The returned channel is closed when both inputs are closed or ctx is done.
func Merge(ctx context.Context, channelCount int, archived, live <-chan acsys.ChannelReply) <-chan acsys.ChannelReply {
	out := make(chan acsys.ChannelReply)
	m := &merger{
		log:     logging.FromContext(ctx).With("stage", "merge"),
		buffers: make([]*channelBuffer, max(channelCount, 0)),
	}
	go func() {
		defer close(out)
		m.run(ctx, archived, live, out)
	}()
	return out
}

type merger struct {
	log *zap.SugaredLogger
	// buffers is indexed by reference id and filled lazily.
	buffers []*channelBuffer
}

func (m *merger) run(ctx context.Context, archived, live <-chan acsys.ChannelReply, out chan<- acsys.ChannelReply) {
	for archived != nil || live != nil {
		var (
			reply acsys.ChannelReply
			emit  bool
		)
		onArchived := func(r acsys.ChannelReply, ok bool) {
			if !ok {
				m.log.Debug("Archived stream closed")
				archived = nil
				return
			}
			reply, emit = m.archivedReply(r)
		}
		select {
		case r, ok := <-archived:
			onArchived(r, ok)
		default:
			select {
			case <-ctx.Done():
				return
			case r, ok := <-archived:
				onArchived(r, ok)
			case r, ok := <-live:
				if !ok {
					m.log.Debug("Live stream closed")
					live = nil
					continue
				}
				reply, emit = m.liveReply(r)
			}
		}
		if !emit {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case out <- reply:
		}
	}
}

// buffer returns the buffer of a channel, growing the table for refs beyond the declared channel count. It returns
// nil for negative refs.
func (m *merger) buffer(ref int) *channelBuffer {
	if ref < 0 {
		m.log.Warnw("Dropping reply with a negative reference id", zap.Int("ref", ref))
		protocolViolations.WithLabelValues("negative_ref").Inc()
		return nil
	}
	if ref >= len(m.buffers) {
		m.buffers = append(m.buffers, make([]*channelBuffer, ref+1-len(m.buffers))...)
	}
	if m.buffers[ref] == nil {
		m.buffers[ref] = newChannelBuffer(m.log.With("ref", ref))
	}
	return m.buffers[ref]
}

func (m *merger) archivedReply(r acsys.ChannelReply) (acsys.ChannelReply, bool) {
	b := m.buffer(r.Ref)
	if b == nil {
		return acsys.ChannelReply{}, false
	}
	data := b.processArchived(r.Readings)
	if len(data) == 0 {
		return acsys.ChannelReply{}, false
	}
	mergedReplies.WithLabelValues("archived").Inc()
	return acsys.ChannelReply{Ref: r.Ref, Readings: data}, true
}

func (m *merger) liveReply(r acsys.ChannelReply) (acsys.ChannelReply, bool) {
	b := m.buffer(r.Ref)
	if b == nil {
		return acsys.ChannelReply{}, false
	}
	data, ok := b.processLive(r.Readings)
	if !ok {
		bufferedLiveReplies.Inc()
		return acsys.ChannelReply{}, false
	}
	if len(data) == 0 {
		m.log.Warnw("Received empty live data packet", zap.Int("ref", r.Ref))
		protocolViolations.WithLabelValues("empty_live_reply").Inc()
		return acsys.ChannelReply{}, false
	}
	mergedReplies.WithLabelValues("live").Inc()
	return acsys.ChannelReply{Ref: r.Ref, Readings: data}, true
}
