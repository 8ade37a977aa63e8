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
	"fmt"

	"go.uber.org/zap"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/shared/logging"
)

type phase int

const (
	// awaitingTrigger discards data until the first trigger event.
	awaitingTrigger phase = iota
	// accumulating collects points since the last trigger.
	accumulating
	// splitting is entered while a boundary cuts the outgoing frame in two.
	splitting
)

func (p phase) String() string {
	switch p {
	case awaitingTrigger:
		return "awaiting-trigger"
	case accumulating:
		return "accumulating"
	case splitting:
		return "splitting"
	default:
		return "unknown"
	}
}

// Triggered produces frames aligned on a clock event. Only scalar readings can be plotted this way.
type Triggered struct {
	opts         *Options
	seed         *acsys.PlotFrame
	triggerEvent int32
}

// NewTriggered returns a windower that starts a frame on every occurrence of triggerEvent.
func NewTriggered(seed *acsys.PlotFrame, triggerEvent int32, opts ...Option) (*Triggered, error) {
	if seed == nil {
		return nil, errors.New("a seed frame is required")
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Triggered{opts: o, seed: seed.Reseed(), triggerEvent: triggerEvent}, nil
}

// Run consumes data replies and clock events until either input is closed, ctx is done, the frame limit is reached
// or a non-scalar reading arrives. A non-scalar reading is reported on the error channel, which is buffered and
// closed together with the frame channel.
func (t *Triggered) Run(ctx context.Context, in <-chan acsys.ChannelReply, events <-chan acsys.ClockEvent) (<-chan *acsys.PlotFrame, <-chan error) {
	out := make(chan *acsys.PlotFrame)
	errCh := make(chan error, 1)
	s := &triggerState{
		log:      logging.FromContext(ctx).With("windower", "triggered", "plotID", t.seed.PlotID),
		cfg:      t,
		outgoing: t.seed.Reseed(),
	}
	go func() {
		defer close(errCh)
		defer close(out)
		emitted := 0
		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-in:
				if !ok {
					return
				}
				if err := s.addData(r); err != nil {
					s.log.Errorw("Stopping triggered plot", zap.Error(err))
					errCh <- err
					return
				}
			case ev, ok := <-events:
				if !ok {
					return
				}
				frame := s.clockEvent(ev)
				if frame == nil {
					continue
				}
				frame.Timestamp = acsys.FromTime(t.opts.clock())
				select {
				case <-ctx.Done():
					return
				case out <- frame:
				}
				framesEmitted.WithLabelValues("triggered").Inc()
				emitted++
				if t.opts.frameLimit > 0 && emitted >= t.opts.frameLimit {
					s.log.Infow("Frame limit reached", zap.Int("frames", emitted))
					return
				}
			}
		}
	}()
	return out, errCh
}

type triggerState struct {
	log   *zap.SugaredLogger
	cfg   *Triggered
	phase phase
	// eventTime is the timestamp of the last trigger, valid unless awaitingTrigger.
	eventTime float64
	beats     int
	outgoing  *acsys.PlotFrame
}

func (s *triggerState) addData(r acsys.ChannelReply) error {
	if r.Ref < 0 || r.Ref >= len(s.outgoing.Channels) {
		s.log.Warnw("Dropping reply for an unknown channel", zap.Int("ref", r.Ref))
		droppedReplies.WithLabelValues("triggered").Inc()
		return nil
	}
	ch := &s.outgoing.Channels[r.Ref]
	for _, rd := range r.Readings {
		if _, ok := rd.Value.(acsys.Scalar); !ok {
			return fmt.Errorf("channel %d returned %s data: %w", r.Ref, acsys.Kind(rd.Value), acsys.ErrNonScalar)
		}
		ch.Points = append(ch.Points, rd)
	}
	return nil
}

// clockEvent advances the state machine and returns a finalized frame when the event closes one.
func (s *triggerState) clockEvent(ev acsys.ClockEvent) *acsys.PlotFrame {
	isTrigger := ev.Event == s.cfg.triggerEvent
	rollover := false
	// The divisor advances on every heartbeat, even one that is also the trigger.
	if ev.Event == s.cfg.opts.heartbeatEvent {
		s.beats = (s.beats + 1) % s.cfg.opts.heartbeatDivisor
		rollover = s.beats == 0
	}

	var frame *acsys.PlotFrame
	switch s.phase {
	case awaitingTrigger:
		s.discardBefore(ev.Timestamp)
	case accumulating:
		if isTrigger || rollover {
			s.phase = splitting
			frame = s.split(ev.Timestamp)
			s.phase = accumulating
		}
	}
	if isTrigger {
		s.eventTime = ev.Timestamp
		s.phase = accumulating
	}
	return frame
}

// discardBefore drops every point older than ts.
func (s *triggerState) discardBefore(ts float64) {
	for i := range s.outgoing.Channels {
		ch := &s.outgoing.Channels[i]
		ch.Points = ch.Points[acsys.PartitionBefore(ch.Points, ts):]
	}
}

// split cuts the outgoing frame at ts. Points before ts form the finalized frame, rebased on the last trigger; the
// rest stays in the outgoing frame with absolute timestamps.
func (s *triggerState) split(ts float64) *acsys.PlotFrame {
	done := s.outgoing.Reseed()
	rest := s.outgoing.Reseed()
	for i := range s.outgoing.Channels {
		pts := s.outgoing.Channels[i].Points
		n := acsys.PartitionBefore(pts, ts)
		fin := make([]acsys.Reading, n)
		for j := 0; j < n; j++ {
			fin[j] = acsys.Reading{Timestamp: pts[j].Timestamp - s.eventTime, Value: pts[j].Value}
		}
		done.Channels[i].Points = fin
		rest.Channels[i].Points = append([]acsys.Reading(nil), pts[n:]...)
	}
	s.outgoing = rest
	s.log.Debugw("Split triggered frame", zap.Float64("boundary", ts), zap.Float64("trigger", s.eventTime))
	if !done.HasPoints() {
		return nil
	}
	trigger := s.eventTime
	done.TriggerTimestamp = &trigger
	return done
}
