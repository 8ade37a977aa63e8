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

package subscription

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/datastream"
)

// ErrInvalidRequest is returned for requests that can't be served.
var ErrInvalidRequest = errors.New("invalid request")

const (
	streamData   = "data"
	streamEvents = "events"
	streamPlot   = "plot"
	streamTrig   = "triggered_plot"
)

// Service starts subscriptions against the backend services.
type Service struct {
	archiver Archiver
	live     LiveSource
	clock    ClockSource
	opts     *options
	plotIDs  *lru.Cache[string, plotEntry]
}

// NewService returns a Service reading from the given sources.
func NewService(archiver Archiver, live LiveSource, clock ClockSource, opts ...Option) (*Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.plotCacheSize <= 0 {
		return nil, fmt.Errorf("plot cache size must be positive, got %d", o.plotCacheSize)
	}
	c, err := lru.New[string, plotEntry](o.plotCacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		archiver: archiver,
		live:     live,
		clock:    clock,
		opts:     o,
		plotIDs:  c,
	}, nil
}

// DataRequest asks for the readings of a list of DRFs.
type DataRequest struct {
	DRFs []string
	// Start, if set, prepends archived data from that time, in seconds since the Unix epoch.
	Start *float64
	// End, if set, ends the subscription once every channel reached that time.
	End *float64
}

// AcceleratorData streams the replies of req to sink until the data ends, sink fails or ctx is done.
func (s *Service) AcceleratorData(ctx context.Context, req DataRequest, sink func(acsys.ChannelReply) error) error {
	if len(req.DRFs) == 0 {
		return fmt.Errorf("%w: no data requests", ErrInvalidRequest)
	}
	return run(ctx, streamData, func(ctx context.Context, g *errgroup.Group) <-chan acsys.ChannelReply {
		return s.replies(ctx, g, req.DRFs, req.Start, req.End)
	}, sink)
}

// ReportEvents streams the occurrences of events to sink.
func (s *Service) ReportEvents(ctx context.Context, events []int32, sink func(acsys.ClockEvent) error) error {
	if len(events) == 0 {
		return fmt.Errorf("%w: no clock events", ErrInvalidRequest)
	}
	return run(ctx, streamEvents, func(ctx context.Context, g *errgroup.Group) <-chan acsys.ClockEvent {
		out, errCh := s.clock.Subscribe(ctx, events)
		watch(g, errCh)
		return out
	}, sink)
}

// replies builds the reply stream of drfs. Live data is merged behind archived data when start is set, and the
// stream is cut at end.
func (s *Service) replies(ctx context.Context, g *errgroup.Group, drfs []string, start, end *float64) <-chan acsys.ChannelReply {
	live, liveErr := s.live.AcquireDevices(ctx, drfs)
	watch(g, liveErr)
	stream := live
	if start != nil {
		until := acsys.FromTime(s.opts.now())
		if end != nil && *end < until {
			until = *end
		}
		archived, archErr := s.archiver.ReadArchive(ctx, drfs, *start, until)
		watch(g, archErr)
		stream = datastream.FilterDupes(ctx, datastream.Merge(ctx, len(drfs), archived, live))
	}
	return datastream.EndStreamAt(ctx, stream, len(drfs), end)
}
