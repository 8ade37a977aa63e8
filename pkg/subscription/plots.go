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
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/shared/logging"
	"github.com/fermi-ad/extapi-acsys/pkg/window"
)

// PlotRequest asks for a plot. The channels come from, in order of precedence, a plot id handed out earlier, a
// stored configuration or the DRF list.
type PlotRequest struct {
	PlotID   string
	ConfigID *int
	DRFs     []string
	Start    *float64
	End      *float64
	// MaxPoints caps the points of one channel reply, 0 takes the stored configuration's value.
	MaxPoints int
	// FrameLimit ends the plot after that many frames, 0 takes the stored configuration's value.
	FrameLimit int
	// TriggerEvent synchronizes triggered plots, nil takes the stored configuration's event.
	TriggerEvent *int32
}

// plotEntry is a resolved plot request.
type plotEntry struct {
	drfs         []string
	maxPoints    int
	frameLimit   int
	triggerEvent *int32
	expires      time.Time
}

// resolvePlot returns the plot id and channels of req. A new plot id is handed out unless req reuses a live one.
func (s *Service) resolvePlot(ctx context.Context, req PlotRequest) (string, plotEntry, error) {
	var entry plotEntry
	id := req.PlotID
	cached, ok := s.lookupPlot(id)
	switch {
	case ok:
		entry = cached
	case req.ConfigID != nil:
		if s.opts.plots == nil {
			return "", entry, fmt.Errorf("%w: plot configurations are not available", ErrInvalidRequest)
		}
		cfgs, err := s.opts.plots.Find(ctx, req.ConfigID)
		if err != nil {
			return "", entry, err
		}
		if len(cfgs) == 0 {
			return "", entry, fmt.Errorf("plot configuration %d: %w", *req.ConfigID, acsys.ErrNotFound)
		}
		cfg := cfgs[0]
		entry = plotEntry{
			drfs:         cfg.DRFs(),
			maxPoints:    cfg.MaxPoints,
			frameLimit:   cfg.FrameLimit,
			triggerEvent: cfg.TriggerEvent,
		}
	default:
		entry = plotEntry{drfs: req.DRFs}
	}
	if len(entry.drfs) == 0 {
		return "", entry, fmt.Errorf("%w: plot has no channels", ErrInvalidRequest)
	}
	if req.MaxPoints != 0 {
		entry.maxPoints = req.MaxPoints
	}
	if req.FrameLimit != 0 {
		entry.frameLimit = req.FrameLimit
	}
	if req.TriggerEvent != nil {
		entry.triggerEvent = req.TriggerEvent
	}
	if !ok {
		id = uuid.NewString()
	}
	entry.expires = s.opts.now().Add(s.opts.plotTTL)
	s.plotIDs.Add(id, entry)
	return id, entry, nil
}

func (s *Service) lookupPlot(id string) (plotEntry, bool) {
	if id == "" {
		return plotEntry{}, false
	}
	entry, ok := s.plotIDs.Get(id)
	if !ok {
		return plotEntry{}, false
	}
	if s.opts.now().After(entry.expires) {
		s.plotIDs.Remove(id)
		return plotEntry{}, false
	}
	return entry, true
}

// seedFrame returns the empty frame a plot starts from.
func (s *Service) seedFrame(ctx context.Context, id string, drfs []string) *acsys.PlotFrame {
	var units []string
	if s.opts.units != nil {
		units = s.opts.units.Units(ctx, drfs)
	}
	meta := make([]acsys.ChannelFrame, len(drfs))
	for i, drf := range drfs {
		if i < len(units) {
			meta[i].Units = units[i]
		}
		meta[i].RateLabel = rateLabel(drf)
	}
	return acsys.NewPlotFrame(id, meta)
}

// rateLabel returns the event part of a DRF, e.g. "@p,1000" for "M:OUTTMP@p,1000".
func rateLabel(drf string) string {
	if i := strings.LastIndexByte(drf, '@'); i > 1 {
		return drf[i:]
	}
	return ""
}

func (e plotEntry) windowOptions() []window.Option {
	return []window.Option{window.WithMaxPoints(e.maxPoints), window.WithFrameLimit(e.frameLimit)}
}

// StartPlot streams frames of a continuous plot to sink.
func (s *Service) StartPlot(ctx context.Context, req PlotRequest, sink func(*acsys.PlotFrame) error) error {
	id, entry, err := s.resolvePlot(ctx, req)
	if err != nil {
		return err
	}
	ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("plotID", id))
	w, err := window.NewContinuous(s.seedFrame(ctx, id, entry.drfs), entry.windowOptions()...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return run(ctx, streamPlot, func(ctx context.Context, g *errgroup.Group) <-chan *acsys.PlotFrame {
		return w.Run(ctx, s.replies(ctx, g, entry.drfs, req.Start, req.End))
	}, sink)
}

// StartTriggeredPlot streams frames of a plot synchronized to a clock event to sink.
func (s *Service) StartTriggeredPlot(ctx context.Context, req PlotRequest, sink func(*acsys.PlotFrame) error) error {
	id, entry, err := s.resolvePlot(ctx, req)
	if err != nil {
		return err
	}
	if entry.triggerEvent == nil {
		return fmt.Errorf("%w: triggered plot needs a trigger event", ErrInvalidRequest)
	}
	trigger := *entry.triggerEvent
	ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("plotID", id, "triggerEvent", trigger))
	opts := append(entry.windowOptions(), window.WithHeartbeatEvent(s.opts.heartbeatEvent))
	w, err := window.NewTriggered(s.seedFrame(ctx, id, entry.drfs), trigger, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return run(ctx, streamTrig, func(ctx context.Context, g *errgroup.Group) <-chan *acsys.PlotFrame {
		events, clockErr := s.clock.Subscribe(ctx, []int32{trigger, s.opts.heartbeatEvent})
		watch(g, clockErr)
		frames, windowErr := w.Run(ctx, s.replies(ctx, g, entry.drfs, req.Start, req.End), events)
		watch(g, windowErr)
		return frames
	}, sink)
}
