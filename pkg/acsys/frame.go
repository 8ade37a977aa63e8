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

package acsys

// ChannelFrame is the data of one channel in a plot frame.
type ChannelFrame struct {
	Units string
	// RateLabel describes how the channel is sampled, e.g. "1Hz" or "@e,02".
	RateLabel string
	// Status is the lowest ACNET status seen for the channel in this frame, 0 if none.
	Status int16
	Points []Reading
}

// Ready reports whether the channel contributed to the frame, either with points or with a status.
func (c *ChannelFrame) Ready() bool {
	return c.Status != 0 || len(c.Points) > 0
}

// AddStatus records an ACNET status for the channel. The frame keeps the lowest non-zero status so failures win
// over warnings.
func (c *ChannelFrame) AddStatus(s int16) {
	if s == 0 {
		return
	}
	if c.Status == 0 || s < c.Status {
		c.Status = s
	}
}

// PlotFrame is one frame of plot data. Frames are emitted once every channel has contributed.
type PlotFrame struct {
	PlotID string
	// Timestamp is when the frame was completed, in seconds since the Unix epoch.
	Timestamp float64
	// TriggerTimestamp is set for trigger-synchronized frames; points are relative to it.
	TriggerTimestamp *float64
	Channels         []ChannelFrame
}

// NewPlotFrame returns an empty frame with one channel per entry of meta. Only the units and rate labels of meta
// are used.
func NewPlotFrame(plotID string, meta []ChannelFrame) *PlotFrame {
	f := &PlotFrame{
		PlotID:   plotID,
		Channels: make([]ChannelFrame, len(meta)),
	}
	for i := range meta {
		f.Channels[i] = ChannelFrame{
			Units:     meta[i].Units,
			RateLabel: meta[i].RateLabel,
		}
	}
	return f
}

// Ready reports whether every channel of the frame has contributed.
func (f *PlotFrame) Ready() bool {
	for i := range f.Channels {
		if !f.Channels[i].Ready() {
			return false
		}
	}
	return true
}

// Reseed returns an empty frame carrying the same plot id and channel metadata.
func (f *PlotFrame) Reseed() *PlotFrame {
	return NewPlotFrame(f.PlotID, f.Channels)
}

// HasPoints reports whether any channel holds at least one point.
func (f *PlotFrame) HasPoints() bool {
	for i := range f.Channels {
		if len(f.Channels[i].Points) > 0 {
			return true
		}
	}
	return false
}
