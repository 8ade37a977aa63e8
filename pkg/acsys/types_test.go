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

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func readingsAt(ts ...float64) []Reading {
	r := make([]Reading, len(ts))
	for i, t := range ts {
		r[i] = Reading{Timestamp: t, Value: Scalar(t)}
	}
	return r
}

func TestPartitionAfter(t *testing.T) {
	data := readingsAt(100, 110, 120)
	assert.Equal(t, 0, PartitionAfter(data, 99))
	assert.Equal(t, 1, PartitionAfter(data, 100))
	assert.Equal(t, 2, PartitionAfter(data, 115))
	assert.Equal(t, 3, PartitionAfter(data, 120))
	assert.Equal(t, 0, PartitionAfter(nil, 120))
}

func TestPartitionBefore(t *testing.T) {
	data := readingsAt(1, 2, 3, 4, 5)
	assert.Equal(t, 3, PartitionBefore(data, 3.5))
	assert.Equal(t, 2, PartitionBefore(data, 3))
	assert.Equal(t, 0, PartitionBefore(data, 0.5))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "scalar", Kind(Scalar(1)))
	assert.Equal(t, "scalarArray", Kind(ScalarArray{1, 2}))
	assert.Equal(t, "status", Kind(Status(-3)))
	assert.Equal(t, "struct", Kind(Struct{"a": Text("b")}))
	assert.Equal(t, "nil", Kind(nil))
}

func TestTimeConversion(t *testing.T) {
	now := time.Unix(1700000000, 250000000).UTC()
	ts := FromTime(now)
	assert.InDelta(t, 1700000000.25, ts, 1e-6)
	assert.WithinDuration(t, now, ToTime(ts), time.Microsecond)
}

func TestChannelFrame_AddStatus(t *testing.T) {
	var c ChannelFrame
	assert.False(t, c.Ready())
	c.AddStatus(0)
	assert.False(t, c.Ready())
	c.AddStatus(5)
	assert.Equal(t, int16(5), c.Status)
	c.AddStatus(-2)
	assert.Equal(t, int16(-2), c.Status)
	c.AddStatus(7)
	assert.Equal(t, int16(-2), c.Status)
	assert.True(t, c.Ready())
}

func TestPlotFrame_Reseed(t *testing.T) {
	f := NewPlotFrame("p1", []ChannelFrame{{Units: "mA", RateLabel: "1Hz"}, {Units: "V"}})
	assert.False(t, f.Ready())
	f.Channels[0].Points = readingsAt(1)
	assert.False(t, f.Ready())
	assert.True(t, f.HasPoints())
	f.Channels[1].AddStatus(-1)
	assert.True(t, f.Ready())

	g := f.Reseed()
	assert.Equal(t, "p1", g.PlotID)
	assert.Equal(t, "mA", g.Channels[0].Units)
	assert.Equal(t, "1Hz", g.Channels[0].RateLabel)
	assert.Equal(t, "V", g.Channels[1].Units)
	assert.Empty(t, g.Channels[0].Points)
	assert.Zero(t, g.Channels[1].Status)
	assert.False(t, g.HasPoints())
}

func TestUpstreamError(t *testing.T) {
	assert.Nil(t, NewUpstreamError("dpm", nil))
	cause := errors.New("connection reset")
	err := NewUpstreamError("dpm", cause)
	assert.EqualError(t, err, "dpm: connection reset")
	assert.True(t, errors.Is(err, cause))
	var ue *UpstreamError
	assert.True(t, errors.As(err, &ue))
	assert.Equal(t, "dpm", ue.Source)
}
