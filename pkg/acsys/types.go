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
	"fmt"
	"math"
	"sort"
	"time"
)

// Value is the sampled value of a device property. It is one of Scalar, ScalarArray, Text, TextArray, Raw, Status
// or Struct.
type Value interface {
	isValue()
}

// Scalar is a scaled, floating point reading.
type Scalar float64

// ScalarArray is an array of scaled readings, e.g. an EPICS waveform.
type ScalarArray []float64

// Text is a textual reading.
type Text string

// TextArray is an array of textual readings.
type TextArray []string

// Raw holds the raw, unscaled bytes returned by a front-end.
type Raw []byte

// Status is an ACNET status forwarded instead of data. Negative values are errors.
type Status int16

// Struct is structured data, keyed by field name. Values may be Structs themselves.
type Struct map[string]Value

func (Scalar) isValue()      {}
func (ScalarArray) isValue() {}
func (Text) isValue()        {}
func (TextArray) isValue()   {}
func (Raw) isValue()         {}
func (Status) isValue()      {}
func (Struct) isValue()      {}

// Kind returns a short name of the value's type, used in logs and errors.
func Kind(v Value) string {
	switch v.(type) {
	case Scalar:
		return "scalar"
	case ScalarArray:
		return "scalarArray"
	case Text:
		return "text"
	case TextArray:
		return "textArray"
	case Raw:
		return "raw"
	case Status:
		return "status"
	case Struct:
		return "struct"
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Reading is one sample of one channel.
type Reading struct {
	// Timestamp in seconds since the Unix epoch.
	Timestamp float64
	Value     Value
}

// ChannelReply routes a batch of readings to a channel of the request. Readings are sorted by timestamp.
//
// A reply from the archiver with no readings is the end-of-archive sentinel for that channel.
type ChannelReply struct {
	// Ref is the index of the channel in the caller's request.
	Ref      int
	Readings []Reading
}

// IsEndOfArchive reports whether the reply is the archiver's end-of-data sentinel.
func (r ChannelReply) IsEndOfArchive() bool {
	return len(r.Readings) == 0
}

// ClockEvent is a notification from the clock event service.
type ClockEvent struct {
	Event     int32
	Timestamp float64
}

// PartitionAfter returns the index of the first reading whose timestamp is greater than ts. readings must be
// sorted by timestamp.
func PartitionAfter(readings []Reading, ts float64) int {
	return sort.Search(len(readings), func(i int) bool {
		return readings[i].Timestamp > ts
	})
}

// PartitionBefore returns the index of the first reading whose timestamp is not before ts.
func PartitionBefore(readings []Reading, ts float64) int {
	return sort.Search(len(readings), func(i int) bool {
		return readings[i].Timestamp >= ts
	})
}

// FromTime converts t to seconds since the Unix epoch.
func FromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// ToTime converts seconds since the Unix epoch to a time.Time.
func ToTime(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}
