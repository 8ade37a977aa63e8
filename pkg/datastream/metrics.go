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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fermi-ad/extapi-acsys/pkg/metrics"
)

// mergedReplies is used to indicate the number of replies forwarded by the merger
var mergedReplies = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "datastream",
	Name:      "merged_replies_total",
	Help:      "Total number of replies forwarded by the archive/live merger",
}, []string{metrics.LabelOrigin})

// bufferedLiveReplies counts live replies held back while a channel's archive is still being read
var bufferedLiveReplies = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "datastream",
	Name:      "buffered_live_replies_total",
	Help:      "Total number of live replies buffered until the archive finished",
})

// protocolViolations counts replies that broke the archiver or live-source contract
var protocolViolations = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "datastream",
	Name:      "protocol_violations_total",
	Help:      "Total number of replies that violated the source contract",
}, []string{metrics.LabelReason})

// droppedDuplicates is used to indicate the number of readings dropped as duplicates
var droppedDuplicates = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "datastream",
	Name:      "dropped_duplicates_total",
	Help:      "Total number of readings dropped because they were not newer than the channel's mark",
})

// horizonTruncations is used to indicate the number of replies cut by the end-of-stream horizon
var horizonTruncations = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "datastream",
	Name:      "horizon_truncations_total",
	Help:      "Total number of replies truncated at the end of the requested time range",
})
