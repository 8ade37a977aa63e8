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

package apiserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fermi-ad/extapi-acsys/pkg/metrics"
)

// activeStreams is used to indicate the number of open websocket streams
var activeStreams = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Subsystem: "apiserver",
	Name:      "active_streams",
	Help:      "Number of open websocket streams",
}, []string{metrics.LabelStream})

// requestLatency is used to indicate the time spent serving REST requests
var requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Subsystem: "apiserver",
	Name:      "request_processing_time",
	Help:      "Processing time of REST requests (1 to 1200000 microseconds)",
	Buckets:   prometheus.ExponentialBucketsRange(1, 1200000, 5),
}, []string{metrics.LabelMethod})
