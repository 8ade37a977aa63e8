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

package backend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fermi-ad/extapi-acsys/pkg/metrics"
)

// rpcErrors is used to indicate the number of failed backend calls
var rpcErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "backend",
	Name:      "rpc_errors_total",
	Help:      "Total number of failed calls to ACSys services",
}, []string{metrics.LabelSource, metrics.LabelMethod})

// rpcLatency is used to indicate the latency of unary backend calls
var rpcLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Subsystem: "backend",
	Name:      "rpc_latency_seconds",
	Help:      "Latency of unary calls to ACSys services",
	Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
}, []string{metrics.LabelSource, metrics.LabelMethod})

// streamedMessages is used to indicate the number of messages received on backend streams
var streamedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "backend",
	Name:      "stream_messages_total",
	Help:      "Total number of messages received on streams from ACSys services",
}, []string{metrics.LabelSource, metrics.LabelMethod})
