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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fermi-ad/extapi-acsys/pkg/metrics"
)

// framesEmitted is used to indicate the number of plot frames emitted
var framesEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "window",
	Name:      "frames_total",
	Help:      "Total number of plot frames emitted",
}, []string{metrics.LabelWindower})

// decimatedReadings is used to indicate the number of readings skipped by decimation
var decimatedReadings = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "window",
	Name:      "decimated_readings_total",
	Help:      "Total number of readings skipped to honour the per-reply point limit",
})

// droppedReplies counts replies for channels that are not part of the plot
var droppedReplies = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "window",
	Name:      "dropped_replies_total",
	Help:      "Total number of replies dropped because their reference id is not a plot channel",
}, []string{metrics.LabelWindower})
