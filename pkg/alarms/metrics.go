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

package alarms

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// consumedMessages is used to indicate the number of alarm messages read from kafka
var consumedMessages = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "alarms",
	Name:      "consumed_total",
	Help:      "Total number of alarm messages consumed",
})

// laggedMessages is used to indicate the number of messages dropped for slow subscribers
var laggedMessages = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "alarms",
	Name:      "lagged_total",
	Help:      "Total number of alarm messages dropped because a subscriber fell behind",
})

// activeSubscriptions is used to indicate the number of clients following the alarm feed
var activeSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
	Subsystem: "alarms",
	Name:      "subscriptions",
	Help:      "Number of active alarm subscriptions",
})

// consumerErrors is used to indicate the number of kafka consumer errors
var consumerErrors = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "alarms",
	Name:      "consumer_errors_total",
	Help:      "Total number of kafka consumer errors",
})
