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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fermi-ad/extapi-acsys/pkg/metrics"
)

// activeSubscriptions is used to indicate the number of running subscriptions
var activeSubscriptions = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Subsystem: "subscription",
	Name:      "active",
	Help:      "Number of running client subscriptions",
}, []string{metrics.LabelStream})

// failedSubscriptions is used to indicate the number of subscriptions ended by an error
var failedSubscriptions = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "subscription",
	Name:      "failed_total",
	Help:      "Total number of subscriptions ended by an error",
}, []string{metrics.LabelStream})
