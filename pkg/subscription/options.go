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
	"time"

	"github.com/fermi-ad/extapi-acsys/pkg/plotconfig"
	"github.com/fermi-ad/extapi-acsys/pkg/window"
)

const (
	// DefaultPlotCacheSize is the number of plot ids remembered.
	DefaultPlotCacheSize = 1024
	// DefaultPlotTTL is how long a plot id can be reused after it was handed out.
	DefaultPlotTTL = 10 * time.Minute
)

type options struct {
	units          UnitsSource
	plots          plotconfig.Store
	heartbeatEvent int32
	plotCacheSize  int
	plotTTL        time.Duration
	now            func() time.Time
}

// Option configures a Service.
type Option func(*options)

// WithUnits sets the source of the units reported in plot frames.
func WithUnits(u UnitsSource) Option {
	return func(o *options) {
		o.units = u
	}
}

// WithPlotStore lets plot requests refer to stored plot configurations.
func WithPlotStore(s plotconfig.Store) Option {
	return func(o *options) {
		o.plots = s
	}
}

// WithHeartbeatEvent sets the clock event pacing triggered plots between triggers.
func WithHeartbeatEvent(event int32) Option {
	return func(o *options) {
		o.heartbeatEvent = event
	}
}

// WithPlotCache sets the size and lifetime of the plot id cache.
func WithPlotCache(size int, ttl time.Duration) Option {
	return func(o *options) {
		o.plotCacheSize = size
		o.plotTTL = ttl
	}
}

// WithNow sets the clock used for open ended archive reads and plot id expiry.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func defaultOptions() *options {
	return &options{
		heartbeatEvent: window.DefaultHeartbeatEvent,
		plotCacheSize:  DefaultPlotCacheSize,
		plotTTL:        DefaultPlotTTL,
		now:            time.Now,
	}
}
