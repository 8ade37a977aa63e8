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

// Package devdb caches device database lookups. Plot subscriptions look up the units of every channel, and the
// same devices are plotted over and over, so entries are kept in an LRU cache.
package devdb

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/shared/logging"
)

// DefaultCacheSize is the number of devices kept unless configured otherwise.
const DefaultCacheSize = 4096

// Lookup resolves devices against the device database.
type Lookup interface {
	GetDeviceInfo(ctx context.Context, devices []string) ([]acsys.DeviceInfo, error)
}

// Cache is a read-through cache in front of a Lookup. Only successful lookups are cached.
type Cache struct {
	lookup Lookup
	cache  *lru.Cache[string, acsys.DeviceInfo]
}

// NewCache returns a cache of size entries in front of lookup.
func NewCache(lookup Lookup, size int) (*Cache, error) {
	c, err := lru.New[string, acsys.DeviceInfo](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lookup: lookup, cache: c}, nil
}

// DeviceInfo returns one entry per device, in order. Devices missing from the cache are resolved with a single
// call. On failure the returned entries still hold the cached devices and an error message for the others.
func (c *Cache) DeviceInfo(ctx context.Context, devices []string) ([]acsys.DeviceInfo, error) {
	out := make([]acsys.DeviceInfo, len(devices))
	var (
		missing []string
		slots   []int
	)
	for i, name := range devices {
		key := DeviceName(name)
		if info, ok := c.cache.Get(key); ok {
			cacheLookups.WithLabelValues("hit").Inc()
			out[i] = info
			out[i].Name = name
			continue
		}
		cacheLookups.WithLabelValues("miss").Inc()
		missing = append(missing, key)
		slots = append(slots, i)
	}
	if len(missing) == 0 {
		return out, nil
	}
	found, err := c.lookup.GetDeviceInfo(ctx, missing)
	for j, i := range slots {
		if j >= len(found) {
			out[i] = acsys.DeviceInfo{Name: devices[i], Error: "no reply from device database"}
			continue
		}
		out[i] = found[j]
		if err == nil && found[j].Error == "" {
			c.cache.Add(missing[j], found[j])
		}
		out[i].Name = devices[i]
	}
	return out, err
}

// Units returns the units of each DRF's reading property, or an empty string when they are not known.
func (c *Cache) Units(ctx context.Context, drfs []string) []string {
	units := make([]string, len(drfs))
	info, err := c.DeviceInfo(ctx, drfs)
	if err != nil {
		logging.FromContext(ctx).Warnw("Failed to look up channel units", zap.Error(err))
	}
	for i := range info {
		units[i] = info[i].Units()
	}
	return units
}

// qualifiers map the property character of a device name to the canonical reading form.
var qualifiers = map[byte]bool{':': true, '?': true, '_': true, '|': true, '&': true, '@': true, '$': true, '~': true, '^': true, '#': true}

// DeviceName extracts the device name from a data request, e.g. "M:OUTTMP" from "M_OUTTMP.SETTING[0]@p,1000".
func DeviceName(drf string) string {
	name := drf
	if i := strings.IndexAny(name, ".[@{<"); i > 0 {
		// The second character may itself be '@', which is a property qualifier, not an event.
		if i == 1 {
			if j := strings.IndexAny(name[2:], ".[@{<"); j >= 0 {
				name = name[:j+2]
			}
		} else {
			name = name[:i]
		}
	}
	if len(name) > 2 && qualifiers[name[1]] {
		name = name[:1] + ":" + name[2:]
	}
	return strings.ToUpper(name)
}
