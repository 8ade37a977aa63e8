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

// Package plotconfig stores plot configurations. General configurations are shared by everyone and identified by
// a numeric id; each user also has one private configuration, stored by user name without an id or a name.
package plotconfig

import (
	"context"
	"fmt"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

// ChannelSetting is one trace of a plot.
type ChannelSetting struct {
	DRF   string   `json:"drf"`
	Color string   `json:"color,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

// Config is a saved plot configuration.
type Config struct {
	ID       *int             `json:"configurationId,omitempty"`
	Name     string           `json:"configurationName"`
	Channels []ChannelSetting `json:"channels"`
	// TimeWindow is the span of the time axis, in seconds.
	TimeWindow   float64 `json:"timeWindow,omitempty"`
	XAxis        string  `json:"xAxis,omitempty"`
	TriggerEvent *int32  `json:"triggerEvent,omitempty"`
	MaxPoints    int     `json:"maxPoints,omitempty"`
	FrameLimit   int     `json:"frameLimit,omitempty"`
}

// DRFs returns the data request of every channel, in order.
func (c *Config) DRFs() []string {
	out := make([]string, len(c.Channels))
	for i, ch := range c.Channels {
		out[i] = ch.DRF
	}
	return out
}

// Store persists plot configurations.
type Store interface {
	// Find returns the general configuration with the given id, or every general configuration if id is nil.
	Find(ctx context.Context, id *int) ([]Config, error)
	// FindUser returns the private configuration of user, or nil if there is none.
	FindUser(ctx context.Context, user string) (*Config, error)
	// Update saves a general configuration and returns its id. A configuration without an id gets a new one.
	// Names must be unique: acsys.ErrNameTaken is returned if another configuration uses the name.
	Update(ctx context.Context, cfg Config) (int, error)
	// UpdateUser saves the private configuration of user. Its id and name are cleared.
	UpdateUser(ctx context.Context, user string, cfg Config) error
	// Remove deletes a general configuration. Removing an unknown id is not an error.
	Remove(ctx context.Context, id int) error
	Close() error
}

// applyUpdate adds cfg to general, keeping names unique, and returns the id it was stored under.
func applyUpdate(general map[int]Config, cfg Config) (int, error) {
	if cfg.ID != nil {
		id := *cfg.ID
		for k, v := range general {
			if k != id && v.Name == cfg.Name {
				return 0, fmt.Errorf("%q: %w", cfg.Name, acsys.ErrNameTaken)
			}
		}
		general[id] = cfg
		return id, nil
	}
	id := 0
	for k, v := range general {
		if v.Name == cfg.Name {
			return 0, fmt.Errorf("%q: %w", cfg.Name, acsys.ErrNameTaken)
		}
		id = max(id, k)
	}
	id++
	cfg.ID = &id
	general[id] = cfg
	return id, nil
}

// userConfig strips the identity of a configuration saved for a user.
func userConfig(cfg Config) Config {
	cfg.ID = nil
	cfg.Name = ""
	return cfg
}
