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

package plotconfig

import (
	"context"
	"sort"
	"sync"
)

// memStore keeps configurations in memory. They are lost on restart.
type memStore struct {
	lock    sync.Mutex
	general map[int]Config
	users   map[string]Config
}

var _ Store = (*memStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore() Store {
	return &memStore{
		general: make(map[int]Config),
		users:   make(map[string]Config),
	}
}

func (s *memStore) Find(_ context.Context, id *int) ([]Config, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if id != nil {
		if cfg, ok := s.general[*id]; ok {
			return []Config{cfg}, nil
		}
		return []Config{}, nil
	}
	out := make([]Config, 0, len(s.general))
	for _, cfg := range s.general {
		out = append(out, cfg)
	}
	sortByID(out)
	return out, nil
}

func (s *memStore) FindUser(_ context.Context, user string) (*Config, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if cfg, ok := s.users[user]; ok {
		return &cfg, nil
	}
	return nil, nil
}

func (s *memStore) Update(_ context.Context, cfg Config) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return applyUpdate(s.general, cfg)
}

func (s *memStore) UpdateUser(_ context.Context, user string, cfg Config) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.users[user] = userConfig(cfg)
	return nil
}

func (s *memStore) Remove(_ context.Context, id int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.general, id)
	return nil
}

func (s *memStore) Close() error {
	return nil
}

func sortByID(cfgs []Config) {
	sort.Slice(cfgs, func(i, j int) bool {
		return *cfgs[i].ID < *cfgs[j].ID
	})
}
