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
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	redisclient "github.com/fermi-ad/extapi-acsys/pkg/shared/clients/redis"
)

const (
	// DefaultKeyPrefix namespaces the hashes the store uses.
	DefaultKeyPrefix = "acsys:plotconfig"
	// maxTxRetries bounds optimistic transaction retries when writers race.
	maxTxRetries = 10
)

// redisStore keeps configurations in two redis hashes: general configurations keyed by id and user
// configurations keyed by user name. Values are JSON.
type redisStore struct {
	client     *redisclient.RedisClient
	generalKey string
	usersKey   string
}

var _ Store = (*redisStore)(nil)

// NewRedisStore returns a store backed by client. Keys are prefixed with prefix.
func NewRedisStore(client *redisclient.RedisClient, prefix string) Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &redisStore{
		client:     client,
		generalKey: prefix + ":general",
		usersKey:   prefix + ":users",
	}
}

func (s *redisStore) Find(ctx context.Context, id *int) ([]Config, error) {
	if id != nil {
		raw, err := s.client.Client.HGet(ctx, s.generalKey, strconv.Itoa(*id)).Result()
		if errors.Is(err, redis.Nil) {
			return []Config{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read plot configuration %d: %w", *id, err)
		}
		var cfg Config
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode plot configuration %d: %w", *id, err)
		}
		return []Config{cfg}, nil
	}
	general, err := s.loadGeneral(ctx, s.client.Client)
	if err != nil {
		return nil, err
	}
	out := make([]Config, 0, len(general))
	for _, cfg := range general {
		out = append(out, cfg)
	}
	sortByID(out)
	return out, nil
}

func (s *redisStore) FindUser(ctx context.Context, user string) (*Config, error) {
	raw, err := s.client.Client.HGet(ctx, s.usersKey, user).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration of %q: %w", user, err)
	}
	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration of %q: %w", user, err)
	}
	return &cfg, nil
}

// Update runs the name check and the write in one optimistic transaction over the general hash.
func (s *redisStore) Update(ctx context.Context, cfg Config) (int, error) {
	var id int
	txf := func(tx *redis.Tx) error {
		general, err := s.loadGeneral(ctx, tx)
		if err != nil {
			return err
		}
		if id, err = applyUpdate(general, cfg); err != nil {
			return err
		}
		data, err := json.Marshal(general[id])
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.generalKey, strconv.Itoa(id), data)
			return nil
		})
		return err
	}
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Client.Watch(ctx, txf, s.generalKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return id, err
	}
	return 0, fmt.Errorf("failed to update plot configuration %q: too many concurrent writers", cfg.Name)
}

func (s *redisStore) UpdateUser(ctx context.Context, user string, cfg Config) error {
	data, err := json.Marshal(userConfig(cfg))
	if err != nil {
		return err
	}
	return s.client.Client.HSet(ctx, s.usersKey, user, data).Err()
}

func (s *redisStore) Remove(ctx context.Context, id int) error {
	return s.client.Client.HDel(ctx, s.generalKey, strconv.Itoa(id)).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

func (s *redisStore) loadGeneral(ctx context.Context, c redis.Cmdable) (map[int]Config, error) {
	raw, err := c.HGetAll(ctx, s.generalKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read plot configurations: %w", err)
	}
	general := make(map[int]Config, len(raw))
	for k, v := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid plot configuration id %q: %w", k, err)
		}
		var cfg Config
		if err := json.Unmarshal([]byte(v), &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode plot configuration %d: %w", id, err)
		}
		cfg.ID = &id
		general[id] = cfg
	}
	return general, nil
}
