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
	"context"
	"sort"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fermi-ad/extapi-acsys/pkg/shared/logging"
	"github.com/fermi-ad/extapi-acsys/pkg/shared/util"
)

// DefaultIdleTimeout is how long a snapshot waits for another message before deciding the topic is drained.
const DefaultIdleTimeout = 500 * time.Millisecond

// EnvSnapshotIdleTimeout overrides DefaultIdleTimeout.
const EnvSnapshotIdleTimeout = "ALARMS_SNAPSHOT_IDLE_TIMEOUT"

// Snapshotter reads the whole backlog of a topic.
type Snapshotter struct {
	topic       string
	idleTimeout time.Duration
	newConsumer func() (sarama.Consumer, error)
}

// NewSnapshotter returns a snapshotter of topic on brokers.
func NewSnapshotter(brokers []string, topic string, config *sarama.Config) *Snapshotter {
	return &Snapshotter{
		topic:       topic,
		idleTimeout: util.LookupEnvDurationOr(EnvSnapshotIdleTimeout, DefaultIdleTimeout),
		newConsumer: func() (sarama.Consumer, error) {
			return sarama.NewConsumer(brokers, config)
		},
	}
}

type partitionMessage struct {
	partition int32
	offset    int64
	value     string
}

// Snapshot returns every message of the topic, oldest first within a partition, reading until no new message has
// arrived for the idle timeout. Broker failures are logged and reported as ErrBroker.
func (s *Snapshotter) Snapshot(ctx context.Context) ([]string, error) {
	log := logging.FromContext(ctx).With("topic", s.topic)
	consumer, err := s.newConsumer()
	if err != nil {
		log.Errorw("Failed to connect to kafka", zap.Error(err))
		return nil, ErrBroker
	}
	defer func() {
		_ = consumer.Close()
	}()
	partitions, err := consumer.Partitions(s.topic)
	if err != nil {
		log.Errorw("Failed to list partitions", zap.Error(err))
		return nil, ErrBroker
	}

	var (
		lock    sync.Mutex
		msgs    []partitionMessage
		readErr error
		wg      sync.WaitGroup
	)
	for _, p := range partitions {
		pc, err := consumer.ConsumePartition(s.topic, p, sarama.OffsetOldest)
		if err != nil {
			log.Errorw("Failed to consume partition", zap.Int32("partition", p), zap.Error(err))
			return nil, ErrBroker
		}
		wg.Add(1)
		go func(p int32, pc sarama.PartitionConsumer) {
			defer wg.Done()
			defer func() {
				_ = pc.Close()
			}()
			err := s.drain(ctx, pc, func(m *sarama.ConsumerMessage) {
				lock.Lock()
				defer lock.Unlock()
				msgs = append(msgs, partitionMessage{partition: p, offset: m.Offset, value: string(m.Value)})
			})
			if err != nil {
				lock.Lock()
				defer lock.Unlock()
				readErr = multierr.Append(readErr, err)
			}
		}(p, pc)
	}
	wg.Wait()
	if readErr != nil {
		log.Errorw("Failed to read alarm backlog", zap.Error(readErr))
		return nil, ErrBroker
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].partition != msgs[j].partition {
			return msgs[i].partition < msgs[j].partition
		}
		return msgs[i].offset < msgs[j].offset
	})
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.value
	}
	return out, nil
}

// drain reads pc until it stays idle for the idle timeout.
func (s *Snapshotter) drain(ctx context.Context, pc sarama.PartitionConsumer, add func(*sarama.ConsumerMessage)) error {
	idle := time.NewTimer(s.idleTimeout)
	defer idle.Stop()
	errs := pc.Errors()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-idle.C:
			return nil
		case m, ok := <-pc.Messages():
			if !ok {
				return nil
			}
			add(m)
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(s.idleTimeout)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				return err
			}
		}
	}
}
