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
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fermi-ad/extapi-acsys/pkg/shared/logging"
)

// retryInterval is how long the subscriber waits before rejoining the group after a failure.
const retryInterval = 5 * time.Second

// consumerHandler publishes every claimed message to the hub.
type consumerHandler struct {
	hub         *Hub
	ready       chan struct{}
	readyCloser sync.Once
	logger      *zap.SugaredLogger
}

func newConsumerHandler(hub *Hub, logger *zap.SugaredLogger) *consumerHandler {
	return &consumerHandler{
		hub:    hub,
		ready:  make(chan struct{}),
		logger: logger,
	}
}

// Setup is run at the beginning of a new session, before ConsumeClaim
func (h *consumerHandler) Setup(sarama.ConsumerGroupSession) error {
	h.readyCloser.Do(func() {
		close(h.ready)
	})
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
func (h *consumerHandler) Cleanup(sess sarama.ConsumerGroupSession) error {
	sess.Commit()
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (h *consumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			consumedMessages.Inc()
			h.hub.Publish(string(msg.Value))
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			h.logger.Info("context was canceled, stopping consumer claim")
			return nil
		}
	}
}

// Subscriber follows the alarm topic and broadcasts it to every subscription of its hub. Each gateway process
// joins its own consumer group so every instance sees every message.
type Subscriber struct {
	topic   string
	group   string
	brokers []string
	config  *sarama.Config
	hub     *Hub
	handler *consumerHandler
	logger  *zap.SugaredLogger
	// newGroup is replaced in tests.
	newGroup func(brokers []string, group string, config *sarama.Config) (sarama.ConsumerGroup, error)
}

// NewSubscriber returns a subscriber of topic. Nothing is consumed until Start is called.
func NewSubscriber(ctx context.Context, brokers []string, topic string, config *sarama.Config) *Subscriber {
	logger := logging.FromContext(ctx).With("topic", topic)
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true
	hub := NewHub(logger, DefaultSubscriptionBuffer)
	return &Subscriber{
		topic:    topic,
		group:    fmt.Sprintf("acsys-gateway-%s", uuid.NewString()),
		brokers:  brokers,
		config:   config,
		hub:      hub,
		handler:  newConsumerHandler(hub, logger),
		logger:   logger,
		newGroup: sarama.NewConsumerGroup,
	}
}

// Subscribe returns a new subscription to the feed.
func (s *Subscriber) Subscribe() *Subscription {
	return s.hub.Subscribe()
}

// Start consumes the topic until ctx is done. Every failure closes the open subscriptions with a notice; the
// subscriber then rejoins after a pause. The returned channel is closed once the subscriber has stopped.
func (s *Subscriber) Start(ctx context.Context) <-chan struct{} {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		defer s.hub.Close()
		for {
			if err := s.consume(ctx); err != nil {
				consumerErrors.Inc()
				s.logger.Errorw("Alarm consumer failed", zap.Error(err))
				s.hub.Reset(streamClosedNotice)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryInterval):
			}
		}
	}()
	return stopped
}

func (s *Subscriber) consume(ctx context.Context) error {
	client, err := s.newGroup(s.brokers, s.group, s.config)
	if err != nil {
		return fmt.Errorf("failed to join consumer group: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()
	s.logger.Infow("Joined alarm consumer group", zap.String("consumerGroupName", s.group), zap.Strings("brokers", s.brokers))

	errCh := make(chan error, 1)
	go func() {
		for {
			// Consume returns on every rebalance and must be called again.
			if err := client.Consume(ctx, []string{s.topic}, s.handler); err != nil {
				errCh <- err
				return
			}
			if ctx.Err() != nil {
				errCh <- nil
				return
			}
		}
	}()
	for {
		select {
		case err := <-errCh:
			return err
		case cErr, ok := <-client.Errors():
			if !ok {
				return <-errCh
			}
			s.logger.Warnw("Kafka consumer error", zap.Error(cErr))
		}
	}
}

// IsHealthy reports ErrBroker once the subscriber has been unable to join its group.
func (s *Subscriber) IsHealthy(context.Context) error {
	select {
	case <-s.handler.ready:
		return nil
	default:
		return ErrBroker
	}
}
