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
	"sync"

	"go.uber.org/zap"
)

// DefaultSubscriptionBuffer is the number of messages a slow client may fall behind before messages are dropped
// for it.
const DefaultSubscriptionBuffer = 20

// Subscription receives broadcast messages until it is cancelled or the hub closes it.
type Subscription struct {
	hub *Hub
	ch  chan string
}

// Messages returns the channel of the subscription. It is closed when the subscription ends.
func (s *Subscription) Messages() <-chan string {
	return s.ch
}

// Cancel ends the subscription. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.hub.remove(s)
}

// Hub fans messages out to every subscription. A subscription that is not drained fast enough loses messages
// rather than holding up the others.
type Hub struct {
	log    *zap.SugaredLogger
	buffer int
	lock   sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewHub returns a hub whose subscriptions buffer up to buffer messages.
func NewHub(log *zap.SugaredLogger, buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriptionBuffer
	}
	return &Hub{log: log, buffer: buffer, subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscription. Subscribing to a closed hub returns an already closed subscription.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{hub: h, ch: make(chan string, h.buffer)}
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.closed {
		close(s.ch)
		return s
	}
	h.subs[s] = struct{}{}
	activeSubscriptions.Inc()
	return s
}

// Publish delivers msg to every subscription.
func (h *Hub) Publish(msg string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	for s := range h.subs {
		select {
		case s.ch <- msg:
		default:
			laggedMessages.Inc()
			h.log.Debug("Dropping alarm message for a slow subscriber")
		}
	}
}

// Reset sends notice, if not empty, to every current subscription and closes them. The hub stays usable.
func (h *Hub) Reset(notice string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.closeAll(notice)
}

// Close ends every subscription and refuses new ones.
func (h *Hub) Close() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.closeAll("")
	h.closed = true
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.subs)
}

func (h *Hub) closeAll(notice string) {
	for s := range h.subs {
		if notice != "" {
			select {
			case s.ch <- notice:
			default:
			}
		}
		close(s.ch)
		delete(h.subs, s)
		activeSubscriptions.Dec()
	}
}

func (h *Hub) remove(s *Subscription) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.ch)
	activeSubscriptions.Dec()
}
