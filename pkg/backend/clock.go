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

package backend

import (
	"context"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

const (
	sourceClock     = "clock"
	methodSubscribe = "/acsys.clock.Clock/Subscribe"
)

// Clock is a client of the clock event service.
type Clock struct {
	*client
}

// NewClock returns a client of the clock event service at addr.
func NewClock(addr string, opts ...Option) (*Clock, error) {
	c, err := newClient(sourceClock, addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Clock{client: c}, nil
}

// Subscribe streams occurrences of the given clock events until ctx is done or the service ends the stream.
func (c *Clock) Subscribe(ctx context.Context, events []int32) (<-chan acsys.ClockEvent, <-chan error) {
	out := make(chan acsys.ClockEvent)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		defer close(out)
		err := stream(ctx, c.client, methodSubscribe, &clockRequest{Events: events}, func(r *clockReply) error {
			for _, ev := range r.Events {
				if err := send(ctx, out, acsys.ClockEvent{Event: ev.Event, Timestamp: ev.Timestamp}); err != nil {
					return err
				}
			}
			return nil
		})
		report(ctx, errCh, err)
	}()
	return out, errCh
}
