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
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func reply(ref int, ts ...float64) acsys.ChannelReply {
	r := acsys.ChannelReply{Ref: ref}
	for _, t := range ts {
		r.Readings = append(r.Readings, acsys.Reading{Timestamp: t, Value: acsys.Scalar(t)})
	}
	return r
}

// fakeSource plays back canned replies, then either sends err or holds the stream open until ctx is done.
type fakeSource struct {
	replies []acsys.ChannelReply
	err     error
	hold    bool

	mu         sync.Mutex
	drfs       []string
	start, end float64
	calls      int
}

func (f *fakeSource) stream(ctx context.Context, drfs []string) (<-chan acsys.ChannelReply, <-chan error) {
	f.mu.Lock()
	f.drfs = drfs
	f.calls++
	f.mu.Unlock()
	out := make(chan acsys.ChannelReply)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		defer close(out)
		for _, r := range f.replies {
			select {
			case <-ctx.Done():
				return
			case out <- r:
			}
		}
		if f.err != nil {
			errCh <- f.err
			return
		}
		if f.hold {
			<-ctx.Done()
		}
	}()
	return out, errCh
}

func (f *fakeSource) AcquireDevices(ctx context.Context, drfs []string) (<-chan acsys.ChannelReply, <-chan error) {
	return f.stream(ctx, drfs)
}

func (f *fakeSource) ReadArchive(ctx context.Context, drfs []string, start, end float64) (<-chan acsys.ChannelReply, <-chan error) {
	f.mu.Lock()
	f.start, f.end = start, end
	f.mu.Unlock()
	return f.stream(ctx, drfs)
}

func (f *fakeSource) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drfs
}

// fakeClock plays back canned events and holds the stream open until ctx is done.
type fakeClock struct {
	events []acsys.ClockEvent
	err    error

	mu         sync.Mutex
	subscribed []int32
}

func (f *fakeClock) Subscribe(ctx context.Context, events []int32) (<-chan acsys.ClockEvent, <-chan error) {
	f.mu.Lock()
	f.subscribed = events
	f.mu.Unlock()
	out := make(chan acsys.ClockEvent)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		defer close(out)
		for _, ev := range f.events {
			select {
			case <-ctx.Done():
				return
			case out <- ev:
			}
		}
		if f.err != nil {
			errCh <- f.err
			return
		}
		<-ctx.Done()
	}()
	return out, errCh
}

type fakeUnits map[string]string

func (f fakeUnits) Units(_ context.Context, drfs []string) []string {
	out := make([]string, len(drfs))
	for i, d := range drfs {
		out[i] = f[d]
	}
	return out
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func float(f float64) *float64 {
	return &f
}
