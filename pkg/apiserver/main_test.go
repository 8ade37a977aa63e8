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

package apiserver

import (
	"context"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/goleak"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/subscription"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type fakeSubscriptions struct {
	replies []acsys.ChannelReply
	events  []acsys.ClockEvent
	frames  []*acsys.PlotFrame
	err     error

	mu       sync.Mutex
	lastPlot subscription.PlotRequest
	lastData subscription.DataRequest
}

func (f *fakeSubscriptions) requests() (subscription.DataRequest, subscription.PlotRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastData, f.lastPlot
}

func (f *fakeSubscriptions) AcceleratorData(_ context.Context, req subscription.DataRequest, sink func(acsys.ChannelReply) error) error {
	f.mu.Lock()
	f.lastData = req
	f.mu.Unlock()
	for _, r := range f.replies {
		if err := sink(r); err != nil {
			return err
		}
	}
	return f.err
}

func (f *fakeSubscriptions) ReportEvents(ctx context.Context, _ []int32, sink func(acsys.ClockEvent) error) error {
	for _, ev := range f.events {
		if err := sink(ev); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return nil
}

func (f *fakeSubscriptions) plot(req subscription.PlotRequest, sink func(*acsys.PlotFrame) error) error {
	f.mu.Lock()
	f.lastPlot = req
	f.mu.Unlock()
	for _, fr := range f.frames {
		if err := sink(fr); err != nil {
			return err
		}
	}
	return f.err
}

func (f *fakeSubscriptions) StartPlot(_ context.Context, req subscription.PlotRequest, sink func(*acsys.PlotFrame) error) error {
	return f.plot(req, sink)
}

func (f *fakeSubscriptions) StartTriggeredPlot(_ context.Context, req subscription.PlotRequest, sink func(*acsys.PlotFrame) error) error {
	return f.plot(req, sink)
}

type fakeDevices struct {
	info []acsys.DeviceInfo
	err  error
}

func (f *fakeDevices) DeviceInfo(context.Context, []string) ([]acsys.DeviceInfo, error) {
	return f.info, f.err
}

type fakeSetter struct {
	token, device string
	value         acsys.Value
	status        int16
	err           error
}

func (f *fakeSetter) SetDevice(_ context.Context, token, device string, value acsys.Value) (int16, error) {
	f.token, f.device, f.value = token, device, value
	return f.status, f.err
}

type fakeSnapshots struct {
	msgs []string
	err  error
}

func (f *fakeSnapshots) Snapshot(context.Context) ([]string, error) {
	return f.msgs, f.err
}

type fakeScanner struct {
	progress acsys.ScanProgress
	results  []acsys.ScanResult
	err      error

	mu      sync.Mutex
	lastID  string
	lastReq acsys.ScanRequest
}

func (f *fakeScanner) Stations() map[string]string {
	return map[string]string{"scl-ws-station1": "Station 1"}
}

func (f *fakeScanner) call(id string) (acsys.ScanProgress, error) {
	f.mu.Lock()
	f.lastID = id
	f.mu.Unlock()
	return f.progress, f.err
}

func (f *fakeScanner) Progress(_ context.Context, id string) (acsys.ScanProgress, error) {
	return f.call(id)
}

func (f *fakeScanner) Abort(_ context.Context, id string) (acsys.ScanProgress, error) {
	return f.call(id)
}

func (f *fakeScanner) StartScan(ctx context.Context, req acsys.ScanRequest) (<-chan acsys.ScanResult, <-chan error) {
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()
	return produce(ctx, f.results, f.err)
}

type fakeTLG struct {
	placement acsys.TLGPlacement
	err       error
	devices   []acsys.TLGDevice
}

func (f *fakeTLG) Version(context.Context) (string, error) {
	return "1.2.0", f.err
}

func (f *fakeTLG) Diagnostics(_ context.Context, d []acsys.TLGDevice) (acsys.TLGPlacement, error) {
	f.devices = d
	return f.placement, f.err
}

func (f *fakeTLG) Placement(_ context.Context, d []acsys.TLGDevice) (acsys.TLGPlacement, error) {
	f.devices = d
	return f.placement, f.err
}

type fakeXForm struct {
	results []acsys.XFormResult
	err     error

	mu        sync.Mutex
	lastEvent string
	lastExpr  acsys.XFormExpr
}

func (f *fakeXForm) Activate(ctx context.Context, event string, expr acsys.XFormExpr) (<-chan acsys.XFormResult, <-chan error) {
	f.mu.Lock()
	f.lastEvent, f.lastExpr = event, expr
	f.mu.Unlock()
	return produce(ctx, f.results, f.err)
}

func (f *fakeXForm) request() (string, acsys.XFormExpr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastEvent, f.lastExpr
}

// produce streams values then reports err, the way backend clients do.
func produce[T any](ctx context.Context, values []T, err error) (<-chan T, <-chan error) {
	out := make(chan T)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		defer close(out)
		for _, v := range values {
			select {
			case <-ctx.Done():
				return
			case out <- v:
			}
		}
		if err != nil {
			errCh <- err
		}
	}()
	return out, errCh
}
