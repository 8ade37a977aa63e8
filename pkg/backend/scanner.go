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
	"errors"
	"maps"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

const (
	sourceScanner     = "wscan"
	methodStartScan   = "/scanner.Scanner/StartScan"
	methodGetProgress = "/scanner.Scanner/GetProgress"
	methodAbortScan   = "/scanner.Scanner/AbortScan"
)

// knownStations are the wire scanner stations, by detector id. The service has no call listing them.
var knownStations = map[string]string{
	"scl-ws-station1": "Super Conducting Linac Wire Scanner - Station 1",
	"scl-ws-station2": "Super Conducting Linac Wire Scanner - Station 2",
}

var errNoProgress = errors.New("scan result without progress")

// WireScanner is a client of the wire scanner service.
type WireScanner struct {
	*client
}

// NewWireScanner returns a client of the wire scanner service at addr.
func NewWireScanner(addr string, opts ...Option) (*WireScanner, error) {
	c, err := newClient(sourceScanner, addr, opts...)
	if err != nil {
		return nil, err
	}
	return &WireScanner{client: c}, nil
}

// Stations returns the description of every station, by detector id.
func (w *WireScanner) Stations() map[string]string {
	return maps.Clone(knownStations)
}

// Progress returns the state of the station with the given detector id.
func (w *WireScanner) Progress(ctx context.Context, id string) (acsys.ScanProgress, error) {
	var resp scanProgress
	if err := w.invoke(ctx, methodGetProgress, &detectorRequest{DetectorID: id}, &resp); err != nil {
		return acsys.ScanProgress{}, err
	}
	return acsys.ScanProgress(resp), nil
}

// Abort stops any motion of the station and returns its state.
func (w *WireScanner) Abort(ctx context.Context, id string) (acsys.ScanProgress, error) {
	var resp scanProgress
	if err := w.invoke(ctx, methodAbortScan, &detectorRequest{DetectorID: id}, &resp); err != nil {
		return acsys.ScanProgress{}, err
	}
	return acsys.ScanProgress(resp), nil
}

// StartScan runs a scan and streams its samples until the scan ends or ctx is done.
func (w *WireScanner) StartScan(ctx context.Context, req acsys.ScanRequest) (<-chan acsys.ScanResult, <-chan error) {
	out := make(chan acsys.ScanResult)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		defer close(out)
		sr := scanRequest(req)
		err := stream(ctx, w.client, methodStartScan, &sr, func(r *scanResult) error {
			if r.Progress == nil {
				return acsys.NewUpstreamError(sourceScanner, errNoProgress)
			}
			return send(ctx, out, acsys.ScanResult{Progress: acsys.ScanProgress(*r.Progress), Voltage: r.Voltage})
		})
		report(ctx, errCh, err)
	}()
	return out, errCh
}
