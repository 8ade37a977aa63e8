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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

func TestWireScanner_Stations(t *testing.T) {
	w, err := NewWireScanner(bufTarget, serve(t, &fakeServices{})...)
	require.NoError(t, err)
	defer w.Close()

	stations := w.Stations()
	assert.Len(t, stations, 2)
	assert.Contains(t, stations, "scl-ws-station1")
	// Callers get their own copy.
	delete(stations, "scl-ws-station1")
	assert.Len(t, w.Stations(), 2)
}

func TestWireScanner_ProgressAndAbort(t *testing.T) {
	f := &fakeServices{progress: scanProgress{Message: "scanning", DetectorID: "scl-ws-station1", StartTime: 1700000000, CurrentPosition: 12.5, ProgressPercentage: 40}}
	w, err := NewWireScanner(bufTarget, serve(t, f)...)
	require.NoError(t, err)
	defer w.Close()

	p, err := w.Progress(context.Background(), "scl-ws-station1")
	require.NoError(t, err)
	assert.Equal(t, acsys.ScanProgress{Message: "scanning", DetectorID: "scl-ws-station1", StartTime: 1700000000, CurrentPosition: 12.5, ProgressPercentage: 40}, p)
	assert.Equal(t, &detectorRequest{DetectorID: "scl-ws-station1"}, f.lastRequest)

	p, err = w.Abort(context.Background(), "scl-ws-station1")
	require.NoError(t, err)
	assert.Equal(t, int32(40), p.ProgressPercentage)
}

func TestWireScanner_StartScan(t *testing.T) {
	f := &fakeServices{scan: []scanResult{
		{Progress: &scanProgress{DetectorID: "scl-ws-station2", ProgressPercentage: 50}, Voltage: []float32{0.1, 0.2}},
		{Progress: &scanProgress{DetectorID: "scl-ws-station2", ProgressPercentage: 100}, Voltage: []float32{0.3}},
	}}
	w, err := NewWireScanner(bufTarget, serve(t, f)...)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, errCh := w.StartScan(ctx, acsys.ScanRequest{DetectorID: "scl-ws-station2", PositionEnd: 10, PositionStep: 0.5})
	var got []acsys.ScanResult
	for r := range out {
		got = append(got, r)
	}
	require.NoError(t, <-errCh)
	require.Len(t, got, 2)
	assert.Equal(t, []float32{0.1, 0.2}, got[0].Voltage)
	assert.Equal(t, int32(100), got[1].Progress.ProgressPercentage)
	assert.Equal(t, &scanRequest{DetectorID: "scl-ws-station2", PositionEnd: 10, PositionStep: 0.5}, f.lastRequest)
}

func TestWireScanner_StartScanWithoutProgress(t *testing.T) {
	w, err := NewWireScanner(bufTarget, serve(t, &fakeServices{scan: []scanResult{{Voltage: []float32{1}}}})...)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, errCh := w.StartScan(ctx, acsys.ScanRequest{DetectorID: "scl-ws-station1"})
	for range out {
		t.Fatal("no result expected")
	}
	err = <-errCh
	assert.ErrorIs(t, err, errNoProgress)
	var upstream *acsys.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "wscan", upstream.Source)
}

func TestTLG(t *testing.T) {
	f := &fakeServices{placement: tlgPlacementReply{Status: 0, Message: "ok", Placement: []int32{1, 2}, Parameters: []int32{7}}}
	c, err := NewTLG(bufTarget, serve(t, f)...)
	require.NoError(t, err)
	defer c.Close()

	v, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", v)

	devices := []acsys.TLGDevice{{Type: "event", Name: "beam", Device: "G:TLG01", Data: []int32{0x02}}}
	p, err := c.Placement(context.Background(), devices)
	require.NoError(t, err)
	assert.Equal(t, acsys.TLGPlacement{Message: "ok", Placement: []int32{1, 2}, Parameters: []int32{7}}, p)
	assert.Equal(t, &tlgDevices{Devices: []tlgDevice{{Type: "event", Name: "beam", Device: "G:TLG01", Data: []int32{0x02}}}}, f.lastRequest)

	p, err = c.Diagnostics(context.Background(), devices)
	require.NoError(t, err)
	assert.Equal(t, "ok", p.Message)
}

func TestTLG_Unavailable(t *testing.T) {
	c, err := NewTLG(bufTarget, append(serve(t, &fakeServices{}), WithRPCTimeout(50*time.Millisecond))...)
	require.NoError(t, err)
	defer c.Close()

	// Nothing implements this method on the fake server.
	var resp versionReply
	err = c.invoke(context.Background(), "/services.tlg_placement.TlgPlacementService/Missing", &empty{}, &resp)
	var upstream *acsys.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "tlg", upstream.Source)
	assert.Contains(t, err.Error(), "Unimplemented")
}

func float(v float64) *float64 {
	return &v
}

func TestXForm_Activate(t *testing.T) {
	f := &fakeServices{xform: []xformResult{{Timestamp: 1500, Value: float(72.5)}, {Timestamp: 2500, Value: float(73)}}}
	x, err := NewXForm(bufTarget, serve(t, f)...)
	require.NoError(t, err)
	defer x.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	expr := acsys.XFormExpr{Average: &acsys.XFormAverage{Expr: acsys.XFormExpr{Device: "M:OUTTMP"}, N: 5}}
	out, errCh := x.Activate(ctx, "02", expr)
	var got []acsys.XFormResult
	for r := range out {
		got = append(got, r)
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, []acsys.XFormResult{{Timestamp: 1.5, Value: 72.5}, {Timestamp: 2.5, Value: 73}}, got)
	assert.Equal(t, &xformExpr{
		Op:    &xformOperation{Avg: &xformAverage{N: 5, Op: &xformOperation{Device: "M:OUTTMP"}}},
		Event: "02",
	}, f.lastRequest)
}

func TestXForm_ActivateFailures(t *testing.T) {
	f := &fakeServices{xform: []xformResult{{Timestamp: 1000, Error: "device offline"}}}
	x, err := NewXForm(bufTarget, serve(t, f)...)
	require.NoError(t, err)
	defer x.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, errCh := x.Activate(ctx, "02", acsys.XFormExpr{Device: "M:OUTTMP"})
	for range out {
		t.Fatal("no result expected")
	}
	assert.ErrorContains(t, <-errCh, "device offline")

	out, errCh = x.Activate(ctx, "02", acsys.XFormExpr{})
	for range out {
		t.Fatal("no result expected")
	}
	assert.ErrorIs(t, <-errCh, acsys.ErrBadExpression)
}
