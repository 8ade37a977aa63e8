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
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

// fakeServices implements every ACSys service the gateway calls.
type fakeServices struct {
	mu          sync.Mutex
	archive     []dataReply
	archiveErr  error
	live        []dataReply
	events      []clockReply
	info        deviceInfoReply
	infoDelay   time.Duration
	setStatus   int16
	lastSetting settingRequest
	lastAuth    []string
	lastRequest any
	scan        []scanResult
	progress    scanProgress
	placement   tlgPlacementReply
	xform       []xformResult
}

func (f *fakeServices) record(req any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRequest = req
}

func streamHandler[Req, Resp any](f *fakeServices, replies func() []Resp, endless bool, fail func() error) grpc.StreamHandler {
	return func(_ any, ss grpc.ServerStream) error {
		req := new(Req)
		if err := ss.RecvMsg(req); err != nil {
			return err
		}
		f.record(req)
		for i := range replies() {
			r := replies()[i]
			if err := ss.SendMsg(&r); err != nil {
				return err
			}
		}
		if fail != nil {
			if err := fail(); err != nil {
				return err
			}
		}
		if endless {
			<-ss.Context().Done()
		}
		return nil
	}
}

func (f *fakeServices) register(s *grpc.Server) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "acsys.daq.Archiver",
		HandlerType: (*any)(nil),
		Streams: []grpc.StreamDesc{{
			StreamName:    "ReadArchive",
			ServerStreams: true,
			Handler: streamHandler[archiveRequest](f, func() []dataReply { return f.archive }, false,
				func() error { return f.archiveErr }),
		}},
	}, f)
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "acsys.daq.DPM",
		HandlerType: (*any)(nil),
		Streams: []grpc.StreamDesc{{
			StreamName:    "Acquire",
			ServerStreams: true,
			Handler:       streamHandler[acquireRequest](f, func() []dataReply { return f.live }, true, nil),
		}},
		Methods: []grpc.MethodDesc{{
			MethodName: "Set",
			Handler: func(_ any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
				var req settingRequest
				if err := dec(&req); err != nil {
					return nil, err
				}
				md, _ := metadata.FromIncomingContext(ctx)
				f.mu.Lock()
				defer f.mu.Unlock()
				f.lastSetting = req
				f.lastAuth = md.Get("authorization")
				return &settingReply{Status: f.setStatus}, nil
			},
		}},
	}, f)
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "acsys.clock.Clock",
		HandlerType: (*any)(nil),
		Streams: []grpc.StreamDesc{{
			StreamName:    "Subscribe",
			ServerStreams: true,
			Handler:       streamHandler[clockRequest](f, func() []clockReply { return f.events }, true, nil),
		}},
	}, f)
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "acsys.devdb.DevDB",
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: "GetDeviceInfo",
			Handler: func(_ any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
				var req deviceInfoRequest
				if err := dec(&req); err != nil {
					return nil, err
				}
				f.record(&req)
				if f.infoDelay > 0 {
					select {
					case <-ctx.Done():
						return nil, ctx.Err()
					case <-time.After(f.infoDelay):
					}
				}
				return &f.info, nil
			},
		}},
	}, f)
	unary := func(newReq func() any, reply func() any) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
		return func(_ any, _ context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
			req := newReq()
			if err := dec(req); err != nil {
				return nil, err
			}
			f.record(req)
			return reply(), nil
		}
	}
	progress := func() any { return &f.progress }
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "scanner.Scanner",
		HandlerType: (*any)(nil),
		Streams: []grpc.StreamDesc{{
			StreamName:    "StartScan",
			ServerStreams: true,
			Handler:       streamHandler[scanRequest](f, func() []scanResult { return f.scan }, false, nil),
		}},
		Methods: []grpc.MethodDesc{
			{MethodName: "GetProgress", Handler: unary(func() any { return &detectorRequest{} }, progress)},
			{MethodName: "AbortScan", Handler: unary(func() any { return &detectorRequest{} }, progress)},
		},
	}, f)
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "services.tlg_placement.TlgPlacementService",
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: "GetVersion",
			Handler:    unary(func() any { return &empty{} }, func() any { return &versionReply{Version: "1.2.0"} }),
		}},
	}, f)
	placement := func() any { return &f.placement }
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "services.tlg_placement.TlgPlacementMutationService",
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "DiagnosticsInline", Handler: unary(func() any { return &tlgDevices{} }, placement)},
			{MethodName: "PlacementInline", Handler: unary(func() any { return &tlgDevices{} }, placement)},
		},
	}, f)
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "fnal.xform.XFormApi",
		HandlerType: (*any)(nil),
		Streams: []grpc.StreamDesc{{
			StreamName:    "ActivateExpression",
			ServerStreams: true,
			Handler:       streamHandler[xformExpr](f, func() []xformResult { return f.xform }, false, nil),
		}},
	}, f)
}

// serve starts the fake services on an in-memory listener and returns the client options to reach them.
func serve(t *testing.T, f *fakeServices) []Option {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.ForceServerCodec(jsonCodec{}))
	f.register(s)
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)
	return []Option{WithDialOptions(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))}
}

const bufTarget = "passthrough:///bufnet"

func scalarReply(ref int, ts ...float64) dataReply {
	d := dataReply{Ref: ref, Readings: []wireReading{}}
	for _, t := range ts {
		d.Readings = append(d.Readings, wireReading{Timestamp: t, Value: wireValue{Kind: kindScalar, Scalar: t}})
	}
	return d
}

func drain(t *testing.T, out <-chan acsys.ChannelReply, errCh <-chan error) ([]acsys.ChannelReply, error) {
	t.Helper()
	var got []acsys.ChannelReply
	for r := range out {
		got = append(got, r)
	}
	return got, <-errCh
}

func TestArchiver_ReadArchive(t *testing.T) {
	f := &fakeServices{archive: []dataReply{scalarReply(0, 1, 2), scalarReply(1, 1), scalarReply(0)}}
	a, err := NewArchiver(bufTarget, serve(t, f)...)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, errCh := a.ReadArchive(ctx, []string{"M:OUTTMP", "G:AMANDA"}, 10, 20)
	got, err := drain(t, out, errCh)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, acsys.ChannelReply{Ref: 0, Readings: []acsys.Reading{{Timestamp: 1, Value: acsys.Scalar(1)}, {Timestamp: 2, Value: acsys.Scalar(2)}}}, got[0])
	assert.True(t, got[2].IsEndOfArchive())
	// The archiver never ended channel 1 so the client did.
	assert.Equal(t, acsys.ChannelReply{Ref: 1}, got[3])
	assert.Equal(t, &archiveRequest{DRFs: []string{"M:OUTTMP", "G:AMANDA"}, Start: 10, End: 20}, f.lastRequest)
}

func TestArchiver_ReadArchiveFailure(t *testing.T) {
	f := &fakeServices{archive: []dataReply{scalarReply(0, 1)}, archiveErr: status.Error(codes.Unavailable, "archiver offline")}
	a, err := NewArchiver(bufTarget, serve(t, f)...)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, errCh := a.ReadArchive(ctx, []string{"M:OUTTMP"}, 0, 1)
	got, err := drain(t, out, errCh)
	assert.Len(t, got, 1)
	var upstream *acsys.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "archiver", upstream.Source)
	assert.Contains(t, err.Error(), "archiver offline")
}

func TestArchiver_MalformedValue(t *testing.T) {
	f := &fakeServices{archive: []dataReply{{Ref: 0, Readings: []wireReading{{Timestamp: 1, Value: wireValue{Kind: "bogus"}}}}}}
	a, err := NewArchiver(bufTarget, serve(t, f)...)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, errCh := a.ReadArchive(ctx, []string{"M:OUTTMP"}, 0, 1)
	got, err := drain(t, out, errCh)
	assert.Empty(t, got)
	assert.ErrorContains(t, err, "unknown value kind")
}

func TestDPM_AcquireDevicesUntilCancelled(t *testing.T) {
	f := &fakeServices{live: []dataReply{scalarReply(0, 5), scalarReply(0, 6)}}
	d, err := NewDPM(bufTarget, serve(t, f)...)
	require.NoError(t, err)
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	out, errCh := d.AcquireDevices(ctx, []string{"M:OUTTMP@p,1000"})
	assert.Equal(t, 5.0, (<-out).Readings[0].Timestamp)
	assert.Equal(t, 6.0, (<-out).Readings[0].Timestamp)
	cancel()
	got, err := drain(t, out, errCh)
	assert.Empty(t, got)
	assert.NoError(t, err)
}

func TestDPM_SetDevice(t *testing.T) {
	f := &fakeServices{setStatus: 0}
	d, err := NewDPM(bufTarget, serve(t, f)...)
	require.NoError(t, err)
	defer d.Close()

	st, err := d.SetDevice(context.Background(), "abc123", "Z:CACHE", acsys.Scalar(4.5))
	require.NoError(t, err)
	assert.Equal(t, int16(0), st)
	assert.Equal(t, "Z:CACHE", f.lastSetting.Device)
	assert.Equal(t, wireValue{Kind: kindScalar, Scalar: 4.5}, f.lastSetting.Value)
	assert.Equal(t, []string{"Bearer abc123"}, f.lastAuth)
}

func TestDPM_SetDeviceUnsupportedValue(t *testing.T) {
	d, err := NewDPM(bufTarget, serve(t, &fakeServices{})...)
	require.NoError(t, err)
	defer d.Close()

	st, err := d.SetDevice(context.Background(), "", "Z:CACHE", nil)
	assert.Error(t, err)
	assert.Equal(t, SetFailed, st)
}

func TestClock_Subscribe(t *testing.T) {
	f := &fakeServices{events: []clockReply{{Events: []wireClockEvent{{Event: 0x02, Timestamp: 1.5}, {Event: 0x0F, Timestamp: 1.6}}}}}
	c, err := NewClock(bufTarget, serve(t, f)...)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out, _ := c.Subscribe(ctx, []int32{0x02, 0x0F})
	assert.Equal(t, acsys.ClockEvent{Event: 0x02, Timestamp: 1.5}, <-out)
	assert.Equal(t, acsys.ClockEvent{Event: 0x0F, Timestamp: 1.6}, <-out)
	assert.Equal(t, &clockRequest{Events: []int32{0x02, 0x0F}}, f.lastRequest)
}

func TestDevDB_GetDeviceInfo(t *testing.T) {
	f := &fakeServices{info: deviceInfoReply{Set: []wireDeviceInfo{
		{
			Name: "M:OUTTMP", Description: "Outdoor temperature",
			Reading:    &wireProperty{PrimaryUnits: "volts", CommonUnits: "degF", PIndex: 2, CIndex: 6, Coeff: []float64{0.5, 32}},
			DigControl: &wireDigControl{Cmds: []wireDigControlItem{{Value: 1, ShortName: "RESET", LongName: "Reset supply"}}},
			DigStatus: &wireDigStatus{
				Bits:    []wireDigStatusItem{{MaskVal: 0x1, MatchVal: 0x1, ShortName: "On", TrueStr: "ON", TrueChar: ".", FalseStr: "OFF", FalseChar: "*"}},
				ExtBits: []wireDigExtStatusItem{{BitNo: 3, Name0: "local", Name1: "remote", Description: "Control mode"}},
			},
		},
		{Name: "M:BOGUS", Error: "DBM_NOREC"},
	}}}
	d, err := NewDevDB(bufTarget, serve(t, f)...)
	require.NoError(t, err)
	defer d.Close()

	info, err := d.GetDeviceInfo(context.Background(), []string{"M:OUTTMP", "M:BOGUS", "M:EXTRA"})
	require.NoError(t, err)
	require.Len(t, info, 3)
	assert.Equal(t, "degF", info[0].Units())
	assert.Equal(t, "Outdoor temperature", info[0].Description)
	assert.Equal(t, uint32(2), info[0].Reading.PrimaryIndex)
	assert.Equal(t, uint32(6), info[0].Reading.CommonIndex)
	assert.Equal(t, []float64{0.5, 32}, info[0].Reading.Coeff)
	assert.Nil(t, info[0].Setting)
	require.NotNil(t, info[0].DigControl)
	assert.Equal(t, []acsys.DigControlEntry{{Value: 1, ShortName: "RESET", LongName: "Reset supply"}}, info[0].DigControl.Entries)
	require.NotNil(t, info[0].DigStatus)
	assert.Equal(t, "ON", info[0].DigStatus.Entries[0].TrueStr)
	assert.Equal(t, uint32(0x1), info[0].DigStatus.Entries[0].MaskVal)
	assert.Equal(t, acsys.DigExtStatusEntry{BitNo: 3, Name0: "local", Name1: "remote", Description: "Control mode"}, info[0].DigStatus.ExtEntries[0])
	assert.Nil(t, info[1].DigStatus)
	assert.Equal(t, "DBM_NOREC", info[1].Error)
	assert.NotEmpty(t, info[2].Error)
}

func TestDevDB_TimeoutFailsEveryDevice(t *testing.T) {
	f := &fakeServices{infoDelay: time.Second}
	opts := append(serve(t, f), WithRPCTimeout(50*time.Millisecond))
	d, err := NewDevDB(bufTarget, opts...)
	require.NoError(t, err)
	defer d.Close()

	info, err := d.GetDeviceInfo(context.Background(), []string{"M:OUTTMP", "G:AMANDA"})
	require.Error(t, err)
	assert.Equal(t, err.Error(), info[0].Error)
	assert.Equal(t, err.Error(), info[1].Error)
	assert.Contains(t, err.Error(), "DeadlineExceeded")
}

func TestClient_IsHealthy(t *testing.T) {
	d, err := NewDevDB(bufTarget, serve(t, &fakeServices{})...)
	require.NoError(t, err)
	assert.NoError(t, d.IsHealthy(context.Background()))
	require.NoError(t, d.Close())
	assert.Error(t, d.IsHealthy(context.Background()))
}
