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
	"fmt"

	"google.golang.org/grpc/metadata"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

const (
	sourceDPM     = "dpm"
	methodAcquire = "/acsys.daq.DPM/Acquire"
	methodSet     = "/acsys.daq.DPM/Set"
)

// SetFailed is the status reported when a setting could not be delivered.
const SetFailed int16 = -1

// DPM is a client of the data pool manager, which acquires live data and applies settings.
type DPM struct {
	*client
}

// NewDPM returns a client of the data pool manager at addr.
func NewDPM(addr string, opts ...Option) (*DPM, error) {
	c, err := newClient(sourceDPM, addr, opts...)
	if err != nil {
		return nil, err
	}
	return &DPM{client: c}, nil
}

// AcquireDevices streams live readings of drfs until ctx is done or the service ends the stream.
func (d *DPM) AcquireDevices(ctx context.Context, drfs []string) (<-chan acsys.ChannelReply, <-chan error) {
	out := make(chan acsys.ChannelReply)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		defer close(out)
		err := stream(ctx, d.client, methodAcquire, &acquireRequest{DRFs: drfs}, func(dr *dataReply) error {
			r, err := dr.toReply()
			if err != nil {
				return acsys.NewUpstreamError(sourceDPM, fmt.Errorf("malformed reply: %w", err))
			}
			return send(ctx, out, r)
		})
		report(ctx, errCh, err)
	}()
	return out, errCh
}

// SetDevice applies value to device and returns the ACNET status of the setting. The bearer token is forwarded to
// the service, which does the authorization.
func (d *DPM) SetDevice(ctx context.Context, token, device string, value acsys.Value) (int16, error) {
	v, err := fromValue(value)
	if err != nil {
		return SetFailed, err
	}
	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	}
	var resp settingReply
	if err := d.invoke(ctx, methodSet, &settingRequest{Device: device, Value: v}, &resp); err != nil {
		return SetFailed, err
	}
	return resp.Status, nil
}
