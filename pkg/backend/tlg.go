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
	sourceTLG         = "tlg"
	methodTLGVersion  = "/services.tlg_placement.TlgPlacementService/GetVersion"
	methodDiagnostics = "/services.tlg_placement.TlgPlacementMutationService/DiagnosticsInline"
	methodPlacement   = "/services.tlg_placement.TlgPlacementMutationService/PlacementInline"
)

// TLG is a client of the timeline generator placement service.
type TLG struct {
	*client
}

// NewTLG returns a client of the timeline generator at addr.
func NewTLG(addr string, opts ...Option) (*TLG, error) {
	c, err := newClient(sourceTLG, addr, opts...)
	if err != nil {
		return nil, err
	}
	return &TLG{client: c}, nil
}

// Version returns the version of the service.
func (t *TLG) Version(ctx context.Context) (string, error) {
	var resp versionReply
	if err := t.invoke(ctx, methodTLGVersion, &empty{}, &resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}

// Diagnostics checks a timeline made of devices.
func (t *TLG) Diagnostics(ctx context.Context, devices []acsys.TLGDevice) (acsys.TLGPlacement, error) {
	return t.place(ctx, methodDiagnostics, devices)
}

// Placement places devices on the timeline.
func (t *TLG) Placement(ctx context.Context, devices []acsys.TLGDevice) (acsys.TLGPlacement, error) {
	return t.place(ctx, methodPlacement, devices)
}

func (t *TLG) place(ctx context.Context, method string, devices []acsys.TLGDevice) (acsys.TLGPlacement, error) {
	req := tlgDevices{Devices: make([]tlgDevice, len(devices))}
	for i, d := range devices {
		req.Devices[i] = tlgDevice(d)
	}
	var resp tlgPlacementReply
	if err := t.invoke(ctx, method, &req, &resp); err != nil {
		return acsys.TLGPlacement{}, err
	}
	return acsys.TLGPlacement(resp), nil
}
