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
	sourceDevDB         = "devdb"
	methodGetDeviceInfo = "/acsys.devdb.DevDB/GetDeviceInfo"
)

// DevDB is a client of the device database.
type DevDB struct {
	*client
}

// NewDevDB returns a client of the device database at addr.
func NewDevDB(addr string, opts ...Option) (*DevDB, error) {
	c, err := newClient(sourceDevDB, addr, opts...)
	if err != nil {
		return nil, err
	}
	return &DevDB{client: c}, nil
}

// GetDeviceInfo looks up devices. The result has one entry per requested device, in order; a device the database
// could not resolve carries an error message. If the call itself fails, every entry carries the failure.
func (d *DevDB) GetDeviceInfo(ctx context.Context, devices []string) ([]acsys.DeviceInfo, error) {
	var resp deviceInfoReply
	err := d.invoke(ctx, methodGetDeviceInfo, &deviceInfoRequest{Devices: devices}, &resp)
	out := make([]acsys.DeviceInfo, len(devices))
	if err != nil {
		for i, name := range devices {
			out[i] = acsys.DeviceInfo{Name: name, Error: err.Error()}
		}
		return out, err
	}
	for i, name := range devices {
		if i >= len(resp.Set) {
			out[i] = acsys.DeviceInfo{Name: name, Error: "no reply from device database"}
			continue
		}
		out[i] = resp.Set[i].toDeviceInfo(name)
	}
	return out, nil
}
