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

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

const (
	sourceArchiver    = "archiver"
	methodReadArchive = "/acsys.daq.Archiver/ReadArchive"
)

// Archiver reads historical data from the data archiver.
type Archiver struct {
	*client
}

// NewArchiver returns a client of the archiver at addr.
func NewArchiver(addr string, opts ...Option) (*Archiver, error) {
	c, err := newClient(sourceArchiver, addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Archiver{client: c}, nil
}

// ReadArchive streams the archived readings of drfs between start and end, in seconds since the epoch. Every
// channel's data ends with an empty reply, sent by the client if the archiver did not send it. The reply channel is
// closed when the archive has been read; a failure is reported on the error channel first.
func (a *Archiver) ReadArchive(ctx context.Context, drfs []string, start, end float64) (<-chan acsys.ChannelReply, <-chan error) {
	out := make(chan acsys.ChannelReply)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		defer close(out)
		ended := make([]bool, len(drfs))
		req := &archiveRequest{DRFs: drfs, Start: start, End: end}
		err := stream(ctx, a.client, methodReadArchive, req, func(d *dataReply) error {
			r, err := d.toReply()
			if err != nil {
				return acsys.NewUpstreamError(sourceArchiver, fmt.Errorf("malformed reply: %w", err))
			}
			if len(r.Readings) == 0 && r.Ref >= 0 && r.Ref < len(ended) {
				ended[r.Ref] = true
			}
			return send(ctx, out, r)
		})
		if err != nil {
			report(ctx, errCh, err)
			return
		}
		for ref, done := range ended {
			if done {
				continue
			}
			if send(ctx, out, acsys.ChannelReply{Ref: ref}) != nil {
				return
			}
		}
	}()
	return out, errCh
}
