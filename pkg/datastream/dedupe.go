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

package datastream

import (
	"context"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

// FilterDupes drops readings that are not newer than the latest timestamp already delivered for their channel.
// Replies left empty by the filter are not forwarded.
//
// The first reply of a channel passes unchanged. Readings within a reply are assumed to be in timestamp order.
func FilterDupes(ctx context.Context, in <-chan acsys.ChannelReply) <-chan acsys.ChannelReply {
	out := make(chan acsys.ChannelReply)
	go func() {
		defer close(out)
		f := dupeFilter{latest: make(map[int]float64)}
		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-in:
				if !ok {
					return
				}
				r, ok = f.filter(r)
				if !ok {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case out <- r:
				}
			}
		}
	}()
	return out
}

type dupeFilter struct {
	// latest is the high-water mark per reference id.
	latest map[int]float64
}

func (f *dupeFilter) filter(r acsys.ChannelReply) (acsys.ChannelReply, bool) {
	if len(r.Readings) == 0 {
		return r, false
	}
	last := r.Readings[len(r.Readings)-1].Timestamp
	mark, seen := f.latest[r.Ref]
	if !seen {
		f.latest[r.Ref] = last
		return r, true
	}
	if last > mark {
		f.latest[r.Ref] = last
	}
	start := acsys.PartitionAfter(r.Readings, mark)
	if start > 0 {
		droppedDuplicates.Add(float64(start))
	}
	r.Readings = r.Readings[start:]
	return r, len(r.Readings) > 0
}
