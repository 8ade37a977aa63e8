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

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

// Archiver reads historical readings. Every channel's data must end with an empty reply.
type Archiver interface {
	ReadArchive(ctx context.Context, drfs []string, start, end float64) (<-chan acsys.ChannelReply, <-chan error)
}

// LiveSource acquires live readings.
type LiveSource interface {
	AcquireDevices(ctx context.Context, drfs []string) (<-chan acsys.ChannelReply, <-chan error)
}

// ClockSource reports clock events.
type ClockSource interface {
	Subscribe(ctx context.Context, events []int32) (<-chan acsys.ClockEvent, <-chan error)
}

// UnitsSource knows the engineering units of data requests.
type UnitsSource interface {
	Units(ctx context.Context, drfs []string) []string
}
