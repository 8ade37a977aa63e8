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
	"time"

	"google.golang.org/grpc"
)

// DefaultRPCTimeout bounds unary calls unless configured otherwise.
const DefaultRPCTimeout = 5 * time.Second

type options struct {
	rpcTimeout  time.Duration
	dialOptions []grpc.DialOption
}

func defaultOptions() *options {
	return &options{rpcTimeout: DefaultRPCTimeout}
}

// Option configures a backend client.
type Option func(*options)

// WithRPCTimeout sets the deadline of unary calls
func WithRPCTimeout(d time.Duration) Option {
	return func(o *options) {
		o.rpcTimeout = d
	}
}

// WithDialOptions appends gRPC dial options, e.g. a custom dialer in tests
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *options) {
		o.dialOptions = append(o.dialOptions, opts...)
	}
}
