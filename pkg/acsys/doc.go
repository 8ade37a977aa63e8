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

// Package acsys defines the data model shared by the gateway: device readings, the replies that route them to a
// channel of a request, clock events and the plot frames handed to plotting clients.
//
// A request names its channels by position. Every ChannelReply carries the index (Ref) of the channel it belongs to
// and a batch of readings sorted by timestamp. Timestamps are seconds since the Unix epoch, as float64, which is the
// unit used by the archiver, the data pool manager and the clock service.
package acsys
