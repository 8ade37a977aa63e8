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

// Package alarms relays the accelerator alarm feed, a Kafka topic of JSON messages, to gateway clients.
//
// A Subscriber consumes the topic for the lifetime of the process and fans every message out to the clients that
// are currently subscribed. A Snapshot reads the topic from the beginning for clients that want the backlog.
package alarms
