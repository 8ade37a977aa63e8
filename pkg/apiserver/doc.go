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

// Package apiserver is the outward surface of the gateway. Plot configurations, device information, settings and
// alarm snapshots are served over REST; data, clock events, plots and alarms are streamed over websockets.
//
// A stream starts with the client sending one JSON request. The server then sends envelopes of type "data" until
// the stream ends with a "complete" or an "error" envelope and a close frame.
package apiserver
