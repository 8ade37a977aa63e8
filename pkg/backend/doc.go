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

// Package backend contains the gRPC clients of the ACSys services the gateway fronts: the data archiver, the data
// pool manager (live acquisition and settings), the clock event service and the device database.
//
// The services speak JSON over gRPC. Calls are made without generated stubs: every method is invoked by name with a
// JSON codec forced on the call, which keeps the gateway independent of the services' build.
package backend
