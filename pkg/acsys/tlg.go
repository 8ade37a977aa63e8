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

package acsys

// TLGDevice is one device of a timeline placement request.
type TLGDevice struct {
	Type   string
	Name   string
	Device string
	Data   []int32
}

// TLGPlacement is the answer of the timeline generator to a diagnostics or placement request.
type TLGPlacement struct {
	Status      int32
	Message     string
	Diagnostics []int32
	Placement   []int32
	Generated   []int32
	Parameters  []int32
}
