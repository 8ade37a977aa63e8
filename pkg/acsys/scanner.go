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

// ScanRequest starts a wire scan. Positions are in the units of the station's motion controller.
type ScanRequest struct {
	DetectorID       string
	PositionStart    float32
	PositionEnd      float32
	PositionStep     float32
	SamplingDuration float32
	PulsesPerSample  int32
}

// ScanProgress reports the state of a wire scanner station.
type ScanProgress struct {
	Message    string
	DetectorID string
	// StartTime is when the running scan started, in seconds since the Unix epoch.
	StartTime          int32
	CurrentPosition    float32
	ProgressPercentage int32
}

// ScanResult is one sample of a running scan.
type ScanResult struct {
	Progress ScanProgress
	Voltage  []float32
}
