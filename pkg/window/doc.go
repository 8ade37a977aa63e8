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

// Package window groups the readings of a plot subscription into plot frames.
//
// Two windowers are provided, both fed by the ordered reply stream of package datastream:
//   - Continuous emits a frame as soon as every channel of the plot has contributed data or a status. Large replies
//     are decimated so a frame never carries more than the requested number of points per reply.
//   - Triggered aligns frames on a clock event. Points are collected after a trigger fires and a frame is cut at the
//     next trigger, or periodically on the heartbeat event, with timestamps made relative to the trigger.
//
// Frames are handed off, never shared: once a frame is sent the windower starts a fresh one with the same channel
// metadata.
package window
