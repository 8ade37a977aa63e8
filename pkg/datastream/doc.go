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

// Package datastream holds the stages that turn raw archiver and live replies into one ordered, duplicate-free
// stream per subscription.
//
// Every stage runs in its own goroutine, reads one channel and writes another. A stage closes its output when its
// input is exhausted, when it decides the stream is complete, or when its context is cancelled. Callers cancel the
// context once they stop reading so upstream stages and sources can exit.
package datastream
