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

// Package subscription assembles client subscriptions from the backend sources and the stream stages.
//
// A subscription runs its sources, stages and the client sink in one errgroup. The first error, from a source, a
// windower or the sink, cancels everything else; the sink returning or the caller's context ending stops the
// subscription without error.
package subscription
