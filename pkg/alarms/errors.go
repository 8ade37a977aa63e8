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

package alarms

import "errors"

var (
	// ErrBroker is what clients see when the broker can't be reached; the cause is only logged.
	ErrBroker = errors.New("An error occurred while attempting to connect to the message broker. See server logs for details.")
	// ErrNoSubscriber is returned when the gateway runs without an alarm feed.
	ErrNoSubscriber = errors.New("No alarms Subscriber available")
)

// streamClosedNotice is the last message of every open stream when consumption fails.
const streamClosedNotice = "An error occurred while consuming messages. See server logs for details. Closing stream."
