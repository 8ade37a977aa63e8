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

import (
	"errors"
	"fmt"
)

var (
	// ErrNonScalar is returned by consumers that only accept scalar readings.
	ErrNonScalar = errors.New("non-scalar reading")
	// ErrNotFound is returned when a requested record doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrNameTaken is returned when a plot configuration name is already used by another configuration.
	ErrNameTaken = errors.New("configuration name already in use")
)

// UpstreamError reports a failure of one of the backend services. It terminates the subscription that depends on
// the service.
type UpstreamError struct {
	// Source names the failing service, e.g. "archiver", "dpm" or "clock".
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError wraps err as a failure of the named backend. A nil err returns nil.
func NewUpstreamError(source string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Source: source, Err: err}
}
