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

package apiserver

// StatusCode is the status of the API call.
type StatusCode string

const (
	Success StatusCode = "success"
	Failure StatusCode = "failure"
)

// APIResponse is the body of every REST reply.
type APIResponse struct {
	// StatusCode indicates the status of the API call.
	StatusCode StatusCode `json:"statusCode"`
	// ErrMessage provides more detailed error information. If API call succeeds, the ErrMessage is nil.
	ErrMessage *string `json:"errMessage"`
	// Data is the response body.
	Data interface{} `json:"data"`
}

// NewAPIResponse creates a new APIResponse. The status is derived from errMessage.
func NewAPIResponse(errMessage *string, data interface{}) APIResponse {
	code := Success
	if errMessage != nil {
		code = Failure
	}
	return APIResponse{
		StatusCode: code,
		ErrMessage: errMessage,
		Data:       data,
	}
}

// Stream envelope types.
const (
	envelopeData     = "data"
	envelopeComplete = "complete"
	envelopeError    = "error"
)

// envelope is one websocket message of a stream.
type envelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}
