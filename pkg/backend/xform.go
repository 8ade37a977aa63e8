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

package backend

import (
	"context"
	"errors"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

const (
	sourceXForm              = "xform"
	methodActivateExpression = "/fnal.xform.XFormApi/ActivateExpression"
)

// XForm is a client of the transform service, which computes expressions over device readings.
type XForm struct {
	*client
}

// NewXForm returns a client of the transform service at addr.
func NewXForm(addr string, opts ...Option) (*XForm, error) {
	c, err := newClient(sourceXForm, addr, opts...)
	if err != nil {
		return nil, err
	}
	return &XForm{client: c}, nil
}

// Activate streams the value of expr each time event occurs, until ctx is done or the service ends the stream. A
// result the service could not compute ends the stream with an error.
func (x *XForm) Activate(ctx context.Context, event string, expr acsys.XFormExpr) (<-chan acsys.XFormResult, <-chan error) {
	out := make(chan acsys.XFormResult)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		defer close(out)
		if err := expr.Validate(); err != nil {
			errCh <- err
			return
		}
		req := &xformExpr{Op: toOperation(expr), Event: event}
		err := stream(ctx, x.client, methodActivateExpression, req, func(r *xformResult) error {
			if r.Value == nil {
				msg := r.Error
				if msg == "" {
					msg = "no value"
				}
				return acsys.NewUpstreamError(sourceXForm, errors.New(msg))
			}
			return send(ctx, out, acsys.XFormResult{Timestamp: float64(r.Timestamp) / 1000, Value: *r.Value})
		})
		report(ctx, errCh, err)
	}()
	return out, errCh
}
