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

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/subscription"
)

type xformDeviceJSON struct {
	Device string `json:"device"`
}

type xformAvgJSON struct {
	Expr *xformExprJSON `json:"expr"`
	N    uint32         `json:"n"`
}

// xformExprJSON is an expression node: exactly one of devEx and avgEx is set.
type xformExprJSON struct {
	DevEx *xformDeviceJSON `json:"devEx,omitempty"`
	AvgEx *xformAvgJSON    `json:"avgEx,omitempty"`
}

func (e *xformExprJSON) toExpr() acsys.XFormExpr {
	var out acsys.XFormExpr
	if e == nil {
		return out
	}
	if e.DevEx != nil {
		out.Device = e.DevEx.Device
	}
	if e.AvgEx != nil {
		out.Average = &acsys.XFormAverage{Expr: e.AvgEx.Expr.toExpr(), N: e.AvgEx.N}
	}
	return out
}

type xformRequest struct {
	Event string         `json:"event"`
	Expr  *xformExprJSON `json:"expr"`
}

type xformResultJSON struct {
	Timestamp float64 `json:"timestamp"`
	Result    struct {
		ScalarValue float64 `json:"scalarValue"`
	} `json:"result"`
}

// streamXForm streams the value of an expression each time its event occurs.
func (h *handler) streamXForm(ctx context.Context, raw []byte, send func(interface{}) error) error {
	if h.XForm == nil {
		return notConfigured("transform service")
	}
	var req xformRequest
	if err := decodeRequest(raw, &req); err != nil {
		return err
	}
	expr := req.Expr.toExpr()
	if err := expr.Validate(); err != nil {
		return fmt.Errorf("%w: %v", subscription.ErrInvalidRequest, err)
	}
	if req.Event == "" {
		return fmt.Errorf("%w: event is required", subscription.ErrInvalidRequest)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	h.log.Infow("Calculating", zap.Stringer("expr", expr), zap.String("event", req.Event))
	out, errCh := h.XForm.Activate(ctx, req.Event, expr)
	return forward(out, errCh, send, func(r acsys.XFormResult) interface{} {
		var j xformResultJSON
		j.Timestamp = r.Timestamp
		j.Result.ScalarValue = r.Value
		return j
	})
}
