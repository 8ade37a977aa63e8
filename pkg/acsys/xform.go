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

// ErrBadExpression is returned for a calculation that is neither a device nor an average.
var ErrBadExpression = errors.New("expression must be exactly one of a device or an average")

// XFormExpr is a calculation done by the transform service. Exactly one of Device and Average is set.
type XFormExpr struct {
	Device  string
	Average *XFormAverage
}

// XFormAverage averages N consecutive results of Expr.
type XFormAverage struct {
	Expr XFormExpr
	N    uint32
}

// Validate checks that every node of the expression is well formed.
func (e XFormExpr) Validate() error {
	switch {
	case e.Device != "" && e.Average == nil:
		return nil
	case e.Device == "" && e.Average != nil:
		if e.Average.N == 0 {
			return fmt.Errorf("%s: average of zero samples: %w", e, ErrBadExpression)
		}
		return e.Average.Expr.Validate()
	default:
		return fmt.Errorf("%s: %w", e, ErrBadExpression)
	}
}

func (e XFormExpr) String() string {
	switch {
	case e.Device != "" && e.Average == nil:
		return e.Device
	case e.Device == "" && e.Average != nil:
		return fmt.Sprintf("AVG(%s, %d)", e.Average.Expr, e.Average.N)
	default:
		return "<bad expression>"
	}
}

// XFormResult is one value computed by the transform service.
type XFormResult struct {
	// Timestamp is when the inputs were sampled, in seconds since the Unix epoch.
	Timestamp float64
	Value     float64
}
