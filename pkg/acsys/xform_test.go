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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXFormExpr(t *testing.T) {
	tests := []struct {
		name  string
		expr  XFormExpr
		text  string
		valid bool
	}{
		{"device", XFormExpr{Device: "M:OUTTMP"}, "M:OUTTMP", true},
		{"nested average", XFormExpr{Average: &XFormAverage{N: 3, Expr: XFormExpr{Average: &XFormAverage{N: 2, Expr: XFormExpr{Device: "G:AMANDA"}}}}}, "AVG(AVG(G:AMANDA, 2), 3)", true},
		{"empty", XFormExpr{}, "<bad expression>", false},
		{"both", XFormExpr{Device: "M:OUTTMP", Average: &XFormAverage{N: 2, Expr: XFormExpr{Device: "G:AMANDA"}}}, "<bad expression>", false},
		{"zero samples", XFormExpr{Average: &XFormAverage{Expr: XFormExpr{Device: "G:AMANDA"}}}, "AVG(G:AMANDA, 0)", false},
		{"bad inner", XFormExpr{Average: &XFormAverage{N: 2}}, "AVG(<bad expression>, 2)", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, tt.expr.String())
			if tt.valid {
				assert.NoError(t, tt.expr.Validate())
			} else {
				assert.ErrorIs(t, tt.expr.Validate(), ErrBadExpression)
			}
		})
	}
}
