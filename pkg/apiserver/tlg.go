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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

type tlgDeviceJSON struct {
	Type   string  `json:"type"`
	Name   string  `json:"name"`
	Device string  `json:"device"`
	Data   []int32 `json:"data"`
}

type tlgDevicesRequest struct {
	Devices []tlgDeviceJSON `json:"devices" binding:"required"`
}

type tlgPlacementJSON struct {
	Status      int32   `json:"status"`
	Message     string  `json:"message"`
	Diagnostics []int32 `json:"diagnostics"`
	Placement   []int32 `json:"placement"`
	Generated   []int32 `json:"generated"`
	Parameters  []int32 `json:"parameters"`
}

// TLGVersion returns the version of the timeline generator.
func (h *handler) TLGVersion(c *gin.Context) {
	if h.TLG == nil {
		fail(c, http.StatusServiceUnavailable, notConfigured("timeline generator"))
		return
	}
	v, err := h.TLG.Version(c.Request.Context())
	if err != nil {
		h.log.Errorw("Timeline generator version failed", zap.Error(err))
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, NewAPIResponse(nil, gin.H{"version": v}))
}

// TLGDiagnostics checks the timeline made of the requested devices.
func (h *handler) TLGDiagnostics(c *gin.Context) {
	h.place(c, "tlgDiagnostics", func(ctx context.Context, d []acsys.TLGDevice) (acsys.TLGPlacement, error) {
		return h.TLG.Diagnostics(ctx, d)
	})
}

// TLGPlacement places the requested devices on the timeline.
func (h *handler) TLGPlacement(c *gin.Context) {
	h.place(c, "tlgPlacement", func(ctx context.Context, d []acsys.TLGDevice) (acsys.TLGPlacement, error) {
		return h.TLG.Placement(ctx, d)
	})
}

func (h *handler) place(c *gin.Context, op string, call func(context.Context, []acsys.TLGDevice) (acsys.TLGPlacement, error)) {
	if h.TLG == nil {
		fail(c, http.StatusServiceUnavailable, notConfigured("timeline generator"))
		return
	}
	start := time.Now()
	var req tlgDevicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	devices := make([]acsys.TLGDevice, len(req.Devices))
	for i, d := range req.Devices {
		devices[i] = acsys.TLGDevice(d)
	}
	rpcStart := time.Now()
	p, err := call(c.Request.Context(), devices)
	rpc := time.Since(rpcStart)
	if err != nil {
		h.log.Errorw("Timeline generator request failed", zap.String("op", op), zap.Error(err))
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, NewAPIResponse(nil, tlgPlacementJSON(p)))
	h.logTiming(op, start, rpc, "devices", len(devices))
}
