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

	"github.com/gin-gonic/gin"
)

// Routes registers the REST and websocket routes of the gateway on r.
func Routes(ctx context.Context, r gin.IRouter, s Services) {
	h := newHandler(ctx, s)
	r.GET("/livez", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	v1 := r.Group("/api/v1")
	v1.GET("/plotconfigs", h.FindPlotConfigs)
	v1.POST("/plotconfigs", h.UpdatePlotConfig)
	v1.DELETE("/plotconfigs/:id", h.RemovePlotConfig)
	v1.GET("/plotconfigs/users/:user", h.FindUserPlotConfig)
	v1.PUT("/plotconfigs/users/:user", h.UpdateUserPlotConfig)
	v1.POST("/devices/info", h.DeviceInfo)
	v1.POST("/devices/setting", h.SetDevice)
	v1.GET("/alarms/snapshot", h.AlarmsSnapshot)
	v1.GET("/scanner/stations", h.ScanStations)
	v1.GET("/scanner/stations/:id/progress", h.ScanProgress)
	v1.POST("/scanner/stations/:id/abort", h.AbortScan)
	v1.GET("/tlg/version", h.TLGVersion)
	v1.POST("/tlg/diagnostics", h.TLGDiagnostics)
	v1.POST("/tlg/placement", h.TLGPlacement)

	streams := v1.Group("/streams")
	streams.GET("/data", h.stream("data", true, h.streamData))
	streams.GET("/events", h.stream("events", true, h.streamEvents))
	streams.GET("/plots", h.stream("plot", true, h.streamPlot))
	streams.GET("/triggered-plots", h.stream("triggered_plot", true, h.streamTriggeredPlot))
	streams.GET("/alarms", h.stream("alarms", false, h.streamAlarms))
	streams.GET("/scans", h.stream("scan", true, h.streamScan))
	streams.GET("/xform", h.stream("xform", true, h.streamXForm))
}
