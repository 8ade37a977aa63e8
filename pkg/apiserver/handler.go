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
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/alarms"
	"github.com/fermi-ad/extapi-acsys/pkg/plotconfig"
	"github.com/fermi-ad/extapi-acsys/pkg/shared/logging"
	"github.com/fermi-ad/extapi-acsys/pkg/subscription"
)

// Subscriptions starts the streams served over websockets.
type Subscriptions interface {
	AcceleratorData(ctx context.Context, req subscription.DataRequest, sink func(acsys.ChannelReply) error) error
	ReportEvents(ctx context.Context, events []int32, sink func(acsys.ClockEvent) error) error
	StartPlot(ctx context.Context, req subscription.PlotRequest, sink func(*acsys.PlotFrame) error) error
	StartTriggeredPlot(ctx context.Context, req subscription.PlotRequest, sink func(*acsys.PlotFrame) error) error
}

// DeviceInfoSource answers device database queries.
type DeviceInfoSource interface {
	DeviceInfo(ctx context.Context, devices []string) ([]acsys.DeviceInfo, error)
}

// DeviceSetter applies settings.
type DeviceSetter interface {
	SetDevice(ctx context.Context, token, device string, value acsys.Value) (int16, error)
}

// AlarmFeed broadcasts alarm messages.
type AlarmFeed interface {
	Subscribe() *alarms.Subscription
}

// AlarmSnapshotter reads the alarms currently on the topic.
type AlarmSnapshotter interface {
	Snapshot(ctx context.Context) ([]string, error)
}

// WireScanner drives the wire scanner stations.
type WireScanner interface {
	Stations() map[string]string
	Progress(ctx context.Context, id string) (acsys.ScanProgress, error)
	Abort(ctx context.Context, id string) (acsys.ScanProgress, error)
	StartScan(ctx context.Context, req acsys.ScanRequest) (<-chan acsys.ScanResult, <-chan error)
}

// TimelineGenerator places devices on the timeline.
type TimelineGenerator interface {
	Version(ctx context.Context) (string, error)
	Diagnostics(ctx context.Context, devices []acsys.TLGDevice) (acsys.TLGPlacement, error)
	Placement(ctx context.Context, devices []acsys.TLGDevice) (acsys.TLGPlacement, error)
}

// Transformer computes expressions over device readings.
type Transformer interface {
	Activate(ctx context.Context, event string, expr acsys.XFormExpr) (<-chan acsys.XFormResult, <-chan error)
}

// Services are what the handlers are served by. A nil alarm feed or snapshotter answers alarms.ErrNoSubscriber,
// a nil scanner, timeline generator or transformer answers errNotConfigured.
type Services struct {
	Subscriptions Subscriptions
	PlotConfigs   plotconfig.Store
	Devices       DeviceInfoSource
	Setter        DeviceSetter
	Alarms        AlarmFeed
	Snapshots     AlarmSnapshotter
	Scanner       WireScanner
	TLG           TimelineGenerator
	XForm         Transformer
}

var errNotConfigured = errors.New("service is not configured")

func notConfigured(service string) error {
	return fmt.Errorf("%s: %w", service, errNotConfigured)
}

type handler struct {
	Services
	log *zap.SugaredLogger
}

func newHandler(ctx context.Context, s Services) *handler {
	return &handler{Services: s, log: logging.FromContext(ctx)}
}

func fail(c *gin.Context, code int, err error) {
	msg := err.Error()
	c.JSON(code, NewAPIResponse(&msg, nil))
}

// storeError maps plot store errors to HTTP status codes.
func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, acsys.ErrNotFound):
		fail(c, http.StatusNotFound, err)
	case errors.Is(err, acsys.ErrNameTaken):
		fail(c, http.StatusConflict, err)
	default:
		fail(c, http.StatusInternalServerError, err)
	}
}

// logTiming reports how long a request spent in RPCs and how long in the gateway.
func (h *handler) logTiming(op string, start time.Time, rpc time.Duration, args ...interface{}) {
	total := time.Since(start)
	requestLatency.WithLabelValues(op).Observe(float64(total.Microseconds()))
	h.log.Infow("Request complete", append([]interface{}{
		"op", op,
		"total", total.Microseconds(),
		"rpc", rpc.Microseconds(),
		"local", (total - rpc).Microseconds(),
	}, args...)...)
}

// FindPlotConfigs returns the general configuration given by the id query parameter, or all of them.
func (h *handler) FindPlotConfigs(c *gin.Context) {
	var id *int
	if s := c.Query("id"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		id = &n
	}
	cfgs, err := h.PlotConfigs.Find(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAPIResponse(nil, cfgs))
}

// FindUserPlotConfig returns the private configuration of a user, null if there is none.
func (h *handler) FindUserPlotConfig(c *gin.Context) {
	cfg, err := h.PlotConfigs.FindUser(c.Request.Context(), c.Param("user"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAPIResponse(nil, cfg))
}

// UpdatePlotConfig saves a general configuration and returns its id.
func (h *handler) UpdatePlotConfig(c *gin.Context) {
	var cfg plotconfig.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	id, err := h.PlotConfigs.Update(c.Request.Context(), cfg)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAPIResponse(nil, gin.H{"configurationId": id}))
}

// UpdateUserPlotConfig saves the private configuration of a user.
func (h *handler) UpdateUserPlotConfig(c *gin.Context) {
	var cfg plotconfig.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.PlotConfigs.UpdateUser(c.Request.Context(), c.Param("user"), cfg); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAPIResponse(nil, nil))
}

// RemovePlotConfig deletes a general configuration.
func (h *handler) RemovePlotConfig(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.PlotConfigs.Remove(c.Request.Context(), id); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAPIResponse(nil, nil))
}

// DeviceInfo returns what the device database knows about each device. When the lookup fails every device
// carries the error.
func (h *handler) DeviceInfo(c *gin.Context) {
	start := time.Now()
	var req deviceInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	rpcStart := time.Now()
	info, err := h.Devices.DeviceInfo(c.Request.Context(), req.Devices)
	rpc := time.Since(rpcStart)
	if err != nil {
		h.log.Warnw("Device info lookup failed", zap.Strings("devices", req.Devices), zap.Error(err))
		for i := range info {
			if info[i].Error == "" && info[i].Reading == nil && info[i].Setting == nil {
				info[i].Error = err.Error()
			}
		}
	}
	c.JSON(http.StatusOK, NewAPIResponse(nil, encodeDeviceInfo(info)))
	h.logTiming("deviceInfo", start, rpc, "devices", req.Devices)
}

// SetDevice applies a setting. The bearer token is required and forwarded to DPM, which authorizes the setting.
func (h *handler) SetDevice(c *gin.Context) {
	start := time.Now()
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		fail(c, http.StatusUnauthorized, errors.New("a bearer token is required"))
		return
	}
	var req setDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	value, err := req.Value.toValue()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	rpcStart := time.Now()
	status, err := h.Setter.SetDevice(c.Request.Context(), token, req.Device, value)
	rpc := time.Since(rpcStart)
	if err != nil {
		h.log.Errorw("Setting failed", zap.String("device", req.Device), zap.Error(err))
		msg := err.Error()
		c.JSON(http.StatusOK, NewAPIResponse(&msg, setDeviceReply{Status: status}))
	} else {
		c.JSON(http.StatusOK, NewAPIResponse(nil, setDeviceReply{Status: status}))
	}
	h.logTiming("setDevice", start, rpc, "device", req.Device)
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// AlarmsSnapshot returns every alarm message currently on the topic.
func (h *handler) AlarmsSnapshot(c *gin.Context) {
	if h.Snapshots == nil {
		fail(c, http.StatusServiceUnavailable, alarms.ErrNoSubscriber)
		return
	}
	start := time.Now()
	msgs, err := h.Snapshots.Snapshot(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, NewAPIResponse(nil, msgs))
	h.logTiming("alarmsSnapshot", start, time.Since(start), "messages", len(msgs))
}
