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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/subscription"
)

// scanProgressJSON leaves the measurements out when the station could not be reached.
type scanProgressJSON struct {
	Message            string   `json:"message"`
	DetectorID         string   `json:"detectorId"`
	StartTime          *int32   `json:"startTime"`
	CurrentPosition    *float32 `json:"currentPosition"`
	ProgressPercentage *int32   `json:"progressPercentage"`
}

func encodeScanProgress(p acsys.ScanProgress) scanProgressJSON {
	return scanProgressJSON{
		Message:            p.Message,
		DetectorID:         p.DetectorID,
		StartTime:          &p.StartTime,
		CurrentPosition:    &p.CurrentPosition,
		ProgressPercentage: &p.ProgressPercentage,
	}
}

type scanResultJSON struct {
	Progress scanProgressJSON `json:"progress"`
	Voltage  []float32        `json:"voltage"`
}

type scanRequestJSON struct {
	DetectorID       string  `json:"detectorId"`
	PositionStart    float32 `json:"positionStart"`
	PositionEnd      float32 `json:"positionEnd"`
	PositionStep     float32 `json:"positionStep"`
	SamplingDuration float32 `json:"samplingDuration"`
	PulsesPerSample  int32   `json:"pulsesPerSample"`
}

// ScanStations returns the description of every wire scanner station, by detector id.
func (h *handler) ScanStations(c *gin.Context) {
	if h.Scanner == nil {
		fail(c, http.StatusServiceUnavailable, notConfigured("wire scanner"))
		return
	}
	c.JSON(http.StatusOK, NewAPIResponse(nil, h.Scanner.Stations()))
}

// ScanProgress returns the state of a station.
func (h *handler) ScanProgress(c *gin.Context) {
	h.scanCall(c, "scanProgress", func(ctx context.Context, id string) (acsys.ScanProgress, error) {
		return h.Scanner.Progress(ctx, id)
	})
}

// AbortScan stops any motion of a station.
func (h *handler) AbortScan(c *gin.Context) {
	h.scanCall(c, "abortScan", func(ctx context.Context, id string) (acsys.ScanProgress, error) {
		return h.Scanner.Abort(ctx, id)
	})
}

// scanCall runs a station request. A failed call still answers a progress, carrying the error as its message.
func (h *handler) scanCall(c *gin.Context, op string, call func(context.Context, string) (acsys.ScanProgress, error)) {
	if h.Scanner == nil {
		fail(c, http.StatusServiceUnavailable, notConfigured("wire scanner"))
		return
	}
	start := time.Now()
	id := c.Param("id")
	p, err := call(c.Request.Context(), id)
	if err != nil {
		h.log.Warnw("Wire scanner request failed", zap.String("op", op), zap.String("detectorId", id), zap.Error(err))
		msg := err.Error()
		c.JSON(http.StatusOK, NewAPIResponse(&msg, scanProgressJSON{Message: "error: " + msg, DetectorID: id}))
	} else {
		c.JSON(http.StatusOK, NewAPIResponse(nil, encodeScanProgress(p)))
	}
	h.logTiming(op, start, time.Since(start), "detectorId", id)
}

// streamScan starts a scan and streams its samples.
func (h *handler) streamScan(ctx context.Context, raw []byte, send func(interface{}) error) error {
	if h.Scanner == nil {
		return notConfigured("wire scanner")
	}
	var req scanRequestJSON
	if err := decodeRequest(raw, &req); err != nil {
		return err
	}
	if req.DetectorID == "" {
		return fmt.Errorf("%w: detectorId is required", subscription.ErrInvalidRequest)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	h.log.Infow("Requesting scan", zap.String("detectorId", req.DetectorID))
	out, errCh := h.Scanner.StartScan(ctx, acsys.ScanRequest(req))
	return forward(out, errCh, send, func(r acsys.ScanResult) interface{} {
		return scanResultJSON{Progress: encodeScanProgress(r.Progress), Voltage: r.Voltage}
	})
}
