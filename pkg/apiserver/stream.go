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
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/alarms"
	"github.com/fermi-ad/extapi-acsys/pkg/subscription"
)

const (
	// requestTimeout bounds the wait for the request that opens a stream.
	requestTimeout = 30 * time.Second
	writeTimeout   = 10 * time.Second
	pingInterval   = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browsers from any origin may subscribe, like the REST routes.
	CheckOrigin: func(*http.Request) bool { return true },
}

// streamFunc runs a stream. raw is the opening request, nil for streams that take none. send writes one data
// envelope and fails once the client is gone.
type streamFunc func(ctx context.Context, raw []byte, send func(interface{}) error) error

// streamConn serializes writes to a websocket.
type streamConn struct {
	conn *websocket.Conn
	lock sync.Mutex
}

func (s *streamConn) write(e envelope) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, b)
}

func (s *streamConn) close(code int, text string) {
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeTimeout))
}

// stream upgrades the request and runs fn until it returns or the client goes away.
func (h *handler) stream(kind string, needsRequest bool, fn streamFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := h.log.With("stream", kind, "remote", c.ClientIP())
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// The upgrader already replied to the client.
			log.Warnw("Websocket upgrade failed", zap.Error(err))
			return
		}
		sc := &streamConn{conn: conn}
		activeStreams.WithLabelValues(kind).Inc()
		defer activeStreams.WithLabelValues(kind).Dec()

		var raw []byte
		if needsRequest {
			_ = conn.SetReadDeadline(time.Now().Add(requestTimeout))
			if _, raw, err = conn.ReadMessage(); err != nil {
				log.Infow("No stream request received", zap.Error(err))
				_ = conn.Close()
				return
			}
			_ = conn.SetReadDeadline(time.Time{})
		}

		ctx, cancel := context.WithCancel(c.Request.Context())
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			// Clients don't talk after the request; any read error means they are gone.
			defer wg.Done()
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(pingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
						return
					}
				}
			}
		}()

		err = fn(ctx, raw, func(v interface{}) error {
			return sc.write(envelope{Type: envelopeData, Data: v})
		})
		if err != nil && ctx.Err() == nil {
			log.Warnw("Stream failed", zap.Error(err))
			_ = sc.write(envelope{Type: envelopeError, Error: clientError(err)})
			sc.close(closeCode(err), "")
		} else if ctx.Err() == nil {
			_ = sc.write(envelope{Type: envelopeComplete})
			sc.close(websocket.CloseNormalClosure, "")
		}
		cancel()
		_ = conn.Close()
		wg.Wait()
		log.Debug("Stream closed")
	}
}

// clientError is the message a client sees for err. Broker failures are only detailed in the logs.
func clientError(err error) string {
	var upstream *acsys.UpstreamError
	switch {
	case errors.Is(err, alarms.ErrBroker):
		return alarms.ErrBroker.Error()
	case errors.As(err, &upstream):
		return upstream.Error()
	default:
		return err.Error()
	}
}

func closeCode(err error) int {
	if errors.Is(err, subscription.ErrInvalidRequest) || errors.Is(err, acsys.ErrNotFound) {
		return websocket.ClosePolicyViolation
	}
	return websocket.CloseInternalServerErr
}

func decodeRequest(raw []byte, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", subscription.ErrInvalidRequest, err)
	}
	return nil
}

// forward sends every value produced on out, then returns the error its producer reported.
func forward[T any](out <-chan T, errCh <-chan error, send func(interface{}) error, encode func(T) interface{}) error {
	for v := range out {
		if err := send(encode(v)); err != nil {
			return err
		}
	}
	return <-errCh
}

// streamData streams the replies of a data request.
func (h *handler) streamData(ctx context.Context, raw []byte, send func(interface{}) error) error {
	var req dataRequest
	if err := decodeRequest(raw, &req); err != nil {
		return err
	}
	return h.Subscriptions.AcceleratorData(ctx, subscription.DataRequest{
		DRFs:  req.DRFs,
		Start: req.StartTime,
		End:   req.EndTime,
	}, func(r acsys.ChannelReply) error {
		return send(encodeReply(r))
	})
}

// streamEvents streams clock events.
func (h *handler) streamEvents(ctx context.Context, raw []byte, send func(interface{}) error) error {
	var req eventsRequest
	if err := decodeRequest(raw, &req); err != nil {
		return err
	}
	return h.Subscriptions.ReportEvents(ctx, req.Events, func(ev acsys.ClockEvent) error {
		return send(clockEventJSON{Event: ev.Event, Timestamp: ev.Timestamp})
	})
}

// streamPlot streams the frames of a continuous plot.
func (h *handler) streamPlot(ctx context.Context, raw []byte, send func(interface{}) error) error {
	var req plotRequest
	if err := decodeRequest(raw, &req); err != nil {
		return err
	}
	return h.Subscriptions.StartPlot(ctx, req.toPlotRequest(), func(f *acsys.PlotFrame) error {
		return send(encodeFrame(f))
	})
}

// streamTriggeredPlot streams the frames of a plot synchronized to a clock event.
func (h *handler) streamTriggeredPlot(ctx context.Context, raw []byte, send func(interface{}) error) error {
	var req plotRequest
	if err := decodeRequest(raw, &req); err != nil {
		return err
	}
	return h.Subscriptions.StartTriggeredPlot(ctx, req.toPlotRequest(), func(f *acsys.PlotFrame) error {
		return send(encodeFrame(f))
	})
}

// streamAlarms streams alarm messages as they are published.
func (h *handler) streamAlarms(ctx context.Context, _ []byte, send func(interface{}) error) error {
	if h.Alarms == nil {
		return alarms.ErrNoSubscriber
	}
	sub := h.Alarms.Subscribe()
	defer sub.Cancel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.Messages():
			if !ok {
				return nil
			}
			if err := send(msg); err != nil {
				return err
			}
		}
	}
}
