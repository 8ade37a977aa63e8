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
	"fmt"
	"io"
	"path"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/shared/logging"
)

// client is the connection to one ACSys service.
type client struct {
	source string
	conn   *grpc.ClientConn
	opts   *options
}

func newClient(source, addr string, inputOptions ...Option) (*client, error) {
	opts := defaultOptions()
	for _, o := range inputOptions {
		o(opts)
	}
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
	}, opts.dialOptions...)
	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute grpc.NewClient(%q): %w", addr, err)
	}
	return &client{source: source, conn: conn, opts: opts}, nil
}

// Close closes the grpc client connection.
func (c *client) Close() error {
	return c.conn.Close()
}

// IsHealthy reports an error when the connection is in a failure state.
func (c *client) IsHealthy(ctx context.Context) error {
	if s := c.conn.GetState(); s == connectivity.TransientFailure || s == connectivity.Shutdown {
		return fmt.Errorf("%s connection is %s", c.source, s)
	}
	return nil
}

// invoke runs a unary call bounded by the configured timeout and logs its timing.
func (c *client) invoke(ctx context.Context, method string, req, resp any) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.rpcTimeout)
	defer cancel()
	start := time.Now()
	err := c.conn.Invoke(ctx, method, req, resp)
	elapsed := time.Since(start)
	rpcLatency.WithLabelValues(c.source, path.Base(method)).Observe(elapsed.Seconds())
	logging.FromContext(ctx).Infow("RPC complete", zap.String("method", method), zap.Int64("rpc", elapsed.Microseconds()), zap.Bool("ok", err == nil))
	if err != nil {
		return c.upstreamError(method, err)
	}
	return nil
}

// stream opens a server-streaming call and passes every message to handle until the stream ends, handle fails or
// ctx is done. The call ending because ctx was cancelled is not an error.
func stream[Req, Resp any](ctx context.Context, c *client, method string, req *Req, handle func(*Resp) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	desc := &grpc.StreamDesc{StreamName: path.Base(method), ServerStreams: true}
	cs, err := c.conn.NewStream(ctx, desc, method)
	if err != nil {
		return c.streamError(ctx, method, err)
	}
	if err := cs.SendMsg(req); err != nil {
		return c.streamError(ctx, method, err)
	}
	if err := cs.CloseSend(); err != nil {
		return c.streamError(ctx, method, err)
	}
	for {
		resp := new(Resp)
		if err := cs.RecvMsg(resp); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return c.streamError(ctx, method, err)
		}
		streamedMessages.WithLabelValues(c.source, path.Base(method)).Inc()
		if err := handle(resp); err != nil {
			return err
		}
	}
}

func (c *client) streamError(ctx context.Context, method string, err error) error {
	if ctx.Err() != nil || status.Code(err) == codes.Canceled {
		return nil
	}
	return c.upstreamError(method, err)
}

func (c *client) upstreamError(method string, err error) error {
	rpcErrors.WithLabelValues(c.source, path.Base(method)).Inc()
	if s, ok := status.FromError(err); ok {
		err = fmt.Errorf("%s: %s: %s", path.Base(method), s.Code(), s.Message())
	}
	return acsys.NewUpstreamError(c.source, err)
}

// send delivers v unless ctx is done first.
func send[T any](ctx context.Context, out chan<- T, v T) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- v:
		return nil
	}
}

// report forwards a stream failure, if any, on the buffered error channel.
func report(ctx context.Context, errCh chan<- error, err error) {
	if err == nil || ctx.Err() != nil {
		return
	}
	logging.FromContext(ctx).Errorw("Backend stream failed", zap.Error(err))
	errCh <- err
}
