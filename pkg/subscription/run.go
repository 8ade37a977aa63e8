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

package subscription

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fermi-ad/extapi-acsys/pkg/shared/logging"
)

// starter builds the pipeline of a subscription. Source error channels are registered with watch.
type starter[T any] func(ctx context.Context, g *errgroup.Group) <-chan T

// run starts a pipeline and feeds its output to sink until the pipeline ends, sink fails or ctx is done.
func run[T any](ctx context.Context, stream string, start starter[T], sink func(T) error) error {
	log := logging.FromContext(ctx).With("stream", stream)
	g, gctx := errgroup.WithContext(ctx)
	gctx, cancel := context.WithCancel(logging.WithLogger(gctx, log))
	defer cancel()

	out := start(gctx, g)
	activeSubscriptions.WithLabelValues(stream).Inc()
	defer activeSubscriptions.WithLabelValues(stream).Dec()
	log.Debug("Subscription started")

	g.Go(func() error {
		// Once the sink is done the sources are released.
		defer cancel()
		for v := range out {
			if err := sink(v); err != nil {
				return err
			}
		}
		return nil
	})
	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		failedSubscriptions.WithLabelValues(stream).Inc()
		log.Errorw("Subscription failed", zap.Error(err))
		return err
	}
	log.Debug("Subscription ended")
	return nil
}

// watch fails the group with the first error reported on errCh. Sources close errCh once they stop, which they do
// when ctx is done, so an error sent just before a stage ended is never lost.
func watch(g *errgroup.Group, errCh <-chan error) {
	g.Go(func() error {
		for err := range errCh {
			if err != nil {
				return err
			}
		}
		return nil
	})
}
