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

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	extapi "github.com/fermi-ad/extapi-acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/alarms"
	"github.com/fermi-ad/extapi-acsys/pkg/apiserver"
	"github.com/fermi-ad/extapi-acsys/pkg/backend"
	"github.com/fermi-ad/extapi-acsys/pkg/config"
	"github.com/fermi-ad/extapi-acsys/pkg/devdb"
	"github.com/fermi-ad/extapi-acsys/pkg/metrics"
	"github.com/fermi-ad/extapi-acsys/pkg/plotconfig"
	redisclient "github.com/fermi-ad/extapi-acsys/pkg/shared/clients/redis"
	"github.com/fermi-ad/extapi-acsys/pkg/shared/logging"
	sharedutil "github.com/fermi-ad/extapi-acsys/pkg/shared/util"
	"github.com/fermi-ad/extapi-acsys/pkg/subscription"
)

func NewGatewayCommand() *cobra.Command {
	var configFile string
	command := &cobra.Command{
		Use:   "gateway",
		Short: "Start the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			for key, flag := range map[string]string{"port": "port", "address": "address", "metricsPort": "metrics-port"} {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			conf, err := config.Load(v, configFile)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger := logging.NewLogger().Named("gateway")
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runGateway(logging.WithLogger(ctx, logger), conf)
		},
	}
	command.Flags().StringVar(&configFile, "config", sharedutil.LookupEnvStringOr("ACSYS_CONFIG", ""), "Path of a YAML configuration file (env ACSYS_CONFIG)")
	command.Flags().IntP("port", "p", config.DefaultPort, "Port of the API server (env GRAPHQL_PORT)")
	command.Flags().String("address", config.DefaultAddress, "Address of the API server (env GRAPHQL_ADDRESS)")
	command.Flags().Int("metrics-port", config.DefaultMetricsPort, "Port of the metrics server (env METRICS_PORT)")
	return command
}

// gateway holds the long lived clients of a running gateway.
type gateway struct {
	archiver *backend.Archiver
	dpm      *backend.DPM
	clock    *backend.Clock
	devDB    *backend.DevDB
	scanner  *backend.WireScanner
	tlg      *backend.TLG
	xform    *backend.XForm
	redis    *redisclient.RedisClient
	store    plotconfig.Store
}

func (g *gateway) Close() error {
	var err error
	for _, c := range []interface{ Close() error }{g.archiver, g.dpm, g.clock, g.devDB, g.scanner, g.tlg, g.xform, g.store} {
		err = multierr.Append(err, c.Close())
	}
	return err
}

func newGateway(conf *config.Config) (*gateway, error) {
	opts := []backend.Option{backend.WithRPCTimeout(conf.Backends.RPCTimeout)}
	g := &gateway{}
	var err error
	if g.archiver, err = backend.NewArchiver(conf.Backends.Archiver, opts...); err != nil {
		return nil, err
	}
	if g.dpm, err = backend.NewDPM(conf.Backends.DPM, opts...); err != nil {
		return nil, err
	}
	if g.clock, err = backend.NewClock(conf.Backends.Clock, opts...); err != nil {
		return nil, err
	}
	if g.devDB, err = backend.NewDevDB(conf.Backends.DevDB, opts...); err != nil {
		return nil, err
	}
	if g.scanner, err = backend.NewWireScanner(conf.Backends.Scanner, opts...); err != nil {
		return nil, err
	}
	if g.tlg, err = backend.NewTLG(conf.Backends.TLG, opts...); err != nil {
		return nil, err
	}
	if g.xform, err = backend.NewXForm(conf.Backends.XForm, opts...); err != nil {
		return nil, err
	}
	if conf.PlotConfig.RedisURL == "" {
		g.store = plotconfig.NewMemStore()
		return g, nil
	}
	if g.redis, err = redisclient.NewRedisClientFromURL(conf.PlotConfig.RedisURL); err != nil {
		return nil, err
	}
	g.store = plotconfig.NewRedisStore(g.redis, conf.PlotConfig.Prefix)
	return g, nil
}

func (g *gateway) healthCheckers() []metrics.HealthChecker {
	checkers := []metrics.HealthChecker{
		metrics.Named("archiver", g.archiver),
		metrics.Named("dpm", g.dpm),
		metrics.Named("clock", g.clock),
		metrics.Named("devdb", g.devDB),
	}
	if g.redis != nil {
		checkers = append(checkers, metrics.Named("redis", g.redis))
	}
	return checkers
}

func runGateway(ctx context.Context, conf *config.Config) error {
	log := logging.FromContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	version := extapi.GetVersion()
	metrics.BuildInfo.WithLabelValues("gateway", version.Version, version.Platform).Set(1)
	log.Infow("Starting gateway", zap.String("version", version.String()))

	g, err := newGateway(conf)
	if err != nil {
		return fmt.Errorf("failed to connect to the ACSys services: %w", err)
	}
	defer func() {
		if err := g.Close(); err != nil {
			log.Warnw("Failed to close clients", zap.Error(err))
		}
	}()

	cache, err := devdb.NewCache(g.devDB, conf.DeviceCacheSize)
	if err != nil {
		return err
	}
	svc, err := subscription.NewService(g.archiver, g.dpm, g.clock,
		subscription.WithUnits(cache),
		subscription.WithPlotStore(g.store),
		subscription.WithHeartbeatEvent(conf.HeartbeatEvent),
		subscription.WithPlotCache(subscription.DefaultPlotCacheSize, conf.PlotConfig.IDTTL),
	)
	if err != nil {
		return err
	}

	feedConfig, err := conf.Kafka.SaramaConfig()
	if err != nil {
		return err
	}
	snapshotConfig, err := conf.Kafka.SaramaConfig()
	if err != nil {
		return err
	}
	brokers := conf.Kafka.Brokers()
	subscriber := alarms.NewSubscriber(ctx, brokers, conf.Kafka.AlarmsTopic, feedConfig)
	stopped := subscriber.Start(ctx)
	defer func() {
		cancel()
		<-stopped
	}()

	checkers := append(g.healthCheckers(), metrics.Named("kafka", subscriber))
	shutdown, err := metrics.NewMetricsServer(metrics.NewMetricsOptions(ctx, conf.MetricsPort, checkers)...).Start(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warnw("Failed to shut down the metrics server", zap.Error(err))
		}
	}()

	server := apiserver.NewServer(ctx, conf.ListenAddress(), apiserver.Services{
		Subscriptions: svc,
		PlotConfigs:   g.store,
		Devices:       cache,
		Setter:        g.dpm,
		Alarms:        subscriber,
		Snapshots:     alarms.NewSnapshotter(brokers, conf.Kafka.AlarmsTopic, snapshotConfig),
		Scanner:       g.scanner,
		TLG:           g.tlg,
		XForm:         g.xform,
	})
	return server.Start(ctx)
}
