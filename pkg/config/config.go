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

// Package config holds the gateway configuration. Values come, in increasing order of precedence, from the
// defaults, an optional YAML file, the environment and command line flags.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/spf13/viper"

	"github.com/fermi-ad/extapi-acsys/pkg/shared/util"
)

const (
	DefaultAddress        = "0.0.0.0"
	DefaultPort           = 8000
	DefaultMetricsPort    = 9090
	DefaultKafkaHost      = "acsys-services.fnal.gov"
	DefaultKafkaPort      = 9092
	DefaultAlarmsTopic    = "ACsys"
	DefaultDPMAddr        = "dce09.fnal.gov:50051"
	DefaultArchiverAddr   = "dce09.fnal.gov:50051"
	DefaultDevDBAddr      = "dce09.fnal.gov:50051"
	DefaultClockAddr      = "clx76.fnal.gov:6803"
	DefaultScannerAddr    = "unknown.fnal.gov:50051"
	DefaultTLGAddr        = "10.200.24.116:9090"
	DefaultXFormAddr      = "clx76.fnal.gov:6803"
	DefaultRPCTimeout     = 5 * time.Second
	DefaultHeartbeatEvent = 0x0F
	DefaultDeviceCache    = 4096
	DefaultPlotIDTTL      = 10 * time.Minute
)

// envBindings maps configuration keys to the environment variables overriding them.
var envBindings = map[string]string{
	"address":             "GRAPHQL_ADDRESS",
	"port":                "GRAPHQL_PORT",
	"metricsPort":         "METRICS_PORT",
	"kafka.host":          "KAFKA_HOST",
	"kafka.port":          "KAFKA_PORT",
	"kafka.alarmsTopic":   "ALARMS_KAFKA_TOPIC",
	"kafka.settings":      "KAFKA_SETTINGS",
	"backends.dpm":        "DPM_ADDR",
	"backends.archiver":   "ARCHIVER_ADDR",
	"backends.clock":      "CLOCK_ADDR",
	"backends.devdb":      "DEVDB_ADDR",
	"backends.scanner":    "SCANNER_ADDR",
	"backends.tlg":        "TLG_ADDR",
	"backends.xform":      "XFORM_ADDR",
	"backends.rpcTimeout": "RPC_TIMEOUT",
	"plotConfig.redisURL": "PLOTCONFIG_REDIS_URL",
	"plotConfig.prefix":   "PLOTCONFIG_REDIS_PREFIX",
	"plotConfig.idTTL":    "PLOT_ID_TTL",
	"heartbeatEvent":      "HEARTBEAT_EVENT",
	"deviceCacheSize":     "DEVICE_CACHE_SIZE",
}

// Config is the configuration of the gateway.
type Config struct {
	Address     string `mapstructure:"address"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metricsPort"`

	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Backends   BackendConfig    `mapstructure:"backends"`
	PlotConfig PlotConfigConfig `mapstructure:"plotConfig"`

	// HeartbeatEvent paces triggered plots between triggers.
	HeartbeatEvent  int32 `mapstructure:"heartbeatEvent"`
	DeviceCacheSize int   `mapstructure:"deviceCacheSize"`
}

type KafkaConfig struct {
	// Host may list several brokers separated by commas, all on Port.
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	AlarmsTopic string `mapstructure:"alarmsTopic"`
	// Settings is a YAML rendition of sarama.Config applied on top of the defaults.
	Settings string `mapstructure:"settings"`
}

type BackendConfig struct {
	DPM        string        `mapstructure:"dpm"`
	Archiver   string        `mapstructure:"archiver"`
	Clock      string        `mapstructure:"clock"`
	DevDB      string        `mapstructure:"devdb"`
	Scanner    string        `mapstructure:"scanner"`
	TLG        string        `mapstructure:"tlg"`
	XForm      string        `mapstructure:"xform"`
	RPCTimeout time.Duration `mapstructure:"rpcTimeout"`
}

type PlotConfigConfig struct {
	// RedisURL selects the redis store, the in-memory store is used when empty.
	RedisURL string        `mapstructure:"redisURL"`
	Prefix   string        `mapstructure:"prefix"`
	IDTTL    time.Duration `mapstructure:"idTTL"`
}

// SetDefaults registers the defaults and environment bindings of every key with v.
func SetDefaults(v *viper.Viper) error {
	v.SetDefault("address", DefaultAddress)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("metricsPort", DefaultMetricsPort)
	v.SetDefault("kafka.host", DefaultKafkaHost)
	v.SetDefault("kafka.port", DefaultKafkaPort)
	v.SetDefault("kafka.alarmsTopic", DefaultAlarmsTopic)
	v.SetDefault("kafka.settings", "")
	v.SetDefault("backends.dpm", DefaultDPMAddr)
	v.SetDefault("backends.archiver", DefaultArchiverAddr)
	v.SetDefault("backends.clock", DefaultClockAddr)
	v.SetDefault("backends.devdb", DefaultDevDBAddr)
	v.SetDefault("backends.scanner", DefaultScannerAddr)
	v.SetDefault("backends.tlg", DefaultTLGAddr)
	v.SetDefault("backends.xform", DefaultXFormAddr)
	v.SetDefault("backends.rpcTimeout", DefaultRPCTimeout)
	v.SetDefault("plotConfig.redisURL", "")
	v.SetDefault("plotConfig.prefix", "")
	v.SetDefault("plotConfig.idTTL", DefaultPlotIDTTL)
	v.SetDefault("heartbeatEvent", DefaultHeartbeatEvent)
	v.SetDefault("deviceCacheSize", DefaultDeviceCache)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %q to %s, %w", key, env, err)
		}
	}
	return nil
}

// Load reads the configuration from v. When file is not empty it is read first.
func Load(v *viper.Viper, file string) (*Config, error) {
	if err := SetDefaults(v); err != nil {
		return nil, err
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load configuration file. %w", err)
		}
	}
	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("failed unmarshal configuration. %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate checks the configuration for values the gateway can't run with.
func (c *Config) Validate() error {
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1024 and 65535, got %d", c.Port)
	}
	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port %d", c.MetricsPort)
	}
	if c.MetricsPort == c.Port {
		return fmt.Errorf("metrics port %d collides with the service port", c.MetricsPort)
	}
	if c.Kafka.Host == "" || c.Kafka.AlarmsTopic == "" {
		return fmt.Errorf("kafka host and alarms topic are required")
	}
	for name, addr := range map[string]string{
		"dpm":      c.Backends.DPM,
		"archiver": c.Backends.Archiver,
		"clock":    c.Backends.Clock,
		"devdb":    c.Backends.DevDB,
		"scanner":  c.Backends.Scanner,
		"tlg":      c.Backends.TLG,
		"xform":    c.Backends.XForm,
	} {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("invalid %s address %q, %w", name, addr, err)
		}
	}
	if c.Backends.RPCTimeout <= 0 {
		return fmt.Errorf("rpc timeout must be positive, got %v", c.Backends.RPCTimeout)
	}
	if c.DeviceCacheSize <= 0 {
		return fmt.Errorf("device cache size must be positive, got %d", c.DeviceCacheSize)
	}
	if c.PlotConfig.IDTTL <= 0 {
		return fmt.Errorf("plot id ttl must be positive, got %v", c.PlotConfig.IDTTL)
	}
	return nil
}

// ListenAddress is the address the service listens on.
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// Brokers returns the kafka bootstrap brokers.
func (k KafkaConfig) Brokers() []string {
	var out []string
	for _, h := range strings.Split(k.Host, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, net.JoinHostPort(h, strconv.Itoa(k.Port)))
		}
	}
	return out
}

// SaramaConfig returns the client configuration used for the alarms topic.
func (k KafkaConfig) SaramaConfig() (*sarama.Config, error) {
	if k.Settings == "" {
		return util.NewSaramaConfig(), nil
	}
	return util.GetSaramaConfigFromYAMLString(k.Settings)
}
