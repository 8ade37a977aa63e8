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

package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core).Sugar()
	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Infow("hello", "k", "v")
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, "hello", logs.All()[0].Message)
}

func TestFromContext_Default(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestNewConfig(t *testing.T) {
	t.Setenv(EnvDebug, "false")
	t.Setenv(EnvLogLevel, "warn")
	c := newConfig()
	assert.Equal(t, zapcore.WarnLevel, c.Level.Level())
	assert.Equal(t, "time", c.EncoderConfig.TimeKey)
	assert.Equal(t, []string{"stdout"}, c.OutputPaths)

	t.Setenv(EnvLogLevel, "loud")
	assert.Equal(t, zapcore.InfoLevel, newConfig().Level.Level())

	t.Setenv(EnvDebug, "true")
	assert.True(t, newConfig().Development)
}
