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

package datastream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestChannelBuffer_Lifecycle(t *testing.T) {
	b := newChannelBuffer(zap.NewNop().Sugar())
	assert.Equal(t, "buffering", b.state.String())

	out, ok := b.processLive(readings(120))
	assert.False(t, ok)
	assert.Nil(t, out)
	_, ok = b.processLive(readings(130, 140))
	assert.False(t, ok)

	assert.Equal(t, readings(100, 110), b.processArchived(readings(100, 110)))
	assert.Equal(t, readings(120, 130, 140), b.processArchived(nil))
	assert.Equal(t, feedThrough, b.state)
	assert.Nil(t, b.pending)

	out, ok = b.processLive(readings(150))
	assert.True(t, ok)
	assert.Equal(t, readings(150), out)
}

func TestChannelBuffer_EmptyArchiveReleasesNothing(t *testing.T) {
	b := newChannelBuffer(zap.NewNop().Sugar())
	assert.Empty(t, b.processArchived(nil))
	assert.Equal(t, "feed-through", b.state.String())
}

func TestChannelBuffer_ArchivedAfterFeedThrough(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	b := newChannelBuffer(zap.New(core).Sugar())
	b.processArchived(nil)

	assert.Equal(t, readings(90), b.processArchived(readings(90)))
	assert.Equal(t, 1, logs.FilterMessage("Archived data received after the end of the archive").Len())
}
