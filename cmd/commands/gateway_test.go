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
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fermi-ad/extapi-acsys/pkg/config"
)

func TestNewGateway(t *testing.T) {
	conf, err := config.Load(viper.New(), "")
	require.NoError(t, err)
	g, err := newGateway(conf)
	require.NoError(t, err)
	assert.NotNil(t, g.scanner)
	assert.NotNil(t, g.tlg)
	assert.NotNil(t, g.xform)
	assert.Nil(t, g.redis)
	assert.Len(t, g.healthCheckers(), 4)
	assert.NoError(t, g.Close())
}
