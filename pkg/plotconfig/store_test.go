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

package plotconfig

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	redisclient "github.com/fermi-ad/extapi-acsys/pkg/shared/clients/redis"
)

func ptr[T any](v T) *T {
	return &v
}

func names(cfgs []Config) []string {
	out := make([]string, len(cfgs))
	for i, c := range cfgs {
		out[i] = c.Name
	}
	return out
}

// stores returns every store implementation available to the test. The redis store needs
// PLOTCONFIG_TEST_REDIS_URL to point at a scratch server.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	out := map[string]Store{"memory": NewMemStore()}
	if url := os.Getenv("PLOTCONFIG_TEST_REDIS_URL"); url != "" {
		cl, err := redisclient.NewRedisClientFromURL(url)
		require.NoError(t, err)
		prefix := "test:" + t.Name()
		require.NoError(t, cl.DeleteKeys(context.Background(), prefix+":general", prefix+":users"))
		out["redis"] = NewRedisStore(cl, prefix)
	}
	for _, s := range out {
		s := s
		t.Cleanup(func() { _ = s.Close() })
	}
	return out
}

func TestStore_UpdateAssignsIDs(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := s.Update(ctx, Config{Name: "linac"})
			require.NoError(t, err)
			assert.Equal(t, 1, id)
			id, err = s.Update(ctx, Config{Name: "booster"})
			require.NoError(t, err)
			assert.Equal(t, 2, id)
			_, err = s.Update(ctx, Config{ID: ptr(10), Name: "recycler"})
			require.NoError(t, err)
			id, err = s.Update(ctx, Config{Name: "main injector"})
			require.NoError(t, err)
			assert.Equal(t, 11, id)

			all, err := s.Find(ctx, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{"linac", "booster", "recycler", "main injector"}, names(all))
		})
	}
}

func TestStore_NamesAreUnique(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := s.Update(ctx, Config{Name: "linac"})
			require.NoError(t, err)
			_, err = s.Update(ctx, Config{Name: "linac"})
			assert.ErrorIs(t, err, acsys.ErrNameTaken)
			_, err = s.Update(ctx, Config{ID: ptr(id + 1), Name: "linac"})
			assert.ErrorIs(t, err, acsys.ErrNameTaken)

			// A configuration may keep its own name.
			got, err := s.Update(ctx, Config{ID: ptr(id), Name: "linac", TimeWindow: 60})
			require.NoError(t, err)
			assert.Equal(t, id, got)
			found, err := s.Find(ctx, &id)
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, 60.0, found[0].TimeWindow)
		})
	}
}

func TestStore_FindAndRemove(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := s.Update(ctx, Config{Name: "linac", Channels: []ChannelSetting{{DRF: "L:D7TOR"}}})
			require.NoError(t, err)

			found, err := s.Find(ctx, &id)
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, []string{"L:D7TOR"}, found[0].DRFs())
			assert.Equal(t, id, *found[0].ID)

			found, err = s.Find(ctx, ptr(id+100))
			require.NoError(t, err)
			assert.Empty(t, found)

			require.NoError(t, s.Remove(ctx, id))
			require.NoError(t, s.Remove(ctx, id))
			found, err = s.Find(ctx, &id)
			require.NoError(t, err)
			assert.Empty(t, found)
		})
	}
}

func TestStore_UserConfigsAreIsolated(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			missing, err := s.FindUser(ctx, "alice")
			require.NoError(t, err)
			assert.Nil(t, missing)

			require.NoError(t, s.UpdateUser(ctx, "alice", Config{ID: ptr(4), Name: "mine", XAxis: "time"}))
			cfg, err := s.FindUser(ctx, "alice")
			require.NoError(t, err)
			require.NotNil(t, cfg)
			assert.Nil(t, cfg.ID)
			assert.Empty(t, cfg.Name)
			assert.Equal(t, "time", cfg.XAxis)

			all, err := s.Find(ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, all)
			// User configurations don't reserve names.
			_, err = s.Update(ctx, Config{Name: "mine"})
			assert.NoError(t, err)
		})
	}
}

func TestMemStore_ConcurrentUpdates(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	ids := make([]int, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := s.Update(ctx, Config{Name: string(rune('a' + i))})
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, ids)
}
