/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package cache

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeClock struct {
	mu      sync.Mutex
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

type ManagerTestSuite struct {
	suite.Suite
	clock   *fakeClock
	manager *Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (suite *ManagerTestSuite) SetupTest() {
	suite.clock = newFakeClock()
	opts := DefaultOptions()
	opts.applyDefaults()
	suite.manager = newManager(opts, suite.clock.Now)
}

func (suite *ManagerTestSuite) TearDownTest() {
	suite.manager.Destroy()
}

func (suite *ManagerTestSuite) TestSetAndGet() {
	key := CacheKey{Key: "k1"}
	suite.manager.Set(key, []byte(`{"msg":"hello"}`), SetOptions{
		Headers:    map[string]string{"Content-Type": "application/json"},
		StatusCode: 200,
	})

	entry, ok := suite.manager.Get(key)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), []byte(`{"msg":"hello"}`), entry.Data)
	assert.False(suite.T(), entry.Compressed)
	assert.Equal(suite.T(), len(entry.Data), entry.Size)
	assert.Equal(suite.T(), generateETag([]byte(`{"msg":"hello"}`)), entry.ETag)
	assert.True(suite.T(), strings.HasPrefix(entry.ETag, `"`) && strings.HasSuffix(entry.ETag, `"`))
	assert.Equal(suite.T(), "Mon, 10 Mar 2025 12:00:00 GMT", entry.LastModified)
	assert.Equal(suite.T(), defaultTTL, entry.TTL)
	assert.Equal(suite.T(), "application/json", entry.Headers["Content-Type"])

	stats := suite.manager.GetStats()
	assert.Equal(suite.T(), int64(1), stats.Hits)
	assert.Equal(suite.T(), int64(1), stats.Sets)
	assert.Equal(suite.T(), 1, stats.EntryCount)
	assert.Equal(suite.T(), int64(entry.Size), stats.TotalSize)
	assert.Equal(suite.T(), 1.0, stats.HitRate)
}

func (suite *ManagerTestSuite) TestExpiredEntryIsMissAndDelete() {
	key := CacheKey{Key: "short"}
	suite.manager.Set(key, []byte("payload"), SetOptions{TTL: 50 * time.Millisecond})

	suite.clock.Advance(60 * time.Millisecond)

	entry, ok := suite.manager.Get(key)
	assert.False(suite.T(), ok)
	assert.Nil(suite.T(), entry)

	stats := suite.manager.GetStats()
	assert.Equal(suite.T(), int64(1), stats.Misses)
	assert.Equal(suite.T(), int64(1), stats.Deletes)
	assert.Equal(suite.T(), 0, stats.EntryCount)
	assert.Equal(suite.T(), int64(0), stats.TotalSize)
}

func (suite *ManagerTestSuite) TestEntryLiveAtExactTTL() {
	key := CacheKey{Key: "edge"}
	suite.manager.Set(key, []byte("payload"), SetOptions{TTL: 50 * time.Millisecond})

	suite.clock.Advance(50 * time.Millisecond)
	_, ok := suite.manager.Get(key)
	assert.True(suite.T(), ok)
}

func (suite *ManagerTestSuite) TestCompression() {
	testCases := []struct {
		name             string
		payload          []byte
		expectCompressed bool
	}{
		{"BelowThreshold", bytes.Repeat([]byte("a"), 512), false},
		{"AtThreshold", bytes.Repeat([]byte("a"), defaultCompressionThreshold), false},
		{"AboveThreshold", bytes.Repeat([]byte(`{"id":"pr-1","status":"draft"},`), 200), true},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			key := CacheKey{Key: tc.name}
			suite.manager.Set(key, tc.payload, SetOptions{})

			entry, ok := suite.manager.Get(key)
			require.True(t, ok)
			assert.Equal(t, tc.expectCompressed, entry.Compressed)
			assert.Equal(t, len(entry.Data), entry.Size)

			if !tc.expectCompressed {
				assert.Equal(t, tc.payload, entry.Data)
				return
			}
			assert.Less(t, entry.Size, len(tc.payload))
			raw, err := decompress(entry.Data)
			require.NoError(t, err)
			assert.Equal(t, tc.payload, raw)
		})
	}
}

func (suite *ManagerTestSuite) TestCompressionSavings() {
	payload := bytes.Repeat([]byte("procurement "), 500)
	suite.manager.Set(CacheKey{Key: "big"}, payload, SetOptions{})

	entry, ok := suite.manager.Get(CacheKey{Key: "big"})
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), int64(len(payload)-entry.Size), suite.manager.GetStats().CompressionSavings)
}

func (suite *ManagerTestSuite) TestCompressionDisabled() {
	opts := DefaultOptions()
	opts.EnableCompression = false
	manager := newManager(opts, suite.clock.Now)
	defer manager.Destroy()

	payload := bytes.Repeat([]byte("x"), 4096)
	manager.Set(CacheKey{Key: "k"}, payload, SetOptions{})

	entry, ok := manager.Get(CacheKey{Key: "k"})
	require.True(suite.T(), ok)
	assert.False(suite.T(), entry.Compressed)
	assert.Equal(suite.T(), payload, entry.Data)
}

func (suite *ManagerTestSuite) TestSetReplacesEntry() {
	key := CacheKey{Key: "k"}
	suite.manager.Set(key, []byte("first value"), SetOptions{})
	suite.manager.Set(key, []byte("second"), SetOptions{})

	entry, ok := suite.manager.Get(key)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), []byte("second"), entry.Data)

	stats := suite.manager.GetStats()
	assert.Equal(suite.T(), 1, stats.EntryCount)
	assert.Equal(suite.T(), int64(len("second")), stats.TotalSize)
	assert.Equal(suite.T(), int64(2), stats.Sets)
}

func (suite *ManagerTestSuite) TestValidatorsDisabled() {
	opts := DefaultOptions()
	opts.EnableETag = false
	opts.EnableLastModified = false
	manager := newManager(opts, suite.clock.Now)
	defer manager.Destroy()

	manager.Set(CacheKey{Key: "k"}, []byte("data"), SetOptions{})
	entry, ok := manager.Get(CacheKey{Key: "k"})
	require.True(suite.T(), ok)
	assert.Empty(suite.T(), entry.ETag)
	assert.Empty(suite.T(), entry.LastModified)
}

func (suite *ManagerTestSuite) TestDeleteAndClear() {
	suite.manager.Set(CacheKey{Key: "a"}, []byte("aaa"), SetOptions{})
	suite.manager.Set(CacheKey{Key: "b"}, []byte("bbb"), SetOptions{})
	suite.manager.Set(CacheKey{Key: "c"}, []byte("ccc"), SetOptions{})

	assert.True(suite.T(), suite.manager.Delete(CacheKey{Key: "a"}))
	assert.False(suite.T(), suite.manager.Delete(CacheKey{Key: "a"}))

	stats := suite.manager.GetStats()
	assert.Equal(suite.T(), int64(1), stats.Deletes)
	assert.Equal(suite.T(), 2, stats.EntryCount)
	assert.Equal(suite.T(), int64(6), stats.TotalSize)

	suite.manager.Clear()
	stats = suite.manager.GetStats()
	assert.Equal(suite.T(), int64(3), stats.Deletes)
	assert.Equal(suite.T(), 0, stats.EntryCount)
	assert.Equal(suite.T(), int64(0), stats.TotalSize)
}

func (suite *ManagerTestSuite) TestCleanupExpired() {
	suite.manager.Set(CacheKey{Key: "short"}, []byte("1"), SetOptions{TTL: time.Second})
	suite.manager.Set(CacheKey{Key: "long"}, []byte("2"), SetOptions{TTL: time.Hour})

	suite.clock.Advance(2 * time.Second)

	assert.Equal(suite.T(), 1, suite.manager.CleanupExpired())
	stats := suite.manager.GetStats()
	assert.Equal(suite.T(), 1, stats.EntryCount)
	assert.Equal(suite.T(), int64(1), stats.Deletes)

	_, ok := suite.manager.Get(CacheKey{Key: "long"})
	assert.True(suite.T(), ok)
}

func (suite *ManagerTestSuite) TestMaxEntriesEvictsLeastRecentlyUsed() {
	opts := DefaultOptions()
	opts.MaxEntries = 2
	manager := newManager(opts, suite.clock.Now)
	defer manager.Destroy()

	manager.Set(CacheKey{Key: "a"}, []byte("a"), SetOptions{})
	manager.Set(CacheKey{Key: "b"}, []byte("b"), SetOptions{})
	_, _ = manager.Get(CacheKey{Key: "a"})
	manager.Set(CacheKey{Key: "c"}, []byte("c"), SetOptions{})

	_, okA := manager.Get(CacheKey{Key: "a"})
	_, okB := manager.Get(CacheKey{Key: "b"})
	_, okC := manager.Get(CacheKey{Key: "c"})
	assert.True(suite.T(), okA)
	assert.False(suite.T(), okB)
	assert.True(suite.T(), okC)
	assert.Equal(suite.T(), int64(1), manager.GetStats().Evictions)
}

func (suite *ManagerTestSuite) TestInvalidatePrefix() {
	suite.manager.Set(CacheKey{Key: "1"}, []byte("x"), SetOptions{Path: "/api/purchase-requests"})
	suite.manager.Set(CacheKey{Key: "2"}, []byte("x"), SetOptions{Path: "/api/purchase-requests/42"})
	suite.manager.Set(CacheKey{Key: "3"}, []byte("x"), SetOptions{Path: "/api/suppliers"})

	assert.Equal(suite.T(), 2, suite.manager.InvalidatePrefix("/api/purchase-requests"))
	assert.Equal(suite.T(), 0, suite.manager.InvalidatePrefix(""))
	assert.Equal(suite.T(), 1, suite.manager.GetStats().EntryCount)
}

func (suite *ManagerTestSuite) TestAverageResponseTime() {
	suite.manager.RecordResponseTime(10 * time.Millisecond)
	suite.manager.RecordResponseTime(30 * time.Millisecond)
	assert.Equal(suite.T(), 20.0, suite.manager.GetStats().AverageResponseTime)
}

func (suite *ManagerTestSuite) TestDisabledManager() {
	opts := DefaultOptions()
	opts.Disabled = true
	manager := NewManager(opts)
	defer manager.Destroy()

	manager.Set(CacheKey{Key: "k"}, []byte("data"), SetOptions{})
	_, ok := manager.Get(CacheKey{Key: "k"})
	assert.False(suite.T(), ok)
	assert.False(suite.T(), manager.Delete(CacheKey{Key: "k"}))
	assert.False(suite.T(), manager.GetStats().Enabled)
}

func (suite *ManagerTestSuite) TestDestroyIsIdempotent() {
	manager := NewManager(DefaultOptions())
	manager.Set(CacheKey{Key: "k"}, []byte("data"), SetOptions{})

	assert.NotPanics(suite.T(), func() {
		manager.Destroy()
		manager.Destroy()
	})
	assert.Equal(suite.T(), 0, manager.GetStats().EntryCount)
}

func (suite *ManagerTestSuite) TestSetAndExpireWithWallClock() {
	manager := NewManager(DefaultOptions())
	defer manager.Destroy()

	key := CacheKey{Key: "k1"}
	manager.Set(key, []byte(`{"msg":"hello"}`), SetOptions{TTL: 100 * time.Millisecond})

	entry, ok := manager.Get(key)
	require.True(suite.T(), ok)
	assert.False(suite.T(), entry.Compressed)
	assert.Equal(suite.T(), int64(1), manager.GetStats().Hits)

	time.Sleep(150 * time.Millisecond)

	_, ok = manager.Get(key)
	assert.False(suite.T(), ok)
	stats := manager.GetStats()
	assert.Equal(suite.T(), int64(1), stats.Misses)
	assert.Equal(suite.T(), int64(1), stats.Deletes)
}

func (suite *ManagerTestSuite) TestBackgroundSweep() {
	opts := DefaultOptions()
	opts.CleanupInterval = 20 * time.Millisecond
	manager := NewManager(opts)
	defer manager.Destroy()

	manager.Set(CacheKey{Key: "k"}, []byte("data"), SetOptions{TTL: 10 * time.Millisecond})

	assert.Eventually(suite.T(), func() bool {
		return manager.GetStats().EntryCount == 0
	}, time.Second, 10*time.Millisecond)
	assert.Equal(suite.T(), int64(0), manager.GetStats().Misses)
}

func (suite *ManagerTestSuite) TestConcurrentAccess() {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := CacheKey{Key: "shared"}
			suite.manager.Set(key, bytes.Repeat([]byte{byte('a' + i%26)}, 10+i), SetOptions{})
			_, _ = suite.manager.Get(key)
		}(i)
	}
	wg.Wait()

	stats := suite.manager.GetStats()
	assert.Equal(suite.T(), 1, stats.EntryCount)
	entry, ok := suite.manager.Get(CacheKey{Key: "shared"})
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), int64(entry.Size), stats.TotalSize)
}
