package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/fragility/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetStores(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	initOnce = sync.Once{}  // Reset for test
	closeOnce = sync.Once{} // Reset for test
	t.Cleanup(func() {
		CloseStores()
		Manager.Lock()
		Manager.cache, Manager.history = nil, nil
		Manager.Unlock()
	})
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite defaults", func(t *testing.T) {
		resetStores(t)

		require.NoError(t, InitStores(schema.SQLiteBackend, "", schema.SQLiteBackend, ""))
		assert.NotNil(t, Manager.GetCacheStore())
		assert.NotNil(t, Manager.GetHistoryStore())
		CloseStores()

		_, err := os.Stat(GetCacheDBFilePath())
		assert.NoError(t, err, "cache database file should be created")
		_, err = os.Stat(GetHistoryDBFilePath())
		assert.NoError(t, err, "history database file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetStores(t)

		assert.NoError(t, InitStores(schema.NoneBackend, "", schema.NoneBackend, ""))
		first := Manager.GetCacheStore()
		assert.NoError(t, InitStores(schema.SQLiteBackend, "", schema.SQLiteBackend, ""))
		assert.Same(t, first, Manager.GetCacheStore())

		CloseStores()
		CloseStores()
	})

	t.Run("empty backend leaves store unset", func(t *testing.T) {
		resetStores(t)

		require.NoError(t, InitStores(schema.NoneBackend, "", "", ""))
		assert.NotNil(t, Manager.GetCacheStore())
		assert.Nil(t, Manager.GetHistoryStore())
	})

	t.Run("bad backend", func(t *testing.T) {
		resetStores(t)

		err := InitStores("redis", "", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize weather cache")
	})
}

func TestClearCacheAndHistory(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.db")
	historyPath := filepath.Join(dir, "history.db")

	cache, err := NewCacheStore(WeatherCacheTable, schema.SQLiteBackend, cachePath)
	require.NoError(t, err)
	require.NoError(t, cache.Set("k", []byte("v"), 1, time.Now().Unix()))
	require.NoError(t, cache.Close())

	history, err := NewHistoryStore(schema.SQLiteBackend, historyPath)
	require.NoError(t, err)
	require.NoError(t, history.Close())

	require.NoError(t, ClearCache(schema.SQLiteBackend, cachePath, ""))
	require.NoError(t, ClearHistory(schema.SQLiteBackend, historyPath, ""))

	_, err = os.Stat(cachePath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(historyPath)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ClearCache(schema.SQLiteBackend, cachePath, ""), "missing file is not an error")
	assert.NoError(t, ClearHistory(schema.NoneBackend, "", ""))
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.Error(t, ClearHistory("redis", "", ""))
}

func TestPrintCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintCacheStatus(&buf, schema.CacheStatus{
		Backend:         "sqlite",
		Connected:       true,
		TotalEntries:    3,
		LastEntryTime:   time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		OldestEntryTime: time.Date(2026, 1, 3, 4, 5, 6, 0, time.UTC),
		TableSizeBytes:  8192,
	})
	out := buf.String()
	assert.Contains(t, out, "Total Entries: 3\n")
	assert.Contains(t, out, "Last Entry: 2026-02-03")
	assert.Contains(t, out, "Table Size: 8192 bytes\n")
}

func TestPrintHistoryStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintHistoryStatus(&buf, schema.HistoryStatus{
		Backend:          "sqlite",
		Connected:        true,
		TotalRuns:        2,
		LastRunID:        2,
		TotalAssessments: 5,
		TableSizes:       map[string]int64{RunsTable: 2, AssessmentsTable: 5},
	})
	out := buf.String()
	assert.Contains(t, out, "Total Runs: 2\n")
	assert.Contains(t, out, "Last Run ID: 2\n")
	assert.Contains(t, out, "Total Assessments: 5\n")
	assert.Less(t,
		bytes.Index(buf.Bytes(), []byte(AssessmentsTable)),
		bytes.Index(buf.Bytes(), []byte(RunsTable+":")),
		"table sizes are printed in name order")
}
