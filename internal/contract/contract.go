// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/fragility/schema"
)

// RegionSource supplies the four raw attribute records of a region.
type RegionSource interface {
	// Load returns the records for one region id. Unknown ids fail with
	// *schema.RegionNotFoundError.
	Load(ctx context.Context, regionID string) (schema.RegionData, error)

	// List returns every region id the source knows, sorted.
	List(ctx context.Context) ([]string, error)
}

// Enricher overrides part of the raw region data with values from a live service.
type Enricher interface {
	// Name identifies the enrichment in assessment output.
	Name() string

	// Enrich returns a copy of data with the live values applied. The input is not modified.
	Enrich(ctx context.Context, geo schema.Geometry, data schema.RegionData) (schema.RegionData, error)
}

// RegionNamer resolves a human readable name for a coordinate.
type RegionNamer interface {
	RegionName(ctx context.Context, lat, lon float64) (string, error)
}

// CacheManager defines the interface for managing stores.
// This allows the persistence layer to be mocked for testing.
type CacheManager interface {
	GetCacheStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking assessment runs.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// RecordAssessment stores one assessment under a run
	RecordAssessment(runID int64, assessment schema.Assessment) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalAssessments int) error

	// ListRuns returns the most recent runs, newest first. A limit <= 0 returns all runs.
	ListRuns(limit int) ([]schema.RunRecord, error)

	// ListAssessments returns the stored assessments of one run, or of every run when runID is 0
	ListAssessments(runID int64) ([]schema.AssessmentRecord, error)

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection
	Close() error
}
