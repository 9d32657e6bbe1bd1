package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/schema"
	"github.com/jmoiron/sqlx"
)

// Table names for assessment history.
const (
	RunsTable        = "fragility_runs"
	AssessmentsTable = "fragility_assessments"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sqlx.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := OpenDatabase(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the history tracking tables.
func createHistoryTables(db *sqlx.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{RunsTable, getCreateRunsQuery(backend)},
		{AssessmentsTable, getCreateAssessmentsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for fragility_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(RunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_assessments INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_assessments INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_assessments INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateAssessmentsQuery returns the CREATE TABLE query for fragility_assessments.
func getCreateAssessmentsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(AssessmentsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				assessment_id VARCHAR(36) NOT NULL,
				region_id VARCHAR(128) NOT NULL,
				region_name VARCHAR(512),
				assessed_at DATETIME(6) NOT NULL,
				area_sq_km DOUBLE NOT NULL,
				risk_score DOUBLE NOT NULL,
				risk_class VARCHAR(16) NOT NULL,
				weather_delta DOUBLE NOT NULL,
				surge_delta DOUBLE NOT NULL,
				relay_delta DOUBLE NOT NULL,
				recommendation_count INT NOT NULL,
				top_priority VARCHAR(16) NOT NULL,
				features_json TEXT NOT NULL,
				PRIMARY KEY (run_id, assessment_id)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				assessment_id TEXT NOT NULL,
				region_id TEXT NOT NULL,
				region_name TEXT,
				assessed_at TIMESTAMPTZ NOT NULL,
				area_sq_km DOUBLE PRECISION NOT NULL,
				risk_score DOUBLE PRECISION NOT NULL,
				risk_class TEXT NOT NULL,
				weather_delta DOUBLE PRECISION NOT NULL,
				surge_delta DOUBLE PRECISION NOT NULL,
				relay_delta DOUBLE PRECISION NOT NULL,
				recommendation_count INT NOT NULL,
				top_priority TEXT NOT NULL,
				features_json TEXT NOT NULL,
				PRIMARY KEY (run_id, assessment_id)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				assessment_id TEXT NOT NULL,
				region_id TEXT NOT NULL,
				region_name TEXT,
				assessed_at TEXT NOT NULL,
				area_sq_km REAL NOT NULL,
				risk_score REAL NOT NULL,
				risk_class TEXT NOT NULL,
				weather_delta REAL NOT NULL,
				surge_delta REAL NOT NULL,
				relay_delta REAL NOT NULL,
				recommendation_count INTEGER NOT NULL,
				top_priority TEXT NOT NULL,
				features_json TEXT NOT NULL,
				PRIMARY KEY (run_id, assessment_id)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(RunsTable, hs.backend)

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRowx(query, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, formatTime(startTime, hs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordAssessment stores the summary of one assessment under a run.
func (hs *HistoryStoreImpl) RecordAssessment(runID int64, assessment schema.Assessment) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	record, err := NewAssessmentRecord(runID, assessment)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, assessment_id, region_id, region_name, assessed_at, area_sq_km,
		                risk_score, risk_class, weather_delta, surge_delta, relay_delta,
		                recommendation_count, top_priority, features_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, quoteTableName(AssessmentsTable, hs.backend))

	_, err = hs.db.Exec(hs.db.Rebind(query),
		record.RunID, record.AssessmentID, record.RegionID, record.RegionName,
		formatTime(record.AssessedAt, hs.backend), record.AreaSqKm,
		record.RiskScore, record.RiskClass, record.WeatherDelta, record.SurgeDelta, record.RelayDelta,
		record.RecommendationCount, record.TopPriority, record.FeaturesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// NewAssessmentRecord flattens an assessment into its history row.
func NewAssessmentRecord(runID int64, a schema.Assessment) (schema.AssessmentRecord, error) {
	features, err := json.Marshal(a.Features)
	if err != nil {
		return schema.AssessmentRecord{}, fmt.Errorf("failed to marshal features: %w", err)
	}

	var name *string
	if a.Name != "" {
		n := a.Name
		name = &n
	}

	weather, _ := a.ScenarioDelta(schema.ExtremeWeatherScenario)
	surge, _ := a.ScenarioDelta(schema.LoadSurgeScenario)
	relay, _ := a.ScenarioDelta(schema.RelayFailureScenario)

	return schema.AssessmentRecord{
		RunID:               runID,
		AssessmentID:        a.ID,
		RegionID:            a.Region,
		RegionName:          name,
		AssessedAt:          a.AssessedAt,
		AreaSqKm:            a.Geometry.AreaSqKm,
		RiskScore:           a.Risk.RiskScore,
		RiskClass:           string(a.Risk.RiskClass),
		WeatherDelta:        weather,
		SurgeDelta:          surge,
		RelayDelta:          relay,
		RecommendationCount: int32(len(a.Recommendations)),
		TopPriority:         string(a.TopPriority()),
		FeaturesJSON:        string(features),
	}, nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalAssessments int) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(RunsTable, hs.backend)

	var start sqlTime
	startQuery := hs.db.Rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName))
	if err := hs.db.QueryRowx(startQuery, runID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(start.Time).Milliseconds()

	updateQuery := hs.db.Rebind(fmt.Sprintf(
		`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_assessments = ? WHERE run_id = ?`, quotedTableName))
	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, totalAssessments, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (hs *HistoryStoreImpl) ListRuns(limit int) ([]schema.RunRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(
		"SELECT run_id, start_time, end_time, run_duration_ms, total_assessments, config_params FROM %s ORDER BY run_id DESC",
		quoteTableName(RunsTable, hs.backend))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := hs.db.Queryx(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var start, end sqlTime
		if err := rows.Scan(&record.RunID, &start, &end, &record.RunDurationMs, &record.TotalAssessments, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		record.StartTime = start.Time
		record.EndTime = end.Ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// ListAssessments returns stored assessments ordered by run and region.
func (hs *HistoryStoreImpl) ListAssessments(runID int64) ([]schema.AssessmentRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, assessment_id, region_id, region_name, assessed_at, area_sq_km,
		risk_score, risk_class, weather_delta, surge_delta, relay_delta,
		recommendation_count, top_priority, features_json
		FROM %s`, quoteTableName(AssessmentsTable, hs.backend))
	var args []any
	if runID > 0 {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}
	query += " ORDER BY run_id, region_id, assessment_id"

	rows, err := hs.db.Queryx(hs.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AssessmentRecord
	for rows.Next() {
		var r schema.AssessmentRecord
		var assessedAt sqlTime
		if err := rows.Scan(&r.RunID, &r.AssessmentID, &r.RegionID, &r.RegionName, &assessedAt, &r.AreaSqKm,
			&r.RiskScore, &r.RiskClass, &r.WeatherDelta, &r.SurgeDelta, &r.RelayDelta,
			&r.RecommendationCount, &r.TopPriority, &r.FeaturesJSON); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		r.AssessedAt = assessedAt.Time
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assessments: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(RunsTable, hs.backend)
	if err := hs.db.Get(&status.TotalRuns, fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last sqlTime
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		if err := hs.db.QueryRowx(lastQuery).Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = last.Time

		var oldest sqlTime
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable)
		if err := hs.db.QueryRowx(oldestQuery).Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.Time

		totalQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_assessments), 0) FROM %s", runsTable)
		if err := hs.db.Get(&status.TotalAssessments, totalQuery); err != nil {
			return status, fmt.Errorf("failed to get total assessments: %w", err)
		}
	}

	for _, table := range []string{RunsTable, AssessmentsTable} {
		var count int64
		if err := hs.db.Get(&count, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}
