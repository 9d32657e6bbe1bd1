//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestFragilityWithMySQL tests the fragility CLI with MySQL backends.
func TestFragilityWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "fragility",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/fragility?parseTime=true", host, port.Port())
	runBackendSuite(t, "mysql", connStr)
}

// TestFragilityWithPostgres tests the fragility CLI with PostgreSQL backends.
func TestFragilityWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runBackendSuite(t, "postgresql", connStr)
}

// runBackendSuite seeds region data, assesses from SQL and tracks history on one database.
func runBackendSuite(t *testing.T, backend, connStr string) {
	t.Helper()
	env := []string{
		"FRAGILITY_CACHE_BACKEND=" + backend,
		"FRAGILITY_CACHE_DB_CONNECT=" + connStr,
		"FRAGILITY_HISTORY_BACKEND=" + backend,
		"FRAGILITY_HISTORY_DB_CONNECT=" + connStr,
		"FRAGILITY_DATA_BACKEND=" + backend,
		"FRAGILITY_DATA_DB_CONNECT=" + connStr,
	}

	// Run fragility cache clear and history clear
	_, stderr, err := runFragility(t, env, "cache", "clear")
	require.NoError(t, err, stderr)
	_, stderr, err = runFragility(t, env, "history", "clear")
	require.NoError(t, err, stderr)

	// Seed the region tables from the embedded dataset
	stdout, stderr, err := runFragility(t, env, "regions", "seed")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "Seeded")

	// Assess from the SQL source
	_, stderr, err = runFragility(t, env, "assess", "region_1", "region_3", "--data-source", "sql", "--output", "json")
	require.NoError(t, err, stderr)

	stdout, stderr, err = runFragility(t, env, "regions", "list", "--data-source", "sql")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "3 region(s)")

	// Run fragility cache status and history status
	_, stderr, err = runFragility(t, env, "cache", "status")
	require.NoError(t, err, stderr)
	stdout, stderr, err = runFragility(t, env, "history", "status")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "Total Runs: 1")
}
