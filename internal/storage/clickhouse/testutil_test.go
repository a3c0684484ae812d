package clickhouse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Table definitions relative to this package, applied directly for the same
// import-cycle reason as the postgres tests.
const migrationsGlob = "../migrations/clickhouse/*.sql"

// setupTestDB starts a ClickHouse server with the feature and summary tables
// created in database "lab". The returned cleanup must be called after the test.
func setupTestDB(t *testing.T) (*Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "clickhouse/clickhouse-server:24.8-alpine",
			ExposedPorts: []string{"9000/tcp", "8123/tcp"},
			Env: map[string]string{
				"CLICKHOUSE_DB":       "lab",
				"CLICKHOUSE_USER":     "lab",
				"CLICKHOUSE_PASSWORD": "lab",
			},
			WaitingFor: wait.ForHTTP("/ping").
				WithPort("8123/tcp").
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start clickhouse container")

	terminate := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}

	endpoint, err := container.PortEndpoint(ctx, "9000/tcp", "")
	if err != nil {
		terminate()
		require.NoError(t, err, "container endpoint")
	}

	conn, err := NewConn(ctx, fmt.Sprintf("clickhouse://lab:lab@%s/lab", endpoint))
	if err != nil {
		terminate()
		require.NoError(t, err, "connect")
	}

	createTables(t, ctx, conn)

	return conn, func() {
		conn.Close()
		terminate()
	}
}

// createTables runs each statement of every table file in lexical order.
// The native protocol accepts a single statement per Exec.
func createTables(t *testing.T, ctx context.Context, conn *Conn) {
	t.Helper()

	files, err := filepath.Glob(migrationsGlob)
	require.NoError(t, err)
	require.NotEmpty(t, files, "no table files match %s", migrationsGlob)

	for _, file := range files {
		raw, err := os.ReadFile(file)
		require.NoError(t, err, "read %s", file)

		for _, stmt := range strings.Split(string(raw), ";") {
			if !hasSQL(stmt) {
				continue
			}
			require.NoError(t, conn.Exec(ctx, stmt), "apply %s", filepath.Base(file))
		}
	}
}

// hasSQL reports whether stmt holds anything besides blank and comment lines.
func hasSQL(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return true
		}
	}
	return false
}
