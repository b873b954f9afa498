//go:build integration

package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"ms-servicing/internal/logger"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *sql.DB {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "servicing",
			"POSTGRES_PASSWORD": "servicing",
			"POSTGRES_DB":       "servicing",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://servicing:servicing@%s:%s/servicing?sslmode=disable", host, port.Port())
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))
	return db
}

func TestRunMigrations_Postgres(t *testing.T) {
	db := startPostgres(t)
	runner := NewRunner(db, DefaultOptions(), logger.New(nil))
	defer runner.Close()

	require.NoError(t, runner.RunMigrations())

	version, dirty, err := runner.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)

	var mechanics int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM mechanics").Scan(&mechanics))
	assert.Equal(t, 4, mechanics)

	require.NoError(t, runner.MigrateTo(SchemaVersion))
	require.NoError(t, db.QueryRow("SELECT count(*) FROM mechanics").Scan(&mechanics))
	assert.Equal(t, 0, mechanics)

	require.NoError(t, runner.MigrateDown())
	version, _, err = runner.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}
