package common

import (
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var postgres = &fixture{
	name: "Postgres",
	req: testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "carfeed",
			"POSTGRES_PASSWORD": "carfeed",
			"POSTGRES_DB":       "feedback_db",
		},
		// Postgres logs readiness twice: once for the init server, once for the real one.
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(60 * time.Second),
	},
}

// PostgresContainer is the shared feedback_db instance.
type PostgresContainer struct {
	f *fixture
}

// StartPostgres returns the shared Postgres container, starting it on first use.
func StartPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	postgres.start(t)
	return &PostgresContainer{f: postgres}
}

// DSN returns a lib/pq connection string.
func (c *PostgresContainer) DSN() string {
	return fmt.Sprintf("postgres://carfeed:carfeed@%s/feedback_db?sslmode=disable", c.f.endpoint)
}

// CleanupPostgres terminates the shared container if a test started it.
func CleanupPostgres() {
	postgres.terminate()
}
