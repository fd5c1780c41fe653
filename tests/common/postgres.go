package common

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	postgresOnce      sync.Once
	postgresContainer *PostgresContainer
	postgresError     error
)

// PostgresContainer is the Postgres server shared by every test in the process.
type PostgresContainer struct {
	sharedContainer
	settings postgresSettings
}

// StartPostgres starts the shared Postgres container on first use.
func StartPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	postgresOnce.Do(func() {
		settings := loadSettings().Postgres
		shared, err := startContainer(context.Background(), "Postgres", testcontainers.ContainerRequest{
			Image:        settings.Image,
			ExposedPorts: []string{postgresPort},
			Env: map[string]string{
				"POSTGRES_USER":     settings.Username,
				"POSTGRES_PASSWORD": settings.Password,
				"POSTGRES_DB":       "postgres",
			},
			// The server logs readiness twice: once for the init run, once for the real start.
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(postgresPort),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(60 * time.Second),
		})
		if err != nil {
			postgresError = err
			return
		}
		postgresContainer = &PostgresContainer{sharedContainer: *shared, settings: settings}
	})

	if postgresError != nil {
		t.Fatalf("Postgres container failed: %v", postgresError)
	}
	return postgresContainer
}

// DSN returns a connection string for database name on the shared server.
func (c *PostgresContainer) DSN(database string) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", c.settings.Username, c.settings.Password, c.endpoint, database)
}

// Cleanup terminates the container.
func (c *PostgresContainer) Cleanup() error {
	if c == nil {
		return nil
	}
	return c.sharedContainer.Cleanup()
}
