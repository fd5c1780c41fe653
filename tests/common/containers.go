// Package common provides shared test infrastructure
package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"

	pcommon "github.com/bobmcallan/pitfacts/internal/common"
)

const (
	surrealPort  = "8000/tcp"
	postgresPort = "5432/tcp"
)

type surrealSettings struct {
	Image    string
	Username string
	Password string
}

type postgresSettings struct {
	Image    string
	Username string
	Password string
}

// containerSettings are the images and credentials the shared containers run with.
// Credentials follow the application defaults so a test config only has to change
// addresses; images can be pinned with PITFACTS_TEST_SURREALDB_IMAGE and
// PITFACTS_TEST_POSTGRES_IMAGE.
type containerSettings struct {
	SurrealDB surrealSettings
	Postgres  postgresSettings
}

func loadSettings() containerSettings {
	defaults := pcommon.NewDefaultConfig().Storage

	settings := containerSettings{
		SurrealDB: surrealSettings{
			Image:    envOr("PITFACTS_TEST_SURREALDB_IMAGE", "surrealdb/surrealdb:v3.0.0"),
			Username: defaults.SurrealDB.Username,
			Password: defaults.SurrealDB.Password,
		},
		Postgres: postgresSettings{
			Image:    envOr("PITFACTS_TEST_POSTGRES_IMAGE", "postgres:16-alpine"),
			Username: "postgres",
			Password: "postgres",
		},
	}
	if cfg, err := pgxpool.ParseConfig(defaults.Postgres.DSN); err == nil && cfg.ConnConfig.User != "" {
		settings.Postgres.Username = cfg.ConnConfig.User
		settings.Postgres.Password = cfg.ConnConfig.Password
	}
	return settings
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// sharedContainer is one started container and its host:port endpoint.
type sharedContainer struct {
	container testcontainers.Container
	endpoint  string
}

// startContainer starts req and resolves the endpoint of its exposed port. A container
// that starts but cannot be reached is terminated before returning.
func startContainer(ctx context.Context, name string, req testcontainers.ContainerRequest) (*sharedContainer, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start %s container: %w", name, err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		err = fmt.Errorf("get %s endpoint: %w", name, err)
		if termErr := container.Terminate(ctx); termErr != nil {
			err = errors.Join(err, fmt.Errorf("terminate %s container: %w", name, termErr))
		}
		return nil, err
	}

	return &sharedContainer{container: container, endpoint: endpoint}, nil
}

// Cleanup terminates the container.
func (c *sharedContainer) Cleanup() error {
	if c.container == nil {
		return nil
	}
	if err := c.container.Terminate(context.Background()); err != nil {
		return fmt.Errorf("terminate container: %w", err)
	}
	return nil
}

// maxIdentifierLen is the Postgres identifier limit; SurrealDB accepts longer names.
const maxIdentifierLen = 63

// DatabaseName returns a per-test database name that both backends accept.
// Subtests produce names like "Test/subtest", which neither backend allows.
func DatabaseName(t *testing.T) string {
	sanitized := strings.ToLower(strings.NewReplacer("/", "_", " ", "_", "-", "_").Replace(t.Name()))
	name := fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000)
	if len(name) > maxIdentifierLen {
		name = name[len(name)-maxIdentifierLen:]
	}
	return name
}

// SurrealDBConfig returns settings for a fresh database on the shared SurrealDB container.
func SurrealDBConfig(t *testing.T, namespace string) pcommon.SurrealDBConfig {
	t.Helper()
	sc := StartSurrealDB(t)
	username, password := sc.Credentials()
	return pcommon.SurrealDBConfig{
		Address:   sc.Address(),
		Namespace: namespace,
		Database:  DatabaseName(t),
		Username:  username,
		Password:  password,
	}
}

// CreatePostgresDatabase creates a fresh database on the shared Postgres container
// and returns its DSN.
func CreatePostgresDatabase(t *testing.T) string {
	t.Helper()

	pc := StartPostgres(t)
	ctx := context.Background()

	admin, err := pgxpool.New(ctx, pc.DSN("postgres"))
	if err != nil {
		t.Fatalf("connect to Postgres: %v", err)
	}
	defer admin.Close()

	name := DatabaseName(t)
	if _, err := admin.Exec(ctx, fmt.Sprintf(`CREATE DATABASE "%s"`, name)); err != nil {
		t.Fatalf("create database %s: %v", name, err)
	}
	return pc.DSN(name)
}

// CleanupContainers terminates every shared container started by this process.
// Call from TestMain after m.Run.
func CleanupContainers() error {
	return errors.Join(surrealContainer.Cleanup(), postgresContainer.Cleanup())
}
