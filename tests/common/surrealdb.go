package common

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	surrealOnce      sync.Once
	surrealContainer *SurrealDBContainer
	surrealError     error
)

// SurrealDBContainer is the SurrealDB server shared by every test in the process.
type SurrealDBContainer struct {
	sharedContainer
	settings surrealSettings
}

// StartSurrealDB starts the shared SurrealDB container on first use.
func StartSurrealDB(t *testing.T) *SurrealDBContainer {
	t.Helper()

	surrealOnce.Do(func() {
		settings := loadSettings().SurrealDB
		shared, err := startContainer(context.Background(), "SurrealDB", testcontainers.ContainerRequest{
			Image:        settings.Image,
			ExposedPorts: []string{surrealPort},
			Cmd:          []string{"start", "--user", settings.Username, "--pass", settings.Password},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(surrealPort),
				wait.ForLog("Started web server"),
			).WithDeadline(60 * time.Second),
		})
		if err != nil {
			surrealError = err
			return
		}
		surrealContainer = &SurrealDBContainer{sharedContainer: *shared, settings: settings}
	})

	if surrealError != nil {
		t.Fatalf("SurrealDB container failed: %v", surrealError)
	}
	return surrealContainer
}

// Address returns the WebSocket RPC address.
func (c *SurrealDBContainer) Address() string {
	return "ws://" + c.endpoint + "/rpc"
}

// Credentials returns the root user the server was started with.
func (c *SurrealDBContainer) Credentials() (username, password string) {
	return c.settings.Username, c.settings.Password
}

// Cleanup terminates the container.
func (c *SurrealDBContainer) Cleanup() error {
	if c == nil {
		return nil
	}
	return c.sharedContainer.Cleanup()
}
