package common

import (
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var surreal = &fixture{
	name: "SurrealDB",
	req: testcontainers.ContainerRequest{
		Image:        "surrealdb/surrealdb:v3.0.0",
		ExposedPorts: []string{"8000/tcp"},
		Cmd:          []string{"start", "--user", "root", "--pass", "root"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("8000/tcp"),
			wait.ForLog("Started web server"),
		).WithDeadline(60 * time.Second),
	},
}

// SurrealDBContainer is the shared SurrealDB instance (root/root).
type SurrealDBContainer struct {
	f *fixture
}

// StartSurrealDB returns the shared SurrealDB container, starting it on
// first use. Skips unless CARFEED_TEST_DOCKER=true.
func StartSurrealDB(t *testing.T) *SurrealDBContainer {
	t.Helper()
	surreal.start(t)
	return &SurrealDBContainer{f: surreal}
}

// Address is the WebSocket RPC endpoint.
func (c *SurrealDBContainer) Address() string {
	return "ws://" + c.f.endpoint + "/rpc"
}

// CleanupSurrealDB terminates the shared container if a test started it.
func CleanupSurrealDB() {
	surreal.terminate()
}
