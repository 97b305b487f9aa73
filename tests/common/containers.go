// Package common provides shared container fixtures for storage tests.
package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// DockerEnvVar enables tests that need a Docker daemon.
const DockerEnvVar = "CARFEED_TEST_DOCKER"

// RequireDocker skips the test unless container-backed tests are enabled.
func RequireDocker(t *testing.T) {
	t.Helper()
	if ok, _ := strconv.ParseBool(os.Getenv(DockerEnvVar)); !ok {
		t.Skipf("set %s=true to run container-backed tests", DockerEnvVar)
	}
}

// fixture is a container started at most once per test binary and shared
// by every test that asks for it.
type fixture struct {
	name string
	req  testcontainers.ContainerRequest // exposes exactly one port

	once      sync.Once
	container testcontainers.Container
	endpoint  string // host:port
	err       error
}

// start launches the container on first use and fails t if it never came up.
func (f *fixture) start(t *testing.T) {
	t.Helper()
	RequireDocker(t)

	f.once.Do(func() {
		ctx := context.Background()
		c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: f.req,
			Started:          true,
		})
		if err != nil {
			f.err = fmt.Errorf("start %s container: %w", f.name, err)
			return
		}
		f.container = c

		if f.endpoint, err = c.Endpoint(ctx, ""); err != nil {
			f.err = fmt.Errorf("%s endpoint: %w", f.name, err)
		}
	})

	if f.err != nil {
		t.Fatalf("%s container failed: %v", f.name, f.err)
	}
}

func (f *fixture) terminate() {
	if f.container != nil {
		_ = f.container.Terminate(context.Background())
	}
}
