//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DefaultMongoImage is the MongoDB image the integration tests run against.
const DefaultMongoImage = "mongo:7"

// MongoContainer is a throwaway standalone MongoDB server.
type MongoContainer struct {
	testcontainers.Container
	URI string
}

// SkipIfNoDocker skips the test when no Docker daemon is reachable.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// NewMongoContainer starts MongoDB and waits for it to accept connections.
func NewMongoContainer(ctx context.Context) (*MongoContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultMongoImage,
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start mongo container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("mongo container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("mongo container port: %w", err)
	}

	return &MongoContainer{
		Container: container,
		URI:       fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
	}, nil
}

// NewMongoReplicaSet starts a single-node replica set, which multi-document
// transactions require.
func NewMongoReplicaSet(ctx context.Context) (*MongoContainer, error) {
	container, err := mongodb.Run(ctx, DefaultMongoImage, mongodb.WithReplicaSet("rs0"))
	if err != nil {
		return nil, fmt.Errorf("start mongo replica set: %w", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("mongo connection string: %w", err)
	}
	// The member is registered under its container hostname, so talk to it
	// directly instead of discovering the set.
	u, err := url.Parse(uri)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("parse mongo uri: %w", err)
	}
	q := u.Query()
	q.Set("directConnection", "true")
	u.RawQuery = q.Encode()

	return &MongoContainer{
		Container: container,
		URI:       u.String(),
	}, nil
}

// CleanupContainer terminates container, logging failures.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container != nil {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	}
}
