//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestCheckLock_Redis(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	client, err := Connect(ctx, Config{Addr: endpoint})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	lock := NewCheckLock(client)
	token, ok, err := lock.TryAcquire(ctx, 7, time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire: %v, %v", ok, err)
	}
	if _, ok, _ := lock.TryAcquire(ctx, 7, time.Minute); ok {
		t.Fatal("lock must be exclusive")
	}
	if err := lock.Release(ctx, 7, "someone-else"); err != nil {
		t.Fatalf("foreign release: %v", err)
	}
	if _, ok, _ := lock.TryAcquire(ctx, 7, time.Minute); ok {
		t.Fatal("a foreign token must not free the lock")
	}
	if err := lock.Release(ctx, 7, token); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok, _ := lock.TryAcquire(ctx, 7, time.Minute); !ok {
		t.Fatal("acquire after release should succeed")
	}
}
