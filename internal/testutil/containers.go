//go:build integration

package testutil

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startContainer запускает контейнер, дожидается порта и возвращает адрес host:port.
// Контейнер останавливается через t.Cleanup.
func startContainer(t *testing.T, image string, port string, env map[string]string) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{port + "/tcp"},
			Env:          env,
			WaitingFor:   wait.ForListeningPort(nat.Port(port + "/tcp")).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cleanupCancel()
		_ = container.Terminate(cleanupCtx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, mappedPort.Port())
}

// StartMongo возвращает URI одиночного MongoDB.
func StartMongo(t *testing.T) string {
	return "mongodb://" + startContainer(t, "mongo:7", "27017", nil)
}

// StartRedis возвращает адрес Redis.
func StartRedis(t *testing.T) string {
	return startContainer(t, "redis:7-alpine", "6379", nil)
}

// StartRabbitMQ возвращает AMQP URL брокера.
func StartRabbitMQ(t *testing.T) string {
	return "amqp://guest:guest@" + startContainer(t, "rabbitmq:3.13-alpine", "5672", nil) + "/"
}

// StartPostgres возвращает host и port PostgreSQL с базой onlinestore (postgres/postgres).
func StartPostgres(t *testing.T) (string, string) {
	addr := startContainer(t, "postgres:16-alpine", "5432", map[string]string{
		"POSTGRES_USER":     "postgres",
		"POSTGRES_PASSWORD": "postgres",
		"POSTGRES_DB":       "onlinestore",
	})

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	return host, port
}
