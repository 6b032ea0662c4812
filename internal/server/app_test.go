package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/todolist/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = config.MemoryDSN
	c.HTTPAddr = "127.0.0.1:0"
	c.GRPCAddr = "127.0.0.1:0"
	c.LogLevel = "error"
	return c
}

func TestApp_RunInMemoryStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)
	assert.Nil(t, app.db)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("app exited too early: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestApp_RunReportsListenerFailure(t *testing.T) {
	c := memoryConfig()
	c.GRPCAddr = "127.0.0.1:99999"

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- app.Run(context.Background())
	}()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "grpc server")
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after a listener failed")
	}
}

func TestNewApp_UnreachableDatabase(t *testing.T) {
	c := memoryConfig()
	c.DatabaseDSN = "postgres://u:p@127.0.0.1:1/todolist?sslmode=disable&connect_timeout=1"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewApp(ctx, c)
	assert.ErrorContains(t, err, "db init error")
}

func TestNewApp_BadLogLevel(t *testing.T) {
	c := memoryConfig()
	c.LogLevel = "loud"

	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)
}
