package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/page-analyzer/internal/config"
)

func memoryConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{Port: 8000, SecretKey: "test", ShutdownSeconds: 1},
		HTTP:   config.HTTPConfig{TimeoutSeconds: 2, UserAgent: "test-agent"},
		DB:     config.DBConfig{DSN: config.MemoryDSN, MinConns: 2, MaxConns: 3},
	}
}

func TestNewAppInMemory(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewAppMigrationFailure(t *testing.T) {
	orig := migrate
	t.Cleanup(func() { migrate = orig })
	migrate = func(string) (uint, bool, error) { return 0, false, errors.New("no database") }

	cfg := memoryConfig()
	cfg.DB.DSN = "postgres://localhost:1/none"
	cfg.DB.MigrateOnStart = true

	_, err := NewApp(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "migrate database")
}

func TestNewAppStoreFailure(t *testing.T) {
	cfg := memoryConfig()
	cfg.DB.DSN = "not a dsn ://"

	_, err := NewApp(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "open postgres store")
}

func TestServeStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/healthz")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, "ok\n", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
