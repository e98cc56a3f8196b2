package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/money-dash/game/engine"
	"github.com/wricardo/money-dash/game/session"
)

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "Money Dash Server", AppName)
}

func TestFlagDefaults(t *testing.T) {
	var got options
	app := newApp()
	app.Action = func(ctx context.Context, cmd *cli.Command) error {
		got = optionsFrom(cmd)
		return nil
	}

	require.NoError(t, app.Run(context.Background(), []string{"money-dash"}))

	assert.Equal(t, 8080, got.Port)
	assert.Equal(t, "localhost", got.Host)
	assert.Equal(t, "configs", got.ConfigDir)
	assert.Equal(t, 24*time.Hour, got.SessionTTL)
	assert.Equal(t, time.Hour, got.CleanupEvery)
	assert.False(t, got.NgrokEnabled)
	assert.Equal(t, "localhost:8080", got.addr())
}

func TestFlagEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NGROK_AUTH_TOKEN", "secret")

	var got options
	app := newApp()
	app.Action = func(ctx context.Context, cmd *cli.Command) error {
		got = optionsFrom(cmd)
		return nil
	}

	require.NoError(t, app.Run(context.Background(), []string{"money-dash", "--host", "0.0.0.0"}))

	assert.Equal(t, 9090, got.Port)
	assert.Equal(t, "secret", got.NgrokAuth)
	assert.Equal(t, "0.0.0.0:9090", got.addr())
}

func TestInitializeServices(t *testing.T) {
	svcs, err := initializeServices(options{ConfigDir: "configs"}, zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, svcs.game)
	assert.NotNil(t, svcs.sessions)
	assert.Equal(t, "classic", svcs.configs.GetDefault().Name)
}

func TestInitializeServices_DefaultConfig(t *testing.T) {
	svcs, err := initializeServices(options{ConfigDir: "configs", DefaultConfig: "quick"}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "quick", svcs.configs.GetDefault().Name)
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	_, err := initializeServices(options{ConfigDir: "/non/existent/path"}, zap.NewNop())
	assert.Error(t, err)

	_, err = initializeServices(options{ConfigDir: "configs", DefaultConfig: "missing"}, zap.NewNop())
	assert.Error(t, err)
}

func TestMCPEndpoint(t *testing.T) {
	svcs, err := initializeServices(options{ConfigDir: "configs"}, zap.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(newRouter(svcs.game, nil, "http://127.0.0.1:0", zap.NewNop()))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/mcp", "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	resp, err = http.Get(ts.URL + "/mcp")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionCleanupRoutine(t *testing.T) {
	var now atomic.Int64
	now.Store(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC).UnixNano())
	clock := func() time.Time { return time.Unix(0, now.Load()) }

	manager := session.NewManager(session.WithClock(clock))
	_, err := manager.Create("", engine.DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, manager, 5*time.Millisecond, time.Hour, zap.NewNop())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, manager.Count(), "fresh session must survive")

	now.Add(int64(2 * time.Hour))
	assert.Eventually(t, func() bool { return manager.Count() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop")
	}
}

func TestSessionCleanupRoutine_Disabled(t *testing.T) {
	// returns immediately without a positive interval
	sessionCleanupRoutine(context.Background(), session.NewManager(), 0, time.Hour, zap.NewNop())
}

func TestAPIAvailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	assert.True(t, apiAvailable(context.Background(), ts.URL))
	assert.False(t, apiAvailable(context.Background(), "http://127.0.0.1:1"))
}

func TestStartInternalAPI(t *testing.T) {
	svcs, err := initializeServices(options{ConfigDir: "configs"}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	baseURL, httpServer, err := startInternalAPI(ctx, svcs.game, zap.NewNop())
	require.NoError(t, err)
	defer httpServer.Close()

	assert.True(t, strings.HasPrefix(baseURL, "http://127.0.0.1:"))
	assert.Eventually(t, func() bool { return apiAvailable(ctx, baseURL) }, time.Second, 10*time.Millisecond)
}
