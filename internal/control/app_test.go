package control

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/ethalive/internal/core/config"
	"github.com/vietddude/ethalive/internal/core/domain"
	"github.com/vietddude/ethalive/internal/infra/notify"
)

func newNode(t *testing.T, result string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"` + result + `"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

type webhookSink struct {
	mu     sync.Mutex
	bodies []string
}

func (s *webhookSink) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.bodies = append(s.bodies, string(body))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func testConfig(local, remote, webhook string) *config.AppConfig {
	return &config.AppConfig{
		Server: config.ServerConfig{Port: 0},
		Watchdog: config.WatchdogConfig{
			LocalURL:     local,
			RemoteURL:    remote,
			LagThreshold: 3,
			PollInterval: 20 * time.Millisecond,
			RPCTimeout:   time.Second,
		},
		Alert: config.AlertConfig{
			WebhookURL: webhook,
			Cooldown:   time.Hour,
			Timeout:    time.Second,
		},
		History: config.HistoryConfig{MaxMemory: 100},
	}
}

func TestApp_RunOnce_Lagging(t *testing.T) {
	local := newNode(t, "0x60")  // 96
	remote := newNode(t, "0x64") // 100
	sink := &webhookSink{}
	hook := httptest.NewServer(http.HandlerFunc(sink.handler))
	defer hook.Close()

	app, err := NewApp(testConfig(local.URL, remote.URL, hook.URL))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer app.Close()

	check := app.RunOnce(context.Background())
	if check.Verdict != domain.VerdictLagging || check.Lag != 4 {
		t.Fatalf("expected lagging by 4, got %s lag %d", check.Verdict, check.Lag)
	}
	if check.Alert != domain.AlertSent {
		t.Errorf("expected alert sent, got %s", check.Alert)
	}

	second := app.RunOnce(context.Background())
	if second.Alert != domain.AlertSuppressed {
		t.Errorf("expected second alert to be suppressed, got %s", second.Alert)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.bodies) != 1 || !strings.Contains(sink.bodies[0], `"content"`) {
		t.Errorf("expected one webhook post with content, got %v", sink.bodies)
	}

	recent, err := app.History().Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("history query failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("expected 2 history records, got %d", len(recent))
	}
}

func TestApp_RunOnce_SyncedWithoutWebhook(t *testing.T) {
	local := newNode(t, "0x64")
	remote := newNode(t, "0x64")

	app, err := NewApp(testConfig(local.URL, remote.URL, ""))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer app.Close()

	check := app.RunOnce(context.Background())
	if !check.Healthy() {
		t.Errorf("expected synced, got %s", check.Verdict)
	}
}

func TestNewApp_RejectsMissingEndpoint(t *testing.T) {
	if _, err := NewApp(testConfig("", "http://remote", "")); err == nil {
		t.Fatal("expected error for missing local endpoint")
	}
}

func TestApp_GracefulShutdown(t *testing.T) {
	local := newNode(t, "0x64")
	remote := newNode(t, "0x64")

	app, err := NewApp(testConfig(local.URL, remote.URL, ""))
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Let a few cycles run
	time.Sleep(100 * time.Millisecond)

	// Trigger shutdown
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}

	select {
	case <-app.done:
	default:
		t.Error("watchdog loop still running after Stop")
	}

	recent, _ := app.History().Recent(context.Background(), 0)
	if len(recent) < 2 {
		t.Errorf("expected several recorded cycles, got %d", len(recent))
	}
}

func TestNewApp_WithNotifierReplacesWebhook(t *testing.T) {
	local := newNode(t, "0x60")
	remote := newNode(t, "0x64")
	sink := &webhookSink{}
	hook := httptest.NewServer(http.HandlerFunc(sink.handler))
	defer hook.Close()

	cfg := testConfig(local.URL, remote.URL, hook.URL)
	for i := 0; i < 2; i++ {
		app, err := NewApp(cfg, WithNotifier(notify.Nop{}))
		if err != nil {
			t.Fatalf("NewApp failed: %v", err)
		}
		check := app.RunOnce(context.Background())
		app.Close()
		if check.Verdict != domain.VerdictLagging {
			t.Fatalf("run %d: expected lagging, got %s", i, check.Verdict)
		}
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.bodies) != 0 {
		t.Errorf("expected no webhook posts, got %d", len(sink.bodies))
	}
}
