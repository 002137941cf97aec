package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"praxis/internal/config"
)

func TestSettingsFromConfigHonorsEnv(t *testing.T) {
	t.Setenv("PRAXIS_BRIDGE_PORT", "9001")
	t.Setenv("PRAXIS_BRIDGE_HOST", "0.0.0.0")
	t.Setenv("PRAXIS_BRIDGE_ENABLED", "false")
	cfg := &config.Config{}
	settings := SettingsFromConfig(cfg)
	if settings.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", settings.Port)
	}
	if settings.Host != "0.0.0.0" {
		t.Fatalf("expected host override, got %s", settings.Host)
	}
	if settings.Enabled {
		t.Fatalf("expected enabled=false from env override")
	}
}

func testSettings() Settings {
	return Settings{
		Enabled:      true,
		Host:         "127.0.0.1",
		Port:         0,
		MaxBodyBytes: 1024,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
	}
}

func startTestServer(t *testing.T, q *Queue) *Server {
	t.Helper()
	srv := NewServer(testSettings(), q)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	return srv
}

func TestServerHealthAndList(t *testing.T) {
	t.Parallel()
	q := NewQueue()
	srv := startTestServer(t, q)
	base := srv.BaseURL()

	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || health.Status != string(StatusReady) {
		t.Fatalf("unexpected health: %d %+v", resp.StatusCode, health)
	}

	resp, err = http.Get(base + "/breakpoints")
	if err != nil {
		t.Fatalf("list request failed: %v", err)
	}
	var listing struct {
		Breakpoints []Pending `json:"breakpoints"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	resp.Body.Close()
	if len(listing.Breakpoints) != 0 {
		t.Fatalf("expected empty queue, got %+v", listing.Breakpoints)
	}
}

func TestServerResolvesBreakpoint(t *testing.T) {
	t.Parallel()
	q := NewQueue()
	srv := startTestServer(t, q)
	base := srv.BaseURL()

	done := make(chan error, 1)
	go func() {
		done <- q.Approve(context.Background(), "run-9", testBreakpoint())
	}()

	var id string
	deadline := time.After(2 * time.Second)
	for id == "" {
		select {
		case <-deadline:
			t.Fatal("breakpoint never queued")
		default:
			if pending := q.List(); len(pending) > 0 {
				id = pending[0].ID
			}
		}
	}

	body, _ := json.Marshal(resolveRequest{Approve: true})
	resp, err := http.Post(base+"/breakpoints/"+id+"/resolve", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("resolve request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected approval, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Approve did not return")
	}
}

func TestServerResolveUnknownBreakpoint(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, NewQueue())
	body, _ := json.Marshal(resolveRequest{Approve: true})
	resp, err := http.Post(srv.BaseURL()+"/breakpoints/ghost/resolve", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("resolve request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestServerRejectsOversizedBody(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, NewQueue())
	payload := bytes.Repeat([]byte("a"), 4096)
	resp, err := http.Post(srv.BaseURL()+"/breakpoints/x/resolve", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
}

func TestServerDisabled(t *testing.T) {
	settings := testSettings()
	settings.Enabled = false
	srv := NewServer(settings, NewQueue())
	if err := srv.Start(context.Background()); err == nil {
		t.Fatal("expected error for disabled server")
	}
}
