package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/orderstore/internal/health"
	"github.com/vladislavdragonenkov/orderstore/internal/metrics"
)

// findFreePort находит свободный порт для тестов
func findFreePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

// startTestMetricsServer поднимает сервер проб и ждёт, пока он начнёт отвечать.
func startTestMetricsServer(t *testing.T, pinger healthcheck.Pinger) (string, context.CancelFunc) {
	t.Helper()

	addr := fmt.Sprintf("127.0.0.1:%d", findFreePort(t))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	handler := healthcheck.NewHandler("test")
	handler.RegisterChecker("storage", healthcheck.NewPingChecker("storage", pinger))
	startMetricsServer(ctx, addr, log.WithField("test", t.Name()), handler)

	base := "http://" + addr
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get(base + "/livez")
		if err == nil {
			resp.Body.Close()
			return base, cancel
		}
		if time.Now().After(deadline) {
			t.Fatalf("metrics server did not start: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	return resp.StatusCode, string(body)
}

func TestMetricsServer_ExposesStorageMetrics(t *testing.T) {
	storageMetrics := metrics.NewStorageMetrics()
	storageMetrics.ObserveOperation("order", "find", time.Now(), nil)

	base, _ := startTestMetricsServer(t, &flakyPinger{})

	code, body := get(t, base+"/metrics")
	if code != http.StatusOK {
		t.Fatalf("expected 200 for /metrics, got %d", code)
	}
	if !strings.Contains(body, "orderstore_repository_operations_total") {
		t.Fatal("/metrics must expose repository counters")
	}
}

func TestMetricsServer_ProbesFollowStorage(t *testing.T) {
	pinger := &flakyPinger{}
	base, _ := startTestMetricsServer(t, pinger)

	if code, body := get(t, base+"/livez"); code != http.StatusOK || body != "ok" {
		t.Fatalf("unexpected /livez: %d %q", code, body)
	}
	if code, _ := get(t, base+"/readyz"); code != http.StatusOK {
		t.Fatalf("expected /readyz 200, got %d", code)
	}
	if code, body := get(t, base+"/healthz"); code != http.StatusOK || !strings.Contains(body, `"storage"`) {
		t.Fatalf("unexpected /healthz: %d %q", code, body)
	}

	pinger.fail.Store(true)

	if code, _ := get(t, base+"/readyz"); code != http.StatusServiceUnavailable {
		t.Fatalf("expected /readyz 503 with storage down, got %d", code)
	}
	if code, body := get(t, base+"/healthz"); code != http.StatusServiceUnavailable || !strings.Contains(body, "storage is down") {
		t.Fatalf("unexpected /healthz: %d %q", code, body)
	}
	// Живость процесса от хранилища не зависит.
	if code, _ := get(t, base+"/livez"); code != http.StatusOK {
		t.Fatalf("expected /livez 200, got %d", code)
	}
}

func TestMetricsServer_StopsOnContextCancel(t *testing.T) {
	base, cancel := startTestMetricsServer(t, &flakyPinger{})

	cancel()

	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get(base + "/livez")
		if err != nil {
			return
		}
		resp.Body.Close()
		if time.Now().After(deadline) {
			t.Fatal("server should be stopped after context cancellation")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestShutdownHTTP_NilServer(_ *testing.T) {
	shutdownHTTP(nil, log.WithField("test", "http-nil"))
}
