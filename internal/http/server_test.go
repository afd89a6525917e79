package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"grabbit/internal/core"
)

func TestNewServer(t *testing.T) {
	t.Skip("Skipping NewServer test due to global prometheus registry conflicts")
}

func TestCreateHTTPServer(t *testing.T) {
	config := &core.ServerConfig{
		Host:         "0.0.0.0",
		Port:         9090,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	mux := http.NewServeMux()
	server := createHTTPServer(config, mux)

	expectedAddr := "0.0.0.0:9090"
	if server.Addr != expectedAddr {
		t.Errorf("createHTTPServer() Addr = %q, expected %q", server.Addr, expectedAddr)
	}

	if server.Handler != mux {
		t.Errorf("createHTTPServer() Handler mismatch")
	}

	if server.ReadTimeout != config.ReadTimeout {
		t.Errorf("createHTTPServer() ReadTimeout = %v, expected %v", server.ReadTimeout, config.ReadTimeout)
	}

	if server.WriteTimeout != config.WriteTimeout {
		t.Errorf("createHTTPServer() WriteTimeout = %v, expected %v", server.WriteTimeout, config.WriteTimeout)
	}
}

func TestSetupRoutes(t *testing.T) {
	logger := zap.NewNop()
	mux := setupRoutes(logger)

	if mux == nil {
		t.Fatal("setupRoutes() returned nil")
	}

	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	client := &http.Client{}

	req, _ := http.NewRequestWithContext(ctx, "GET", server.URL+"/healthz", http.NoBody)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to call /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz returned status %d, expected %d", resp.StatusCode, http.StatusOK)
	}

	if contentType := resp.Header.Get("Content-Type"); contentType != "application/json" {
		t.Errorf("/healthz Content-Type = %q, expected %q", contentType, "application/json")
	}

	req, _ = http.NewRequestWithContext(ctx, "GET", server.URL+"/readyz", http.NoBody)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("Failed to call /readyz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("/readyz returned status %d, expected %d", resp.StatusCode, http.StatusOK)
	}

	req, _ = http.NewRequestWithContext(ctx, "GET", server.URL+"/metrics", http.NoBody)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("Failed to call /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("/metrics returned status %d, expected %d", resp.StatusCode, http.StatusOK)
	}

	req, _ = http.NewRequestWithContext(ctx, "GET", server.URL+"/", http.NoBody)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("Failed to call /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("/ returned status %d, expected %d", resp.StatusCode, http.StatusOK)
	}

	if contentType := resp.Header.Get("Content-Type"); contentType != "text/html" {
		t.Errorf("/ Content-Type = %q, expected %q", contentType, "text/html")
	}
}

func TestHealthzEndpoint(t *testing.T) {
	logger := zap.NewNop()
	mux := setupRoutes(logger)
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	req, _ := http.NewRequestWithContext(ctx, "GET", server.URL+"/healthz", http.NoBody)
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to call /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	body := make([]byte, 1024)
	n, _ := resp.Body.Read(body)
	bodyStr := string(body[:n])

	expectedContent := `{"status":"ok","service":"grabbit"}`
	if bodyStr != expectedContent {
		t.Errorf("Expected body %q, got %q", expectedContent, bodyStr)
	}
}

func TestReadyzEndpoint(t *testing.T) {
	logger := zap.NewNop()
	mux := setupRoutes(logger)
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	req, _ := http.NewRequestWithContext(ctx, "GET", server.URL+"/readyz", http.NoBody)
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to call /readyz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	body := make([]byte, 1024)
	n, _ := resp.Body.Read(body)
	bodyStr := string(body[:n])

	expectedContent := `{"status":"ready","service":"grabbit"}`
	if bodyStr != expectedContent {
		t.Errorf("Expected body %q, got %q", expectedContent, bodyStr)
	}
}

func TestHomeHandler(t *testing.T) {
	logger := zap.NewNop()
	handler := homeHandler(logger)

	req := httptest.NewRequest("GET", "/", http.NoBody)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	if contentType := rec.Header().Get("Content-Type"); contentType != "text/html" {
		t.Errorf("Expected Content-Type text/html, got %q", contentType)
	}

	body := rec.Body.String()

	expectedElements := []string{
		"Grabbit",
		"<!DOCTYPE html>",
		"<title>Grabbit</title>",
		"/metrics",
		"/healthz",
		"/readyz",
		"Telegram",
	}

	for _, element := range expectedElements {
		if !strings.Contains(body, element) {
			t.Errorf("Expected body to contain %q", element)
		}
	}
}

func TestNewMetrics(t *testing.T) {
	metrics := newMetrics()

	if metrics.LinksTotal == nil {
		t.Error("newMetrics() LinksTotal is nil")
	}
	if metrics.DownloadsTotal == nil {
		t.Error("newMetrics() DownloadsTotal is nil")
	}
	if metrics.TooLargeTotal == nil {
		t.Error("newMetrics() TooLargeTotal is nil")
	}
	if metrics.ErrorsTotal == nil {
		t.Error("newMetrics() ErrorsTotal is nil")
	}
	if metrics.ProcessingTime == nil {
		t.Error("newMetrics() ProcessingTime is nil")
	}
	if metrics.ActiveSessions == nil {
		t.Error("newMetrics() ActiveSessions is nil")
	}
}

func TestServer_StartContextCancellation(t *testing.T) {
	t.Skip("Skipping server start test due to global prometheus registry conflicts")
}
