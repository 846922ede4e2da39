package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.png")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func newTestRemoteOCR(t *testing.T, serverURL string, timeout time.Duration) *RemoteOCR {
	t.Helper()
	strategy, err := NewRemoteOCR(serverURL, "test-key", timeout)
	if err != nil {
		t.Fatalf("NewRemoteOCR: %v", err)
	}
	return strategy
}

func TestRemoteOCRSuccess(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":"Patient: Jane Doe"}],"IsErroredOnProcessing":false}`))
	}))
	defer server.Close()

	strategy := newTestRemoteOCR(t, server.URL, time.Second)
	text, failure := strategy.Extract(context.Background(), writeTempFile(t, "img"), "image/png")
	if failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}
	if text != "Patient: Jane Doe" {
		t.Fatalf("expected parsed text, got %q", text)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected apikey header, got %q", gotKey)
	}
}

func TestRemoteOCRNon2xxIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	strategy := newTestRemoteOCR(t, server.URL, time.Second)
	_, failure := strategy.Extract(context.Background(), writeTempFile(t, "img"), "image/png")
	if failure == nil || failure.Kind != FailureUnavailable {
		t.Fatalf("expected unavailable, got %v", failure)
	}
}

func TestRemoteOCRMalformedPayloadIsUnavailable(t *testing.T) {
	cases := map[string]string{
		"not json":       `<<garbage>>`,
		"missing field":  `{"IsErroredOnProcessing":false}`,
		"errored upstre": `{"ParsedResults":[],"IsErroredOnProcessing":true}`,
	}
	for name, body := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		strategy := newTestRemoteOCR(t, server.URL, time.Second)
		_, failure := strategy.Extract(context.Background(), writeTempFile(t, "img"), "image/png")
		server.Close()
		if failure == nil || failure.Kind != FailureUnavailable {
			t.Fatalf("%s: expected unavailable, got %v", name, failure)
		}
	}
}

func TestRemoteOCREmptyTextIsNoText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":"  \n"}],"IsErroredOnProcessing":false}`))
	}))
	defer server.Close()

	strategy := newTestRemoteOCR(t, server.URL, time.Second)
	_, failure := strategy.Extract(context.Background(), writeTempFile(t, "img"), "image/png")
	if failure == nil || failure.Kind != FailureNoText {
		t.Fatalf("expected no-text, got %v", failure)
	}
}

func TestRemoteOCRTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	strategy := newTestRemoteOCR(t, server.URL, 50*time.Millisecond)
	_, failure := strategy.Extract(context.Background(), writeTempFile(t, "img"), "image/png")
	if failure == nil || failure.Kind != FailureTimeout {
		t.Fatalf("expected timeout, got %v", failure)
	}
}

func TestNewRemoteOCRRequiresConfig(t *testing.T) {
	if _, err := NewRemoteOCR("", "key", time.Second); err == nil {
		t.Fatalf("expected error for missing endpoint")
	}
	if _, err := NewRemoteOCR("http://ocr.local", "", time.Second); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}
