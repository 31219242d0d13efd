package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

type servers struct {
	gtaURL, hookURL string
	gtaHits         atomic.Int32
	hookHits        atomic.Int32
}

func startServers(t *testing.T, gtaBody string, hookStatus int) *servers {
	t.Helper()
	s := &servers{}
	gta := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.gtaHits.Add(1)
		_, _ = w.Write([]byte(gtaBody))
	}))
	t.Cleanup(gta.Close)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hookHits.Add(1)
		w.WriteHeader(hookStatus)
	}))
	t.Cleanup(hook.Close)
	s.gtaURL, s.hookURL = gta.URL, hook.URL
	return s
}

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

const oneRecord = `[{"intervention_id":7,"state_act_title":"Local content rule","gta_evaluation":"Green"}]`

func TestRunMissingEnvExitsOne(t *testing.T) {
	srv := startServers(t, oneRecord, http.StatusOK)
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{
			name:    "webhook missing",
			env:     map[string]string{"GTA_API_KEY": "k", "GTA_BASE_URL": srv.gtaURL},
			wantMsg: "FATAL: The 'WEBHOOK_URL' environment variable is not set.",
		},
		{
			name:    "api key missing",
			env:     map[string]string{"WEBHOOK_URL": srv.hookURL, "GTA_BASE_URL": srv.gtaURL},
			wantMsg: "FATAL: The 'GTA_API_KEY' environment variable is not set.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run([]string{"--dotenv", ""}, envFrom(tt.env), &stdout, &stderr)
			if code != 1 {
				t.Fatalf("exit code = %d, want 1", code)
			}
			if !strings.Contains(stderr.String(), tt.wantMsg) {
				t.Fatalf("stderr missing %q:\n%s", tt.wantMsg, stderr.String())
			}
			if !strings.Contains(stderr.String(), "Set the environment variable in your .env file and try again.") {
				t.Fatalf("stderr missing hint:\n%s", stderr.String())
			}
		})
	}
	if srv.gtaHits.Load() != 0 || srv.hookHits.Load() != 0 {
		t.Fatalf("no network calls expected, got gta=%d hook=%d", srv.gtaHits.Load(), srv.hookHits.Load())
	}
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name       string
		gtaBody    string
		hookStatus int
		wantHooks  int32
		wantLog    string
	}{
		{name: "sent", gtaBody: oneRecord, hookStatus: http.StatusOK, wantHooks: 1, wantLog: "Message sent successfully!"},
		{name: "no interventions", gtaBody: `[]`, hookStatus: http.StatusOK, wantHooks: 0, wantLog: "No interventions found."},
		{name: "webhook 500", gtaBody: oneRecord, hookStatus: http.StatusInternalServerError, wantHooks: 1, wantLog: "Failed to send message."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := startServers(t, tt.gtaBody, tt.hookStatus)
			var stdout, stderr bytes.Buffer
			code := run([]string{"--dotenv", ""}, envFrom(map[string]string{
				"WEBHOOK_URL":  srv.hookURL,
				"GTA_API_KEY":  "k",
				"GTA_BASE_URL": srv.gtaURL,
			}), &stdout, &stderr)
			if code != 0 {
				t.Fatalf("exit code = %d, want 0\n%s", code, stderr.String())
			}
			if got := srv.hookHits.Load(); got != tt.wantHooks {
				t.Fatalf("webhook hits = %d, want %d", got, tt.wantHooks)
			}
			if !strings.Contains(stderr.String(), tt.wantLog) {
				t.Fatalf("stderr missing %q:\n%s", tt.wantLog, stderr.String())
			}
			if tt.wantHooks > 0 && !strings.Contains(stdout.String(), `"GTA Evaluation: Green"`) {
				t.Fatalf("expected card on stdout, got:\n%s", stdout.String())
			}
		})
	}
}

func TestRunDryRunNeedsNoWebhook(t *testing.T) {
	srv := startServers(t, oneRecord, http.StatusOK)
	var stdout, stderr bytes.Buffer
	code := run([]string{"--dotenv", "", "--dry-run", "--log-format", "json"}, envFrom(map[string]string{
		"GTA_API_KEY":  "k",
		"GTA_BASE_URL": srv.gtaURL,
	}), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d\n%s", code, stderr.String())
	}
	if srv.hookHits.Load() != 0 {
		t.Fatal("dry run must not post")
	}
	if !strings.Contains(stdout.String(), "Local content rule") {
		t.Fatalf("expected card on stdout:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), `"run_id":"`) {
		t.Fatalf("expected run_id on json log lines:\n%s", stderr.String())
	}
}

func TestRunReadsDotenv(t *testing.T) {
	srv := startServers(t, `[]`, http.StatusOK)
	path := filepath.Join(t.TempDir(), ".env")
	content := "WEBHOOK_URL=" + srv.hookURL + "\nGTA_API_KEY=from-dotenv\nGTA_BASE_URL=" + srv.gtaURL + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"--dotenv", path}, envFrom(nil), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d\n%s", code, stderr.String())
	}
	if srv.gtaHits.Load() != 1 {
		t.Fatalf("gta hits = %d, want 1", srv.gtaHits.Load())
	}
}

func TestWithDotenvEnvironmentWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("A=file\nB=file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	get, err := withDotenv(path, envFrom(map[string]string{"A": "env"}))
	if err != nil {
		t.Fatalf("withDotenv: %v", err)
	}
	if get("A") != "env" || get("B") != "file" || get("C") != "" {
		t.Fatalf("A=%q B=%q C=%q", get("A"), get("B"), get("C"))
	}

	if _, err := withDotenv(filepath.Join(t.TempDir(), "missing"), envFrom(nil)); err != nil {
		t.Fatalf("missing dotenv should be ignored, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"version"}, envFrom(nil), &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(stdout.String()) != Version {
		t.Fatalf("version output = %q", stdout.String())
	}
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--nope"}, envFrom(nil), &stdout, &stderr); code == 0 {
		t.Fatal("expected non-zero exit for unknown flag")
	}
}
