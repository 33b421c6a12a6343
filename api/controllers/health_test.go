package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/connectedautocare/console-gateway/pkg/config"
	pkgerrors "github.com/connectedautocare/console-gateway/pkg/errors"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

type stubProber struct{ err error }

func (s stubProber) Probe(ctx context.Context, token string) error { return s.err }

func healthConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(healthConfig())(rec, httptest.NewRequest("GET", "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-ConnectedAutoCare-Env") != "test" {
		t.Fatal("env header missing")
	}
}

func TestHealthReadyAllUp(t *testing.T) {
	rec := httptest.NewRecorder()
	handler := HealthReady(healthConfig(), nil, stubPinger{}, stubProber{})
	handler(rec, httptest.NewRequest("GET", "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestHealthReadyUnauthorizedProbeCountsAsUp(t *testing.T) {
	prober := stubProber{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")}
	rec := httptest.NewRecorder()
	HealthReady(healthConfig(), nil, nil, prober)(rec, httptest.NewRequest("GET", "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("an unauthorized probe still proves reachability, status = %d", rec.Code)
	}
}

func TestHealthReadyUpstreamDown(t *testing.T) {
	prober := stubProber{err: pkgerrors.Wrap(pkgerrors.CodeUpstream, errors.New("dial tcp: refused"), "network error, please try again")}
	rec := httptest.NewRecorder()
	HealthReady(healthConfig(), nil, stubPinger{}, prober)(rec, httptest.NewRequest("GET", "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealthReadyStoreDown(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthReady(healthConfig(), nil, stubPinger{err: errors.New("redis: connection refused")}, stubProber{})(rec, httptest.NewRequest("GET", "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}
