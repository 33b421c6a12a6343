package controllers

import (
	"context"
	"net/http"

	"github.com/connectedautocare/console-gateway/api/responses"
	"github.com/connectedautocare/console-gateway/pkg/config"
	pkgerrors "github.com/connectedautocare/console-gateway/pkg/errors"
	"github.com/connectedautocare/console-gateway/pkg/logger"
)

const envHeader = "X-ConnectedAutoCare-Env"

// Pinger reports reachability of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UpstreamProber reports reachability of the upstream platform API.
type UpstreamProber interface {
	Probe(ctx context.Context, token string) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the token store and the upstream API. A nil store
// pinger reads as the in-memory store and is reported as skipped. An
// unauthorized probe still proves the upstream is reachable.
func HealthReady(cfg *config.Config, logg *logger.Logger, store Pinger, upstream UpstreamProber) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set(envHeader, cfg.App.Env)

		components := map[string]string{}
		ready := true

		if store == nil {
			components["token_store"] = "skipped"
		} else if err := store.Ping(ctx); err != nil {
			components["token_store"] = "down"
			ready = false
			if logg != nil {
				logg.Error(ctx, "token store ping failed", err)
			}
		} else {
			components["token_store"] = "ok"
		}

		if upstream == nil {
			components["platform"] = "skipped"
		} else if err := upstream.Probe(ctx, ""); err != nil && !upstreamReachable(err) {
			components["platform"] = "down"
			ready = false
			if logg != nil {
				logg.Error(ctx, "platform probe failed", err)
			}
		} else {
			components["platform"] = "ok"
		}

		status := "ready"
		code := http.StatusOK
		if !ready {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, code, map[string]any{
			"status":     status,
			"components": components,
		})
	}
}

// upstreamReachable treats an unauthorized reply to the bare probe as
// proof of life; only transport-level failures count as down.
func upstreamReachable(err error) bool {
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() != pkgerrors.CodeUpstream
}
