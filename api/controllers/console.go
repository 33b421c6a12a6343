package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/connectedautocare/console-gateway/api/middleware"
	"github.com/connectedautocare/console-gateway/api/responses"
	"github.com/connectedautocare/console-gateway/internal/session"
	pkgerrors "github.com/connectedautocare/console-gateway/pkg/errors"
	"github.com/connectedautocare/console-gateway/pkg/logger"
	"github.com/connectedautocare/console-gateway/pkg/platform"
)

const consolePrefix = "/api/console"

// upstreamCaller is the slice of the platform client the console routes use.
type upstreamCaller interface {
	Call(ctx context.Context, opts platform.CallOptions) error
	Raw(ctx context.Context, opts platform.CallOptions) (int, http.Header, []byte, error)
}

// ConsoleProxy forwards a guarded console request verbatim to the upstream
// API with the session's bearer token attached. The browser never sees the
// token; the response passes through untouched except for a 401, which is
// rewritten to the local envelope after the expiry hook has fired.
func ConsoleProxy(client upstreamCaller, mgr *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)

		var body any
		if r.Body != nil {
			raw, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			if len(raw) > 0 {
				body = json.RawMessage(raw)
			}
		}

		status, header, payload, err := client.Raw(ctx, platform.CallOptions{
			Method:    r.Method,
			Path:      "/api" + strings.TrimPrefix(r.URL.Path, consolePrefix),
			Endpoint:  "console_proxy",
			Query:     r.URL.Query(),
			Token:     mgr.Token(ctx, sessionID),
			SessionID: sessionID,
			Body:      body,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if status == http.StatusUnauthorized {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
			return
		}

		if ct := header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.WriteHeader(status)
		w.Write(payload)
	}
}
