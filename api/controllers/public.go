package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/connectedautocare/console-gateway/api/responses"
	pkgerrors "github.com/connectedautocare/console-gateway/pkg/errors"
	"github.com/connectedautocare/console-gateway/pkg/logger"
	"github.com/connectedautocare/console-gateway/pkg/platform"
)

// PublicQuote forwards an anonymous quote request to the upstream rating
// engine. No token travels with it.
func PublicQuote(client upstreamCaller, logg *logger.Logger) http.HandlerFunc {
	return publicForward(client, logg, "/api/quote", "public_quote")
}

// PublicContact forwards a contact form submission upstream.
func PublicContact(client upstreamCaller, logg *logger.Logger) http.HandlerFunc {
	return publicForward(client, logg, "/api/contact", "public_contact")
}

func publicForward(client upstreamCaller, logg *logger.Logger, path, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}
		if len(raw) == 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request body is required"))
			return
		}

		status, header, payload, err := client.Raw(ctx, platform.CallOptions{
			Method:   http.MethodPost,
			Path:     path,
			Endpoint: endpoint,
			Body:     json.RawMessage(raw),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if ct := header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.WriteHeader(status)
		w.Write(payload)
	}
}
