package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/connectedautocare/console-gateway/pkg/config"
	pkgerrors "github.com/connectedautocare/console-gateway/pkg/errors"
	"github.com/connectedautocare/console-gateway/pkg/logger"
	"github.com/connectedautocare/console-gateway/pkg/metrics"
)

// UnauthorizedFunc is invoked at most once per call that the upstream
// rejected as unauthorized. It decouples the HTTP layer from whichever
// component reacts to an expired session.
type UnauthorizedFunc func(sessionID string)

// Client is the token-gated HTTP helper for the upstream platform API.
// It injects bearer credentials, decodes JSON envelopes, and reports
// unauthorized responses through the configured hook.
type Client struct {
	baseURL        string
	http           *http.Client
	logg           *logger.Logger
	metrics        *metrics.UpstreamMetrics
	onUnauthorized UnauthorizedFunc
}

// ClientParams bundles the dependencies required to build a platform client.
type ClientParams struct {
	Config         config.PlatformConfig
	Logger         *logger.Logger
	Metrics        *metrics.UpstreamMetrics
	OnUnauthorized UnauthorizedFunc
	HTTPClient     *http.Client
}

// NewClient constructs a platform client with the provided dependencies.
func NewClient(params ClientParams) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(params.Config.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("platform base url is required")
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		timeout := params.Config.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:        base,
		http:           httpClient,
		logg:           params.Logger,
		metrics:        params.Metrics,
		onUnauthorized: params.OnUnauthorized,
	}, nil
}

// CallOptions describes a single upstream request.
type CallOptions struct {
	Method   string
	Path     string
	Endpoint string
	Query    url.Values

	// Token, when set, is attached as a bearer Authorization header. The
	// helper only ever reads the value; it never touches the token store.
	Token     string
	SessionID string

	Body    any
	Headers http.Header
	Out     any

	// NoExpirySignal suppresses the unauthorized hook for calls that are
	// themselves part of establishing or tearing down a session.
	NoExpirySignal bool
}

// Call performs an upstream request and decodes the JSON reply into
// opts.Out when provided. Unauthorized responses fire the expiry hook and
// fail the call; callers must treat that as terminal, never retry. A 401
// on a session-establishing call means bad credentials rather than an
// expired session, so those keep the upstream's own message.
func (c *Client) Call(ctx context.Context, opts CallOptions) error {
	status, _, body, err := c.do(ctx, opts)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !opts.NoExpirySignal {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
	}
	if status >= 400 {
		return upstreamFailure(status, body)
	}

	if opts.Out != nil {
		if err := json.Unmarshal(body, opts.Out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode upstream response")
		}
	}
	return nil
}

// Raw performs an upstream request and returns the response verbatim for
// passthrough routes. Status mapping is left to the caller; unauthorized
// responses still fire the expiry hook.
func (c *Client) Raw(ctx context.Context, opts CallOptions) (int, http.Header, []byte, error) {
	return c.do(ctx, opts)
}

func (c *Client) do(ctx context.Context, opts CallOptions) (int, http.Header, []byte, error) {
	var reader io.Reader
	if opts.Body != nil {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return 0, nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	target := c.baseURL + opts.Path
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, target, reader)
	if err != nil {
		return 0, nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upstream request")
	}

	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range opts.Headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveDuration(opts.Endpoint, time.Since(start))
	if err != nil {
		c.metrics.IncRequest(opts.Endpoint, "error")
		if c.logg != nil {
			c.logg.Error(ctx, "upstream request failed", err)
		}
		return 0, nil, nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "network error, please try again")
	}
	defer resp.Body.Close()

	c.metrics.IncRequest(opts.Endpoint, statusClass(resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "read upstream response")
	}

	if resp.StatusCode == http.StatusUnauthorized && !opts.NoExpirySignal && c.onUnauthorized != nil {
		c.onUnauthorized(opts.SessionID)
	}

	if resp.StatusCode < 400 && len(body) > 0 {
		if err := expectJSON(resp.Header.Get("Content-Type")); err != nil {
			return 0, nil, nil, err
		}
	}

	return resp.StatusCode, resp.Header, body, nil
}

func expectJSON(contentType string) error {
	if contentType == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
		return nil
	}
	return pkgerrors.New(
		pkgerrors.CodeUpstream,
		fmt.Sprintf("expected JSON response, got content type %q", mediaType),
	)
}

func upstreamFailure(status int, body []byte) error {
	var parsed upstreamError
	_ = json.Unmarshal(body, &parsed)
	message := parsed.text()

	code := pkgerrors.CodeUpstream
	switch status {
	case http.StatusBadRequest:
		code = pkgerrors.CodeValidation
	case http.StatusUnauthorized:
		code = pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		code = pkgerrors.CodeForbidden
	case http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	case http.StatusConflict:
		code = pkgerrors.CodeConflict
	}
	if message == "" {
		message = pkgerrors.MetadataFor(code).PublicMessage
	}
	return pkgerrors.New(code, message)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
