package tgtg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/gzip"
)

const (
	// DefaultBaseURL is the platform's mobile API root.
	DefaultBaseURL = "https://apptoogoodtogo.com/api/"

	// DefaultUserAgent emulates the Android app.
	DefaultUserAgent = "TGTG/22.11.11 Dalvik/2.1.0 (Linux; U; Android 14; Pixel 7 Build/UPB3.230519.008)"

	// DefaultLanguage is sent as accept-language.
	DefaultLanguage = "en-GB"

	defaultRequestTimeout = 10 * time.Second
	defaultRetryMax       = 1
	defaultRetryWaitMin   = 500 * time.Millisecond
	defaultRetryWaitMax   = 2 * time.Second

	antiBotCookie = "datadome"
)

// Request is a JSON POST to a path relative to the gateway's base URL.
type Request struct {
	Path          string
	Body          any
	AccessToken   string
	Cookie        string
	CorrelationID string

	// NoRetry sends the request exactly once, for calls with side effects
	// on the user's end such as sending a login email.
	NoRetry bool
}

// Response is the status and fully read (decompressed) body of a call.
type Response struct {
	StatusCode int
	Body       []byte

	// Cookie is the anti-bot cookie set by the server, as "name=value", or
	// empty when the response did not set one.
	Cookie string
}

// Gateway sends JSON requests to the platform. Non-2xx statuses are
// returned as responses, not errors; only network-level failures are errors
// (as *TransportError).
type Gateway interface {
	PostJSON(ctx context.Context, req *Request) (*Response, error)
}

// HTTPGateway implements Gateway over go-retryablehttp. A single request may
// be re-sent on connection errors, 429 and 5xx; whatever the last attempt
// returned is handed back to the caller.
type HTTPGateway struct {
	baseURL      string
	language     string
	userAgent    string
	timeout      time.Duration
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	httpClient   *http.Client
	log          *slog.Logger

	client *retryablehttp.Client
	once   *retryablehttp.Client
}

// GatewayOption configures the HTTPGateway.
type GatewayOption func(*HTTPGateway)

// WithBaseURL overrides the default API root.
func WithBaseURL(u string) GatewayOption {
	return func(g *HTTPGateway) {
		g.baseURL = strings.TrimRight(u, "/") + "/"
	}
}

// WithLanguage overrides the accept-language header.
func WithLanguage(lang string) GatewayOption {
	return func(g *HTTPGateway) {
		g.language = lang
	}
}

// WithUserAgent overrides the emulated client user agent.
func WithUserAgent(ua string) GatewayOption {
	return func(g *HTTPGateway) {
		g.userAgent = ua
	}
}

// WithRequestTimeout bounds every individual HTTP call.
func WithRequestTimeout(d time.Duration) GatewayOption {
	return func(g *HTTPGateway) {
		g.timeout = d
	}
}

// WithRetry sets how many times one request is re-sent on connection errors,
// 429 and 5xx, and the backoff bounds between attempts.
func WithRetry(maxRetries int, waitMin, waitMax time.Duration) GatewayOption {
	return func(g *HTTPGateway) {
		g.retryMax = maxRetries
		g.retryWaitMin = waitMin
		g.retryWaitMax = waitMax
	}
}

// WithGatewayHTTPClient overrides the underlying HTTP client.
func WithGatewayHTTPClient(hc *http.Client) GatewayOption {
	return func(g *HTTPGateway) {
		g.httpClient = hc
	}
}

// WithGatewayLogger sets the logger used for retry diagnostics.
func WithGatewayLogger(l *slog.Logger) GatewayOption {
	return func(g *HTTPGateway) {
		g.log = l
	}
}

// NewHTTPGateway creates a gateway with the emulated mobile client's
// default headers.
func NewHTTPGateway(opts ...GatewayOption) *HTTPGateway {
	g := &HTTPGateway{
		baseURL:      DefaultBaseURL,
		language:     DefaultLanguage,
		userAgent:    DefaultUserAgent,
		timeout:      defaultRequestTimeout,
		retryMax:     defaultRetryMax,
		retryWaitMin: defaultRetryWaitMin,
		retryWaitMax: defaultRetryWaitMax,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.client = g.newRetryClient(g.retryMax)
	g.once = g.newRetryClient(0)
	g.once.HTTPClient = g.client.HTTPClient

	return g
}

func (g *HTTPGateway) newRetryClient(retryMax int) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	if g.httpClient != nil {
		rc.HTTPClient = g.httpClient
	}
	rc.HTTPClient.Timeout = g.timeout
	rc.RetryMax = retryMax
	rc.RetryWaitMin = g.retryWaitMin
	rc.RetryWaitMax = g.retryWaitMax
	rc.Logger = g.log
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return rc
}

// PostJSON implements Gateway.
func (g *HTTPGateway) PostJSON(ctx context.Context, req *Request) (*Response, error) {
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", req.Path, err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.baseURL+strings.TrimLeft(req.Path, "/"),
		payload,
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", req.Path, err)
	}
	g.setHeaders(httpReq.Header, req)

	client := g.client
	if req.NoRetry {
		client = g.once
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, &TransportError{Op: req.Path, Err: err}
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, &TransportError{Op: req.Path, Err: err}
	}

	out := &Response{StatusCode: resp.StatusCode, Body: body}
	for _, c := range resp.Cookies() {
		if c.Name == antiBotCookie {
			out.Cookie = c.Name + "=" + c.Value
		}
	}
	return out, nil
}

func (g *HTTPGateway) setHeaders(h http.Header, req *Request) {
	h.Set("Accept-Language", g.language)
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Accept-Encoding", "gzip")
	h.Set("User-Agent", g.userAgent)
	if req.CorrelationID != "" {
		h.Set("X-Correlation-ID", req.CorrelationID)
	}
	if req.Cookie != "" {
		h.Set("Cookie", req.Cookie)
	}
	if req.AccessToken != "" {
		h.Set("Authorization", "Bearer "+req.AccessToken)
	}
}

// readBody reads the whole body, inflating it when the server honored
// accept-encoding: gzip. Setting that header by hand turns off net/http's
// transparent decompression.
func readBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(raw) == 0 || !strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		return raw, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("opening gzip body: %w", err)
	}
	defer zr.Close()

	body, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflating gzip body: %w", err)
	}
	return body, nil
}
