package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"template_hub/internal/lib/apierr"
	"template_hub/internal/lib/logger/sl"
	"template_hub/internal/metrics"
	"template_hub/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout      = 15 * time.Second
	DefaultMaxBodyBytes = 8 << 20
)

// TokenSource отдает токен доступа для текущего пользователя
type TokenSource interface {
	GetAccessToken(ctx context.Context, userID string) (string, error)
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64
	Burst      int
	UserID     string
	Tokens     TokenSource
	HTTPClient *http.Client

	// MaxBodyBytes ограничивает размер читаемого ответа
	MaxBodyBytes int64
}

// Client - аутентифицированный HTTP-транспорт к API контента.
// Повторов нет, таймауты задаются через http.Client.
type Client struct {
	log        *slog.Logger
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userID     string
	tokens     TokenSource
	maxBody    int64
}

func NewClient(log *slog.Logger, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	return &Client{
		log:        log,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
		userID:     opts.UserID,
		tokens:     opts.Tokens,
		maxBody:    maxBody,
	}
}

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	out    any
	// requireSuccess: ответ без success=true считается ошибкой
	requireSuccess bool
}

type envelope struct {
	Success *bool             `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   json.RawMessage   `json:"error"`
	Errors  map[string]string `json:"errors"`
	Message string            `json:"message"`
}

func (c *Client) do(ctx context.Context, cl call) error {
	log := c.log.With(
		slog.String("op", cl.op),
		slog.String("method", cl.method),
		slog.String("path", cl.path),
	)

	start := time.Now()
	result := "ok"
	defer func() {
		metrics.APIRequestsTotal.WithLabelValues(cl.op, result).Inc()
		metrics.APIRequestDuration.WithLabelValues(cl.op).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		result = "transport_error"
		log.Warn("rate limiter wait failed", sl.Err(err))
		return &apierr.TransportError{Op: cl.op, Err: err}
	}

	req, err := c.newRequest(ctx, cl)
	if err != nil {
		result = "transport_error"
		log.Error("failed to build request", sl.Err(err))
		return &apierr.TransportError{Op: cl.op, Err: err}
	}
	log = log.With(slog.String("request_id", req.Header.Get("X-Request-Id")))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result = "transport_error"
		log.Warn("request failed", sl.Err(err))
		return &apierr.TransportError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		result = "transport_error"
		log.Warn("failed to read response body", sl.Err(err))
		return &apierr.TransportError{Op: cl.op, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(raw)) > c.maxBody {
		result = "server_error"
		log.Warn("response body too large", slog.Int64("limit", c.maxBody))
		return &apierr.ServerError{Op: cl.op, Status: resp.StatusCode, Message: "response too large"}
	}

	var env envelope
	decodeErr := error(nil)
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result = "server_error"
		serr := &apierr.ServerError{
			Op:      cl.op,
			Status:  resp.StatusCode,
			Message: env.message(),
			Fields:  env.Errors,
		}
		log.Warn("server returned error status", slog.Int("status", resp.StatusCode), sl.Err(serr))
		return serr
	}

	if decodeErr != nil && (cl.out != nil || cl.requireSuccess) {
		result = "server_error"
		log.Warn("malformed response", sl.Err(decodeErr))
		return &apierr.ServerError{Op: cl.op, Status: resp.StatusCode, Message: "malformed response"}
	}

	if (env.Success != nil && !*env.Success) || (cl.requireSuccess && env.Success == nil) {
		result = "server_error"
		serr := &apierr.ServerError{
			Op:      cl.op,
			Status:  resp.StatusCode,
			Message: env.message(),
			Fields:  env.Errors,
		}
		log.Warn("server reported failure", sl.Err(serr))
		return serr
	}

	if cl.out != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			result = "server_error"
			log.Warn("response has no data")
			return &apierr.ServerError{Op: cl.op, Status: resp.StatusCode, Message: "response has no data"}
		}
		if err := json.Unmarshal(env.Data, cl.out); err != nil {
			result = "server_error"
			log.Warn("failed to decode response data", sl.Err(err))
			return &apierr.ServerError{Op: cl.op, Status: resp.StatusCode, Message: "malformed response"}
		}
	}

	log.Debug("request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	return nil
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.GetAccessToken(ctx, c.userID)
		switch {
		case err == nil && token != "":
			req.Header.Set("Authorization", "Bearer "+token)
		case err != nil && !errors.Is(err, storage.ErrTokenNotFound):
			c.log.Warn("failed to load access token", slog.String("op", cl.op), sl.Err(err))
		}
	}

	return req, nil
}

func (e envelope) message() string {
	if len(e.Error) > 0 {
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(e.Error, &obj); err == nil && obj.Message != "" {
			return obj.Message
		}
		var s string
		if err := json.Unmarshal(e.Error, &s); err == nil && s != "" {
			return s
		}
	}
	return e.Message
}
