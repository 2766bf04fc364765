package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPToolOption configures the HTTP tool.
type HTTPToolOption func(*httpToolConfig)

type httpToolConfig struct {
	client          *http.Client
	allowedHosts    []string
	blockedHosts    []string
	maxResponseSize int64
	timeout         time.Duration
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.client = c
	}
}

// WithAllowedHosts restricts requests to specific hosts only.
func WithAllowedHosts(hosts ...string) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.allowedHosts = hosts
	}
}

// WithBlockedHosts blocks requests to specific hosts.
func WithBlockedHosts(hosts ...string) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.blockedHosts = hosts
	}
}

// WithMaxResponseSize sets the maximum response body size.
// Default is 1MB.
func WithMaxResponseSize(bytes int64) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.maxResponseSize = bytes
	}
}

// WithHTTPTimeout sets the request timeout.
// Default is 30 seconds.
func WithHTTPTimeout(d time.Duration) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.timeout = d
	}
}

func applyHTTPOpts(opts []HTTPToolOption) *httpToolConfig {
	cfg := &httpToolConfig{
		maxResponseSize: 1024 * 1024,
		timeout:         30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.client == nil {
		cfg.client = &http.Client{Timeout: cfg.timeout}
	}
	return cfg
}

func matchesHost(host, pattern string) bool {
	return host == pattern || strings.HasSuffix(host, "."+pattern)
}

func (c *httpToolConfig) checkHost(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	host := u.Hostname()

	for _, blocked := range c.blockedHosts {
		if matchesHost(host, blocked) {
			return fmt.Errorf("host %q is blocked", host)
		}
	}
	if len(c.allowedHosts) == 0 {
		return nil
	}
	for _, allowed := range c.allowedHosts {
		if matchesHost(host, allowed) {
			return nil
		}
	}
	return fmt.Errorf("host %q is not in allowed list", host)
}

// HTTPArgs are the arguments of the http_request tool.
type HTTPArgs struct {
	URL     string            `json:"url" jsonschema:"required,description=URL to request"`
	Method  string            `json:"method,omitempty" jsonschema:"enum=GET,enum=POST,enum=PUT,enum=DELETE,enum=PATCH,description=HTTP method"`
	Headers map[string]string `json:"headers,omitempty" jsonschema:"description=Request headers"`
	Body    string            `json:"body,omitempty" jsonschema:"description=Request body for POST/PUT/PATCH"`
}

// HTTPResult is the output of the http_request tool.
type HTTPResult struct {
	Status     string            `json:"status"`
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	BodySize   int               `json:"body_size"`
}

// NewHTTPTool creates a tool for making HTTP requests. Requests other than
// GET require approval.
func NewHTTPTool(opts ...HTTPToolOption) Tool {
	cfg := applyHTTPOpts(opts)

	mutating := ApproveIf(func(args HTTPArgs) bool {
		return args.Method != "" && !strings.EqualFold(args.Method, http.MethodGet)
	})

	return Func("http_request", "Make an HTTP request to a URL",
		func(ctx context.Context, args HTTPArgs) (any, error) {
			if err := cfg.checkHost(args.URL); err != nil {
				return nil, err
			}

			method := args.Method
			if method == "" {
				method = http.MethodGet
			}

			var body io.Reader
			if args.Body != "" {
				body = strings.NewReader(args.Body)
			}

			req, err := http.NewRequestWithContext(ctx, method, args.URL, body)
			if err != nil {
				return nil, err
			}
			for k, v := range args.Headers {
				req.Header.Set(k, v)
			}

			resp, err := cfg.client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(io.LimitReader(resp.Body, cfg.maxResponseSize))
			if err != nil {
				return nil, err
			}

			result := HTTPResult{
				Status:     resp.Status,
				StatusCode: resp.StatusCode,
				Headers:    make(map[string]string),
				Body:       string(respBody),
				BodySize:   len(respBody),
			}
			for _, h := range []string{"Content-Type", "Content-Length", "Date", "Server"} {
				if v := resp.Header.Get(h); v != "" {
					result.Headers[h] = v
				}
			}
			return result, nil
		}, WithApproval(mutating))
}
