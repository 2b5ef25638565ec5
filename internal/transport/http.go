package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Doer is the outbound HTTP capability used by every HTTP-based transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
	VerifyTLS bool
}

// NewHTTPClient builds the shared outbound client. Requests are traced with
// otelhttp.
func NewHTTPClient(cfg HTTPConfig) *http.Client {
	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(base),
	}
}

// httpSender is embedded by the HTTP transports. It applies the per-request
// timeout and maps every outcome onto a Failure.
type httpSender struct {
	doer      Doer
	userAgent string
	timeout   time.Duration
}

const maxResponseBody = 64 << 10

func (s httpSender) get(ctx context.Context, target string) error {
	_, err := s.do(ctx, http.MethodGet, target, "", nil)
	return err
}

func (s httpSender) postJSON(ctx context.Context, target string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, Fail("Could not encode payload")
	}
	return s.do(ctx, http.MethodPost, target, "application/json", body)
}

func (s httpSender) postForm(ctx context.Context, target string, form url.Values) ([]byte, error) {
	return s.do(ctx, http.MethodPost, target, "application/x-www-form-urlencoded", []byte(form.Encode()))
}

func (s httpSender) do(ctx context.Context, method, target, contentType string, body []byte) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, Fail("Invalid destination URL")
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.doer.Do(req)
	if err != nil {
		return nil, Fail(describeIOError(err))
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return data, Failf("Received status code %d", resp.StatusCode)
	}
	return data, nil
}

func describeIOError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Connection timed out"
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "Connection timed out"
	}
	if strings.Contains(err.Error(), "timeout") {
		return "Connection timed out"
	}
	return "Connection failed"
}
