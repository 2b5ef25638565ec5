package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhook_GetOnDown(t *testing.T) {
	var (
		got      *http.Request
		deadline time.Time
	)
	doer := doerFunc(func(r *http.Request) (*http.Response, error) {
		got = r
		deadline, _ = r.Context().Deadline()
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil
	})

	w := NewWebhook(doer, testUA, 0)
	start := time.Now()
	err := w.Notify(context.Background(), newChannel(channel.KindWebhook, "http://example"), newCheck(check.StatusDown))
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "http://example", got.URL.String())
	assert.Equal(t, "healthchecks.io", got.Header.Get("User-Agent"))
	assert.Nil(t, got.Body)
	assert.WithinDuration(t, start.Add(5*time.Second), deadline, time.Second)
}

func TestWebhook_IgnoresUpEvents(t *testing.T) {
	called := false
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		called = true
		return nil, errors.New("unexpected")
	})

	err := NewWebhook(doer, testUA, 0).Notify(context.Background(),
		newChannel(channel.KindWebhook, "http://example"), newCheck(check.StatusUp))

	require.ErrorIs(t, err, ErrSkipped)
	assert.False(t, called)
	assert.Empty(t, Describe(err))
}

func TestWebhook_Non2xx(t *testing.T) {
	srv := newRecorder(t, http.StatusInternalServerError, "")

	err := NewWebhook(srv.Client(), testUA, 0).Notify(context.Background(),
		newChannel(channel.KindWebhook, srv.URL), newCheck(check.StatusDown))

	require.Error(t, err)
	assert.Equal(t, "Received status code 500", Describe(err))
	require.Len(t, srv.requests(), 1)
	assert.Equal(t, "healthchecks.io", srv.requests()[0].Header.Get("User-Agent"))
}

func TestWebhook_Timeouts(t *testing.T) {
	t.Run("reported by the client", func(t *testing.T) {
		doer := doerFunc(func(r *http.Request) (*http.Response, error) {
			return nil, &url.Error{Op: "Get", URL: r.URL.String(), Err: context.DeadlineExceeded}
		})
		err := NewWebhook(doer, testUA, 0).Notify(context.Background(),
			newChannel(channel.KindWebhook, "http://example"), newCheck(check.StatusDown))
		assert.Equal(t, "Connection timed out", Describe(err))
	})

	t.Run("slow destination", func(t *testing.T) {
		srv := newSlowServer(t, time.Second)
		err := NewWebhook(srv.Client(), testUA, 30*time.Millisecond).Notify(context.Background(),
			newChannel(channel.KindWebhook, srv.URL), newCheck(check.StatusDown))
		assert.Equal(t, "Connection timed out", Describe(err))
	})
}

func TestWebhook_ConnectionFailures(t *testing.T) {
	doer := doerFunc(func(r *http.Request) (*http.Response, error) {
		return nil, &url.Error{Op: "Get", URL: r.URL.String(), Err: errors.New("connection refused")}
	})
	err := NewWebhook(doer, testUA, 0).Notify(context.Background(),
		newChannel(channel.KindWebhook, "http://example"), newCheck(check.StatusDown))
	assert.Equal(t, "Connection failed", Describe(err))

	err = NewWebhook(doer, testUA, 0).Notify(context.Background(),
		newChannel(channel.KindWebhook, "  "), newCheck(check.StatusDown))
	assert.Equal(t, "Webhook URL is empty", Describe(err))
}
