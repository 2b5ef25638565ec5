package transport

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slackFields(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	attachments, ok := body["attachments"].([]any)
	require.True(t, ok, "attachments missing")
	require.Len(t, attachments, 1)
	att := attachments[0].(map[string]any)

	fields := map[string]any{}
	for _, f := range att["fields"].([]any) {
		fm := f.(map[string]any)
		fields[fm["title"].(string)] = fm["value"]
	}
	return fields
}

func TestSlack_NeverPinged(t *testing.T) {
	srv := newRecorder(t, http.StatusOK, "ok")

	err := NewSlack(srv.Client(), testUA, time.Second, testSite).Notify(context.Background(),
		newChannel(channel.KindSlack, srv.URL), newCheck(check.StatusDown))
	require.NoError(t, err)

	reqs := srv.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))

	body := srv.lastJSON(t)
	fields := slackFields(t, body)
	assert.Equal(t, "Never", fields["Last Ping"])
	assert.Equal(t, "0", fields["Total Pings"])

	att := body["attachments"].([]any)[0].(map[string]any)
	assert.Equal(t, "danger", att["color"])
	assert.Contains(t, att["fallback"], "is DOWN")
}

func TestSlack_RecoveryWithPings(t *testing.T) {
	srv := newRecorder(t, http.StatusOK, "ok")

	err := NewSlack(srv.Client(), testUA, time.Second, testSite).Notify(context.Background(),
		newChannel(channel.KindSlack, srv.URL), pinged(newCheck(check.StatusUp), 2*time.Hour))
	require.NoError(t, err)

	body := srv.lastJSON(t)
	fields := slackFields(t, body)
	assert.Equal(t, "2 hours ago", fields["Last Ping"])
	assert.Equal(t, "3", fields["Total Pings"])
	att := body["attachments"].([]any)[0].(map[string]any)
	assert.Equal(t, "good", att["color"])
}

func TestSlack_Non2xx(t *testing.T) {
	srv := newRecorder(t, http.StatusInternalServerError, "")

	err := NewSlack(srv.Client(), testUA, time.Second, testSite).Notify(context.Background(),
		newChannel(channel.KindSlack, srv.URL), newCheck(check.StatusDown))

	assert.Equal(t, "Received status code 500", Describe(err))
}

func TestHipChat_StatusInMessage(t *testing.T) {
	srv := newRecorder(t, http.StatusNoContent, "")
	h := NewHipChat(srv.Client(), testUA, time.Second, testSite)

	require.NoError(t, h.Notify(context.Background(), newChannel(channel.KindHipChat, srv.URL), newCheck(check.StatusDown)))
	body := srv.lastJSON(t)
	assert.Contains(t, body["message"], "DOWN")
	assert.Equal(t, "red", body["color"])

	require.NoError(t, h.Notify(context.Background(), newChannel(channel.KindHipChat, srv.URL), newCheck(check.StatusUp)))
	body = srv.lastJSON(t)
	assert.Contains(t, body["message"], "UP")
	assert.NotContains(t, body["message"], "DOWN")
	assert.Equal(t, "green", body["color"])
}

func TestHipChat_Non2xx(t *testing.T) {
	srv := newRecorder(t, http.StatusForbidden, "")
	err := NewHipChat(srv.Client(), testUA, time.Second, testSite).Notify(context.Background(),
		newChannel(channel.KindHipChat, srv.URL), newCheck(check.StatusDown))
	assert.Equal(t, "Received status code 403", Describe(err))
}
