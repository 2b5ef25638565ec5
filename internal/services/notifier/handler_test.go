package notifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/NordCoder/hcdispatch/internal/dispatch"
	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
	"github.com/NordCoder/hcdispatch/internal/domain/notification"
	"github.com/NordCoder/hcdispatch/internal/obs/retry"
	kafkax "github.com/NordCoder/hcdispatch/internal/repository/kafka"
	"github.com/NordCoder/hcdispatch/internal/repository/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeChecks map[int64]*check.Check

func (f fakeChecks) GetByID(_ context.Context, id int64) (*check.Check, error) {
	c, ok := f[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

type fakeChannels struct {
	byCheck map[int64][]*channel.Channel
	err     error
}

func (f fakeChannels) ListByCheck(_ context.Context, checkID int64) ([]*channel.Channel, error) {
	return f.byCheck[checkID], f.err
}

type call struct {
	channelID int64
	status    check.Status
}

type fakeDispatcher struct {
	mu     sync.Mutex
	calls  []call
	failOn map[int64]error
}

func (f *fakeDispatcher) Notify(_ context.Context, chk *check.Check, ch *channel.Channel) (*notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{channelID: ch.ID, status: chk.Status})
	if err := f.failOn[ch.ID]; err != nil {
		return nil, err
	}
	return &notification.Notification{
		ID:          ch.ID * 100,
		ChannelID:   ch.ID,
		CheckID:     chk.ID,
		CheckStatus: string(chk.Status),
		State:       notification.StateDelivered,
	}, nil
}

func (f *fakeDispatcher) channelIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.calls))
	for _, c := range f.calls {
		ids = append(ids, c.channelID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type fakeEvents struct {
	mu       sync.Mutex
	events   []kafkax.NotificationRecorded
	failures int
}

func (f *fakeEvents) PublishNotificationRecorded(_ context.Context, ev kafkax.NotificationRecorded) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("broker unavailable")
	}
	f.events = append(f.events, ev)
	return nil
}

func quickPolicy() retry.Policy {
	return retry.Policy{Name: "test", Attempts: 3, Backoff: retry.ExpoJitter{Base: time.Millisecond}}
}

func newHandler(t *testing.T, d *fakeDispatcher, ev *fakeEvents) *Handler {
	t.Helper()
	return &Handler{
		Checks: fakeChecks{
			1: {ID: 1, Name: "nightly", Status: check.StatusDown},
		},
		Channels: fakeChannels{byCheck: map[int64][]*channel.Channel{
			1: {
				{ID: 10, Kind: channel.KindWebhook},
				{ID: 11, Kind: channel.KindEmail},
				{ID: 12, Kind: channel.KindSlack},
			},
		}},
		Dispatch: d,
		Events:   ev,
		Log:      zaptest.NewLogger(t),
		Workers:  2,
		Publish:  quickPolicy(),
	}
}

func TestHandleStatusChange_FansOutToEveryChannel(t *testing.T) {
	d := &fakeDispatcher{}
	ev := &fakeEvents{}
	h := newHandler(t, d, ev)

	err := h.HandleStatusChange(context.Background(), StatusChange{CheckID: 1, Status: check.StatusDown})
	require.NoError(t, err)

	assert.Equal(t, []int64{10, 11, 12}, d.channelIDs())
	assert.Len(t, ev.events, 3)
	for _, e := range ev.events {
		assert.Equal(t, "delivered", e.State)
		assert.Equal(t, int64(1), e.CheckID)
	}
}

func TestHandleStatusChange_RepoFaultIsReturned(t *testing.T) {
	dbDown := errors.New("create notification: db down")
	d := &fakeDispatcher{failOn: map[int64]error{11: dbDown}}
	ev := &fakeEvents{}
	h := newHandler(t, d, ev)

	err := h.HandleStatusChange(context.Background(), StatusChange{CheckID: 1, Status: check.StatusDown})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbDown)

	assert.Equal(t, []int64{10, 11, 12}, d.channelIDs(), "other channels are still tried")
	assert.Len(t, ev.events, 2, "failed dispatch publishes nothing")
}

func TestHandleStatusChange_UnknownKindNotRetried(t *testing.T) {
	d := &fakeDispatcher{failOn: map[int64]error{12: fmt.Errorf("%w: \"fax\"", dispatch.ErrUnknownKind)}}
	ev := &fakeEvents{}
	h := newHandler(t, d, ev)

	err := h.HandleStatusChange(context.Background(), StatusChange{CheckID: 1, Status: check.StatusDown})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12}, d.channelIDs())
	assert.Len(t, ev.events, 2)
}

func TestHandleStatusChange_UsesEventStatus(t *testing.T) {
	d := &fakeDispatcher{}
	h := newHandler(t, d, &fakeEvents{})

	require.NoError(t, h.HandleStatusChange(context.Background(), StatusChange{CheckID: 1, Status: check.StatusUp}))
	for _, c := range d.calls {
		assert.Equal(t, check.StatusUp, c.status)
	}
}

func TestHandleStatusChange_Ignored(t *testing.T) {
	d := &fakeDispatcher{}
	h := newHandler(t, d, &fakeEvents{})

	require.NoError(t, h.HandleStatusChange(context.Background(), StatusChange{CheckID: 1, Status: check.StatusPaused}))
	require.NoError(t, h.HandleStatusChange(context.Background(), StatusChange{CheckID: 404, Status: check.StatusDown}))
	assert.Empty(t, d.calls)
}

func TestHandleStatusChange_ChannelListError(t *testing.T) {
	d := &fakeDispatcher{}
	h := newHandler(t, d, &fakeEvents{})
	h.Channels = fakeChannels{err: errors.New("timeout")}

	err := h.HandleStatusChange(context.Background(), StatusChange{CheckID: 1, Status: check.StatusDown})
	require.Error(t, err)
	assert.Empty(t, d.calls)
}

func TestHandleStatusChange_PublishRetried(t *testing.T) {
	d := &fakeDispatcher{}
	ev := &fakeEvents{failures: 2}
	h := newHandler(t, d, ev)
	h.Workers = 1

	require.NoError(t, h.HandleStatusChange(context.Background(), StatusChange{CheckID: 1, Status: check.StatusDown}))
	assert.Len(t, ev.events, 3)
}

func TestHandleStatusChange_NoEvents(t *testing.T) {
	d := &fakeDispatcher{}
	h := newHandler(t, d, nil)
	h.Events = nil

	require.NoError(t, h.HandleStatusChange(context.Background(), StatusChange{CheckID: 1, Status: check.StatusDown}))
	assert.Len(t, d.calls, 3)
}
