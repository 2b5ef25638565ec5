package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
)

const DefaultPagerDutyEndpoint = "https://events.pagerduty.com/generic/2010-04-15/create_event.json"

type pagerDutyEvent struct {
	ServiceKey  string `json:"service_key"`
	IncidentKey string `json:"incident_key"`
	EventType   string `json:"event_type"`
	Description string `json:"description"`
	Client      string `json:"client"`
	ClientURL   string `json:"client_url"`
}

type pagerDutyResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// PagerDuty triggers an incident when a check goes down and resolves it on
// recovery. The channel value is the service integration key.
type PagerDuty struct {
	http     httpSender
	site     Site
	endpoint string
}

func NewPagerDuty(doer Doer, userAgent string, timeout time.Duration, site Site, endpoint string) *PagerDuty {
	if endpoint == "" {
		endpoint = DefaultPagerDutyEndpoint
	}
	return &PagerDuty{
		http:     httpSender{doer: doer, userAgent: userAgent, timeout: timeout},
		site:     site,
		endpoint: endpoint,
	}
}

func (p *PagerDuty) Notify(ctx context.Context, ch *channel.Channel, chk *check.Check) error {
	key := strings.TrimSpace(ch.Value)
	if key == "" {
		return Fail("PagerDuty service key is empty")
	}

	body, err := p.http.postJSON(ctx, p.endpoint, p.payload(key, chk))
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			if msg := apiMessage(body); msg != "" {
				return Failf("%s (%s)", f.Msg, msg)
			}
		}
		return err
	}

	if len(body) == 0 {
		return nil
	}
	var resp pagerDutyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	if resp.Status != "" && resp.Status != "success" {
		return Failf("PagerDuty error: %s", resp.describe())
	}
	return nil
}

func (p *PagerDuty) payload(key string, chk *check.Check) pagerDutyEvent {
	eventType := "resolve"
	if chk.IsDown() {
		eventType = "trigger"
	}
	return pagerDutyEvent{
		ServiceKey:  key,
		IncidentKey: chk.Code.String(),
		EventType:   eventType,
		Description: fmt.Sprintf("%s is %s", chk.DisplayName(), statusWord(chk)),
		Client:      p.site.Name,
		ClientURL:   p.site.RootURL,
	}
}

func (r pagerDutyResponse) describe() string {
	msg := r.Message
	if len(r.Errors) > 0 {
		msg = strings.TrimSpace(msg + ": " + strings.Join(r.Errors, "; "))
	}
	if msg == "" {
		msg = r.Status
	}
	return msg
}

func apiMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var resp pagerDutyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.Message
}
