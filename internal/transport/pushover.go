package transport

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
)

const DefaultPushoverEndpoint = "https://api.pushover.net/1/messages.json"

// Pushover sends a push message. The channel value is "<user key>|<priority>";
// the priority part is optional and defaults to 0.
type Pushover struct {
	http     httpSender
	site     Site
	endpoint string
	appToken string
}

func NewPushover(doer Doer, userAgent string, timeout time.Duration, site Site, endpoint, appToken string) *Pushover {
	if endpoint == "" {
		endpoint = DefaultPushoverEndpoint
	}
	return &Pushover{
		http:     httpSender{doer: doer, userAgent: userAgent, timeout: timeout},
		site:     site,
		endpoint: endpoint,
		appToken: appToken,
	}
}

func (p *Pushover) Notify(ctx context.Context, ch *channel.Channel, chk *check.Check) error {
	if p.appToken == "" {
		return Fail("Pushover is not configured")
	}
	userKey, prio, err := parsePushoverValue(ch.Value)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("token", p.appToken)
	form.Set("user", userKey)
	form.Set("title", fmt.Sprintf("%s is %s", chk.DisplayName(), statusWord(chk)))
	form.Set("message", fmt.Sprintf("Last ping: %s", lastPing(chk)))
	form.Set("url", p.site.checkURL(chk))
	form.Set("url_title", "View on "+p.site.Name)
	form.Set("priority", strconv.Itoa(prio))
	if prio == 2 {
		// Emergency priority is rejected without retry and expire.
		form.Set("retry", "300")
		form.Set("expire", "3600")
	}

	_, err = p.http.postForm(ctx, p.endpoint, form)
	return err
}

func parsePushoverValue(v string) (string, int, error) {
	userKey, prioStr, _ := strings.Cut(strings.TrimSpace(v), "|")
	if userKey == "" {
		return "", 0, Fail("Pushover user key is empty")
	}
	if prioStr == "" {
		return userKey, 0, nil
	}
	prio, err := strconv.Atoi(prioStr)
	if err != nil || prio < -2 || prio > 2 {
		return "", 0, Failf("Invalid Pushover priority %q", prioStr)
	}
	return userKey, prio, nil
}
