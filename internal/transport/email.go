package transport

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
)

// EmailSender is the outbound mail capability.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

var (
	emailSubjectTmpl = template.Must(template.New("subject").Parse(
		`{{ .Name }} is {{ .Status }}`))

	emailBodyTmpl = template.Must(template.New("body").Parse(`Hello,

This is a notification sent by {{ .SiteName }}.

The check "{{ .Name }}" has gone {{ .StatusLower }}.

Last ping:   {{ .LastPing }}
Total pings: {{ .NPings }}

Details: {{ .URL }}

--
{{ .SiteName }}
`))
)

type emailContext struct {
	Name        string
	Status      string
	StatusLower string
	LastPing    string
	NPings      int
	URL         string
	SiteName    string
}

// Email sends a templated message to the channel address. It does not look at
// the check status: both outages and recoveries are mailed.
type Email struct {
	sender EmailSender
	site   Site
}

func NewEmail(sender EmailSender, site Site) *Email {
	return &Email{sender: sender, site: site}
}

func (e *Email) Notify(ctx context.Context, ch *channel.Channel, chk *check.Check) error {
	if !ch.EmailVerified {
		return Fail("Email not verified")
	}
	to := strings.TrimSpace(ch.Value)
	if to == "" {
		return Fail("Email address is empty")
	}

	subject, body, err := e.render(chk)
	if err != nil {
		return Failf("Could not render email: %v", err)
	}
	if err := e.sender.Send(ctx, to, subject, body); err != nil {
		return Failf("Could not send email: %v", err)
	}
	return nil
}

func (e *Email) render(chk *check.Check) (string, string, error) {
	data := emailContext{
		Name:        chk.DisplayName(),
		Status:      statusWord(chk),
		StatusLower: strings.ToLower(string(chk.Status)),
		LastPing:    lastPing(chk),
		NPings:      chk.NPings,
		URL:         e.site.checkURL(chk),
		SiteName:    e.site.Name,
	}

	var subj, body bytes.Buffer
	if err := emailSubjectTmpl.Execute(&subj, data); err != nil {
		return "", "", fmt.Errorf("subject: %w", err)
	}
	if err := emailBodyTmpl.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("body: %w", err)
	}
	return subj.String(), body.String(), nil
}
