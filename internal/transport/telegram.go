package transport

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
)

const DefaultTelegramAPI = "https://api.telegram.org"

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Telegram sends a message through the Bot API. The channel value holds the
// chat id; the bot token is deployment-wide.
type Telegram struct {
	http     httpSender
	site     Site
	apiBase  string
	botToken string
}

func NewTelegram(doer Doer, userAgent string, timeout time.Duration, site Site, apiBase, botToken string) *Telegram {
	if apiBase == "" {
		apiBase = DefaultTelegramAPI
	}
	return &Telegram{
		http:     httpSender{doer: doer, userAgent: userAgent, timeout: timeout},
		site:     site,
		apiBase:  strings.TrimRight(apiBase, "/"),
		botToken: botToken,
	}
}

func (t *Telegram) Notify(ctx context.Context, ch *channel.Channel, chk *check.Check) error {
	if t.botToken == "" {
		return Fail("Telegram bot is not configured")
	}
	chatID := strings.TrimSpace(ch.Value)
	if chatID == "" {
		return Fail("Telegram chat id is empty")
	}
	target := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	_, err := t.http.postJSON(ctx, target, telegramMessage{
		ChatID:    chatID,
		Text:      t.text(chk),
		ParseMode: "HTML",
	})
	return err
}

func (t *Telegram) text(chk *check.Check) string {
	icon := "🟢"
	if chk.IsDown() {
		icon = "🔴"
	}
	return fmt.Sprintf("%s <b>%s</b> is <b>%s</b>\nLast ping: %s\n%s",
		icon, html.EscapeString(chk.DisplayName()), statusWord(chk), lastPing(chk), t.site.checkURL(chk))
}
