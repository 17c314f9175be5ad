// Package notify delivers batch alerts. Telegram is the only sink; alert
// failures are logged by callers and never abort a batch.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"trend-signal-bot/internal/interfaces"
)

type Telegram struct {
	token  string
	chatID string
	client *http.Client
}

var _ interfaces.Notifier = (*Telegram)(nil)

func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{token: token, chatID: chatID, client: http.DefaultClient}
}

func (t *Telegram) Send(ctx context.Context, message string) error {
	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	form := url.Values{
		"chat_id": {t.chatID},
		"text":    {message},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram send failed: %s", resp.Status)
	}
	return nil
}

// Noop discards alerts; used when alerts are disabled in config.
type Noop struct{}

var _ interfaces.Notifier = (*Noop)(nil)

func (Noop) Send(ctx context.Context, message string) error { return nil }
