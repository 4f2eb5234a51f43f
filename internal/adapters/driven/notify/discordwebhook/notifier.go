// Package discordwebhook relays contact-form submissions to a Discord
// webhook as a single embed.
package discordwebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/goforscrim/scrimsync/internal/core/domain"
	"github.com/goforscrim/scrimsync/internal/core/ports/driven"
)

// Notifier posts contact messages to a Discord webhook URL.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

var _ driven.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier. An empty URL is allowed; Notify then
// fails with domain.ErrWebhookUnconfigured.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Webhook embed wire format, the subset Discord needs for a contact card.
type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

const embedColor = 0x5865F2

// Notify delivers one contact message to the webhook.
func (n *Notifier) Notify(ctx context.Context, msg driven.ContactMessage) error {
	if n.webhookURL == "" {
		return domain.ErrWebhookUnconfigured
	}
	if msg.Body == "" {
		return fmt.Errorf("%w: empty message body", domain.ErrInvalidInput)
	}

	fields := []embedField{
		{Name: "From", Value: orDash(msg.Name), Inline: true},
		{Name: "Email", Value: orDash(msg.Email), Inline: true},
		{Name: "Topic", Value: orDash(msg.Topic), Inline: true},
	}

	payload := webhookPayload{
		Embeds: []embed{{
			Title:       orDash(msg.Subject),
			Description: truncate(msg.Body, 2000),
			Color:       embedColor,
			Fields:      fields,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delivering webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook delivery failed with status %d", resp.StatusCode)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate cuts s to at most max bytes without splitting a rune; Discord
// rejects oversized embeds.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
