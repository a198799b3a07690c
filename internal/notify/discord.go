package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/donaldgifford/tgtg-watcher/internal/metrics"
	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

const (
	colorGreen  = 0x2ECC71 // 5+ bags
	colorYellow = 0xF1C40F // 2-4 bags
	colorOrange = 0xE67E22 // last bag

	maxEmbeds = 10
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendAlert sends a single alert as a Discord embed.
func (d *DiscordNotifier) SendAlert(ctx context.Context, alert *domain.RestockAlert) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(alert)},
	}
	return d.post(ctx, payload)
}

// SendBatchAlert sends multiple alerts as a single Discord message.
func (d *DiscordNotifier) SendBatchAlert(
	ctx context.Context,
	alerts []domain.RestockAlert,
	searchName string,
) error {
	if len(alerts) == 0 {
		return nil
	}

	limit := min(len(alerts), maxEmbeds)
	embeds := make([]discordEmbed, 0, limit+1)
	for i := range limit {
		embeds = append(embeds, buildEmbed(&alerts[i]))
	}

	if len(alerts) > maxEmbeds {
		embeds = append(embeds, discordEmbed{
			Title:       fmt.Sprintf("... and %d more restocks for %s", len(alerts)-maxEmbeds, searchName),
			Color:       colorYellow,
			Description: "Run a search for the full list.",
		})
	}

	return d.post(ctx, discordWebhookPayload{Embeds: embeds})
}

func buildEmbed(alert *domain.RestockAlert) discordEmbed {
	snap := &alert.Snapshot

	embed := discordEmbed{
		Title: fmt.Sprintf("Back in stock: %s", snap.DisplayName),
		URL:   ShareURL(snap.ItemID),
		Color: stockColor(snap.ItemsAvailable),
		Fields: []discordEmbedField{
			{Name: "Available", Value: strconv.Itoa(snap.ItemsAvailable), Inline: true},
			{Name: "Price", Value: formatPrice(snap.Price, snap.Currency), Inline: true},
			{Name: "Pickup", Value: formatPickup(snap.PickupStart, snap.PickupEnd), Inline: true},
			{Name: "Store", Value: snap.StoreName, Inline: true},
			{Name: "Search", Value: snap.SearchName, Inline: true},
		},
	}
	if alert.Previous < 0 {
		embed.Description = "New bag"
	}
	if !alert.SeenAt.IsZero() {
		embed.Timestamp = alert.SeenAt.UTC().Format(time.RFC3339)
	}

	return embed
}

func stockColor(available int) int {
	switch {
	case available >= 5:
		return colorGreen
	case available >= 2:
		return colorYellow
	default:
		return colorOrange
	}
}

func formatPrice(amount float64, currency string) string {
	if currency == "" {
		return strconv.FormatFloat(amount, 'f', 2, 64)
	}
	return strconv.FormatFloat(amount, 'f', 2, 64) + " " + currency
}

func formatPickup(start, end *time.Time) string {
	if start == nil || end == nil {
		return "-"
	}
	return start.UTC().Format("Mon 15:04") + " - " + end.UTC().Format("15:04") + " UTC"
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) (err error) {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.NotificationFailuresTotal.Inc()
		}
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			return fmt.Errorf("discord rate limited (429), retry after %ss", ra)
		}
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
