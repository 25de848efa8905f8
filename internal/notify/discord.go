package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/donaldgifford/trademe/internal/metrics"
)

const (
	colorGreen  = 0x2ECC71 // buy now available
	colorYellow = 0xF1C40F // auction
	colorBlue   = 0x3498DB // classified

	// maxEmbeds is Discord's per-message embed limit.
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
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Thumbnail   *discordThumbnail   `json:"thumbnail,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordThumbnail struct {
	URL string `json:"url"`
}

// SendListing posts a single listing as a Discord embed.
func (d *DiscordNotifier) SendListing(ctx context.Context, l *ListingPayload) error {
	return d.post(ctx, discordWebhookPayload{
		Content: fmt.Sprintf("New listing for **%s**", l.Search),
		Embeds:  []discordEmbed{buildEmbed(l)},
	})
}

// SendBatch posts up to ten listings in one message, with a trailing embed
// counting the rest.
func (d *DiscordNotifier) SendBatch(ctx context.Context, search string, listings []ListingPayload) error {
	if len(listings) == 0 {
		return nil
	}

	limit := min(len(listings), maxEmbeds)
	if len(listings) > maxEmbeds {
		limit = maxEmbeds - 1
	}

	embeds := make([]discordEmbed, 0, maxEmbeds)
	for i := range limit {
		embeds = append(embeds, buildEmbed(&listings[i]))
	}
	if rest := len(listings) - limit; rest > 0 {
		embeds = append(embeds, discordEmbed{
			Title:       fmt.Sprintf("... and %d more new listings for %s", rest, search),
			Color:       colorYellow,
			Description: "Run the search on Trade Me for the full list.",
		})
	}

	return d.post(ctx, discordWebhookPayload{
		Content: fmt.Sprintf("%d new listings for **%s**", len(listings), search),
		Embeds:  embeds,
	})
}

func buildEmbed(l *ListingPayload) discordEmbed {
	embed := discordEmbed{
		Title: l.Title,
		URL:   l.URL,
		Color: listingColor(l),
		Fields: []discordEmbedField{
			{Name: "Price", Value: orDash(l.Price), Inline: true},
			{Name: "Region", Value: orDash(l.Region), Inline: true},
			{Name: "Listing", Value: fmt.Sprintf("#%d", l.ListingID), Inline: true},
		},
	}

	if l.HasBuyNow && l.BuyNowPrice > 0 {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name: "Buy Now", Value: fmt.Sprintf("$%.2f", l.BuyNowPrice), Inline: true,
		})
	}
	if l.ClosesAt != nil {
		embed.Timestamp = l.ClosesAt.UTC().Format(time.RFC3339)
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name: "Closes", Value: l.ClosesAt.Format("Mon 2 Jan 15:04"), Inline: true,
		})
	}
	if l.PictureURL != "" {
		embed.Thumbnail = &discordThumbnail{URL: l.PictureURL}
	}

	return embed
}

func listingColor(l *ListingPayload) int {
	switch {
	case l.IsClassified:
		return colorBlue
	case l.HasBuyNow:
		return colorGreen
	default:
		return colorYellow
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	if err := d.send(ctx, payload); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return err
	}
	metrics.NotificationsSentTotal.Inc()
	return nil
}

func (d *DiscordNotifier) send(ctx context.Context, payload discordWebhookPayload) error {
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
		return fmt.Errorf("discord rate limited (429), retry after %s", resp.Header.Get("Retry-After"))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
