package notify

import (
	"context"
	"log/slog"
)

// LogNotifier implements Notifier by writing each new listing to the log.
// It is used when no webhook is configured.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a notifier that logs listings at info level.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// SendListing logs a single listing.
func (n *LogNotifier) SendListing(ctx context.Context, l *ListingPayload) error {
	n.log.InfoContext(ctx, "new listing",
		"search", l.Search,
		"listing_id", l.ListingID,
		"title", l.Title,
		"price", l.Price,
		"url", l.URL,
	)
	return nil
}

// SendBatch logs every listing of a batch.
func (n *LogNotifier) SendBatch(ctx context.Context, search string, listings []ListingPayload) error {
	n.log.InfoContext(ctx, "new listings", "search", search, "count", len(listings))
	for i := range listings {
		if err := n.SendListing(ctx, &listings[i]); err != nil {
			return err
		}
	}
	return nil
}
