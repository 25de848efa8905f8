// Package notify defines the notification interface and implementations
// for new-listing delivery.
package notify

import (
	"context"
	"time"

	"github.com/donaldgifford/trademe/pkg/trademe"
)

// ListingPayload describes a listing that newly matched a watched search.
type ListingPayload struct {
	Search       string
	ListingID    int64
	Title        string
	URL          string
	PictureURL   string
	Price        string
	BuyNowPrice  float64
	Region       string
	ClosesAt     *time.Time
	IsClassified bool
	HasBuyNow    bool
}

// NewListingPayload builds a payload from a search result row.
func NewListingPayload(search string, env trademe.Environment, l *trademe.Listing) ListingPayload {
	return ListingPayload{
		Search:       search,
		ListingID:    l.ListingID,
		Title:        l.Title,
		URL:          trademe.ListingURL(env, l.ListingID),
		PictureURL:   l.PictureHref,
		Price:        l.PriceDisplay,
		BuyNowPrice:  l.BuyNowPrice,
		Region:       l.Region,
		ClosesAt:     l.EndDate,
		IsClassified: l.IsClassified,
		HasBuyNow:    l.HasBuyNow,
	}
}

// Notifier delivers new-listing notifications.
type Notifier interface {
	SendListing(ctx context.Context, listing *ListingPayload) error
	SendBatch(ctx context.Context, search string, listings []ListingPayload) error
}
