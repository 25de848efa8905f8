package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/donaldgifford/trademe/pkg/trademe"
)

const timeLayout = "2006-01-02 15:04"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printListingsTable(w io.Writer, listings []trademe.Listing) error {
	tw := newTabWriter(w)
	tw.writef("ID\tTITLE\tPRICE\tBIDS\tCLOSES\tREGION\n")
	for i := range listings {
		l := &listings[i]
		tw.writef("%d\t%s\t%s\t%d\t%s\t%s\n",
			l.ListingID,
			truncate(l.Title, 40),
			price(l.PriceDisplay, l.StartPrice),
			l.BidCount,
			formatTime(l.EndDate),
			orDash(l.Region),
		)
	}
	return tw.finish()
}

func printListingDetail(w io.Writer, env trademe.Environment, l *trademe.ListingDetail) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%d\n", l.ListingID)
	tw.writef("Title:\t%s\n", l.Title)
	if l.Subtitle != "" {
		tw.writef("Subtitle:\t%s\n", l.Subtitle)
	}
	tw.writef("Category:\t%s\n", orDash(l.CategoryPath))
	tw.writef("Price:\t%s\n", price(l.PriceDisplay, l.StartPrice))
	if l.HasBuyNow {
		tw.writef("Buy Now:\t$%.2f\n", l.BuyNowPrice)
	}
	tw.writef("Bids:\t%d\n", l.BidCount)
	tw.writef("Reserve Met:\t%v\n", l.IsReserveMet)
	tw.writef("Closes:\t%s\n", formatTime(l.EndDate))
	tw.writef("Closed:\t%v\n", l.IsClosed)
	tw.writef("Views:\t%d\n", l.ViewCount)
	if l.Member != nil {
		tw.writef("Seller:\t%s (%d feedback)\n", l.Member.Nickname, l.Member.FeedbackCount)
	}
	tw.writef("Location:\t%s\n", location(l.Suburb, l.Region))
	for _, a := range l.Attributes {
		name := a.DisplayName
		if name == "" {
			name = a.Name
		}
		tw.writef("%s:\t%s\n", name, a.Value)
	}
	tw.writef("URL:\t%s\n", trademe.ListingURL(env, l.ListingID))
	return tw.finish()
}

func printCategoryTree(w io.Writer, c *trademe.Category) error {
	tw := newTabWriter(w)
	tw.writef("NUMBER\tNAME\tLISTINGS\n")
	var walk func(c *trademe.Category, depth int)
	walk = func(c *trademe.Category, depth int) {
		tw.writef("%s\t%s%s\t%d\n", orDash(c.Number), strings.Repeat("  ", depth), c.Name, c.Count)
		for i := range c.Subcategories {
			walk(&c.Subcategories[i], depth+1)
		}
	}
	walk(c, 0)
	return tw.finish()
}

func printMember(w io.Writer, p *trademe.MemberProfile, fc *trademe.FeedbackCount) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%d\n", p.Member.MemberID)
	tw.writef("Nickname:\t%s\n", p.Member.Nickname)
	tw.writef("Joined:\t%s\n", formatTime(p.Member.DateJoined))
	tw.writef("Location:\t%s\n", location(p.Member.Suburb, p.Member.Region))
	tw.writef("Dealer:\t%v\n", p.IsADealer)
	tw.writef("Address Verified:\t%v\n", p.Member.IsAddressVerified)
	if fc != nil {
		tw.writef("Feedback:\t%d (+%d / =%d / -%d)\n",
			fc.FeedbackCount, fc.TotalPositive, fc.TotalNeutral, fc.TotalNegative)
	}
	if p.Biography != "" {
		tw.writef("Biography:\t%s\n", truncate(p.Biography, 60))
	}
	return tw.finish()
}

func printSummary(w io.Writer, s *trademe.MemberSummary) error {
	tw := newTabWriter(w)
	tw.writef("Member:\t%s (%d)\n", s.Nickname, s.MemberID)
	if s.Email != "" {
		tw.writef("Email:\t%s\n", s.Email)
	}
	tw.writef("Balance:\t$%.2f\n", s.Balance)
	if s.IsPayNowEnabled {
		tw.writef("Pay Now Balance:\t$%.2f\n", s.PayNowBalance)
	}
	tw.writef("Feedback:\t%d\n", s.FeedbackCount)
	tw.writef("Watchlist:\t%d\n", s.WatchListCount)
	tw.writef("Won / Lost:\t%d / %d\n", s.WonCount, s.LostCount)
	tw.writef("Selling / Sold / Unsold:\t%d / %d / %d\n", s.SellingCount, s.SoldCount, s.UnsoldCount)
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func price(display string, start float64) string {
	if display != "" {
		return display
	}
	return fmt.Sprintf("$%.2f", start)
}

func location(suburb, region string) string {
	switch {
	case suburb != "" && region != "":
		return suburb + ", " + region
	case region != "":
		return region
	default:
		return orDash(suburb)
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
