package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/trademe/pkg/trademe"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the authorized member's account summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				sum, err := s.client.MyTradeMe.Summary(ctx)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(cmd.OutOrStdout(), sum)
				}
				return printSummary(cmd.OutOrStdout(), sum)
			})
		},
	}
}

func watchlistCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage the authorized member's watchlist",
	}
	root.AddCommand(watchlistListCmd(), watchlistAddCmd(), watchlistRemoveCmd())
	return root
}

func watchlistListCmd() *cobra.Command {
	var (
		filter string
		page   int
		rows   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List watched listings",
		Example: `  trademe watchlist list
  trademe watchlist list --filter ClosingToday`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				res, err := s.client.MyTradeMe.Watchlist(ctx, trademe.ItemFilter(filter),
					trademe.Page{Page: page, Rows: rows})
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(cmd.OutOrStdout(), res)
				}
				if len(res.Items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Watchlist is empty.")
					return nil
				}
				return printListingsTable(cmd.OutOrStdout(), res.Items)
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "filter (All, ClosingToday, LeadingBids, ...)")
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&rows, "rows", 25, "results per page")

	return cmd
}

func watchlistAddCmd() *cobra.Command {
	var saveSeller bool

	cmd := &cobra.Command{
		Use:   "add <listing-id>",
		Short: "Add a listing to the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				resp, err := s.client.MyTradeMe.AddToWatchlist(ctx, trademe.SaveToWatchlistRequest{
					ListingID:  id,
					SaveSeller: saveSeller,
				})
				if err != nil {
					return err
				}
				return reportAction(cmd, resp.Success, resp.Description, "Listing added to watchlist.")
			})
		},
	}
	cmd.Flags().BoolVar(&saveSeller, "save-seller", false, "also save the seller as a favourite")

	return cmd
}

func watchlistRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <listing-id>",
		Short: "Remove a listing from the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				resp, err := s.client.MyTradeMe.RemoveFromWatchlist(ctx, id)
				if err != nil {
					return err
				}
				return reportAction(cmd, resp.Success, resp.Description, "Listing removed from watchlist.")
			})
		},
	}
}

func bidCmd() *cobra.Command {
	var (
		auto     bool
		shipping int
	)

	cmd := &cobra.Command{
		Use:   "bid <listing-id> <amount>",
		Short: "Bid on an auction",
		Example: `  trademe bid 2149288888 25
  trademe bid 2149288888 80 --auto`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil || amount <= 0 {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				resp, err := s.client.Bidding.Bid(ctx, trademe.BidRequest{
					ListingID:      id,
					Amount:         amount,
					AutoBid:        auto,
					ShippingOption: shipping,
				})
				if err != nil {
					return err
				}
				return printBidResponse(cmd, resp)
			})
		},
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "auto-bid up to the amount")
	cmd.Flags().IntVar(&shipping, "shipping", 0, "shipping option")

	return cmd
}

func buyNowCmd() *cobra.Command {
	var (
		quantity int
		shipping int
	)

	cmd := &cobra.Command{
		Use:   "buynow <listing-id>",
		Short: "Buy a listing at its Buy Now price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				resp, err := s.client.Bidding.BuyNow(ctx, trademe.BuyNowRequest{
					ListingID:      id,
					ShippingOption: shipping,
					Quantity:       quantity,
				})
				if err != nil {
					return err
				}
				return printBidResponse(cmd, resp)
			})
		},
	}
	cmd.Flags().IntVar(&quantity, "quantity", 0, "quantity for multi-quantity listings")
	cmd.Flags().IntVar(&shipping, "shipping", 0, "shipping option")

	return cmd
}

func printBidResponse(cmd *cobra.Command, resp *trademe.BidResponse) error {
	if jsonOutput() {
		return outputJSON(cmd.OutOrStdout(), resp)
	}
	tw := newTabWriter(cmd.OutOrStdout())
	tw.writef("Success:\t%v\n", resp.Success)
	if resp.Description != "" {
		tw.writef("Message:\t%s\n", resp.Description)
	}
	tw.writef("Leading:\t%v\n", resp.IsLeading)
	tw.writef("Reserve Met:\t%v\n", resp.IsReserveMet)
	if resp.PurchaseID > 0 {
		tw.writef("Purchase ID:\t%d\n", resp.PurchaseID)
	}
	return tw.finish()
}

func reportAction(cmd *cobra.Command, success bool, description, ok string) error {
	if !success {
		return fmt.Errorf("trade me refused the request: %s", orDash(description))
	}
	fmt.Fprintln(cmd.OutOrStdout(), ok)
	return nil
}
