package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/trademe/pkg/trademe"
)

func categoriesCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "categories [number]",
		Short: "Browse the category tree",
		Example: `  # Top-level categories
  trademe categories --depth 1

  # Computers and two levels below it
  trademe categories 0002- --depth 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number := ""
			if len(args) == 1 {
				number = args[0]
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				root, err := s.client.Catalogue.Categories(ctx, number, depth)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(cmd.OutOrStdout(), root)
				}
				return printCategoryTree(cmd.OutOrStdout(), root)
			})
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 1, "levels of subcategories to include (0 for all)")

	return cmd
}

func searchCmd() *cobra.Command {
	var (
		category string
		region   int
		priceMin float64
		priceMax float64
		buyNow   bool
		sort     string
		page     int
		rows     int
	)

	cmd := &cobra.Command{
		Use:   "search <terms>",
		Short: "Search marketplace listings",
		Example: `  # Keyword search
  trademe search "mechanical keyboard"

  # Buy Now listings in a category and price band, newest first
  trademe search gpu --category 0002-0357- --price-max 800 --buy-now --sort ExpiryDesc`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := trademe.GeneralSearch{
				Category:   category,
				Region:     region,
				PriceMin:   priceMin,
				PriceMax:   priceMax,
				BuyNowOnly: buyNow,
				SortOrder:  trademe.SortOrder(sort),
				Page:       trademe.Page{Page: page, Rows: rows},
			}
			if len(args) == 1 {
				params.SearchString = args[0]
			}
			if params.SearchString == "" && params.Category == "" {
				return fmt.Errorf("search terms or --category required")
			}

			return withSession(cmd, func(ctx context.Context, s *session) error {
				res, err := s.client.Search.General(ctx, params)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(cmd.OutOrStdout(), res)
				}
				if len(res.Listings) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No listings found.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Showing %d of %d listings (page %d)\n\n",
					len(res.Listings), res.TotalCount, res.Page)
				return printListingsTable(cmd.OutOrStdout(), res.Listings)
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category number")
	cmd.Flags().IntVar(&region, "region", 0, "region ID")
	cmd.Flags().Float64Var(&priceMin, "price-min", 0, "minimum price")
	cmd.Flags().Float64Var(&priceMax, "price-max", 0, "maximum price")
	cmd.Flags().BoolVar(&buyNow, "buy-now", false, "only listings with Buy Now")
	cmd.Flags().StringVar(&sort, "sort", "", "sort order (ExpiryDesc, PriceAsc, BestMatch, ...)")
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&rows, "rows", 25, "results per page")

	return cmd
}

func listingCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "listing <id>",
		Short:   "Show listing details",
		Example: `  trademe listing 2149288888`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				l, err := s.client.Listings.Detail(ctx, id)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(cmd.OutOrStdout(), l)
				}
				env := trademe.Environment(s.cfg.TradeMe.Environment)
				return printListingDetail(cmd.OutOrStdout(), env, l)
			})
		},
	}
}

func memberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "member <id|nickname>",
		Short: "Show a member's public profile and feedback",
		Example: `  trademe member 4000123
  trademe member some_nickname`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				id, err := resolveMember(ctx, s.client, args[0])
				if err != nil {
					return err
				}
				profile, err := s.client.Membership.Profile(ctx, id)
				if err != nil {
					return err
				}
				fc, err := s.client.Membership.FeedbackCount(ctx, id)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(cmd.OutOrStdout(), struct {
						Profile  *trademe.MemberProfile
						Feedback *trademe.FeedbackCount
					}{profile, fc})
				}
				return printMember(cmd.OutOrStdout(), profile, fc)
			})
		},
	}
}

func resolveMember(ctx context.Context, c *trademe.Client, arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, nil
	}
	m, err := c.Membership.IDByNickname(ctx, arg)
	if err != nil {
		return 0, fmt.Errorf("looking up %q: %w", arg, err)
	}
	return m.MemberID, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid listing ID %q", s)
	}
	return id, nil
}
