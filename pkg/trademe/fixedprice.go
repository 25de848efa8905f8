package trademe

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"
)

// FixedPriceOfferService makes and answers fixed price offers on closed
// auctions.
type FixedPriceOfferService service

// OfferRecipients filters the members an offer can be made to.
type OfferRecipients string

// Offer recipient filters.
const (
	RecipientsAll      OfferRecipients = "All"
	RecipientsBidders  OfferRecipients = "Bidders"
	RecipientsWatchers OfferRecipients = "Watchers"
)

// FixedPriceOffer is an offer made on a closed auction.
type FixedPriceOffer struct {
	ListingID   int64      `xml:"ListingId"`
	Title       string     `xml:"Title,omitempty"`
	OfferPrice  float64    `xml:"OfferPrice"`
	OfferExpiry *time.Time `xml:"OfferExpiryDate,omitempty"`
	Quantity    int        `xml:"Quantity,omitempty"`
	Status      string     `xml:"Status,omitempty"`
	Seller      *Member    `xml:"Seller,omitempty"`
}

// FixedPriceOffers is a page of offers.
type FixedPriceOffers = Collection[FixedPriceOffer]

// OfferResponseRequest accepts or declines an offer received.
type OfferResponseRequest struct {
	XMLName   xml.Name `xml:"http://api.trademe.co.nz/v1 FixedPriceOfferRequest"`
	ListingID int64    `xml:"ListingId"`
	Accept    bool     `xml:"AcceptOffer"`
	Quantity  int      `xml:"Quantity,omitempty"`
}

// MakeOfferRequest offers a closed auction's item to members at a price.
type MakeOfferRequest struct {
	XMLName   xml.Name `xml:"http://api.trademe.co.nz/v1 FixedPriceOfferToMembersRequest"`
	ListingID int64    `xml:"ListingId"`
	Price     float64  `xml:"Price"`
	Duration  int      `xml:"Duration"`
	MemberIDs []int64  `xml:"MemberIds>MemberId"`
	Quantity  int      `xml:"Quantity,omitempty"`
}

// WithdrawOfferRequest withdraws an offer the caller made.
type WithdrawOfferRequest struct {
	XMLName   xml.Name `xml:"http://api.trademe.co.nz/v1 FixedPriceOfferWithdrawalRequest"`
	ListingID int64    `xml:"ListingId"`
}

// OfferMembers lists members eligible to receive an offer.
type OfferMembers struct {
	Items []Member `xml:"Members>Member"`
}

// Received returns offers made to the caller.
func (s *FixedPriceOfferService) Received(ctx context.Context) (*FixedPriceOffers, error) {
	return getPrivate[FixedPriceOffers](ctx, s.conn, "MyTradeMe/FixedPriceOffers/List.xml")
}

// Offered returns offers the caller has made.
func (s *FixedPriceOfferService) Offered(ctx context.Context) (*FixedPriceOffers, error) {
	return getPrivate[FixedPriceOffers](ctx, s.conn, "MyTradeMe/FixedPriceOffers/Offered.xml")
}

// All returns every offer the caller is party to.
func (s *FixedPriceOfferService) All(ctx context.Context) (*FixedPriceOffers, error) {
	return getPrivate[FixedPriceOffers](ctx, s.conn, "MyTradeMe/FixedPriceOffers.xml")
}

// Respond accepts or declines an offer received.
func (s *FixedPriceOfferService) Respond(ctx context.Context, req OfferResponseRequest) (*ActionResponse, error) {
	return send[ActionResponse](ctx, s.conn, "MyTradeMe/FixedPriceOffers/Respond.xml", req)
}

// Make offers the item of a closed auction to the given members.
func (s *FixedPriceOfferService) Make(ctx context.Context, req MakeOfferRequest) (*ActionResponse, error) {
	return send[ActionResponse](ctx, s.conn, "MyTradeMe/FixedPriceOffers/MakeOffer.xml", req)
}

// Withdraw withdraws an offer the caller made.
func (s *FixedPriceOfferService) Withdraw(ctx context.Context, listingID int64) (*ActionResponse, error) {
	return send[ActionResponse](ctx, s.conn, "MyTradeMe/FixedPriceOffers/WithdrawOffer.xml",
		WithdrawOfferRequest{ListingID: listingID})
}

// Members returns the members an offer on a closed auction can go to.
func (s *FixedPriceOfferService) Members(
	ctx context.Context,
	listingID int64,
	filter OfferRecipients,
) (*OfferMembers, error) {
	if filter == "" {
		filter = RecipientsAll
	}
	return getPrivate[OfferMembers](ctx, s.conn, fmt.Sprintf("MyTradeMe/%d/Members/%s.xml", listingID, filter))
}
