package trademe

import (
	"context"
	"encoding/xml"
)

// BiddingService places bids and buys listings outright.
type BiddingService service

// BidRequest places a bid, or an auto-bid up to Amount when AutoBid is set.
type BidRequest struct {
	XMLName        xml.Name `xml:"http://api.trademe.co.nz/v1 BidRequest"`
	ListingID      int64    `xml:"ListingId"`
	Amount         float64  `xml:"Amount"`
	AutoBid        bool     `xml:"AutoBid,omitempty"`
	ShippingOption int      `xml:"ShippingOption,omitempty"`
	EmailOutbid    bool     `xml:"EmailOutbid,omitempty"`
	PayNowMethod   string   `xml:"PayNowMethod,omitempty"`
}

// BuyNowRequest buys a listing at its Buy Now price.
type BuyNowRequest struct {
	XMLName        xml.Name `xml:"http://api.trademe.co.nz/v1 BuyNowRequest"`
	ListingID      int64    `xml:"ListingId"`
	ShippingOption int      `xml:"ShippingOption,omitempty"`
	Quantity       int      `xml:"Quantity,omitempty"`
}

// BidResponse is the outcome of a bid or Buy Now. Both endpoints share
// the shape but not the root element name.
type BidResponse struct {
	Success      bool   `xml:"Success"`
	Description  string `xml:"Description,omitempty"`
	IsLeading    bool   `xml:"IsLeading,omitempty"`
	IsReserveMet bool   `xml:"IsReserveMet,omitempty"`
	IsWinner     bool   `xml:"IsWinner,omitempty"`
	PurchaseID   int64  `xml:"PurchaseId,omitempty"`
}

// Bid places a bid on an auction.
func (s *BiddingService) Bid(ctx context.Context, req BidRequest) (*BidResponse, error) {
	return send[BidResponse](ctx, s.conn, "Bidding/Bid.xml", req)
}

// BuyNow purchases a listing at its Buy Now price.
func (s *BiddingService) BuyNow(ctx context.Context, req BuyNowRequest) (*BidResponse, error) {
	return send[BidResponse](ctx, s.conn, "Bidding/BuyNow.xml", req)
}
