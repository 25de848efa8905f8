package trademe

import (
	"context"
	"encoding/xml"
	"time"
)

// SellingService lists, edits and withdraws the caller's items.
type SellingService service

// ListingRequest describes a new listing. The same shape is used to quote
// fees before listing.
type ListingRequest struct {
	XMLName                 xml.Name         `xml:"http://api.trademe.co.nz/v1 ListingRequest"`
	Category                string           `xml:"Category"`
	Title                   string           `xml:"Title"`
	Subtitle                string           `xml:"Subtitle,omitempty"`
	Description             []string         `xml:"Description>Paragraph"`
	StartPrice              float64          `xml:"StartPrice"`
	ReservePrice            float64          `xml:"ReservePrice"`
	BuyNowPrice             float64          `xml:"BuyNowPrice,omitempty"`
	Duration                string           `xml:"Duration"`
	EndDateTime             *time.Time       `xml:"EndDateTime,omitempty"`
	Pickup                  string           `xml:"Pickup,omitempty"`
	IsBrandNew              bool             `xml:"IsBrandNew,omitempty"`
	PhotoIDs                []int64          `xml:"PhotoIds>PhotoId,omitempty"`
	ShippingOptions         []ShippingOption `xml:"ShippingOptions>ShippingOption,omitempty"`
	PaymentMethods          []string         `xml:"PaymentMethods>PaymentMethod,omitempty"`
	Attributes              []Attribute      `xml:"Attributes>Attribute,omitempty"`
	IsFeatured              bool             `xml:"IsFeatured,omitempty"`
	HasGallery              bool             `xml:"HasGallery,omitempty"`
	IsBold                  bool             `xml:"IsBold,omitempty"`
	IsHighlighted           bool             `xml:"IsHighlighted,omitempty"`
	SendPaymentInstructions bool             `xml:"SendPaymentInstructions,omitempty"`
	Quantity                int              `xml:"Quantity,omitempty"`
	IsClearance             bool             `xml:"IsClearance,omitempty"`
	ExternalReference       string           `xml:"ExternalReferenceId,omitempty"`
	AuthenticatedOnly       bool             `xml:"AuthenticatedMembersOnly,omitempty"`
	HomePhoneNumber         string           `xml:"HomePhoneNumber,omitempty"`
	MobilePhoneNumber       string           `xml:"MobilePhoneNumber,omitempty"`
	ContactDetailsType      int              `xml:"ContactDetailsType,omitempty"`
}

// EditListingRequest replaces the editable fields of a live listing.
type EditListingRequest struct {
	XMLName xml.Name `xml:"http://api.trademe.co.nz/v1 EditListingRequest"`
	ListingRequest
	ListingID int64 `xml:"ListingId"`
}

// WithdrawRequest ends a listing early.
type WithdrawRequest struct {
	XMLName   xml.Name `xml:"http://api.trademe.co.nz/v1 WithdrawRequest"`
	ListingID int64    `xml:"ListingId"`
	Type      string   `xml:"Type"`
	Reason    string   `xml:"Reason,omitempty"`
	SalePrice float64  `xml:"SalePrice,omitempty"`
}

// Withdrawal types.
const (
	WithdrawListingWasSold    = "ListingWasSold"
	WithdrawListingWasNotSold = "ListingWasNotSold"
)

// RelistRequest relists an unsold listing.
type RelistRequest struct {
	XMLName   xml.Name `xml:"http://api.trademe.co.nz/v1 RelistListingRequest"`
	ListingID int64    `xml:"ListingId"`
}

// SellSimilarRequest creates a new listing copied from an existing one.
type SellSimilarRequest struct {
	XMLName   xml.Name `xml:"http://api.trademe.co.nz/v1 SellSimilarListingRequest"`
	ListingID int64    `xml:"ListingId"`
}

// SellCatalogueRequest lists a DVD or Blu-ray from the selling catalogue.
type SellCatalogueRequest struct {
	XMLName     xml.Name `xml:"http://api.trademe.co.nz/v1 SellCatalogueRequest"`
	CatalogueID int64    `xml:"CatalogueId"`
	Condition   string   `xml:"Condition,omitempty"`
	StartPrice  float64  `xml:"StartPrice"`
	BuyNowPrice float64  `xml:"BuyNowPrice,omitempty"`
	Duration    string   `xml:"Duration,omitempty"`
}

// ListingResult is the outcome of a selling call.
type ListingResult struct {
	Success     bool    `xml:"Success"`
	Description string  `xml:"Description,omitempty"`
	ListingID   int64   `xml:"ListingId,omitempty"`
	Fee         float64 `xml:"Fee,omitempty"`
	FeeString   string  `xml:"FeeString,omitempty"`
}

// ListingFees is a fee quote for a prospective listing.
type ListingFees struct {
	Listing    float64 `xml:"Listing"`
	Reserve    float64 `xml:"Reserve,omitempty"`
	Gallery    float64 `xml:"Gallery,omitempty"`
	Featured   float64 `xml:"Featured,omitempty"`
	Bold       float64 `xml:"Bold,omitempty"`
	Highlight  float64 `xml:"Highlight,omitempty"`
	Subtitle   float64 `xml:"Subtitle,omitempty"`
	Total      float64 `xml:"Total,omitempty"`
	SuccessFee float64 `xml:"SuccessFee,omitempty"`
}

// List creates a listing.
func (s *SellingService) List(ctx context.Context, req ListingRequest) (*ListingResult, error) {
	return send[ListingResult](ctx, s.conn, "Selling.xml", req)
}

// Fees quotes the fees for a listing without creating it.
func (s *SellingService) Fees(ctx context.Context, req ListingRequest) (*ListingFees, error) {
	return send[ListingFees](ctx, s.conn, "Selling/Fees.xml", req)
}

// Edit updates a live listing.
func (s *SellingService) Edit(ctx context.Context, req EditListingRequest) (*ListingResult, error) {
	return send[ListingResult](ctx, s.conn, "Selling/Edit.xml", req)
}

// Withdraw ends a listing early.
func (s *SellingService) Withdraw(ctx context.Context, req WithdrawRequest) (*ListingResult, error) {
	return send[ListingResult](ctx, s.conn, "Selling/Withdraw.xml", req)
}

// Relist relists an unsold listing.
func (s *SellingService) Relist(ctx context.Context, listingID int64) (*ListingResult, error) {
	return send[ListingResult](ctx, s.conn, "Selling/Relist.xml", RelistRequest{ListingID: listingID})
}

// SellSimilar lists a copy of an existing listing.
func (s *SellingService) SellSimilar(ctx context.Context, listingID int64) (*ListingResult, error) {
	return send[ListingResult](ctx, s.conn, "Selling/Similar.xml", SellSimilarRequest{ListingID: listingID})
}

// SellDVD lists a DVD from the selling catalogue.
func (s *SellingService) SellDVD(ctx context.Context, req SellCatalogueRequest) (*ListingResult, error) {
	return send[ListingResult](ctx, s.conn, "Selling/SellCatalogueDVD.xml", req)
}

// SellBluRay lists a Blu-ray from the selling catalogue.
func (s *SellingService) SellBluRay(ctx context.Context, req SellCatalogueRequest) (*ListingResult, error) {
	return send[ListingResult](ctx, s.conn, "Selling/SellCatalogueBluRay.xml", req)
}
