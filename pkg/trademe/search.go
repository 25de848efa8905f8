package trademe

import (
	"context"
	"encoding/xml"
	"time"
)

// SearchService runs the public listing searches.
type SearchService service

// SortOrder orders search results. The zero value leaves the server default.
type SortOrder string

// Sort orders accepted by the search endpoints.
const (
	SortDefault       SortOrder = ""
	SortFeaturedFirst SortOrder = "FeaturedFirst"
	SortTitleAsc      SortOrder = "TitleAsc"
	SortExpiryAsc     SortOrder = "ExpiryAsc"
	SortExpiryDesc    SortOrder = "ExpiryDesc"
	SortPriceAsc      SortOrder = "PriceAsc"
	SortPriceDesc     SortOrder = "PriceDesc"
	SortBidsMost      SortOrder = "BidsMost"
	SortBuyNowAsc     SortOrder = "BuyNowAsc"
	SortBuyNowDesc    SortOrder = "BuyNowDesc"
	SortBestMatch     SortOrder = "BestMatch"
)

// Condition filters on item condition. The zero value matches any.
type Condition string

// Item conditions.
const (
	ConditionAny  Condition = ""
	ConditionNew  Condition = "New"
	ConditionUsed Condition = "Used"
)

// SearchResults is a page of listing search results.
type SearchResults struct {
	XMLName         xml.Name        `xml:"SearchResults"`
	TotalCount      int             `xml:"TotalCount"`
	Page            int             `xml:"Page"`
	PageSize        int             `xml:"PageSize"`
	Listings        []Listing       `xml:"List>Listing"`
	FoundCategories []FoundCategory `xml:"FoundCategories>FoundCategory,omitempty"`
}

// HasMore reports whether pages after this one exist.
func (r *SearchResults) HasMore() bool {
	return r.PageSize > 0 && r.Page*r.PageSize < r.TotalCount
}

// FoundCategory is a category facet of a search.
type FoundCategory struct {
	Count    int    `xml:"Count"`
	Category string `xml:"Category"`
	Name     string `xml:"Name"`
}

// GeneralSearch filters the marketplace search.
type GeneralSearch struct {
	Category      string
	SearchString  string
	Region        int
	SortOrder     SortOrder
	BuyNowOnly    bool
	PayNowOnly    bool
	Condition     Condition
	PriceMin      float64
	PriceMax      float64
	DateFrom      time.Time
	MemberListing int64
	Page          Page
}

func (g GeneralSearch) query() *Query {
	q := &Query{}
	q.Set("category", g.Category).
		Set("search_string", g.SearchString).
		Int("user_region", g.Region).
		Set("sort_order", string(g.SortOrder))
	if g.BuyNowOnly {
		q.Set("buy", "BuyNow")
	}
	if g.PayNowOnly {
		q.Set("pay", "PayNow")
	}
	q.Set("condition", string(g.Condition)).
		Float("price_min", g.PriceMin).
		Float("price_max", g.PriceMax).
		Date("date_from", g.DateFrom)
	if g.MemberListing > 0 {
		q.Set("member_listing", formatID(g.MemberListing))
	}
	return g.Page.apply(q)
}

// MotorsSearch filters the used cars, bikes and boats searches. Fields a
// given vehicle search does not support are ignored by the server.
type MotorsSearch struct {
	SearchString string
	Make         string
	Model        string
	BodyStyle    string
	YearMin      int
	YearMax      int
	PriceMin     float64
	PriceMax     float64
	OdometerMin  int
	OdometerMax  int
	Region       int
	SortOrder    SortOrder
	Page         Page
}

func (m MotorsSearch) query() *Query {
	q := (&Query{}).
		Set("search_string", m.SearchString).
		Set("make", m.Make).
		Set("model", m.Model).
		Set("body_style", m.BodyStyle).
		Int("year_min", m.YearMin).
		Int("year_max", m.YearMax).
		Float("price_min", m.PriceMin).
		Float("price_max", m.PriceMax).
		Int("odometer_min", m.OdometerMin).
		Int("odometer_max", m.OdometerMax).
		Int("user_region", m.Region).
		Set("sort_order", string(m.SortOrder))
	return m.Page.apply(q)
}

// PropertySearch filters the residential and rental property searches.
type PropertySearch struct {
	SearchString string
	Region       int
	District     int
	Suburb       int
	PropertyType string
	PriceMin     float64
	PriceMax     float64
	BedroomsMin  int
	BedroomsMax  int
	BathroomsMin int
	SortOrder    SortOrder
	Page         Page
}

func (p PropertySearch) query() *Query {
	q := (&Query{}).
		Set("search_string", p.SearchString).
		Int("region", p.Region).
		Int("district", p.District).
		Int("suburb", p.Suburb).
		Set("property_type", p.PropertyType).
		Float("price_min", p.PriceMin).
		Float("price_max", p.PriceMax).
		Int("bedrooms_min", p.BedroomsMin).
		Int("bedrooms_max", p.BedroomsMax).
		Int("bathrooms_min", p.BathroomsMin).
		Set("sort_order", string(p.SortOrder))
	return p.Page.apply(q)
}

// JobSearch filters the jobs search.
type JobSearch struct {
	SearchString string
	Category     string
	Region       int
	District     int
	Type         string
	PayType      string
	SalaryMin    float64
	SalaryMax    float64
	DateFrom     time.Time
	SortOrder    SortOrder
	Page         Page
}

func (j JobSearch) query() *Query {
	q := (&Query{}).
		Set("search_string", j.SearchString).
		Set("category", j.Category).
		Int("region", j.Region).
		Int("district", j.District).
		Set("type", j.Type).
		Set("pay_type", j.PayType).
		Float("salary_min", j.SalaryMin).
		Float("salary_max", j.SalaryMax).
		Date("date_from", j.DateFrom).
		Set("sort_order", string(j.SortOrder))
	return j.Page.apply(q)
}

// FlatmateSearch filters the flatmates wanted search.
type FlatmateSearch struct {
	SearchString string
	Region       int
	District     int
	Suburb       int
	PriceMax     float64
	Flatmates    int
	SortOrder    SortOrder
	Page         Page
}

func (f FlatmateSearch) query() *Query {
	q := (&Query{}).
		Set("search_string", f.SearchString).
		Int("region", f.Region).
		Int("district", f.District).
		Int("suburb", f.Suburb).
		Float("price_max", f.PriceMax).
		Int("flatmates", f.Flatmates).
		Set("sort_order", string(f.SortOrder))
	return f.Page.apply(q)
}

// General searches the marketplace.
func (s *SearchService) General(ctx context.Context, params GeneralSearch) (*SearchResults, error) {
	return getPublic[SearchResults](ctx, s.conn, "Search/General.xml"+params.query().Encode())
}

// UsedMotors searches used cars.
func (s *SearchService) UsedMotors(ctx context.Context, params MotorsSearch) (*SearchResults, error) {
	return getPublic[SearchResults](ctx, s.conn, "Search/Motors/Used.xml"+params.query().Encode())
}

// MotorBikes searches motorbikes.
func (s *SearchService) MotorBikes(ctx context.Context, params MotorsSearch) (*SearchResults, error) {
	return getPublic[SearchResults](ctx, s.conn, "Search/Motors/Bikes.xml"+params.query().Encode())
}

// MotorBoats searches boats.
func (s *SearchService) MotorBoats(ctx context.Context, params MotorsSearch) (*SearchResults, error) {
	return getPublic[SearchResults](ctx, s.conn, "Search/Motors/Boats.xml"+params.query().Encode())
}

// ResidentialProperties searches houses for sale.
func (s *SearchService) ResidentialProperties(ctx context.Context, params PropertySearch) (*SearchResults, error) {
	return getPublic[SearchResults](ctx, s.conn, "Search/Property/Residential.xml"+params.query().Encode())
}

// RentalProperties searches rentals.
func (s *SearchService) RentalProperties(ctx context.Context, params PropertySearch) (*SearchResults, error) {
	return getPublic[SearchResults](ctx, s.conn, "Search/Property/Rental.xml"+params.query().Encode())
}

// Jobs searches job listings.
func (s *SearchService) Jobs(ctx context.Context, params JobSearch) (*SearchResults, error) {
	return getPublic[SearchResults](ctx, s.conn, "Search/Jobs.xml"+params.query().Encode())
}

// Flatmates searches flatmate listings.
func (s *SearchService) Flatmates(ctx context.Context, params FlatmateSearch) (*SearchResults, error) {
	return getPublic[SearchResults](ctx, s.conn, "Search/Flatmates.xml"+params.query().Encode())
}

// Raw runs a search endpoint with a caller-built path and query string,
// for filters the typed searches do not cover.
func (s *SearchService) Raw(ctx context.Context, pathAndQuery string) (*SearchResults, error) {
	return getPublic[SearchResults](ctx, s.conn, pathAndQuery)
}
