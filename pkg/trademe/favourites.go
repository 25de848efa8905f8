package trademe

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"
)

// FavouriteService manages saved searches, categories and sellers.
type FavouriteService service

// FavouriteType identifies the kind of a saved favourite.
type FavouriteType string

// Favourite kinds.
const (
	FavouriteSearch   FavouriteType = "Search"
	FavouriteCategory FavouriteType = "Category"
	FavouriteSeller   FavouriteType = "Seller"
)

// EmailFrequency controls how often a favourite sends alert emails.
type EmailFrequency string

// Alert frequencies.
const (
	EmailNever   EmailFrequency = "None"
	EmailDaily   EmailFrequency = "Daily"
	EmailEvery12 EmailFrequency = "Every12Hours"
)

// SavedSearchType filters saved searches by vertical.
type SavedSearchType string

// Saved search verticals.
const (
	SavedSearchAll      SavedSearchType = "All"
	SavedSearchGeneral  SavedSearchType = "General"
	SavedSearchMotors   SavedSearchType = "Motors"
	SavedSearchProperty SavedSearchType = "Property"
	SavedSearchJobs     SavedSearchType = "Jobs"
)

// SaveSearchRequest saves a search as a favourite. SearchString is the
// query string of the search, without the leading "?".
type SaveSearchRequest struct {
	XMLName      xml.Name       `xml:"http://api.trademe.co.nz/v1 SaveSearchRequest"`
	SearchString string         `xml:"SearchString"`
	Type         string         `xml:"Type,omitempty"`
	Email        EmailFrequency `xml:"Email,omitempty"`
}

// SaveCategoryRequest saves a category as a favourite.
type SaveCategoryRequest struct {
	XMLName  xml.Name       `xml:"http://api.trademe.co.nz/v1 SaveCategoryRequest"`
	Category string         `xml:"Category"`
	Email    EmailFrequency `xml:"Email,omitempty"`
}

// SaveSellerRequest saves a seller as a favourite.
type SaveSellerRequest struct {
	XMLName  xml.Name       `xml:"http://api.trademe.co.nz/v1 SaveSellerRequest"`
	SellerID int64          `xml:"SellerId"`
	Email    EmailFrequency `xml:"Email,omitempty"`
}

// FavouriteResponse is the outcome of saving a favourite.
type FavouriteResponse struct {
	Success bool   `xml:"Success"`
	Message string `xml:"Message,omitempty"`
	SavedID int64  `xml:"SavedId,omitempty"`
}

// SavedSearch is a search saved as a favourite.
type SavedSearch struct {
	FavouriteID   int64          `xml:"FavouriteId"`
	SearchString  string         `xml:"SearchString"`
	Type          string         `xml:"Type,omitempty"`
	Email         EmailFrequency `xml:"Email,omitempty"`
	CreatedDate   *time.Time     `xml:"CreatedDate,omitempty"`
	LastEmailDate *time.Time     `xml:"LastEmailDate,omitempty"`
}

// SavedCategory is a category saved as a favourite.
type SavedCategory struct {
	FavouriteID  int64          `xml:"FavouriteId"`
	CategoryID   int            `xml:"CategoryId"`
	CategoryName string         `xml:"CategoryName,omitempty"`
	Email        EmailFrequency `xml:"Email,omitempty"`
}

// SavedSeller is a seller saved as a favourite.
type SavedSeller struct {
	FavouriteID int64          `xml:"FavouriteId"`
	MemberID    int64          `xml:"MemberId"`
	Nickname    string         `xml:"Nickname,omitempty"`
	Email       EmailFrequency `xml:"Email,omitempty"`
}

// SavedSearches lists saved searches.
type SavedSearches struct {
	Items []SavedSearch `xml:"SavedSearch"`
}

// SavedCategories lists saved categories.
type SavedCategories struct {
	Items []SavedCategory `xml:"SavedCategory"`
}

// SavedSellers lists saved sellers.
type SavedSellers struct {
	Items []SavedSeller `xml:"SavedSeller"`
}

// SaveSearch saves a search.
func (s *FavouriteService) SaveSearch(ctx context.Context, req SaveSearchRequest) (*FavouriteResponse, error) {
	return send[FavouriteResponse](ctx, s.conn, "Favourites/Search.xml", req)
}

// SaveCategory saves a category.
func (s *FavouriteService) SaveCategory(ctx context.Context, req SaveCategoryRequest) (*FavouriteResponse, error) {
	return send[FavouriteResponse](ctx, s.conn, "Favourites/category.xml", req)
}

// SaveSeller saves a seller.
func (s *FavouriteService) SaveSeller(ctx context.Context, req SaveSellerRequest) (*FavouriteResponse, error) {
	return send[FavouriteResponse](ctx, s.conn, "Favourites/Seller.xml", req)
}

// Remove deletes a saved favourite.
func (s *FavouriteService) Remove(ctx context.Context, id int64, kind FavouriteType) (*ActionResponse, error) {
	return remove[ActionResponse](ctx, s.conn, fmt.Sprintf("Favourites/%d/%s.xml", id, kind))
}

// UpdateFrequency changes how often a favourite emails alerts.
func (s *FavouriteService) UpdateFrequency(
	ctx context.Context,
	id int64,
	kind FavouriteType,
	freq EmailFrequency,
) (*ActionResponse, error) {
	return send[ActionResponse](ctx, s.conn, fmt.Sprintf("Favourites/%d/%s/%s.xml", id, kind, freq), nil)
}

// Searches returns saved searches of the given vertical.
func (s *FavouriteService) Searches(ctx context.Context, filter SavedSearchType) (*SavedSearches, error) {
	if filter == "" {
		filter = SavedSearchAll
	}
	return getPrivate[SavedSearches](ctx, s.conn, fmt.Sprintf("Favourites/Searches/%s.xml", filter))
}

// Categories returns saved categories.
func (s *FavouriteService) Categories(ctx context.Context) (*SavedCategories, error) {
	return getPrivate[SavedCategories](ctx, s.conn, "Favourites/Categories.xml")
}

// Sellers returns saved sellers.
func (s *FavouriteService) Sellers(ctx context.Context) (*SavedSellers, error) {
	return getPrivate[SavedSellers](ctx, s.conn, "Favourites/Sellers.xml")
}
