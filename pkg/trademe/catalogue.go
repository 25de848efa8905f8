package trademe

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
)

// CatalogueService reads the public catalogue: categories, localities and
// listing metadata. None of its calls need an access token.
type CatalogueService service

// Locality is a region with its districts and suburbs.
type Locality struct {
	LocalityID int        `xml:"LocalityId"`
	Name       string     `xml:"Name"`
	Districts  []District `xml:"Districts>District,omitempty"`
}

// District is a district within a region.
type District struct {
	DistrictID int      `xml:"DistrictId"`
	Name       string   `xml:"Name"`
	Suburbs    []Suburb `xml:"Suburbs>Suburb,omitempty"`
}

// Suburb is the smallest locality unit.
type Suburb struct {
	SuburbID          int    `xml:"SuburbId"`
	Name              string `xml:"Name"`
	AdjacentSuburbIDs []int  `xml:"AdjacentSuburbs>int,omitempty"`
}

// Localities is the locality tree.
type Localities struct {
	XMLName xml.Name   `xml:"Localities"`
	Items   []Locality `xml:"Locality"`
}

// Area is a Trade Me area (the two-tier region list) or travel area.
type Area struct {
	AreaID   int    `xml:"Id"`
	Name     string `xml:"Name"`
	Children []Area `xml:"Children>Area,omitempty"`
}

// Areas is a list of areas.
type Areas struct {
	Items []Area `xml:",any"`
}

// AttributeOption is an allowed value of a category attribute.
type AttributeOption struct {
	Value   string `xml:"Value"`
	Display string `xml:"Display,omitempty"`
}

// CategoryAttribute describes an attribute a listing in a category may or
// must supply.
type CategoryAttribute struct {
	Name        string            `xml:"Name"`
	DisplayName string            `xml:"DisplayName,omitempty"`
	Type        string            `xml:"Type,omitempty"`
	IsRequired  bool              `xml:"IsRequiredForSell,omitempty"`
	Options     []AttributeOption `xml:"Options>AttributeOption,omitempty"`
}

// CategoryAttributes lists the attributes of a category.
type CategoryAttributes struct {
	Items []CategoryAttribute `xml:"Attribute"`
}

// LegalNotice is the legal text a category requires sellers to accept.
type LegalNotice struct {
	XMLName xml.Name `xml:"LegalNotice"`
	Text    string   `xml:",chardata"`
}

// ListingDuration is an allowed listing length for a category.
type ListingDuration struct {
	Duration int `xml:"Duration"`
}

// ListingDurations lists allowed durations.
type ListingDurations struct {
	Items []ListingDuration `xml:"ListingDuration"`
}

// CategoryFees are the selling fees charged for a category.
type CategoryFees struct {
	Listing        float64 `xml:"Listing"`
	Reserve        float64 `xml:"Reserve,omitempty"`
	Gallery        float64 `xml:"Gallery,omitempty"`
	Featured       float64 `xml:"Featured,omitempty"`
	Bold           float64 `xml:"Bold,omitempty"`
	Highlight      float64 `xml:"Highlight,omitempty"`
	Subtitle       float64 `xml:"Subtitle,omitempty"`
	SecondCategory float64 `xml:"SecondCategory,omitempty"`
}

// ComplaintSubjects lists complaint reasons.
type ComplaintSubjects struct {
	Items []string `xml:"string"`
}

// MotorbikeMake is a motorbike manufacturer.
type MotorbikeMake struct {
	Name string `xml:"Name"`
}

// MotorbikeMakes lists manufacturers.
type MotorbikeMakes struct {
	Items []MotorbikeMake `xml:"MotorbikeMake"`
}

// CatalogueItem is a DVD or Blu-ray title from the selling catalogue.
type CatalogueItem struct {
	CatalogueID int64  `xml:"CatalogueId"`
	Title       string `xml:"Title"`
	Barcode     string `xml:"Barcode,omitempty"`
	Rating      string `xml:"Rating,omitempty"`
	Format      string `xml:"Format,omitempty"`
}

// CatalogueItems is a list of catalogue titles.
type CatalogueItems struct {
	Items []CatalogueItem `xml:",any"`
}

// Categories returns the category tree rooted at number. An empty number
// returns the whole tree. depth limits how many levels are returned; zero
// means no limit.
func (s *CatalogueService) Categories(ctx context.Context, number string, depth int) (*Category, error) {
	path := "Categories.xml"
	if number != "" {
		path = fmt.Sprintf("Categories/%s.xml", url.PathEscape(number))
	}
	q := (&Query{}).Int("depth", depth)
	return getPublic[Category](ctx, s.conn, path+q.Encode())
}

// UsedCarCategories returns the makes and models of the used cars tree.
func (s *CatalogueService) UsedCarCategories(ctx context.Context) (*Category, error) {
	return getPublic[Category](ctx, s.conn, "Categories/UsedCars.xml")
}

// MotorbikeCategories returns the motorbikes tree.
func (s *CatalogueService) MotorbikeCategories(ctx context.Context) (*Category, error) {
	return getPublic[Category](ctx, s.conn, "Categories/MotorBikes.xml")
}

// JobCategories returns the jobs tree.
func (s *CatalogueService) JobCategories(ctx context.Context) (*Category, error) {
	return getPublic[Category](ctx, s.conn, "Categories/Jobs.xml")
}

// Localities returns the three-tier region/district/suburb tree.
func (s *CatalogueService) Localities(ctx context.Context) (*Localities, error) {
	return getPublic[Localities](ctx, s.conn, "Localities.xml")
}

// Areas returns the two-tier Trade Me area list.
func (s *CatalogueService) Areas(ctx context.Context) (*Areas, error) {
	return getPublic[Areas](ctx, s.conn, "TmAreas.xml")
}

// TravelAreas returns the travel destination areas.
func (s *CatalogueService) TravelAreas(ctx context.Context) (*Areas, error) {
	return getPublic[Areas](ctx, s.conn, "TravelAreas.xml")
}

// Attributes returns the attributes of a category.
func (s *CatalogueService) Attributes(ctx context.Context, number string) (*CategoryAttributes, error) {
	return getPublic[CategoryAttributes](ctx, s.conn,
		fmt.Sprintf("Categories/%s/Attributes.xml", url.PathEscape(number)))
}

// LegalNotice returns the legal notice of a category, if any.
func (s *CatalogueService) LegalNotice(ctx context.Context, number string) (*LegalNotice, error) {
	return getPublic[LegalNotice](ctx, s.conn,
		fmt.Sprintf("Categories/%s/LegalNotice.xml", url.PathEscape(number)))
}

// Durations returns the listing durations a category allows.
func (s *CatalogueService) Durations(ctx context.Context, number string) (*ListingDurations, error) {
	return getPublic[ListingDurations](ctx, s.conn,
		fmt.Sprintf("Categories/%s/Durations.xml", url.PathEscape(number)))
}

// Fees returns the selling fees of a category.
func (s *CatalogueService) Fees(ctx context.Context, number string) (*CategoryFees, error) {
	return getPublic[CategoryFees](ctx, s.conn,
		fmt.Sprintf("Categories/%s/Fees.xml", url.PathEscape(number)))
}

// ComplaintSubjects returns the reasons a listing complaint may give.
func (s *CatalogueService) ComplaintSubjects(ctx context.Context) (*ComplaintSubjects, error) {
	return getPublic[ComplaintSubjects](ctx, s.conn, "ComplaintSubjects.xml")
}

// MotorbikeMakes returns the motorbike manufacturers.
func (s *CatalogueService) MotorbikeMakes(ctx context.Context) (*MotorbikeMakes, error) {
	return getPublic[MotorbikeMakes](ctx, s.conn, "MotorbikeMakes.xml")
}

// FindDVD searches the DVD selling catalogue by title or barcode.
func (s *CatalogueService) FindDVD(ctx context.Context, search string) (*CatalogueItems, error) {
	q := (&Query{}).Set("search", search)
	return getPublic[CatalogueItems](ctx, s.conn, "dvd/find.xml"+q.Encode())
}

// FindBluRay searches the Blu-ray selling catalogue by title or barcode.
func (s *CatalogueService) FindBluRay(ctx context.Context, search string) (*CatalogueItems, error) {
	q := (&Query{}).Set("search", search)
	return getPublic[CatalogueItems](ctx, s.conn, "Bluray/find.xml"+q.Encode())
}
