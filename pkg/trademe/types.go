package trademe

import (
	"encoding/xml"
	"time"
)

// Collection is a page of a Trade Me list resource:
//
//	<X><TotalCount/><Page/><PageSize/><List><Item/>...</List></X>
//
// Item element names vary per resource, so every child of <List> is decoded
// as a T.
type Collection[T any] struct {
	TotalCount int
	Page       int
	PageSize   int
	Items      []T
}

type collectionWire[T any] struct {
	TotalCount int `xml:"TotalCount"`
	Page       int `xml:"Page,omitempty"`
	PageSize   int `xml:"PageSize,omitempty"`
	List       struct {
		Items []T `xml:",any"`
	} `xml:"List"`
}

// UnmarshalXML implements xml.Unmarshaler.
func (c *Collection[T]) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var w collectionWire[T]
	if err := d.DecodeElement(&w, &start); err != nil {
		return err
	}
	c.TotalCount = w.TotalCount
	c.Page = w.Page
	c.PageSize = w.PageSize
	c.Items = w.List.Items
	return nil
}

// MarshalXML implements xml.Marshaler.
func (c Collection[T]) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	var w collectionWire[T]
	w.TotalCount = c.TotalCount
	w.Page = c.Page
	w.PageSize = c.PageSize
	w.List.Items = c.Items
	return e.EncodeElement(w, start)
}

// ActionResponse is the generic acknowledgement returned by write endpoints.
type ActionResponse struct {
	Success     bool   `xml:"Success"`
	Description string `xml:"Description,omitempty"`
}

// Category is a node of the category tree.
type Category struct {
	XMLName        xml.Name   `xml:"Category"`
	Name           string     `xml:"Name"`
	Number         string     `xml:"Number"`
	Path           string     `xml:"Path,omitempty"`
	Count          int        `xml:"Count,omitempty"`
	IsRestricted   bool       `xml:"IsRestricted,omitempty"`
	HasLegalNotice bool       `xml:"HasLegalNotice,omitempty"`
	HasClassifieds bool       `xml:"HasClassifieds,omitempty"`
	AreaOfBusiness int        `xml:"AreaOfBusiness,omitempty"`
	Subcategories  []Category `xml:"Subcategories>Category,omitempty"`
}

// Find returns the first category in the tree (depth first, including c)
// whose number matches.
func (c *Category) Find(number string) *Category {
	if c.Number == number {
		return c
	}
	for i := range c.Subcategories {
		if found := c.Subcategories[i].Find(number); found != nil {
			return found
		}
	}
	return nil
}

// Listing is the summary form of a listing used in search results and
// member collections.
type Listing struct {
	ListingID     int64      `xml:"ListingId"`
	Title         string     `xml:"Title"`
	Category      string     `xml:"Category,omitempty"`
	CategoryPath  string     `xml:"CategoryPath,omitempty"`
	StartPrice    float64    `xml:"StartPrice,omitempty"`
	BuyNowPrice   float64    `xml:"BuyNowPrice,omitempty"`
	MaxBidAmount  float64    `xml:"MaxBidAmount,omitempty"`
	PriceDisplay  string     `xml:"PriceDisplay,omitempty"`
	StartDate     *time.Time `xml:"StartDate,omitempty"`
	EndDate       *time.Time `xml:"EndDate,omitempty"`
	AsAt          *time.Time `xml:"AsAt,omitempty"`
	BidCount      int        `xml:"BidCount,omitempty"`
	HasBuyNow     bool       `xml:"HasBuyNow,omitempty"`
	HasReserve    bool       `xml:"HasReserve,omitempty"`
	IsReserveMet  bool       `xml:"IsReserveMet,omitempty"`
	IsFeatured    bool       `xml:"IsFeatured,omitempty"`
	IsBold        bool       `xml:"IsBold,omitempty"`
	IsHighlighted bool       `xml:"IsHighlighted,omitempty"`
	PictureHref   string     `xml:"PictureHref,omitempty"`
	Region        string     `xml:"Region,omitempty"`
	Suburb        string     `xml:"Suburb,omitempty"`
	IsNew         bool       `xml:"IsNew,omitempty"`
	IsClassified  bool       `xml:"IsClassified,omitempty"`
}

// ShippingOption is a delivery method offered by a seller.
type ShippingOption struct {
	Type       int     `xml:"Type"`
	Price      float64 `xml:"Price,omitempty"`
	Method     string  `xml:"Method,omitempty"`
	ShippingID int     `xml:"ShippingId,omitempty"`
}

// Photo is a listing photo with its size variants.
type Photo struct {
	Key   int64 `xml:"Key"`
	Value struct {
		Thumbnail string `xml:"Thumbnail,omitempty"`
		List      string `xml:"List,omitempty"`
		Medium    string `xml:"Medium,omitempty"`
		Gallery   string `xml:"Gallery,omitempty"`
		Large     string `xml:"Large,omitempty"`
		FullSize  string `xml:"FullSize,omitempty"`
		PhotoID   int64  `xml:"PhotoId,omitempty"`
	} `xml:"Value"`
}

// Question is a question asked on a listing and its answer, if any.
type Question struct {
	ListingQuestionID int64      `xml:"ListingQuestionId"`
	Comment           string     `xml:"Comment"`
	CommentDate       *time.Time `xml:"CommentDate,omitempty"`
	Answer            string     `xml:"Answer,omitempty"`
	AnswerDate        *time.Time `xml:"AnswerDate,omitempty"`
	AskingMember      *Member    `xml:"AskingMember,omitempty"`
	ListingID         int64      `xml:"ListingId,omitempty"`
}

// Attribute is a name/value pair attached to a listing.
type Attribute struct {
	Name        string `xml:"Name"`
	DisplayName string `xml:"DisplayName,omitempty"`
	Value       string `xml:"Value"`
}

// ListingDetail is the full form of a listing.
type ListingDetail struct {
	XMLName         xml.Name              `xml:"ListedItemDetail"`
	ListingID       int64                 `xml:"ListingId"`
	Title           string                `xml:"Title"`
	Subtitle        string                `xml:"Subtitle,omitempty"`
	Category        string                `xml:"Category,omitempty"`
	CategoryPath    string                `xml:"CategoryPath,omitempty"`
	Body            string                `xml:"Body,omitempty"`
	StartPrice      float64               `xml:"StartPrice,omitempty"`
	ReservePrice    float64               `xml:"ReservePrice,omitempty"`
	BuyNowPrice     float64               `xml:"BuyNowPrice,omitempty"`
	MaxBidAmount    float64               `xml:"MaxBidAmount,omitempty"`
	PriceDisplay    string                `xml:"PriceDisplay,omitempty"`
	StartDate       *time.Time            `xml:"StartDate,omitempty"`
	EndDate         *time.Time            `xml:"EndDate,omitempty"`
	BidCount        int                   `xml:"BidCount,omitempty"`
	ViewCount       int                   `xml:"ViewCount,omitempty"`
	IsReserveMet    bool                  `xml:"IsReserveMet,omitempty"`
	HasBuyNow       bool                  `xml:"HasBuyNow,omitempty"`
	IsClosed        bool                  `xml:"IsClosed,omitempty"`
	Region          string                `xml:"Region,omitempty"`
	Suburb          string                `xml:"Suburb,omitempty"`
	Member          *Member               `xml:"Member,omitempty"`
	Photos          []Photo               `xml:"Photos>Photo,omitempty"`
	Questions       *Collection[Question] `xml:"Questions,omitempty"`
	ShippingOptions []ShippingOption      `xml:"ShippingOptions>ShippingOption,omitempty"`
	Attributes      []Attribute           `xml:"Attributes>Attribute,omitempty"`
	PaymentOptions  string                `xml:"PaymentOptions,omitempty"`
	WinningBidder   *Member               `xml:"WinningBidder,omitempty"`
}

// Member is the public identity of a Trade Me member.
type Member struct {
	MemberID          int64      `xml:"MemberId"`
	Nickname          string     `xml:"Nickname"`
	DateJoined        *time.Time `xml:"DateJoined,omitempty"`
	FeedbackCount     int        `xml:"FeedbackCount,omitempty"`
	UniquePositive    int        `xml:"UniquePositive,omitempty"`
	UniqueNegative    int        `xml:"UniqueNegative,omitempty"`
	IsAddressVerified bool       `xml:"IsAddressVerified,omitempty"`
	IsAuthenticated   bool       `xml:"IsAuthenticated,omitempty"`
	IsDealer          bool       `xml:"IsDealer,omitempty"`
	IsInTrade         bool       `xml:"IsInTrade,omitempty"`
	Region            string     `xml:"Region,omitempty"`
	Suburb            string     `xml:"Suburb,omitempty"`
}
