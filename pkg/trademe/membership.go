package trademe

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// MembershipService reads public member profiles and feedback.
type MembershipService service

// FeedbackFilter narrows member feedback. The zero value returns all
// feedback.
type FeedbackFilter string

// Feedback filters.
const (
	FeedbackAll     FeedbackFilter = ""
	FeedbackSelling FeedbackFilter = "Selling"
	FeedbackBuying  FeedbackFilter = "Buying"
)

// MemberProfile is the public profile of a member.
type MemberProfile struct {
	Member      Member `xml:"Member"`
	Biography   string `xml:"Biography,omitempty"`
	Occupation  string `xml:"Occupation,omitempty"`
	Quote       string `xml:"Quote,omitempty"`
	Photo       string `xml:"Photo,omitempty"`
	IsADealer   bool   `xml:"IsADealer,omitempty"`
	FirstName   string `xml:"FirstName,omitempty"`
	DateRemoved string `xml:"DateRemoved,omitempty"`
}

// FeedbackCount summarises a member's feedback.
type FeedbackCount struct {
	MemberID          int64      `xml:"MemberId"`
	Nickname          string     `xml:"Nickname"`
	DateJoined        *time.Time `xml:"DateJoined,omitempty"`
	UniquePositive    int        `xml:"UniquePositive"`
	UniqueNeutral     int        `xml:"UniqueNeutral"`
	UniqueNegative    int        `xml:"UniqueNegative"`
	TotalPositive     int        `xml:"TotalPositive"`
	TotalNeutral      int        `xml:"TotalNeutral"`
	TotalNegative     int        `xml:"TotalNegative"`
	FeedbackCount     int        `xml:"FeedbackCount"`
	IsAuthenticated   bool       `xml:"IsAuthenticated,omitempty"`
	IsAddressVerified bool       `xml:"IsAddressVerified,omitempty"`
}

// FeedbackEntry is one piece of feedback left for a member.
type FeedbackEntry struct {
	FeedbackID   int64      `xml:"FeedbackId"`
	FeedbackType int        `xml:"FeedbackType"`
	Text         string     `xml:"Text"`
	DateEntered  *time.Time `xml:"DateEntered,omitempty"`
	ListingID    int64      `xml:"ListingId,omitempty"`
	IsSeller     bool       `xml:"IsSeller,omitempty"`
	Response     string     `xml:"Response,omitempty"`
	FeedbackFrom *Member    `xml:"FeedbackFrom,omitempty"`
}

// Feedback is a page of feedback entries.
type Feedback = Collection[FeedbackEntry]

// MemberID resolves a nickname.
type MemberID struct {
	MemberID int64  `xml:"MemberId"`
	Nickname string `xml:"Nickname,omitempty"`
}

// Profile returns a member's public profile.
func (s *MembershipService) Profile(ctx context.Context, memberID int64) (*MemberProfile, error) {
	return getPublic[MemberProfile](ctx, s.conn, fmt.Sprintf("Member/%d/Profile.xml", memberID))
}

// FeedbackCount returns a member's feedback totals.
func (s *MembershipService) FeedbackCount(ctx context.Context, memberID int64) (*FeedbackCount, error) {
	return getPublic[FeedbackCount](ctx, s.conn, fmt.Sprintf("Member/%d/FeedbackCount.xml", memberID))
}

// Feedback returns a page of a member's feedback.
func (s *MembershipService) Feedback(
	ctx context.Context,
	memberID int64,
	filter FeedbackFilter,
	page Page,
) (*Feedback, error) {
	path := fmt.Sprintf("Member/%d/Feedback.xml", memberID)
	if filter != FeedbackAll {
		path = fmt.Sprintf("Member/%d/Feedback/%s.xml", memberID, filter)
	}
	return getPublic[Feedback](ctx, s.conn, path+page.apply(&Query{}).Encode())
}

// IDByNickname looks up a member ID by nickname.
func (s *MembershipService) IDByNickname(ctx context.Context, nickname string) (*MemberID, error) {
	return getPublic[MemberID](ctx, s.conn, fmt.Sprintf("Member/%s.xml", url.PathEscape(nickname)))
}

// Listings returns a member's current listings.
func (s *MembershipService) Listings(ctx context.Context, memberID int64, page Page) (*Listings, error) {
	return getPublic[Listings](ctx, s.conn,
		fmt.Sprintf("Member/%d/Listings.xml", memberID)+page.apply(&Query{}).Encode())
}
