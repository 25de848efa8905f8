package trademe

import (
	"context"
	"encoding/xml"
	"fmt"
)

// ListingService reads listings and interacts with their sellers.
type ListingService service

// Listings is a page of listing summaries. The root element varies by
// endpoint and is not checked.
type Listings struct {
	TotalCount int       `xml:"TotalCount"`
	Page       int       `xml:"Page,omitempty"`
	PageSize   int       `xml:"PageSize,omitempty"`
	Items      []Listing `xml:"List>Listing"`
}

// Questions is a page of listing questions.
type Questions = Collection[Question]

// AnswerQuestionRequest answers a question on the caller's listing.
type AnswerQuestionRequest struct {
	XMLName xml.Name `xml:"http://api.trademe.co.nz/v1 ListingAnswerQuestion"`
	Answer  string   `xml:"Answer"`
}

// CommentRequest asks a public question on a listing.
type CommentRequest struct {
	XMLName xml.Name `xml:"http://api.trademe.co.nz/v1 ListingAddComment"`
	Comment string   `xml:"Comment"`
}

// EmailSellerRequest sends a private message to the seller of a classified.
type EmailSellerRequest struct {
	XMLName     xml.Name `xml:"http://api.trademe.co.nz/v1 EmailRequest"`
	Message     string   `xml:"Message"`
	PhoneNumber string   `xml:"PhoneNumber,omitempty"`
}

// EmailFriendRequest shares a listing by email.
type EmailFriendRequest struct {
	XMLName      xml.Name `xml:"http://api.trademe.co.nz/v1 EmailFriendRequest"`
	EmailAddress string   `xml:"EmailAddress"`
	Message      string   `xml:"Message,omitempty"`
	SendCC       bool     `xml:"SendCC,omitempty"`
}

// ComplaintRequest reports a listing to Trade Me.
type ComplaintRequest struct {
	XMLName xml.Name `xml:"http://api.trademe.co.nz/v1 ComplaintRequest"`
	Subject string   `xml:"Subject"`
	Message string   `xml:"Message"`
}

// ListingResponse acknowledges an action on a listing.
type ListingResponse struct {
	Success     bool   `xml:"Success"`
	Description string `xml:"Description,omitempty"`
	ListingID   int64  `xml:"ListingId,omitempty"`
	QuestionID  int64  `xml:"ListingQuestionId,omitempty"`
}

// Detail returns the full detail of a listing. It is a public read; when the
// client holds an access token the detail includes member-specific fields.
func (s *ListingService) Detail(ctx context.Context, listingID int64) (*ListingDetail, error) {
	return getPublic[ListingDetail](ctx, s.conn, fmt.Sprintf("Listings/%d.xml", listingID))
}

// Questions returns the questions asked on a listing.
func (s *ListingService) Questions(ctx context.Context, listingID int64, page Page) (*Questions, error) {
	q := page.apply(&Query{})
	return getPublic[Questions](ctx, s.conn, fmt.Sprintf("Listings/%d/questions.xml", listingID)+q.Encode())
}

// UnansweredQuestions returns the unanswered questions on one of the
// caller's listings, or on all of them when listingID is zero.
func (s *ListingService) UnansweredQuestions(ctx context.Context, listingID int64, page Page) (*Questions, error) {
	path := "Listings/questions/unansweredquestions.xml"
	if listingID > 0 {
		path = fmt.Sprintf("Listings/%d/questions/unansweredquestions.xml", listingID)
	}
	return getPrivate[Questions](ctx, s.conn, path+page.apply(&Query{}).Encode())
}

// AnswerQuestion answers a question asked on one of the caller's listings.
func (s *ListingService) AnswerQuestion(
	ctx context.Context,
	listingID, questionID int64,
	answer string,
) (*ListingResponse, error) {
	return send[ListingResponse](ctx, s.conn,
		fmt.Sprintf("Listings/%d/questions/%d/answerquestion.xml", listingID, questionID),
		AnswerQuestionRequest{Answer: answer})
}

// AskQuestion posts a public question on a listing.
func (s *ListingService) AskQuestion(ctx context.Context, listingID int64, comment string) (*ListingResponse, error) {
	return send[ListingResponse](ctx, s.conn,
		fmt.Sprintf("Listings/%d/addcomment.xml", listingID),
		CommentRequest{Comment: comment})
}

// EmailSeller messages the seller of a classified listing.
func (s *ListingService) EmailSeller(
	ctx context.Context,
	listingID int64,
	req EmailSellerRequest,
) (*ActionResponse, error) {
	return send[ActionResponse](ctx, s.conn, fmt.Sprintf("Listings/%d/emailseller.xml", listingID), req)
}

// EmailFriend emails a link to a listing.
func (s *ListingService) EmailFriend(
	ctx context.Context,
	listingID int64,
	req EmailFriendRequest,
) (*ActionResponse, error) {
	return send[ActionResponse](ctx, s.conn, fmt.Sprintf("Listings/%d/emailfriend.xml", listingID), req)
}

// SendComplaint reports a listing. Valid subjects come from
// CatalogueService.ComplaintSubjects.
func (s *ListingService) SendComplaint(
	ctx context.Context,
	listingID int64,
	req ComplaintRequest,
) (*ActionResponse, error) {
	return send[ActionResponse](ctx, s.conn, fmt.Sprintf("Listings/%d/sendcomplaint.xml", listingID), req)
}

// Featured returns featured listings.
func (s *ListingService) Featured(ctx context.Context, page Page) (*Listings, error) {
	return s.collection(ctx, "Listings/Featured.xml", page)
}

// Hot returns the most watched listings.
func (s *ListingService) Hot(ctx context.Context, page Page) (*Listings, error) {
	return s.collection(ctx, "Listings/Hot.xml", page)
}

// Latest returns recently started listings.
func (s *ListingService) Latest(ctx context.Context, page Page) (*Listings, error) {
	return s.collection(ctx, "Listings/Latest.xml", page)
}

// ClosingSoon returns listings about to close.
func (s *ListingService) ClosingSoon(ctx context.Context, page Page) (*Listings, error) {
	return s.collection(ctx, "Listings/closing.xml", page)
}

// OneDollar returns $1 reserve auctions.
func (s *ListingService) OneDollar(ctx context.Context, page Page) (*Listings, error) {
	return s.collection(ctx, "Listings/oneDollar.xml", page)
}

func (s *ListingService) collection(ctx context.Context, path string, page Page) (*Listings, error) {
	return getPublic[Listings](ctx, s.conn, path+page.apply(&Query{}).Encode())
}

// HasMore reports whether pages after this one exist.
func (l *Listings) HasMore() bool {
	return l.PageSize > 0 && l.Page*l.PageSize < l.TotalCount
}
