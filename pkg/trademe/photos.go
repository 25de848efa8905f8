package trademe

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
)

// PhotoService uploads and manages the member's photos.
type PhotoService service

// MemberPhoto is an uploaded photo.
type MemberPhoto struct {
	PhotoID     int64  `xml:"PhotoId"`
	FileName    string `xml:"FileName,omitempty"`
	ThumbURL    string `xml:"ThumbnailUrl,omitempty"`
	FullURL     string `xml:"FullSizeUrl,omitempty"`
	ListingUses int    `xml:"ListingCount,omitempty"`
}

// MemberPhotos lists uploaded photos.
type MemberPhotos = Collection[MemberPhoto]

// PhotoUploadRequest uploads an image. PhotoData is base64 encoded.
type PhotoUploadRequest struct {
	XMLName         xml.Name `xml:"http://api.trademe.co.nz/v1 PhotoUploadRequest"`
	PhotoData       string   `xml:"PhotoData"`
	FileName        string   `xml:"FileName"`
	FileType        string   `xml:"FileType"`
	IsUsernameAdded bool     `xml:"IsUsernameAdded,omitempty"`
}

// PhotoResponse is the outcome of an upload or attach.
type PhotoResponse struct {
	Status      string `xml:"Status"`
	Description string `xml:"Description,omitempty"`
	PhotoID     int64  `xml:"PhotoId,omitempty"`
}

// NewPhotoUpload reads an image and encodes it for upload. fileType is the
// extension without the dot, for example "jpg".
func NewPhotoUpload(r io.Reader, fileName, fileType string) (PhotoUploadRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return PhotoUploadRequest{}, fmt.Errorf("reading photo %s: %w", fileName, err)
	}
	return PhotoUploadRequest{
		PhotoData: base64.StdEncoding.EncodeToString(data),
		FileName:  fileName,
		FileType:  fileType,
	}, nil
}

// List returns the member's photos.
func (s *PhotoService) List(ctx context.Context) (*MemberPhotos, error) {
	return getPrivate[MemberPhotos](ctx, s.conn, "Photos.xml")
}

// Details returns the member's photos with usage data.
func (s *PhotoService) Details(ctx context.Context) (*MemberPhotos, error) {
	return getPrivate[MemberPhotos](ctx, s.conn, "Photos/Details.xml")
}

// Upload uploads a photo.
func (s *PhotoService) Upload(ctx context.Context, req PhotoUploadRequest) (*PhotoResponse, error) {
	return send[PhotoResponse](ctx, s.conn, "Photos.xml", req)
}

// Remove deletes an uploaded photo.
func (s *PhotoService) Remove(ctx context.Context, photoID int64) (*PhotoResponse, error) {
	return remove[PhotoResponse](ctx, s.conn, fmt.Sprintf("Photos/%d/Remove.xml", photoID))
}

// AddToListing attaches an uploaded photo to one of the member's listings.
func (s *PhotoService) AddToListing(ctx context.Context, photoID, listingID int64) (*PhotoResponse, error) {
	return send[PhotoResponse](ctx, s.conn, fmt.Sprintf("Photos/%d/Add/%d.xml", photoID, listingID), nil)
}
