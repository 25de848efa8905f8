package trademe

import (
	"fmt"
	"strings"

	"github.com/donaldgifford/trademe/pkg/oauth1"
)

// Environment selects a Trade Me deployment.
type Environment string

// Known environments.
const (
	Sandbox    Environment = "sandbox"
	Production Environment = "production"
)

// Scopes requested by default: read and write My Trade Me plus bidding.
const DefaultScope = "MyTradeMeRead,MyTradeMeWrite,BiddingAndBuying"

// defaultCallback is the out-of-band callback: the user copies the verifier
// from the authorize page.
const defaultCallback = "oob"

// Endpoints holds the API base URL and the three OAuth handshake URLs.
type Endpoints struct {
	BaseURL         string
	RequestTokenURL string
	AuthorizeURL    string
	AccessTokenURL  string
}

// EndpointsFor returns the endpoints of a Trade Me environment.
func EndpointsFor(env Environment) (Endpoints, error) {
	switch env {
	case Sandbox, "":
		return Endpoints{
			BaseURL:         "https://api.tmsandbox.co.nz/v1/",
			RequestTokenURL: "https://secure.tmsandbox.co.nz/Oauth/RequestToken",
			AuthorizeURL:    "https://secure.tmsandbox.co.nz/Oauth/Authorize",
			AccessTokenURL:  "https://secure.tmsandbox.co.nz/Oauth/AccessToken",
		}, nil
	case Production:
		return Endpoints{
			BaseURL:         "https://api.trademe.co.nz/v1/",
			RequestTokenURL: "https://secure.trademe.co.nz/Oauth/RequestToken",
			AuthorizeURL:    "https://secure.trademe.co.nz/Oauth/Authorize",
			AccessTokenURL:  "https://secure.trademe.co.nz/Oauth/AccessToken",
		}, nil
	default:
		return Endpoints{}, fmt.Errorf("unknown environment %q (want sandbox or production)", env)
	}
}

// Credentials is the consumer identity plus whichever tokens the handshake
// has produced so far. Only the handshake operations and SetAccessToken
// change the tokens.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Scope          string
	Callback       string
	Endpoints      Endpoints

	RequestToken *oauth1.Token
	AccessToken  *oauth1.Token
}

// resolve turns an API path into an absolute URL under BaseURL. Absolute
// URLs pass through unchanged.
func (c *Credentials) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(c.Endpoints.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// ListingURL returns the public web page of a listing in env.
func ListingURL(env Environment, listingID int64) string {
	host := "www.tmsandbox.co.nz"
	if env == Production {
		host = "www.trademe.co.nz"
	}
	return fmt.Sprintf("https://%s/Browse/Listing.aspx?id=%d", host, listingID)
}
