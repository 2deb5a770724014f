// internal/client/interface.go
package client

import (
	"context"
	"encoding/json"

	"xhs-monitor/internal/models"
)

// Response is a raw platform reply. Classification is left to the parser.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

type XhsClientInterface interface {
	FetchNoteFeed(ctx context.Context, session models.Session, loc models.Locator) (Response, error)
	FetchCommentPage(ctx context.Context, session models.Session, loc models.Locator, cursor string) (Response, error)
	FetchSubCommentPage(ctx context.Context, session models.Session, loc models.Locator, rootID, cursor string) (Response, error)
	SearchNotes(ctx context.Context, session models.Session, keyword string, page int) (Response, error)
}

// Transport sends one HTTP request and returns the status code and body.
type Transport interface {
	Send(ctx context.Context, method, url string, headers, cookies map[string]string, body []byte) (int, []byte, error)
}

// SignedRequest is the header and cookie set a request must carry.
type SignedRequest struct {
	Headers map[string]string
	Cookies map[string]string
}

// Signer produces request headers and cookies for a session. uri is the path plus query
// string; payload is the JSON body of POST requests and nil otherwise.
type Signer interface {
	Sign(ctx context.Context, cookie, uri string, payload []byte) (SignedRequest, error)
}
