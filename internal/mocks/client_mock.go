package mocks

import (
	"context"

	"xhs-monitor/internal/client"
	"xhs-monitor/internal/models"
)

type MockXhsClient struct {
	FetchNoteFeedFunc       func(ctx context.Context, session models.Session, loc models.Locator) (client.Response, error)
	FetchCommentPageFunc    func(ctx context.Context, session models.Session, loc models.Locator, cursor string) (client.Response, error)
	FetchSubCommentPageFunc func(ctx context.Context, session models.Session, loc models.Locator, rootID, cursor string) (client.Response, error)
	SearchNotesFunc         func(ctx context.Context, session models.Session, keyword string, page int) (client.Response, error)
}

func (m *MockXhsClient) FetchNoteFeed(ctx context.Context, session models.Session, loc models.Locator) (client.Response, error) {
	return m.FetchNoteFeedFunc(ctx, session, loc)
}

func (m *MockXhsClient) FetchCommentPage(ctx context.Context, session models.Session, loc models.Locator, cursor string) (client.Response, error) {
	return m.FetchCommentPageFunc(ctx, session, loc, cursor)
}

func (m *MockXhsClient) FetchSubCommentPage(ctx context.Context, session models.Session, loc models.Locator, rootID, cursor string) (client.Response, error) {
	return m.FetchSubCommentPageFunc(ctx, session, loc, rootID, cursor)
}

func (m *MockXhsClient) SearchNotes(ctx context.Context, session models.Session, keyword string, page int) (client.Response, error) {
	return m.SearchNotesFunc(ctx, session, keyword, page)
}

type MockTransport struct {
	SendFunc func(ctx context.Context, method, url string, headers, cookies map[string]string, body []byte) (int, []byte, error)
}

func (m *MockTransport) Send(ctx context.Context, method, url string, headers, cookies map[string]string, body []byte) (int, []byte, error) {
	return m.SendFunc(ctx, method, url, headers, cookies, body)
}

type MockSigner struct {
	SignFunc func(ctx context.Context, cookie, uri string, payload []byte) (client.SignedRequest, error)
}

func (m *MockSigner) Sign(ctx context.Context, cookie, uri string, payload []byte) (client.SignedRequest, error) {
	if m.SignFunc == nil {
		return client.SignedRequest{Headers: map[string]string{}, Cookies: client.ParseCookieString(cookie)}, nil
	}
	return m.SignFunc(ctx, cookie, uri, payload)
}
