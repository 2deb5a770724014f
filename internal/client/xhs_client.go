// internal/client/xhs_client.go
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"xhs-monitor/internal/config"
	"xhs-monitor/internal/models"
	"xhs-monitor/internal/observability"
)

const (
	EndpointNoteFeed    = "/api/sns/web/v1/feed"
	EndpointCommentPage = "/api/sns/web/v2/comment/page"
	EndpointReplyPage   = "/api/sns/web/v2/comment/sub/page"
	EndpointSearchNotes = "/api/sns/web/v1/search/notes"

	// SearchPageSize is the number of posts one search page asks for.
	SearchPageSize = 20

	imageFormats = "jpg,webp,avif"
	replyPageNum = "10"
)

var errServerStatus = errors.New("platform server error")

type XhsClient struct {
	transport Transport
	signer    Signer
	baseURL   string
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	metrics   *observability.Collector
	logger    *zap.Logger
}

func NewXhsClient(cfg *config.Config, transport Transport, signer Signer, metrics *observability.Collector, logger *zap.Logger) *XhsClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	rps := cfg.PlatformRPS
	if rps <= 0 {
		rps = 2
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "xhs-platform",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &XhsClient{
		transport: transport,
		signer:    signer,
		baseURL:   cfg.APIBaseURL,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		breaker:   breaker,
		metrics:   metrics,
		logger:    logger,
	}
}

type feedRequest struct {
	SourceNoteID string            `json:"source_note_id"`
	XsecToken    string            `json:"xsec_token"`
	XsecSource   string            `json:"xsec_source"`
	ImageFormats []string          `json:"image_formats"`
	Extra        map[string]string `json:"extra"`
}

func (c *XhsClient) FetchNoteFeed(ctx context.Context, session models.Session, loc models.Locator) (Response, error) {
	body, err := json.Marshal(feedRequest{
		SourceNoteID: loc.NoteID,
		XsecToken:    loc.Token,
		XsecSource:   loc.Source,
		ImageFormats: []string{"jpg", "webp", "avif"},
		Extra:        map[string]string{"need_body_topic": "1"},
	})
	if err != nil {
		return Response{}, fmt.Errorf("encode feed request: %w", err)
	}

	return c.do(ctx, "note_feed", session, http.MethodPost, EndpointNoteFeed, body)
}

type searchFilter struct {
	Tags []string `json:"tags"`
	Type string   `json:"type"`
}

type searchRequest struct {
	Keyword      string         `json:"keyword"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
	SearchID     string         `json:"search_id"`
	Sort         string         `json:"sort"`
	NoteType     int            `json:"note_type"`
	ExtFlags     []string       `json:"ext_flags"`
	Filters      []searchFilter `json:"filters"`
	Geo          string         `json:"geo"`
	ImageFormats []string       `json:"image_formats"`
}

// anyFilter is the platform's "no restriction" tag.
const anyFilter = "不限"

// SearchNotes requests one page of posts matching keyword, in the web client's default
// "general" ordering with no type, time or distance filter. page starts at 1.
func (c *XhsClient) SearchNotes(ctx context.Context, session models.Session, keyword string, page int) (Response, error) {
	body, err := json.Marshal(searchRequest{
		Keyword:  keyword,
		Page:     page,
		PageSize: SearchPageSize,
		SearchID: traceID(21),
		Sort:     "general",
		NoteType: 0,
		ExtFlags: []string{},
		Filters: []searchFilter{
			{Tags: []string{"general"}, Type: "sort_type"},
			{Tags: []string{anyFilter}, Type: "filter_note_type"},
			{Tags: []string{anyFilter}, Type: "filter_note_time"},
			{Tags: []string{anyFilter}, Type: "filter_note_range"},
			{Tags: []string{anyFilter}, Type: "filter_pos_distance"},
		},
		ImageFormats: []string{"jpg", "webp", "avif"},
	})
	if err != nil {
		return Response{}, fmt.Errorf("encode search request: %w", err)
	}

	return c.do(ctx, "search_notes", session, http.MethodPost, EndpointSearchNotes, body)
}

func (c *XhsClient) FetchCommentPage(ctx context.Context, session models.Session, loc models.Locator, cursor string) (Response, error) {
	params := url.Values{}
	params.Set("note_id", loc.NoteID)
	params.Set("cursor", cursor)
	params.Set("top_comment_id", "")
	params.Set("image_formats", imageFormats)
	params.Set("xsec_token", loc.Token)

	return c.do(ctx, "comment_page", session, http.MethodGet, EndpointCommentPage+"?"+params.Encode(), nil)
}

func (c *XhsClient) FetchSubCommentPage(ctx context.Context, session models.Session, loc models.Locator, rootID, cursor string) (Response, error) {
	params := url.Values{}
	params.Set("note_id", loc.NoteID)
	params.Set("root_comment_id", rootID)
	params.Set("num", replyPageNum)
	params.Set("cursor", cursor)
	params.Set("image_formats", imageFormats)
	params.Set("top_comment_id", "")
	params.Set("xsec_token", loc.Token)

	return c.do(ctx, "reply_page", session, http.MethodGet, EndpointReplyPage+"?"+params.Encode(), nil)
}

func (c *XhsClient) do(ctx context.Context, endpoint string, session models.Session, method, uri string, body []byte) (Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("rate limiter wait: %w", err)
	}

	signed, err := c.signer.Sign(ctx, session.Value, uri, body)
	if err != nil {
		c.metrics.RecordPlatformRequest(endpoint, "sign_error", 0)
		return Response{}, fmt.Errorf("sign %s: %w", endpoint, err)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		status, data, err := c.transport.Send(ctx, method, c.baseURL+uri, signed.Headers, signed.Cookies, body)
		if err != nil {
			return nil, err
		}
		resp := Response{StatusCode: status, Body: data}
		if status >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.RecordPlatformRequest(endpoint, "circuit_open", elapsed)
		return Response{}, fmt.Errorf("%s: %w", endpoint, err)
	case errors.Is(err, errServerStatus):
		resp := result.(Response)
		c.metrics.RecordPlatformRequest(endpoint, "server_error", elapsed)
		c.logger.Warn("platform server error",
			zap.String("endpoint", endpoint),
			zap.Int64("session_id", session.ID),
			zap.Int("status", resp.StatusCode))
		return resp, nil
	case err != nil:
		c.metrics.RecordPlatformRequest(endpoint, "error", elapsed)
		return Response{}, fmt.Errorf("%s request: %w", endpoint, err)
	}

	resp := result.(Response)
	c.metrics.RecordPlatformRequest(endpoint, "ok", elapsed)
	c.logger.Debug("platform request",
		zap.String("endpoint", endpoint),
		zap.Int64("session_id", session.ID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))

	return resp, nil
}
