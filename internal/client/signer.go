package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnusableSession means the session value carries no cookie pair, so no request can be
// signed with it. Retrying with the same session cannot succeed.
var ErrUnusableSession = errors.New("session cookie holds no name=value pair")

// ParseCookieString splits a raw "k=v; k2=v2" cookie header into a map.
// Malformed pairs are dropped.
func ParseCookieString(raw string) map[string]string {
	cookies := make(map[string]string)
	for _, part := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		cookies[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return cookies
}

// CookieSigner sets the web client's common headers and fresh trace ids. It does not
// compute the x-s signature; pair it with HTTPSigner when the platform requires one.
type CookieSigner struct {
	webBaseURL string
	userAgent  string
	now        func() time.Time
}

func NewCookieSigner(webBaseURL, userAgent string) *CookieSigner {
	return &CookieSigner{
		webBaseURL: strings.TrimRight(webBaseURL, "/"),
		userAgent:  userAgent,
		now:        time.Now,
	}
}

func (s *CookieSigner) Sign(ctx context.Context, cookie, uri string, payload []byte) (SignedRequest, error) {
	cookies := ParseCookieString(cookie)
	if len(cookies) == 0 {
		return SignedRequest{}, fmt.Errorf("sign %s: %w", uri, ErrUnusableSession)
	}

	headers := map[string]string{
		"accept":          "application/json, text/plain, */*",
		"origin":          s.webBaseURL,
		"referer":         s.webBaseURL + "/",
		"sec-fetch-dest":  "empty",
		"sec-fetch-mode":  "cors",
		"sec-fetch-site":  "same-site",
		"x-b3-traceid":    traceID(16),
		"x-xray-traceid":  traceID(32),
		"x-t":             strconv.FormatInt(s.now().UnixMilli(), 10),
		"accept-language": "zh-CN,zh;q=0.9,en;q=0.8",
	}
	if payload != nil {
		headers["content-type"] = "application/json;charset=UTF-8"
	}
	if s.userAgent != "" {
		headers["user-agent"] = s.userAgent
	}

	return SignedRequest{Headers: headers, Cookies: cookies}, nil
}

func traceID(n int) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:n]
}

// HTTPSigner asks an external signing service for the signature headers and merges them over
// the CookieSigner defaults.
type HTTPSigner struct {
	endpoint string
	base     *CookieSigner
	client   *http.Client
}

func NewHTTPSigner(endpoint string, base *CookieSigner, timeout time.Duration) *HTTPSigner {
	return &HTTPSigner{
		endpoint: endpoint,
		base:     base,
		client:   &http.Client{Timeout: timeout},
	}
}

type signRequest struct {
	URI     string          `json:"uri"`
	Payload json.RawMessage `json:"payload,omitempty"`
	A1      string          `json:"a1"`
	Cookie  string          `json:"cookie"`
}

type signResponse struct {
	Headers map[string]string `json:"headers"`
	Cookies map[string]string `json:"cookies"`
}

func (s *HTTPSigner) Sign(ctx context.Context, cookie, uri string, payload []byte) (SignedRequest, error) {
	signed, err := s.base.Sign(ctx, cookie, uri, payload)
	if err != nil {
		return SignedRequest{}, err
	}

	reqBody, err := json.Marshal(signRequest{
		URI:     uri,
		Payload: payload,
		A1:      signed.Cookies["a1"],
		Cookie:  cookie,
	})
	if err != nil {
		return SignedRequest{}, fmt.Errorf("encode sign request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return SignedRequest{}, fmt.Errorf("creating sign request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return SignedRequest{}, fmt.Errorf("call signer: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return SignedRequest{}, fmt.Errorf("read signer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return SignedRequest{}, fmt.Errorf("signer returned status %d", resp.StatusCode)
	}

	var out signResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return SignedRequest{}, fmt.Errorf("decode signer response: %w", err)
	}

	for k, v := range out.Headers {
		signed.Headers[strings.ToLower(k)] = v
	}
	for k, v := range out.Cookies {
		signed.Cookies[k] = v
	}

	return signed, nil
}
