package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhs-monitor/internal/client"
)

func TestParseCookieString(t *testing.T) {
	got := client.ParseCookieString("a1=abc; web_session=040069;  broken; =x; unread={%22ub%22:1}")

	assert.Equal(t, map[string]string{
		"a1":          "abc",
		"web_session": "040069",
		"unread":      "{%22ub%22:1}",
	}, got)
}

func TestCookieSigner(t *testing.T) {
	s := client.NewCookieSigner("https://www.xiaohongshu.com/", "ua-test")

	signed, err := s.Sign(context.Background(), "a1=abc; web_session=xyz", "/api/sns/web/v1/feed", []byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, "https://www.xiaohongshu.com", signed.Headers["origin"])
	assert.Equal(t, "https://www.xiaohongshu.com/", signed.Headers["referer"])
	assert.Equal(t, "ua-test", signed.Headers["user-agent"])
	assert.Equal(t, "application/json;charset=UTF-8", signed.Headers["content-type"])
	assert.Len(t, signed.Headers["x-b3-traceid"], 16)
	assert.Len(t, signed.Headers["x-xray-traceid"], 32)
	assert.NotEmpty(t, signed.Headers["x-t"])
	assert.Equal(t, "xyz", signed.Cookies["web_session"])

	_, err = s.Sign(context.Background(), "   ", "/x", nil)
	assert.ErrorIs(t, err, client.ErrUnusableSession)

	_, err = s.Sign(context.Background(), "garbage-no-equals", "/x", nil)
	assert.ErrorIs(t, err, client.ErrUnusableSession)
}

func TestHTTPSignerOutageIsNotUnusableSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := client.NewHTTPSigner(srv.URL, client.NewCookieSigner("https://www.xiaohongshu.com", ""), time.Second)

	_, err := s.Sign(context.Background(), "a1=abc", "/x", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, client.ErrUnusableSession)

	_, err = s.Sign(context.Background(), "garbage-no-equals", "/x", nil)
	assert.ErrorIs(t, err, client.ErrUnusableSession)
}

func TestHTTPSignerMergesRemoteHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URI string `json:"uri"`
			A1  string `json:"a1"`
		}
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			assert.Equal(t, "/api/sns/web/v2/comment/page?note_id=n1", req.URI)
			assert.Equal(t, "abc", req.A1)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"headers": map[string]string{"X-S": "XYW_sig", "X-T": "1749555763020"},
		})
	}))
	defer srv.Close()

	base := client.NewCookieSigner("https://www.xiaohongshu.com", "")
	s := client.NewHTTPSigner(srv.URL, base, time.Second)

	signed, err := s.Sign(context.Background(), "a1=abc", "/api/sns/web/v2/comment/page?note_id=n1", nil)
	require.NoError(t, err)

	assert.Equal(t, "XYW_sig", signed.Headers["x-s"])
	assert.Equal(t, "1749555763020", signed.Headers["x-t"])
	assert.Equal(t, "abc", signed.Cookies["a1"])
}

func TestHTTPSignerFailsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := client.NewHTTPSigner(srv.URL, client.NewCookieSigner("https://www.xiaohongshu.com", ""), time.Second)
	_, err := s.Sign(context.Background(), "a1=abc", "/x", nil)
	assert.Error(t, err)
}
