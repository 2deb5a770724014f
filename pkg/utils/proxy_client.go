// pkg/utils/proxy_client.go
package utils

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	utls "github.com/refraction-networking/utls"
	retry "github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	proxy "golang.org/x/net/proxy"
)

type BrowserType int

const (
	Chrome BrowserType = iota
	Firefox
	Safari
	Edge
)

var clientHelloIDs = []utls.ClientHelloID{
	utls.HelloChrome_Auto,
	utls.HelloFirefox_Auto,
	utls.HelloSafari_Auto,
	utls.HelloEdge_Auto,
}

var acceptLanguages = []string{
	"zh-CN,zh;q=0.9,en;q=0.8",
	"zh-CN,zh;q=0.9,en;q=0.8,en-GB;q=0.7,en-US;q=0.6",
	"zh-CN,zh-TW;q=0.9,zh;q=0.8,en-US;q=0.7,en;q=0.6",
}

var userAgents = map[BrowserType][]string{
	Chrome: {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36",
	},
	Firefox: {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:139.0) Gecko/20100101 Firefox/139.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:138.0) Gecko/20100101 Firefox/138.0",
	},
	Safari: {
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	},
	Edge: {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36 Edg/137.0.0.0",
	},
}

func getCorrespondingBrowserType(clientHelloID utls.ClientHelloID) BrowserType {
	switch clientHelloID {
	case utls.HelloFirefox_Auto:
		return Firefox
	case utls.HelloSafari_Auto:
		return Safari
	case utls.HelloEdge_Auto:
		return Edge
	default:
		return Chrome
	}
}

func randomItem[T any](items []T) T {
	return items[rand.Intn(len(items))]
}

// fillBrowserHeaders only sets headers the caller left empty. Signed requests carry their
// own header set and must reach the platform unchanged.
func fillBrowserHeaders(req *http.Request, browserType BrowserType, userAgent string) {
	if req.Header.Get("User-Agent") == "" {
		if userAgent != "" {
			req.Header.Set("User-Agent", userAgent)
		} else {
			req.Header.Set("User-Agent", randomItem(userAgents[browserType]))
		}
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", randomItem(acceptLanguages))
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json, text/plain, */*")
	}
}

type ProxyRotator struct {
	parsedURLs []*url.URL
	currentIdx uint32
}

func NewProxyRotator(proxyURLs []string) (*ProxyRotator, error) {
	rotator := &ProxyRotator{}

	for _, rawURL := range proxyURLs {
		if strings.TrimSpace(rawURL) == "" {
			continue
		}
		parsedURL, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse proxy URL %s: %w", MaskProxyURL(rawURL), err)
		}
		switch parsedURL.Scheme {
		case "http", "https", "socks5":
		default:
			return nil, fmt.Errorf("unsupported proxy scheme %q in %s", parsedURL.Scheme, MaskProxyURL(rawURL))
		}
		rotator.parsedURLs = append(rotator.parsedURLs, parsedURL)
	}

	return rotator, nil
}

// Len is the number of configured proxies. Zero means direct connections.
func (r *ProxyRotator) Len() int {
	return len(r.parsedURLs)
}

// NextIndex returns the next proxy index in round-robin order.
func (r *ProxyRotator) NextIndex() int {
	if len(r.parsedURLs) == 0 {
		return 0
	}
	return int(atomic.AddUint32(&r.currentIdx, 1) % uint32(len(r.parsedURLs)))
}

func (r *ProxyRotator) At(idx int) *url.URL {
	if len(r.parsedURLs) == 0 {
		return nil
	}
	return r.parsedURLs[idx%len(r.parsedURLs)]
}

type FingerprintingDialer struct {
	proxyURL      *url.URL
	clientHelloID utls.ClientHelloID
	browserType   BrowserType
	dialer        *net.Dialer
}

func NewFingerprintingDialer(proxyURL *url.URL) *FingerprintingDialer {
	helloID := clientHelloIDs[rand.Intn(len(clientHelloIDs))]

	return &FingerprintingDialer{
		proxyURL:      proxyURL,
		clientHelloID: helloID,
		browserType:   getCorrespondingBrowserType(helloID),
		dialer: &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		},
	}
}

func (d *FingerprintingDialer) DialTLSContext(ctx context.Context, network, addr string) (net.Conn, error) {
	var conn net.Conn
	var err error

	if d.proxyURL == nil {
		conn, err = d.dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, fmt.Errorf("direct dial: %w", err)
		}
	} else {
		conn, err = d.dialThroughProxyWithContext(ctx, network, addr)
		if err != nil {
			return nil, fmt.Errorf("proxy dial: %w", err)
		}
	}

	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}

	uconn := utls.UClient(conn, &utls.Config{ServerName: host}, d.clientHelloID)
	if err := uconn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("uTLS handshake: %w", err)
	}

	return uconn, nil
}

func (d *FingerprintingDialer) dialThroughProxyWithContext(ctx context.Context, network, addr string) (net.Conn, error) {
	switch d.proxyURL.Scheme {
	case "http", "https":
		conn, err := d.dialer.DialContext(ctx, "tcp", d.proxyURL.Host)
		if err != nil {
			return nil, fmt.Errorf("dial HTTP proxy: %w", err)
		}

		req := &http.Request{
			Method: http.MethodConnect,
			URL:    &url.URL{Opaque: addr},
			Host:   addr,
			Header: make(http.Header),
		}
		if d.proxyURL.User != nil {
			if password, ok := d.proxyURL.User.Password(); ok {
				req.SetBasicAuth(d.proxyURL.User.Username(), password)
			}
		}

		if deadline, ok := ctx.Deadline(); ok {
			_ = conn.SetDeadline(deadline)
		}
		if err := req.Write(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("write CONNECT: %w", err)
		}
		resp, err := http.ReadResponse(bufio.NewReader(conn), req)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("read CONNECT response: %w", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			conn.Close()
			return nil, fmt.Errorf("proxy CONNECT returned %s", resp.Status)
		}
		_ = conn.SetDeadline(time.Time{})

		return conn, nil

	case "socks5":
		auth := &proxy.Auth{}
		if d.proxyURL.User != nil {
			auth.User = d.proxyURL.User.Username()
			if password, ok := d.proxyURL.User.Password(); ok {
				auth.Password = password
			}
		}

		dialer, err := proxy.SOCKS5("tcp", d.proxyURL.Host, auth, d.dialer)
		if err != nil {
			return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
		}

		if cd, ok := dialer.(proxy.ContextDialer); ok {
			conn, err := cd.DialContext(ctx, network, addr)
			if err != nil {
				return nil, fmt.Errorf("dial via SOCKS5 proxy: %w", err)
			}
			return conn, nil
		}

		conn, err := dialer.Dial(network, addr)
		if err != nil {
			return nil, fmt.Errorf("dial via SOCKS5 proxy: %w", err)
		}
		return conn, nil

	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", d.proxyURL.Scheme)
	}
}

type route struct {
	transport   *http.Transport
	browserType BrowserType
}

// TLSFingerprintingTransport keeps one http.Transport per proxy so concurrent requests
// never share a mutable dialer.
type TLSFingerprintingTransport struct {
	proxyRotator *ProxyRotator
	routes       []route
	userAgent    string
}

func newRoute(proxyURL *url.URL) route {
	dialer := NewFingerprintingDialer(proxyURL)
	transport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     false,
		DialTLSContext:        dialer.DialTLSContext,
	}
	if proxyURL != nil && proxyURL.Scheme != "socks5" {
		// Plain-http targets go through the proxy the standard way; https uses the dialer above.
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return route{transport: transport, browserType: dialer.browserType}
}

func NewTLSFingerprintingTransport(rotator *ProxyRotator, userAgent string) *TLSFingerprintingTransport {
	t := &TLSFingerprintingTransport{proxyRotator: rotator, userAgent: userAgent}
	if rotator.Len() == 0 {
		t.routes = []route{newRoute(nil)}
		return t
	}
	for i := 0; i < rotator.Len(); i++ {
		t.routes = append(t.routes, newRoute(rotator.At(i)))
	}
	return t
}

func (t *TLSFingerprintingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := t.routes[t.proxyRotator.NextIndex()%len(t.routes)]

	reqCopy := req.Clone(req.Context())
	fillBrowserHeaders(reqCopy, r.browserType, t.userAgent)

	return r.transport.RoundTrip(reqCopy)
}

// MaskProxyURL hides the password of a proxy URL for logging.
func MaskProxyURL(proxyURL string) string {
	if !strings.Contains(proxyURL, "@") {
		return proxyURL
	}

	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		parts := strings.Split(proxyURL, "@")
		if len(parts) > 1 {
			auth := strings.Split(parts[0], "://")
			protocol := ""
			if len(auth) > 1 {
				protocol = auth[0] + "://"
				auth[0] = auth[1]
			}

			userPass := strings.Split(auth[0], ":")
			if len(userPass) > 1 {
				return protocol + userPass[0] + ":****@" + parts[1]
			}
		}
		return "[masked]"
	}

	if parsedURL.User != nil {
		username := parsedURL.User.Username()
		return strings.Replace(proxyURL, parsedURL.User.String(), username+":****", 1)
	}

	return proxyURL
}

// ClientOptions configures a RetryableClient.
type ClientOptions struct {
	ProxyURLs  []string
	MaxRetries int
	UserAgent  string
	Timeout    time.Duration
	// Backoff is the base of the exponential retry delay.
	Backoff time.Duration
	Logger  *zap.Logger
}

type RetryableClient struct {
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func NewRetryableClient(opts ClientOptions) (*RetryableClient, error) {
	rotator, err := NewProxyRotator(opts.ProxyURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy rotator: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	for i := 0; i < rotator.Len(); i++ {
		logger.Info("proxy configured", zap.Int("index", i+1), zap.String("proxy", MaskProxyURL(rotator.At(i).String())))
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &RetryableClient{
		client: &http.Client{
			Transport: NewTLSFingerprintingTransport(rotator, opts.UserAgent),
			Timeout:   timeout,
		},
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
	}, nil
}

// Send performs one logical request, retrying transport failures, 429 and 5xx responses.
// A response that is still failing after the last attempt is returned with its status
// code and a nil error so the caller can classify it.
func (c *RetryableClient) Send(ctx context.Context, method, rawURL string, headers, cookies map[string]string, body []byte) (int, []byte, error) {
	var (
		status    int
		bodyBytes []byte
		attempt   int
	)

	backoff := retry.WithMaxRetries(uint64(c.maxRetries-1), retry.NewExponential(c.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		status, bodyBytes = 0, nil

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		// Let net/http negotiate and undo compression itself.
		req.Header.Del("Accept-Encoding")
		for name, value := range cookies {
			req.AddCookie(&http.Cookie{Name: name, Value: value})
		}

		resp, err := c.client.Do(req)
		if err != nil {
			c.logger.Warn("request error", zap.Int("attempt", attempt), zap.Error(err))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return retry.RetryableError(fmt.Errorf("request failed: %w", err))
		}

		data, err := readBody(resp)
		if err != nil {
			c.logger.Warn("error reading response body", zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(fmt.Errorf("reading response body: %w", err))
		}

		status, bodyBytes = resp.StatusCode, data

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			c.logger.Warn("retryable status", zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt))
			return retry.RetryableError(fmt.Errorf("server error: status %d", resp.StatusCode))
		}

		return nil
	})

	if err != nil {
		if status != 0 && ctx.Err() == nil {
			return status, bodyBytes, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, nil, err
		}
		return 0, nil, fmt.Errorf("all %d attempts failed: %w", attempt, err)
	}

	return status, bodyBytes, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress gzip response: %w", err)
		}
		defer gr.Close()
		reader = gr
	}

	bodyBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if len(bodyBytes) > 1 && bodyBytes[0] == 0x1f && bodyBytes[1] == 0x8b {
		gr, err := gzip.NewReader(bytes.NewReader(bodyBytes))
		if err == nil {
			uncompressed, err := io.ReadAll(gr)
			gr.Close()
			if err == nil {
				bodyBytes = uncompressed
			}
		}
	}

	return bodyBytes, nil
}
