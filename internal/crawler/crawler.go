package crawler

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"ai-inclusion-checker/internal/models"
)

// Fetch error codes carried in models.FetchedPage.Error.
const (
	CodeDNSFail           = "DNS_FAIL"
	CodeConnectionRefused = "CONNECTION_REFUSED"
	CodeTLSError          = "TLS_ERROR"
	CodeNotHTML           = "NOT_HTML"
	CodeEmptyBody         = "EMPTY_BODY"
	CodeTimeout           = "TIMEOUT"
	CodeFetchError        = "FETCH_ERROR"
	CodeInvalidURL        = "INVALID_URL"
	CodeRobotsBlocked     = "ROBOTS_BLOCKED"
	CodeUnreachable       = "UNREACHABLE"
)

const DefaultUserAgent = "Mozilla/5.0 (compatible; AIInclusionChecker/1.0; +https://aiinclusionchecker.com/bot)"

// RobotsAgent is the token matched against robots.txt user-agent lines.
const RobotsAgent = "aiinclusioncrawler"

// HTTPCode returns the error code for an HTTP status >= 400.
func HTTPCode(status int) string {
	return fmt.Sprintf("HTTP_%d", status)
}

type Options struct {
	Timeout       time.Duration
	RobotsTimeout time.Duration
	DialTimeout   time.Duration
	MaxRedirects  int
	SizeCap       int64
	UserAgent     string
}

func (o *Options) defaults() {
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.RobotsTimeout <= 0 {
		o.RobotsTimeout = 3 * time.Second
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = o.Timeout
	}
	if o.MaxRedirects <= 0 {
		o.MaxRedirects = 5
	}
	if o.SizeCap <= 0 {
		o.SizeCap = 5 * 1024 * 1024
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
}

type HTTPClient struct {
	client        *http.Client
	robotsTimeout time.Duration
	sizeCap       int64
	userAgent     string
}

func NewHTTPClient(opts Options) *HTTPClient {
	opts.defaults()
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: opts.Timeout,
	}
	maxRedirects := opts.MaxRedirects
	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				return nil
			},
		},
		robotsTimeout: opts.RobotsTimeout,
		sizeCap:       opts.SizeCap,
		userAgent:     opts.UserAgent,
	}
}

// Fetch retrieves one page. Failures are reported through the Error code of
// the returned page, never as a Go error.
func (h *HTTPClient) Fetch(ctx context.Context, rawURL string) models.FetchedPage {
	page := models.FetchedPage{URL: rawURL}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		page.Error = CodeInvalidURL
		return page
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		page.Error = CodeInvalidURL
		return page
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		page.Error = ClassifyError(err)
		return page
	}
	defer resp.Body.Close()

	page.Status = resp.StatusCode
	if resp.StatusCode >= 400 {
		page.Error = HTTPCode(resp.StatusCode)
		return page
	}

	contentType := resp.Header.Get("Content-Type")
	page.ContentType = contentType
	mediaType, _, _ := mime.ParseMediaType(contentType)
	// still allow if empty (some servers omit), otherwise reject non-html
	if mediaType != "" && !strings.Contains(mediaType, "html") {
		page.Error = CodeNotHTML
		return page
	}

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			page.Error = CodeFetchError
			return page
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(io.LimitReader(body, h.sizeCap))
	if err != nil {
		page.Error = ClassifyError(err)
		return page
	}
	if strings.TrimSpace(string(data)) == "" {
		page.Error = CodeEmptyBody
		return page
	}
	page.HTML = string(data)
	return page
}

// ClassifyError maps a transport error to a fetch error code.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return CodeTimeout
		}
		return CodeDNSFail
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return CodeConnectionRefused
	}
	var (
		certErr      *tls.CertificateVerificationError
		unknownAuth  x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidCert  x509.CertificateInvalidError
		recordHeader tls.RecordHeaderError
	)
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidCert) || errors.As(err, &recordHeader) {
		return CodeTLSError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimeout
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "certificate") || strings.Contains(msg, "tls:") {
		return CodeTLSError
	}
	return CodeFetchError
}

// IsFatal reports whether a homepage error code means the host cannot be
// reached at all, so no scheme fallback is attempted.
func IsFatal(code string) bool {
	return code == CodeDNSFail || code == CodeConnectionRefused
}

// IsNoContent reports whether the server delivered a response that carries
// nothing to parse. HTTP error statuses are not included: they count as an
// unreachable site.
func IsNoContent(code string) bool {
	return code == CodeNotHTML || code == CodeEmptyBody
}
