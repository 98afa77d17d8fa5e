package article

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/go-shiori/go-readability"
)

// ErrUnreadable is returned when a page yields no usable text
var ErrUnreadable = errors.New("no readable text on page")

// ErrForbiddenAddress is returned when a URL resolves to a loopback, private or link-local address
var ErrForbiddenAddress = errors.New("address not allowed")

const (
	maxBodySize     = 10 * 1024 * 1024 // 10 MB limit for HTML content
	defaultMaxRunes = 12000
)

// Fetcher downloads a web page and returns its main text
type Fetcher struct {
	client   *http.Client
	maxRunes int
}

// NewFetcher creates a fetcher. A nil client gets a 30 second timeout and
// refuses to connect to non-public addresses. maxRunes <= 0 uses the default cap.
func NewFetcher(client *http.Client, maxRunes int) *Fetcher {
	if client == nil {
		client = PublicClient(30 * time.Second)
	}
	if maxRunes <= 0 {
		maxRunes = defaultMaxRunes
	}
	return &Fetcher{client: client, maxRunes: maxRunes}
}

// Fetch retrieves rawURL and extracts its readable text
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsedURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" || parsedURL.Host == "" {
		return "", fmt.Errorf("unsupported url %q: only http and https are allowed", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	// Mimic a real browser, some news sites block default clients
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,vi;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("got status code %d", resp.StatusCode)
	}
	if resp.ContentLength > maxBodySize {
		return "", fmt.Errorf("content length %d exceeds limit of %d bytes", resp.ContentLength, maxBodySize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxBodySize {
		return "", fmt.Errorf("response body exceeded maximum size limit of %d bytes", maxBodySize)
	}

	text := ""
	if doc, err := readability.FromReader(bytes.NewReader(body), parsedURL); err == nil {
		text = collapseSpace(doc.TextContent)
	}
	if text == "" {
		text = StripHTML(string(body))
	}
	if text == "" {
		return "", ErrUnreadable
	}
	return truncateRunes(text, f.maxRunes), nil
}

// PublicClient returns an HTTP client that only connects to public addresses.
// The check runs on the resolved address of every connection, redirects included.
func PublicClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   checkPublicAddress,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

func checkPublicAddress(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, address)
	}
	ip := net.ParseIP(host)
	if ip == nil || !isPublicIP(ip) {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, host)
	}
	return nil
}

func isPublicIP(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast())
}

var (
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// StripHTML drops scripts, styles and tags and collapses whitespace
func StripHTML(html string) string {
	s := scriptRe.ReplaceAllString(html, "")
	s = styleRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, " ")
	return collapseSpace(s)
}

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
