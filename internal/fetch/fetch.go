// Package fetch downloads job postings from Chinese job boards and reduces
// them to plain text for extraction. Pages that render client-side are
// retried in headless Chrome.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent mimics a desktop browser; boards reject obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 5 << 20

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Posting is the text of a job posting page.
type Posting struct {
	URL      string   `json:"url"`
	Platform Platform `json:"platform"`
	Text     string   `json:"text"`
	Rendered bool     `json:"rendered"`
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout        time.Duration
	BrowserTimeout time.Duration
	UserAgent      string
	Headers        map[string]string
}

// DefaultOptions returns the defaults used by NewFetcher.
func DefaultOptions() *Options {
	return &Options{
		Timeout:        DefaultTimeout,
		BrowserTimeout: DefaultBrowserTimeout,
		UserAgent:      DefaultUserAgent,
		Headers:        map[string]string{"Accept-Language": "zh-CN,zh;q=0.9"},
	}
}

// Fetcher retrieves job postings.
type Fetcher struct {
	opts   *Options
	render RenderFunc
}

// NewFetcher creates a fetcher. A nil render function disables the
// headless browser fallback.
func NewFetcher(opts *Options, render RenderFunc) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Fetcher{opts: opts, render: render}
}

// JobPosting fetches a posting and returns its main text. The headless
// browser is used when forced, when the board renders client-side, or when
// the plain fetch yields too little text.
func (f *Fetcher) JobPosting(ctx context.Context, urlStr string, forceBrowser bool) (*Posting, error) {
	platform := DetectPlatform(urlStr)
	posting := &Posting{URL: urlStr, Platform: platform}

	useBrowser := f.render != nil && (forceBrowser || platform.RendersClientSide())
	if !useBrowser {
		result, err := URL(ctx, urlStr, f.opts)
		if err != nil {
			return nil, err
		}
		text, err := ExtractMainText(result.HTML, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
		if err != nil {
			return nil, &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
		}
		if !ShouldUseBrowser(text) || f.render == nil {
			posting.Text = text
			return posting, nil
		}
		log.Printf("[fetch] only %d chars from %s, retrying in browser", len([]rune(text)), urlStr)
	}

	if _, err := validateURL(urlStr); err != nil {
		return nil, err
	}
	html, err := f.render(ctx, urlStr, f.opts.BrowserTimeout)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "browser rendering failed", Cause: err}
	}
	text, err := ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
	}
	posting.Text = text
	posting.Rendered = true
	return posting, nil
}

func validateURL(urlStr string) (*url.URL, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}
	return parsed, nil
}

// URL retrieves HTML content from a URL. On a non-200 status the result is
// returned together with the error.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if _, err := validateURL(urlStr); err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: opts.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return result, &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return result, nil
}

// ExtractMainText parses HTML, strips page chrome and noiseSelectors, and
// returns the text of the first matching content selector (or the body).
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, iframe, .ad, .ads, .sidebar, .popup").Remove()
	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	var main *goquery.Selection
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	// Block elements become line breaks so list items stay separate.
	main.Find("br").ReplaceWithHtml("\n")
	main.Find("p, li, div, h1, h2, h3, h4, dd, dt").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return cleanWhitespace(main.Text()), nil
}

// JobPostingSelectors returns generic selectors for unrecognised boards.
func JobPostingSelectors() []string {
	return []string{
		".job-description",
		".job-detail",
		"#job-description",
		".job-content",
		".position-detail",
		"main",
		"article",
		".content",
		"#content",
	}
}

// cleanWhitespace trims every line and drops empty ones.
func cleanWhitespace(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
