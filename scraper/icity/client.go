package icity

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"icity-exporter/utils"
)

const (
	welcomePath = "/welcome"
	signInPath  = "/users/sign_in"

	userAgent      = "Mozilla/5.0"
	acceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
)

// Client is an authenticated HTTP session against the iCity site. It owns
// the cookie jar, the per-request timeout, and the login flow; the scrape
// core only sees its FetchPage method.
type Client struct {
	base   string
	http   *http.Client
	retry  *utils.RetryConfig
	logger *utils.Logger
}

// NewClient creates a Client for the given site base URL.
func NewClient(base string, timeout time.Duration, loginRetries int, logger *utils.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("icity: cookie jar: %w", err)
	}

	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		retry: &utils.RetryConfig{
			MaxAttempts: loginRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		logger: logger,
	}, nil
}

// Login signs in with the Rails form flow (CSRF token from the welcome
// page, then the sign-in POST) and probes the target user's profile to
// confirm the session is usable. Transport errors are retried with
// back-off; rejected credentials are terminal.
func (c *Client) Login(username, password, targetUser string) error {
	return c.retry.Do("icity-login", func() error {
		welcome, err := c.get(c.base + welcomePath)
		if err != nil {
			return err
		}

		token := extractCSRFToken(welcome)
		if token == "" {
			return fmt.Errorf("no CSRF token on the login page")
		}

		form := url.Values{
			"utf8":                   {"✓"},
			"authenticity_token":     {token},
			"icty_user[login]":       {username},
			"icty_user[password]":    {password},
			"icty_user[remember_me]": {"1"},
			"commit":                 {"登入"},
		}

		req, err := http.NewRequest(http.MethodPost, c.base+signInPath, strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("building sign-in request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Referer", c.base+welcomePath)
		req.Header.Set("Origin", c.base)
		c.setHeaders(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("sign-in request: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("sign-in returned HTTP %d", resp.StatusCode)
		}

		probe, err := c.get(c.base + "/u/" + targetUser)
		if err != nil {
			return err
		}
		if strings.Contains(probe, "开始使用网页版") && strings.Contains(probe, "用户名 / Email") {
			return fmt.Errorf("%w: credentials rejected or extra verification required", utils.ErrNoRetry)
		}

		c.logger.Info("[icity] Logged in as %s", username)
		return nil
	})
}

// FetchPage retrieves one listing page. It satisfies the Fetcher contract
// of the scrape loop.
func (c *Client) FetchPage(pageURL string) (string, error) {
	return c.get(pageURL)
}

func (c *Client) get(rawURL string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", rawURL, err)
	}
	return string(body), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)
}

// extractCSRFToken pulls the Rails authenticity token out of a page,
// preferring the meta tag over the hidden form input.
func extractCSRFToken(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	if content, ok := doc.Find(`meta[name="csrf-token"]`).First().Attr("content"); ok && content != "" {
		return content
	}
	if value, ok := doc.Find(`input[name="authenticity_token"]`).First().Attr("value"); ok && value != "" {
		return value
	}
	return ""
}

// IsLoginPage reports whether markup is the iCity login page, i.e. the
// session expired and the site redirected the request.
func IsLoginPage(markup string) bool {
	return strings.Contains(markup, "开始使用网页版") &&
		strings.Contains(markup, "用户名 / Email") &&
		strings.Contains(markup, "登入")
}
