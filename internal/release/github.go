package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/logging"
)

const (
	// DefaultAPIURL is the public GitHub REST endpoint.
	DefaultAPIURL = "https://api.github.com"
	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "carvel-setup/1.0"
	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 30 * time.Second

	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 32 * time.Second
	perPage        = 100
)

// GitHubClient implements Catalog using the GitHub REST API.
type GitHubClient struct {
	client    *http.Client
	baseURL   string
	token     string
	userAgent string
	backoff   func(attempt int) time.Duration
	logger    logging.Logger
}

// Option configures a GitHubClient.
type Option func(*GitHubClient)

// WithToken authenticates requests. Anonymous requests are heavily rate limited.
func WithToken(token string) Option {
	return func(c *GitHubClient) { c.token = token }
}

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(url string) Option {
	return func(c *GitHubClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *GitHubClient) { c.client = client }
}

// WithLogger sets the logger used for rate limit warnings and retries.
func WithLogger(l logging.Logger) Option {
	return func(c *GitHubClient) { c.logger = logging.OrNoop(l) }
}

// withBackoff overrides the retry delay; tests use it to avoid sleeping.
func withBackoff(fn func(attempt int) time.Duration) Option {
	return func(c *GitHubClient) { c.backoff = fn }
}

// NewGitHubClient creates a new GitHub release catalog client.
func NewGitHubClient(opts ...Option) *GitHubClient {
	c := &GitHubClient{
		client:    &http.Client{Timeout: DefaultTimeout},
		baseURL:   DefaultAPIURL,
		userAgent: DefaultUserAgent,
		backoff:   calculateBackoff,
		logger:    logging.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// githubRelease is the wire format of a release.
type githubRelease struct {
	TagName string        `json:"tag_name"`
	Name    string        `json:"name"`
	Body    string        `json:"body"`
	Draft   bool          `json:"draft"`
	Assets  []githubAsset `json:"assets"`
}

// githubAsset is the wire format of a release asset.
type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// ListReleases returns every release of repo, following pagination.
func (c *GitHubClient) ListReleases(ctx context.Context, repo Repository) ([]Release, error) {
	next := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d", c.baseURL, repo.Owner, repo.Name, perPage)

	var releases []Release
	for next != "" {
		page, link, err := c.listPage(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("list releases for %s: %w", repo, err)
		}

		for _, r := range page {
			if r.Draft {
				c.logger.Debug("skipping draft release", "repo", repo.String(), "tag", r.TagName)
				continue
			}
			rel, err := convertRelease(repo, r)
			if err != nil {
				return nil, err
			}
			releases = append(releases, rel)
		}
		next = nextPageURL(link)
	}

	c.logger.Debug("listed releases", "repo", repo.String(), "count", len(releases))
	return releases, nil
}

// listPage fetches a single page and returns it with the Link header.
func (c *GitHubClient) listPage(ctx context.Context, url string) ([]githubRelease, string, error) {
	resp, err := c.doWithRetry(ctx, url)
	if err != nil {
		return nil, "", err
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", fmt.Errorf("repository not found")
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var page []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", fmt.Errorf("decode releases: %w", err)
	}

	return page, resp.Header.Get("Link"), nil
}

// convertRelease validates a wire release and converts it to a Release.
func convertRelease(repo Repository, r githubRelease) (Release, error) {
	if r.TagName == "" {
		return Release{}, &InvalidReleaseError{Repo: repo, Message: fmt.Sprintf("release %q has no tag name", r.Name)}
	}

	rel := Release{
		Tag:    r.TagName,
		Notes:  r.Body,
		Assets: make([]Asset, 0, len(r.Assets)),
	}
	for _, a := range r.Assets {
		if a.Name == "" || a.BrowserDownloadURL == "" {
			return Release{}, &InvalidReleaseError{
				Repo:    repo,
				Message: fmt.Sprintf("release %s has an asset without name or download URL", r.TagName),
			}
		}
		rel.Assets = append(rel.Assets, Asset{Name: a.Name, DownloadURL: a.BrowserDownloadURL})
	}
	return rel, nil
}

var nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// nextPageURL extracts the rel="next" target from a Link header.
func nextPageURL(link string) string {
	for _, part := range strings.Split(link, ",") {
		if m := nextLinkPattern.FindStringSubmatch(strings.TrimSpace(part)); m != nil {
			return m[1]
		}
	}
	return ""
}

// doWithRetry performs a GET with exponential backoff on transient errors.
func (c *GitHubClient) doWithRetry(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("User-Agent", c.userAgent)
		if c.token != "" {
			req.Header.Set("Authorization", "token "+c.token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			c.logger.Debug("request failed, retrying", "url", url, "attempt", attempt+1, "error", err)
			continue
		}

		if err := c.checkRateLimit(resp); err != nil {
			//nolint:errcheck // Best effort close on rate limit error
			resp.Body.Close()
			return nil, err
		}

		if !isRetryableStatus(resp.StatusCode) || attempt == maxRetries {
			return resp, nil
		}

		//nolint:errcheck // Best effort close before retry
		resp.Body.Close()
		lastErr = fmt.Errorf("status %d", resp.StatusCode)
		c.logger.Debug("transient status, retrying", "url", url, "status", resp.StatusCode, "attempt", attempt+1)
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// checkRateLimit fails when the API quota is exhausted and warns when it is low.
func (c *GitHubClient) checkRateLimit(resp *http.Response) error {
	remaining, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	if err != nil {
		return nil
	}

	if remaining == 0 {
		if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			return fmt.Errorf("GitHub API rate limit exceeded, resets at %s", time.Unix(reset, 0).UTC().Format(time.RFC3339))
		}
		return fmt.Errorf("GitHub API rate limit exceeded")
	}

	if remaining <= 10 {
		c.logger.Warn("GitHub API rate limit low", "remaining", remaining)
	}
	return nil
}

// isRetryableStatus reports whether an HTTP status code is transient.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusForbidden,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// calculateBackoff returns the delay before retry number attempt+1.
func calculateBackoff(attempt int) time.Duration {
	backoff := float64(initialBackoff) * math.Pow(2, float64(attempt))
	if backoff > float64(maxBackoff) {
		backoff = float64(maxBackoff)
	}
	return time.Duration(backoff)
}
