package naver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://apis.naver.com/cafe-web"
	defaultAuthURL = "https://nid.naver.com"
)

// Cafe API error codes the client classifies. Anything else in the 4xx
// range is treated as a content/validation rejection.
const (
	codeLoginRequired = "0004"
	codeTooFrequent   = "0010"
	codeDuplicate     = "0020"
)

// Client is an HTTP client for the cafe API. Session state lives in the
// cookie jar; the client itself holds no credentials.
type Client struct {
	baseURL string
	authURL string
	http    *http.Client
}

// NewClient creates a Client. Empty baseURL/authURL fall back to the
// production endpoints; zero timeout falls back to 20s.
func NewClient(baseURL, authURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if authURL == "" {
		authURL = defaultAuthURL
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		authURL: authURL,
		http:    &http.Client{Timeout: timeout, Jar: jar},
	}
}

// Login authenticates against the identity endpoint and returns the session
// expiry reported by the service. Session cookies land in the client's jar.
func (c *Client) Login(ctx context.Context, id, password string) (time.Time, error) {
	payload := map[string]string{"id": id, "password": password}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL+"/api/v2/login", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("login: %w (%v)", ErrNetwork, err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode >= 500 {
		return time.Time{}, fmt.Errorf("login status=%d: %w", res.StatusCode, ErrNetwork)
	}

	var r struct {
		LoginStatus string `json:"login_status"`
		ExpiresIn   int    `json:"expires_in"`
		Message     string `json:"message"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return time.Time{}, fmt.Errorf("decode login response: %w", err)
	}
	switch r.LoginStatus {
	case "success":
	case "captcha":
		return time.Time{}, fmt.Errorf("login: %w", ErrCaptcha)
	default:
		return time.Time{}, fmt.Errorf("login status=%s msg=%s: %w", r.LoginStatus, r.Message, ErrAuth)
	}

	expiresIn := r.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	return time.Now().Add(time.Duration(expiresIn) * time.Second), nil
}

// PostComment writes one comment to the article. The error, when non-nil,
// wraps one of the package sentinels so callers can classify the outcome.
func (c *Client) PostComment(ctx context.Context, article, comment string) error {
	cafeID, articleID, err := ParseArticle(article)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}

	payload := map[string]string{"content": comment}
	data, _ := json.Marshal(payload)
	u := fmt.Sprintf("%s/cafes/%s/articles/%s/comments", c.baseURL, cafeID, articleID)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post comment: %w (%v)", ErrNetwork, err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	var r struct {
		Message struct {
			Status string `json:"status"`
			Error  struct {
				Code string `json:"code"`
				Msg  string `json:"msg"`
			} `json:"error"`
		} `json:"message"`
	}
	// An unparseable body only matters for non-2xx classification below.
	_ = json.Unmarshal(body, &r)

	return classify(res.StatusCode, r.Message.Error.Code, r.Message.Error.Msg)
}

// HasComment reports whether the article's recent comments already contain
// the exact payload. Used to avoid double-posting on retry and resume.
func (c *Client) HasComment(ctx context.Context, article, comment string) (bool, error) {
	cafeID, articleID, err := ParseArticle(article)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRejected, err)
	}

	u := fmt.Sprintf("%s/cafes/%s/articles/%s/comments?limit=50&sort=recent", c.baseURL, cafeID, articleID)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)

	res, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("list comments: %w (%v)", ErrNetwork, err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	var r struct {
		Message struct {
			Status string `json:"status"`
			Error  struct {
				Code string `json:"code"`
				Msg  string `json:"msg"`
			} `json:"error"`
			Result struct {
				Comments []struct {
					Content string `json:"content"`
				} `json:"comments"`
			} `json:"result"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return false, fmt.Errorf("decode comments: %w", err)
	}
	if err := classify(res.StatusCode, r.Message.Error.Code, r.Message.Error.Msg); err != nil {
		return false, fmt.Errorf("list comments: %w", err)
	}

	want := strings.TrimSpace(comment)
	for _, cm := range r.Message.Result.Comments {
		if strings.TrimSpace(cm.Content) == want {
			return true, nil
		}
	}
	return false, nil
}

// classify maps an HTTP status and cafe API error code onto the sentinel
// taxonomy. nil means the request succeeded.
func classify(statusCode int, code, msg string) error {
	switch {
	case statusCode == http.StatusUnauthorized || code == codeLoginRequired:
		return ErrAuthExpired
	case statusCode == http.StatusTooManyRequests || code == codeTooFrequent:
		return ErrThrottled
	case code == codeDuplicate:
		return ErrDuplicate
	case statusCode >= 500:
		return fmt.Errorf("status=%d: %w", statusCode, ErrNetwork)
	case statusCode >= 400 || code != "":
		return fmt.Errorf("code=%s msg=%s: %w", code, msg, ErrRejected)
	}
	return nil
}

// ParseArticle extracts (cafeID, articleID) from a target reference. Both
// "https://cafe.naver.com/<cafe>/<article>" and the bare "<cafe>/<article>"
// form are accepted.
func ParseArticle(ref string) (string, string, error) {
	s := strings.TrimSpace(ref)
	if s == "" {
		return "", "", fmt.Errorf("empty article reference")
	}
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", "", fmt.Errorf("invalid article URL %q", ref)
		}
		s = strings.Trim(u.Path, "/")
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("article reference %q is not <cafe>/<article>", ref)
	}
	return parts[0], parts[1], nil
}
