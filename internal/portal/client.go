package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhkim09/insuuniverse/internal/config"
)

// sessionCookieName is the cookie the portal issues on successful signin.
const sessionCookieName = "_aT"

// AuthContext carries the session state for one collection run. It is
// created by Login and treated as read-only afterwards.
type AuthContext struct {
	AccountID int64
	Token     string
	IssuedAt  time.Time
}

// AuthError reports a failed login. It is the one fatal error of a
// collection run; every other failure degrades to a failed call.
type AuthError struct {
	StatusCode int
	Reason     string
}

func (e *AuthError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("portal authentication failed: %s (status %d)", e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("portal authentication failed: %s", e.Reason)
}

// IsAuthError reports whether err wraps an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Client talks to the analysis portal API.
type Client struct {
	baseURL        string
	apiBaseURL     string
	loginID        string
	password       string
	acceptLanguage string
	httpClient     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a portal client from configuration.
func New(cfg config.Portal, opts ...Option) (*Client, error) {
	loginID := strings.TrimSpace(cfg.LoginID)
	if loginID == "" {
		return nil, errors.New("portal login id required")
	}
	password := strings.TrimSpace(cfg.Password)
	if password == "" {
		return nil, errors.New("portal password required")
	}
	apiBaseURL := strings.TrimSpace(cfg.APIBaseURL)
	if apiBaseURL == "" {
		return nil, errors.New("portal api base url required")
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiBaseURL:     strings.TrimRight(apiBaseURL, "/"),
		loginID:        loginID,
		password:       password,
		acceptLanguage: strings.TrimSpace(cfg.AcceptLanguage),
		httpClient:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type signinRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

type signinResponse struct {
	MemID int64 `json:"memId"`
	Data  struct {
		MemID int64 `json:"memId"`
	} `json:"data"`
}

// Login performs credential signin and captures the session cookie. The
// portal answers a successful signin with 201 and sets the session cookie;
// any other outcome is an AuthError.
func (c *Client) Login(ctx context.Context) (*AuthContext, error) {
	payload, err := json.Marshal(signinRequest{LoginID: c.loginID, Password: c.password})
	if err != nil {
		return nil, fmt.Errorf("encode signin request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/auth/signin", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build signin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setCommonHeaders(req)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, &AuthError{Reason: fmt.Sprintf("execute signin (latency=%v): %v", latency, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, &AuthError{StatusCode: resp.StatusCode, Reason: "signin rejected"}
	}

	token := ""
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName {
			token = cookie.Value
			break
		}
	}
	if token == "" {
		return nil, &AuthError{StatusCode: resp.StatusCode, Reason: "signin response carried no session cookie"}
	}

	var body signinResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &AuthError{StatusCode: resp.StatusCode, Reason: fmt.Sprintf("decode signin response: %v", err)}
	}
	accountID := body.MemID
	if accountID == 0 {
		accountID = body.Data.MemID
	}
	if accountID == 0 {
		return nil, &AuthError{StatusCode: resp.StatusCode, Reason: "signin response carried no account id"}
	}

	return &AuthContext{AccountID: accountID, Token: token, IssuedAt: time.Now()}, nil
}

// Get issues an authenticated GET against the portal API. The returned
// status and body are reported for any response the server produced; err is
// non-nil only when no response could be obtained at all.
func (c *Client) Get(ctx context.Context, auth *AuthContext, path string, params url.Values) (int, []byte, error) {
	if auth == nil || auth.Token == "" {
		return 0, nil, errors.New("auth context required")
	}

	endpoint, err := url.Parse(c.apiBaseURL + path)
	if err != nil {
		return 0, nil, fmt.Errorf("parse portal url: %w", err)
	}
	if len(params) > 0 {
		endpoint.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: auth.Token})
	c.setCommonHeaders(req)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return 0, nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if c.acceptLanguage != "" {
		req.Header.Set("Accept-Language", c.acceptLanguage)
	}
	if c.baseURL != "" {
		req.Header.Set("Origin", c.baseURL)
		req.Header.Set("Referer", c.baseURL+"/")
	}
}
