package portalsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin, stateless wrapper over the portal's HTTP API. It holds no
// tokens; pair it with a Session for automatic refresh.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Client for the given base URL (scheme://host[:port],
// no trailing slash required).
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// url joins the base URL with a path.
func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// doJSON sends a request with an optional JSON body and optional bearer
// token, decodes a 2xx response into out (if non-nil), and converts any other
// status into an *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseErrorResponse(resp, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Login submits the identifier and password. On success the server has
// emailed a 6-digit code; no token is issued yet.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (LoginResponse, error) {
	var out LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "",
		LoginRequest{UsernameOrEmail: usernameOrEmail, Password: password}, &out)
	return out, err
}

// VerifyOTP redeems the open challenge with the emailed code and returns the
// token pair.
func (c *Client) VerifyOTP(ctx context.Context, usernameOrEmail, otp string) (TokenResponse, error) {
	var out TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/verify-otp", "",
		VerifyOTPRequest{UsernameOrEmail: usernameOrEmail, OTP: otp}, &out)
	return out, err
}

// ResendOTP requests a fresh code. The previous code stops working
// immediately. Rate limited to one request per minute per challenge.
func (c *Client) ResendOTP(ctx context.Context, usernameOrEmail string) (MessageResponse, error) {
	var out MessageResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/resend-otp", "",
		ResendOTPRequest{UsernameOrEmail: usernameOrEmail}, &out)
	return out, err
}

// Refresh rotates the refresh token. The presented token is the bearer
// credential and is invalid afterwards; use the returned pair from here on.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	var out TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/refresh-token", refreshToken, nil, &out)
	return out, err
}

// Logout revokes the session the access token belongs to. Best-effort: an
// expired token is still accepted for the 200.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", accessToken, nil, nil)
}

// ForgotPassword triggers the temporary-password email. The server answers
// 200 whether or not the address is known.
func (c *Client) ForgotPassword(ctx context.Context, email string) (MessageResponse, error) {
	var out MessageResponse
	path := "/api/auth/forgot-password?email=" + url.QueryEscape(email)
	err := c.doJSON(ctx, http.MethodPost, path, "", nil, &out)
	return out, err
}

// UserInfo fetches the profile for the given access token.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (UserInfoResponse, error) {
	var out UserInfoResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/userinfo", accessToken, nil, &out)
	return out, err
}

// ChangePassword replaces the caller's password. All of the user's refresh
// tokens are revoked server-side.
func (c *Client) ChangePassword(ctx context.Context, accessToken string, req ChangePasswordRequest) error {
	return c.doJSON(ctx, http.MethodPut, "/api/users/password", accessToken, req, nil)
}

// Readyz reports whether the portal is ready to serve traffic.
func (c *Client) Readyz(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.doJSON(ctx, http.MethodGet, "/readyz", "", nil, &out)
	return out, err
}
