package portalsdk

// User is the profile object the portal returns alongside tokens and from
// the userinfo endpoint.
type User struct {
	ID         string `json:"id"`
	ExternalID string `json:"externalId"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	FirstLogin bool   `json:"isFirstLogin"`
}

// LoginRequest starts the two-step login. The identifier may be a username
// or an email address.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// LoginResponse acknowledges the password step. No token is issued yet; the
// 6-digit code has been emailed and the message names the (masked) address.
type LoginResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// VerifyOTPRequest redeems the user's open challenge with the emailed code.
type VerifyOTPRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	OTP             string `json:"otp"`
}

// ResendOTPRequest asks for a fresh code on an open challenge.
type ResendOTPRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
}

// TokenResponse is returned by verify-otp and refresh-token.
type TokenResponse struct {
	Message string `json:"message"`

	// Token is the JWT used to authenticate API requests.
	Token string `json:"token"`

	// RefreshToken is the opaque, single-use token for the refresh endpoint.
	RefreshToken string `json:"refreshToken"`

	User User `json:"user"`
}

// MessageResponse is the plain acknowledgement many endpoints return.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserInfoResponse is the authenticated profile from GET /api/userinfo.
type UserInfoResponse struct {
	User User `json:"user"`
}

// ChangePasswordRequest replaces the caller's password. Email must match the
// authenticated user.
type ChangePasswordRequest struct {
	Email           string `json:"email"`
	NewPassword     string `json:"newPassword"`
	CurrentPassword string `json:"currentPassword"`
}

// HealthChecks itemises dependency status in readiness responses.
type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Signer   string `json:"signer,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
