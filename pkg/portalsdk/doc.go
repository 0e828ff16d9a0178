// Package portalsdk is the Go client for the portal authentication service.
//
// The zero-dependency way in:
//
//	client := portalsdk.NewClient("https://portal.klu.edu")
//	session := portalsdk.NewSession(client, portalsdk.NewMemoryStore())
//
//	_, err := session.Login(ctx, usernameOrEmail, password)
//	// ... user reads the emailed code ...
//	err = session.VerifyOTP(ctx, usernameOrEmail, code)
//
//	info, err := session.UserInfo(ctx)
//
// A Session holds the token pair in a CredentialStore and transparently
// refreshes the access token: on a 401 the refresh endpoint is called once
// (concurrent callers coalesce onto a single refresh) and the failed request
// is retried exactly once. When the refresh token itself is rejected the
// store is cleared and ErrSessionExpired is returned; the caller should send
// the user back to the login screen.
package portalsdk
