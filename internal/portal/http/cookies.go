package http

import (
	"net/http"
	"time"

	"github.com/klu-crt/portal/internal/portal/domain"
)

const (
	authCookieName    = "auth-token"
	refreshCookieName = "refresh-token"
)

// setAuthCookies mirrors the token pair into cookies for the edge route
// guard, which runs before any page render and cannot read session storage.
// Both cookies are always written together; there is no code path that
// updates one without the other.
func setAuthCookies(w http.ResponseWriter, pair *domain.TokenPair, refreshTTL time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearAuthCookies expires both cookies. Safe to call when they were never
// set.
func clearAuthCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{authCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
