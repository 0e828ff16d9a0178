package portalsdk

import (
	"fmt"
	"net/http"
)

// Do sends an arbitrary request with the session's bearer token injected at
// call time. On a 401 the token pair is refreshed (coalesced across
// concurrent callers) and the request is retried exactly once with a rewound
// body; the retried response is returned as-is, so a 401 the refresh could
// not cure reaches the caller. A failed refresh clears the credentials and
// surfaces as ErrSessionExpired.
//
// Requests with a body must carry GetBody (http.NewRequest sets it for the
// common body types) or the retry is skipped.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	token, err := s.AccessToken(req.Context())
	if err != nil {
		return nil, err
	}

	resp, err := s.send(req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// Can't replay the body; hand the 401 to the caller.
		return resp, nil
	}
	resp.Body.Close()

	token, err = s.refresh(req.Context(), token)
	if err != nil {
		return nil, err
	}
	return s.send(req, token)
}

// HTTPClient returns an *http.Client whose transport routes every request
// through Do. Hand this to code that only knows how to take a client;
// services built on it never touch the credential store directly.
func (s *Session) HTTPClient() *http.Client {
	return &http.Client{Transport: &sessionTransport{session: s}}
}

func (s *Session) send(req *http.Request, token string) (*http.Response, error) {
	out := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		out.Body = body
	}
	out.Header.Set("Authorization", "Bearer "+token)
	return s.client.HTTPClient.Do(out)
}

type sessionTransport struct {
	session *Session
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.session.Do(req)
}
