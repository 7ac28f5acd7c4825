package client

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andriandrian/lifeline-admin/internal/session"
)

// The pipeline is a chain of RoundTrippers, outermost first:
//
//	retryOnUnauthorized -> bearerTransport -> cookieTransport -> base
//
// so a replayed request passes through bearerTransport again and picks up the
// token the refresh just stored.

// cookieTransport applies every Set-Cookie in a response to the store.
type cookieTransport struct {
	next  http.RoundTripper
	store session.Store
}

func (t *cookieTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	for _, c := range resp.Cookies() {
		if err := t.store.Set(c); err != nil {
			discard(resp)
			return nil, fmt.Errorf("store %s cookie: %w", c.Name, err)
		}
	}
	return resp, nil
}

// bearerTransport attaches the access token cookie, if any, as a bearer credential.
// The refresh endpoint additionally gets the refresh token header.
type bearerTransport struct {
	next  http.RoundTripper
	store session.Store
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Del("Authorization")

	if token, ok := t.store.Get(session.AccessCookie); ok {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	if isRefresh(req) {
		if refresh, ok := t.store.Get(session.RefreshCookie); ok {
			out.Header.Set(session.RefreshHeader, refresh)
		}
	}
	out.Header.Set("Accept", "application/json")

	return t.next.RoundTrip(out)
}

// retryOnUnauthorized recovers from one 401 by refreshing and replaying the request once.
type retryOnUnauthorized struct {
	next    http.RoundTripper
	refresh func(*http.Request) error
}

func (t *retryOnUnauthorized) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isAuthEndpoint(req) {
		return resp, nil
	}
	discard(resp)

	if err := t.refresh(req); err != nil {
		return nil, &RefreshError{Err: err}
	}

	replay, err := rewind(req)
	if err != nil {
		return nil, err
	}
	// A second 401 is returned as-is and becomes a hard failure upstream.
	return t.next.RoundTrip(replay)
}

func rewind(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return out, nil
	}
	if req.GetBody == nil {
		return nil, errNoReplayBody
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	out.Body = body
	return out, nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close() //nolint:errcheck // best-effort close
}

func isRefresh(req *http.Request) bool {
	return strings.HasSuffix(req.URL.Path, RefreshPath)
}

// isAuthEndpoint excludes the refresh endpoint (to stop recursion), login
// (a rejected password is an authentication failure, not an expired token)
// and logout (the session is being cleared anyway).
func isAuthEndpoint(req *http.Request) bool {
	return isRefresh(req) ||
		strings.HasSuffix(req.URL.Path, LoginPath) ||
		strings.HasSuffix(req.URL.Path, LogoutPath)
}
