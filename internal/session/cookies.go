// Package session owns the cookie layout shared by the API and the dashboard
// client, and the client-side cookie store the request pipeline reads from.
package session

const (
	// AccessCookie and RefreshCookie are HttpOnly; NameCookie and UserIDCookie
	// mirror the identity for display and for stamping "created by" on writes.
	AccessCookie  = "Authorization"
	RefreshCookie = "RefreshToken"
	NameCookie    = "name"
	UserIDCookie  = "userId"

	// RefreshHeader carries the refresh token on the refresh endpoint.
	RefreshHeader = "Refresh-Token"
)

// All lists every cookie a logout must clear.
var All = []string{AccessCookie, RefreshCookie, NameCookie, UserIDCookie}
