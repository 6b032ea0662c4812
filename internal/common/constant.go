// Package common contains shared constants and sentinel errors used across
// the to-do list server components.
package common

import "time"

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "todolist.sid"

// OAuthStateCookieName holds the OAuth state value between the redirect to
// the provider and the callback.
const OAuthStateCookieName = "todolist.oauth_state"

// OAuthStateTTL bounds how long a user may take on the provider consent page.
const OAuthStateTTL = 10 * time.Minute

// DefaultSessionTTL is the fixed lifetime of a session from its creation.
const DefaultSessionTTL = 24 * time.Hour

// Password sentinels mark accounts provisioned by a delegated provider.
// A bcrypt hash never starts with '!', so password login is impossible for them.
const (
	NoPasswordPrefix          = "!"
	GooglePasswordSentinel    = NoPasswordPrefix + "google"
	PrincipalPasswordSentinel = NoPasswordPrefix + "internet-identity"
)

// PrincipalKeyPrefix namespaces Internet Identity resolution keys. Email keys
// always contain '@' and principal keys never do.
const PrincipalKeyPrefix = "ii:"

// PrincipalDisplayName is given to users provisioned through Internet Identity.
const PrincipalDisplayName = "Internet Identity User"
