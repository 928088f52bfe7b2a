package common

import "time"

// AccessTokenCookieName is the cookie that carries "Bearer <token>" between
// the game client and the server.
const AccessTokenCookieName = "access_token"

// BearerPrefix precedes the signed token inside the cookie value.
const BearerPrefix = "Bearer "

// DefaultSessionTTL is how long an issued session stays valid.
const DefaultSessionTTL = 30 * time.Minute
