// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package arcgis

import (
	"sync/atomic"
	"time"
)

// DefaultTokenSkew is subtracted from a token's expiry when checking validity
// so a token is never sent in the last moments of its lifetime.
const DefaultTokenSkew = time.Minute

// Token is an opaque, time-limited credential for secured services.
type Token struct {
	Value   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// IsValid reports whether the token has a value and does not expire within skew of now.
// A zero Expires means the server did not report an expiry; such tokens are
// treated as valid until replaced.
func (t Token) IsValid(now time.Time, skew time.Duration) bool {
	if t.Value == "" {
		return false
	}
	if t.Expires.IsZero() {
		return true
	}
	return now.Add(skew).Before(t.Expires)
}

// Credentials are the username/password pair exchanged for a Token.
type Credentials struct {
	Username string
	Password string
}

// IsZero reports whether no credentials were supplied.
func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Password == ""
}

// tokenHolder stores a Token for concurrent readers and a refreshing writer.
type tokenHolder struct {
	p atomic.Pointer[Token]
}

func (h *tokenHolder) load() Token {
	if t := h.p.Load(); t != nil {
		return *t
	}
	return Token{}
}

func (h *tokenHolder) store(t Token) {
	h.p.Store(&t)
}
