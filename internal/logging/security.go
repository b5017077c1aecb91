// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package logging

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// Credential audit event names.
const (
	EventTokenIssued = "token_issued"
	EventTokenFailed = "token_failed"
)

// CredentialEvent describes one username/password token exchange.
type CredentialEvent struct {
	Event    string // EventTokenIssued or EventTokenFailed
	Target   string // "catalog" or "service"
	URL      string // without query string
	Username string
	Token    string
	Success  bool
	Error    string
}

// SecurityLogger audits token exchanges. Usernames, tokens and credential
// errors are masked before they are written.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates an audit logger on the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: WithComponent("credentials")}
}

// NewSecurityLoggerWithLogger creates an audit logger on logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With().Str("component", "credentials").Logger()}
}

// LogEvent writes ev at info level, or warn when it failed.
func (l *SecurityLogger) LogEvent(ev *CredentialEvent) {
	e, status := l.logger.Info(), "success"
	if !ev.Success {
		e, status = l.logger.Warn(), "failed"
	}
	e = e.Str("event", ev.Event).Str("status", status)

	for _, kv := range [...]struct{ key, value string }{
		{"target", ev.Target},
		{"url", ev.URL},
		{"username", SanitizeUsername(ev.Username)},
		{"token", SanitizeToken(ev.Token)},
	} {
		if kv.value != "" {
			e = e.Str(kv.key, kv.value)
		}
	}
	if !ev.Success && ev.Error != "" {
		e = e.Str("error", SanitizeError(ev.Error))
	}
	e.Msg("")
}

// LogTokenIssued audits a successful exchange for url.
func (l *SecurityLogger) LogTokenIssued(target, url, username, token string) {
	l.LogEvent(&CredentialEvent{
		Event:    EventTokenIssued,
		Target:   target,
		URL:      url,
		Username: username,
		Token:    token,
		Success:  true,
	})
}

// LogTokenFailure audits a rejected or failed exchange for url.
func (l *SecurityLogger) LogTokenFailure(target, url, username, errMsg string) {
	l.LogEvent(&CredentialEvent{
		Event:    EventTokenFailed,
		Target:   target,
		URL:      url,
		Username: username,
		Error:    errMsg,
	})
}

// SanitizeToken keeps the first and last 4 characters of a token.
//
//	"xK9dLm2pQr7sTu4vWx" -> "xK9d...4vWx"
func SanitizeToken(token string) string {
	switch {
	case token == "":
		return ""
	case len(token) <= 12:
		return "***"
	default:
		return token[:4] + "..." + token[len(token)-4:]
	}
}

// SanitizeUsername keeps the first 2 characters of a username.
//
//	"gisadmin" -> "gi***"
func SanitizeUsername(username string) string {
	switch {
	case username == "":
		return ""
	case len(username) <= 2:
		return "***"
	default:
		return username[:2] + "***"
	}
}

var tokenParam = regexp.MustCompile(`(?i)([?&]token=)([^&\s'"]+)`)

// SanitizeError masks token query parameters in err and collapses messages
// that mention passwords or authorization headers. The result is at most
// 200 characters.
func SanitizeError(err string) string {
	lower := strings.ToLower(err)
	for _, pattern := range []string{"password", "authorization", "bearer"} {
		if strings.Contains(lower, pattern) {
			return "credential error"
		}
	}

	err = tokenParam.ReplaceAllStringFunc(err, func(m string) string {
		parts := tokenParam.FindStringSubmatch(m)
		return parts[1] + SanitizeToken(parts[2])
	})
	return truncateString(err, 200)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
