// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package hydrator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/config"
	"github.com/tomtom215/arcgis-catalog/internal/logging"
)

// ErrNoToken is returned when the token endpoint answers without a token.
var ErrNoToken = errors.New("token endpoint returned no token")

// serverInfo is the subset of {instance}/rest/info used for token discovery.
type serverInfo struct {
	CurrentVersion float64 `json:"currentVersion"`
	AuthInfo       struct {
		IsTokenBasedSecurity bool   `json:"isTokenBasedSecurity"`
		TokenServicesURL     string `json:"tokenServicesUrl"`
	} `json:"authInfo"`
}

// tokenResponse is the generateToken payload. Expires is epoch milliseconds.
type tokenResponse struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
	SSL     bool   `json:"ssl"`
}

// TokenProvider implements TokenGenerator against ArcGIS Server token services.
type TokenProvider struct {
	fetcher    Fetcher
	expiration int
	client     string
	referer    string

	mu        sync.RWMutex
	endpoints map[string]string // instance root -> generateToken URL
}

// NewTokenProvider creates a provider that issues requests through fetcher.
func NewTokenProvider(fetcher Fetcher, cfg *config.TokensConfig) *TokenProvider {
	return &TokenProvider{
		fetcher:    fetcher,
		expiration: cfg.ExpirationMinutes,
		client:     cfg.Client,
		referer:    cfg.Referer,
		endpoints:  make(map[string]string),
	}
}

// GenerateToken exchanges creds for a token usable against serviceURL.
func (p *TokenProvider) GenerateToken(ctx context.Context, serviceURL string, creds arcgis.Credentials, proxyURL string) (arcgis.Token, error) {
	if creds.IsZero() {
		return arcgis.Token{}, errors.New("credentials are required")
	}

	root, err := instanceRoot(serviceURL)
	if err != nil {
		return arcgis.Token{}, err
	}
	endpoint := p.tokenEndpoint(ctx, root, proxyURL)

	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	form.Set("client", p.client)
	if p.client == "referer" {
		form.Set("referer", p.referer)
	}
	form.Set("expiration", strconv.Itoa(p.expiration))
	form.Set("f", "json")

	resp, err := p.fetcher.Fetch(ctx, Post(endpoint, proxyURL, "", form))
	if err != nil {
		return arcgis.Token{}, fmt.Errorf("generate token: %w", err)
	}

	var tr tokenResponse
	if err := HydrateFromJSON(resp.Body, &tr); err != nil {
		return arcgis.Token{}, fmt.Errorf("generate token: %w", err)
	}
	if tr.Token == "" {
		return arcgis.Token{}, ErrNoToken
	}

	token := arcgis.Token{Value: tr.Token}
	if tr.Expires > 0 {
		token.Expires = time.UnixMilli(tr.Expires)
	}

	logging.Ctx(ctx).Debug().
		Str("endpoint", endpoint).
		Str("username", logging.SanitizeUsername(creds.Username)).
		Str("token", logging.SanitizeToken(token.Value)).
		Time("expires", token.Expires).
		Msg("Generated ArcGIS token")

	return token, nil
}

// tokenEndpoint resolves the generateToken URL for an instance, caching the result.
func (p *TokenProvider) tokenEndpoint(ctx context.Context, root, proxyURL string) string {
	p.mu.RLock()
	endpoint, ok := p.endpoints[root]
	p.mu.RUnlock()
	if ok {
		return endpoint
	}

	endpoint = root + "/tokens/generateToken"

	var info serverInfo
	resp, err := p.fetcher.Fetch(ctx, Get(root+"/rest/info?f=json", proxyURL, ""))
	if err == nil {
		err = HydrateFromJSON(resp.Body, &info)
	}
	switch {
	case err != nil:
		// Older servers have no /rest/info; the conventional path still works.
		logging.Ctx(ctx).Debug().Err(err).Str("instance", root).Msg("Token endpoint discovery failed, using default path")
	case info.AuthInfo.TokenServicesURL != "":
		endpoint = generateTokenURL(info.AuthInfo.TokenServicesURL)
	}

	p.mu.Lock()
	p.endpoints[root] = endpoint
	p.mu.Unlock()

	return endpoint
}

// instanceRoot returns the server instance URL (e.g. https://host/arcgis)
// for any URL beneath it.
func instanceRoot(serviceURL string) (string, error) {
	canonical, err := arcgis.CanonicalRootURL(serviceURL)
	if err != nil {
		return "", err
	}
	if i := strings.Index(strings.ToLower(canonical), "/rest/"); i >= 0 {
		return canonical[:i], nil
	}
	if strings.HasSuffix(strings.ToLower(canonical), "/rest") {
		return canonical[:len(canonical)-len("/rest")], nil
	}
	u, _ := url.Parse(canonical)
	return u.Scheme + "://" + u.Host + "/arcgis", nil
}

// generateTokenURL normalizes authInfo.tokenServicesUrl, which servers report
// either as ".../tokens/" or ".../tokens/generateToken".
func generateTokenURL(tokenServicesURL string) string {
	trimmed := strings.TrimRight(tokenServicesURL, "/")
	if strings.HasSuffix(strings.ToLower(trimmed), "/generatetoken") {
		return trimmed
	}
	return trimmed + "/generateToken"
}

var _ TokenGenerator = (*TokenProvider)(nil)
