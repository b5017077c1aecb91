// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

/*
Package hydrator fetches ArcGIS Server REST resources and decodes them into
typed representations.

The package defines the contract consumed by discovery, the catalog cache and
geoprocessing runners (Hydrator, Fetcher, TokenGenerator) and a default HTTP
implementation, Client.

# Request Shaping

A Request carries the resource URL and, separately, the request-time concerns
that never become part of a resource's identity:

  - Token: added as the token query parameter (GET) or form field (POST)
  - ProxyURL: the final URL is sent as {proxy}?{target}
  - Form: POST body parameters

# Resilience

Client applies, in order:
  - A shared token-bucket limiter (golang.org/x/time/rate)
  - One circuit breaker per target host (sony/gobreaker), so an unreachable
    server cannot trip discovery of other servers
  - Exponential backoff on HTTP 429 honouring Retry-After

ArcGIS reports most failures as an HTTP 200 body of the form
{"error":{"code":...,"message":...}}. HydrateFromJSON turns that envelope into
an *arcgis.RemoteError. Remote errors and 4xx responses do not count as
breaker failures; transport errors and 5xx responses do.

# Tokens

TokenProvider exchanges a username and password for a token. The token
endpoint is discovered from {instance}/rest/info (authInfo.tokenServicesUrl)
and falls back to {instance}/tokens/generateToken.
*/
package hydrator
