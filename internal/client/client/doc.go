// Package client talks to the teamhub REST API.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the Client interface) and its HTTP
//     implementation, APIClient.
//  2. AuthTransport, an http.RoundTripper that attaches the bearer token,
//     reports activity on session-renewing endpoints, and recovers from an
//     expired access token by refreshing it once and resending the request.
//  3. Refresher, which collapses concurrent refresh attempts into a single
//     call to the refresh endpoint.
//  4. Local storage bootstrap (OpenStorage, InitDatabase, RunMigrations).
//
// # Bootstrap
//
// AuthTransport is initialized in two steps. NewAuthTransport builds it and
// Configure installs the Hooks that read the current token and observe
// session renewal. Requests made before Configure fail with ErrNotConfigured.
//
// # Error Handling
//
// APIClient methods return *APIError, which always carries a displayable
// message. Callers can match ErrUnauthorized (any 401) and ErrUnavailable
// (no response received) with errors.Is. A failed refresh clears the token
// store and surfaces the original 401 to the caller.
package client
