// Package client is the transport layer of the dmara terminal client.
//
// # Overview
//
// The package provides:
//  1. The backend contract (see the Client interface): login exchange,
//     profile, favourite items, external search, posts with likes, follow
//     graph, notifications and the image proxy.
//  2. A REST implementation (see HTTPClient) that reads the bearer token
//     from the session before every request, sends it as
//     "Authorization: Token <key>", tags requests with an X-Request-ID, uses
//     multipart bodies when a file is attached and JSON otherwise.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Failures are reported through a small taxonomy matched with errors.Is:
// ErrUnauthenticated (no token, or 401/403; no request is sent without a
// token), ErrNetworkFailure (no HTTP answer), ErrServerRejected (other
// non-2xx, carried by *ServerError) and ErrValidationFailed (carried by
// *ValidationError, raised before dispatch). Context cancellation is
// returned unwrapped.
//
// # Concurrency
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation.
package client
