// Package services implements the HTTP client for the streaming backend.
//
// # Transport
//
// [APIService] owns the base URL, the [http.Client] and the installed token.
// Every request carries a fresh X-Request-ID and, when a token is installed, an
// Authorization header built by [oauth2.Token.SetAuthHeader] with the configured
// scheme ("Token" for the backend's token authentication).
//
// # Interfaces
//
// Consumers depend on narrow interfaces rather than the concrete client:
//   - [AuthClient] : login, registration and profile calls used by the session manager
//   - [ProgressReporter] : fire-and-forget progress updates from the player
//   - [Catalog] : content lists and details used by the browse views
//
// # Error Handling
//
// Non-2xx responses are returned as [*APIError] carrying the status and the decoded payload:
//   - [shared.ErrNotAuthenticated] : 401/403, the token is missing or no longer valid
//   - [shared.ErrAPIRequest] : any other rejection
//   - [shared.ErrServiceUnavailable] : the request never reached the backend
//   - [shared.ErrContentNotFound] : content detail for an unknown id
//
// [PayloadMessage] picks a human readable message out of a payload, looking at
// error, detail, non_field_errors and the registration fields in that order.
package services
