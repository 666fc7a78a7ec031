// Package mockapi is an in-memory stand-in for the streaming backend.
//
// It serves the endpoints the client consumes with the same wire behavior:
// token authentication through "Authorization: Token <key>", field keyed
// validation payloads, page number pagination with 20 results per page and
// progress upserts. Package tests run it under [net/http/httptest] and
// "streamz dev serve" runs it on a local port.
//
// Routes are mounted under /api, matching the default base URL. Request,
// login and progress counters are exposed for Prometheus at /metrics.
package mockapi
