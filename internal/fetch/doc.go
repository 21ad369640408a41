// Package fetch retrieves product pages over HTTP.
//
// The monitoring core depends only on the Fetcher interface: one URL in,
// one status-and-body out, or a *NetworkError. Connection pooling,
// browser-like headers, body limits, charset decoding, and politeness
// rate limiting all live behind that boundary.
//
// Two implementations are provided:
//
//   - Client: the default net/http implementation
//   - StealthClient: a TLS-fingerprint client (bogdanfinn/tls-client)
//     for retail sites that reject requests with a non-browser TLS
//     handshake
//
// Both classify transport failures, timeouts, and non-2xx responses as
// *NetworkError, the transient error taxonomy the check executor's
// retry policy is built on.
package fetch
