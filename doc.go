// Package clubio is a Go client for the Clubio club/events management
// backend. It covers credential storage, the API request contract, the
// session lifecycle, and route gating for dashboard-style frontends.
//
// Request contract:
//   - Every API operation resolves to a Result carrying either a decoded
//     payload or an error string, never both. Transport failures, non-2xx
//     statuses, and undecodable bodies are all normalized into the error
//     channel; no operation propagates a Go error to callers. UI code
//     branches on Result.OK(), nothing else.
//   - When a bearer token is held by the TokenStore, outbound requests
//     carry it in the Authorization header. The token is read at request
//     time, never cached by the client.
//
// Session lifecycle:
//   - Manager owns the resolved identity. It starts Unresolved, moves
//     through Resolving while the stored token is validated against the
//     backend, and settles Authenticated or Anonymous. Login re-enters
//     Resolving, persists the exchanged token before the follow-up
//     current-user lookup, and reports plain booleans upward.
//
// Route gating:
//   - middleware/sessionguard wraps go-router handlers and redirects
//     anonymous or wrong-portal visitors based on Manager state, evaluated
//     on every request.
package clubio
