// Package aps implements the OAuth token lifecycle against Autodesk
// Platform Services.
//
// Two independent token classes are managed:
//
//   - TwoLeggedProvider: client-credentials (app-only) tokens, cached in
//     memory with a 60-second expiry margin.
//   - ThreeLeggedProvider: user-delegated authorization-code tokens,
//     captured through a browser consent flow with a local loopback
//     listener and persisted to disk with a 300-second reuse margin.
//
// Both providers are cache-first: a valid cached token is returned with no
// network traffic. All failure modes (listener bind, authorization
// timeout, exchange rejection, missing cache in non-interactive mode) are
// terminal for the current call and surfaced as typed errors; nothing is
// retried behind the caller's back.
package aps
