// Package api implements the Sparkle REST API client: bearer-token
// authentication with a one-shot refresh-and-replay on expired tokens,
// master-password endpoints, vault entry and category access, and file
// upload with OCR status queries.
//
// All remote responses are mapped to typed structs in a single normalization
// step; unrecognized shapes are rejected with *ParseError instead of being
// probed at call sites. Remote failures are reported through the sentinel
// errors in package common so callers can distinguish "wrong secret" from
// "check your connection".
package api
