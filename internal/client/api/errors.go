package api

import "fmt"

// ParseError reports a remote response whose shape did not match any known
// variant. Unrecognized payloads are rejected here, in one place, instead of
// being field-probed at call sites.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected response shape: %s: %s", e.Field, e.Reason)
}

// StatusError is a non-2xx response that is not covered by a sentinel error
// (401 and 5xx are mapped before this is returned). Endpoint wrappers inspect
// Code to translate e.g. a 400 from the verifier into
// common.ErrVerificationFailed.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Code)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Message)
}
