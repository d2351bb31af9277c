package common

// AuthorizationHeaderName carries the bearer token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName carries a client-generated id for request tracing.
const RequestIDHeaderName = "X-Request-Id"
