package api

import (
	"context"
	"net/http"
)

// Ping checks server reachability without authentication.
func (c *RESTClient) Ping(ctx context.Context) error {
	_, _, err := c.send(ctx, &reqSpec{method: http.MethodGet, path: "/auth/auth/csrf/", noAuth: true})
	return err
}

// Login exchanges credentials for a bearer token pair and stores it on the
// client. The password is not retained.
func (c *RESTClient) Login(ctx context.Context, email string, password []byte) error {
	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	in := map[string]string{"email": email, "password": string(password)}
	if err := c.postJSON(ctx, "/auth/token/", in, &pair, nil); err != nil {
		return err
	}
	if pair.Access == "" {
		return &ParseError{Field: "access", Reason: "missing"}
	}
	c.storeTokens(pair.Access, pair.Refresh)
	return nil
}

// Logout invalidates the session server-side (best effort) and always drops
// the local token pair.
func (c *RESTClient) Logout(ctx context.Context) error {
	err := c.postJSON(ctx, "/auth/logout/", nil, nil, nil)
	c.storeTokens("", "")
	return err
}
