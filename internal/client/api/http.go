package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sparkleapp/sparkle-cli/internal/common"
	"github.com/sparkleapp/sparkle-cli/internal/logging"
)

const defaultRequestTimeout = 30 * time.Second

// MasterPasswordHeaderName carries the verified master password on vault
// requests so the server can decrypt entry payloads for this call.
const MasterPasswordHeaderName = "X-Master-Password"

// RESTClient talks JSON-over-HTTPS to the Sparkle backend. It holds the
// current bearer token pair and transparently refreshes once and replays a
// request when the server reports the access token expired.
type RESTClient struct {
	baseURL string
	httpc   *http.Client
	log     logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onTokens     func(access, refresh string)
}

var _ Client = (*RESTClient)(nil)

func NewRESTClient(baseURL string, log logging.Logger) *RESTClient {
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultRequestTimeout},
		log:     log,
	}
}

func (c *RESTClient) Close() error {
	c.httpc.CloseIdleConnections()
	return nil
}

func (c *RESTClient) SetTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken = access
	c.refreshToken = refresh
	c.mu.Unlock()
}

// OnTokensChanged registers a callback invoked whenever the token pair
// changes (login or refresh), so the caller can persist the new pair.
func (c *RESTClient) OnTokensChanged(fn func(access, refresh string)) {
	c.mu.Lock()
	c.onTokens = fn
	c.mu.Unlock()
}

func (c *RESTClient) tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *RESTClient) storeTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken = access
	c.refreshToken = refresh
	fn := c.onTokens
	c.mu.Unlock()
	if fn != nil {
		fn(access, refresh)
	}
}

// reqSpec is a replayable request description: the body is kept as bytes so
// the request can be rebuilt after a token refresh.
type reqSpec struct {
	method       string
	path         string
	body         []byte
	contentType  string
	masterSecret []byte
	noAuth       bool
}

func (c *RESTClient) newRequest(ctx context.Context, spec *reqSpec) (*http.Request, error) {
	var body *bytes.Reader
	if spec.body != nil {
		body = bytes.NewReader(spec.body)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, c.baseURL+spec.path, body)
	if err != nil {
		return nil, err
	}
	if spec.contentType != "" {
		req.Header.Set("Content-Type", spec.contentType)
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if !spec.noAuth {
		if access, _ := c.tokens(); access != "" {
			req.Header.Set(common.AuthorizationHeaderName, "Bearer "+access)
		}
	}
	if len(spec.masterSecret) > 0 {
		req.Header.Set(MasterPasswordHeaderName, string(spec.masterSecret))
	}
	return req, nil
}

// send performs the request described by spec and returns the response body
// and status code. 401 responses trigger a single token refresh followed by
// a replay; transport failures are wrapped in common.ErrUnavailable so
// callers can tell them apart from remote rejections.
func (c *RESTClient) send(ctx context.Context, spec *reqSpec) ([]byte, int, error) {
	if !spec.noAuth {
		access, refresh := c.tokens()
		if access != "" && refresh != "" && tokenExpired(access, time.Now()) {
			if err := c.refresh(ctx); err != nil {
				return nil, 0, err
			}
		}
	}

	body, code, err := c.attempt(ctx, spec)
	if err != nil {
		return nil, 0, err
	}

	if code == http.StatusUnauthorized && !spec.noAuth {
		if _, refresh := c.tokens(); refresh != "" {
			if err := c.refresh(ctx); err != nil {
				return nil, 0, err
			}
			body, code, err = c.attempt(ctx, spec)
			if err != nil {
				return nil, 0, err
			}
		}
	}

	switch {
	case code >= 200 && code < 300:
		return body, code, nil
	case code == http.StatusUnauthorized:
		return nil, code, fmt.Errorf("%w: %s", common.ErrUnauthorized, errorMessage(body))
	case code >= 500:
		return nil, code, fmt.Errorf("%w: status %d", common.ErrUnavailable, code)
	default:
		return nil, code, &StatusError{Code: code, Message: errorMessage(body)}
	}
}

func (c *RESTClient) attempt(ctx context.Context, spec *reqSpec) ([]byte, int, error) {
	req, err := c.newRequest(ctx, spec)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := readAllLimited(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return body, resp.StatusCode, nil
}

// refresh exchanges the refresh token for a new pair. A rejected refresh
// token surfaces as common.ErrRefreshTokenExpired; the caller must log in
// again.
func (c *RESTClient) refresh(ctx context.Context) error {
	_, refresh := c.tokens()
	if refresh == "" {
		return common.ErrTokenExpired
	}

	payload, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return err
	}

	body, code, err := c.attempt(ctx, &reqSpec{
		method:      http.MethodPost,
		path:        "/auth/token/refresh/",
		body:        payload,
		contentType: "application/json",
		noAuth:      true,
	})
	if err != nil {
		return err
	}

	switch {
	case code >= 200 && code < 300:
	case code == http.StatusUnauthorized || code == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrRefreshTokenExpired, errorMessage(body))
	default:
		return fmt.Errorf("%w: status %d", common.ErrUnavailable, code)
	}

	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(body, &pair); err != nil {
		return &ParseError{Field: "refresh response", Reason: err.Error()}
	}
	if pair.Access == "" {
		return &ParseError{Field: "access", Reason: "missing"}
	}
	if pair.Refresh == "" {
		// some deployments rotate only the access token
		pair.Refresh = refresh
	}

	c.log.Debug(ctx, "access token refreshed")
	c.storeTokens(pair.Access, pair.Refresh)
	return nil
}

func (c *RESTClient) getJSON(ctx context.Context, path string, out any, masterSecret []byte) error {
	body, _, err := c.send(ctx, &reqSpec{method: http.MethodGet, path: path, masterSecret: masterSecret})
	if err != nil {
		return err
	}
	return unmarshalBody(body, out)
}

func (c *RESTClient) postJSON(ctx context.Context, path string, in, out any, masterSecret []byte) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return err
		}
	}
	body, _, err := c.send(ctx, &reqSpec{
		method:       http.MethodPost,
		path:         path,
		body:         payload,
		contentType:  "application/json",
		masterSecret: masterSecret,
	})
	if err != nil {
		return err
	}
	return unmarshalBody(body, out)
}

func unmarshalBody(body []byte, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ParseError{Field: "body", Reason: err.Error()}
	}
	return nil
}
