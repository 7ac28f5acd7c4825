package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/andriandrian/lifeline-admin/internal/auth"
	"github.com/andriandrian/lifeline-admin/internal/models"
	"github.com/andriandrian/lifeline-admin/internal/session"
	"github.com/andriandrian/lifeline-admin/internal/validation"
)

const (
	LoginPath   = "/api/v1/login"
	RefreshPath = "/api/v1/refreshToken"
	LogoutPath  = "/api/v1/logout"
	MePath      = "/api/v1/me"

	// LoginRoute is where the operator is sent when the session ends.
	LoginRoute = "/login"
)

// Navigator moves the application to another route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the base transport below the auth pipeline.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// Client is the Lifeline admin API client. Every request goes through the
// credential pipeline in transport.go.
type Client struct {
	baseURL    string
	store      session.Store
	base       http.RoundTripper
	timeout    time.Duration
	navigator  Navigator
	log        logrus.FieldLogger
	httpClient *http.Client
	refreshes  singleflight.Group
}

// New creates a client for baseURL that keeps its cookies in store.
func New(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		store:     store,
		base:      http.DefaultTransport,
		timeout:   30 * time.Second,
		navigator: NavigatorFunc(func(string) {}),
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var rt http.RoundTripper = &cookieTransport{next: c.base, store: store}
	rt = &bearerTransport{next: rt, store: store}
	rt = &retryOnUnauthorized{next: rt, refresh: c.sharedRefresh}

	c.httpClient = &http.Client{Transport: rt, Timeout: c.timeout}
	return c
}

// Store returns the cookie store backing this client.
func (c *Client) Store() session.Store {
	return c.store
}

// Identity returns the signed-in operator as mirrored in the name and userId cookies.
func (c *Client) Identity() (models.Identity, bool) {
	name, okName := c.store.Get(session.NameCookie)
	rawID, okID := c.store.Get(session.UserIDCookie)
	if !okName || !okID {
		return models.Identity{}, false
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return models.Identity{}, false
	}
	return models.Identity{ID: id, Name: name}, true
}

// Authenticated reports whether an access token is present.
func (c *Client) Authenticated() bool {
	_, ok := c.store.Get(session.AccessCookie)
	return ok
}

// Login validates the credentials locally, then exchanges them for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	creds := auth.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := validation.Struct(&creds); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}

	var s models.Session
	err := c.doJSON(ctx, http.MethodPost, LoginPath, creds, &s)
	var httpErr *HTTPError
	if err != nil && errors.As(err, &httpErr) &&
		(httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
		return nil, fmt.Errorf("client.Login: %w", &AuthenticationError{Message: httpErr.Message})
	}
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}

	if err := c.adoptSession(&s); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	c.log.WithField("user_id", s.User.ID).Info("logged in")
	return &s, nil
}

// adoptSession fills in any cookie the server did not set from the login body.
func (c *Client) adoptSession(s *models.Session) error {
	fallback := map[string]string{
		session.AccessCookie:  s.AccessToken,
		session.RefreshCookie: s.RefreshToken,
		session.NameCookie:    s.User.Name,
		session.UserIDCookie:  strconv.FormatInt(s.User.ID, 10),
	}
	for name, value := range fallback {
		if _, ok := c.store.Get(name); ok || value == "" {
			continue
		}
		if err := c.store.Set(&http.Cookie{Name: name, Value: value, Path: "/"}); err != nil {
			return fmt.Errorf("store %s cookie: %w", name, err)
		}
	}
	return nil
}

// Logout tells the server to clear the session and always clears it locally.
// Only a failure to clear the local session is returned.
func (c *Client) Logout(ctx context.Context) error {
	if c.Authenticated() {
		if err := c.doJSON(ctx, http.MethodPost, LogoutPath, nil, nil); err != nil {
			c.log.WithError(err).Warn("server logout failed")
		}
	}
	if err := c.store.Remove(session.All...); err != nil {
		return fmt.Errorf("client.Logout: clear session: %w", err)
	}
	return nil
}

// Me returns the identity the server associates with the current token.
func (c *Client) Me(ctx context.Context) (*models.Identity, error) {
	var id models.Identity
	if err := c.doJSON(ctx, http.MethodGet, MePath, nil, &id); err != nil {
		return nil, fmt.Errorf("client.Me: %w", err)
	}
	return &id, nil
}

// Refresh exchanges the refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context) error {
	if _, ok := c.store.Get(session.RefreshCookie); !ok {
		return fmt.Errorf("client.Refresh: %w", &HTTPError{StatusCode: http.StatusUnauthorized, Message: "no refresh token"})
	}

	var out struct {
		AccessToken string `json:"Authorization"`
	}
	if err := c.doJSON(ctx, http.MethodGet, RefreshPath, nil, &out); err != nil {
		return fmt.Errorf("client.Refresh: %w", err)
	}
	if out.AccessToken != "" {
		if current, _ := c.store.Get(session.AccessCookie); current != out.AccessToken {
			if err := c.store.Set(&http.Cookie{Name: session.AccessCookie, Value: out.AccessToken, Path: "/"}); err != nil {
				return fmt.Errorf("client.Refresh: store access token: %w", err)
			}
		}
	}
	return nil
}

// sharedRefresh runs one refresh for every request that hit a 401 while it
// was in flight. A failed refresh ends the session once.
func (c *Client) sharedRefresh(req *http.Request) error {
	_, err, shared := c.refreshes.Do("refresh", func() (any, error) {
		err := c.Refresh(context.WithoutCancel(req.Context()))
		if err != nil {
			c.endSession(err)
		}
		return nil, err
	})
	if err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{"path": req.URL.Path, "shared": shared}).Debug("token refreshed")
	return nil
}

func (c *Client) endSession(cause error) {
	c.log.WithError(cause).Warn("refresh failed, ending session")
	if err := c.store.Remove(session.All...); err != nil {
		c.log.WithError(err).Error("could not clear the stored session")
	}
	c.navigator.Navigate(LoginRoute)
}

type envelope struct {
	Code  int             `json:"code"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.doRequest(ctx, method, path, reqBody, contentType, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var refreshErr *RefreshError
		if errors.As(err, &refreshErr) {
			return refreshErr
		}
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", err)}
	}

	var env envelope
	decodeErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode >= 400 {
		if decodeErr == nil && env.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: env.Error}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
