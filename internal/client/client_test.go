package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andriandrian/lifeline-admin/internal/logging"
	"github.com/andriandrian/lifeline-admin/internal/models"
	"github.com/andriandrian/lifeline-admin/internal/session"
	"github.com/andriandrian/lifeline-admin/internal/validation"
)

// fakeAPI accepts the bearer token in current and refreshes to next.
type fakeAPI struct {
	mu         sync.Mutex
	current    string
	next       string
	refreshOK  bool
	alwaysDeny bool

	listCalls    atomic.Int32
	refreshCalls atomic.Int32
	loginCalls   atomic.Int32
	logoutCalls  atomic.Int32
	denied       atomic.Int32
	refreshGate  func()
	bodies       []string
	bearers      []string
}

func writeEnvelope(w http.ResponseWriter, code int, data any, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "data": data, "error": msg})
}

func (f *fakeAPI) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bearers = append(f.bearers, r.Header.Get("Authorization"))
	return !f.alwaysDeny && r.Header.Get("Authorization") == "Bearer "+f.current
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		f.loginCalls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			writeEnvelope(w, http.StatusUnauthorized, nil, "invalid email or password")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: session.AccessCookie, Value: f.current, Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: session.RefreshCookie, Value: "refresh-1", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: session.NameCookie, Value: "Rina", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: session.UserIDCookie, Value: "7", Path: "/"})
		writeEnvelope(w, http.StatusOK, map[string]any{
			"user":          map[string]any{"id": 7, "firstname": "Rina"},
			"Authorization": f.current,
			"RefreshToken":  "refresh-1",
		}, "")
	})
	mux.HandleFunc("GET /api/v1/refreshToken", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if f.refreshGate != nil {
			f.refreshGate()
		}
		if !f.refreshOK || r.Header.Get(session.RefreshHeader) != "refresh-1" {
			writeEnvelope(w, http.StatusUnauthorized, nil, "refresh token expired")
			return
		}
		f.mu.Lock()
		f.current = f.next
		token := f.current
		f.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: session.AccessCookie, Value: token, Path: "/"})
		writeEnvelope(w, http.StatusOK, map[string]string{"Authorization": token}, "")
	})
	mux.HandleFunc("GET /api/v1/faq/list", func(w http.ResponseWriter, r *http.Request) {
		f.listCalls.Add(1)
		if !f.authorized(r) {
			f.denied.Add(1)
			writeEnvelope(w, http.StatusUnauthorized, nil, "token expired")
			return
		}
		writeEnvelope(w, http.StatusOK, []models.FAQ{{ID: 1, Question: "Who can donate?", Answer: "Adults", UserID: 7}}, "")
	})
	mux.HandleFunc("POST /api/v1/faq/create", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.bodies = append(f.bodies, string(raw))
		f.mu.Unlock()
		if !f.authorized(r) {
			writeEnvelope(w, http.StatusUnauthorized, nil, "token expired")
			return
		}
		var faq models.FAQ
		_ = json.Unmarshal(raw, &faq)
		faq.ID = 12
		writeEnvelope(w, http.StatusCreated, faq, "")
	})
	mux.HandleFunc("POST /api/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logoutCalls.Add(1)
		if !f.authorized(r) {
			writeEnvelope(w, http.StatusUnauthorized, nil, "token expired")
			return
		}
		writeEnvelope(w, http.StatusOK, nil, "")
	})
	mux.HandleFunc("GET /api/v1/faq/detail/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, nil, "faq not found")
	})
	return mux
}

type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

func newTestClient(t *testing.T, api *fakeAPI) (*Client, *session.MemoryStore, *recordingNavigator) {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	nav := &recordingNavigator{}
	c := New(srv.URL, store, WithNavigator(nav), WithLogger(logging.Discard()), WithTimeout(5*time.Second))
	return c, store, nav
}

func signIn(store session.Store, access string) {
	store.Set(&http.Cookie{Name: session.AccessCookie, Value: access})
	store.Set(&http.Cookie{Name: session.RefreshCookie, Value: "refresh-1"})
	store.Set(&http.Cookie{Name: session.NameCookie, Value: "Rina"})
	store.Set(&http.Cookie{Name: session.UserIDCookie, Value: "7"})
}

func TestLogin_StoresCookies(t *testing.T) {
	api := &fakeAPI{current: "access-1"}
	c, store, _ := newTestClient(t, api)

	s, err := c.Login(context.Background(), " rina@example.com ", "secret")
	require.NoError(t, err)
	require.Equal(t, int64(7), s.User.ID)
	require.Equal(t, "access-1", s.AccessToken)

	token, ok := store.Get(session.AccessCookie)
	require.True(t, ok)
	require.Equal(t, "access-1", token)

	me, ok := c.Identity()
	require.True(t, ok)
	require.Equal(t, models.Identity{ID: 7, Name: "Rina"}, me)

	faqs, err := c.FAQs().List(context.Background())
	require.NoError(t, err)
	require.Len(t, faqs, 1)
	require.Zero(t, api.denied.Load())
	require.Zero(t, api.refreshCalls.Load())
}

func TestLogin_RejectedIsAuthenticationFailure(t *testing.T) {
	api := &fakeAPI{current: "access-1", refreshOK: true}
	c, _, nav := newTestClient(t, api)

	_, err := c.Login(context.Background(), "rina@example.com", "wrong")
	require.Error(t, err)
	require.Equal(t, KindAuthentication, Classify(err))
	require.Equal(t, "invalid email or password", Notice(err))

	require.Zero(t, api.refreshCalls.Load())
	require.Empty(t, nav.Routes())
	require.False(t, c.Authenticated())
}

func TestLogin_ValidatesBeforeNetwork(t *testing.T) {
	api := &fakeAPI{current: "access-1"}
	c, _, _ := newTestClient(t, api)

	_, err := c.Login(context.Background(), "not-an-email", "")
	require.Equal(t, KindValidation, Classify(err))

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "email")
	require.Contains(t, verr.Fields, "password")
	require.Zero(t, api.loginCalls.Load())
}

func TestBearerAttachedFromStore(t *testing.T) {
	api := &fakeAPI{current: "access-1"}
	c, store, _ := newTestClient(t, api)
	signIn(store, "access-1")

	faqs, err := c.FAQs().List(context.Background())
	require.NoError(t, err)
	require.Len(t, faqs, 1)
	require.Equal(t, []string{"Bearer access-1"}, api.bearers)
}

func TestNoTokenSendsNoAuthorization(t *testing.T) {
	api := &fakeAPI{current: "access-1"}
	c, _, nav := newTestClient(t, api)

	_, err := c.FAQs().List(context.Background())
	require.Equal(t, KindRefresh, Classify(err))
	require.Equal(t, []string{""}, api.bearers)
	require.Equal(t, []string{LoginRoute}, nav.Routes())
}

func TestExpiredAccessTokenRefreshesAndReplaysOnce(t *testing.T) {
	api := &fakeAPI{current: "access-2", next: "access-2", refreshOK: true}
	c, store, nav := newTestClient(t, api)
	signIn(store, "access-1")

	faqs, err := c.FAQs().List(context.Background())
	require.NoError(t, err)
	require.Len(t, faqs, 1)

	require.Equal(t, int32(1), api.refreshCalls.Load())
	require.Equal(t, int32(2), api.listCalls.Load())
	require.Equal(t, []string{"Bearer access-1", "Bearer access-2"}, api.bearers)

	token, _ := store.Get(session.AccessCookie)
	require.Equal(t, "access-2", token)
	require.Empty(t, nav.Routes())
}

func TestRefreshFailureEndsSession(t *testing.T) {
	api := &fakeAPI{current: "access-2", refreshOK: false}
	c, store, nav := newTestClient(t, api)
	signIn(store, "access-1")

	_, err := c.FAQs().List(context.Background())
	require.Error(t, err)

	var refreshErr *RefreshError
	require.ErrorAs(t, err, &refreshErr)
	require.True(t, IsStatus(err, http.StatusUnauthorized))
	require.Equal(t, KindRefresh, Classify(err))

	for _, name := range session.All {
		_, ok := store.Get(name)
		require.False(t, ok, name)
	}
	require.Equal(t, []string{LoginRoute}, nav.Routes())
	require.Equal(t, int32(1), api.listCalls.Load())
}

func TestSecondUnauthorizedIsHardFailure(t *testing.T) {
	api := &fakeAPI{current: "access-2", next: "access-2", refreshOK: true, alwaysDeny: true}
	c, store, nav := newTestClient(t, api)
	signIn(store, "access-1")

	_, err := c.FAQs().List(context.Background())
	require.True(t, IsStatus(err, http.StatusUnauthorized))
	require.Equal(t, KindRemote, Classify(err))

	require.Equal(t, int32(1), api.refreshCalls.Load())
	require.Equal(t, int32(2), api.listCalls.Load())
	require.Empty(t, nav.Routes())
}

func TestRefreshEndpointIsNotRetried(t *testing.T) {
	api := &fakeAPI{refreshOK: false}
	c, store, _ := newTestClient(t, api)
	signIn(store, "access-1")

	err := c.Refresh(context.Background())
	require.True(t, IsStatus(err, http.StatusUnauthorized))
	require.Equal(t, int32(1), api.refreshCalls.Load())
}

func TestReplayResendsBody(t *testing.T) {
	api := &fakeAPI{current: "access-2", next: "access-2", refreshOK: true}
	c, store, _ := newTestClient(t, api)
	signIn(store, "access-1")

	created, err := c.FAQs().Create(context.Background(), &models.FAQ{Question: "Q?", Answer: "A."})
	require.NoError(t, err)
	require.Equal(t, int64(12), created.ID)
	require.Equal(t, int64(7), created.UserID)

	require.Len(t, api.bodies, 2)
	require.Equal(t, api.bodies[0], api.bodies[1])
	require.True(t, strings.Contains(api.bodies[0], `"userId":7`))
}

func TestConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	const n = 5
	api := &fakeAPI{current: "access-2", next: "access-2", refreshOK: true}
	api.refreshGate = func() {
		deadline := time.Now().Add(2 * time.Second)
		for api.denied.Load() < n && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		time.Sleep(100 * time.Millisecond)
	}
	c, store, _ := newTestClient(t, api)
	signIn(store, "access-1")

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.FAQs().List(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), api.refreshCalls.Load())
	require.Equal(t, int32(2*n), api.listCalls.Load())
}

func TestNotFoundClassification(t *testing.T) {
	api := &fakeAPI{current: "access-1"}
	c, store, _ := newTestClient(t, api)
	signIn(store, "access-1")

	_, err := c.FAQs().Get(context.Background(), 99)
	require.Equal(t, KindNotFound, Classify(err))
	require.Equal(t, "The requested record was not found.", Notice(err))
}

func TestCreateWithImageRequiresImage(t *testing.T) {
	api := &fakeAPI{current: "access-1"}
	c, store, _ := newTestClient(t, api)
	signIn(store, "access-1")

	_, err := c.News().CreateWithImage(context.Background(), &models.News{Title: "Drive", Content: "Saturday"}, nil)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Image is required", verr.Fields["image"])
}

func TestUpdateStatusRejectNeedsReason(t *testing.T) {
	api := &fakeAPI{current: "access-1"}
	c, store, _ := newTestClient(t, api)
	signIn(store, "access-1")

	err := c.Donations().UpdateStatus(context.Background(), 3, models.StatusChange{Type: models.StatusReject})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Rejection reason is required", verr.Fields["rejectionReason"])
}

func TestLogoutClearsLocally(t *testing.T) {
	api := &fakeAPI{current: "access-1"}
	c, store, _ := newTestClient(t, api)
	signIn(store, "access-1")

	require.NoError(t, c.Logout(context.Background()))
	require.Equal(t, int32(1), api.logoutCalls.Load())
	require.False(t, c.Authenticated())
	_, ok := c.Identity()
	require.False(t, ok)
}

func TestLogout_RejectedTokenDoesNotRefresh(t *testing.T) {
	api := &fakeAPI{current: "access-2", refreshOK: false}
	c, store, nav := newTestClient(t, api)
	signIn(store, "access-1")

	require.NoError(t, c.Logout(context.Background()))
	require.Equal(t, int32(1), api.logoutCalls.Load())
	require.Zero(t, api.refreshCalls.Load())
	require.Empty(t, nav.Routes())
	require.False(t, c.Authenticated())
}

// brokenStore keeps cookies in memory but fails every write, like a session
// file in a directory that cannot be written.
type brokenStore struct {
	*session.MemoryStore
}

var errDiskFull = errors.New("no space left on device")

func (s brokenStore) Set(*http.Cookie) error  { return errDiskFull }
func (s brokenStore) Remove(...string) error { return errDiskFull }

func TestLogin_SessionWriteFailureSurfaces(t *testing.T) {
	api := &fakeAPI{current: "access-1"}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	c := New(srv.URL, brokenStore{session.NewMemoryStore()}, WithLogger(logging.Discard()))

	_, err := c.Login(context.Background(), "rina@example.com", "secret")
	require.ErrorIs(t, err, errDiskFull)
	require.Equal(t, int32(1), api.loginCalls.Load())
}

func TestLogout_SessionWriteFailureSurfaces(t *testing.T) {
	api := &fakeAPI{current: "access-1"}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	c := New(srv.URL, brokenStore{session.NewMemoryStore()}, WithLogger(logging.Discard()))

	err := c.Logout(context.Background())
	require.ErrorIs(t, err, errDiskFull)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"auth", &AuthenticationError{Message: "nope"}, KindAuthentication},
		{"refresh", &RefreshError{Err: errors.New("expired")}, KindRefresh},
		{"validation", &validation.Error{Fields: map[string]string{"a": "A is required"}}, KindValidation},
		{"not found", &HTTPError{StatusCode: http.StatusNotFound}, KindNotFound},
		{"server", &HTTPError{StatusCode: http.StatusInternalServerError, Message: "boom"}, KindRemote},
		{"transport", errors.New("connection refused"), KindRemote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestNoticeRemoteUsesServerMessage(t *testing.T) {
	require.Equal(t, "boom", Notice(&HTTPError{StatusCode: 500, Message: "boom"}))
	require.Equal(t, "Something went wrong while contacting the server.", Notice(errors.New("dial tcp")))
}
