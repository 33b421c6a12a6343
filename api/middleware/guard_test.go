package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/connectedautocare/console-gateway/internal/session"
	"github.com/connectedautocare/console-gateway/pkg/auth"
	"github.com/connectedautocare/console-gateway/pkg/config"
	"github.com/connectedautocare/console-gateway/pkg/enums"
	"github.com/connectedautocare/console-gateway/pkg/platform"
)

type guardAPI struct {
	verifyResp  *platform.VerifyResponse
	verifyErr   error
	verifyCalls int
}

func (a *guardAPI) Login(ctx context.Context, email, password string) (*platform.AuthResponse, error) {
	return nil, nil
}

func (a *guardAPI) Register(ctx context.Context, payload platform.RegisterPayload) (*platform.AuthResponse, error) {
	return nil, nil
}

func (a *guardAPI) VerifyToken(ctx context.Context, token, sessionID string) (*platform.VerifyResponse, error) {
	a.verifyCalls++
	return a.verifyResp, a.verifyErr
}

func (a *guardAPI) Logout(ctx context.Context, token, sessionID string) error { return nil }

func (a *guardAPI) ChangePassword(ctx context.Context, token, sessionID, current, next string) error {
	return nil
}

func testCookieConfig() config.CookieConfig {
	return config.CookieConfig{
		Secret:     "guard-test-secret",
		Issuer:     "connectedautocare",
		Name:       "cac_session",
		TTLMinutes: 60,
	}
}

func newTestGuard(t *testing.T, api *guardAPI) (*Guard, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	mgr, err := session.NewManager(session.ManagerParams{
		Store:    store,
		Keyer:    store,
		API:      api,
		TokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	guard, err := NewGuard(GuardParams{Manager: mgr, Cookies: testCookieConfig()})
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	return guard, store
}

func attachSessionCookie(t *testing.T, r *http.Request, sessionID string, role enums.UserRole) {
	t.Helper()
	cfg := testCookieConfig()
	value, err := auth.MintSessionCookie(cfg, time.Now(), sessionID, string(role))
	if err != nil {
		t.Fatalf("mint cookie: %v", err)
	}
	r.AddCookie(&http.Cookie{Name: cfg.Name, Value: value})
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthRedirectsAnonymousWithReturnURL(t *testing.T) {
	api := &guardAPI{}
	guard, _ := newTestGuard(t, api)

	called := false
	req := httptest.NewRequest("GET", "/policies?page=2", nil)
	rec := httptest.NewRecorder()
	guard.RequireAuth(okHandler(&called)).ServeHTTP(rec, req)

	if called {
		t.Fatal("handler must not run for anonymous requests")
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if loc != "/login?returnUrl=%2Fpolicies%3Fpage%3D2" {
		t.Fatalf("location = %q", loc)
	}
	if api.verifyCalls != 0 {
		t.Fatalf("no cookie means no upstream verify, got %d calls", api.verifyCalls)
	}
}

func TestRequireAuthPassesVerifiedSessionThrough(t *testing.T) {
	user := &platform.User{ID: "u1", Role: enums.UserRoleCustomer}
	api := &guardAPI{verifyResp: &platform.VerifyResponse{Valid: true, User: user}}
	guard, store := newTestGuard(t, api)

	ctx := context.Background()
	store.Set(ctx, store.SessionTokenKey("sess-1"), "tok", time.Hour)

	var seenUser *platform.User
	var seenSession string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = UserFromContext(r.Context())
		seenSession = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/dashboard", nil)
	attachSessionCookie(t, req, "sess-1", enums.UserRoleCustomer)
	rec := httptest.NewRecorder()
	guard.RequireAuth(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if seenUser == nil || seenUser.ID != "u1" {
		t.Fatalf("expected verified user in context, got %+v", seenUser)
	}
	if seenSession != "sess-1" {
		t.Fatalf("expected session id in context, got %q", seenSession)
	}
}

func TestRequireAuthTearsDownInvalidSession(t *testing.T) {
	api := &guardAPI{verifyResp: &platform.VerifyResponse{Valid: false}}
	guard, store := newTestGuard(t, api)

	ctx := context.Background()
	store.Set(ctx, store.SessionTokenKey("sess-1"), "stale", time.Hour)

	called := false
	req := httptest.NewRequest("GET", "/dashboard", nil)
	attachSessionCookie(t, req, "sess-1", enums.UserRoleCustomer)
	rec := httptest.NewRecorder()
	guard.RequireAuth(okHandler(&called)).ServeHTTP(rec, req)

	if called {
		t.Fatal("handler must not run for an invalid session")
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "/login") {
		t.Fatalf("location = %q", rec.Header().Get("Location"))
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "cac_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("session cookie should be cleared")
	}
	if _, err := store.Get(ctx, store.SessionTokenKey("sess-1")); err == nil {
		t.Fatal("stale token should be purged")
	}
}

func TestPublicOnlyRedirectsAuthenticatedToLanding(t *testing.T) {
	user := &platform.User{ID: "u1", Role: enums.UserRoleWholesaleReseller}
	api := &guardAPI{verifyResp: &platform.VerifyResponse{Valid: true, User: user}}
	guard, store := newTestGuard(t, api)

	store.Set(context.Background(), store.SessionTokenKey("sess-1"), "tok", time.Hour)

	called := false
	req := httptest.NewRequest("GET", "/login", nil)
	attachSessionCookie(t, req, "sess-1", enums.UserRoleWholesaleReseller)
	rec := httptest.NewRecorder()
	guard.PublicOnly(okHandler(&called)).ServeHTTP(rec, req)

	if called {
		t.Fatal("login page must not render for an authenticated user")
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/quotes/new" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestPublicOnlyHonoursLocalReturnURL(t *testing.T) {
	user := &platform.User{ID: "u1", Role: enums.UserRoleCustomer}
	api := &guardAPI{verifyResp: &platform.VerifyResponse{Valid: true, User: user}}
	guard, store := newTestGuard(t, api)
	store.Set(context.Background(), store.SessionTokenKey("sess-1"), "tok", time.Hour)

	called := false
	req := httptest.NewRequest("GET", "/login?returnUrl=%2Fpolicies%3Fpage%3D2", nil)
	attachSessionCookie(t, req, "sess-1", enums.UserRoleCustomer)
	rec := httptest.NewRecorder()
	guard.PublicOnly(okHandler(&called)).ServeHTTP(rec, req)

	if rec.Header().Get("Location") != "/policies?page=2" {
		t.Fatalf("location = %q", rec.Header().Get("Location"))
	}
}

func TestPublicOnlyRejectsExternalReturnURL(t *testing.T) {
	user := &platform.User{ID: "u1", Role: enums.UserRoleCustomer}
	api := &guardAPI{verifyResp: &platform.VerifyResponse{Valid: true, User: user}}
	guard, store := newTestGuard(t, api)
	store.Set(context.Background(), store.SessionTokenKey("sess-1"), "tok", time.Hour)

	called := false
	req := httptest.NewRequest("GET", "/login?returnUrl=https%3A%2F%2Fevil.example", nil)
	attachSessionCookie(t, req, "sess-1", enums.UserRoleCustomer)
	rec := httptest.NewRecorder()
	guard.PublicOnly(okHandler(&called)).ServeHTTP(rec, req)

	if rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("external return url must fall back to landing, got %q", rec.Header().Get("Location"))
	}
}

func TestPublicOnlyLetsAnonymousThrough(t *testing.T) {
	api := &guardAPI{}
	guard, _ := newTestGuard(t, api)

	called := false
	req := httptest.NewRequest("GET", "/login", nil)
	rec := httptest.NewRecorder()
	guard.PublicOnly(okHandler(&called)).ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("anonymous request should reach the page, called=%v status=%d", called, rec.Code)
	}
}

func TestRequireSessionAnswersJSONUnauthorized(t *testing.T) {
	api := &guardAPI{}
	guard, _ := newTestGuard(t, api)

	called := false
	req := httptest.NewRequest("GET", "/api/console/policies", nil)
	rec := httptest.NewRecorder()
	guard.RequireSession(okHandler(&called)).ServeHTTP(rec, req)

	if called {
		t.Fatal("handler must not run without a session")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("api guard must answer json, got %q", ct)
	}
}

func TestRequireRoleEnforcesHierarchy(t *testing.T) {
	user := &platform.User{ID: "u1", Role: enums.UserRoleCustomer}
	api := &guardAPI{verifyResp: &platform.VerifyResponse{Valid: true, User: user}}
	guard, store := newTestGuard(t, api)
	store.Set(context.Background(), store.SessionTokenKey("sess-1"), "tok", time.Hour)

	called := false
	chain := guard.RequireSession(guard.RequireRole(enums.UserRoleAdmin)(okHandler(&called)))

	req := httptest.NewRequest("GET", "/api/console/users", nil)
	attachSessionCookie(t, req, "sess-1", enums.UserRoleCustomer)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("customer must not pass an admin gate, called=%v status=%d", called, rec.Code)
	}
}

func TestRequireRoleAllowsSufficientRole(t *testing.T) {
	user := &platform.User{ID: "u1", Role: enums.UserRoleAdmin}
	api := &guardAPI{verifyResp: &platform.VerifyResponse{Valid: true, User: user}}
	guard, store := newTestGuard(t, api)
	store.Set(context.Background(), store.SessionTokenKey("sess-1"), "tok", time.Hour)

	called := false
	chain := guard.RequireSession(guard.RequireRole(enums.UserRoleWholesaleReseller)(okHandler(&called)))

	req := httptest.NewRequest("GET", "/api/console/rate-tables", nil)
	attachSessionCookie(t, req, "sess-1", enums.UserRoleAdmin)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("admin should pass a reseller gate, called=%v status=%d", called, rec.Code)
	}
}
